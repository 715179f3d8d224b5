package fortimanager

import "strings"

// namedCollections are path segments followed by an object name.
var namedCollections = map[string]string{
	"adom":     ":adom",
	"device":   ":device",
	"group":    ":group",
	"pkg":      ":pkg",
	"script":   ":script",
	"template": ":template",
	"vdom":     ":vdom",
}

// normalizeURL replaces object names and numeric ids in a JSON-RPC url with
// placeholders so it can be used as a metrics label.
//
// Examples:
//   - /dvmdb/adom/root/device/FGT-01 → /dvmdb/adom/:adom/device/:device
//   - /pm/config/adom/root/obj/firewall/address/42 → /pm/config/adom/:adom/obj/firewall/address/:id
//   - /task/task/1234 → /task/task/:id
func normalizeURL(url string) string {
	segments := strings.Split(url, "/")
	for i := 1; i < len(segments); i++ {
		segment := segments[i]
		if segment == "" {
			continue
		}

		if isNumeric(segment) {
			segments[i] = ":id"
			continue
		}

		if _, keyword := namedCollections[segment]; keyword {
			continue
		}
		if placeholder, ok := namedCollections[segments[i-1]]; ok {
			segments[i] = placeholder
		}
	}

	return strings.Join(segments, "/")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return s != ""
}
