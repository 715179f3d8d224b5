package fortimanager

// Method is the JSON-RPC verb of a request.
type Method string

// Methods accepted by the controller.
const (
	MethodGet    Method = "get"
	MethodAdd    Method = "add"
	MethodSet    Method = "set"
	MethodUpdate Method = "update"
	MethodDelete Method = "delete"
	MethodExec   Method = "exec"
)

// Valid reports whether m is one of the six supported methods.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodAdd, MethodSet, MethodUpdate, MethodDelete, MethodExec:
		return true
	default:
		return false
	}
}

func (m Method) String() string {
	return string(m)
}
