package fortimanager

import (
	"context"
	"time"
)

// ProxyParams describes a request relayed by the controller to managed devices
// through /sys/proxy/json.
type ProxyParams struct {
	// Targets are device or group paths, e.g. "adom/root/device/FGT-01".
	Targets []string

	// Action is the HTTP verb used towards the device ("get", "post", "put", "delete").
	Action string

	// Resource is the device-side REST path, e.g. "/api/v2/monitor/system/interface".
	Resource string

	// Payload is sent to the device as the request body (optional).
	Payload any

	// Timeout is how long the controller waits on the devices.
	// Zero uses the client's ProxyTimeout.
	Timeout time.Duration
}

// Params builds the exec params for the call. defaultTimeout applies when
// p.Timeout is zero; the wire value is in whole seconds.
func (p ProxyParams) Params(defaultTimeout time.Duration) Params {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	data := map[string]any{
		"target":   p.Targets,
		"action":   p.Action,
		"resource": p.Resource,
		"timeout":  int(timeout / time.Second),
	}
	if p.Payload != nil {
		data["payload"] = p.Payload
	}

	return Params{
		"url":  URLProxy,
		"data": data,
	}
}

// Proxy relays a request to managed devices. The returned Result's Data holds
// one entry per target with the device response.
func (c *Client) Proxy(ctx context.Context, p ProxyParams) (*Result, error) {
	return c.Dispatch(ctx, MethodExec, p.Params(c.cfg.ProxyTimeout))
}

// proxyWait reads data.timeout (seconds) from proxy params, or 0 when absent.
func proxyWait(params Params) time.Duration {
	data, ok := params["data"].(map[string]any)
	if !ok {
		return 0
	}

	switch v := data["timeout"].(type) {
	case int:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	default:
		return 0
	}
}
