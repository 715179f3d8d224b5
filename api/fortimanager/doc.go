// Package fortimanager provides the session and request-dispatch core of a
// FortiManager JSON-RPC client.
//
// Every resource on the controller is reached through one endpoint,
// POST {host}/jsonrpc, with an envelope carrying a method (get, add, set,
// update, delete, exec) and params naming the object url. Resource-specific
// code builds (method, params) and calls Client.Dispatch, which returns the
// first result verbatim.
//
// # Authentication
//
// Two credentials are supported and chosen once at construction:
//   - SessionCredential logs in with /sys/login/user on first use and sends the
//     session id in every envelope. Before each call the session is probed with
//     /sys/status; a rejected session is replaced by a fresh login.
//   - TokenCredential sends "Authorization: Bearer <token>" and keeps no session.
//
// # Retry Logic
//
// HTTP 502, 503 and 504 are retried with exponential backoff (1s, 2s, 4s, ...)
// for up to 5 attempts in total. Connection errors and timeouts are returned
// as *TransportError without retry.
//
// # Errors
//
// Dispatch never turns a non-zero status code into an error; callers inspect
// Result.Status or call Result.Err. Failures of the exchange itself are
// *TransportError, *ProtocolError or *AuthenticationError.
//
// # Example Usage
//
//	client, err := fortimanager.New("fmg.example.com", fortimanager.SessionCredential{
//	    Username: "admin",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Dispatch(ctx, fortimanager.MethodGet, fortimanager.Params{
//	    "url": "/dvmdb/adom/root/device",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := result.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Lifetime
//
// Close logs the session out once; WithClient wraps a function call with
// construction and Close.
package fortimanager
