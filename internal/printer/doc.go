// Package printer provides an HTTP client for the local API of
// PrusaLink-compatible network 3D printers.
//
// The client implements the linkflow.DeviceClient collaborator: it performs
// the reachability and credential check used by the setup flow by fetching
// the printer's /api/version endpoint. Both authentication schemes offered
// by the wizard are supported:
//
//   - API key: sent as the X-Api-Key request header
//   - Username/password: RFC 7616 HTTP digest, answering the printer's
//     401 challenge
//
// # Usage Example
//
//	client := printer.NewClient()
//	info, err := client.Validate(ctx, linkflow.LinkConfiguration{
//	    Host: "http://prusa-mini.local",
//	    Auth: linkflow.APIKeyAuth("secret"),
//	})
//
// # Error Handling
//
// Failures are returned as *DeviceError values that classify the problem
// (network, auth, HTTP, parse) and satisfy errors.Is against the linkflow
// sentinels, so the flow can map them to user-facing error tags.
//
// All requests honor the deadline and cancellation of the passed context;
// the client itself applies no timeout of its own.
package printer
