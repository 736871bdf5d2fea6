// Package server implements a simulated PrusaLink printer.
//
// The simulator exposes the subset of the PrusaLink HTTP API that the
// setup tools exercise, so the wizard and the link command can be tried
// end to end without a physical printer. It answers the version endpoint
// behind either authentication scheme and pushes fake status updates over
// a WebSocket.
//
// # Endpoints
//
//   - GET /api/version: printer identity and API version. Requires
//     authentication unless the simulator was started without credentials.
//   - GET /api/events: WebSocket stream of job status updates.
//
// # Authentication
//
// The simulator mirrors real firmware behavior:
//
//   - With --api-key, requests must carry the key in the X-Api-Key header.
//   - With --user/--password, requests are challenged with HTTP digest
//     (MD5, qop="auth") and the Authorization response is verified.
//   - Wrong or missing credentials get 401 with a fresh challenge.
//
// # Usage Example
//
//	config := &server.Config{
//	    Host:     "127.0.0.1",
//	    Port:     8080,
//	    Hostname: "PrusaMINI",
//	    APIKey:   "secret",
//	}
//	srv := server.New(config)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
package server
