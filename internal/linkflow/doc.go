// Package linkflow implements the guided setup flow for linking a network
// 3D printer to printlink.
//
// The flow is a small finite-state machine driven by whatever front end
// collects user input (the TUI wizard or the headless CLI):
//
//	AuthChoice -> DigestCredentials | APIKey -> Validating -> Complete
//	                                               |
//	                                               v (any failure)
//	                                        AuthChoice + error tag
//
// Each step is described to the front end as a FormRequest listing the
// fields to collect. Submitted credentials are validated against the
// printer with a single timeout-bounded call; on success a link entry is
// persisted through the EntryStore collaborator, on failure the flow
// returns to the auth-type choice with one of the error tags from this
// package. Collected fields are never retained across a failed attempt.
//
// # Usage Example
//
//	flow, err := linkflow.New(client, store, linkflow.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	form := flow.Start()
//	// ... collect authType from the user ...
//	form, _ = flow.ChooseAuthType(linkflow.AuthTypeAPIKey)
//	// ... collect host and apiKey ...
//	result, _ := flow.SubmitCredentials(ctx, map[string]string{
//	    linkflow.FieldHost:   "myprinter.local",
//	    linkflow.FieldAPIKey: "secret",
//	})
//	if result.Entry != nil {
//	    fmt.Println("linked:", result.Entry.Title)
//	}
//
// # Thread Safety
//
// A Flow is a single interactive session and is not safe for concurrent
// use. Independent sessions own independent Flow values and share nothing.
package linkflow
