// Package srfax provides a Go client for the SRFax internet fax API.
//
// Every operation performs exactly one authenticated request against the
// service and maps the reply into a typed result or an error. Arguments are
// validated locally first; a ValidationError means the service was never
// contacted.
//
// Basic usage:
//
//	client, err := srfax.New("12345", "secret",
//	    srfax.WithCallerID("5551234567"),
//	    srfax.WithSenderEmail("fax@example.com"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Send a fax
//	id, err := client.QueueFax(ctx, []string{"+15557654321"},
//	    []srfax.Document{srfax.FileDocument("invoice.pdf")})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Poll its status
//	status, err := client.GetFaxStatus(ctx, id)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("State:", status.State)
//
//	// Or block until it is delivered or has failed
//	status, err = client.WaitForFax(ctx, id, srfax.WithWaitTimeout(10*time.Minute))
//
// Errors are one of ConfigurationError, ValidationError, TransportError or
// RemoteError, and match the package's sentinels with errors.Is:
//
//	var remote *srfax.RemoteError
//	if errors.As(err, &remote) {
//	    fmt.Println("service said:", remote.Message)
//	}
//	if errors.Is(err, srfax.ErrTimeout) {
//	    // the request timed out
//	}
package srfax
