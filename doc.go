// Package drover drives a remote browser session: navigating pages, locating
// DOM elements by strategy, interacting with them, and manipulating select
// lists and cookies.
//
// The package is a client-side abstraction. All remote work goes through the
// Session interface, which is satisfied by the cdp package (DevTools protocol
// over a websocket) or by any other implementation of the same contract.
//
// Example:
//
//	reg := launcher.Registry()
//	sess, err := reg.New(ctx, "chrome", drover.Options{Headless: true})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sess.Close(ctx)
//
//	sess.NavigateTo(ctx, "https://example.com/form")
//	el, ok, err := drover.FindOne(ctx, sess, drover.ByName("country"))
//	if err != nil || !ok {
//		log.Fatal("no country field")
//	}
//	sel, err := drover.NewSelect(ctx, el)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sel.SelectByText(ctx, "Portugal")
package drover
