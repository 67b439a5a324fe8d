// Package bridge lets a Go function be invoked by a foreign host runtime as
// if it were one of the host's native extension modules.
//
// A handler receives the event as a Value and a read-only Context, and
// returns a Value or an error:
//
//	func handler(event bridge.Value, lc *bridge.Context) (bridge.Value, error) {
//	    return event, nil
//	}
//
//	func main() {
//	    if err := bridge.Start(handler); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// Start serves the handler as "liblambda.handler". Built natively it runs
// the AWS Lambda Runtime API loop. Built with GOOS=wasip1 and
// -buildmode=c-shared it registers the handler with the guest exports
// instead; main does not run in that mode, so WASM modules call Start from
// an init function.
//
// Several handlers are served with a registry:
//
//	reg, err := registry.New(
//	    registry.WithHandler("orders", orders),
//	    registry.WithHandler("refunds", refunds),
//	)
//	...
//	err = bridge.StartRegistry(reg)
//
// Typed wraps a function over Go types, decoding and validating the event
// with go-playground/validator tags.
package bridge
