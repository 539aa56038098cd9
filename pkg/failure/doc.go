// Package failure normalizes errors and recovered panics into a single shape.
//
// Every failure that reaches the dispatch kernel, whether a typed error returned by a handler,
// a wrapped chain, or a recovered panic (including runtime errors such as a nil dereference or
// an integer division by zero), is converted with [From] into a [Failure]:
//
//	f := failure.From(err)
//	f.Kind      // "route.NotMatchedError", "panic", "runtime", "error"
//	f.Message   // err.Error()
//	f.Origin    // "handlers/users.go:42 (handlers.(*Users).Show)" when known
//	f.Severity  // Warning, Error or Critical
//	f.Chain     // causal chain, outermost first
//
// Panics are converted at the recovery site with [Recovered], which captures the stack while it
// is still available and locates the first frame outside the Go runtime.
//
// Origins come from stack traces recorded by github.com/cockroachdb/errors. Handlers that want a
// precise origin for plain errors can create them with errors.New / errors.Wrap from that module.
package failure
