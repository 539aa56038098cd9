// Package binder turns arbitrary handler functions into callable signatures.
//
// A handler is inspected once with [Inspect], which produces a [Signature]: the ordered list of
// parameter descriptors the handler needs. At request time [Signature.Bind] builds the argument
// list and [Signature.Call] invokes the handler.
//
// Supported handler shapes return either error or (T, error). Each argument is one of:
//
//   - a framework primitive, recognized by type through the predicate given to Inspect
//     (the request context, *http.Request, ...);
//   - a params struct: a struct passed by value whose exported fields are bound individually;
//   - a service: any other type, produced by the [Resolver].
//
// Params struct fields are resolved with this precedence:
//
//  1. primitive by type;
//  2. a captured path parameter with the field's name, coerced to the field type;
//  3. for fields tagged `query`, the query string value, coerced the same way;
//  4. for fields tagged `form`, the urlencoded or multipart body value, coerced the same way;
//  5. the resolver; when it reports [ErrNotConfigured] the `default` tag is used.
//
// A single field tagged `body:"json"` receives the whole request body decoded as JSON.
// Query, form and body fields never reach the resolver: missing values leave the default
// or the zero value. Malformed values fail with [ArgumentCoercionError], which reports 400,
// or 413 when the body exceeds [MaxBodyBytes].
//
// [DecodeJSON], [ParseForm] and [DecodeValues] expose the same decoding for code that binds
// by hand, such as Context.Bind.
//
// Example:
//
//	type showParams struct {
//	    ID      int     `param:"id"`
//	    Verbose bool    `query:"verbose" default:"false"`
//	    Note    string  `query:"note" sanitize:"strict"`
//	    Input   profile `body:"json"`
//	    Repo    *Users  // resolved by type
//	}
//
//	func (h *Users) Show(c runway.Context, p showParams) error { ... }
//
// Coercion supports strings, booleans, all integer and float kinds, named types of those kinds,
// and any type implementing encoding.TextUnmarshaler (uuid.UUID, time.Time).
// Fields without a `param` tag use their lower-cased field name.
package binder
