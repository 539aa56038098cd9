// Package route provides the route table and matcher used by the dispatch kernel.
//
// Routes are registered as (method, pattern, handler, name) records. A pattern is a path
// template made of literal text and named segments:
//
//	/users/{id}              // {id} matches one path segment
//	/users/{id:\d+}          // {id} must match the regular expression \d+
//	/archive/{year:\d{4}}    // braces inside a constraint must be balanced
//
// Patterns are compiled once at registration into an anchored regular expression plus the
// ordered list of parameter names. Compilation is a pure function of the pattern.
//
// # Matching
//
// [Router.Match] tries the routes registered for the request method in registration order and
// returns the first one whose matcher accepts the path. Constraint checks are part of the
// matcher, so a path that fails a constraint falls through to the next candidate. Register
// specific patterns before general ones, or use [WithPolicy] with [MostSpecific].
//
// When nothing matches, Match distinguishes between [NotMatchedError] (404) and
// [MethodNotAllowedError] (405 with the allowed method set), so the caller can respond with the
// correct status code.
//
// # Reverse routing
//
// Named routes can be turned back into URLs:
//
//	path, err := table.URL("users.show", map[string]string{"id": "42"})
//
// # Route files
//
// [LoadDefinitions] decodes YAML route-definition files:
//
//	routes:
//	  - method: GET
//	    pattern: /users/{id:\d+}
//	    handler: users.show
//	    name: users.show
//
// The table is not safe for concurrent registration. Call [Table.Freeze] once setup is done;
// a frozen table is read-only and can be shared across goroutines.
package route
