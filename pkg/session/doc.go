// Package session provides server-side sessions stored in Redis.
//
// A Manager loads the session named by the request cookie and saves it back when it
// changed; middlewares.Session does that around each request. Concurrent requests for
// the same session share one store lookup.
package session
