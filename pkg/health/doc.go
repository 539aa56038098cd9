// Package health serves liveness and readiness endpoints and runs dependency checks.
//
// [Liveness] always answers 200. [Readiness] runs its [Checks] concurrently under
// one deadline (5s unless [WithTimeout] says otherwise) and answers 503 when any
// check fails. Bodies are JSON:
//
//	{"status":"unhealthy","checks":{"redis":{"status":"unhealthy","error":"dial tcp: connection refused","latency_ms":3}}}
//
// Clients sending only Accept: text/plain, or ?format=text, get the bare status word.
//
// The App mounts both handlers with runway.WithHealthChecks:
//
//	runway.WithHealthChecks(
//	    runway.WithReadinessCheck("postgres", db.Healthcheck(pool)),
//	    runway.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
//
// [Run] executes the same checks outside HTTP, for example from a CLI command.
// Its error joins [ErrCheckFailed] with one [*CheckError] per failed check.
package health
