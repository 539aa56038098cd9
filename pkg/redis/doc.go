// Package redis opens the Redis client shared by the session store and caches.
//
//	client, err := redis.Open(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	app := runway.New(
//		runway.WithInstances(client),
//		runway.WithHealthChecks(runway.WithReadinessCheck("redis", redis.Healthcheck(client))),
//		runway.WithShutdownHook(redis.Shutdown(client)),
//	)
package redis
