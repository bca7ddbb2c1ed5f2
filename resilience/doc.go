// Package resilience bounds fleetwatch's calls to slow or failing
// dependencies.
//
// It provides three patterns that compose through Executor:
//
//   - CircuitBreaker: after MaxFailures consecutive failures calls fail fast
//     with ErrCircuitOpen until ResetTimeout has passed. The container
//     runtime client uses it so a dead daemon degrades to
//     "docker unavailable" without waiting on every inspect.
//
//   - Bulkhead: caps concurrent operations. The fleet monitor uses it to
//     limit how many probes run at once during a full refresh.
//
//   - Call / WithTimeout: gives every call an explicit deadline.
//
// There is no retry pattern; the cache TTL acts as the retry interval.
//
// # Usage
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
//	    Name:         "docker",
//	    MaxFailures:  3,
//	    ResetTimeout: 30 * time.Second,
//	})
//	exec := resilience.NewExecutor(
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithTimeout(5*time.Second),
//	)
//	info, err := resilience.Run(ctx, exec, func(ctx context.Context) (Info, error) {
//	    return daemon.Inspect(ctx, name)
//	})
package resilience
