// Package container reads container state from the container runtime.
//
// Client is the narrow view the fleet monitor needs: inspect one container,
// list all containers, and sample one container's resource usage. Three
// implementations are provided:
//
//   - Docker talks to a Docker daemon through the official SDK. Each call has
//     a deadline and runs behind a circuit breaker, so a dead daemon
//     degrades to ContainerDockerUnavailable quickly.
//   - Unavailable is used when no runtime is configured.
//   - Static is an in-memory runtime for tests and demos.
package container
