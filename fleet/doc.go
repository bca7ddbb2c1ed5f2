// Package fleet turns a service registry into cached health reports.
//
// A Monitor owns one prober per service and answers every fleet query
// through a cache.Accessor, so repeated reads inside a TTL window never touch
// the container runtime or the services themselves:
//
//	health_<id>     per-service status (30s)
//	services_all    every service in registry order (15s)
//	services_<hash> category-filtered views (15s)
//	container_<id>  container resource samples (20s)
//	system_metrics  process snapshot (10s)
//	docker_stats    container listing totals (15s)
//
// Probes fan out concurrently, capped by a resilience.Bulkhead. When a
// refresh fails the accessor serves the last stored value, so a flapping
// runtime does not blank the dashboard.
package fleet
