// Package cache provides the TTL store behind every fleet read.
//
// MemoryStore holds opaque values under namespaced keys ("health_ollama")
// whose TTL comes from a per-namespace Policy table. Accessor layers
// get-or-fetch on top with per-key single-flight and serves the last stored
// value when a refresh fails. Janitor sweeps expired entries on a ticker.
package cache
