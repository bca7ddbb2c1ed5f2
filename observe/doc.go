// Package observe provides observability primitives for fleet health probing.
//
// Tracing and metrics ride on OpenTelemetry; logging is line-delimited JSON
// stamped with the active trace and span ids. The cache and fleet layers
// receive all of it as one Telemetry bundle. Every primitive has a no-op
// counterpart so callers never nil-check.
package observe
