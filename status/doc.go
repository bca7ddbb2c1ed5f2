// Package status resolves a service's OverallStatus from three signals: the
// container runtime state, the runtime's native health attribute, and the
// outcome of an active probe.
//
// Resolution is a pure function with no I/O; see ResolveSignals for the
// precedence table.
package status
