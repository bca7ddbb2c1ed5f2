// Package registry holds the static set of services fleetwatch monitors.
//
// A Registry is built once at startup from configuration and never changes.
// Each Service carries an explicit ProbeKind so probers dispatch on a closed
// set of kinds; when the kind is omitted it is inferred from the fields
// present (see InferProbeKind).
package registry
