// Package config loads the fleetwatch configuration.
//
// Values are layered with koanf: built-in defaults, then each YAML file in
// order, then FLEETWATCH_* environment variables, where a double underscore
// separates nesting levels (FLEETWATCH_SERVER__PORT sets server.port).
// Secret-bearing values may reference the environment (${VAR}) or a secret
// provider (secretref:file:jwt) and are resolved after merging.
package config
