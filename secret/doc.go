// Package secret resolves credentials referenced from fleet configuration.
//
// Probe auth headers and API keys may carry:
//   - Strict environment expansion (see ExpandEnv)
//   - Secret references resolved through a Provider (see Resolver)
//
// References use the prefix "secretref:":
//   - Full value:  secretref:file:litellm_master_key
//   - Inline use:  Bearer secretref:env:LITELLM_MASTER_KEY
//
// The env and file providers are built in; see Builtin.
package secret
