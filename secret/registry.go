package secret

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Factory builds a Provider from its options block, the map found under
// secrets.providers.<name> in the configuration.
type Factory func(opts map[string]any) (Provider, error)

// Factories maps provider names to their constructors. It is not safe
// for concurrent mutation; build it before use.
type Factories map[string]Factory

// Builtin returns the env and file factories. env reads the "prefix"
// option and file reads "dir".
func Builtin() Factories {
	return Factories{
		"env": func(opts map[string]any) (Provider, error) {
			return NewEnvProvider(stringOpt(opts, "prefix")), nil
		},
		"file": func(opts map[string]any) (Provider, error) {
			return NewFileProvider(stringOpt(opts, "dir")), nil
		},
	}
}

func stringOpt(opts map[string]any, key string) string {
	s, _ := opts[key].(string)
	return s
}

// Register adds factory under name. Names are unique.
func (f Factories) Register(name string, factory Factory) error {
	name = strings.TrimSpace(name)
	if name == "" || factory == nil {
		return ErrInvalidRegistration
	}
	if _, dup := f[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateProvider, name)
	}
	f[name] = factory
	return nil
}

// Create builds the provider called name from opts.
func (f Factories) Create(name string, opts map[string]any) (Provider, error) {
	factory, ok := f[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrProviderNotRegistered, name)
	}
	return factory(opts)
}

// Names returns the registered provider names in sorted order.
func (f Factories) Names() []string {
	return slices.Sorted(maps.Keys(f))
}
