package secret

import "errors"

var (
	// ErrMissingEnv indicates ${VAR} referenced an unset environment variable.
	ErrMissingEnv = errors.New("secret: missing required environment variables")

	// ErrProviderNotRegistered indicates a secretref named an unknown provider.
	ErrProviderNotRegistered = errors.New("secret: provider not registered")

	// ErrEmptySecret indicates a strict resolver received an empty value.
	ErrEmptySecret = errors.New("secret: provider returned empty value")

	// ErrInvalidRef indicates a malformed reference.
	ErrInvalidRef = errors.New("secret: invalid reference")

	// ErrNotFound indicates the provider has no value for the reference.
	ErrNotFound = errors.New("secret: not found")

	// ErrInvalidRegistration indicates an empty name or nil factory.
	ErrInvalidRegistration = errors.New("secret: invalid provider registration")

	// ErrDuplicateProvider indicates a factory name was registered twice.
	ErrDuplicateProvider = errors.New("secret: provider already registered")
)
