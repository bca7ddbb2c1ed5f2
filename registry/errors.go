package registry

import "errors"

var (
	// ErrServiceNotFound indicates no service has the requested id.
	ErrServiceNotFound = errors.New("registry: service not found")

	// ErrDuplicateService indicates two services share an id.
	ErrDuplicateService = errors.New("registry: duplicate service id")

	// ErrInvalidService indicates a malformed service descriptor.
	ErrInvalidService = errors.New("registry: invalid service")
)
