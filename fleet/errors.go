package fleet

import (
	"errors"

	"github.com/jonwraymond/fleetwatch/registry"
)

var (
	// ErrServiceNotFound indicates no registered service has the requested id.
	ErrServiceNotFound = registry.ErrServiceNotFound

	// ErrNilRegistry indicates a Monitor was built without a registry.
	ErrNilRegistry = errors.New("fleet: registry is nil")

	// ErrNilAccessor indicates a Monitor was built without a cache accessor.
	ErrNilAccessor = errors.New("fleet: cache accessor is nil")
)
