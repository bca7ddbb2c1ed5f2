package container

import "errors"

// ErrRuntimeUnavailable indicates the container runtime was never
// initialized or cannot be reached.
var ErrRuntimeUnavailable = errors.New("container: runtime unavailable")
