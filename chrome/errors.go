package chrome

import "errors"

// Sentinel errors returned by the package.
var (
	// ErrClosed is returned when attempting to use a closed [Browser].
	ErrClosed = errors.New("chrome: browser is closed")
)
