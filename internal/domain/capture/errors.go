package capture

import "errors"

// Capture domain errors
var (
	ErrPermissionDenied = errors.New("camera permission denied")
	ErrCancelled        = errors.New("capture cancelled by user")
	ErrUnavailable      = errors.New("camera is not available on this device")
)
