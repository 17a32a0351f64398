package capture

import "context"

// PermissionState is the platform camera permission status.
type PermissionState string

const (
	PermissionGranted      PermissionState = "granted"
	PermissionDenied       PermissionState = "denied"
	PermissionUndetermined PermissionState = "undetermined"
)

// Provider acquires one selfie frame from the front-facing camera.
// Implementations must open the camera first and never block on
// geolocation: a fix is attached to the Result only when it is already
// available, otherwise Result.Geo is nil and the orchestrator resolves
// location separately. Every exit path, success or not, must leave the
// camera released.
type Provider interface {
	Capture(ctx context.Context) (Result, error)
}

// PermissionChecker is the platform permission subsystem.
type PermissionChecker interface {
	GetCameraPermission(ctx context.Context) (PermissionState, error)
	RequestCameraPermission(ctx context.Context) (PermissionState, error)
}
