package camera

import (
	"context"
	"fmt"
	"sync"

	"github.com/attendlab/punch-agent-go/internal/domain/capture"
)

// permissionGate checks camera permission once per process lifetime
// and caches the answer, so a prior grant is reused without prompting
// again. An undetermined state triggers a single request prompt.
type permissionGate struct {
	checker capture.PermissionChecker

	once  sync.Once
	state capture.PermissionState
	err   error
}

func newPermissionGate(checker capture.PermissionChecker) *permissionGate {
	return &permissionGate{checker: checker}
}

func (g *permissionGate) ensure(ctx context.Context) error {
	g.once.Do(func() {
		state, err := g.checker.GetCameraPermission(ctx)
		if err != nil {
			g.err = fmt.Errorf("failed to read camera permission: %w", err)
			return
		}
		if state == capture.PermissionUndetermined {
			state, err = g.checker.RequestCameraPermission(ctx)
			if err != nil {
				g.err = fmt.Errorf("failed to request camera permission: %w", err)
				return
			}
		}
		g.state = state
	})

	if g.err != nil {
		return g.err
	}
	if g.state != capture.PermissionGranted {
		return capture.ErrPermissionDenied
	}
	return nil
}

// StaticChecker is a PermissionChecker for shells that settle camera
// permission themselves before the agent starts: the state is handed
// over once and never re-prompted.
type StaticChecker struct {
	State capture.PermissionState
}

func (c StaticChecker) GetCameraPermission(ctx context.Context) (capture.PermissionState, error) {
	return c.State, nil
}

func (c StaticChecker) RequestCameraPermission(ctx context.Context) (capture.PermissionState, error) {
	return c.State, nil
}

// NewProvider selects the capture implementation for the configured
// platform. The native shell stages camera-intent output as a file;
// the web shell posts canvas frames to the bridge.
func NewProvider(platform, stagingPath string, checker capture.PermissionChecker, bridge *BridgeProvider) (capture.Provider, error) {
	switch platform {
	case "native":
		return NewStagedFileProvider(stagingPath, checker), nil
	case "web":
		bridge.gate = newPermissionGate(checker)
		return bridge, nil
	default:
		return nil, fmt.Errorf("unsupported capture platform: %s", platform)
	}
}
