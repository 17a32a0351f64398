package camera

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
	"github.com/attendlab/punch-agent-go/internal/domain/capture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingChecker struct {
	state        capture.PermissionState
	getCalls     int
	requestCalls int
}

func (c *countingChecker) GetCameraPermission(ctx context.Context) (capture.PermissionState, error) {
	c.getCalls++
	return c.state, nil
}

func (c *countingChecker) RequestCameraPermission(ctx context.Context) (capture.PermissionState, error) {
	c.requestCalls++
	c.state = capture.PermissionGranted
	return c.state, nil
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 180
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPermissionGate_ChecksOncePerProcess(t *testing.T) {
	checker := &countingChecker{state: capture.PermissionGranted}
	gate := newPermissionGate(checker)

	require.NoError(t, gate.ensure(context.Background()))
	require.NoError(t, gate.ensure(context.Background()))
	require.NoError(t, gate.ensure(context.Background()))

	assert.Equal(t, 1, checker.getCalls)
	assert.Zero(t, checker.requestCalls)
}

func TestPermissionGate_PromptsOnceWhenUndetermined(t *testing.T) {
	checker := &countingChecker{state: capture.PermissionUndetermined}
	gate := newPermissionGate(checker)

	require.NoError(t, gate.ensure(context.Background()))
	require.NoError(t, gate.ensure(context.Background()))

	assert.Equal(t, 1, checker.getCalls)
	assert.Equal(t, 1, checker.requestCalls)
}

func TestPermissionGate_Denied(t *testing.T) {
	checker := &countingChecker{state: capture.PermissionDenied}
	gate := newPermissionGate(checker)

	err := gate.ensure(context.Background())
	assert.ErrorIs(t, err, capture.ErrPermissionDenied)
}

func TestStaticChecker_DeniedBlocksCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 320, 240), 0o600))

	provider := NewStagedFileProvider(path, StaticChecker{State: capture.PermissionDenied})
	_, err := provider.Capture(context.Background())
	assert.ErrorIs(t, err, capture.ErrPermissionDenied)
}

func TestStagedFileProvider_Capture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 320, 240), 0o600))

	provider := NewStagedFileProvider(path, &countingChecker{state: capture.PermissionGranted})
	result, err := provider.Capture(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 320, result.Frame.Width)
	assert.Equal(t, 240, result.Frame.Height)
	assert.True(t, result.Frame.Valid())

	// The staged file is consumed; nothing outlives the attempt.
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestStagedFileProvider_MissingFileMeansCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	provider := NewStagedFileProvider(path, &countingChecker{state: capture.PermissionGranted})

	_, err := provider.Capture(context.Background())
	assert.ErrorIs(t, err, capture.ErrCancelled)
}

func TestStagedFileProvider_UndecodableBytesReachHeuristic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o600))

	provider := NewStagedFileProvider(path, &countingChecker{state: capture.PermissionGranted})
	result, err := provider.Capture(context.Background())

	require.NoError(t, err)
	assert.False(t, result.Frame.Valid())
	assert.Equal(t, []byte("not an image"), result.Frame.Encoded)
}

func TestBridgeProvider_CaptureConsumesFrame(t *testing.T) {
	bridge := NewBridgeProvider()
	fix := &attendance.GeoFix{Latitude: 1, Longitude: 2}
	bridge.SetFrame(encodePNG(t, 320, 240), fix)

	result, err := bridge.Capture(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Frame.Valid())
	assert.Equal(t, fix, result.Geo)

	// A second capture without a fresh post is a user-cancel.
	_, err = bridge.Capture(context.Background())
	assert.ErrorIs(t, err, capture.ErrCancelled)
}

func TestBridgeProvider_StaleFrameRejected(t *testing.T) {
	bridge := NewBridgeProvider()
	bridge.SetFrame(encodePNG(t, 320, 240), nil)
	bridge.now = func() time.Time { return time.Now().Add(3 * time.Minute) }

	_, err := bridge.Capture(context.Background())
	assert.ErrorIs(t, err, capture.ErrCancelled)
}

func TestNewProvider_PlatformSelection(t *testing.T) {
	checker := &countingChecker{state: capture.PermissionGranted}
	bridge := NewBridgeProvider()

	native, err := NewProvider("native", "/tmp/frame.jpg", checker, bridge)
	require.NoError(t, err)
	assert.IsType(t, &StagedFileProvider{}, native)

	web, err := NewProvider("web", "", checker, bridge)
	require.NoError(t, err)
	assert.Same(t, bridge, web)

	_, err = NewProvider("desktop", "", checker, bridge)
	assert.Error(t, err)
}
