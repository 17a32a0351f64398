package camera

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/attendlab/punch-agent-go/internal/domain/capture"
)

// StagedFileProvider is the native-platform capture path. The UI shell
// launches the front camera intent, writes the resulting selfie to the
// staging path, then triggers the punch; Capture picks the file up and
// removes it so no image outlives the attempt.
type StagedFileProvider struct {
	path string
	gate *permissionGate
}

func NewStagedFileProvider(path string, checker capture.PermissionChecker) *StagedFileProvider {
	return &StagedFileProvider{
		path: path,
		gate: newPermissionGate(checker),
	}
}

var _ capture.Provider = (*StagedFileProvider)(nil)

// Capture implements capture.Provider. A missing staged file means the
// user backed out of the camera intent without taking a photo.
func (p *StagedFileProvider) Capture(ctx context.Context) (capture.Result, error) {
	if err := p.gate.ensure(ctx); err != nil {
		return capture.Result{}, err
	}

	data, err := os.ReadFile(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return capture.Result{}, capture.ErrCancelled
	}
	if err != nil {
		return capture.Result{}, fmt.Errorf("failed to read staged frame: %w", err)
	}

	// The staged file is consumed either way; the attempt owns the
	// bytes from here and nothing persists on disk.
	defer os.Remove(p.path)

	if len(data) == 0 {
		return capture.Result{}, capture.ErrCancelled
	}

	frame, err := capture.DecodeFrame(data)
	if err != nil {
		// Undecodable bytes still reach the heuristic, which maps
		// them to a decode-failed verdict instead of erroring here.
		return capture.Result{Frame: capture.Frame{Encoded: data}}, nil
	}

	return capture.Result{Frame: frame}, nil
}
