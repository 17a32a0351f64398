package camera

import (
	"context"
	"sync"
	"time"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
	"github.com/attendlab/punch-agent-go/internal/domain/capture"
)

// frameMaxAge bounds how stale a posted web frame may be when a punch
// is triggered. Anything older is treated as no capture at all.
const frameMaxAge = 2 * time.Minute

// BridgeProvider is the web-platform capture path. The browser shell
// grabs a getUserMedia frame onto a canvas, posts the encoded bytes
// (and any fix it already holds) to the bridge, then triggers the
// punch. Capture consumes the posted frame; clearing it is the web
// analog of stopping the camera stream tracks.
type BridgeProvider struct {
	gate *permissionGate

	mu       sync.Mutex
	data     []byte
	geo      *attendance.GeoFix
	postedAt time.Time

	now func() time.Time
}

func NewBridgeProvider() *BridgeProvider {
	return &BridgeProvider{now: time.Now}
}

var _ capture.Provider = (*BridgeProvider)(nil)

// SetFrame stages an encoded frame posted by the web shell.
func (p *BridgeProvider) SetFrame(data []byte, geo *attendance.GeoFix) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data = data
	p.geo = geo
	p.postedAt = p.now()
}

// Capture implements capture.Provider.
func (p *BridgeProvider) Capture(ctx context.Context) (capture.Result, error) {
	if p.gate != nil {
		if err := p.gate.ensure(ctx); err != nil {
			return capture.Result{}, err
		}
	}

	p.mu.Lock()
	data := p.data
	geo := p.geo
	postedAt := p.postedAt
	p.data = nil
	p.geo = nil
	p.postedAt = time.Time{}
	p.mu.Unlock()

	if len(data) == 0 {
		return capture.Result{}, capture.ErrCancelled
	}
	if p.now().Sub(postedAt) > frameMaxAge {
		return capture.Result{}, capture.ErrCancelled
	}

	frame, err := capture.DecodeFrame(data)
	if err != nil {
		return capture.Result{Frame: capture.Frame{Encoded: data}, Geo: geo}, nil
	}

	return capture.Result{Frame: frame, Geo: geo}, nil
}
