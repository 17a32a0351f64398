package geo

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
)

// ErrNoPosition is returned by a PositionSource when no fix can be
// produced. The resolver swallows it; callers only ever see a nil fix.
var ErrNoPosition = errors.New("no position available")

// Position is a raw fix from the platform geolocation primitive.
type Position struct {
	Latitude  float64
	Longitude float64
	At        time.Time
}

// Options mirror the platform getCurrentPosition options. Attendance
// does not need high accuracy, and asking for it costs latency.
type Options struct {
	HighAccuracy bool
	MaxAge       time.Duration
}

// PositionSource is the platform geolocation primitive.
type PositionSource interface {
	GetCurrentPosition(ctx context.Context, opts Options) (Position, error)
}

const (
	// DefaultTimeout bounds how long a punch waits for a fix.
	DefaultTimeout = 2 * time.Second

	// cacheMaxAge is how old a cached fix may be and still count.
	cacheMaxAge = 10 * time.Minute
)

// Resolver wraps a PositionSource with a bounded wait, a low-accuracy
// request, and acceptance of recent cached fixes. It never returns an
// error: location is an enrichment, not a requirement for punching.
type Resolver struct {
	source  PositionSource
	timeout time.Duration

	mu   sync.Mutex
	last *Position

	now func() time.Time
}

func NewResolver(source PositionSource, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{
		source:  source,
		timeout: timeout,
		now:     time.Now,
	}
}

// Resolve returns a rounded fix or nil. A cached fix newer than ten
// minutes is reused without touching the platform; otherwise the
// source gets the bounded wait and any failure degrades to nil.
func (r *Resolver) Resolve(ctx context.Context) *attendance.GeoFix {
	r.mu.Lock()
	if r.last != nil && r.now().Sub(r.last.At) <= cacheMaxAge {
		fix := roundFix(*r.last)
		r.mu.Unlock()
		return &fix
	}
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	type result struct {
		pos Position
		err error
	}
	ch := make(chan result, 1)
	go func() {
		pos, err := r.source.GetCurrentPosition(ctx, Options{
			HighAccuracy: false,
			MaxAge:       cacheMaxAge,
		})
		ch <- result{pos, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil
		}
		if res.pos.At.IsZero() {
			res.pos.At = r.now()
		}
		r.mu.Lock()
		r.last = &res.pos
		r.mu.Unlock()
		fix := roundFix(res.pos)
		return &fix
	case <-ctx.Done():
		return nil
	}
}

func roundFix(p Position) attendance.GeoFix {
	return attendance.GeoFix{
		Latitude:  Round6(p.Latitude),
		Longitude: Round6(p.Longitude),
	}
}

// Round6 rounds a coordinate to 6 decimal places, the precision the
// attendance API stores.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// PushSource is a PositionSource fed by the UI shell over the bridge:
// the shell pushes fixes as the platform reports them and the resolver
// reads the freshest one. A stale or absent fix blocks until the
// caller's deadline expires.
type PushSource struct {
	mu   sync.Mutex
	last *Position

	now func() time.Time
}

func NewPushSource() *PushSource {
	return &PushSource{now: time.Now}
}

// Push records a fix reported by the shell.
func (s *PushSource) Push(lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = &Position{Latitude: lat, Longitude: lon, At: s.now()}
}

// GetCurrentPosition implements PositionSource.
func (s *PushSource) GetCurrentPosition(ctx context.Context, opts Options) (Position, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		s.mu.Lock()
		if s.last != nil && (opts.MaxAge <= 0 || s.now().Sub(s.last.At) <= opts.MaxAge) {
			pos := *s.last
			s.mu.Unlock()
			return pos, nil
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return Position{}, ErrNoPosition
		case <-ticker.C:
		}
	}
}
