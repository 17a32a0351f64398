package punch

import (
	"context"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
)

// LocationResolver produces a best-effort location fix within its own
// bounded wait, or nil. It never errors: location enriches a punch but
// never blocks one.
type LocationResolver interface {
	Resolve(ctx context.Context) *attendance.GeoFix
}

// PunchService runs the end-to-end punch pipeline and owns the single
// AttendanceDay snapshot the UI reads.
type PunchService interface {
	// Punch runs one attempt: capture, liveness, location, decision,
	// submission, refetch. Returns ErrAttemptInFlight if another
	// attempt is running.
	Punch(ctx context.Context) (Attempt, error)

	// Today returns the current snapshot, or nil before the first
	// successful fetch.
	Today() *attendance.AttendanceDay

	// Refresh refetches and reconciles today's record, replacing the
	// snapshot wholesale.
	Refresh(ctx context.Context) (*attendance.AttendanceDay, error)

	// Status describes what the next punch would do.
	Status() attendance.PunchStatusResponse
}
