package punch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
	"github.com/attendlab/punch-agent-go/internal/domain/capture"
	"github.com/attendlab/punch-agent-go/internal/domain/liveness"
	"github.com/attendlab/punch-agent-go/internal/domain/punch"
	"github.com/google/uuid"
)

// genericSubmitFailure is shown when the server gave no message of its
// own. The user must re-initiate; nothing retries automatically.
const genericSubmitFailure = "Punch could not be submitted. Please try again."

type Deps struct {
	Capture    capture.Provider
	Liveness   liveness.Service
	Resolver   punch.LocationResolver
	Attendance attendance.AttendanceService
	API        attendance.AttendanceAPI
	Log        *slog.Logger

	SiteID    string
	UserID    string
	ProjectID string
}

type PunchServiceImpl struct {
	deps Deps

	inFlight atomic.Bool

	mu  sync.RWMutex
	day *attendance.AttendanceDay

	now func() time.Time
}

func NewPunchService(deps Deps) *PunchServiceImpl {
	return &PunchServiceImpl{
		deps: deps,
		now:  time.Now,
	}
}

var _ punch.PunchService = (*PunchServiceImpl)(nil)

// Punch implements punch.PunchService. One linear pass per attempt:
// Capturing, Validating, LocationResolving, Deciding, Submitting, then
// a terminal state. The in-flight flag makes a second trigger a no-op
// while an attempt runs.
func (s *PunchServiceImpl) Punch(ctx context.Context) (punch.Attempt, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return punch.Attempt{}, punch.ErrAttemptInFlight
	}
	defer s.inFlight.Store(false)

	attempt := punch.Attempt{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
		State:     punch.StateCapturing,
		Outcome:   punch.OutcomePending,
	}

	result, err := s.deps.Capture.Capture(ctx)
	if err != nil {
		if errors.Is(err, capture.ErrCancelled) {
			attempt.State = punch.StateCancelled
			attempt.Outcome = punch.OutcomeCancelled
			return attempt, nil
		}
		// Capture errors reach the user verbatim; they are actionable
		// (enable permission, use a device with a camera).
		return s.fail(attempt, err.Error()), nil
	}

	attempt.State = punch.StateValidating
	verdict := s.deps.Liveness.Evaluate(result.Frame)
	attempt.Verdict = &verdict
	if !verdict.Valid {
		// The rejection message passes through unchanged; neither the
		// location resolver nor the network runs after a rejection.
		return s.fail(attempt, verdict.Reason.Message()), nil
	}

	attempt.State = punch.StateLocationResolving
	if result.Geo != nil {
		attempt.Geo = result.Geo
	} else {
		// Bounded wait inside the resolver; a missing fix carries
		// geo=nil forward and never fails the attempt.
		attempt.Geo = s.deps.Resolver.Resolve(ctx)
	}

	attempt.State = punch.StateDeciding
	decision := s.deps.Attendance.DecideDetail(s.Today())
	attempt.DecidedAction = decision.Action

	attempt.State = punch.StateSubmitting
	req := attendance.SubmitPunchRequest{
		UserID:    s.deps.UserID,
		Images:    []string{base64.StdEncoding.EncodeToString(result.Frame.Encoded)},
		IsCheckIn: decision.Action == attendance.ActionCheckIn,
	}
	if attempt.Geo != nil {
		req.Latitude = &attempt.Geo.Latitude
		req.Longitude = &attempt.Geo.Longitude
	}
	if s.deps.ProjectID != "" {
		projectID := s.deps.ProjectID
		req.ProjectID = &projectID
	}

	if _, err := s.deps.API.SubmitPunch(ctx, req); err != nil {
		s.deps.Log.Warn("punch submission failed", "error", err)
		return s.fail(attempt, submitFailureMessage(err)), nil
	}

	attempt.State = punch.StateSucceeded
	attempt.Outcome = punch.OutcomeSucceeded

	// The server is the next source of truth: replace the snapshot
	// from a fresh fetch instead of patching it locally. A failed
	// refetch leaves the snapshot stale but the punch still stands.
	if _, err := s.Refresh(ctx); err != nil {
		s.deps.Log.Warn("attendance refetch after punch failed", "error", err)
	}

	return attempt, nil
}

func (s *PunchServiceImpl) fail(attempt punch.Attempt, message string) punch.Attempt {
	attempt.State = punch.StateFailed
	attempt.Outcome = punch.OutcomeFailed
	attempt.FailureMessage = message
	return attempt
}

func submitFailureMessage(err error) string {
	var subErr *attendance.SubmissionError
	if errors.As(err, &subErr) && subErr.Message != "" {
		return subErr.Message
	}
	return genericSubmitFailure
}

// Today implements punch.PunchService. Readers get the whole value;
// the snapshot is only ever replaced wholesale, never mutated, so
// there are no torn reads between the punch flow and list screens.
func (s *PunchServiceImpl) Today() *attendance.AttendanceDay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.day == nil {
		return nil
	}
	day := *s.day
	return &day
}

// Refresh implements punch.PunchService.
func (s *PunchServiceImpl) Refresh(ctx context.Context) (*attendance.AttendanceDay, error) {
	date := s.now().Format("2006-01-02")
	raw, err := s.deps.API.FetchDay(ctx, s.deps.SiteID, s.deps.UserID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attendance for %s: %w", date, err)
	}

	var day *attendance.AttendanceDay
	if raw != nil {
		reconciled := s.deps.Attendance.Reconcile(*raw)
		day = &reconciled
	}

	s.mu.Lock()
	s.day = day
	s.mu.Unlock()

	return s.Today(), nil
}

// Status implements punch.PunchService.
func (s *PunchServiceImpl) Status() attendance.PunchStatusResponse {
	day := s.Today()
	decision := s.deps.Attendance.DecideDetail(day)

	resp := attendance.PunchStatusResponse{
		LastAction: string(attendance.LastActionUnknown),
		NextAction: string(decision.Action),
		Divergent:  decision.Divergent,
	}
	if day != nil {
		resp.HasRecordToday = true
		resp.LastAction = string(day.LastAction)
		resp.HasOpenEntry = day.HasOpenEntry()
		resp.TotalHours = day.TotalHours
	}
	return resp
}
