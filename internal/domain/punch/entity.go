package punch

import (
	"time"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
	"github.com/attendlab/punch-agent-go/internal/domain/liveness"
)

// State is where an attempt currently sits in the punch pipeline.
// The flow is strictly linear; there are no retries and no resumption
// across process restarts.
type State string

const (
	StateIdle              State = "idle"
	StateCapturing         State = "capturing"
	StateValidating        State = "validating"
	StateLocationResolving State = "location_resolving"
	StateDeciding          State = "deciding"
	StateSubmitting        State = "submitting"
	StateSucceeded         State = "succeeded"
	StateFailed            State = "failed"
	StateCancelled         State = "cancelled"
)

// Outcome is the terminal result surfaced to the UI. Cancelled is a
// first-class non-error terminal state, distinct from Failed.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Attempt is the transient state of one user-initiated punch. It is
// discarded once the outcome is surfaced; after a success the
// refetched AttendanceDay is the only truth that survives.
type Attempt struct {
	ID             string
	StartedAt      time.Time
	State          State
	Verdict        *liveness.Verdict
	Geo            *attendance.GeoFix
	DecidedAction  attendance.Action
	Outcome        Outcome
	FailureMessage string
}

// AttemptResponse is the bridge view of a finished attempt.
type AttemptResponse struct {
	ID            string `json:"id"`
	Outcome       string `json:"outcome"`
	DecidedAction string `json:"decided_action,omitempty"`
	Message       string `json:"message,omitempty"`
}

func NewAttemptResponse(a Attempt) AttemptResponse {
	return AttemptResponse{
		ID:            a.ID,
		Outcome:       string(a.Outcome),
		DecidedAction: string(a.DecidedAction),
		Message:       a.FailureMessage,
	}
}
