package punch

import "errors"

// Punch domain errors
var (
	// ErrAttemptInFlight guards reentrancy: a second punch trigger
	// while one attempt is running is a no-op.
	ErrAttemptInFlight = errors.New("a punch attempt is already in progress")
)
