package attendance

import (
	"errors"
	"fmt"
)

// Attendance domain errors
var (
	ErrNoRecordForDate = errors.New("no attendance record found for the requested date")
	ErrMalformedRecord = errors.New("attendance record from server could not be parsed")
)

// SubmissionError is a punch submission rejected by the server or lost
// to the network. Message carries the server's own message verbatim
// when one was present in the response body; transport failures leave
// it empty and keep the cause in Err for logging.
type SubmissionError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("punch submission failed: %v", e.Err)
	}
	return fmt.Sprintf("punch submission failed with status %d", e.StatusCode)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
