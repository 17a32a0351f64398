package response

import (
	"errors"
	"net/http"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
	"github.com/attendlab/punch-agent-go/internal/domain/capture"
	"github.com/attendlab/punch-agent-go/internal/domain/punch"
	"github.com/attendlab/punch-agent-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var subErr *attendance.SubmissionError
	if errors.As(err, &subErr) {
		BadGateway(w, subErr.Error())
		return
	}

	switch {
	// Punch domain errors
	case errors.Is(err, punch.ErrAttemptInFlight):
		Conflict(w, "A punch attempt is already in progress")

	// Capture domain errors
	case errors.Is(err, capture.ErrPermissionDenied):
		Forbidden(w, err.Error())
	case errors.Is(err, capture.ErrUnavailable):
		BadRequest(w, err.Error(), nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrNoRecordForDate):
		NotFound(w, "No attendance record for today")
	case errors.Is(err, attendance.ErrMalformedRecord):
		BadGateway(w, "Attendance record from server could not be parsed")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
