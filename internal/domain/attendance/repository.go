package attendance

import "context"

// AttendanceAPI is the remote attendance service this client talks to.
// It takes the place a database repository would hold in a server-side
// deployment; the server is always the source of truth.
type AttendanceAPI interface {
	// SubmitPunch records a check-in or check-out with proof images and
	// an optional location. Non-2xx responses come back as a
	// *SubmissionError carrying the server's message verbatim.
	SubmitPunch(ctx context.Context, req SubmitPunchRequest) (SubmitPunchResponse, error)

	// FetchDay retrieves the raw attendance record for one employee on
	// one date (YYYY-MM-DD). Returns nil when the server has no record
	// for that date.
	FetchDay(ctx context.Context, siteID, userID, date string) (*RawDayRecord, error)
}
