package attendance

import (
	"encoding/base64"

	"github.com/attendlab/punch-agent-go/internal/pkg/validator"
)

// ========================================
// RAW SERVER PAYLOAD
// ========================================

// RawSubEntry mirrors one sub-entry of the server's attendance payload.
// Two key naming schemes have shipped historically (check_in_time vs
// check_in); both are declared and the first non-null wins during
// reconciliation.
type RawSubEntry struct {
	ID             string  `json:"id"`
	CheckInTime    *string `json:"check_in_time"`
	CheckIn        *string `json:"check_in"`
	CheckOutTime   *string `json:"check_out_time"`
	CheckOut       *string `json:"check_out"`
	WorkingMinutes *int    `json:"working_minutes"`
	WorkedMinutes  *int    `json:"worked_minutes"`
	Remarks        *string `json:"remarks"`
}

// RawDayRecord mirrors the server's loosely-typed attendance record for
// one day. Every field is optional; reconciliation is responsible for
// defaults and normalization.
type RawDayRecord struct {
	Date            *string       `json:"date"`
	CheckInTime     *string       `json:"check_in_time"`
	CheckOutTime    *string       `json:"check_out_time"`
	ProductionHours *string       `json:"production_hours"`
	Status          *string       `json:"status"`
	IsLate          *bool         `json:"is_late"`
	LastLoginStatus *string       `json:"last_login_status"`
	SubEntries      []RawSubEntry `json:"sub_entries"`
	Entries         []RawSubEntry `json:"entries"`
}

// AllEntries returns whichever sub-entry array the server populated.
// sub_entries is the current key; entries is the legacy one.
func (r *RawDayRecord) AllEntries() []RawSubEntry {
	if len(r.SubEntries) > 0 {
		return r.SubEntries
	}
	return r.Entries
}

// ========================================
// REMOTE API DTOs
// ========================================

type SubmitPunchRequest struct {
	UserID    string   `json:"user_id"`
	Images    []string `json:"images"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	IsCheckIn bool     `json:"is_check_in"`
	ProjectID *string  `json:"project_id,omitempty"`
}

func (r *SubmitPunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{
			Field:   "user_id",
			Message: "user_id is required",
		})
	}

	if len(r.Images) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "images",
			Message: "at least one punch image is required",
		})
	}
	for _, img := range r.Images {
		if _, err := base64.StdEncoding.DecodeString(img); err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   "images",
				Message: "images must be base64 encoded",
			})
			break
		}
	}

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SubmitPunchResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Data    *RawDayRecord `json:"data,omitempty"`
}

// ========================================
// BRIDGE VIEW DTOs
// ========================================

// AttendanceDayResponse is the snapshot view served to the UI shell.
type AttendanceDayResponse struct {
	Date            string               `json:"date"`
	PrimaryCheckIn  *string              `json:"primary_check_in,omitempty"`
	PrimaryCheckOut *string              `json:"primary_check_out,omitempty"`
	Status          string               `json:"status"`
	TotalHours      float64              `json:"total_hours"`
	LastAction      string               `json:"last_action"`
	Entries         []PunchEntryResponse `json:"entries"`
}

type PunchEntryResponse struct {
	ID             string  `json:"id"`
	CheckInTime    *string `json:"check_in_time,omitempty"`
	CheckOutTime   *string `json:"check_out_time,omitempty"`
	WorkingMinutes int     `json:"working_minutes"`
	Remarks        *string `json:"remarks,omitempty"`
}

// PunchStatusResponse tells the UI what the next punch would do.
type PunchStatusResponse struct {
	HasRecordToday bool    `json:"has_record_today"`
	LastAction     string  `json:"last_action"`
	NextAction     string  `json:"next_action"`
	HasOpenEntry   bool    `json:"has_open_entry"`
	Divergent      bool    `json:"divergent"`
	TotalHours     float64 `json:"total_hours"`
}

// NewAttendanceDayResponse maps the reconciled day into the bridge view.
func NewAttendanceDayResponse(day AttendanceDay) AttendanceDayResponse {
	entries := make([]PunchEntryResponse, 0, len(day.Entries))
	for _, e := range day.Entries {
		entries = append(entries, PunchEntryResponse{
			ID:             e.ID,
			CheckInTime:    e.CheckInTime,
			CheckOutTime:   e.CheckOutTime,
			WorkingMinutes: e.WorkingMinutes,
			Remarks:        e.Remarks,
		})
	}
	return AttendanceDayResponse{
		Date:            day.Date,
		PrimaryCheckIn:  day.PrimaryCheckIn,
		PrimaryCheckOut: day.PrimaryCheckOut,
		Status:          string(day.Status),
		TotalHours:      day.TotalHours,
		LastAction:      string(day.LastAction),
		Entries:         entries,
	}
}
