package attendance

// Action is the punch direction decided for the next attempt.
type Action string

const (
	ActionCheckIn  Action = "check_in"
	ActionCheckOut Action = "check_out"
)

// LastAction is the server-reported state of the most recent punch.
type LastAction string

const (
	LastActionCheckedIn  LastAction = "checked_in"
	LastActionCheckedOut LastAction = "checked_out"
	LastActionUnknown    LastAction = "unknown"
)

// DayStatus is the normalized attendance status for a working day.
type DayStatus string

const (
	StatusPresent DayStatus = "present"
	StatusAbsent  DayStatus = "absent"
	StatusLate    DayStatus = "late"
	StatusHalfDay DayStatus = "half_day"
)

// GeoFix is a resolved location, rounded to 6 decimal places.
type GeoFix struct {
	Latitude  float64
	Longitude float64
}

// PunchEntry is one check-in/check-out pair as recorded server-side.
// A day may carry zero or many of these for employees who punch
// multiple times.
type PunchEntry struct {
	ID             string
	CheckInTime    *string
	CheckOutTime   *string
	WorkingMinutes int
	Remarks        *string
}

// AttendanceDay is the reconciled view of one day's server record.
// It is always rebuilt wholesale from a fresh fetch and replaced as a
// unit, never mutated field by field.
type AttendanceDay struct {
	Date            string
	PrimaryCheckIn  *string
	PrimaryCheckOut *string
	Status          DayStatus
	TotalHours      float64
	LastAction      LastAction
	Entries         []PunchEntry
}

// HasOpenEntry reports whether the most recent entry has a check-in
// with no matching check-out.
func (d *AttendanceDay) HasOpenEntry() bool {
	if len(d.Entries) == 0 {
		return false
	}
	last := d.Entries[len(d.Entries)-1]
	return last.CheckInTime != nil && last.CheckOutTime == nil
}
