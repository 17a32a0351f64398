package attendance

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/attendlab/punch-agent-go/internal/domain/attendance"
)

type AttendanceServiceImpl struct {
	log *slog.Logger

	// now is injectable so reconciliation stays deterministic in
	// tests; it is only consulted when the server omits the date.
	now func() time.Time
}

func NewAttendanceService(log *slog.Logger) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		log: log,
		now: time.Now,
	}
}

var _ attendance.AttendanceService = (*AttendanceServiceImpl)(nil)

var (
	hoursRe = regexp.MustCompile(`(\d+)\s*h`)
	minsRe  = regexp.MustCompile(`(\d+)\s*m`)

	// Already human-formatted times pass through untouched.
	clockRe = regexp.MustCompile(`^\d{1,2}:\d{2}`)
)

// Reconcile implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Reconcile(raw attendance.RawDayRecord) attendance.AttendanceDay {
	day := attendance.AttendanceDay{
		Date:            a.recordDate(raw),
		PrimaryCheckIn:  normalizeTimePtr(raw.CheckInTime),
		PrimaryCheckOut: normalizeTimePtr(raw.CheckOutTime),
		Status:          mapStatus(raw.Status, raw.IsLate),
		Entries:         mapEntries(raw.AllEntries()),
	}

	day.TotalHours = totalHours(day.Entries)
	if day.TotalHours == 0 && raw.ProductionHours != nil {
		day.TotalHours = parseDurationHours(*raw.ProductionHours)
	} else if raw.ProductionHours != nil {
		reported := parseDurationHours(*raw.ProductionHours)
		if diff := day.TotalHours - reported; diff > 0.01 || diff < -0.01 {
			a.log.Warn("entry minutes disagree with server aggregate",
				"from_entries", day.TotalHours,
				"reported", reported)
		}
	}

	day.LastAction = mapLastAction(raw.LastLoginStatus)
	if day.LastAction == attendance.LastActionUnknown && len(day.Entries) > 0 {
		if day.HasOpenEntry() {
			day.LastAction = attendance.LastActionCheckedIn
		} else {
			day.LastAction = attendance.LastActionCheckedOut
		}
	}

	return day
}

// Decide implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Decide(day *attendance.AttendanceDay) attendance.Action {
	return a.DecideDetail(day).Action
}

// DecideDetail implements attendance.AttendanceService. The primary
// rule follows the server's last-action metadata; the fallback rule
// derives the state from check-in/out presence. When both are
// computable and disagree, the divergence is flagged and logged rather
// than silently picking one.
func (a *AttendanceServiceImpl) DecideDetail(day *attendance.AttendanceDay) attendance.Decision {
	if day == nil {
		return attendance.Decision{Action: attendance.ActionCheckIn}
	}

	presenceCheckedIn := day.PrimaryCheckIn != nil && day.PrimaryCheckOut == nil

	if day.LastAction == attendance.LastActionUnknown {
		action := attendance.ActionCheckIn
		if presenceCheckedIn {
			action = attendance.ActionCheckOut
		}
		return attendance.Decision{Action: action, FallbackUsed: true}
	}

	metadataCheckedIn := day.LastAction == attendance.LastActionCheckedIn
	decision := attendance.Decision{Action: attendance.ActionCheckIn}
	if metadataCheckedIn {
		decision.Action = attendance.ActionCheckOut
	}

	if metadataCheckedIn != presenceCheckedIn {
		decision.Divergent = true
		a.log.Warn("last-action metadata disagrees with check-in/out presence",
			"last_action", day.LastAction,
			"primary_check_in_set", day.PrimaryCheckIn != nil,
			"primary_check_out_set", day.PrimaryCheckOut != nil)
	}

	return decision
}

func (a *AttendanceServiceImpl) recordDate(raw attendance.RawDayRecord) string {
	if raw.Date != nil && strings.TrimSpace(*raw.Date) != "" {
		return *raw.Date
	}
	return a.now().Format("2006-01-02")
}

// parseDurationHours turns a "<h>h <m>m" duration string into
// fractional hours. A missing hour or minute group counts as zero, not
// an error.
func parseDurationHours(s string) float64 {
	var hours, mins int
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		hours, _ = strconv.Atoi(m[1])
	}
	if m := minsRe.FindStringSubmatch(s); m != nil {
		mins, _ = strconv.Atoi(m[1])
	}
	return float64(hours) + float64(mins)/60
}

// normalizeTime reformats an ISO datetime to 12-hour local time.
// Strings that already look human-formatted pass through unchanged,
// and unparseable input falls back to the raw string: one bad field
// must not blank out an otherwise-valid day.
func normalizeTime(s string) string {
	upper := strings.ToUpper(s)
	if strings.Contains(upper, "AM") || strings.Contains(upper, "PM") || clockRe.MatchString(s) {
		return s
	}

	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Local().Format("3:04 PM")
		}
	}
	return s
}

func normalizeTimePtr(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	normalized := normalizeTime(*s)
	return &normalized
}

func mapStatus(status *string, isLate *bool) attendance.DayStatus {
	s := ""
	if status != nil {
		s = strings.ToLower(strings.TrimSpace(*status))
	}

	switch s {
	case "present":
		if isLate != nil && *isLate {
			return attendance.StatusLate
		}
		return attendance.StatusPresent
	case "late":
		return attendance.StatusLate
	case "half_day", "halfday", "half day":
		return attendance.StatusHalfDay
	default:
		return attendance.StatusAbsent
	}
}

func mapLastAction(s *string) attendance.LastAction {
	if s == nil {
		return attendance.LastActionUnknown
	}
	switch strings.ToLower(strings.TrimSpace(*s)) {
	case "checked_in", "checkin", "check_in", "in":
		return attendance.LastActionCheckedIn
	case "checked_out", "checkout", "check_out", "out":
		return attendance.LastActionCheckedOut
	default:
		return attendance.LastActionUnknown
	}
}

// mapEntries converts raw sub-entries across the two key naming
// schemes the server has shipped. For each field both keys are checked
// and the first non-null wins.
func mapEntries(raws []attendance.RawSubEntry) []attendance.PunchEntry {
	entries := make([]attendance.PunchEntry, 0, len(raws))
	for i, raw := range raws {
		id := raw.ID
		if id == "" {
			id = fmt.Sprintf("entry-%d", i)
		}
		entries = append(entries, attendance.PunchEntry{
			ID:             id,
			CheckInTime:    normalizeTimePtr(firstNonNil(raw.CheckInTime, raw.CheckIn)),
			CheckOutTime:   normalizeTimePtr(firstNonNil(raw.CheckOutTime, raw.CheckOut)),
			WorkingMinutes: firstNonNilInt(raw.WorkingMinutes, raw.WorkedMinutes),
			Remarks:        raw.Remarks,
		})
	}
	return entries
}

func firstNonNil(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstNonNilInt(values ...*int) int {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func totalHours(entries []attendance.PunchEntry) float64 {
	var minutes int
	for _, e := range entries {
		minutes += e.WorkingMinutes
	}
	return float64(minutes) / 60
}
