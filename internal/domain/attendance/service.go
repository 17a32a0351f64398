package attendance

// Decision is the full output of the punch decision engine: the chosen
// action plus how it was reached, so callers can surface the
// metadata-vs-presence divergence instead of silently picking a rule.
type Decision struct {
	Action       Action
	FallbackUsed bool
	Divergent    bool
}

// AttendanceService normalizes raw server records and decides the next
// punch direction from the reconciled state.
type AttendanceService interface {
	// Reconcile converts a raw server record into an AttendanceDay.
	// It never fails; bad fields degrade to defaults or raw strings.
	Reconcile(raw RawDayRecord) AttendanceDay

	// Decide returns the next action for the given day. A nil day or a
	// day whose last action is not checked-in decides check-in.
	Decide(day *AttendanceDay) Action

	// DecideDetail is Decide plus divergence reporting between the
	// server's last-action metadata and the check-in/out presence rule.
	DecideDetail(day *AttendanceDay) Decision
}
