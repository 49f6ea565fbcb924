package booking

// Outcome classifies how a booking run ended. Exactly one outcome is
// produced per run.
type Outcome int

const (
	// OutcomeNone means the run ended before any attempt was classified,
	// e.g. no class is scheduled for the target date.
	OutcomeNone Outcome = iota
	OutcomeAlreadyBooked
	OutcomeBooked
	OutcomeWaitlisted
	// OutcomeCanceled: the booking API reported the attendee record as
	// canceled. Counts as a failed attempt, eligible for retry.
	OutcomeCanceled
	// OutcomeUnknown: the booking API returned a state this code does
	// not recognize. Logged and treated as a failed attempt.
	OutcomeUnknown
	OutcomeNotFound
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeAlreadyBooked:
		return "already-booked"
	case OutcomeBooked:
		return "booked"
	case OutcomeWaitlisted:
		return "waitlisted"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeUnknown:
		return "unknown"
	case OutcomeNotFound:
		return "not-found"
	case OutcomeFailed:
		return "failed"
	}
	return "invalid"
}

// Terminal reports whether the outcome ends the run immediately,
// regardless of remaining retry budget.
func (o Outcome) Terminal() bool {
	switch o {
	case OutcomeAlreadyBooked, OutcomeBooked, OutcomeWaitlisted, OutcomeNotFound:
		return true
	}
	return false
}
