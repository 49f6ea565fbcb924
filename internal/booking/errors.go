package booking

import "errors"

var (
	// ErrLogin is fatal: a failed credential flow does not self-heal.
	ErrLogin = errors.New("login failed")
	// ErrClassNotFound means the page shows fewer occurrences of the
	// class than the schedule expects. Terminal: retrying cannot make
	// a class appear.
	ErrClassNotFound = errors.New("class not found")
	// ErrTransient marks navigation failures worth another attempt:
	// slow loads, the date column not reachable, pagination controls
	// vanishing mid-flight.
	ErrTransient = errors.New("transient navigation failure")
	// ErrBookingFailed covers a failed submission: missing book control,
	// unexpected state from the booking API, or no confirmation on
	// either channel. The engine never retries these itself, but the
	// outer loop may restart the whole locate-and-book sequence.
	ErrBookingFailed = errors.New("booking failed")
)

// Retryable is the predicate the outer retry loop runs on attempt
// errors.
func Retryable(err error) bool {
	return !errors.Is(err, ErrLogin) && !errors.Is(err, ErrClassNotFound)
}
