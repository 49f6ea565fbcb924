package schedule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BookingWindowDays is how far in advance the gym opens bookings. A run on
// day D books a class on D+9; the offset must match the venue's policy.
const BookingWindowDays = 9

// Entry is one weekly schedule slot: the class to book on a given weekday.
type Entry struct {
	ClassName string
	Time      string // HH:MM, venue-local
	// Occurrence disambiguates multiple same-named classes on one day,
	// 1-based, by position on the booking page.
	Occurrence int
}

func (e Entry) Validate() error {
	if e.ClassName == "" {
		return fmt.Errorf("class name required")
	}
	if _, err := time.Parse("15:04", e.Time); err != nil {
		return fmt.Errorf("time %q is not HH:MM", e.Time)
	}
	if e.Occurrence < 1 {
		return fmt.Errorf("occurrence must be >= 1 (got %d)", e.Occurrence)
	}
	return nil
}

// Weekly maps a weekday to the class booked on that day. Days with no
// entry are skipped entirely.
type Weekly map[time.Weekday]Entry

// ParseWeekly parses the CLASS_SCHEDULE JSON value, a map from weekday
// index ("0"=Sunday .. "6"=Saturday) to an entry string of the form
// "ClassName HH:MM N". Entries are split and validated here, once, so a
// malformed schedule fails at startup rather than mid-run.
func ParseWeekly(raw string) (Weekly, error) {
	var m map[string]string
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("schedule is not a JSON object: %w", err)
	}

	w := make(Weekly, len(m))
	for k, v := range m {
		day, err := strconv.Atoi(k)
		if err != nil || day < 0 || day > 6 {
			return nil, fmt.Errorf("schedule key %q is not a weekday index 0-6", k)
		}
		e, err := parseEntry(v)
		if err != nil {
			return nil, fmt.Errorf("schedule entry for %s: %w", time.Weekday(day), err)
		}
		w[time.Weekday(day)] = e
	}
	return w, nil
}

// parseEntry splits "ClassName HH:MM N": the last token is the occurrence
// index, the second-to-last the start time, everything before is the class
// name (which may itself contain spaces).
func parseEntry(s string) (Entry, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return Entry{}, fmt.Errorf("%q: want \"ClassName HH:MM N\"", s)
	}
	occ, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return Entry{}, fmt.Errorf("%q: occurrence index %q is not a number", s, fields[len(fields)-1])
	}
	e := Entry{
		ClassName:  strings.Join(fields[:len(fields)-2], " "),
		Time:       fields[len(fields)-2],
		Occurrence: occ,
	}
	if err := e.Validate(); err != nil {
		return Entry{}, fmt.Errorf("%q: %w", s, err)
	}
	return e, nil
}

// Target is the single class a run will try to book.
type Target struct {
	ClassName  string
	Time       string
	Date       time.Time
	Occurrence int
}

// DateString returns the date as it appears in the site's date-selector
// control values.
func (t Target) DateString() string { return t.Date.Format("2006-01-02") }

// HumanDate formats the date for log lines and notifications.
func (t Target) HumanDate() string { return t.Date.Format("Monday 2 January 2006") }

// Resolve returns the booking target for a run happening on today: the
// schedule entry for the weekday falling BookingWindowDays ahead. ok is
// false when no class is scheduled that day.
func Resolve(w Weekly, today time.Time) (Target, bool) {
	date := today.AddDate(0, 0, BookingWindowDays)
	e, ok := w[date.Weekday()]
	if !ok {
		return Target{Date: date}, false
	}
	return Target{
		ClassName:  e.ClassName,
		Time:       e.Time,
		Date:       date,
		Occurrence: e.Occurrence,
	}, true
}
