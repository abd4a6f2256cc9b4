// Package dates holds the calendar semantics shared by the loader and the
// simulation driver. All dates at the system boundary are YYYY-MM-DD strings
// with no time-of-day component.
package dates

import "time"

// Layout is the canonical date format.
const Layout = "2006-01-02"

// Parse converts a YYYY-MM-DD string into a time.Time.
func Parse(value string) (time.Time, error) {
	return time.Parse(Layout, value)
}

// Format renders a time.Time as a YYYY-MM-DD string.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// IsPast reports whether current is past compare. A date only counts as past
// another when it is strictly more than one day later, so consecutive days
// compare as not-past. The simulation loop and the listing-date check both
// rely on this grace band.
func IsPast(current, compare time.Time) bool {
	return current.Sub(compare) > 24*time.Hour
}

// Today returns the current local date truncated to midnight.
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
