// Package dateutil holds the calendar-day helpers shared by the scheduler and stores.
// Days are carried as YYYY-MM-DD strings so they sort chronologically.
package dateutil

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Layout is the persisted day format.
const Layout = "2006-01-02"

// Format renders t as a day string in t's own location.
func Format(t time.Time) string {
	return t.Format(Layout)
}

// Today returns the current day in loc.
func Today(loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return Format(time.Now().In(loc))
}

// Parse reads a day string as midnight UTC.
func Parse(day string) (time.Time, error) {
	t, err := time.Parse(Layout, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse day %q: %w", day, err)
	}
	return t, nil
}

// Valid reports whether day is a well-formed day string.
func Valid(day string) bool {
	_, err := time.Parse(Layout, day)
	return err == nil
}

// DaysBetween returns the absolute whole-day distance between two days.
// The result is symmetric: DaysBetween(a, b) == DaysBetween(b, a).
func DaysBetween(a, b string) (int, error) {
	ta, err := Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return int(math.Round(math.Abs(ta.Sub(tb).Hours() / 24))), nil
}

// AddDays shifts day by n days (n may be negative).
func AddDays(day string, n int) (string, error) {
	t, err := Parse(day)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// Human renders a day as "Monday, January 2, 2006".
func Human(day string) string {
	t, err := Parse(day)
	if err != nil {
		return day
	}
	return t.Format("Monday, January 2, 2006")
}

// NewID returns an opaque unique identifier.
func NewID() string {
	return uuid.NewString()
}
