// Package timeutil provides campus-timezone aware date helpers used when
// presenting appointment and check-in dates.
// No external dependencies - uses only standard library.
package timeutil

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

var campusLoc atomic.Pointer[time.Location]

func init() {
	campusLoc.Store(time.UTC)
}

// SetLocation sets the campus timezone used for formatting.
func SetLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	campusLoc.Store(loc)
}

// LoadLocation resolves an IANA name ("Europe/London") or a fixed offset
// ("+05:00") and installs it as the campus timezone.
func LoadLocation(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(name, "UTC") {
		SetLocation(time.UTC)
		return nil
	}

	if name[0] == '+' || name[0] == '-' {
		t, err := time.Parse("-07:00", name)
		if err != nil {
			return fmt.Errorf("timeutil: invalid offset %q: %w", name, err)
		}
		_, offset := t.Zone()
		SetLocation(time.FixedZone(name, offset))
		return nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return fmt.Errorf("timeutil: unknown timezone %q: %w", name, err)
	}
	SetLocation(loc)
	return nil
}

// Location returns the campus timezone.
func Location() *time.Location {
	return campusLoc.Load()
}

// Now returns the current time in the campus timezone.
func Now() time.Time {
	return time.Now().In(Location())
}

// ToCampus converts a time to the campus timezone.
func ToCampus(t time.Time) time.Time {
	return t.In(Location())
}

// Common formats.
const (
	// FormatDate is the ISO date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"

	// FormatTime is the 24-hour time format (HH:MM).
	FormatTime = "15:04"

	// FormatDateTime is the combined date and time format.
	FormatDateTime = "2006-01-02 15:04"
)

// FormatDateStr formats a time as YYYY-MM-DD in the campus timezone.
// The zero time yields an empty string.
func FormatDateStr(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return ToCampus(t).Format(FormatDate)
}

// FormatTimeStr formats a time as HH:MM in the campus timezone.
func FormatTimeStr(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return ToCampus(t).Format(FormatTime)
}

// ErrUnparseableTime is returned by ParseFlexible when no layout matches.
var ErrUnparseableTime = errors.New("timeutil: unparseable time")

var flexibleLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	FormatDate,
}

// ParseFlexible parses the date layouts remote services commonly send:
// RFC3339 with or without fraction, a zone-less datetime or a bare date.
// Zone-less values are interpreted in the campus timezone.
func ParseFlexible(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range flexibleLayouts {
		if t, err := time.ParseInLocation(layout, value, Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTime, value)
}

// StartOfDay returns midnight of t's day in the campus timezone.
func StartOfDay(t time.Time) time.Time {
	c := ToCampus(t)
	return time.Date(c.Year(), c.Month(), c.Day(), 0, 0, 0, 0, Location())
}

// IsSameDay checks if two times fall on the same campus day.
func IsSameDay(t1, t2 time.Time) bool {
	a1, a2 := ToCampus(t1), ToCampus(t2)
	return a1.Year() == a2.Year() && a1.YearDay() == a2.YearDay()
}

// DaysSince returns the number of whole campus days between t and now.
func DaysSince(t time.Time) int {
	return DaysBetween(t, Now())
}

// DaysBetween returns the number of calendar days from t1 to t2.
func DaysBetween(t1, t2 time.Time) int {
	d := StartOfDay(t2).Sub(StartOfDay(t1))
	return int(d.Hours() / 24)
}

// FormatRelative returns a short English relative time ("3 days ago").
func FormatRelative(t, now time.Time) string {
	d := now.Sub(t)
	future := d < 0
	if future {
		d = -d
	}

	var s string
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		s = plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		s = plural(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		s = plural(int(d.Hours()/24), "day")
	default:
		s = plural(int(d.Hours()/24/30), "month")
	}

	if future {
		return "in " + s
	}
	return s + " ago"
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
