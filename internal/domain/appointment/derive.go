package appointment

import "sort"

// DefaultUpcomingLimit is the number of appointments shown on the dashboard.
const DefaultUpcomingLimit = 2

// FilterActive returns the active appointments, preserving order.
func FilterActive(list []Appointment) []Appointment {
	out := make([]Appointment, 0, len(list))
	for _, a := range list {
		if a.IsActive() {
			out = append(out, a)
		}
	}
	return out
}

// SortByDate returns a copy of list sorted ascending by date. The sort is
// stable: equal dates keep payload order. Appointments without a parseable
// date go last.
func SortByDate(list []Appointment) []Appointment {
	out := make([]Appointment, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case !a.HasDate():
			return false
		case !b.HasDate():
			return true
		default:
			return a.Date.Before(b.Date)
		}
	})
	return out
}

// ActiveByDate filters to active appointments and sorts them by date.
func ActiveByDate(list []Appointment) []Appointment {
	return SortByDate(FilterActive(list))
}

// NextSession returns the earliest active appointment, or nil when there is
// none.
func NextSession(list []Appointment) *Appointment {
	active := ActiveByDate(list)
	if len(active) == 0 {
		return nil
	}
	next := active[0]
	return &next
}

// Upcoming returns at most limit active appointments in date order.
// A non-positive limit means DefaultUpcomingLimit.
func Upcoming(list []Appointment, limit int) []Appointment {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	active := ActiveByDate(list)
	if len(active) > limit {
		active = active[:limit]
	}
	return active
}
