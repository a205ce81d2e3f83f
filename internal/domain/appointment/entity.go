// Package appointment models counselling appointments as read from the
// remote care service. Appointments are read-only to this service.
package appointment

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/campuscare/wellness-hub/pkg/timeutil"
)

// Status is an appointment status as sent by the care service.
// Unknown values are kept verbatim.
type Status string

const (
	StatusBooked    Status = "Booked"
	StatusConfirmed Status = "Confirmed"
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// IsActive reports whether an appointment with this status is still to take
// place. Matching is exact, as sent by the care service.
func (s Status) IsActive() bool {
	switch s {
	case StatusBooked, StatusConfirmed, StatusPending:
		return true
	default:
		return false
	}
}

// Appointment is a counselling session booked for a student.
type Appointment struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Time       string    `json:"time"`
	Status     Status    `json:"status"`
	Counsellor string    `json:"counsellor,omitempty"`
	Notes      string    `json:"notes,omitempty"`

	// RawDate is the date as received. Kept when it could not be parsed so
	// the value can still be shown.
	RawDate string `json:"rawDate,omitempty"`
}

// IsActive reports whether the appointment is eligible as a next session.
func (a Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// HasDate reports whether Date was parsed.
func (a Appointment) HasDate() bool {
	return !a.Date.IsZero()
}

// wireAppointment is the care service payload. Document stores send the
// identifier as "_id".
type wireAppointment struct {
	MongoID    string          `json:"_id"`
	ID         json.RawMessage `json:"id"`
	Date       string          `json:"date"`
	Time       string          `json:"time"`
	Status     string          `json:"status"`
	Counsellor json.RawMessage `json:"counsellor"`
	Notes      string          `json:"notes"`
}

// UnmarshalJSON accepts both the care service payload and the default
// encoding of Appointment.
func (a *Appointment) UnmarshalJSON(data []byte) error {
	var w wireAppointment
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*a = Appointment{
		ID:         w.MongoID,
		Time:       w.Time,
		Status:     Status(w.Status),
		Counsellor: counsellorName(w.Counsellor),
		Notes:      w.Notes,
	}
	if a.ID == "" {
		a.ID = rawID(w.ID)
	}

	if w.Date != "" {
		if t, err := timeutil.ParseFlexible(w.Date); err == nil {
			a.Date = t
		} else {
			a.RawDate = w.Date
		}
	}
	return nil
}

// counsellorName accepts either a plain string or a populated reference
// object carrying a name.
func counsellorName(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var obj struct {
		Name     string `json:"name"`
		FullName string `json:"fullName"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Name != "" {
			return obj.Name
		}
		return obj.FullName
	}
	return ""
}

func rawID(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
