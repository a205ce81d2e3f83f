// Package mood contains the mood check-in model of a student: the check-in
// entity, the score classifier and the persistent history store.
package mood

import (
	"time"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// ValidScore reports whether score lies in [MinScore, MaxScore].
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// Checkin is a single user-submitted mood report.
// A check-in is immutable once created: the emoji is derived from the score
// at creation time and never recomputed, so a classifier change does not
// alter history.
type Checkin struct {
	// ID is the creation time in Unix milliseconds, bumped when needed so
	// that IDs within one history are strictly increasing.
	ID int64 `json:"id"`

	// Timestamp is the creation instant.
	Timestamp time.Time `json:"date"`

	// MoodScore is in [0,100].
	MoodScore int `json:"moodScore"`

	// MoodEmoji is the glyph assigned at creation.
	MoodEmoji string `json:"moodEmoji"`

	// Notes is optional free text.
	Notes string `json:"notes,omitempty"`
}

// Classification returns the current classification of the check-in score.
// Used for labels of historical entries; the stored emoji is left untouched.
func (c Checkin) Classification() Classification {
	return Classify(c.MoodScore)
}

// Latest returns the most recent check-in of a history, or nil.
// History is append-only, so the last element is the most recent.
func Latest(history []Checkin) *Checkin {
	if len(history) == 0 {
		return nil
	}
	latest := history[len(history)-1]
	return &latest
}

// NewestFirst returns a copy of history in reverse chronological order.
func NewestFirst(history []Checkin) []Checkin {
	out := make([]Checkin, len(history))
	for i, c := range history {
		out[len(history)-1-i] = c
	}
	return out
}
