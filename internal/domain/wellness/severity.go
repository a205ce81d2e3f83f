package wellness

import "github.com/campuscare/wellness-hub/internal/domain/assessment"

// Style is a colour hint for presenting a severity badge. Values are
// palette tokens, e.g. "green-100".
type Style struct {
	Tone       string `json:"tone"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

var (
	styleLow      = Style{Tone: "green", Background: "green-100", Text: "green-800"}
	styleModerate = Style{Tone: "amber", Background: "amber-100", Text: "amber-800"}
	styleHigh     = Style{Tone: "orange", Background: "orange-100", Text: "orange-800"}
	styleCritical = Style{Tone: "red", Background: "red-100", Text: "red-800"}
	styleNeutral  = Style{Tone: "gray", Background: "gray-100", Text: "gray-800"}
)

// SeverityStyle maps a severity to its style, ignoring case.
// Unknown severities get the neutral style.
func SeverityStyle(s assessment.Severity) Style {
	switch s.Normalized() {
	case assessment.SeverityLow:
		return styleLow
	case assessment.SeverityModerate:
		return styleModerate
	case assessment.SeverityHigh:
		return styleHigh
	case assessment.SeverityCritical:
		return styleCritical
	default:
		return styleNeutral
	}
}
