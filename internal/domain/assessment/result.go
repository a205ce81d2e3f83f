// Package assessment models scored self-assessment results (PHQ-9, GAD-7 and
// similar) as returned by the care service.
package assessment

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/campuscare/wellness-hub/pkg/timeutil"
)

// DefaultLimit is the number of recent results requested for the dashboard.
const DefaultLimit = 3

// Severity is the severity band reported with a result. The care service
// does not normalise case.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Normalized returns the lower-cased, trimmed severity.
func (s Severity) Normalized() Severity {
	return Severity(strings.ToLower(strings.TrimSpace(string(s))))
}

// Result is one assessment outcome.
type Result struct {
	ID        string    `json:"id"`
	TestType  string    `json:"testType"`
	Score     float64   `json:"score"`
	Severity  Severity  `json:"severity"`
	CreatedAt time.Time `json:"createdAt"`
}

type wireResult struct {
	MongoID   string          `json:"_id"`
	ID        json.RawMessage `json:"id"`
	TestType  string          `json:"testType"`
	Score     float64         `json:"score"`
	Severity  string          `json:"severity"`
	CreatedAt string          `json:"createdAt"`
}

// UnmarshalJSON accepts "_id" or "id" and a flexible createdAt layout.
func (r *Result) UnmarshalJSON(data []byte) error {
	var w wireResult
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = Result{
		ID:       w.MongoID,
		TestType: w.TestType,
		Score:    w.Score,
		Severity: Severity(w.Severity),
	}
	if r.ID == "" && len(w.ID) > 0 && string(w.ID) != "null" {
		var s string
		if json.Unmarshal(w.ID, &s) == nil {
			r.ID = s
		} else {
			r.ID = string(w.ID)
		}
	}
	if w.CreatedAt != "" {
		if t, err := timeutil.ParseFlexible(w.CreatedAt); err == nil {
			r.CreatedAt = t
		}
	}
	return nil
}

// ResultsEnvelope is the body of the results endpoint.
type ResultsEnvelope struct {
	Tests []Result `json:"tests"`
}
