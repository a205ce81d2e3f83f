// Package wellness derives the dashboard snapshot of a student from mood
// history, appointments and assessment results. Nothing here is stored:
// Compose is a pure function of its input.
package wellness

import (
	"math"

	"github.com/campuscare/wellness-hub/internal/domain/appointment"
	"github.com/campuscare/wellness-hub/internal/domain/assessment"
	"github.com/campuscare/wellness-hub/internal/domain/mood"
	"github.com/campuscare/wellness-hub/pkg/timeutil"
)

// Text keys resolved by Compose.
const (
	KeyNextSessionWithCounsellor = "wellness.nextSessionWithCounsellor"
	KeyNextSessionDefault        = "wellness.nextSessionDefault"
	KeyLastSessionDefault        = "wellness.lastSessionDefault"
	KeyDefaultCounsellor         = "wellness.defaultCounsellor"
	KeySessionWith               = "dashboard.upcomingSessions.sessionWith"
	KeyPromptLastCheckin         = "dashboard.checkinPrompt.lastCheckin"
	KeyPromptNoCheckin           = "dashboard.checkinPrompt.noCheckin"
)

// TextResolver turns a text key and named parameters into display text.
// Implementations return the key itself when no text is known.
type TextResolver interface {
	Resolve(key string, params map[string]string) string
}

// ResolverFunc adapts a function to TextResolver.
type ResolverFunc func(key string, params map[string]string) string

// Resolve implements TextResolver.
func (f ResolverFunc) Resolve(key string, params map[string]string) string {
	return f(key, params)
}

// KeyResolver resolves every key to itself.
var KeyResolver TextResolver = ResolverFunc(func(key string, _ map[string]string) string { return key })

// Vitals are the self-reported wellbeing figures shown beside the mood card.
// They are not tracked yet, so callers pass DefaultVitals.
type Vitals struct {
	SleepHours  []float64 `json:"sleepHours"`
	StressLevel int       `json:"stressLevel"`
	EnergyLevel int       `json:"energyLevel"`
}

// DefaultVitals returns the fixed figures of a new dashboard.
func DefaultVitals() Vitals {
	return Vitals{
		SleepHours:  []float64{6.5, 7, 6, 7.5, 8, 7, 7.2},
		StressLevel: 3,
		EnergyLevel: 7,
	}
}

// SleepAverage returns the mean nightly sleep rounded to one decimal.
func (v Vitals) SleepAverage() float64 {
	if len(v.SleepHours) == 0 {
		return 0
	}
	var sum float64
	for _, h := range v.SleepHours {
		sum += h
	}
	return math.Round(sum/float64(len(v.SleepHours))*10) / 10
}

// UpcomingSession is an active appointment with its display line.
type UpcomingSession struct {
	appointment.Appointment
	SessionWith string `json:"sessionWith"`
	DateText    string `json:"dateText"`
}

// AssessmentSummary is an assessment result with its severity style.
type AssessmentSummary struct {
	assessment.Result
	Style Style `json:"style"`
}

// Snapshot is the derived view model of a student dashboard.
type Snapshot struct {
	RecentMood      *mood.Checkin `json:"recentMood"`
	RecentMoodLabel string        `json:"recentMoodLabel,omitempty"`
	CheckinCount    int           `json:"checkinCount"`
	CheckinPrompt   string        `json:"checkinPrompt"`

	NextSession     *appointment.Appointment `json:"nextSession"`
	NextSessionText string                   `json:"nextSessionText"`
	LastSessionText string                   `json:"lastSessionText"`
	Upcoming        []UpcomingSession        `json:"upcoming"`

	RecentAssessments []AssessmentSummary `json:"recentAssessments"`

	Vitals       Vitals  `json:"vitals"`
	SleepAverage float64 `json:"sleepAverage"`
}

// Input holds everything a snapshot is derived from.
type Input struct {
	History      []mood.Checkin
	Appointments []appointment.Appointment
	Assessments  []assessment.Result
	Resolver     TextResolver
	Vitals       Vitals

	// UpcomingLimit bounds Snapshot.Upcoming. Zero means the default.
	UpcomingLimit int
}

// Compose derives the snapshot. It reads no clock and holds no state, so two
// calls with equal input return equal snapshots.
func Compose(in Input) Snapshot {
	r := in.Resolver
	if r == nil {
		r = KeyResolver
	}

	snap := Snapshot{
		CheckinCount:      len(in.History),
		LastSessionText:   r.Resolve(KeyLastSessionDefault, nil),
		Upcoming:          []UpcomingSession{},
		RecentAssessments: []AssessmentSummary{},
		Vitals:            in.Vitals,
		SleepAverage:      in.Vitals.SleepAverage(),
	}

	if latest := mood.Latest(in.History); latest != nil {
		snap.RecentMood = latest
		snap.RecentMoodLabel = r.Resolve(latest.Classification().Label.TextKey(), nil)
		snap.CheckinPrompt = r.Resolve(KeyPromptLastCheckin, map[string]string{"mood": snap.RecentMoodLabel})
	} else {
		snap.CheckinPrompt = r.Resolve(KeyPromptNoCheckin, nil)
	}

	snap.NextSession = appointment.NextSession(in.Appointments)
	snap.NextSessionText = NextSessionText(snap.NextSession, r)

	for _, a := range appointment.Upcoming(in.Appointments, in.UpcomingLimit) {
		snap.Upcoming = append(snap.Upcoming, UpcomingSession{
			Appointment: a,
			SessionWith: r.Resolve(KeySessionWith, map[string]string{"counsellor": counsellorOrDefault(a, r)}),
			DateText:    dateText(a),
		})
	}

	for _, res := range in.Assessments {
		snap.RecentAssessments = append(snap.RecentAssessments, AssessmentSummary{
			Result: res,
			Style:  SeverityStyle(res.Severity),
		})
	}

	return snap
}

// NextSessionText resolves the next-session line, or the placeholder when
// there is no active appointment.
func NextSessionText(next *appointment.Appointment, r TextResolver) string {
	if next == nil {
		return r.Resolve(KeyNextSessionDefault, nil)
	}
	return r.Resolve(KeyNextSessionWithCounsellor, map[string]string{
		"date":       dateText(*next),
		"time":       next.Time,
		"counsellor": counsellorOrDefault(*next, r),
	})
}

func counsellorOrDefault(a appointment.Appointment, r TextResolver) string {
	if a.Counsellor != "" {
		return a.Counsellor
	}
	return r.Resolve(KeyDefaultCounsellor, nil)
}

func dateText(a appointment.Appointment) string {
	if a.HasDate() {
		return timeutil.FormatDateStr(a.Date)
	}
	return a.RawDate
}
