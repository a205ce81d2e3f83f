package wellness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/wellness-hub/internal/domain/appointment"
	"github.com/campuscare/wellness-hub/internal/domain/assessment"
	"github.com/campuscare/wellness-hub/internal/domain/mood"
)

// echoResolver renders "key{a=1,b=2}" so tests can see the parameters.
var echoResolver = ResolverFunc(func(key string, params map[string]string) string {
	if len(params) == 0 {
		return key
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, params[k])
	}
	return key + "{" + strings.Join(parts, ",") + "}"
})

func fixtureInput() Input {
	ts := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	return Input{
		History: []mood.Checkin{
			{ID: 1, Timestamp: ts, MoodScore: 30, MoodEmoji: "😕"},
			{ID: 2, Timestamp: ts.Add(time.Hour), MoodScore: 85, MoodEmoji: "😊", Notes: "slept well"},
		},
		Appointments: []appointment.Appointment{
			{ID: "a", Status: appointment.StatusCancelled, Date: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)},
			{ID: "b", Status: appointment.StatusBooked, Date: time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC), Time: "11:00"},
			{ID: "c", Status: appointment.StatusConfirmed, Date: time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), Time: "14:00", Counsellor: "Dr. Reyes"},
			{ID: "d", Status: appointment.StatusPending, Date: time.Date(2025, 4, 20, 0, 0, 0, 0, time.UTC)},
		},
		Assessments: []assessment.Result{
			{ID: "t1", TestType: "PHQ-9", Score: 12, Severity: "Moderate"},
			{ID: "t2", TestType: "GAD-7", Score: 2, Severity: "unknown"},
		},
		Resolver: echoResolver,
		Vitals:   DefaultVitals(),
	}
}

func TestCompose_Fields(t *testing.T) {
	snap := Compose(fixtureInput())

	require.NotNil(t, snap.RecentMood)
	assert.Equal(t, int64(2), snap.RecentMood.ID)
	assert.Equal(t, "mood.excellent", snap.RecentMoodLabel)
	assert.Equal(t, 2, snap.CheckinCount)
	assert.Equal(t, "dashboard.checkinPrompt.lastCheckin{mood=mood.excellent}", snap.CheckinPrompt)

	require.NotNil(t, snap.NextSession)
	assert.Equal(t, "c", snap.NextSession.ID)
	assert.Equal(t, "wellness.nextSessionWithCounsellor{counsellor=Dr. Reyes,date=2025-04-05,time=14:00}", snap.NextSessionText)
	assert.Equal(t, "wellness.lastSessionDefault", snap.LastSessionText)

	require.Len(t, snap.Upcoming, 2)
	assert.Equal(t, "c", snap.Upcoming[0].ID)
	assert.Equal(t, "b", snap.Upcoming[1].ID)
	assert.Equal(t, "dashboard.upcomingSessions.sessionWith{counsellor=wellness.defaultCounsellor}", snap.Upcoming[1].SessionWith)

	require.Len(t, snap.RecentAssessments, 2)
	assert.Equal(t, "amber", snap.RecentAssessments[0].Style.Tone)
	assert.Equal(t, "gray", snap.RecentAssessments[1].Style.Tone)

	assert.InDelta(t, 7.0, snap.SleepAverage, 0.001)
}

func TestCompose_NoActiveAppointmentUsesPlaceholder(t *testing.T) {
	in := fixtureInput()
	in.Appointments = []appointment.Appointment{
		{ID: "a", Status: appointment.StatusCompleted, Date: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)},
	}

	snap := Compose(in)
	assert.Nil(t, snap.NextSession)
	assert.Equal(t, "wellness.nextSessionDefault", snap.NextSessionText)
	assert.Empty(t, snap.Upcoming)
}

func TestCompose_EmptyHistory(t *testing.T) {
	snap := Compose(Input{})

	assert.Nil(t, snap.RecentMood)
	assert.Zero(t, snap.CheckinCount)
	assert.Equal(t, KeyPromptNoCheckin, snap.CheckinPrompt)
	assert.Equal(t, KeyNextSessionDefault, snap.NextSessionText)
	assert.NotNil(t, snap.Upcoming)
	assert.NotNil(t, snap.RecentAssessments)
}

func TestCompose_Idempotent(t *testing.T) {
	in := fixtureInput()

	first := Compose(in)
	second := Compose(in)
	assert.True(t, reflect.DeepEqual(first, second))
}

func TestSeverityStyle(t *testing.T) {
	tests := []struct {
		in   assessment.Severity
		tone string
	}{
		{"low", "green"},
		{"LOW", "green"},
		{"Moderate", "amber"},
		{"high", "orange"},
		{" Critical ", "red"},
		{"", "gray"},
		{"severe", "gray"},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.tone, SeverityStyle(tt.in).Tone)
		})
	}
}
