package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/wellness-hub/internal/application/dashboard"
	"github.com/campuscare/wellness-hub/internal/domain/appointment"
	"github.com/campuscare/wellness-hub/internal/domain/assessment"
	"github.com/campuscare/wellness-hub/internal/domain/mood"
	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/internal/infrastructure/i18n"
	"github.com/campuscare/wellness-hub/internal/infrastructure/messaging"
	"github.com/campuscare/wellness-hub/internal/infrastructure/persistence/memory"
)

type fixedAppointments []appointment.Appointment

func (f fixedAppointments) FetchAppointments(context.Context, string) ([]appointment.Appointment, error) {
	return f, nil
}

type noAssessments struct{}

func (noAssessments) FetchAssessments(context.Context, string, int) ([]assessment.Result, error) {
	return nil, nil
}

func TestGetHistory_NewestFirstWithLabels(t *testing.T) {
	clock := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	store := mood.NewStore(memory.NewKVStore(), mood.StoreOptions{Now: func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}})
	ctx := context.Background()
	_, err := store.Append(ctx, "s1", 90, "", "")
	require.NoError(t, err)
	_, err = store.Append(ctx, "s1", 10, "rough", "")
	require.NoError(t, err)

	h := NewGetHistoryHandler(store, i18n.English())
	dto, err := h.Handle(ctx, GetHistoryQuery{StudentID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, 2, dto.Count)
	require.Len(t, dto.Checkins, 2)
	assert.Equal(t, 10, dto.Checkins[0].MoodScore)
	assert.Equal(t, mood.LabelPoor, dto.Checkins[0].Label)
	assert.Equal(t, "Poor", dto.Checkins[0].LabelText)
	assert.Equal(t, "Excellent", dto.Checkins[1].LabelText)
	assert.NotEmpty(t, dto.Checkins[0].Relative)
}

func TestGetHistory_UnknownStudentIsEmpty(t *testing.T) {
	store := mood.NewStore(memory.NewKVStore(), mood.StoreOptions{})
	dto, err := NewGetHistoryHandler(store, nil).Handle(context.Background(), GetHistoryQuery{StudentID: "nobody"})
	require.NoError(t, err)
	assert.Zero(t, dto.Count)
	assert.NotNil(t, dto.Checkins)

	_, err = NewGetHistoryHandler(store, nil).Handle(context.Background(), GetHistoryQuery{})
	assert.ErrorIs(t, err, shared.ErrInvalidStudentID)
}

func TestGetMoodOptions(t *testing.T) {
	opts := NewGetMoodOptionsHandler(i18n.English()).Handle()

	require.Len(t, opts, 5)
	assert.Equal(t, 90, opts[0].Score)
	assert.Equal(t, "Excellent", opts[0].LabelText)
	assert.Len(t, opts[0].Suggestions, mood.SuggestionsPerAnchor)
	assert.Equal(t, 10, opts[4].Score)
}

func TestGetDashboard(t *testing.T) {
	bus := messaging.NewInMemoryEventBus(messaging.DefaultInMemoryEventBusConfig())
	defer bus.Close()

	day := func(d int) time.Time { return time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC) }
	reg := dashboard.NewRegistry(dashboard.Deps{
		History: mood.NewStore(memory.NewKVStore(), mood.StoreOptions{}),
		Appointments: fixedAppointments{
			{ID: "c", Status: appointment.StatusCompleted, Date: day(1)},
			{ID: "b", Status: appointment.StatusPending, Date: day(5)},
			{ID: "a", Status: appointment.StatusBooked, Date: day(3), Time: "10:00"},
			{ID: "d", Status: appointment.StatusConfirmed, Date: day(4)},
		},
		Assessments: dashboard.NewAssessmentFetcher(noAssessments{}, 0, nil),
		Bus:         bus,
		Resolver:    i18n.English(),
	}, dashboard.DefaultRegistryConfig())
	defer reg.Close()

	h := NewGetDashboardHandler(reg)
	view, err := h.Handle(context.Background(), GetDashboardQuery{StudentID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "a", view.Snapshot.NextSession.ID)
	assert.Equal(t, "2025-04-03 at 10:00 with your counsellor", view.Snapshot.NextSessionText)
	assert.Len(t, view.Snapshot.Upcoming, 2)
	assert.Equal(t, "You have not checked in yet", view.Snapshot.CheckinPrompt)

	all, err := h.ActiveAppointments(context.Background(), GetDashboardQuery{StudentID: "s1"})
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, a := range all {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"a", "d", "b"}, ids)

	refreshed, err := h.Refresh(context.Background(), GetDashboardQuery{StudentID: "s1"})
	require.NoError(t, err)
	assert.False(t, refreshed.Refreshing)

	_, err = h.Handle(context.Background(), GetDashboardQuery{})
	assert.ErrorIs(t, err, shared.ErrInvalidStudentID)
}
