package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/wellness-hub/internal/domain/mood"
	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/internal/domain/wellness"
	"github.com/campuscare/wellness-hub/internal/infrastructure/persistence/memory"
)

type recordingPublisher struct {
	events []shared.Event
	err    error
}

func (p *recordingPublisher) Publish(e shared.Event) error {
	p.events = append(p.events, e)
	return p.err
}

type countingStore struct {
	*mood.Store
	appends int
}

func (s *countingStore) Append(ctx context.Context, id string, score int, notes, emoji string) (mood.Checkin, error) {
	s.appends++
	return s.Store.Append(ctx, id, score, notes, emoji)
}

var echo = wellness.ResolverFunc(func(key string, params map[string]string) string {
	if m, ok := params["mood"]; ok {
		return key + "(" + m + ")"
	}
	return key
})

func intPtr(v int) *int { return &v }

func newHandler(strict bool) (*RecordCheckinHandler, *countingStore, *recordingPublisher) {
	store := &countingStore{Store: mood.NewStore(memory.NewKVStore(), mood.StoreOptions{})}
	pub := &recordingPublisher{}
	h := NewRecordCheckinHandler(store, pub, echo, RecordCheckinHandlerConfig{StrictAnchors: strict}, nil)
	return h, store, pub
}

func TestRecordCheckin_Success(t *testing.T) {
	h, store, pub := newHandler(true)

	res, err := h.Handle(context.Background(), RecordCheckinCommand{
		StudentID:     "s1",
		MoodScore:     intPtr(70),
		Notes:         "exam went fine",
		CorrelationID: "req-9",
	})
	require.NoError(t, err)

	assert.Equal(t, 70, res.Checkin.MoodScore)
	assert.Equal(t, "🙂", res.Checkin.MoodEmoji)
	assert.Equal(t, mood.LabelGood, res.Label)
	assert.Equal(t, "mood.good", res.LabelText)
	assert.Equal(t, []string{"moodSuggestions.70.0", "moodSuggestions.70.1", "moodSuggestions.70.2"}, res.Suggestions)
	assert.Equal(t, "mood.checkinSuccess(mood.good)", res.Message)

	history, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, res.Checkin, history[0])

	require.Len(t, pub.events, 1)
	ev, ok := pub.events[0].(shared.CheckinRecordedEvent)
	require.True(t, ok)
	assert.Equal(t, "s1", ev.AggregateID())
	assert.Equal(t, res.Checkin.ID, ev.CheckinID)
	assert.Equal(t, "req-9", ev.CorrelationID)
}

func TestRecordCheckin_ValidationRejectsBeforeStore(t *testing.T) {
	tests := []struct {
		name string
		cmd  RecordCheckinCommand
		want error
	}{
		{"no mood selected", RecordCheckinCommand{StudentID: "s1"}, shared.ErrMoodNotSelected},
		{"out of range", RecordCheckinCommand{StudentID: "s1", MoodScore: intPtr(101)}, shared.ErrMoodScoreRange},
		{"negative", RecordCheckinCommand{StudentID: "s1", MoodScore: intPtr(-1)}, shared.ErrMoodScoreRange},
		{"missing student", RecordCheckinCommand{MoodScore: intPtr(50)}, shared.ErrInvalidStudentID},
		{"not an anchor", RecordCheckinCommand{StudentID: "s1", MoodScore: intPtr(55)}, shared.ErrUnknownMoodAnchor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store, pub := newHandler(true)

			res, err := h.Handle(context.Background(), tt.cmd)
			assert.Nil(t, res)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, shared.IsValidation(err))
			assert.Zero(t, store.appends)
			assert.Empty(t, pub.events)
		})
	}
}

func TestRecordCheckin_NonStrictAcceptsAnyScore(t *testing.T) {
	h, _, _ := newHandler(false)

	res, err := h.Handle(context.Background(), RecordCheckinCommand{StudentID: "s1", MoodScore: intPtr(55)})
	require.NoError(t, err)

	assert.Equal(t, "😐", res.Checkin.MoodEmoji)
	assert.Equal(t, mood.LabelOkay, res.Label)
	assert.Empty(t, res.Suggestions)
}

func TestRecordCheckin_ZeroScoreIsSelected(t *testing.T) {
	h, _, _ := newHandler(false)

	res, err := h.Handle(context.Background(), RecordCheckinCommand{StudentID: "s1", MoodScore: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, mood.LabelPoor, res.Label)
}

func TestRecordCheckin_PublishFailureKeepsCheckin(t *testing.T) {
	h, store, pub := newHandler(true)
	pub.err = errors.New("bus closed")

	_, err := h.Handle(context.Background(), RecordCheckinCommand{StudentID: "s1", MoodScore: intPtr(90)})
	require.NoError(t, err)

	n, err := store.Count(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
