package mood

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscare/wellness-hub/internal/domain/shared"
)

type mapKV struct {
	mu     sync.Mutex
	data   map[string]string
	writes int
	getErr error
}

func newMapKV() *mapKV { return &mapKV{data: map[string]string{}} }

func (m *mapKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *mapKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.writes++
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// ══════════════════════════════════════════════════════════════════════════════
// CLASSIFIER
// ══════════════════════════════════════════════════════════════════════════════

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		label Label
		emoji string
	}{
		{100, LabelExcellent, "😊"},
		{80, LabelExcellent, "😊"},
		{79, LabelGood, "🙂"},
		{60, LabelGood, "🙂"},
		{59, LabelOkay, "😐"},
		{40, LabelOkay, "😐"},
		{39, LabelNotGreat, "😕"},
		{20, LabelNotGreat, "😕"},
		{19, LabelPoor, "😢"},
		{0, LabelPoor, "😢"},
	}

	for _, tt := range tests {
		c := Classify(tt.score)
		assert.Equal(t, tt.label, c.Label, "score %d", tt.score)
		assert.Equal(t, tt.emoji, c.Emoji, "score %d", tt.score)
	}
}

func TestClassify_TotalOverRange(t *testing.T) {
	known := map[Label]bool{
		LabelExcellent: true, LabelGood: true, LabelOkay: true, LabelNotGreat: true, LabelPoor: true,
	}
	for s := MinScore; s <= MaxScore; s++ {
		c := Classify(s)
		assert.True(t, known[c.Label], "score %d", s)
		assert.NotEmpty(t, c.Emoji, "score %d", s)
	}
}

func TestLabel_Keys(t *testing.T) {
	assert.Equal(t, "mood.notGreat", LabelNotGreat.TextKey())
	assert.Equal(t, "mood.notGreatDesc", LabelNotGreat.DescriptionKey())
}

func TestSuggestionKeys_OnlyAnchors(t *testing.T) {
	keys, ok := SuggestionKeys(70)
	require.True(t, ok)
	assert.Equal(t, []string{"moodSuggestions.70.0", "moodSuggestions.70.1", "moodSuggestions.70.2"}, keys)

	_, ok = SuggestionKeys(75)
	assert.False(t, ok)

	opts := Options()
	require.Len(t, opts, 5)
	assert.Equal(t, 90, opts[0].Score)
	assert.Equal(t, 10, opts[4].Score)
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

func TestStore_AppendThenLoad(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	kv := newMapKV()
	store := NewStore(kv, StoreOptions{Now: fixedClock(now)})

	created, err := store.Append(ctx, "s1", 70, "ok day", "")
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), created.ID)
	assert.Equal(t, "🙂", created.MoodEmoji)
	assert.Equal(t, 1, kv.writes)

	history, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, created.ID, history[0].ID)
	assert.Equal(t, 70, history[0].MoodScore)
	assert.Equal(t, "ok day", history[0].Notes)
	assert.True(t, now.Equal(history[0].Timestamp))

	last := Latest(history)
	require.NotNil(t, last)
	assert.Equal(t, created.ID, last.ID)
}

func TestStore_KeepsGivenEmoji(t *testing.T) {
	store := NewStore(newMapKV(), StoreOptions{})

	c, err := store.Append(context.Background(), "s1", 50, "", "🌧")
	require.NoError(t, err)
	assert.Equal(t, "🌧", c.MoodEmoji)
}

func TestStore_SameMillisecondIDsIncrease(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	store := NewStore(newMapKV(), StoreOptions{Now: fixedClock(now)})

	first, err := store.Append(ctx, "s1", 90, "", "")
	require.NoError(t, err)
	second, err := store.Append(ctx, "s1", 10, "", "")
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)

	count, err := store.Count(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_ClockStepsBack(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	times := []time.Time{t0, t0.Add(-time.Hour), t0.Add(time.Minute)}
	i := 0
	store := NewStore(newMapKV(), StoreOptions{Now: func() time.Time {
		now := times[i]
		i++
		return now
	}})

	for range times {
		_, err := store.Append(ctx, "s1", 50, "", "")
		require.NoError(t, err)
	}

	history, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, t0, history[1].Timestamp)
	assert.Equal(t, t0.Add(time.Minute), history[2].Timestamp)
	for k := 1; k < len(history); k++ {
		assert.False(t, history[k].Timestamp.Before(history[k-1].Timestamp))
		assert.Greater(t, history[k].ID, history[k-1].ID)
	}
}

func TestStore_ConcurrentAppendsAcrossStudents(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMapKV(), StoreOptions{})

	const students, perStudent = 200, 5
	var wg sync.WaitGroup
	for n := 0; n < students; n++ {
		id := fmt.Sprintf("stu-%d", n)
		for k := 0; k < perStudent; k++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Append(ctx, id, 50, "", "")
				assert.NoError(t, err)
			}()
		}
	}
	wg.Wait()

	for n := 0; n < students; n++ {
		count, err := store.Count(ctx, fmt.Sprintf("stu-%d", n))
		require.NoError(t, err)
		assert.Equal(t, perStudent, count)
	}
	assert.Same(t, store.lockFor("stu-1"), store.lockFor("stu-1"))
}

func TestStore_LoadUnknownStudent(t *testing.T) {
	store := NewStore(newMapKV(), StoreOptions{})

	history, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestStore_LoadMalformed(t *testing.T) {
	kv := newMapKV()
	kv.data[HistoryKey("s1")] = "{not json"

	var reported error
	store := NewStore(kv, StoreOptions{
		OnParseError: func(_ string, err error) { reported = err },
	})

	history, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.ErrorIs(t, reported, shared.ErrPersistenceParse)
}

func TestStore_BackendError(t *testing.T) {
	kv := newMapKV()
	kv.getErr = errors.New("connection refused")
	store := NewStore(kv, StoreOptions{})

	_, err := store.Load(context.Background(), "s1")
	assert.ErrorIs(t, err, shared.ErrPersistence)

	_, err = store.Append(context.Background(), "s1", 50, "", "")
	assert.ErrorIs(t, err, shared.ErrPersistence)
	assert.Zero(t, kv.writes)
}

func TestStore_RejectsInvalidInput(t *testing.T) {
	kv := newMapKV()
	store := NewStore(kv, StoreOptions{})

	_, err := store.Append(context.Background(), "s1", 101, "", "")
	assert.ErrorIs(t, err, shared.ErrValueOutOfRange)
	assert.True(t, shared.IsValidation(err))

	_, err = store.Append(context.Background(), "", 50, "", "")
	assert.ErrorIs(t, err, shared.ErrInvalidID)
	assert.True(t, shared.IsValidation(err))

	assert.Zero(t, kv.writes)
}

func TestNewestFirst(t *testing.T) {
	h := []Checkin{{ID: 1}, {ID: 2}, {ID: 3}}
	out := NewestFirst(h)
	assert.Equal(t, []int64{3, 2, 1}, []int64{out[0].ID, out[1].ID, out[2].ID})
	assert.Equal(t, int64(1), h[0].ID)
}
