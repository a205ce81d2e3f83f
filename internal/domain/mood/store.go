package mood

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/campuscare/wellness-hub/internal/domain/shared"
)

// lockStripes is the number of mutexes appends are spread over.
const lockStripes = 64

// KeyPrefix is the persistence key prefix of a student's history.
const KeyPrefix = "moodCheckins_"

// HistoryKey returns the persistence key for a student's history.
func HistoryKey(studentID string) string {
	return KeyPrefix + studentID
}

// KeyValueStore is the persistence slot the Store writes to.
// Implementations live in infrastructure/persistence.
type KeyValueStore interface {
	// Get returns the raw value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
}

// StoreOptions configures a Store.
type StoreOptions struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// OnParseError is called when persisted history cannot be decoded.
	// The history is treated as empty either way.
	OnParseError func(studentID string, err error)
}

// Store owns the durable, append-only check-in history of each student.
//
// Writers in different processes are not coordinated: every append
// rewrites the whole list and the last full write wins. Appends within
// one Store are serialised per student; students sharing a lock stripe
// also wait on each other.
type Store struct {
	kv           KeyValueStore
	now          func() time.Time
	onParseError func(string, error)

	locks [lockStripes]sync.Mutex
}

// NewStore creates a Store over the given persistence slot.
func NewStore(kv KeyValueStore, opts StoreOptions) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		kv:           kv,
		now:          opts.Now,
		onParseError: opts.OnParseError,
	}
}

// Load returns the history of a student in creation order.
// A missing or unparseable slot yields an empty history and no error.
func (s *Store) Load(ctx context.Context, studentID string) ([]Checkin, error) {
	if studentID == "" {
		return nil, shared.ErrInvalidStudentID
	}

	raw, ok, err := s.kv.Get(ctx, HistoryKey(studentID))
	if err != nil {
		return nil, shared.WrapError("mood", "Load", shared.ErrPersistence, "read history", err)
	}
	if !ok || raw == "" {
		return []Checkin{}, nil
	}

	var history []Checkin
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		if s.onParseError != nil {
			s.onParseError(studentID, shared.WrapError("mood", "Load", shared.ErrPersistenceParse, "decode history", err))
		}
		return []Checkin{}, nil
	}
	if history == nil {
		history = []Checkin{}
	}
	return history, nil
}

// Append creates a check-in, persists the full updated history and returns
// the created record. An empty emoji is derived from the score.
func (s *Store) Append(ctx context.Context, studentID string, score int, notes, emoji string) (Checkin, error) {
	if studentID == "" {
		return Checkin{}, shared.ErrInvalidStudentID
	}
	if !ValidScore(score) {
		return Checkin{}, shared.ErrMoodScoreRange
	}

	lock := s.lockFor(studentID)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.Load(ctx, studentID)
	if err != nil {
		return Checkin{}, err
	}

	now := s.now()
	last := Latest(history)
	if last != nil && now.Before(last.Timestamp) {
		now = last.Timestamp
	}
	id := now.UnixMilli()
	if last != nil && id <= last.ID {
		id = last.ID + 1
	}
	if emoji == "" {
		emoji = EmojiFor(score)
	}

	checkin := Checkin{
		ID:        id,
		Timestamp: now.UTC(),
		MoodScore: score,
		MoodEmoji: emoji,
		Notes:     notes,
	}
	history = append(history, checkin)

	data, err := json.Marshal(history)
	if err != nil {
		return Checkin{}, fmt.Errorf("encode history: %w", err)
	}
	if err := s.kv.Set(ctx, HistoryKey(studentID), string(data)); err != nil {
		return Checkin{}, shared.WrapError("mood", "Append", shared.ErrPersistence, "write history", err)
	}

	return checkin, nil
}

// Count returns the number of check-ins of a student.
func (s *Store) Count(ctx context.Context, studentID string) (int, error) {
	history, err := s.Load(ctx, studentID)
	if err != nil {
		return 0, err
	}
	return len(history), nil
}

func (s *Store) lockFor(studentID string) *sync.Mutex {
	return &s.locks[stripeOf(studentID)]
}

func stripeOf(studentID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(studentID))
	return int(h.Sum32() % lockStripes)
}
