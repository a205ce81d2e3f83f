package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/campuscare/wellness-hub/internal/domain/appointment"
	"github.com/campuscare/wellness-hub/internal/domain/assessment"
	"github.com/campuscare/wellness-hub/internal/domain/mood"
	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/internal/domain/wellness"
	"github.com/campuscare/wellness-hub/pkg/logger"
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = shared.NewDomainError("dashboard", "Session", shared.ErrClosed, "dashboard session is closed")

// HistoryStore reads the mood history of a student.
type HistoryStore interface {
	Load(ctx context.Context, studentID string) ([]mood.Checkin, error)
}

// EventBus carries change notifications between the check-in command,
// sessions and their subscribers.
type EventBus interface {
	Publish(event shared.Event) error
	Listen(handler shared.EventHandler) (func(), error)
}

// Deps are the collaborators shared by all sessions.
type Deps struct {
	History      HistoryStore
	Appointments AppointmentSource
	Assessments  *AssessmentFetcher
	Bus          EventBus
	Resolver     wellness.TextResolver
	Logger       *logger.Logger

	// Clock defaults to time.Now.
	Clock func() time.Time
}

func (d Deps) validate() error {
	switch {
	case d.History == nil:
		return errors.New("dashboard: history store is required")
	case d.Appointments == nil:
		return errors.New("dashboard: appointment source is required")
	case d.Assessments == nil:
		return errors.New("dashboard: assessment fetcher is required")
	case d.Bus == nil:
		return errors.New("dashboard: event bus is required")
	}
	return nil
}

// SessionConfig contains per-session settings.
type SessionConfig struct {
	UpcomingLimit int
	Vitals        wellness.Vitals

	// ReloadTimeout bounds the history reload after a check-in event.
	ReloadTimeout time.Duration

	// FetchTimeout bounds the care service fetches of one mount or refresh.
	// The fetches outlive the caller's context: their results belong to the
	// session, not to the request that triggered them.
	FetchTimeout time.Duration
}

// DefaultSessionConfig returns the default session settings.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		UpcomingLimit: appointment.DefaultUpcomingLimit,
		Vitals:        wellness.DefaultVitals(),
		ReloadTimeout: 5 * time.Second,
		FetchTimeout:  30 * time.Second,
	}
}

// View is the snapshot of a session together with its loading flags.
type View struct {
	Snapshot            wellness.Snapshot `json:"snapshot"`
	AppointmentsLoading bool              `json:"appointmentsLoading"`
	Refreshing          bool              `json:"refreshing"`
	IsLoading           bool              `json:"isLoading"`
	Error               string            `json:"error,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session is the live dashboard of one student. State changes happen under
// the session lock; network and storage calls happen outside it.
type Session struct {
	studentID string
	deps      Deps
	config    SessionConfig
	log       *logger.Logger
	appts     *AppointmentAggregator

	mountMu sync.Mutex
	mounted bool

	mu            sync.Mutex
	alive         bool
	history       []mood.Checkin
	historySeq    uint64
	assessments   []assessment.Result
	assessLoading bool
	assessSeq     uint64
	lastActive    time.Time
	cancels       []func()
}

// NewSession creates an unmounted session.
func NewSession(studentID string, deps Deps, config SessionConfig) (*Session, error) {
	if studentID == "" {
		return nil, shared.ErrInvalidStudentID
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Resolver == nil {
		deps.Resolver = wellness.KeyResolver
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if config.ReloadTimeout <= 0 {
		config.ReloadTimeout = DefaultSessionConfig().ReloadTimeout
	}

	s := &Session{
		studentID:   studentID,
		deps:        deps,
		config:      config,
		log:         deps.Logger.With(logger.Component("dashboard_session"), logger.StudentID(studentID)),
		alive:       true,
		history:     []mood.Checkin{},
		assessments: []assessment.Result{},
		lastActive:  deps.Clock(),
	}
	s.appts = NewAppointmentAggregator(deps.Appointments, studentID, deps.Resolver, deps.Logger, func(st AppointmentState) {
		s.publish(shared.NewFetchAppliedEvent(shared.EventAppointmentsApplied, studentID, len(st.Appointments), st.Error))
	})

	cancel, err := deps.Bus.Listen(s.onEvent)
	if err != nil {
		return nil, err
	}
	s.cancels = append(s.cancels, cancel)

	return s, nil
}

// StudentID returns the owning student.
func (s *Session) StudentID() string {
	return s.studentID
}

// Mount loads the mood history, then fetches appointments and assessments
// concurrently. Fetch failures are absorbed into the session state; only a
// history read failure is returned. Mounting twice is a no-op.
func (s *Session) Mount(ctx context.Context) error {
	s.mountMu.Lock()
	defer s.mountMu.Unlock()

	if s.mounted {
		return nil
	}
	if !s.Alive() {
		return ErrSessionClosed
	}

	start := s.deps.Clock()
	if err := s.reloadHistory(ctx); err != nil {
		return err
	}

	fctx, cancel := s.fetchContext(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(fctx)
	g.Go(func() error {
		s.appts.Load(gctx)
		return nil
	})
	g.Go(func() error {
		s.loadAssessments(gctx)
		return nil
	})
	_ = g.Wait()

	s.mounted = true
	s.log.Debug("dashboard mounted", logger.Latency(s.deps.Clock().Sub(start)))
	return nil
}

// Refresh re-fetches the appointments. The current list stays visible
// until the new one is applied.
func (s *Session) Refresh(ctx context.Context) error {
	if !s.touch() {
		return ErrSessionClosed
	}
	fctx, cancel := s.fetchContext(ctx)
	defer cancel()
	s.appts.Refresh(fctx)
	return nil
}

// ReloadAssessments re-fetches the assessment results.
func (s *Session) ReloadAssessments(ctx context.Context) error {
	if !s.touch() {
		return ErrSessionClosed
	}
	fctx, cancel := s.fetchContext(ctx)
	defer cancel()
	s.loadAssessments(fctx)
	return nil
}

// fetchContext keeps the values of ctx (request id, logger) but not its
// cancellation.
func (s *Session) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.config.FetchTimeout
	if timeout <= 0 {
		timeout = DefaultSessionConfig().FetchTimeout
	}
	return context.WithTimeout(context.WithoutCancel(ctx), timeout)
}

func (s *Session) reloadHistory(ctx context.Context) error {
	s.mu.Lock()
	s.historySeq++
	seq := s.historySeq
	s.mu.Unlock()

	history, err := s.deps.History.Load(ctx, s.studentID)
	if err != nil {
		s.log.Error("failed to load mood history", logger.Err(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive || seq != s.historySeq {
		s.log.Debug("discarding stale history", logger.Sequence(seq))
		return nil
	}
	s.history = history
	return nil
}

func (s *Session) loadAssessments(ctx context.Context) {
	s.mu.Lock()
	if !s.alive {
		s.mu.Unlock()
		return
	}
	s.assessSeq++
	seq := s.assessSeq
	s.assessLoading = true
	s.mu.Unlock()

	results := s.deps.Assessments.Fetch(ctx, s.studentID)

	s.mu.Lock()
	if !s.alive || seq != s.assessSeq {
		s.mu.Unlock()
		s.log.Debug("discarding stale assessments", logger.Sequence(seq))
		return
	}
	s.assessments = results
	s.assessLoading = false
	s.mu.Unlock()

	s.publish(shared.NewFetchAppliedEvent(shared.EventAssessmentsApplied, s.studentID, len(results), ""))
}

// onEvent reloads the history when a check-in of this student was recorded,
// here or on another instance.
func (s *Session) onEvent(e shared.Event) error {
	if e.AggregateID() != s.studentID || e.EventType() != shared.EventCheckinRecorded {
		return nil
	}
	if !s.touch() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ReloadTimeout)
	defer cancel()
	return s.reloadHistory(ctx)
}

func (s *Session) publish(e shared.Event) {
	if err := s.deps.Bus.Publish(e); err != nil {
		s.log.Debug("event not published",
			logger.String("event_type", string(e.EventType())),
			logger.Err(err),
		)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// READ SIDE
// ══════════════════════════════════════════════════════════════════════════════

// Snapshot composes the current wellness snapshot.
func (s *Session) Snapshot() wellness.Snapshot {
	return s.State().Snapshot
}

// State returns the snapshot with the loading flags.
func (s *Session) State() View {
	s.mu.Lock()
	history := make([]mood.Checkin, len(s.history))
	copy(history, s.history)
	assessments := make([]assessment.Result, len(s.assessments))
	copy(assessments, s.assessments)
	assessLoading := s.assessLoading
	s.mu.Unlock()

	appts := s.appts.State()

	return View{
		Snapshot: wellness.Compose(wellness.Input{
			History:       history,
			Appointments:  appts.Appointments,
			Assessments:   assessments,
			Resolver:      s.deps.Resolver,
			Vitals:        s.config.Vitals,
			UpcomingLimit: s.config.UpcomingLimit,
		}),
		AppointmentsLoading: appts.Loading,
		Refreshing:          appts.Refreshing,
		IsLoading:           assessLoading,
		Error:               appts.Error,
	}
}

// History returns the mood history, newest first.
func (s *Session) History() []mood.Checkin {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mood.NewestFirst(s.history)
}

// ActiveAppointments returns every active appointment in date order.
func (s *Session) ActiveAppointments() []appointment.Appointment {
	return s.appts.Active()
}

// Subscribe registers fn to receive the state after every change of this
// session. The returned function removes the subscription.
func (s *Session) Subscribe(fn func(View)) (func(), error) {
	cancel, err := s.deps.Bus.Listen(func(e shared.Event) error {
		if e.AggregateID() != s.studentID || !notifies(e.EventType()) || !s.Alive() {
			return nil
		}
		fn(s.State())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.alive {
		s.mu.Unlock()
		cancel()
		return nil, ErrSessionClosed
	}
	s.cancels = append(s.cancels, cancel)
	s.mu.Unlock()
	return cancel, nil
}

func notifies(t shared.EventType) bool {
	switch t {
	case shared.EventCheckinRecorded, shared.EventAppointmentsApplied, shared.EventAssessmentsApplied:
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// LIFECYCLE
// ══════════════════════════════════════════════════════════════════════════════

// Alive reports whether the session is open.
func (s *Session) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alive
}

// LastActive returns when the session was last used.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// touch records activity and reports whether the session is open.
func (s *Session) touch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.alive {
		s.lastActive = s.deps.Clock()
	}
	return s.alive
}

// Close tears the session down. Completions arriving later are discarded.
func (s *Session) Close() {
	s.mu.Lock()
	if !s.alive {
		s.mu.Unlock()
		return
	}
	s.alive = false
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()

	s.appts.Close()
	for _, cancel := range cancels {
		cancel()
	}
	s.publish(shared.NewSessionClosedEvent(s.studentID))
	s.log.Debug("dashboard session closed")
}
