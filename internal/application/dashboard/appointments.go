// Package dashboard holds the live state of student dashboards: the mood
// history, the appointment and assessment data fetched from the care
// service, and the snapshot composed from them.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/campuscare/wellness-hub/internal/domain/appointment"
	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/internal/domain/wellness"
	"github.com/campuscare/wellness-hub/pkg/logger"
)

// KeyLoadFailed is the text key shown when a fetch failed without a
// service-provided message.
const KeyLoadFailed = "errors.loadFailed"

// KeyTimeout is the text key shown when the care service did not answer in time.
const KeyTimeout = "errors.timeout"

// AppointmentSource fetches the appointments of a student.
type AppointmentSource interface {
	FetchAppointments(ctx context.Context, studentID string) ([]appointment.Appointment, error)
}

// userMessenger is implemented by errors that carry a message meant for
// the student.
type userMessenger interface {
	UserMessage() string
}

// ══════════════════════════════════════════════════════════════════════════════
// APPOINTMENT AGGREGATOR
// Per-session appointment cache. Every request takes a sequence number and
// only the completion of the latest request is applied.
// ══════════════════════════════════════════════════════════════════════════════

// AppointmentState is a copy of the aggregator state.
type AppointmentState struct {
	Appointments []appointment.Appointment
	Loading      bool
	Refreshing   bool
	Error        string
}

// AppointmentAggregator loads and refreshes the appointments of one student.
type AppointmentAggregator struct {
	source    AppointmentSource
	studentID string
	resolver  wellness.TextResolver
	log       *logger.Logger
	onApplied func(AppointmentState)

	mu           sync.Mutex
	appointments []appointment.Appointment
	loading      bool
	refreshing   bool
	errMsg       string
	seq          uint64
	closed       bool
}

// NewAppointmentAggregator creates an aggregator. onApplied, when set, runs
// after a completion has been applied, outside the aggregator lock.
func NewAppointmentAggregator(
	source AppointmentSource,
	studentID string,
	resolver wellness.TextResolver,
	log *logger.Logger,
	onApplied func(AppointmentState),
) *AppointmentAggregator {
	if resolver == nil {
		resolver = wellness.KeyResolver
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AppointmentAggregator{
		source:       source,
		studentID:    studentID,
		resolver:     resolver,
		log:          log.With(logger.Component("appointment_aggregator"), logger.StudentID(studentID)),
		onApplied:    onApplied,
		appointments: []appointment.Appointment{},
	}
}

// Load performs the initial fetch.
func (a *AppointmentAggregator) Load(ctx context.Context) {
	a.fetch(ctx, false)
}

// Refresh fetches again while the current list stays visible.
func (a *AppointmentAggregator) Refresh(ctx context.Context) {
	a.fetch(ctx, true)
}

func (a *AppointmentAggregator) fetch(ctx context.Context, refresh bool) {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.seq++
	seq := a.seq
	if refresh {
		a.refreshing = true
	} else {
		a.loading = true
	}
	a.mu.Unlock()

	start := time.Now()
	list, err := a.source.FetchAppointments(ctx, a.studentID)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.log.Debug("discarding appointments for closed session", logger.Sequence(seq))
		return
	}
	if seq != a.seq {
		a.mu.Unlock()
		a.log.Debug("discarding stale appointments", logger.Sequence(seq))
		return
	}

	a.loading = false
	a.refreshing = false
	if err != nil {
		a.appointments = []appointment.Appointment{}
		a.errMsg = a.messageFor(err)
	} else {
		a.appointments = list
		a.errMsg = ""
	}
	state := a.stateLocked()
	a.mu.Unlock()

	if err != nil {
		a.log.Warn("appointments fetch failed",
			logger.Sequence(seq),
			logger.Latency(time.Since(start)),
			logger.Err(err),
		)
	}

	if a.onApplied != nil {
		a.onApplied(state)
	}
}

func (a *AppointmentAggregator) messageFor(err error) string {
	var um userMessenger
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	if errors.Is(err, shared.ErrTimeout) {
		return a.resolver.Resolve(KeyTimeout, nil)
	}
	return a.resolver.Resolve(KeyLoadFailed, nil)
}

// State returns a copy of the current state.
func (a *AppointmentAggregator) State() AppointmentState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *AppointmentAggregator) stateLocked() AppointmentState {
	list := make([]appointment.Appointment, len(a.appointments))
	copy(list, a.appointments)
	return AppointmentState{
		Appointments: list,
		Loading:      a.loading,
		Refreshing:   a.refreshing,
		Error:        a.errMsg,
	}
}

// Active returns every active appointment in date order.
func (a *AppointmentAggregator) Active() []appointment.Appointment {
	return appointment.ActiveByDate(a.State().Appointments)
}

// Close stops applying completions.
func (a *AppointmentAggregator) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
}
