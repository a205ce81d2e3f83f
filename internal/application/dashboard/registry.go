package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/campuscare/wellness-hub/pkg/logger"
)

// RegistryConfig contains configuration for Registry.
type RegistryConfig struct {
	// IdleTTL is how long an unused session stays open.
	IdleTTL time.Duration

	// SweepInterval is how often idle sessions are looked for.
	SweepInterval time.Duration

	Session SessionConfig
}

// DefaultRegistryConfig returns default registry settings.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		IdleTTL:       15 * time.Minute,
		SweepInterval: time.Minute,
		Session:       DefaultSessionConfig(),
	}
}

// Registry maps student ids to live sessions.
type Registry struct {
	deps   Deps
	config RegistryConfig
	log    *logger.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates an empty registry.
func NewRegistry(deps Deps, config RegistryConfig) *Registry {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = DefaultRegistryConfig().IdleTTL
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultRegistryConfig().SweepInterval
	}
	return &Registry{
		deps:     deps,
		config:   config,
		log:      deps.Logger.With(logger.Component("dashboard_registry")),
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the mounted session of a student, creating and mounting
// it when needed.
func (r *Registry) Acquire(ctx context.Context, studentID string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[studentID]
	if !ok || !s.Alive() {
		var err error
		s, err = NewSession(studentID, r.deps, r.config.Session)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		r.sessions[studentID] = s
	}
	r.mu.Unlock()

	s.touch()
	if err := s.Mount(ctx); err != nil {
		r.remove(studentID, s)
		s.Close()
		return nil, err
	}
	return s, nil
}

// Lookup returns the session of a student if one is open.
func (r *Registry) Lookup(studentID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[studentID]
	if !ok || !s.Alive() {
		return nil, false
	}
	return s, true
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) remove(studentID string, s *Session) {
	r.mu.Lock()
	if r.sessions[studentID] == s {
		delete(r.sessions, studentID)
	}
	r.mu.Unlock()
}

// Sweep closes sessions idle for longer than IdleTTL and returns how many
// were closed.
func (r *Registry) Sweep() int {
	cutoff := r.deps.Clock().Add(-r.config.IdleTTL)

	var idle []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if !s.Alive() || s.LastActive().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Close()
	}
	if len(idle) > 0 {
		r.log.Debug("closed idle sessions", logger.Int("count", len(idle)))
	}
	return len(idle)
}

// Start runs the idle-session janitor until Close or ctx is done.
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(r.config.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep()
			}
		}
	}()
}

// Close stops the janitor and closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	cancel := r.cancel
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()

	for _, s := range sessions {
		s.Close()
	}
	r.log.Info("dashboard registry closed", logger.Int("sessions", len(sessions)))
}
