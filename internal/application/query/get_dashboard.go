// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/campuscare/wellness-hub/internal/application/dashboard"
	"github.com/campuscare/wellness-hub/internal/domain/appointment"
	"github.com/campuscare/wellness-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET DASHBOARD QUERY
// Mounts (or reuses) the dashboard session of a student and returns its view.
// ══════════════════════════════════════════════════════════════════════════════

// SessionProvider hands out mounted dashboard sessions.
type SessionProvider interface {
	Acquire(ctx context.Context, studentID string) (*dashboard.Session, error)
}

// GetDashboardQuery identifies the dashboard to read.
type GetDashboardQuery struct {
	StudentID string
}

// Validate checks the query.
func (q GetDashboardQuery) Validate() error {
	if q.StudentID == "" {
		return shared.ErrInvalidStudentID
	}
	return nil
}

// GetDashboardHandler handles GetDashboardQuery.
type GetDashboardHandler struct {
	sessions SessionProvider
}

// NewGetDashboardHandler creates a GetDashboardHandler.
func NewGetDashboardHandler(sessions SessionProvider) *GetDashboardHandler {
	return &GetDashboardHandler{sessions: sessions}
}

// Handle returns the current view of the dashboard.
func (h *GetDashboardHandler) Handle(ctx context.Context, q GetDashboardQuery) (*dashboard.View, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s, err := h.sessions.Acquire(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}
	view := s.State()
	return &view, nil
}

// Refresh re-fetches the appointments of the dashboard and returns the
// resulting view.
func (h *GetDashboardHandler) Refresh(ctx context.Context, q GetDashboardQuery) (*dashboard.View, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s, err := h.sessions.Acquire(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	view := s.State()
	return &view, nil
}

// ActiveAppointments returns every active appointment of the dashboard in
// date order.
func (h *GetDashboardHandler) ActiveAppointments(ctx context.Context, q GetDashboardQuery) ([]appointment.Appointment, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s, err := h.sessions.Acquire(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}
	return s.ActiveAppointments(), nil
}
