package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuscare/wellness-hub/internal/application/command"
	"github.com/campuscare/wellness-hub/internal/application/query"
	"github.com/campuscare/wellness-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"service": "wellness-hub",
		"version": s.config.Version,
		"uptime":  s.Uptime().String(),
	})
}

// handleHealth reports liveness of critical dependencies.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, status)
}

// handleReady reports whether every dependency is available.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, r, code, status)
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Dashboard.Handle(r.Context(), query.GetDashboardQuery{StudentID: chi.URLParam(r, "id")})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleRefreshAppointments(w http.ResponseWriter, r *http.Request) {
	view, err := s.deps.Dashboard.Refresh(r.Context(), query.GetDashboardQuery{StudentID: chi.URLParam(r, "id")})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleGetAppointments(w http.ResponseWriter, r *http.Request) {
	active, err := s.deps.Dashboard.ActiveAppointments(r.Context(), query.GetDashboardQuery{StudentID: chi.URLParam(r, "id")})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]interface{}{
		"appointments": active,
		"count":        len(active),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// CHECK-IN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type recordCheckinRequest struct {
	MoodScore *int   `json:"moodScore"`
	Notes     string `json:"notes"`
}

func (s *Server) handleGetCheckins(w http.ResponseWriter, r *http.Request) {
	history, err := s.deps.History.Handle(r.Context(), query.GetHistoryQuery{StudentID: chi.URLParam(r, "id")})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, history)
}

func (s *Server) handleRecordCheckin(w http.ResponseWriter, r *http.Request) {
	var req recordCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSONError(w, r, http.StatusBadRequest, "invalid_body", "Request body must be a JSON object")
		return
	}

	ctx := r.Context()
	result, err := s.deps.RecordCheckin.Handle(ctx, command.RecordCheckinCommand{
		StudentID:     chi.URLParam(r, "id"),
		MoodScore:     req.MoodScore,
		Notes:         req.Notes,
		CorrelationID: logger.RequestIDFromContext(ctx),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// MOOD OPTIONS
// ══════════════════════════════════════════════════════════════════════════════

func (s *Server) handleMoodOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.deps.MoodOptions.Handle())
}
