package query

import (
	"context"

	"github.com/campuscare/wellness-hub/internal/domain/mood"
	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/internal/domain/wellness"
	"github.com/campuscare/wellness-hub/pkg/timeutil"
)

// HistoryLoader reads the mood history of a student.
type HistoryLoader interface {
	Load(ctx context.Context, studentID string) ([]mood.Checkin, error)
}

// GetHistoryQuery identifies the history to read.
type GetHistoryQuery struct {
	StudentID string
}

// CheckinDTO is a check-in with its resolved label.
type CheckinDTO struct {
	mood.Checkin
	Label     mood.Label `json:"label"`
	LabelText string     `json:"labelText"`
	Relative  string     `json:"relative"`
}

// HistoryDTO is the mood history of a student, newest first.
type HistoryDTO struct {
	StudentID string       `json:"studentId"`
	Count     int          `json:"count"`
	Checkins  []CheckinDTO `json:"checkins"`
}

// GetHistoryHandler handles GetHistoryQuery.
type GetHistoryHandler struct {
	history  HistoryLoader
	resolver wellness.TextResolver
}

// NewGetHistoryHandler creates a GetHistoryHandler.
func NewGetHistoryHandler(history HistoryLoader, resolver wellness.TextResolver) *GetHistoryHandler {
	if resolver == nil {
		resolver = wellness.KeyResolver
	}
	return &GetHistoryHandler{history: history, resolver: resolver}
}

// Handle returns the full history.
func (h *GetHistoryHandler) Handle(ctx context.Context, q GetHistoryQuery) (*HistoryDTO, error) {
	if q.StudentID == "" {
		return nil, shared.ErrInvalidStudentID
	}

	history, err := h.history.Load(ctx, q.StudentID)
	if err != nil {
		return nil, err
	}

	now := timeutil.Now()
	out := &HistoryDTO{
		StudentID: q.StudentID,
		Count:     len(history),
		Checkins:  make([]CheckinDTO, 0, len(history)),
	}
	for _, c := range mood.NewestFirst(history) {
		label := c.Classification().Label
		out.Checkins = append(out.Checkins, CheckinDTO{
			Checkin:   c,
			Label:     label,
			LabelText: h.resolver.Resolve(label.TextKey(), nil),
			Relative:  timeutil.FormatRelative(c.Timestamp, now),
		})
	}
	return out, nil
}
