// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campuscare/wellness-hub/internal/domain/mood"
	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/internal/domain/wellness"
	"github.com/campuscare/wellness-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD CHECK-IN COMMAND
// Validates a mood submission, appends it to the student history and
// announces it on the event bus so open dashboards recompute.
// ══════════════════════════════════════════════════════════════════════════════

// KeyCheckinSuccess is the confirmation text key.
const KeyCheckinSuccess = "mood.checkinSuccess"

// RecordCheckinCommand contains the data of a mood submission.
type RecordCheckinCommand struct {
	StudentID string `validate:"required,max=128"`

	// MoodScore is nil when no mood was selected.
	MoodScore *int `validate:"required,min=0,max=100"`

	Notes string `validate:"max=2000"`

	// CorrelationID for tracing.
	CorrelationID string
}

// RecordCheckinResult is the outcome of a recorded check-in.
type RecordCheckinResult struct {
	Checkin     mood.Checkin `json:"checkin"`
	Label       mood.Label   `json:"label"`
	LabelText   string       `json:"labelText"`
	Suggestions []string     `json:"suggestions"`
	Message     string       `json:"message"`
}

// CheckinAppender persists check-ins.
type CheckinAppender interface {
	Append(ctx context.Context, studentID string, score int, notes, emoji string) (mood.Checkin, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordCheckinHandlerConfig contains configuration for the handler.
type RecordCheckinHandlerConfig struct {
	// StrictAnchors accepts only the selectable anchor scores.
	StrictAnchors bool
}

// DefaultRecordCheckinHandlerConfig returns default configuration.
func DefaultRecordCheckinHandlerConfig() RecordCheckinHandlerConfig {
	return RecordCheckinHandlerConfig{StrictAnchors: true}
}

// RecordCheckinHandler handles RecordCheckinCommand.
type RecordCheckinHandler struct {
	store     CheckinAppender
	publisher shared.EventPublisher
	resolver  wellness.TextResolver
	validate  *validator.Validate
	config    RecordCheckinHandlerConfig
	log       *logger.Logger
}

// NewRecordCheckinHandler creates a RecordCheckinHandler.
func NewRecordCheckinHandler(
	store CheckinAppender,
	publisher shared.EventPublisher,
	resolver wellness.TextResolver,
	config RecordCheckinHandlerConfig,
	log *logger.Logger,
) *RecordCheckinHandler {
	if resolver == nil {
		resolver = wellness.KeyResolver
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RecordCheckinHandler{
		store:     store,
		publisher: publisher,
		resolver:  resolver,
		validate:  validator.New(),
		config:    config,
		log:       log.With(logger.Component("record_checkin")),
	}
}

// Handle validates and records the check-in. Invalid commands never reach
// the store.
func (h *RecordCheckinHandler) Handle(ctx context.Context, cmd RecordCheckinCommand) (*RecordCheckinResult, error) {
	if err := h.check(cmd); err != nil {
		return nil, err
	}
	score := *cmd.MoodScore

	var emoji string
	var suggestionKeys []string
	if opt, ok := mood.OptionFor(score); ok {
		emoji = opt.Emoji
		suggestionKeys, _ = mood.SuggestionKeys(score)
	}

	start := time.Now()
	checkin, err := h.store.Append(ctx, cmd.StudentID, score, cmd.Notes, emoji)
	if err != nil {
		h.log.Error("failed to record check-in",
			logger.StudentID(cmd.StudentID),
			logger.MoodScore(score),
			logger.Err(err),
		)
		return nil, err
	}

	event := shared.NewCheckinRecordedEvent(cmd.StudentID, checkin.ID, checkin.MoodScore, checkin.MoodEmoji)
	if cmd.CorrelationID != "" {
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
	}
	if h.publisher != nil {
		if err := h.publisher.Publish(event); err != nil {
			h.log.Warn("check-in event not published", logger.StudentID(cmd.StudentID), logger.Err(err))
		}
	}

	label := checkin.Classification().Label
	labelText := h.resolver.Resolve(label.TextKey(), nil)

	suggestions := make([]string, 0, len(suggestionKeys))
	for _, key := range suggestionKeys {
		suggestions = append(suggestions, h.resolver.Resolve(key, nil))
	}

	h.log.Info("check-in recorded",
		logger.StudentID(cmd.StudentID),
		logger.MoodScore(score),
		logger.Latency(time.Since(start)),
	)

	return &RecordCheckinResult{
		Checkin:     checkin,
		Label:       label,
		LabelText:   labelText,
		Suggestions: suggestions,
		Message:     h.resolver.Resolve(KeyCheckinSuccess, map[string]string{"mood": labelText}),
	}, nil
}

// check maps validation failures onto the mood domain errors.
func (h *RecordCheckinHandler) check(cmd RecordCheckinCommand) error {
	if err := h.validate.Struct(cmd); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return shared.WrapError("mood", "Submit", shared.ErrValidation, "invalid check-in", err)
		}
		fe := verrs[0]
		switch fe.Field() {
		case "StudentID":
			return shared.ErrInvalidStudentID
		case "MoodScore":
			if fe.Tag() == "required" {
				return shared.ErrMoodNotSelected
			}
			return shared.ErrMoodScoreRange
		default:
			return shared.WrapError("mood", "Submit", shared.ErrValidation, "invalid "+fe.Field(), err)
		}
	}

	if h.config.StrictAnchors {
		if _, ok := mood.OptionFor(*cmd.MoodScore); !ok {
			return shared.ErrUnknownMoodAnchor
		}
	}
	return nil
}
