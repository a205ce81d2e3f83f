package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each one marks a change that invalidates the
// wellness snapshot of a student.
const (
	EventCheckinRecorded     EventType = "mood.checkin_recorded"
	EventAppointmentsApplied EventType = "appointment.applied"
	EventAssessmentsApplied  EventType = "assessment.applied"
	EventSessionClosed       EventType = "dashboard.session_closed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	// For wellness events this is always the student id.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// CheckinRecordedEvent is emitted after a check-in has been persisted.
type CheckinRecordedEvent struct {
	BaseEvent
	CheckinID int64  `json:"checkin_id"`
	MoodScore int    `json:"mood_score"`
	MoodEmoji string `json:"mood_emoji"`
}

// Payload implements Event interface.
func (e CheckinRecordedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"checkin_id": e.CheckinID,
		"mood_score": e.MoodScore,
		"mood_emoji": e.MoodEmoji,
	}
}

// NewCheckinRecordedEvent creates a CheckinRecordedEvent.
func NewCheckinRecordedEvent(studentID string, checkinID int64, score int, emoji string) CheckinRecordedEvent {
	return CheckinRecordedEvent{
		BaseEvent: NewBaseEvent(EventCheckinRecorded, studentID),
		CheckinID: checkinID,
		MoodScore: score,
		MoodEmoji: emoji,
	}
}

// FetchAppliedEvent is emitted when a fetch result has been applied to a
// dashboard session (appointments or assessments).
type FetchAppliedEvent struct {
	BaseEvent
	Count   int    `json:"count"`
	Failed  bool   `json:"failed"`
	Message string `json:"message,omitempty"`
}

// Payload implements Event interface.
func (e FetchAppliedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"count":   e.Count,
		"failed":  e.Failed,
		"message": e.Message,
	}
}

// NewFetchAppliedEvent creates a FetchAppliedEvent of the given type.
func NewFetchAppliedEvent(eventType EventType, studentID string, count int, failure string) FetchAppliedEvent {
	return FetchAppliedEvent{
		BaseEvent: NewBaseEvent(eventType, studentID),
		Count:     count,
		Failed:    failure != "",
		Message:   failure,
	}
}

// SessionClosedEvent is emitted when a dashboard session is torn down.
type SessionClosedEvent struct {
	BaseEvent
}

// Payload implements Event interface.
func (e SessionClosedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

// NewSessionClosedEvent creates a SessionClosedEvent.
func NewSessionClosedEvent(studentID string) SessionClosedEvent {
	return SessionClosedEvent{BaseEvent: NewBaseEvent(EventSessionClosed, studentID)}
}

// RelayedEvent is implemented by events that were published by another
// service instance and relayed to this one.
type RelayedEvent interface {
	Event

	// SourceInstance identifies the publishing instance.
	SourceInstance() string
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
