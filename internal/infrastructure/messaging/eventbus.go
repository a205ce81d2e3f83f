// Package messaging implements the event bus that carries wellness change
// notifications to dashboard sessions, plus a Redis bridge that relays
// them between service instances.
package messaging

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/campuscare/wellness-hub/internal/domain/shared"
	"github.com/campuscare/wellness-hub/pkg/logger"
)

var (
	// ErrEventBusClosed is returned when publishing to or subscribing on a closed bus.
	ErrEventBusClosed = errors.New("event bus is closed")

	// ErrNilHandler is returned when subscribing a nil handler.
	ErrNilHandler = errors.New("handler cannot be nil")
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

type subscription struct {
	id      uint64
	handler shared.EventHandler
}

// InMemoryEventBus is an in-process implementation of shared.EventBus.
// In sync mode handlers run on the publishing goroutine, in registration
// order, and Publish returns after all of them.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]subscription
	allHandlers []subscription
	nextID      uint64

	asyncMode  bool
	workerPool chan struct{}
	logger     *logger.Logger
	metrics    *EventBusMetrics
	closed     bool
	closeCh    chan struct{}
	wg         sync.WaitGroup
}

// InMemoryEventBusConfig contains configuration for InMemoryEventBus.
type InMemoryEventBusConfig struct {
	// AsyncMode runs each handler on its own goroutine.
	AsyncMode bool

	// WorkerPoolSize bounds concurrent async handlers.
	WorkerPoolSize int

	Logger *logger.Logger
}

// DefaultInMemoryEventBusConfig returns the synchronous configuration used
// by dashboard sessions.
func DefaultInMemoryEventBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:      false,
		WorkerPoolSize: 10,
	}
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config InMemoryEventBusConfig) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}

	return &InMemoryEventBus{
		handlers:   make(map[shared.EventType][]subscription),
		asyncMode:  config.AsyncMode,
		workerPool: make(chan struct{}, config.WorkerPoolSize),
		logger:     config.Logger.With(logger.Component("event_bus")),
		metrics:    NewEventBusMetrics(),
		closeCh:    make(chan struct{}),
	}
}

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	_, err := b.add(eventType, handler)
	return err
}

// SubscribeAll registers a handler for all events.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	_, err := b.add("", handler)
	return err
}

// Listen registers a handler for all events and returns a function that
// removes it. The returned function is safe to call more than once.
func (b *InMemoryEventBus) Listen(handler shared.EventHandler) (func(), error) {
	id, err := b.add("", handler)
	if err != nil {
		return func() {}, err
	}

	var once sync.Once
	return func() { once.Do(func() { b.remove(id) }) }, nil
}

func (b *InMemoryEventBus) add(eventType shared.EventType, handler shared.EventHandler) (uint64, error) {
	if handler == nil {
		return 0, ErrNilHandler
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrEventBusClosed
	}

	b.nextID++
	sub := subscription{id: b.nextID, handler: handler}
	if eventType == "" {
		b.allHandlers = append(b.allHandlers, sub)
	} else {
		b.handlers[eventType] = append(b.handlers[eventType], sub)
	}
	return sub.id, nil
}

func (b *InMemoryEventBus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.allHandlers = without(b.allHandlers, id)
	for t, subs := range b.handlers {
		b.handlers[t] = without(subs, id)
	}
}

func without(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// Publish sends an event to all subscribed handlers. Handler errors and
// panics are logged and never returned to the publisher.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}

	typed := b.handlers[event.EventType()]
	handlers := make([]shared.EventHandler, 0, len(typed)+len(b.allHandlers))
	for _, s := range typed {
		handlers = append(handlers, s.handler)
	}
	for _, s := range b.allHandlers {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	b.metrics.RecordPublish(event.EventType())

	for _, handler := range handlers {
		if b.asyncMode {
			b.executeAsync(event, handler)
			continue
		}
		if err := b.execute(event, handler); err != nil {
			b.logger.Error("handler error",
				logger.String("event_type", string(event.EventType())),
				logger.Err(err),
			)
		}
	}

	return nil
}

// executeAsync executes a handler asynchronously using the worker pool.
func (b *InMemoryEventBus) executeAsync(event shared.Event, handler shared.EventHandler) {
	b.wg.Add(1)

	go func() {
		defer b.wg.Done()

		select {
		case b.workerPool <- struct{}{}:
			defer func() { <-b.workerPool }()
		case <-b.closeCh:
			return
		}

		if err := b.execute(event, handler); err != nil {
			b.logger.Error("async handler error",
				logger.String("event_type", string(event.EventType())),
				logger.Err(err),
			)
		}
	}()
}

func (b *InMemoryEventBus) execute(event shared.Event, handler shared.EventHandler) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		b.metrics.RecordHandlerExecution(time.Since(start), err == nil)
	}()

	return handler(event)
}

// Close stops accepting events and waits for async handlers.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()

	b.logger.Debug("event bus closed")
	return nil
}

// Metrics returns the bus counters.
func (b *InMemoryEventBus) Metrics() *EventBusMetrics {
	return b.metrics
}

// ══════════════════════════════════════════════════════════════════════════════
// METRICS
// ══════════════════════════════════════════════════════════════════════════════

// EventBusMetrics counts published events and handler outcomes.
type EventBusMetrics struct {
	mu              sync.Mutex
	published       map[shared.EventType]int64
	handlerSuccess  atomic.Int64
	handlerFailures atomic.Int64
	totalDuration   atomic.Int64
}

// NewEventBusMetrics creates zeroed metrics.
func NewEventBusMetrics() *EventBusMetrics {
	return &EventBusMetrics{published: make(map[shared.EventType]int64)}
}

// RecordPublish counts a published event.
func (m *EventBusMetrics) RecordPublish(eventType shared.EventType) {
	m.mu.Lock()
	m.published[eventType]++
	m.mu.Unlock()
}

// RecordHandlerExecution counts one handler run.
func (m *EventBusMetrics) RecordHandlerExecution(d time.Duration, success bool) {
	if success {
		m.handlerSuccess.Add(1)
	} else {
		m.handlerFailures.Add(1)
	}
	m.totalDuration.Add(int64(d))
}

// EventBusMetricsSnapshot is a point-in-time copy of the metrics.
type EventBusMetricsSnapshot struct {
	Published       map[shared.EventType]int64 `json:"published"`
	HandlerSuccess  int64                      `json:"handlerSuccess"`
	HandlerFailures int64                      `json:"handlerFailures"`
	AvgHandlerTime  time.Duration              `json:"avgHandlerTime"`
}

// Snapshot copies the current counters.
func (m *EventBusMetrics) Snapshot() EventBusMetricsSnapshot {
	m.mu.Lock()
	published := make(map[shared.EventType]int64, len(m.published))
	for k, v := range m.published {
		published[k] = v
	}
	m.mu.Unlock()

	s := EventBusMetricsSnapshot{
		Published:       published,
		HandlerSuccess:  m.handlerSuccess.Load(),
		HandlerFailures: m.handlerFailures.Load(),
	}
	if runs := s.HandlerSuccess + s.HandlerFailures; runs > 0 {
		s.AvgHandlerTime = time.Duration(m.totalDuration.Load() / runs)
	}
	return s
}
