package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campuscare/wellness-hub/internal/domain/shared"
	redisstore "github.com/campuscare/wellness-hub/internal/infrastructure/persistence/redis"
	"github.com/campuscare/wellness-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// REDIS BRIDGE
// Relays selected local events to a Redis channel and replays events from
// other instances onto the local bus as shared.RelayedEvent values.
// ══════════════════════════════════════════════════════════════════════════════

// RedisClient defines the pub/sub operations the bridge needs.
type RedisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan RedisMessage, error)
}

// RedisMessage represents a message received from Redis Pub/Sub.
type RedisMessage struct {
	Channel string
	Payload string
	Err     error
}

// RedisBridgeConfig contains configuration for RedisBridge.
type RedisBridgeConfig struct {
	Client RedisClient
	Local  *InMemoryEventBus

	// Channel defaults to redisstore.PubSubChannel("events").
	Channel string

	// InstanceID identifies this process. Generated when empty.
	InstanceID string

	// Forward lists the event types sent to other instances.
	Forward []shared.EventType

	Logger *logger.Logger
}

// RedisBridge connects a local bus to other instances.
type RedisBridge struct {
	client     RedisClient
	local      *InMemoryEventBus
	channel    string
	instanceID string
	logger     *logger.Logger
	stopLocal  func()

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRedisBridge subscribes to the channel and starts relaying.
func NewRedisBridge(config RedisBridgeConfig) (*RedisBridge, error) {
	if config.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if config.Local == nil {
		return nil, errors.New("local bus is required")
	}
	if config.Channel == "" {
		config.Channel = redisstore.PubSubChannel("events")
	}
	if config.InstanceID == "" {
		config.InstanceID = uuid.NewString()
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	b := &RedisBridge{
		client:     config.Client,
		local:      config.Local,
		channel:    config.Channel,
		instanceID: config.InstanceID,
		logger:     config.Logger.With(logger.Component("redis_bridge"), logger.String("instance_id", config.InstanceID)),
		ctx:        ctx,
		cancel:     cancel,
	}

	messages, err := b.client.Subscribe(ctx, b.channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	forward := make(map[shared.EventType]bool, len(config.Forward))
	for _, t := range config.Forward {
		forward[t] = true
	}
	stop, err := b.local.Listen(func(e shared.Event) error {
		if _, relayed := e.(shared.RelayedEvent); relayed || !forward[e.EventType()] {
			return nil
		}
		return b.publish(e)
	})
	if err != nil {
		cancel()
		return nil, err
	}
	b.stopLocal = stop

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.subscriptionLoop(messages)
	}()

	return b, nil
}

// InstanceID returns the identifier stamped on outgoing events.
func (b *RedisBridge) InstanceID() string {
	return b.instanceID
}

func (b *RedisBridge) publish(e shared.Event) error {
	envelope := eventEnvelope{
		InstanceID:  b.instanceID,
		EventType:   e.EventType(),
		AggregateID: e.AggregateID(),
		OccurredAt:  e.OccurredAt(),
		Payload:     e.Payload(),
	}

	ctx, cancel := context.WithTimeout(b.ctx, 2*time.Second)
	defer cancel()

	if err := b.client.Publish(ctx, b.channel, envelope); err != nil {
		return fmt.Errorf("publish to redis: %w", err)
	}
	return nil
}

func (b *RedisBridge) subscriptionLoop(messages <-chan RedisMessage) {
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if msg.Err != nil {
				b.logger.Error("redis subscription error", logger.Err(msg.Err))
				continue
			}
			b.handleMessage(msg)
		}
	}
}

func (b *RedisBridge) handleMessage(msg RedisMessage) {
	var envelope eventEnvelope
	if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
		b.logger.Warn("dropping undecodable event", logger.Err(err))
		return
	}

	if envelope.InstanceID == b.instanceID {
		return
	}

	event := &remoteEvent{envelope: envelope}
	if err := b.local.Publish(event); err != nil && !errors.Is(err, ErrEventBusClosed) {
		b.logger.Error("failed to replay remote event", logger.Err(err))
	}
}

// Close stops relaying. The local bus is left open.
func (b *RedisBridge) Close() error {
	b.stopLocal()
	b.cancel()
	b.wg.Wait()
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT ENVELOPE (for serialization)
// ══════════════════════════════════════════════════════════════════════════════

type eventEnvelope struct {
	InstanceID  string                 `json:"instance_id"`
	EventType   shared.EventType       `json:"event_type"`
	AggregateID string                 `json:"aggregate_id"`
	OccurredAt  time.Time              `json:"occurred_at"`
	Payload     map[string]interface{} `json:"payload"`
}

type remoteEvent struct {
	envelope eventEnvelope
}

func (e *remoteEvent) EventType() shared.EventType     { return e.envelope.EventType }
func (e *remoteEvent) AggregateID() string             { return e.envelope.AggregateID }
func (e *remoteEvent) OccurredAt() time.Time           { return e.envelope.OccurredAt }
func (e *remoteEvent) Payload() map[string]interface{} { return e.envelope.Payload }
func (e *remoteEvent) SourceInstance() string          { return e.envelope.InstanceID }

// ══════════════════════════════════════════════════════════════════════════════
// REDIS ADAPTER
// ══════════════════════════════════════════════════════════════════════════════

type cacheClient struct {
	cache *redisstore.Cache
}

// NewRedisClient adapts a Redis cache to RedisClient.
func NewRedisClient(cache *redisstore.Cache) RedisClient {
	return &cacheClient{cache: cache}
}

func (c *cacheClient) Publish(ctx context.Context, channel string, message interface{}) error {
	return c.cache.Publish(ctx, channel, message)
}

// Subscribe forwards messages until ctx is cancelled.
func (c *cacheClient) Subscribe(ctx context.Context, channel string) (<-chan RedisMessage, error) {
	ps := c.cache.Subscribe(ctx, channel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}

	out := make(chan RedisMessage)
	go func() {
		defer close(out)
		defer ps.Close()

		in := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- RedisMessage{Channel: m.Channel, Payload: m.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
