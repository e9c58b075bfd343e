package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"partmatch/internal/domain/entity"
	"partmatch/pkg/logger"
)

// Channel is the Redis channel carrying change events between instances.
const Channel = "partmatch:realtime"

// Dispatcher delivers an event to this instance's connected clients.
type Dispatcher interface {
	Dispatch(event *entity.ChangeEvent) int
}

// LocalPublisher delivers events only to clients connected to this process.
type LocalPublisher struct {
	dispatcher Dispatcher
	observe    func(table string)
}

func NewLocalPublisher(dispatcher Dispatcher) *LocalPublisher {
	return &LocalPublisher{dispatcher: dispatcher}
}

// OnPublish registers a hook called once per published event.
func (p *LocalPublisher) OnPublish(fn func(table string)) {
	p.observe = fn
}

func (p *LocalPublisher) Publish(ctx context.Context, event *entity.ChangeEvent) error {
	p.dispatcher.Dispatch(event)
	if p.observe != nil {
		p.observe(event.Table)
	}
	return nil
}

// RedisPublisher publishes events on a Redis channel; every instance, this one
// included, receives them through Run and dispatches locally.
type RedisPublisher struct {
	client     *redis.Client
	dispatcher Dispatcher
	observe    func(table string)
	onFailure  func(err error)
	run        func(ctx context.Context) error
}

func NewRedisPublisher(client *redis.Client, dispatcher Dispatcher) *RedisPublisher {
	p := &RedisPublisher{
		client:     client,
		dispatcher: dispatcher,
	}
	p.run = p.Run
	return p
}

// Backoff bounds the delay between subscriber restarts.
type Backoff struct {
	Min time.Duration
	Max time.Duration
}

var DefaultBackoff = Backoff{Min: 500 * time.Millisecond, Max: 30 * time.Second}

// OnFailure registers a hook called each time the subscriber loop stops
// before ctx is cancelled.
func (p *RedisPublisher) OnFailure(fn func(err error)) {
	p.onFailure = fn
}

func (p *RedisPublisher) OnPublish(fn func(table string)) {
	p.observe = fn
}

func (p *RedisPublisher) Publish(ctx context.Context, event *entity.ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode change event: %w", err)
	}
	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change event: %w", err)
	}
	if p.observe != nil {
		p.observe(event.Table)
	}
	return nil
}

// Run consumes the channel until ctx is cancelled.
func (p *RedisPublisher) Run(ctx context.Context) error {
	sub := p.client.Subscribe(ctx, Channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", Channel, err)
	}
	logger.Info("Realtime bridge subscribed to %s", Channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			p.handle(msg.Payload)
		}
	}
}

// Serve keeps the subscriber loop alive until ctx is cancelled. After a
// failure it waits, doubling the delay up to backoff.Max; a run that lasted
// longer than backoff.Max resets the delay.
func (p *RedisPublisher) Serve(ctx context.Context, backoff Backoff) {
	if backoff.Min <= 0 {
		backoff.Min = DefaultBackoff.Min
	}
	if backoff.Max < backoff.Min {
		backoff.Max = backoff.Min
	}

	delay := backoff.Min
	for {
		started := time.Now()
		err := p.run(ctx)
		if ctx.Err() != nil {
			return
		}
		if err == nil {
			err = fmt.Errorf("subscription to %s closed", Channel)
		}
		if time.Since(started) > backoff.Max {
			delay = backoff.Min
		}

		logger.Error("Realtime bridge stopped, resubscribing in %v: %v", delay, err)
		if p.onFailure != nil {
			p.onFailure(err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		delay *= 2
		if delay > backoff.Max {
			delay = backoff.Max
		}
	}
}

func (p *RedisPublisher) handle(payload string) {
	var event entity.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		logger.Warn("Realtime bridge: dropping malformed event: %v", err)
		return
	}
	p.dispatcher.Dispatch(&event)
}

// NewRedisClient connects and pings, as the service refuses to start with an
// unreachable broker.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}
