package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultChannel is the Redis pub/sub channel used when none is configured.
const DefaultChannel = "coconsult:events"

// RedisBus shares events between app instances over Redis pub/sub.
// Each instance relays what it receives to its local subscribers.
type RedisBus struct {
	client  *redis.Client
	channel string
	local   *MemoryBus
	pubsub  *redis.PubSub
	cancel  context.CancelFunc
	done    chan struct{}
	logger  *zap.Logger
}

// NewRedisBus subscribes to channel and starts relaying. The client is
// owned by the caller.
func NewRedisBus(ctx context.Context, client *redis.Client, channel string, logger *zap.Logger) (*RedisBus, error) {
	if channel == "" {
		channel = DefaultChannel
	}

	pubsub := client.Subscribe(ctx, channel)
	// Wait for the subscription to be confirmed so publishes that follow are seen.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	relayCtx, cancel := context.WithCancel(context.Background())
	b := &RedisBus{
		client:  client,
		channel: channel,
		local:   NewMemoryBus(),
		pubsub:  pubsub,
		cancel:  cancel,
		done:    make(chan struct{}),
		logger:  logger,
	}
	go b.relay(relayCtx)
	return b, nil
}

func (b *RedisBus) relay(ctx context.Context) {
	defer close(b.done)
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ev, err := decode([]byte(msg.Payload))
			if err != nil {
				b.logger.Warn("dropping malformed event", zap.String("channel", b.channel), zap.Error(err))
				continue
			}
			_ = b.local.Publish(ctx, ev)
		}
	}
}

// Publish implements Bus.
func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := encode(ev)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe implements Bus.
func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, func()) {
	return b.local.Subscribe(ctx)
}

// Close stops relaying and closes local subscriptions.
func (b *RedisBus) Close() error {
	b.cancel()
	err := b.pubsub.Close()
	<-b.done
	_ = b.local.Close()
	return err
}
