package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/unitgrid/internal/logging"
	"github.com/aretw0/unitgrid/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel update messages travel on.
const DefaultChannel = "unitgrid:updates"

// Bus implements ports.Publisher over Redis pub/sub. Every replica runs Forward,
// so a mutation handled by one replica reaches subscribers connected to any of them.
type Bus struct {
	client  *backend.Client
	channel string
	logger  *slog.Logger
}

// BusOption configures the Bus.
type BusOption func(*Bus)

// WithChannel overrides the pub/sub channel.
func WithChannel(channel string) BusOption {
	return func(b *Bus) {
		if channel != "" {
			b.channel = channel
		}
	}
}

// WithBusLogger configures a logger for the Bus.
func WithBusLogger(logger *slog.Logger) BusOption {
	return func(b *Bus) {
		b.logger = logger
	}
}

// NewBus creates a Bus over an existing client.
func NewBus(client *backend.Client, opts ...BusOption) *Bus {
	b := &Bus{
		client:  client,
		channel: DefaultChannel,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends msg to every replica.
func (b *Bus) Publish(ctx context.Context, msg domain.UpdateMessage) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish update: %w", err)
	}
	return nil
}

// Forward subscribes to the channel and hands every message to deliver until ctx is
// done. It returns once the subscription is confirmed and forwarding runs in the
// background; the returned channel is closed when forwarding stops.
func (b *Bus) Forward(ctx context.Context, deliver func(domain.UpdateMessage)) (<-chan struct{}, error) {
	if deliver == nil {
		return nil, errors.New("deliver callback required")
	}

	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redis subscribe: %w", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer sub.Close()

		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				var msg domain.UpdateMessage
				if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
					b.logger.Warn("Bad update payload on bus", "channel", b.channel, "err", err)
					continue
				}
				deliver(msg)
			}
		}
	}()
	return done, nil
}
