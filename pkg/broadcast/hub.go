// Package broadcast fans committed project updates out to every subscribed session.
//
// Delivery is best-effort: each subscription has a small buffer and a message that
// does not fit is dropped for that subscriber. A session that misses messages recovers
// by reloading the project when it reconnects.
package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/unitgrid/internal/logging"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/google/uuid"
)

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 10

// Subscription is one session's view of a project's update stream.
type Subscription struct {
	ID        uuid.UUID
	ProjectID string

	ch   chan domain.UpdateMessage
	hub  *Hub
	once sync.Once
}

// C delivers update messages. It is closed when the subscription ends.
func (s *Subscription) C() <-chan domain.UpdateMessage { return s.ch }

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() { s.hub.Unsubscribe(s) }

// Hub keeps the subscriber set per project.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[*Subscription]struct{}

	buffer int
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// Option configures the Hub.
type Option func(*Hub)

// WithLogger configures a logger for the Hub.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithBuffer sets the per-subscription buffer size.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithHooks registers lifecycle hooks. Only OnBroadcast is used by the Hub.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(h *Hub) {
		h.hooks = hooks
	}
}

// NewHub creates an empty Hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subscribers: make(map[string]map[*Subscription]struct{}),
		buffer:      DefaultBuffer,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a new subscription for projectID.
func (h *Hub) Subscribe(projectID string) *Subscription {
	sub := &Subscription{
		ID:        uuid.New(),
		ProjectID: projectID,
		ch:        make(chan domain.UpdateMessage, h.buffer),
		hub:       h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.subscribers[projectID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.subscribers[projectID] = subs
	}
	subs[sub] = struct{}{}

	h.logger.Debug("Subscriber added", "project_id", projectID, "subscriber_id", sub.ID, "count", len(subs))
	return sub
}

// Unsubscribe removes sub and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	sub.once.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, ok := h.subscribers[sub.ProjectID]; ok {
			delete(subs, sub)
			if len(subs) == 0 {
				delete(h.subscribers, sub.ProjectID)
			}
		}
		close(sub.ch)
		h.logger.Debug("Subscriber removed", "project_id", sub.ProjectID, "subscriber_id", sub.ID)
	})
}

// Broadcast pushes msg to every current subscriber of msg.ProjectID, including the
// one whose edit produced it. It never blocks.
func (h *Hub) Broadcast(msg domain.UpdateMessage) (delivered, dropped int) {
	h.mu.RLock()
	for sub := range h.subscribers[msg.ProjectID] {
		select {
		case sub.ch <- msg:
			delivered++
		default:
			dropped++
			h.logger.Warn("Subscriber buffer full, dropping update",
				"project_id", msg.ProjectID,
				"subscriber_id", sub.ID,
			)
		}
	}
	h.mu.RUnlock()

	h.logger.Debug("Broadcast", "project_id", msg.ProjectID, "delivered", delivered, "dropped", dropped)
	if h.hooks.OnBroadcast != nil {
		h.hooks.OnBroadcast(context.Background(), &domain.BroadcastEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventRemoteUpdate,
				ProjectID: msg.ProjectID,
			},
			Delivered: delivered,
			Dropped:   dropped,
		})
	}
	return delivered, dropped
}

// Publish implements ports.Publisher for a single-process deployment.
func (h *Hub) Publish(_ context.Context, msg domain.UpdateMessage) error {
	h.Broadcast(msg)
	return nil
}

// Count returns the number of subscribers for projectID.
func (h *Hub) Count(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[projectID])
}

// Total returns the number of subscribers across all projects.
func (h *Hub) Total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, subs := range h.subscribers {
		n += len(subs)
	}
	return n
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.RLock()
	var all []*Subscription
	for _, subs := range h.subscribers {
		for sub := range subs {
			all = append(all, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range all {
		h.Unsubscribe(sub)
	}
}
