package broadcast_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/unitgrid/pkg/broadcast"
	"github.com/aretw0/unitgrid/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(projectID string, rows ...domain.Row) domain.UpdateMessage {
	return domain.UpdateMessage{ProjectID: projectID, InputData: domain.Grid(rows)}
}

func TestHub_BroadcastReachesAllSubscribersOfProject(t *testing.T) {
	h := broadcast.NewHub()
	a := h.Subscribe("p1")
	b := h.Subscribe("p1")
	other := h.Subscribe("p2")
	defer h.Close()

	delivered, dropped := h.Broadcast(msg("p1", domain.Row{"A"}))

	assert.Equal(t, 2, delivered)
	assert.Zero(t, dropped)

	gotA := <-a.C()
	gotB := <-b.C()
	assert.Equal(t, gotA.InputData, gotB.InputData)
	assert.Equal(t, domain.Grid{{"A"}}, gotA.InputData)

	select {
	case m := <-other.C():
		t.Fatalf("unexpected message for p2: %+v", m)
	default:
	}
}

func TestHub_NoSubscribers(t *testing.T) {
	h := broadcast.NewHub()

	delivered, dropped := h.Broadcast(msg("nobody"))

	assert.Zero(t, delivered)
	assert.Zero(t, dropped)
}

func TestHub_FullBufferDrops(t *testing.T) {
	var events []*domain.BroadcastEvent
	h := broadcast.NewHub(
		broadcast.WithBuffer(1),
		broadcast.WithHooks(domain.LifecycleHooks{
			OnBroadcast: func(_ context.Context, e *domain.BroadcastEvent) { events = append(events, e) },
		}),
	)
	sub := h.Subscribe("p1")
	defer sub.Close()

	d1, _ := h.Broadcast(msg("p1", domain.Row{"1"}))
	d2, dropped := h.Broadcast(msg("p1", domain.Row{"2"}))

	assert.Equal(t, 1, d1)
	assert.Zero(t, d2)
	assert.Equal(t, 1, dropped)
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[1].Dropped)

	first := <-sub.C()
	assert.Equal(t, domain.Grid{{"1"}}, first.InputData)
}

func TestHub_UnsubscribeClosesChannel(t *testing.T) {
	h := broadcast.NewHub()
	sub := h.Subscribe("p1")
	require.Equal(t, 1, h.Count("p1"))

	sub.Close()
	sub.Close()

	_, open := <-sub.C()
	assert.False(t, open)
	assert.Zero(t, h.Count("p1"))
	assert.Zero(t, h.Total())
}

func TestHub_ConcurrentSubscribeAndBroadcast(t *testing.T) {
	h := broadcast.NewHub()
	defer h.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub := h.Subscribe("p1")
			sub.Close()
		}()
		go func() {
			defer wg.Done()
			_ = h.Publish(context.Background(), msg("p1"))
		}()
	}
	wg.Wait()

	assert.Zero(t, h.Count("p1"))
}
