package realtime

import (
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// loopbackPubSub delivers every publish back to the publishing instance's own
// subscription, the way a shared Redis channel does.
type loopbackPubSub struct {
	handlers map[uuid.UUID]func(event string, payload []byte)
}

func newLoopbackPubSub() *loopbackPubSub {
	return &loopbackPubSub{handlers: make(map[uuid.UUID]func(string, []byte))}
}

func (l *loopbackPubSub) PublishBatchEvent(batchID uuid.UUID, event string, payload []byte) error {
	if fn, ok := l.handlers[batchID]; ok {
		fn(event, payload)
	}
	return nil
}

func (l *loopbackPubSub) SubscribeBatch(batchID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	l.handlers[batchID] = handler
	return func() { delete(l.handlers, batchID) }, nil
}

func newTestClient(batchID uuid.UUID) *Client {
	return &Client{
		ID:      uuid.NewString(),
		BatchID: batchID,
		send:    make(chan WSMessage, 8),
	}
}

func TestPublishDeliversOncePerClient(t *testing.T) {
	ps := newLoopbackPubSub()
	hub := NewHub(zap.NewNop(), ps, ps)

	batchID := uuid.New()
	c := newTestClient(batchID)
	hub.Register(c)
	defer hub.Unregister(c)

	hub.PublishToBatchOnly(batchID, EventAttendanceMarked, map[string]string{"date": "2024-01-05"})

	if got := len(c.send); got != 1 {
		t.Fatalf("client received %d copies of one event, want 1", got)
	}
	msg := <-c.send
	if msg.Event != EventAttendanceMarked {
		t.Errorf("event = %q, want %q", msg.Event, EventAttendanceMarked)
	}
}

func TestPublishWithoutRedisBroadcastsLocally(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)

	batchID := uuid.New()
	c := newTestClient(batchID)
	hub.Register(c)
	defer hub.Unregister(c)

	hub.PublishToBatchOnly(batchID, EventPhaseChanged, map[string]string{"to": "training"})

	if got := len(c.send); got != 1 {
		t.Fatalf("client received %d copies, want 1", got)
	}
}

func TestUnregisterCancelsSubscription(t *testing.T) {
	ps := newLoopbackPubSub()
	hub := NewHub(zap.NewNop(), ps, ps)

	batchID := uuid.New()
	c := newTestClient(batchID)
	hub.Register(c)
	if hub.WatcherCount(batchID) != 1 {
		t.Fatalf("WatcherCount = %d, want 1", hub.WatcherCount(batchID))
	}

	hub.Unregister(c)
	if hub.WatcherCount(batchID) != 0 {
		t.Errorf("WatcherCount after Unregister = %d, want 0", hub.WatcherCount(batchID))
	}
	if _, subscribed := ps.handlers[batchID]; subscribed {
		t.Error("redis subscription survived the last client leaving")
	}
}
