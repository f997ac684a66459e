package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60
)

// Events pushed to batch rooms.
const (
	EventAttendanceMarked = "attendance_marked"
	EventPhaseChanged     = "phase_changed"
	EventReportReady      = "report_ready"
)

// Hub maintains batch_id -> set of connections and broadcasts messages.
// Uses Redis pub/sub for horizontal scaling: local broadcast + publish to Redis.
type Hub struct {
	// batchID -> map[clientID]*Client
	rooms    map[uuid.UUID]map[string]*Client
	subs     map[uuid.UUID]func() // cancel Redis subscription per batch
	mu       sync.RWMutex
	logger   *zap.Logger
	redis    RedisPublisher
	redisSub RedisSubscriber
}

// RedisPublisher is the interface for publishing to Redis (for cross-instance broadcast).
type RedisPublisher interface {
	PublishBatchEvent(batchID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to batch channels and invokes handler for incoming events.
type RedisSubscriber interface {
	SubscribeBatch(batchID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		rooms:    make(map[uuid.UUID]map[string]*Client),
		subs:     make(map[uuid.UUID]func()),
		logger:   logger,
		redis:    redisPub,
		redisSub: redisSub,
	}
}

// Register adds a client to a batch room. Starts Redis subscription for this batch if first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.BatchID] == nil {
		h.rooms[c.BatchID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeBatch(c.BatchID, func(event string, payload []byte) {
				h.BroadcastToBatch(c.BatchID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.BatchID] = cancel
			}
		}
	}
	h.rooms[c.BatchID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined batch room", zap.String("client_id", c.ID), zap.String("batch_id", c.BatchID.String()))
}

// Unregister removes a client from a batch room. Cancels Redis subscription when last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.BatchID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.BatchID)
			if cancel, ok := h.subs[c.BatchID]; ok {
				cancel()
				delete(h.subs, c.BatchID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left batch room", zap.String("client_id", c.ID), zap.String("batch_id", c.BatchID.String()))
}

// BroadcastToBatch sends a message to all clients in a batch room (local only).
func (h *Hub) BroadcastToBatch(batchID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	clients := h.rooms[batchID]
	h.mu.RUnlock()

	if clients == nil {
		return
	}
	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// PublishToBatchOnly publishes to Redis only (no local broadcast), so the
// Redis subscriber callback performs the broadcast once for all instances,
// avoiding duplicate delivery to local clients. Without Redis configured the
// local broadcast happens directly.
func (h *Hub) PublishToBatchOnly(batchID uuid.UUID, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if h.redis != nil {
		_ = h.redis.PublishBatchEvent(batchID, event, data)
		return
	}
	h.BroadcastToBatch(batchID, event, payload)
}

// WatcherCount returns the number of connected clients in a batch room.
func (h *Hub) WatcherCount(batchID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[batchID])
}
