package metrics

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// invalidateChannel carries batch invalidation messages between instances.
const invalidateChannel = "metrics:invalidate"

type invalidateMsg struct {
	Instance string    `json:"instance"`
	BatchID  uuid.UUID `json:"batch_id"`
}

// Broadcaster fans cache invalidations out across instances over Redis
// pub/sub. Mutation handlers call InvalidateBatch; every instance, including
// the caller's, drops the batch's cached metrics.
type Broadcaster struct {
	cache    *Cache
	client   *redis.Client
	instance string
	logger   *zap.Logger
}

// NewBroadcaster creates a broadcaster bound to a cache. client may be nil,
// in which case invalidation stays local.
func NewBroadcaster(cache *Cache, client *redis.Client, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		cache:    cache,
		client:   client,
		instance: uuid.NewString(),
		logger:   logger,
	}
}

// Cache returns the underlying cache.
func (b *Broadcaster) Cache() *Cache { return b.cache }

// InvalidateBatch drops the batch's entries locally and tells the other
// instances to do the same.
func (b *Broadcaster) InvalidateBatch(ctx context.Context, batchID uuid.UUID) {
	b.cache.InvalidateBatch(batchID)
	if b.client == nil {
		return
	}
	body, err := json.Marshal(invalidateMsg{Instance: b.instance, BatchID: batchID})
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, invalidateChannel, body).Err(); err != nil {
		b.logger.Warn("publish metrics invalidation", zap.Error(err))
	}
}

// Listen consumes invalidation messages until ctx is done. Messages from this
// instance are skipped since the local drop already happened.
func (b *Broadcaster) Listen(ctx context.Context) {
	if b.client == nil {
		return
	}
	pubsub := b.client.Subscribe(ctx, invalidateChannel)
	defer pubsub.Close()
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var m invalidateMsg
			if err := json.Unmarshal([]byte(msg.Payload), &m); err != nil {
				continue
			}
			if m.Instance == b.instance {
				continue
			}
			b.cache.InvalidateBatch(m.BatchID)
		}
	}
}
