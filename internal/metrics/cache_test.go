package metrics

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/qualitrack/backend/internal/models"
)

func testKey() Key {
	return Key{OrganizationID: uuid.New(), BatchID: uuid.New()}
}

func TestCachePutGet(t *testing.T) {
	c := NewCache(time.Minute)
	key := testKey()

	if got := c.Get(key); got != nil {
		t.Fatalf("Get on empty cache = %v, want nil", got)
	}

	want := &models.BatchMetrics{OverallProgress: 42}
	c.Put(key, want)
	if got := c.Get(key); got != want {
		t.Errorf("Get = %v, want the stored value", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := NewCache(time.Minute)
	now := day("2024-06-01")
	c.clock = func() time.Time { return now }

	key := testKey()
	c.Put(key, &models.BatchMetrics{})

	now = now.Add(59 * time.Second)
	if c.Get(key) == nil {
		t.Error("entry expired before its TTL")
	}

	now = now.Add(2 * time.Second)
	if got := c.Get(key); got != nil {
		t.Errorf("Get after TTL = %v, want nil", got)
	}
}

func TestCacheInvalidateNotifiesSubscribers(t *testing.T) {
	c := NewCache(time.Minute)
	key := testKey()
	c.Put(key, &models.BatchMetrics{})

	var fired []Key
	cancel := c.Subscribe(key, func(k Key) { fired = append(fired, k) })

	c.Invalidate(key)
	if c.Get(key) != nil {
		t.Error("entry survived Invalidate")
	}
	if len(fired) != 1 || fired[0] != key {
		t.Errorf("subscriber fired %v, want exactly [%v]", fired, key)
	}

	cancel()
	c.Put(key, &models.BatchMetrics{})
	c.Invalidate(key)
	if len(fired) != 1 {
		t.Errorf("cancelled subscriber fired again, %d notifications total", len(fired))
	}
}

func TestCacheInvalidateBatchAcrossOrganizations(t *testing.T) {
	c := NewCache(time.Minute)
	batchID := uuid.New()
	k1 := Key{OrganizationID: uuid.New(), BatchID: batchID}
	k2 := Key{OrganizationID: uuid.New(), BatchID: batchID}
	other := testKey()

	c.Put(k1, &models.BatchMetrics{})
	c.Put(k2, &models.BatchMetrics{})
	c.Put(other, &models.BatchMetrics{})

	c.InvalidateBatch(batchID)

	if c.Get(k1) != nil || c.Get(k2) != nil {
		t.Error("batch entries survived InvalidateBatch")
	}
	if c.Get(other) == nil {
		t.Error("unrelated entry was dropped")
	}
}

func TestCacheInvalidateBatchNotifiesEntrylessSubscriber(t *testing.T) {
	c := NewCache(time.Minute)
	key := testKey()

	fired := 0
	defer c.Subscribe(key, func(Key) { fired++ })()

	// No entry under key: the subscription alone must still be notified.
	c.InvalidateBatch(key.BatchID)
	if fired != 1 {
		t.Errorf("subscriber fired %d times, want 1", fired)
	}
}
