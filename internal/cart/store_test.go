package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type stubKV struct {
	values  map[string]string
	lastTTL time.Duration
}

func newStubKV() *stubKV {
	return &stubKV{values: make(map[string]string)}
}

func (s *stubKV) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *stubKV) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	s.values[key] = value.(string)
	s.lastTTL = ttl
	return nil
}

func (s *stubKV) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func (s *stubKV) CartKey(cartKey string) string {
	return "ml:cart:" + cartKey
}

func TestNewRedisStoreValidation(t *testing.T) {
	if _, err := NewRedisStore(nil, time.Hour); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := NewRedisStore(newStubKV(), 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	kv := newStubKV()
	store, err := NewRedisStore(kv, 30*time.Minute)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	ctx := context.Background()

	c := Add(Cart{}, testItem(uuid.New(), 1000, 5, 2))
	if err := store.Put(ctx, "cart-1", c); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if kv.lastTTL != 30*time.Minute {
		t.Fatalf("expected cart ttl on write, got %s", kv.lastTTL)
	}
	if _, ok := kv.values["ml:cart:cart-1"]; !ok {
		t.Fatal("expected cart stored under the namespaced key")
	}

	got, found, err := store.Get(ctx, "cart-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("expected cart to be found")
	}
	if len(got.Items) != 1 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected cart after round trip: %+v", got)
	}
}

func TestRedisStoreMissingKey(t *testing.T) {
	store, err := NewRedisStore(newStubKV(), time.Hour)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}

	c, found, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found || !c.IsEmpty() {
		t.Fatal("expected empty result for a missing key")
	}
}

func TestRedisStoreDelete(t *testing.T) {
	kv := newStubKV()
	store, err := NewRedisStore(kv, time.Hour)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	ctx := context.Background()

	if err := store.Put(ctx, "cart-1", Cart{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(ctx, "cart-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := store.Get(ctx, "cart-1"); found {
		t.Fatal("expected cart gone after delete")
	}
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	item := testItem(uuid.New(), 1000, 5, 2)
	c := Add(Cart{}, item)
	if err := store.Put(ctx, "cart-1", c); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Mutating a retrieved snapshot must not affect the stored copy.
	got, _, err := store.Get(ctx, "cart-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got.Items[0].Quantity = 99

	again, _, err := store.Get(ctx, "cart-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if again.Items[0].Quantity != 2 {
		t.Fatalf("expected stored cart unchanged, got quantity %d", again.Items[0].Quantity)
	}
}
