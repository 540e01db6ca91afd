package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store persists cart snapshots by cart key. Writes are full-value replaces;
// last write wins.
type Store interface {
	Get(ctx context.Context, key string) (Cart, bool, error)
	Put(ctx context.Context, key string, c Cart) error
	Delete(ctx context.Context, key string) error
}

type cartKV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(cartKey string) string
}

// RedisStore keeps carts in Redis under the cart namespace with a session TTL.
type RedisStore struct {
	kv  cartKV
	ttl time.Duration
}

// NewRedisStore builds a Redis-backed cart store.
func NewRedisStore(kv cartKV, ttl time.Duration) (*RedisStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &RedisStore{kv: kv, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (Cart, bool, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(key))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Cart{}, false, nil
		}
		return Cart{}, false, fmt.Errorf("load cart: %w", err)
	}

	var c Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Cart{}, false, fmt.Errorf("decode cart: %w", err)
	}
	return c, true, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, c Cart) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(key), string(payload), s.ttl); err != nil {
		return fmt.Errorf("store cart: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(key)); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}
	return nil
}

// MemoryStore is the in-process Store used by tests and single-node dev runs.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]Cart
}

// NewMemoryStore builds an empty in-memory cart store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]Cart)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Cart, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[key]
	if ok {
		c.Items = cloneItems(c.Items)
	}
	return c, ok, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, c Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Items = cloneItems(c.Items)
	s.carts[key] = c
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}
