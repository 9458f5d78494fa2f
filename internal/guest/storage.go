// Package guest persists guest-session state in Redis, one namespace per
// browser session.
package guest

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/freshmart/storefront/internal/synced"
)

const (
	// CartKey holds the guest cart line items.
	CartKey = "cart"
	// WishlistKey holds the guest wishlist entries.
	WishlistKey = "wishlist"
)

// Storage is a per-session key/value namespace.
type Storage struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

// NewStorage scopes storage to sessionID; ttl refreshes on every write.
func NewStorage(client *redis.Client, sessionID string, ttl time.Duration) *Storage {
	return &Storage{client: client, sessionID: sessionID, ttl: ttl}
}

// Get returns the raw value stored under key.
func (s *Storage) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, synced.ErrKeyNotFound
		}
		return nil, err
	}
	return raw, nil
}

// Set overwrites the value stored under key.
func (s *Storage) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.redisKey(key), value, s.ttl).Err()
}

// ErrContention is returned when Update keeps losing the race for a key.
var ErrContention = errors.New("guest: too many concurrent writes")

const maxUpdateAttempts = 32

// Update replaces the value under key using WATCH so that a concurrent
// write from another request of the same session forces a retry instead
// of being overwritten.
func (s *Storage) Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error {
	rk := s.redisKey(key)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, rk).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, rk, next, s.ttl)
			return nil
		})
		return err
	}
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, rk)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return ErrContention
}

func (s *Storage) redisKey(key string) string {
	return "guest:" + s.sessionID + ":" + key
}

var (
	_ synced.KV      = (*Storage)(nil)
	_ synced.Updater = (*Storage)(nil)
)

// Factory hands out Storage scoped to a session id.
type Factory struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFactory returns a Factory writing with ttl.
func NewFactory(client *redis.Client, ttl time.Duration) *Factory {
	return &Factory{client: client, ttl: ttl}
}

// For returns the storage namespace of sessionID.
func (f *Factory) For(sessionID string) *Storage {
	return NewStorage(f.client, sessionID, f.ttl)
}
