package shared

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ErrIdempotencyConflict indicates a duplicate key.
var ErrIdempotencyConflict = errors.New("idempotent request already processed")

var (
	errIdempotencyKeyRequired    = errors.New("idempotency key required")
	errIdempotencyModuleRequired = errors.New("idempotency module required")
)

// Idempotency guards a write against double submission.
type Idempotency interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// IdempotencyStore persists processed keys in postgres.
type IdempotencyStore struct {
	pool *pgxpool.Pool
}

// NewIdempotencyStore constructs the store.
func NewIdempotencyStore(pool *pgxpool.Pool) *IdempotencyStore {
	return &IdempotencyStore{pool: pool}
}

// CheckAndInsert ensures key uniqueness per module.
func (s *IdempotencyStore) CheckAndInsert(ctx context.Context, key, module string) error {
	if s == nil {
		return errors.New("idempotency store not initialised")
	}
	if err := checkKey(key, module); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `INSERT INTO idempotency_keys (key, module, created_at) VALUES ($1, $2, $3)`, key, module, time.Now())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrIdempotencyConflict
		}
		return err
	}
	return nil
}

// Cleanup removes entries older than retention.
func (s *IdempotencyStore) Cleanup(ctx context.Context, olderThan time.Duration) error {
	if s == nil {
		return nil
	}
	cutoff := time.Now().Add(-olderThan)
	_, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE created_at < $1`, cutoff)
	return err
}

// Delete removes a key, typically used to roll back failed processing.
func (s *IdempotencyStore) Delete(ctx context.Context, key, module string) error {
	if s == nil {
		return nil
	}
	if err := checkKey(key, module); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM idempotency_keys WHERE key=$1 AND module=$2`, key, module)
	return err
}

// RedisIdempotency keeps keys in redis with a retention TTL. It serves
// deployments that run without postgres.
type RedisIdempotency struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisIdempotency constructs a redis-backed guard.
func NewRedisIdempotency(client *redis.Client, retention time.Duration) *RedisIdempotency {
	return &RedisIdempotency{client: client, retention: retention}
}

// CheckAndInsert claims key for module.
func (r *RedisIdempotency) CheckAndInsert(ctx context.Context, key, module string) error {
	if err := checkKey(key, module); err != nil {
		return err
	}
	ok, err := r.client.SetNX(ctx, r.redisKey(key, module), time.Now().Format(time.RFC3339), r.retention).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrIdempotencyConflict
	}
	return nil
}

// Delete releases key.
func (r *RedisIdempotency) Delete(ctx context.Context, key, module string) error {
	if err := checkKey(key, module); err != nil {
		return err
	}
	return r.client.Del(ctx, r.redisKey(key, module)).Err()
}

func (r *RedisIdempotency) redisKey(key, module string) string {
	return "idempotency:" + module + ":" + key
}

func checkKey(key, module string) error {
	if key == "" {
		return errIdempotencyKeyRequired
	}
	if module == "" {
		return errIdempotencyModuleRequired
	}
	return nil
}

var (
	_ Idempotency = (*IdempotencyStore)(nil)
	_ Idempotency = (*RedisIdempotency)(nil)
)
