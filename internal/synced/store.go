package synced

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Store is the backing strategy for a Collection.
type Store[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, items []T) error
	// Remote reports whether the server is the source of truth.
	Remote() bool
}

// KV is a persistent byte store keyed by name.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Updater is implemented by KVs that can replace a value atomically with
// respect to concurrent writers of the same key. fn receives nil for an
// absent key and may run more than once.
type Updater interface {
	Update(ctx context.Context, key string, fn func(current []byte) ([]byte, error)) error
}

// ErrKeyNotFound is returned by KV implementations for absent keys.
var ErrKeyNotFound = errors.New("synced: key not found")

// LocalStore keeps the full collection as one JSON array under a single key.
type LocalStore[T any] struct {
	kv  KV
	key string
}

// NewLocalStore binds a LocalStore to key.
func NewLocalStore[T any](kv KV, key string) *LocalStore[T] {
	return &LocalStore[T]{kv: kv, key: key}
}

// Load returns the stored items; a missing key is an empty collection.
func (s *LocalStore[T]) Load(ctx context.Context) ([]T, error) {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []T{}, nil
		}
		return nil, fmt.Errorf("synced: load %s: %w", s.key, err)
	}
	return s.decode(raw)
}

// Apply runs patch against the latest stored items and persists the result.
// With an Updater the read and the write form one atomic step, so writers
// sharing the key never overwrite each other's changes.
func (s *LocalStore[T]) Apply(ctx context.Context, patch Patch[T]) ([]T, error) {
	u, ok := s.kv.(Updater)
	if !ok {
		items, err := s.Load(ctx)
		if err != nil {
			return nil, err
		}
		next := applyPatch(patch, items)
		if err := s.Save(ctx, next); err != nil {
			return nil, err
		}
		return next, nil
	}
	var next []T
	err := u.Update(ctx, s.key, func(raw []byte) ([]byte, error) {
		items, err := s.decode(raw)
		if err != nil {
			return nil, err
		}
		next = applyPatch(patch, items)
		out, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("synced: encode %s: %w", s.key, err)
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("synced: update %s: %w", s.key, err)
	}
	return next, nil
}

func (s *LocalStore[T]) decode(raw []byte) ([]T, error) {
	items := []T{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("synced: decode %s: %w", s.key, err)
	}
	return items, nil
}

func applyPatch[T any](patch Patch[T], items []T) []T {
	if patch != nil {
		items = patch(items)
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// Save serializes the whole collection.
func (s *LocalStore[T]) Save(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("synced: encode %s: %w", s.key, err)
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return fmt.Errorf("synced: save %s: %w", s.key, err)
	}
	return nil
}

// Remote is always false for local stores.
func (s *LocalStore[T]) Remote() bool { return false }

// RemoteStore loads from the backend; writes go through explicit API calls.
type RemoteStore[T any] struct {
	load func(ctx context.Context) ([]T, error)
}

// NewRemoteStore wraps a loader.
func NewRemoteStore[T any](load func(ctx context.Context) ([]T, error)) *RemoteStore[T] {
	return &RemoteStore[T]{load: load}
}

// Load calls the backend loader.
func (s *RemoteStore[T]) Load(ctx context.Context) ([]T, error) {
	items, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save is a no-op; the server already holds the state.
func (s *RemoteStore[T]) Save(context.Context, []T) error { return nil }

// Remote is always true for remote stores.
func (s *RemoteStore[T]) Remote() bool { return true }
