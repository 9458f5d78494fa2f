// Package synced implements a collection that mirrors either a local
// persistent store (guest sessions) or the backend (signed-in users).
package synced

import (
	"context"
	"errors"
	"sync"
)

// Policy selects how a collection reconciles after a successful remote write.
type Policy int

const (
	// ReloadAll reloads the full collection from the store.
	ReloadAll Policy = iota
	// PatchLocal applies the local patch without a reload.
	PatchLocal
)

func (p Policy) String() string {
	switch p {
	case ReloadAll:
		return "reload_all"
	case PatchLocal:
		return "patch_local"
	default:
		return "unknown"
	}
}

// ErrRemoteCallRequired is returned when a remote-backed mutation has no API call.
var ErrRemoteCallRequired = errors.New("synced: remote call required")

// Patch transforms the current items into the next state.
type Patch[T any] func(items []T) []T

// Collection holds the in-memory view of a synced list.
type Collection[T any] struct {
	mu     sync.Mutex
	store  Store[T]
	policy Policy
	items  []T
}

// New constructs a collection over store using policy for remote writes.
func New[T any](store Store[T], policy Policy) *Collection[T] {
	return &Collection[T]{store: store, policy: policy, items: []T{}}
}

// Remote reports whether the active store is server backed.
func (c *Collection[T]) Remote() bool {
	return c.store.Remote()
}

// Policy returns the reconciliation policy.
func (c *Collection[T]) Policy() Policy {
	return c.policy
}

// Init loads the collection from whichever store is active.
func (c *Collection[T]) Init(ctx context.Context) error {
	return c.Refresh(ctx)
}

// Refresh replaces the items with the store contents.
func (c *Collection[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	items, err := c.store.Load(ctx)
	if err != nil {
		return err
	}
	c.items = items
	return nil
}

// Items returns a copy of the current items.
func (c *Collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Applier is a store that patches its own latest contents. Local stores
// implement it so that collections built by different requests over the
// same key serialize their writes in the store.
type Applier[T any] interface {
	Apply(ctx context.Context, patch Patch[T]) ([]T, error)
}

// Mutate applies a state change.
//
// Remote stores run the remote call first and then reconcile per policy;
// the items are untouched if the call fails. Local stores apply patch to
// the latest stored items, not the in-memory copy, and persist the whole
// collection.
func (c *Collection[T]) Mutate(ctx context.Context, remote func(ctx context.Context) error, patch Patch[T]) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store.Remote() {
		if remote == nil {
			return ErrRemoteCallRequired
		}
		if err := remote(ctx); err != nil {
			return err
		}
		if c.policy == ReloadAll || patch == nil {
			items, err := c.store.Load(ctx)
			if err != nil {
				return err
			}
			c.items = items
			return nil
		}
		c.items = patch(c.snapshot())
		return nil
	}

	if a, ok := c.store.(Applier[T]); ok {
		next, err := a.Apply(ctx, patch)
		if err != nil {
			return err
		}
		c.items = next
		return nil
	}
	next := applyPatch(patch, c.snapshot())
	if err := c.store.Save(ctx, next); err != nil {
		return err
	}
	c.items = next
	return nil
}

// Find returns the first item matching pred.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if pred(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) snapshot() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}
