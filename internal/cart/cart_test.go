package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshmart/storefront/internal/guest"
	"github.com/freshmart/storefront/internal/storeapi"
)

var (
	apples = storeapi.Product{ID: 1, Name: "Apples", Price: 3.99, Unit: "kg", Stock: 40}
	milk   = storeapi.Product{ID: 2, Name: "Milk", Price: 5.99, Unit: "bottle", Stock: 12}
)

type stubBackend struct {
	lines   []storeapi.CartLine
	calls   []string
	loads   int
	addErr  error
	nextID  int64
	catalog map[int64]storeapi.Product
}

func newStubBackend() *stubBackend {
	return &stubBackend{nextID: 100, catalog: map[int64]storeapi.Product{apples.ID: apples, milk.ID: milk}}
}

func (s *stubBackend) Cart(ctx context.Context, userID int64) ([]storeapi.CartLine, error) {
	s.loads++
	s.calls = append(s.calls, "load")
	return append([]storeapi.CartLine(nil), s.lines...), nil
}

func (s *stubBackend) AddCartItem(ctx context.Context, userID, productID int64, quantity int) error {
	s.calls = append(s.calls, "add")
	if s.addErr != nil {
		return s.addErr
	}
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity += quantity
			return nil
		}
	}
	s.nextID++
	s.lines = append(s.lines, storeapi.CartLine{ID: s.nextID, ProductID: productID, Quantity: quantity, Product: s.catalog[productID]})
	return nil
}

func (s *stubBackend) UpdateCartItem(ctx context.Context, userID, itemID int64, quantity int) error {
	s.calls = append(s.calls, "update")
	for i := range s.lines {
		if s.lines[i].ID == itemID {
			s.lines[i].Quantity = quantity
		}
	}
	return nil
}

func (s *stubBackend) RemoveCartItem(ctx context.Context, userID, itemID int64) error {
	s.calls = append(s.calls, "remove")
	out := s.lines[:0]
	for _, l := range s.lines {
		if l.ID != itemID {
			out = append(out, l)
		}
	}
	s.lines = out
	return nil
}

func (s *stubBackend) ClearCart(ctx context.Context, userID int64) error {
	s.calls = append(s.calls, "clear")
	s.lines = nil
	return nil
}

func newGuestCart(t *testing.T) (*Cart, *guest.Storage) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	storage := guest.NewStorage(client, "guest-session", time.Hour)
	c := NewGuest(storage)
	require.NoError(t, c.Load(context.Background()))
	return c, storage
}

func TestGuestCartTotals(t *testing.T) {
	ctx := context.Background()
	c, _ := newGuestCart(t)

	require.NoError(t, c.Add(ctx, apples))
	require.NoError(t, c.Add(ctx, apples))
	require.NoError(t, c.Add(ctx, milk))

	assert.Len(t, c.Items(), 2)
	assert.Equal(t, 3, c.Count())
	assert.InDelta(t, 13.97, c.Total(), 1e-9)

	s := c.Summarize()
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 13.97, s.Total, 1e-9)
	assert.False(t, s.Authenticated)
}

func TestGuestUpdateQuantityZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	c, _ := newGuestCart(t)
	require.NoError(t, c.AddToCart(ctx, apples, 3))
	require.NoError(t, c.Add(ctx, milk))

	line := c.Items()[0]
	require.NoError(t, c.UpdateQuantity(ctx, line.ID, 0))

	items := c.Items()
	require.Len(t, items, 1)
	for _, item := range items {
		assert.NotEqual(t, line.ID, item.ID)
	}
}

func TestGuestUpdateQuantityIsNotClamped(t *testing.T) {
	ctx := context.Background()
	c, _ := newGuestCart(t)
	require.NoError(t, c.Add(ctx, milk))

	line := c.Items()[0]
	require.NoError(t, c.UpdateQuantity(ctx, line.ID, 500))
	assert.Equal(t, 500, c.Count())

	assert.ErrorIs(t, c.UpdateQuantity(ctx, line.ID, -1), ErrInvalidQuantity)
	assert.ErrorIs(t, c.UpdateQuantity(ctx, 424242, 2), ErrItemNotFound)
	assert.ErrorIs(t, c.AddToCart(ctx, milk, 0), ErrInvalidQuantity)
}

func TestGuestCartPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	c, storage := newGuestCart(t)
	require.NoError(t, c.AddToCart(ctx, apples, 2))
	require.NoError(t, c.Add(ctx, milk))

	reopened := NewGuest(storage)
	require.NoError(t, reopened.Load(ctx))
	assert.Equal(t, c.Items(), reopened.Items())

	require.NoError(t, reopened.ClearCart(ctx))
	again := NewGuest(storage)
	require.NoError(t, again.Load(ctx))
	assert.Empty(t, again.Items())
}

func TestRemoteAddCallsServerThenReloads(t *testing.T) {
	ctx := context.Background()
	backend := newStubBackend()
	c := NewForUser(backend, 7)
	require.NoError(t, c.Load(ctx))
	assert.True(t, c.Authenticated())

	require.NoError(t, c.AddToCart(ctx, apples, 2))
	assert.Equal(t, []string{"load", "add", "load"}, backend.calls)
	require.Len(t, c.Items(), 1)
	assert.Equal(t, int64(101), c.Items()[0].ID)
	assert.Equal(t, 2, c.Count())

	require.NoError(t, c.UpdateQuantity(ctx, 101, 5))
	assert.Equal(t, 5, c.Count())
	require.NoError(t, c.RemoveFromCart(ctx, 101))
	assert.Empty(t, c.Items())
	assert.Equal(t, []string{"load", "add", "load", "update", "load", "remove", "load"}, backend.calls)
}

func TestRemoteFailureKeepsItems(t *testing.T) {
	ctx := context.Background()
	backend := newStubBackend()
	c := NewForUser(backend, 7)
	require.NoError(t, c.Add(ctx, apples))

	backend.addErr = &storeapi.APIError{Status: 409, Message: "Out of stock"}
	err := c.Add(ctx, milk)
	var apiErr *storeapi.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Out of stock", apiErr.Message)
	assert.Equal(t, 1, c.Count())
}

func TestIDSourceIsStrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	ids := NewIDSource(func() time.Time { return fixed })

	first := ids.Next()
	second := ids.Next()
	assert.Equal(t, int64(1_700_000_000_000), first)
	assert.Equal(t, first+1, second)

	ctx := context.Background()
	c, _ := newGuestCart(t)
	c.ids = ids
	require.NoError(t, c.Add(ctx, apples))
	require.NoError(t, c.Add(ctx, milk))
	items := c.Items()
	assert.NotEqual(t, items[0].ID, items[1].ID)
}

func TestGuestCartsOfOneSessionKeepEachOthersWrites(t *testing.T) {
	ctx := context.Background()
	_, storage := newGuestCart(t)

	first := NewGuest(storage)
	second := NewGuest(storage)
	require.NoError(t, first.Load(ctx))
	require.NoError(t, second.Load(ctx))

	require.NoError(t, first.Add(ctx, apples))
	require.NoError(t, second.Add(ctx, milk))
	assert.Equal(t, 2, second.Count())

	reopened := NewGuest(storage)
	require.NoError(t, reopened.Load(ctx))
	assert.Equal(t, 2, reopened.Count())
	assert.Len(t, reopened.Items(), 2)

	line := reopened.Items()[0]
	require.NoError(t, first.UpdateQuantity(ctx, line.ID, 4))
	require.NoError(t, reopened.Refresh(ctx))
	assert.Equal(t, 5, reopened.Count())
}

func TestConcurrentGuestAddsAreAllKept(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), PoolSize: 16})
	storage := guest.NewStorage(client, "guest-session", time.Hour)

	const requests = 10
	var wg sync.WaitGroup
	errs := make(chan error, requests)
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := NewGuest(storage)
			if err := c.Load(ctx); err != nil {
				errs <- err
				return
			}
			errs <- c.Add(ctx, apples)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	c := NewGuest(storage)
	require.NoError(t, c.Load(ctx))
	require.Len(t, c.Items(), 1)
	assert.Equal(t, requests, c.Count())
}
