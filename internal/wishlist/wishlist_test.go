package wishlist

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
	kale  = storeapi.Product{ID: 3, Name: "Kale", Price: 2.5, Unit: "bunch", Stock: 30, ImageURL: "/img/kale.png", Rating: 4.5}
	bread = storeapi.Product{ID: 4, Name: "Sourdough", Price: 6, Unit: "each", Stock: 8}
)

type stubBackend struct {
	entries   []storeapi.WishlistEntry
	loads     int
	adds      int
	removeErr error
}

func (s *stubBackend) Wishlist(ctx context.Context, userID int64) ([]storeapi.WishlistEntry, error) {
	s.loads++
	return append([]storeapi.WishlistEntry(nil), s.entries...), nil
}

func (s *stubBackend) AddWishlistItem(ctx context.Context, userID, productID int64) error {
	s.adds++
	s.entries = append(s.entries, storeapi.WishlistEntry{ProductID: productID})
	return nil
}

func (s *stubBackend) RemoveWishlistItem(ctx context.Context, userID, productID int64) error {
	return s.removeErr
}

func (s *stubBackend) ClearWishlist(ctx context.Context, userID int64) error {
	s.entries = nil
	return nil
}

func newGuestWishlist(t *testing.T) (*Wishlist, *guest.Storage) {
	t.Helper()
	mr := miniredis.RunT(t)
	storage := guest.NewStorage(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "g1", time.Hour)
	w := NewGuest(storage)
	require.NoError(t, w.Load(context.Background()))
	return w, storage
}

func TestGuestWishlistNeverDuplicates(t *testing.T) {
	ctx := context.Background()
	w, storage := newGuestWishlist(t)

	added, err := w.AddToWishlist(ctx, kale)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = w.AddToWishlist(ctx, kale)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, w.Count())
	assert.True(t, w.IsInWishlist(kale.ID))
	assert.False(t, w.IsInWishlist(bread.ID))

	reopened := NewGuest(storage)
	require.NoError(t, reopened.Load(ctx))
	require.Len(t, reopened.Items(), 1)
	assert.Equal(t, FromProduct(kale), reopened.Items()[0])
}

func TestGuestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	w, _ := newGuestWishlist(t)
	_, err := w.AddToWishlist(ctx, kale)
	require.NoError(t, err)
	_, err = w.AddToWishlist(ctx, bread)
	require.NoError(t, err)

	require.NoError(t, w.RemoveFromWishlist(ctx, kale.ID))
	assert.Equal(t, []Item{FromProduct(bread)}, w.Items())

	require.NoError(t, w.ClearWishlist(ctx))
	assert.Zero(t, w.Count())
}

func TestRemoteAddPatchesWithoutReload(t *testing.T) {
	ctx := context.Background()
	backend := &stubBackend{}
	w := NewForUser(backend, 5)
	require.NoError(t, w.Load(ctx))
	require.Equal(t, 1, backend.loads)

	added, err := w.AddToWishlist(ctx, kale)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, 1, backend.adds)
	assert.Equal(t, 1, backend.loads)
	assert.Equal(t, []Item{FromProduct(kale)}, w.Items())

	added, err = w.AddToWishlist(ctx, kale)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, 1, backend.adds)
}

func TestRemoteRemoveFailureKeepsEntry(t *testing.T) {
	ctx := context.Background()
	backend := &stubBackend{entries: []storeapi.WishlistEntry{{ProductID: kale.ID, Name: kale.Name}}}
	w := NewForUser(backend, 5)
	require.NoError(t, w.Load(ctx))

	backend.removeErr = errors.New("backend down")
	require.Error(t, w.RemoveFromWishlist(ctx, kale.ID))
	assert.True(t, w.IsInWishlist(kale.ID))

	backend.removeErr = nil
	require.NoError(t, w.RemoveFromWishlist(ctx, kale.ID))
	assert.False(t, w.IsInWishlist(kale.ID))
}

func TestGuestWishlistsOfOneSessionKeepEachOthersWrites(t *testing.T) {
	ctx := context.Background()
	_, storage := newGuestWishlist(t)

	first := NewGuest(storage)
	second := NewGuest(storage)
	require.NoError(t, first.Load(ctx))
	require.NoError(t, second.Load(ctx))

	added, err := first.AddToWishlist(ctx, kale)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = second.AddToWishlist(ctx, bread)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = second.AddToWishlist(ctx, kale)
	require.NoError(t, err)
	assert.False(t, added)

	reopened := NewGuest(storage)
	require.NoError(t, reopened.Load(ctx))
	assert.Equal(t, []Item{FromProduct(kale), FromProduct(bread)}, reopened.Items())

	require.NoError(t, first.RemoveFromWishlist(ctx, kale.ID))
	require.NoError(t, reopened.Refresh(ctx))
	assert.Equal(t, []Item{FromProduct(bread)}, reopened.Items())
}

func TestConcurrentGuestWishlistAddsAreAllKept(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), PoolSize: 16})
	storage := guest.NewStorage(client, "g1", time.Hour)

	products := make([]storeapi.Product, 8)
	for i := range products {
		products[i] = storeapi.Product{ID: int64(100 + i), Name: "Item", Price: 1}
	}
	var wg sync.WaitGroup
	errs := make(chan error, len(products))
	for _, p := range products {
		wg.Add(1)
		go func(p storeapi.Product) {
			defer wg.Done()
			w := NewGuest(storage)
			if err := w.Load(ctx); err != nil {
				errs <- err
				return
			}
			_, err := w.AddToWishlist(ctx, p)
			errs <- err
		}(p)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	w := NewGuest(storage)
	require.NoError(t, w.Load(ctx))
	assert.Equal(t, len(products), w.Count())
}
