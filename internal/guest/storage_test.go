package guest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshmart/storefront/internal/synced"
)

func TestStorageScopesKeysPerSession(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	a := NewStorage(client, "sess-a", time.Hour)
	b := NewStorage(client, "sess-b", time.Hour)

	require.NoError(t, a.Set(ctx, CartKey, []byte(`[1]`)))

	got, err := a.Get(ctx, CartKey)
	require.NoError(t, err)
	assert.Equal(t, `[1]`, string(got))

	_, err = b.Get(ctx, CartKey)
	assert.ErrorIs(t, err, synced.ErrKeyNotFound)

	assert.True(t, mr.Exists("guest:sess-a:cart"))
	assert.Equal(t, time.Hour, mr.TTL("guest:sess-a:cart"))
}

func TestStorageBacksLocalStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	store := synced.NewLocalStore[string](NewStorage(client, "s1", time.Minute), WishlistKey)
	items, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, store.Save(ctx, []string{"apples"}))
	items, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"apples"}, items)
}

func TestUpdateKeepsConcurrentWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), PoolSize: 16})
	ctx := context.Background()

	const writers = 12
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store := synced.NewLocalStore[string](NewStorage(client, "s1", time.Minute), CartKey)
			_, err := store.Apply(ctx, func(items []string) []string {
				return append(items, fmt.Sprintf("item-%d", i))
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	items, err := synced.NewLocalStore[string](NewStorage(client, "s1", time.Minute), CartKey).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, items, writers)
	assert.Equal(t, time.Minute, mr.TTL("guest:s1:cart"))
}

func TestUpdatePassesPreviousValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()
	s := NewStorage(client, "s1", time.Minute)

	require.NoError(t, s.Update(ctx, WishlistKey, func(current []byte) ([]byte, error) {
		assert.Nil(t, current)
		return []byte(`["a"]`), nil
	}))
	require.NoError(t, s.Update(ctx, WishlistKey, func(current []byte) ([]byte, error) {
		assert.Equal(t, `["a"]`, string(current))
		return []byte(`["a","b"]`), nil
	}))

	boom := errors.New("bad payload")
	err := s.Update(ctx, WishlistKey, func([]byte) ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	got, err := s.Get(ctx, WishlistKey)
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, string(got))
}
