package synced

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int
	setErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.writes++
	m.data[key] = append([]byte(nil), value...)
	return nil
}

type entry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func appendEntry(e entry) Patch[entry] {
	return func(items []entry) []entry { return append(items, e) }
}

func TestLocalStoreMissingKeyIsEmpty(t *testing.T) {
	store := NewLocalStore[entry](newMemKV(), "cart")
	items, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.False(t, store.Remote())
}

func TestLocalMutationPersistsEveryChange(t *testing.T) {
	kv := newMemKV()
	ctx := context.Background()
	coll := New[entry](NewLocalStore[entry](kv, "wishlist"), ReloadAll)
	require.NoError(t, coll.Init(ctx))

	require.NoError(t, coll.Mutate(ctx, nil, appendEntry(entry{ID: 1, Name: "a"})))
	require.NoError(t, coll.Mutate(ctx, nil, appendEntry(entry{ID: 2, Name: "b"})))
	assert.Equal(t, 2, kv.writes)
	assert.JSONEq(t, `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`, string(kv.data["wishlist"]))

	reopened := New[entry](NewLocalStore[entry](kv, "wishlist"), ReloadAll)
	require.NoError(t, reopened.Init(ctx))
	assert.Equal(t, coll.Items(), reopened.Items())
}

func TestLocalSaveFailureKeepsState(t *testing.T) {
	kv := newMemKV()
	ctx := context.Background()
	coll := New[entry](NewLocalStore[entry](kv, "cart"), ReloadAll)
	require.NoError(t, coll.Mutate(ctx, nil, appendEntry(entry{ID: 1})))

	kv.setErr = errors.New("disk full")
	err := coll.Mutate(ctx, nil, appendEntry(entry{ID: 2}))
	require.Error(t, err)
	assert.Len(t, coll.Items(), 1)
}

func TestRemoteReloadAllCallsServerThenLoads(t *testing.T) {
	ctx := context.Background()
	server := []entry{}
	loads := 0
	store := NewRemoteStore(func(ctx context.Context) ([]entry, error) {
		loads++
		return append([]entry(nil), server...), nil
	})
	coll := New[entry](store, ReloadAll)

	err := coll.Mutate(ctx, func(ctx context.Context) error {
		server = append(server, entry{ID: 9, Name: "server"})
		return nil
	}, appendEntry(entry{ID: 1, Name: "ignored"}))
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, []entry{{ID: 9, Name: "server"}}, coll.Items())
}

func TestRemotePatchLocalSkipsReload(t *testing.T) {
	ctx := context.Background()
	loads := 0
	store := NewRemoteStore(func(ctx context.Context) ([]entry, error) {
		loads++
		return nil, nil
	})
	coll := New[entry](store, PatchLocal)

	calls := 0
	err := coll.Mutate(ctx, func(ctx context.Context) error {
		calls++
		return nil
	}, appendEntry(entry{ID: 1, Name: "patched"}))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, loads)
	assert.Equal(t, []entry{{ID: 1, Name: "patched"}}, coll.Items())
}

func TestRemoteFailureLeavesItems(t *testing.T) {
	ctx := context.Background()
	store := NewRemoteStore(func(ctx context.Context) ([]entry, error) {
		return []entry{{ID: 1}}, nil
	})
	coll := New[entry](store, PatchLocal)
	require.NoError(t, coll.Init(ctx))

	boom := errors.New("backend down")
	err := coll.Mutate(ctx, func(ctx context.Context) error { return boom }, appendEntry(entry{ID: 2}))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []entry{{ID: 1}}, coll.Items())

	err = coll.Mutate(ctx, nil, appendEntry(entry{ID: 3}))
	require.ErrorIs(t, err, ErrRemoteCallRequired)
}

func TestItemsReturnsCopy(t *testing.T) {
	ctx := context.Background()
	coll := New[entry](NewLocalStore[entry](newMemKV(), "cart"), ReloadAll)
	require.NoError(t, coll.Mutate(ctx, nil, appendEntry(entry{ID: 1, Name: "a"})))

	items := coll.Items()
	items[0].Name = "mutated"
	assert.Equal(t, "a", coll.Items()[0].Name)

	found, ok := coll.Find(func(e entry) bool { return e.ID == 1 })
	require.True(t, ok)
	assert.Equal(t, "a", found.Name)
}

func TestLocalMutationUsesLatestStoredItems(t *testing.T) {
	kv := newMemKV()
	ctx := context.Background()
	first := New[entry](NewLocalStore[entry](kv, "cart"), ReloadAll)
	second := New[entry](NewLocalStore[entry](kv, "cart"), ReloadAll)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, second.Init(ctx))

	require.NoError(t, first.Mutate(ctx, nil, appendEntry(entry{ID: 1, Name: "a"})))
	require.NoError(t, second.Mutate(ctx, nil, appendEntry(entry{ID: 2, Name: "b"})))

	assert.JSONEq(t, `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`, string(kv.data["cart"]))
	assert.Len(t, second.Items(), 2)
}
