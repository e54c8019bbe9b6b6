package snapshot_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/facets/pkg/facets/snapshot"
)

type storeFactory func(t *testing.T) snapshot.Store

// storeContractTest runs the same behaviour checks against any Store.
func storeContractTest(t *testing.T, factory storeFactory) {
	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		doc := []byte(`{"t":"Object","i":0,"v":[]}`)
		require.NoError(t, store.Save(ctx, "owner-1", "state", doc))

		loaded, err := store.Load(ctx, "owner-1", "state")
		require.NoError(t, err)
		assert.Equal(t, doc, loaded)
	})

	t.Run("load missing", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Load(ctx, "owner-x", "state")
		assert.ErrorIs(t, err, snapshot.ErrNotFound)
	})

	t.Run("overwrite moves to end of sequence", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, "owner-1", "a", []byte("1")))
		require.NoError(t, store.Save(ctx, "owner-1", "b", []byte("22")))
		require.NoError(t, store.Save(ctx, "owner-1", "a", []byte("333")))

		loaded, err := store.Load(ctx, "owner-1", "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("333"), loaded)

		infos, err := store.List(ctx, "owner-1")
		require.NoError(t, err)
		require.Len(t, infos, 2)
		assert.Equal(t, "b", infos[0].Name)
		assert.Equal(t, "a", infos[1].Name)
		assert.Less(t, infos[0].Sequence, infos[1].Sequence)
		assert.Equal(t, int64(2), infos[0].Size)
		assert.Equal(t, int64(3), infos[1].Size)
		assert.Equal(t, "owner-1", infos[1].OwnerID)
		assert.False(t, infos[1].Timestamp.IsZero())
	})

	t.Run("list empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		infos, err := store.List(ctx, "owner-x")
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run("delete", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, "owner-1", "a", []byte("x")))
		require.NoError(t, store.Delete(ctx, "owner-1", "a"))
		require.NoError(t, store.Delete(ctx, "owner-1", "a"), "deleting twice is fine")

		_, err := store.Load(ctx, "owner-1", "a")
		assert.ErrorIs(t, err, snapshot.ErrNotFound)
	})

	t.Run("delete owner", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save(ctx, "owner-1", "a", []byte("a")))
		require.NoError(t, store.Save(ctx, "owner-1", "b", []byte("b")))
		require.NoError(t, store.Save(ctx, "owner-2", "a", []byte("other")))

		require.NoError(t, store.DeleteOwner(ctx, "owner-1"))
		require.NoError(t, store.DeleteOwner(ctx, "owner-missing"))

		infos, err := store.List(ctx, "owner-1")
		require.NoError(t, err)
		assert.Empty(t, infos)

		data, err := store.Load(ctx, "owner-2", "a")
		require.NoError(t, err)
		assert.Equal(t, []byte("other"), data)
	})

	t.Run("closed store", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		assert.ErrorIs(t, store.Save(ctx, "o", "n", []byte("x")), snapshot.ErrStoreClosed)
		_, err := store.Load(ctx, "o", "n")
		assert.ErrorIs(t, err, snapshot.ErrStoreClosed)
		_, err = store.List(ctx, "o")
		assert.ErrorIs(t, err, snapshot.ErrStoreClosed)
		assert.ErrorIs(t, store.Delete(ctx, "o", "n"), snapshot.ErrStoreClosed)
		assert.ErrorIs(t, store.DeleteOwner(ctx, "o"), snapshot.ErrStoreClosed)
		assert.NoError(t, store.Close(), "close is idempotent")
	})

	t.Run("concurrent", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		const owners, perOwner = 8, 10
		var wg sync.WaitGroup
		for o := 0; o < owners; o++ {
			wg.Add(1)
			go func(o int) {
				defer wg.Done()
				owner := string(rune('a' + o))
				for i := 0; i < perOwner; i++ {
					name := string(rune('A' + i))
					assert.NoError(t, store.Save(ctx, owner, name, []byte(owner+name)))
					_, err := store.Load(ctx, owner, name)
					assert.NoError(t, err)
				}
			}(o)
		}
		wg.Wait()

		for o := 0; o < owners; o++ {
			infos, err := store.List(ctx, string(rune('a'+o)))
			require.NoError(t, err)
			assert.Len(t, infos, perOwner)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeContractTest(t, func(t *testing.T) snapshot.Store {
		return snapshot.NewMemoryStore()
	})
}

func TestMemoryStore_CopiesData(t *testing.T) {
	ctx := context.Background()
	store := snapshot.NewMemoryStore()

	data := []byte("abc")
	require.NoError(t, store.Save(ctx, "o", "n", data))
	data[0] = 'X'

	loaded, err := store.Load(ctx, "o", "n")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), loaded)

	loaded[1] = 'Y'
	again, err := store.Load(ctx, "o", "n")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := snapshot.NewMemoryStore()
	assert.ErrorIs(t, store.Save(ctx, "o", "n", nil), context.Canceled)
	_, err := store.Load(ctx, "o", "n")
	assert.ErrorIs(t, err, context.Canceled)
}
