package cache_test

import (
	"context"
	"testing"

	"nftStatApp/internal/domain/repository"
	"nftStatApp/internal/infrastructure/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blobStore interface {
	repository.BlobStore
	Ping(ctx context.Context) error
}

func exerciseBlobStore(t *testing.T, store blobStore) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	_, err := store.Load(ctx, repository.KeyTransactions)
	assert.ErrorIs(t, err, repository.ErrBlobNotFound)

	require.NoError(t, store.Save(ctx, repository.KeyTransactions, []byte(`[{"id":"a"}]`)))
	require.NoError(t, store.Save(ctx, repository.KeyGlobalStats, []byte(`{}`)))

	data, err := store.Load(ctx, repository.KeyTransactions)
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"a"}]`, string(data))

	// Overwrite replaces the whole blob.
	require.NoError(t, store.Save(ctx, repository.KeyTransactions, []byte(`[]`)))
	data, err = store.Load(ctx, repository.KeyTransactions)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	// Keys are independent.
	data, err = store.Load(ctx, repository.KeyGlobalStats)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
	_, err = store.Load(ctx, repository.KeyPriceHistory)
	assert.ErrorIs(t, err, repository.ErrBlobNotFound)
}

func TestRedisBlobStore(t *testing.T) {
	mr := miniredis.RunT(t)
	store := cache.NewRedisBlobStore(cache.RedisConfig{Addr: mr.Addr(), KeyPrefix: "marketplace:"})
	t.Cleanup(func() { _ = store.Close() })

	exerciseBlobStore(t, store)

	raw, err := mr.Get("marketplace:transactions")
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
	assert.False(t, mr.Exists("transactions"))
}

func TestRedisBlobStore_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	store := cache.NewRedisBlobStore(cache.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = store.Close() })
	mr.Close()

	_, err = store.Load(context.Background(), repository.KeyTransactions)
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrBlobNotFound)
	assert.Error(t, store.Save(context.Background(), repository.KeyTransactions, []byte("x")))
}

func TestMemoryBlobStore(t *testing.T) {
	exerciseBlobStore(t, cache.NewMemoryBlobStore())
}

func TestMemoryBlobStore_CopiesData(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryBlobStore()
	data := []byte("abc")
	require.NoError(t, store.Save(ctx, "k", data))
	data[0] = 'z'

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
