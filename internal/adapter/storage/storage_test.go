package storage

import (
	"context"
	"path/filepath"
	"testing"

	"thermacore/internal/config"
	"thermacore/internal/core/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// exercises the KeyValueStore contract shared by every backend
func checkStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "thermacore-settings", []byte(`{"volume":35}`)))
	v, err := store.Get(ctx, "thermacore-settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"volume":35}`, string(v))

	// last write wins
	require.NoError(t, store.Set(ctx, "thermacore-settings", []byte(`{"volume":0}`)))
	v, err = store.Get(ctx, "thermacore-settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"volume":0}`, string(v))
}

func TestMemoryStore(t *testing.T) {
	checkStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	v, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "thermacore.db"))
	require.NoError(t, err)
	defer store.Close()
	checkStoreContract(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "thermacore.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, "viewedNotifications", []byte("[1,2]")))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, err := reopened.Get(ctx, "viewedNotifications")
	require.NoError(t, err)
	assert.Equal(t, "[1,2]", string(v))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisStore(client, "thermacore:")
	defer store.Close()

	checkStoreContract(t, store)

	raw, err := mr.Get("thermacore:thermacore-settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"volume":0}`, raw)
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
	mr.Close()

	_, err := store.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()

	store, err := NewFromConfig(ctx, config.StorageConfig{Backend: BACKEND_MEMORY}, logger)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	store, err = NewFromConfig(ctx, config.StorageConfig{
		Backend:       BACKEND_SQLITE,
		SQLitePath:    filepath.Join(t.TempDir(), "kv.db"),
		TimeoutMillis: 500,
	}, logger)
	require.NoError(t, err)
	defer store.Close()
	assert.IsType(t, TimeoutStore{}, store)
	checkStoreContract(t, store)

	mr := miniredis.RunT(t)
	store, err = NewFromConfig(ctx, config.StorageConfig{Backend: BACKEND_REDIS, RedisAddr: mr.Addr()}, logger)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, store)

	_, err = NewFromConfig(ctx, config.StorageConfig{Backend: "etcd"}, logger)
	assert.Error(t, err)
}
