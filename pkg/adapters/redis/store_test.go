package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/easel/pkg/adapters/redis"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunDocumentStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "doc-ttl", domain.NewDocument("doc-ttl")))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "doc-ttl")

	mr.FastForward(2 * time.Second)
	_, err = store.Load(ctx, "doc-ttl")
	assert.ErrorIs(t, err, domain.ErrDocumentNotFound)

	// The index is pruned against the wall clock, not the server clock.
	time.Sleep(2100 * time.Millisecond)
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-doc", domain.NewDocument("my-doc")))

	assert.True(t, mr.Exists("custom:app:my-doc"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	require.NoError(t, store.Delete(ctx, "my-doc"))
	assert.False(t, mr.Exists("custom:app:my-doc"))
	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_CorruptDocument(t *testing.T) {
	mr, client := newClient(t)
	require.NoError(t, mr.Set(redis.DefaultPrefix+"broken", "{not json"))

	_, err := redis.NewFromClient(client).Load(context.Background(), "broken")
	assert.ErrorContains(t, err, "unmarshal")
}
