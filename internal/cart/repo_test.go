package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrinebr/loja-api/pkg/config"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	redisclient "github.com/vitrinebr/loja-api/pkg/redis"
)

func newTestRepository(t *testing.T) (*Repository, *miniredis.Miniredis, *redisclient.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	client := redisclient.NewFromClient(raw)
	repo, err := NewRepository(client, config.CartConfig{TTL: time.Hour})
	require.NoError(t, err)
	return repo, mr, client
}

func saveCart(t *testing.T, repo *Repository, sessionID string, store *Store) {
	t.Helper()
	_, err := repo.Update(context.Background(), sessionID, func(s *Store) (bool, error) {
		s.Clear()
		for _, it := range store.Items() {
			s.Add(it)
		}
		return true, nil
	})
	require.NoError(t, err)
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, mr, client := newTestRepository(t)

	store := NewStore(item(1, "1999.90", 2), item(2, "0.333", 1))
	saveCart(t, repo, "sess-1", store)

	key := client.CartKey("sess-1")
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))

	loaded, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded.Items(), 2)
	assert.Equal(t, int64(1), loaded.Items()[0].ProductID)
	assert.True(t, loaded.Total().Equal(store.Total()))
}

func TestRepositoryLoadSlidesTTL(t *testing.T) {
	ctx := context.Background()
	repo, mr, client := newTestRepository(t)
	saveCart(t, repo, "sess-1", NewStore(item(1, "10", 1)))

	mr.FastForward(30 * time.Minute)
	_, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, mr.TTL(client.CartKey("sess-1")))
}

func TestRepositoryLoadMissingIsEmpty(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	store, err := repo.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, store.IsEmpty())
}

func TestRepositoryLoadDiscardsCorruptPayload(t *testing.T) {
	ctx := context.Background()
	repo, mr, client := newTestRepository(t)
	key := client.CartKey("sess-1")
	require.NoError(t, mr.Set(key, "{not json"))

	store, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, store.IsEmpty())
	assert.False(t, mr.Exists(key))
}

func TestRepositoryEmptyCartDeletesKey(t *testing.T) {
	repo, mr, client := newTestRepository(t)
	saveCart(t, repo, "sess-1", NewStore(item(1, "10", 1)))
	saveCart(t, repo, "sess-1", NewStore())
	assert.False(t, mr.Exists(client.CartKey("sess-1")))
}

func TestRepositoryRequiresSession(t *testing.T) {
	repo, _, _ := newTestRepository(t)
	_, err := repo.Load(context.Background(), "  ")
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestRepositoryUpdateRetriesAfterConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepository(t)
	saveCart(t, repo, "sess-1", NewStore(item(1, "10", 1)))

	attempts := 0
	store, err := repo.Update(ctx, "sess-1", func(s *Store) (bool, error) {
		attempts++
		if attempts == 1 {
			saveCart(t, repo, "sess-1", NewStore(item(1, "10", 1), item(2, "5", 1)))
		}
		s.Add(item(3, "1", 1))
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Len(t, store.Items(), 3)

	loaded, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, loaded.Items(), 3)
	assert.True(t, loaded.Total().Equal(decimal.RequireFromString("16")))
}

func TestRepositoryUpdateGivesUpAfterRepeatedRaces(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepository(t)

	attempts := 0
	_, err := repo.Update(ctx, "sess-1", func(s *Store) (bool, error) {
		attempts++
		saveCart(t, repo, "sess-1", NewStore(item(int64(attempts), "1", 1)))
		s.Add(item(99, "1", 1))
		return true, nil
	})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	assert.Equal(t, maxUpdateAttempts, attempts)
}

func TestRepositoryUpdateUnchangedSkipsWrite(t *testing.T) {
	ctx := context.Background()
	repo, mr, client := newTestRepository(t)
	saveCart(t, repo, "sess-1", NewStore(item(1, "10", 1)))
	key := client.CartKey("sess-1")
	before, err := mr.Get(key)
	require.NoError(t, err)

	mr.FastForward(30 * time.Minute)
	store, err := repo.Update(ctx, "sess-1", func(s *Store) (bool, error) {
		return s.Remove(42), nil
	})
	require.NoError(t, err)
	assert.Len(t, store.Items(), 1)

	after, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestRepositoryUpdateMutationErrorKeepsCart(t *testing.T) {
	ctx := context.Background()
	repo, _, _ := newTestRepository(t)
	saveCart(t, repo, "sess-1", NewStore(item(1, "10", 2)))

	_, err := repo.Update(ctx, "sess-1", func(s *Store) (bool, error) {
		s.Clear()
		return true, pkgerrors.New(pkgerrors.CodeValidation, "rejected")
	})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	loaded, err := repo.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Count())
}
