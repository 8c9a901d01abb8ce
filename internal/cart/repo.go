package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/vitrinebr/loja-api/pkg/config"
	pkgerrors "github.com/vitrinebr/loja-api/pkg/errors"
	redisclient "github.com/vitrinebr/loja-api/pkg/redis"
)

type kvStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type cartKeyer interface {
	CartKey(sessionID string) string
}

type watcher interface {
	Watch(ctx context.Context, fn func(*redislib.Tx) error, keys ...string) error
}

// maxUpdateAttempts bounds the retries of Update when another writer wins the race.
const maxUpdateAttempts = 5

// Mutation edits a loaded cart and reports whether it must be written back.
// It may run more than once when the stored cart changes underneath it.
type Mutation func(store *Store) (changed bool, err error)

// CartRepository persists carts by session id.
type CartRepository interface {
	Load(ctx context.Context, sessionID string) (*Store, error)
	Update(ctx context.Context, sessionID string, mutate Mutation) (*Store, error)
	Delete(ctx context.Context, sessionID string) error
}

// Repository keeps each cart as a JSON list under one session-scoped Redis key.
// Every read or write slides the key expiration forward.
type Repository struct {
	kv    kvStore
	keyer cartKeyer
	tx    watcher
	ttl   time.Duration
}

// NewRepository constructs a cart repository backed by Redis.
func NewRepository(client *redisclient.Client, cfg config.CartConfig) (*Repository, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return newRepository(client, client, client, cfg.TTL)
}

func newRepository(kv kvStore, keyer cartKeyer, tx watcher, ttl time.Duration) (*Repository, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &Repository{kv: kv, keyer: keyer, tx: tx, ttl: ttl}, nil
}

// Load returns the stored cart, or an empty one when nothing is stored.
// A payload that cannot be decoded is discarded and treated as empty.
func (r *Repository) Load(ctx context.Context, sessionID string) (*Store, error) {
	key, err := r.key(sessionID)
	if err != nil {
		return nil, err
	}
	raw, err := r.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return NewStore(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	store, ok := decodeCart(raw)
	if !ok {
		_ = r.kv.Del(ctx, key)
		return NewStore(), nil
	}
	if err := r.kv.Expire(ctx, key, r.ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "refresh cart ttl")
	}
	return store, nil
}

// Update loads the cart under WATCH, applies mutate and writes the result in
// MULTI/EXEC. A concurrent write to the same cart reruns mutate on the fresh
// state; after maxUpdateAttempts lost races it fails with CONFLICT.
func (r *Repository) Update(ctx context.Context, sessionID string, mutate Mutation) (*Store, error) {
	key, err := r.key(sessionID)
	if err != nil {
		return nil, err
	}

	var result *Store
	txn := func(tx *redislib.Tx) error {
		store := NewStore()
		stored, corrupt := false, false
		raw, err := tx.Get(ctx, key).Result()
		switch {
		case errors.Is(err, redislib.Nil):
		case err != nil:
			return err
		default:
			stored = true
			var ok bool
			if store, ok = decodeCart(raw); !ok {
				store, corrupt = NewStore(), true
			}
		}

		changed, err := mutate(store)
		if err != nil {
			return err
		}
		result = store
		if !changed && !corrupt {
			if stored {
				return tx.Expire(ctx, key, r.ttl).Err()
			}
			return nil
		}

		var payload []byte
		if !store.IsEmpty() {
			if payload, err = json.Marshal(store.Items()); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
			if payload == nil {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := r.tx.Watch(ctx, txn, key)
		switch {
		case err == nil:
			return result, nil
		case errors.Is(err, redislib.TxFailedErr):
			continue
		case pkgerrors.As(err) != nil:
			return nil, err
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart was modified concurrently, retry").
		WithDetails(map[string]any{"attempts": maxUpdateAttempts})
}

func decodeCart(raw string) (*Store, bool) {
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, false
	}
	return NewStore(items...), true
}

// Delete removes the stored cart.
func (r *Repository) Delete(ctx context.Context, sessionID string) error {
	key, err := r.key(sessionID)
	if err != nil {
		return err
	}
	return r.wrapDel(ctx, key)
}

func (r *Repository) wrapDel(ctx context.Context, key string) error {
	if err := r.kv.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
	}
	return nil
}

func (r *Repository) key(sessionID string) (string, error) {
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	return r.keyer.CartKey(trimmed), nil
}
