package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"cart-service/internal/cart"
)

// ErrConcurrentUpdate is returned when a cart kept changing underneath an update.
var ErrConcurrentUpdate = errors.New("cart was modified concurrently")

const maxUpdateAttempts = 5

// CartRepository keeps one cart per session in Redis.
type CartRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCartRepository(rdb *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{rdb: rdb, ttl: ttl}
}

type storedCart struct {
	Lines     []cart.Line `json:"lines"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// Load returns the session's cart, or an empty one.
func (r *CartRepository) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	data, err := r.rdb.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return cart.New(), nil
		}
		return nil, err
	}
	return decodeCart(data)
}

// Update loads the session's cart, applies fn and stores the result in one
// optimistic transaction. If another writer touches the cart in between, the
// whole cycle runs again on the fresh state. An error from fn aborts without
// writing. Every write pushes the expiry out by the repository TTL; an empty
// cart is deleted.
func (r *CartRepository) Update(ctx context.Context, sessionID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	key := cartKey(sessionID)
	var result *cart.Cart

	txf := func(tx *redis.Tx) error {
		c := cart.New()
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			if c, err = decodeCart(data); err != nil {
				return err
			}
		case !errors.Is(err, redis.Nil):
			return err
		}

		if err := fn(c); err != nil {
			return err
		}

		var payload []byte
		if c.Len() > 0 {
			if payload, err = encodeCart(c); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if payload == nil {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, payload, r.ttl)
			return nil
		})
		if err == nil {
			result = c
		}
		return err
	}

	for range maxUpdateAttempts {
		err := r.rdb.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConcurrentUpdate
}

func (r *CartRepository) Delete(ctx context.Context, sessionID string) error {
	return r.rdb.Del(ctx, cartKey(sessionID)).Err()
}

func encodeCart(c *cart.Cart) ([]byte, error) {
	return json.Marshal(storedCart{Lines: c.Lines(), UpdatedAt: time.Now().UTC()})
}

func decodeCart(data []byte) (*cart.Cart, error) {
	var stored storedCart
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return cart.FromLines(stored.Lines)
}
