package checkoutRepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookcheckout/models"

	"github.com/go-redis/redis/v8"
)

const (
	sessionKeyPrefix = "checkout:"
	orderKeyPrefix   = "checkout:payment-order:"
)

// RedisCheckoutRepo stores each session as JSON under checkout:<id>, with a
// secondary key mapping the vendor order id back to the session.
type RedisCheckoutRepo struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisCheckoutRepo builds the repo. retention bounds how long finished or
// abandoned sessions are kept; zero keeps them forever.
func NewRedisCheckoutRepo(client *redis.Client, retention time.Duration) *RedisCheckoutRepo {
	return &RedisCheckoutRepo{client: client, retention: retention}
}

func sessionKey(id string) string    { return sessionKeyPrefix + id }
func orderKey(orderID string) string { return orderKeyPrefix + orderID }

func (r *RedisCheckoutRepo) Create(ctx context.Context, s *models.CheckoutSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, sessionKey(s.ID), data, r.retention).Result()
	if err != nil {
		return fmt.Errorf("failed to store checkout session: %w", err)
	}
	if !ok {
		return fmt.Errorf("checkout session %s already exists", s.ID)
	}
	return nil
}

func (r *RedisCheckoutRepo) Get(ctx context.Context, id string) (*models.CheckoutSession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkout session %s: %w", id, err)
	}
	return decodeSession(data)
}

func (r *RedisCheckoutRepo) FindByPaymentOrder(ctx context.Context, orderID string) (*models.CheckoutSession, error) {
	id, err := r.client.Get(ctx, orderKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve payment order %s: %w", orderID, err)
	}
	return r.Get(ctx, id)
}

func (r *RedisCheckoutRepo) Update(ctx context.Context, id string, allowed []models.CheckoutState, mutate func(*models.CheckoutSession) error) (*models.CheckoutSession, error) {
	key := sessionKey(id)
	var updated *models.CheckoutSession

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load checkout session %s: %w", id, err)
		}
		current, err := decodeSession(data)
		if err != nil {
			return err
		}
		next, err := applyUpdate(current, allowed, mutate)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("failed to marshal checkout session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, r.retention)
			if next.PaymentOrderID != "" {
				pipe.Set(ctx, orderKey(next.PaymentOrderID), id, r.retention)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = next
		return nil
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func decodeSession(data []byte) (*models.CheckoutSession, error) {
	var s models.CheckoutSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}
	return &s, nil
}
