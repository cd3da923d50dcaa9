package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"librarycard/internal/card"
)

// NewRedisClient connects to redis with short timeouts.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

// Redis keeps one JSON value per enrollment number plus an index set.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis builds a store under the given key prefix.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "librarycard"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) seqKey() string            { return r.prefix + ":cards:seq" }
func (r *Redis) indexKey() string          { return r.prefix + ":cards:index" }
func (r *Redis) cardKey(enr string) string { return r.prefix + ":card:" + enr }

// Create draws the next id with INCR and overwrites the card value.
func (r *Redis) Create(ctx context.Context, req card.Request) (card.StoredCard, error) {
	id, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return card.StoredCard{}, fmt.Errorf("next card id: %w", err)
	}
	sc := card.StoredCard{ID: id, Request: req, CreatedAt: time.Now().UTC()}
	payload, err := json.Marshal(sc)
	if err != nil {
		return card.StoredCard{}, fmt.Errorf("encode card: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.cardKey(req.EnrollmentNumber), payload, 0)
		pipe.SAdd(ctx, r.indexKey(), req.EnrollmentNumber)
		return nil
	})
	if err != nil {
		return card.StoredCard{}, fmt.Errorf("store card: %w", err)
	}
	return sc, nil
}

// GetByEnrollment loads and decodes a single card.
func (r *Redis) GetByEnrollment(ctx context.Context, enrollmentNumber string) (card.StoredCard, error) {
	raw, err := r.client.Get(ctx, r.cardKey(enrollmentNumber)).Bytes()
	if errors.Is(err, redis.Nil) {
		return card.StoredCard{}, ErrNotFound
	}
	if err != nil {
		return card.StoredCard{}, fmt.Errorf("get card: %w", err)
	}
	var sc card.StoredCard
	if err := json.Unmarshal(raw, &sc); err != nil {
		return card.StoredCard{}, fmt.Errorf("decode card: %w", err)
	}
	return sc, nil
}

// ListAll reads the index set and fetches all cards with one MGET.
func (r *Redis) ListAll(ctx context.Context) ([]card.StoredCard, error) {
	keys, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list card index: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.cardKey(k)
	}
	vals, err := r.client.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("load cards: %w", err)
	}
	out := make([]card.StoredCard, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var sc card.StoredCard
		if err := json.Unmarshal([]byte(s), &sc); err != nil {
			return nil, fmt.Errorf("decode card: %w", err)
		}
		out = append(out, sc)
	}
	return out, nil
}

// Healthy verifies redis connectivity.
func (r *Redis) Healthy(ctx context.Context) bool {
	if r == nil || r.client == nil {
		return false
	}
	return r.client.Ping(ctx).Err() == nil
}
