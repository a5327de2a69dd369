package qrtoken

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gympass/internal/sentinel"
)

const (
	tokenKeyPrefix = "qr:token:"
	usedKeyPrefix  = "qr:used:"

	// Records are retained briefly past expiry so a late resolve reports
	// expired rather than not found. Redis reclaims them afterwards.
	expiredRetention = 5 * time.Minute
)

// RedisStore persists tokens in Redis using native key expiry.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed token store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Put stores a token. Non-permanent tokens carry a TTL.
func (s *RedisStore) Put(ctx context.Context, token Token) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}

	var ttl time.Duration
	if !token.Permanent {
		ttl = time.Until(token.ExpiresAt) + expiredRetention
		if ttl <= 0 {
			ttl = expiredRetention
		}
	}

	ok, err := s.client.SetNX(ctx, tokenKeyPrefix+token.Token, payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

// Get returns a token by its opaque value.
func (s *RedisStore) Get(ctx context.Context, token string) (*Token, error) {
	payload, err := s.client.Get(ctx, tokenKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load token: %w", err)
	}

	var stored Token
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	if usedErr := s.client.Exists(ctx, usedKeyPrefix+token); usedErr.Err() == nil && usedErr.Val() > 0 {
		stored.Used = true
	}
	return &stored, nil
}

// Consume marks a token used via SETNX on a marker key, so exactly one
// concurrent caller wins.
func (s *RedisStore) Consume(ctx context.Context, token string) error {
	exists, err := s.client.Exists(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return fmt.Errorf("check token: %w", err)
	}
	if exists == 0 {
		return sentinel.ErrNotFound
	}

	ttl, err := s.client.TTL(ctx, tokenKeyPrefix+token).Result()
	if err != nil || ttl < 0 {
		ttl = expiredRetention
	}

	ok, err := s.client.SetNX(ctx, usedKeyPrefix+token, "1", ttl).Result()
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	if !ok {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

// Delete removes a token and its used marker.
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	removed, err := s.client.Del(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	if removed == 0 {
		return sentinel.ErrNotFound
	}
	s.client.Del(ctx, usedKeyPrefix+token)
	return nil
}

// DeleteExpired is a no-op: Redis evicts expired keys natively.
func (s *RedisStore) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
