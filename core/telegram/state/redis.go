package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	coreredis "github.com/m3rciful/paybot/core/redis"
)

type redisTracker struct {
	kv  coreredis.KV
	ttl time.Duration
}

// NewRedisTracker stores conversations in Redis under "paybot:conv:<user>" with the given TTL.
// An expired record reads back as idle.
func NewRedisTracker(kv coreredis.KV, ttl time.Duration) Tracker {
	if ttl < 0 {
		ttl = 0
	}
	return &redisTracker{kv: kv, ttl: ttl}
}

func (r *redisTracker) key(userID int64) string {
	return fmt.Sprintf("paybot:conv:%d", userID)
}

func (r *redisTracker) Get(ctx context.Context, userID int64) (Conversation, error) {
	raw, err := r.kv.Get(ctx, r.key(userID))
	if errors.Is(err, coreredis.ErrNil) {
		return idle(), nil
	}
	if err != nil {
		return idle(), fmt.Errorf("state: get: %w", err)
	}
	var conv Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		return idle(), fmt.Errorf("state: decode: %w", err)
	}
	if conv.State == "" {
		conv.State = StateIdle
	}
	return conv, nil
}

func (r *redisTracker) Set(ctx context.Context, userID int64, conv Conversation) error {
	if conv.State == "" {
		conv.State = StateIdle
	}
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("state: encode: %w", err)
	}
	if err := r.kv.Set(ctx, r.key(userID), data, r.ttl); err != nil {
		return fmt.Errorf("state: set: %w", err)
	}
	return nil
}

func (r *redisTracker) Clear(ctx context.Context, userID int64) error {
	if err := r.kv.Del(ctx, r.key(userID)); err != nil {
		return fmt.Errorf("state: clear: %w", err)
	}
	return nil
}
