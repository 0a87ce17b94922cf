package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	coreredis "github.com/m3rciful/paybot/core/redis"
)

const keyPrefix = "paybot:session:"

// RedisStore keeps sessions in Redis as JSON with a sliding TTL refreshed on Put.
type RedisStore struct {
	kv  coreredis.KV
	ttl time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore builds a Redis-backed store. ttl <= 0 disables expiry.
func NewRedisStore(kv coreredis.KV, ttl time.Duration) *RedisStore {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisStore{kv: kv, ttl: ttl}
}

func (r *RedisStore) key(userID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, userID)
}

// Put creates or overwrites the session for s.UserID.
func (r *RedisStore) Put(ctx context.Context, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := r.kv.Set(ctx, r.key(s.UserID), data, r.ttl); err != nil {
		return fmt.Errorf("session: put: %w", err)
	}
	return nil
}

// Get returns the session for a user if it exists and has not expired.
func (r *RedisStore) Get(ctx context.Context, userID int64) (Session, bool, error) {
	raw, err := r.kv.Get(ctx, r.key(userID))
	if errors.Is(err, coreredis.ErrNil) {
		return Session{}, false, nil
	}
	if err != nil {
		return Session{}, false, fmt.Errorf("session: get: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Session{}, false, fmt.Errorf("session: decode: %w", err)
	}
	return s, true, nil
}

// Delete removes the session for a user.
func (r *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := r.kv.Del(ctx, r.key(userID)); err != nil {
		return fmt.Errorf("session: delete: %w", err)
	}
	return nil
}
