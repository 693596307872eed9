package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/clock-shop/internal/core/domain"
	"github.com/rl1809/clock-shop/internal/port"
)

const (
	snapshotKeyPrefix = "cart:session:"
	idempotencyKeyTTL = 24 * time.Hour
)

// saveSnapshotScript only replaces a snapshot with one that is not older, so a
// slow writer cannot roll a session back.
var saveSnapshotScript = redis.NewScript(`
local key = KEYS[1]
local payload = ARGV[1]
local updated = tonumber(ARGV[2])
local ttl = tonumber(ARGV[3])

local current = redis.call('HGET', key, 'updated')
if current and tonumber(current) > updated then
	return 0
end

redis.call('HSET', key, 'payload', payload, 'updated', ARGV[2])
if ttl > 0 then
	redis.call('PEXPIRE', key, ttl)
end
return 1
`)

type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) SaveSnapshot(ctx context.Context, snapshot domain.CartSnapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	key := snapshotKeyPrefix + snapshot.SessionID
	return saveSnapshotScript.Run(ctx, r.client, []string{key},
		payload, snapshot.UpdatedAt.UnixMilli(), ttl.Milliseconds(),
	).Err()
}

func (r *RedisAdapter) LoadSnapshot(ctx context.Context, sessionID string) (domain.CartSnapshot, error) {
	payload, err := r.client.HGet(ctx, snapshotKeyPrefix+sessionID, "payload").Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CartSnapshot{}, port.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.CartSnapshot{}, err
	}

	var snapshot domain.CartSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		return domain.CartSnapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
