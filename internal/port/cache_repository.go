package port

import (
	"context"
	"errors"
	"time"

	"github.com/rl1809/clock-shop/internal/core/domain"
)

var ErrSnapshotNotFound = errors.New("cart snapshot not found")

type CacheRepository interface {
	// SaveSnapshot stores the session cart, replacing any previous snapshot, and expires it after ttl
	SaveSnapshot(ctx context.Context, snapshot domain.CartSnapshot, ttl time.Duration) error

	// LoadSnapshot returns the session cart, or ErrSnapshotNotFound
	LoadSnapshot(ctx context.Context, sessionID string) (domain.CartSnapshot, error)

	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency drops a key taken by SetIdempotency so the request can be retried
	ReleaseIdempotency(ctx context.Context, key string) error
}
