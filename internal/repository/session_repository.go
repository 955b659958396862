package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const revokedSessionPrefix = "session:revoked:"

// SessionRepository keeps a denylist of revoked session token IDs in Redis.
// A nil client turns every call into a no-op so sessions simply live until expiry.
type SessionRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(client *redis.Client, logger *zap.Logger) *SessionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRepository{client: client, logger: logger}
}

// Enabled reports whether revocation is backed by Redis.
func (r *SessionRepository) Enabled() bool {
	return r.client != nil
}

// Revoke denylists a token ID until it would have expired anyway.
func (r *SessionRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if r.client == nil || tokenID == "" {
		return nil
	}
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedSessionPrefix+tokenID, "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis revoke session %s: %w", tokenID, err)
	}
	return nil
}

// IsRevoked reports whether a token ID has been denylisted. Redis failures are
// logged and treated as not revoked.
func (r *SessionRepository) IsRevoked(ctx context.Context, tokenID string) bool {
	if r.client == nil || tokenID == "" {
		return false
	}
	n, err := r.client.Exists(ctx, revokedSessionPrefix+tokenID).Result()
	if err != nil {
		r.logger.Warn("session denylist lookup failed", zap.String("jti", tokenID), zap.Error(err))
		return false
	}
	return n > 0
}
