package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionRepositoryWithoutRedisIsNoop(t *testing.T) {
	repo := NewSessionRepository(nil, nil)

	assert.False(t, repo.Enabled())
	assert.NoError(t, repo.Revoke(context.Background(), "jti-1", time.Hour))
	assert.False(t, repo.IsRevoked(context.Background(), "jti-1"))
}
