package tokenstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore(100)
	defer s.Close()
	ctx := context.Background()

	revoked, err := s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "abc", time.Now().Add(time.Hour)))
	revoked, err = s.IsRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	// an already expired token is not stored
	require.NoError(t, s.Revoke(ctx, "old", time.Now().Add(-time.Minute)))
	revoked, _ = s.IsRevoked(ctx, "old")
	assert.False(t, revoked)

	revoked, _ = s.IsRevoked(ctx, "")
	assert.False(t, revoked)
}

// TestRedisStore runs against a live server when REDIS_ADDRESS is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDRESS")
	if addr == "" {
		t.Skip("REDIS_ADDRESS not set")
	}
	ctx := context.Background()
	s, err := Dial(ctx, addr, os.Getenv("REDIS_PASSWORD"))
	require.NoError(t, err)
	defer s.Close()

	jti := uuid.NewString()
	revoked, err := s.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, jti, time.Now().Add(time.Minute)))
	revoked, err = s.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)
}
