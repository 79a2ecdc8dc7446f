package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRevokeAndIsRevoked(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	bl := NewBlacklist(client)

	ctx := context.Background()
	token := "access-token-1"
	require.NoError(t, bl.Revoke(ctx, token, 2*time.Second))

	ok, err := bl.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	// advance past TTL
	m.FastForward(3 * time.Second)

	ok2, err := bl.IsRevoked(ctx, token)
	require.NoError(t, err)
	require.False(t, ok2)
}

// Blacklist methods are no-ops without a Redis client
func TestBlacklist_NoClient_Noop(t *testing.T) {
	var bl *Blacklist
	ctx := context.Background()
	require.NoError(t, bl.Revoke(ctx, "t", time.Second))
	ok, err := bl.IsRevoked(ctx, "t")
	require.NoError(t, err)
	require.False(t, ok)

	bl2 := NewBlacklist(nil)
	require.NoError(t, bl2.Revoke(ctx, "t", time.Second))
	ok, err = bl2.IsRevoked(ctx, "t")
	require.NoError(t, err)
	require.False(t, ok)
}
