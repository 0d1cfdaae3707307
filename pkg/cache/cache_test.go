package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestLocalCacheRoundTrip(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "false")

	c, err := New(context.Background(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	ctx := context.Background()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte(`{"data":[]}`))
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"data":[]}`), got)
}

func TestLocalCacheExpiry(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "false")

	c, err := New(context.Background(), zaptest.NewLogger(t))
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	c.ttl = 10 * time.Millisecond

	ctx := context.Background()
	c.Set(ctx, "k", []byte("v"))

	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}
