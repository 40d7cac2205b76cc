package cache

import (
	"context"
	"package-tracking-service/internal/domain"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisPackageCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), "redis://"+srv.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return NewRedisPackageCache(client, time.Minute), srv
}

func TestRedisPackageCacheRoundTrip(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	miss, version, err := c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, miss)
	assert.Zero(t, version)

	p := &domain.Package{
		ID:             1,
		TrackingNumber: "ABC123",
		Recipient:      "Jane Doe",
		Weight:         5,
		ShipDate:       domain.NewDate(2024, time.January, 10),
		CreatedAt:      time.Date(2024, 1, 9, 8, 0, 0, 0, time.UTC),
		Active:         true,
	}
	require.NoError(t, c.Fill(ctx, p, version))
	assert.True(t, srv.Exists("package:1"))
	assert.Equal(t, time.Minute, srv.TTL("package:1"))

	got, _, err := c.Get(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.Input(), got.Input())
	assert.True(t, p.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, got.Active)

	require.NoError(t, c.Invalidate(ctx, 1))
	assert.False(t, srv.Exists("package:1"))

	_, version, err = c.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)
}

func TestRedisPackageCacheDropsFillAfterInvalidate(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	_, version, err := c.Get(ctx, 3)
	require.NoError(t, err)

	// A writer invalidates while the reader is still loading from the store.
	require.NoError(t, c.Invalidate(ctx, 3))

	stale := &domain.Package{ID: 3, TrackingNumber: "OLD003", Active: true}
	require.NoError(t, c.Fill(ctx, stale, version))
	assert.False(t, srv.Exists("package:3"))

	got, version, err := c.Get(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Fill(ctx, &domain.Package{ID: 3, TrackingNumber: "NEW003"}, version))
	got, _, err = c.Get(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "NEW003", got.TrackingNumber)
}

func TestRedisPackageCacheExpires(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Fill(ctx, &domain.Package{ID: 2, TrackingNumber: "EXP001"}, 0))
	srv.FastForward(2 * time.Minute)

	got, _, err := c.Get(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewRedisClientRejectsBadURL(t *testing.T) {
	_, err := NewRedisClient(context.Background(), "://nope")
	assert.Error(t, err)
}
