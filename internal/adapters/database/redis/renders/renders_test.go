package renders

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s := NewStorage(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	_, ok, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	png := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	require.NoError(t, s.Set(ctx, "abc", png, time.Hour))

	got, ok, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, png, got)

	mr.FastForward(time.Hour + time.Second)
	_, ok, err = s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLast(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s := NewStorage(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	key, err := s.Last(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, key)

	require.NoError(t, s.SetLast(ctx, 9, "k1", 0))
	require.NoError(t, s.SetLast(ctx, 9, "k2", 0))

	key, err = s.Last(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "k2", key)
}
