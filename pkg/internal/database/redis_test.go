package database

import (
	"context"
	"testing"

	"git.solsynth.dev/hypernet/calling/pkg/internal/config"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewSource(config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Set(context.Background(), "hello", "world", 0).Err())
	got, err := mr.Get("hello")
	require.NoError(t, err)
	assert.Equal(t, "world", got)
}

func TestNewSourceUnreachable(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	addr := mr.Addr()
	mr.Close()

	_, err := NewSource(config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
