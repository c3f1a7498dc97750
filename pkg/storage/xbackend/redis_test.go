package xbackend

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisForTest(t *testing.T, opts ...RedisOption) (Backend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b, err := NewRedis(client, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b, mr
}

func TestNewRedisNilClient(t *testing.T) {
	_, err := NewRedis(nil)
	assert.ErrorIs(t, err, ErrNilClient)
}

func TestRedisWriteReadRemove(t *testing.T) {
	b, mr := newRedisForTest(t)
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, "session", []byte("payload")))

	// 默认前缀隔离命名空间。
	assert.True(t, mr.Exists("tiercache:session"))

	data, err := b.Read(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, b.Remove(ctx, "session"))
	assert.False(t, mr.Exists("tiercache:session"))

	_, err = b.Read(ctx, "session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisRemoveMissing(t *testing.T) {
	b, _ := newRedisForTest(t)

	err := b.Remove(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisKeyPrefix(t *testing.T) {
	b, mr := newRedisForTest(t, WithRedisKeyPrefix("app:"))

	require.NoError(t, b.Write(context.Background(), "k", []byte("v")))
	assert.True(t, mr.Exists("app:k"))
}

func TestRedisInvalidKeys(t *testing.T) {
	b, _ := newRedisForTest(t)

	assert.ErrorIs(t, b.ValidateKey(""), ErrInvalidKey)
	assert.ErrorIs(t, b.ValidateKey("a\x00b"), ErrInvalidKey)
	// Redis 的 key 没有路径语义，斜杠是合法字符。
	assert.NoError(t, b.ValidateKey("user/42"))
}

func TestRedisClose(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b, err := NewRedis(client)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Close(), ErrClosed)

	_, err = b.Read(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}
