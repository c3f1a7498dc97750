package xbackend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Redis 配置选项
// =============================================================================

// RedisOption 定义 Redis 后端的配置选项。
type RedisOption func(*redisOptions)

type redisOptions struct {
	keyPrefix string
}

func defaultRedisOptions() *redisOptions {
	return &redisOptions{
		keyPrefix: "tiercache:",
	}
}

// WithRedisKeyPrefix 设置存储 key 的前缀，默认 "tiercache:"。
// 用于在共享 Redis 实例上隔离缓存命名空间。
func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.keyPrefix = prefix
	}
}

// =============================================================================
// 工厂函数
// =============================================================================

// NewRedis 创建 Redis 后端，作为文件系统之外的替代持久层。
//
// client 必须是已初始化的 redis.UniversalClient，生命周期归本后端所有：
// Close 会关闭传入的 client。
//
// 注意：这只是持久层的替换，不提供多进程协调——按 key 串行化仍然
// 只在单个进程内生效。
func NewRedis(client redis.UniversalClient, opts ...RedisOption) (Backend, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	options := defaultRedisOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &redisBackend{
		client:  client,
		options: options,
	}, nil
}

// redisBackend 实现 Backend 接口，以 Redis string 为存储单元。
type redisBackend struct {
	client  redis.UniversalClient
	options *redisOptions
	closed  atomic.Bool
}

func (b *redisBackend) Read(ctx context.Context, key string) ([]byte, error) {
	if err := b.check(key); err != nil {
		return nil, err
	}

	data, err := b.client.Get(ctx, b.options.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return nil, fmt.Errorf("xbackend: redis get %q: %w", key, err)
	}
	return data, nil
}

func (b *redisBackend) Write(ctx context.Context, key string, content []byte) error {
	if err := b.check(key); err != nil {
		return err
	}

	// 过期统一由上层的文件层 TTL 驱动（显式 Remove），这里不设 Redis TTL。
	if err := b.client.Set(ctx, b.options.keyPrefix+key, content, 0).Err(); err != nil {
		return fmt.Errorf("xbackend: redis set %q: %w", key, err)
	}
	return nil
}

func (b *redisBackend) Remove(ctx context.Context, key string) error {
	if err := b.check(key); err != nil {
		return err
	}

	n, err := b.client.Del(ctx, b.options.keyPrefix+key).Result()
	if err != nil {
		return fmt.Errorf("xbackend: redis del %q: %w", key, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return nil
}

func (b *redisBackend) ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.ContainsRune(key, 0) {
		return fmt.Errorf("%w: null byte in key", ErrInvalidKey)
	}
	return nil
}

func (b *redisBackend) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return b.client.Close()
}

func (b *redisBackend) check(key string) error {
	if b.closed.Load() {
		return ErrClosed
	}
	return b.ValidateKey(key)
}

// 编译期接口检查。
var _ Backend = (*redisBackend)(nil)
