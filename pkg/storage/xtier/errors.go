package xtier

import "errors"

var (
	// ErrClosed 表示缓存已关闭。
	// Close 后调用 Set/Get 返回此错误。
	ErrClosed = errors.New("xtier: closed")

	// ErrNilBackend 表示未提供持久层后端。
	ErrNilBackend = errors.New("xtier: nil backend")

	// ErrInvalidTTL 表示 TTL 配置非正。
	ErrInvalidTTL = errors.New("xtier: ttl must be positive")

	// ErrInvalidShardCount 表示分片数不是 2 的幂或超出上限。
	ErrInvalidShardCount = errors.New("xtier: invalid shard count")
)
