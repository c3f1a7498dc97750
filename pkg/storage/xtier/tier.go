package xtier

import (
	"context"
	"io"

	"github.com/omeyang/tiercache/pkg/storage/xbackend"
)

// Cache 是两层缓存的公开接口。
// 所有方法都是并发安全的。
type Cache interface {
	io.Closer

	// Set 写入 key 的新值，即发即弃：调用立即返回，持久化异步完成。
	//
	// 语义：
	//   - OnSet 观察者在任何 I/O 之前同步触发
	//   - key 忙时新值进入待写槽，覆盖之前排队的值（last-write-wins）
	//   - key 空闲且新值与内存值字节相同时跳过写入（不产生 I/O，
	//     也不刷新任何一层的 TTL）
	//   - 后台写入失败走 WithOnIOError 配置的回调（见 options.go）
	//
	// 返回错误仅限同步可判定的情况：key 非法或缓存已关闭。
	Set(key string, content []byte) error

	// Get 读取 key 的值。
	//
	// 返回 (value, true, nil) 表示命中（内存层或读穿持久层）；
	// (nil, false, nil) 表示两层均无此条目——按照约定，持久层读失败
	// 同样降级为不存在，只留日志。错误仅限 key 非法、缓存已关闭或
	// ctx 取消。
	//
	// 并发的未命中读取合并为一次后端读取，所有等待者共享结果；
	// ctx 取消只影响当前调用方，不会中断在途的后端读取。
	// ctx 不得为 nil，否则 panic。
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Len 返回当前内存层持有值的条目数（瞬时快照）。
	Len() int

	// Keys 返回当前内存层持有值的 key 列表，仅用于调试。
	// 快照不保证跨分片原子性。
	Keys() []string
}

// New 创建一个两层缓存。
//
// backend 是持久层实现（如 xbackend.NewFS），生命周期由调用方管理：
// Close 不会关闭它。配置无效时返回错误。
func New(backend xbackend.Backend, opts ...Option) (Cache, error) {
	if backend == nil {
		return nil, ErrNilBackend
	}

	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	metrics, err := newTierMetrics(o.meterProvider, o.instrumentationName)
	if err != nil {
		return nil, err
	}

	return newCacheImpl(backend, o, metrics), nil
}
