package xbackend

import (
	"context"
	"io"
)

// Backend 定义缓存持久层的最小操作集。
//
// 所有方法都可能有不受控的延迟（磁盘/网络）；调用方通过 ctx 传递取消信号。
// Backend 实现必须并发安全，但不保证同一 key 上并发操作的顺序——
// 按 key 串行化是上层（xtier 的访问协调器）的职责。
type Backend interface {
	io.Closer

	// Read 读取 key 对应的完整内容。
	// key 不存在时返回 [ErrNotFound]；其余错误为 I/O 故障。
	Read(ctx context.Context, key string) ([]byte, error)

	// Write 将 content 完整写入 key 对应的条目，覆盖旧值。
	Write(ctx context.Context, key string, content []byte) error

	// Remove 删除 key 对应的条目。
	// key 不存在时返回 [ErrNotFound]。
	Remove(ctx context.Context, key string) error

	// ValidateKey 校验 key 能否映射为本后端的条目。
	// 非法 key 返回包装了 [ErrInvalidKey] 的错误，合法返回 nil。
	// 上层在任何 I/O 之前同步调用，保证排队中的写入不会携带坏 key。
	ValidateKey(key string) error
}
