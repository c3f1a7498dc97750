package xbackend

import "errors"

var (
	// ErrNotFound 表示 key 在后端没有对应条目。
	// 这是常态而非故障：读穿与删除都可能命中不存在的 key。
	ErrNotFound = errors.New("xbackend: key not found")

	// ErrInvalidKey 表示 key 无法映射为后端条目（空值、路径穿越等）。
	ErrInvalidKey = errors.New("xbackend: invalid key")

	// ErrClosed 表示后端已关闭。
	ErrClosed = errors.New("xbackend: closed")

	// ErrNilClient 表示传入的客户端为 nil。
	ErrNilClient = errors.New("xbackend: nil client")

	// ErrEmptyDir 表示未提供缓存目录。
	ErrEmptyDir = errors.New("xbackend: empty cache directory")
)
