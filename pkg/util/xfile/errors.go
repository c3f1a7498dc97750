package xfile

import "errors"

var (
	// ErrEmptyKey 表示 key 或路径为空字符串。
	ErrEmptyKey = errors.New("xfile: empty key")

	// ErrNullByte 表示 key 或路径包含空字节。
	// 内核在 VFS 层会在空字节处截断路径，Go 与操作系统看到的路径会不一致。
	ErrNullByte = errors.New("xfile: null byte in key")

	// ErrAbsoluteKey 表示 key 是绝对路径（含 Windows 驱动器与 UNC 形式）。
	ErrAbsoluteKey = errors.New("xfile: key must be a relative path")

	// ErrKeyTraversal 表示 key 中包含 ".." 路径段。
	ErrKeyTraversal = errors.New("xfile: path traversal in key")

	// ErrKeyIsDir 表示 key 以路径分隔符结尾，指向目录而非文件。
	ErrKeyIsDir = errors.New("xfile: key denotes a directory")

	// ErrBaseNotAbsolute 表示基准目录不是绝对路径。
	ErrBaseNotAbsolute = errors.New("xfile: base must be an absolute path")

	// ErrKeyEscaped 表示拼接结果逃逸出了基准目录。
	// SafeJoin 的输入已拒绝穿越与绝对路径，正常情况下不应出现此错误。
	ErrKeyEscaped = errors.New("xfile: key escapes base directory")

	// ErrInvalidPerm 表示目录权限缺少所有者执行位，目录将无法遍历。
	ErrInvalidPerm = errors.New("xfile: invalid directory permission")
)
