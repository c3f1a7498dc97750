package xbackend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/omeyang/tiercache/pkg/util/xfile"
)

// DefaultFilePerm 缓存条目文件的默认权限。
const DefaultFilePerm = 0600

// =============================================================================
// FS 配置选项
// =============================================================================

// FSOption 定义文件后端的配置选项。
type FSOption func(*fsOptions)

type fsOptions struct {
	filePerm os.FileMode
	dirPerm  os.FileMode
}

func defaultFSOptions() *fsOptions {
	return &fsOptions{
		filePerm: DefaultFilePerm,
		dirPerm:  xfile.DefaultDirPerm,
	}
}

// WithFSFilePerm 设置缓存条目文件的权限。
// perm 为 0 时忽略此设置并使用默认值。
func WithFSFilePerm(perm os.FileMode) FSOption {
	return func(o *fsOptions) {
		if perm != 0 {
			o.filePerm = perm
		}
	}
}

// WithFSDirPerm 设置缓存目录（含 key 的中间目录）的权限。
// perm 为 0 时忽略此设置并使用默认值。
func WithFSDirPerm(perm os.FileMode) FSOption {
	return func(o *fsOptions) {
		if perm != 0 {
			o.dirPerm = perm
		}
	}
}

// =============================================================================
// 工厂函数
// =============================================================================

// NewFS 创建文件系统后端：dir 下一个 key 一个文件。
//
// dir 会被转换为绝对路径并在必要时创建。key 允许包含子目录
// （如 "user/42"），中间目录在写入时按需创建。
func NewFS(dir string, opts ...FSOption) (Backend, error) {
	if dir == "" {
		return nil, ErrEmptyDir
	}

	options := defaultFSOptions()
	for _, opt := range opts {
		opt(options)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("xbackend: resolve cache directory: %w", err)
	}
	if err := xfile.EnsureDirWithPerm(abs, options.dirPerm); err != nil {
		return nil, fmt.Errorf("xbackend: create cache directory: %w", err)
	}

	return &fsBackend{
		dir:     abs,
		options: options,
	}, nil
}

// fsBackend 实现 Backend 接口，以文件为存储单元。
type fsBackend struct {
	dir     string
	options *fsOptions
	closed  atomic.Bool
}

func (b *fsBackend) Read(ctx context.Context, key string) ([]byte, error) {
	path, err := b.keyPath(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return nil, fmt.Errorf("xbackend: read %q: %w", key, err)
	}
	return data, nil
}

func (b *fsBackend) Write(ctx context.Context, key string, content []byte) error {
	path, err := b.keyPath(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := xfile.EnsureParent(path); err != nil {
		return fmt.Errorf("xbackend: create parent for %q: %w", key, err)
	}

	// 先写同目录下的唯一临时文件，再 rename。同一文件系统内 rename
	// 是原子的，读端不会观察到半写内容。
	tmp := path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, content, b.options.filePerm); err != nil {
		return fmt.Errorf("xbackend: write temp for %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		// rename 失败时临时文件已无用，尽力清理。
		_ = os.Remove(tmp)
		return fmt.Errorf("xbackend: commit %q: %w", key, err)
	}
	return nil
}

func (b *fsBackend) Remove(ctx context.Context, key string) error {
	path, err := b.keyPath(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %q", ErrNotFound, key)
		}
		return fmt.Errorf("xbackend: remove %q: %w", key, err)
	}
	return nil
}

func (b *fsBackend) ValidateKey(key string) error {
	if _, err := xfile.SanitizeKey(key); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return nil
}

// Dir 返回缓存目录的绝对路径。
func (b *fsBackend) Dir() string {
	return b.dir
}

func (b *fsBackend) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}

// keyPath 把 key 映射为缓存目录内的文件路径。
func (b *fsBackend) keyPath(key string) (string, error) {
	if b.closed.Load() {
		return "", ErrClosed
	}
	path, err := xfile.SafeJoin(b.dir, key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return path, nil
}

// 编译期接口检查。
var _ Backend = (*fsBackend)(nil)
