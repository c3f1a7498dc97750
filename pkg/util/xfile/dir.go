package xfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDirPerm 缓存目录的默认权限。
//
// 0750：所有者读写执行，组读执行，其他用户无权限（gosec G301）。
const DefaultDirPerm = 0750

// EnsureDir 确保目录存在，不存在时以 [DefaultDirPerm] 创建。
// 目录已存在时不修改其权限。
func EnsureDir(dir string) error {
	return EnsureDirWithPerm(dir, DefaultDirPerm)
}

// EnsureDirWithPerm 确保目录存在，使用指定权限创建。
// perm 必须包含所有者执行位（0100），否则目录无法进入。
func EnsureDirWithPerm(dir string, perm os.FileMode) error {
	if dir == "" {
		return ErrEmptyKey
	}
	if strings.ContainsRune(dir, 0) {
		return ErrNullByte
	}
	if perm&0100 == 0 {
		return fmt.Errorf("%w: %04o missing owner execute bit", ErrInvalidPerm, perm)
	}
	return os.MkdirAll(dir, perm)
}

// EnsureParent 确保文件的父目录存在。
// key 含子目录（如 "user/42"）时，写入前需要先建出中间目录。
func EnsureParent(filename string) error {
	if filename == "" {
		return ErrEmptyKey
	}
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	return EnsureDir(dir)
}
