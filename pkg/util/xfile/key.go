package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SanitizeKey 校验并规范化缓存 key。
//
// key 会被用作缓存目录下的相对文件名，允许包含子目录（如 "user/42"），
// 但必须满足：
//   - 非空且不含空字节
//   - 相对路径（拒绝 "/..."、"C:\..."、"\\server\..." 等绝对形式）
//   - 不以 "/" 或 "\" 结尾（那是目录，不是文件）
//   - 规范化后不含 ".." 路径段
//
// 返回 filepath.Clean 之后的 key。合法文件名中的连续点（如 "a..b"）
// 不受影响，只有独立的 ".." 段会被拒绝。
func SanitizeKey(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if strings.ContainsRune(key, 0) {
		return "", ErrNullByte
	}
	if filepath.IsAbs(key) || isWindowsAbs(key) {
		return "", fmt.Errorf("%w: %q", ErrAbsoluteKey, key)
	}
	// Clean 会吃掉结尾分隔符，必须先判断目录形式。
	if strings.HasSuffix(key, "/") || strings.HasSuffix(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrKeyIsDir, key)
	}

	cleaned := filepath.Clean(key)
	if cleaned == "." {
		return "", ErrEmptyKey
	}
	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("%w: %q", ErrKeyTraversal, key)
	}
	return cleaned, nil
}

// SafeJoin 将缓存 key 拼接到绝对基准目录下，保证结果始终位于 base 内。
//
// base 必须是绝对路径；key 先经 [SanitizeKey] 净化，拼接后再用
// filepath.Rel 反向验证一次，防止标准库行为变更引入静默逃逸。
func SafeJoin(base, key string) (string, error) {
	if base == "" {
		return "", ErrEmptyKey
	}
	if strings.ContainsRune(base, 0) {
		return "", ErrNullByte
	}
	cleanBase := filepath.Clean(base)
	if !filepath.IsAbs(cleanBase) {
		return "", fmt.Errorf("%w: %q", ErrBaseNotAbsolute, base)
	}

	cleanKey, err := SanitizeKey(key)
	if err != nil {
		return "", err
	}

	joined := filepath.Join(cleanBase, cleanKey)
	rel, err := filepath.Rel(cleanBase, joined)
	if err != nil || hasDotDotSegment(rel) {
		return "", fmt.Errorf("%w: %q", ErrKeyEscaped, key)
	}
	return joined, nil
}

// isWindowsAbs 识别 Windows 风格的绝对或驱动器相关路径。
// 在 Linux 上 filepath.IsAbs 不认识 "C:\..." 与 "\\server\..."，
// 跨平台传入的这类 key 需要显式拒绝。
func isWindowsAbs(key string) bool {
	// "X:" 前缀：驱动器绝对路径与驱动器相对路径一并拒绝。
	if len(key) >= 2 && isASCIILetter(key[0]) && key[1] == ':' {
		return true
	}
	// 反斜杠开头：Windows 根路径或 UNC 路径。
	return len(key) >= 1 && key[0] == '\\'
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// hasDotDotSegment 判断路径中是否存在恰好为 ".." 的独立路径段。
// 同时把 '/' 与 '\' 视为分隔符，逐字节扫描，零分配。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}
