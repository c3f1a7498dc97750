package xconf

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/omeyang/tiercache/pkg/storage/xtier"
)

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	// FormatYAML YAML 格式（推荐）。
	FormatYAML Format = "yaml"

	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// 支持的后端类型。
const (
	// BackendFS 文件系统后端，每个 key 对应目录下的一个文件。
	BackendFS = "fs"

	// BackendRedis Redis 后端。
	BackendRedis = "redis"
)

// Config 描述一个缓存实例的完整配置。
// 零值不可直接使用，应从 Default() 出发或经 Load/LoadBytes 获得。
type Config struct {
	// Backend 后端类型："fs" 或 "redis"。
	Backend string `koanf:"backend"`

	// Dir 文件后端的存储目录，Backend 为 "fs" 时必填。
	Dir string `koanf:"dir"`

	// MemoryTTL 内存层保留时长，每次访问重新计时。
	MemoryTTL time.Duration `koanf:"memory_ttl"`

	// FileTTL 持久层保留时长，每次写入或读穿重新计时。
	FileTTL time.Duration `koanf:"file_ttl"`

	// Redis Redis 后端连接参数，Backend 为 "redis" 时生效。
	Redis RedisConfig `koanf:"redis"`

	// LogLevel 日志级别：debug/info/warn/error。
	LogLevel string `koanf:"log_level"`
}

// RedisConfig 定义 Redis 后端连接参数。
type RedisConfig struct {
	// Addr Redis 地址，如 "localhost:6379"。
	Addr string `koanf:"addr"`

	// Password 认证密码，可为空。
	Password string `koanf:"password"`

	// DB 数据库编号。
	DB int `koanf:"db"`

	// KeyPrefix 写入 Redis 的 key 前缀，空则使用包默认值。
	KeyPrefix string `koanf:"key_prefix"`
}

// Default 返回带默认值的配置：文件后端、包默认 TTL、info 日志。
// Dir 没有默认值，文件后端必须显式给出目录。
func Default() *Config {
	return &Config{
		Backend:   BackendFS,
		MemoryTTL: xtier.DefaultMemoryTTL,
		FileTTL:   xtier.DefaultFileTTL,
		LogLevel:  "info",
	}
}

// Validate 校验配置内容。
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFS:
		if c.Dir == "" {
			return fmt.Errorf("%w: backend %q requires dir", ErrInvalidConfig, BackendFS)
		}
	case BackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("%w: backend %q requires redis.addr", ErrInvalidConfig, BackendRedis)
		}
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}

	if c.MemoryTTL <= 0 {
		return fmt.Errorf("%w: memory_ttl must be positive, got %v", ErrInvalidConfig, c.MemoryTTL)
	}
	if c.FileTTL <= 0 {
		return fmt.Errorf("%w: file_ttl must be positive, got %v", ErrInvalidConfig, c.FileTTL)
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level 返回配置的 slog 日志级别。
// 未经 Validate 的非法值回退为 info。
func (c *Config) Level() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, s)
	}
}
