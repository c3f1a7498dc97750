package xconf

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/tiercache/pkg/storage/xtier"
)

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeTempConfig(t, "config.yaml", `
backend: fs
dir: /var/cache/app
memory_ttl: 5s
file_ttl: 2m
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendFS, cfg.Backend)
	assert.Equal(t, "/var/cache/app", cfg.Dir)
	assert.Equal(t, 5*time.Second, cfg.MemoryTTL)
	assert.Equal(t, 2*time.Minute, cfg.FileTTL)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
}

func TestLoad_JSON(t *testing.T) {
	path := writeTempConfig(t, "config.json", `{
  "backend": "redis",
  "redis": {"addr": "localhost:6379", "db": 3, "key_prefix": "app:"}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Backend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "app:", cfg.Redis.KeyPrefix)
}

func TestLoad_DefaultsApplied(t *testing.T) {
	// 只给必填项，其余字段应落到默认值。
	path := writeTempConfig(t, "config.yaml", "dir: /tmp/cache\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendFS, cfg.Backend)
	assert.Equal(t, xtier.DefaultMemoryTTL, cfg.MemoryTTL)
	assert.Equal(t, xtier.DefaultFileTTL, cfg.FileTTL)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_Errors(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		_, err := Load("")
		assert.ErrorIs(t, err, ErrEmptyPath)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, err := Load("/etc/app/config.toml")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, ErrLoadFailed)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeTempConfig(t, "bad.yaml", "backend: [unclosed\n")
		_, err := Load(path)
		assert.ErrorIs(t, err, ErrParseFailed)
	})
}

func TestLoadBytes_InvalidFormat(t *testing.T) {
	_, err := LoadBytes([]byte("{}"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Dir = "/tmp/cache"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"valid fs", func(c *Config) {}, nil},
		{"valid redis", func(c *Config) {
			c.Backend = BackendRedis
			c.Redis.Addr = "localhost:6379"
		}, nil},
		{"unknown backend", func(c *Config) { c.Backend = "s3" }, ErrInvalidConfig},
		{"fs without dir", func(c *Config) { c.Dir = "" }, ErrInvalidConfig},
		{"redis without addr", func(c *Config) { c.Backend = BackendRedis }, ErrInvalidConfig},
		{"zero memory ttl", func(c *Config) { c.MemoryTTL = 0 }, ErrInvalidConfig},
		{"negative file ttl", func(c *Config) { c.FileTTL = -time.Second }, ErrInvalidConfig},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo}, // 非法值回退为 info
	}
	for _, tt := range tests {
		cfg := Default()
		cfg.LogLevel = tt.in
		assert.Equal(t, tt.want, cfg.Level(), "log_level=%q", tt.in)
	}
}
