package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/tiercache/pkg/storage/xbackend"
)

// writeTestConfig 生成指向临时目录文件后端的配置，返回 (配置路径, 缓存目录)。
func writeTestConfig(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	cacheDir := filepath.Join(base, "cache")
	cfgPath := filepath.Join(base, "config.yaml")

	content := fmt.Sprintf("backend: fs\ndir: %s\nmemory_ttl: 10s\nfile_ttl: 10m\nlog_level: error\n", cacheDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o600))
	return cfgPath, cacheDir
}

func TestRun_SetThenGet(t *testing.T) {
	cfgPath, cacheDir := writeTestConfig(t)

	code := run([]string{"tierctl", "-c", cfgPath, "set", "user/1", "alice"})
	require.Zero(t, code)

	// set 退出即已持久化。
	backend, err := xbackend.NewFS(cacheDir)
	require.NoError(t, err)
	defer func() { _ = backend.Close() }()
	v, err := backend.Read(context.Background(), "user/1")
	require.NoError(t, err)
	assert.Equal(t, "alice", string(v))

	assert.Zero(t, run([]string{"tierctl", "-c", cfgPath, "get", "user/1"}))
}

func TestRun_GetMissingKey(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	code := run([]string{"tierctl", "-c", cfgPath, "get", "nope"})
	assert.Equal(t, 1, code)
}

func TestRun_Remove(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	require.Zero(t, run([]string{"tierctl", "-c", cfgPath, "set", "k", "v"}))
	assert.Zero(t, run([]string{"tierctl", "-c", cfgPath, "rm", "k"}))
	assert.Equal(t, 1, run([]string{"tierctl", "-c", cfgPath, "rm", "k"}))
	assert.Equal(t, 1, run([]string{"tierctl", "-c", cfgPath, "get", "k"}))
}

func TestRun_UsageErrors(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)

	tests := []struct {
		name string
		args []string
	}{
		{"set without key", []string{"tierctl", "-c", cfgPath, "set"}},
		{"set too many args", []string{"tierctl", "-c", cfgPath, "set", "k", "v", "extra"}},
		{"get without key", []string{"tierctl", "-c", cfgPath, "get"}},
		{"get invalid key", []string{"tierctl", "-c", cfgPath, "get", "../escape"}},
		{"missing config file", []string{"tierctl", "-c", filepath.Join(t.TempDir(), "nope.yaml"), "get", "k"}},
		{"unknown flag", []string{"tierctl", "--bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 2, run(tt.args))
		})
	}
}

func TestRun_Validate(t *testing.T) {
	cfgPath, _ := writeTestConfig(t)
	assert.Zero(t, run([]string{"tierctl", "-c", cfgPath, "validate"}))

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("backend: s3\n"), 0o600))
	assert.Equal(t, 2, run([]string{"tierctl", "-c", badPath, "validate"}))
}
