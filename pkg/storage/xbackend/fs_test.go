package xbackend

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFSForTest(t *testing.T) Backend {
	t.Helper()
	b, err := NewFS(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestNewFSEmptyDir(t *testing.T) {
	_, err := NewFS("")
	assert.ErrorIs(t, err, ErrEmptyDir)
}

func TestNewFSCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "cache")
	b, err := NewFS(dir)
	require.NoError(t, err)
	defer b.Close()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFSWriteReadRemove(t *testing.T) {
	b := newFSForTest(t)
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, "session", []byte("payload")))

	data, err := b.Read(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)

	require.NoError(t, b.Remove(ctx, "session"))

	_, err = b.Read(ctx, "session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSReadMissing(t *testing.T) {
	b := newFSForTest(t)

	_, err := b.Read(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSRemoveMissing(t *testing.T) {
	b := newFSForTest(t)

	err := b.Remove(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSOverwrite(t *testing.T) {
	b := newFSForTest(t)
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, "k", []byte("v1")))
	require.NoError(t, b.Write(ctx, "k", []byte("v2")))

	data, err := b.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestFSNestedKey(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFS(dir)
	require.NoError(t, err)
	defer b.Close()
	ctx := context.Background()

	require.NoError(t, b.Write(ctx, "user/42", []byte("profile")))

	data, err := b.Read(ctx, "user/42")
	require.NoError(t, err)
	assert.Equal(t, []byte("profile"), data)

	// key 的子目录确实落在缓存目录内。
	_, err = os.Stat(filepath.Join(dir, "user", "42"))
	assert.NoError(t, err)
}

func TestFSInvalidKeys(t *testing.T) {
	b := newFSForTest(t)
	ctx := context.Background()

	for _, key := range []string{"", "../escape", "/etc/passwd", "a\x00b", "dir/"} {
		assert.ErrorIs(t, b.ValidateKey(key), ErrInvalidKey, "key=%q", key)
		_, err := b.Read(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, "key=%q", key)
		assert.ErrorIs(t, b.Write(ctx, key, nil), ErrInvalidKey, "key=%q", key)
		assert.ErrorIs(t, b.Remove(ctx, key), ErrInvalidKey, "key=%q", key)
	}
}

func TestFSNoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFS(dir)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Write(context.Background(), "k", []byte("v")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".tmp-"), "temp file leaked: %s", e.Name())
	}
}

func TestFSContextCanceled(t *testing.T) {
	b := newFSForTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Read(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, b.Write(ctx, "k", nil), context.Canceled)
	assert.ErrorIs(t, b.Remove(ctx, "k"), context.Canceled)
}

func TestFSClose(t *testing.T) {
	b, err := NewFS(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, b.Close())
	assert.ErrorIs(t, b.Close(), ErrClosed)

	_, err = b.Read(context.Background(), "k")
	assert.ErrorIs(t, err, ErrClosed)
}
