package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "report.json")

	err := AtomicWriteFile(path, []byte(`{"ok":true}`))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(data))

	// 覆盖写入同一路径
	err = AtomicWriteFile(path, []byte(`{"ok":false}`))
	require.NoError(t, err)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":false}`, string(data))

	// 目录里不应残留临时文件
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCheckFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "narration.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

	assert.True(t, CheckFileExists(path))
	assert.False(t, CheckFileExists(filepath.Join(dir, "missing.txt")))
	// 目录不算文件
	assert.False(t, CheckFileExists(dir))
}

func TestEnsureDirExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "dir")
	require.NoError(t, EnsureDirExists(dir))
	assert.True(t, CheckDirExists(dir))

	// 空路径视为可选
	assert.NoError(t, EnsureDirExists(""))
}
