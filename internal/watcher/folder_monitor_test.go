package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNarrationHandlerProcessesOnce(t *testing.T) {
	var mu sync.Mutex
	var calls []string

	handler := NewNarrationHandler(func(filePath string) {
		mu.Lock()
		calls = append(calls, filePath)
		mu.Unlock()
	})

	// 同一文件重复触发只处理一次
	handler.OnFileReady("a.txt")
	handler.OnFileReady("a.txt")
	handler.OnFileReady("b.txt")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a.txt", "b.txt"}, calls)
}

func TestFolderMonitorDetectsNewFile(t *testing.T) {
	dir := t.TempDir()

	processed := make(chan string, 1)
	handler := NewNarrationHandler(func(filePath string) {
		processed <- filePath
	})

	monitor, err := NewFolderMonitor(dir, []string{".txt"}, handler, 100*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, monitor.Start())
	defer monitor.Stop()

	// 写入旁白文件并等待防抖触发
	path := filepath.Join(dir, "narration.txt")
	require.NoError(t, os.WriteFile(path, []byte("Hello world."), 0644))

	select {
	case got := <-processed:
		assert.Equal(t, path, got)
	case <-time.After(5 * time.Second):
		t.Fatal("监控器未在超时前触发处理")
	}
}

func TestFolderMonitorIgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()

	processed := make(chan string, 1)
	handler := NewNarrationHandler(func(filePath string) {
		processed <- filePath
	})

	monitor, err := NewFolderMonitor(dir, []string{".txt"}, handler, 50*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, monitor.Start())
	defer monitor.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio.wav"), []byte("xx"), 0644))

	select {
	case got := <-processed:
		t.Fatalf("不应处理非目标扩展名的文件: %s", got)
	case <-time.After(500 * time.Millisecond):
	}
}
