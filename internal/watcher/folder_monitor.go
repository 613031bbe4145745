package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

// FileEventHandler 是处理文件事件的接口
type FileEventHandler interface {
	OnFileReady(filePath string)
}

// FolderMonitor 监控文件夹中新增的旁白文本文件
// 写入事件经过防抖延迟后才触发处理，避免处理写到一半的文件
type FolderMonitor struct {
	watcher        *fsnotify.Watcher
	folderPath     string
	fileExtensions []string
	handler        FileEventHandler
	debounceTime   time.Duration
	pendingFiles   map[string]*time.Timer
	mutex          sync.Mutex
	stopChan       chan struct{}
}

// NewFolderMonitor 创建新的文件夹监控器
func NewFolderMonitor(folderPath string, extensions []string, handler FileEventHandler, debounceTime time.Duration) (*FolderMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}

	return &FolderMonitor{
		watcher:        watcher,
		folderPath:     folderPath,
		fileExtensions: extensions,
		handler:        handler,
		debounceTime:   debounceTime,
		pendingFiles:   make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start 开始监控文件夹
func (m *FolderMonitor) Start() error {
	if err := os.MkdirAll(m.folderPath, 0755); err != nil {
		return fmt.Errorf("创建文件夹失败: %w", err)
	}

	if err := m.watcher.Add(m.folderPath); err != nil {
		return fmt.Errorf("添加监控文件夹失败: %w", err)
	}

	go m.watchLoop()

	utils.Info("开始监控文件夹: %s", m.folderPath)
	return nil
}

// Stop 停止监控
func (m *FolderMonitor) Stop() {
	close(m.stopChan)
	m.watcher.Close()
	utils.Info("停止监控文件夹: %s", m.folderPath)

	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, timer := range m.pendingFiles {
		timer.Stop()
	}
}

// watchLoop 监控循环
func (m *FolderMonitor) watchLoop() {
	for {
		select {
		case <-m.stopChan:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handleFileEvent(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			utils.Error("监控文件夹时出错: %v", err)
		}
	}
}

// 处理文件事件，创建和写入都重置防抖定时器
func (m *FolderMonitor) handleFileEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	filePath := event.Name
	if !m.isTargetFile(filePath) {
		return
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if timer, exists := m.pendingFiles[filePath]; exists {
		timer.Stop()
	}

	m.pendingFiles[filePath] = time.AfterFunc(m.debounceTime, func() {
		m.processFile(filePath)
	})

	utils.Debug("检测到文件变化: %s", filePath)
}

// 判断是否为目标文件类型
func (m *FolderMonitor) isTargetFile(filePath string) bool {
	fileInfo, err := os.Stat(filePath)
	if err != nil || fileInfo.IsDir() {
		return false
	}

	ext := strings.ToLower(filepath.Ext(filePath))
	for _, targetExt := range m.fileExtensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}

// 防抖到期后交给处理器
func (m *FolderMonitor) processFile(filePath string) {
	m.mutex.Lock()
	delete(m.pendingFiles, filePath)
	m.mutex.Unlock()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return
	}

	utils.Info("准备处理文件: %s", filePath)
	if m.handler != nil {
		m.handler.OnFileReady(filePath)
	}
}

// NarrationHandler 把新出现的旁白文本文件送入比较流程
// 同一文件只处理一次，重复写入不会触发第二次比较
type NarrationHandler struct {
	process        func(filePath string)
	processedFiles map[string]bool
	mutex          sync.Mutex
}

// NewNarrationHandler 创建旁白文件处理器
func NewNarrationHandler(process func(filePath string)) *NarrationHandler {
	return &NarrationHandler{
		process:        process,
		processedFiles: make(map[string]bool),
	}
}

// OnFileReady 实现FileEventHandler接口
func (h *NarrationHandler) OnFileReady(filePath string) {
	h.mutex.Lock()
	if h.processedFiles[filePath] {
		h.mutex.Unlock()
		utils.Debug("文件已处理过，跳过: %s", filePath)
		return
	}
	h.processedFiles[filePath] = true
	h.mutex.Unlock()

	if h.process != nil {
		h.process(filePath)
	}
}

// StartNarrationMonitoring 开始监控旁白文件夹
// 返回停止函数
func StartNarrationMonitoring(sourceFolder string, process func(filePath string)) (func(), error) {
	handler := NewNarrationHandler(process)

	monitor, err := NewFolderMonitor(sourceFolder, []string{".txt", ".md"}, handler, 2*time.Second)
	if err != nil {
		return nil, err
	}

	if err := monitor.Start(); err != nil {
		return nil, err
	}

	return func() {
		monitor.Stop()
	}, nil
}
