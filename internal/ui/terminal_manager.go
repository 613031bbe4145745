package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// TerminalManager 管理终端输出，确保进度条和消息不会混乱
type TerminalManager struct {
	mu             sync.Mutex
	msgWriter      io.Writer
	progressWriter io.Writer
}

var (
	// 全局终端管理器实例
	globalTerminalManager *TerminalManager
	once                  sync.Once
)

// GetTerminalManager 获取全局终端管理器实例
func GetTerminalManager() *TerminalManager {
	once.Do(func() {
		globalTerminalManager = &TerminalManager{}
	})
	return globalTerminalManager
}

// 写入目标在调用时解析，保证重定向stdout后输出跟着走
func (tm *TerminalManager) msgOut() io.Writer {
	if tm.msgWriter != nil {
		return tm.msgWriter
	}
	return os.Stdout
}

func (tm *TerminalManager) progressOut() io.Writer {
	if tm.progressWriter != nil {
		return tm.progressWriter
	}
	return os.Stdout
}

// PrintMsg 安全地打印消息
func (tm *TerminalManager) PrintMsg(format string, args ...interface{}) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	// 清除当前行，以防止与进度条冲突
	fmt.Fprint(tm.msgOut(), "\033[2K\r")
	fmt.Fprintf(tm.msgOut(), format+"\n", args...)
}

// UpdateProgress 安全地更新进度显示
func (tm *TerminalManager) UpdateProgress(format string, args ...interface{}) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	fmt.Fprint(tm.progressOut(), "\033[2K\r")
	if len(args) > 0 {
		fmt.Fprintf(tm.progressOut(), format, args...)
	} else {
		// 没有参数时直接打印文本，避免%造成的问题
		fmt.Fprint(tm.progressOut(), format)
	}
}
