package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

// NarrationFile 表示一个旁白文本文件
type NarrationFile struct {
	Path    string    // 文件路径
	Name    string    // 文件名
	Ext     string    // 文件扩展名
	Size    int64     // 文件大小（字节）
	ModTime time.Time // 修改时间
}

// NarrationScanner 用于扫描旁白文本文件
type NarrationScanner struct {
	Extensions []string
}

// NewNarrationScanner 创建新的旁白扫描器
func NewNarrationScanner() *NarrationScanner {
	return &NarrationScanner{
		Extensions: []string{".txt", ".md"},
	}
}

// ScanDirectory 扫描指定目录中的旁白文件（非递归）
// 跳过子目录、隐藏文件和空文件
func (s *NarrationScanner) ScanDirectory(dir string) ([]NarrationFile, error) {
	var files []NarrationFile

	logrus.Infof("开始扫描目录: %s", dir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logrus.Warnf("获取文件信息失败: %v", err)
			continue
		}

		path := filepath.Join(dir, entry.Name())
		ext := strings.ToLower(filepath.Ext(path))

		matched := false
		for _, target := range s.Extensions {
			if ext == target {
				matched = true
				break
			}
		}
		if !matched || info.Size() == 0 {
			continue
		}

		logrus.Debugf("发现旁白文件: %s (%s)", entry.Name(), utils.FormatFileSize(info.Size()))
		files = append(files, NarrationFile{
			Path:    path,
			Name:    entry.Name(),
			Ext:     ext,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	logrus.Infof("扫描完成，共找到 %d 个旁白文件", len(files))
	return files, nil
}

// FilterNewFiles 根据已处理记录过滤出新文件
func (s *NarrationScanner) FilterNewFiles(files []NarrationFile, processedPaths map[string]bool) []NarrationFile {
	var newFiles []NarrationFile

	for _, file := range files {
		if !processedPaths[file.Path] {
			newFiles = append(newFiles, file)
		}
	}

	logrus.Infof("过滤后剩余 %d 个新文件需要处理", len(newFiles))
	return newFiles
}
