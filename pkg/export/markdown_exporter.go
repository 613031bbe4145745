package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

// MarkdownExporter 把汇总结果导出为Markdown表格
type MarkdownExporter struct {
	OutputFolder string
}

// NewMarkdownExporter 创建Markdown导出器
func NewMarkdownExporter(outputFolder string) *MarkdownExporter {
	return &MarkdownExporter{OutputFolder: outputFolder}
}

// GenerateContent 生成Markdown表格内容
func (e *MarkdownExporter) GenerateContent(rows []AggregateRow) string {
	var b strings.Builder

	b.WriteString("# TTS对比汇总\n\n")
	b.WriteString(fmt.Sprintf("生成时间: %s | 共 %d 次运行\n\n", time.Now().Format("2006-01-02 15:04:05"), len(rows)))
	b.WriteString("| " + strings.Join(aggregateHeader, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(aggregateHeader)) + "\n")

	for _, row := range rows {
		cells := []string{
			row.Slug,
			row.PauseProfile,
			fmt.Sprintf("%d", row.FadeMs),
			formatMetric(row.ADurationSec, false),
			formatMetric(row.ARMSDBFS, false),
			formatMetric(row.BDurationSec, row.BSkipped),
			formatMetric(row.BRMSDBFS, row.BSkipped),
			fmt.Sprintf("%v", row.BSkipped),
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return b.String()
}

// Export 写出带时间戳的Markdown文件，返回文件路径
func (e *MarkdownExporter) Export(rows []AggregateRow) (string, error) {
	if err := os.MkdirAll(e.OutputFolder, 0755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}

	outputFile := filepath.Join(e.OutputFolder,
		fmt.Sprintf("tts_compare_%s.md", time.Now().Format("20060102_150405")))

	if err := os.WriteFile(outputFile, []byte(e.GenerateContent(rows)), 0644); err != nil {
		return "", fmt.Errorf("写入Markdown文件失败: %w", err)
	}

	utils.Info("Markdown汇总已导出: %s (%d 行)", outputFile, len(rows))
	return outputFile, nil
}
