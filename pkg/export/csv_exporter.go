package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

// aggregateHeader 汇总表的列顺序
var aggregateHeader = []string{
	"slug", "pause_profile", "fade_ms",
	"backend_a_duration", "backend_a_rms",
	"backend_b_duration", "backend_b_rms",
	"backend_b_skipped",
}

// CSVExporter 把汇总结果导出为CSV文件
type CSVExporter struct {
	OutputFolder string
}

// NewCSVExporter 创建CSV导出器
func NewCSVExporter(outputFolder string) *CSVExporter {
	return &CSVExporter{OutputFolder: outputFolder}
}

// Export 写出带时间戳的CSV文件，返回文件路径
func (e *CSVExporter) Export(rows []AggregateRow) (string, error) {
	if err := os.MkdirAll(e.OutputFolder, 0755); err != nil {
		return "", fmt.Errorf("创建输出目录失败: %w", err)
	}

	outputFile := filepath.Join(e.OutputFolder,
		fmt.Sprintf("tts_compare_%s.csv", time.Now().Format("20060102_150405")))

	f, err := os.Create(outputFile)
	if err != nil {
		return "", fmt.Errorf("创建CSV文件失败: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(aggregateHeader); err != nil {
		return "", fmt.Errorf("写入CSV表头失败: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Slug,
			row.PauseProfile,
			strconv.Itoa(row.FadeMs),
			formatMetric(row.ADurationSec, false),
			formatMetric(row.ARMSDBFS, false),
			formatMetric(row.BDurationSec, row.BSkipped),
			formatMetric(row.BRMSDBFS, row.BSkipped),
			strconv.FormatBool(row.BSkipped),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("写入CSV行失败: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("刷新CSV失败: %w", err)
	}

	utils.Info("CSV汇总已导出: %s (%d 行)", outputFile, len(rows))
	return outputFile, nil
}

// formatMetric 格式化指标值，被跳过的后端输出空白
func formatMetric(v float64, skipped bool) string {
	if skipped {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
