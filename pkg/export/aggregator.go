package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/models"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

// AggregateRow 汇总表格的一行，对应一次对比运行
type AggregateRow struct {
	Slug         string
	GeneratedAt  string
	PauseProfile string
	FadeMs       int
	ADurationSec float64
	ARMSDBFS     float64
	BDurationSec float64
	BRMSDBFS     float64
	BSkipped     bool
}

// Aggregator 扫描工作目录下的历史比较报告并汇总成行
type Aggregator struct {
	WorkDir string
}

// NewAggregator 创建报告汇总器
func NewAggregator(workDir string) *Aggregator {
	return &Aggregator{WorkDir: workDir}
}

// Collect 收集所有可解析的报告
//
// 损坏或不完整的报告文件记录警告后跳过，不中断汇总。
// sortKey支持 slug / generated_at / duration，前缀"-"表示降序。
// limit大于0时只保留排序后的前limit行。
func (a *Aggregator) Collect(sortKey string, limit int) ([]AggregateRow, error) {
	pattern := filepath.Join(a.WorkDir, "*", "compare_report.json")
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("扫描报告文件失败: %w", err)
	}

	rows := make([]AggregateRow, 0, len(paths))
	for _, path := range paths {
		row, err := a.loadRow(path)
		if err != nil {
			utils.Warn("跳过无法解析的报告 %s: %v", path, err)
			continue
		}
		rows = append(rows, row)
	}

	sortRows(rows, sortKey)

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// loadRow 读取单个报告文件并转换为汇总行
func (a *Aggregator) loadRow(path string) (AggregateRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AggregateRow{}, err
	}

	var report models.ComparisonReport
	if err := json.Unmarshal(data, &report); err != nil {
		return AggregateRow{}, err
	}
	if report.Slug == "" {
		return AggregateRow{}, fmt.Errorf("报告缺少slug")
	}

	row := AggregateRow{
		Slug:         report.Slug,
		GeneratedAt:  report.GeneratedAt,
		PauseProfile: report.Settings.PauseProfile,
		FadeMs:       report.Settings.FadeMs,
	}

	if m := report.MetricsA(); m != nil {
		row.ADurationSec = m.DurationSec
		row.ARMSDBFS = m.RMSDBFS
	}
	if m := report.MetricsB(); m != nil {
		row.BDurationSec = m.DurationSec
		row.BRMSDBFS = m.RMSDBFS
	} else {
		row.BSkipped = true
	}

	return row, nil
}

// sortRows 按指定键排序，键前缀"-"表示降序
func sortRows(rows []AggregateRow, sortKey string) {
	desc := strings.HasPrefix(sortKey, "-")
	key := strings.TrimPrefix(sortKey, "-")

	less := func(i, j int) bool {
		switch key {
		case "slug":
			return rows[i].Slug < rows[j].Slug
		case "duration":
			return rows[i].ADurationSec < rows[j].ADurationSec
		default:
			// 默认按时间戳排序，相同时间戳再按slug保证稳定
			if rows[i].GeneratedAt != rows[j].GeneratedAt {
				return rows[i].GeneratedAt < rows[j].GeneratedAt
			}
			return rows[i].Slug < rows[j].Slug
		}
	}

	if desc {
		sort.SliceStable(rows, func(i, j int) bool { return less(j, i) })
	} else {
		sort.SliceStable(rows, less)
	}
}
