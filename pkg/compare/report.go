package compare

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/models"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

// ReportFileName 每次比较运行的报告文件名
const ReportFileName = "compare_report.json"

// NewRunSlug 生成唯一的运行标识
func NewRunSlug() string {
	return "cmp_" + uuid.New().String()[:8]
}

// buildComparison 从两个后端的指标计算对比统计
// 任一侧缺失指标时返回nil
func buildComparison(a, b *models.Metrics) *models.ComparisonStats {
	if a == nil || b == nil {
		return nil
	}

	stats := &models.ComparisonStats{
		DurationDiffSec: b.DurationSec - a.DurationSec,
		RMSDiffDB:       b.RMSDBFS - a.RMSDBFS,
	}

	if a.DurationSec > 0 {
		stats.DurationRatio = b.DurationSec / a.DurationSec
	}

	switch {
	case math.Abs(b.DurationSec-a.DurationSec) < 0.001:
		stats.FasterBackend = "tie"
	case b.DurationSec < a.DurationSec:
		stats.FasterBackend = "backend_b"
	default:
		stats.FasterBackend = "backend_a"
	}

	return stats
}

// WriteReport 把比较报告原子地写入运行目录
// 先在内存中完整序列化，再经临时文件重命名落盘
func WriteReport(report *models.ComparisonReport, runDir string) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化报告失败: %w", err)
	}

	path := filepath.Join(runDir, ReportFileName)
	if err := utils.AtomicWriteFile(path, data); err != nil {
		return "", fmt.Errorf("写入报告失败: %w", err)
	}

	utils.Info("比较报告已写入: %s", path)
	return path, nil
}

// reportSettings 从配置提取报告中记录的设置快照
func reportSettings(cfg *models.Config) models.ReportSettings {
	return models.ReportSettings{
		PauseProfile: cfg.PauseProfile,
		PauseMap:     cfg.ResolvedPauseMap(),
		FadeMs:       cfg.FadeMs,
		CrossfadeMs:  cfg.CrossfadeMs,
		MaxChars:     cfg.MaxChars,
		Speed:        cfg.Speed,
		Normalize:    cfg.Normalize,
		StylePrefix:  cfg.StylePrefix,
	}
}

// nowTimestamp 报告时间戳，固定格式便于聚合排序
func nowTimestamp() string {
	return time.Now().Format("2006-01-02T15:04:05Z07:00")
}
