package models

// Metrics 一条音轨的客观测量结果，计算完成后不再修改
type Metrics struct {
	DurationSec  float64 `json:"duration_sec"`  // 音轨总时长（秒）
	RMSDBFS      float64 `json:"rms_dbfs"`      // 全轨RMS电平（dBFS）
	PeakDBFS     float64 `json:"peak_dbfs"`     // 全轨峰值电平（dBFS）
	SilenceRatio float64 `json:"silence_ratio"` // 静音占比（0-100）
}

// BackendResult 单个后端在一次对比运行中的产出
type BackendResult struct {
	Metrics         *Metrics `json:"metrics,omitempty"`          // 测量结果，后端被跳过时为空
	SegmentCount    int      `json:"segments"`                   // 参与合成的片段总数
	DroppedSegments int      `json:"dropped_segments"`           // 重试耗尽后被丢弃的片段数
	OutputFile      string   `json:"output_file,omitempty"`      // 生成的音轨文件
	MatchedFile     string   `json:"matched_file,omitempty"`     // 音量匹配后的音轨文件
	ProcessTimeSec  float64  `json:"process_time_sec,omitempty"` // 合成加拼接耗时（秒）
}

// ComparisonStats 两个后端指标的差值，仅当双方都有测量结果时填写
type ComparisonStats struct {
	DurationDiffSec float64 `json:"duration_diff_sec"` // 时长差（B-A，秒）
	DurationRatio   float64 `json:"duration_ratio"`    // 时长比（B/A）
	RMSDiffDB       float64 `json:"rms_diff_db"`       // RMS差（B-A，dB）
	FasterBackend   string  `json:"faster_backend"`    // 时长更短的后端名
}

// ReportSettings 本次运行使用的拼接参数，随报告一起持久化
type ReportSettings struct {
	PauseProfile string   `json:"pause_profile"`
	PauseMap     PauseMap `json:"pauses"`
	FadeMs       int      `json:"fade_ms"`
	CrossfadeMs  int      `json:"crossfade_ms"`
	MaxChars     int      `json:"max_chars"`
	Speed        float64  `json:"speed"`
	Normalize    bool     `json:"normalize"`
	StylePrefix  string   `json:"style_prefix,omitempty"`
}

// ComparisonReport 一次对比运行的最终产物，写盘后不再修改
// 新的运行产生新的报告文件，供后续汇总统计使用
type ComparisonReport struct {
	InputFile   string            `json:"input_file"`
	Slug        string            `json:"slug"`
	GeneratedAt string            `json:"generated_at"` // RFC3339时间戳
	Settings    ReportSettings    `json:"settings"`
	BackendA    *BackendResult    `json:"backend_a,omitempty"`
	BackendB    *BackendResult    `json:"backend_b,omitempty"`
	Comparison  *ComparisonStats  `json:"comparison,omitempty"`
	SkipReasons map[string]string `json:"skip_reasons,omitempty"` // 键为 backend_a / backend_b
	ABMixFile   string            `json:"ab_mix_file,omitempty"`
}

// MetricsA 返回后端A的测量结果，缺失时返回nil
func (r *ComparisonReport) MetricsA() *Metrics {
	if r.BackendA == nil {
		return nil
	}
	return r.BackendA.Metrics
}

// MetricsB 返回后端B的测量结果，缺失时返回nil
func (r *ComparisonReport) MetricsB() *Metrics {
	if r.BackendB == nil {
		return nil
	}
	return r.BackendB.Metrics
}
