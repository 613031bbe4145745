package audio

import (
	"fmt"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/models"
)

const (
	// silenceThresholdDB 窗口RMS低于该电平视为静音
	silenceThresholdDB = -40.0
	// silenceWindowMs 静音扫描窗口长度
	silenceWindowMs = 50
)

// MeasurementError 音频数据无法测量
type MeasurementError struct {
	Reason string
}

func (e *MeasurementError) Error() string {
	return fmt.Sprintf("音频测量失败: %s", e.Reason)
}

// Measure 计算轨道的客观指标
//
// 时长为样本数除以采样率；RMS和峰值按全轨计算并转为dBFS；
// 静音占比用不重叠的50ms窗口扫描，窗口RMS低于阈值计入静音。
// 全静音轨道RMS钳制在电平下限，静音占比为100。
func Measure(track *Buffer) (*models.Metrics, error) {
	if track == nil || track.Len() == 0 {
		return nil, &MeasurementError{Reason: "轨道为空"}
	}
	if track.SampleRate <= 0 {
		return nil, &MeasurementError{Reason: "采样率无效"}
	}

	metrics := &models.Metrics{
		DurationSec: track.Duration(),
		RMSDBFS:     LinearToDB(track.RMS()),
		PeakDBFS:    LinearToDB(track.Peak()),
	}

	windowSize := silenceWindowMs * track.SampleRate / 1000
	if windowSize < 1 {
		windowSize = 1
	}

	threshold := DBToLinear(silenceThresholdDB)
	silent, total := 0, 0
	for start := 0; start < track.Len(); start += windowSize {
		end := start + windowSize
		if end > track.Len() {
			end = track.Len()
		}

		sum := 0.0
		for _, s := range track.Samples[start:end] {
			sum += s * s
		}
		rms := sum / float64(end-start)

		total++
		if rms < threshold*threshold {
			silent++
		}
	}
	metrics.SilenceRatio = float64(silent) / float64(total) * 100

	return metrics, nil
}
