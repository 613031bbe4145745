package audio

import (
	"math"
)

// SampleRate 核心处理统一采样率，所有合成输出都重采样到该值
const SampleRate = 22050

// Buffer 单声道PCM音频，样本值归一化到[-1,1]
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// NewBuffer 创建空缓冲
func NewBuffer(sampleRate int) *Buffer {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	return &Buffer{Samples: []float64{}, SampleRate: sampleRate}
}

// NewSilence 创建指定时长的静音缓冲
func NewSilence(seconds float64, sampleRate int) *Buffer {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	n := int(math.Round(seconds * float64(sampleRate)))
	if n < 0 {
		n = 0
	}
	return &Buffer{Samples: make([]float64, n), SampleRate: sampleRate}
}

// Duration 时长（秒）
func (b *Buffer) Duration() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Len 样本数
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Samples)
}

// Clone 深拷贝
func (b *Buffer) Clone() *Buffer {
	out := &Buffer{Samples: make([]float64, len(b.Samples)), SampleRate: b.SampleRate}
	copy(out.Samples, b.Samples)
	return out
}

// AppendSilence 追加静音
func (b *Buffer) AppendSilence(seconds float64) {
	n := int(math.Round(seconds * float64(b.SampleRate)))
	if n <= 0 {
		return
	}
	b.Samples = append(b.Samples, make([]float64, n)...)
}

// ApplyGain 整体应用线性增益
func (b *Buffer) ApplyGain(gain float64) {
	for i := range b.Samples {
		b.Samples[i] *= gain
	}
}

// Peak 线性峰值幅度
func (b *Buffer) Peak() float64 {
	peak := 0.0
	for _, s := range b.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS 线性均方根幅度
func (b *Buffer) RMS() float64 {
	if len(b.Samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range b.Samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(b.Samples)))
}

// dbFloor 避免log(0)的最低电平
const dbFloor = -96.0

// LinearToDB 线性幅度转dBFS，0幅度钳制到下限
func LinearToDB(amp float64) float64 {
	if amp <= 0 {
		return dbFloor
	}
	db := 20 * math.Log10(amp)
	if db < dbFloor {
		return dbFloor
	}
	return db
}

// DBToLinear dB增益转线性系数
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// Resample 线性插值重采样到目标采样率
func (b *Buffer) Resample(targetRate int) *Buffer {
	if targetRate <= 0 || targetRate == b.SampleRate || len(b.Samples) == 0 {
		out := b.Clone()
		if targetRate > 0 {
			out.SampleRate = targetRate
		}
		return out
	}

	ratio := float64(b.SampleRate) / float64(targetRate)
	n := int(math.Round(float64(len(b.Samples)) / ratio))
	if n < 1 {
		n = 1
	}

	out := &Buffer{Samples: make([]float64, n), SampleRate: targetRate}
	for i := 0; i < n; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(b.Samples)-1 {
			out.Samples[i] = b.Samples[len(b.Samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out.Samples[i] = b.Samples[idx]*(1-frac) + b.Samples[idx+1]*frac
	}
	return out
}

// clampSample 防止增益叠加后越界
func clampSample(s float64) float64 {
	if s > 1 {
		return 1
	}
	if s < -1 {
		return -1
	}
	return s
}

// Clamp 把所有样本钳制到[-1,1]
func (b *Buffer) Clamp() {
	for i := range b.Samples {
		b.Samples[i] = clampSample(b.Samples[i])
	}
}
