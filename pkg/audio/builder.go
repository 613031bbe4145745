package audio

import (
	"math"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/models"
)

// normalizeTargetDB 归一化后的目标峰值电平
const normalizeTargetDB = -1.0

// Chunk 一个片段的合成音频及其后续停顿类型
type Chunk struct {
	Buffer     *Buffer
	PauseAfter models.PauseType
}

// BuildOptions 轨道拼装参数
type BuildOptions struct {
	PauseMap    models.PauseMap
	FadeMs      int
	CrossfadeMs int
	Normalize   bool
	Speed       float64
}

// BuildTrack 把有序音频块拼装成一条连续轨道
//
// 每块先做线性淡入淡出；相邻块之间没有停顿时用等功率交叉渐变衔接；
// 有停顿时在块后直接追加对应时长的静音，不做交叉渐变。
// 归一化把整轨峰值拉到固定目标电平，变速在最后一步执行，
// 使停顿时长随音频一起等比伸缩。
func BuildTrack(chunks []Chunk, opts BuildOptions) *Buffer {
	track := NewBuffer(SampleRate)

	prevCrossable := false
	prevLen := 0
	for _, c := range chunks {
		if c.Buffer == nil || c.Buffer.Len() == 0 {
			continue
		}

		piece := c.Buffer
		if piece.SampleRate != track.SampleRate {
			piece = piece.Resample(track.SampleRate)
		} else {
			piece = piece.Clone()
		}
		applyFades(piece, opts.FadeMs)

		if prevCrossable && opts.CrossfadeMs > 0 {
			crossfadeAppend(track, piece, opts.CrossfadeMs, prevLen)
		} else {
			track.Samples = append(track.Samples, piece.Samples...)
		}
		prevLen = piece.Len()

		pause := opts.PauseMap.DurationFor(c.PauseAfter)
		if pause > 0 {
			track.AppendSilence(pause)
			prevCrossable = false
		} else {
			prevCrossable = true
		}
	}

	if opts.Normalize {
		normalizePeak(track, normalizeTargetDB)
	}
	if opts.Speed > 0 && opts.Speed != 1.0 {
		track = applySpeed(track, opts.Speed)
	}

	track.Clamp()
	return track
}

// applyFades 对单块应用线性淡入淡出，块太短时各用一半长度
func applyFades(b *Buffer, fadeMs int) {
	if fadeMs <= 0 || b.Len() == 0 {
		return
	}

	n := fadeMs * b.SampleRate / 1000
	if n*2 > b.Len() {
		n = b.Len() / 2
	}
	if n <= 0 {
		return
	}

	for i := 0; i < n; i++ {
		gain := float64(i) / float64(n)
		b.Samples[i] *= gain
		b.Samples[b.Len()-1-i] *= gain
	}
}

// crossfadeAppend 用等功率曲线把piece叠加到track尾部
// 重叠长度不超过相邻两块中较短一块的时长，prevLen为上一块的样本数
func crossfadeAppend(track, piece *Buffer, crossfadeMs, prevLen int) {
	overlap := crossfadeMs * track.SampleRate / 1000
	if overlap > prevLen {
		overlap = prevLen
	}
	if overlap > piece.Len() {
		overlap = piece.Len()
	}
	if overlap > track.Len() {
		overlap = track.Len()
	}
	if overlap <= 0 {
		track.Samples = append(track.Samples, piece.Samples...)
		return
	}

	base := track.Len() - overlap
	for i := 0; i < overlap; i++ {
		t := float64(i) / float64(overlap)
		// 等功率：正弦/余弦增益平方和恒为1
		gainOut := math.Cos(t * math.Pi / 2)
		gainIn := math.Sin(t * math.Pi / 2)
		track.Samples[base+i] = track.Samples[base+i]*gainOut + piece.Samples[i]*gainIn
	}
	track.Samples = append(track.Samples, piece.Samples[overlap:]...)
}

// normalizePeak 整轨增益调整使峰值达到目标电平
func normalizePeak(b *Buffer, targetDB float64) {
	peak := b.Peak()
	if peak <= 0 {
		return
	}
	b.ApplyGain(DBToLinear(targetDB) / peak)
}

// applySpeed 按倍速因子伸缩轨道时长
// 线性重采样实现，速度偏离1.0很小时音高变化可忽略
func applySpeed(b *Buffer, speed float64) *Buffer {
	if b.Len() == 0 {
		return b
	}
	n := int(math.Round(float64(b.Len()) / speed))
	if n < 1 {
		n = 1
	}

	out := &Buffer{Samples: make([]float64, n), SampleRate: b.SampleRate}
	for i := 0; i < n; i++ {
		pos := float64(i) * speed
		idx := int(pos)
		if idx >= b.Len()-1 {
			out.Samples[i] = b.Samples[b.Len()-1]
			continue
		}
		frac := pos - float64(idx)
		out.Samples[i] = b.Samples[idx]*(1-frac) + b.Samples[idx+1]*frac
	}
	return out
}
