package compare

import (
	"math"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/audio"
)

// BuildABMix 构建盲听对比轨道
//
// 按swapSec为周期在两条轨道之间交替取材，时间线位置保持一致，
// 偶数段取A，奇数段取B。混合轨道长度取两者中较短的一条。
func BuildABMix(a, b *audio.Buffer, swapSec float64) *audio.Buffer {
	if a == nil || b == nil || swapSec <= 0 {
		return nil
	}

	rate := a.SampleRate
	n := a.Len()
	if b.Len() < n {
		n = b.Len()
	}
	if n == 0 {
		return nil
	}

	out := &audio.Buffer{Samples: make([]float64, n), SampleRate: rate}
	swapLen := int(math.Round(swapSec * float64(rate)))
	if swapLen < 1 {
		swapLen = 1
	}

	for i := 0; i < n; i++ {
		if (i/swapLen)%2 == 0 {
			out.Samples[i] = a.Samples[i]
		} else {
			out.Samples[i] = b.Samples[i]
		}
	}
	return out
}
