package audio

import (
	"math"
)

// MatchVolume 对称地调整两条轨道的增益使RMS差进入容差范围
//
// 差值在maxDiffDB以内时原样返回。否则两边各向中点移动超出量的一半：
// 较响一侧衰减，较轻一侧提升。提升受峰值余量限制，任何一条轨道的
// 峰值都不会超过调整前两者中较高的峰值；余量不足的部分转移到衰减
// 一侧补齐。返回调整后的两条轨道和残余RMS差。
func MatchVolume(a, b *Buffer, maxDiffDB float64) (*Buffer, *Buffer, float64) {
	rmsA := LinearToDB(a.RMS())
	rmsB := LinearToDB(b.RMS())
	d := rmsB - rmsA

	if math.Abs(d) <= maxDiffDB {
		return a, b, math.Abs(d)
	}

	// d>0 表示b更响，a为较轻一侧
	quiet, loud := a, b
	if d < 0 {
		quiet, loud = b, a
	}

	// 需要消除的总偏差，保留maxDiffDB的容差
	excess := math.Abs(d) - maxDiffDB
	up := excess / 2
	down := excess / 2

	// 峰值上限取两条轨道调整前的较高峰值
	ceiling := math.Max(a.Peak(), b.Peak())
	headroom := LinearToDB(ceiling) - LinearToDB(quiet.Peak())
	if headroom < 0 {
		headroom = 0
	}
	if up > headroom {
		down += up - headroom
		up = headroom
	}

	quietOut := quiet.Clone()
	quietOut.ApplyGain(DBToLinear(up))
	quietOut.Clamp()

	loudOut := loud.Clone()
	loudOut.ApplyGain(DBToLinear(-down))

	residual := math.Abs(LinearToDB(loudOut.RMS()) - LinearToDB(quietOut.RMS()))

	if d > 0 {
		return quietOut, loudOut, residual
	}
	return loudOut, quietOut, residual
}
