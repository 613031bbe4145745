package audio

import (
	"path/filepath"
	"testing"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeSquare 生成指定时长和幅度的方波，RMS和峰值都等于amp
func makeSquare(seconds, amp float64) *Buffer {
	buf := NewSilence(seconds, SampleRate)
	for i := range buf.Samples {
		if i%2 == 0 {
			buf.Samples[i] = amp
		} else {
			buf.Samples[i] = -amp
		}
	}
	return buf
}

func TestBufferAppendSilence(t *testing.T) {
	buf := makeSquare(0.5, 0.3)
	before := buf.Duration()

	buf.AppendSilence(1.0)
	assert.InDelta(t, before+1.0, buf.Duration(), 0.001)
}

func TestBufferResample(t *testing.T) {
	buf := makeSquare(1.0, 0.3)
	out := buf.Resample(44100)

	assert.Equal(t, 44100, out.SampleRate)
	assert.InDelta(t, 1.0, out.Duration(), 0.001)
}

func TestLinearToDBFloor(t *testing.T) {
	// 零幅度钳制到电平下限而不是负无穷
	assert.Equal(t, -96.0, LinearToDB(0))
	assert.InDelta(t, 0.0, LinearToDB(1.0), 0.0001)
	assert.InDelta(t, -6.02, LinearToDB(0.5), 0.01)
}

func TestWAVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundtrip.wav")

	src := makeSquare(0.25, 0.4)
	require.NoError(t, SaveWAV(path, src))

	loaded, err := LoadWAV(path)
	require.NoError(t, err)

	assert.Equal(t, src.SampleRate, loaded.SampleRate)
	require.Equal(t, src.Len(), loaded.Len())
	for i := 0; i < loaded.Len(); i += 1000 {
		assert.InDelta(t, src.Samples[i], loaded.Samples[i], 0.001)
	}
}

func TestLoadWAVInvalid(t *testing.T) {
	_, err := LoadWAV(filepath.Join(t.TempDir(), "missing.wav"))
	assert.Error(t, err)
}

func TestBuildTrackEmpty(t *testing.T) {
	// 没有音频块时产出空轨道而不是报错
	track := BuildTrack(nil, BuildOptions{Speed: 1.0})
	assert.Equal(t, 0, track.Len())

	_, err := Measure(track)
	var measErr *MeasurementError
	assert.ErrorAs(t, err, &measErr)
}

func TestBuildTrackPauseDurations(t *testing.T) {
	pauses := models.PauseMap{Short: 0.25, Medium: 0.5, Long: 0.8}
	chunks := []Chunk{
		{Buffer: makeSquare(0.5, 0.3), PauseAfter: models.PauseMedium},
		{Buffer: makeSquare(0.5, 0.3), PauseAfter: models.PauseNone},
	}

	track := BuildTrack(chunks, BuildOptions{PauseMap: pauses, FadeMs: 10, Speed: 1.0})
	assert.InDelta(t, 1.5, track.Duration(), 0.001)
}

func TestBuildTrackCrossfade(t *testing.T) {
	// 无停顿的相邻块按交叉渐变长度重叠
	chunks := []Chunk{
		{Buffer: makeSquare(0.5, 0.3), PauseAfter: models.PauseNone},
		{Buffer: makeSquare(0.5, 0.3), PauseAfter: models.PauseNone},
	}

	track := BuildTrack(chunks, BuildOptions{CrossfadeMs: 50, Speed: 1.0})
	assert.InDelta(t, 0.95, track.Duration(), 0.001)
}

func TestBuildTrackCrossfadeClamped(t *testing.T) {
	// 交叉渐变长于块本身时钳制到较短块的时长
	chunks := []Chunk{
		{Buffer: makeSquare(0.5, 0.3), PauseAfter: models.PauseNone},
		{Buffer: makeSquare(0.04, 0.3), PauseAfter: models.PauseNone},
	}

	track := BuildTrack(chunks, BuildOptions{CrossfadeMs: 200, Speed: 1.0})
	assert.InDelta(t, 0.5, track.Duration(), 0.001)
}

func TestBuildTrackCrossfadeClampedToPreviousChunk(t *testing.T) {
	// 钳制以相邻块为准，短块之后的渐变不得吃进更早块的尾部
	chunks := []Chunk{
		{Buffer: makeSquare(2.0, 0.3), PauseAfter: models.PauseNone},
		{Buffer: makeSquare(0.05, 0.3), PauseAfter: models.PauseNone},
		{Buffer: makeSquare(2.0, 0.3), PauseAfter: models.PauseNone},
	}

	// 两处重叠各钳制为0.05秒：2.0 + 0.05 - 0.05 + 2.0 - 0.05
	track := BuildTrack(chunks, BuildOptions{CrossfadeMs: 200, Speed: 1.0})
	assert.InDelta(t, 3.95, track.Duration(), 0.001)
}

func TestBuildTrackNormalize(t *testing.T) {
	chunks := []Chunk{
		{Buffer: makeSquare(0.5, 0.2), PauseAfter: models.PauseNone},
	}

	track := BuildTrack(chunks, BuildOptions{Normalize: true, Speed: 1.0})
	assert.InDelta(t, -1.0, LinearToDB(track.Peak()), 0.01)
}

func TestBuildTrackSpeed(t *testing.T) {
	chunks := []Chunk{
		{Buffer: makeSquare(1.0, 0.3), PauseAfter: models.PauseNone},
	}

	track := BuildTrack(chunks, BuildOptions{Speed: 1.05})
	assert.InDelta(t, 1.0/1.05, track.Duration(), 0.005)
}

func TestMeasureIdempotent(t *testing.T) {
	track := makeSquare(2.0, 0.3)
	track.AppendSilence(0.5)

	first, err := Measure(track)
	require.NoError(t, err)
	second, err := Measure(track)
	require.NoError(t, err)

	// 两次测量结果必须逐位一致
	assert.Equal(t, first, second)
}

func TestMeasureSilenceAppendMonotonic(t *testing.T) {
	track := makeSquare(2.0, 0.3)
	before, err := Measure(track)
	require.NoError(t, err)

	track.AppendSilence(1.0)
	after, err := Measure(track)
	require.NoError(t, err)

	// 追加静音严格增大时长和静音占比，峰值不变
	assert.Greater(t, after.DurationSec, before.DurationSec)
	assert.Greater(t, after.SilenceRatio, before.SilenceRatio)
	assert.Equal(t, before.PeakDBFS, after.PeakDBFS)
}

func TestMeasureAllSilent(t *testing.T) {
	track := NewSilence(2.0, SampleRate)

	metrics, err := Measure(track)
	require.NoError(t, err)

	assert.Equal(t, 100.0, metrics.SilenceRatio)
	assert.Equal(t, -96.0, metrics.RMSDBFS)
}

func TestMatchVolumeWithinTolerance(t *testing.T) {
	a := makeSquare(1.0, 0.3)
	b := makeSquare(1.0, 0.32)

	outA, outB, residual := MatchVolume(a, b, 3.0)

	// 差值在容差内时原样返回
	assert.Same(t, a, outA)
	assert.Same(t, b, outB)
	assert.LessOrEqual(t, residual, 3.0)
}

func TestMatchVolumeConverges(t *testing.T) {
	// 10秒的-18和-24 dBFS轨道，容差2dB
	a := makeSquare(10.0, DBToLinear(-18))
	b := makeSquare(10.0, DBToLinear(-24))
	ceiling := a.Peak()
	diffBefore := LinearToDB(a.RMS()) - LinearToDB(b.RMS())

	outA, outB, residual := MatchVolume(a, b, 2.0)

	diffAfter := LinearToDB(outA.RMS()) - LinearToDB(outB.RMS())
	assert.LessOrEqual(t, residual, 2.0+0.01)
	assert.LessOrEqual(t, diffAfter, diffBefore)

	// 峰值不超过调整前两者中较高的峰值
	assert.LessOrEqual(t, outA.Peak(), ceiling+0.0001)
	assert.LessOrEqual(t, outB.Peak(), ceiling+0.0001)
}

func TestMatchVolumeHeadroomLimited(t *testing.T) {
	// 较轻一侧峰值已达上限，修正只能在衰减一侧完成
	quiet := makeSquare(2.0, 0.5)
	for i := 0; i < 10; i++ {
		quiet.Samples[i*100] = 0.9
	}
	loud := makeSquare(2.0, 0.9)
	ceiling := loud.Peak()

	outA, outB, residual := MatchVolume(quiet, loud, 1.0)

	assert.LessOrEqual(t, residual, 1.0+0.01)
	assert.LessOrEqual(t, outA.Peak(), ceiling+0.0001)
	assert.LessOrEqual(t, outB.Peak(), ceiling+0.0001)
}
