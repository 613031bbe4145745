package audio

import (
	"fmt"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// LoadWAV 读取WAV文件并转换为单声道归一化缓冲
// 多声道输入取各声道平均值，采样率保持文件原始值
func LoadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开WAV文件失败: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("无效的WAV文件: %s", path)
	}

	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("解码WAV数据失败: %w", err)
	}
	if pcm.Format == nil || pcm.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("WAV文件缺少格式信息: %s", path)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	scale := math.Pow(2, float64(decoder.BitDepth-1))
	frames := len(pcm.Data) / channels

	buf := &Buffer{
		Samples:    make([]float64, frames),
		SampleRate: pcm.Format.SampleRate,
	}
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += float64(pcm.Data[i*channels+c]) / scale
		}
		buf.Samples[i] = clampSample(sum / float64(channels))
	}
	return buf, nil
}

// SaveWAV 把缓冲写为16位单声道WAV文件
func SaveWAV(path string, buf *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建WAV文件失败: %w", err)
	}
	defer f.Close()

	encoder := wav.NewEncoder(f, buf.SampleRate, 16, 1, 1)

	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		v := int(math.Round(clampSample(s) * 32767))
		data[i] = v
	}

	pcm := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := encoder.Write(pcm); err != nil {
		return fmt.Errorf("写入WAV数据失败: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("关闭WAV编码器失败: %w", err)
	}
	return nil
}
