package audio

import (
	"bytes"
	"fmt"
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 解码MP3数据为单声道缓冲并重采样到targetRate
// 解码器输出固定为16位双声道小端PCM，这里做混音和重采样
func DecodeMP3(data []byte, targetRate int) (*Buffer, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建MP3解码器失败: %w", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("解码MP3数据失败: %w", err)
	}

	// 每帧4字节：左右声道各2字节
	frames := len(raw) / 4
	buf := &Buffer{
		Samples:    make([]float64, frames),
		SampleRate: decoder.SampleRate(),
	}
	for i := 0; i < frames; i++ {
		left := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		right := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		buf.Samples[i] = (float64(left) + float64(right)) / 2 / 32768
	}

	if targetRate > 0 && targetRate != buf.SampleRate {
		buf = buf.Resample(targetRate)
	}
	return buf, nil
}
