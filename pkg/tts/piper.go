package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/audio"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

// PiperSynthesizer 本地piper神经TTS后端
// 通过子进程调用piper可执行文件，文本从stdin传入
type PiperSynthesizer struct {
	BinPath   string
	ModelPath string
	TempDir   string
}

var _ Synthesizer = (*PiperSynthesizer)(nil)

// NewPiperSynthesizer 创建piper后端
func NewPiperSynthesizer(binPath, modelPath, tempDir string) *PiperSynthesizer {
	if binPath == "" {
		binPath = "piper"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &PiperSynthesizer{BinPath: binPath, ModelPath: modelPath, TempDir: tempDir}
}

// Name 实现Synthesizer接口
func (p *PiperSynthesizer) Name() string {
	return "piper"
}

// CheckAvailability 检查piper可执行文件和语音模型是否存在
func (p *PiperSynthesizer) CheckAvailability() error {
	if _, err := exec.LookPath(p.BinPath); err != nil {
		return &BackendUnavailableError{Backend: p.Name(), Reason: fmt.Sprintf("找不到可执行文件 %s", p.BinPath)}
	}
	if p.ModelPath == "" {
		return &BackendUnavailableError{Backend: p.Name(), Reason: "未配置语音模型路径"}
	}
	if _, err := os.Stat(p.ModelPath); err != nil {
		return &BackendUnavailableError{Backend: p.Name(), Reason: fmt.Sprintf("语音模型不存在: %s", p.ModelPath)}
	}
	return nil
}

// Synthesize 实现Synthesizer接口
// 先尝试文件输出模式，失败后回退到stdout输出模式
func (p *PiperSynthesizer) Synthesize(ctx context.Context, text string) (*audio.Buffer, error) {
	buf, err := p.synthesizeToFile(ctx, text)
	if err == nil {
		return buf, nil
	}
	if ctx.Err() != nil {
		return nil, &SynthesisError{Backend: p.Name(), Message: "合成被取消或超时", Retryable: true, Err: ctx.Err()}
	}

	utils.Debug("piper文件模式失败，回退到stdout模式: %v", err)
	return p.synthesizeToStdout(ctx, text)
}

// synthesizeToFile 让piper把WAV写到临时文件再读回
func (p *PiperSynthesizer) synthesizeToFile(ctx context.Context, text string) (*audio.Buffer, error) {
	outPath := filepath.Join(p.TempDir, fmt.Sprintf("piper_%s.wav", uuid.New().String()[:8]))
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, p.BinPath, "-m", p.ModelPath, "-f", outPath)
	cmd.Stdin = strings.NewReader(text)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &SynthesisError{
			Backend:   p.Name(),
			Message:   fmt.Sprintf("piper执行失败: %s", strings.TrimSpace(stderr.String())),
			Retryable: true,
			Err:       err,
		}
	}

	buf, err := audio.LoadWAV(outPath)
	if err != nil {
		return nil, &SynthesisError{Backend: p.Name(), Message: "读取piper输出失败", Retryable: true, Err: err}
	}
	return p.conform(buf)
}

// synthesizeToStdout 让piper把WAV写到stdout
func (p *PiperSynthesizer) synthesizeToStdout(ctx context.Context, text string) (*audio.Buffer, error) {
	outPath := filepath.Join(p.TempDir, fmt.Sprintf("piper_%s.wav", uuid.New().String()[:8]))
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, p.BinPath, "-m", p.ModelPath, "--output_file", "-")
	cmd.Stdin = strings.NewReader(text)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, &SynthesisError{
			Backend:   p.Name(),
			Message:   fmt.Sprintf("piper执行失败: %s", strings.TrimSpace(stderr.String())),
			Retryable: true,
			Err:       err,
		}
	}

	// WAV解码需要可寻址的输入，先落临时文件
	if err := os.WriteFile(outPath, stdout.Bytes(), 0644); err != nil {
		return nil, &SynthesisError{Backend: p.Name(), Message: "写入临时文件失败", Retryable: true, Err: err}
	}

	buf, err := audio.LoadWAV(outPath)
	if err != nil {
		return nil, &SynthesisError{Backend: p.Name(), Message: "解码piper输出失败", Retryable: true, Err: err}
	}
	return p.conform(buf)
}

// conform 统一到核心采样率
func (p *PiperSynthesizer) conform(buf *audio.Buffer) (*audio.Buffer, error) {
	if buf.Len() == 0 {
		return nil, &SynthesisError{Backend: p.Name(), Message: "piper输出为空", Retryable: true}
	}
	if buf.SampleRate != audio.SampleRate {
		buf = buf.Resample(audio.SampleRate)
	}
	return buf, nil
}
