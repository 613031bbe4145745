package tts

import (
	"context"
	"errors"
	"fmt"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/audio"
)

// Synthesizer 定义了TTS后端的接口，把一个片段的文本转换为音频
type Synthesizer interface {
	// Name 后端名称，用于日志和报告
	Name() string

	// CheckAvailability 检查后端是否可用（可执行文件、模型、凭证）
	// 不可用时返回*BackendUnavailableError
	CheckAvailability() error

	// Synthesize 合成一个片段的文本，输出统一采样率的单声道音频
	Synthesize(ctx context.Context, text string) (*audio.Buffer, error)
}

// BackendUnavailableError 后端缺少可执行文件、模型或凭证
// 不致命，触发整个后端跳过
type BackendUnavailableError struct {
	Backend string
	Reason  string
}

func (e *BackendUnavailableError) Error() string {
	return fmt.Sprintf("TTS后端 %s 不可用: %s", e.Backend, e.Reason)
}

// SynthesisError 单次合成失败
// Retryable为true时表示瞬时故障，可在有限次数内重试
type SynthesisError struct {
	Backend   string
	Message   string
	Retryable bool
	Err       error
}

func (e *SynthesisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("后端 %s 合成失败: %s: %v", e.Backend, e.Message, e.Err)
	}
	return fmt.Sprintf("后端 %s 合成失败: %s", e.Backend, e.Message)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

// IsRetryable 判断错误是否为可重试的合成故障
func IsRetryable(err error) bool {
	var synthErr *SynthesisError
	if errors.As(err, &synthErr) {
		return synthErr.Retryable
	}
	return false
}
