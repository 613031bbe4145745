package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/audio"
)

// defaultOpenAIBaseURL OpenAI语音合成API地址
const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAISynthesizer 云端TTS后端，调用OpenAI的audio/speech接口
type OpenAISynthesizer struct {
	APIKey  string
	Model   string
	Voice   string
	BaseURL string
	Client  *http.Client
}

var _ Synthesizer = (*OpenAISynthesizer)(nil)

// NewOpenAISynthesizer 创建OpenAI后端
func NewOpenAISynthesizer(apiKey, model, voice string) *OpenAISynthesizer {
	if model == "" {
		model = "tts-1"
	}
	if voice == "" {
		voice = "onyx"
	}
	return &OpenAISynthesizer{
		APIKey:  apiKey,
		Model:   model,
		Voice:   voice,
		BaseURL: defaultOpenAIBaseURL,
		Client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Name 实现Synthesizer接口
func (o *OpenAISynthesizer) Name() string {
	return "openai"
}

// CheckAvailability 检查API密钥是否配置
func (o *OpenAISynthesizer) CheckAvailability() error {
	if o.APIKey == "" {
		return &BackendUnavailableError{Backend: o.Name(), Reason: "未设置OPENAI_API_KEY"}
	}
	return nil
}

// speechRequest audio/speech接口的请求体
type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize 实现Synthesizer接口
// 请求MP3格式后解码并重采样到核心采样率
func (o *OpenAISynthesizer) Synthesize(ctx context.Context, text string) (*audio.Buffer, error) {
	body, err := json.Marshal(speechRequest{
		Model:          o.Model,
		Input:          text,
		Voice:          o.Voice,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, &SynthesisError{Backend: o.Name(), Message: "构造请求失败", Retryable: false, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, &SynthesisError{Backend: o.Name(), Message: "创建请求失败", Retryable: false, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		// 网络错误视为瞬时故障
		return nil, &SynthesisError{Backend: o.Name(), Message: "请求失败", Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, &SynthesisError{
			Backend:   o.Name(),
			Message:   fmt.Sprintf("API返回 %d: %s", resp.StatusCode, string(msg)),
			Retryable: retryable,
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SynthesisError{Backend: o.Name(), Message: "读取响应失败", Retryable: true, Err: err}
	}

	buf, err := audio.DecodeMP3(data, audio.SampleRate)
	if err != nil {
		return nil, &SynthesisError{Backend: o.Name(), Message: "解码MP3失败", Retryable: false, Err: err}
	}
	if buf.Len() == 0 {
		return nil, &SynthesisError{Backend: o.Name(), Message: "API返回空音频", Retryable: true}
	}
	return buf, nil
}
