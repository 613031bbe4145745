package models

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config 表示应用程序的配置
type Config struct {
	InputFolder  string `json:"input_folder"`  // 监听模式下的输入文本文件夹
	WorkDir      string `json:"work_dir"`      // 工作目录（报告按slug分目录存放）
	OutputFolder string `json:"output_folder"` // 音轨输出文件夹
	TempDir      string `json:"temp_dir"`      // 临时目录

	MaxRetries      int     `json:"max_retries"`       // 单片段合成最大尝试次数
	RetryDelay      float64 `json:"retry_delay"`       // 重试延迟（秒）
	MaxWorkers      int     `json:"max_workers"`       // 并发合成工作协程数
	SynthTimeoutSec int     `json:"synth_timeout_sec"` // 单次合成调用超时（秒）

	MaxChars     int     `json:"max_chars"`     // 单片段最大字符数
	PauseProfile string  `json:"pause_profile"` // 停顿方案 (broadcast, natural, tight)
	PauseShort   float64 `json:"pause_short"`   // 短停顿（秒），0表示使用方案默认值
	PauseMedium  float64 `json:"pause_medium"`  // 中停顿（秒），0表示使用方案默认值
	PauseLong    float64 `json:"pause_long"`    // 长停顿（秒），0表示使用方案默认值
	FadeMs       int     `json:"fade_ms"`       // 淡入淡出时长（毫秒）
	CrossfadeMs  int     `json:"crossfade_ms"`  // 交叉淡化时长（毫秒）
	Normalize    bool    `json:"normalize"`     // 是否对整轨做峰值归一化
	Speed        float64 `json:"speed"`         // 语速倍率，1.0为原速
	StylePrefix  string  `json:"style_prefix"`  // 风格指令前缀，拼接在正文之前

	ABSwapSec      int     `json:"ab_swap_sec"`       // AB盲听混音窗口（秒），0表示不生成
	MatchVolume    bool    `json:"match_volume"`      // 是否生成音量匹配版本
	MatchMaxDiffDB float64 `json:"match_max_diff_db"` // 允许的RMS差值（dB）

	OpenAIModel  string `json:"openai_model"` // 云端TTS模型
	OpenAIVoice  string `json:"openai_voice"` // 云端TTS音色
	OpenAIAPIKey string `json:"-"`            // API密钥，仅从环境变量读取，不落盘

	PiperVoicePath string `json:"piper_voice"` // Piper语音模型路径（.onnx）

	ShowProgress bool   `json:"show_progress"` // 显示进度条
	WatchMode    bool   `json:"watch_mode"`    // 是否启用监听模式
	LogLevel     string `json:"log_level"`     // 日志级别
	LogFile      string `json:"log_file"`      // 日志文件
}

// ConfigValidationError 表示配置验证错误
type ConfigValidationError struct {
	Field   string
	Message string
}

func (e *ConfigValidationError) Error() string {
	return fmt.Sprintf("配置验证错误: %s - %s", e.Field, e.Message)
}

// NewDefaultConfig 创建默认配置
func NewDefaultConfig() *Config {
	return &Config{
		InputFolder:     "./input",
		WorkDir:         "./work",
		OutputFolder:    "./output",
		TempDir:         "",
		MaxRetries:      3,
		RetryDelay:      1.0,
		MaxWorkers:      4,
		SynthTimeoutSec: 120,
		MaxChars:        800,
		PauseProfile:    ProfileNatural,
		FadeMs:          20,
		CrossfadeMs:     50,
		Normalize:       false,
		Speed:           1.0,
		ABSwapSec:       0,
		MatchVolume:     true,
		MatchMaxDiffDB:  1.5,
		OpenAIModel:     "tts-1",
		OpenAIVoice:     "onyx",
		ShowProgress:    true,
		WatchMode:       false,
		LogLevel:        "INFO",
		LogFile:         "",
	}
}

// Validate 验证配置是否有效
func (c *Config) Validate() error {
	if err := ensureDirExists(c.WorkDir); err != nil {
		return &ConfigValidationError{"WorkDir", err.Error()}
	}

	if err := ensureDirExists(c.OutputFolder); err != nil {
		return &ConfigValidationError{"OutputFolder", err.Error()}
	}

	// 验证数值范围
	if c.MaxRetries < 1 || c.MaxRetries > 10 {
		return &ConfigValidationError{"MaxRetries", "必须在1-10之间"}
	}

	if c.MaxWorkers < 1 || c.MaxWorkers > 16 {
		return &ConfigValidationError{"MaxWorkers", "必须在1-16之间"}
	}

	if c.RetryDelay < 0.1 || c.RetryDelay > 10.0 {
		return &ConfigValidationError{"RetryDelay", "必须在0.1-10.0秒之间"}
	}

	if c.SynthTimeoutSec < 1 || c.SynthTimeoutSec > 600 {
		return &ConfigValidationError{"SynthTimeoutSec", "必须在1-600秒之间"}
	}

	if c.MaxChars < 50 || c.MaxChars > 5000 {
		return &ConfigValidationError{"MaxChars", "必须在50-5000之间"}
	}

	if _, ok := PauseProfiles[c.PauseProfile]; !ok {
		return &ConfigValidationError{"PauseProfile", fmt.Sprintf("未知的停顿方案: %s", c.PauseProfile)}
	}

	// 停顿时长沿用原始校验范围 0.0~3.0 秒
	for field, val := range map[string]float64{
		"PauseShort":  c.PauseShort,
		"PauseMedium": c.PauseMedium,
		"PauseLong":   c.PauseLong,
	} {
		if val < 0 || val > 3.0 {
			return &ConfigValidationError{field, "必须在0.0-3.0秒之间"}
		}
	}

	if c.FadeMs < 0 || c.FadeMs > 1000 {
		return &ConfigValidationError{"FadeMs", "必须在0-1000毫秒之间"}
	}

	if c.CrossfadeMs < 0 || c.CrossfadeMs > 2000 {
		return &ConfigValidationError{"CrossfadeMs", "必须在0-2000毫秒之间"}
	}

	if c.Speed < 0.5 || c.Speed > 2.0 {
		return &ConfigValidationError{"Speed", "必须在0.5-2.0之间"}
	}

	if c.ABSwapSec < 0 || c.ABSwapSec > 60 {
		return &ConfigValidationError{"ABSwapSec", "必须在0-60秒之间"}
	}

	if c.MatchMaxDiffDB < 0 || c.MatchMaxDiffDB > 12 {
		return &ConfigValidationError{"MatchMaxDiffDB", "必须在0-12dB之间"}
	}

	return nil
}

// ResolvedPauseMap 返回实际生效的停顿时长映射
// 单项覆盖值（>0）优先于停顿方案的默认值
func (c *Config) ResolvedPauseMap() PauseMap {
	m := PauseProfiles[c.PauseProfile]
	if c.PauseShort > 0 {
		m.Short = c.PauseShort
	}
	if c.PauseMedium > 0 {
		m.Medium = c.PauseMedium
	}
	if c.PauseLong > 0 {
		m.Long = c.PauseLong
	}
	return m
}

// LoadFromFile 从文件加载配置
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("读取配置文件失败: %v", err)
		return err
	}

	err = json.Unmarshal(data, c)
	if err != nil {
		logrus.Errorf("解析配置文件失败: %v", err)
		return err
	}

	if err := c.Validate(); err != nil {
		logrus.Errorf("配置验证失败: %v", err)
		return err
	}

	return nil
}

// SaveToFile 保存配置到文件
func (c *Config) SaveToFile(path string) error {
	// 确保目录存在
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logrus.Errorf("创建目录失败: %v", err)
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		logrus.Errorf("序列化配置失败: %v", err)
		return err
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		logrus.Errorf("写入配置文件失败: %v", err)
		return err
	}

	return nil
}

// LoadEnv 加载.env文件并读取环境变量中的密钥和模型路径
// .env不存在不算错误，环境变量可能已由外部设置
func (c *Config) LoadEnv(envPath string) {
	var err error
	if envPath != "" {
		err = godotenv.Load(envPath)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		logrus.Debugf("未加载.env文件: %v", err)
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.OpenAIAPIKey = key
	}
	if voice := os.Getenv("PIPER_VOICE"); voice != "" && c.PiperVoicePath == "" {
		c.PiperVoicePath = voice
	}
}

// Update 批量更新配置
func (c *Config) Update(updates map[string]interface{}) error {
	// 保存当前配置用于回滚
	tempConfig := *c

	// 将更新序列化为JSON再反序列化到结构体中
	// 这种方式处理map到struct的转换较为方便
	updateBytes, err := json.Marshal(updates)
	if err != nil {
		logrus.Errorf("序列化更新数据失败: %v", err)
		return err
	}

	err = json.Unmarshal(updateBytes, c)
	if err != nil {
		*c = tempConfig
		logrus.Errorf("应用配置更新失败: %v", err)
		return err
	}

	if err := c.Validate(); err != nil {
		*c = tempConfig
		logrus.Errorf("配置验证失败: %v", err)
		return err
	}

	return nil
}

// PrintConfig 打印当前配置
func (c *Config) PrintConfig() {
	logrus.Info("\n当前配置:")
	bytes, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		logrus.Errorf("序列化配置失败: %v", err)
		return
	}
	logrus.Info(string(bytes))
}

// 确保目录存在，如果不存在则创建
func ensureDirExists(path string) error {
	if path == "" {
		return nil // 空路径视为可选
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, 0755)
	}

	return nil
}
