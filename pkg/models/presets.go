package models

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// 停顿方案名称常量
const (
	ProfileBroadcast = "broadcast"
	ProfileNatural   = "natural"
	ProfileTight     = "tight"
)

// PauseProfiles 预设停顿方案（秒）
var PauseProfiles = map[string]PauseMap{
	ProfileBroadcast: {Short: 0.30, Medium: 0.60, Long: 1.00},
	ProfileNatural:   {Short: 0.25, Medium: 0.50, Long: 0.80},
	ProfileTight:     {Short: 0.15, Medium: 0.35, Long: 0.60},
}

// VoicePreset 一组打包好的音色和拼接参数
type VoicePreset struct {
	Voice        string  `yaml:"voice"`
	Model        string  `yaml:"model"`
	PauseProfile string  `yaml:"pause_profile"`
	Speed        float64 `yaml:"speed"`
	FadeMs       int     `yaml:"fade_ms"`
	CrossfadeMs  int     `yaml:"crossfade_ms"`
	Description  string  `yaml:"description"`
}

// 内置音色预设，外部presets.yaml中的同名项会覆盖它们
var builtinPresets = map[string]VoicePreset{
	"onyx_natural": {
		Voice:        "onyx",
		Model:        "tts-1",
		PauseProfile: ProfileNatural,
		Speed:        1.0,
		FadeMs:       20,
		CrossfadeMs:  50,
		Description:  "onyx音色自然停顿（默认）",
	},
	"onyx_fast": {
		Voice:        "onyx",
		Model:        "tts-1",
		PauseProfile: ProfileTight,
		Speed:        1.02,
		Description:  "快节奏旁白，适合简讯",
	},
	"onyx_broadcast": {
		Voice:        "onyx",
		Model:        "tts-1-hd",
		PauseProfile: ProfileBroadcast,
		Speed:        0.98,
		Description:  "播音腔，停顿更充分",
	},
	"alloy_warm_low": {
		Voice:        "alloy",
		Model:        "tts-1-hd",
		PauseProfile: ProfileNatural,
		Speed:        0.99,
		Description:  "alloy音色，更柔和",
	},
}

// LoadPresets 加载音色预设，合并内置预设与presets.yaml
// path为空或文件不存在时仅返回内置预设
func LoadPresets(path string) map[string]VoicePreset {
	presets := make(map[string]VoicePreset, len(builtinPresets))
	for name, p := range builtinPresets {
		presets[name] = p
	}

	if path == "" {
		return presets
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.Warnf("读取预设文件失败: %v", err)
		}
		return presets
	}

	loaded := make(map[string]VoicePreset)
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		logrus.Warnf("解析预设文件失败: %v", err)
		return presets
	}

	// 外部预设覆盖内置同名项
	for name, p := range loaded {
		presets[name] = p
	}

	return presets
}

// ApplyPreset 把指定预设应用到配置上，未知预设名返回错误
// 预设只填写自己声明过的字段，零值字段不覆盖现有配置
func (c *Config) ApplyPreset(presets map[string]VoicePreset, name string) error {
	p, ok := presets[name]
	if !ok {
		return &ConfigValidationError{"Preset", fmt.Sprintf("未知的音色预设: %s", name)}
	}

	if p.Voice != "" {
		c.OpenAIVoice = p.Voice
	}
	if p.Model != "" {
		c.OpenAIModel = p.Model
	}
	if p.PauseProfile != "" {
		c.PauseProfile = p.PauseProfile
	}
	if p.Speed > 0 {
		c.Speed = p.Speed
	}
	if p.FadeMs > 0 {
		c.FadeMs = p.FadeMs
	}
	if p.CrossfadeMs > 0 {
		c.CrossfadeMs = p.CrossfadeMs
	}

	logrus.Infof("使用音色预设: %s - %s", name, p.Description)
	return nil
}
