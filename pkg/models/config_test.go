package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	// 验证默认值是否正确设置
	assert.Equal(t, "./work", config.WorkDir)
	assert.Equal(t, "./output", config.OutputFolder)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 4, config.MaxWorkers)
	assert.Equal(t, 800, config.MaxChars)
	assert.Equal(t, ProfileNatural, config.PauseProfile)
	assert.Equal(t, 20, config.FadeMs)
	assert.Equal(t, 50, config.CrossfadeMs)
	assert.Equal(t, 1.0, config.Speed)
	assert.Equal(t, 1.5, config.MatchMaxDiffDB)
	assert.True(t, config.MatchVolume)
	assert.False(t, config.WatchMode)
}

func TestConfigValidate(t *testing.T) {
	tempDir := t.TempDir()

	// 测试有效配置
	config := NewDefaultConfig()
	config.WorkDir = filepath.Join(tempDir, "work")
	config.OutputFolder = filepath.Join(tempDir, "output")
	err := config.Validate()
	assert.NoError(t, err)

	// 测试无效的MaxRetries
	config.MaxRetries = 0
	err = config.Validate()
	assert.Error(t, err)
	configErr, ok := err.(*ConfigValidationError)
	assert.True(t, ok)
	assert.Equal(t, "MaxRetries", configErr.Field)

	// 恢复有效值并测试另一个字段
	config.MaxRetries = 3
	config.MaxChars = 10 // 小于最小值50
	err = config.Validate()
	assert.Error(t, err)
	configErr, ok = err.(*ConfigValidationError)
	assert.True(t, ok)
	assert.Equal(t, "MaxChars", configErr.Field)

	// 未知停顿方案
	config.MaxChars = 800
	config.PauseProfile = "whisper"
	err = config.Validate()
	assert.Error(t, err)
	configErr, ok = err.(*ConfigValidationError)
	assert.True(t, ok)
	assert.Equal(t, "PauseProfile", configErr.Field)

	// 停顿时长超出范围
	config.PauseProfile = ProfileNatural
	config.PauseLong = 5.0
	err = config.Validate()
	assert.Error(t, err)
	configErr, ok = err.(*ConfigValidationError)
	assert.True(t, ok)
	assert.Equal(t, "PauseLong", configErr.Field)
}

func TestResolvedPauseMap(t *testing.T) {
	config := NewDefaultConfig()

	// 默认使用natural方案
	m := config.ResolvedPauseMap()
	assert.Equal(t, 0.25, m.Short)
	assert.Equal(t, 0.50, m.Medium)
	assert.Equal(t, 0.80, m.Long)

	// 单项覆盖优先于方案默认值
	config.PauseMedium = 0.42
	m = config.ResolvedPauseMap()
	assert.Equal(t, 0.25, m.Short)
	assert.Equal(t, 0.42, m.Medium)
	assert.Equal(t, 0.80, m.Long)

	// 切换方案后未覆盖项随方案变化
	config.PauseProfile = ProfileTight
	m = config.ResolvedPauseMap()
	assert.Equal(t, 0.15, m.Short)
	assert.Equal(t, 0.42, m.Medium)
	assert.Equal(t, 0.60, m.Long)
}

func TestConfigSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	tempFile := filepath.Join(tempDir, "test_config.json")

	// 创建并保存配置
	originalConfig := NewDefaultConfig()
	originalConfig.WorkDir = filepath.Join(tempDir, "work")
	originalConfig.OutputFolder = filepath.Join(tempDir, "output")
	originalConfig.MaxRetries = 5
	originalConfig.PauseProfile = ProfileBroadcast
	originalConfig.Normalize = true

	err := originalConfig.SaveToFile(tempFile)
	assert.NoError(t, err)

	// 从文件加载配置
	loadedConfig := NewDefaultConfig()
	err = loadedConfig.LoadFromFile(tempFile)
	assert.NoError(t, err)

	// 验证加载的配置是否与原始配置匹配
	assert.Equal(t, originalConfig.WorkDir, loadedConfig.WorkDir)
	assert.Equal(t, originalConfig.MaxRetries, loadedConfig.MaxRetries)
	assert.Equal(t, originalConfig.PauseProfile, loadedConfig.PauseProfile)
	assert.Equal(t, originalConfig.Normalize, loadedConfig.Normalize)
}

func TestConfigUpdate(t *testing.T) {
	tempDir := t.TempDir()
	config := NewDefaultConfig()
	config.WorkDir = filepath.Join(tempDir, "work")
	config.OutputFolder = filepath.Join(tempDir, "output")

	// 有效更新
	updates := map[string]interface{}{
		"max_retries":   5,
		"pause_profile": ProfileTight,
		"normalize":     true,
	}

	err := config.Update(updates)
	assert.NoError(t, err)
	assert.Equal(t, 5, config.MaxRetries)
	assert.Equal(t, ProfileTight, config.PauseProfile)
	assert.True(t, config.Normalize)

	// 无效更新应回滚
	invalidUpdates := map[string]interface{}{
		"max_retries": 20, // 超出最大值10
	}

	err = config.Update(invalidUpdates)
	assert.Error(t, err)
	assert.Equal(t, 5, config.MaxRetries) // 应该保持原值
}

func TestLoadEnv(t *testing.T) {
	tempDir := t.TempDir()
	envFile := filepath.Join(tempDir, ".env")
	err := os.WriteFile(envFile, []byte("OPENAI_API_KEY=sk-test-123\nPIPER_VOICE=/models/amy.onnx\n"), 0644)
	assert.NoError(t, err)

	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PIPER_VOICE", "")

	config := NewDefaultConfig()
	config.LoadEnv(envFile)

	assert.Equal(t, "sk-test-123", config.OpenAIAPIKey)
	assert.Equal(t, "/models/amy.onnx", config.PiperVoicePath)

	// 配置中已有的模型路径不被环境变量覆盖
	config2 := NewDefaultConfig()
	config2.PiperVoicePath = "/custom/voice.onnx"
	config2.LoadEnv(envFile)
	assert.Equal(t, "/custom/voice.onnx", config2.PiperVoicePath)
}

func TestLoadPresets(t *testing.T) {
	// 无文件时返回内置预设
	presets := LoadPresets("")
	assert.Contains(t, presets, "onyx_natural")
	assert.Contains(t, presets, "onyx_fast")

	// 外部文件覆盖同名内置预设并新增条目
	tempDir := t.TempDir()
	presetFile := filepath.Join(tempDir, "presets.yaml")
	content := `
onyx_natural:
  voice: onyx
  model: tts-1-hd
  pause_profile: broadcast
  description: 覆盖内置
nova_soft:
  voice: nova
  model: tts-1
  pause_profile: natural
  speed: 0.97
`
	err := os.WriteFile(presetFile, []byte(content), 0644)
	assert.NoError(t, err)

	presets = LoadPresets(presetFile)
	assert.Equal(t, "tts-1-hd", presets["onyx_natural"].Model)
	assert.Contains(t, presets, "nova_soft")
	assert.Equal(t, 0.97, presets["nova_soft"].Speed)
}

func TestApplyPreset(t *testing.T) {
	config := NewDefaultConfig()
	presets := LoadPresets("")

	err := config.ApplyPreset(presets, "onyx_broadcast")
	assert.NoError(t, err)
	assert.Equal(t, "onyx", config.OpenAIVoice)
	assert.Equal(t, "tts-1-hd", config.OpenAIModel)
	assert.Equal(t, ProfileBroadcast, config.PauseProfile)
	assert.Equal(t, 0.98, config.Speed)

	// 未知预设名
	err = config.ApplyPreset(presets, "nonexistent")
	assert.Error(t, err)
}
