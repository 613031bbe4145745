package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"github.com/ccp-p/tts-compare-cli/tts-processor/internal/watcher"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/compare"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/models"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/scanner"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/tts"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

var (
	inputFile    = flag.String("input", "", "旁白文本文件路径")
	inputDir     = flag.String("input-dir", "", "监听模式下的输入文件夹")
	configFile   = flag.String("config", "", "配置文件路径")
	presetName   = flag.String("preset", "", "音色预设名称")
	presetsFile  = flag.String("presets-file", "", "音色预设YAML文件路径")
	envFile      = flag.String("env", "", ".env文件路径")
	workDir      = flag.String("work", "", "工作目录")
	watchMode    = flag.Bool("watch", false, "监听文件夹中的新文件")
	pauseProfile = flag.String("pause-profile", "", "停顿方案 (broadcast, natural, tight)")
	maxChars     = flag.Int("max-chars", 0, "单片段最大字符数")
	fadeMs       = flag.Int("fade", 0, "淡入淡出时长（毫秒）")
	crossfadeMs  = flag.Int("crossfade", 0, "交叉淡化时长（毫秒）")
	speed        = flag.Float64("speed", 0, "语速倍率")
	stylePrefix  = flag.String("style-prefix", "", "云端合成的风格指令前缀")
	matchMaxDiff = flag.Float64("match-max-diff-db", 0, "音量匹配允许的RMS差值（dB）")
	normalize    = flag.Bool("normalize", false, "对整轨做峰值归一化")
	abSwap       = flag.Int("ab-swap", 0, "AB盲听混音窗口（秒）")
	noProgress   = flag.Bool("no-progress", false, "不显示进度条")
	logLevel     = flag.String("log-level", "INFO", "日志级别 (VERBOSE, INFO, WARN)")
	logFile      = flag.String("log-file", "", "日志文件路径")
)

func main() {
	flag.Parse()

	if _, err := logrus.ParseLevel(*logLevel); err != nil {
		*logLevel = "INFO"
	}
	utils.InitLogger(*logLevel, *logFile)

	printWelcome()

	config := loadConfig()
	if err := config.Validate(); err != nil {
		logrus.Fatalf("配置无效: %v", err)
	}
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		config.PrintConfig()
	}

	checkDependencies(config)

	piper := tts.NewPiperSynthesizer("piper", config.PiperVoicePath, config.TempDir)
	openai := tts.NewOpenAISynthesizer(config.OpenAIAPIKey, config.OpenAIModel, config.OpenAIVoice)
	orchestrator := compare.NewOrchestrator(config, piper, openai)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case config.WatchMode:
		runWatchMode(ctx, orchestrator, config)
	case *inputFile != "":
		if !utils.CheckFileExists(*inputFile) {
			logrus.Fatalf("旁白文本文件不存在: %s", *inputFile)
		}
		runOnce(ctx, orchestrator, *inputFile)
	case *inputDir != "":
		runBatch(ctx, orchestrator, config.InputFolder)
	default:
		color.Red("必须通过 -input 指定旁白文本文件，用 -input-dir 批量处理，或用 -watch 启用监听模式")
		flag.Usage()
		os.Exit(1)
	}
}

// runOnce 对单个文件执行一次对比
func runOnce(ctx context.Context, orchestrator *compare.Orchestrator, path string) {
	startTime := time.Now()
	report, err := orchestrator.Run(ctx, path)
	if err != nil {
		if report != nil {
			printSummary(report)
		}
		logrus.Fatalf("比较运行失败: %v", err)
	}

	printSummary(report)
	fmt.Printf("总用时: %s\n", utils.FormatTimeDuration(time.Since(startTime).Seconds()))
}

// runBatch 处理输入文件夹中已有的全部旁白文件
func runBatch(ctx context.Context, orchestrator *compare.Orchestrator, dir string) {
	files, err := scanner.NewNarrationScanner().ScanDirectory(dir)
	if err != nil {
		logrus.Fatalf("扫描输入目录失败: %v", err)
	}
	if len(files) == 0 {
		color.Yellow("在 %s 下没有找到旁白文件", dir)
		return
	}

	for i, file := range files {
		if ctx.Err() != nil {
			fmt.Println("\n收到退出信号，停止批量处理")
			return
		}

		fmt.Printf("\n[%d/%d] 处理文件: %s\n", i+1, len(files), file.Name)
		report, runErr := orchestrator.Run(ctx, file.Path)
		if runErr != nil {
			logrus.Errorf("处理 %s 失败: %v", file.Name, runErr)
			continue
		}
		printSummary(report)
	}

	fmt.Println("\n所有文件处理完成!")
}

// runWatchMode 监听输入文件夹，新文件落盘后自动触发对比
func runWatchMode(ctx context.Context, orchestrator *compare.Orchestrator, config *models.Config) {
	stopMonitor, err := watcher.StartNarrationMonitoring(config.InputFolder, func(path string) {
		report, runErr := orchestrator.Run(ctx, path)
		if runErr != nil {
			logrus.Errorf("处理 %s 失败: %v", path, runErr)
			return
		}
		printSummary(report)
	})
	if err != nil {
		logrus.Fatalf("启动监听失败: %v", err)
	}
	defer stopMonitor()

	color.Cyan("监听中: %s (Ctrl+C退出)", config.InputFolder)
	<-ctx.Done()
	fmt.Println("\n收到退出信号，停止监听")
}

// printSummary 打印彩色的运行摘要
func printSummary(report *models.ComparisonReport) {
	fmt.Println()
	color.Cyan("===== 对比结果: %s =====", report.Slug)

	printBackend("backend_a (piper)", report.BackendA, report.SkipReasons["backend_a"])
	printBackend("backend_b (openai)", report.BackendB, report.SkipReasons["backend_b"])

	if c := report.Comparison; c != nil {
		fmt.Printf("时长差: %.2fs (比值 %.3f) | RMS差: %.2f dB | 更快: %s\n",
			c.DurationDiffSec, c.DurationRatio, c.RMSDiffDB, c.FasterBackend)
	}
	if report.ABMixFile != "" {
		fmt.Printf("AB盲听轨道: %s\n", report.ABMixFile)
	}
}

func printBackend(label string, result *models.BackendResult, skipReason string) {
	if skipReason != "" {
		color.Yellow("%s: 跳过 (%s)", label, skipReason)
		return
	}
	if result == nil || result.Metrics == nil {
		color.Yellow("%s: 无测量结果", label)
		return
	}

	m := result.Metrics
	color.Green("%s: 时长 %.2fs | RMS %.1f dBFS | 峰值 %.1f dBFS | 静音 %.1f%% | 丢弃 %d/%d",
		label, m.DurationSec, m.RMSDBFS, m.PeakDBFS, m.SilenceRatio,
		result.DroppedSegments, result.SegmentCount)
}

func printWelcome() {
	fmt.Println()
	color.Cyan("================================")
	color.Cyan("   TTS对比工具 - 旁白A/B测试   ")
	color.Cyan("================================")
	fmt.Println()
}

// checkDependencies 依赖探测只做提示，缺少的后端会在运行时被跳过
func checkDependencies(config *models.Config) {
	fmt.Print("检查piper... ")
	if utils.CheckPiper() {
		color.Green("可用")
	} else {
		color.Yellow("未检测到，backend_a将被跳过")
	}

	fmt.Print("检查OpenAI凭证... ")
	if config.OpenAIAPIKey != "" {
		color.Green("已配置")
	} else {
		color.Yellow("未设置OPENAI_API_KEY，backend_b将被跳过")
	}
}

// loadConfig 按优先级合成配置：命令行 > 预设 > 配置文件 > 环境变量 > 默认值
func loadConfig() *models.Config {
	fmt.Print("加载配置... ")

	config := models.NewDefaultConfig()

	if *configFile != "" {
		if err := config.LoadFromFile(*configFile); err != nil {
			color.Yellow("警告: 加载配置文件失败: %v", err)
			logrus.Warnf("配置加载失败: %v，将使用默认配置", err)
		} else {
			color.Green("成功")
		}
	} else {
		color.Yellow("未指定配置文件，使用默认配置")
	}

	config.LoadEnv(*envFile)

	if *presetName != "" {
		presets := models.LoadPresets(*presetsFile)
		if err := config.ApplyPreset(presets, *presetName); err != nil {
			logrus.Fatalf("应用预设失败: %v", err)
		}
	}

	applyFlagOverrides(config)
	return config
}

// applyFlagOverrides 只覆盖命令行上实际出现的参数
func applyFlagOverrides(config *models.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input-dir":
			config.InputFolder = *inputDir
		case "work":
			config.WorkDir = *workDir
		case "watch":
			config.WatchMode = *watchMode
		case "pause-profile":
			config.PauseProfile = *pauseProfile
		case "max-chars":
			config.MaxChars = *maxChars
		case "fade":
			config.FadeMs = *fadeMs
		case "crossfade":
			config.CrossfadeMs = *crossfadeMs
		case "speed":
			config.Speed = *speed
		case "style-prefix":
			config.StylePrefix = *stylePrefix
		case "match-max-diff-db":
			config.MatchMaxDiffDB = *matchMaxDiff
		case "normalize":
			config.Normalize = *normalize
		case "ab-swap":
			config.ABSwapSec = *abSwap
		case "no-progress":
			config.ShowProgress = !*noProgress
		case "log-level":
			config.LogLevel = *logLevel
		case "log-file":
			config.LogFile = *logFile
		}
	})
}
