package compare

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ccp-p/tts-compare-cli/tts-processor/internal/ui"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/audio"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/models"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/textseg"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/tts"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

// RunState 一次对比运行的阶段
type RunState string

const (
	StateInit         RunState = "INIT"
	StateSegmented    RunState = "SEGMENTED"
	StateSynthesizing RunState = "SYNTHESIZING"
	StateMeasured     RunState = "MEASURED"
	StateReported     RunState = "REPORTED"
	StateSkipped      RunState = "SKIPPED"
)

// ErrNoSegments 两个后端都没有任何片段合成成功
var ErrNoSegments = errors.New("没有任何片段合成成功")

// Orchestrator 驱动一次完整的对比运行
// 分段结果由两个后端共享，两条后端流水线并发执行且互不影响
type Orchestrator struct {
	cfg       *models.Config
	backendA  tts.Synthesizer
	backendB  tts.Synthesizer
	progress  *ui.ProgressManager
	state     RunState
	stateLock sync.Mutex
}

// NewOrchestrator 创建比较编排器
func NewOrchestrator(cfg *models.Config, backendA, backendB tts.Synthesizer) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		backendA: backendA,
		backendB: backendB,
		progress: ui.NewProgressManager(cfg.ShowProgress),
		state:    StateInit,
	}
}

// State 当前运行阶段
func (o *Orchestrator) State() RunState {
	o.stateLock.Lock()
	defer o.stateLock.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s RunState) {
	o.stateLock.Lock()
	o.state = s
	o.stateLock.Unlock()
	utils.Debug("运行阶段: %s", s)
}

// backendOutcome 单个后端流水线的完整产出
type backendOutcome struct {
	result     *models.BackendResult
	track      *audio.Buffer
	skipReason string
}

// Run 对一个旁白文本文件执行完整的对比流程
//
// 返回写盘后的报告。单个片段失败被吸收计数，单个后端不可用
// 会降级为跳过，只有配置错误和两侧全部失败才让整个运行失败。
func (o *Orchestrator) Run(ctx context.Context, inputFile string) (*models.ComparisonReport, error) {
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(inputFile)
	if err != nil {
		return nil, fmt.Errorf("读取旁白文件失败: %w", err)
	}

	segs, err := textseg.Segment(string(data), o.cfg.MaxChars)
	if err != nil {
		return nil, err
	}
	o.setState(StateSegmented)
	utils.Info("分段完成: %d 个片段", len(segs))

	slug := NewRunSlug()
	runDir := filepath.Join(o.cfg.WorkDir, slug)
	if err := utils.EnsureDirExists(runDir); err != nil {
		return nil, fmt.Errorf("创建运行目录失败: %w", err)
	}

	report := &models.ComparisonReport{
		InputFile:   inputFile,
		Slug:        slug,
		GeneratedAt: nowTimestamp(),
		Settings:    reportSettings(o.cfg),
		SkipReasons: make(map[string]string),
	}

	// 两个后端的流水线互相独立，并发执行
	o.setState(StateSynthesizing)
	var wg sync.WaitGroup
	outcomes := make([]backendOutcome, 2)
	backends := []tts.Synthesizer{o.backendA, o.backendB}
	keys := []string{"backend_a", "backend_b"}

	for i := range backends {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			outcomes[idx] = o.runBackend(ctx, backends[idx], keys[idx], segs, runDir)
		}(i)
	}
	wg.Wait()

	if ctx.Err() != nil {
		// 取消时不留下部分报告
		return nil, ctx.Err()
	}

	for i, key := range keys {
		if outcomes[i].skipReason != "" {
			report.SkipReasons[key] = outcomes[i].skipReason
		}
	}
	report.BackendA = outcomes[0].result
	report.BackendB = outcomes[1].result

	trackA, trackB := outcomes[0].track, outcomes[1].track

	// 音量匹配产出额外的成对文件，原始指标保持不变
	// 盲听混音基于匹配后的音轨，未开启匹配时退回原始音轨
	mixA, mixB := trackA, trackB
	if o.cfg.MatchVolume && trackA != nil && trackB != nil {
		mixA, mixB = o.writeMatchedPair(trackA, trackB, runDir, report)
	}

	if o.cfg.ABSwapSec > 0 && mixA != nil && mixB != nil {
		if mix := BuildABMix(mixA, mixB, float64(o.cfg.ABSwapSec)); mix != nil {
			mixPath := filepath.Join(runDir, "ab_mix.wav")
			if err := audio.SaveWAV(mixPath, mix); err != nil {
				utils.Warn("写入AB盲听轨道失败: %v", err)
			} else {
				report.ABMixFile = mixPath
			}
		}
	}

	o.setState(StateMeasured)
	report.Comparison = buildComparison(report.MetricsA(), report.MetricsB())

	if _, err := WriteReport(report, runDir); err != nil {
		return nil, err
	}

	if report.MetricsA() == nil && report.MetricsB() == nil {
		o.setState(StateSkipped)
		return report, ErrNoSegments
	}

	o.setState(StateReported)
	return report, nil
}

// runBackend 执行单个后端的完整流水线：合成、拼接、落盘、测量
func (o *Orchestrator) runBackend(ctx context.Context, synth tts.Synthesizer, key string, segs []models.Segment, runDir string) backendOutcome {
	if err := synth.CheckAvailability(); err != nil {
		var unavailErr *tts.BackendUnavailableError
		if errors.As(err, &unavailErr) {
			utils.Warn("后端 %s 不可用，跳过: %s", synth.Name(), unavailErr.Reason)
			return backendOutcome{skipReason: unavailErr.Reason}
		}
		return backendOutcome{skipReason: err.Error()}
	}

	start := time.Now()
	result := &models.BackendResult{SegmentCount: len(segs)}

	barID := "synth_" + key
	o.progress.CreateProgressBar(barID, len(segs), fmt.Sprintf("合成[%s]", synth.Name()), "")
	defer o.progress.RemoveProgressBar(barID)

	items := o.segmentsFor(synth, segs)
	chunks, dropped, err := synthesizeSegments(ctx, synth, items, o.cfg, func(done int) {
		o.progress.UpdateProgressBar(barID, done, "")
	})
	if err != nil {
		return backendOutcome{skipReason: fmt.Sprintf("合成中断: %v", err)}
	}
	result.DroppedSegments = dropped

	if len(chunks) == 0 {
		utils.Warn("后端 %s 所有片段合成失败", synth.Name())
		return backendOutcome{result: result, skipReason: "所有片段合成失败"}
	}

	track := audio.BuildTrack(chunks, audio.BuildOptions{
		PauseMap:    o.cfg.ResolvedPauseMap(),
		FadeMs:      o.cfg.FadeMs,
		CrossfadeMs: o.cfg.CrossfadeMs,
		Normalize:   o.cfg.Normalize,
		Speed:       o.cfg.Speed,
	})

	outPath := filepath.Join(runDir, key+".wav")
	if err := audio.SaveWAV(outPath, track); err != nil {
		utils.Error("写入后端 %s 音轨失败: %v", synth.Name(), err)
		return backendOutcome{result: result, skipReason: fmt.Sprintf("写入音轨失败: %v", err)}
	}
	result.OutputFile = outPath
	result.ProcessTimeSec = time.Since(start).Seconds()

	metrics, err := audio.Measure(track)
	if err != nil {
		// 测量失败只影响该后端的指标
		utils.Error("后端 %s 测量失败: %v", synth.Name(), err)
		return backendOutcome{result: result, track: track, skipReason: err.Error()}
	}
	result.Metrics = metrics

	utils.Info("后端 %s 完成: 时长 %.2fs, RMS %.1f dBFS, 丢弃 %d 片段",
		synth.Name(), metrics.DurationSec, metrics.RMSDBFS, dropped)
	return backendOutcome{result: result, track: track}
}

// segmentsFor 按后端决定实际送去合成的文本
// 风格前缀只对支持语气指令的云端后端生效
func (o *Orchestrator) segmentsFor(synth tts.Synthesizer, segs []models.Segment) []models.Segment {
	prefix := strings.TrimSpace(o.cfg.StylePrefix)
	if prefix == "" || synth.Name() != "openai" {
		return segs
	}

	out := make([]models.Segment, len(segs))
	copy(out, segs)
	for i := range out {
		out[i].Text = prefix + " " + out[i].Text
	}
	return out
}

// writeMatchedPair 写出音量匹配后的成对音轨，返回匹配后的两条缓冲
func (o *Orchestrator) writeMatchedPair(trackA, trackB *audio.Buffer, runDir string, report *models.ComparisonReport) (*audio.Buffer, *audio.Buffer) {
	matchedA, matchedB, residual := audio.MatchVolume(trackA, trackB, o.cfg.MatchMaxDiffDB)
	utils.Info("音量匹配完成，残余RMS差 %.2f dB", residual)

	pathA := filepath.Join(runDir, "backend_a_matched.wav")
	pathB := filepath.Join(runDir, "backend_b_matched.wav")

	if err := audio.SaveWAV(pathA, matchedA); err != nil {
		utils.Warn("写入匹配音轨失败: %v", err)
		return matchedA, matchedB
	}
	if err := audio.SaveWAV(pathB, matchedB); err != nil {
		utils.Warn("写入匹配音轨失败: %v", err)
		return matchedA, matchedB
	}

	if report.BackendA != nil {
		report.BackendA.MatchedFile = pathA
	}
	if report.BackendB != nil {
		report.BackendB.MatchedFile = pathB
	}
	return matchedA, matchedB
}
