package compare

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/audio"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/models"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/tts"
	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/utils"
)

// segmentResult 单个片段的合成结果
type segmentResult struct {
	index int
	buf   *audio.Buffer
	err   error
}

// synthesizeSegments 并发合成所有片段并按片段序号重组
//
// 工作协程数受MaxWorkers限制，每次合成有独立超时并按重试策略执行。
// 结果严格按片段序号排列，与完成顺序无关。失败的片段被丢弃并计数，
// 不会中断其余片段。
func synthesizeSegments(ctx context.Context, synth tts.Synthesizer, segs []models.Segment, cfg *models.Config, onProgress func(done int)) ([]audio.Chunk, int, error) {
	if len(segs) == 0 {
		return nil, 0, nil
	}

	results := make([]segmentResult, len(segs))
	sem := make(chan struct{}, cfg.MaxWorkers)
	var wg sync.WaitGroup
	var doneCount int
	var mu sync.Mutex

	handler := utils.NewErrorHandler(cfg.MaxRetries, cfg.RetryDelay)
	timeout := time.Duration(cfg.SynthTimeoutSec) * time.Second

	for i, seg := range segs {
		wg.Add(1)
		go func(idx int, seg models.Segment) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				results[idx] = segmentResult{index: idx, err: ctx.Err()}
				return
			}

			var buf *audio.Buffer
			operation := fmt.Sprintf("%s合成片段%d", synth.Name(), idx)
			err := handler.RetryIf(operation, func() error {
				callCtx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()

				out, synthErr := synth.Synthesize(callCtx, seg.Text)
				if synthErr != nil {
					return synthErr
				}
				buf = out
				return nil
			}, tts.IsRetryable)

			results[idx] = segmentResult{index: idx, buf: buf, err: err}

			mu.Lock()
			doneCount++
			done := doneCount
			mu.Unlock()
			if onProgress != nil {
				onProgress(done)
			}
		}(i, seg)
	}

	wg.Wait()

	if ctx.Err() != nil {
		return nil, 0, ctx.Err()
	}

	chunks := make([]audio.Chunk, 0, len(segs))
	dropped := 0
	for i, r := range results {
		if r.err != nil || r.buf == nil {
			dropped++
			utils.Warn("后端 %s 片段 %d 被丢弃: %v", synth.Name(), i, r.err)
			continue
		}
		chunks = append(chunks, audio.Chunk{Buffer: r.buf, PauseAfter: segs[i].PauseAfter})
	}

	return chunks, dropped, nil
}
