package textseg

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentBoundaryPauses(t *testing.T) {
	// 边界驱动的停顿类型：句子结束、逗号拆分、全文结尾
	text := "Hello world. This is a test, with a pause! And a final line."
	segs, err := Segment(text, 30)
	require.NoError(t, err)
	require.Len(t, segs, 3)

	assert.Equal(t, "Hello world.", segs[0].Text)
	assert.Equal(t, models.PauseMedium, segs[0].PauseAfter)

	assert.Equal(t, "This is a test,", segs[1].Text)
	assert.Equal(t, models.PauseShort, segs[1].PauseAfter)

	assert.Equal(t, models.PauseNone, segs[2].PauseAfter)
}

func TestSegmentIndexContiguous(t *testing.T) {
	text := "One sentence here. Another sentence there. And one more to finish it off."
	segs, err := Segment(text, 25)
	require.NoError(t, err)
	require.NotEmpty(t, segs)

	for i, seg := range segs {
		assert.Equal(t, i, seg.Index)
		assert.NotEmpty(t, seg.Text)
	}
}

func TestSegmentLengthBound(t *testing.T) {
	text := "One two three. Four five six. Seven eight nine ten eleven. Twelve thirteen."
	maxChars := 40

	segs, err := Segment(text, maxChars)
	require.NoError(t, err)

	for _, seg := range segs {
		assert.LessOrEqual(t, utf8.RuneCountInString(seg.Text), maxChars,
			"片段超出长度上限: %q", seg.Text)
	}
}

func TestSegmentRejoinPreservesWords(t *testing.T) {
	text := "In reality, even tasks that seemed impossible become manageable as we iterate.\n\nWhen a new paragraph begins, the listener should feel a longer breath. This keeps the narration natural."

	segs, err := Segment(text, 60)
	require.NoError(t, err)

	// 按空格重新拼接后词序列与原文一致（仅空白规范化）
	rejoined := strings.Fields(Rejoin(segs))
	original := strings.Fields(text)
	assert.Equal(t, original, rejoined)
}

func TestSegmentParagraphBoundary(t *testing.T) {
	text := "First paragraph here.\n\nSecond paragraph here."
	segs, err := Segment(text, 100)
	require.NoError(t, err)
	require.Len(t, segs, 2)

	// 段落之间为长停顿，全文结尾无停顿
	assert.Equal(t, models.PauseLong, segs[0].PauseAfter)
	assert.Equal(t, models.PauseNone, segs[1].PauseAfter)
}

func TestSegmentAbbreviationsDoNotSplit(t *testing.T) {
	text := "We often say e.g. or i.e. in notes. Dr. Smith disagrees."
	segs, err := Segment(text, 200)
	require.NoError(t, err)
	require.Len(t, segs, 1)

	// 缩写中的句点不应断句，两个句子被装进同一片段
	assert.Contains(t, segs[0].Text, "e.g. or i.e.")
	assert.Contains(t, segs[0].Text, "Dr. Smith")
}

func TestSegmentCommaInNumberDoesNotSplit(t *testing.T) {
	text := "A price might be 1,000 dollars, that is cheap."
	segs, err := Segment(text, 20)
	require.NoError(t, err)
	require.NotEmpty(t, segs)

	// 数字中的逗号不能成为拆分点
	joined := Rejoin(segs)
	assert.Contains(t, joined, "1,000")
	for _, seg := range segs {
		assert.LessOrEqual(t, utf8.RuneCountInString(seg.Text), 20)
	}
}

func TestSegmentLongTokenTruncated(t *testing.T) {
	token := strings.Repeat("x", 50)
	segs, err := Segment(token, 20)
	require.NoError(t, err)
	require.Len(t, segs, 3)

	// 无法拆分的超长词在边界处截断并打上标记
	truncated := 0
	total := ""
	for _, seg := range segs {
		assert.LessOrEqual(t, utf8.RuneCountInString(seg.Text), 20)
		if seg.Truncated {
			truncated++
		}
		total += seg.Text
	}
	// 三块全部来自词中截断
	assert.Equal(t, 3, truncated)
	assert.Equal(t, token, total)
}

func TestSegmentHardSplitFlagsOnlyCutPieces(t *testing.T) {
	// 前半部分在空白处干净切开，只有超长词的残段才打标记
	text := "alpha beta gamma delta " + strings.Repeat("y", 30)
	segs, err := Segment(text, 20)
	require.NoError(t, err)
	require.Len(t, segs, 4)

	assert.Equal(t, "alpha beta gamma", segs[0].Text)
	assert.Equal(t, "delta", segs[1].Text)
	assert.Equal(t, strings.Repeat("y", 20), segs[2].Text)
	assert.Equal(t, strings.Repeat("y", 10), segs[3].Text)

	assert.False(t, segs[0].Truncated)
	assert.False(t, segs[1].Truncated)
	assert.True(t, segs[2].Truncated)
	assert.True(t, segs[3].Truncated)
}

func TestSegmentEmptyInput(t *testing.T) {
	segs, err := Segment("", 100)
	require.NoError(t, err)
	assert.Empty(t, segs)

	segs, err = Segment("   \n\n  \t ", 100)
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestSegmentInvalidMaxChars(t *testing.T) {
	_, err := Segment("Some text.", 0)
	require.Error(t, err)

	var confErr *models.ConfigValidationError
	assert.ErrorAs(t, err, &confErr)
	assert.Equal(t, "MaxChars", confErr.Field)
}

func TestSplitParagraphs(t *testing.T) {
	text := "First.\r\n\r\nSecond.\n\n\nThird."
	paragraphs := SplitParagraphs(text)
	assert.Equal(t, []string{"First.", "Second.", "Third."}, paragraphs)
}

func TestNormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeWhitespace("a\tb  c"))
	assert.Equal(t, "line1\nline2", NormalizeWhitespace("line1\r\nline2"))
}
