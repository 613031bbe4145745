package textseg

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ccp-p/tts-compare-cli/tts-processor/pkg/models"
)

// 不应触发断句的缩写词
var abbreviations = map[string]struct{}{
	"e.g": {}, "i.e": {}, "Mr": {}, "Mrs": {}, "Ms": {}, "Dr": {}, "Prof": {},
	"Sr": {}, "Jr": {}, "vs": {}, "etc": {}, "No": {}, "Fig": {}, "Inc": {},
	"Ltd": {}, "Co": {}, "Corp": {}, "U.S": {}, "U.K": {}, "Ph.D": {}, "M.D": {},
	"B.A": {}, "M.A": {}, "D.D.S": {}, "Rev": {}, "Hon": {}, "Gen": {}, "Col": {},
	"Capt": {}, "Lt": {}, "Sgt": {}, "Ave": {}, "Blvd": {}, "St": {}, "Rd": {},
	"Jan": {}, "Feb": {}, "Mar": {}, "Apr": {}, "Jun": {}, "Jul": {}, "Aug": {},
	"Sep": {}, "Sept": {}, "Oct": {}, "Nov": {}, "Dec": {}, "Mon": {}, "Tue": {},
	"Wed": {}, "Thu": {}, "Fri": {}, "Sat": {}, "Sun": {}, "Vol": {}, "Ver": {},
	"Ed": {}, "p": {}, "pp": {}, "cf": {}, "approx": {}, "est": {},
}

var (
	// 句尾标点后跟引号括号再跟空白
	sentenceRe = regexp.MustCompile(`([.!?]+["')\]]*)(\s+)`)
	// 多点缩写，如 e.g. / i.e.
	multiDotRe = regexp.MustCompile(`\w\.\w\.$`)
	// 小数点，如 3.14 中间的点
	decimalRe = regexp.MustCompile(`\d\.$`)
	// 句点前的最后一个词
	lastWordRe = regexp.MustCompile(`(\w+)\.$`)
	// 段落分隔：一个以上空行
	paragraphRe = regexp.MustCompile(`\n\s*\n+`)
	// 连续空格和制表符
	spaceRunRe = regexp.MustCompile(`[ \t]+`)
)

// sentence 一个句子及其在原文中的跨度（含句尾空白，按字符计）
type sentence struct {
	text string
	span int
}

// NormalizeWhitespace 规范化空白：CRLF转LF，制表符转空格，折叠连续空格
func NormalizeWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return spaceRunRe.ReplaceAllString(text, " ")
}

// SplitParagraphs 按空行把文本拆分为段落
func SplitParagraphs(text string) []string {
	text = NormalizeWhitespace(text)
	parts := paragraphRe.Split(text, -1)

	paragraphs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// 判断句点是否属于缩写而不是句子结束
// before 为截止到句点（含句点）的前缀
func isAbbreviation(before string) bool {
	if multiDotRe.MatchString(before) {
		return true
	}
	if decimalRe.MatchString(before) {
		return true
	}
	if m := lastWordRe.FindStringSubmatch(before); m != nil {
		word := m[1]
		if _, ok := abbreviations[word]; ok {
			return true
		}
		if _, ok := abbreviations[strings.ToLower(word)]; ok {
			return true
		}
		// 单个大写字母视为人名缩写，如 "A. Smith"
		if len(word) == 1 && word >= "A" && word <= "Z" {
			return true
		}
	}
	return false
}

// splitSentences 把段落拆分为句子，保留缩写不断句
func splitSentences(paragraph string) []sentence {
	paragraph = strings.TrimSpace(NormalizeWhitespace(paragraph))
	if paragraph == "" {
		return nil
	}

	var sentences []sentence
	last := 0

	for _, loc := range sentenceRe.FindAllStringSubmatchIndex(paragraph, -1) {
		punct := paragraph[loc[2]:loc[3]]
		if strings.HasPrefix(punct, ".") && isAbbreviation(paragraph[:loc[2]+1]) {
			continue
		}

		raw := paragraph[last:loc[1]]
		if text := strings.TrimSpace(raw); text != "" {
			sentences = append(sentences, sentence{text: text, span: utf8.RuneCountInString(raw)})
		}
		last = loc[1]
	}

	// 最后一个句子没有句尾空白
	if last < len(paragraph) {
		raw := paragraph[last:]
		if text := strings.TrimSpace(raw); text != "" {
			sentences = append(sentences, sentence{text: text, span: utf8.RuneCountInString(raw)})
		}
	}

	return sentences
}

// splitClauses 按逗号拆分长句，逗号保留在前一子句上
// 数字中的逗号（如 1,000）不拆分
func splitClauses(text string) []string {
	runes := []rune(text)
	var pieces []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if runes[i] != ',' {
			continue
		}
		if i+1 < len(runes) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		if piece := strings.TrimSpace(string(runes[start : i+1])); piece != "" {
			pieces = append(pieces, piece)
		}
		start = i + 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		pieces = append(pieces, tail)
	}
	return pieces
}

// hardSplit 在不超过maxChars的最后一处空白硬切超长文本
// 第二个返回值逐块标记：只有在词中截断产生的残段才为true
func hardSplit(text string, maxChars int) ([]string, []bool) {
	var pieces []string
	var flags []bool
	prevCutMidToken := false
	rest := []rune(strings.TrimSpace(text))

	for len(rest) > maxChars {
		cut := -1
		for i := maxChars; i > 0; i-- {
			if unicode.IsSpace(rest[i]) {
				cut = i
				break
			}
		}

		if cut <= 0 {
			// 找不到空白，只能在边界处截断
			pieces = append(pieces, string(rest[:maxChars]))
			flags = append(flags, true)
			rest = rest[maxChars:]
			prevCutMidToken = true
			continue
		}

		pieces = append(pieces, strings.TrimSpace(string(rest[:cut])))
		// 前一刀若落在词中，这一块以词的残段开头
		flags = append(flags, prevCutMidToken)
		rest = []rune(strings.TrimSpace(string(rest[cut:])))
		prevCutMidToken = false
	}

	if len(rest) > 0 {
		pieces = append(pieces, string(rest))
		flags = append(flags, prevCutMidToken)
	}
	return pieces, flags
}

// Segment 把旁白文本拆分为有序的合成片段
//
// 先按空行拆段落，再按句尾标点拆句子，贪心地把句子装入片段直到maxChars；
// 跨度达到上限的句子按逗号进一步拆分，逗号也拆不开的部分在空白处硬切。
// 停顿类型由封闭片段的边界决定：段落结束为long，句子结束为medium，
// 逗号或强制切分为short，全文最后一个片段为none。
func Segment(text string, maxChars int) ([]models.Segment, error) {
	if maxChars <= 0 {
		return nil, &models.ConfigValidationError{Field: "MaxChars", Message: "必须大于0"}
	}

	paragraphs := SplitParagraphs(text)
	if len(paragraphs) == 0 {
		return []models.Segment{}, nil
	}

	var segs []models.Segment
	cur := ""
	curLen := 0 // 计数长度，句间拼接空格不占预算
	curTrunc := false

	flush := func(pause models.PauseType) {
		if cur == "" {
			return
		}
		segs = append(segs, models.Segment{Text: cur, PauseAfter: pause, Truncated: curTrunc})
		cur, curLen, curTrunc = "", 0, false
	}

	emit := func(text string, pause models.PauseType, trunc bool) {
		segs = append(segs, models.Segment{Text: text, PauseAfter: pause, Truncated: trunc})
	}

	for _, para := range paragraphs {
		for _, s := range splitSentences(para) {
			if s.span >= maxChars {
				// 超长句：先封闭当前片段，再按逗号拆成独立片段
				flush(models.PauseMedium)

				pieces := splitClauses(s.text)
				for i, piece := range pieces {
					isLast := i == len(pieces)-1
					pieceLen := utf8.RuneCountInString(piece)

					if pieceLen > maxChars {
						hardPieces, cuts := hardSplit(piece, maxChars)
						for j, hp := range hardPieces {
							if isLast && j == len(hardPieces)-1 {
								// 最后一块作为下一个片段的开头继续装句
								cur, curLen, curTrunc = hp, utf8.RuneCountInString(hp), cuts[j]
							} else {
								emit(hp, models.PauseShort, cuts[j])
							}
						}
						continue
					}

					if isLast {
						cur, curLen = piece, pieceLen
					} else {
						emit(piece, models.PauseShort, false)
					}
				}
				continue
			}

			textLen := utf8.RuneCountInString(s.text)
			switch {
			case cur == "":
				cur, curLen = s.text, textLen
			case curLen+textLen <= maxChars:
				cur += " " + s.text
				curLen += textLen
			default:
				flush(models.PauseMedium)
				cur, curLen = s.text, textLen
			}
		}

		// 段落结束
		flush(models.PauseLong)
	}

	// 全文最后一个片段不需要停顿
	if len(segs) > 0 {
		segs[len(segs)-1].PauseAfter = models.PauseNone
	}

	for i := range segs {
		segs[i].Index = i
	}
	return segs, nil
}

// Rejoin 把片段文本按单个空格重新拼接，用于校验分段未丢词
func Rejoin(segs []models.Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " ")
}
