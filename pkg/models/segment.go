package models

// PauseType 表示片段之后的停顿类型
type PauseType string

const (
	PauseNone   PauseType = "none"   // 无停顿（全文最后一个片段）
	PauseShort  PauseType = "short"  // 短停顿（逗号或强制切分）
	PauseMedium PauseType = "medium" // 中停顿（句子结束）
	PauseLong   PauseType = "long"   // 长停顿（段落结束）
)

// Valid 判断停顿类型是否合法
func (p PauseType) Valid() bool {
	switch p {
	case PauseNone, PauseShort, PauseMedium, PauseLong:
		return true
	}
	return false
}

// Segment 表示一个待合成的文本片段，由分段器产生后不再修改
type Segment struct {
	Index      int       `json:"idx"`                 // 片段序号，从0开始连续递增
	Text       string    `json:"text"`                // 片段文本
	PauseAfter PauseType `json:"pause_after"`         // 片段之后的停顿类型
	Truncated  bool      `json:"truncated,omitempty"` // 词中强制截断产生的残段标记
}

// PauseMap 停顿类型到时长（秒）的映射
type PauseMap struct {
	Short  float64 `json:"short"`
	Medium float64 `json:"medium"`
	Long   float64 `json:"long"`
}

// DurationFor 返回指定停顿类型对应的时长（秒）
func (m PauseMap) DurationFor(p PauseType) float64 {
	switch p {
	case PauseShort:
		return m.Short
	case PauseMedium:
		return m.Medium
	case PauseLong:
		return m.Long
	}
	return 0
}
