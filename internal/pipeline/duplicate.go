package pipeline

import (
	"strings"
	"unicode"
)

// Detector 判断一个文本单元是否已经包含双语内容。
// 该判断是启发式的，做成可插拔谓词以便调优或替换。
type Detector interface {
	IsAlreadyTranslated(text string) bool
}

// DetectorOptions 重复检测选项
type DetectorOptions struct {
	// AggressiveSingleLine 把中外混排的单行也视为已翻译。
	// 该策略有漏译风险，默认关闭。
	AggressiveSingleLine bool
}

// ScriptDetector 基于文字系统占比的双语检测：
// 至少两个非空行，且相邻行在“表意文字占比≥50%”与“拉丁字母占比≥50%”之间交替。
type ScriptDetector struct {
	opts DetectorOptions
}

// NewScriptDetector 创建默认的双语检测器
func NewScriptDetector(opts DetectorOptions) *ScriptDetector {
	return &ScriptDetector{opts: opts}
}

// IsAlreadyTranslated 判断文本是否已含双语内容
func (d *ScriptDetector) IsAlreadyTranslated(text string) bool {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) < 2 {
		if len(lines) == 1 && d.opts.AggressiveSingleLine {
			return isMixedScript(lines[0])
		}
		// 单行按保守策略处理：不视为已翻译
		return false
	}

	prev := lineScript(lines[0])
	if prev == scriptOther {
		return false
	}
	for _, line := range lines[1:] {
		cur := lineScript(line)
		if cur == scriptOther || cur == prev {
			return false
		}
		prev = cur
	}
	return true
}

type script int

const (
	scriptOther script = iota
	scriptHan
	scriptLatin
)

// lineScript 返回占比≥50%的文字系统
func lineScript(line string) script {
	var han, latin, total int
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case unicode.Is(unicode.Han, r):
			han++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	if total == 0 {
		return scriptOther
	}
	switch {
	case han*2 >= total:
		return scriptHan
	case latin*2 >= total:
		return scriptLatin
	default:
		return scriptOther
	}
}

// isMixedScript 单行内同时含表意文字与拉丁字母
func isMixedScript(line string) bool {
	var hasHan, hasLatin bool
	for _, r := range line {
		switch {
		case unicode.Is(unicode.Han, r):
			hasHan = true
		case unicode.Is(unicode.Latin, r):
			hasLatin = true
		}
	}
	return hasHan && hasLatin
}

// ContainsHan 文本中是否含有表意文字（用于方向相关的快速跳过）
func ContainsHan(text string) bool {
	for _, r := range text {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}
