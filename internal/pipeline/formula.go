package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// 数学标记模式，按顺序应用：环境块、块级公式、行内公式
var formulaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\\begin\{(equation|align|eqnarray)\*?\}(?s:.*?)\\end\{(equation|align|eqnarray)\*?\}`),
	regexp.MustCompile(`\$\$(?s:.+?)\$\$`),
	regexp.MustCompile(`\$[^$\n]+\$`),
}

// FormulaGuard 在每次翻译调用前后保护/还原数学标记。
// 占位符在单次 Protect 调用内唯一，用后即弃。
type FormulaGuard struct{}

// NewFormulaGuard 创建公式保护器
func NewFormulaGuard() *FormulaGuard {
	return &FormulaGuard{}
}

// Protect 把文本中的数学标记替换为惰性占位符，
// 返回保护后的文本与 占位符->原文 的映射。
// 对模式列表单遍扫描，同一模式按文档顺序逐个命中。
func (g *FormulaGuard) Protect(text string) (string, map[string]string) {
	placeholders := make(map[string]string)
	counter := 0

	for _, pattern := range formulaPatterns {
		text = pattern.ReplaceAllStringFunc(text, func(match string) string {
			counter++
			token := fmt.Sprintf("[[F%03d]]", counter)
			placeholders[token] = match
			return token
		})
	}

	return text, placeholders
}

// Restore 按字面量把占位符替换回原文。
// 被后端改写或丢弃的占位符原样保留，这是已接受的有损边界情况。
func (g *FormulaGuard) Restore(text string, placeholders map[string]string) string {
	for token, original := range placeholders {
		text = strings.ReplaceAll(text, token, original)
	}
	return text
}
