package pipeline

import (
	"regexp"
	"strings"
)

// Sanitizer 对后端原始输出做无状态清洗，规则按固定顺序执行
type Sanitizer struct{}

// NewSanitizer 创建输出清洗器
func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

var (
	// 推理标记：只保留最后一个闭合标签之后的内容
	thinkCloseRe = regexp.MustCompile(`(?s).*</think(?:ing)?>`)

	// 行首的译文标签
	leadingLabelRe = regexp.MustCompile(`^(?:译文|翻译|原文|Translation|Translated text)[:：]\s*`)

	// Markdown 代码围栏
	fenceOpenRe  = regexp.MustCompile("^```[a-zA-Z]*\\s*\n?")
	fenceCloseRe = regexp.MustCompile("\n?```\\s*$")

	// 尾部解释性附注
	trailingAsideRe = regexp.MustCompile(`(?m)^(?:注[:：]|Note[:：]|Translated by\b).*$`)
)

// 成对的包裹引号
var quotePairs = [][2]string{
	{`"`, `"`},
	{"“", "”"},
	{"「", "」"},
	{"'", "'"},
	{"『", "』"},
}

// 后端索要原文的客套话，整体命中时视为无有效输出
var refusalPhrases = []string{
	"请提供需要翻译的文本",
	"请提供需要翻译的内容",
	"请提供原文",
	"please provide the text to translate",
	"please provide the text you would like translated",
	"sure, please provide the text",
}

// Sanitize 清洗一次后端输出。
// 清洗结果为空但原始输入非空时返回原始输入（安全阀），避免静默丢内容。
func (s *Sanitizer) Sanitize(raw string) string {
	text := raw

	// 1. 去掉思考过程，只保留最后一段推理之后的尾部
	text = thinkCloseRe.ReplaceAllString(text, "")

	// 2. 去掉行首标签与代码围栏
	text = strings.TrimSpace(text)
	text = fenceOpenRe.ReplaceAllString(text, "")
	text = fenceCloseRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)
	text = leadingLabelRe.ReplaceAllString(text, "")

	// 3. 去掉成对的包裹引号
	text = stripSurroundingQuotes(strings.TrimSpace(text))

	// 4. 去掉尾部解释性附注
	text = strings.TrimSpace(trailingAsideRe.ReplaceAllString(text, ""))

	// 5. 整体是客套话则视为空结果，交由上游重试或跳过
	if isRefusal(text) {
		return ""
	}

	// 6. 压缩空行：非空行以单个换行连接
	text = collapseBlankLines(text)

	// 7. 安全阀
	if text == "" && strings.TrimSpace(raw) != "" {
		return raw
	}

	return text
}

func stripSurroundingQuotes(text string) string {
	for {
		stripped := text
		for _, pair := range quotePairs {
			if len(stripped) > len(pair[0])+len(pair[1]) &&
				strings.HasPrefix(stripped, pair[0]) && strings.HasSuffix(stripped, pair[1]) {
				stripped = strings.TrimSpace(
					strings.TrimSuffix(strings.TrimPrefix(stripped, pair[0]), pair[1]))
				break
			}
		}
		if stripped == text {
			return text
		}
		text = stripped
	}
}

func isRefusal(text string) bool {
	normalized := strings.ToLower(strings.TrimRight(strings.TrimSpace(text), "。.!！"))
	for _, phrase := range refusalPhrases {
		if normalized == phrase {
			return true
		}
	}
	return false
}

func collapseBlankLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimRight(line, " \t"); strings.TrimSpace(trimmed) != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}
