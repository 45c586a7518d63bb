package terminology

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
)

// Strategy 术语处理策略
type Strategy int

const (
	// StrategyDirect 直接替换：调用后端前把中文术语改写为目标术语
	StrategyDirect Strategy = iota
	// StrategyPlaceholder 占位符模式：用占位符遮蔽术语并附带翻译指令
	StrategyPlaceholder
)

// ParseStrategy 解析配置中的策略名
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "direct":
		return StrategyDirect, nil
	case "placeholder":
		return StrategyPlaceholder, nil
	default:
		return StrategyDirect, fmt.Errorf("未知的术语策略: %q", name)
	}
}

// 量词字典：跟在数字后面且本身携带可译含义的单字
var unitWords = []string{"台", "个", "件", "套", "张", "条", "只", "批", "米", "吨", "层", "次"}

// IsUnitWord 判断是否为量词字典中的单字
func IsUnitWord(s string) bool {
	for _, w := range unitWords {
		if s == w {
			return true
		}
	}
	return false
}

var digitUnitRe = regexp.MustCompile(`([0-9]+)(` + strings.Join(unitWords, "|") + `)`)

// NormalizeUnitWords 在数字与量词之间插入空格，
// 使量词能够通过边界规则参与直接替换（"10台" -> "10 台"）。
func NormalizeUnitWords(text string) string {
	return digitUnitRe.ReplaceAllString(text, "$1 $2")
}

var standaloneUnitRe = regexp.MustCompile(`^([0-9]+)\s*(\p{Han})$`)

// StandaloneUnit 识别“纯数字+单个量词”的单元（如 "10台"）。
// 命中且术语表配置了该量词时，本地改写即可，无需调用后端。
func StandaloneUnit(text string, terms map[string]string) (string, bool) {
	m := standaloneUnitRe.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return "", false
	}
	target, ok := terms[m[2]]
	if !ok {
		return "", false
	}
	return m[1] + " " + target, true
}

// Substitutor 对单个文本单元执行术语替换
type Substitutor struct {
	logger *zap.Logger
}

// NewSubstitutor 创建术语替换器
func NewSubstitutor(logger *zap.Logger) *Substitutor {
	return &Substitutor{logger: logger}
}

// sortedTerms 按匹配侧长度降序返回键，保证最长优先
func sortedTerms(terms map[string]string) []string {
	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		li, lj := len([]rune(keys[i])), len([]rune(keys[j]))
		if li != lj {
			return li > lj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// isIdeographic 术语是否含表意文字（决定边界规则）
func isIdeographic(term string) bool {
	for _, r := range term {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

// boundaryPattern 构建带边界规则的匹配模式：
// 表意文字术语两侧不得紧邻 ASCII 字母数字（避免拆散 "10units" 之类的混排），
// 拉丁文术语使用严格词边界。
func boundaryPattern(term string) *regexp2.Regexp {
	quoted := regexp2.Escape(term)
	var pattern string
	if isIdeographic(term) {
		pattern = `(?<![a-zA-Z0-9])` + quoted + `(?![a-zA-Z0-9])`
	} else {
		pattern = `\b` + quoted + `\b`
	}
	return regexp2.MustCompile(pattern, regexp2.None)
}

// DirectReplace 直接替换策略：最长优先逐个改写术语。
// 替换产生的片段在本轮内以占位符保护，不会被更短的术语二次命中，
// 因此对已替换文本再次执行不会进一步改动（幂等）。
func (s *Substitutor) DirectReplace(text string, terms map[string]string) string {
	if len(terms) == 0 {
		return text
	}

	text = NormalizeUnitWords(text)

	tokens := make(map[string]string, len(terms))
	counter := 0
	for _, match := range sortedTerms(terms) {
		re := boundaryPattern(match)
		target := terms[match]
		replaced, err := re.ReplaceFunc(text, func(regexp2.Match) string {
			counter++
			token := fmt.Sprintf("[[T%03d]]", counter)
			tokens[token] = target
			return token
		}, -1, -1)
		if err != nil {
			s.logger.Warn("术语替换失败，保留原文",
				zap.String("term", match), zap.Error(err))
			continue
		}
		text = replaced
	}

	for token, target := range tokens {
		text = strings.ReplaceAll(text, token, target)
	}
	return text
}

// PlaceholderResult 占位符模式的产物
type PlaceholderResult struct {
	// Text 遮蔽术语后的文本
	Text string
	// Instructions 随提示词下发的自然语言指令，每个术语一行
	Instructions []string
	// mapping 占位符 -> 目标术语
	mapping map[string]string
}

// Placeholderize 占位符策略：最长优先把每个命中术语替换为唯一占位符，
// 并生成要求后端按指定译法处理的指令。占位符在单次调用内唯一，用后即弃。
func (s *Substitutor) Placeholderize(text string, terms map[string]string) *PlaceholderResult {
	result := &PlaceholderResult{
		Text:    text,
		mapping: make(map[string]string),
	}

	counter := 0
	for _, match := range sortedTerms(terms) {
		re := boundaryPattern(match)
		target := terms[match]

		var token string
		replaced, err := re.ReplaceFunc(result.Text, func(regexp2.Match) string {
			if token == "" {
				counter++
				token = fmt.Sprintf("[[T%03d]]", counter)
				result.mapping[token] = target
			}
			return token
		}, -1, -1)
		if err != nil {
			s.logger.Warn("术语遮蔽失败，保留原文",
				zap.String("term", match), zap.Error(err))
			continue
		}
		if token != "" {
			result.Instructions = append(result.Instructions,
				fmt.Sprintf("placeholder %s (original: %q) must be translated exactly as %q",
					token, match, target))
		}
		result.Text = replaced
	}

	return result
}

// Restore 把后端输出中的占位符替换回目标术语。
// 被后端改写或丢弃的占位符无法恢复，原样保留（已知的有损边界情况）。
func (r *PlaceholderResult) Restore(text string) string {
	for token, target := range r.mapping {
		text = strings.ReplaceAll(text, token, target)
	}
	return text
}

// TokenCount 生成的占位符数量
func (r *PlaceholderResult) TokenCount() int {
	return len(r.mapping)
}
