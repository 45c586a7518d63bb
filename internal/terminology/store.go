package terminology

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Entry 一条术语：中文侧与外文侧
type Entry struct {
	Source string // 中文术语
	Target string // 外文术语
}

// Store 按规范语言键组织的只读术语表。
// 术语表在一次文档处理开始前加载一次，处理期间不再修改。
type Store struct {
	logger *zap.Logger
	table  map[string][]Entry
}

// Empty 返回空术语表
func Empty(logger *zap.Logger) *Store {
	return &Store{logger: logger, table: make(map[string][]Entry)}
}

// NewFromEntries 从内存条目构建术语表（测试与快速路径使用）
func NewFromEntries(logger *zap.Logger, lang string, entries []Entry) *Store {
	s := Empty(logger)
	s.table[NormalizeLanguageKey(lang)] = append([]Entry(nil), entries...)
	return s
}

// Load 从 JSON 文件加载术语表。文件为两层嵌套对象：
// 顶层按语言名，第二层按中文术语，值为字符串或带 term 字段的对象。
// 个别损坏的条目跳过并记录，不会导致整体失败。
func Load(path string, logger *zap.Logger) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取术语文件失败: %w", err)
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析术语文件失败: %w", err)
	}

	s := Empty(logger)
	for lang, terms := range raw {
		key := NormalizeLanguageKey(lang)
		if key == lang && synonymToCanonical[strings.ToLower(lang)] == "" {
			logger.Debug("未识别的语言键，按原样使用", zap.String("language", lang))
		}

		// 同一语言内中文术语唯一，后写覆盖先写
		bySource := make(map[string]string, len(terms))
		for source, value := range terms {
			target, ok := decodeTarget(value)
			if !ok {
				logger.Warn("跳过无法解析的术语条目",
					zap.String("language", lang),
					zap.String("source", source))
				continue
			}
			if !validTerm(source) || !validTerm(target) {
				logger.Warn("跳过非法术语条目",
					zap.String("language", lang),
					zap.String("source", source),
					zap.String("target", target))
				continue
			}
			bySource[source] = target
		}

		sources := make([]string, 0, len(bySource))
		for source := range bySource {
			sources = append(sources, source)
		}
		sort.Strings(sources)

		entries := make([]Entry, 0, len(sources))
		for _, source := range sources {
			entries = append(entries, Entry{Source: source, Target: bySource[source]})
		}
		s.table[key] = append(s.table[key], entries...)
	}

	return s, nil
}

// decodeTarget 兼容字符串值与 {"term": "..."} 对象值
func decodeTarget(value json.RawMessage) (string, bool) {
	var str string
	if err := json.Unmarshal(value, &str); err == nil {
		return str, true
	}

	var obj struct {
		Term string `json:"term"`
	}
	if err := json.Unmarshal(value, &obj); err == nil && obj.Term != "" {
		return obj.Term, true
	}

	return "", false
}

// validTerm 术语两侧均非空且不含换行
func validTerm(term string) bool {
	return term != "" && !strings.ContainsAny(term, "\r\n")
}

// Languages 返回已加载的语言键
func (s *Store) Languages() []string {
	langs := make([]string, 0, len(s.table))
	for lang := range s.table {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Lookup 返回指定语言的术语副本，按中文侧长度降序排列
// （最长优先，避免“机器学习”被“机器”截胡）。调用方不得回写。
func (s *Store) Lookup(languageKey string) []Entry {
	entries, ok := s.table[NormalizeLanguageKey(languageKey)]
	if !ok {
		s.logger.Debug("术语表中无此语言", zap.String("language", languageKey))
		return nil
	}

	out := append([]Entry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return len([]rune(out[i].Source)) > len([]rune(out[j].Source))
	})
	return out
}

// ExtractRelevant 返回匹配侧在 text 中实际出现的条目。
// 方向决定匹配侧：中译外扫描中文术语，外译中扫描外文术语。
// 返回映射为 匹配侧 -> 替换侧。
func (s *Store) ExtractRelevant(text, languageKey string, dir Direction) map[string]string {
	relevant := make(map[string]string)
	for _, entry := range s.Lookup(languageKey) {
		match, replace := entry.Source, entry.Target
		if dir == ForeignToSource {
			match, replace = entry.Target, entry.Source
		}
		if strings.Contains(text, match) {
			relevant[match] = replace
		}
	}
	return relevant
}

// FullTable 返回指定语言方向化后的完整映射，
// 用于相关子集未命中时的全表回退扫描。
func (s *Store) FullTable(languageKey string, dir Direction) map[string]string {
	full := make(map[string]string)
	for _, entry := range s.Lookup(languageKey) {
		if dir == ForeignToSource {
			full[entry.Target] = entry.Source
		} else {
			full[entry.Source] = entry.Target
		}
	}
	return full
}
