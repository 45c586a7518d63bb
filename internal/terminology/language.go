package terminology

import (
	"strings"

	"golang.org/x/text/language"
)

// Direction 翻译方向，决定术语条目的哪一侧参与匹配
type Direction int

const (
	// SourceToForeign 中文译外文：按术语条目的中文侧匹配
	SourceToForeign Direction = iota
	// ForeignToSource 外文译中文：按术语条目的外文侧匹配
	ForeignToSource
)

// DirectionFor 根据配置的源语言推导翻译方向
func DirectionFor(sourceLang string) Direction {
	if NormalizeLanguageKey(sourceLang) == "中文" {
		return SourceToForeign
	}
	return ForeignToSource
}

// ISO-639 基础代码到规范语言键的映射
var codeToCanonical = map[string]string{
	"zh": "中文",
	"en": "英语",
	"ja": "日语",
	"ko": "韩语",
	"fr": "法语",
	"de": "德语",
	"ru": "俄语",
	"es": "西班牙语",
	"pt": "葡萄牙语",
	"it": "意大利语",
}

// 常见同义写法到规范语言键的映射
var synonymToCanonical = map[string]string{
	"中文":         "中文",
	"汉语":         "中文",
	"chinese":    "中文",
	"英文":         "英语",
	"英语":         "英语",
	"english":    "英语",
	"日文":         "日语",
	"日语":         "日语",
	"japanese":   "日语",
	"韩文":         "韩语",
	"韩语":         "韩语",
	"korean":     "韩语",
	"法文":         "法语",
	"法语":         "法语",
	"french":     "法语",
	"德文":         "德语",
	"德语":         "德语",
	"german":     "德语",
	"俄文":         "俄语",
	"俄语":         "俄语",
	"russian":    "俄语",
	"西语":         "西班牙语",
	"西班牙语":       "西班牙语",
	"spanish":    "西班牙语",
	"葡语":         "葡萄牙语",
	"葡萄牙语":       "葡萄牙语",
	"portuguese": "葡萄牙语",
	"意大利语":       "意大利语",
	"italian":    "意大利语",
}

// NormalizeLanguageKey 将语言代码或同义写法归一化为规范语言键。
// 未知的键原样返回，由调用方记录未命中。
func NormalizeLanguageKey(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return raw
	}

	if canonical, ok := synonymToCanonical[key]; ok {
		return canonical
	}

	// 尝试按 BCP-47 / ISO-639 代码解析
	if tag, err := language.Parse(key); err == nil {
		if base, conf := tag.Base(); conf >= language.High {
			if canonical, ok := codeToCanonical[base.String()]; ok {
				return canonical
			}
		}
	}

	return raw
}
