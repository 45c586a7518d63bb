package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAlreadyTranslatedAlternatingLines(t *testing.T) {
	d := NewScriptDetector(DetectorOptions{})

	assert.True(t, d.IsAlreadyTranslated("设备清单\nEquipment List"))
	assert.True(t, d.IsAlreadyTranslated("Equipment List\n设备清单"))
	assert.True(t, d.IsAlreadyTranslated("第一行\nLine one\n第二行\nLine two"))

	// 空行不破坏交替
	assert.True(t, d.IsAlreadyTranslated("设备清单\n\nEquipment List"))
}

func TestIsAlreadyTranslatedNegatives(t *testing.T) {
	d := NewScriptDetector(DetectorOptions{})

	// 同一文字系统的多行不算双语
	assert.False(t, d.IsAlreadyTranslated("第一行\n第二行"))
	assert.False(t, d.IsAlreadyTranslated("Line one\nLine two"))

	// 交替中断
	assert.False(t, d.IsAlreadyTranslated("第一行\nLine one\nLine two"))

	// 任一行占比不足 50% 判定失败
	assert.False(t, d.IsAlreadyTranslated("设备 equipment list extra words\nEquipment"))
}

func TestIsAlreadyTranslatedSingleLine(t *testing.T) {
	conservative := NewScriptDetector(DetectorOptions{})
	aggressive := NewScriptDetector(DetectorOptions{AggressiveSingleLine: true})

	// 单行默认按保守策略：宁可重译也不漏译
	assert.False(t, conservative.IsAlreadyTranslated("设备 Equipment"))
	assert.True(t, aggressive.IsAlreadyTranslated("设备 Equipment"))

	assert.False(t, aggressive.IsAlreadyTranslated("纯中文单行"))
	assert.False(t, aggressive.IsAlreadyTranslated("pure english line"))
}

func TestIsAlreadyTranslatedEmpty(t *testing.T) {
	d := NewScriptDetector(DetectorOptions{})
	assert.False(t, d.IsAlreadyTranslated(""))
	assert.False(t, d.IsAlreadyTranslated("   \n  "))
}

func TestContainsHan(t *testing.T) {
	assert.True(t, ContainsHan("含中文 text"))
	assert.False(t, ContainsHan("latin only"))
	assert.False(t, ContainsHan("12345"))
}
