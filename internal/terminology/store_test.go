package terminology

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeTermFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "terms.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeTermFile(t, `{
		"英语": {
			"设备": "units",
			"台": "units",
			"机器学习": "machine learning",
			"机器": "machine"
		},
		"日语": {
			"设备": "装置"
		}
	}`)

	store, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"日语", "英语"}, store.Languages())
	assert.Len(t, store.Lookup("英语"), 4)
	assert.Len(t, store.Lookup("日语"), 1)
}

func TestLoadObjectValues(t *testing.T) {
	// 第二层的值允许是字符串或带 term 字段的对象
	path := writeTermFile(t, `{
		"英语": {
			"设备": {"term": "equipment", "note": "preferred"},
			"台": "units"
		}
	}`)

	store, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	terms := store.FullTable("英语", SourceToForeign)
	assert.Equal(t, "equipment", terms["设备"])
	assert.Equal(t, "units", terms["台"])
}

func TestLoadSkipsMalformedEntries(t *testing.T) {
	path := writeTermFile(t, `{
		"英语": {
			"设备": "equipment",
			"坏条目": 42,
			"空值": "",
			"换行": "bad\nvalue"
		}
	}`)

	store, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	// 损坏的条目被跳过，合法条目保留
	entries := store.Lookup("英语")
	require.Len(t, entries, 1)
	assert.Equal(t, "设备", entries[0].Source)
	assert.Equal(t, "equipment", entries[0].Target)
}

func TestLoadRejectsUnreadableFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), zap.NewNop())
	assert.Error(t, err)
}

func TestLoadRejectsInvalidJSON(t *testing.T) {
	path := writeTermFile(t, `not json`)
	_, err := Load(path, zap.NewNop())
	assert.Error(t, err)
}

func TestLoadNormalizesLanguageKeys(t *testing.T) {
	path := writeTermFile(t, `{
		"english": {"设备": "equipment"}
	}`)

	store, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	// "english" 与 "en" 归一化到同一个键
	assert.NotEmpty(t, store.Lookup("en"))
	assert.NotEmpty(t, store.Lookup("英语"))
}

func TestLookupLongestFirst(t *testing.T) {
	store := NewFromEntries(zap.NewNop(), "en", []Entry{
		{Source: "机器", Target: "machine"},
		{Source: "机器学习", Target: "machine learning"},
		{Source: "学习", Target: "learning"},
	})

	entries := store.Lookup("en")
	require.Len(t, entries, 3)
	assert.Equal(t, "机器学习", entries[0].Source)
}

func TestExtractRelevant(t *testing.T) {
	store := NewFromEntries(zap.NewNop(), "en", []Entry{
		{Source: "设备", Target: "equipment"},
		{Source: "项目", Target: "project"},
		{Source: "进度", Target: "progress"},
	})

	terms := store.ExtractRelevant("项目进度如下", "en", SourceToForeign)
	assert.Equal(t, map[string]string{
		"项目": "project",
		"进度": "progress",
	}, terms)

	// 外译中时按外文侧匹配，映射方向反转
	reverse := store.ExtractRelevant("the project scope", "en", ForeignToSource)
	assert.Equal(t, map[string]string{"project": "项目"}, reverse)
}

func TestExtractRelevantUnknownLanguage(t *testing.T) {
	store := NewFromEntries(zap.NewNop(), "en", []Entry{
		{Source: "设备", Target: "equipment"},
	})

	assert.Empty(t, store.ExtractRelevant("设备清单", "ja", SourceToForeign))
}

func TestFullTable(t *testing.T) {
	store := NewFromEntries(zap.NewNop(), "en", []Entry{
		{Source: "台", Target: "units"},
	})

	assert.Equal(t, map[string]string{"台": "units"},
		store.FullTable("en", SourceToForeign))
	assert.Equal(t, map[string]string{"units": "台"},
		store.FullTable("en", ForeignToSource))
}
