package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		cfgFile = ""
		sourceLang = ""
		targetLang = ""
		termsPath = ""
		strategy = ""
		outputMode = ""
		outputDir = ""
	})
}

func writeCLIConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigRejectsInvalidFlagOverrides(t *testing.T) {
	resetFlags(t)
	cfgFile = writeCLIConfig(t, "source_lang: zh\ntarget_lang: en\n")

	// 配置文件本身合法，命令行覆盖出的组合仍要校验
	sourceLang = "en"
	targetLang = "en"
	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "源语言与目标语言不能相同")
}

func TestLoadConfigAppliesFlagOverrides(t *testing.T) {
	resetFlags(t)
	cfgFile = writeCLIConfig(t, "source_lang: zh\ntarget_lang: en\n")

	targetLang = "ja"
	outputMode = "translation_only"
	termsPath = "/data/terms.json"

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "zh", cfg.SourceLang)
	assert.Equal(t, "ja", cfg.TargetLang)
	assert.Equal(t, "translation_only", cfg.OutputMode)
	assert.Equal(t, "/data/terms.json", cfg.TerminologyPath)
	assert.True(t, cfg.TermPreprocess)
}
