package openai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/termbridge/termbridge/pkg/providers"
)

func TestTranslateRejectsEmptyText(t *testing.T) {
	provider := New(DefaultConfig())

	_, err := provider.Translate(context.Background(), &providers.Request{Text: "   "})
	require.Error(t, err)
	assert.ErrorIs(t, err, providers.ErrEmptyText)
}

func TestBuildSystemPrompt(t *testing.T) {
	provider := New(DefaultConfig())

	prompt := provider.buildSystemPrompt(&providers.Request{
		SourceLang: "zh",
		TargetLang: "en",
	})
	assert.Contains(t, prompt, "from zh to en")
	assert.NotContains(t, prompt, "Terminology requirements")
}

func TestBuildSystemPromptWithTerms(t *testing.T) {
	provider := New(DefaultConfig())

	prompt := provider.buildSystemPrompt(&providers.Request{
		SourceLang: "zh",
		TargetLang: "en",
		TermInstructions: []string{
			`placeholder [[T001]] (original: "设备") must be translated exactly as "equipment"`,
		},
	})
	assert.Contains(t, prompt, "Terminology requirements:")
	assert.Contains(t, prompt, "[[T001]]")
}

func TestBuildSystemPromptOverride(t *testing.T) {
	provider := New(DefaultConfig())

	prompt := provider.buildSystemPrompt(&providers.Request{
		SourceLang:     "zh",
		TargetLang:     "en",
		PromptOverride: "Translate casually.",
	})
	assert.Equal(t, "Translate casually.", prompt)
}

func TestGetName(t *testing.T) {
	assert.Equal(t, "openai", New(DefaultConfig()).GetName())
}
