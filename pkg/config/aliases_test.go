package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	writeFile(t, path, `aliases:
  tiny: gpt-4o-mini
providers:
  openai:
    - gpt-4o-mini
`)

	aliases, err := LoadAliases(path)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", aliases.Resolve("tiny"))
	assert.Equal(t, []string{"gpt-4o-mini"}, aliases.GetProviderModels("openai"))
}

func TestLoadAliasesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	writeFile(t, path, "")

	aliases, err := LoadAliases(path)
	require.NoError(t, err)
	assert.NotNil(t, aliases.Aliases)
	assert.NotNil(t, aliases.Providers)
}

func TestLoadAliasesInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	writeFile(t, path, "aliases: [unclosed")

	_, err := LoadAliases(path)
	assert.Error(t, err)
}

func TestLoadAliasesWithFallback(t *testing.T) {
	aliases, err := LoadAliasesWithFallback(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAliases(), aliases)
}

func TestResolve(t *testing.T) {
	aliases := DefaultAliases()

	tests := []struct {
		input    string
		expected string
	}{
		{"fast", "gpt-4o-mini"},
		{"haiku", "claude-3-5-haiku-latest"},
		{"offline", "mock-1"},
		{"gpt-4o", "gpt-4o"},
		{"unknown-model", "unknown-model"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, aliases.Resolve(tt.input))
		})
	}

	var nilAliases *ModelAliases
	assert.Equal(t, "x", nilAliases.Resolve("x"))
}

func TestValidateModel(t *testing.T) {
	aliases := DefaultAliases()

	assert.NoError(t, aliases.ValidateModel("openai", "gpt-4o-mini"))
	assert.NoError(t, aliases.ValidateModel("mock", "mock-1"))
	assert.ErrorContains(t, aliases.ValidateModel("openai", "gemini-2.0-flash"), "not in openai provider list")
	assert.ErrorContains(t, aliases.ValidateModel("bogus", "gpt-4o"), "unknown adapter")

	var nilAliases *ModelAliases
	assert.NoError(t, nilAliases.ValidateModel("any", "thing"))
}

func TestValidateClassifier(t *testing.T) {
	aliases := DefaultAliases()

	cfg := DefaultRouterConfig()
	cfg.Classifier.Model = "fast"
	assert.NoError(t, aliases.ValidateClassifier(cfg))

	cfg.Classifier.Adapter = "google"
	assert.ErrorContains(t, aliases.ValidateClassifier(cfg), "classifier")
}

func TestListAliasesAndProviders(t *testing.T) {
	aliases := DefaultAliases()

	assert.Equal(t, []string{"cheap", "fast", "flash", "haiku", "offline", "quality", "sonnet"}, aliases.ListAliases())
	assert.Equal(t, []string{"anthropic", "deepseek", "google", "mock", "openai"}, aliases.ListProviders())
}
