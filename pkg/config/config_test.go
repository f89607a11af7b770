package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/skillroute/pkg/skill"
)

func TestConfigUsesEnvAPIKeys(t *testing.T) {
	setHomeEnv(t, t.TempDir())
	clearRouterEnv(t)

	t.Setenv("ANTHROPIC_API_KEY", "env-ant")
	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("GOOGLE_API_KEY", "env-google")
	t.Setenv("DEEPSEEK_API_KEY", "env-deepseek")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-ant", cfg.AnthropicAPIKey)
	assert.Equal(t, "env-openai", cfg.OpenAIAPIKey)
	assert.Equal(t, "env-google", cfg.GoogleAPIKey)
	assert.Equal(t, "env-deepseek", cfg.DeepSeekAPIKey)
	assert.True(t, cfg.HasAdapter("openai"))
	assert.True(t, cfg.HasAdapter("mock"))
	assert.False(t, cfg.HasAdapter("unknown"))
}

func TestConfigDefaultsWithoutFile(t *testing.T) {
	setHomeEnv(t, t.TempDir())
	clearRouterEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg.Router)
	assert.Equal(t, "keyword", cfg.Router.Mode)
	assert.Equal(t, 3, cfg.Router.Attempts())
	assert.Equal(t, "openai", cfg.Router.Classifier.Adapter)
	assert.Equal(t, "gpt-4o-mini", cfg.Router.Classifier.Model)
	assert.Equal(t, 120, cfg.Router.Classifier.MaxTokens)
	assert.True(t, cfg.Router.RetryFeedbackEnabled())
	assert.Equal(t, "info", cfg.Router.Log.Level)
	assert.NoError(t, cfg.Router.Validate())
	assert.NotNil(t, cfg.Aliases)
}

func TestConfigReadsRouterFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearRouterEnv(t)

	path := filepath.Join(home, ".skillroute", "router.yaml")
	writeFile(t, path, `
mode: model
max_attempts: 5
skills_dir: /srv/skills
classifier:
  adapter: anthropic
  model: haiku
  temperature: 0.2
  retry_feedback: false
triggers:
  task_planning: [agenda, itinerary]
diagnostics:
  file: /tmp/routes.jsonl
log:
  level: debug
  pretty: true
`)

	cfg, err := Load()
	require.NoError(t, err)
	r := cfg.Router
	assert.Equal(t, "model", r.Mode)
	assert.Equal(t, 5, r.Attempts())
	assert.Equal(t, "/srv/skills", r.SkillsDir)
	assert.Equal(t, "anthropic", r.Classifier.Adapter)
	assert.Equal(t, "haiku", r.Classifier.Model)
	assert.InDelta(t, 0.2, r.Classifier.Temperature, 1e-9)
	assert.Equal(t, 120, r.Classifier.MaxTokens)
	assert.False(t, r.RetryFeedbackEnabled())
	assert.Equal(t, "/tmp/routes.jsonl", r.Diagnostics.File)
	assert.Equal(t, "debug", r.Log.Level)
	assert.True(t, r.Log.Pretty)

	table, err := r.TriggerTable()
	require.NoError(t, err)
	assert.Equal(t, map[skill.Name][]string{skill.TaskPlanning: {"agenda", "itinerary"}}, table)
	assert.NoError(t, cfg.Aliases.ValidateClassifier(r))
}

func TestConfigEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)
	clearRouterEnv(t)

	path := filepath.Join(home, "custom.yaml")
	writeFile(t, path, "mode: keyword\nmax_attempts: 2\nclassifier:\n  adapter: openai\n  model: gpt-4o\n")

	t.Setenv("SKILLROUTE_MODE", "model")
	t.Setenv("SKILLROUTE_MAX_ATTEMPTS", "4")
	t.Setenv("OPENAI_MODEL", "gpt-4.1-mini")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "model", cfg.Router.Mode)
	assert.Equal(t, 4, cfg.Router.Attempts())
	assert.Equal(t, "gpt-4.1-mini", cfg.Router.Classifier.Model)
}

func TestConfigRejectsBadEnvAttempts(t *testing.T) {
	setHomeEnv(t, t.TempDir())
	clearRouterEnv(t)
	t.Setenv("SKILLROUTE_MAX_ATTEMPTS", "many")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFromMissingFile(t *testing.T) {
	setHomeEnv(t, t.TempDir())
	clearRouterEnv(t)

	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestRouterConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*RouterConfig)
		wantErr string
	}{
		{name: "defaults", mutate: func(*RouterConfig) {}},
		{name: "bad mode", mutate: func(c *RouterConfig) { c.Mode = "fuzzy" }, wantErr: "mode"},
		{name: "keyword ignores attempts", mutate: func(c *RouterConfig) { c.SetMaxAttempts(0) }},
		{
			name:   "model needs attempts",
			mutate: func(c *RouterConfig) {
				c.Mode = "model"
				c.SetMaxAttempts(0)
			},
			wantErr: "max_attempts",
		},
		{name: "temperature", mutate: func(c *RouterConfig) { c.Classifier.Temperature = 2.5 }, wantErr: "temperature"},
		{
			name:    "always_on trigger",
			mutate:  func(c *RouterConfig) { c.Triggers = map[string][]string{"always_on": {"x"}} },
			wantErr: "always_on",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRouterConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRouterConfigKeepsExplicitZeroAttempts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "router.yaml")
	writeFile(t, path, "mode: model\nmax_attempts: 0\n")

	cfg, err := LoadRouterConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Attempts())

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_attempts")
}

func TestLoadRouterConfigDefaultsMissingAttempts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "router.yaml")
	writeFile(t, path, "mode: model\n")

	cfg, err := LoadRouterConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Attempts())
	assert.NoError(t, cfg.Validate())
}

func TestWriteRouterConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "router.yaml")
	cfg := DefaultRouterConfig()
	cfg.Mode = "model"

	require.NoError(t, WriteRouterConfig(path, cfg))
	loaded, err := LoadRouterConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadDotEnv(t *testing.T) {
	const key = "SKILLROUTE_DOTENV_PROBE"
	path := filepath.Join(t.TempDir(), ".env")
	writeFile(t, path, key+"=from-file\n")
	t.Cleanup(func() { os.Unsetenv(key) })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv(key))

	assert.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func setHomeEnv(t *testing.T, home string) {
	t.Helper()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
}

func clearRouterEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"SKILLROUTE_MODE", "SKILLROUTE_MAX_ATTEMPTS", "OPENAI_MODEL"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}
