package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zen-systems/skillroute/pkg/skill"
)

// RouterConfig holds the routing configuration.
type RouterConfig struct {
	Mode        string              `yaml:"mode"`
	MaxAttempts *int                `yaml:"max_attempts,omitempty"`
	SkillsDir   string              `yaml:"skills_dir,omitempty"`
	Classifier  ClassifierConfig    `yaml:"classifier"`
	Triggers    map[string][]string `yaml:"triggers,omitempty"`
	Diagnostics DiagnosticsConfig   `yaml:"diagnostics,omitempty"`
	Log         LogConfig           `yaml:"log,omitempty"`
}

// ClassifierConfig selects the endpoint used in model mode.
type ClassifierConfig struct {
	Adapter       string  `yaml:"adapter"`
	Model         string  `yaml:"model"`
	Temperature   float64 `yaml:"temperature,omitempty"`
	MaxTokens     int     `yaml:"max_tokens,omitempty"`
	RetryFeedback *bool   `yaml:"retry_feedback,omitempty"`
}

// DiagnosticsConfig controls the per-call diagnostic record.
type DiagnosticsConfig struct {
	File string `yaml:"file,omitempty"`
	Log  bool   `yaml:"log,omitempty"`
}

// LogConfig controls process logging.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Pretty bool   `yaml:"pretty,omitempty"`
	File   string `yaml:"file,omitempty"`
}

const (
	defaultMode                = "keyword"
	defaultMaxAttempts         = 3
	defaultClassifierAdapter   = "openai"
	defaultClassifierModel     = "gpt-4o-mini"
	defaultClassifierMaxTokens = 120
	defaultLogLevel            = "info"
)

// LoadRouterConfig reads router configuration from a YAML file.
func LoadRouterConfig(path string) (*RouterConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RouterConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyRouterDefaults(&cfg)
	return &cfg, nil
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() *RouterConfig {
	cfg := &RouterConfig{}
	applyRouterDefaults(cfg)
	return cfg
}

func applyRouterDefaults(cfg *RouterConfig) {
	if cfg == nil {
		return
	}
	if cfg.Mode == "" {
		cfg.Mode = defaultMode
	}
	if cfg.MaxAttempts == nil {
		cfg.SetMaxAttempts(defaultMaxAttempts)
	}
	if cfg.Classifier.Adapter == "" {
		cfg.Classifier.Adapter = defaultClassifierAdapter
	}
	if cfg.Classifier.Model == "" && cfg.Classifier.Adapter == defaultClassifierAdapter {
		cfg.Classifier.Model = defaultClassifierModel
	}
	if cfg.Classifier.MaxTokens == 0 {
		cfg.Classifier.MaxTokens = defaultClassifierMaxTokens
	}
	if cfg.Classifier.RetryFeedback == nil {
		enabled := true
		cfg.Classifier.RetryFeedback = &enabled
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
}

// Validate reports every configuration defect found.
func (c *RouterConfig) Validate() error {
	if c == nil {
		return errors.New("router config is nil")
	}
	var errs []error
	if c.Mode != "keyword" && c.Mode != "model" {
		errs = append(errs, fmt.Errorf("mode %q must be keyword or model", c.Mode))
	}
	if c.Mode == "model" && c.Attempts() < 1 {
		errs = append(errs, fmt.Errorf("max_attempts must be at least 1 (got %d)", c.Attempts()))
	}
	if c.Classifier.Temperature < 0 || c.Classifier.Temperature > 2 {
		errs = append(errs, fmt.Errorf("classifier.temperature %v out of range [0,2]", c.Classifier.Temperature))
	}
	if c.Classifier.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("classifier.max_tokens must not be negative"))
	}
	if _, err := c.TriggerTable(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Attempts returns the configured attempt bound. An explicit zero is kept
// so Validate can reject it in model mode.
func (c *RouterConfig) Attempts() int {
	if c == nil || c.MaxAttempts == nil {
		return defaultMaxAttempts
	}
	return *c.MaxAttempts
}

// SetMaxAttempts sets the attempt bound.
func (c *RouterConfig) SetMaxAttempts(n int) {
	c.MaxAttempts = &n
}

// RetryFeedbackEnabled reports whether retry prompts quote validation errors.
func (c *RouterConfig) RetryFeedbackEnabled() bool {
	if c == nil || c.Classifier.RetryFeedback == nil {
		return true
	}
	return *c.Classifier.RetryFeedback
}

// TriggerTable converts configured triggers into a keyword table. It returns
// nil when no triggers are configured so the built-in table is used.
func (c *RouterConfig) TriggerTable() (map[skill.Name][]string, error) {
	if c == nil || len(c.Triggers) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(c.Triggers))
	for k := range c.Triggers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := make(map[skill.Name][]string, len(c.Triggers))
	for _, k := range keys {
		name, ok := skill.Parse(strings.TrimSpace(k))
		if !ok {
			return nil, fmt.Errorf("triggers: %q is not a selectable skill", k)
		}
		table[name] = append([]string(nil), c.Triggers[k]...)
	}
	return table, nil
}
