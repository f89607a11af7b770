package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ModelAliases maps short names to classifier models and lists the models
// each adapter accepts.
type ModelAliases struct {
	Aliases   map[string]string   `yaml:"aliases"`
	Providers map[string][]string `yaml:"providers"`
}

// LoadAliases reads model aliases from a YAML file.
func LoadAliases(path string) (*ModelAliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var aliases ModelAliases
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, err
	}

	if aliases.Aliases == nil {
		aliases.Aliases = make(map[string]string)
	}
	if aliases.Providers == nil {
		aliases.Providers = make(map[string][]string)
	}

	return &aliases, nil
}

// LoadAliasesWithFallback loads aliases from path, falling back to
// DefaultAliases when the file does not exist.
func LoadAliasesWithFallback(path string) (*ModelAliases, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return LoadAliases(path)
		}
	}
	return DefaultAliases(), nil
}

// Resolve returns the canonical model name for an alias.
// If the input is not an alias, it returns the input unchanged.
func (a *ModelAliases) Resolve(modelOrAlias string) string {
	if a == nil || a.Aliases == nil {
		return modelOrAlias
	}
	if canonical, ok := a.Aliases[modelOrAlias]; ok {
		return canonical
	}
	return modelOrAlias
}

// ValidateModel checks if a model exists in the provider's list.
func (a *ModelAliases) ValidateModel(adapter, model string) error {
	if a == nil || a.Providers == nil {
		return nil
	}

	models, ok := a.Providers[adapter]
	if !ok {
		return fmt.Errorf("unknown adapter %q", adapter)
	}

	for _, m := range models {
		if m == model {
			return nil
		}
	}

	return fmt.Errorf("model %q not in %s provider list", model, adapter)
}

// ListAliases returns the alias names in sorted order.
func (a *ModelAliases) ListAliases() []string {
	if a == nil {
		return nil
	}
	names := make([]string, 0, len(a.Aliases))
	for k := range a.Aliases {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ListProviders returns a sorted list of provider names.
func (a *ModelAliases) ListProviders() []string {
	if a == nil || a.Providers == nil {
		return nil
	}
	providers := make([]string, 0, len(a.Providers))
	for p := range a.Providers {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// GetProviderModels returns the models for a given provider.
func (a *ModelAliases) GetProviderModels(provider string) []string {
	if a == nil || a.Providers == nil {
		return nil
	}
	return a.Providers[provider]
}

// ValidateClassifier checks that the configured classifier model, after
// alias resolution, belongs to the configured adapter.
func (a *ModelAliases) ValidateClassifier(cfg *RouterConfig) error {
	if a == nil || cfg == nil || cfg.Classifier.Model == "" {
		return nil
	}
	model := a.Resolve(cfg.Classifier.Model)
	if err := a.ValidateModel(cfg.Classifier.Adapter, model); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	return nil
}

// DefaultAliases returns the default model aliases configuration.
func DefaultAliases() *ModelAliases {
	return &ModelAliases{
		Aliases: map[string]string{
			"fast":    "gpt-4o-mini",
			"quality": "gpt-4o",
			"haiku":   "claude-3-5-haiku-latest",
			"sonnet":  "claude-sonnet-4-20250514",
			"flash":   "gemini-2.0-flash",
			"cheap":   "deepseek-chat",
			"offline": "mock-1",
		},
		Providers: map[string][]string{
			"openai":    {"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini"},
			"anthropic": {"claude-3-5-haiku-latest", "claude-sonnet-4-20250514"},
			"google":    {"gemini-2.0-flash", "gemini-2.5-flash"},
			"deepseek":  {"deepseek-chat", "deepseek-reasoner"},
			"mock":      {"mock-1"},
		},
	}
}
