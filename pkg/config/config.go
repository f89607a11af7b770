package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	GoogleAPIKey    string
	DeepSeekAPIKey  string
	Router          *RouterConfig
	Aliases         *ModelAliases
	ConfigDir       string
}

// Load reads ~/.skillroute/router.yaml (when present), a local .env file and
// the environment. Environment variables take precedence over file values.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration using routerPath instead of the default
// router.yaml. An explicit path must exist.
func LoadFrom(routerPath string) (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg := &Config{
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		DeepSeekAPIKey:  os.Getenv("DEEPSEEK_API_KEY"),
		ConfigDir:       configDir,
	}

	switch {
	case routerPath != "":
		routing, err := LoadRouterConfig(routerPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load router config from %s: %w", routerPath, err)
		}
		cfg.Router = routing
	default:
		defaultPath := filepath.Join(configDir, "router.yaml")
		if _, err := os.Stat(defaultPath); err == nil {
			routing, err := LoadRouterConfig(defaultPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load router config: %w", err)
			}
			cfg.Router = routing
		} else {
			cfg.Router = DefaultRouterConfig()
		}
	}

	if err := applyEnvOverrides(cfg.Router); err != nil {
		return nil, err
	}

	aliases, err := LoadAliasesWithFallback(filepath.Join(configDir, "models.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load model aliases: %w", err)
	}
	cfg.Aliases = aliases

	return cfg, nil
}

// HasAdapter returns true if the adapter can be constructed with the
// configured credentials.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "deepseek":
		return c.DeepSeekAPIKey != ""
	case "mock":
		return true
	default:
		return false
	}
}

// loadDotEnv populates unset environment variables from path. A missing file
// is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *RouterConfig) error {
	if cfg == nil {
		return nil
	}
	if mode := os.Getenv("SKILLROUTE_MODE"); mode != "" {
		cfg.Mode = mode
	}
	if raw := os.Getenv("SKILLROUTE_MAX_ATTEMPTS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("SKILLROUTE_MAX_ATTEMPTS: %w", err)
		}
		cfg.SetMaxAttempts(n)
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" && cfg.Classifier.Adapter == "openai" {
		cfg.Classifier.Model = model
	}
	return nil
}

// WriteRouterConfig writes cfg as YAML to path.
func WriteRouterConfig(path string, cfg *RouterConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".skillroute"), nil
}
