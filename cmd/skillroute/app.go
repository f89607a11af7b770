package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/zen-systems/skillroute/pkg/adapter"
	"github.com/zen-systems/skillroute/pkg/config"
	"github.com/zen-systems/skillroute/pkg/diagnostics"
	"github.com/zen-systems/skillroute/pkg/logging"
	"github.com/zen-systems/skillroute/pkg/router"
	"github.com/zen-systems/skillroute/pkg/skill"
)

type app struct {
	configFile      string
	modeFlag        string
	attemptsFlag    int
	adapterFlag     string
	modelFlag       string
	skillsDirFlag   string
	diagnosticsFlag string
	verbose         bool

	// newAdapters builds the available adapters; tests replace it.
	newAdapters func(ctx context.Context, cfg *config.Config) (map[string]adapter.Adapter, error)
}

func newApp() *app {
	return &app{newAdapters: createAdapters}
}

// session is everything one command invocation needs.
type session struct {
	cfg     *config.Config
	logger  *logging.Logger
	store   *skill.Store
	router  *router.Router
	closers []func() error
}

func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

// loadConfig reads configuration and applies command-line overrides.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFrom(a.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	rc := cfg.Router
	if a.modeFlag != "" {
		rc.Mode = a.modeFlag
	}
	if cmd.Flags().Changed("attempts") {
		rc.SetMaxAttempts(a.attemptsFlag)
	}
	if a.adapterFlag != "" && a.adapterFlag != rc.Classifier.Adapter {
		rc.Classifier.Adapter = a.adapterFlag
		rc.Classifier.Model = ""
	}
	if a.modelFlag != "" {
		rc.Classifier.Model = a.modelFlag
	}
	if a.skillsDirFlag != "" {
		rc.SkillsDir = a.skillsDirFlag
	}
	if a.diagnosticsFlag != "" {
		rc.Diagnostics.File = a.diagnosticsFlag
	}
	if a.verbose {
		rc.Log.Level = "debug"
	}
	if err := rc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (a *app) newLogger(cfg *config.Config, stderr io.Writer) (*logging.Logger, error) {
	return logging.New(logging.Config{
		Level:   cfg.Router.Log.Level,
		Pretty:  cfg.Router.Log.Pretty,
		File:    cfg.Router.Log.File,
		Console: stderr,
	})
}

func openStore(cfg *config.Config, logger zerolog.Logger) *skill.Store {
	if dir := cfg.Router.SkillsDir; dir != "" {
		return skill.OpenDir(dir, logger)
	}
	return skill.Embedded(logger)
}

// openSession loads config, logging and skills. withRouter also builds the
// router and its diagnostics sinks.
func (a *app) openSession(cmd *cobra.Command, withRouter bool) (*session, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := a.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, logger: logger, closers: []func() error{logger.Close}}
	s.store = openStore(cfg, logger.Logger)

	if !withRouter {
		return s, nil
	}
	r, err := a.buildRouter(cmd.Context(), s)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.router = r
	return s, nil
}

func (a *app) buildRouter(ctx context.Context, s *session) (*router.Router, error) {
	rc := s.cfg.Router
	logger := s.logger.Logger

	table, err := rc.TriggerTable()
	if err != nil {
		return nil, err
	}
	keyword, err := router.NewKeywordClassifier(table)
	if err != nil {
		return nil, err
	}

	opts := []router.RouterOption{
		router.WithLogger(logger),
		router.WithKeywordClassifier(keyword),
	}

	if router.Mode(rc.Mode) == router.ModeModel {
		mc, err := a.buildModelClassifier(ctx, s)
		if err != nil {
			return nil, err
		}
		opts = append(opts, router.WithModelClassifier(mc))
	}

	var sinks diagnostics.Multi
	if rc.Diagnostics.Log {
		sinks = append(sinks, diagnostics.NewLogSink(logger))
	}
	if rc.Diagnostics.File != "" {
		fileSink, err := diagnostics.NewFileSink(rc.Diagnostics.File, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open diagnostics file: %w", err)
		}
		s.closers = append(s.closers, fileSink.Close)
		sinks = append(sinks, fileSink)
	}
	if len(sinks) > 0 {
		opts = append(opts, router.WithSink(sinks))
	}

	return router.NewRouter(s.store, opts...), nil
}

func (a *app) buildModelClassifier(ctx context.Context, s *session) (*router.ModelClassifier, error) {
	rc := s.cfg.Router
	adapters, err := a.newAdapters(ctx, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapters: %w", err)
	}
	target, ok := adapters[rc.Classifier.Adapter]
	if !ok {
		return nil, fmt.Errorf("adapter %q not available (is its API key set?)", rc.Classifier.Adapter)
	}

	return router.NewModelClassifier(target,
		router.WithModel(s.cfg.Aliases.Resolve(rc.Classifier.Model)),
		router.WithTemperature(rc.Classifier.Temperature),
		router.WithMaxTokens(rc.Classifier.MaxTokens),
		router.WithRetryFeedback(rc.RetryFeedbackEnabled()),
		router.WithClassifierLogger(s.logger.Logger),
	)
}

func createAdapters(ctx context.Context, cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := make(map[string]adapter.Adapter)

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		adapters["anthropic"] = a
	}

	if cfg.OpenAIAPIKey != "" {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		adapters["openai"] = a
	}

	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(ctx, cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		adapters["google"] = a
	}

	if cfg.DeepSeekAPIKey != "" {
		a, err := adapter.NewDeepSeekAdapter(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek adapter: %w", err)
		}
		adapters["deepseek"] = a
	}

	adapters["mock"] = adapter.NewMockAdapter()

	return adapters, nil
}

// readGoal joins args, or reads stdin when there are none.
func readGoal(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func formatList(items []string) string {
	return strings.Join(items, ", ")
}
