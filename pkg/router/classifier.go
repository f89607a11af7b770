package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zen-systems/skillroute/pkg/adapter"
	"github.com/zen-systems/skillroute/pkg/skill"
)

const (
	// DefaultMaxAttempts bounds model classification retries.
	DefaultMaxAttempts = 3
	// DefaultClassifierMaxTokens keeps the classification reply small.
	DefaultClassifierMaxTokens = 120
)

// Classifier maps a goal to a routing result. Implementations never return
// an error for classification problems; they report them in the Result.
type Classifier interface {
	Classify(ctx context.Context, goal string, maxAttempts int) *Result
}

// ModelClassifier asks an inference endpoint to pick skills and accepts
// only replies that pass ValidateReply.
type ModelClassifier struct {
	adapter       adapter.Adapter
	model         string
	temperature   float64
	maxTokens     int
	retryFeedback bool
	logger        zerolog.Logger
}

// ModelOption configures a ModelClassifier.
type ModelOption func(*ModelClassifier)

// WithModel sets the model name sent to the adapter.
func WithModel(model string) ModelOption {
	return func(c *ModelClassifier) {
		c.model = model
	}
}

// WithTemperature overrides the sampling temperature (default 0).
func WithTemperature(t float64) ModelOption {
	return func(c *ModelClassifier) {
		c.temperature = t
	}
}

// WithMaxTokens overrides the reply token bound.
func WithMaxTokens(n int) ModelOption {
	return func(c *ModelClassifier) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithRetryFeedback controls whether a retry prompt quotes the previous
// validation error.
func WithRetryFeedback(enabled bool) ModelOption {
	return func(c *ModelClassifier) {
		c.retryFeedback = enabled
	}
}

// WithClassifierLogger sets the classifier logger.
func WithClassifierLogger(logger zerolog.Logger) ModelOption {
	return func(c *ModelClassifier) {
		c.logger = logger
	}
}

// NewModelClassifier creates a classifier backed by a.
func NewModelClassifier(a adapter.Adapter, opts ...ModelOption) (*ModelClassifier, error) {
	if a == nil {
		return nil, ErrNoClassifier
	}
	c := &ModelClassifier{
		adapter:       a,
		maxTokens:     DefaultClassifierMaxTokens,
		retryFeedback: true,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == "" {
		c.model = adapter.DefaultModel(a)
	}
	if c.temperature < 0 || c.temperature > 2 {
		return nil, fmt.Errorf("classifier temperature %v out of range", c.temperature)
	}
	c.logger = c.logger.With().Str("component", "model-classifier").Str("adapter", a.Name()).Logger()
	return c, nil
}

type attemptState int

const (
	stateAttempting attemptState = iota
	stateSucceeded
	stateExhausted
)

// Classify runs up to maxAttempts sequential attempts. The first valid reply
// wins; if none is valid the result is not ok and selects nothing.
func (c *ModelClassifier) Classify(ctx context.Context, goal string, maxAttempts int) *Result {
	res := &Result{
		Adapter:  c.adapter.Name(),
		Model:    c.model,
		Selected: []skill.Name{},
	}
	if maxAttempts < 1 {
		res.Notes = ErrInvalidMaxAttempts.Error()
		return res
	}
	if strings.TrimSpace(goal) == "" {
		res.Notes = "goal must be a non-empty string"
		return res
	}
	res.Attempts = make([]AttemptRecord, 0, maxAttempts)

	var (
		state   = stateAttempting
		attempt int
		pick    *Pick
		lastErr error
	)
	for state == stateAttempting {
		attempt++
		feedback := ""
		if c.retryFeedback && lastErr != nil {
			feedback = lastErr.Error()
		}

		start := time.Now()
		p, err := c.attempt(ctx, goal, feedback)
		record := AttemptRecord{
			Attempt:        attempt,
			Succeeded:      err == nil,
			DurationMillis: time.Since(start).Milliseconds(),
		}
		if err != nil {
			record.Error = err.Error()
			record.Transient = adapter.IsTransient(err)
		}
		res.Attempts = append(res.Attempts, record)

		if err == nil {
			pick = p
			state = stateSucceeded
			continue
		}
		lastErr = err
		c.logAttemptFailure(attempt, maxAttempts, err)
		if attempt >= maxAttempts {
			state = stateExhausted
		}
	}

	res.AttemptsUsed = attempt
	if state == stateExhausted {
		res.OK = false
		res.Selected = []skill.Name{}
		res.Confidence = 0
		res.Notes = fmt.Sprintf("classification failed after %d attempt(s): %v", attempt, lastErr)
		return res
	}

	res.OK = true
	res.Selected = pick.Skills
	res.Confidence = pick.Confidence
	res.Notes = pick.Notes
	return res
}

func (c *ModelClassifier) attempt(ctx context.Context, goal, feedback string) (*Pick, error) {
	resp, err := c.adapter.Generate(ctx, adapter.Request{
		Model:       c.model,
		System:      classifierSystem,
		Prompt:      BuildClassifierPrompt(goal, feedback),
		Temperature: adapter.Float(c.temperature),
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("model call failed: %w", err)
	}
	if resp == nil {
		return nil, errors.New("model call returned no response")
	}
	return ValidateReply(resp.Content)
}

func (c *ModelClassifier) logAttemptFailure(attempt, maxAttempts int, err error) {
	event := c.logger.Debug()
	if !IsValidationError(err) {
		event = c.logger.Warn()
	}
	event.Err(err).
		Int("attempt", attempt).
		Int("max_attempts", maxAttempts).
		Msg("classification attempt rejected")
}
