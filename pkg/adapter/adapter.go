package adapter

import (
	"context"
)

// Adapter defines the interface for LLM provider adapters.
type Adapter interface {
	// Generate sends a request to the model and returns its text output.
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// DefaultModel returns the first model an adapter advertises, or "".
func DefaultModel(a Adapter) string {
	if a == nil {
		return ""
	}
	models := a.Models()
	if len(models) == 0 {
		return ""
	}
	return models[0]
}
