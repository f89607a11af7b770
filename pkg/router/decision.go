package router

import (
	"github.com/zen-systems/skillroute/pkg/skill"
)

// Mode selects the classifier used for a routing call.
type Mode string

const (
	ModeKeyword Mode = "keyword"
	ModeModel   Mode = "model"
)

// Valid reports whether m names a known mode.
func (m Mode) Valid() bool {
	return m == ModeKeyword || m == ModeModel
}

// AttemptRecord captures one model classification attempt.
type AttemptRecord struct {
	Attempt        int    `json:"attempt"`
	Succeeded      bool   `json:"succeeded"`
	Error          string `json:"error,omitempty"`
	Transient      bool   `json:"transient,omitempty"`
	DurationMillis int64  `json:"duration_ms"`
}

// Result is the outcome of one routing call. When OK is false, Selected is
// empty and the composed block holds the always-on skill only.
type Result struct {
	ID             string          `json:"id,omitempty"`
	Mode           Mode            `json:"mode,omitempty"`
	OK             bool            `json:"ok"`
	Selected       []skill.Name    `json:"selected_skills"`
	Confidence     float64         `json:"confidence"`
	Notes          string          `json:"notes"`
	AttemptsUsed   int             `json:"attempts_used"`
	Attempts       []AttemptRecord `json:"attempts,omitempty"`
	Adapter        string          `json:"adapter,omitempty"`
	Model          string          `json:"model,omitempty"`
	DurationMillis int64           `json:"duration_ms"`
}

// SelectedStrings returns the selected names as plain strings.
func (r *Result) SelectedStrings() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.Selected))
	for i, n := range r.Selected {
		out[i] = string(n)
	}
	return out
}
