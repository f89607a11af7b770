package adapter

// Request is a single completion call.
type Request struct {
	Model  string
	System string
	Prompt string
	// Temperature is sent only when non-nil.
	Temperature *float64
	// MaxTokens bounds the completion; zero uses the adapter default.
	MaxTokens int
}

// Usage captures normalized token usage.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response wraps an adapter output and optional usage data.
type Response struct {
	Content string
	Adapter string
	Model   string
	Usage   *Usage
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

const defaultMaxTokens = 4096

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
