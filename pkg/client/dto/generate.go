package dto

import "time"

type GenerateRequest struct {
	Model   string             `json:"model" yaml:"model"`     // model identifier, e.g. deepseek-coder:6.7b (required)
	Prompt  string             `json:"prompt" yaml:"prompt"`   // prompt to continue
	Stream  bool               `json:"stream" yaml:"stream"`   // always false, streaming responses are not consumed
	Options map[string]float64 `json:"options" yaml:"options"` // sampling options (temperature, num_predict, ...)
}

type GenerateResponse struct {
	Model              string    `json:"model,omitempty" yaml:"model,omitempty"`
	CreatedAt          time.Time `json:"created_at,omitempty" yaml:"createdAt,omitempty"`
	Response           *string   `json:"response,omitempty" yaml:"response,omitempty"` // generated text, nil when the server omitted it
	Done               bool      `json:"done,omitempty" yaml:"done,omitempty"`
	DoneReason         string    `json:"done_reason,omitempty" yaml:"doneReason,omitempty"`
	TotalDuration      int64     `json:"total_duration,omitempty" yaml:"totalDuration,omitempty"` // nanoseconds
	PromptEvalCount    int       `json:"prompt_eval_count,omitempty" yaml:"promptEvalCount,omitempty"`
	EvalCount          int       `json:"eval_count,omitempty" yaml:"evalCount,omitempty"`
	EvalDuration       int64     `json:"eval_duration,omitempty" yaml:"evalDuration,omitempty"` // nanoseconds
	LoadDuration       int64     `json:"load_duration,omitempty" yaml:"loadDuration,omitempty"`
	PromptEvalDuration int64     `json:"prompt_eval_duration,omitempty" yaml:"promptEvalDuration,omitempty"`
}
