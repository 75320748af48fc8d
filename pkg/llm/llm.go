package llm

import (
	"context"
)

type Client interface {
	Generate(ctx context.Context, request GenerateRequest) (*GenerateResponse, error)
}

type GenerateRequest struct {
	Prompt     string             `json:"prompt" yaml:"prompt"`
	Model      string             `json:"model" yaml:"model"`
	MaxRetries int                `json:"maxRetries" yaml:"maxRetries"`
	Options    map[string]float64 `json:"options,omitempty" yaml:"options,omitempty"`
}

type GenerateResponse struct {
	Response string `json:"response" yaml:"response"`
	Empty    bool   `json:"empty" yaml:"empty"` // server answered without a response field
	Attempts int    `json:"attempts" yaml:"attempts"`
}
