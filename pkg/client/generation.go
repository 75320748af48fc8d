package client

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/integrail/ollama-client/pkg/client/dto"
)

const (
	DefaultBaseURL     = "http://localhost:11434"
	DefaultTemperature = 0.7
	DefaultNumPredict  = 200

	OptionTemperature = "temperature"
	OptionNumPredict  = "num_predict"
)

type Config struct {
	BaseURL string `json:"baseURL" yaml:"baseURL"` // service root (default: http://localhost:11434)
}

func (c Config) baseURL() string {
	return strings.TrimSuffix(lo.If(c.BaseURL != "", c.BaseURL).Else(DefaultBaseURL), "/")
}

type GenerationRequest struct {
	Model   string
	Prompt  string
	Options map[string]float64
}

func DefaultOptions() map[string]float64 {
	return map[string]float64{
		OptionTemperature: DefaultTemperature,
		OptionNumPredict:  DefaultNumPredict,
	}
}

// NewGenerationRequest builds a request with default sampling options, overridden by options.
func NewGenerationRequest(model, prompt string, options ...map[string]float64) GenerationRequest {
	return GenerationRequest{
		Model:   model,
		Prompt:  prompt,
		Options: lo.Assign(append([]map[string]float64{DefaultOptions()}, options...)...),
	}
}

func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Model) == "" {
		return errors.Errorf("model must not be empty")
	}
	return nil
}

func (r GenerationRequest) payload() dto.GenerateRequest {
	return dto.GenerateRequest{
		Model:   r.Model,
		Prompt:  r.Prompt,
		Stream:  false,
		Options: lo.Assign(DefaultOptions(), r.Options),
	}
}

// Result is a successful generation. A nil Response means the server answered 200
// without a response field.
type Result struct {
	Response *string
	Attempts int
	Meta     dto.GenerateResponse
}

func (r *Result) Text() (string, bool) {
	if r == nil || r.Response == nil {
		return "", false
	}
	return *r.Response, true
}
