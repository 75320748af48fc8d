package llm

import (
	"context"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/integrail/ollama-client/pkg/client"
)

const DefaultModel = "deepseek-coder:6.7b"

func NewOllama(ollama *client.Client) Client {
	return &ollamaClient{
		ollama: ollama,
	}
}

type ollamaClient struct {
	ollama *client.Client
}

func (o *ollamaClient) Generate(ctx context.Context, request GenerateRequest) (*GenerateResponse, error) {
	req := client.NewGenerationRequest(
		lo.If(request.Model != "", request.Model).Else(DefaultModel),
		request.Prompt,
		request.Options,
	)
	res, err := o.ollama.Generate(ctx, req, request.MaxRetries)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to process prompt with model %q", req.Model)
	}
	text, found := res.Text()
	return &GenerateResponse{
		Response: text,
		Empty:    !found,
		Attempts: res.Attempts,
	}, nil
}
