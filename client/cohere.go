package client

import (
	"context"
	"errors"
	"fmt"

	co "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	core "github.com/cohere-ai/cohere-go/v2/core"
	"github.com/kardolus/textgen/config"
	"github.com/kardolus/textgen/http"
	"github.com/kardolus/textgen/types"
)

type CohereProvider struct {
	client *cohereclient.Client
}

var _ Provider = (*CohereProvider)(nil)

func newCohereProvider(cfg config.Config) *CohereProvider {
	return &CohereProvider{
		client: cohereclient.NewClient(cohereclient.WithToken(cfg.APIKey)),
	}
}

func (p *CohereProvider) Complete(ctx context.Context, request types.Request, _ config.Config) (string, error) {
	req := &co.ChatRequest{
		Message:          request.Prompt,
		Model:            &request.Engine,
		MaxTokens:        &request.MaxTokens,
		Temperature:      &request.Temperature,
		FrequencyPenalty: &request.FrequencyPenalty,
	}

	res, err := p.client.Chat(ctx, req)
	if err != nil {
		return "", classifyCohereError(err)
	}

	return res.Text, nil
}

// classifyCohereError maps SDK errors onto the same taxonomy as the REST caller.
func classifyCohereError(err error) error {
	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %w", http.Classify(apiErr.StatusCode), err)
	}
	return fmt.Errorf("%w: %w", types.ErrNetwork, err)
}
