package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kardolus/textgen/config"
	"github.com/kardolus/textgen/http"
	"github.com/kardolus/textgen/types"
)

// OpenAIProvider talks to a legacy text completions endpoint.
type OpenAIProvider struct {
	caller http.Caller
}

var _ Provider = (*OpenAIProvider)(nil)

func (p *OpenAIProvider) Complete(ctx context.Context, request types.Request, cfg config.Config) (string, error) {
	body, err := json.Marshal(types.CompletionsRequest{
		Model:            request.Engine,
		Prompt:           request.Prompt,
		MaxTokens:        request.MaxTokens,
		Temperature:      request.Temperature,
		FrequencyPenalty: request.FrequencyPenalty,
	})
	if err != nil {
		return "", err
	}

	raw, err := p.caller.Post(ctx, getEndpoint(cfg), body)
	if err != nil {
		return "", err
	}

	var response types.CompletionsResponse
	if err := processResponse(raw, &response); err != nil {
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", nil
	}

	return response.Choices[0].Text, nil
}

func getEndpoint(cfg config.Config) string {
	return cfg.URL + cfg.CompletionsPath
}

func processResponse(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: %w", types.ErrService, errors.New(ErrEmptyResponse))
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: failed to decode response: %w", types.ErrService, err)
	}

	return nil
}
