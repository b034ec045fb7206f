package client

import (
	"context"
	"fmt"

	"github.com/kardolus/textgen/config"
	"github.com/kardolus/textgen/http"
	"github.com/kardolus/textgen/types"
	"go.uber.org/zap"
)

const (
	ErrEmptyResponse       = "empty response"
	errUnsupportedProvider = "unsupported provider: %v"
)

// Completer is what a generation needs from the completion service.
type Completer interface {
	Complete(ctx context.Context, request types.Request) (string, error)
}

type Provider interface {
	Complete(ctx context.Context, request types.Request, cfg config.Config) (string, error)
}

type Client struct {
	Config   config.Config
	provider Provider
	logger   *zap.SugaredLogger
}

// Ensure Client implements Completer interface
var _ Completer = &Client{}

func New(callerFactory http.CallerFactory, cfg config.Config) (*Client, error) {
	cfg, err := config.ResolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	var provider Provider

	switch cfg.Provider {
	case config.OpenAI, "":
		provider = &OpenAIProvider{caller: callerFactory(cfg)}
	case config.Cohere:
		provider = newCohereProvider(cfg)
	default:
		return nil, fmt.Errorf(errUnsupportedProvider, cfg.Provider)
	}

	return NewWithProvider(cfg, provider), nil
}

func NewWithProvider(cfg config.Config, provider Provider) *Client {
	return &Client{
		Config:   cfg,
		provider: provider,
		logger:   zap.NewNop().Sugar(),
	}
}

func (c *Client) WithLogger(logger *zap.SugaredLogger) *Client {
	c.logger = logger
	return c
}

// Complete sends request in a single round trip and returns the generated
// text, which may be empty. The api key and engine are checked first so a
// misconfigured client never reaches the network. Failures are not retried.
func (c *Client) Complete(ctx context.Context, request types.Request) (string, error) {
	check := c.Config
	check.Engine = request.Engine
	if err := config.Validate(check); err != nil {
		return "", err
	}

	c.logger.Debugf("requesting completion: provider=%s engine=%s max_tokens=%d prompt_chars=%d",
		c.Config.Provider, request.Engine, request.MaxTokens, len(request.Prompt))

	text, err := c.provider.Complete(ctx, request, c.Config)
	if err != nil {
		return "", err
	}

	c.logger.Debugf("received completion: chars=%d", len(text))
	return text, nil
}
