package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kardolus/textgen/config"
	"github.com/kardolus/textgen/types"
)

const (
	contentType              = "application/json"
	errFailedToRead          = "%w: failed to read response: %w"
	errFailedToCreateRequest = "failed to create request: %w"
	errFailedToMakeRequest   = "%w: failed to make request: %w"
	errHTTP                  = "%w: http status %d: %s"
	errHTTPStatus            = "%w: http status: %d"
	headerContentType        = "Content-Type"
	maxErrorBodyBytes        = 8 * 1024
)

type Caller interface {
	Post(ctx context.Context, url string, body []byte) ([]byte, error)
}

type RestCaller struct {
	client *http.Client
	config config.Config
}

// Ensure RestCaller implements Caller interface
var _ Caller = &RestCaller{}

func New(cfg config.Config) *RestCaller {
	client := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		client.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	return &RestCaller{
		client: client,
		config: cfg,
	}
}

type CallerFactory func(cfg config.Config) Caller

func RealCallerFactory(cfg config.Config) Caller {
	return New(cfg)
}

// Post sends one request and classifies failures: transport problems wrap
// types.ErrNetwork, 401/403 wrap types.ErrAuth, 429 wraps types.ErrRateLimited
// and any other non-2xx status wraps types.ErrService.
func (r *RestCaller) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := r.newRequest(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf(errFailedToCreateRequest, err)
	}

	response, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errFailedToMakeRequest, types.ErrNetwork, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, statusError(response)
	}

	result, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf(errFailedToRead, types.ErrNetwork, err)
	}

	return result, nil
}

func (r *RestCaller) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}

	if r.config.APIKey != "" {
		req.Header.Set(r.config.AuthHeader, r.config.AuthTokenPrefix+r.config.APIKey)
	}
	req.Header.Set(headerContentType, contentType)

	return req, nil
}

func statusError(response *http.Response) error {
	kind := Classify(response.StatusCode)

	errorResponse, err := io.ReadAll(io.LimitReader(response.Body, maxErrorBodyBytes))
	if err != nil {
		return fmt.Errorf(errHTTPStatus, kind, response.StatusCode)
	}

	var errorData types.ErrorResponse
	if err := json.Unmarshal(errorResponse, &errorData); err != nil || errorData.Error.Message == "" {
		return fmt.Errorf(errHTTPStatus, kind, response.StatusCode)
	}

	return fmt.Errorf(errHTTP, kind, response.StatusCode, errorData.Error.Message)
}

// Classify maps a non-2xx status code onto the error taxonomy.
func Classify(statusCode int) error {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return types.ErrAuth
	case http.StatusTooManyRequests:
		return types.ErrRateLimited
	default:
		return types.ErrService
	}
}

// IsTransient reports whether err is worth retrying by hand.
func IsTransient(err error) bool {
	return errors.Is(err, types.ErrNetwork) || errors.Is(err, types.ErrRateLimited)
}
