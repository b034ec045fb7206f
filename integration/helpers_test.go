package integration_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/kardolus/textgen/config"
	"github.com/kardolus/textgen/test"
	"github.com/kardolus/textgen/types"
)

const (
	expectedToken    = "valid-api-key"
	rateLimitedToken = "rate-limited-key"
)

// completionServer mimics the completions endpoint and remembers what it was sent.
type completionServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []types.CompletionsRequest
}

func newCompletionServer() *completionServer {
	s := &completionServer{}
	mux := http.NewServeMux()
	mux.HandleFunc(config.New().ReadDefaults().CompletionsPath, s.postCompletions)
	s.Server = httptest.NewServer(mux)
	return s
}

func (s *completionServer) received() []types.CompletionsRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.CompletionsRequest(nil), s.requests...)
}

func (s *completionServer) postCompletions(w http.ResponseWriter, r *http.Request) {
	if err := validateRequest(w, r, http.MethodPost); err != nil {
		fmt.Printf("invalid request: %s\n", err.Error())
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var request types.CompletionsRequest
	if err := json.Unmarshal(body, &request); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.requests = append(s.requests, request)
	s.mu.Unlock()

	token, err := bearerToken(r)
	switch {
	case err == nil && token == rateLimitedToken:
		writeFile(w, http.StatusTooManyRequests, "rate_limit.json")
	case err != nil || token != expectedToken:
		writeFile(w, http.StatusUnauthorized, "error.json")
	default:
		writeFile(w, http.StatusOK, "completions.json")
	}
}

func writeFile(w http.ResponseWriter, status int, fileName string) {
	response, err := test.FileToBytes(fileName)
	if err != nil {
		fmt.Printf("error reading %s: %s\n", fileName, err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing Authorization header")
	}

	splitToken := strings.Split(authHeader, "Bearer ")
	if len(splitToken) != 2 {
		return "", errors.New("malformed Authorization header")
	}

	return splitToken[1], nil
}

func validateRequest(w http.ResponseWriter, r *http.Request, allowedMethod string) error {
	if r.Method != allowedMethod {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return errors.New("method not allowed")
	}

	if r.Header.Get("Content-Type") != "application/json" {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("bad request")
	}

	return nil
}

type fixedChooser struct {
	choice string
}

func (f fixedChooser) Choose(_ context.Context, candidates []string) (string, error) {
	for _, candidate := range candidates {
		if candidate == f.choice {
			return candidate, nil
		}
	}
	return "", types.ErrCancelled
}
