// Package llm talks to the language model providers behind the assistant.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/coursewise/coursewise/pkg/config"
)

// Provider types.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("empty completion")

// Request is a single-turn completion request.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer produces model text for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// StatusError is a non-2xx answer from an HTTP provider.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 256 {
		body = body[:256]
	}
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, strings.TrimSpace(body))
}

// New builds the Completer described by cfg, wrapped in a circuit breaker
// when one is enabled.
func New(ctx context.Context, cfg config.AssistantConfig) (Completer, error) {
	var (
		c   Completer
		err error
	)
	switch cfg.Provider {
	case ProviderOpenAI, "":
		c = NewOpenAI(cfg.URL, cfg.APIKey, cfg.Model, http.DefaultClient)
	case ProviderAnthropic:
		c = NewAnthropic(cfg.URL, cfg.APIKey, cfg.Model, http.DefaultClient)
	case ProviderGemini:
		c, err = NewGemini(ctx, cfg.URL, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Breaker.Enabled {
		c = NewBreaker(c, cfg.Breaker)
	}
	return c, nil
}
