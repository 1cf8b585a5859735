package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/coursewise/coursewise/pkg/logging"
	"github.com/coursewise/coursewise/pkg/metrics"
	"github.com/coursewise/coursewise/pkg/models"
)

// postJSON sends body to baseURL+path and decodes a 2xx response into out.
func postJSON(ctx context.Context, client *http.Client, provider, baseURL, path string, headers map[string]string, body, out any) error {
	target, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return fmt.Errorf("invalid provider URL: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String()+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Provider: provider, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// observeUsage records provider-reported token counts. u may be nil.
func observeUsage(provider string, u *models.Usage) {
	if u == nil {
		return
	}
	metrics.ModelTokens.WithLabelValues(provider, "prompt").Add(float64(u.PromptTokens))
	metrics.ModelTokens.WithLabelValues(provider, "completion").Add(float64(u.CompletionTokens))
	logging.Debug().
		Str("provider", provider).
		Int("prompt_tokens", u.PromptTokens).
		Int("completion_tokens", u.CompletionTokens).
		Int("total_tokens", u.TotalTokens).
		Msg("model usage")
}
