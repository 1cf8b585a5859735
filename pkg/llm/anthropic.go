package llm

import (
	"context"
	"net/http"

	"github.com/coursewise/coursewise/pkg/models"
)

const anthropicVersion = "2023-06-01"

// Anthropic calls the Anthropic /v1/messages endpoint.
type Anthropic struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

// NewAnthropic creates an Anthropic completer. A nil client uses http.DefaultClient.
func NewAnthropic(url, apiKey, model string, client *http.Client) *Anthropic {
	if url == "" {
		url = "https://api.anthropic.com"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Anthropic{url: url, apiKey: apiKey, model: model, client: client}
}

// Complete implements Completer.
func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	body := models.AnthropicRequest{
		Model:       a.model,
		System:      req.System,
		Messages:    []models.ChatMessage{{Role: models.RoleUser, Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: &req.Temperature,
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = 1024
	}

	var resp models.AnthropicResponse
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}
	if err := postJSON(ctx, a.client, ProviderAnthropic, a.url, "/v1/messages", headers, body, &resp); err != nil {
		return "", err
	}
	if resp.Usage != nil {
		observeUsage(ProviderAnthropic, resp.Usage.ToUsage())
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
