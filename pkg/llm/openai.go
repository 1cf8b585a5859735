package llm

import (
	"context"
	"net/http"

	"github.com/coursewise/coursewise/pkg/models"
)

// OpenAI calls an OpenAI-compatible /v1/chat/completions endpoint.
type OpenAI struct {
	url    string
	apiKey string
	model  string
	client *http.Client
}

// NewOpenAI creates an OpenAI completer. A nil client uses http.DefaultClient.
func NewOpenAI(url, apiKey, model string, client *http.Client) *OpenAI {
	if url == "" {
		url = "https://api.openai.com"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAI{url: url, apiKey: apiKey, model: model, client: client}
}

// Complete implements Completer.
func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]models.ChatMessage, 0, 2)
	if req.System != "" {
		msgs = append(msgs, models.ChatMessage{Role: models.RoleSystem, Content: req.System})
	}
	msgs = append(msgs, models.ChatMessage{Role: models.RoleUser, Content: req.Prompt})

	body := models.ChatCompletionRequest{
		Model:       o.model,
		Messages:    msgs,
		Temperature: &req.Temperature,
	}
	if req.MaxTokens > 0 {
		body.MaxTokens = &req.MaxTokens
	}

	var resp models.ChatCompletionResponse
	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	if err := postJSON(ctx, o.client, ProviderOpenAI, o.url, "/v1/chat/completions", headers, body, &resp); err != nil {
		return "", err
	}
	observeUsage(ProviderOpenAI, resp.Usage)
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
