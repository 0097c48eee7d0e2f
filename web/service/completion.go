package service

import (
	"context"
	"fmt"

	"copycheck/config"
	"copycheck/util/common"

	openai "github.com/sashabaranov/go-openai"
)

// Models is the fixed allow-list of completion models the panel may call.
var Models = []string{"gpt-4o-mini", "gpt-4o"}

// DefaultTemperature matches the panel's slider default.
const DefaultTemperature = 0.3

// CompletionService wraps the single external chat-completion call. One
// blocking request per invocation, no retry and no streaming.
type CompletionService struct {
	client *openai.Client
}

// NewCompletionService builds the adapter from the environment
// configuration.
func NewCompletionService() *CompletionService {
	return NewCompletionServiceWith(config.GetOpenAIAPIKey(), config.GetOpenAIBaseURL())
}

// NewCompletionServiceWith builds the adapter against an explicit endpoint.
// Tests point baseURL at a local server.
func NewCompletionServiceWith(apiKey string, baseURL string) *CompletionService {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &CompletionService{client: openai.NewClientWithConfig(cfg)}
}

// IsAllowedModel reports whether model is on the allow-list.
func IsAllowedModel(model string) bool {
	for _, m := range Models {
		if m == model {
			return true
		}
	}
	return false
}

// Complete sends the prompt as a single user-role message and returns the
// first choice's text. Transport and API errors come back with the
// underlying description attached; the caller formats them for display.
func (s *CompletionService) Complete(ctx context.Context, prompt string, model string, temperature float64) (string, error) {
	if !IsAllowedModel(model) {
		return "", common.NewErrorf("model %q is not allowed", model)
	}
	if temperature < 0 {
		temperature = 0
	} else if temperature > 1 {
		temperature = 1
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: float32(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", common.NewError("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
