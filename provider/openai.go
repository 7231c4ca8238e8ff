package provider

import (
	"context"
	"math"
	"strings"

	"github.com/dawalabs/medglot"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client using OpenAI's chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey  string // OpenAI API key
	Model   string // model to use (default: "gpt-4o")
	BaseURL string // custom base URL (optional)
}

// NewOpenAIClient creates a new OpenAI client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Generate sends one system-role instruction and returns the generated text
// with the reported token usage. Structured requests ask for a JSON object
// response at temperature zero.
func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.Instructions},
		},
	}
	if req.Structured {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
		// Temperature is tagged omitempty, so a literal 0 never reaches the
		// wire. The smallest positive float is the library's way to send an
		// explicit zero.
		chatReq.Temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, &medglot.ProviderError{
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 {
		return nil, &medglot.ProviderError{
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return &GenerateResult{
		Text:        strings.TrimSpace(resp.Choices[0].Message.Content),
		TotalTokens: resp.Usage.TotalTokens,
	}, nil
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIClient implements Client
var _ Client = (*OpenAIClient)(nil)
