// Package openai adapts the OpenAI and Azure OpenAI APIs to the embedding
// and text generation capabilities used by retrieval.
package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/tordrt/schemarag/internal/config"
)

// Client calls the embedding and chat completion endpoints
type Client struct {
	api            *openai.Client
	embeddingModel string
	chatModel      string
}

// New creates a client from settings. An endpoint selects Azure OpenAI,
// where model names are deployment names and are sent unchanged.
func New(cfg config.OpenAIConfig) *Client {
	var clientCfg openai.ClientConfig
	if cfg.Azure() {
		clientCfg = openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
		clientCfg.APIVersion = cfg.APIVersion
		clientCfg.AzureModelMapperFunc = func(model string) string { return model }
	} else {
		clientCfg = openai.DefaultConfig(cfg.APIKey)
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return NewWithConfig(clientCfg, cfg.EmbeddingModel, cfg.ChatModel)
}

// NewWithConfig creates a client from a prepared go-openai configuration
func NewWithConfig(clientCfg openai.ClientConfig, embeddingModel, chatModel string) *Client {
	return &Client{
		api:            openai.NewClientWithConfig(clientCfg),
		embeddingModel: embeddingModel,
		chatModel:      chatModel,
	}
}

// Embed returns the embedding vector of text
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, errors.New("embedding response carried no vector")
	}
	return resp.Data[0].Embedding, nil
}

// Generate runs a deterministic chat completion and returns the trimmed
// answer
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		// A zero temperature is dropped by omitempty; this is the closest
		// value that survives encoding.
		Temperature: math.SmallestNonzeroFloat32,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// IsRetryable reports whether a retry could succeed. 4xx responses other
// than 408 and 429 are final.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return true
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500
}
