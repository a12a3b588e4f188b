package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"stealthcompany.com/oncoaide/internal/metrics"
)

// Generation settings sent with every completion request
const (
	Temperature         = 0.6
	MaxCompletionTokens = 2048
	TopP                = 0.95
)

// ErrMissingAPIKey is returned when the provider key was not configured
var ErrMissingAPIKey = errors.New("GROQ_API_KEY is not configured")

// Config describes the OpenAI-compatible chat completion endpoint
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Client sends single-turn prompts to the provider. It does not retry and
// sets no timeout of its own.
type Client struct {
	api   *openai.Client
	model string
	ready bool
}

// NewClient creates a provider client
func NewClient(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		api:   openai.NewClientWithConfig(apiCfg),
		model: cfg.Model,
		ready: cfg.APIKey != "",
	}
}

// Complete sends prompt as a single user message and returns the trimmed reply text
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.ready {
		return "", ErrMissingAPIKey
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature:         Temperature,
		MaxCompletionTokens: MaxCompletionTokens,
		TopP:                TopP,
		Stream:              false,
	})
	duration := time.Since(start)
	if err != nil {
		metrics.RecordLLMRequest(c.model, "error", duration)
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		metrics.RecordLLMRequest(c.model, "empty", duration)
		return "", fmt.Errorf("chat completion: no choices returned")
	}

	metrics.RecordLLMRequest(c.model, "success", duration)
	log.Info().
		Str("model", c.model).
		Int("prompt_chars", len(prompt)).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("duration", duration).
		Msg("Chat completion received")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
