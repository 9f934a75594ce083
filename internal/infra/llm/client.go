package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.0-flash-lite"

	defaultTimeout = 30 * time.Second
)

// ErrNoChoices is returned when the API answers without any completion
var ErrNoChoices = errors.New("no response choices")

// Client is a chat completion client for any OpenAI-compatible API
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new client. Empty baseURL and model fall back to the Gemini defaults.
func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: defaultTimeout,
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// Option tunes a single chat request
type Option func(*openai.ChatCompletionRequest)

// WithMaxTokens caps the completion length
func WithMaxTokens(n int) Option {
	return func(r *openai.ChatCompletionRequest) { r.MaxTokens = n }
}

// WithSampling sets temperature and nucleus sampling
func WithSampling(temperature, topP float32) Option {
	return func(r *openai.ChatCompletionRequest) {
		r.Temperature = temperature
		r.TopP = topP
	}
}

// WithJSONSchema constrains the output to a strict JSON schema
func WithJSONSchema(name, description string, schema *jsonschema.Definition) Option {
	return func(r *openai.ChatCompletionRequest) {
		r.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        name,
				Description: description,
				Schema:      schema,
				Strict:      true,
			},
		}
	}
}

// Chat sends one system + user exchange and returns the raw response text.
// systemPrompt may be empty.
func (c *Client) Chat(ctx context.Context, systemPrompt, userMessage string, opts ...Option) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userMessage})

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	}
	for _, opt := range opts {
		opt(&req)
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	return resp.Choices[0].Message.Content, nil
}
