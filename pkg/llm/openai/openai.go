// Package openai implements the llm.Completer capability for OpenAI and
// Azure OpenAI endpoints using the official SDK.
package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/madebygps/second-brain/pkg/llm"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4o"

	// DefaultAzureAPIVersion matches the API version the service defaults
	// to when deployments were created.
	DefaultAzureAPIVersion = "2024-02-15-preview"

	connectionProbeTimeout = 5 * time.Second
)

// Client calls an OpenAI-compatible chat-completions endpoint. It
// implements llm.Completer.
type Client struct {
	client openai.Client
	model  string
}

type clientConfig struct {
	model      string
	baseURL    string
	azureHost  string
	apiVersion string
}

// Option configures a Client.
type Option func(*clientConfig)

// WithModel sets the model (or Azure deployment name) for completions.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.model = model
	}
}

// WithBaseURL points the client at any OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithAzure routes requests through an Azure OpenAI resource. apiVersion
// may be empty to use DefaultAzureAPIVersion.
func WithAzure(endpoint, apiVersion string) Option {
	return func(c *clientConfig) {
		c.azureHost = endpoint
		if apiVersion != "" {
			c.apiVersion = apiVersion
		}
	}
}

// New creates a provider client with the given API key.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	cfg := clientConfig{
		model:      DefaultModel,
		apiVersion: DefaultAzureAPIVersion,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	var requestOpts []option.RequestOption
	if cfg.azureHost != "" {
		requestOpts = append(requestOpts,
			azure.WithEndpoint(cfg.azureHost, cfg.apiVersion),
			azure.WithAPIKey(apiKey),
		)
	} else {
		requestOpts = append(requestOpts, option.WithAPIKey(apiKey))
		if cfg.baseURL != "" {
			requestOpts = append(requestOpts, option.WithBaseURL(cfg.baseURL))
		}
	}

	return &Client{
		client: openai.NewClient(requestOpts...),
		model:  cfg.model,
	}, nil
}

// Model returns the configured model or deployment name.
func (c *Client) Model() string {
	return c.model
}

// Complete issues one non-streaming chat completion and extracts the
// response text plus token usage.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Result, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: empty choices in response")
	}

	result := &llm.Result{Text: resp.Choices[0].Message.Content}
	if resp.Usage.TotalTokens > 0 {
		result.Usage = &llm.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
		}
	}
	return result, nil
}

// CheckConnection issues a one-token request and reports reachability.
func (c *Client) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, connectionProbeTimeout)
	defer cancel()

	_, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("test"),
		},
		MaxTokens: openai.Int(1),
	})
	return err == nil
}
