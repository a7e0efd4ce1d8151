// Package ollama implements the llm.Completer capability against a local
// Ollama server's native generate API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/madebygps/second-brain/pkg/llm"
)

const (
	// DefaultBaseURL is the stock Ollama listen address.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel is used when no model is configured.
	DefaultModel = "llama3.1"

	// requestTimeout is generous because local inference backends can be
	// slow on first load.
	requestTimeout = 5 * time.Minute

	connectionProbeTimeout = 5 * time.Second
)

// Client calls a local Ollama server. It implements llm.Completer.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model used for completions.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// New creates a client for the Ollama server at baseURL. An empty baseURL
// uses DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type generateResponse struct {
	Response        string `json:"response"`
	PromptEvalCount int    `json:"prompt_eval_count"`
	EvalCount       int    `json:"eval_count"`
}

// Complete issues one blocking generate call. Ollama reports eval counts on
// most responses; when it does not, token usage is estimated locally so the
// ledger still gets a real row.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Result, error) {
	payload := generateRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Options: generateOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama: generate failed with status %d: %s", resp.StatusCode, string(b))
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}

	usage := &llm.Usage{
		PromptTokens:     gen.PromptEvalCount,
		CompletionTokens: gen.EvalCount,
	}
	if usage.PromptTokens == 0 {
		usage.PromptTokens = llm.EstimateTokens(req.System + req.Prompt)
	}
	if usage.CompletionTokens == 0 && gen.Response != "" {
		usage.CompletionTokens = llm.EstimateTokens(gen.Response)
	}

	return &llm.Result{Text: gen.Response, Usage: usage}, nil
}

// CheckConnection probes the tags endpoint, which answers quickly whether
// or not any model is loaded.
func (c *Client) CheckConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, connectionProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
