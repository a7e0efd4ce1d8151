package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madebygps/second-brain/pkg/llm"
)

func TestComplete(t *testing.T) {
	var received generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(generateResponse{
			Response:        "generated text",
			PromptEvalCount: 42,
			EvalCount:       17,
		})
	}))
	defer server.Close()

	c := New(server.URL, WithModel("llama3.1:8b"))
	result, err := c.Complete(context.Background(), llm.Request{
		Prompt:      "the prompt",
		System:      "the system",
		Temperature: 0.7,
		MaxTokens:   100,
	})
	require.NoError(t, err)

	assert.Equal(t, "generated text", result.Text)
	require.NotNil(t, result.Usage)
	assert.Equal(t, 42, result.Usage.PromptTokens)
	assert.Equal(t, 17, result.Usage.CompletionTokens)

	assert.Equal(t, "llama3.1:8b", received.Model)
	assert.Equal(t, "the prompt", received.Prompt)
	assert.Equal(t, "the system", received.System)
	assert.False(t, received.Stream)
	assert.Equal(t, 0.7, received.Options.Temperature)
	assert.Equal(t, 100, received.Options.NumPredict)
}

func TestCompleteEstimatesMissingUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "a response without eval counts"})
	}))
	defer server.Close()

	c := New(server.URL)
	result, err := c.Complete(context.Background(), llm.Request{Prompt: "some prompt text"})
	require.NoError(t, err)

	require.NotNil(t, result.Usage)
	assert.Positive(t, result.Usage.PromptTokens)
	assert.Positive(t, result.Usage.CompletionTokens)
}

func TestCompleteServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.Complete(context.Background(), llm.Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestCompleteUnreachableServer(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.Complete(context.Background(), llm.Request{Prompt: "x"})
	assert.Error(t, err)
}

func TestCheckConnection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.True(t, New(server.URL).CheckConnection(context.Background()))
	assert.False(t, New("http://127.0.0.1:1").CheckConnection(context.Background()))
}

func TestNewDefaults(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultModel, c.Model())
	assert.Equal(t, DefaultBaseURL, c.baseURL)

	c = New("http://example.com/")
	assert.Equal(t, "http://example.com", c.baseURL)
}
