// Package llm defines the completion gateway: a single synchronous
// abstraction over interchangeable LLM providers, with every call metered
// into the usage ledger.
//
// Providers implement the Completer interface; callers talk only to the
// Gateway and never see provider-specific errors. Semantic-analysis callers
// treat any gateway failure as a degradable condition, so the Gateway folds
// all upstream failures into ErrGeneration.
package llm

import (
	"context"
	"errors"
)

// ErrGeneration is the uniform error surfaced for any upstream completion
// failure (network, auth, rate limit, bad status). Callers match it with
// errors.Is and never branch on provider details.
var ErrGeneration = errors.New("llm: generation failed")

// Request describes one synchronous completion.
type Request struct {
	Prompt      string
	System      string
	Temperature float64
	MaxTokens   int

	// Operation tags the call for cost attribution, e.g.
	// "semantic_backlinks" or "entity_extraction".
	Operation string
	// EntryDate links the call to a diary entry (YYYY-MM-DD), when one
	// applies.
	EntryDate string
}

// Usage is the token accounting for one completion. Providers that do not
// report usage natively estimate it locally so the ledger never records a
// blind call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Result is a provider's response to one completion request.
type Result struct {
	Text string
	// Usage is nil when the provider could neither report nor estimate
	// token counts.
	Usage *Usage
}

// Completer is the capability a provider must offer. One concrete
// implementation exists per provider; selection happens once at
// construction.
type Completer interface {
	// Complete issues one blocking completion request.
	Complete(ctx context.Context, req Request) (*Result, error)

	// CheckConnection reports whether the provider is reachable. It must
	// never return an error; any failure is simply false.
	CheckConnection(ctx context.Context) bool

	// Model returns the model or deployment name used for completions.
	Model() string
}
