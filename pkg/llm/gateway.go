package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/madebygps/second-brain/pkg/logging"
)

// Recorder receives one row per metered completion. *usage.Ledger satisfies
// it; tests substitute fakes.
type Recorder interface {
	Record(operation, model string, promptTokens, completionTokens int, elapsedSeconds float64, entryDate string, metadata map[string]any) error
}

// Gateway wraps a Completer and meters every call into the usage ledger.
// It is the one component callers hold; the provider behind it is
// interchangeable.
type Gateway struct {
	completer Completer
	recorder  Recorder
	log       *logging.Logger
}

// NewGateway builds a gateway over the given provider and ledger.
func NewGateway(completer Completer, recorder Recorder, log *logging.Logger) *Gateway {
	return &Gateway{completer: completer, recorder: recorder, log: log}
}

// Model returns the underlying provider's model name.
func (g *Gateway) Model() string {
	return g.completer.Model()
}

// Complete issues one completion and records its usage. Upstream failures
// are folded into ErrGeneration; a missing usage block is logged but not
// fatal. A ledger write failure is returned as-is — cost integrity is not
// allowed to fail silently.
func (g *Gateway) Complete(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	result, err := g.completer.Complete(ctx, req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		g.log.Errorf("%s failed after %.2fs: %v", req.Operation, elapsed, err)
		return "", fmt.Errorf("%w: %s: %v", ErrGeneration, req.Operation, err)
	}

	if result.Usage == nil {
		g.log.Warnf("no usage information returned for %s", req.Operation)
		return result.Text, nil
	}

	metadata := map[string]any{
		"temperature":          req.Temperature,
		"max_tokens":           req.MaxTokens,
		"prompt_length":        len(req.Prompt),
		"response_length":      len(result.Text),
		"system_prompt_length": len(req.System),
	}
	err = g.recorder.Record(
		req.Operation, g.completer.Model(),
		result.Usage.PromptTokens, result.Usage.CompletionTokens,
		elapsed, req.EntryDate, metadata,
	)
	if err != nil {
		return "", err
	}

	g.log.Debugf("%s: %d+%d tokens in %.2fs", req.Operation,
		result.Usage.PromptTokens, result.Usage.CompletionTokens, elapsed)
	return result.Text, nil
}

// CheckConnection probes the provider with a minimal request. It only ever
// returns a boolean.
func (g *Gateway) CheckConnection(ctx context.Context) bool {
	return g.completer.CheckConnection(ctx)
}
