package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madebygps/second-brain/pkg/logging"
)

type fakeCompleter struct {
	result    *Result
	err       error
	reachable bool
	lastReq   Request
}

func (f *fakeCompleter) Complete(ctx context.Context, req Request) (*Result, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeCompleter) CheckConnection(ctx context.Context) bool { return f.reachable }

func (f *fakeCompleter) Model() string { return "test-model" }

type recordedCall struct {
	operation        string
	model            string
	promptTokens     int
	completionTokens int
	entryDate        string
	metadata         map[string]any
}

type fakeRecorder struct {
	calls []recordedCall
	err   error
}

func (f *fakeRecorder) Record(operation, model string, promptTokens, completionTokens int, elapsedSeconds float64, entryDate string, metadata map[string]any) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, recordedCall{
		operation:        operation,
		model:            model,
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
		entryDate:        entryDate,
		metadata:         metadata,
	})
	return nil
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	t.Setenv("BRAIN_LOG_DIR", t.TempDir())
	log, _ := logging.NewLogger("test")
	t.Cleanup(func() { log.Close() })
	return log
}

func TestGatewayCompleteMetersUsage(t *testing.T) {
	completer := &fakeCompleter{result: &Result{
		Text:  "the response",
		Usage: &Usage{PromptTokens: 100, CompletionTokens: 40},
	}}
	recorder := &fakeRecorder{}
	gw := NewGateway(completer, recorder, testLogger(t))

	text, err := gw.Complete(context.Background(), Request{
		Prompt:      "analyze this",
		System:      "you are helpful",
		Temperature: 0.3,
		MaxTokens:   400,
		Operation:   "semantic_backlinks",
		EntryDate:   "2026-08-29",
	})
	require.NoError(t, err)
	assert.Equal(t, "the response", text)

	require.Len(t, recorder.calls, 1)
	call := recorder.calls[0]
	assert.Equal(t, "semantic_backlinks", call.operation)
	assert.Equal(t, "test-model", call.model)
	assert.Equal(t, 100, call.promptTokens)
	assert.Equal(t, 40, call.completionTokens)
	assert.Equal(t, "2026-08-29", call.entryDate)
	assert.Equal(t, 0.3, call.metadata["temperature"])
	assert.Equal(t, len("analyze this"), call.metadata["prompt_length"])
	assert.Equal(t, len("the response"), call.metadata["response_length"])
}

func TestGatewayCompleteWrapsProviderErrors(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("connection refused")}
	recorder := &fakeRecorder{}
	gw := NewGateway(completer, recorder, testLogger(t))

	_, err := gw.Complete(context.Background(), Request{Operation: "entity_extraction"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Contains(t, err.Error(), "entity_extraction")
	assert.Empty(t, recorder.calls)
}

func TestGatewayCompleteMissingUsageSkipsLedger(t *testing.T) {
	completer := &fakeCompleter{result: &Result{Text: "ok", Usage: nil}}
	recorder := &fakeRecorder{}
	gw := NewGateway(completer, recorder, testLogger(t))

	text, err := gw.Complete(context.Background(), Request{Operation: "semantic_tags"})
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Empty(t, recorder.calls)
}

func TestGatewayCompleteLedgerFailureIsFatal(t *testing.T) {
	completer := &fakeCompleter{result: &Result{
		Text:  "ok",
		Usage: &Usage{PromptTokens: 1, CompletionTokens: 1},
	}}
	ledgerErr := errors.New("disk full")
	gw := NewGateway(completer, &fakeRecorder{err: ledgerErr}, testLogger(t))

	_, err := gw.Complete(context.Background(), Request{Operation: "semantic_tags"})
	require.Error(t, err)
	// Ledger failures are not generation failures; callers must not degrade.
	assert.NotErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, ledgerErr)
}

func TestGatewayCheckConnection(t *testing.T) {
	gw := NewGateway(&fakeCompleter{reachable: true}, &fakeRecorder{}, testLogger(t))
	assert.True(t, gw.CheckConnection(context.Background()))

	gw = NewGateway(&fakeCompleter{reachable: false}, &fakeRecorder{}, testLogger(t))
	assert.False(t, gw.CheckConnection(context.Background()))
}

func TestGatewayModel(t *testing.T) {
	gw := NewGateway(&fakeCompleter{}, &fakeRecorder{}, testLogger(t))
	assert.Equal(t, "test-model", gw.Model())
}
