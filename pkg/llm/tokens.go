package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encoding     *tiktoken.Tiktoken
	encodingOnce sync.Once
)

// EstimateTokens counts tokens with the cl100k_base encoding. Providers
// that do not report usage (local inference backends) use this so ledger
// rows still carry real token counts. If the encoding cannot be loaded the
// estimate falls back to the rough four-characters-per-token heuristic.
func EstimateTokens(text string) int {
	encodingOnce.Do(func() {
		encoding, _ = tiktoken.GetEncoding("cl100k_base")
	})
	if encoding == nil {
		return len(text) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}
