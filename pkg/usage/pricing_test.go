package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeModel(t *testing.T) {
	cases := []struct {
		model string
		want  string
	}{
		// The mini match must win before the broader gpt-4o match.
		{"gpt-4o-mini", "gpt-4o-mini"},
		{"my-gpt-4o-mini-deployment", "gpt-4o-mini"},
		{"gpt-4o", "gpt-4o"},
		{"gpt-4o-2024-08-06", "gpt-4o"},
		{"gpt-4-turbo", "gpt-4"},
		{"gpt-35-turbo", "gpt-35-turbo"},
		{"gpt-3.5-turbo", "gpt-35-turbo"},
		{"GPT-4O", "gpt-4o"},
		{"llama3.1", "llama3.1"},
	}
	for _, tc := range cases {
		t.Run(tc.model, func(t *testing.T) {
			assert.Equal(t, tc.want, normalizeModel(tc.model))
		})
	}
}

func TestCostComputation(t *testing.T) {
	table := DefaultPrices()

	want := 1000*table["gpt-4o"].Input + 500*table["gpt-4o"].Output
	assert.InDelta(t, want, table.Cost("gpt-4o", 1000, 500), 1e-12)

	// Azure-style deployment names normalize by substring.
	assert.InDelta(t, want, table.Cost("my-gpt-4o-deployment", 1000, 500), 1e-12)
}

func TestCostUnknownModelFallsBackToDefaultTier(t *testing.T) {
	table := DefaultPrices()

	assert.InDelta(t, table.Cost(DefaultTier, 100, 100), table.Cost("mistral-7b", 100, 100), 1e-12)
}

func TestCostZeroTokens(t *testing.T) {
	assert.Zero(t, DefaultPrices().Cost("gpt-4o", 0, 0))
}

func TestCustomPriceTable(t *testing.T) {
	table := PriceTable{
		"gpt-4o":  {Input: 0.001, Output: 0.002},
		"my-tier": {Input: 0.5, Output: 0.5},
	}

	assert.InDelta(t, 10*0.001+5*0.002, table.Cost("gpt-4o", 10, 5), 1e-12)
	assert.InDelta(t, 1.0, table.Cost("my-tier", 1, 1), 1e-12)
}
