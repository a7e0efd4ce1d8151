// Package usage is the durable ledger of LLM API calls. Every completion,
// successful or degraded, is recorded as an immutable row with its token
// counts and estimated cost; summaries, trends, and monthly estimates are
// derived from those rows. Cost accuracy is treated as a correctness
// property: ledger write failures are fatal, never best-effort.
package usage

import "strings"

// Price holds per-token USD prices for one model tier.
type Price struct {
	Input  float64
	Output float64
}

// PriceTable maps normalized model names to their price tiers. Unrecognized
// models fall back to DefaultTier.
type PriceTable map[string]Price

// DefaultTier is the tier charged when a model name matches nothing in the
// table. It is the most expensive default so unrecognized deployments are
// over-counted rather than under-counted.
const DefaultTier = "gpt-4o"

// perThousand converts a per-1K-token price to a per-token price.
func perThousand(p float64) float64 {
	return p / 1000
}

// DefaultPrices returns the built-in price table, in USD per token.
// Deployments override these via the prices section of the config file.
func DefaultPrices() PriceTable {
	return PriceTable{
		"gpt-4o":       {Input: perThousand(0.03), Output: perThousand(0.06)},
		"gpt-4o-mini":  {Input: perThousand(0.0015), Output: perThousand(0.006)},
		"gpt-4":        {Input: perThousand(0.03), Output: perThousand(0.06)},
		"gpt-35-turbo": {Input: perThousand(0.0015), Output: perThousand(0.002)},
	}
}

// normalizeModel maps a deployment or model name onto a price-table key by
// substring match. The more specific "gpt-4o-mini" must be tested before
// the broader "gpt-4o" and "gpt-4" matches.
func normalizeModel(model string) string {
	m := strings.ToLower(model)
	switch {
	case strings.Contains(m, "gpt-4o-mini"):
		return "gpt-4o-mini"
	case strings.Contains(m, "gpt-4o"):
		return "gpt-4o"
	case strings.Contains(m, "gpt-4"):
		return "gpt-4"
	case strings.Contains(m, "gpt-35"), strings.Contains(m, "gpt-3.5"):
		return "gpt-35-turbo"
	default:
		return m
	}
}

// Cost computes the estimated USD cost of one call. It is a pure function
// of the table and the token counts.
func (t PriceTable) Cost(model string, promptTokens, completionTokens int) float64 {
	price, ok := t[normalizeModel(model)]
	if !ok {
		price = t[DefaultTier]
	}
	return float64(promptTokens)*price.Input + float64(completionTokens)*price.Output
}
