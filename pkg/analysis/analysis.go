// Package analysis turns one diary entry plus a window of candidate past
// entries into a ranked, explained, deduplicated set of memory links and a
// topic-tag list, all via LLM calls whose free-text output is parsed
// defensively.
//
// Failure policy: every LLM call failure is caught at its own step and
// degrades to an empty or default result for that step — a failed entity
// extraction does not stop backlink scoring, a failed backlink call still
// leaves temporal links intact. Only two things propagate: programmer
// errors (non-positive limits, ErrInvalidLimit) and ledger write failures,
// because cost integrity is not allowed to fail silently.
package analysis

import (
	"errors"
	"strings"

	"github.com/madebygps/second-brain/pkg/llm"
	"github.com/madebygps/second-brain/pkg/logging"
)

// ErrInvalidLimit signals a caller bug: a non-positive maxLinks or maxTags.
// It is returned immediately, before any network call.
var ErrInvalidLimit = errors.New("analysis: limit must be positive")

// Confidence is the LLM-judged strength of a semantic link.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// NormalizeConfidence maps any input string onto a valid confidence level.
// Unrecognized values default to medium.
func NormalizeConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceLow:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// Glyph returns the markdown marker rendered next to a link of this
// confidence.
func (c Confidence) Glyph() string {
	switch c {
	case ConfidenceHigh:
		return "**"
	case ConfidenceLow:
		return "~"
	default:
		return "*"
	}
}

// Entities is the bundle extracted from an entry. All four slices are
// always non-nil; a missing or malformed key in the LLM response becomes an
// empty list. This is a normalization contract, not an optional structure.
type Entities struct {
	People   []string `json:"people"`
	Places   []string `json:"places"`
	Projects []string `json:"projects"`
	Themes   []string `json:"themes"`
}

// EmptyEntities returns a bundle with all four keys present and empty.
func EmptyEntities() Entities {
	return Entities{
		People:   []string{},
		Places:   []string{},
		Projects: []string{},
		Themes:   []string{},
	}
}

// SemanticLink is one LLM-chosen connection to a past entry.
type SemanticLink struct {
	TargetDate string
	Confidence Confidence
	Reason     string
	Entities   []string
}

// Limits bounds the token budget and result sizes of analyzer calls.
type Limits struct {
	// MaxCandidates caps the candidate window sent for backlink scoring.
	MaxCandidates int
	// MaxTagContextEntries caps the entries summarized for tag generation.
	MaxTagContextEntries int
	// EntryPreviewChars truncates candidate previews.
	EntryPreviewChars int
	// TargetPreviewChars truncates the target entry preview, longer than
	// candidates for better matching.
	TargetPreviewChars int
	// MinEntityChars is the brain-dump length below which entity
	// extraction is skipped entirely.
	MinEntityChars int

	MinTagLength int
	MaxTagLength int

	SemanticTemperature float64
	TagTemperature      float64

	EntityMaxTokens   int
	BacklinkMaxTokens int
	TagMaxTokens      int
	ValidateMaxTokens int
}

// DefaultLimits returns the production limits.
func DefaultLimits() Limits {
	return Limits{
		MaxCandidates:        20,
		MaxTagContextEntries: 5,
		EntryPreviewChars:    400,
		TargetPreviewChars:   500,
		MinEntityChars:       50,
		MinTagLength:         3,
		MaxTagLength:         15,
		SemanticTemperature:  0.3,
		TagTemperature:       0.5,
		EntityMaxTokens:      200,
		BacklinkMaxTokens:    400,
		TagMaxTokens:         100,
		ValidateMaxTokens:    10,
	}
}

// Analyzer runs the semantic analysis steps against one completion
// gateway. The steps run sequentially: entity context feeds backlink
// scoring, so ordering matters more than latency.
type Analyzer struct {
	gw     *llm.Gateway
	log    *logging.Logger
	limits Limits
}

// NewAnalyzer builds an analyzer over the gateway.
func NewAnalyzer(gw *llm.Gateway, log *logging.Logger, limits Limits) *Analyzer {
	return &Analyzer{gw: gw, log: log, limits: limits}
}

// truncate bounds text to max characters for token-budget control.
func truncate(text string, max int) string {
	if len(text) > max {
		return text[:max]
	}
	return text
}

// cleanJSONResponse strips a markdown code fence wrapping if present, so
// responses like "```json\n[...]\n```" parse.
func cleanJSONResponse(response string) string {
	clean := strings.TrimSpace(response)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	lines := strings.Split(clean, "\n")
	if len(lines) > 2 {
		lines = lines[1 : len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

// degradable reports whether an error from the gateway is a normal
// LLM-availability failure the analyzer absorbs, as opposed to a ledger
// write failure it must propagate.
func degradable(err error) bool {
	return errors.Is(err, llm.ErrGeneration)
}
