package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madebygps/second-brain/pkg/journal"
)

func candidatesByDate(entries ...*journal.Entry) map[string]*journal.Entry {
	byDate := map[string]*journal.Entry{}
	for _, e := range entries {
		byDate[e.DateString()] = e
	}
	return byDate
}

func TestValidateLinksDowngradesOnNo(t *testing.T) {
	completer := &scriptedCompleter{responses: map[string]string{"link_validation": "No."}}
	a := newTestAnalyzer(t, completer)

	candidate := substantialEntry(testDate.AddDate(0, 0, -2))
	links := []SemanticLink{{TargetDate: candidate.DateString(), Confidence: ConfidenceHigh, Reason: "r"}}

	validated := a.ValidateLinks(context.Background(), substantialEntry(testDate), links, candidatesByDate(candidate))
	require.Len(t, validated, 1)
	// Downgraded, never dropped.
	assert.Equal(t, ConfidenceMedium, validated[0].Confidence)
}

func TestValidateLinksKeepsHighOnYes(t *testing.T) {
	completer := &scriptedCompleter{responses: map[string]string{"link_validation": "Yes, it holds."}}
	a := newTestAnalyzer(t, completer)

	candidate := substantialEntry(testDate.AddDate(0, 0, -2))
	links := []SemanticLink{{TargetDate: candidate.DateString(), Confidence: ConfidenceHigh}}

	validated := a.ValidateLinks(context.Background(), substantialEntry(testDate), links, candidatesByDate(candidate))
	assert.Equal(t, ConfidenceHigh, validated[0].Confidence)
}

func TestValidateLinksSkipsNonHighLinks(t *testing.T) {
	completer := &scriptedCompleter{}
	a := newTestAnalyzer(t, completer)

	candidate := substantialEntry(testDate.AddDate(0, 0, -2))
	links := []SemanticLink{
		{TargetDate: candidate.DateString(), Confidence: ConfidenceMedium},
		{TargetDate: candidate.DateString(), Confidence: ConfidenceLow},
	}

	validated := a.ValidateLinks(context.Background(), substantialEntry(testDate), links, candidatesByDate(candidate))
	assert.Equal(t, links, validated)
	assert.Empty(t, completer.requests, "only high-confidence links are checked")
}

func TestValidateLinksMissingCandidateUnchanged(t *testing.T) {
	completer := &scriptedCompleter{}
	a := newTestAnalyzer(t, completer)

	links := []SemanticLink{{TargetDate: "2026-08-20", Confidence: ConfidenceHigh}}
	validated := a.ValidateLinks(context.Background(), substantialEntry(testDate), links, map[string]*journal.Entry{})

	assert.Equal(t, ConfidenceHigh, validated[0].Confidence)
	assert.Empty(t, completer.requests)
}

func TestValidateLinksPermissiveOnFailure(t *testing.T) {
	completer := &scriptedCompleter{failures: map[string]error{"link_validation": errors.New("timeout")}}
	a := newTestAnalyzer(t, completer)

	candidate := substantialEntry(testDate.AddDate(0, 0, -2))
	links := []SemanticLink{{TargetDate: candidate.DateString(), Confidence: ConfidenceHigh}}

	validated := a.ValidateLinks(context.Background(), substantialEntry(testDate), links, candidatesByDate(candidate))
	assert.Equal(t, ConfidenceHigh, validated[0].Confidence,
		"a failed check keeps the link rather than second-guessing it")
}
