package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/madebygps/second-brain/pkg/journal"
	"github.com/madebygps/second-brain/pkg/llm"
)

const validateSystemPrompt = `You judge whether a connection between two diary entries holds in both directions. Answer with a single word: "yes" or "no".`

// ValidateLinks checks each high-confidence link symmetrically: given the
// candidate entry, would the model still connect it back to the target? A
// "no" downgrades the link from high to medium; the link is never dropped
// by this check. A failed validation call takes the permissive branch and
// leaves the link at high. Medium and low links pass through untouched.
//
// byDate supplies the candidate entries keyed by date string; links whose
// entry is missing from the map are left unchanged.
func (a *Analyzer) ValidateLinks(ctx context.Context, target *journal.Entry, links []SemanticLink, byDate map[string]*journal.Entry) []SemanticLink {
	validated := make([]SemanticLink, 0, len(links))
	for _, link := range links {
		if link.Confidence != ConfidenceHigh {
			validated = append(validated, link)
			continue
		}
		candidate, ok := byDate[link.TargetDate]
		if !ok {
			validated = append(validated, link)
			continue
		}
		if !a.linkHoldsReversed(ctx, target, candidate, link) {
			a.log.Debugf("entry %s: link to %s downgraded to medium after reverse check",
				target.DateString(), link.TargetDate)
			link.Confidence = ConfidenceMedium
		}
		validated = append(validated, link)
	}
	return validated
}

func (a *Analyzer) linkHoldsReversed(ctx context.Context, target, candidate *journal.Entry, link SemanticLink) bool {
	prompt := fmt.Sprintf(`Entry A [[%s]]:
%s

Entry B [[%s]]:
%s

Entry B was linked to Entry A because: %s

Reading from Entry A's perspective, does this connection hold in reverse? Answer yes or no:`,
		candidate.DateString(), truncate(candidate.BrainDump(), a.limits.EntryPreviewChars),
		target.DateString(), truncate(target.BrainDump(), a.limits.EntryPreviewChars),
		link.Reason)

	response, err := a.gw.Complete(ctx, llm.Request{
		Prompt:      prompt,
		System:      validateSystemPrompt,
		Temperature: 0,
		MaxTokens:   a.limits.ValidateMaxTokens,
		Operation:   "link_validation",
		EntryDate:   target.DateString(),
	})
	if err != nil {
		// Permissive on failure: keep the link at high rather than
		// second-guessing it without evidence.
		a.log.Warnf("entry %s: link validation failed for %s: %v",
			target.DateString(), link.TargetDate, err)
		return true
	}
	return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "no")
}
