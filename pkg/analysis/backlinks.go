package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/madebygps/second-brain/pkg/journal"
	"github.com/madebygps/second-brain/pkg/llm"
)

const backlinkSystemPromptFmt = `Analyze diary entries to find semantic connections. Consider:
- Shared people, places, or projects
- Thematic/emotional patterns
- Cause-effect relationships
- Continuations of ideas

For each related entry provide:
1. date: YYYY-MM-DD format
2. confidence: "high" (clear), "medium" (probable), "low" (weak)
3. reason: Brief explanation (5-10 words)
4. entities: Connecting elements from target entry's context

Return ONLY valid JSON array (up to %d entries):
[{"date": "YYYY-MM-DD", "confidence": "high", "reason": "discusses same project deadline", "entities": ["work", "stress"]}]

Empty array [] if no connections.`

// FindSemanticLinks scores candidate past entries for relatedness to the
// target. It issues at most two metered calls: one entity extraction for
// bias context and one scoring call. The model's own ranking order is
// preserved; results are truncated to maxLinks after parsing.
//
// maxLinks must be positive or ErrInvalidLimit is returned before any
// call. An empty candidate list short-circuits to an empty result with no
// call at all. Generation failures degrade to an empty result.
func (a *Analyzer) FindSemanticLinks(ctx context.Context, target *journal.Entry, candidates []*journal.Entry, maxLinks int) ([]SemanticLink, error) {
	if maxLinks <= 0 {
		return nil, fmt.Errorf("%w: maxLinks=%d", ErrInvalidLimit, maxLinks)
	}
	if len(candidates) == 0 {
		a.log.Debugf("entry %s: no candidates for backlink scoring", target.DateString())
		return []SemanticLink{}, nil
	}

	// Entity bias context. A failed extraction loses only the bias, not
	// the scoring call.
	entities, err := a.ExtractEntities(ctx, target)
	if err != nil {
		return nil, err
	}

	var candidateContext []string
	for _, candidate := range candidates {
		if len(candidateContext) >= a.limits.MaxCandidates {
			break
		}
		if candidate.DateString() == target.DateString() {
			continue
		}
		preview := truncate(candidate.BrainDump(), a.limits.EntryPreviewChars)
		if preview != "" {
			candidateContext = append(candidateContext,
				fmt.Sprintf("[[%s]]: %s", candidate.DateString(), preview))
		}
	}
	if len(candidateContext) == 0 {
		a.log.Debugf("entry %s: no usable candidate context", target.DateString())
		return []SemanticLink{}, nil
	}

	prompt := buildBacklinkPrompt(target, entities, candidateContext, a.limits.TargetPreviewChars)

	response, err := a.gw.Complete(ctx, llm.Request{
		Prompt:      prompt,
		System:      fmt.Sprintf(backlinkSystemPromptFmt, maxLinks),
		Temperature: a.limits.SemanticTemperature,
		MaxTokens:   a.limits.BacklinkMaxTokens,
		Operation:   "semantic_backlinks",
		EntryDate:   target.DateString(),
	})
	if err != nil {
		if degradable(err) {
			a.log.Warnf("entry %s: backlink scoring failed: %v", target.DateString(), err)
			return []SemanticLink{}, nil
		}
		return nil, err
	}

	links := parseSemanticLinks(cleanJSONResponse(response), a, target.DateString())
	if len(links) > maxLinks {
		links = links[:maxLinks]
	}
	a.log.Infof("entry %s: %d semantic links from %d candidates",
		target.DateString(), len(links), len(candidateContext))
	return links, nil
}

// buildBacklinkPrompt assembles the user prompt: the target preview with a
// short entity summary (top 3 people and themes) to bias the model toward
// entity-grounded connections rather than surface wording.
func buildBacklinkPrompt(target *journal.Entry, entities Entities, candidateContext []string, targetPreviewChars int) string {
	var summary []string
	if len(entities.People) > 0 {
		summary = append(summary, "People: "+strings.Join(topN(entities.People, 3), ", "))
	}
	if len(entities.Themes) > 0 {
		summary = append(summary, "Themes: "+strings.Join(topN(entities.Themes, 3), ", "))
	}
	entityLine := ""
	if len(summary) > 0 {
		entityLine = "\n[" + strings.Join(summary, "; ") + "]"
	}

	return fmt.Sprintf(`Target entry [[%s]]:%s
%s

---

Candidate entries:
%s

---

Which candidates are semantically related? Return JSON array only (no explanations):`,
		target.DateString(), entityLine,
		truncate(target.BrainDump(), targetPreviewChars),
		strings.Join(candidateContext, "\n\n"))
}

// parseSemanticLinks converts the model's JSON array defensively: items
// without a date are dropped, confidence is normalized, entities coerced to
// non-empty strings. Any parse failure yields an empty list. The model
// occasionally returns the target's own date even though it was never a
// candidate; an entry must not link to itself, so those items are dropped
// here too.
func parseSemanticLinks(clean string, a *Analyzer, date string) []SemanticLink {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &items); err != nil {
		a.log.Warnf("entry %s: backlink response is not a JSON array: %v", date, err)
		return []SemanticLink{}
	}

	links := []SemanticLink{}
	for _, item := range items {
		targetDate := rawString(item["date"])
		if targetDate == "" || targetDate == date {
			continue
		}
		links = append(links, SemanticLink{
			TargetDate: targetDate,
			Confidence: NormalizeConfidence(rawString(item["confidence"])),
			Reason:     rawString(item["reason"]),
			Entities:   stringList(item["entities"]),
		})
	}
	return links
}

func rawString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func topN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
