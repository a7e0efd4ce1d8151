package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/madebygps/second-brain/pkg/journal"
	"github.com/madebygps/second-brain/pkg/llm"
)

const tagSystemPromptFmt = `You are analyzing diary entries to extract deep thematic tags. Generate %d tags that capture the underlying themes, emotions, and psychological patterns - not just surface-level topics.

Good tags identify:
- Emotional states and patterns (e.g., #overwhelm, #fulfillment, #frustration)
- Personal struggles or growth areas (e.g., #boundaries, #patience, #balance)
- Recurring life themes (e.g., #identity, #purpose, #relationships)
- Internal conflicts or tensions (e.g., #perfectionism, #control)

Avoid:
- Generic activity words (e.g., #work, #meeting)
- Obvious nouns from the text (e.g., #python, #book)
- Surface-level descriptions (e.g., #busy, #progress)

Tags should be:
- Thematic and emotionally meaningful
- %d-%d characters, lowercase
- Single words or hyphenated phrases
- No emojis

Return ONLY the tags, one per line, with a # prefix (e.g., #fulfillment, #self-doubt, #growth).
Do not include explanations or additional text.`

// GenerateTags derives topic tags from a set of entries. maxTags must be
// positive or ErrInvalidLimit is returned before any call. Entries without
// usable previews short-circuit to an empty result with no call.
// Generation failures degrade to an empty result.
func (a *Analyzer) GenerateTags(ctx context.Context, entries []*journal.Entry, maxTags int) ([]string, error) {
	if maxTags <= 0 {
		return nil, fmt.Errorf("%w: maxTags=%d", ErrInvalidLimit, maxTags)
	}
	if len(entries) == 0 {
		a.log.Debugf("no entries for tag generation")
		return []string{}, nil
	}

	var contextParts []string
	for _, entry := range entries {
		if len(contextParts) >= a.limits.MaxTagContextEntries {
			break
		}
		preview := truncate(entry.BrainDump(), a.limits.EntryPreviewChars)
		if preview != "" {
			contextParts = append(contextParts, preview)
		}
	}
	if len(contextParts) == 0 {
		a.log.Debugf("no usable entry content for tag generation")
		return []string{}, nil
	}

	prompt := fmt.Sprintf(`Analyze these diary entries and identify the deep themes, emotional patterns, and underlying concerns:

%s

---

What are the %d most meaningful thematic tags that capture the emotional and psychological essence of these entries?
Return only the tags (one per line, with # prefix), focusing on themes over topics.`,
		strings.Join(contextParts, "\n\n"), maxTags)

	response, err := a.gw.Complete(ctx, llm.Request{
		Prompt:      prompt,
		System:      fmt.Sprintf(tagSystemPromptFmt, maxTags, a.limits.MinTagLength, a.limits.MaxTagLength),
		Temperature: a.limits.TagTemperature,
		MaxTokens:   a.limits.TagMaxTokens,
		Operation:   "semantic_tags",
		EntryDate:   entries[0].DateString(),
	})
	if err != nil {
		if degradable(err) {
			a.log.Warnf("tag generation failed for %d entries: %v", len(entries), err)
			return []string{}, nil
		}
		return nil, err
	}

	return parseTags(response, a.limits, maxTags), nil
}

// parseTags keeps one tag per response line: the leading # is stripped, the
// tag lowercased, and anything outside the configured length bounds
// discarded.
func parseTags(response string, limits Limits, maxTags int) []string {
	tags := []string{}
	for _, line := range strings.Split(response, "\n") {
		tag := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(line), "#"))
		if len(tag) >= limits.MinTagLength && len(tag) <= limits.MaxTagLength {
			tags = append(tags, tag)
		}
	}
	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}
