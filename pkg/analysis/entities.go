package analysis

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/madebygps/second-brain/pkg/journal"
	"github.com/madebygps/second-brain/pkg/llm"
)

const entityExtractionTemperature = 0.2

const entitySystemPrompt = `Extract key entities from diary entries. Identify:
- people: Names or roles (e.g., "Sarah", "manager")
- places: Locations (e.g., "office", "Portland")
- projects: Work/personal initiatives (e.g., "website redesign")
- themes: Emotions/concepts (e.g., "stress", "growth")

Return ONLY valid JSON with these 4 keys as string arrays. Keep entries 1-3 words. Empty arrays if none found.

Example: {"people": ["Sarah"], "places": ["office"], "projects": ["website"], "themes": ["stress"]}`

// ExtractEntities pulls people, places, projects, and themes out of an
// entry. Entries with a brain dump below MinEntityChars skip the call and
// return the empty bundle. A malformed LLM response or a generation failure
// also returns the empty bundle; the only error surfaced is a ledger write
// failure.
func (a *Analyzer) ExtractEntities(ctx context.Context, entry *journal.Entry) (Entities, error) {
	if len(entry.BrainDump()) < a.limits.MinEntityChars {
		a.log.Debugf("entry %s: insufficient content for entity extraction", entry.DateString())
		return EmptyEntities(), nil
	}

	preview := truncate(entry.BrainDump(), a.limits.EntryPreviewChars)
	prompt := "Extract entities from this diary entry:\n\n" + preview + "\n\nReturn JSON only (no explanations):"

	response, err := a.gw.Complete(ctx, llm.Request{
		Prompt:      prompt,
		System:      entitySystemPrompt,
		Temperature: entityExtractionTemperature,
		MaxTokens:   a.limits.EntityMaxTokens,
		Operation:   "entity_extraction",
		EntryDate:   entry.DateString(),
	})
	if err != nil {
		if degradable(err) {
			a.log.Warnf("entry %s: entity extraction failed: %v", entry.DateString(), err)
			return EmptyEntities(), nil
		}
		return EmptyEntities(), err
	}

	return parseEntities(cleanJSONResponse(response), a, entry.DateString()), nil
}

// parseEntities validates each of the four keys independently: a missing or
// non-list value becomes an empty list, and items are trimmed with empties
// dropped. The result always carries exactly the four keys.
func parseEntities(clean string, a *Analyzer, date string) Entities {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		a.log.Warnf("entry %s: entity extraction returned invalid JSON: %v", date, err)
		return EmptyEntities()
	}

	return Entities{
		People:   stringList(raw["people"]),
		Places:   stringList(raw["places"]),
		Projects: stringList(raw["projects"]),
		Themes:   stringList(raw["themes"]),
	}
}

// stringList coerces a raw JSON value into a list of non-empty trimmed
// strings, tolerating a missing key, a wrong type, or mixed element types.
func stringList(raw json.RawMessage) []string {
	out := []string{}
	if raw == nil {
		return out
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return out
	}
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		trimmed := strings.TrimSpace(s)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
