package analysis

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/madebygps/second-brain/pkg/journal"
	"github.com/madebygps/second-brain/pkg/llm"
)

const themePromptFmt = `Analyze these diary entries and identify the %d most significant recurring themes or topics.

Focus on:
- Main activities and projects
- Recurring concerns or interests
- Emotional patterns
- Life areas (work, relationships, health, learning, hobbies)
- Specific subjects or goals being worked on

Return ONLY the theme names as a simple list, one per line. Be specific and meaningful.
Do not include numbers, bullets, or explanations - just the theme names.

Entries:
%s`

const (
	// ReportThemeCount is how many themes the model is asked for; the
	// rendered report shows at most reportThemesShown.
	ReportThemeCount = 15

	reportThemesShown  = 10
	reportTopConnected = 5
	reportSampleSize   = 20
	reportMaxLinks     = 5
	themeMaxTokens     = 200
	minThemeChars      = 2
)

var themePrefix = regexp.MustCompile(`^[\d\-\*\.\)\]]+\s*`)

// ExtractThemes asks the model for the topN recurring themes across a set of
// entries, sampling at most reportSampleSize of them for token efficiency.
// Generation failures degrade to an empty list; the caller decides how to
// render the absence.
func (a *Analyzer) ExtractThemes(ctx context.Context, entries []*journal.Entry, topN int) ([]string, error) {
	if topN <= 0 {
		return nil, fmt.Errorf("%w: topN=%d", ErrInvalidLimit, topN)
	}
	if len(entries) == 0 {
		return []string{}, nil
	}

	sample := entries
	if len(sample) > reportSampleSize {
		sample = sample[:reportSampleSize]
	}
	previews := make([]string, 0, len(sample))
	for _, entry := range sample {
		preview := truncate(entry.BrainDump(), a.limits.EntryPreviewChars)
		previews = append(previews, fmt.Sprintf("[%s]: %s", entry.DateString(), preview))
	}

	response, err := a.gw.Complete(ctx, llm.Request{
		Prompt:      fmt.Sprintf(themePromptFmt, topN, strings.Join(previews, "\n\n")),
		Temperature: a.limits.SemanticTemperature,
		MaxTokens:   themeMaxTokens,
		Operation:   "report_themes",
	})
	if err != nil {
		if degradable(err) {
			a.log.Warnf("theme extraction failed over %d entries: %v", len(entries), err)
			return []string{}, nil
		}
		return nil, err
	}

	themes := []string{}
	for _, line := range strings.Split(response, "\n") {
		theme := strings.TrimSpace(themePrefix.ReplaceAllString(strings.TrimSpace(line), ""))
		if len(theme) > minThemeChars {
			themes = append(themes, theme)
			if len(themes) >= topN {
				break
			}
		}
	}
	return themes, nil
}

// MemoryTraceReport renders a markdown analysis of a period of entries: the
// recurring themes across the period, then the entries most connected to the
// rest of the set by semantic scoring. Each entry in the set costs one
// scoring pass, so the report is the most expensive operation the analyzer
// offers.
func (a *Analyzer) MemoryTraceReport(ctx context.Context, entries []*journal.Entry) (string, error) {
	if len(entries) == 0 {
		return "No entries found for analysis.", nil
	}

	sorted := append([]*journal.Entry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	lines := []string{
		"# Memory Trace Analysis",
		"",
		fmt.Sprintf("**Period:** %s to %s", sorted[0].DateString(), sorted[len(sorted)-1].DateString()),
		fmt.Sprintf("**Entries:** %d", len(sorted)),
		"",
		"## Recurring Themes",
		"",
	}

	themes, err := a.ExtractThemes(ctx, sorted, ReportThemeCount)
	if err != nil {
		return "", err
	}
	if len(themes) == 0 {
		lines = append(lines, "No clear themes identified")
	}
	if len(themes) > reportThemesShown {
		themes = themes[:reportThemesShown]
	}
	for i, theme := range themes {
		lines = append(lines, fmt.Sprintf("%d. **%s**", i+1, theme))
	}

	lines = append(lines, "", "## Most Connected Entries", "")

	type connection struct {
		date  string
		count int
	}
	var connections []connection
	for _, entry := range sorted {
		links, err := a.FindSemanticLinks(ctx, entry, sorted, reportMaxLinks)
		if err != nil {
			return "", err
		}
		if len(links) > 0 {
			connections = append(connections, connection{entry.DateString(), len(links)})
		}
	}
	sort.SliceStable(connections, func(i, j int) bool { return connections[i].count > connections[j].count })
	if len(connections) > reportTopConnected {
		connections = connections[:reportTopConnected]
	}
	for _, c := range connections {
		lines = append(lines, fmt.Sprintf("- [[%s]] (%d related entries)", c.date, c.count))
	}

	return strings.Join(lines, "\n"), nil
}
