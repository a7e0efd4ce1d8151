package analysis

import (
	"context"

	"github.com/madebygps/second-brain/pkg/journal"
)

// LinkOptions bounds one link-assembly run.
type LinkOptions struct {
	// MaxLinks caps semantic links; MaxTags caps topic tags. Both must be
	// positive.
	MaxLinks int
	MaxTags  int
	// TemporalLookbackDays is the window of prior calendar days whose
	// existing entries become temporal links.
	TemporalLookbackDays int
	// PastEntriesLookbackDays is the window scanned for semantic-link
	// candidates.
	PastEntriesLookbackDays int
	// Validate enables the bidirectional check on high-confidence links.
	Validate bool
}

// DefaultLinkOptions returns the production assembly limits.
func DefaultLinkOptions() LinkOptions {
	return LinkOptions{
		MaxLinks:                5,
		MaxTags:                 5,
		TemporalLookbackDays:    3,
		PastEntriesLookbackDays: 90,
	}
}

// LinkSet is the assembled output for one entry, ready for the link
// writer.
type LinkSet struct {
	// Temporal holds the merged link list: date-adjacent links first, then
	// semantic links whose dates were not already present.
	Temporal []string
	Tags     []string
	// Metadata maps a semantic link's date to its confidence and reason
	// for enhanced rendering. Purely temporal links have no metadata.
	Metadata map[string]journal.LinkMeta
	Semantic []SemanticLink
}

// BuildLinks runs the full analysis for one entry: semantic scoring over
// the recent-entry window, tag generation, temporal links from the prior
// calendar days that have entries, and the union of the two lists with
// semantic dates deduplicated against the temporal set.
//
// Returns an error for invalid options, store scan failures, or ledger
// write failures; LLM-availability failures degrade per step, so a dead
// provider still yields temporal links.
func (a *Analyzer) BuildLinks(ctx context.Context, store *journal.Store, entry *journal.Entry, opts LinkOptions) (*LinkSet, error) {
	candidates, err := store.ListRecent(opts.PastEntriesLookbackDays)
	if err != nil {
		return nil, err
	}

	semantic, err := a.FindSemanticLinks(ctx, entry, candidates, opts.MaxLinks)
	if err != nil {
		return nil, err
	}

	if opts.Validate && len(semantic) > 0 {
		byDate := make(map[string]*journal.Entry, len(candidates))
		for _, candidate := range candidates {
			byDate[candidate.DateString()] = candidate
		}
		semantic = a.ValidateLinks(ctx, entry, semantic, byDate)
	}

	tags, err := a.GenerateTags(ctx, []*journal.Entry{entry}, opts.MaxTags)
	if err != nil {
		return nil, err
	}

	var temporal []string
	for _, date := range store.PastCalendarDays(entry.Date, opts.TemporalLookbackDays) {
		if store.Exists(date, journal.TypeReflection) {
			temporal = append(temporal, date.Format(journal.DateLayout))
		}
	}

	// A nil metadata map keeps the legacy single-line rendering when no
	// semantic links were produced.
	var metadata map[string]journal.LinkMeta
	if len(semantic) > 0 {
		metadata = make(map[string]journal.LinkMeta, len(semantic))
	}
	for _, link := range semantic {
		if !contains(temporal, link.TargetDate) {
			temporal = append(temporal, link.TargetDate)
		}
		metadata[link.TargetDate] = journal.LinkMeta{
			Confidence: string(link.Confidence),
			Reason:     link.Reason,
		}
	}

	return &LinkSet{
		Temporal: temporal,
		Tags:     tags,
		Metadata: metadata,
		Semantic: semantic,
	}, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
