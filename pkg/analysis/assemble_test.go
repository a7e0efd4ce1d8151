package analysis

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madebygps/second-brain/pkg/journal"
)

// newLinkFixture seeds a store with a substantial target entry for today
// plus entries on the given past offsets (days before today).
func newLinkFixture(t *testing.T, pastOffsets ...int) (*journal.Store, *journal.Entry) {
	t.Helper()
	store := journal.NewStore(t.TempDir(), t.TempDir())

	target := substantialEntry(journal.Today())
	require.NoError(t, store.Write(target))
	for _, offset := range pastOffsets {
		require.NoError(t, store.Write(substantialEntry(journal.Today().AddDate(0, 0, -offset))))
	}
	return store, target
}

func dayString(offset int) string {
	return journal.Today().AddDate(0, 0, -offset).Format(journal.DateLayout)
}

func TestBuildLinks(t *testing.T) {
	store, target := newLinkFixture(t, 1, 2, 5)

	completer := &scriptedCompleter{responses: map[string]string{
		"entity_extraction": emptyEntities,
		"semantic_backlinks": fmt.Sprintf(
			`[{"date": %q, "confidence": "high", "reason": "same project"},
			  {"date": %q, "confidence": "low", "reason": "weak echo"}]`,
			dayString(5), dayString(1)),
		"semantic_tags": "#tension\n#budgeting\n",
	}}
	a := newTestAnalyzer(t, completer)

	links, err := a.BuildLinks(context.Background(), store, target, DefaultLinkOptions())
	require.NoError(t, err)

	// Temporal links come first: the prior calendar days with entries
	// (day -3 has none), then semantic dates not already present.
	assert.Equal(t, []string{dayString(1), dayString(2), dayString(5)}, links.Temporal)
	assert.Equal(t, []string{"tension", "budgeting"}, links.Tags)

	// Every semantic link carries metadata, including ones whose date was
	// already temporal.
	require.Len(t, links.Metadata, 2)
	assert.Equal(t, journal.LinkMeta{Confidence: "high", Reason: "same project"}, links.Metadata[dayString(5)])
	assert.Equal(t, journal.LinkMeta{Confidence: "low", Reason: "weak echo"}, links.Metadata[dayString(1)])

	require.Len(t, links.Semantic, 2)
	assert.Empty(t, completer.callsFor("link_validation"), "validation is off by default")
}

func TestBuildLinksWithValidation(t *testing.T) {
	store, target := newLinkFixture(t, 2)

	completer := &scriptedCompleter{responses: map[string]string{
		"entity_extraction": emptyEntities,
		"semantic_backlinks": fmt.Sprintf(
			`[{"date": %q, "confidence": "high", "reason": "same project"}]`, dayString(2)),
		"semantic_tags":   "#tension\n",
		"link_validation": "no",
	}}
	a := newTestAnalyzer(t, completer)

	opts := DefaultLinkOptions()
	opts.Validate = true
	links, err := a.BuildLinks(context.Background(), store, target, opts)
	require.NoError(t, err)

	require.Len(t, links.Semantic, 1)
	assert.Equal(t, ConfidenceMedium, links.Semantic[0].Confidence)
	assert.Equal(t, "medium", links.Metadata[dayString(2)].Confidence)
	assert.Equal(t, 1, completer.callsFor("link_validation"))
}

func TestBuildLinksDegradedProviderKeepsTemporalLinks(t *testing.T) {
	store, target := newLinkFixture(t, 1, 3)

	providerDown := errors.New("connection refused")
	completer := &scriptedCompleter{failures: map[string]error{
		"entity_extraction":  providerDown,
		"semantic_backlinks": providerDown,
		"semantic_tags":      providerDown,
	}}
	a := newTestAnalyzer(t, completer)

	links, err := a.BuildLinks(context.Background(), store, target, DefaultLinkOptions())
	require.NoError(t, err, "a dead provider degrades, it does not fail the run")

	assert.Equal(t, []string{dayString(1), dayString(3)}, links.Temporal)
	assert.Empty(t, links.Tags)
	assert.Empty(t, links.Semantic)
	assert.Nil(t, links.Metadata, "no semantic links means legacy single-line rendering")

	// The merged section therefore uses the compact temporal format.
	journal.MergeLinks(target, links.Temporal, links.Tags, links.Metadata)
	assert.Contains(t, target.Content,
		"**Temporal:** [["+dayString(1)+"]] • [["+dayString(3)+"]]")
}

func TestBuildLinksIgnoresSelfDateFromModel(t *testing.T) {
	store, target := newLinkFixture(t, 2)
	self := target.DateString()

	completer := &scriptedCompleter{responses: map[string]string{
		"entity_extraction": emptyEntities,
		"semantic_backlinks": fmt.Sprintf(
			`[{"date": %q, "confidence": "high", "reason": "self-reference"},
			  {"date": %q, "confidence": "medium", "reason": "real link"}]`,
			self, dayString(2)),
		"semantic_tags": "#tension\n",
	}}
	a := newTestAnalyzer(t, completer)

	links, err := a.BuildLinks(context.Background(), store, target, DefaultLinkOptions())
	require.NoError(t, err)

	assert.NotContains(t, links.Temporal, self)
	require.Len(t, links.Semantic, 1)
	assert.Equal(t, dayString(2), links.Semantic[0].TargetDate)
	_, hasSelf := links.Metadata[self]
	assert.False(t, hasSelf)
}

func TestBuildLinksEmptyStore(t *testing.T) {
	store := journal.NewStore(t.TempDir(), t.TempDir())
	target := substantialEntry(journal.Today())
	require.NoError(t, store.Write(target))

	completer := &scriptedCompleter{responses: map[string]string{
		"entity_extraction":  emptyEntities,
		"semantic_backlinks": "[]",
		"semantic_tags":      "#alone\n",
	}}
	a := newTestAnalyzer(t, completer)

	links, err := a.BuildLinks(context.Background(), store, target, DefaultLinkOptions())
	require.NoError(t, err)

	assert.Empty(t, links.Temporal)
	assert.Equal(t, []string{"alone"}, links.Tags)
}

func TestDefaultLinkOptions(t *testing.T) {
	opts := DefaultLinkOptions()
	assert.Equal(t, 5, opts.MaxLinks)
	assert.Equal(t, 5, opts.MaxTags)
	assert.Equal(t, 3, opts.TemporalLookbackDays)
	assert.Equal(t, 90, opts.PastEntriesLookbackDays)
	assert.False(t, opts.Validate)
}
