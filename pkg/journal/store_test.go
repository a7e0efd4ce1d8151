package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), t.TempDir())
}

func TestStoreWriteReadRoundtrip(t *testing.T) {
	store := newTestStore(t)

	e := NewEntry(testDate, sampleContent, TypeReflection)
	require.NoError(t, store.Write(e))

	got, err := store.Read(testDate, TypeReflection)
	require.NoError(t, err)
	assert.Equal(t, sampleContent, got.Content)
	assert.Equal(t, TypeReflection, got.Type)
	assert.True(t, got.Date.Equal(testDate))
}

func TestStoreReadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read(testDate, TypeReflection)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreEntryPath(t *testing.T) {
	store := NewStore("/diary", "/planner")

	assert.Equal(t, filepath.Join("/diary", "2026-08-29.md"), store.EntryPath(testDate, TypeReflection))
	assert.Equal(t, filepath.Join("/planner", "2026-08-29-plan.md"), store.EntryPath(testDate, TypePlan))
}

func TestStorePlanFallsBackToDiaryDir(t *testing.T) {
	store := NewStore("/diary", "")
	assert.Equal(t, filepath.Join("/diary", "2026-08-29-plan.md"), store.EntryPath(testDate, TypePlan))
}

func TestStoreExists(t *testing.T) {
	store := newTestStore(t)

	assert.False(t, store.Exists(testDate, TypeReflection))
	require.NoError(t, store.Write(NewEntry(testDate, "x", TypeReflection)))
	assert.True(t, store.Exists(testDate, TypeReflection))
	assert.False(t, store.Exists(testDate, TypePlan))
}

func TestStoreWriteOverwritesAtomically(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Write(NewEntry(testDate, "first", TypeReflection)))
	require.NoError(t, store.Write(NewEntry(testDate, "second", TypeReflection)))

	got, err := store.Read(testDate, TypeReflection)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Content)

	// No temp files left behind.
	files, err := os.ReadDir(filepath.Dir(store.EntryPath(testDate, TypeReflection)))
	require.NoError(t, err)
	for _, f := range files {
		assert.False(t, strings.HasSuffix(f.Name(), ".tmp"), "leftover temp file %s", f.Name())
	}
}

func TestListRecent(t *testing.T) {
	store := newTestStore(t)
	today := Today()

	for _, daysAgo := range []int{0, 1, 3, 10} {
		date := today.AddDate(0, 0, -daysAgo)
		require.NoError(t, store.Write(NewEntry(date, "## Brain Dump\ncontent\n", TypeReflection)))
	}

	// Malformed filenames are skipped silently.
	require.NoError(t, os.WriteFile(filepath.Join(store.diaryDir, "notes.md"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(store.diaryDir, "2026-13-99.md"), []byte("x"), 0o600))

	entries, err := store.ListRecent(7)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	assert.True(t, entries[0].Date.Equal(today))
	assert.True(t, entries[1].Date.Equal(today.AddDate(0, 0, -1)))
	assert.True(t, entries[2].Date.Equal(today.AddDate(0, 0, -3)))
}

func TestListRecentEmptyDir(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.ListRecent(30)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPastCalendarDays(t *testing.T) {
	store := newTestStore(t)

	dates := store.PastCalendarDays(testDate, 3)
	require.Len(t, dates, 3)
	assert.Equal(t, "2026-08-28", dates[0].Format(DateLayout))
	assert.Equal(t, "2026-08-27", dates[1].Format(DateLayout))
	assert.Equal(t, "2026-08-26", dates[2].Format(DateLayout))
}

func TestEntriesForDates(t *testing.T) {
	store := newTestStore(t)

	substantial := "## Brain Dump\n" + strings.Repeat("long enough content. ", 5) + "\n"
	require.NoError(t, store.Write(NewEntry(testDate, substantial, TypeReflection)))
	require.NoError(t, store.Write(NewEntry(testDate.AddDate(0, 0, -1), "## Brain Dump\nhi\n", TypeReflection)))
	// -2 days: no entry at all.

	dates := []time.Time{testDate, testDate.AddDate(0, 0, -1), testDate.AddDate(0, 0, -2)}
	entries := store.EntriesForDates(dates)

	require.Len(t, entries, 1)
	assert.True(t, entries[0].Date.Equal(testDate))
}

func TestSubstantialThresholdOverride(t *testing.T) {
	store := NewStore(t.TempDir(), "", WithMinSubstantialChars(2))

	e := NewEntry(testDate, "## Brain Dump\nhey\n", TypeReflection)
	assert.True(t, store.Substantial(e))

	strict := NewStore(t.TempDir(), "")
	assert.False(t, strict.Substantial(e))
	assert.Equal(t, DefaultMinSubstantialChars, strict.MinSubstantialChars())
}
