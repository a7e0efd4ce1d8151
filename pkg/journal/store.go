package journal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when no entry file exists for a date.
var ErrNotFound = errors.New("journal: entry not found")

// DefaultMinSubstantialChars is the brain-dump length an entry must exceed
// before it is considered worth sending to the LLM. Historical snapshots of
// this system used both 1 and 50; 50 is the documented production value and
// it is overridable via configuration.
const DefaultMinSubstantialChars = 50

// Store reads and writes entries under a diary root and a planner root.
// The two roots may be the same directory.
type Store struct {
	diaryDir   string
	plannerDir string
	minChars   int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithMinSubstantialChars overrides the substantiality threshold used by
// EntriesForDates and Substantial.
func WithMinSubstantialChars(n int) StoreOption {
	return func(s *Store) {
		s.minChars = n
	}
}

// NewStore creates a store over the given roots. If plannerDir is empty the
// diary root is used for plan entries as well.
func NewStore(diaryDir, plannerDir string, opts ...StoreOption) *Store {
	if plannerDir == "" {
		plannerDir = diaryDir
	}
	s := &Store{
		diaryDir:   diaryDir,
		plannerDir: plannerDir,
		minChars:   DefaultMinSubstantialChars,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MinSubstantialChars returns the store's substantiality threshold.
func (s *Store) MinSubstantialChars() int {
	return s.minChars
}

// EntryPath returns the deterministic file path for a date and type.
func (s *Store) EntryPath(date time.Time, typ EntryType) string {
	if typ == TypePlan {
		return filepath.Join(s.plannerDir, date.Format(DateLayout)+"-plan.md")
	}
	return filepath.Join(s.diaryDir, date.Format(DateLayout)+".md")
}

// Exists reports whether an entry file exists for the date and type.
func (s *Store) Exists(date time.Time, typ EntryType) bool {
	_, err := os.Stat(s.EntryPath(date, typ))
	return err == nil
}

// Read loads the entry for a date, returning ErrNotFound if the file is
// absent.
func (s *Store) Read(date time.Time, typ EntryType) (*Entry, error) {
	path := s.EntryPath(date, typ)
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("journal: read %s: %w", path, err)
	}
	return NewEntry(date, string(b), typ), nil
}

// Write persists the entry, overwriting any existing file. The write is
// atomic (temp file plus rename) and parent directories are created on
// demand.
func (s *Store) Write(e *Entry) error {
	path := s.EntryPath(e.Date, e.Type)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("journal: create directory for %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(e.Content), 0o600); err != nil {
		return fmt.Errorf("journal: write temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("journal: atomic rename %s: %w", path, err)
	}
	return nil
}

// Substantial reports whether the entry clears the store's content threshold.
func (s *Store) Substantial(e *Entry) bool {
	return e.HasSubstantialContent(s.minChars)
}

// ListRecent scans the diary root for reflection entries dated within
// [today-days, today] and returns them newest first. Files whose names do
// not parse as dates are skipped silently.
func (s *Store) ListRecent(days int) ([]*Entry, error) {
	today := Today()
	cutoff := today.AddDate(0, 0, -days)

	dirEntries, err := os.ReadDir(s.diaryDir)
	if err != nil {
		return nil, fmt.Errorf("journal: list %s: %w", s.diaryDir, err)
	}

	var entries []*Entry
	for _, de := range dirEntries {
		if de.IsDir() || filepath.Ext(de.Name()) != ".md" {
			continue
		}
		stem := strings.TrimSuffix(de.Name(), ".md")
		date, err := time.Parse(DateLayout, stem)
		if err != nil {
			continue
		}
		if date.Before(cutoff) || date.After(today) {
			continue
		}
		b, err := os.ReadFile(filepath.Join(s.diaryDir, de.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, NewEntry(date, string(b), TypeReflection))
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

// PastCalendarDays returns the n consecutive calendar dates strictly before
// from, most recent first. These are calendar days, not existing entries;
// callers intersect with Exists to find temporal-link candidates.
func (s *Store) PastCalendarDays(from time.Time, n int) []time.Time {
	dates := make([]time.Time, 0, n)
	for i := 1; i <= n; i++ {
		dates = append(dates, from.AddDate(0, 0, -i))
	}
	return dates
}

// EntriesForDates returns reflection entries for the given dates that both
// exist and have substantial content, in the order the dates were given.
func (s *Store) EntriesForDates(dates []time.Time) []*Entry {
	var entries []*Entry
	for _, d := range dates {
		e, err := s.Read(d, TypeReflection)
		if err != nil {
			continue
		}
		if s.Substantial(e) {
			entries = append(entries, e)
		}
	}
	return entries
}

// Today returns the current date truncated to midnight UTC.
func Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
