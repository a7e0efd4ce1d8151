// Package journal manages dated markdown diary and plan entries.
//
// Entries live as plain markdown files named YYYY-MM-DD.md (reflections) or
// YYYY-MM-DD-plan.md (plans). Each file is divided into sections introduced
// by "## <Heading>" lines and separated by "---" horizontal rules. The
// section grammar is deliberately narrow — these files are self-generated,
// so delimiter scanning is sufficient:
//
//   - a section body starts after "## <Heading>\n" and runs until the next
//     "\n---", the next "\n##", or end of file
//   - "## Memory Links" always runs to end of file
//   - a missing heading yields an empty section, not an error
package journal

import (
	"regexp"
	"strings"
	"time"
)

// EntryType distinguishes the two kinds of dated documents.
type EntryType string

const (
	TypeReflection EntryType = "reflection"
	TypePlan       EntryType = "plan"
)

// DateLayout is the canonical date format used in filenames and backlinks.
const DateLayout = "2006-01-02"

var (
	reflectionPromptsRe = regexp.MustCompile(`(?s)## Reflection Prompts\n(.*?)(?:\n---|\n##|$)`)
	brainDumpRe         = regexp.MustCompile(`(?s)## Brain Dump\n(.*?)(?:\n---|\n##|$)`)
	memoryLinksRe       = regexp.MustCompile(`(?s)## Memory Links\n(.*)$`)
	backlinkRe          = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	tagRe               = regexp.MustCompile(`#(\w+)`)
)

// Entry is one dated markdown document. Sections are parsed lazily from
// Content on first access and cached; SetContent invalidates the cache.
// Parsing the same content twice always yields identical section text.
type Entry struct {
	Date    time.Time
	Type    EntryType
	Content string

	parsed            bool
	reflectionPrompts string
	brainDump         string
	memoryLinks       string
}

// NewEntry creates an in-memory entry for the given date and type.
func NewEntry(date time.Time, content string, typ EntryType) *Entry {
	if typ == "" {
		typ = TypeReflection
	}
	return &Entry{Date: date, Type: typ, Content: content}
}

// Filename returns the file name this entry is stored under.
func (e *Entry) Filename() string {
	if e.Type == TypePlan {
		return e.Date.Format(DateLayout) + "-plan.md"
	}
	return e.Date.Format(DateLayout) + ".md"
}

// DateString returns the entry date in YYYY-MM-DD form.
func (e *Entry) DateString() string {
	return e.Date.Format(DateLayout)
}

// SetContent replaces the raw markdown and drops any cached sections.
func (e *Entry) SetContent(content string) {
	e.Content = content
	e.parsed = false
	e.reflectionPrompts = ""
	e.brainDump = ""
	e.memoryLinks = ""
}

func (e *Entry) parseSections() {
	if e.parsed {
		return
	}
	if m := reflectionPromptsRe.FindStringSubmatch(e.Content); m != nil {
		e.reflectionPrompts = strings.TrimSpace(m[1])
	}
	if m := brainDumpRe.FindStringSubmatch(e.Content); m != nil {
		e.brainDump = strings.TrimSpace(m[1])
	}
	if m := memoryLinksRe.FindStringSubmatch(e.Content); m != nil {
		e.memoryLinks = strings.TrimSpace(m[1])
	}
	e.parsed = true
}

// ReflectionPrompts returns the body of the "## Reflection Prompts" section.
func (e *Entry) ReflectionPrompts() string {
	e.parseSections()
	return e.reflectionPrompts
}

// BrainDump returns the body of the "## Brain Dump" section, the entry's
// primary free-form text.
func (e *Entry) BrainDump() string {
	e.parseSections()
	return e.brainDump
}

// MemoryLinks returns the body of the "## Memory Links" section.
func (e *Entry) MemoryLinks() string {
	e.parseSections()
	return e.memoryLinks
}

// HasSubstantialContent reports whether the brain dump exceeds minChars.
// Entries below the threshold are skipped by LLM analysis.
func (e *Entry) HasSubstantialContent(minChars int) bool {
	return len(e.BrainDump()) > minChars
}

// Backlinks returns every [[target]] reference in the entry content.
func (e *Entry) Backlinks() []string {
	matches := backlinkRe.FindAllStringSubmatch(e.Content, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		links = append(links, m[1])
	}
	return links
}

// Tags returns every #tag token in the entry content, without the prefix.
func (e *Entry) Tags() []string {
	matches := tagRe.FindAllStringSubmatch(e.Content, -1)
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	return tags
}
