package journal

import (
	"strings"
)

// LinkMeta carries the confidence level and explanation attached to a
// semantically chosen link. Dates without metadata render as plain links.
type LinkMeta struct {
	Confidence string
	Reason     string
}

// confidenceGlyphs maps a confidence level to its markdown marker.
var confidenceGlyphs = map[string]string{
	"high":   "**",
	"medium": "*",
	"low":    "~",
}

const memoryHeading = "## Memory Links"

// MergeLinks rebuilds the entry's "## Memory Links" section from the given
// temporal links, topic tags, and per-date metadata. An existing section is
// replaced from its heading to end of file; otherwise the section is
// appended after a blank line. The operation is idempotent: repeated calls
// with identical inputs produce identical content.
//
// When metadata is non-nil, links render one per bullet with a confidence
// glyph and an italicized reason; otherwise the legacy single-line
// bullet-separated format is used.
func MergeLinks(e *Entry, temporalLinks []string, tags []string, metadata map[string]LinkMeta) {
	lines := []string{memoryHeading}

	if len(temporalLinks) > 0 {
		if metadata != nil {
			lines = append(lines, "**Temporal:**")
			for _, link := range temporalLinks {
				lines = append(lines, formatLinkLine(link, metadata[link]))
			}
		} else {
			parts := make([]string, 0, len(temporalLinks))
			for _, link := range temporalLinks {
				parts = append(parts, "[["+link+"]]")
			}
			lines = append(lines, "**Temporal:** "+strings.Join(parts, " • "))
		}
	}

	if len(tags) > 0 {
		tokens := make([]string, 0, len(tags))
		for _, tag := range tags {
			tokens = append(tokens, "#"+tag)
		}
		lines = append(lines, "**Topics:** "+strings.Join(tokens, " "))
	}

	section := strings.Join(lines, "\n")

	if idx := strings.Index(e.Content, memoryHeading); idx >= 0 {
		// Existing section is replaced wholesale, heading to end of file.
		e.SetContent(e.Content[:idx] + section)
	} else {
		e.SetContent(strings.TrimRight(e.Content, "\n") + "\n\n" + section)
	}
}

func formatLinkLine(link string, meta LinkMeta) string {
	line := "- [[" + link + "]]"
	if meta.Confidence != "" {
		glyph, ok := confidenceGlyphs[meta.Confidence]
		if !ok {
			glyph = "*"
		}
		line += " " + glyph
	}
	if meta.Reason != "" {
		line += " *" + meta.Reason + "*"
	}
	return line
}
