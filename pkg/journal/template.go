package journal

import (
	"fmt"
	"strings"
	"time"
)

// NewEntryTemplate builds a fresh reflection entry containing the given
// prompts and an empty brain dump. Memory links are added later by the link
// pass, never at creation time.
func NewEntryTemplate(date time.Time, prompts []string) *Entry {
	var b strings.Builder
	b.WriteString("## Reflection Prompts\n")
	for i, prompt := range prompts {
		fmt.Fprintf(&b, "**%d. %s**\n\n", i+1, prompt)
	}
	b.WriteString("---\n\n")
	b.WriteString("## Brain Dump\n")
	return NewEntry(date, b.String(), TypeReflection)
}

// NewPlanTemplate builds a fresh plan entry with a daily focus section, an
// action-item checklist seeded from pendingTodos, and an empty brain dump.
func NewPlanTemplate(date time.Time, focus []string, pendingTodos []string) *Entry {
	var b strings.Builder
	b.WriteString("## Daily Focus\n")
	for i, prompt := range focus {
		fmt.Fprintf(&b, "**%d. %s**\n\n", i+1, prompt)
	}
	b.WriteString("---\n\n")
	b.WriteString("## Action Items\n")
	if len(pendingTodos) > 0 {
		for _, todo := range pendingTodos {
			b.WriteString("- [ ] " + todo + "\n")
		}
	} else {
		b.WriteString("- [ ] \n")
	}
	b.WriteString("\n---\n\n")
	b.WriteString("## Brain Dump\n")
	return NewEntry(date, b.String(), TypePlan)
}
