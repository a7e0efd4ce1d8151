package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEntryTemplate(t *testing.T) {
	e := NewEntryTemplate(testDate, []string{
		"What went well? [[2026-08-28]]",
		"What needs attention?",
	})

	assert.Equal(t, TypeReflection, e.Type)
	assert.Contains(t, e.Content, "## Reflection Prompts")
	assert.Contains(t, e.Content, "**1. What went well? [[2026-08-28]]**")
	assert.Contains(t, e.Content, "**2. What needs attention?**")
	assert.Contains(t, e.Content, "## Brain Dump")
	assert.Empty(t, e.BrainDump())
}

func TestNewPlanTemplate(t *testing.T) {
	e := NewPlanTemplate(testDate, nil, []string{
		"Review pull request (from [[2026-08-28]])",
		"Call the dentist",
	})

	assert.Equal(t, TypePlan, e.Type)
	assert.Contains(t, e.Content, "## Action Items")
	assert.Contains(t, e.Content, "- [ ] Review pull request (from [[2026-08-28]])")
	assert.Contains(t, e.Content, "- [ ] Call the dentist")
	assert.Contains(t, e.Content, "## Brain Dump")
}

func TestNewPlanTemplateNoTodos(t *testing.T) {
	e := NewPlanTemplate(testDate, nil, nil)

	// An empty checklist still leaves a blank checkbox to fill in.
	assert.Contains(t, e.Content, "- [ ] \n")
}
