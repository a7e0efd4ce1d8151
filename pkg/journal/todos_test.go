package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTodos(t *testing.T) {
	content := `## Brain Dump
- TODO: send the invoice to the client
- [ ] review the deployment checklist
- [x] already done, should not appear
TODO: book flights for the conference
I need to call the landlord about the lease.
Nothing actionable here.
`
	e := NewEntry(testDate, content, TypeReflection)
	todos := ExtractTodos(e)

	assert.Contains(t, todos, "send the invoice to the client")
	assert.Contains(t, todos, "review the deployment checklist")
	assert.Contains(t, todos, "book flights for the conference")
	assert.Contains(t, todos, "call the landlord about the lease")
	assert.NotContains(t, todos, "already done, should not appear")
}

func TestExtractTodosFiltersShortMatches(t *testing.T) {
	e := NewEntry(testDate, "- [ ] ab\n- [ ] long enough task\n", TypeReflection)
	todos := ExtractTodos(e)

	assert.Equal(t, []string{"long enough task"}, todos)
}

func TestExtractTodosEmptyEntry(t *testing.T) {
	e := NewEntry(testDate, "## Brain Dump\njust reflections, no actions\n", TypeReflection)
	assert.Empty(t, ExtractTodos(e))
}
