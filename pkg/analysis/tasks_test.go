package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madebygps/second-brain/pkg/journal"
)

func TestExtractTasks(t *testing.T) {
	completer := &scriptedCompleter{responses: map[string]string{
		"task_extraction": "1. Follow up with Maria about the budget\n2) Send the revised proposal\nnot a numbered line\n3. ok\n",
	}}
	a := newTestAnalyzer(t, completer)

	tasks, err := a.ExtractTasks(context.Background(), substantialEntry(testDate))
	require.NoError(t, err)

	// Unnumbered lines and too-short tasks are dropped.
	assert.Equal(t, []string{
		"Follow up with Maria about the budget",
		"Send the revised proposal",
	}, tasks)
}

func TestExtractTasksNoTasksMarker(t *testing.T) {
	completer := &scriptedCompleter{responses: map[string]string{"task_extraction": "NO_TASKS"}}
	a := newTestAnalyzer(t, completer)

	tasks, err := a.ExtractTasks(context.Background(), substantialEntry(testDate))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestExtractTasksSkipsThinEntries(t *testing.T) {
	completer := &scriptedCompleter{}
	a := newTestAnalyzer(t, completer)

	entry := journal.NewEntry(testDate, "## Brain Dump\nhi\n", journal.TypeReflection)
	tasks, err := a.ExtractTasks(context.Background(), entry)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	assert.Empty(t, completer.requests)
}

func TestExtractTasksDegradesOnFailure(t *testing.T) {
	completer := &scriptedCompleter{failures: map[string]error{"task_extraction": errors.New("timeout")}}
	a := newTestAnalyzer(t, completer)

	tasks, err := a.ExtractTasks(context.Background(), substantialEntry(testDate))
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
