package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/madebygps/second-brain/pkg/journal"
	"github.com/madebygps/second-brain/pkg/llm"
)

const (
	taskExtractionTemperature = 0.3
	taskExtractionMaxTokens   = 300
	minTaskChars              = 5
	noTasksMarker             = "NO_TASKS"
)

const taskSystemPrompt = `You are a task extraction assistant. Analyze diary entries and extract actionable tasks for today.

Extract tasks that:
- Are mentioned as incomplete, pending, or needing follow-up
- Represent specific actions (not vague intentions)
- Are relevant for the next day
- Include follow-ups from meetings or conversations

Do NOT extract:
- Completed activities (past tense)
- General reflections or feelings
- Vague intentions without clear actions

Format: Return ONLY a numbered list of tasks, one per line.
Example:
1. Follow up with Sarah about project proposal
2. Review and merge pull request #42
3. Prepare slides for Thursday presentation

If no actionable tasks are found, return: NO_TASKS`

var taskNumberPrefix = regexp.MustCompile(`^\d+[.)\s]+`)

// ExtractTasks pulls actionable tasks out of a diary entry's brain dump
// for carrying into the next day's plan. Thin entries are skipped without
// a call; generation failures degrade to no tasks.
func (a *Analyzer) ExtractTasks(ctx context.Context, entry *journal.Entry) ([]string, error) {
	dump := strings.TrimSpace(entry.BrainDump())
	if len(dump) < a.limits.MinEntityChars {
		a.log.Debugf("skipping task extraction for %s: content too short", entry.DateString())
		return nil, nil
	}

	userPrompt := fmt.Sprintf(`Analyze this diary entry from [[%s]] and extract actionable tasks for today:

%s

Extract specific, actionable tasks that should be done today. Return as a numbered list or NO_TASKS if none found.`, entry.DateString(), dump)

	response, err := a.gw.Complete(ctx, llm.Request{
		Prompt:      userPrompt,
		System:      taskSystemPrompt,
		Temperature: taskExtractionTemperature,
		MaxTokens:   taskExtractionMaxTokens,
		Operation:   "task_extraction",
		EntryDate:   entry.DateString(),
	})
	if err != nil {
		if degradable(err) {
			a.log.Warnf("task extraction failed for %s: %v", entry.DateString(), err)
			return nil, nil
		}
		return nil, err
	}

	if strings.Contains(strings.ToUpper(response), noTasksMarker) {
		return nil, nil
	}

	var tasks []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}
		task := strings.TrimSpace(taskNumberPrefix.ReplaceAllString(line, ""))
		if len(task) > minTaskChars {
			tasks = append(tasks, task)
		}
	}
	return tasks, nil
}
