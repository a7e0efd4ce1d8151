package journal

import (
	"regexp"
	"strings"
)

// minTodoLength filters out fragments too short to be actionable.
const minTodoLength = 3

// todoPatterns match the ways action items show up in free-form entries:
// explicit TODO bullets, unchecked checkboxes, bare TODO lines, and
// natural-language intent ("I need to ...").
var todoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)(?:^|\n)[-*•]\s*(?:TODO|To do|Action):\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?im)(?:^|\n)[-*•]\s*\[ \]\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?im)(?:^|\n)(?:TODO|To do|Action):\s*(.+?)(?:\n|$)`),
	regexp.MustCompile(`(?im)(?:^|\n)(?:I need to|I should|I must|I will)\s+(.+?)(?:\.|$)`),
}

// ExtractTodos scans entry content for action items. Matches shorter than
// minTodoLength characters are discarded.
func ExtractTodos(e *Entry) []string {
	var todos []string
	for _, pattern := range todoPatterns {
		for _, m := range pattern.FindAllStringSubmatch(e.Content, -1) {
			todo := strings.TrimSpace(m[1])
			if len(todo) > minTodoLength {
				todos = append(todos, todo)
			}
		}
	}
	return todos
}
