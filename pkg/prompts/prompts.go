// Package prompts generates LLM-written reflection questions for new diary
// entries, grounded in the user's recent entries and falling back to
// generic questions when the provider is unavailable.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/madebygps/second-brain/pkg/journal"
	"github.com/madebygps/second-brain/pkg/llm"
	"github.com/madebygps/second-brain/pkg/logging"
)

const (
	// DailyCount is how many prompts a weekday entry gets; WeeklyCount
	// applies to Sunday entries.
	DailyCount  = 3
	WeeklyCount = 5

	// DailyContextDays and WeeklyContextDays bound how far back entries are
	// read for prompt context.
	DailyContextDays  = 3
	WeeklyContextDays = 7

	dailyTemperature  = 0.9
	weeklyTemperature = 0.8

	dailyMaxTokens  = 300
	weeklyMaxTokens = 500

	previewChars = 400
)

const dailySystemPrompt = `You are a thoughtful journaling assistant. Generate 3 reflective questions
based on the user's recent diary entries. Questions should:
- MUST reference at least one specific entry using [[YYYY-MM-DD]] format in each question
- Build on themes, questions, or situations mentioned in the referenced entries
- Encourage deeper reflection
- Be personal and specific (not generic)
- Do NOT use emojis in your questions
- Use plain text only

CRITICAL: Each of the 3 questions MUST address DIFFERENT topics from the entries.
- Question 1: Focus on one theme/topic
- Question 2: Focus on a DIFFERENT theme/topic
- Question 3: Focus on yet ANOTHER distinct theme/topic

Do NOT make multiple questions about the same topic or event. Spread across the diversity of experiences mentioned.

IMPORTANT: Each question MUST include at least one [[YYYY-MM-DD]] backlink to show where the prompt came from.

Format each question on a new line, numbered 1-3. Be concise.`

const weeklySystemPrompt = `You are a thoughtful journaling assistant. Generate 5 weekly reflection questions
based on the user's past week of diary entries. Questions should:
- MUST reference at least one specific entry using [[YYYY-MM-DD]] format in each question
- Help identify patterns and themes across the week
- Encourage broader reflection on progress and direction
- Be personal and specific (not generic)
- Do NOT use emojis in your questions
- Use plain text only

CRITICAL: Each of the 5 questions MUST address DIFFERENT topics/themes from the week.
- Question 1: Focus on one theme/area
- Question 2: Focus on a DIFFERENT theme/area
- Question 3: Focus on yet ANOTHER distinct theme/area
- Question 4: Focus on a fourth distinct theme/area
- Question 5: Focus on a fifth distinct theme/area

Do NOT make multiple questions about the same topic. Maximize diversity across different aspects of the week.

IMPORTANT: Each question MUST include at least one [[YYYY-MM-DD]] backlink to show where the prompt came from.

Format each question on a new line, numbered 1-5. Be concise.`

// Generator produces reflection prompts through one completion gateway.
type Generator struct {
	gw  *llm.Gateway
	log *logging.Logger
}

// NewGenerator builds a prompt generator over the gateway.
func NewGenerator(gw *llm.Gateway, log *logging.Logger) *Generator {
	return &Generator{gw: gw, log: log}
}

// IsSunday reports whether the date lands on a Sunday, which switches
// entry creation from daily to weekly prompts.
func IsSunday(date time.Time) bool {
	return date.Weekday() == time.Sunday
}

// ForDate generates the right prompt set for a date: weekly review
// questions on Sundays against the past week, daily questions otherwise
// against the past few days. A ledger write failure propagates; every
// other failure degrades to generic prompts.
func (g *Generator) ForDate(ctx context.Context, store *journal.Store, date time.Time) ([]string, error) {
	if IsSunday(date) {
		week := store.EntriesForDates(store.PastCalendarDays(date, WeeklyContextDays))
		return g.WeeklyPrompts(ctx, week, date)
	}
	recent := store.EntriesForDates(store.PastCalendarDays(date, DailyContextDays))
	return g.DailyPrompts(ctx, recent, date)
}

// DailyPrompts generates DailyCount reflection questions from recent
// entries, each carrying a [[YYYY-MM-DD]] backlink into its source. With
// no context entries it returns starter questions without calling the
// provider.
func (g *Generator) DailyPrompts(ctx context.Context, recent []*journal.Entry, date time.Time) ([]string, error) {
	if len(recent) == 0 {
		return []string{
			"What are you thinking about today?",
			"What's on your mind?",
			"How are you feeling?",
		}, nil
	}

	contextBlock := buildContext(recent, DailyContextDays)
	userPrompt := fmt.Sprintf(`Based on these recent diary entries, generate 3 thoughtful reflection prompts:

%s

STEP 1: Scan ALL topics mentioned across the entries. List distinct themes like:
- Professional work (teaching, projects, sessions)
- Personal relationships (partner, family, friends, colleagues)
- Health & wellness (sleep, diet, exercise, mental health)
- Tools & systems (journaling, technology, workflows)
- Personal growth (habits, skills, self-improvement)
- Hobbies & interests (books, music, activities)

STEP 2: Select 3 COMPLETELY DIFFERENT themes from Step 1.
STEP 3: Generate 1 question for EACH of those 3 different themes.

Example of GOOD diversity:
- Q1: About teaching/work [[date]]
- Q2: About relationship with partner [[date]]
- Q3: About sleep/health habits [[date]]

Example of BAD (too similar):
- Q1: About Python sessions [[date]]
- Q2: About Spanish office hours [[date]]
- Q3: About teaching community [[date]]

Each prompt MUST include at least one [[YYYY-MM-DD]] backlink.`, contextBlock)

	fallback := []string{
		"What stood out to you recently?",
		"What are you thinking about?",
		"How are you feeling about things?",
	}
	pad := "What else is on your mind?"

	return g.generate(ctx, llm.Request{
		Prompt:      userPrompt,
		System:      dailySystemPrompt,
		Temperature: dailyTemperature,
		MaxTokens:   dailyMaxTokens,
		Operation:   "daily_prompts",
		EntryDate:   date.Format(journal.DateLayout),
	}, DailyCount, fallback, pad)
}

// WeeklyPrompts generates WeeklyCount broader review questions from the
// past week of entries.
func (g *Generator) WeeklyPrompts(ctx context.Context, week []*journal.Entry, date time.Time) ([]string, error) {
	if len(week) == 0 {
		return []string{
			"What were the highlights of your week?",
			"What challenged you this week?",
			"What did you learn?",
			"What are you grateful for?",
			"What do you want to focus on next week?",
		}, nil
	}

	contextBlock := buildContext(week, WeeklyContextDays)
	userPrompt := fmt.Sprintf(`Based on this past week of diary entries, generate 5 weekly reflection prompts:

%s

Generate 5 numbered prompts about DIFFERENT aspects of the week. Each prompt MUST:
1. Address a distinct theme/area (work, relationships, health, personal growth, etc.)
2. Include at least one [[YYYY-MM-DD]] backlink to reference where the prompt came from

Ensure maximum diversity - cover different life areas, NOT the same topic 5 times.`, contextBlock)

	fallback := []string{
		"What were the key themes this week?",
		"What did you accomplish?",
		"What challenged you?",
		"What are you grateful for?",
		"What's ahead for next week?",
	}
	pad := "What else comes to mind?"

	return g.generate(ctx, llm.Request{
		Prompt:      userPrompt,
		System:      weeklySystemPrompt,
		Temperature: weeklyTemperature,
		MaxTokens:   weeklyMaxTokens,
		Operation:   "weekly_prompts",
		EntryDate:   date.Format(journal.DateLayout),
	}, WeeklyCount, fallback, pad)
}

// generate runs one completion, parses numbered prompts out of the
// response, and guarantees exactly count prompts: short results get
// padded, empty or failed ones fall back to generics.
func (g *Generator) generate(ctx context.Context, req llm.Request, count int, fallback []string, pad string) ([]string, error) {
	response, err := g.gw.Complete(ctx, req)
	if err != nil {
		if errors.Is(err, llm.ErrGeneration) {
			g.log.Warnf("prompt generation failed, using generic prompts: %v", err)
			return fallback, nil
		}
		return nil, err
	}

	prompts := parsePrompts(response, count)
	if len(prompts) == 0 {
		g.log.Debugf("no prompts parsed from response, using generic prompts")
		return fallback, nil
	}
	for len(prompts) < count {
		prompts = append(prompts, pad)
	}
	return prompts, nil
}

// buildContext renders entries as "[[date]]: preview" blocks, skipping
// entries whose brain dump is empty.
func buildContext(entries []*journal.Entry, maxEntries int) string {
	var parts []string
	for i, entry := range entries {
		if i >= maxEntries {
			break
		}
		preview := strings.TrimSpace(entry.BrainDump())
		if preview == "" {
			continue
		}
		if len(preview) > previewChars {
			preview = preview[:previewChars]
		}
		parts = append(parts, fmt.Sprintf("[[%s]]: %s", entry.DateString(), preview))
	}
	return strings.Join(parts, "\n\n")
}

// parsePrompts extracts numbered or bulleted questions from free-form
// response text, up to count.
func parsePrompts(response string, count int) []string {
	var prompts []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] < '0' || line[0] > '9' {
			if !strings.HasPrefix(line, "-") {
				continue
			}
		}
		cleaned := strings.TrimSpace(strings.TrimLeft(line, "0123456789.-) "))
		if cleaned != "" {
			prompts = append(prompts, cleaned)
		}
	}
	if len(prompts) > count {
		prompts = prompts[:count]
	}
	return prompts
}
