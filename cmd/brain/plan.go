package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/madebygps/second-brain/pkg/journal"
)

func planCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Daily planning with task carry-forward",
	}
	cmd.AddCommand(planCreateCmd(configPath))
	return cmd
}

func planCreateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "create [date]",
		Short: "Create a daily plan, carrying forward tasks from yesterday",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDateArg(argOrToday(args))
			if err != nil {
				return err
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if a.store.Exists(date, journal.TypePlan) {
				fmt.Printf("Plan for %s already exists\n", date.Format(journal.DateLayout))
				return nil
			}

			yesterday := date.AddDate(0, 0, -1)
			yesterdayLink := fmt.Sprintf(" (from [[%s]])", yesterday.Format(journal.DateLayout))

			var tasks []string
			seen := map[string]bool{}
			carried := 0

			// Unchecked items from yesterday's plan carry forward verbatim.
			if plan, err := a.store.Read(yesterday, journal.TypePlan); err == nil {
				for _, todo := range journal.ExtractTodos(plan) {
					task := todo + yesterdayLink
					if !seen[task] {
						tasks = append(tasks, task)
						seen[task] = true
						carried++
					}
				}
			}

			// Yesterday's diary yields new tasks via the LLM.
			extracted := 0
			if diary, err := a.store.Read(yesterday, journal.TypeReflection); err == nil && a.store.Substantial(diary) {
				ctx := cmd.Context()
				a.checkConnection(ctx)

				found, err := a.analyzer().ExtractTasks(ctx, diary)
				if err != nil {
					return err
				}
				for _, task := range found {
					withLink := task + yesterdayLink
					if !seen[withLink] && !seen[task] {
						tasks = append(tasks, withLink)
						seen[withLink] = true
						extracted++
					}
				}
			}

			entry := journal.NewPlanTemplate(date, nil, tasks)
			if err := a.store.Write(entry); err != nil {
				return err
			}

			fmt.Printf("%s Created plan: %s\n", successStyle.Render("✓"), entry.Filename())
			fmt.Println(dimStyle.Render("Location: " + a.store.EntryPath(date, journal.TypePlan)))
			if carried > 0 || extracted > 0 {
				fmt.Println(dimStyle.Render(fmt.Sprintf("Carried forward: %d pending from plan, %d extracted from diary", carried, extracted)))
			}
			return nil
		},
	}
}
