package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/madebygps/second-brain/pkg/analysis"
	"github.com/madebygps/second-brain/pkg/journal"
)

func diaryCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diary",
		Short: "AI-powered diary with smart prompts and automatic backlinks",
	}
	cmd.AddCommand(diaryCreateCmd(configPath))
	cmd.AddCommand(diaryLinkCmd(configPath))
	cmd.AddCommand(diaryRefreshCmd(configPath))
	cmd.AddCommand(diaryListCmd(configPath))
	cmd.AddCommand(diaryReportCmd(configPath))
	cmd.AddCommand(diaryPatternsCmd(configPath))
	return cmd
}

func diaryReportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "report [days]",
		Short: "Generate a memory trace report of themes and connected entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 30
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid day count %q", args[0])
				}
				days = n
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.store.ListRecent(days)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("No entries found in the last %d days\n", days)
				return nil
			}

			ctx := cmd.Context()
			a.checkConnection(ctx)

			fmt.Println(dimStyle.Render(fmt.Sprintf("Generating memory trace report for the last %d days…", days)))
			report, err := a.analyzer().MemoryTraceReport(ctx, entries)
			if err != nil {
				return err
			}

			fmt.Println(report)
			return nil
		},
	}
}

// maxPatternTags is deliberately wider than the per-entry tag cap so the
// patterns view surfaces the long tail.
const maxPatternTags = 15

func diaryPatternsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns [days]",
		Short: "Identify emotional and psychological patterns in recent entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid day count %q", args[0])
				}
				days = n
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.store.ListRecent(days)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("No entries found in the last %d days\n", days)
				return nil
			}

			ctx := cmd.Context()
			a.checkConnection(ctx)

			patterns, err := a.analyzer().GenerateTags(ctx, entries, maxPatternTags)
			if err != nil {
				return err
			}
			if len(patterns) == 0 {
				fmt.Printf("No patterns identified in the last %d days\n", days)
				return nil
			}

			fmt.Println(headerStyle.Render(fmt.Sprintf("Emotional and psychological patterns (last %d days)", days)))
			for i, pattern := range patterns {
				fmt.Printf("  %2d. #%s\n", i+1, pattern)
			}
			return nil
		},
	}
}

func diaryCreateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "create [date]",
		Short: "Create a new diary entry with AI-generated prompts",
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

			if a.store.Exists(date, journal.TypeReflection) {
				fmt.Printf("Entry for %s already exists\n", date.Format(journal.DateLayout))
				return nil
			}

			ctx := cmd.Context()
			a.checkConnection(ctx)

			generated, err := a.prompts().ForDate(ctx, a.store, date)
			if err != nil {
				return err
			}

			entry := journal.NewEntryTemplate(date, generated)
			if err := a.store.Write(entry); err != nil {
				return err
			}

			fmt.Printf("%s Created entry: %s\n", successStyle.Render("✓"), entry.Filename())
			fmt.Println(dimStyle.Render("Location: " + a.store.EntryPath(date, journal.TypeReflection)))
			return nil
		},
	}
}

func diaryLinkCmd(configPath *string) *cobra.Command {
	var validate bool
	cmd := &cobra.Command{
		Use:   "link [date]",
		Short: "Generate semantic backlinks and tags for an entry",
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

			entry, err := a.store.Read(date, journal.TypeReflection)
			if err != nil {
				return err
			}
			if !a.store.Substantial(entry) {
				fmt.Printf("Entry for %s has no substantial content, skipping\n", entry.DateString())
				return nil
			}

			ctx := cmd.Context()
			a.checkConnection(ctx)

			opts := analysis.DefaultLinkOptions()
			opts.Validate = validate
			links, err := a.analyzer().BuildLinks(ctx, a.store, entry, opts)
			if err != nil {
				return err
			}

			journal.MergeLinks(entry, links.Temporal, links.Tags, links.Metadata)
			if err := a.store.Write(entry); err != nil {
				return err
			}

			printLinkSummary(entry, links)
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "verify high-confidence links with a reverse check")
	return cmd
}

func diaryRefreshCmd(configPath *string) *cobra.Command {
	var (
		includeAll bool
		verbose    bool
		validate   bool
	)
	cmd := &cobra.Command{
		Use:   "refresh [days]",
		Short: "Regenerate backlinks for recent entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 30
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid day count %q", args[0])
				}
				days = n
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.store.ListRecent(days)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("No entries found in the last %d days\n", days)
				return nil
			}

			ctx := cmd.Context()
			a.checkConnection(ctx)

			opts := analysis.DefaultLinkOptions()
			opts.Validate = validate
			analyzer := a.analyzer()

			refreshed, skipped := 0, 0
			for _, entry := range entries {
				if !includeAll && !a.store.Substantial(entry) {
					skipped++
					if verbose {
						fmt.Println(dimStyle.Render("skipped " + entry.DateString() + " (no substantial content)"))
					}
					continue
				}

				links, err := analyzer.BuildLinks(ctx, a.store, entry, opts)
				if err != nil {
					return err
				}
				journal.MergeLinks(entry, links.Temporal, links.Tags, links.Metadata)
				if err := a.store.Write(entry); err != nil {
					return err
				}
				refreshed++
				if verbose {
					fmt.Printf("refreshed %s: %d links, %d tags\n", entry.DateString(), len(links.Temporal), len(links.Tags))
				}
			}

			fmt.Printf("%s Refreshed %d entries (%d skipped)\n", successStyle.Render("✓"), refreshed, skipped)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&includeAll, "all", "a", false, "include entries below the substantial-content threshold")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show skipped entries")
	cmd.Flags().BoolVar(&validate, "validate", false, "verify high-confidence links with a reverse check")
	return cmd
}

func diaryListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "List recent diary entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("invalid day count %q", args[0])
				}
				days = n
			}

			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			entries, err := a.store.ListRecent(days)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Printf("No entries found in the last %d days\n", days)
				return nil
			}

			fmt.Println(headerStyle.Render(fmt.Sprintf("Diary entries (last %d days)", days)))
			for _, entry := range entries {
				preview := strings.TrimSpace(entry.BrainDump())
				preview = strings.ReplaceAll(preview, "\n", " ")
				if len(preview) > 60 {
					preview = preview[:60] + "…"
				}
				line := fmt.Sprintf("  %s  %s", entry.DateString(), preview)
				if tags := entry.Tags(); len(tags) > 0 {
					line += "  " + dimStyle.Render("#"+strings.Join(tags, " #"))
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func printLinkSummary(entry *journal.Entry, links *analysis.LinkSet) {
	fmt.Printf("%s Linked entry: %s\n", successStyle.Render("✓"), entry.Filename())
	if len(links.Semantic) > 0 {
		fmt.Println(headerStyle.Render("Semantic links:"))
		for _, link := range links.Semantic {
			fmt.Printf("  [[%s]] (%s) %s\n", link.TargetDate, link.Confidence, dimStyle.Render(link.Reason))
		}
	}
	if len(links.Tags) > 0 {
		fmt.Println(headerStyle.Render("Tags:") + " #" + strings.Join(links.Tags, " #"))
	}
	if len(links.Temporal) == 0 && len(links.Tags) == 0 {
		fmt.Println(dimStyle.Render("No links generated"))
	}
}

func argOrToday(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "today"
}
