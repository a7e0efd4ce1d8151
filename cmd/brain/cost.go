package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/madebygps/second-brain/pkg/journal"
	"github.com/madebygps/second-brain/pkg/usage"
)

func costCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Track and analyze LLM API costs",
	}
	cmd.AddCommand(costSummaryCmd(configPath))
	cmd.AddCommand(costBreakdownCmd(configPath))
	cmd.AddCommand(costTrendsCmd(configPath))
	cmd.AddCommand(costEstimateCmd(configPath))
	cmd.AddCommand(costExportCmd(configPath))
	cmd.AddCommand(costPricingCmd(configPath))
	return cmd
}

func costBreakdownCmd(configPath *string) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Show detailed cost breakdown by operation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			summary, err := a.ledger.Summary(days)
			if err != nil {
				return err
			}
			if summary.TotalRequests == 0 {
				fmt.Printf("No usage recorded in the last %d days\n", days)
				return nil
			}

			// Most expensive operations first.
			ops := sortedKeys(summary.ByOperation)
			sort.SliceStable(ops, func(i, j int) bool {
				return summary.ByOperation[ops[i]].Cost > summary.ByOperation[ops[j]].Cost
			})

			fmt.Println(headerStyle.Render(fmt.Sprintf("Detailed cost breakdown (last %d days)", days)))
			for _, op := range ops {
				b := summary.ByOperation[op]
				costPct, tokenPct := 0.0, 0.0
				if summary.TotalCost > 0 {
					costPct = b.Cost / summary.TotalCost * 100
				}
				if summary.TotalTokens > 0 {
					tokenPct = float64(b.Tokens) / float64(summary.TotalTokens) * 100
				}
				fmt.Printf("\n  %s\n", headerStyle.Render(op))
				fmt.Printf("    Cost:     $%.4f (%.1f%% of total)\n", b.Cost, costPct)
				fmt.Printf("    Tokens:   %d (%.1f%% of total)\n", b.Tokens, tokenPct)
				fmt.Printf("    Requests: %d\n", b.Requests)
				fmt.Printf("    Avg per request: $%.4f\n", b.Cost/float64(b.Requests))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 30, "number of days to analyze")
	return cmd
}

func costPricingCmd(configPath *string) *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Show the model price table in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			prices := a.ledger.Prices()
			models := make([]string, 0, len(prices))
			for name := range prices {
				models = append(models, name)
			}
			sort.Strings(models)

			if model != "" {
				key := strings.ToLower(model)
				if _, ok := prices[key]; !ok {
					return fmt.Errorf("model %q not found in price table", model)
				}
				models = []string{key}
			}

			fmt.Println(headerStyle.Render("Model pricing (USD per 1K tokens)"))
			for _, name := range models {
				p := prices[name]
				fmt.Printf("  %-14s input $%.6f  output $%.6f\n", name, p.Input*1000, p.Output*1000)
			}
			fmt.Println(dimStyle.Render("Override per model in the prices section of the config file"))
			return nil
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "show pricing for one model")
	return cmd
}

func costSummaryCmd(configPath *string) *cobra.Command {
	var (
		days  int
		month string
	)
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show cost summary by operation and day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			var (
				summary usage.Summary
				label   string
			)
			if month != "" {
				parsed, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid month %q: expected YYYY-MM", month)
				}
				summary, err = a.ledger.MonthlySummary(parsed.Year(), parsed.Month())
				if err != nil {
					return err
				}
				label = month
			} else {
				summary, err = a.ledger.Summary(days)
				if err != nil {
					return err
				}
				label = fmt.Sprintf("last %d days", days)
			}

			if summary.TotalRequests == 0 {
				fmt.Printf("No usage recorded for %s\n", label)
				return nil
			}

			fmt.Println(headerStyle.Render("Cost summary (" + label + ")"))
			fmt.Printf("  Total: $%.4f across %d requests (%d tokens)\n\n",
				summary.TotalCost, summary.TotalRequests, summary.TotalTokens)

			fmt.Println(headerStyle.Render("By operation"))
			for _, op := range sortedKeys(summary.ByOperation) {
				b := summary.ByOperation[op]
				fmt.Printf("  %-22s $%.4f  %7d tokens  %4d requests\n", op, b.Cost, b.Tokens, b.Requests)
			}

			fmt.Println()
			fmt.Println(headerStyle.Render("By day"))
			for _, day := range sortedKeys(summary.ByDay) {
				b := summary.ByDay[day]
				fmt.Printf("  %s  $%.4f  %7d tokens  %4d requests\n", day, b.Cost, b.Tokens, b.Requests)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 30, "number of days to analyze")
	cmd.Flags().StringVarP(&month, "month", "m", "", "specific month (YYYY-MM)")
	return cmd
}

func costTrendsCmd(configPath *string) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Show daily cost trends",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			trends, err := a.ledger.Trends(days)
			if err != nil {
				return err
			}

			var max float64
			for _, point := range trends {
				if point.Cost > max {
					max = point.Cost
				}
			}
			if max == 0 {
				fmt.Printf("No usage recorded in the last %d days\n", days)
				return nil
			}

			fmt.Println(headerStyle.Render(fmt.Sprintf("Daily cost (last %d days)", days)))
			for _, point := range trends {
				width := int(point.Cost / max * 40)
				fmt.Printf("  %s  $%.4f  %s\n", point.Date, point.Cost,
					barStyle.Render(strings.Repeat("█", width)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 14, "number of days to show")
	return cmd
}

func costEstimateCmd(configPath *string) *cobra.Command {
	var sampleDays int
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate monthly cost from recent usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			estimate, err := a.ledger.EstimateMonthly(sampleDays)
			if err != nil {
				return err
			}
			if estimate == 0 {
				fmt.Printf("No usage recorded in the last %d days\n", sampleDays)
				return nil
			}
			fmt.Printf("Estimated monthly cost: %s %s\n",
				headerStyle.Render(fmt.Sprintf("$%.2f", estimate)),
				dimStyle.Render(fmt.Sprintf("(based on last %d days)", sampleDays)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&sampleDays, "sample-days", "s", 7, "days to base the estimate on")
	return cmd
}

func costExportCmd(configPath *string) *cobra.Command {
	var (
		days  int
		month string
	)
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export usage records to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*configPath)
			if err != nil {
				return err
			}
			defer a.close()

			var start, end time.Time
			if month != "" {
				parsed, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("invalid month %q: expected YYYY-MM", month)
				}
				start = parsed
				end = parsed.AddDate(0, 1, -1)
			} else {
				end = journal.Today()
				start = end.AddDate(0, 0, -days)
			}

			records, err := a.ledger.Export(start, end)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(records, "", "  ")
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[0], data, 0o600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}

			fmt.Printf("%s Exported %d records to %s\n", successStyle.Render("✓"), len(records), args[0])
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 30, "number of days to export")
	cmd.Flags().StringVarP(&month, "month", "m", "", "specific month (YYYY-MM)")
	return cmd
}

func sortedKeys(m map[string]usage.Bucket) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
