// Package main provides the brain CLI: an AI-assisted journaling tool
// that creates dated diary and plan entries, generates reflection prompts,
// finds semantic backlinks between entries, and tracks LLM API cost.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "brain",
		Short:         "AI-powered journaling with smart prompts and automatic backlinks",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.brain/config.yaml)")

	cmd.AddCommand(diaryCmd(&configPath))
	cmd.AddCommand(planCmd(&configPath))
	cmd.AddCommand(costCmd(&configPath))
	return cmd
}
