// Package main provides the entry point for the linkharvest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for linkharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "linkharvest",
		Short: "Polite breadth-first web crawler",
		Long: `linkharvest is a breadth-first web crawler that extracts page titles,
links, email addresses, and phone numbers from websites.

It respects robots.txt, waits a configurable delay between requests, and
exports results as JSON, CSV, or Markdown. Completed runs are kept in a
local history database.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
