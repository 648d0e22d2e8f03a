package main

import (
	"fmt"
	"strings"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/linkharvest/linkharvest/internal/config"
	"github.com/linkharvest/linkharvest/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past crawl runs",
		Long: `History lists crawl runs stored in the local history database.

Every completed crawl is recorded (unless --no-db was used) with its seeds,
limits, and result counts. Use --run to print the page records of a
specific run.

Examples:
  # List the 10 most recent runs
  linkharvest history

  # List more runs
  linkharvest history --limit 50

  # Show the pages of run 3
  linkharvest history --run 3`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 10, "Maximum number of runs to list")
	cmd.Flags().Int64P("run", "r", 0, "Show the page records of the given run ID")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no crawl history found (run a crawl first): %w", err)
	}
	defer db.Close()

	runID, err := cmd.Flags().GetInt64("run")
	if err != nil {
		return err
	}
	if runID > 0 {
		return showRunPages(cmd, db, runID)
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	runs, err := db.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl runs recorded yet.")
		return nil
	}

	tbl := table.New("ID", "Started", "Seeds", "Pages", "OK", "Errors").
		WithWriter(cmd.OutOrStdout())
	for _, run := range runs {
		tbl.AddRow(
			run.ID,
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			strings.Join(run.Seeds, " "),
			run.Pages,
			run.Successful,
			run.Errored,
		)
	}
	tbl.Print()

	return nil
}

// showRunPages prints the page records of one stored run.
func showRunPages(cmd *cobra.Command, db *database.CrawlDB, runID int64) error {
	records, err := db.RunPages(cmd.Context(), runID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	if len(records) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No pages recorded for run %d.\n", runID)
		return nil
	}

	tbl := table.New("Depth", "Status", "Links", "URL", "Title / Error").
		WithWriter(cmd.OutOrStdout())
	for _, r := range records {
		status := "-"
		if r.StatusCode != nil {
			status = fmt.Sprintf("%d", *r.StatusCode)
		}
		note := r.Title
		if r.ErrorMessage != nil {
			note = *r.ErrorMessage
		}
		tbl.AddRow(r.Depth, status, r.LinksFound, r.URL, note)
	}
	tbl.Print()

	return nil
}
