package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/linkharvest/linkharvest/internal/config"
	"github.com/linkharvest/linkharvest/internal/crawler"
	"github.com/linkharvest/linkharvest/internal/database"
	lhlog "github.com/linkharvest/linkharvest/internal/log"
	"github.com/linkharvest/linkharvest/internal/model"
	"github.com/linkharvest/linkharvest/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url> [<url>...]",
		Short: "Crawl one or more websites breadth-first",
		Long: `Crawl fetches pages starting from the given seed URLs in breadth-first
order, extracting page titles, links, email addresses, and phone numbers.

The crawler checks robots.txt for every host (failures are treated as
"allowed"), waits a configurable delay between requests, and stops at the
configured depth and page limits. Every processed page yields one record,
including pages blocked by robots.txt or failing to fetch.

Interrupting the crawl (Ctrl-C) stops it cleanly: all records completed so
far are still exported.

Examples:
  # Crawl a site with defaults (depth 2, 50 pages, 1s delay)
  linkharvest crawl https://example.com

  # Deeper crawl with a faster request rate
  linkharvest crawl --depth 3 --delay 0.5 --max-pages 200 https://example.com

  # Export CSV to a specific file
  linkharvest crawl --format csv --output results.csv https://example.com

  # Crawl multiple sites; both hosts count as internal
  linkharvest crawl https://site1.com https://site2.com`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl depth (0 = seeds only)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to process")
	cmd.Flags().Float64P("delay", "w", 1.0,
		"Delay between requests in seconds (fractional allowed)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout per page fetch")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header to send")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .linkharvest in current or home directory)")

	// Output flags
	cmd.Flags().StringP("format", "f", config.FormatJSON,
		"Output format: json, csv, or markdown")
	cmd.Flags().StringP("output", "o", "",
		"Output file path (default: crawl_results_<timestamp>.<ext>)")
	cmd.Flags().Bool("no-summary", false,
		"Skip printing the terminal summary")
	cmd.Flags().Bool("show-errors", false,
		"List errored pages under the summary")
	cmd.Flags().Bool("no-db", false,
		"Do not record this run in the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// Interrupt signals cancel the context; the spider treats that as a
	// clean stop and keeps everything completed so far.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, stopping crawl...")
		cancel()
	}()

	return runCrawl(ctx, cmd, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	delaySeconds, err := cmd.Flags().GetFloat64("delay")
	if err != nil {
		return nil, err
	}
	cfg.Delay = time.Duration(delaySeconds * float64(time.Second))

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.OutputFormat, err = cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noDB
	cfg.DBDir = config.XDGDataDir()

	cfg.Verbose = getVerboseFlag(cmd)

	// Load per-site configurations from the config file.
	// An explicitly specified file must exist; otherwise a missing file
	// just means empty settings.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	switch {
	case configPath != "":
		cfg.Sites, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.Sites = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	// Positional arguments are the seed URLs; bare hostnames get an
	// https:// scheme before validation.
	cfg.Seeds = make([]string, 0, len(args))
	for _, arg := range args {
		cfg.Seeds = append(cfg.Seeds, config.NormalizeSeed(arg))
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates a structured logger based on verbosity.
// All records pass through the sanitizing handler so credentials embedded
// in crawled URLs never reach the log output.
func setupLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(lhlog.NewSanitizeHandler(handler))
}

// runCrawl executes the crawl and exports the results.
func runCrawl(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	spider := crawler.NewSpider(cfg, crawler.WithLogger(logger))

	crawlReport, err := spider.Crawl(ctx)
	if err != nil {
		return err
	}

	if crawlReport.Interrupted {
		fmt.Fprintln(cmd.OutOrStdout(), "Crawl interrupted; exporting partial results...")
	}

	if err := exportReport(cfg, crawlReport, cmd); err != nil {
		return err
	}

	// History persistence is best effort; a broken database never
	// invalidates a finished crawl.
	if cfg.SaveToDB {
		saveRunToHistory(ctx, cfg, crawlReport, logger)
	}

	noSummary, err := cmd.Flags().GetBool("no-summary")
	if err != nil {
		return err
	}
	if !noSummary {
		showErrors, err := cmd.Flags().GetBool("show-errors")
		if err != nil {
			return err
		}
		w := report.NewSimpleWriter(cmd.OutOrStdout(), report.WithShowErrors(showErrors))
		if _, err := w.Write(crawlReport); err != nil {
			return fmt.Errorf("failed to print summary: %w", err)
		}
	}

	return nil
}

// exportReport serializes the record list to the output file.
func exportReport(cfg *config.Config, crawlReport *model.CrawlReport, cmd *cobra.Command) error {
	outputPath := cfg.OutputFile
	if outputPath == "" {
		outputPath = fmt.Sprintf("crawl_results_%s.%s",
			time.Now().Format("20060102_150405"), formatExtension(cfg.OutputFormat))
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(outputPath) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if _, err := report.New(cfg.OutputFormat, file).Write(crawlReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Results saved to: %s\n", outputPath)
	return nil
}

// formatExtension maps an output format to its file extension.
func formatExtension(format string) string {
	if format == config.FormatMarkdown {
		return "md"
	}
	return format
}

// saveRunToHistory records the run in the SQLite history database.
func saveRunToHistory(ctx context.Context, cfg *config.Config, crawlReport *model.CrawlReport, logger *slog.Logger) {
	// An interrupted crawl arrives here with its context already
	// cancelled; the partial run must still be recorded.
	ctx = context.WithoutCancel(ctx)

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("failed to open history database", "dir", cfg.DBDir, "error", err)
		return
	}
	defer db.Close()

	runID, err := db.SaveRun(ctx, crawlReport, cfg.MaxDepth, cfg.MaxPages)
	if err != nil {
		logger.Warn("failed to save run to history", "error", err)
		return
	}
	logger.Info("run saved to history", "runID", runID, "db", db.Path())
}
