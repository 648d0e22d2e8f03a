package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxDepth limits BFS depth from the seed URLs.
	// Depth 0 means only the seeds themselves; 2 reaches most site
	// navigation without runaway breadth.
	DefaultMaxDepth = 2

	// DefaultMaxPages caps the total number of pages processed per run.
	// This prevents unbounded crawls on large or infinitely-generating
	// sites. Users can raise it via the --max-pages flag.
	DefaultMaxPages = 50

	// DefaultDelay is the pause between consecutive fetches.
	// One second is a conservative politeness default; lower values risk
	// rate limiting by the target site.
	DefaultDelay = 1 * time.Second

	// DefaultTimeout bounds each HTTP request.
	// Ten seconds is generous for clearnet sites while keeping a stuck
	// host from stalling the whole crawl.
	DefaultTimeout = 10 * time.Second

	// DefaultRobotsTimeout bounds the robots.txt probe per host.
	// Shorter than the page timeout because a slow robots.txt should not
	// delay the crawl; failures fail open anyway.
	DefaultRobotsTimeout = 5 * time.Second

	// DefaultMaxRedirects is the redirect chain limit per fetch.
	DefaultMaxRedirects = 5

	// DefaultMaxBodySize limits how much of a response body is read.
	// 5MB covers practically all HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultUserAgent identifies linkharvest in HTTP requests and in
	// robots.txt user-agent matching. A descriptive User-Agent lets site
	// operators identify crawler traffic in their logs.
	DefaultUserAgent = "linkharvest/1.0 (+https://github.com/linkharvest/linkharvest)"

	// AppName is the application name used for XDG directory paths.
	AppName = "linkharvest"
)

// Output formats accepted by Config.OutputFormat.
const (
	// FormatJSON exports the record list as a JSON array of objects.
	FormatJSON = "json"

	// FormatCSV exports the record list as CSV with list-valued fields
	// flattened.
	FormatCSV = "csv"

	// FormatMarkdown exports a Markdown report with summary tables.
	FormatMarkdown = "markdown"
)

// Config holds all options for a crawl run.
// It is populated from CLI flags and the optional config file, validated
// once before crawling, and passed through the application by dependency
// injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested sub-structs
// because the number of options is manageable and nesting would add
// complexity without benefit.
type Config struct {
	// Seeds is the list of starting URLs. At least one is required.
	// Each seed's host also defines the "internal" host set used to
	// classify discovered links.
	Seeds []string

	// MaxDepth is the maximum BFS depth. 0 means only the seed pages.
	MaxDepth int

	// MaxPages is the maximum number of pages to process in total.
	// Robots-blocked and failed pages count toward this limit.
	MaxPages int

	// Delay is the minimum time between consecutive fetch starts.
	// The limiter is global across hosts, not per-origin.
	Delay time.Duration

	// Timeout bounds each page fetch, including redirects.
	Timeout time.Duration

	// RobotsTimeout bounds each per-host robots.txt probe.
	RobotsTimeout time.Duration

	// MaxBodySize is the maximum response body size in bytes to read.
	// Larger bodies are truncated.
	MaxBodySize int64

	// UserAgent is sent with every request and matched against
	// robots.txt user-agent sections.
	UserAgent string

	// OutputFormat selects the export format: json, csv, or markdown.
	OutputFormat string

	// OutputFile is the export file path. When empty, a timestamped
	// name like crawl_results_20060102_150405.json is generated.
	OutputFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .linkharvest in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// Sites holds per-host settings loaded from the config file.
	Sites *File

	// DBDir is the directory holding the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to record the run in the history
	// database. History failures are logged, never fatal.
	SaveToDB bool

	// Verbose enables slog.LevelDebug output.
	// When false, only warnings and errors are logged.
	Verbose bool
}

// NewConfig creates a Config with default values.
// All fields are set to safe defaults that work for most use cases;
// callers override specific values after creation.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero. The constructor also documents what
// the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxDepth:      DefaultMaxDepth,
		MaxPages:      DefaultMaxPages,
		Delay:         DefaultDelay,
		Timeout:       DefaultTimeout,
		RobotsTimeout: DefaultRobotsTimeout,
		MaxBodySize:   DefaultMaxBodySize,
		UserAgent:     DefaultUserAgent,
		OutputFormat:  FormatJSON,
	}
}

// XDGDataDir returns the XDG data directory for linkharvest.
// On Linux: ~/.local/share/linkharvest
// On macOS: ~/Library/Application Support/linkharvest
// On Windows: %LOCALAPPDATA%\linkharvest
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks the configuration and returns the first problem found
// as a sentinel error. It is called once after flag parsing, before any
// crawling begins, so invalid configurations fail fast.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	for _, seed := range c.Seeds {
		u, err := url.Parse(seed)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrInvalidSeed
		}
	}

	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.MaxPages < 1 {
		return ErrInvalidMaxPages
	}
	if c.Delay < 0 {
		return ErrInvalidDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.OutputFormat {
	case FormatJSON, FormatCSV, FormatMarkdown:
	default:
		return ErrInvalidOutputFormat
	}

	return nil
}

// NormalizeSeed prepends https:// to a seed that lacks a scheme.
// Users commonly pass bare hostnames like example.com; defaulting happens
// before validation so such seeds pass the scheme check.
func NormalizeSeed(seed string) string {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return seed
	}
	if !strings.HasPrefix(seed, "http://") && !strings.HasPrefix(seed, "https://") {
		return "https://" + seed
	}
	return seed
}
