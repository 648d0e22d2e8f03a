package config

import "errors"

// Configuration validation errors.
// These are returned by Config.Validate() and identify exactly what is
// wrong with a configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). Callers can use errors.Is()
// for programmatic handling while the messages stay human-readable.
// Configuration errors are the only fatal error class: every per-page
// failure during the crawl itself is recorded in the page record instead.
var (
	// ErrNoSeeds is returned when no seed URL is provided.
	ErrNoSeeds = errors.New("no seed URLs specified: provide at least one starting URL")

	// ErrInvalidSeed is returned when a seed URL cannot be parsed or
	// does not use the http or https scheme.
	ErrInvalidSeed = errors.New("invalid seed URL: must be an absolute http or https URL")

	// ErrInvalidMaxDepth is returned when the crawl depth is negative.
	// Depth 0 is valid and means only the seed pages are fetched.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidMaxPages is returned when the page limit is below one.
	// A limit of zero would mean no crawling at all.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be at least 1")

	// ErrInvalidDelay is returned when the request delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidTimeout is returned when the fetch timeout is not
	// positive. A zero timeout would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxBodySize is returned when the body size limit is
	// negative. Use 0 to apply the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidOutputFormat is returned when the output format is not
	// one of json, csv, or markdown.
	ErrInvalidOutputFormat = errors.New("invalid output format: must be json, csv, or markdown")
)
