package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/linkharvest/linkharvest/internal/config"
	"github.com/linkharvest/linkharvest/internal/model"
	"github.com/linkharvest/linkharvest/internal/robots"
)

// robotsBlockedMessage is recorded on pages skipped by robots.txt.
const robotsBlockedMessage = "blocked by robots.txt"

// Spider drives the breadth-first crawl. It owns the frontier, rate
// limiter, robots cache, fetcher, and extractor, and it is the only
// execution context touching any of them: the loop is strictly sequential
// with at most one fetch in flight, so no locking is needed anywhere.
//
// Design decision: We call it "Spider" rather than "Crawler" because
// "Spider" is the traditional term and it reads better in code:
// crawler.NewSpider() vs crawler.NewCrawler().
type Spider struct {
	// cfg holds the validated crawl configuration.
	cfg *config.Config

	// fetcher performs single bounded page fetches.
	fetcher *Fetcher

	// robots caches per-host robots.txt decisions for the whole run.
	robots *robots.Cache

	// limiter enforces the global delay between fetches.
	limiter *Limiter

	// logger receives structured progress output.
	logger *slog.Logger
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithLogger sets a custom logger. If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// WithRobotsCache replaces the robots policy cache.
// Tests use this to pre-seed policies without network access.
func WithRobotsCache(cache *robots.Cache) SpiderOption {
	return func(s *Spider) {
		s.robots = cache
	}
}

// NewSpider creates a Spider from a validated configuration.
func NewSpider(cfg *config.Config, opts ...SpiderOption) *Spider {
	s := &Spider{
		cfg: cfg,
		fetcher: NewFetcher(cfg.Timeout,
			WithUserAgent(cfg.UserAgent),
			WithMaxBodySize(cfg.MaxBodySize),
			WithSiteConfigs(cfg.Sites),
		),
		robots:  robots.NewCache(cfg.RobotsTimeout, cfg.UserAgent),
		limiter: NewLimiter(cfg.Delay),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Crawl runs the BFS loop from the configured seeds until the frontier is
// empty, the page limit is reached, or the context is cancelled.
//
// Cancellation is a clean stop: the remaining frontier is discarded, the
// report keeps every completed record, and no partially-populated record
// is ever appended. Per-page failures never abort the crawl; they are
// recorded on the page itself.
func (s *Spider) Crawl(ctx context.Context) (*model.CrawlReport, error) {
	seeds := make([]string, 0, len(s.cfg.Seeds))
	seedHosts := make([]string, 0, len(s.cfg.Seeds))
	for _, raw := range s.cfg.Seeds {
		normalized, ok := NormalizeURL(raw, nil)
		if !ok {
			return nil, fmt.Errorf("%w: %q", config.ErrInvalidSeed, raw)
		}
		seeds = append(seeds, normalized)
		seedHosts = append(seedHosts, HostOf(normalized))
	}

	extractor := NewExtractor(seedHosts)
	frontier := NewFrontier(s.cfg.MaxDepth)
	for _, seed := range seeds {
		frontier.Seed(seed)
	}

	report := model.NewCrawlReport(seeds)

	s.logger.Info("starting crawl",
		"seeds", seeds,
		"maxDepth", s.cfg.MaxDepth,
		"maxPages", s.cfg.MaxPages,
		"delay", s.cfg.Delay,
	)

	for len(report.Records) < s.cfg.MaxPages {
		entry, ok := frontier.Pop()
		if !ok {
			break
		}

		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}

		if err := s.limiter.WaitFor(ctx, s.delayFor(entry.URL)); err != nil {
			report.Interrupted = true
			break
		}

		record := s.processEntry(ctx, entry, frontier, extractor)
		if record == nil {
			// Cancelled mid-fetch; the in-progress record is discarded.
			report.Interrupted = true
			break
		}
		report.Append(record)
	}

	summary := report.Summarize()
	s.logger.Info("crawl finished",
		"pages", summary.PagesProcessed,
		"successful", summary.Successful,
		"errors", summary.Errored,
		"interrupted", report.Interrupted,
	)

	return report, nil
}

// processEntry handles one frontier entry end to end and returns its
// completed record, or nil when the context was cancelled before the
// record could be completed.
func (s *Spider) processEntry(ctx context.Context, entry Entry, frontier *Frontier, extractor *Extractor) *model.PageRecord {
	record := model.NewPageRecord(entry.URL, entry.Depth)

	if !s.robots.Allowed(ctx, entry.URL) {
		record.SetError(robotsBlockedMessage)
		s.logger.Debug("robots disallowed", "url", entry.URL, "depth", entry.Depth)
		return record
	}

	result, fetchErr := s.fetcher.Fetch(ctx, entry.URL)
	if fetchErr != nil {
		if ctx.Err() != nil {
			return nil
		}
		if fetchErr.StatusCode != 0 {
			record.SetStatusCode(fetchErr.StatusCode)
		}
		record.SetError(fetchErr.Error())
		s.logger.Debug("fetch failed",
			"url", entry.URL,
			"kind", fetchErr.Kind.String(),
			"error", fetchErr.Error(),
		)
		return record
	}

	record.SetStatusCode(result.StatusCode)
	record.ContentLength = result.ContentLength

	// A redirect can land on a URL that is also linked directly
	// elsewhere; marking it seen keeps the content from being fetched
	// twice under two names.
	if result.FinalURL != entry.URL {
		frontier.MarkSeen(result.FinalURL)
	}

	if result.HTML {
		pageURL, err := url.Parse(result.FinalURL)
		if err != nil {
			pageURL, _ = url.Parse(entry.URL)
		}

		ex := extractor.Extract(result.Body, pageURL)
		record.Title = ex.Title
		record.LinksFound = ex.LinksFound()
		record.EmailsFound = ex.Emails
		record.PhoneNumbers = ex.Phones

		for _, link := range ex.InternalLinks {
			frontier.Propose(link, entry.Depth+1)
		}
	}

	s.logger.Info("crawled page",
		"url", entry.URL,
		"depth", entry.Depth,
		"status", result.StatusCode,
		"links", record.LinksFound,
		"emails", len(record.EmailsFound),
		"phones", len(record.PhoneNumbers),
	)

	return record
}

// delayFor returns the per-host delay override for the URL's host, or the
// global delay when no override is configured.
func (s *Spider) delayFor(pageURL string) time.Duration {
	if s.cfg.Sites != nil {
		if u, err := url.Parse(pageURL); err == nil {
			if d := s.cfg.Sites.GetSiteConfig(u.Hostname()).Delay(); d > 0 {
				return d
			}
		}
	}
	return s.cfg.Delay
}
