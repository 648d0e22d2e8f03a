package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/linkharvest/linkharvest/internal/config"
)

// testConfig returns a validated config pointing at the given seeds, with
// the delay disabled so tests run fast.
func testConfig(seeds ...string) *config.Config {
	cfg := config.NewConfig()
	cfg.Seeds = seeds
	cfg.Delay = 0
	cfg.Timeout = 5 * time.Second
	cfg.RobotsTimeout = 5 * time.Second
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// crawlSite is a small in-memory site for spider tests. The zero robots
// value serves a 404 robots.txt, which fails open.
type crawlSite struct {
	mux    *http.ServeMux
	server *httptest.Server
}

func newCrawlSite(t *testing.T) *crawlSite {
	t.Helper()

	s := &crawlSite{mux: http.NewServeMux()}
	s.server = httptest.NewServer(s.mux)
	t.Cleanup(s.server.Close)
	return s
}

func (s *crawlSite) page(path, body string) {
	s.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	})
}

func (s *crawlSite) url(path string) string {
	return s.server.URL + path
}

// TestSpiderCrawlBFSOrder verifies the report lists pages in breadth-first
// order with correct depths.
func TestSpiderCrawlBFSOrder(t *testing.T) {
	t.Parallel()

	site := newCrawlSite(t)
	site.page("/", `<title>Root</title><a href="/a">a</a><a href="/b">b</a>`)
	site.page("/a", `<title>A</title><a href="/c">c</a>`)
	site.page("/b", `<title>B</title>`)
	site.page("/c", `<title>C</title>`)

	cfg := testConfig(site.url("/"))
	cfg.MaxDepth = 2

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	want := []struct {
		path  string
		depth int
		title string
	}{
		{"/", 0, "Root"},
		{"/a", 1, "A"},
		{"/b", 1, "B"},
		{"/c", 2, "C"},
	}

	if len(report.Records) != len(want) {
		t.Fatalf("got %d records, want %d", len(report.Records), len(want))
	}
	for i, w := range want {
		rec := report.Records[i]
		if rec.URL != site.url(w.path) {
			t.Errorf("record %d URL = %q, want %q", i, rec.URL, site.url(w.path))
		}
		if rec.Depth != w.depth {
			t.Errorf("record %d Depth = %d, want %d", i, rec.Depth, w.depth)
		}
		if rec.Title != w.title {
			t.Errorf("record %d Title = %q, want %q", i, rec.Title, w.title)
		}
		if rec.Failed() {
			t.Errorf("record %d unexpectedly failed: %v", i, rec.ErrorMessage)
		}
	}
	if report.Interrupted {
		t.Error("Interrupted = true, want false")
	}
}

// TestSpiderNoDuplicateFetches verifies a URL linked from several pages is
// fetched exactly once.
func TestSpiderNoDuplicateFetches(t *testing.T) {
	t.Parallel()

	var sharedHits atomic.Int32
	site := newCrawlSite(t)
	site.page("/", `<a href="/a">a</a><a href="/b">b</a>`)
	site.page("/a", `<a href="/shared">s</a>`)
	site.page("/b", `<a href="/shared">s</a>`)
	site.mux.HandleFunc("/shared", func(w http.ResponseWriter, r *http.Request) {
		sharedHits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<title>Shared</title>`)
	})

	cfg := testConfig(site.url("/"))
	cfg.MaxDepth = 3

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if got := sharedHits.Load(); got != 1 {
		t.Errorf("/shared fetched %d times, want 1", got)
	}

	seen := map[string]int{}
	for _, rec := range report.Records {
		seen[rec.URL]++
	}
	for u, n := range seen {
		if n > 1 {
			t.Errorf("URL %q has %d records, want 1", u, n)
		}
	}
}

// TestSpiderMaxPagesCap verifies the crawl stops at exactly maxPages
// records even with more work queued.
func TestSpiderMaxPagesCap(t *testing.T) {
	t.Parallel()

	site := newCrawlSite(t)
	links := ""
	for i := 0; i < 10; i++ {
		links += fmt.Sprintf(`<a href="/p%d">p</a>`, i)
		site.page(fmt.Sprintf("/p%d", i), `<title>P</title>`)
	}
	site.page("/", links)

	cfg := testConfig(site.url("/"))
	cfg.MaxPages = 3

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if len(report.Records) != 3 {
		t.Errorf("got %d records, want 3", len(report.Records))
	}
}

// TestSpiderDepthLimit verifies links past maxDepth are never fetched.
func TestSpiderDepthLimit(t *testing.T) {
	t.Parallel()

	var deepHits atomic.Int32
	site := newCrawlSite(t)
	site.page("/", `<a href="/level1">l1</a>`)
	site.page("/level1", `<a href="/level2">l2</a>`)
	site.mux.HandleFunc("/level2", func(w http.ResponseWriter, r *http.Request) {
		deepHits.Add(1)
	})

	cfg := testConfig(site.url("/"))
	cfg.MaxDepth = 1

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if len(report.Records) != 2 {
		t.Errorf("got %d records, want 2", len(report.Records))
	}
	if got := deepHits.Load(); got != 0 {
		t.Errorf("/level2 fetched %d times, want 0", got)
	}
}

// TestSpiderRobotsBlock verifies a disallowed page yields exactly one error
// record and no GET for the page is ever issued.
func TestSpiderRobotsBlock(t *testing.T) {
	t.Parallel()

	var privateHits atomic.Int32
	site := newCrawlSite(t)
	site.mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
	})
	site.page("/", `<a href="/private/page">secret</a><a href="/open">open</a>`)
	site.page("/open", `<title>Open</title>`)
	site.mux.HandleFunc("/private/page", func(w http.ResponseWriter, r *http.Request) {
		privateHits.Add(1)
	})

	cfg := testConfig(site.url("/"))

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if got := privateHits.Load(); got != 0 {
		t.Errorf("/private/page fetched %d times, want 0", got)
	}

	var blocked int
	for _, rec := range report.Records {
		if rec.URL != site.url("/private/page") {
			continue
		}
		blocked++
		if rec.ErrorMessage == nil || *rec.ErrorMessage != robotsBlockedMessage {
			t.Errorf("blocked record ErrorMessage = %v, want %q", rec.ErrorMessage, robotsBlockedMessage)
		}
		if rec.StatusCode != nil {
			t.Errorf("blocked record StatusCode = %v, want nil", *rec.StatusCode)
		}
	}
	if blocked != 1 {
		t.Errorf("got %d records for the blocked page, want 1", blocked)
	}
}

// TestSpiderRobotsBlockedSeed verifies a seed pointing straight into a
// disallowed path yields exactly one error record and nothing else.
func TestSpiderRobotsBlockedSeed(t *testing.T) {
	t.Parallel()

	var privateHits atomic.Int32
	site := newCrawlSite(t)
	site.mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /private/\n")
	})
	site.mux.HandleFunc("/private/page", func(w http.ResponseWriter, r *http.Request) {
		privateHits.Add(1)
	})

	cfg := testConfig(site.url("/private/page"))

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if got := privateHits.Load(); got != 0 {
		t.Errorf("/private/page fetched %d times, want 0", got)
	}
	if len(report.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(report.Records))
	}
	rec := report.Records[0]
	if rec.ErrorMessage == nil || *rec.ErrorMessage != robotsBlockedMessage {
		t.Errorf("ErrorMessage = %v, want %q", rec.ErrorMessage, robotsBlockedMessage)
	}
}

// TestSpiderErrorContinues verifies a failing page is recorded with its
// error and the crawl moves on to the remaining frontier.
func TestSpiderErrorContinues(t *testing.T) {
	t.Parallel()

	site := newCrawlSite(t)
	site.page("/", `<a href="/broken">broken</a><a href="/fine">fine</a>`)
	site.page("/fine", `<title>Fine</title>`)
	site.mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	cfg := testConfig(site.url("/"))

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if len(report.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(report.Records))
	}

	broken := report.Records[1]
	if !broken.Failed() {
		t.Fatal("broken record not marked failed")
	}
	if broken.StatusCode == nil || *broken.StatusCode != http.StatusInternalServerError {
		t.Errorf("broken StatusCode = %v, want 500", broken.StatusCode)
	}
	if want := "failed to fetch (HTTP 500)"; *broken.ErrorMessage != want {
		t.Errorf("broken ErrorMessage = %q, want %q", *broken.ErrorMessage, want)
	}

	fine := report.Records[2]
	if fine.Failed() || fine.Title != "Fine" {
		t.Errorf("crawl did not continue past the failure: %+v", fine)
	}
}

// TestSpiderTimeoutRecordsNullStatus verifies a timed-out page gets a nil
// status code plus an error message while the crawl continues.
func TestSpiderTimeoutRecordsNullStatus(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	site := newCrawlSite(t)
	site.page("/", `<a href="/slow">slow</a><a href="/fast">fast</a>`)
	site.page("/fast", `<title>Fast</title>`)
	site.mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	cfg := testConfig(site.url("/"))
	cfg.Timeout = 100 * time.Millisecond

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if len(report.Records) != 3 {
		t.Fatalf("got %d records, want 3", len(report.Records))
	}

	slow := report.Records[1]
	if slow.StatusCode != nil {
		t.Errorf("slow StatusCode = %v, want nil", *slow.StatusCode)
	}
	if slow.ErrorMessage == nil {
		t.Error("slow ErrorMessage = nil, want a network error message")
	}

	if fast := report.Records[2]; fast.Failed() {
		t.Errorf("crawl did not continue past the timeout: %+v", fast)
	}
}

// TestSpiderExternalLinksCounted verifies external links count toward
// links_found but are never enqueued.
func TestSpiderExternalLinksCounted(t *testing.T) {
	t.Parallel()

	site := newCrawlSite(t)
	site.page("/", `<a href="/in">in</a><a href="https://elsewhere.invalid/out">out</a>`)
	site.page("/in", `<title>In</title>`)

	cfg := testConfig(site.url("/"))

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if len(report.Records) != 2 {
		t.Fatalf("got %d records, want 2 (external link must not be crawled)", len(report.Records))
	}
	if got := report.Records[0].LinksFound; got != 2 {
		t.Errorf("root LinksFound = %d, want 2", got)
	}
}

// TestSpiderCancellation verifies cancellation stops cleanly: completed
// records survive, no partial record is appended, and the report is marked
// interrupted.
func TestSpiderCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	site := newCrawlSite(t)
	site.page("/", `<a href="/a">a</a><a href="/b">b</a>`)
	site.page("/b", `<title>B</title>`)
	site.mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		cancel()
		<-r.Context().Done()
	})

	cfg := testConfig(site.url("/"))

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(ctx)
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if !report.Interrupted {
		t.Error("Interrupted = false, want true")
	}
	if len(report.Records) != 1 {
		t.Fatalf("got %d records, want only the completed root record", len(report.Records))
	}
	if report.Records[0].URL != site.url("/") {
		t.Errorf("surviving record URL = %q, want root", report.Records[0].URL)
	}
}

// TestSpiderRejectsInvalidSeed verifies an uncrawlable seed fails the run
// up front.
func TestSpiderRejectsInvalidSeed(t *testing.T) {
	t.Parallel()

	cfg := testConfig("ftp://example.com/")

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	if _, err := spider.Crawl(context.Background()); err == nil {
		t.Fatal("Crawl() error = nil, want invalid seed error")
	}
}

// TestSpiderEmailsAndPhonesRecorded verifies contact details land on the
// page record.
func TestSpiderEmailsAndPhonesRecorded(t *testing.T) {
	t.Parallel()

	site := newCrawlSite(t)
	site.page("/", `<title>Contact</title>
		<p>Mail sales@example.com or call 555-123-4567.</p>
		<a href="mailto:support@example.com">support</a>`)

	cfg := testConfig(site.url("/"))

	spider := NewSpider(cfg, WithLogger(quietLogger()))
	report, err := spider.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	rec := report.Records[0]
	if len(rec.EmailsFound) != 2 {
		t.Errorf("EmailsFound = %v, want sales@ and support@", rec.EmailsFound)
	}
	if len(rec.PhoneNumbers) != 1 || rec.PhoneNumbers[0] != "555-123-4567" {
		t.Errorf("PhoneNumbers = %v, want [555-123-4567]", rec.PhoneNumbers)
	}
	if rec.LinksFound != 0 {
		t.Errorf("LinksFound = %d, want 0 (mailto is not a link)", rec.LinksFound)
	}
}
