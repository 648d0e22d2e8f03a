package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/linkharvest/linkharvest/internal/config"
)

// FetchErrorKind classifies fetch failures.
// Every kind is per-page and non-fatal: the orchestrator records the error
// on the page and continues with the next frontier entry.
type FetchErrorKind int

const (
	// ErrKindNetwork covers DNS failures, refused connections, timeouts,
	// and exceeded redirect chains. No HTTP response was received.
	ErrKindNetwork FetchErrorKind = iota

	// ErrKindProtocol covers responses with a non-2xx status code.
	ErrKindProtocol

	// ErrKindParse covers response bodies that could not be read or
	// decoded. Extraction yields nothing for such pages.
	ErrKindParse
)

// String returns the kind name for logging.
func (k FetchErrorKind) String() string {
	switch k {
	case ErrKindNetwork:
		return "network"
	case ErrKindProtocol:
		return "protocol"
	case ErrKindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// FetchError is the structured error value returned by Fetcher.Fetch.
// It is a value the orchestrator inspects, never an error that propagates
// up the call stack to abort the crawl.
type FetchError struct {
	// Kind classifies the failure.
	Kind FetchErrorKind

	// StatusCode is the HTTP status code when a response was received,
	// zero otherwise.
	StatusCode int

	// URL is the URL whose fetch failed.
	URL string

	// Err is the underlying error, nil for pure protocol failures.
	Err error
}

// Error returns the message recorded in the page record's error_message
// field.
func (e *FetchError) Error() string {
	switch e.Kind {
	case ErrKindProtocol:
		return fmt.Sprintf("failed to fetch (HTTP %d)", e.StatusCode)
	case ErrKindParse:
		return fmt.Sprintf("failed to decode response body: %v", e.Err)
	default:
		return fmt.Sprintf("failed to fetch: %v", e.Err)
	}
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// errTooManyRedirects terminates redirect chains past the configured limit.
var errTooManyRedirects = errors.New("too many redirects")

// FetchResult holds the outcome of a successful fetch.
type FetchResult struct {
	// StatusCode is the final HTTP status code.
	StatusCode int

	// FinalURL is the URL after redirects, re-normalized so redirect
	// targets deduplicate against the frontier.
	FinalURL string

	// ContentType is the media type of the response, without parameters.
	ContentType string

	// HTML reports whether the content type is text/html-like and the
	// body should be handed to the extractor.
	HTML bool

	// Body is the decoded body text. Empty for non-HTML content.
	Body string

	// ContentLength is the length of the body that was read, in bytes
	// of decoded text for HTML and raw bytes otherwise.
	ContentLength int
}

// Fetcher performs single bounded HTTP GETs.
//
// Design decision: The Fetcher owns its http.Client rather than receiving
// one because the redirect policy and timeout are part of the fetch
// contract, and tests can still point it at an httptest server through the
// URL alone.
type Fetcher struct {
	// client is the HTTP client with timeout and redirect limit applied.
	client *http.Client

	// userAgent is sent with every request unless a site overrides it.
	userAgent string

	// maxBodySize caps how many response bytes are read.
	maxBodySize int64

	// sites supplies per-host header and User-Agent overrides.
	sites *config.File
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithSiteConfigs supplies per-host settings from the config file.
func WithSiteConfigs(sites *config.File) FetcherOption {
	return func(f *Fetcher) {
		f.sites = sites
	}
}

// NewFetcher creates a Fetcher with the given request timeout.
// The timeout bounds the whole fetch including redirects, and redirect
// chains longer than config.DefaultMaxRedirects are treated as a network
// failure.
func NewFetcher(timeout time.Duration, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= config.DefaultMaxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}

	return f
}

// Fetch performs one HTTP GET against pageURL.
// All failure modes come back as a *FetchError; err is nil on success.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: ErrKindNetwork, URL: pageURL, Err: err}
	}

	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: ErrKindNetwork, URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	// Reject non-2xx responses before touching the body; error pages are
	// never downloaded and a truncated error body stays a protocol error.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Kind: ErrKindProtocol, StatusCode: resp.StatusCode, URL: pageURL}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{Kind: ErrKindNetwork, StatusCode: resp.StatusCode, URL: pageURL, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType := contentType
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = strings.TrimSpace(mediaType[:i])
	}
	mediaType = strings.ToLower(mediaType)

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		if normalized, ok := NormalizeURL(resp.Request.URL.String(), nil); ok {
			finalURL = normalized
		}
	}

	result := &FetchResult{
		StatusCode:  resp.StatusCode,
		FinalURL:    finalURL,
		ContentType: mediaType,
		HTML:        isHTMLLike(mediaType),
	}

	if !result.HTML {
		// Non-HTML content yields empty extraction results; the size is
		// still recorded.
		result.ContentLength = len(raw)
		return result, nil
	}

	// Decode according to the declared charset, falling back to content
	// sniffing. An undecodable body is a parse failure: content is
	// treated as empty and the crawl continues.
	reader, err := charset.NewReader(strings.NewReader(string(raw)), contentType)
	if err != nil {
		return nil, &FetchError{Kind: ErrKindParse, StatusCode: resp.StatusCode, URL: pageURL, Err: err}
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{Kind: ErrKindParse, StatusCode: resp.StatusCode, URL: pageURL, Err: err}
	}

	result.Body = string(decoded)
	result.ContentLength = len(result.Body)
	return result, nil
}

// setHeaders applies the identifying headers plus any per-host overrides
// from the config file.
func (f *Fetcher) setHeaders(req *http.Request) {
	userAgent := f.userAgent

	if f.sites != nil {
		sc := f.sites.GetSiteConfig(req.URL.Hostname())
		for name, value := range sc.Headers {
			req.Header.Set(name, value)
		}
		if sc.UserAgent != "" {
			userAgent = sc.UserAgent
		}
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// isHTMLLike reports whether a media type should be handed to the
// extractor.
func isHTMLLike(mediaType string) bool {
	return mediaType == "text/html" ||
		mediaType == "application/xhtml+xml" ||
		strings.HasPrefix(mediaType, "text/")
}
