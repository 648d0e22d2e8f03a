package model

import "time"

// CrawlTimeLayout is the timestamp layout used in the crawl_time field.
// The layout is stable because exported records are consumed by external
// tooling that parses this exact format.
const CrawlTimeLayout = "2006-01-02 15:04:05"

// PageRecord is the immutable result of processing one frontier URL.
// A record is created when the orchestrator begins processing an entry and
// is fully populated after fetch and extraction; it is never modified after
// being appended to the report.
//
// The JSON field names and types form a compatibility contract with
// downstream consumers and must not change:
//
//	url, title, status_code (int or null), content_length, links_found,
//	emails_found, phone_numbers, crawl_time, error_message (string or null),
//	depth
type PageRecord struct {
	// URL is the normalized URL that was processed.
	URL string `json:"url"`

	// Title is the text of the first title element, trimmed.
	// Empty for non-HTML content, failed fetches, and pages without a title.
	Title string `json:"title"`

	// StatusCode is the HTTP response status code.
	// Nil when no HTTP response was received (DNS failure, timeout,
	// robots block).
	StatusCode *int `json:"status_code"`

	// ContentLength is the decoded body length in bytes.
	// Zero for failed fetches.
	ContentLength int `json:"content_length"`

	// LinksFound is the number of unique crawlable links discovered on
	// the page, internal and external combined.
	LinksFound int `json:"links_found"`

	// EmailsFound holds unique email addresses in discovery order.
	// Deduplication is by exact string match; case is preserved.
	EmailsFound []string `json:"emails_found"`

	// PhoneNumbers holds unique phone numbers in discovery order.
	PhoneNumbers []string `json:"phone_numbers"`

	// CrawlTime is when the page was processed, in CrawlTimeLayout format.
	CrawlTime string `json:"crawl_time"`

	// ErrorMessage describes why processing failed.
	// Nil for successful pages. Set for robots blocks, network errors,
	// HTTP error statuses, and undecodable bodies.
	ErrorMessage *string `json:"error_message"`

	// Depth is the BFS depth at which the URL was discovered.
	// Seed URLs have depth 0.
	Depth int `json:"depth"`
}

// NewPageRecord creates a PageRecord for the given URL and depth with the
// crawl time set to now. List fields are initialized to empty slices so
// they serialize as [] rather than null.
func NewPageRecord(url string, depth int) *PageRecord {
	return &PageRecord{
		URL:          url,
		Depth:        depth,
		CrawlTime:    time.Now().Format(CrawlTimeLayout),
		EmailsFound:  []string{},
		PhoneNumbers: []string{},
	}
}

// SetStatusCode records the HTTP status code. A nil StatusCode means no
// response was received, so the code is stored via pointer.
func (r *PageRecord) SetStatusCode(code int) {
	r.StatusCode = &code
}

// SetError records the failure reason for this page.
func (r *PageRecord) SetError(msg string) {
	r.ErrorMessage = &msg
}

// Failed reports whether processing this page ended in an error.
func (r *PageRecord) Failed() bool {
	return r.ErrorMessage != nil
}
