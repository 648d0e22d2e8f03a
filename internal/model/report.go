package model

import (
	"net/url"
	"sort"
	"time"
)

// CrawlReport accumulates page records for one crawl run.
// Records are appended in discovery order and never reordered; the slice
// order is the BFS processing order and downstream consumers rely on it.
//
// Design decision: The report is an explicit value owned by the orchestrator
// and threaded through to the writers rather than module-level state. This
// keeps the crawl loop testable and leaves the door open for running
// multiple crawls in one process.
type CrawlReport struct {
	// Seeds are the normalized seed URLs the crawl started from.
	Seeds []string `json:"seeds"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Records holds one entry per processed frontier URL, in processing
	// order.
	Records []*PageRecord `json:"records"`

	// Interrupted indicates the crawl was stopped by cancellation before
	// the frontier was exhausted. Completed records are still valid.
	Interrupted bool `json:"interrupted,omitempty"`
}

// NewCrawlReport creates an empty report for the given seed URLs.
func NewCrawlReport(seeds []string) *CrawlReport {
	return &CrawlReport{
		Seeds:     seeds,
		StartedAt: time.Now(),
		Records:   make([]*PageRecord, 0),
	}
}

// Append adds a completed record to the report.
func (c *CrawlReport) Append(record *PageRecord) {
	c.Records = append(c.Records, record)
}

// Summary is the aggregate view of a crawl run.
// It is derived from the record list and carries the statistics the
// terminal summary and summary exports print.
type Summary struct {
	// PagesProcessed is the total number of records.
	PagesProcessed int `json:"pages_processed"`

	// Successful counts records without an error message.
	Successful int `json:"successful"`

	// Errored counts records with an error message, including robots
	// blocks.
	Errored int `json:"errors"`

	// TotalLinks is the sum of links found across all pages.
	TotalLinks int `json:"total_links"`

	// TotalEmails is the sum of unique-per-page email matches.
	TotalEmails int `json:"total_emails"`

	// TotalPhones is the sum of unique-per-page phone matches.
	TotalPhones int `json:"total_phones"`

	// PerDomainCounts maps each crawled host to its page count.
	PerDomainCounts map[string]int `json:"per_domain_counts"`
}

// Summarize computes aggregate statistics over the current record list.
func (c *CrawlReport) Summarize() *Summary {
	s := &Summary{
		PagesProcessed:  len(c.Records),
		PerDomainCounts: make(map[string]int),
	}

	for _, r := range c.Records {
		if r.Failed() {
			s.Errored++
		} else {
			s.Successful++
		}
		s.TotalLinks += r.LinksFound
		s.TotalEmails += len(r.EmailsFound)
		s.TotalPhones += len(r.PhoneNumbers)

		if u, err := url.Parse(r.URL); err == nil && u.Host != "" {
			s.PerDomainCounts[u.Host]++
		}
	}

	return s
}

// DomainCount is a (domain, pages) pair used for sorted summary output.
type DomainCount struct {
	Domain string
	Pages  int
}

// SortedDomains returns per-domain counts ordered by descending page count,
// with ties broken alphabetically so output is deterministic.
func (s *Summary) SortedDomains() []DomainCount {
	counts := make([]DomainCount, 0, len(s.PerDomainCounts))
	for domain, pages := range s.PerDomainCounts {
		counts = append(counts, DomainCount{Domain: domain, Pages: pages})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Pages != counts[j].Pages {
			return counts[i].Pages > counts[j].Pages
		}
		return counts[i].Domain < counts[j].Domain
	})
	return counts
}
