package crawler

import (
	"html"
	"net/url"
	"regexp"
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Extraction raw-text patterns.
//
// Design decision: Extraction is regex-based text scanning over the raw
// HTML rather than DOM parsing. This over- and under-matches on malformed
// markup, which is accepted as a simplicity trade-off: emails and phone
// numbers live in attributes and comments as often as in element text, and
// a single scan over the raw bytes catches them all.
var (
	// titleRegex captures the text of the first title element.
	titleRegex = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

	// hrefRegex captures href attribute values from anchor tags.
	hrefRegex = regexp.MustCompile(`(?i)<a\s+(?:[^>]*?\s+)?href\s*=\s*["']([^"']+)["']`)

	// emailRegex matches local-part@domain.tld addresses.
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)

	// whitespaceRegex collapses runs of whitespace in titles.
	whitespaceRegex = regexp.MustCompile(`\s+`)

	// phoneRegexes match common North American phone formats. Each
	// pattern optionally accepts a leading +1 or 1 country prefix.
	// Ordering does not matter: overlapping matches across patterns are
	// resolved afterwards by preferring the longest.
	phoneRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(\+?1[-.\s]?)?\(\d{3}\)[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`(\+?1[-.\s]?)?\d{3}-\d{3}-\d{4}`),
		regexp.MustCompile(`(\+?1[-.\s]?)?\d{3}\.\d{3}\.\d{4}`),
		regexp.MustCompile(`(\+?1[-.\s]?)?\d{3}\s\d{3}\s\d{4}`),
	}
)

// Extraction holds everything pulled from one page.
type Extraction struct {
	// Title is the trimmed text of the first title element, or "".
	Title string

	// InternalLinks are normalized links whose host belongs to the
	// seed-host set. Deduplicated within the page, discovery order.
	InternalLinks []string

	// ExternalLinks are normalized links to any other host.
	ExternalLinks []string

	// Emails are unique email matches, case preserved, discovery order.
	Emails []string

	// Phones are unique phone number matches in discovery order, with
	// overlapping matches resolved in favor of the longest.
	Phones []string
}

// LinksFound returns the total number of unique crawlable links.
func (e *Extraction) LinksFound() int {
	return len(e.InternalLinks) + len(e.ExternalLinks)
}

// Extractor scans raw HTML text for titles, links, emails, and phone
// numbers. Links are classified internal or external by comparing their
// host against the seed-host set.
type Extractor struct {
	// seedHosts are the lowercase hosts of the seed URLs.
	seedHosts mapset.Set[string]
}

// NewExtractor creates an Extractor classifying links against the given
// seed hosts.
func NewExtractor(seedHosts []string) *Extractor {
	hosts := mapset.NewThreadUnsafeSet[string]()
	for _, h := range seedHosts {
		hosts.Add(strings.ToLower(h))
	}
	return &Extractor{seedHosts: hosts}
}

// Extract scans content and resolves relative links against pageURL.
func (e *Extractor) Extract(content string, pageURL *url.URL) *Extraction {
	result := &Extraction{
		InternalLinks: []string{},
		ExternalLinks: []string{},
		Emails:        []string{},
		Phones:        []string{},
	}

	result.Title = extractTitle(content)
	e.extractLinks(content, pageURL, result)
	result.Emails = extractEmails(content)
	result.Phones = extractPhones(content)

	return result
}

// extractTitle returns the unescaped, whitespace-collapsed text of the
// first title element.
func extractTitle(content string) string {
	m := titleRegex.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	title := html.UnescapeString(m[1])
	title = whitespaceRegex.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}

// extractLinks normalizes, deduplicates, and classifies href values.
func (e *Extractor) extractLinks(content string, pageURL *url.URL, result *Extraction) {
	seen := mapset.NewThreadUnsafeSet[string]()

	for _, m := range hrefRegex.FindAllStringSubmatch(content, -1) {
		link, ok := NormalizeURL(m[1], pageURL)
		if !ok {
			continue
		}
		if !seen.Add(link) {
			continue
		}

		if e.seedHosts.Contains(HostOf(link)) {
			result.InternalLinks = append(result.InternalLinks, link)
		} else {
			result.ExternalLinks = append(result.ExternalLinks, link)
		}
	}
}

// extractEmails returns unique email matches in discovery order.
// Deduplication is by exact string match; case is preserved so
// Admin@example.com and admin@example.com remain distinct matches.
func extractEmails(content string) []string {
	seen := mapset.NewThreadUnsafeSet[string]()
	emails := []string{}
	for _, email := range emailRegex.FindAllString(content, -1) {
		if seen.Add(email) {
			emails = append(emails, email)
		}
	}
	return emails
}

// span is a matched region of the content.
type span struct {
	start, end int
}

// extractPhones runs every phone pattern over the content and resolves
// overlapping matches by preferring the longest one.
func extractPhones(content string) []string {
	var spans []span
	for _, re := range phoneRegexes {
		for _, loc := range re.FindAllStringIndex(content, -1) {
			spans = append(spans, span{start: loc[0], end: loc[1]})
		}
	}

	// Greedy selection: earliest start first, longest match first among
	// equal starts, then drop anything overlapping an accepted span.
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	seen := mapset.NewThreadUnsafeSet[string]()
	phones := []string{}
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		lastEnd = s.end

		phone := content[s.start:s.end]
		if seen.Add(phone) {
			phones = append(phones, phone)
		}
	}
	return phones
}
