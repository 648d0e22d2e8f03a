package crawler

import (
	"net/url"
	"strings"
)

// NormalizeURL resolves href against base and returns the canonical
// absolute URL, or ok=false when the target is not crawlable (non-http(s)
// scheme, pseudo-link, or unparseable). A nil base means href must already
// be absolute.
//
// Canonical form: lowercase scheme and host, no fragment, no default port
// (:80 for http, :443 for https), empty path replaced by "/", path and
// query preserved otherwise. The function is idempotent: normalizing its
// own output yields the same string, which the frontier relies on for
// exact deduplication.
func NormalizeURL(href string, base *url.URL) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return "", false
	}

	// Pseudo-links never lead to fetchable pages. mailto: targets are
	// still surfaced by the email extractor, which scans raw text.
	lower := strings.ToLower(href)
	for _, prefix := range []string{"javascript:", "mailto:", "tel:", "data:", "#"} {
		if strings.HasPrefix(lower, prefix) {
			return "", false
		}
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" {
		return "", false
	}

	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)

	// Strip default ports so http://example.com:80/ and
	// http://example.com/ deduplicate to the same entry.
	if port := u.Port(); port != "" {
		if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
			host := u.Hostname()
			if strings.Contains(host, ":") {
				host = "[" + host + "]" // IPv6 literal
			}
			u.Host = host
		}
	}

	// Empty path and "/" address the same resource.
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), true
}

// HostOf returns the lowercase host (including any non-default port) of
// rawURL, or "" if it cannot be parsed. Used to classify links as internal
// or external against the seed-host set.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
