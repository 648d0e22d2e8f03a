package robots

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxRobotsBody caps how much of a robots.txt file is read.
// Real robots files are a few kilobytes; the cap guards against a host
// serving something enormous at that path.
const maxRobotsBody = 512 * 1024

// Rule is a single Allow or Disallow line.
// Matching is prefix-based on the URL path.
type Rule struct {
	// Path is the normalized rule path, always starting with "/".
	Path string

	// Allow is true for Allow rules, false for Disallow.
	Allow bool
}

// Policy holds the parsed robots.txt decisions for one host.
// Policies are immutable after creation and cached for the whole run.
type Policy struct {
	// host is the host the policy was fetched for.
	host string

	// rules are the Allow/Disallow lines from the matching user-agent
	// section, in file order.
	rules []Rule

	// fetched reports whether a robots.txt was actually retrieved and
	// parsed. False means the policy is the fail-open default.
	fetched bool
}

// Allowed reports whether the given URL path may be fetched under this
// policy. When several rules match, the longest rule path wins; Allow wins
// exact ties. A path matched by no rule is allowed.
func (p *Policy) Allowed(path string) bool {
	if p == nil || len(p.rules) == 0 {
		return true
	}

	path = normalizePath(path)

	allowed := true
	bestLen := -1
	for _, rule := range p.rules {
		if !strings.HasPrefix(path, rule.Path) {
			continue
		}
		if len(rule.Path) > bestLen || (len(rule.Path) == bestLen && rule.Allow) {
			bestLen = len(rule.Path)
			allowed = rule.Allow
		}
	}
	return allowed
}

// Fetched reports whether a robots.txt was successfully retrieved.
func (p *Policy) Fetched() bool {
	return p != nil && p.fetched
}

// Cache lazily fetches and permanently caches one Policy per host.
// Entries never expire and are never re-fetched during a run.
//
// The cache is not safe for concurrent use; the crawl loop that owns it is
// single-threaded.
type Cache struct {
	// client performs the robots.txt probes.
	client *http.Client

	// userAgent is matched against User-agent sections and sent with
	// the probe requests.
	userAgent string

	// policies maps host (including any non-default port) to its policy.
	policies map[string]*Policy
}

// NewCache creates a Cache whose robots.txt probes are bounded by timeout.
func NewCache(timeout time.Duration, userAgent string) *Cache {
	return &Cache{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		policies:  make(map[string]*Policy),
	}
}

// Allowed reports whether pageURL may be fetched according to its host's
// robots.txt. The first query for a host triggers the fetch; the decision
// set is cached afterwards. Unparseable URLs are allowed through so the
// fetcher can report the real error.
func (c *Cache) Allowed(ctx context.Context, pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return true
	}

	policy, ok := c.policies[u.Host]
	if !ok {
		policy = c.fetch(ctx, u.Scheme, u.Host)
		c.policies[u.Host] = policy
	}

	// Rules may constrain query strings (Disallow: /search?q=), so the
	// query is part of the matched path.
	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return policy.Allowed(path)
}

// Policy returns the cached policy for a host, or nil when the host has
// not been queried yet.
func (c *Cache) Policy(host string) *Policy {
	return c.policies[host]
}

// Preload installs a parsed policy for a host without any network access.
// Tests use this to exercise decision logic directly.
func (c *Cache) Preload(host string, body string) {
	c.policies[host] = &Policy{
		host:    host,
		rules:   parseRules(body, c.userAgent),
		fetched: true,
	}
}

// fetch retrieves and parses robots.txt for a host. Every failure mode
// returns the fail-open default policy.
func (c *Cache) fetch(ctx context.Context, scheme, host string) *Policy {
	failOpen := &Policy{host: host}

	if scheme == "" {
		scheme = "http"
	}
	robotsURL := scheme + "://" + host + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return failOpen
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return failOpen
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failOpen
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsBody))
	if err != nil {
		return failOpen
	}

	return &Policy{
		host:    host,
		rules:   parseRules(string(body), c.userAgent),
		fetched: true,
	}
}

// parseRules extracts the Allow/Disallow rules applying to userAgent.
// Sections naming the crawler's product token take precedence over the
// "*" section; within the chosen section, rules keep file order.
func parseRules(body, userAgent string) []Rule {
	token := productToken(userAgent)

	var specific, wildcard []Rule
	var agents []string
	inSection := false

	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field, value, ok := splitDirective(line)
		if !ok {
			continue
		}

		switch field {
		case "user-agent":
			// Consecutive User-agent lines share the rule group that
			// follows them; a User-agent line after rules starts a new
			// group.
			if inSection {
				agents = agents[:0]
				inSection = false
			}
			agents = append(agents, strings.ToLower(value))

		case "allow", "disallow":
			inSection = true
			if value == "" {
				// An empty Disallow means allow everything; it adds
				// no rule either way.
				continue
			}
			rule := Rule{Path: normalizePath(value), Allow: field == "allow"}
			for _, agent := range agents {
				if agent == "*" {
					wildcard = append(wildcard, rule)
				} else if strings.Contains(token, agent) || strings.Contains(agent, token) {
					specific = append(specific, rule)
				}
			}
		}
	}

	if len(specific) > 0 {
		return specific
	}
	return wildcard
}

// splitDirective splits a "Field: value" robots.txt line.
func splitDirective(line string) (field, value string, ok bool) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(line[:i])), strings.TrimSpace(line[i+1:]), true
}

// productToken reduces a User-Agent string to its lowercase product name,
// e.g. "linkharvest/1.0 (+https://...)" becomes "linkharvest".
func productToken(userAgent string) string {
	token := userAgent
	if i := strings.IndexAny(token, "/ "); i >= 0 {
		token = token[:i]
	}
	return strings.ToLower(token)
}

// normalizePath ensures a rule or query path starts with "/".
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if p[0] != '/' {
		return "/" + p
	}
	return p
}
