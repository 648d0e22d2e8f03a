// Package robots implements per-host robots.txt fetching, parsing, and
// caching for linkharvest.
//
// The policy for a host is fetched once on first query, parsed into an
// ordered rule list, and cached unmodified for the remainder of the run.
// Robots handling is fail-open: any fetch or parse failure (missing file,
// timeout, non-200 status, malformed content) yields an allow-everything
// policy, because a robots error must never be fatal to a crawl.
//
// Rule matching follows common crawler practice: the rules come from the
// User-agent section matching the crawler's declared agent (falling back to
// the "*" section), matching is path-prefix based, and when both an Allow
// and a Disallow rule match a path the longest rule wins, with Allow
// winning exact ties.
package robots
