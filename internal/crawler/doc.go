// Package crawler provides the breadth-first web crawling engine for
// linkharvest.
//
// # Architecture
//
// The package is designed around the Spider type, which drives the crawl
// loop. Supporting components each own one concern:
//
//   - Spider: the orchestrator that coordinates the crawl
//   - Frontier: BFS queue of (url, depth) pairs with permanent deduplication
//   - Limiter: global minimum delay between fetches
//   - Fetcher: one bounded HTTP GET per call with a structured error taxonomy
//   - Extractor: pattern-based extraction of title, links, emails, phones
//   - NormalizeURL: URL canonicalization used by everything above
//
// # Ordering
//
// Breadth-first order is enforced structurally: the frontier keeps two
// queues, one for the depth level currently being processed and one for the
// next level. Every depth-d page is therefore processed before any
// depth-(d+1) page it discovered, regardless of discovery interleaving.
//
// # Failure model
//
// No single-page failure aborts a crawl. Network errors, HTTP error
// statuses, robots blocks, and undecodable bodies all produce a page record
// with an error message and the loop moves on. Only invalid configuration
// (checked before the crawl starts) or context cancellation stops a run,
// and cancellation keeps every record completed so far.
//
// # Politeness
//
// The crawler respects robots.txt (fail-open when the file is missing or
// unreadable), waits a configurable delay between requests, identifies
// itself with a descriptive User-Agent, and caps response body sizes.
package crawler
