package crawler

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Entry is a discovered URL tagged with its BFS depth.
// Entries are created when a link passes deduplication and the depth check,
// and consumed when the orchestrator pops them.
type Entry struct {
	// URL is the normalized URL to fetch.
	URL string

	// Depth is the discovery depth; seeds are depth 0 and a link found
	// on a depth-d page has depth d+1.
	Depth int
}

// Frontier is the BFS queue of URLs waiting to be fetched.
//
// Design decision: Breadth-first order is enforced structurally with two
// queues, one holding the depth level currently being drained and one
// collecting the next level. Proposals always land in the next-level queue,
// so every depth-d entry is popped before any depth-(d+1) entry no matter
// how discovery interleaves. A single queue would give the same order only
// by accident of append ordering; two queues make the property hold by
// construction.
//
// Deduplication is permanent: the seen set covers queued and visited URLs
// alike, so a popped URL is never re-enqueued even if rediscovered later.
type Frontier struct {
	// current holds the depth level being drained, FIFO.
	current []Entry

	// next collects the following depth level, FIFO.
	next []Entry

	// seen covers every URL ever seeded or proposed successfully.
	seen mapset.Set[string]

	// maxDepth is the inclusive depth limit for accepted entries.
	maxDepth int
}

// NewFrontier creates an empty Frontier with the given depth limit.
func NewFrontier(maxDepth int) *Frontier {
	return &Frontier{
		current:  make([]Entry, 0),
		next:     make([]Entry, 0),
		seen:     mapset.NewThreadUnsafeSet[string](),
		maxDepth: maxDepth,
	}
}

// Seed enqueues a normalized seed URL at depth 0.
// Returns false if the URL was already seeded.
func (f *Frontier) Seed(url string) bool {
	if !f.seen.Add(url) {
		return false
	}
	f.current = append(f.current, Entry{URL: url, Depth: 0})
	return true
}

// Propose offers a discovered link at the given depth.
// The link is enqueued only if it has never been seen (neither visited nor
// queued) and its depth does not exceed the limit. Returns whether the
// link was enqueued.
func (f *Frontier) Propose(url string, depth int) bool {
	if depth > f.maxDepth {
		return false
	}
	if !f.seen.Add(url) {
		return false
	}
	f.next = append(f.next, Entry{URL: url, Depth: depth})
	return true
}

// MarkSeen records a URL as seen without enqueueing it.
// Used for redirect targets so the final URL of a fetched page is never
// crawled a second time under its own name. Returns false if the URL was
// already seen.
func (f *Frontier) MarkSeen(url string) bool {
	return f.seen.Add(url)
}

// Pop removes and returns the next entry in strict BFS order.
// The second return value is false when the frontier is empty.
func (f *Frontier) Pop() (Entry, bool) {
	if len(f.current) == 0 {
		if len(f.next) == 0 {
			return Entry{}, false
		}
		f.current, f.next = f.next, make([]Entry, 0)
	}

	entry := f.current[0]
	f.current = f.current[1:]
	return entry, true
}

// Len returns the number of queued entries across both levels.
func (f *Frontier) Len() int {
	return len(f.current) + len(f.next)
}

// SeenCount returns the number of unique URLs ever accepted or marked.
func (f *Frontier) SeenCount() int {
	return f.seen.Cardinality()
}
