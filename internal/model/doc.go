// Package model defines the core data structures shared across linkharvest.
// It contains the per-page crawl record, the accumulated crawl report, and
// the aggregate summary derived from it.
//
// Design decision: We keep data structures in their own package, separate
// from the crawler and report writers, because:
//  1. Both the crawler and the writers depend on them without depending on
//     each other
//  2. The JSON serialization contract lives in one place
//  3. It mirrors the separation between data collection and presentation
package model
