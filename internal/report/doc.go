// Package report provides crawl result serialization and output.
//
// This package contains writers for the supported output formats:
//   - JSONWriter: the record list as a JSON array of objects
//   - CSVWriter: the record list as CSV with list fields flattened
//   - MarkdownWriter: a Markdown report with summary tables
//   - SimpleWriter: human-readable terminal summary
//
// Design decision: Report writing is separated from the data structures
// (which live in the model package) so new output formats can be added
// without touching the crawl engine. Writers implement the Writer
// interface, allowing them to be used interchangeably and composed for
// multi-destination output. The writers serialize to an io.Writer; opening
// and closing output files is the caller's concern.
package report
