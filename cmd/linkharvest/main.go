// Package main provides the entry point for the linkharvest CLI.
//
// linkharvest is a polite breadth-first web crawler. It fetches pages from
// one or more seed URLs, extracts titles, links, email addresses, and phone
// numbers, and exports the results as JSON, CSV, or Markdown.
//
// Usage:
//
//	linkharvest crawl <url> [<url>...]
//	linkharvest history
//
// See --help for all available options.
package main

// main is the entry point for linkharvest.
func main() {
	Execute()
}
