// Package log provides a sanitizing slog handler for linkharvest.
//
// Crawl logs are full of URLs discovered on arbitrary pages. Those URLs can
// embed credentials (user:pass@host) or carry session tokens and API keys
// in query parameters, and a crawl log is often shared when reporting
// results. The handler in this package scrubs such values from every log
// record before it reaches the underlying handler, so sensitive material
// never lands in log output regardless of where the logging call sits.
package log
