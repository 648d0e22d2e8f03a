// Package database provides SQLite-based storage for crawl run history.
// Each completed crawl is saved as a run row plus one row per page record,
// so past runs can be listed and inspected with the history subcommand.
package database
