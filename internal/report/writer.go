package report

import (
	"io"

	"github.com/linkharvest/linkharvest/internal/config"
	"github.com/linkharvest/linkharvest/internal/model"
)

// Writer defines the interface for crawl report output.
// Implementations serialize results in various formats.
type Writer interface {
	// Write outputs the full record list to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.CrawlReport) (int, error)

	// WriteSummary outputs only the aggregate summary.
	WriteSummary(summary *model.Summary) (int, error)
}

// New returns the Writer for the given output format, writing to output.
// The format must already be validated; an unknown format falls back to
// JSON.
func New(format string, output io.Writer) Writer {
	switch format {
	case config.FormatCSV:
		return NewCSVWriter(output)
	case config.FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewJSONWriter(output, WithPrettyPrint())
	}
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than using
// io.MultiWriter because our Writer interface writes reports, not raw
// bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written; stops on the first error.
func (m *MultiWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary outputs the summary to all configured Writers.
func (m *MultiWriter) WriteSummary(summary *model.Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
