package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/rodaine/table"

	"github.com/linkharvest/linkharvest/internal/model"
)

// SimpleWriter outputs a human-readable crawl summary for the terminal.
//
// Design decision: We use plain text with ASCII section rules rather than
// ANSI colors because it works in all terminals and pipes cleanly to files.
// The per-domain breakdown uses rodaine/table for aligned columns.
type SimpleWriter struct {
	baseWriter

	// showErrors also lists each errored page with its message.
	showErrors bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowErrors lists every errored page under the summary.
func WithShowErrors(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showErrors = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary block followed by errored pages when enabled.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	n, err := w.WriteSummary(report.Summarize())
	if err != nil || !w.showErrors {
		return n, err
	}

	var b strings.Builder
	for _, r := range report.Records {
		if r.ErrorMessage == nil {
			continue
		}
		fmt.Fprintf(&b, "  %s: %s\n", r.URL, *r.ErrorMessage)
	}
	if b.Len() > 0 {
		m, err := fmt.Fprintf(w.output, "\nErrored pages:\n%s", b.String())
		return n + m, err
	}
	return n, nil
}

// WriteSummary outputs the aggregate statistics and per-domain counts.
func (w *SimpleWriter) WriteSummary(summary *model.Summary) (int, error) {
	var b strings.Builder
	rule := strings.Repeat("=", 60)

	b.WriteString(rule + "\n")
	b.WriteString("CRAWL SUMMARY\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Total pages processed: %d\n", summary.PagesProcessed)
	fmt.Fprintf(&b, "Successful crawls:     %d\n", summary.Successful)
	fmt.Fprintf(&b, "Errored crawls:        %d\n", summary.Errored)
	fmt.Fprintf(&b, "Total links found:     %d\n", summary.TotalLinks)
	fmt.Fprintf(&b, "Total emails found:    %d\n", summary.TotalEmails)
	fmt.Fprintf(&b, "Total phones found:    %d\n", summary.TotalPhones)

	n, err := io.WriteString(w.output, b.String())
	if err != nil {
		return n, err
	}

	domains := summary.SortedDomains()
	if len(domains) > 0 {
		m, err := io.WriteString(w.output, "\nPages per domain:\n")
		n += m
		if err != nil {
			return n, err
		}

		tbl := table.New("Domain", "Pages").WithWriter(w.output)
		for _, dc := range domains {
			tbl.AddRow(dc.Domain, dc.Pages)
		}
		tbl.Print()
	}

	return n, nil
}
