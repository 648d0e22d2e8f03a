package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/linkharvest/linkharvest/internal/model"
)

// MarkdownWriter outputs crawl reports in Markdown format.
// This format is designed for documentation and sharing crawl results.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
//  1. Type-safe markdown generation
//  2. Support for tables, lists, and code blocks
//  3. Mermaid chart embedding for the success/error breakdown
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the full report: summary, per-domain table, and one row
// per crawled page in processing order.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	summary := report.Summarize()

	md := markdown.NewMarkdown(w.output)
	md.H1("Crawl Report")

	w.writeSummary(md, summary)
	w.writeDomains(md, summary)
	w.writePages(md, report)

	return len(md.String()), md.Build()
}

// WriteSummary outputs only the aggregate summary.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Crawl Summary")

	w.writeSummary(md, summary)
	w.writeDomains(md, summary)

	return len(md.String()), md.Build()
}

// writeSummary writes the aggregate statistics table and the
// success/error pie chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Summary")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages processed", strconv.Itoa(summary.PagesProcessed)},
			{"Successful", strconv.Itoa(summary.Successful)},
			{"Errors", strconv.Itoa(summary.Errored)},
			{"Links found", strconv.Itoa(summary.TotalLinks)},
			{"Emails found", strconv.Itoa(summary.TotalEmails)},
			{"Phone numbers found", strconv.Itoa(summary.TotalPhones)},
		},
	})
	md.PlainText("")

	if summary.PagesProcessed > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Crawl Outcome"),
			piechart.WithShowData(true),
		)
		if summary.Successful > 0 {
			chart.LabelAndIntValue("Successful", uint64(summary.Successful))
		}
		if summary.Errored > 0 {
			chart.LabelAndIntValue("Errored", uint64(summary.Errored))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}
}

// writeDomains writes the per-domain page count table.
func (w *MarkdownWriter) writeDomains(md *markdown.Markdown, summary *model.Summary) {
	domains := summary.SortedDomains()
	if len(domains) == 0 {
		return
	}

	rows := make([][]string, 0, len(domains))
	for _, dc := range domains {
		rows = append(rows, []string{dc.Domain, strconv.Itoa(dc.Pages)})
	}

	md.H2("Pages per Domain")
	md.Table(markdown.TableSet{
		Header: []string{"Domain", "Pages"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePages writes one table row per page record.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, report *model.CrawlReport) {
	if len(report.Records) == 0 {
		return
	}

	rows := make([][]string, 0, len(report.Records))
	for _, r := range report.Records {
		status := "-"
		if r.StatusCode != nil {
			status = strconv.Itoa(*r.StatusCode)
		}
		note := r.Title
		if r.ErrorMessage != nil {
			note = *r.ErrorMessage
		}
		rows = append(rows, []string{
			r.URL,
			strconv.Itoa(r.Depth),
			status,
			strconv.Itoa(r.LinksFound),
			strconv.Itoa(len(r.EmailsFound)),
			strconv.Itoa(len(r.PhoneNumbers)),
			note,
		})
	}

	md.H2("Pages")
	md.Table(markdown.TableSet{
		Header: []string{"URL", "Depth", "Status", "Links", "Emails", "Phones", "Title / Error"},
		Rows:   rows,
	})
}
