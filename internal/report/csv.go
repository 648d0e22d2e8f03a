package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/linkharvest/linkharvest/internal/model"
)

// ListSeparator joins list-valued record fields when flattening to CSV.
// Fixed so downstream consumers can split the column back apart.
const ListSeparator = ", "

// csvRow is the flattened CSV projection of a PageRecord.
// Column names match the JSON field names of the record contract; nullable
// fields serialize as empty cells.
type csvRow struct {
	URL           string `csv:"url"`
	Title         string `csv:"title"`
	StatusCode    string `csv:"status_code"`
	ContentLength int    `csv:"content_length"`
	LinksFound    int    `csv:"links_found"`
	EmailsFound   string `csv:"emails_found"`
	PhoneNumbers  string `csv:"phone_numbers"`
	CrawlTime     string `csv:"crawl_time"`
	ErrorMessage  string `csv:"error_message"`
	Depth         int    `csv:"depth"`
}

// summaryRow is one metric line of the CSV summary output.
type summaryRow struct {
	Metric string `csv:"metric"`
	Value  string `csv:"value"`
}

// CSVWriter outputs crawl results in CSV format.
//
// Design decision: We use gocsv rather than encoding/csv directly because
// struct tags keep the column order and header names declared next to the
// row type, the same way the JSON contract lives on PageRecord.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one CSV row per record, preserving record order.
func (w *CSVWriter) Write(report *model.CrawlReport) (int, error) {
	rows := make([]csvRow, 0, len(report.Records))
	for _, r := range report.Records {
		rows = append(rows, flattenRecord(r))
	}

	data, err := gocsv.MarshalString(&rows)
	if err != nil {
		return 0, err
	}
	return io.WriteString(w.output, data)
}

// WriteSummary outputs the aggregate summary as metric,value rows.
func (w *CSVWriter) WriteSummary(summary *model.Summary) (int, error) {
	rows := []summaryRow{
		{Metric: "pages_processed", Value: strconv.Itoa(summary.PagesProcessed)},
		{Metric: "successful", Value: strconv.Itoa(summary.Successful)},
		{Metric: "errors", Value: strconv.Itoa(summary.Errored)},
		{Metric: "total_links", Value: strconv.Itoa(summary.TotalLinks)},
		{Metric: "total_emails", Value: strconv.Itoa(summary.TotalEmails)},
		{Metric: "total_phones", Value: strconv.Itoa(summary.TotalPhones)},
	}
	for _, dc := range summary.SortedDomains() {
		rows = append(rows, summaryRow{Metric: "domain:" + dc.Domain, Value: strconv.Itoa(dc.Pages)})
	}

	data, err := gocsv.MarshalString(&rows)
	if err != nil {
		return 0, err
	}
	return io.WriteString(w.output, data)
}

// flattenRecord converts a PageRecord to its CSV row form.
func flattenRecord(r *model.PageRecord) csvRow {
	row := csvRow{
		URL:           r.URL,
		Title:         r.Title,
		ContentLength: r.ContentLength,
		LinksFound:    r.LinksFound,
		EmailsFound:   strings.Join(r.EmailsFound, ListSeparator),
		PhoneNumbers:  strings.Join(r.PhoneNumbers, ListSeparator),
		CrawlTime:     r.CrawlTime,
		Depth:         r.Depth,
	}
	if r.StatusCode != nil {
		row.StatusCode = strconv.Itoa(*r.StatusCode)
	}
	if r.ErrorMessage != nil {
		row.ErrorMessage = *r.ErrorMessage
	}
	return row
}
