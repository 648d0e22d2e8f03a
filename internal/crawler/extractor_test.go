package crawler

import (
	"net/url"
	"reflect"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", raw, err)
	}
	return u
}

// TestExtractTitle tests title extraction and cleanup.
func TestExtractTitle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "simple title",
			content: `<html><head><title>Welcome</title></head></html>`,
			want:    "Welcome",
		},
		{
			name:    "title with attributes",
			content: `<title lang="en">Hello</title>`,
			want:    "Hello",
		},
		{
			name:    "whitespace collapsed",
			content: "<title>  Multi\n\tLine   Title </title>",
			want:    "Multi Line Title",
		},
		{
			name:    "entities unescaped",
			content: `<title>Q&amp;A &mdash; FAQ</title>`,
			want:    "Q&A — FAQ",
		},
		{
			name:    "case-insensitive tag",
			content: `<TITLE>Shouty</TITLE>`,
			want:    "Shouty",
		},
		{
			name:    "first title wins",
			content: `<title>First</title><title>Second</title>`,
			want:    "First",
		},
		{
			name:    "no title",
			content: `<html><body>nothing</body></html>`,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := extractTitle(tt.content); got != tt.want {
				t.Errorf("extractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestExtractorLinks tests href extraction, normalization, deduplication,
// and internal/external classification.
func TestExtractorLinks(t *testing.T) {
	t.Parallel()

	e := NewExtractor([]string{"example.com"})
	base := mustParse(t, "https://example.com/dir/")

	content := `
		<a href="/about">About</a>
		<a class="nav" href="contact.html">Contact</a>
		<a href="/about#team">Team</a>
		<a href="https://other.com/page">Other</a>
		<a href="mailto:info@example.com">Mail us</a>
		<a href="javascript:void(0)">Noop</a>
		<A HREF="https://EXAMPLE.COM/about">Dup</A>
	`

	got := e.Extract(content, base)

	wantInternal := []string{
		"https://example.com/about",
		"https://example.com/dir/contact.html",
	}
	wantExternal := []string{"https://other.com/page"}

	if !reflect.DeepEqual(got.InternalLinks, wantInternal) {
		t.Errorf("InternalLinks = %v, want %v", got.InternalLinks, wantInternal)
	}
	if !reflect.DeepEqual(got.ExternalLinks, wantExternal) {
		t.Errorf("ExternalLinks = %v, want %v", got.ExternalLinks, wantExternal)
	}
	if got.LinksFound() != 3 {
		t.Errorf("LinksFound() = %d, want 3", got.LinksFound())
	}
}

// TestExtractorMailtoContributesEmail verifies a mailto href is rejected as
// a link but its address is still picked up by the email scan.
func TestExtractorMailtoContributesEmail(t *testing.T) {
	t.Parallel()

	e := NewExtractor([]string{"example.com"})
	base := mustParse(t, "https://example.com/")

	content := `<title>Contact</title><a href="mailto:support@example.com">Write us</a>`
	got := e.Extract(content, base)

	if got.LinksFound() != 0 {
		t.Errorf("LinksFound() = %d, want 0", got.LinksFound())
	}
	if want := []string{"support@example.com"}; !reflect.DeepEqual(got.Emails, want) {
		t.Errorf("Emails = %v, want %v", got.Emails, want)
	}
	if got.Title != "Contact" {
		t.Errorf("Title = %q, want %q", got.Title, "Contact")
	}
}

// TestExtractEmails tests email matching and exact-case deduplication.
func TestExtractEmails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "plain address",
			content: `Reach us at info@example.com today`,
			want:    []string{"info@example.com"},
		},
		{
			name:    "duplicates collapse",
			content: `info@example.com and again info@example.com`,
			want:    []string{"info@example.com"},
		},
		{
			name:    "case variants stay distinct",
			content: `Admin@example.com admin@example.com`,
			want:    []string{"Admin@example.com", "admin@example.com"},
		},
		{
			name:    "subdomain and plus tag",
			content: `dev+test@mail.corp.example.co.uk`,
			want:    []string{"dev+test@mail.corp.example.co.uk"},
		},
		{
			name:    "single-letter TLD rejected",
			content: `bad@host.x`,
			want:    []string{},
		},
		{
			name:    "no addresses",
			content: `nothing to see here`,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := extractEmails(tt.content); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractEmails() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestExtractPhones tests phone matching across formats and the
// longest-match overlap resolution.
func TestExtractPhones(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "dashed format",
			content: `Call 555-123-4567 now`,
			want:    []string{"555-123-4567"},
		},
		{
			name:    "parenthesized area code",
			content: `Office: (555) 123-4567`,
			want:    []string{"(555) 123-4567"},
		},
		{
			name:    "dotted format",
			content: `Fax 555.123.4567`,
			want:    []string{"555.123.4567"},
		},
		{
			name:    "spaced format",
			content: `Mobile 555 123 4567`,
			want:    []string{"555 123 4567"},
		},
		{
			name:    "country prefix kept with match",
			content: `Intl +1-555-123-4567`,
			want:    []string{"+1-555-123-4567"},
		},
		{
			name:    "overlap resolved to longest",
			content: `1-555-123-4567`,
			want:    []string{"1-555-123-4567"},
		},
		{
			name:    "duplicates collapse",
			content: `555-123-4567 or 555-123-4567`,
			want:    []string{"555-123-4567"},
		},
		{
			name:    "multiple distinct numbers",
			content: `(555) 111-2222 and 555-333-4444`,
			want:    []string{"(555) 111-2222", "555-333-4444"},
		},
		{
			name:    "no numbers",
			content: `call me maybe`,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := extractPhones(tt.content); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("extractPhones() = %v, want %v", got, tt.want)
			}
		})
	}
}
