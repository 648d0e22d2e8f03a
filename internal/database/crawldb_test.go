package database

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/linkharvest/linkharvest/internal/model"
)

// openTestDB creates a CrawlDB in a temporary directory.
func openTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := cdb.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return cdb
}

// sampleReport builds a report with one successful and one failed page.
func sampleReport() *model.CrawlReport {
	report := model.NewCrawlReport([]string{"https://example.com/"})

	ok := model.NewPageRecord("https://example.com/", 0)
	ok.SetStatusCode(200)
	ok.Title = "Home"
	ok.ContentLength = 4096
	ok.LinksFound = 4
	ok.EmailsFound = []string{"info@example.com"}
	ok.PhoneNumbers = []string{"555-123-4567"}
	report.Append(ok)

	bad := model.NewPageRecord("https://example.com/missing", 1)
	bad.SetStatusCode(404)
	bad.SetError("failed to fetch (HTTP 404)")
	report.Append(bad)

	return report
}

// TestOpenCreatesDatabase tests directory and file creation.
func TestOpenCreatesDatabase(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "data")
	cdb, err := Open(dir, DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cdb.Close()

	if _, err := os.Stat(cdb.Path()); err != nil {
		t.Errorf("database file missing at %s: %v", cdb.Path(), err)
	}
}

// TestOpenWithoutCreate tests that a missing database is an error when
// creation is disabled.
func TestOpenWithoutCreate(t *testing.T) {
	t.Parallel()

	opts := Options{CreateIfNotExists: false, EnableWAL: true}
	if _, err := Open(t.TempDir(), opts); err == nil {
		t.Fatal("Open() error = nil, want missing-database error")
	}
}

// TestSaveRunAndRecentRuns tests the round trip of run metadata.
func TestSaveRunAndRecentRuns(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	runID, err := cdb.SaveRun(ctx, sampleReport(), 2, 50)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if runID == 0 {
		t.Error("SaveRun() returned run ID 0")
	}

	runs, err := cdb.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}

	run := runs[0]
	if run.ID != runID {
		t.Errorf("ID = %d, want %d", run.ID, runID)
	}
	if !reflect.DeepEqual(run.Seeds, []string{"https://example.com/"}) {
		t.Errorf("Seeds = %v, want the report seeds", run.Seeds)
	}
	if run.MaxDepth != 2 || run.MaxPages != 50 {
		t.Errorf("limits = (%d, %d), want (2, 50)", run.MaxDepth, run.MaxPages)
	}
	if run.Pages != 2 || run.Successful != 1 || run.Errored != 1 {
		t.Errorf("counts = (%d, %d, %d), want (2, 1, 1)", run.Pages, run.Successful, run.Errored)
	}
}

// TestRecentRunsOrderAndLimit tests newest-first ordering and the limit.
func TestRecentRunsOrderAndLimit(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := cdb.SaveRun(ctx, sampleReport(), 1, 10)
		if err != nil {
			t.Fatalf("SaveRun() error = %v", err)
		}
		ids = append(ids, id)
	}

	runs, err := cdb.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("run order = [%d, %d], want newest first [%d, %d]",
			runs[0].ID, runs[1].ID, ids[2], ids[1])
	}
}

// TestRunPagesRoundTrip tests that stored page records come back intact,
// nullable fields included.
func TestRunPagesRoundTrip(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	original := sampleReport()
	runID, err := cdb.SaveRun(ctx, original, 2, 50)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	pages, err := cdb.RunPages(ctx, runID)
	if err != nil {
		t.Fatalf("RunPages() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}

	if !reflect.DeepEqual(pages[0], original.Records[0]) {
		t.Errorf("page 0 = %+v, want %+v", pages[0], original.Records[0])
	}
	if !reflect.DeepEqual(pages[1], original.Records[1]) {
		t.Errorf("page 1 = %+v, want %+v", pages[1], original.Records[1])
	}
}

// TestRunPagesUnknownRun tests the empty result for a nonexistent run.
func TestRunPagesUnknownRun(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)

	pages, err := cdb.RunPages(context.Background(), 999)
	if err != nil {
		t.Fatalf("RunPages() error = %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("got %d pages for unknown run, want 0", len(pages))
	}
}

// TestSaveRunInterruptedReport tests that a partially-completed run still
// saves cleanly.
func TestSaveRunInterruptedReport(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	ctx := context.Background()

	report := sampleReport()
	report.Interrupted = true

	if _, err := cdb.SaveRun(ctx, report, 2, 50); err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}

	runs, err := cdb.RecentRuns(ctx, 1)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 || runs[0].Pages != 2 {
		t.Errorf("interrupted run not stored correctly: %+v", runs)
	}
}
