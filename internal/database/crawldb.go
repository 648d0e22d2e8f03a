package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/linkharvest/linkharvest/internal/model"
)

// dbFileName is the SQLite database file name inside the data directory.
const dbFileName = "linkharvest.db"

// CrawlDB provides SQLite-based storage for crawl run history.
//
// Design decision: We use a single database file holding every run rather
// than one file per run. This keeps listing and cross-run queries simple
// and makes backup a single-file operation.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// RunInfo summarizes one stored crawl run.
type RunInfo struct {
	// ID is the run's primary key.
	ID int64

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// Seeds are the seed URLs of the run.
	Seeds []string

	// MaxDepth and MaxPages are the limits the run was configured with.
	MaxDepth int
	MaxPages int

	// Pages, Successful, and Errored are the run's result counts.
	Pages      int
	Successful int
	Errored    int
}

// Open opens or creates a CrawlDB in the specified directory.
// With CreateIfNotExists the directory and database file are created as
// needed; otherwise a missing database is an error.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports only one writer; a single connection avoids
	// SQLITE_BUSY surprises.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// Path returns the path to the database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- One row per crawl run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		seeds TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		max_pages INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		successful INTEGER NOT NULL,
		errored INTEGER NOT NULL
	);

	-- One row per processed page, in processing order
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		status_code INTEGER,
		content_length INTEGER NOT NULL,
		links_found INTEGER NOT NULL,
		emails_found TEXT NOT NULL,
		phone_numbers TEXT NOT NULL,
		crawl_time TEXT NOT NULL,
		error_message TEXT,
		depth INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun stores a completed crawl run and its page records.
// Returns the new run ID. The insert is transactional so a failed save
// never leaves a half-written run behind.
func (cdb *CrawlDB) SaveRun(ctx context.Context, report *model.CrawlReport, maxDepth, maxPages int) (int64, error) {
	summary := report.Summarize()

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, seeds, max_depth, max_pages, pages, successful, errored)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.StartedAt.UTC(),
		strings.Join(report.Seeds, " "),
		maxDepth,
		maxPages,
		summary.PagesProcessed,
		summary.Successful,
		summary.Errored,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pages (run_id, url, title, status_code, content_length, links_found,
		                    emails_found, phone_numbers, crawl_time, error_message, depth)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range report.Records {
		emails, err := json.Marshal(r.EmailsFound)
		if err != nil {
			return 0, fmt.Errorf("failed to encode emails: %w", err)
		}
		phones, err := json.Marshal(r.PhoneNumbers)
		if err != nil {
			return 0, fmt.Errorf("failed to encode phone numbers: %w", err)
		}

		var status sql.NullInt64
		if r.StatusCode != nil {
			status = sql.NullInt64{Int64: int64(*r.StatusCode), Valid: true}
		}
		var errMsg sql.NullString
		if r.ErrorMessage != nil {
			errMsg = sql.NullString{String: *r.ErrorMessage, Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			runID, r.URL, r.Title, status, r.ContentLength, r.LinksFound,
			string(emails), string(phones), r.CrawlTime, errMsg, r.Depth,
		); err != nil {
			return 0, fmt.Errorf("failed to insert page: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// RecentRuns returns up to limit runs, newest first.
func (cdb *CrawlDB) RecentRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT id, started_at, seeds, max_depth, max_pages, pages, successful, errored
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunInfo
	for rows.Next() {
		var info RunInfo
		var seeds string
		if err := rows.Scan(&info.ID, &info.StartedAt, &seeds, &info.MaxDepth,
			&info.MaxPages, &info.Pages, &info.Successful, &info.Errored); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		info.Seeds = strings.Fields(seeds)
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// RunPages returns the page records of a run in processing order.
func (cdb *CrawlDB) RunPages(ctx context.Context, runID int64) ([]*model.PageRecord, error) {
	rows, err := cdb.db.QueryContext(ctx,
		`SELECT url, title, status_code, content_length, links_found,
		        emails_found, phone_numbers, crawl_time, error_message, depth
		 FROM pages WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var records []*model.PageRecord
	for rows.Next() {
		var (
			r      model.PageRecord
			status sql.NullInt64
			errMsg sql.NullString
			emails string
			phones string
		)
		if err := rows.Scan(&r.URL, &r.Title, &status, &r.ContentLength, &r.LinksFound,
			&emails, &phones, &r.CrawlTime, &errMsg, &r.Depth); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		if status.Valid {
			r.SetStatusCode(int(status.Int64))
		}
		if errMsg.Valid {
			r.SetError(errMsg.String)
		}
		if err := json.Unmarshal([]byte(emails), &r.EmailsFound); err != nil {
			return nil, fmt.Errorf("failed to decode emails: %w", err)
		}
		if err := json.Unmarshal([]byte(phones), &r.PhoneNumbers); err != nil {
			return nil, fmt.Errorf("failed to decode phone numbers: %w", err)
		}

		records = append(records, &r)
	}
	return records, rows.Err()
}
