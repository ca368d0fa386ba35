// Package suitedb archives downloaded test suites in a sqlite file so
// they stay queryable after the originals drift or disappear.
package suitedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"contest-assist/lib/scrapers/atcoder"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

type Store struct {
	db *sql.DB
}

// Open creates or opens the archive at path and applies the schema.
// The parent directory is created as needed.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		os.MkdirAll(filepath.Dir(path), 0777)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSuite implements atcoder.SuiteSink. Downloading a task again
// replaces its archived suite.
func (s *Store) SaveSuite(ctx context.Context, contest atcoder.Contest, task atcoder.Task, suite atcoder.TestSuite) error {
	encoded, err := json.Marshal(suite)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO suites (contest, task, url, suite, fetched_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (contest, task) DO UPDATE SET
    url = excluded.url,
    suite = excluded.suite,
    fetched_at = excluded.fetched_at
`, contest.Slug(), task.Name, task.URL, string(encoded), time.Now().Unix())
	return err
}

type SavedSuite struct {
	Contest   string
	Task      string
	URL       string
	Suite     atcoder.TestSuite
	FetchedAt time.Time
}

// Suites lists the archived suites of a contest in task order.
func (s *Store) Suites(ctx context.Context, contestSlug string) ([]SavedSuite, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT contest, task, url, suite, fetched_at FROM suites
WHERE contest = ?
ORDER BY task
`, contestSlug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavedSuite
	for rows.Next() {
		var entry SavedSuite
		var encoded string
		var fetchedAt int64
		err := rows.Scan(&entry.Contest, &entry.Task, &entry.URL, &encoded, &fetchedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(encoded), &entry.Suite); err != nil {
			return nil, err
		}
		entry.FetchedAt = time.Unix(fetchedAt, 0)
		out = append(out, entry)
	}
	return out, rows.Err()
}
