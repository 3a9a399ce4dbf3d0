package store

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	appErrors "filterbar/internal/errors"
)

// RecordsTable is the table holding the demo records.
const RecordsTable = "records"

// Record is one row of the demo data set the CLI filters.
type Record struct {
	ID       int64
	Title    string
	Status   string
	Priority int
	Assignee string
	Label    string
	Created  string // YYYY-MM-DD
}

// RecordColumns lists the filterable columns of RecordsTable.
var RecordColumns = []string{"title", "status", "priority", "assignee", "label", "created"}

var (
	sampleStatuses  = []string{"open", "in_progress", "blocked", "closed"}
	sampleAssignees = []string{"alice", "bob", "carol", "dmitri", "erin", "farah", ""}
	sampleLabels    = []string{"bug", "feature", "docs", "ui", "backend", "perf", "security"}
	sampleVerbs     = []string{"Fix", "Add", "Improve", "Remove", "Document", "Refactor"}
	sampleNouns     = []string{"login page", "search results", "export job", "settings form", "audit log", "cache layer", "billing report"}
)

// SampleRecords generates n deterministic records for seed, with creation
// dates spread over the 90 days before now.
func SampleRecords(n int, seed uint64, now time.Time) []Record {
	//nolint:gosec // G404: demo data, not security sensitive
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Record{
			Title:    sampleVerbs[r.IntN(len(sampleVerbs))] + " " + sampleNouns[r.IntN(len(sampleNouns))],
			Status:   sampleStatuses[r.IntN(len(sampleStatuses))],
			Priority: r.IntN(5),
			Assignee: sampleAssignees[r.IntN(len(sampleAssignees))],
			Label:    sampleLabels[r.IntN(len(sampleLabels))],
			Created:  now.AddDate(0, 0, -r.IntN(90)).Format("2006-01-02"),
		})
	}
	return out
}

// Seed inserts records in one transaction. When replace is set the table is
// emptied first.
func (s *Store) Seed(ctx context.Context, records []Record, replace bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return appErrors.New(appErrors.CodeStorageFailed, "begin seed", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if replace {
		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return appErrors.New(appErrors.CodeStorageFailed, "clear records", err)
		}
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (title, status, priority, assignee, label, created)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return appErrors.New(appErrors.CodeStorageFailed, "prepare seed", err)
	}
	defer func() {
		_ = stmt.Close()
	}()
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.Title, rec.Status, rec.Priority, rec.Assignee, rec.Label, rec.Created); err != nil {
			return appErrors.New(appErrors.CodeStorageFailed, "insert record", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return appErrors.New(appErrors.CodeStorageFailed, "commit seed", err)
	}
	return nil
}

// Count returns how many records match the WHERE fragment. An empty
// fragment counts everything.
func (s *Store) Count(ctx context.Context, where string, args []any) (int, error) {
	q := `SELECT COUNT(*) FROM records` + whereClause(where)
	var n int
	if err := s.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, appErrors.New(appErrors.CodeStorageFailed, "count records", err)
	}
	return n, nil
}

// Query returns up to limit records matching the WHERE fragment, newest
// first. A limit of zero or less returns all matches.
func (s *Store) Query(ctx context.Context, where string, args []any, limit int) ([]Record, error) {
	q := `SELECT id, title, status, priority, assignee, label, created FROM records` +
		whereClause(where) + ` ORDER BY created DESC, id`
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeStorageFailed, "query records", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Status, &rec.Priority, &rec.Assignee, &rec.Label, &rec.Created); err != nil {
			return nil, appErrors.New(appErrors.CodeStorageFailed, "scan record", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func whereClause(where string) string {
	if strings.TrimSpace(where) == "" {
		return ""
	}
	return " WHERE " + where
}
