package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	appErrors "filterbar/internal/errors"
	"filterbar/internal/filter"
)

// SavedFilter is a named wire-form expression list.
type SavedFilter struct {
	Name      string
	Filters   []filter.SerializedExpression
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Save stores wire under name, replacing any filter with the same name.
func (s *Store) Save(ctx context.Context, name string, wire []filter.SerializedExpression) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return appErrors.New(appErrors.CodeInvalidExpression, "filter name is empty", nil)
	}
	if wire == nil {
		wire = []filter.SerializedExpression{}
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return appErrors.New(appErrors.CodeStorageFailed, "encode filter", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_filters (name, filters, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET filters = excluded.filters, updated_at = excluded.updated_at
	`, name, string(data), now, now)
	if err != nil {
		return appErrors.New(appErrors.CodeStorageFailed, fmt.Sprintf("save filter %q", name), err)
	}
	return nil
}

// Load returns the filter saved under name.
func (s *Store) Load(ctx context.Context, name string) (SavedFilter, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT name, filters, created_at, updated_at
		FROM saved_filters WHERE name = ?
	`, strings.TrimSpace(name))
	sf, err := scanSavedFilter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedFilter{}, appErrors.New(appErrors.CodeNotFound, fmt.Sprintf("filter %q not found", name), nil)
	}
	return sf, err
}

// List returns all saved filters ordered by name.
func (s *Store) List(ctx context.Context) ([]SavedFilter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, filters, created_at, updated_at
		FROM saved_filters ORDER BY name
	`)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeStorageFailed, "query saved filters", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []SavedFilter
	for rows.Next() {
		sf, err := scanSavedFilter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sf)
	}
	return out, rows.Err()
}

// Delete removes the filter saved under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_filters WHERE name = ?`, strings.TrimSpace(name))
	if err != nil {
		return appErrors.New(appErrors.CodeStorageFailed, fmt.Sprintf("delete filter %q", name), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return appErrors.New(appErrors.CodeNotFound, fmt.Sprintf("filter %q not found", name), nil)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedFilter(r rowScanner) (SavedFilter, error) {
	var (
		sf               SavedFilter
		data             string
		created, updated string
	)
	if err := r.Scan(&sf.Name, &data, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SavedFilter{}, err
		}
		return SavedFilter{}, appErrors.New(appErrors.CodeStorageFailed, "scan saved filter", err)
	}
	if err := json.Unmarshal([]byte(data), &sf.Filters); err != nil {
		return SavedFilter{}, appErrors.New(appErrors.CodeParseFailed, fmt.Sprintf("decode filter %q", sf.Name), err)
	}
	sf.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	sf.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return sf, nil
}
