package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"filterbar/internal/autocomplete"
	appErrors "filterbar/internal/errors"
	"filterbar/internal/filter"
)

// ValueSource returns a fetch function offering the distinct values of
// table.column that contain the query, at most limit of them.
func (s *Store) ValueSource(table, column string, limit int) (autocomplete.FetchFunc, error) {
	if err := checkIdentifiers(table, column); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	q := fmt.Sprintf(`
		SELECT DISTINCT CAST(%[2]s AS TEXT) AS v FROM %[1]s
		WHERE %[2]s IS NOT NULL AND CAST(%[2]s AS TEXT) != '' AND CAST(%[2]s AS TEXT) LIKE ? ESCAPE '\'
		ORDER BY v LIMIT ?`, table, column)

	return func(ctx context.Context, query string) ([]filter.Suggestion, error) {
		values, err := s.distinct(ctx, q, likePattern(query), limit)
		if err != nil {
			return nil, err
		}
		return suggestionsFor(values), nil
	}, nil
}

// PageSource returns a page function over the distinct values of
// table.column that contain the query. Cursors are row offsets.
func (s *Store) PageSource(table, column string) (autocomplete.PageFunc, error) {
	if err := checkIdentifiers(table, column); err != nil {
		return nil, err
	}
	where := fmt.Sprintf(`%[1]s IS NOT NULL AND CAST(%[1]s AS TEXT) != '' AND CAST(%[1]s AS TEXT) LIKE ? ESCAPE '\'`, column)
	pageQuery := fmt.Sprintf(`SELECT DISTINCT CAST(%[2]s AS TEXT) AS v FROM %[1]s WHERE %[3]s ORDER BY v LIMIT ? OFFSET ?`, table, column, where)
	countQuery := fmt.Sprintf(`SELECT COUNT(DISTINCT CAST(%[2]s AS TEXT)) FROM %[1]s WHERE %[3]s`, table, column, where)

	return func(ctx context.Context, query, cursor string, limit int) (autocomplete.Page, error) {
		offset := 0
		if cursor != "" {
			n, err := strconv.Atoi(cursor)
			if err != nil || n < 0 {
				return autocomplete.Page{}, appErrors.New(appErrors.CodeParseFailed, fmt.Sprintf("bad cursor %q", cursor), err)
			}
			offset = n
		}
		pattern := likePattern(query)

		var total int
		if err := s.db.QueryRowContext(ctx, countQuery, pattern).Scan(&total); err != nil {
			return autocomplete.Page{}, queryError(ctx, "count values", err)
		}
		values, err := s.distinct(ctx, pageQuery, pattern, limit, offset)
		if err != nil {
			return autocomplete.Page{}, err
		}
		next := offset + len(values)
		page := autocomplete.Page{
			Items:   suggestionsFor(values),
			HasMore: next < total,
			Total:   total,
		}
		if page.HasMore {
			page.NextCursor = strconv.Itoa(next)
		}
		return page, nil
	}, nil
}

func (s *Store) distinct(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, queryError(ctx, "query values", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, appErrors.New(appErrors.CodeStorageFailed, "scan value", err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "read values", err)
	}
	return values, nil
}

// queryError keeps cancellation recognisable so autocompleters can drop it.
func queryError(ctx context.Context, msg string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		return fmt.Errorf("%s: %w", msg, errors.Join(ctxErr, err))
	}
	return appErrors.New(appErrors.CodeStorageFailed, msg, err)
}

func likePattern(query string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(query)) + "%"
}

func suggestionsFor(values []string) []filter.Suggestion {
	out := make([]filter.Suggestion, 0, len(values))
	for _, v := range values {
		out = append(out, filter.Suggestion{Type: filter.SuggestionValue, Key: v, Label: v, Value: v})
	}
	return out
}
