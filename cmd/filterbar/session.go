package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filterbar/internal/config"
	"filterbar/internal/debug"
	"filterbar/internal/filter"
	"filterbar/internal/schema"
	"filterbar/internal/store"
)

const dbFileName = "filterbar.db"

// session is the store and schema every command works against.
type session struct {
	store  *store.Store
	schema *filter.Schema
}

// openSession opens the configured database and builds the schema over it.
// onUpdate receives background revalidations of cached suggestions.
func openSession(ctx context.Context, onUpdate func(key string, items []filter.Suggestion)) (*session, error) {
	path := strings.TrimSpace(config.GetString(config.KeyDatabasePath))
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("determine home directory: %w", err)
		}
		path = filepath.Join(home, config.DirName, dbFileName)
	}

	st, err := store.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	deps := schema.Deps{
		Sources:  st,
		Suggest:  config.Suggest(),
		Now:      time.Now,
		OnUpdate: onUpdate,
	}
	var s *filter.Schema
	if p := strings.TrimSpace(config.GetString(config.KeySchemaPath)); p != "" {
		s, err = schema.Load(p, deps)
	} else {
		s, err = schema.Default(deps)
	}
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if n := config.GetInt(config.KeyMaxExpressions); n > 0 {
		s.MaxExpressions = n
	}
	debug.Logger().V(1).Info("session opened", "db", st.Path(), "fields", len(s.Fields))
	return &session{store: st, schema: s}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// parseFilter parses the text grammar and validates the result.
func (s *session) parseFilter(text string) ([]filter.Expression, error) {
	exprs, err := filter.ParseText(s.schema, text)
	if err != nil {
		return nil, err
	}
	if res := filter.ValidateExpressions(s.schema, exprs); !res.Valid {
		msgs := make([]string, 0, len(res.Errors))
		for _, e := range res.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, fmt.Errorf("invalid filter: %s", strings.Join(msgs, "; "))
	}
	return exprs, nil
}
