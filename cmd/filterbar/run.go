package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"filterbar/internal/config"
	"filterbar/internal/debug"
	"filterbar/internal/engine"
	appErrors "filterbar/internal/errors"
	"filterbar/internal/filter"
	"filterbar/internal/query"
	"filterbar/internal/store"
	"filterbar/internal/ui"
)

const (
	autoSeedCount = 200
	autoSeedValue = 1
)

type programRunner interface {
	Run() (tea.Model, error)
}

type programFactory func(*ui.App) programRunner

func newRunCmd() *cobra.Command {
	var name, text string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Open the interactive filter builder",
		Long: "Open the filter bar over the demo records. The match count updates as filters change;\n" +
			"ctrl+s saves under --name, ctrl+y copies the filter as JSON and ? shows help.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var prog atomic.Pointer[tea.Program]
			onUpdate := func(key string, _ []filter.Suggestion) {
				if p := prog.Load(); p != nil {
					p.Send(ui.SourceUpdatedMsg{Key: key})
				}
			}
			return runInteractive(cmd.Context(), name, text, onUpdate, func(app *ui.App) programRunner {
				p := tea.NewProgram(app, tea.WithAltScreen())
				prog.Store(p)
				return p
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "default", "saved filter to load and save")
	cmd.Flags().StringVarP(&text, "query", "q", "", `start from a filter, e.g. 'status = open AND priority < 2'`)
	return cmd
}

func runInteractive(ctx context.Context, name, text string, onUpdate func(string, []filter.Suggestion), factory programFactory) error {
	if ctx == nil {
		ctx = context.Background()
	}
	sess, err := openSession(ctx, onUpdate)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := ensureRecords(ctx, sess.store); err != nil {
		return err
	}
	initial, err := initialFilter(ctx, sess, name, text)
	if err != nil {
		return err
	}

	app := ui.NewApp(ui.Config{
		Schema:    sess.schema,
		Records:   sess.store,
		Initial:   initial,
		Name:      name,
		SQL:       query.SQLOptions{Allowed: store.RecordColumns},
		HelpStyle: config.GetString(config.KeyHelpStyle),
		Engine:    []engine.Option{engine.WithLogger(debug.Logger())},
		Logger:    debug.Logger(),
	})
	return runProgram(app, factory)
}

func runProgram(app *ui.App, factory programFactory) error {
	if factory == nil {
		return fmt.Errorf("program factory is nil")
	}
	prog := factory(app)
	if prog == nil {
		return fmt.Errorf("program is nil")
	}
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("run UI: %w", err)
	}
	return nil
}

// ensureRecords seeds the demo records into an empty database.
func ensureRecords(ctx context.Context, st *store.Store) error {
	n, err := st.Count(ctx, "", nil)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	debug.Logger().Info("seeding empty database", "records", autoSeedCount)
	return st.Seed(ctx, store.SampleRecords(autoSeedCount, autoSeedValue, time.Now()), false)
}

// initialFilter prefers an explicit query and falls back to the saved
// filter called name.
func initialFilter(ctx context.Context, sess *session, name, text string) ([]filter.Expression, error) {
	if text != "" {
		return sess.parseFilter(text)
	}
	saved, err := sess.store.Load(ctx, name)
	if appErrors.IsCode(err, appErrors.CodeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return filter.Deserialize(sess.schema, saved.Filters), nil
}
