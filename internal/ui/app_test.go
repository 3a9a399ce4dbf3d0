package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"filterbar/internal/filter"
	"filterbar/internal/store"
)

type fakeRecords struct {
	wheres []string
	args   [][]any
	saved  map[string][]filter.SerializedExpression
	failOn string
}

func (f *fakeRecords) Count(ctx context.Context, where string, args []any) (int, error) {
	f.wheres = append(f.wheres, where)
	f.args = append(f.args, args)
	if f.failOn != "" && strings.Contains(where, f.failOn) {
		return 0, errors.New("count exploded")
	}
	if where == "" {
		return 3, nil
	}
	return 1, nil
}

func (f *fakeRecords) Query(ctx context.Context, where string, args []any, limit int) ([]store.Record, error) {
	return []store.Record{{ID: 1, Title: "Fix login page", Status: "open", Priority: 1, Created: "2026-03-01"}}, nil
}

func (f *fakeRecords) Save(ctx context.Context, name string, wire []filter.SerializedExpression) error {
	if f.saved == nil {
		f.saved = map[string][]filter.SerializedExpression{}
	}
	f.saved[name] = wire
	return nil
}

// pump feeds every message produced by cmd back into the app.
func pump(t *testing.T, m *App, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil && i < 20; i++ {
		var next []tea.Cmd
		for _, msg := range collect(cmd) {
			_, c := m.Update(msg)
			next = append(next, c)
		}
		cmd = tea.Batch(next...)
	}
}

func send(t *testing.T, m *App, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	pump(t, m, cmd)
}

func newTestApp(t *testing.T, recs *fakeRecords) (*App, *string) {
	t.Helper()
	var copied string
	m := NewApp(Config{
		Schema:    testSchema(),
		Records:   recs,
		HelpStyle: "plain",
		Copy:      func(s string) error { copied = s; return nil },
	})
	pump(t, m, m.Init())
	send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, &copied
}

func buildStatusOpen(t *testing.T, m *App) {
	t.Helper()
	for _, text := range []string{"stat", "=", "open"} {
		send(t, m, runes(text))
		send(t, m, keyOf(tea.KeyEnter))
	}
}

func TestAppInitialQuery(t *testing.T) {
	recs := &fakeRecords{}
	m, _ := newTestApp(t, recs)
	if len(recs.wheres) != 1 || recs.wheres[0] != "" {
		t.Fatalf("expected one unfiltered count, got %v", recs.wheres)
	}
	if m.count != 3 {
		t.Errorf("expected count 3, got %d", m.count)
	}
	view := m.View()
	if !strings.Contains(view, "3 records") || !strings.Contains(view, "Fix login page") {
		t.Errorf("expected summary and results in view:\n%s", view)
	}
}

func TestAppRequeriesOnChange(t *testing.T) {
	recs := &fakeRecords{}
	m, _ := newTestApp(t, recs)
	buildStatusOpen(t, m)

	last := recs.wheres[len(recs.wheres)-1]
	if last != "status = ?" {
		t.Fatalf("expected status = ?, got %q", last)
	}
	if args := recs.args[len(recs.args)-1]; len(args) != 1 || args[0] != "open" {
		t.Errorf("expected args [open], got %v", args)
	}
	if m.count != 1 {
		t.Errorf("expected count 1, got %d", m.count)
	}
	if view := m.View(); !strings.Contains(view, "1 matching records") {
		t.Errorf("expected matching summary in view:\n%s", view)
	}
}

func TestAppQueryError(t *testing.T) {
	recs := &fakeRecords{failOn: "status"}
	m, _ := newTestApp(t, recs)
	buildStatusOpen(t, m)
	if !m.toastError || !strings.Contains(m.toast, "count exploded") {
		t.Errorf("expected error toast, got %q", m.toast)
	}
}

func TestAppSaveAndCopy(t *testing.T) {
	recs := &fakeRecords{}
	m, copied := newTestApp(t, recs)
	buildStatusOpen(t, m)

	send(t, m, keyOf(tea.KeyCtrlS))
	wire := recs.saved["default"]
	if len(wire) != 1 || wire[0].Field != "status" || wire[0].Operator != "eq" {
		t.Fatalf("expected saved status filter, got %v", recs.saved)
	}
	if !strings.Contains(m.toast, `Saved 1 filters as "default"`) {
		t.Errorf("expected save toast, got %q", m.toast)
	}

	send(t, m, keyOf(tea.KeyCtrlY))
	if !strings.Contains(*copied, `"field":"status"`) || !strings.Contains(*copied, `"operator":"eq"`) {
		t.Errorf("expected JSON on the clipboard, got %s", *copied)
	}
	if m.toastError {
		t.Errorf("expected copy success, got %q", m.toast)
	}
}

func TestAppHelpOverlay(t *testing.T) {
	m, _ := newTestApp(t, &fakeRecords{})
	send(t, m, runes("?"))
	if !m.showHelp {
		t.Fatal("expected help to open on an empty input")
	}
	if view := m.View(); !strings.Contains(view, "Building filters") {
		t.Errorf("expected help content:\n%s", view)
	}
	send(t, m, keyOf(tea.KeyEsc))
	if m.showHelp {
		t.Error("expected Esc to close help")
	}

	send(t, m, runes("st"))
	send(t, m, runes("?"))
	if m.showHelp {
		t.Error("expected ? to be typed while the input has text")
	}
}

func TestAppFocusCycle(t *testing.T) {
	m, _ := newTestApp(t, &fakeRecords{})
	send(t, m, keyOf(tea.KeyTab))
	if m.focus != FocusResults || m.bar.Focused() {
		t.Fatalf("expected results focus, got %v", m.focus)
	}
	send(t, m, runes("/"))
	if m.focus != FocusBar || !m.bar.Focused() {
		t.Errorf("expected bar focus, got %v", m.focus)
	}
}
