package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/go-logr/logr"

	"filterbar/internal/engine"
	"filterbar/internal/filter"
	"filterbar/internal/query"
	"filterbar/internal/store"
	"filterbar/internal/ui/theme"
)

const (
	// ResultLimit caps the records loaded for the results table.
	ResultLimit = 200

	queryTimeout = 5 * time.Second
	toastTTL     = 4 * time.Second
)

// Records is the record store the run screen filters.
type Records interface {
	Count(ctx context.Context, where string, args []any) (int, error)
	Query(ctx context.Context, where string, args []any, limit int) ([]store.Record, error)
	Save(ctx context.Context, name string, wire []filter.SerializedExpression) error
}

// Focus identifies which pane receives keys.
type Focus int

const (
	FocusBar Focus = iota
	FocusResults
)

// Config configures the run screen.
type Config struct {
	Schema    *filter.Schema
	Records   Records
	Initial   []filter.Expression
	Name      string // saved filter name used by ctrl+s
	SQL       query.SQLOptions
	HelpStyle string
	Engine    []engine.Option
	Logger    logr.Logger
	Copy      func(string) error // defaults to the system clipboard
}

type resultsMsg struct {
	seq   int
	count int
	rows  []store.Record
	where string
	err   error
}

type savedMsg struct {
	name  string
	count int
	err   error
}

type toastClearMsg struct{ seq int }

// App is the interactive run screen: a filter bar over the record store
// with a live match count and results table.
type App struct {
	bar     FilterBar
	keys    KeyMap
	records Records
	schema  *filter.Schema
	sqlOpts query.SQLOptions
	name    string
	copy    func(string) error
	log     logr.Logger

	width, height int
	focus         Focus
	showHelp      bool
	helpStyle     string
	renderHelp    func(string) string

	querySeq int
	count    int
	where    string
	rows     []store.Record
	rowOff   int

	toast      string
	toastError bool
	toastSeq   int
}

// NewApp builds the run screen.
func NewApp(cfg Config) *App {
	copyFn := cfg.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	name := cfg.Name
	if name == "" {
		name = "default"
	}
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	bar := NewFilterBar(cfg.Schema, cfg.Initial, cfg.Engine...)
	return &App{
		bar:        bar,
		keys:       DefaultKeyMap(),
		records:    cfg.Records,
		schema:     cfg.Schema,
		sqlOpts:    cfg.SQL,
		name:       name,
		copy:       copyFn,
		log:        log,
		width:      80,
		height:     24,
		helpStyle:  cfg.HelpStyle,
		renderHelp: buildMarkdownRenderer(cfg.HelpStyle, 72),
		count:      -1,
	}
}

// Init implements tea.Model.
func (m *App) Init() tea.Cmd {
	return tea.Batch(m.bar.Focus(), m.runQuery(m.bar.Expressions()))
}

// Update implements tea.Model.
func (m *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.bar.Width = msg.Width
		helpWidth := msg.Width - 8
		if helpWidth > 80 {
			helpWidth = 80
		}
		m.renderHelp = buildMarkdownRenderer(m.helpStyle, helpWidth)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case FilterChangedMsg:
		m.log.V(1).Info("filter changed", "expressions", len(msg.Expressions))
		return m, m.runQuery(msg.Expressions)

	case FilterErrorMsg:
		msgs := make([]string, 0, len(msg.Errors))
		for _, e := range msg.Errors {
			msgs = append(msgs, e.Message)
		}
		return m, m.showToast(strings.Join(msgs, "; "), true)

	case FocusNextMsg:
		return m, m.setFocus(FocusResults)

	case resultsMsg:
		if msg.seq != m.querySeq {
			return m, nil
		}
		if msg.err != nil {
			m.log.Error(msg.err, "query failed")
			return m, m.showToast(msg.err.Error(), true)
		}
		m.count, m.rows, m.where = msg.count, msg.rows, msg.where
		m.rowOff = 0
		return m, nil

	case savedMsg:
		if msg.err != nil {
			return m, m.showToast("Save failed: "+msg.err.Error(), true)
		}
		return m, m.showToast(fmt.Sprintf("Saved %d filters as %q.", msg.count, msg.name), false)

	case toastClearMsg:
		if msg.seq == m.toastSeq {
			m.toast = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.bar, cmd = m.bar.Update(msg)
	return m, cmd
}

func (m *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc {
			m.showHelp = false
		}
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Save):
		return m, m.save()
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyJSON()
	case key.Matches(msg, m.keys.Theme):
		return m, m.showToast("Theme: "+theme.Cycle(), false)
	case key.Matches(msg, m.keys.Help) && (m.focus == FocusResults || m.bar.Value() == ""):
		m.showHelp = true
		return m, nil
	}

	if m.focus == FocusResults {
		switch {
		case key.Matches(msg, m.keys.Results):
			return m, m.setFocus(FocusBar)
		case key.Matches(msg, m.keys.Up):
			if m.rowOff > 0 {
				m.rowOff--
			}
		case key.Matches(msg, m.keys.Down):
			if m.rowOff < len(m.rows)-1 {
				m.rowOff++
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.bar, cmd = m.bar.Update(msg)
	return m, cmd
}

func (m *App) setFocus(f Focus) tea.Cmd {
	m.focus = f
	if f == FocusBar {
		return m.bar.Focus()
	}
	return m.bar.Blur()
}

// runQuery counts and loads the records matching exprs off the update loop.
// Only the latest query's result is applied.
func (m *App) runQuery(exprs []filter.Expression) tea.Cmd {
	if m.records == nil {
		return nil
	}
	m.querySeq++
	seq, records, opts := m.querySeq, m.records, m.sqlOpts
	return func() tea.Msg {
		where, args, err := query.ToSQL(exprs, opts)
		if err != nil {
			return resultsMsg{seq: seq, err: err}
		}
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		n, err := records.Count(ctx, where, args)
		if err != nil {
			return resultsMsg{seq: seq, err: err}
		}
		rows, err := records.Query(ctx, where, args, ResultLimit)
		return resultsMsg{seq: seq, count: n, rows: rows, where: where, err: err}
	}
}

func (m *App) save() tea.Cmd {
	if m.records == nil {
		return nil
	}
	wire := filter.Serialize(m.schema, m.bar.Expressions())
	records, name := m.records, m.name
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		return savedMsg{name: name, count: len(wire), err: records.Save(ctx, name, wire)}
	}
}

func (m *App) copyJSON() tea.Cmd {
	data, err := filter.EncodeJSON(m.schema, m.bar.Expressions())
	if err == nil {
		err = m.copy(string(data))
	}
	if err != nil {
		return m.showToast("Copy failed: "+err.Error(), true)
	}
	return m.showToast("Copied filter JSON to clipboard.", false)
}

func (m *App) showToast(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	m.toast, m.toastError = text, isErr
	seq := m.toastSeq
	return tea.Tick(toastTTL, func(time.Time) tea.Msg { return toastClearMsg{seq: seq} })
}

// View implements tea.Model.
func (m *App) View() string {
	if m.showHelp {
		return renderHelpOverlay(m.renderHelp, m.keys, m.width, m.height)
	}

	header := styleTitle().Render("filterbar") + "  " + styleHint().Render("saving as "+strconv.Quote(m.name))
	parts := []string{header, m.bar.View()}

	switch {
	case m.toast != "" && m.toastError:
		parts = append(parts, styleError().Render("⚠ "+m.toast))
	case m.toast != "":
		parts = append(parts, styleHint().Render(m.toast))
	}
	parts = append(parts, m.summary())

	footer := m.renderFooter()
	used := lipgloss.Height(lipgloss.JoinVertical(lipgloss.Left, parts...)) + lipgloss.Height(footer)
	if rows := m.height - used - 4; rows > 0 && len(m.rows) > 0 {
		parts = append(parts, m.renderResults(rows))
	}
	parts = append(parts, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *App) summary() string {
	switch {
	case m.count < 0:
		return styleHint().Render("Counting…")
	case m.where == "":
		return fmt.Sprintf("%d records", m.count)
	default:
		return fmt.Sprintf("%d matching records  ", m.count) + styleHint().Render("WHERE "+m.where)
	}
}

func (m *App) renderResults(visible int) string {
	end := m.rowOff + visible
	if end > len(m.rows) {
		end = len(m.rows)
	}
	rows := make([][]string, 0, end-m.rowOff)
	for _, r := range m.rows[m.rowOff:end] {
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10), r.Status, strconv.Itoa(r.Priority), r.Assignee, r.Label, r.Created, r.Title,
		})
	}
	border := theme.Current().Border
	if m.focus == FocusResults {
		border = theme.Current().BorderFocused
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(border)).
		Headers("ID", "STATUS", "P", "ASSIGNEE", "LABEL", "CREATED", "TITLE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTitle().Padding(0, 1)
			}
			return styleOption().Padding(0, 1)
		}).
		Rows(rows...)
	if m.width > 0 {
		t = t.Width(m.width)
	}
	return t.String()
}

// renderFooter draws key hints as pills.
func (m *App) renderFooter() string {
	hints := [][2]string{{"⏎", "Commit"}, {"⇥", "Results"}}
	if m.focus == FocusResults {
		hints = [][2]string{{"↑↓", "Scroll"}, {"⇥", "Filter"}}
	}
	hints = append(hints, [][2]string{{"^s", "Save"}, {"^y", "Copy"}, {"?", "Help"}, {"^c", "Quit"}}...)

	var parts []string
	for _, h := range hints {
		parts = append(parts, renderPill(" "+h[0]+" ", theme.Current().Field, pillNormal)+" "+styleHint().Render(h[1]))
	}
	return strings.Join(parts, "  ")
}
