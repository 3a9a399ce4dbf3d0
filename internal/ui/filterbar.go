// Package ui contains the bubbletea filter bar and the interactive run
// screen built around it.
package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"filterbar/internal/engine"
	"filterbar/internal/filter"
)

// DefaultFetchTimeout bounds a single suggestion fetch.
const DefaultFetchTimeout = 5 * time.Second

// events buffers engine callbacks until Update turns them into messages.
type events struct {
	changes [][]filter.Expression
	errors  [][]filter.ValidationError
}

// FilterBar is a bubbletea component wrapping an engine. It renders tokens
// as pills followed by a text input, with the suggestion dropdown below.
type FilterBar struct {
	Width      int
	MaxVisible int

	engine  *engine.Engine
	input   textinput.Model
	pending *events
	focused bool
	loading bool
	offset  int
	errs    []filter.ValidationError
	timeout time.Duration
}

// NewFilterBar creates a filter bar over schema starting from exprs. Engine
// change and error callbacks are replaced by FilterChangedMsg and
// FilterErrorMsg.
func NewFilterBar(schema *filter.Schema, exprs []filter.Expression, opts ...engine.Option) FilterBar {
	pending := &events{}
	opts = append(opts,
		engine.WithOnChange(func(x []filter.Expression) { pending.changes = append(pending.changes, x) }),
		engine.WithOnError(func(errs []filter.ValidationError) { pending.errors = append(pending.errors, errs) }),
	)
	eng := engine.New(schema, exprs, opts...)

	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = eng.Placeholder()

	return FilterBar{
		Width:      60,
		MaxVisible: DefaultMaxVisible,
		engine:     eng,
		input:      ti,
		pending:    pending,
		timeout:    DefaultFetchTimeout,
	}
}

// Engine exposes the wrapped engine.
func (f FilterBar) Engine() *engine.Engine {
	return f.engine
}

// Expressions returns the committed list.
func (f FilterBar) Expressions() []filter.Expression {
	return f.engine.Expressions()
}

// Value returns the current text input.
func (f FilterBar) Value() string {
	return f.input.Value()
}

// Focused reports whether the bar has focus.
func (f FilterBar) Focused() bool {
	return f.focused
}

// Errors returns the validation errors of the last rejected commit.
func (f FilterBar) Errors() []filter.ValidationError {
	return f.errs
}

// Init implements tea.Model.
func (f FilterBar) Init() tea.Cmd {
	return nil
}

// Focus gives the bar focus and starts building.
func (f *FilterBar) Focus() tea.Cmd {
	f.focused = true
	f.engine.Focus()
	cmd := f.input.Focus()
	return tea.Batch(cmd, f.sync())
}

// Blur drops focus, returning the engine to idle.
func (f *FilterBar) Blur() tea.Cmd {
	f.focused = false
	f.input.Blur()
	f.engine.Blur()
	return f.sync()
}

// SetExpressions replaces the committed list, as when a saved filter is
// loaded.
func (f *FilterBar) SetExpressions(exprs []filter.Expression) tea.Cmd {
	f.engine.SetExpressions(exprs)
	return tea.Batch(f.sync(), func() tea.Msg {
		return FilterChangedMsg{Expressions: filter.CloneExpressions(exprs)}
	})
}

// Update handles key presses and fetch results.
func (f FilterBar) Update(msg tea.Msg) (FilterBar, tea.Cmd) {
	switch msg := msg.(type) {
	case SuggestionsMsg:
		if f.engine.ApplySuggestions(msg.Response) {
			f.loading = false
			f.offset = scrollWindow(f.offset, f.engine.State().HighlightedIndex, f.MaxVisible, len(f.engine.Suggestions()))
		}
		return f, nil

	case SourceUpdatedMsg:
		f.engine.Refresh()
		return f, f.sync()

	case tea.KeyMsg:
		if !f.focused {
			return f, nil
		}
		return f.handleKey(msg)
	}
	return f, nil
}

func (f FilterBar) handleKey(msg tea.KeyMsg) (FilterBar, tea.Cmd) {
	f.errs = nil
	var cmds []tea.Cmd

	ev, ok := keyEvent(msg)
	res := engine.KeyResult{}
	if ok {
		res = f.engine.HandleKey(ev)
	}
	if !res.Handled {
		before := f.input.Value()
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		cmds = append(cmds, cmd)
		if f.input.Value() != before {
			f.engine.SetInput(f.input.Value())
		}
	}
	if res.MoveFocus {
		cmds = append(cmds, func() tea.Msg { return FocusNextMsg{} })
	}
	cmds = append(cmds, f.sync())
	return f, tea.Batch(cmds...)
}

// sync mirrors engine state into the text input, issues the pending fetch
// and turns buffered callbacks into messages.
func (f *FilterBar) sync() tea.Cmd {
	s := f.engine.State()
	if f.input.Value() != s.InputValue {
		f.input.SetValue(s.InputValue)
		f.input.CursorEnd()
	}
	f.input.Placeholder = f.engine.Placeholder()
	f.offset = scrollWindow(f.offset, s.HighlightedIndex, f.MaxVisible, len(f.engine.Suggestions()))

	if !s.DropdownOpen {
		f.loading = false
	}

	var cmds []tea.Cmd
	if req, ok := f.engine.PendingRequest(); ok {
		f.loading = true
		cmds = append(cmds, fetch(req, f.timeout))
	}
	for _, x := range f.pending.changes {
		cmds = append(cmds, func() tea.Msg { return FilterChangedMsg{Expressions: x} })
	}
	for _, errs := range f.pending.errors {
		f.errs = errs
		cmds = append(cmds, func() tea.Msg { return FilterErrorMsg{Errors: errs} })
	}
	f.pending.changes = nil
	f.pending.errors = nil
	return tea.Batch(cmds...)
}

// fetch runs req off the update loop.
func fetch(req engine.Request, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return SuggestionsMsg{Response: req.Run(ctx)}
	}
}

// keyEvent translates a bubbletea key into an engine key. ok is false for
// keys the engine never looks at.
func keyEvent(msg tea.KeyMsg) (engine.KeyEvent, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return engine.KeyEvent{Key: engine.KeyEnter}, true
	case tea.KeyTab:
		return engine.KeyEvent{Key: engine.KeyTab}, true
	case tea.KeyEsc:
		return engine.KeyEvent{Key: engine.KeyEsc}, true
	case tea.KeyUp:
		return engine.KeyEvent{Key: engine.KeyUp}, true
	case tea.KeyDown:
		return engine.KeyEvent{Key: engine.KeyDown}, true
	case tea.KeyLeft:
		return engine.KeyEvent{Key: engine.KeyLeft}, true
	case tea.KeyRight:
		return engine.KeyEvent{Key: engine.KeyRight}, true
	case tea.KeyBackspace:
		return engine.KeyEvent{Key: engine.KeyBackspace, Ctrl: msg.Alt}, true
	case tea.KeyDelete:
		return engine.KeyEvent{Key: engine.KeyDelete}, true
	case tea.KeyCtrlA:
		return engine.KeyEvent{Key: engine.KeyRunes, Ctrl: true, Runes: []rune{'a'}}, true
	case tea.KeyRunes, tea.KeySpace:
		runes := msg.Runes
		if msg.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		return engine.KeyEvent{Key: engine.KeyRunes, Runes: runes}, true
	}
	return engine.KeyEvent{}, false
}

// View renders the bar, its announcement or error line and the dropdown.
func (f FilterBar) View() string {
	s := f.engine.State()
	tokens := f.engine.Tokens()

	inner := f.Width - 4
	if inner < 10 {
		inner = 10
	}
	input := f.input.View()
	if !f.focused && f.input.Value() == "" && len(tokens) > 0 {
		input = ""
	}
	bar := styleBar(f.focused).Width(f.Width - 2).Render(wrapSegments(renderSegments(tokens, s, input), inner))

	parts := []string{bar}
	if len(f.errs) > 0 {
		msgs := make([]string, 0, len(f.errs))
		for _, e := range f.errs {
			msgs = append(msgs, e.Message)
		}
		parts = append(parts, styleError().Render(wordwrap.String(strings.Join(msgs, "; "), inner)))
	} else if s.Announcement != "" && f.focused {
		parts = append(parts, styleHint().Render(wordwrap.String(s.Announcement, inner)))
	}
	if s.DropdownOpen && f.focused {
		items := f.engine.Suggestions()
		hasMore, total := f.engine.More()
		more := moreLabel(hasMore, total, len(items))
		parts = append(parts, renderDropdown(items, s.HighlightedIndex, f.offset, f.MaxVisible, inner, f.loading, more))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
