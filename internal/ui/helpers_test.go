package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"filterbar/internal/autocomplete"
	"filterbar/internal/filter"
)

func testSchema() *filter.Schema {
	return &filter.Schema{Fields: []filter.FieldConfig{
		{
			Key:                "status",
			Label:              "Status",
			Type:               filter.FieldTypeEnum,
			ValueAutocompleter: autocomplete.NewStatic(autocomplete.Values("open", "closed"), autocomplete.WithStrict(true)),
			Operators: []filter.OperatorConfig{
				{Key: "eq", Label: "equals", Symbol: "="},
				{Key: "neq", Label: "not equals", Symbol: "!="},
			},
		},
		{
			Key:                "priority",
			Label:              "Priority",
			Type:               filter.FieldTypeNumber,
			ValueAutocompleter: autocomplete.NewNumber(),
			Operators: []filter.OperatorConfig{
				{Key: "eq", Label: "equals", Symbol: "="},
				{Key: "gt", Label: "greater than", Symbol: ">"},
			},
		},
	}}
}

// collect runs cmd and returns the messages it produces, expanding
// batches. Commands that wait on a timer are skipped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(150 * time.Millisecond):
		return nil
	}
}

// settle feeds suggestion results back into the bar until no fetch is left
// and returns every other message.
func settle(t *testing.T, f FilterBar, cmd tea.Cmd) (FilterBar, []tea.Msg) {
	t.Helper()
	var out []tea.Msg
	for i := 0; cmd != nil && i < 10; i++ {
		var next []tea.Cmd
		for _, msg := range collect(cmd) {
			if _, ok := msg.(SuggestionsMsg); ok {
				var c tea.Cmd
				f, c = f.Update(msg)
				next = append(next, c)
				continue
			}
			out = append(out, msg)
		}
		cmd = tea.Batch(next...)
	}
	return f, out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func changes(msgs []tea.Msg) []FilterChangedMsg {
	var out []FilterChangedMsg
	for _, m := range msgs {
		if c, ok := m.(FilterChangedMsg); ok {
			out = append(out, c)
		}
	}
	return out
}
