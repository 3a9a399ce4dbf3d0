package engine

import (
	"fmt"
	"strings"

	"filterbar/internal/filter"
)

// Key names a key the engine reacts to.
type Key string

const (
	KeyRunes     Key = "runes"
	KeyEnter     Key = "enter"
	KeyTab       Key = "tab"
	KeyEsc       Key = "esc"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyBackspace Key = "backspace"
	KeyDelete    Key = "delete"
)

// KeyEvent is a raw key press.
type KeyEvent struct {
	Key   Key
	Ctrl  bool
	Runes []rune
}

// KeyResult tells the caller what happened to a key. Unhandled keys belong
// to the text input; MoveFocus asks the caller to move focus on.
type KeyResult struct {
	Handled   bool
	MoveFocus bool
}

// HandleKey maps a key press to actions.
func (e *Engine) HandleKey(ev KeyEvent) KeyResult {
	e.mu.Lock()
	var out outbox
	res := e.handleKey(ev, &out)
	e.mu.Unlock()
	out.flush(e)
	return res
}

func (e *Engine) handleKey(ev KeyEvent, out *outbox) KeyResult {
	s := e.state
	handled := KeyResult{Handled: true}

	switch ev.Key {
	case KeyUp:
		e.apply(filter.HighlightPrev{}, out)
		return handled
	case KeyDown:
		if n := len(e.suggestions); n > 0 && s.HighlightedIndex == n-1 && e.requestMore() {
			return handled
		}
		e.apply(filter.HighlightNext{Count: len(e.suggestions)}, out)
		return handled

	case KeyLeft:
		if s.InputValue != "" {
			return KeyResult{}
		}
		e.apply(filter.NavigateLeft{}, out)
		return handled
	case KeyRight:
		if s.SelectedTokenIndex < 0 {
			return KeyResult{}
		}
		e.apply(filter.NavigateRight{}, out)
		return handled

	case KeyEnter:
		e.enter(out)
		return handled

	case KeyTab:
		if !e.acceptHighlighted(out) {
			return KeyResult{MoveFocus: true}
		}
		return KeyResult{Handled: true, MoveFocus: true}

	case KeyEsc:
		switch {
		case s.Editing():
			e.apply(filter.CancelEdit{}, out)
		case s.SelectedTokenIndex >= 0 || s.AllTokensSelected:
			e.apply(filter.ClearSelection{}, out)
		case s.Step == filter.StepSelectingConnector:
			e.apply(filter.ConfirmNoConnector{}, out)
		case s.DropdownOpen:
			e.apply(filter.CloseDropdown{}, out)
		default:
			return KeyResult{}
		}
		return handled

	case KeyBackspace:
		switch {
		case ev.Ctrl, s.AllTokensSelected:
			e.apply(filter.ClearAll{}, out)
		case s.SelectedTokenIndex >= 0:
			e.apply(filter.DeleteSelected{}, out)
		case s.InputValue != "":
			return KeyResult{}
		default:
			e.apply(filter.DeleteLastStep{}, out)
		}
		return handled

	case KeyDelete:
		if s.AllTokensSelected || s.SelectedTokenIndex >= 0 {
			e.apply(filter.DeleteSelected{}, out)
			return handled
		}
		return KeyResult{}

	case KeyRunes:
		if ev.Ctrl && len(ev.Runes) == 1 && (ev.Runes[0] == 'a' || ev.Runes[0] == 'A') {
			if s.InputValue != "" {
				return KeyResult{}
			}
			e.apply(filter.SelectAll{}, out)
			return handled
		}
		if s.SelectedTokenIndex >= 0 || s.AllTokensSelected {
			e.apply(filter.ClearSelection{}, out)
		}
		return KeyResult{}
	}
	return KeyResult{}
}

// enter confirms the highlighted suggestion, starts an edit of the selected
// token or commits typed text, in that order.
func (e *Engine) enter(out *outbox) {
	s := e.state
	if s.SelectedTokenIndex >= 0 && !s.Editing() {
		e.startEdit(s.SelectedTokenIndex, out)
		return
	}
	if e.acceptHighlighted(out) {
		return
	}

	input := strings.TrimSpace(s.InputValue)
	switch s.Mode() {
	case filter.ModeEditingValue:
		e.commitText(s.InputValue, out)
		return
	case filter.ModeEditingOperator:
		field := e.schema.Field(e.exprs[s.EditingOperatorIndex].Condition.Field.Key)
		if op := field.OperatorBySymbol(input); op != nil {
			e.apply(filter.CompleteOperatorEdit{Operator: op.Value()}, out)
		}
		return
	case filter.ModeEditingConnector:
		if c := filter.Connector(strings.ToUpper(input)); c.Valid() {
			e.apply(filter.CompleteConnectorEdit{Connector: c}, out)
		}
		return
	}

	switch s.Step {
	case filter.StepSelectingField:
		if f := e.schema.FieldByLabel(input); f != nil {
			e.apply(filter.SelectField{Field: f.Value()}, out)
		}
	case filter.StepSelectingOperator:
		if op := e.currentField().OperatorBySymbol(input); op != nil {
			e.apply(filter.SelectOperator{Operator: op.Value()}, out)
		}
	case filter.StepEnteringValue:
		e.commitText(s.InputValue, out)
	case filter.StepSelectingConnector:
		if c := filter.Connector(strings.ToUpper(input)); c.Valid() {
			e.apply(filter.SelectConnector{Connector: c}, out)
			return
		}
		if input == "" {
			e.apply(filter.ConfirmNoConnector{}, out)
		}
	}
}

func (e *Engine) acceptHighlighted(out *outbox) bool {
	i := e.state.HighlightedIndex
	if !e.state.DropdownOpen || i < 0 || i >= len(e.suggestions) {
		return false
	}
	return e.accept(e.suggestions[i], out)
}

// accept applies a suggestion according to its type and the active mode.
func (e *Engine) accept(sg filter.Suggestion, out *outbox) bool {
	mode := e.state.Mode()
	switch sg.Type {
	case filter.SuggestionField:
		if mode != filter.ModeBuilding && mode != filter.ModeIdle {
			return false
		}
		e.apply(filter.SelectField{Field: filter.FieldValue{Key: sg.Key}}, out)
		return e.state.CurrentField != nil
	case filter.SuggestionOperator:
		op := filter.OperatorValue{Key: sg.Key}
		if mode == filter.ModeEditingOperator {
			return e.apply(filter.CompleteOperatorEdit{Operator: op}, out)
		}
		e.apply(filter.SelectOperator{Operator: op}, out)
		return e.state.CurrentOperator != nil
	case filter.SuggestionConnector:
		c := filter.Connector(sg.Key)
		if mode == filter.ModeEditingConnector {
			return e.apply(filter.CompleteConnectorEdit{Connector: c}, out)
		}
		return e.apply(filter.SelectConnector{Connector: c}, out)
	case filter.SuggestionValue:
		field, op := e.valueTarget()
		if field == nil {
			return false
		}
		return e.commitValue(field, op, filter.ValueFromSuggestion(sg, field.ValueSource(op)), out)
	}
	return false
}

// valueTarget returns the field and operator a value would be committed to.
func (e *Engine) valueTarget() (*filter.FieldConfig, *filter.OperatorConfig) {
	if e.state.Mode() == filter.ModeEditingValue {
		field, op, _ := e.editedCondition()
		return field, op
	}
	if e.state.Step != filter.StepEnteringValue {
		return nil, nil
	}
	return e.currentField(), e.currentOperator()
}

// commitText turns typed text into a value through the operator's custom
// widget, the source's widget or the source's parser, then commits it.
func (e *Engine) commitText(text string, out *outbox) bool {
	field, op := e.valueTarget()
	if field == nil {
		return false
	}
	src := field.ValueSource(op)

	var widget filter.Widget
	if op != nil && op.CustomInput != nil {
		widget = op.CustomInput
	} else if wp, ok := src.(filter.WidgetProvider); ok {
		widget = wp.Widget()
	}

	var (
		v  filter.ConditionValue
		ok bool
	)
	if widget != nil {
		v, ok = widget.Commit(text)
	} else {
		v, ok = filter.ValueFromText(strings.TrimSpace(text), src)
	}
	if !ok {
		out.errs = append(out.errs, []filter.ValidationError{{
			Code:            filter.CodeInvalidValue,
			Message:         fmt.Sprintf("%q is not a valid %s", text, field.Label),
			Field:           field.Key,
			ExpressionIndex: -1,
		}})
		return false
	}
	return e.commitValue(field, op, v, out)
}

func (e *Engine) commitValue(field *filter.FieldConfig, op *filter.OperatorConfig, v filter.ConditionValue, out *outbox) bool {
	if res := filter.ValidateValue(field, op, v); !res.Valid {
		out.errs = append(out.errs, res.Errors)
		return false
	}
	if e.state.Mode() == filter.ModeEditingValue {
		return e.apply(filter.CompleteTokenEdit{Value: v}, out)
	}
	return e.apply(filter.ConfirmValue{Value: v}, out)
}

func (e *Engine) startEdit(position int, out *outbox) bool {
	tok, ok := filter.TokenAt(filter.Project(e.exprs, nil, nil), position)
	if !ok {
		return false
	}
	switch tok.Type {
	case filter.TokenValue:
		e.apply(filter.StartTokenEdit{Position: position}, out)
	case filter.TokenOperator:
		e.apply(filter.StartOperatorEdit{ExpressionIndex: tok.ExpressionIndex}, out)
	case filter.TokenConnector:
		e.apply(filter.StartConnectorEdit{ExpressionIndex: tok.ExpressionIndex}, out)
	default:
		return false
	}
	return e.state.Editing()
}

// SetInput records the text input's new value.
func (e *Engine) SetInput(text string) {
	e.Dispatch(filter.SetInput{Value: text})
}

// Focus starts building when the input gains focus.
func (e *Engine) Focus() {
	e.Dispatch(filter.Focus{})
}

// Blur returns to idle, dropping a dangling connector.
func (e *Engine) Blur() {
	e.Dispatch(filter.Blur{})
}

// ClickToken selects the token at position.
func (e *Engine) ClickToken(position int) {
	e.Dispatch(filter.SelectToken{Position: position})
}

// EditToken starts editing the token at position: value tokens edit the
// value, operator tokens the operator and connector tokens the connector.
// Field tokens cannot be edited.
func (e *Engine) EditToken(position int) bool {
	e.mu.Lock()
	var out outbox
	ok := e.startEdit(position, &out)
	e.mu.Unlock()
	out.flush(e)
	return ok
}

// SelectSuggestion highlights and accepts suggestion i.
func (e *Engine) SelectSuggestion(i int) bool {
	e.mu.Lock()
	var out outbox
	ok := false
	if i >= 0 && i < len(e.suggestions) {
		e.apply(filter.SetHighlight{Index: i}, &out)
		ok = e.accept(e.suggestions[i], &out)
	}
	e.mu.Unlock()
	out.flush(e)
	return ok
}
