package filter

import "fmt"

// Transition is the result of applying one action. Expressions is the
// input slice itself unless Changed is true, in which case it is a new
// slice the caller has not seen.
type Transition struct {
	State       State
	Expressions []Expression
	Changed     bool
}

// Reducer applies actions to (State, expressions). It never mutates the
// expression slice it is given.
type Reducer struct {
	Schema *Schema
}

// Reduce applies a to the given state. Unknown actions and actions that do
// not apply to the current step return the input unchanged.
func (r Reducer) Reduce(s State, exprs []Expression, a Action) Transition {
	switch a := a.(type) {
	case Focus:
		return r.focus(s, exprs)
	case Blur:
		return r.blur(exprs)
	case SetInput:
		return r.setInput(s, exprs, a.Value)
	case HighlightNext:
		return r.highlightNext(s, exprs, a.Count)
	case HighlightPrev:
		if s.HighlightedIndex > 0 {
			s.HighlightedIndex--
		}
		return same(s, exprs)
	case SetHighlight:
		if a.Index >= -1 {
			s.HighlightedIndex = a.Index
		}
		return same(s, exprs)
	case OpenDropdown:
		if s.Step != StepIdle || s.Editing() {
			s.DropdownOpen = true
		}
		return same(s, exprs)
	case CloseDropdown:
		s.DropdownOpen = false
		return same(s, exprs)

	case SelectField:
		return r.selectField(s, exprs, a.Field)
	case SelectOperator:
		return r.selectOperator(s, exprs, a.Operator)
	case ConfirmValue:
		return r.confirmValue(s, exprs, a.Value)
	case SelectConnector:
		return r.selectConnector(s, exprs, a.Connector)
	case ConfirmNoConnector:
		if s.Step != StepSelectingConnector || s.Editing() {
			return same(s, exprs)
		}
		next := NewState()
		next.Announcement = fmt.Sprintf("%d filters applied", len(exprs))
		return same(next, exprs)
	case DeleteLastStep:
		return r.deleteLastStep(s, exprs)

	case NavigateLeft:
		return r.navigateLeft(s, exprs)
	case NavigateRight:
		return r.navigateRight(s, exprs)
	case SelectToken:
		return r.selectToken(s, exprs, a.Position)
	case ClearSelection:
		s.SelectedTokenIndex = -1
		s.AllTokensSelected = false
		return same(s, exprs)
	case SelectAll:
		if len(exprs) > 0 {
			s.AllTokensSelected = true
			s.Announcement = "All filters selected"
		}
		return same(s, exprs)
	case DeleteToken:
		return r.deleteToken(s, exprs, a.Position)
	case DeleteSelected:
		if s.AllTokensSelected {
			return r.clearAll()
		}
		if s.SelectedTokenIndex >= 0 {
			return r.deleteToken(s, exprs, s.SelectedTokenIndex)
		}
		return same(s, exprs)
	case ClearAll:
		return r.clearAll()

	case StartTokenEdit:
		return r.startTokenEdit(s, exprs, a.Position)
	case CompleteTokenEdit:
		return r.completeTokenEdit(s, exprs, a.Value)
	case StartOperatorEdit:
		return r.startOperatorEdit(s, exprs, a.ExpressionIndex)
	case CompleteOperatorEdit:
		return r.completeOperatorEdit(s, exprs, a.Operator)
	case StartConnectorEdit:
		return r.startConnectorEdit(s, exprs, a.ExpressionIndex)
	case CompleteConnectorEdit:
		return r.completeConnectorEdit(s, exprs, a.Connector)
	case CancelEdit:
		if !s.Editing() {
			return same(s, exprs)
		}
		s = r.restore(s, exprs)
		s.Announcement = "Edit cancelled"
		return same(s, exprs)
	}
	return same(s, exprs)
}

func same(s State, exprs []Expression) Transition {
	return Transition{State: s, Expressions: exprs}
}

func changed(s State, exprs []Expression) Transition {
	return Transition{State: s, Expressions: exprs, Changed: true}
}

func (r Reducer) focus(s State, exprs []Expression) Transition {
	if s.Step != StepIdle || s.Editing() {
		return same(s, exprs)
	}
	if r.Schema.AtCapacity(len(exprs)) {
		s.Announcement = fmt.Sprintf("Maximum of %d filters reached", r.Schema.MaxExpressions)
		return same(s, exprs)
	}
	s.DropdownOpen = true
	s.SelectedTokenIndex = -1
	s.AllTokensSelected = false
	if n := len(exprs); n > 0 && exprs[n-1].Connector == ConnectorNone {
		s.Step = StepSelectingConnector
		s.HighlightedIndex = -1
		s.Announcement = "Choose AND or OR to add another filter"
		return same(s, exprs)
	}
	s.Step = StepSelectingField
	s.HighlightedIndex = 0
	s.Announcement = "Select a field"
	return same(s, exprs)
}

func (r Reducer) blur(exprs []Expression) Transition {
	next := NewState()
	if n := len(exprs); n > 0 && exprs[n-1].Connector != ConnectorNone {
		out := CloneExpressions(exprs)
		out[n-1].Connector = ConnectorNone
		return changed(next, out)
	}
	return same(next, exprs)
}

func (r Reducer) setInput(s State, exprs []Expression, value string) Transition {
	if value != "" && s.Step == StepIdle && !s.Editing() {
		s = r.focus(s, exprs).State
	}
	s.InputValue = value
	s.SelectedTokenIndex = -1
	s.AllTokensSelected = false
	s.HighlightedIndex = 0
	if value == "" && s.Step == StepSelectingConnector && !s.Editing() {
		s.HighlightedIndex = -1
	}
	if s.Step != StepIdle || s.Editing() {
		s.DropdownOpen = r.dropdownFor(s, exprs)
	}
	return same(s, exprs)
}

func (r Reducer) highlightNext(s State, exprs []Expression, count int) Transition {
	if !s.DropdownOpen {
		if s.Step == StepIdle && !s.Editing() {
			return same(s, exprs)
		}
		s.DropdownOpen = true
		s.HighlightedIndex = 0
		return same(s, exprs)
	}
	if count <= 0 {
		return same(s, exprs)
	}
	if s.HighlightedIndex < count-1 {
		s.HighlightedIndex++
	}
	return same(s, exprs)
}

func (r Reducer) selectField(s State, exprs []Expression, f FieldValue) Transition {
	if s.Editing() {
		return same(s, exprs)
	}
	if s.Step == StepIdle {
		s = r.focus(s, exprs).State
	}
	if s.Step != StepSelectingField {
		return same(s, exprs)
	}
	cfg := r.Schema.Field(f.Key)
	if cfg == nil || len(cfg.Operators) == 0 {
		return same(s, exprs)
	}
	fv := cfg.Value()
	s.CurrentField = &fv
	s.CurrentOperator = nil
	s.InputValue = ""
	s.HighlightedIndex = 0
	s.SelectedTokenIndex = -1
	s.AllTokensSelected = false

	if len(cfg.Operators) == 1 {
		op := &cfg.Operators[0]
		ov := op.Value()
		s.CurrentOperator = &ov
		s.Step = StepEnteringValue
		s.DropdownOpen = cfg.ValueSource(op) != nil
		s.Announcement = fmt.Sprintf("%s %s selected. Enter a value", cfg.Label, ov.Display())
		return same(s, exprs)
	}
	s.Step = StepSelectingOperator
	s.DropdownOpen = true
	s.Announcement = fmt.Sprintf("%s selected. Choose an operator", cfg.Label)
	return same(s, exprs)
}

func (r Reducer) selectOperator(s State, exprs []Expression, o OperatorValue) Transition {
	if s.Editing() || s.Step != StepSelectingOperator || s.CurrentField == nil {
		return same(s, exprs)
	}
	cfg := r.Schema.Field(s.CurrentField.Key)
	op := cfg.Operator(o.Key)
	if op == nil {
		return same(s, exprs)
	}
	ov := op.Value()
	s.CurrentOperator = &ov
	s.Step = StepEnteringValue
	s.InputValue = ""
	s.HighlightedIndex = 0
	s.DropdownOpen = cfg.ValueSource(op) != nil
	s.Announcement = fmt.Sprintf("%s selected. Enter a value", ov.Display())
	return same(s, exprs)
}

func (r Reducer) confirmValue(s State, exprs []Expression, v ConditionValue) Transition {
	if s.Editing() || s.Step != StepEnteringValue || s.CurrentField == nil || s.CurrentOperator == nil {
		return same(s, exprs)
	}
	if r.Schema.AtCapacity(len(exprs)) {
		s.Announcement = fmt.Sprintf("Maximum of %d filters reached", r.Schema.MaxExpressions)
		return same(s, exprs)
	}
	expr := Expression{Condition: Condition{Field: *s.CurrentField, Operator: *s.CurrentOperator, Value: v}}
	out := make([]Expression, len(exprs), len(exprs)+1)
	copy(out, exprs)
	out = append(out, expr)

	s.CurrentField = nil
	s.CurrentOperator = nil
	s.InputValue = ""
	s.SelectedTokenIndex = -1
	s.AllTokensSelected = false
	if r.Schema.AtCapacity(len(out)) {
		next := NewState()
		next.Announcement = fmt.Sprintf("Filter added: %s. Maximum of %d filters reached", expr, r.Schema.MaxExpressions)
		return changed(next, out)
	}
	s.Step = StepSelectingConnector
	s.DropdownOpen = true
	s.HighlightedIndex = -1
	s.Announcement = fmt.Sprintf("Filter added: %s. Choose AND or OR, or press Enter to finish", expr)
	return changed(s, out)
}

func (r Reducer) selectConnector(s State, exprs []Expression, c Connector) Transition {
	if s.Editing() || s.Step != StepSelectingConnector || len(exprs) == 0 || !c.Valid() {
		return same(s, exprs)
	}
	if r.Schema.AtCapacity(len(exprs)) {
		s.Announcement = fmt.Sprintf("Maximum of %d filters reached", r.Schema.MaxExpressions)
		return same(s, exprs)
	}
	out := CloneExpressions(exprs)
	out[len(out)-1].Connector = c
	s.Step = StepSelectingField
	s.DropdownOpen = true
	s.InputValue = ""
	s.HighlightedIndex = 0
	s.Announcement = fmt.Sprintf("%s selected. Select a field", c)
	return changed(s, out)
}

func (r Reducer) deleteLastStep(s State, exprs []Expression) Transition {
	if s.Editing() || s.InputValue != "" {
		return same(s, exprs)
	}
	switch {
	case s.Step == StepEnteringValue:
		s.CurrentOperator = nil
		s.Step = StepSelectingOperator
		s.DropdownOpen = true
		s.HighlightedIndex = 0
		s.Announcement = "Operator removed. Choose an operator"
		return same(s, exprs)
	case s.Step == StepSelectingOperator:
		s.CurrentField = nil
		s.Step = StepSelectingField
		s.DropdownOpen = true
		s.HighlightedIndex = 0
		s.Announcement = "Field removed. Select a field"
		return same(s, exprs)
	case s.Step == StepSelectingField && len(exprs) > 0 && exprs[len(exprs)-1].Connector != ConnectorNone:
		out := CloneExpressions(exprs)
		out[len(out)-1].Connector = ConnectorNone
		s.Step = StepSelectingConnector
		s.DropdownOpen = true
		s.HighlightedIndex = -1
		s.Announcement = "Connector removed"
		return changed(s, out)
	}
	if s.SelectedTokenIndex < 0 && len(exprs) > 0 {
		return r.navigateLeft(s, exprs)
	}
	return same(s, exprs)
}

func (r Reducer) committedCount(exprs []Expression) int {
	return len(Project(exprs, nil, nil))
}

func (r Reducer) navigateLeft(s State, exprs []Expression) Transition {
	if s.InputValue != "" {
		return same(s, exprs)
	}
	count := r.committedCount(exprs)
	if count == 0 {
		return same(s, exprs)
	}
	switch {
	case s.SelectedTokenIndex < 0:
		s.SelectedTokenIndex = count - 1
	case s.SelectedTokenIndex > 0:
		s.SelectedTokenIndex--
	default:
		return same(s, exprs)
	}
	s.AllTokensSelected = false
	s.Announcement = r.describeToken(exprs, s.SelectedTokenIndex)
	return same(s, exprs)
}

func (r Reducer) navigateRight(s State, exprs []Expression) Transition {
	if s.SelectedTokenIndex < 0 {
		return same(s, exprs)
	}
	count := r.committedCount(exprs)
	if s.SelectedTokenIndex < count-1 {
		s.SelectedTokenIndex++
		s.Announcement = r.describeToken(exprs, s.SelectedTokenIndex)
	} else {
		s.SelectedTokenIndex = -1
		s.Announcement = "Back to input"
	}
	s.AllTokensSelected = false
	return same(s, exprs)
}

func (r Reducer) selectToken(s State, exprs []Expression, position int) Transition {
	if position < 0 || position >= r.committedCount(exprs) {
		return same(s, exprs)
	}
	s.SelectedTokenIndex = position
	s.AllTokensSelected = false
	s.InputValue = ""
	s.Announcement = r.describeToken(exprs, position)
	return same(s, exprs)
}

func (r Reducer) describeToken(exprs []Expression, position int) string {
	tok, ok := TokenAt(Project(exprs, nil, nil), position)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s %s selected", tok.Type, tok.Label)
}

func (r Reducer) deleteToken(s State, exprs []Expression, position int) Transition {
	tok, ok := TokenAt(Project(exprs, nil, nil), position)
	if !ok || tok.IsPending {
		return same(s, exprs)
	}
	if s.Editing() {
		s = r.restore(s, exprs)
	}
	s.SelectedTokenIndex = -1
	s.AllTokensSelected = false
	i := tok.ExpressionIndex

	if tok.Type == TokenConnector {
		out := CloneExpressions(exprs)
		out[i].Connector = ConnectorNone
		if i == len(out)-1 {
			// The connector led to the expression being built.
			s.CurrentField = nil
			s.CurrentOperator = nil
			s.InputValue = ""
			s.Step = StepSelectingConnector
			s.DropdownOpen = true
			s.HighlightedIndex = -1
		}
		s.Announcement = "Connector removed"
		return changed(s, out)
	}

	out := make([]Expression, 0, len(exprs)-1)
	out = append(out, exprs[:i]...)
	out = append(out, exprs[i+1:]...)
	if len(out) == 0 {
		next := NewState()
		next.Announcement = "Filter removed. No filters left"
		return changed(next, out)
	}
	building := s.Step == StepSelectingField || s.Step == StepSelectingOperator || s.Step == StepEnteringValue
	if !building && out[len(out)-1].Connector != ConnectorNone {
		out[len(out)-1].Connector = ConnectorNone
	}
	s.Announcement = fmt.Sprintf("Filter removed: %s", exprs[i].Condition.Field.Label)
	return changed(s, out)
}

func (r Reducer) clearAll() Transition {
	next := NewState()
	next.Announcement = "All filters cleared"
	return changed(next, []Expression{})
}

func (r Reducer) beginEdit(s State, exprs []Expression) State {
	if s.Editing() {
		s = r.restore(s, exprs)
	}
	s.StepBeforeEdit = s.Step
	s.SelectedTokenIndex = -1
	s.AllTokensSelected = false
	s.HighlightedIndex = 0
	s.InputValue = ""
	return s
}

// restore ends the active edit and returns to the step that was active
// when it began.
func (r Reducer) restore(s State, exprs []Expression) State {
	s.Step = s.StepBeforeEdit
	s.StepBeforeEdit = StepIdle
	s.EditingTokenIndex = -1
	s.EditingOperatorIndex = -1
	s.EditingConnectorIndex = -1
	s.InputValue = ""
	s.HighlightedIndex = 0
	if s.Step == StepSelectingConnector {
		s.HighlightedIndex = -1
	}
	s.DropdownOpen = r.dropdownFor(s, exprs)
	return s
}

// dropdownFor reports whether suggestions are shown for s.
func (r Reducer) dropdownFor(s State, exprs []Expression) bool {
	switch s.Mode() {
	case ModeEditingValue:
		tok, ok := TokenAt(Project(exprs, nil, nil), s.EditingTokenIndex)
		if !ok {
			return false
		}
		cond := exprs[tok.ExpressionIndex].Condition
		field := r.Schema.Field(cond.Field.Key)
		return field.ValueSource(field.Operator(cond.Operator.Key)) != nil
	case ModeEditingOperator, ModeEditingConnector:
		return true
	}
	switch s.Step {
	case StepSelectingField, StepSelectingOperator, StepSelectingConnector:
		return true
	case StepEnteringValue:
		if s.CurrentField == nil || s.CurrentOperator == nil {
			return false
		}
		field := r.Schema.Field(s.CurrentField.Key)
		return field.ValueSource(field.Operator(s.CurrentOperator.Key)) != nil
	}
	return false
}

func (r Reducer) startTokenEdit(s State, exprs []Expression, position int) Transition {
	tok, ok := TokenAt(Project(exprs, nil, nil), position)
	if !ok || tok.IsPending || tok.Type != TokenValue {
		return same(s, exprs)
	}
	s = r.beginEdit(s, exprs)
	s.EditingTokenIndex = position
	s.InputValue = tok.Label
	s.DropdownOpen = r.dropdownFor(s, exprs)
	s.Announcement = fmt.Sprintf("Editing value %s", tok.Label)
	return same(s, exprs)
}

func (r Reducer) completeTokenEdit(s State, exprs []Expression, v ConditionValue) Transition {
	if s.Mode() != ModeEditingValue {
		return same(s, exprs)
	}
	tok, ok := TokenAt(Project(exprs, nil, nil), s.EditingTokenIndex)
	if !ok || tok.Type != TokenValue {
		return same(r.restore(s, exprs), exprs)
	}
	out := CloneExpressions(exprs)
	out[tok.ExpressionIndex].Condition.Value = v
	s = r.restore(s, out)
	s.Announcement = fmt.Sprintf("Value changed to %s", v.Display)
	return changed(s, out)
}

func (r Reducer) startOperatorEdit(s State, exprs []Expression, index int) Transition {
	if index < 0 || index >= len(exprs) || r.Schema.Field(exprs[index].Condition.Field.Key) == nil {
		return same(s, exprs)
	}
	s = r.beginEdit(s, exprs)
	s.EditingOperatorIndex = index
	s.DropdownOpen = true
	s.Announcement = fmt.Sprintf("Editing operator of %s", exprs[index].Condition.Field.Label)
	return same(s, exprs)
}

func (r Reducer) completeOperatorEdit(s State, exprs []Expression, o OperatorValue) Transition {
	if s.Mode() != ModeEditingOperator || s.EditingOperatorIndex >= len(exprs) {
		return same(s, exprs)
	}
	i := s.EditingOperatorIndex
	op := r.Schema.Field(exprs[i].Condition.Field.Key).Operator(o.Key)
	if op == nil {
		return same(s, exprs)
	}
	out := CloneExpressions(exprs)
	out[i].Condition.Operator = op.Value()
	s = r.restore(s, out)
	s.Announcement = fmt.Sprintf("Operator changed to %s", op.Value().Display())
	return changed(s, out)
}

func (r Reducer) startConnectorEdit(s State, exprs []Expression, index int) Transition {
	if index < 0 || index >= len(exprs) || exprs[index].Connector == ConnectorNone {
		return same(s, exprs)
	}
	s = r.beginEdit(s, exprs)
	s.EditingConnectorIndex = index
	s.DropdownOpen = true
	s.Announcement = fmt.Sprintf("Editing connector %s", exprs[index].Connector)
	return same(s, exprs)
}

func (r Reducer) completeConnectorEdit(s State, exprs []Expression, c Connector) Transition {
	if s.Mode() != ModeEditingConnector || !c.Valid() || s.EditingConnectorIndex >= len(exprs) {
		return same(s, exprs)
	}
	out := CloneExpressions(exprs)
	out[s.EditingConnectorIndex].Connector = c
	s = r.restore(s, out)
	s.Announcement = fmt.Sprintf("Connector changed to %s", c)
	return changed(s, out)
}
