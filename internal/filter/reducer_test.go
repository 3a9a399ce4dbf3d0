package filter

import (
	"reflect"
	"strings"
	"testing"
)

type unknownAction struct{}

func (unknownAction) isAction() {}

func TestReducerBuildExpression(t *testing.T) {
	r := Reducer{Schema: testSchema()}

	t.Run("FocusOpensFieldSelection", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, Focus{})
		if s.Step != StepSelectingField {
			t.Errorf("expected selecting-field, got %s", s.Step)
		}
		if !s.DropdownOpen {
			t.Error("expected dropdown open")
		}
	})

	t.Run("FullSequenceAddsOneExpression", func(t *testing.T) {
		s, exprs, changes := run(r, NewState(), nil, append([]Action{Focus{}}, buildActions("status", "eq", "open")...)...)
		if len(exprs) != 1 {
			t.Fatalf("expected 1 expression, got %d", len(exprs))
		}
		if changes != 1 {
			t.Errorf("expected exactly 1 change, got %d", changes)
		}
		got := exprs[0]
		if got.Condition.Field.Key != "status" || got.Condition.Operator.Key != "eq" || got.Condition.Value.Display != "open" {
			t.Errorf("unexpected expression %s", got)
		}
		if got.Connector != ConnectorNone {
			t.Errorf("expected no connector, got %s", got.Connector)
		}
		if s.Step != StepSelectingConnector {
			t.Errorf("expected selecting-connector, got %s", s.Step)
		}
		if s.CurrentField != nil || s.CurrentOperator != nil {
			t.Error("expected pending field and operator to be cleared")
		}
		if s.HighlightedIndex != -1 {
			t.Errorf("expected no highlight, got %d", s.HighlightedIndex)
		}
	})

	t.Run("OperatorStepOpensValueSuggestions", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, Focus{},
			SelectField{Field: FieldValue{Key: "status"}},
			SelectOperator{Operator: OperatorValue{Key: "eq"}})
		if s.Step != StepEnteringValue {
			t.Fatalf("expected entering-value, got %s", s.Step)
		}
		if !s.DropdownOpen {
			t.Error("expected dropdown open for a field with value suggestions")
		}
	})

	t.Run("FreeTextValueClosesDropdown", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, Focus{},
			SelectField{Field: FieldValue{Key: "priority"}},
			SelectOperator{Operator: OperatorValue{Key: "gt"}})
		if s.DropdownOpen {
			t.Error("expected dropdown closed for free-text entry")
		}
	})

	t.Run("SingleOperatorAutoAdvances", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, SelectField{Field: FieldValue{Key: "title"}})
		if s.Step != StepEnteringValue {
			t.Fatalf("expected entering-value, got %s", s.Step)
		}
		if s.CurrentOperator == nil || s.CurrentOperator.Key != "contains" {
			t.Errorf("expected contains operator, got %v", s.CurrentOperator)
		}
	})

	t.Run("UnknownFieldIsIgnored", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, Focus{}, SelectField{Field: FieldValue{Key: "ghost"}})
		if s.Step != StepSelectingField || s.CurrentField != nil {
			t.Errorf("expected to stay in selecting-field, got %s", s.Step)
		}
	})

	t.Run("OperatorMustBelongToField", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, Focus{},
			SelectField{Field: FieldValue{Key: "status"}},
			SelectOperator{Operator: OperatorValue{Key: "gt"}})
		if s.Step != StepSelectingOperator {
			t.Errorf("expected selecting-operator, got %s", s.Step)
		}
	})

	t.Run("ConnectorLinksToNextExpression", func(t *testing.T) {
		_, exprs := twoExpressions(t, r)
		if exprs[0].Connector != ConnectorAnd {
			t.Errorf("expected AND on first expression, got %q", exprs[0].Connector)
		}
		if exprs[1].Connector != ConnectorNone {
			t.Errorf("expected no connector on last expression, got %q", exprs[1].Connector)
		}
	})

	t.Run("ConfirmNoConnectorFinishes", func(t *testing.T) {
		s, _ := twoExpressions(t, r)
		s, _, _ = run(r, s, nil, ConfirmNoConnector{})
		if s.Step != StepIdle || s.DropdownOpen {
			t.Errorf("expected idle with dropdown closed, got %s open=%v", s.Step, s.DropdownOpen)
		}
	})

	t.Run("FocusAfterFinishResumesConnector", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, _, _ = run(r, s, exprs, ConfirmNoConnector{}, Focus{})
		if s.Step != StepSelectingConnector {
			t.Errorf("expected selecting-connector, got %s", s.Step)
		}
	})

	t.Run("InputIsNeverMutated", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		before := CloneExpressions(exprs)
		run(r, s, exprs, DeleteToken{Position: 3})
		run(r, s, exprs, SelectConnector{Connector: ConnectorOr})
		if !reflect.DeepEqual(before, exprs) {
			t.Error("expected the caller's slice to be untouched")
		}
	})
}

func TestReducerDeleteLastStep(t *testing.T) {
	r := Reducer{Schema: testSchema()}
	start := []Action{Focus{}, SelectField{Field: FieldValue{Key: "status"}}, SelectOperator{Operator: OperatorValue{Key: "eq"}}}

	t.Run("ValueBackToOperator", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, append(start, DeleteLastStep{})...)
		if s.Step != StepSelectingOperator {
			t.Errorf("expected selecting-operator, got %s", s.Step)
		}
		if s.CurrentOperator != nil {
			t.Error("expected operator to be dropped")
		}
		if s.CurrentField == nil || s.CurrentField.Key != "status" {
			t.Error("expected field to be kept")
		}
		if !s.DropdownOpen {
			t.Error("expected dropdown reopened")
		}
	})

	t.Run("OperatorBackToField", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, append(start, DeleteLastStep{}, DeleteLastStep{})...)
		if s.Step != StepSelectingField || s.CurrentField != nil {
			t.Errorf("expected selecting-field with no field, got %s", s.Step)
		}
	})

	t.Run("IgnoredWithInput", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, append(start, SetInput{Value: "op"}, DeleteLastStep{})...)
		if s.Step != StepEnteringValue {
			t.Errorf("expected entering-value, got %s", s.Step)
		}
	})

	t.Run("FieldStepRemovesDanglingConnector", func(t *testing.T) {
		actions := append([]Action{Focus{}}, buildActions("status", "eq", "open")...)
		actions = append(actions, SelectConnector{Connector: ConnectorOr}, DeleteLastStep{})
		s, exprs, _ := run(r, NewState(), nil, actions...)
		if exprs[0].Connector != ConnectorNone {
			t.Errorf("expected connector removed, got %s", exprs[0].Connector)
		}
		if s.Step != StepSelectingConnector {
			t.Errorf("expected selecting-connector, got %s", s.Step)
		}
	})

	t.Run("ConnectorStepSelectsLastToken", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, _, _ = run(r, s, exprs, DeleteLastStep{})
		if s.SelectedTokenIndex != 6 {
			t.Errorf("expected last token selected, got %d", s.SelectedTokenIndex)
		}
	})
}

func TestReducerDeleteToken(t *testing.T) {
	r := Reducer{Schema: testSchema()}

	t.Run("OnlyExpressionReturnsToIdle", func(t *testing.T) {
		s, exprs, _ := run(r, NewState(), nil, append([]Action{Focus{}}, buildActions("status", "eq", "open")...)...)
		for _, pos := range []int{0, 1, 2} {
			tr := r.Reduce(s, exprs, DeleteToken{Position: pos})
			if !tr.Changed || len(tr.Expressions) != 0 {
				t.Errorf("position %d: expected empty list, got %d", pos, len(tr.Expressions))
			}
			if tr.State.Step != StepIdle {
				t.Errorf("position %d: expected idle, got %s", pos, tr.State.Step)
			}
			if got := Placeholder(tr.State, tr.Expressions); got != "Add filter..." {
				t.Errorf("position %d: expected 'Add filter...', got '%s'", pos, got)
			}
		}
	})

	t.Run("ConnectorOnlyRemovesConnector", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		tr := r.Reduce(s, exprs, DeleteToken{Position: 3})
		if !tr.Changed || len(tr.Expressions) != 2 {
			t.Fatalf("expected 2 expressions, got %d", len(tr.Expressions))
		}
		if tr.Expressions[0].Connector != ConnectorNone {
			t.Errorf("expected connector removed, got %s", tr.Expressions[0].Connector)
		}
		for i := range exprs {
			if !reflect.DeepEqual(tr.Expressions[i].Condition, exprs[i].Condition) {
				t.Errorf("expression %d condition changed", i)
			}
		}
		if tr.State.Step != StepSelectingConnector {
			t.Errorf("expected step unchanged, got %s", tr.State.Step)
		}
	})

	t.Run("ValueTokenRemovesWholeExpression", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		tr := r.Reduce(s, exprs, DeleteToken{Position: 6})
		if len(tr.Expressions) != 1 {
			t.Fatalf("expected 1 expression, got %d", len(tr.Expressions))
		}
		if tr.Expressions[0].Condition.Field.Key != "status" {
			t.Errorf("expected status to remain, got %s", tr.Expressions[0].Condition.Field.Key)
		}
		if tr.Expressions[0].Connector != ConnectorNone {
			t.Errorf("expected the new last expression to lose its connector, got %s", tr.Expressions[0].Connector)
		}
	})

	t.Run("FieldTokenRemovesFirstExpression", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		tr := r.Reduce(s, exprs, DeleteToken{Position: 0})
		if len(tr.Expressions) != 1 || tr.Expressions[0].Condition.Field.Key != "priority" {
			t.Errorf("expected priority to remain, got %v", tr.Expressions)
		}
	})

	t.Run("OperatorTokenWhileBuildingKeepsConnector", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, exprs, _ = run(r, s, exprs, SelectConnector{Connector: ConnectorAnd})
		tr := r.Reduce(s, exprs, DeleteToken{Position: 1})
		if len(tr.Expressions) != 1 {
			t.Fatalf("expected 1 expression, got %d", len(tr.Expressions))
		}
		if tr.Expressions[0].Connector != ConnectorAnd {
			t.Errorf("expected connector to stay for the expression being built, got %q", tr.Expressions[0].Connector)
		}
		if tr.State.Step != StepSelectingField {
			t.Errorf("expected selecting-field, got %s", tr.State.Step)
		}
	})

	t.Run("TrailingConnectorReturnsToConnectorStep", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, exprs, _ = run(r, s, exprs, SelectConnector{Connector: ConnectorOr}, SelectField{Field: FieldValue{Key: "status"}})
		tr := r.Reduce(s, exprs, DeleteToken{Position: 7})
		if tr.Expressions[1].Connector != ConnectorNone {
			t.Errorf("expected trailing connector removed, got %s", tr.Expressions[1].Connector)
		}
		if tr.State.Step != StepSelectingConnector || tr.State.CurrentField != nil {
			t.Errorf("expected selecting-connector with no pending field, got %s", tr.State.Step)
		}
	})

	t.Run("PendingTokenIsIgnored", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, exprs, _ = run(r, s, exprs, SelectConnector{Connector: ConnectorOr}, SelectField{Field: FieldValue{Key: "status"}})
		tr := r.Reduce(s, exprs, DeleteToken{Position: 8})
		if tr.Changed {
			t.Error("expected no change for a pending token")
		}
	})

	t.Run("ClearAll", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		tr := r.Reduce(s, exprs, ClearAll{})
		if !tr.Changed || tr.Expressions == nil || len(tr.Expressions) != 0 {
			t.Errorf("expected empty non-nil list, got %v", tr.Expressions)
		}
		if tr.State.Step != StepIdle {
			t.Errorf("expected idle, got %s", tr.State.Step)
		}
	})
}

func TestReducerSelection(t *testing.T) {
	r := Reducer{Schema: testSchema()}
	s, exprs, _ := run(r, NewState(), nil, append(append([]Action{Focus{}}, buildActions("status", "eq", "open")...), ConfirmNoConnector{})...)

	t.Run("LeftWalksBackAndStops", func(t *testing.T) {
		got := s
		want := []int{2, 1, 0, 0}
		for i, w := range want {
			got, _, _ = run(r, got, exprs, NavigateLeft{})
			if got.SelectedTokenIndex != w {
				t.Errorf("step %d: expected %d, got %d", i, w, got.SelectedTokenIndex)
			}
		}
	})

	t.Run("RightWalksForwardThenReleases", func(t *testing.T) {
		got, _, _ := run(r, s, exprs, SelectToken{Position: 0})
		want := []int{1, 2, -1, -1}
		for i, w := range want {
			got, _, _ = run(r, got, exprs, NavigateRight{})
			if got.SelectedTokenIndex != w {
				t.Errorf("step %d: expected %d, got %d", i, w, got.SelectedTokenIndex)
			}
		}
	})

	t.Run("LeftIgnoredWithInput", func(t *testing.T) {
		got, _, _ := run(r, s, exprs, SetInput{Value: "st"}, NavigateLeft{})
		if got.SelectedTokenIndex != -1 {
			t.Errorf("expected no selection, got %d", got.SelectedTokenIndex)
		}
	})

	t.Run("TypingClearsSelection", func(t *testing.T) {
		got, _, _ := run(r, s, exprs, NavigateLeft{}, SetInput{Value: "p"})
		if got.SelectedTokenIndex != -1 {
			t.Errorf("expected selection cleared, got %d", got.SelectedTokenIndex)
		}
		if got.InputValue != "p" {
			t.Errorf("expected input 'p', got '%s'", got.InputValue)
		}
	})

	t.Run("SelectAllKeepsSelectedIndex", func(t *testing.T) {
		got, _, _ := run(r, s, exprs, NavigateLeft{}, SelectAll{})
		if !got.AllTokensSelected {
			t.Error("expected all tokens selected")
		}
		if got.SelectedTokenIndex != 2 {
			t.Errorf("expected selected index 2, got %d", got.SelectedTokenIndex)
		}
	})

	t.Run("DeleteSelectedWithAllSelectedClears", func(t *testing.T) {
		_, out, changes := run(r, s, exprs, SelectAll{}, DeleteSelected{})
		if changes != 1 || len(out) != 0 {
			t.Errorf("expected list cleared once, got %d changes and %d expressions", changes, len(out))
		}
	})

	t.Run("SelectTokenOutOfRange", func(t *testing.T) {
		got, _, _ := run(r, s, exprs, SelectToken{Position: 9})
		if got.SelectedTokenIndex != -1 {
			t.Errorf("expected no selection, got %d", got.SelectedTokenIndex)
		}
	})
}

func TestReducerEdits(t *testing.T) {
	r := Reducer{Schema: testSchema()}

	t.Run("OperatorEditRestoresConnectorStep", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, _, _ = run(r, s, exprs, StartOperatorEdit{ExpressionIndex: 0})
		if s.Mode() != ModeEditingOperator || !s.DropdownOpen {
			t.Fatalf("expected operator edit with dropdown, got %s", s.Mode())
		}
		tr := r.Reduce(s, exprs, CompleteOperatorEdit{Operator: OperatorValue{Key: "neq"}})
		if !tr.Changed {
			t.Fatal("expected change")
		}
		if tr.Expressions[0].Condition.Operator.Symbol != "!=" {
			t.Errorf("expected '!=', got '%s'", tr.Expressions[0].Condition.Operator.Symbol)
		}
		if tr.State.Step != StepSelectingConnector || tr.State.Editing() {
			t.Errorf("expected selecting-connector after edit, got %s", tr.State.Mode())
		}
		if tr.State.HighlightedIndex != -1 {
			t.Errorf("expected no highlight, got %d", tr.State.HighlightedIndex)
		}
	})

	t.Run("OperatorEditRejectsForeignOperator", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		tr := r.Reduce(s, exprs, StartOperatorEdit{ExpressionIndex: 0})
		tr = r.Reduce(tr.State, exprs, CompleteOperatorEdit{Operator: OperatorValue{Key: "lt"}})
		if tr.Changed || tr.State.Mode() != ModeEditingOperator {
			t.Error("expected edit to stay open")
		}
	})

	t.Run("ValueEditPrefillsAndReplaces", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, _, _ = run(r, s, exprs, StartTokenEdit{Position: 2})
		if s.Mode() != ModeEditingValue {
			t.Fatalf("expected value edit, got %s", s.Mode())
		}
		if s.InputValue != "open" {
			t.Errorf("expected input 'open', got '%s'", s.InputValue)
		}
		tr := r.Reduce(s, exprs, CompleteTokenEdit{Value: TextValue("closed")})
		if tr.Expressions[0].Condition.Value.Display != "closed" {
			t.Errorf("expected 'closed', got '%s'", tr.Expressions[0].Condition.Value.Display)
		}
		if tr.Expressions[0].Connector != ConnectorAnd {
			t.Error("expected connector untouched")
		}
		if tr.State.Step != StepSelectingConnector || tr.State.InputValue != "" {
			t.Errorf("expected restored step and empty input, got %s '%s'", tr.State.Step, tr.State.InputValue)
		}
	})

	t.Run("ValueEditOnlyForValueTokens", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, _, _ = run(r, s, exprs, StartTokenEdit{Position: 0})
		if s.Editing() {
			t.Error("expected no edit for a field token")
		}
	})

	t.Run("ConnectorEdit", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		if got, _, _ := run(r, s, exprs, StartConnectorEdit{ExpressionIndex: 1}); got.Editing() {
			t.Error("expected no edit for an expression without a connector")
		}
		_, out, changes := run(r, s, exprs, StartConnectorEdit{ExpressionIndex: 0}, CompleteConnectorEdit{Connector: ConnectorOr})
		if changes != 1 || out[0].Connector != ConnectorOr {
			t.Errorf("expected OR after edit, got %s", out[0].Connector)
		}
	})

	t.Run("CancelRestoresPriorStep", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, exprs, _ = run(r, s, exprs, SelectConnector{Connector: ConnectorAnd}, SelectField{Field: FieldValue{Key: "priority"}})
		s, _, changes := run(r, s, exprs, StartTokenEdit{Position: 2}, CancelEdit{})
		if changes != 0 {
			t.Errorf("expected no changes, got %d", changes)
		}
		if s.Step != StepSelectingOperator || s.CurrentField == nil {
			t.Errorf("expected selecting-operator with pending field, got %s", s.Step)
		}
	})

	t.Run("ConstructionIgnoredWhileEditing", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, out, changes := run(r, s, exprs, StartOperatorEdit{ExpressionIndex: 1}, SelectConnector{Connector: ConnectorOr})
		if changes != 0 || out[1].Connector != ConnectorNone {
			t.Error("expected connector selection to be ignored during an edit")
		}
		if s.Mode() != ModeEditingOperator {
			t.Errorf("expected operator edit, got %s", s.Mode())
		}
	})

	t.Run("StartingSecondEditEndsFirst", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		s, _, _ = run(r, s, exprs, StartOperatorEdit{ExpressionIndex: 0}, StartConnectorEdit{ExpressionIndex: 0})
		if s.Mode() != ModeEditingConnector || s.EditingOperatorIndex != -1 {
			t.Errorf("expected only connector edit active, got %s", s.Mode())
		}
		if s.StepBeforeEdit != StepSelectingConnector {
			t.Errorf("expected selecting-connector as prior step, got %s", s.StepBeforeEdit)
		}
	})
}

func TestReducerMisc(t *testing.T) {
	r := Reducer{Schema: testSchema()}

	t.Run("UnknownActionIsNoop", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		tr := r.Reduce(s, exprs, unknownAction{})
		if tr.Changed || !reflect.DeepEqual(tr.State, s) {
			t.Error("expected state unchanged")
		}
	})

	t.Run("BlurDropsDanglingConnector", func(t *testing.T) {
		s, exprs := twoExpressions(t, r)
		tr := r.Reduce(s, exprs, SelectConnector{Connector: ConnectorOr})
		tr = r.Reduce(tr.State, tr.Expressions, Blur{})
		if !tr.Changed || tr.Expressions[1].Connector != ConnectorNone {
			t.Error("expected trailing connector removed on blur")
		}
		if tr.State.Step != StepIdle || tr.State.DropdownOpen {
			t.Errorf("expected idle, got %s", tr.State.Step)
		}
	})

	t.Run("SetInputFromIdleStartsBuilding", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, SetInput{Value: "st"})
		if s.Step != StepSelectingField || !s.DropdownOpen {
			t.Errorf("expected selecting-field with dropdown, got %s", s.Step)
		}
	})

	t.Run("HighlightClamps", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, Focus{},
			HighlightNext{Count: 3}, HighlightNext{Count: 3}, HighlightNext{Count: 3})
		if s.HighlightedIndex != 2 {
			t.Errorf("expected 2, got %d", s.HighlightedIndex)
		}
		s, _, _ = run(r, s, nil, HighlightPrev{}, HighlightPrev{}, HighlightPrev{})
		if s.HighlightedIndex != 0 {
			t.Errorf("expected 0, got %d", s.HighlightedIndex)
		}
	})

	t.Run("HighlightNextOpensClosedDropdown", func(t *testing.T) {
		s, _, _ := run(r, NewState(), nil, Focus{}, CloseDropdown{}, HighlightNext{Count: 3})
		if !s.DropdownOpen || s.HighlightedIndex != 0 {
			t.Errorf("expected dropdown open at 0, got open=%v index=%d", s.DropdownOpen, s.HighlightedIndex)
		}
	})

	t.Run("MaxExpressions", func(t *testing.T) {
		schema := testSchema()
		schema.MaxExpressions = 1
		r := Reducer{Schema: schema}
		s, exprs, _ := run(r, NewState(), nil, append([]Action{Focus{}}, buildActions("status", "eq", "open")...)...)
		if s.Step != StepIdle {
			t.Errorf("expected idle at capacity, got %s", s.Step)
		}
		s, _, _ = run(r, s, exprs, Focus{})
		if s.Step != StepIdle {
			t.Errorf("expected focus refused at capacity, got %s", s.Step)
		}
		if !strings.Contains(s.Announcement, "Maximum") {
			t.Errorf("expected capacity announcement, got '%s'", s.Announcement)
		}
	})
}

func TestPlaceholder(t *testing.T) {
	one := []Expression{expr("a", "=", "1", ConnectorNone)}
	cases := []struct {
		name  string
		state State
		exprs []Expression
		want  string
	}{
		{"IdleEmpty", NewState(), nil, "Add filter..."},
		{"IdleWithFilters", NewState(), one, "Add another filter..."},
		{"Operator", State{Step: StepSelectingOperator, EditingTokenIndex: -1, EditingOperatorIndex: -1, EditingConnectorIndex: -1}, one, "Select operator..."},
		{"EditingValue", State{Step: StepIdle, EditingTokenIndex: 2, EditingOperatorIndex: -1, EditingConnectorIndex: -1}, one, "Edit value..."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Placeholder(tc.state, tc.exprs); got != tc.want {
				t.Errorf("expected '%s', got '%s'", tc.want, got)
			}
		})
	}
}
