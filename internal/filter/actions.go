package filter

// Action is a discrete input to the reducer. The set is closed: only the
// types in this file implement it.
type Action interface {
	isAction()
}

type (
	// Focus starts building when the input gains focus.
	Focus struct{}
	// Blur abandons any in-progress work and returns to idle.
	Blur struct{}
	// SetInput records typed text.
	SetInput struct{ Value string }
	// HighlightNext moves the dropdown highlight down within Count items.
	HighlightNext struct{ Count int }
	// HighlightPrev moves the dropdown highlight up.
	HighlightPrev struct{}
	// SetHighlight moves the highlight to an explicit index.
	SetHighlight struct{ Index int }
	// OpenDropdown shows suggestions for the current step.
	OpenDropdown struct{}
	// CloseDropdown hides suggestions without changing the step.
	CloseDropdown struct{}

	// SelectField picks the field of a new expression.
	SelectField struct{ Field FieldValue }
	// SelectOperator picks the operator for the current field.
	SelectOperator struct{ Operator OperatorValue }
	// ConfirmValue commits the new expression.
	ConfirmValue struct{ Value ConditionValue }
	// SelectConnector links the last expression to a new one.
	SelectConnector struct{ Connector Connector }
	// ConfirmNoConnector finishes building without another expression.
	ConfirmNoConnector struct{}
	// DeleteLastStep steps back one construction step (Backspace on an
	// empty input).
	DeleteLastStep struct{}

	// NavigateLeft selects the previous token.
	NavigateLeft struct{}
	// NavigateRight selects the next token or returns to the input.
	NavigateRight struct{}
	// SelectToken selects the token at Position.
	SelectToken struct{ Position int }
	// ClearSelection drops any token selection.
	ClearSelection struct{}
	// SelectAll marks every token selected (Ctrl+A).
	SelectAll struct{}
	// DeleteToken deletes the token at Position following the deletion
	// policy.
	DeleteToken struct{ Position int }
	// DeleteSelected deletes the selected token, or everything when all
	// tokens are selected.
	DeleteSelected struct{}
	// ClearAll removes every expression (Ctrl+Backspace).
	ClearAll struct{}

	// StartTokenEdit begins editing the value token at Position.
	StartTokenEdit struct{ Position int }
	// CompleteTokenEdit replaces the edited value.
	CompleteTokenEdit struct{ Value ConditionValue }
	// StartOperatorEdit begins editing the operator of an expression.
	StartOperatorEdit struct{ ExpressionIndex int }
	// CompleteOperatorEdit replaces the edited operator.
	CompleteOperatorEdit struct{ Operator OperatorValue }
	// StartConnectorEdit begins editing the connector of an expression.
	StartConnectorEdit struct{ ExpressionIndex int }
	// CompleteConnectorEdit replaces the edited connector.
	CompleteConnectorEdit struct{ Connector Connector }
	// CancelEdit abandons the active edit.
	CancelEdit struct{}
)

func (Focus) isAction()                 {}
func (Blur) isAction()                  {}
func (SetInput) isAction()              {}
func (HighlightNext) isAction()         {}
func (HighlightPrev) isAction()         {}
func (SetHighlight) isAction()          {}
func (OpenDropdown) isAction()          {}
func (CloseDropdown) isAction()         {}
func (SelectField) isAction()           {}
func (SelectOperator) isAction()        {}
func (ConfirmValue) isAction()          {}
func (SelectConnector) isAction()       {}
func (ConfirmNoConnector) isAction()    {}
func (DeleteLastStep) isAction()        {}
func (NavigateLeft) isAction()          {}
func (NavigateRight) isAction()         {}
func (SelectToken) isAction()           {}
func (ClearSelection) isAction()        {}
func (SelectAll) isAction()             {}
func (DeleteToken) isAction()           {}
func (DeleteSelected) isAction()        {}
func (ClearAll) isAction()              {}
func (StartTokenEdit) isAction()        {}
func (CompleteTokenEdit) isAction()     {}
func (StartOperatorEdit) isAction()     {}
func (CompleteOperatorEdit) isAction()  {}
func (StartConnectorEdit) isAction()    {}
func (CompleteConnectorEdit) isAction() {}
func (CancelEdit) isAction()            {}
