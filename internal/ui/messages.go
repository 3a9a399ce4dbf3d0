package ui

import (
	"filterbar/internal/engine"
	"filterbar/internal/filter"
)

// SuggestionsMsg carries the outcome of a suggestion fetch back into the
// update loop.
type SuggestionsMsg struct {
	Response engine.Response
}

// FilterChangedMsg is emitted whenever the committed expression list
// changes.
type FilterChangedMsg struct {
	Expressions []filter.Expression
}

// FilterErrorMsg is emitted when a commit is rejected or the list fails
// validation.
type FilterErrorMsg struct {
	Errors []filter.ValidationError
}

// FocusNextMsg asks the parent to move focus past the filter bar.
type FocusNextMsg struct{}

// SourceUpdatedMsg tells the filter bar that a background revalidation
// replaced cached suggestions for Key.
type SourceUpdatedMsg struct {
	Key string
}
