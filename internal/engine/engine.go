// Package engine drives the filter state machine from raw input. It owns the
// reducer state and the adopted expression list, translates key and pointer
// events into actions, and tracks which suggestion request is current.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"

	"filterbar/internal/autocomplete"
	"filterbar/internal/filter"
)

// Option configures an Engine.
type Option func(*Engine)

// WithOnChange is called with a fresh copy of the list after every commit,
// edit or delete.
func WithOnChange(fn func([]filter.Expression)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// WithOnError is called when a value or the list fails validation.
func WithOnError(fn func([]filter.ValidationError)) Option {
	return func(e *Engine) { e.onError = fn }
}

// WithLogger sets the logger used for transitions and fetches.
func WithLogger(l logr.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithFieldSource replaces the default field suggester.
func WithFieldSource(src filter.Autocompleter) Option {
	return func(e *Engine) { e.fields = src }
}

// Engine is safe for concurrent use. Actions are applied one at a time and
// callbacks run after the engine lock is released.
type Engine struct {
	schema  *filter.Schema
	reducer filter.Reducer

	onChange func([]filter.Expression)
	onError  func([]filter.ValidationError)
	log      logr.Logger

	fields     filter.Autocompleter
	operators  filter.Autocompleter
	connectors filter.Autocompleter

	mu          sync.Mutex
	state       filter.State
	exprs       []filter.Expression
	suggestions []filter.Suggestion
	gen         uint64
	requested   uint64
	lastKey     string
	more        bool
	pager       autocomplete.Pager
}

// New creates an engine over schema starting from exprs.
func New(schema *filter.Schema, exprs []filter.Expression, opts ...Option) *Engine {
	e := &Engine{
		schema:     schema,
		reducer:    filter.Reducer{Schema: schema},
		log:        logr.Discard(),
		operators:  autocomplete.OperatorSuggester(),
		connectors: autocomplete.ConnectorSuggester(),
		state:      filter.NewState(),
		exprs:      filter.CloneExpressions(exprs),
		gen:        1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fields == nil {
		e.fields = autocomplete.FieldSuggester(schema)
	}
	e.lastKey = e.suggestionKey()
	return e
}

// Schema returns the schema the engine reads.
func (e *Engine) Schema() *filter.Schema {
	return e.schema
}

// State returns a copy of the current state.
func (e *Engine) State() filter.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Expressions returns a copy of the current list.
func (e *Engine) Expressions() []filter.Expression {
	e.mu.Lock()
	defer e.mu.Unlock()
	return filter.CloneExpressions(e.exprs)
}

// Tokens projects the current list and pending field/operator.
func (e *Engine) Tokens() []filter.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	return filter.Project(e.exprs, e.state.CurrentField, e.state.CurrentOperator)
}

// Suggestions returns the suggestions applied for the current generation.
func (e *Engine) Suggestions() []filter.Suggestion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]filter.Suggestion(nil), e.suggestions...)
}

// Placeholder returns the hint for an empty input.
func (e *Engine) Placeholder() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return filter.Placeholder(e.state, e.exprs)
}

// Dispatch applies a single action.
func (e *Engine) Dispatch(a filter.Action) {
	e.mu.Lock()
	var out outbox
	e.apply(a, &out)
	e.mu.Unlock()
	out.flush(e)
}

// SetExpressions replaces the list, as a controlling caller does when it
// owns the expressions. Any edit or selection is dropped.
func (e *Engine) SetExpressions(exprs []filter.Expression) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.exprs = filter.CloneExpressions(exprs)
	if e.state.Editing() {
		e.state = e.reducer.Reduce(e.state, e.exprs, filter.CancelEdit{}).State
	}
	e.state.SelectedTokenIndex = -1
	e.state.AllTokensSelected = false
	if len(e.exprs) == 0 && e.state.Step == filter.StepSelectingConnector {
		e.state = filter.NewState()
	}
	e.invalidate()
}

// Refresh marks the current suggestions outdated so the next
// PendingRequest fetches again. The visible list stays until the new
// response is applied.
func (e *Engine) Refresh() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
}

// outbox collects callback invocations so they run outside the lock.
type outbox struct {
	changes [][]filter.Expression
	errs    [][]filter.ValidationError
}

func (o *outbox) flush(e *Engine) {
	for _, c := range o.changes {
		if e.onChange != nil {
			e.onChange(c)
		}
	}
	for _, errs := range o.errs {
		if e.onError != nil {
			e.onError(errs)
		}
	}
}

// apply runs one action through the reducer. The caller holds e.mu.
func (e *Engine) apply(a filter.Action, out *outbox) bool {
	tr := e.reducer.Reduce(e.state, e.exprs, a)
	e.state = tr.State
	if tr.Changed {
		e.exprs = tr.Expressions
		out.changes = append(out.changes, filter.CloneExpressions(e.exprs))
		if errs := e.listErrors(); len(errs) > 0 {
			out.errs = append(out.errs, errs)
		}
	}
	e.log.V(1).Info("action applied",
		"action", fmt.Sprintf("%T", a),
		"step", string(e.state.Step),
		"mode", e.state.Mode().String(),
		"changed", tr.Changed,
		"expressions", len(e.exprs))
	if key := e.suggestionKey(); key != e.lastKey {
		e.lastKey = key
		e.invalidate()
		e.releasePager()
	}
	return tr.Changed
}

// listErrors validates the list. A trailing connector is expected while the
// next expression is being built.
func (e *Engine) listErrors() []filter.ValidationError {
	res := filter.ValidateExpressions(e.schema, e.exprs)
	if res.Valid {
		return nil
	}
	building := e.state.Step != filter.StepIdle && e.state.Step != filter.StepSelectingConnector
	var errs []filter.ValidationError
	for _, v := range res.Errors {
		if building && v.Code == filter.CodeTrailingConnector {
			continue
		}
		errs = append(errs, v)
	}
	return errs
}

func (e *Engine) invalidate() {
	e.gen++
	e.more = false
	e.suggestions = nil
}

// releasePager resets the paged source of the last request once the state
// no longer reads from it. The caller holds e.mu.
func (e *Engine) releasePager() {
	if e.pager == nil {
		return
	}
	if src, _ := e.source(); src != nil && any(src) == any(e.pager) {
		return
	}
	e.pager.Reset()
	e.pager = nil
}

// activePager returns the current source when it pages. The caller holds
// e.mu.
func (e *Engine) activePager() (autocomplete.Pager, bool) {
	if !e.state.DropdownOpen {
		return nil, false
	}
	src, _ := e.source()
	p, ok := src.(autocomplete.Pager)
	return p, ok
}

// LoadMore asks for the next page of a paged value source. The fetch is
// issued by the next PendingRequest; loaded suggestions stay visible until
// it is applied. It reports false when the source has no more pages.
func (e *Engine) LoadMore() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requestMore()
}

func (e *Engine) requestMore() bool {
	p, ok := e.activePager()
	if !ok || !p.HasMore() || len(e.suggestions) == 0 {
		return false
	}
	e.gen++
	e.more = true
	return true
}

// More reports whether the current source has another page, and the total
// it reported (-1 when unknown).
func (e *Engine) More() (bool, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.activePager()
	if !ok || len(e.suggestions) == 0 {
		return false, -1
	}
	return p.HasMore(), p.Total()
}

func (e *Engine) suggestionKey() string {
	s := e.state
	field, op := "", ""
	if s.CurrentField != nil {
		field = s.CurrentField.Key
	}
	if s.CurrentOperator != nil {
		op = s.CurrentOperator.Key
	}
	return fmt.Sprintf("%s|%s|%s|%s|%q|%d|%d|%d|%d|%t",
		s.Mode(), s.Step, field, op, s.InputValue,
		s.EditingTokenIndex, s.EditingOperatorIndex, s.EditingConnectorIndex,
		len(e.exprs), s.DropdownOpen)
}

// Request is a suggestion fetch for one generation of the engine state.
type Request struct {
	Generation uint64
	Source     filter.Autocompleter
	Context    filter.SuggestionContext
	More       bool // load the next page of a paged source
}

// Response is the outcome of Request.Run.
type Response struct {
	Generation  uint64
	Suggestions []filter.Suggestion
	More        bool
	Err         error
}

// Run fetches suggestions. It blocks and may be called off the UI loop.
func (r Request) Run(ctx context.Context) Response {
	if p, ok := r.Source.(autocomplete.Pager); ok && r.More {
		items, err := p.LoadMore(ctx)
		return Response{Generation: r.Generation, Suggestions: items, More: true, Err: err}
	}
	items, err := r.Source.Suggestions(ctx, r.Context)
	return Response{Generation: r.Generation, Suggestions: items, Err: err}
}

// PendingRequest returns the fetch the current state needs, once per
// generation. ok is false when the dropdown is closed, when there is no
// source for the current step, or when the request was already issued.
func (e *Engine) PendingRequest() (Request, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.state.DropdownOpen || e.requested == e.gen {
		return Request{}, false
	}
	src, sc := e.source()
	if src == nil {
		return Request{}, false
	}
	e.requested = e.gen
	if p, ok := src.(autocomplete.Pager); ok {
		e.pager = p
	}
	req := Request{Generation: e.gen, Source: src, Context: sc, More: e.more}
	e.more = false
	return req, true
}

// ApplySuggestions adopts resp when it belongs to the current generation.
// It reports whether resp was applied.
func (e *Engine) ApplySuggestions(resp Response) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if resp.Generation != e.gen {
		e.log.V(1).Info("dropping stale suggestions", "generation", resp.Generation, "current", e.gen)
		return false
	}
	if resp.Err != nil {
		e.log.Error(resp.Err, "suggestion fetch failed", "generation", resp.Generation)
	}
	grew := resp.More && len(resp.Suggestions) > len(e.suggestions)
	e.suggestions = resp.Suggestions
	if grew {
		e.state = e.reducer.Reduce(e.state, e.exprs, filter.HighlightNext{Count: len(e.suggestions)}).State
	}
	if n := len(e.suggestions); e.state.HighlightedIndex >= n {
		e.state.HighlightedIndex = n - 1
	}
	return true
}

// RefreshSuggestions runs the pending request, if any, and applies it.
func (e *Engine) RefreshSuggestions(ctx context.Context) error {
	req, ok := e.PendingRequest()
	if !ok {
		return nil
	}
	resp := req.Run(ctx)
	e.ApplySuggestions(resp)
	return resp.Err
}

// source picks the autocompleter for the current step or edit. The caller
// holds e.mu.
func (e *Engine) source() (filter.Autocompleter, filter.SuggestionContext) {
	sc := filter.SuggestionContext{
		Input:       e.state.InputValue,
		Expressions: filter.CloneExpressions(e.exprs),
		Schema:      e.schema,
	}
	switch e.state.Mode() {
	case filter.ModeEditingOperator:
		sc.Field = e.schema.Field(e.exprs[e.state.EditingOperatorIndex].Condition.Field.Key)
		return e.operators, sc
	case filter.ModeEditingConnector:
		return e.connectors, sc
	case filter.ModeEditingValue:
		field, op, ok := e.editedCondition()
		if !ok {
			return nil, sc
		}
		sc.Field, sc.Operator = field, op
		return field.ValueSource(op), sc
	}

	switch e.state.Step {
	case filter.StepSelectingField:
		return e.fields, sc
	case filter.StepSelectingOperator:
		sc.Field = e.currentField()
		return e.operators, sc
	case filter.StepEnteringValue:
		sc.Field, sc.Operator = e.currentField(), e.currentOperator()
		if sc.Field == nil {
			return nil, sc
		}
		return sc.Field.ValueSource(sc.Operator), sc
	case filter.StepSelectingConnector:
		return e.connectors, sc
	}
	return nil, sc
}

func (e *Engine) currentField() *filter.FieldConfig {
	if e.state.CurrentField == nil {
		return nil
	}
	return e.schema.Field(e.state.CurrentField.Key)
}

func (e *Engine) currentOperator() *filter.OperatorConfig {
	if e.state.CurrentOperator == nil {
		return nil
	}
	return e.currentField().Operator(e.state.CurrentOperator.Key)
}

// editedCondition resolves the field and operator of the value being edited.
func (e *Engine) editedCondition() (*filter.FieldConfig, *filter.OperatorConfig, bool) {
	tok, ok := filter.TokenAt(filter.Project(e.exprs, nil, nil), e.state.EditingTokenIndex)
	if !ok || tok.ExpressionIndex < 0 {
		return nil, nil, false
	}
	c := e.exprs[tok.ExpressionIndex].Condition
	field := e.schema.Field(c.Field.Key)
	if field == nil {
		return nil, nil, false
	}
	return field, field.Operator(c.Operator.Key), true
}
