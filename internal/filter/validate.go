package filter

import "fmt"

// Validation error codes.
const (
	CodeValueRequired     = "value_required"
	CodeInvalidValue      = "invalid_value"
	CodeUnknownField      = "unknown_field"
	CodeUnknownOperator   = "unknown_operator"
	CodeMissingConnector  = "missing_connector"
	CodeTrailingConnector = "trailing_connector"
	CodeTooMany           = "too_many_expressions"
	CodeDuplicateField    = "duplicate_field"
)

// ValidationError describes one problem with a value or expression list.
// ExpressionIndex is -1 when the problem is not tied to an expression.
type ValidationError struct {
	Code            string
	Message         string
	Field           string
	ExpressionIndex int
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// ValidationResult is returned by every validator.
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// Valid is the zero-problem result.
func Valid() ValidationResult {
	return ValidationResult{Valid: true}
}

// Invalid builds a failing result with a single error.
func Invalid(code, message string) ValidationResult {
	return ValidationResult{Errors: []ValidationError{{Code: code, Message: message, ExpressionIndex: -1}}}
}

func (r *ValidationResult) merge(other ValidationResult, field string, index int) {
	for _, e := range other.Errors {
		if e.Field == "" {
			e.Field = field
		}
		if index >= 0 {
			e.ExpressionIndex = index
		}
		r.Errors = append(r.Errors, e)
	}
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Valid = len(r.Errors) == 0
}

// ValidateValue checks a single value for field/op: the value-required
// flag, the field validator and the value autocompleter's Validator
// capability, in that order.
func ValidateValue(field *FieldConfig, op *OperatorConfig, v ConditionValue) ValidationResult {
	res := Valid()
	if field == nil {
		return res
	}
	if field.ValueRequired && isBlank(v) {
		res.merge(Invalid(CodeValueRequired, "a value is required"), field.Key, -1)
		return res
	}
	if field.Validate != nil {
		res.merge(field.Validate(v), field.Key, -1)
	}
	if val, ok := field.ValueSource(op).(Validator); ok {
		res.merge(val.Validate(v), field.Key, -1)
	}
	return res
}

// ValidateExpressions checks a full expression list against schema.
func ValidateExpressions(schema *Schema, exprs []Expression) ValidationResult {
	res := Valid()
	if schema != nil && schema.MaxExpressions > 0 && len(exprs) > schema.MaxExpressions {
		res.merge(Invalid(CodeTooMany, fmt.Sprintf("at most %d filters are allowed", schema.MaxExpressions)), "", -1)
	}
	seen := make(map[string]bool, len(exprs))
	for i, expr := range exprs {
		key := expr.Condition.Field.Key
		field := schema.Field(key)
		if field == nil {
			res.merge(Invalid(CodeUnknownField, fmt.Sprintf("unknown field %q", key)), key, i)
			continue
		}
		op := field.Operator(expr.Condition.Operator.Key)
		if op == nil {
			res.merge(Invalid(CodeUnknownOperator, fmt.Sprintf("unknown operator %q", expr.Condition.Operator.Key)), key, i)
			continue
		}
		if seen[key] && !field.AllowMultiple {
			res.Warnings = append(res.Warnings, ValidationError{
				Code:            CodeDuplicateField,
				Message:         fmt.Sprintf("%s is used more than once", field.Label),
				Field:           key,
				ExpressionIndex: i,
			})
		}
		seen[key] = true
		res.merge(ValidateValue(field, op, expr.Condition.Value), key, i)

		last := i == len(exprs)-1
		switch {
		case last && expr.Connector != ConnectorNone:
			res.merge(Invalid(CodeTrailingConnector, "the last filter cannot end with a connector"), key, i)
		case !last && expr.Connector == ConnectorNone:
			res.Warnings = append(res.Warnings, ValidationError{
				Code:            CodeMissingConnector,
				Message:         "missing connector, AND is assumed",
				Field:           key,
				ExpressionIndex: i,
			})
		}
	}
	if schema != nil && schema.Validate != nil {
		res.merge(schema.Validate(exprs), "", -1)
	}
	return res
}

func isBlank(v ConditionValue) bool {
	if v.IsEmpty() {
		return true
	}
	s, isString := v.Raw.(string)
	return v.Display == "" && (v.Raw == nil || isString && s == "")
}
