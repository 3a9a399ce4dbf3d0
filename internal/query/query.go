// Package query translates expression lists into SQL WHERE fragments and
// CEL programs. Both encoders read a missing connector as AND and bind OR
// looser than AND, so "a AND b OR c" means "(a AND b) OR c".
package query

import (
	"fmt"
	"regexp"
	"strings"

	appErrors "filterbar/internal/errors"
	"filterbar/internal/filter"
)

// Operator keys understood by the encoders.
const (
	OpEq          = "eq"
	OpNeq         = "neq"
	OpContains    = "contains"
	OpNotContains = "not_contains"
	OpStartsWith  = "starts_with"
	OpEndsWith    = "ends_with"
	OpGt          = "gt"
	OpGte         = "gte"
	OpLt          = "lt"
	OpLte         = "lte"
	OpIn          = "in"
	OpIsEmpty     = "is_empty"
	OpIsNotEmpty  = "is_not_empty"
)

// symbolOps maps operator symbols onto keys for schemas that use their own
// operator keys.
var symbolOps = map[string]string{
	"=":  OpEq,
	"==": OpEq,
	"!=": OpNeq,
	"~":  OpContains,
	"!~": OpNotContains,
	"^":  OpStartsWith,
	"$":  OpEndsWith,
	">":  OpGt,
	">=": OpGte,
	"<":  OpLt,
	"<=": OpLte,
	"in": OpIn,
}

// canonicalOp resolves the encoder operator for op.
func canonicalOp(op filter.OperatorValue) (string, error) {
	switch op.Key {
	case OpEq, OpNeq, OpContains, OpNotContains, OpStartsWith, OpEndsWith,
		OpGt, OpGte, OpLt, OpLte, OpIn, OpIsEmpty, OpIsNotEmpty:
		return op.Key, nil
	}
	if k, ok := symbolOps[op.Symbol]; ok {
		return k, nil
	}
	return "", appErrors.New(appErrors.CodeInvalidExpression, fmt.Sprintf("unsupported operator %q", op.Key), nil)
}

// groups splits exprs into OR-separated runs of AND-joined conditions.
func groups(exprs []filter.Expression) [][]filter.Condition {
	var (
		out [][]filter.Condition
		cur []filter.Condition
	)
	for i, e := range exprs {
		cur = append(cur, e.Condition)
		if i < len(exprs)-1 && e.Connector == filter.ConnectorOr {
			out = append(out, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

// listValues spreads a multi-value into its items. Strings are split on
// commas.
func listValues(v any) []any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case string:
		var out []any
		for _, part := range strings.Split(t, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return []any{t}
	}
}

func valueOf(c filter.Condition) any {
	if c.Value.Raw != nil {
		return c.Value.Raw
	}
	return c.Value.Serialized
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return appErrors.New(appErrors.CodeInvalidExpression, fmt.Sprintf("invalid column %q", name), nil)
	}
	return nil
}
