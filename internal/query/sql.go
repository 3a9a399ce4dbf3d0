package query

import (
	"fmt"
	"strings"

	appErrors "filterbar/internal/errors"
	"filterbar/internal/filter"
)

// SQLOptions controls ToSQL.
type SQLOptions struct {
	// Columns maps field keys to column names. Fields not listed use their
	// key.
	Columns map[string]string
	// Allowed restricts the columns that may be referenced. Empty allows
	// any valid identifier.
	Allowed []string
}

func (o SQLOptions) column(field string) (string, error) {
	col := field
	if mapped, ok := o.Columns[field]; ok {
		col = mapped
	}
	if err := checkIdentifier(col); err != nil {
		return "", err
	}
	if len(o.Allowed) == 0 {
		return col, nil
	}
	for _, a := range o.Allowed {
		if a == col {
			return col, nil
		}
	}
	return "", appErrors.New(appErrors.CodeInvalidExpression, fmt.Sprintf("unknown column %q", col), nil)
}

// ToSQL renders exprs as a WHERE fragment with positional arguments. An
// empty list yields an empty fragment.
func ToSQL(exprs []filter.Expression, opts SQLOptions) (string, []any, error) {
	var (
		parts []string
		args  []any
	)
	gs := groups(exprs)
	for _, g := range gs {
		var conds []string
		for _, c := range g {
			frag, a, err := conditionSQL(c, opts)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, frag)
			args = append(args, a...)
		}
		clause := strings.Join(conds, " AND ")
		if len(gs) > 1 && len(conds) > 1 {
			clause = "(" + clause + ")"
		}
		parts = append(parts, clause)
	}
	return strings.Join(parts, " OR "), args, nil
}

func conditionSQL(c filter.Condition, opts SQLOptions) (string, []any, error) {
	col, err := opts.column(c.Field.Key)
	if err != nil {
		return "", nil, err
	}
	op, err := canonicalOp(c.Operator)
	if err != nil {
		return "", nil, err
	}
	v := valueOf(c)

	switch op {
	case OpEq:
		return col + " = ?", []any{v}, nil
	case OpNeq:
		return col + " != ?", []any{v}, nil
	case OpGt:
		return col + " > ?", []any{v}, nil
	case OpGte:
		return col + " >= ?", []any{v}, nil
	case OpLt:
		return col + " < ?", []any{v}, nil
	case OpLte:
		return col + " <= ?", []any{v}, nil
	case OpContains:
		return col + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(v) + "%"}, nil
	case OpNotContains:
		return col + ` NOT LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(v) + "%"}, nil
	case OpStartsWith:
		return col + ` LIKE ? ESCAPE '\'`, []any{escapeLike(v) + "%"}, nil
	case OpEndsWith:
		return col + ` LIKE ? ESCAPE '\'`, []any{"%" + escapeLike(v)}, nil
	case OpIn:
		items := listValues(v)
		if len(items) == 0 {
			return "0 = 1", nil, nil
		}
		marks := strings.TrimSuffix(strings.Repeat("?, ", len(items)), ", ")
		return col + " IN (" + marks + ")", items, nil
	case OpIsEmpty:
		return "(" + col + " IS NULL OR " + col + " = '')", nil, nil
	case OpIsNotEmpty:
		return "(" + col + " IS NOT NULL AND " + col + " != '')", nil, nil
	}
	return "", nil, appErrors.New(appErrors.CodeInvalidExpression, fmt.Sprintf("unsupported operator %q", op), nil)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(v any) string {
	return likeEscaper.Replace(fmt.Sprint(v))
}
