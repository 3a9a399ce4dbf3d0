package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	celext "github.com/google/cel-go/ext"

	appErrors "filterbar/internal/errors"
	"filterbar/internal/filter"
)

// ToCEL renders exprs as a CEL boolean expression over one variable per
// field. An empty list yields "true".
func ToCEL(exprs []filter.Expression) (string, error) {
	gs := groups(exprs)
	if len(gs) == 0 {
		return "true", nil
	}
	var parts []string
	for _, g := range gs {
		var conds []string
		for _, c := range g {
			frag, err := conditionCEL(c)
			if err != nil {
				return "", err
			}
			conds = append(conds, frag)
		}
		clause := strings.Join(conds, " && ")
		if len(gs) > 1 && len(conds) > 1 {
			clause = "(" + clause + ")"
		}
		parts = append(parts, clause)
	}
	return strings.Join(parts, " || "), nil
}

func conditionCEL(c filter.Condition) (string, error) {
	if err := checkIdentifier(c.Field.Key); err != nil {
		return "", err
	}
	op, err := canonicalOp(c.Operator)
	if err != nil {
		return "", err
	}
	name := c.Field.Key
	number := c.Field.Type == filter.FieldTypeNumber
	boolean := c.Field.Type == filter.FieldTypeBoolean
	lit := func(v any) (string, error) { return celLiteral(v, number, boolean) }

	switch op {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		v, err := lit(valueOf(c))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s %s", name, celComparators[op], v), nil
	case OpContains:
		return fmt.Sprintf("%s.contains(%s)", name, strconv.Quote(fmt.Sprint(valueOf(c)))), nil
	case OpNotContains:
		return fmt.Sprintf("!%s.contains(%s)", name, strconv.Quote(fmt.Sprint(valueOf(c)))), nil
	case OpStartsWith:
		return fmt.Sprintf("%s.startsWith(%s)", name, strconv.Quote(fmt.Sprint(valueOf(c)))), nil
	case OpEndsWith:
		return fmt.Sprintf("%s.endsWith(%s)", name, strconv.Quote(fmt.Sprint(valueOf(c)))), nil
	case OpIn:
		var items []string
		for _, item := range listValues(valueOf(c)) {
			v, err := lit(item)
			if err != nil {
				return "", err
			}
			items = append(items, v)
		}
		return fmt.Sprintf("%s in [%s]", name, strings.Join(items, ", ")), nil
	case OpIsEmpty:
		return name + ` == ""`, nil
	case OpIsNotEmpty:
		return name + ` != ""`, nil
	}
	return "", appErrors.New(appErrors.CodeInvalidExpression, fmt.Sprintf("unsupported operator %q", op), nil)
}

var celComparators = map[string]string{
	OpEq:  "==",
	OpNeq: "!=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// celLiteral renders v as a CEL literal. Numbers are always doubles so they
// type-check against double-typed variables.
func celLiteral(v any, number, boolean bool) (string, error) {
	switch {
	case number:
		f, ok := toFloat(v)
		if !ok {
			return "", appErrors.New(appErrors.CodeInvalidExpression, fmt.Sprintf("%v is not a number", v), nil)
		}
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s, nil
	case boolean:
		b, err := strconv.ParseBool(fmt.Sprint(v))
		if err != nil {
			return "", appErrors.New(appErrors.CodeInvalidExpression, fmt.Sprintf("%v is not a boolean", v), err)
		}
		return strconv.FormatBool(b), nil
	}
	return strconv.Quote(fmt.Sprint(v)), nil
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// NewEnv declares one typed CEL variable per schema field.
func NewEnv(schema *filter.Schema) (*cel.Env, error) {
	opts := []cel.EnvOption{celext.Strings()}
	for _, f := range schema.Fields {
		if err := checkIdentifier(f.Key); err != nil {
			return nil, appErrors.New(appErrors.CodeInvalidSchema, fmt.Sprintf("field %q cannot be a CEL variable", f.Key), err)
		}
		opts = append(opts, cel.Variable(f.Key, celType(f.Type)))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("create CEL environment: %w", err)
	}
	return env, nil
}

func celType(t filter.FieldType) *cel.Type {
	switch t {
	case filter.FieldTypeNumber:
		return cel.DoubleType
	case filter.FieldTypeBoolean:
		return cel.BoolType
	default:
		return cel.StringType
	}
}

// Compile type-checks the CEL form of exprs in env.
func Compile(env *cel.Env, exprs []filter.Expression) (*cel.Ast, error) {
	src, err := ToCEL(exprs)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(src)
	if issues != nil && issues.Err() != nil {
		return nil, appErrors.New(appErrors.CodeInvalidExpression, "compile "+src, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, appErrors.New(appErrors.CodeInvalidExpression, fmt.Sprintf("%s is not a boolean expression", src), nil)
	}
	return ast, nil
}

// Match evaluates exprs against one record whose keys are field keys.
func Match(env *cel.Env, exprs []filter.Expression, record map[string]any) (bool, error) {
	ast, err := Compile(env, exprs)
	if err != nil {
		return false, err
	}
	prg, err := env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program error: %w", err)
	}
	out, _, err := prg.Eval(record)
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, appErrors.New(appErrors.CodeInvalidExpression, "expression did not yield a boolean", nil)
	}
	return b, nil
}

// NewCELValidator returns a schema-level validator that rejects lists whose
// CEL form does not type-check against the schema's fields.
func NewCELValidator(schema *filter.Schema) (func([]filter.Expression) filter.ValidationResult, error) {
	env, err := NewEnv(schema)
	if err != nil {
		return nil, err
	}
	return func(exprs []filter.Expression) filter.ValidationResult {
		if _, err := Compile(env, exprs); err != nil {
			return filter.Invalid(string(appErrors.CodeInvalidExpression), err.Error())
		}
		return filter.Valid()
	}, nil
}
