// Package filter holds the filter expression model, the schema contract the
// engine reads, the token projector and the construction state machine.
package filter

import "fmt"

// FieldType describes the kind of value a field holds.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeNumber  FieldType = "number"
	FieldTypeDate    FieldType = "date"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeEnum    FieldType = "enum"
)

// Connector links an expression to the next one.
type Connector string

const (
	ConnectorNone Connector = ""
	ConnectorAnd  Connector = "AND"
	ConnectorOr   Connector = "OR"
)

// Valid reports whether c is one of the known connectors.
func (c Connector) Valid() bool {
	return c == ConnectorAnd || c == ConnectorOr
}

// FieldValue identifies the field of a condition.
type FieldValue struct {
	Key   string
	Label string
	Type  FieldType
}

// OperatorValue identifies the operator of a condition.
type OperatorValue struct {
	Key    string
	Label  string
	Symbol string
}

// Display returns the symbol when present, otherwise the label.
func (o OperatorValue) Display() string {
	if o.Symbol != "" {
		return o.Symbol
	}
	if o.Label != "" {
		return o.Label
	}
	return o.Key
}

// ConditionValue carries one value in three parallel forms: the in-memory
// value, the text shown to the user and the form written to the wire.
type ConditionValue struct {
	Raw        any
	Display    string
	Serialized any
}

// IsEmpty reports whether the value carries nothing at all.
func (v ConditionValue) IsEmpty() bool {
	return v.Raw == nil && v.Display == "" && v.Serialized == nil
}

// TextValue builds a ConditionValue whose three forms are the same string.
func TextValue(s string) ConditionValue {
	return ConditionValue{Raw: s, Display: s, Serialized: s}
}

// Condition is a single field/operator/value triple.
type Condition struct {
	Field    FieldValue
	Operator OperatorValue
	Value    ConditionValue
}

// Expression is a condition optionally joined to the next expression.
// The last expression of a completed list never carries a connector.
type Expression struct {
	Condition Condition
	Connector Connector
}

func (e Expression) String() string {
	s := fmt.Sprintf("%s %s %s", e.Condition.Field.Key, e.Condition.Operator.Display(), e.Condition.Value.Display)
	if e.Connector != ConnectorNone {
		s += " " + string(e.Connector)
	}
	return s
}

// CloneExpressions returns a shallow copy of exprs that is never nil.
func CloneExpressions(exprs []Expression) []Expression {
	out := make([]Expression, len(exprs))
	copy(out, exprs)
	return out
}
