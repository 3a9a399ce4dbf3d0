package filter

import "strings"

// Schema is the caller-provided configuration the engine reads. Fields are
// offered in order.
type Schema struct {
	Fields         []FieldConfig
	Connectors     []ConnectorConfig
	Validate       func([]Expression) ValidationResult
	Serialize      func([]Expression) (string, error)
	Deserialize    func(string) ([]Expression, error)
	MaxExpressions int // 0 means unlimited
}

// FieldConfig describes one filterable field.
type FieldConfig struct {
	Key                string
	Label              string
	Type               FieldType
	Description        string
	Operators          []OperatorConfig
	ValueAutocompleter Autocompleter
	Validate           func(ConditionValue) ValidationResult
	Serialize          func(ConditionValue) any
	Deserialize        func(any) ConditionValue
	AllowMultiple      bool
	ValueRequired      bool
}

// OperatorConfig describes one operator available on a field.
type OperatorConfig struct {
	Key                string
	Label              string
	Symbol             string
	ValueType          FieldType
	ValueAutocompleter Autocompleter
	CustomInput        Widget
	MultiValue         bool
}

// ConnectorConfig describes a connector choice.
type ConnectorConfig struct {
	Key   Connector
	Label string
}

var defaultConnectors = []ConnectorConfig{
	{Key: ConnectorAnd, Label: "AND"},
	{Key: ConnectorOr, Label: "OR"},
}

// Field returns the field with the given key, or nil.
func (s *Schema) Field(key string) *FieldConfig {
	if s == nil {
		return nil
	}
	for i := range s.Fields {
		if s.Fields[i].Key == key {
			return &s.Fields[i]
		}
	}
	return nil
}

// FieldByLabel finds a field by key or case-insensitive label.
func (s *Schema) FieldByLabel(name string) *FieldConfig {
	if f := s.Field(name); f != nil {
		return f
	}
	if s == nil {
		return nil
	}
	for i := range s.Fields {
		if strings.EqualFold(s.Fields[i].Label, name) || strings.EqualFold(s.Fields[i].Key, name) {
			return &s.Fields[i]
		}
	}
	return nil
}

// ConnectorOptions returns the configured connectors, defaulting to AND/OR.
func (s *Schema) ConnectorOptions() []ConnectorConfig {
	if s == nil || len(s.Connectors) == 0 {
		return defaultConnectors
	}
	return s.Connectors
}

// AtCapacity reports whether n expressions reach MaxExpressions.
func (s *Schema) AtCapacity(n int) bool {
	return s != nil && s.MaxExpressions > 0 && n >= s.MaxExpressions
}

// Value returns the FieldValue identifying this field.
func (f *FieldConfig) Value() FieldValue {
	return FieldValue{Key: f.Key, Label: f.Label, Type: f.Type}
}

// Operator returns the operator with the given key, or nil.
func (f *FieldConfig) Operator(key string) *OperatorConfig {
	if f == nil {
		return nil
	}
	for i := range f.Operators {
		if f.Operators[i].Key == key {
			return &f.Operators[i]
		}
	}
	return nil
}

// OperatorBySymbol finds an operator by symbol, key or label.
func (f *FieldConfig) OperatorBySymbol(text string) *OperatorConfig {
	if f == nil {
		return nil
	}
	for i := range f.Operators {
		op := &f.Operators[i]
		if (op.Symbol != "" && op.Symbol == text) || op.Key == text || strings.EqualFold(op.Label, text) {
			return op
		}
	}
	return nil
}

// ValueSource returns the autocompleter used for values of op on this
// field. Operator-level configuration wins over field-level.
func (f *FieldConfig) ValueSource(op *OperatorConfig) Autocompleter {
	if op != nil && op.ValueAutocompleter != nil {
		return op.ValueAutocompleter
	}
	if f == nil {
		return nil
	}
	return f.ValueAutocompleter
}

// Value returns the OperatorValue identifying this operator.
func (o *OperatorConfig) Value() OperatorValue {
	return OperatorValue{Key: o.Key, Label: o.Label, Symbol: o.Symbol}
}
