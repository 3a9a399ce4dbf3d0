// Package schema loads filter schemas from YAML documents.
package schema

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"filterbar/internal/autocomplete"
	"filterbar/internal/config"
	appErrors "filterbar/internal/errors"
	"filterbar/internal/filter"
	"filterbar/internal/query"
)

// Sources resolves database-backed value sources. *store.Store implements it.
type Sources interface {
	ValueSource(table, column string, limit int) (autocomplete.FetchFunc, error)
	PageSource(table, column string) (autocomplete.PageFunc, error)
}

// Deps carries what the loader needs to build autocompleters.
type Deps struct {
	Sources Sources
	Suggest config.SuggestSettings
	Now     func() time.Time
	// OnUpdate is called when a stale-while-revalidate source refreshes an
	// entry in the background.
	OnUpdate func(key string, items []filter.Suggestion)
}

// Document is the YAML form of a schema.
type Document struct {
	MaxExpressions int         `yaml:"max_expressions"`
	Validate       string      `yaml:"validate"`
	Connectors     []string    `yaml:"connectors"`
	Fields         []FieldSpec `yaml:"fields"`
}

// FieldSpec is the YAML form of one field.
type FieldSpec struct {
	Key           string         `yaml:"key"`
	Label         string         `yaml:"label"`
	Type          string         `yaml:"type"`
	Description   string         `yaml:"description"`
	Required      bool           `yaml:"required"`
	Multiple      bool           `yaml:"multiple"`
	Operators     []OperatorSpec `yaml:"operators"`
	Values        []ValueSpec    `yaml:"values"`
	Match         string         `yaml:"match"`
	CaseSensitive bool           `yaml:"case_sensitive"`
	Strict        bool           `yaml:"strict"`
	ExcludeUsed   bool           `yaml:"exclude_used"`
	Source        *SourceSpec    `yaml:"source"`
	Min           *float64       `yaml:"min"`
	Max           *float64       `yaml:"max"`
	Integer       bool           `yaml:"integer"`
}

// OperatorSpec is an operator entry: either a bare key from the built-in
// catalog or a mapping.
type OperatorSpec struct {
	Key       string      `yaml:"key"`
	Label     string      `yaml:"label"`
	Symbol    string      `yaml:"symbol"`
	ValueType string      `yaml:"value_type"`
	Multi     bool        `yaml:"multi"`
	Values    []ValueSpec `yaml:"values"`
}

// UnmarshalYAML accepts a scalar key or a mapping.
func (o *OperatorSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		o.Key = value.Value
		return nil
	case yaml.MappingNode:
		type alias OperatorSpec
		var tmp alias
		if err := value.Decode(&tmp); err != nil {
			return err
		}
		*o = OperatorSpec(tmp)
		return nil
	}
	return fmt.Errorf("line %d: operator must be a key or a mapping", value.Line)
}

// ValueSpec is a value entry: either a bare value or a mapping.
type ValueSpec struct {
	Value       string `yaml:"value"`
	Label       string `yaml:"label"`
	Description string `yaml:"description"`
}

// UnmarshalYAML accepts a scalar value or a mapping.
func (v *ValueSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		v.Value = value.Value
		return nil
	case yaml.MappingNode:
		type alias ValueSpec
		var tmp alias
		if err := value.Decode(&tmp); err != nil {
			return err
		}
		*v = ValueSpec(tmp)
		return nil
	}
	return fmt.Errorf("line %d: value must be a scalar or a mapping", value.Line)
}

// SourceSpec points a field at a database column.
type SourceSpec struct {
	Table    string `yaml:"table"`
	Column   string `yaml:"column"`
	Limit    int    `yaml:"limit"`
	MinChars *int   `yaml:"min_chars"`
	SWR      bool   `yaml:"swr"`
	Paged    bool   `yaml:"paged"`
}

type catalogEntry struct {
	label, symbol string
}

// catalog holds the operators a bare key may name.
var catalog = map[string]catalogEntry{
	query.OpEq:          {"is", "="},
	query.OpNeq:         {"is not", "!="},
	query.OpContains:    {"contains", "~"},
	query.OpNotContains: {"does not contain", "!~"},
	query.OpStartsWith:  {"starts with", "^"},
	query.OpEndsWith:    {"ends with", "$"},
	query.OpGt:          {"greater than", ">"},
	query.OpGte:         {"at least", ">="},
	query.OpLt:          {"less than", "<"},
	query.OpLte:         {"at most", "<="},
	query.OpIn:          {"is any of", "in"},
	query.OpIsEmpty:     {"is empty", "empty"},
	query.OpIsNotEmpty:  {"is not empty", "!empty"},
}

var defaultOperators = map[filter.FieldType][]string{
	filter.FieldTypeString:  {query.OpEq, query.OpNeq, query.OpContains, query.OpNotContains, query.OpStartsWith, query.OpEndsWith},
	filter.FieldTypeEnum:    {query.OpEq, query.OpNeq, query.OpIn},
	filter.FieldTypeNumber:  {query.OpEq, query.OpNeq, query.OpGt, query.OpGte, query.OpLt, query.OpLte},
	filter.FieldTypeDate:    {query.OpEq, query.OpGt, query.OpLt},
	filter.FieldTypeBoolean: {query.OpEq},
}

var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load reads and parses the schema document at path.
func Load(path string, deps Deps) (*filter.Schema, error) {
	//nolint:gosec // G304: the schema path is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, appErrors.New(appErrors.CodeConfigurationError, fmt.Sprintf("read schema %s", path), err)
	}
	return Parse(data, deps)
}

// Parse turns a YAML document into a schema.
func Parse(data []byte, deps Deps) (*filter.Schema, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, appErrors.New(appErrors.CodeInvalidSchema, "parse schema", err)
	}
	return Build(doc, deps)
}

// Build turns a decoded document into a schema.
func Build(doc Document, deps Deps) (*filter.Schema, error) {
	if len(doc.Fields) == 0 {
		return nil, invalid("schema has no fields")
	}
	if doc.MaxExpressions < 0 {
		return nil, invalid("max_expressions must not be negative")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := &filter.Schema{MaxExpressions: doc.MaxExpressions}
	for _, c := range doc.Connectors {
		conn := filter.Connector(strings.ToUpper(strings.TrimSpace(c)))
		if !conn.Valid() {
			return nil, invalid(fmt.Sprintf("unknown connector %q", c))
		}
		s.Connectors = append(s.Connectors, filter.ConnectorConfig{Key: conn, Label: string(conn)})
	}

	seen := make(map[string]bool, len(doc.Fields))
	for i, spec := range doc.Fields {
		field, err := buildField(spec, deps)
		if err != nil {
			return nil, appErrors.New(appErrors.CodeInvalidSchema, fmt.Sprintf("field %d (%s)", i, spec.Key), err)
		}
		if seen[field.Key] {
			return nil, invalid(fmt.Sprintf("duplicate field %q", field.Key))
		}
		seen[field.Key] = true
		s.Fields = append(s.Fields, field)
	}

	switch strings.ToLower(strings.TrimSpace(doc.Validate)) {
	case "", "none":
	case "cel":
		validate, err := query.NewCELValidator(s)
		if err != nil {
			return nil, err
		}
		s.Validate = validate
	default:
		return nil, invalid(fmt.Sprintf("unknown validate mode %q", doc.Validate))
	}
	return s, nil
}

func buildField(spec FieldSpec, deps Deps) (filter.FieldConfig, error) {
	key := strings.TrimSpace(spec.Key)
	if !keyPattern.MatchString(key) {
		return filter.FieldConfig{}, fmt.Errorf("key %q must be an identifier", spec.Key)
	}
	typ := filter.FieldType(strings.ToLower(strings.TrimSpace(spec.Type)))
	if typ == "" {
		typ = filter.FieldTypeString
	}
	if _, ok := defaultOperators[typ]; !ok {
		return filter.FieldConfig{}, fmt.Errorf("unknown type %q", spec.Type)
	}

	field := filter.FieldConfig{
		Key:           key,
		Label:         spec.Label,
		Type:          typ,
		Description:   spec.Description,
		AllowMultiple: spec.Multiple,
		ValueRequired: spec.Required,
	}
	if field.Label == "" {
		field.Label = labelFor(key)
	}

	opSpecs := spec.Operators
	if len(opSpecs) == 0 {
		for _, k := range defaultOperators[typ] {
			opSpecs = append(opSpecs, OperatorSpec{Key: k})
		}
	}
	seen := make(map[string]bool, len(opSpecs))
	for _, ospec := range opSpecs {
		op, err := buildOperator(ospec, typ, spec, deps)
		if err != nil {
			return filter.FieldConfig{}, err
		}
		if seen[op.Key] {
			return filter.FieldConfig{}, fmt.Errorf("duplicate operator %q", op.Key)
		}
		seen[op.Key] = true
		field.Operators = append(field.Operators, op)
	}

	src, err := valueSource(spec, typ, deps)
	if err != nil {
		return filter.FieldConfig{}, err
	}
	field.ValueAutocompleter = src
	return field, nil
}

func buildOperator(spec OperatorSpec, fieldType filter.FieldType, field FieldSpec, deps Deps) (filter.OperatorConfig, error) {
	key := strings.TrimSpace(spec.Key)
	if key == "" {
		return filter.OperatorConfig{}, fmt.Errorf("operator key is empty")
	}
	op := filter.OperatorConfig{
		Key:        key,
		Label:      spec.Label,
		Symbol:     spec.Symbol,
		ValueType:  fieldType,
		MultiValue: spec.Multi || key == query.OpIn,
	}
	if entry, ok := catalog[key]; ok {
		if op.Label == "" {
			op.Label = entry.label
		}
		if op.Symbol == "" {
			op.Symbol = entry.symbol
		}
	}
	if op.Label == "" {
		op.Label = key
	}
	if op.Symbol == "" {
		return filter.OperatorConfig{}, fmt.Errorf("operator %q needs a symbol", key)
	}
	if spec.ValueType != "" {
		vt := filter.FieldType(strings.ToLower(spec.ValueType))
		if _, ok := defaultOperators[vt]; !ok {
			return filter.OperatorConfig{}, fmt.Errorf("operator %q: unknown value type %q", key, spec.ValueType)
		}
		op.ValueType = vt
	}
	if len(spec.Values) > 0 {
		static, err := staticSource(spec.Values, field, deps)
		if err != nil {
			return filter.OperatorConfig{}, err
		}
		op.ValueAutocompleter = static
	}
	return op, nil
}

// valueSource assembles the field-level autocompleter from the listed
// values, the database source and the field type.
func valueSource(spec FieldSpec, typ filter.FieldType, deps Deps) (filter.Autocompleter, error) {
	var sources []filter.Autocompleter

	if len(spec.Values) > 0 {
		static, err := staticSource(spec.Values, spec, deps)
		if err != nil {
			return nil, err
		}
		sources = append(sources, static)
	} else if typ == filter.FieldTypeBoolean {
		sources = append(sources, autocomplete.NewStatic(autocomplete.Values("true", "false"), autocomplete.WithStrict(true)))
	}

	if spec.Source != nil {
		src, err := databaseSource(*spec.Source, deps)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	switch typ {
	case filter.FieldTypeNumber:
		n := autocomplete.NewNumber()
		n.Integer = spec.Integer
		if spec.Min != nil || spec.Max != nil {
			n.Min, n.Max = spec.Min, spec.Max
		}
		if n.Min != nil && n.Max != nil && *n.Min > *n.Max {
			return nil, fmt.Errorf("min %v is above max %v", *n.Min, *n.Max)
		}
		if len(sources) == 0 {
			return n, nil
		}
		sources = append(sources, n)
	case filter.FieldTypeDate:
		d := autocomplete.NewDate().WithNow(deps.Now)
		if len(sources) == 0 {
			return d, nil
		}
		sources = append(sources, d)
	}

	switch len(sources) {
	case 0:
		return nil, nil
	case 1:
		return sources[0], nil
	}
	return autocomplete.Combine(sources...), nil
}

func staticSource(values []ValueSpec, spec FieldSpec, deps Deps) (*autocomplete.Static, error) {
	mode := spec.Match
	if mode == "" {
		mode = deps.Suggest.Match
	}
	match := autocomplete.MatchSubstring
	if mode != "" {
		m, err := autocomplete.ParseMatchMode(mode)
		if err != nil {
			return nil, err
		}
		match = m
	}

	items := make([]filter.Suggestion, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v.Value) == "" {
			return nil, fmt.Errorf("empty value")
		}
		label := v.Label
		if label == "" {
			label = v.Value
		}
		items = append(items, filter.Suggestion{
			Type:        filter.SuggestionValue,
			Key:         v.Value,
			Label:       label,
			Description: v.Description,
			Value:       v.Value,
		})
	}
	return autocomplete.NewStatic(items,
		autocomplete.WithMatch(match),
		autocomplete.WithCaseSensitive(spec.CaseSensitive),
		autocomplete.WithMaxResults(deps.Suggest.MaxResults),
		autocomplete.WithExcludeUsed(spec.ExcludeUsed),
		autocomplete.WithStrict(spec.Strict),
	), nil
}

func databaseSource(spec SourceSpec, deps Deps) (filter.Autocompleter, error) {
	if deps.Sources == nil {
		return nil, fmt.Errorf("source %s.%s needs a database", spec.Table, spec.Column)
	}
	if spec.Table == "" || spec.Column == "" {
		return nil, fmt.Errorf("source needs table and column")
	}
	s := deps.Suggest

	if spec.Paged {
		pages, err := deps.Sources.PageSource(spec.Table, spec.Column)
		if err != nil {
			return nil, err
		}
		var opts []autocomplete.PageOption
		if s.PageSize > 0 {
			opts = append(opts, autocomplete.WithPageSize(s.PageSize))
		}
		if s.MaxPages > 0 {
			opts = append(opts, autocomplete.WithMaxPages(s.MaxPages))
		}
		return autocomplete.NewPaginated(pages, opts...), nil
	}

	limit := spec.Limit
	if limit <= 0 {
		limit = s.MaxResults
	}
	fetch, err := deps.Sources.ValueSource(spec.Table, spec.Column, limit)
	if err != nil {
		return nil, err
	}
	minChars := s.MinChars
	if spec.MinChars != nil {
		minChars = *spec.MinChars
	}
	async := autocomplete.NewAsync(fetch,
		autocomplete.WithMinChars(minChars),
		autocomplete.WithDebounce(s.Debounce),
		autocomplete.WithCache(s.Cache && !spec.SWR),
	)
	if !spec.SWR {
		return async, nil
	}
	opts := []autocomplete.SWROption{
		autocomplete.WithMaxAge(s.FreshFor),
		autocomplete.WithStaleAge(s.StaleFor),
		autocomplete.WithClock(deps.Now),
	}
	if deps.OnUpdate != nil {
		opts = append(opts, autocomplete.WithOnUpdate(deps.OnUpdate))
	}
	return autocomplete.NewStaleWhileRevalidate(async, opts...), nil
}

func labelFor(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	if len(words) == 0 {
		return key
	}
	first := words[0]
	words[0] = strings.ToUpper(first[:1]) + first[1:]
	return strings.Join(words, " ")
}

func invalid(msg string) error {
	return appErrors.New(appErrors.CodeInvalidSchema, msg, nil)
}
