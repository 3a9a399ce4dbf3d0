package filter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Format renders expressions in the text grammar accepted by ParseText,
// e.g. `status = "open" AND priority > 2`.
func Format(exprs []Expression) string {
	var b strings.Builder
	for i, expr := range exprs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(expr.Condition.Field.Key)
		b.WriteByte(' ')
		op := expr.Condition.Operator
		if op.Symbol != "" {
			b.WriteString(op.Symbol)
		} else {
			b.WriteString(op.Key)
		}
		b.WriteByte(' ')
		b.WriteString(quoteValue(expr.Condition.Value.Display))
		if expr.Connector != ConnectorNone && i < len(exprs)-1 {
			b.WriteByte(' ')
			b.WriteString(string(expr.Connector))
		}
	}
	return b.String()
}

func quoteValue(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"\\") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// ParseError reports where ParseText gave up.
type ParseError struct {
	Pos     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d: %s", e.Pos, e.Message)
}

// ParseText parses the text grammar into expressions. Two conditions with
// no connector between them are joined with AND.
func ParseText(schema *Schema, input string) ([]Expression, error) {
	p := textParser{input: input}
	var out []Expression
	for {
		p.skipWhitespace()
		if p.eof() {
			break
		}
		start := p.pos
		key := p.readWord()
		if key == "" {
			return nil, &ParseError{Pos: p.pos, Message: "expected field"}
		}
		if c := Connector(strings.ToUpper(key)); c.Valid() {
			if len(out) == 0 || out[len(out)-1].Connector != ConnectorNone {
				return nil, &ParseError{Pos: start, Message: fmt.Sprintf("unexpected %s", c)}
			}
			out[len(out)-1].Connector = c
			continue
		}
		field := schema.FieldByLabel(key)
		if field == nil {
			return nil, &ParseError{Pos: start, Message: fmt.Sprintf("unknown field %q", key)}
		}

		p.skipWhitespace()
		opStart := p.pos
		opText := p.readOperator()
		op := field.OperatorBySymbol(opText)
		if op == nil {
			return nil, &ParseError{Pos: opStart, Message: fmt.Sprintf("unknown operator %q for %s", opText, field.Key)}
		}

		p.skipWhitespace()
		valueStart := p.pos
		text, complete := p.readValue()
		if !complete {
			return nil, &ParseError{Pos: valueStart, Message: "unterminated quote"}
		}
		value, ok := ValueFromText(text, field.ValueSource(op))
		if !ok {
			return nil, &ParseError{Pos: valueStart, Message: fmt.Sprintf("invalid value %q for %s", text, field.Key)}
		}
		if len(out) > 0 && out[len(out)-1].Connector == ConnectorNone {
			out[len(out)-1].Connector = ConnectorAnd
		}
		out = append(out, Expression{Condition: Condition{Field: field.Value(), Operator: op.Value(), Value: value}})
	}
	if len(out) > 0 && out[len(out)-1].Connector != ConnectorNone {
		return nil, &ParseError{Pos: len(input), Message: "dangling connector"}
	}
	return out, nil
}

type textParser struct {
	input string
	pos   int
}

func (p *textParser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *textParser) peek() rune {
	if p.eof() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return r
}

func (p *textParser) advance() {
	if p.eof() {
		return
	}
	_, size := utf8.DecodeRuneInString(p.input[p.pos:])
	p.pos += size
}

func (p *textParser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.advance()
	}
}

func isOperatorRune(r rune) bool {
	return strings.ContainsRune("=!<>~^$:", r)
}

func (p *textParser) readWord() string {
	start := p.pos
	for !p.eof() {
		r := p.peek()
		if unicode.IsSpace(r) || isOperatorRune(r) || r == '"' {
			break
		}
		p.advance()
	}
	return p.input[start:p.pos]
}

func (p *textParser) readOperator() string {
	if isOperatorRune(p.peek()) {
		start := p.pos
		for !p.eof() && isOperatorRune(p.peek()) {
			p.advance()
		}
		return p.input[start:p.pos]
	}
	return p.readWord()
}

func (p *textParser) readValue() (string, bool) {
	if p.eof() {
		return "", true
	}
	if p.peek() == '"' {
		return p.readQuotedValue()
	}
	start := p.pos
	for !p.eof() && !unicode.IsSpace(p.peek()) {
		p.advance()
	}
	return p.input[start:p.pos], true
}

func (p *textParser) readQuotedValue() (string, bool) {
	p.advance()
	var b strings.Builder
	for !p.eof() {
		r := p.peek()
		p.advance()
		if r == '\\' {
			if p.eof() {
				return b.String(), false
			}
			b.WriteRune(p.peek())
			p.advance()
			continue
		}
		if r == '"' {
			return b.String(), true
		}
		b.WriteRune(r)
	}
	return b.String(), false
}
