package filter

import "fmt"

// TokenType names the role of a token.
type TokenType string

const (
	TokenField     TokenType = "field"
	TokenOperator  TokenType = "operator"
	TokenValue     TokenType = "value"
	TokenConnector TokenType = "connector"
)

// TokenSlotsPerExpression is the position block reserved for each
// expression: field, operator, value and connector.
const TokenSlotsPerExpression = 4

// Token is a display and interaction unit derived from expressions. Tokens
// are never stored; Project rebuilds them on every change.
type Token struct {
	ID              string
	Type            TokenType
	Label           string
	Value           any
	Position        int
	ExpressionIndex int // -1 for pending tokens
	IsPending       bool
}

// Project turns committed expressions plus the in-progress field and
// operator into a flat token list. Committed tokens have dense positions
// starting at 0, so a committed token's position is also its index. Pending
// tokens are placed after the block reserved for the committed expressions.
func Project(exprs []Expression, currentField *FieldValue, currentOperator *OperatorValue) []Token {
	n := 3 * len(exprs)
	for _, expr := range exprs {
		if expr.Connector != ConnectorNone {
			n++
		}
	}
	if currentField != nil {
		n++
		if currentOperator != nil {
			n++
		}
	}

	tokens := make([]Token, 0, n)
	pos := 0
	for i, expr := range exprs {
		c := expr.Condition
		tokens = append(tokens,
			Token{ID: tokenID(i, TokenField), Type: TokenField, Label: fieldLabel(c.Field), Value: c.Field, Position: pos, ExpressionIndex: i},
			Token{ID: tokenID(i, TokenOperator), Type: TokenOperator, Label: c.Operator.Display(), Value: c.Operator, Position: pos + 1, ExpressionIndex: i},
			Token{ID: tokenID(i, TokenValue), Type: TokenValue, Label: c.Value.Display, Value: c.Value, Position: pos + 2, ExpressionIndex: i},
		)
		pos += 3
		if expr.Connector != ConnectorNone {
			tokens = append(tokens, Token{
				ID:              tokenID(i, TokenConnector),
				Type:            TokenConnector,
				Label:           string(expr.Connector),
				Value:           expr.Connector,
				Position:        pos,
				ExpressionIndex: i,
			})
			pos++
		}
	}

	if currentField == nil {
		return tokens
	}
	base := len(exprs) * TokenSlotsPerExpression
	tokens = append(tokens, Token{
		ID:              "pending-field",
		Type:            TokenField,
		Label:           fieldLabel(*currentField),
		Value:           *currentField,
		Position:        base,
		ExpressionIndex: -1,
		IsPending:       true,
	})
	if currentOperator != nil {
		tokens = append(tokens, Token{
			ID:              "pending-operator",
			Type:            TokenOperator,
			Label:           currentOperator.Display(),
			Value:           *currentOperator,
			Position:        base + 1,
			ExpressionIndex: -1,
			IsPending:       true,
		})
	}
	return tokens
}

func tokenID(index int, t TokenType) string {
	return fmt.Sprintf("expr-%d-%s", index, t)
}

func fieldLabel(f FieldValue) string {
	if f.Label != "" {
		return f.Label
	}
	return f.Key
}

// CommittedCount returns how many tokens belong to committed expressions.
func CommittedCount(tokens []Token) int {
	n := 0
	for _, t := range tokens {
		if !t.IsPending {
			n++
		}
	}
	return n
}

// TokenAt returns the token at position, if any.
func TokenAt(tokens []Token, position int) (Token, bool) {
	if position >= 0 && position < len(tokens) && tokens[position].Position == position && !tokens[position].IsPending {
		return tokens[position], true
	}
	for _, t := range tokens {
		if t.Position == position {
			return t, true
		}
	}
	return Token{}, false
}
