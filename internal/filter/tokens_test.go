package filter

import "testing"

func expr(field, op, value string, c Connector) Expression {
	return Expression{
		Condition: Condition{
			Field:    FieldValue{Key: field, Label: field},
			Operator: OperatorValue{Key: op, Symbol: op},
			Value:    TextValue(value),
		},
		Connector: c,
	}
}

func TestProjectCommitted(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		tokens := Project(nil, nil, nil)
		if len(tokens) != 0 {
			t.Errorf("expected no tokens, got %d", len(tokens))
		}
	})

	t.Run("CountIsThreePerExpressionPlusConnectors", func(t *testing.T) {
		exprs := []Expression{
			expr("a", "=", "1", ConnectorAnd),
			expr("b", "=", "2", ConnectorOr),
			expr("c", "=", "3", ConnectorNone),
		}
		tokens := Project(exprs, nil, nil)
		if len(tokens) != 3*3+2 {
			t.Errorf("expected 11 tokens, got %d", len(tokens))
		}
	})

	t.Run("PositionsAreDense", func(t *testing.T) {
		exprs := []Expression{
			expr("a", "=", "1", ConnectorAnd),
			expr("b", "=", "2", ConnectorNone),
		}
		tokens := Project(exprs, nil, nil)
		for i, tok := range tokens {
			if tok.Position != i {
				t.Errorf("token %d: expected position %d, got %d", i, i, tok.Position)
			}
		}
		wantTypes := []TokenType{TokenField, TokenOperator, TokenValue, TokenConnector, TokenField, TokenOperator, TokenValue}
		for i, want := range wantTypes {
			if tokens[i].Type != want {
				t.Errorf("token %d: expected %s, got %s", i, want, tokens[i].Type)
			}
		}
		if tokens[3].ExpressionIndex != 0 {
			t.Errorf("expected connector to belong to expression 0, got %d", tokens[3].ExpressionIndex)
		}
		if tokens[4].ExpressionIndex != 1 {
			t.Errorf("expected second field to belong to expression 1, got %d", tokens[4].ExpressionIndex)
		}
		if tokens[3].ID != "expr-0-connector" {
			t.Errorf("expected id expr-0-connector, got %s", tokens[3].ID)
		}
	})

	t.Run("OperatorLabelPrefersSymbol", func(t *testing.T) {
		e := expr("a", "gt", "1", ConnectorNone)
		e.Condition.Operator = OperatorValue{Key: "gt", Label: "greater than", Symbol: ">"}
		tokens := Project([]Expression{e}, nil, nil)
		if tokens[1].Label != ">" {
			t.Errorf("expected '>', got '%s'", tokens[1].Label)
		}
	})
}

func TestProjectPending(t *testing.T) {
	exprs := []Expression{
		expr("a", "=", "1", ConnectorAnd),
		expr("b", "=", "2", ConnectorAnd),
	}
	field := FieldValue{Key: "status", Label: "Status"}
	op := OperatorValue{Key: "eq", Symbol: "="}

	t.Run("FieldOnly", func(t *testing.T) {
		tokens := Project(exprs, &field, nil)
		last := tokens[len(tokens)-1]
		if !last.IsPending {
			t.Fatal("expected last token to be pending")
		}
		if last.Position != 2*TokenSlotsPerExpression {
			t.Errorf("expected pending field at %d, got %d", 2*TokenSlotsPerExpression, last.Position)
		}
		if last.ExpressionIndex != -1 {
			t.Errorf("expected expression index -1, got %d", last.ExpressionIndex)
		}
	})

	t.Run("FieldAndOperator", func(t *testing.T) {
		tokens := Project(exprs, &field, &op)
		if CommittedCount(tokens) != 8 {
			t.Errorf("expected 8 committed tokens, got %d", CommittedCount(tokens))
		}
		opTok := tokens[len(tokens)-1]
		if opTok.ID != "pending-operator" || opTok.Position != 9 {
			t.Errorf("expected pending-operator at 9, got %s at %d", opTok.ID, opTok.Position)
		}
	})

	t.Run("OperatorIgnoredWithoutField", func(t *testing.T) {
		tokens := Project(exprs, nil, &op)
		if len(tokens) != 8 {
			t.Errorf("expected 8 tokens, got %d", len(tokens))
		}
	})

	t.Run("TokenAtFindsPending", func(t *testing.T) {
		tokens := Project(exprs, &field, &op)
		tok, ok := TokenAt(tokens, 8)
		if !ok || tok.ID != "pending-field" {
			t.Errorf("expected pending-field at 8, got %v %v", tok.ID, ok)
		}
		if _, ok := TokenAt(tokens, 42); ok {
			t.Error("expected no token at 42")
		}
	})
}
