package ast

import (
	"fmt"
	"strings"

	"github.com/predicated/dispatch/internal/token"
)

// Node is the base interface for all AST nodes.
type Node interface {
	TokenLiteral() string
	String() string
}

// Expression is a Node produced by the annotation parser. The constraint
// mini-language has no statements, so Expression is the only node family.
type Expression interface {
	Node
	expressionNode()
	GetToken() token.Token
}

// Identifier is a free variable reference, e.g. a parameter name or a
// nominal type name depending on context.
type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Identifier) GetToken() token.Token { return i.Token }
func (i *Identifier) String() string        { return i.Value }

// IntegerLiteral e.g. 65536
type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()       {}
func (il *IntegerLiteral) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntegerLiteral) GetToken() token.Token { return il.Token }
func (il *IntegerLiteral) String() string        { return fmt.Sprintf("%d", il.Value) }

// FloatLiteral e.g. 3.1415
type FloatLiteral struct {
	Token token.Token
	Value float64
}

func (fl *FloatLiteral) expressionNode()       {}
func (fl *FloatLiteral) TokenLiteral() string  { return fl.Token.Lexeme }
func (fl *FloatLiteral) GetToken() token.Token { return fl.Token }
func (fl *FloatLiteral) String() string        { return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", fl.Value), "0"), ".") }

// StringLiteral e.g. "blah"
type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()       {}
func (sl *StringLiteral) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLiteral) GetToken() token.Token { return sl.Token }
func (sl *StringLiteral) String() string        { return fmt.Sprintf("%q", sl.Value) }

// BooleanLiteral true / false
type BooleanLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BooleanLiteral) expressionNode()       {}
func (bl *BooleanLiteral) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BooleanLiteral) GetToken() token.Token { return bl.Token }
func (bl *BooleanLiteral) String() string        { return fmt.Sprintf("%t", bl.Value) }

// PrefixExpression e.g. -x, !ok
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()       {}
func (pe *PrefixExpression) TokenLiteral() string  { return pe.Token.Lexeme }
func (pe *PrefixExpression) GetToken() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	return "(" + pe.Operator + pe.Right.String() + ")"
}

// InfixExpression e.g. a + b, n < 65536, int | float
type InfixExpression struct {
	Token    token.Token
	Operator string
	Left     Expression
	Right    Expression
}

func (ie *InfixExpression) expressionNode()       {}
func (ie *InfixExpression) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *InfixExpression) GetToken() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// FreeVariables returns the distinct identifier names referenced anywhere in
// the expression, in first-appearance order. The constraint parser uses this
// to tell a constant expression from one that needs call-time bindings.
func FreeVariables(expr Expression) []string {
	var names []string
	seen := make(map[string]bool)
	var walk func(Expression)
	walk = func(e Expression) {
		switch n := e.(type) {
		case *Identifier:
			if !seen[n.Value] {
				seen[n.Value] = true
				names = append(names, n.Value)
			}
		case *PrefixExpression:
			walk(n.Right)
		case *InfixExpression:
			walk(n.Left)
			walk(n.Right)
		}
	}
	if expr != nil {
		walk(expr)
	}
	return names
}
