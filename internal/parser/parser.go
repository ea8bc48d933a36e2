package parser

import (
	"fmt"

	"github.com/predicated/dispatch/internal/ast"
	"github.com/predicated/dispatch/internal/lexer"
	"github.com/predicated/dispatch/internal/token"
)

// Operator precedence levels, lowest binds loosest.
const (
	_ int = iota
	LOWEST
	OR_PREC      // || , or
	AND_PREC     // && , and
	BITOR        // |
	BITAND       // &
	EQUALS       // == !=
	LESSGREATER  // < <= > >=
	SUM          // + -
	PRODUCT      // * / %
	POWER_PREC   // **
	PREFIX       // -x !x not x
)

var precedences = map[token.TokenType]int{
	token.OR:        OR_PREC,
	token.AND:       AND_PREC,
	token.PIPE:      BITOR,
	token.AMPERSAND: BITAND,
	token.EQ:        EQUALS,
	token.NOT_EQ:    EQUALS,
	token.LT:        LESSGREATER,
	token.GT:        LESSGREATER,
	token.LTE:       LESSGREATER,
	token.GTE:       LESSGREATER,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.ASTERISK:  PRODUCT,
	token.SLASH:     PRODUCT,
	token.PERCENT:   PRODUCT,
	token.POWER:     POWER_PREC,
}

const maxDepth = 200

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []error

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth int
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.FLOAT, p.parseFloatLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(token.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.NOT, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, t := range []token.TokenType{
		token.OR, token.AND, token.PIPE, token.AMPERSAND,
		token.EQ, token.NOT_EQ,
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT,
	} {
		p.registerInfix(t, p.parseInfixExpression)
	}
	for _, t := range []token.TokenType{token.LT, token.GT, token.LTE, token.GTE} {
		p.registerInfix(t, p.parseComparisonExpression)
	}
	// ** is right-associative
	p.registerInfix(token.POWER, p.parseRightAssocInfixExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

// Parse parses the whole input as a single expression. Trailing tokens after
// a complete expression are an error: annotation slots hold exactly one
// expression.
func Parse(input string) (ast.Expression, error) {
	p := New(lexer.New(input))
	expr := p.parseExpression(LOWEST)
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	if expr == nil {
		return nil, fmt.Errorf("empty expression")
	}
	if !p.peekTokenIs(token.EOF) {
		return nil, fmt.Errorf("unexpected trailing token %q at column %d", p.peekToken.Lexeme, p.peekToken.Column)
	}
	return expr, nil
}

func (p *Parser) Errors() []error { return p.errors }

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) addError(format string, args ...interface{}) {
	p.errors = append(p.errors, fmt.Errorf(format, args...))
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxDepth {
		p.addError("expression too complex: recursion depth limit exceeded")
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError("unexpected token %q at column %d", p.curToken.Lexeme, p.curToken.Column)
		return nil
	}
	leftExp := prefix()

	for !p.peekTokenIs(token.EOF) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
		if leftExp == nil {
			return nil
		}
	}

	return leftExp
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	val, ok := p.curToken.Literal.(int64)
	if !ok {
		p.addError("invalid integer literal %q", p.curToken.Lexeme)
		return nil
	}
	return &ast.IntegerLiteral{Token: p.curToken, Value: val}
}

func (p *Parser) parseFloatLiteral() ast.Expression {
	val, ok := p.curToken.Literal.(float64)
	if !ok {
		p.addError("invalid float literal %q", p.curToken.Lexeme)
		return nil
	}
	return &ast.FloatLiteral{Token: p.curToken, Value: val}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal.(string)}
}

func (p *Parser) parseBooleanLiteral() ast.Expression {
	return &ast.BooleanLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	op := p.curToken.Lexeme
	// Python spelling normalizes to the symbolic operator
	if p.curTokenIs(token.NOT) {
		op = "!"
	}
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: op,
	}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	if left == nil {
		return nil
	}
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: normalizeOperator(p.curToken),
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

// parseComparisonExpression handles < <= > >= with Python-style chaining:
// 3 <= a <= 17 desugars to (3 <= a) && (a <= 17). Predicates are pure, so
// evaluating the shared operand twice is safe.
func (p *Parser) parseComparisonExpression(left ast.Expression) ast.Expression {
	if left == nil {
		return nil
	}
	opTok := p.curToken
	op := opTok.Lexeme
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}

	if chain, ok := left.(*ast.InfixExpression); ok {
		if isComparisonOp(chain.Operator) {
			inner := &ast.InfixExpression{Token: opTok, Operator: op, Left: chain.Right, Right: right}
			return &ast.InfixExpression{Token: opTok, Operator: "&&", Left: chain, Right: inner}
		}
		// A third or later link in a chain arrives as the && node built by
		// the previous desugar step; extend it from its last comparison.
		if chain.Operator == "&&" {
			if last, ok := chain.Right.(*ast.InfixExpression); ok && isComparisonOp(last.Operator) {
				inner := &ast.InfixExpression{Token: opTok, Operator: op, Left: last.Right, Right: right}
				return &ast.InfixExpression{Token: opTok, Operator: "&&", Left: chain, Right: inner}
			}
		}
	}
	return &ast.InfixExpression{Token: opTok, Operator: op, Left: left, Right: right}
}

func (p *Parser) parseRightAssocInfixExpression(left ast.Expression) ast.Expression {
	if left == nil {
		return nil
	}
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Lexeme,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence - 1)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken() // consume '('
	exp := p.parseExpression(LOWEST)
	if exp == nil {
		return nil
	}
	if !p.peekTokenIs(token.RPAREN) {
		p.addError("expected ')' at column %d, got %q", p.peekToken.Column, p.peekToken.Lexeme)
		return nil
	}
	p.nextToken()
	return exp
}

// normalizeOperator maps keyword spellings (and/or) to their symbolic form
// so the evaluator only sees one spelling per operator.
func normalizeOperator(tok token.Token) string {
	switch tok.Type {
	case token.AND:
		return "&&"
	case token.OR:
		return "||"
	}
	return tok.Lexeme
}

func isComparisonOp(op string) bool {
	switch op {
	case "<", "<=", ">", ">=":
		return true
	}
	return false
}
