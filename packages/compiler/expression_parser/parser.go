package expression_parser

import (
	"fmt"
	"regexp"
	"strings"

	"ngdefc/packages/compiler/util"
)

// DefaultInterpolation is the default pair of interpolation markers
var DefaultInterpolation = [2]string{"{{", "}}"}

// Parser parses host binding and event handler expressions
type Parser struct {
	lexer *Lexer
}

// NewParser creates a new Parser
func NewParser(lexer *Lexer) *Parser {
	return &Parser{lexer: lexer}
}

// ParseAction parses an event handler: assignments and `;` chains are
// allowed, pipes are not.
func (p *Parser) ParseAction(input string, location string, span *util.ParseSourceSpan) *ASTWithSource {
	errors := p.checkNoInterpolation(input, location, span)
	if len(errors) > 0 {
		return NewASTWithSource(NewEmptyExpr(NewParseSpan(0, len(input))), input, location, errors)
	}
	ast, errors := p.parse(input, location, span, true)
	return NewASTWithSource(ast, input, location, errors)
}

// ParseBinding parses a property binding expression
func (p *Parser) ParseBinding(input string, location string, span *util.ParseSourceSpan) *ASTWithSource {
	errors := p.checkNoInterpolation(input, location, span)
	if len(errors) > 0 {
		return NewASTWithSource(NewEmptyExpr(NewParseSpan(0, len(input))), input, location, errors)
	}
	ast, errors := p.parse(input, location, span, false)
	return NewASTWithSource(ast, input, location, errors)
}

// ParseInterpolation parses text containing interpolation markers. It
// returns nil when input has no interpolation.
func (p *Parser) ParseInterpolation(input string, location string, span *util.ParseSourceSpan, interpolation [2]string) *ASTWithSource {
	strs, expressions, errors := p.SplitInterpolation(input, location, span, interpolation)
	if strs == nil {
		return nil
	}
	asts := make([]AST, 0, len(expressions))
	for _, expression := range expressions {
		ast, errs := p.parse(expression, location, span, false)
		asts = append(asts, ast)
		errors = append(errors, errs...)
	}
	interp := NewInterpolation(NewParseSpan(0, len(input)), strs, asts)
	return NewASTWithSource(interp, input, location, errors)
}

// SplitInterpolation splits input at the interpolation markers into the
// literal strings and the expression sources. Both are nil when there is no
// interpolation.
func (p *Parser) SplitInterpolation(input string, location string, span *util.ParseSourceSpan, interpolation [2]string) ([]string, []string, []*util.ParseError) {
	parts := splitAtInterpolation(input, interpolation)
	if len(parts) <= 1 {
		return nil, nil, nil
	}
	strs := []string{}
	expressions := []string{}
	var errors []*util.ParseError
	for i, part := range parts {
		if i%2 == 0 {
			strs = append(strs, part)
			continue
		}
		if strings.TrimSpace(part) == "" {
			errors = append(errors, util.NewParseError(span, fmt.Sprintf(
				"Parser Error: Blank expressions are not allowed in interpolated strings at column %d in [%s] in %s",
				findInterpolationErrorColumn(parts, i, interpolation), input, location)))
			part = "$implicit"
		}
		expressions = append(expressions, part)
	}
	return strs, expressions, errors
}

func (p *Parser) checkNoInterpolation(input string, location string, span *util.ParseSourceSpan) []*util.ParseError {
	parts := splitAtInterpolation(input, DefaultInterpolation)
	if len(parts) <= 1 {
		return nil
	}
	col := findInterpolationErrorColumn(parts, 1, DefaultInterpolation)
	return []*util.ParseError{util.NewParseError(span, fmt.Sprintf(
		"Parser Error: Got interpolation (%s%s) where expression was expected at column %d in [%s] in %s",
		DefaultInterpolation[0], DefaultInterpolation[1], col, input, location))}
}

// splitAtInterpolation alternates literal text (even indexes) with the
// source between markers (odd indexes).
func splitAtInterpolation(input string, interpolation [2]string) []string {
	re := regexp.MustCompile(regexp.QuoteMeta(interpolation[0]) + `([\s\S]*?)` + regexp.QuoteMeta(interpolation[1]))
	parts := []string{}
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(input, -1) {
		parts = append(parts, input[last:m[0]], input[m[2]:m[3]])
		last = m[1]
	}
	return append(parts, input[last:])
}

func findInterpolationErrorColumn(parts []string, partInErrIdx int, interpolation [2]string) int {
	errLocation := ""
	for j := 0; j < partInErrIdx; j++ {
		if j%2 == 0 {
			errLocation += parts[j]
		} else {
			errLocation += interpolation[0] + parts[j] + interpolation[1]
		}
	}
	return len(errLocation)
}

func (p *Parser) parse(input string, location string, span *util.ParseSourceSpan, parseAction bool) (AST, []*util.ParseError) {
	tokens := p.lexer.Tokenize(input)
	for _, token := range tokens {
		if token.Type == TokenTypeError {
			return NewEmptyExpr(NewParseSpan(0, len(input))), []*util.ParseError{util.NewParseError(span, token.StrValue)}
		}
	}
	ps := &parseAST{input: input, location: location, span: span, tokens: tokens, parseAction: parseAction}
	ast := ps.parseChain()
	return ast, ps.errors
}

// parseAST is a recursive descent parser over one token stream. After the
// first error it stops consuming input.
type parseAST struct {
	input       string
	location    string
	span        *util.ParseSourceSpan
	tokens      []*Token
	index       int
	parseAction bool
	errors      []*util.ParseError
}

func (p *parseAST) peek(offset int) *Token {
	i := p.index + offset
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return EOF
}

func (p *parseAST) next() *Token {
	return p.peek(0)
}

func (p *parseAST) inputIndex() int {
	if p.index < len(p.tokens) {
		return p.next().Index
	}
	return len(p.input)
}

func (p *parseAST) advance() {
	p.index++
}

func (p *parseAST) failed() bool {
	return len(p.errors) > 0
}

func (p *parseAST) error(message string) {
	where := "at the end of the expression"
	if p.index < len(p.tokens) {
		where = fmt.Sprintf("at column %d in", p.tokens[p.index].Index+1)
	}
	p.errors = append(p.errors, util.NewParseError(p.span, fmt.Sprintf(
		"Parser Error: %s %s [%s] in %s", message, where, p.input, p.location)))
	p.index = len(p.tokens)
}

func (p *parseAST) consumeOptionalCharacter(code byte) bool {
	if p.next().IsCharacter(code) {
		p.advance()
		return true
	}
	return false
}

func (p *parseAST) consumeOptionalOperator(op string) bool {
	if p.next().IsOperator(op) {
		p.advance()
		return true
	}
	return false
}

func (p *parseAST) expectCharacter(code byte) {
	if p.consumeOptionalCharacter(code) {
		return
	}
	p.error(fmt.Sprintf("Missing expected %c", code))
}

func (p *parseAST) expectIdentifierOrKeyword() string {
	n := p.next()
	if n.Type != TokenTypeIdentifier && n.Type != TokenTypeKeyword {
		p.error(fmt.Sprintf("Unexpected token %s, expected identifier or keyword", n))
		return ""
	}
	p.advance()
	return n.StrValue
}

func (p *parseAST) empty() AST {
	return NewEmptyExpr(NewParseSpan(p.inputIndex(), p.inputIndex()))
}

func (p *parseAST) parseChain() AST {
	exprs := []AST{}
	start := p.inputIndex()
	for p.index < len(p.tokens) {
		expr := p.parsePipe()
		if p.failed() {
			return p.empty()
		}
		exprs = append(exprs, expr)
		if p.consumeOptionalCharacter(';') {
			if !p.parseAction {
				p.error("Binding expression cannot contain chained expression")
				return p.empty()
			}
			for p.consumeOptionalCharacter(';') {
			}
		} else if p.index < len(p.tokens) {
			p.error(fmt.Sprintf("Unexpected token '%s'", p.next()))
			return p.empty()
		}
	}
	switch len(exprs) {
	case 0:
		return NewEmptyExpr(NewParseSpan(start, start))
	case 1:
		return exprs[0]
	}
	return NewChain(NewParseSpan(start, p.inputIndex()), exprs)
}

func (p *parseAST) parsePipe() AST {
	start := p.inputIndex()
	result := p.parseExpression()
	if p.next().IsOperator("|") {
		if p.parseAction {
			p.error("Cannot have a pipe in an action expression")
			return p.empty()
		}
		for p.consumeOptionalOperator("|") {
			name := p.expectIdentifierOrKeyword()
			args := []AST{}
			for p.consumeOptionalCharacter(':') {
				args = append(args, p.parseExpression())
			}
			result = NewBindingPipe(NewParseSpan(start, p.inputIndex()), result, name, args)
		}
	}
	return result
}

func (p *parseAST) parseExpression() AST {
	return p.parseConditional()
}

func (p *parseAST) parseConditional() AST {
	start := p.inputIndex()
	result := p.parseLogicalOr()
	if p.consumeOptionalOperator("?") {
		yes := p.parsePipe()
		if !p.consumeOptionalCharacter(':') {
			p.error(fmt.Sprintf("Conditional expression %s requires all 3 expressions", p.input[start:p.inputIndex()]))
			return p.empty()
		}
		no := p.parsePipe()
		return NewConditional(NewParseSpan(start, p.inputIndex()), result, yes, no)
	}
	return result
}

// parseBinaryLevel parses a left associative chain of the given operators
func (p *parseAST) parseBinaryLevel(operators []string, operand func() AST) AST {
	start := p.inputIndex()
	result := operand()
	for {
		matched := ""
		for _, op := range operators {
			if p.next().IsOperator(op) {
				matched = op
				break
			}
		}
		if matched == "" {
			return result
		}
		p.advance()
		right := operand()
		result = NewBinary(NewParseSpan(start, p.inputIndex()), matched, result, right)
	}
}

func (p *parseAST) parseLogicalOr() AST {
	return p.parseBinaryLevel([]string{"||"}, p.parseLogicalAnd)
}

func (p *parseAST) parseLogicalAnd() AST {
	return p.parseBinaryLevel([]string{"&&"}, p.parseEquality)
}

func (p *parseAST) parseEquality() AST {
	return p.parseBinaryLevel([]string{"==", "===", "!=", "!=="}, p.parseRelational)
}

func (p *parseAST) parseRelational() AST {
	return p.parseBinaryLevel([]string{"<", ">", "<=", ">="}, p.parseAdditive)
}

func (p *parseAST) parseAdditive() AST {
	return p.parseBinaryLevel([]string{"+", "-"}, p.parseMultiplicative)
}

func (p *parseAST) parseMultiplicative() AST {
	return p.parseBinaryLevel([]string{"*", "%", "/"}, p.parsePrefix)
}

func (p *parseAST) parsePrefix() AST {
	start := p.inputIndex()
	if n := p.next(); n.Type == TokenTypeOperator {
		switch n.StrValue {
		case "+", "-":
			p.advance()
			return NewUnary(NewParseSpan(start, p.inputIndex()), n.StrValue, p.parsePrefix())
		case "!":
			p.advance()
			return NewPrefixNot(NewParseSpan(start, p.inputIndex()), p.parsePrefix())
		}
	}
	return p.parseCallChain()
}

func (p *parseAST) parseCallChain() AST {
	start := p.inputIndex()
	result := p.parsePrimary()
	for !p.failed() {
		switch {
		case p.consumeOptionalCharacter('.'):
			result = p.parseAccessMember(result, start, false)
		case p.consumeOptionalOperator("?."):
			result = p.parseAccessMember(result, start, true)
		case p.consumeOptionalCharacter('['):
			key := p.parsePipe()
			p.expectCharacter(']')
			if p.consumeOptionalOperator("=") {
				if !p.parseAction {
					p.error("Bindings cannot contain assignments")
					return p.empty()
				}
				value := p.parseConditional()
				result = NewKeyedWrite(NewParseSpan(start, p.inputIndex()), result, key, value)
			} else {
				result = NewKeyedRead(NewParseSpan(start, p.inputIndex()), result, key)
			}
		case p.consumeOptionalCharacter('('):
			args := p.parseCallArguments()
			p.expectCharacter(')')
			result = NewCall(NewParseSpan(start, p.inputIndex()), result, args)
		case p.consumeOptionalOperator("!"):
			result = NewNonNullAssert(NewParseSpan(start, p.inputIndex()), result)
		default:
			return result
		}
	}
	return result
}

func (p *parseAST) parsePrimary() AST {
	start := p.inputIndex()
	n := p.next()
	switch {
	case p.consumeOptionalCharacter('('):
		result := p.parsePipe()
		p.expectCharacter(')')
		return result
	case n.IsKeyword("null"):
		p.advance()
		return NewLiteralPrimitive(NewParseSpan(start, p.inputIndex()), nil)
	case n.IsKeyword("undefined"):
		p.advance()
		return NewLiteralPrimitive(NewParseSpan(start, p.inputIndex()), Undefined{})
	case n.IsKeyword("true"), n.IsKeyword("false"):
		p.advance()
		return NewLiteralPrimitive(NewParseSpan(start, p.inputIndex()), n.StrValue == "true")
	case n.IsKeyword("this"):
		p.advance()
		return NewImplicitReceiver(NewParseSpan(start, p.inputIndex()))
	case p.consumeOptionalCharacter('['):
		elements := p.parseExpressionList(']')
		p.expectCharacter(']')
		return NewLiteralArray(NewParseSpan(start, p.inputIndex()), elements)
	case n.IsCharacter('{'):
		return p.parseLiteralMap()
	case n.Type == TokenTypeIdentifier:
		return p.parseAccessMember(NewImplicitReceiver(NewParseSpan(start, start)), start, false)
	case n.Type == TokenTypeNumber:
		p.advance()
		return NewLiteralPrimitive(NewParseSpan(start, p.inputIndex()), n.NumValue)
	case n.Type == TokenTypeString:
		p.advance()
		return NewLiteralPrimitive(NewParseSpan(start, p.inputIndex()), n.StrValue)
	case p.index >= len(p.tokens):
		p.error(fmt.Sprintf("Unexpected end of expression: %s", p.input))
	default:
		p.error(fmt.Sprintf("Unexpected token %s", n))
	}
	return p.empty()
}

func (p *parseAST) parseExpressionList(terminator byte) []AST {
	result := []AST{}
	if p.next().IsCharacter(terminator) {
		return result
	}
	for {
		result = append(result, p.parsePipe())
		if p.failed() || !p.consumeOptionalCharacter(',') {
			return result
		}
	}
}

func (p *parseAST) parseCallArguments() []AST {
	return p.parseExpressionList(')')
}

func (p *parseAST) parseLiteralMap() AST {
	start := p.inputIndex()
	keys := []LiteralMapKey{}
	values := []AST{}
	p.expectCharacter('{')
	if !p.consumeOptionalCharacter('}') {
		for !p.failed() {
			quoted := p.next().Type == TokenTypeString
			var key string
			if quoted {
				key = p.next().StrValue
				p.advance()
			} else {
				key = p.expectIdentifierOrKeyword()
			}
			keys = append(keys, LiteralMapKey{Key: key, Quoted: quoted})
			p.expectCharacter(':')
			values = append(values, p.parsePipe())
			if !p.consumeOptionalCharacter(',') {
				break
			}
		}
		p.expectCharacter('}')
	}
	return NewLiteralMap(NewParseSpan(start, p.inputIndex()), keys, values)
}

func (p *parseAST) parseAccessMember(receiver AST, start int, isSafe bool) AST {
	id := p.expectIdentifierOrKeyword()
	if p.failed() {
		return p.empty()
	}
	span := NewParseSpan(start, p.inputIndex())
	if isSafe {
		if p.next().IsOperator("=") {
			p.error("The '?.' operator cannot be used in the assignment")
			return p.empty()
		}
		return NewSafePropertyRead(span, receiver, id)
	}
	if p.consumeOptionalOperator("=") {
		if !p.parseAction {
			p.error("Bindings cannot contain assignments")
			return p.empty()
		}
		value := p.parseConditional()
		return NewPropertyWrite(NewParseSpan(start, p.inputIndex()), receiver, id, value)
	}
	return NewPropertyRead(span, receiver, id)
}
