package expression_parser

import (
	"fmt"
	"strings"

	"ngdefc/packages/compiler/util"
)

// ParseSpan is a [Start, End) byte range within an expression
type ParseSpan struct {
	Start int
	End   int
}

// NewParseSpan creates a new ParseSpan
func NewParseSpan(start, end int) *ParseSpan {
	return &ParseSpan{Start: start, End: end}
}

// AST is the base interface for all expression nodes
type AST interface {
	Span() *ParseSpan
	Visit(visitor AstVisitor, context interface{}) interface{}
}

type astBase struct {
	span *ParseSpan
}

// Span returns the parse span
func (a *astBase) Span() *ParseSpan {
	return a.span
}

// EmptyExpr is an empty expression
type EmptyExpr struct{ astBase }

// NewEmptyExpr creates a new EmptyExpr
func NewEmptyExpr(span *ParseSpan) *EmptyExpr {
	return &EmptyExpr{astBase{span}}
}

func (e *EmptyExpr) Visit(visitor AstVisitor, context interface{}) interface{} {
	return nil
}

// ImplicitReceiver is the component context a bare name is read from
type ImplicitReceiver struct{ astBase }

// NewImplicitReceiver creates a new ImplicitReceiver
func NewImplicitReceiver(span *ParseSpan) *ImplicitReceiver {
	return &ImplicitReceiver{astBase{span}}
}

func (i *ImplicitReceiver) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitImplicitReceiver(i, context)
}

// Chain is a `;` separated list of action expressions
type Chain struct {
	astBase
	Expressions []AST
}

// NewChain creates a new Chain
func NewChain(span *ParseSpan, expressions []AST) *Chain {
	return &Chain{astBase{span}, expressions}
}

func (c *Chain) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitChain(c, context)
}

// Conditional is `condition ? trueExp : falseExp`
type Conditional struct {
	astBase
	Condition AST
	TrueExp   AST
	FalseExp  AST
}

// NewConditional creates a new Conditional
func NewConditional(span *ParseSpan, condition, trueExp, falseExp AST) *Conditional {
	return &Conditional{astBase{span}, condition, trueExp, falseExp}
}

func (c *Conditional) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitConditional(c, context)
}

// PropertyRead is `receiver.name`
type PropertyRead struct {
	astBase
	Receiver AST
	Name     string
}

// NewPropertyRead creates a new PropertyRead
func NewPropertyRead(span *ParseSpan, receiver AST, name string) *PropertyRead {
	return &PropertyRead{astBase{span}, receiver, name}
}

func (p *PropertyRead) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitPropertyRead(p, context)
}

// PropertyWrite is `receiver.name = value`
type PropertyWrite struct {
	astBase
	Receiver AST
	Name     string
	Value    AST
}

// NewPropertyWrite creates a new PropertyWrite
func NewPropertyWrite(span *ParseSpan, receiver AST, name string, value AST) *PropertyWrite {
	return &PropertyWrite{astBase{span}, receiver, name, value}
}

func (p *PropertyWrite) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitPropertyWrite(p, context)
}

// SafePropertyRead is `receiver?.name`
type SafePropertyRead struct {
	astBase
	Receiver AST
	Name     string
}

// NewSafePropertyRead creates a new SafePropertyRead
func NewSafePropertyRead(span *ParseSpan, receiver AST, name string) *SafePropertyRead {
	return &SafePropertyRead{astBase{span}, receiver, name}
}

func (s *SafePropertyRead) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitSafePropertyRead(s, context)
}

// KeyedRead is `receiver[key]`
type KeyedRead struct {
	astBase
	Receiver AST
	Key      AST
}

// NewKeyedRead creates a new KeyedRead
func NewKeyedRead(span *ParseSpan, receiver, key AST) *KeyedRead {
	return &KeyedRead{astBase{span}, receiver, key}
}

func (k *KeyedRead) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitKeyedRead(k, context)
}

// KeyedWrite is `receiver[key] = value`
type KeyedWrite struct {
	astBase
	Receiver AST
	Key      AST
	Value    AST
}

// NewKeyedWrite creates a new KeyedWrite
func NewKeyedWrite(span *ParseSpan, receiver, key, value AST) *KeyedWrite {
	return &KeyedWrite{astBase{span}, receiver, key, value}
}

func (k *KeyedWrite) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitKeyedWrite(k, context)
}

// BindingPipe is `exp | name:arg1:arg2`
type BindingPipe struct {
	astBase
	Exp  AST
	Name string
	Args []AST
}

// NewBindingPipe creates a new BindingPipe
func NewBindingPipe(span *ParseSpan, exp AST, name string, args []AST) *BindingPipe {
	return &BindingPipe{astBase{span}, exp, name, args}
}

func (b *BindingPipe) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitPipe(b, context)
}

// LiteralPrimitive holds a string, float64, bool, nil, or Undefined
type LiteralPrimitive struct {
	astBase
	Value interface{}
}

// Undefined is the value of the `undefined` keyword
type Undefined struct{}

// NewLiteralPrimitive creates a new LiteralPrimitive
func NewLiteralPrimitive(span *ParseSpan, value interface{}) *LiteralPrimitive {
	return &LiteralPrimitive{astBase{span}, value}
}

func (l *LiteralPrimitive) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralPrimitive(l, context)
}

// LiteralArray is `[a, b]`
type LiteralArray struct {
	astBase
	Expressions []AST
}

// NewLiteralArray creates a new LiteralArray
func NewLiteralArray(span *ParseSpan, expressions []AST) *LiteralArray {
	return &LiteralArray{astBase{span}, expressions}
}

func (l *LiteralArray) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralArray(l, context)
}

// LiteralMapKey is a map key and whether it was written quoted
type LiteralMapKey struct {
	Key    string
	Quoted bool
}

// LiteralMap is `{a: 1, 'b': 2}`
type LiteralMap struct {
	astBase
	Keys   []LiteralMapKey
	Values []AST
}

// NewLiteralMap creates a new LiteralMap
func NewLiteralMap(span *ParseSpan, keys []LiteralMapKey, values []AST) *LiteralMap {
	return &LiteralMap{astBase{span}, keys, values}
}

func (l *LiteralMap) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralMap(l, context)
}

// Interpolation is text with embedded `{{ }}` expressions. Strings has one
// more element than Expressions.
type Interpolation struct {
	astBase
	Strings     []string
	Expressions []AST
}

// NewInterpolation creates a new Interpolation
func NewInterpolation(span *ParseSpan, strs []string, expressions []AST) *Interpolation {
	return &Interpolation{astBase{span}, strs, expressions}
}

func (i *Interpolation) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitInterpolation(i, context)
}

// Binary is `left op right`
type Binary struct {
	astBase
	Operation string
	Left      AST
	Right     AST
}

// NewBinary creates a new Binary
func NewBinary(span *ParseSpan, operation string, left, right AST) *Binary {
	return &Binary{astBase{span}, operation, left, right}
}

func (b *Binary) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitBinary(b, context)
}

// Unary is `-expr` or `+expr`
type Unary struct {
	astBase
	Operator string
	Expr     AST
}

// NewUnary creates a new Unary
func NewUnary(span *ParseSpan, operator string, expr AST) *Unary {
	return &Unary{astBase{span}, operator, expr}
}

func (u *Unary) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitUnary(u, context)
}

// PrefixNot is `!expr`
type PrefixNot struct {
	astBase
	Expression AST
}

// NewPrefixNot creates a new PrefixNot
func NewPrefixNot(span *ParseSpan, expression AST) *PrefixNot {
	return &PrefixNot{astBase{span}, expression}
}

func (p *PrefixNot) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitPrefixNot(p, context)
}

// NonNullAssert is `expr!`
type NonNullAssert struct {
	astBase
	Expression AST
}

// NewNonNullAssert creates a new NonNullAssert
func NewNonNullAssert(span *ParseSpan, expression AST) *NonNullAssert {
	return &NonNullAssert{astBase{span}, expression}
}

func (n *NonNullAssert) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitNonNullAssert(n, context)
}

// Call is `receiver(args...)`
type Call struct {
	astBase
	Receiver AST
	Args     []AST
}

// NewCall creates a new Call
func NewCall(span *ParseSpan, receiver AST, args []AST) *Call {
	return &Call{astBase{span}, receiver, args}
}

func (c *Call) Visit(visitor AstVisitor, context interface{}) interface{} {
	return visitor.VisitCall(c, context)
}

// ASTWithSource is a parsed expression with its source text and any errors
// collected while parsing it.
type ASTWithSource struct {
	AST      AST
	Source   string
	Location string
	Errors   []*util.ParseError
}

// NewASTWithSource creates a new ASTWithSource
func NewASTWithSource(ast AST, source string, location string, errors []*util.ParseError) *ASTWithSource {
	return &ASTWithSource{AST: ast, Source: source, Location: location, Errors: errors}
}

// Err joins the parse errors into a single error, or returns nil
func (a *ASTWithSource) Err() error {
	if len(a.Errors) == 0 {
		return nil
	}
	msgs := make([]string, len(a.Errors))
	for i, e := range a.Errors {
		msgs[i] = e.Error()
	}
	return util.NewCompileError(util.ErrParse, a.Errors[0].Span, "%s", strings.Join(msgs, "; "))
}

func (a *ASTWithSource) String() string {
	return fmt.Sprintf("%s in %s", a.Source, a.Location)
}

// AstVisitor is the interface for visiting expression nodes
type AstVisitor interface {
	VisitBinary(ast *Binary, context interface{}) interface{}
	VisitUnary(ast *Unary, context interface{}) interface{}
	VisitChain(ast *Chain, context interface{}) interface{}
	VisitConditional(ast *Conditional, context interface{}) interface{}
	VisitImplicitReceiver(ast *ImplicitReceiver, context interface{}) interface{}
	VisitInterpolation(ast *Interpolation, context interface{}) interface{}
	VisitKeyedRead(ast *KeyedRead, context interface{}) interface{}
	VisitKeyedWrite(ast *KeyedWrite, context interface{}) interface{}
	VisitLiteralArray(ast *LiteralArray, context interface{}) interface{}
	VisitLiteralMap(ast *LiteralMap, context interface{}) interface{}
	VisitLiteralPrimitive(ast *LiteralPrimitive, context interface{}) interface{}
	VisitPipe(ast *BindingPipe, context interface{}) interface{}
	VisitPrefixNot(ast *PrefixNot, context interface{}) interface{}
	VisitNonNullAssert(ast *NonNullAssert, context interface{}) interface{}
	VisitPropertyRead(ast *PropertyRead, context interface{}) interface{}
	VisitPropertyWrite(ast *PropertyWrite, context interface{}) interface{}
	VisitSafePropertyRead(ast *SafePropertyRead, context interface{}) interface{}
	VisitCall(ast *Call, context interface{}) interface{}
}
