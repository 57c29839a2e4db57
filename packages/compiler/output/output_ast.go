package output

import (
	"ngdefc/packages/compiler/util"
)

// TypeModifier represents type modifiers
type TypeModifier int

const (
	TypeModifierNone  TypeModifier = 0
	TypeModifierConst TypeModifier = 1 << 0
)

// Type is the base interface for all types
type Type interface {
	VisitType(visitor TypeVisitor, context interface{}) interface{}
	HasModifier(modifier TypeModifier) bool
}

// BuiltinTypeName represents builtin type names
type BuiltinTypeName int

const (
	BuiltinTypeNameDynamic BuiltinTypeName = iota
	BuiltinTypeNameBool
	BuiltinTypeNameString
	BuiltinTypeNameNumber
	BuiltinTypeNameFunction
	BuiltinTypeNameInferred
	BuiltinTypeNameNone
)

// BuiltinType represents a builtin type
type BuiltinType struct {
	Name      BuiltinTypeName
	Modifiers TypeModifier
}

// NewBuiltinType creates a new BuiltinType
func NewBuiltinType(name BuiltinTypeName, modifiers TypeModifier) *BuiltinType {
	return &BuiltinType{Name: name, Modifiers: modifiers}
}

// VisitType implements Type interface
func (b *BuiltinType) VisitType(visitor TypeVisitor, context interface{}) interface{} {
	return visitor.VisitBuiltinType(b, context)
}

// HasModifier checks if the type has a modifier
func (b *BuiltinType) HasModifier(modifier TypeModifier) bool {
	return (b.Modifiers & modifier) != 0
}

// ExpressionType is a type named by an expression, e.g. `i0.ɵDirectiveDefWithMeta<...>`
type ExpressionType struct {
	Value      OutputExpression
	Modifiers  TypeModifier
	TypeParams []Type
}

// NewExpressionType creates a new ExpressionType
func NewExpressionType(value OutputExpression, modifiers TypeModifier, typeParams []Type) *ExpressionType {
	return &ExpressionType{Value: value, Modifiers: modifiers, TypeParams: typeParams}
}

// VisitType implements Type interface
func (e *ExpressionType) VisitType(visitor TypeVisitor, context interface{}) interface{} {
	return visitor.VisitExpressionType(e, context)
}

// HasModifier checks if the type has a modifier
func (e *ExpressionType) HasModifier(modifier TypeModifier) bool {
	return (e.Modifiers & modifier) != 0
}

// ArrayType represents an array type
type ArrayType struct {
	Of        Type
	Modifiers TypeModifier
}

// NewArrayType creates a new ArrayType
func NewArrayType(of Type, modifiers TypeModifier) *ArrayType {
	return &ArrayType{Of: of, Modifiers: modifiers}
}

// VisitType implements Type interface
func (a *ArrayType) VisitType(visitor TypeVisitor, context interface{}) interface{} {
	return visitor.VisitArrayType(a, context)
}

// HasModifier checks if the type has a modifier
func (a *ArrayType) HasModifier(modifier TypeModifier) bool {
	return (a.Modifiers & modifier) != 0
}

// TypeVisitor is the interface for visiting types
type TypeVisitor interface {
	VisitBuiltinType(typ *BuiltinType, context interface{}) interface{}
	VisitExpressionType(typ *ExpressionType, context interface{}) interface{}
	VisitArrayType(typ *ArrayType, context interface{}) interface{}
}

// Predefined type constants
var (
	DynamicType  = NewBuiltinType(BuiltinTypeNameDynamic, TypeModifierNone)
	InferredType = NewBuiltinType(BuiltinTypeNameInferred, TypeModifierNone)
	BoolType     = NewBuiltinType(BuiltinTypeNameBool, TypeModifierNone)
	NumberType   = NewBuiltinType(BuiltinTypeNameNumber, TypeModifierNone)
	StringType   = NewBuiltinType(BuiltinTypeNameString, TypeModifierNone)
	FunctionType = NewBuiltinType(BuiltinTypeNameFunction, TypeModifierNone)
	NoneType     = NewBuiltinType(BuiltinTypeNameNone, TypeModifierNone)
)

// UnaryOperator represents unary operators
type UnaryOperator int

const (
	UnaryOperatorMinus UnaryOperator = iota
	UnaryOperatorPlus
)

// BinaryOperator represents binary operators
type BinaryOperator int

const (
	BinaryOperatorEquals BinaryOperator = iota
	BinaryOperatorNotEquals
	BinaryOperatorAssign
	BinaryOperatorIdentical
	BinaryOperatorNotIdentical
	BinaryOperatorMinus
	BinaryOperatorPlus
	BinaryOperatorDivide
	BinaryOperatorMultiply
	BinaryOperatorModulo
	BinaryOperatorAnd
	BinaryOperatorOr
	BinaryOperatorBitwiseAnd
	BinaryOperatorLower
	BinaryOperatorLowerEquals
	BinaryOperatorBigger
	BinaryOperatorBiggerEquals
	BinaryOperatorNullishCoalesce
)

// OutputExpression represents an expression in the output AST
type OutputExpression interface {
	GetType() Type
	GetSourceSpan() *util.ParseSourceSpan
	VisitExpression(visitor ExpressionVisitor, context interface{}) interface{}
	IsEquivalent(e OutputExpression) bool
	IsConstant() bool
}

// ExpressionVisitor is the interface for visiting expressions
type ExpressionVisitor interface {
	VisitReadVarExpr(ast *ReadVarExpr, context interface{}) interface{}
	VisitReadPropExpr(ast *ReadPropExpr, context interface{}) interface{}
	VisitReadKeyExpr(ast *ReadKeyExpr, context interface{}) interface{}
	VisitLiteralExpr(ast *LiteralExpr, context interface{}) interface{}
	VisitLiteralArrayExpr(ast *LiteralArrayExpr, context interface{}) interface{}
	VisitLiteralMapExpr(ast *LiteralMapExpr, context interface{}) interface{}
	VisitExternalExpr(ast *ExternalExpr, context interface{}) interface{}
	VisitInvokeFunctionExpr(ast *InvokeFunctionExpr, context interface{}) interface{}
	VisitInstantiateExpr(ast *InstantiateExpr, context interface{}) interface{}
	VisitFunctionExpr(ast *FunctionExpr, context interface{}) interface{}
	VisitBinaryOperatorExpr(ast *BinaryOperatorExpr, context interface{}) interface{}
	VisitUnaryOperatorExpr(ast *UnaryOperatorExpr, context interface{}) interface{}
	VisitConditionalExpr(ast *ConditionalExpr, context interface{}) interface{}
	VisitNotExpr(ast *NotExpr, context interface{}) interface{}
}

// ExpressionBase is the base struct for all expressions
type ExpressionBase struct {
	Type       Type
	SourceSpan *util.ParseSourceSpan
}

// GetType returns the type of the expression
func (e *ExpressionBase) GetType() Type {
	return e.Type
}

// GetSourceSpan returns the source span
func (e *ExpressionBase) GetSourceSpan() *util.ParseSourceSpan {
	return e.SourceSpan
}

// ReadVarExpr represents a variable read expression
type ReadVarExpr struct {
	ExpressionBase
	Name string
}

// NewReadVarExpr creates a new ReadVarExpr
func NewReadVarExpr(name string, typ Type, sourceSpan *util.ParseSourceSpan) *ReadVarExpr {
	return &ReadVarExpr{ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan}, Name: name}
}

// VisitExpression implements OutputExpression interface
func (r *ReadVarExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadVarExpr(r, context)
}

// IsEquivalent checks if two expressions are equivalent
func (r *ReadVarExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*ReadVarExpr)
	return ok && r.Name == other.Name
}

// IsConstant returns false for variable reads
func (r *ReadVarExpr) IsConstant() bool { return false }

// ReadPropExpr represents `receiver.name`
type ReadPropExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Name     string
}

// NewReadPropExpr creates a new ReadPropExpr
func NewReadPropExpr(receiver OutputExpression, name string, typ Type, sourceSpan *util.ParseSourceSpan) *ReadPropExpr {
	return &ReadPropExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Receiver:       receiver,
		Name:           name,
	}
}

// VisitExpression implements OutputExpression interface
func (r *ReadPropExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadPropExpr(r, context)
}

// IsEquivalent checks if two expressions are equivalent
func (r *ReadPropExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*ReadPropExpr)
	return ok && r.Name == other.Name && r.Receiver.IsEquivalent(other.Receiver)
}

// IsConstant returns false for property reads
func (r *ReadPropExpr) IsConstant() bool { return false }

// ReadKeyExpr represents `receiver[index]`
type ReadKeyExpr struct {
	ExpressionBase
	Receiver OutputExpression
	Index    OutputExpression
}

// NewReadKeyExpr creates a new ReadKeyExpr
func NewReadKeyExpr(receiver, index OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *ReadKeyExpr {
	return &ReadKeyExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Receiver:       receiver,
		Index:          index,
	}
}

// VisitExpression implements OutputExpression interface
func (r *ReadKeyExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitReadKeyExpr(r, context)
}

// IsEquivalent checks if two expressions are equivalent
func (r *ReadKeyExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*ReadKeyExpr)
	return ok && r.Receiver.IsEquivalent(other.Receiver) && r.Index.IsEquivalent(other.Index)
}

// IsConstant returns false for keyed reads
func (r *ReadKeyExpr) IsConstant() bool { return false }

// LiteralExpr represents a literal expression
type LiteralExpr struct {
	ExpressionBase
	Value interface{} // nil | bool | int | float64 | string
}

// NewLiteralExpr creates a new LiteralExpr
func NewLiteralExpr(value interface{}, typ Type, sourceSpan *util.ParseSourceSpan) *LiteralExpr {
	return &LiteralExpr{ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan}, Value: value}
}

// VisitExpression implements OutputExpression interface
func (l *LiteralExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralExpr(l, context)
}

// IsEquivalent checks if two expressions are equivalent
func (l *LiteralExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*LiteralExpr)
	return ok && l.Value == other.Value
}

// IsConstant returns true for literals
func (l *LiteralExpr) IsConstant() bool { return true }

// Predefined expressions
var (
	NullExpr      = NewLiteralExpr(nil, nil, nil)
	TypedNullExpr = NewLiteralExpr(nil, InferredType, nil)
)

// LiteralArrayExpr represents `[a, b, c]`
type LiteralArrayExpr struct {
	ExpressionBase
	Entries []OutputExpression
}

// NewLiteralArrayExpr creates a new LiteralArrayExpr
func NewLiteralArrayExpr(entries []OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *LiteralArrayExpr {
	return &LiteralArrayExpr{ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan}, Entries: entries}
}

// VisitExpression implements OutputExpression interface
func (l *LiteralArrayExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralArrayExpr(l, context)
}

// IsEquivalent checks if two expressions are equivalent
func (l *LiteralArrayExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*LiteralArrayExpr)
	return ok && areAllEquivalent(l.Entries, other.Entries)
}

// IsConstant reports whether every entry is constant
func (l *LiteralArrayExpr) IsConstant() bool {
	for _, entry := range l.Entries {
		if !entry.IsConstant() {
			return false
		}
	}
	return true
}

// LiteralMapEntry is one `key: value` pair of a map literal
type LiteralMapEntry struct {
	Key    string
	Value  OutputExpression
	Quoted bool
}

// NewLiteralMapEntry creates a new LiteralMapEntry
func NewLiteralMapEntry(key string, value OutputExpression, quoted bool) *LiteralMapEntry {
	return &LiteralMapEntry{Key: key, Value: value, Quoted: quoted}
}

// IsEquivalent checks if two entries are equivalent
func (l *LiteralMapEntry) IsEquivalent(other *LiteralMapEntry) bool {
	return l.Key == other.Key && l.Quoted == other.Quoted && l.Value.IsEquivalent(other.Value)
}

// LiteralMapExpr represents `{a: 1, b: 2}`
type LiteralMapExpr struct {
	ExpressionBase
	Entries []*LiteralMapEntry
}

// NewLiteralMapExpr creates a new LiteralMapExpr
func NewLiteralMapExpr(entries []*LiteralMapEntry, typ Type, sourceSpan *util.ParseSourceSpan) *LiteralMapExpr {
	return &LiteralMapExpr{ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan}, Entries: entries}
}

// VisitExpression implements OutputExpression interface
func (l *LiteralMapExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitLiteralMapExpr(l, context)
}

// IsEquivalent checks if two expressions are equivalent
func (l *LiteralMapExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*LiteralMapExpr)
	if !ok || len(l.Entries) != len(other.Entries) {
		return false
	}
	for i := range l.Entries {
		if !l.Entries[i].IsEquivalent(other.Entries[i]) {
			return false
		}
	}
	return true
}

// IsConstant reports whether every value is constant
func (l *LiteralMapExpr) IsConstant() bool {
	for _, entry := range l.Entries {
		if !entry.Value.IsConstant() {
			return false
		}
	}
	return true
}

// ExternalReference names a symbol exported by another module.
// An empty ModuleName refers to a symbol in the current module.
type ExternalReference struct {
	ModuleName string
	Name       string
}

// ExternalExpr is a reference to an ExternalReference
type ExternalExpr struct {
	ExpressionBase
	Value      *ExternalReference
	TypeParams []Type
}

// NewExternalExpr creates a new ExternalExpr
func NewExternalExpr(value *ExternalReference, typ Type, typeParams []Type, sourceSpan *util.ParseSourceSpan) *ExternalExpr {
	return &ExternalExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Value:          value,
		TypeParams:     typeParams,
	}
}

// VisitExpression implements OutputExpression interface
func (e *ExternalExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitExternalExpr(e, context)
}

// IsEquivalent checks if two expressions are equivalent
func (e *ExternalExpr) IsEquivalent(other OutputExpression) bool {
	o, ok := other.(*ExternalExpr)
	return ok && e.Value.Name == o.Value.Name && e.Value.ModuleName == o.Value.ModuleName
}

// IsConstant returns false for external references
func (e *ExternalExpr) IsConstant() bool { return false }

// InvokeFunctionExpr represents `fn(args...)`
type InvokeFunctionExpr struct {
	ExpressionBase
	Fn   OutputExpression
	Args []OutputExpression
	Pure bool
}

// NewInvokeFunctionExpr creates a new InvokeFunctionExpr
func NewInvokeFunctionExpr(fn OutputExpression, args []OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan, pure bool) *InvokeFunctionExpr {
	return &InvokeFunctionExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Fn:             fn,
		Args:           args,
		Pure:           pure,
	}
}

// VisitExpression implements OutputExpression interface
func (i *InvokeFunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitInvokeFunctionExpr(i, context)
}

// IsEquivalent checks if two expressions are equivalent
func (i *InvokeFunctionExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*InvokeFunctionExpr)
	return ok && i.Pure == other.Pure && i.Fn.IsEquivalent(other.Fn) && areAllEquivalent(i.Args, other.Args)
}

// IsConstant returns false for calls
func (i *InvokeFunctionExpr) IsConstant() bool { return false }

// InstantiateExpr represents `new ClassExpr(args...)`
type InstantiateExpr struct {
	ExpressionBase
	ClassExpr OutputExpression
	Args      []OutputExpression
}

// NewInstantiateExpr creates a new InstantiateExpr
func NewInstantiateExpr(classExpr OutputExpression, args []OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *InstantiateExpr {
	return &InstantiateExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		ClassExpr:      classExpr,
		Args:           args,
	}
}

// VisitExpression implements OutputExpression interface
func (i *InstantiateExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitInstantiateExpr(i, context)
}

// IsEquivalent checks if two expressions are equivalent
func (i *InstantiateExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*InstantiateExpr)
	return ok && i.ClassExpr.IsEquivalent(other.ClassExpr) && areAllEquivalent(i.Args, other.Args)
}

// IsConstant returns false for instantiations
func (i *InstantiateExpr) IsConstant() bool { return false }

// FnParam is a function parameter
type FnParam struct {
	Name string
	Type Type
}

// NewFnParam creates a new FnParam
func NewFnParam(name string, typ Type) *FnParam {
	return &FnParam{Name: name, Type: typ}
}

// FunctionExpr represents `function name(params) { statements }`
type FunctionExpr struct {
	ExpressionBase
	Params     []*FnParam
	Statements []OutputStatement
	Name       string
}

// NewFunctionExpr creates a new FunctionExpr. An empty name emits an
// anonymous function.
func NewFunctionExpr(params []*FnParam, statements []OutputStatement, typ Type, sourceSpan *util.ParseSourceSpan, name string) *FunctionExpr {
	return &FunctionExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Params:         params,
		Statements:     statements,
		Name:           name,
	}
}

// VisitExpression implements OutputExpression interface
func (f *FunctionExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitFunctionExpr(f, context)
}

// IsEquivalent checks if two expressions are equivalent
func (f *FunctionExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*FunctionExpr)
	if !ok || f.Name != other.Name || len(f.Params) != len(other.Params) {
		return false
	}
	for i := range f.Params {
		if f.Params[i].Name != other.Params[i].Name {
			return false
		}
	}
	return areAllStatementsEquivalent(f.Statements, other.Statements)
}

// IsConstant returns false for functions
func (f *FunctionExpr) IsConstant() bool { return false }

// BinaryOperatorExpr represents a binary operator expression
type BinaryOperatorExpr struct {
	ExpressionBase
	Operator BinaryOperator
	Lhs      OutputExpression
	Rhs      OutputExpression
}

// NewBinaryOperatorExpr creates a new BinaryOperatorExpr
func NewBinaryOperatorExpr(operator BinaryOperator, lhs, rhs OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *BinaryOperatorExpr {
	exprType := typ
	if exprType == nil && lhs != nil {
		exprType = lhs.GetType()
	}
	return &BinaryOperatorExpr{
		ExpressionBase: ExpressionBase{Type: exprType, SourceSpan: sourceSpan},
		Operator:       operator,
		Lhs:            lhs,
		Rhs:            rhs,
	}
}

// VisitExpression implements OutputExpression interface
func (b *BinaryOperatorExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitBinaryOperatorExpr(b, context)
}

// IsEquivalent checks if two expressions are equivalent
func (b *BinaryOperatorExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*BinaryOperatorExpr)
	return ok && b.Operator == other.Operator && b.Lhs.IsEquivalent(other.Lhs) && b.Rhs.IsEquivalent(other.Rhs)
}

// IsConstant returns false for binary operators
func (b *BinaryOperatorExpr) IsConstant() bool { return false }

// UnaryOperatorExpr represents `-expr` or `+expr`
type UnaryOperatorExpr struct {
	ExpressionBase
	Operator UnaryOperator
	Expr     OutputExpression
}

// NewUnaryOperatorExpr creates a new UnaryOperatorExpr
func NewUnaryOperatorExpr(operator UnaryOperator, expr OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *UnaryOperatorExpr {
	return &UnaryOperatorExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Operator:       operator,
		Expr:           expr,
	}
}

// VisitExpression implements OutputExpression interface
func (u *UnaryOperatorExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitUnaryOperatorExpr(u, context)
}

// IsEquivalent checks if two expressions are equivalent
func (u *UnaryOperatorExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*UnaryOperatorExpr)
	return ok && u.Operator == other.Operator && u.Expr.IsEquivalent(other.Expr)
}

// IsConstant returns false for unary operators
func (u *UnaryOperatorExpr) IsConstant() bool { return false }

// ConditionalExpr represents `condition ? trueCase : falseCase`
type ConditionalExpr struct {
	ExpressionBase
	Condition OutputExpression
	TrueCase  OutputExpression
	FalseCase OutputExpression
}

// NewConditionalExpr creates a new ConditionalExpr
func NewConditionalExpr(condition, trueCase, falseCase OutputExpression, typ Type, sourceSpan *util.ParseSourceSpan) *ConditionalExpr {
	return &ConditionalExpr{
		ExpressionBase: ExpressionBase{Type: typ, SourceSpan: sourceSpan},
		Condition:      condition,
		TrueCase:       trueCase,
		FalseCase:      falseCase,
	}
}

// VisitExpression implements OutputExpression interface
func (c *ConditionalExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitConditionalExpr(c, context)
}

// IsEquivalent checks if two expressions are equivalent
func (c *ConditionalExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*ConditionalExpr)
	if !ok || !c.Condition.IsEquivalent(other.Condition) || !c.TrueCase.IsEquivalent(other.TrueCase) {
		return false
	}
	if c.FalseCase == nil || other.FalseCase == nil {
		return c.FalseCase == nil && other.FalseCase == nil
	}
	return c.FalseCase.IsEquivalent(other.FalseCase)
}

// IsConstant returns false for conditionals
func (c *ConditionalExpr) IsConstant() bool { return false }

// NotExpr represents `!condition`
type NotExpr struct {
	ExpressionBase
	Condition OutputExpression
}

// NewNotExpr creates a new NotExpr
func NewNotExpr(condition OutputExpression, sourceSpan *util.ParseSourceSpan) *NotExpr {
	return &NotExpr{ExpressionBase: ExpressionBase{Type: BoolType, SourceSpan: sourceSpan}, Condition: condition}
}

// VisitExpression implements OutputExpression interface
func (n *NotExpr) VisitExpression(visitor ExpressionVisitor, context interface{}) interface{} {
	return visitor.VisitNotExpr(n, context)
}

// IsEquivalent checks if two expressions are equivalent
func (n *NotExpr) IsEquivalent(e OutputExpression) bool {
	other, ok := e.(*NotExpr)
	return ok && n.Condition.IsEquivalent(other.Condition)
}

// IsConstant returns false for negations
func (n *NotExpr) IsConstant() bool { return false }

func areAllEquivalent(base, other []OutputExpression) bool {
	if len(base) != len(other) {
		return false
	}
	for i := range base {
		if !base[i].IsEquivalent(other[i]) {
			return false
		}
	}
	return true
}
