package output

import (
	"ngdefc/packages/compiler/util"
)

// StmtModifier represents statement modifiers
type StmtModifier int

const (
	StmtModifierNone     StmtModifier = 0
	StmtModifierFinal    StmtModifier = 1 << 0
	StmtModifierExported StmtModifier = 1 << 1
	StmtModifierStatic   StmtModifier = 1 << 2
)

// OutputStatement is a statement in the output AST
type OutputStatement interface {
	VisitStatement(visitor StatementVisitor, context interface{}) interface{}
	IsEquivalent(stmt OutputStatement) bool
	HasModifier(modifier StmtModifier) bool
}

// StatementVisitor is the interface for visiting statements
type StatementVisitor interface {
	VisitDeclareVarStmt(stmt *DeclareVarStmt, context interface{}) interface{}
	VisitExpressionStmt(stmt *ExpressionStatement, context interface{}) interface{}
	VisitReturnStmt(stmt *ReturnStatement, context interface{}) interface{}
	VisitIfStmt(stmt *IfStmt, context interface{}) interface{}
	VisitClassStmt(stmt *ClassStmt, context interface{}) interface{}
}

// StatementBase holds the modifiers and span shared by all statements
type StatementBase struct {
	Modifiers  StmtModifier
	SourceSpan *util.ParseSourceSpan
}

// HasModifier checks if the statement has a modifier
func (s *StatementBase) HasModifier(modifier StmtModifier) bool {
	return (s.Modifiers & modifier) != 0
}

// DeclareVarStmt represents `var name = value;` (or const when final)
type DeclareVarStmt struct {
	StatementBase
	Name  string
	Value OutputExpression
	Type  Type
}

// NewDeclareVarStmt creates a new DeclareVarStmt. Value may be nil.
func NewDeclareVarStmt(name string, value OutputExpression, typ Type, modifiers StmtModifier, sourceSpan *util.ParseSourceSpan) *DeclareVarStmt {
	return &DeclareVarStmt{
		StatementBase: StatementBase{Modifiers: modifiers, SourceSpan: sourceSpan},
		Name:          name,
		Value:         value,
		Type:          typ,
	}
}

// VisitStatement implements OutputStatement interface
func (d *DeclareVarStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitDeclareVarStmt(d, context)
}

// IsEquivalent checks if two statements are equivalent
func (d *DeclareVarStmt) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*DeclareVarStmt)
	if !ok || d.Name != other.Name {
		return false
	}
	if d.Value == nil || other.Value == nil {
		return d.Value == nil && other.Value == nil
	}
	return d.Value.IsEquivalent(other.Value)
}

// ExpressionStatement represents `expr;`
type ExpressionStatement struct {
	StatementBase
	Expr OutputExpression
}

// NewExpressionStatement creates a new ExpressionStatement
func NewExpressionStatement(expr OutputExpression, sourceSpan *util.ParseSourceSpan) *ExpressionStatement {
	return &ExpressionStatement{StatementBase: StatementBase{SourceSpan: sourceSpan}, Expr: expr}
}

// VisitStatement implements OutputStatement interface
func (e *ExpressionStatement) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitExpressionStmt(e, context)
}

// IsEquivalent checks if two statements are equivalent
func (e *ExpressionStatement) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*ExpressionStatement)
	return ok && e.Expr.IsEquivalent(other.Expr)
}

// ReturnStatement represents `return value;`
type ReturnStatement struct {
	StatementBase
	Value OutputExpression
}

// NewReturnStatement creates a new ReturnStatement
func NewReturnStatement(value OutputExpression, sourceSpan *util.ParseSourceSpan) *ReturnStatement {
	return &ReturnStatement{StatementBase: StatementBase{SourceSpan: sourceSpan}, Value: value}
}

// VisitStatement implements OutputStatement interface
func (r *ReturnStatement) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitReturnStmt(r, context)
}

// IsEquivalent checks if two statements are equivalent
func (r *ReturnStatement) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*ReturnStatement)
	return ok && r.Value.IsEquivalent(other.Value)
}

// IfStmt represents `if (condition) { trueCase } else { falseCase }`
type IfStmt struct {
	StatementBase
	Condition OutputExpression
	TrueCase  []OutputStatement
	FalseCase []OutputStatement
}

// NewIfStmt creates a new IfStmt
func NewIfStmt(condition OutputExpression, trueCase, falseCase []OutputStatement, sourceSpan *util.ParseSourceSpan) *IfStmt {
	return &IfStmt{
		StatementBase: StatementBase{SourceSpan: sourceSpan},
		Condition:     condition,
		TrueCase:      trueCase,
		FalseCase:     falseCase,
	}
}

// VisitStatement implements OutputStatement interface
func (i *IfStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitIfStmt(i, context)
}

// IsEquivalent checks if two statements are equivalent
func (i *IfStmt) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*IfStmt)
	return ok && i.Condition.IsEquivalent(other.Condition) &&
		areAllStatementsEquivalent(i.TrueCase, other.TrueCase) &&
		areAllStatementsEquivalent(i.FalseCase, other.FalseCase)
}

// ClassField is a field of a ClassStmt
type ClassField struct {
	Name        string
	Type        Type
	Modifiers   StmtModifier
	Initializer OutputExpression
}

// NewClassField creates a new ClassField
func NewClassField(name string, typ Type, modifiers StmtModifier, initializer OutputExpression) *ClassField {
	return &ClassField{Name: name, Type: typ, Modifiers: modifiers, Initializer: initializer}
}

// ClassStmt is a partial class declaration. The emitter writes it as a set
// of static field assignments so it can be merged with the real class.
type ClassStmt struct {
	StatementBase
	Name   string
	Fields []*ClassField
}

// NewClassStmt creates a new ClassStmt
func NewClassStmt(name string, fields []*ClassField, modifiers StmtModifier, sourceSpan *util.ParseSourceSpan) *ClassStmt {
	return &ClassStmt{
		StatementBase: StatementBase{Modifiers: modifiers, SourceSpan: sourceSpan},
		Name:          name,
		Fields:        fields,
	}
}

// VisitStatement implements OutputStatement interface
func (c *ClassStmt) VisitStatement(visitor StatementVisitor, context interface{}) interface{} {
	return visitor.VisitClassStmt(c, context)
}

// IsEquivalent checks if two statements are equivalent
func (c *ClassStmt) IsEquivalent(stmt OutputStatement) bool {
	other, ok := stmt.(*ClassStmt)
	if !ok || c.Name != other.Name || len(c.Fields) != len(other.Fields) {
		return false
	}
	for i, f := range c.Fields {
		o := other.Fields[i]
		if f.Name != o.Name || f.Modifiers != o.Modifiers {
			return false
		}
		if (f.Initializer == nil) != (o.Initializer == nil) {
			return false
		}
		if f.Initializer != nil && !f.Initializer.IsEquivalent(o.Initializer) {
			return false
		}
	}
	return true
}

func areAllStatementsEquivalent(base, other []OutputStatement) bool {
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
