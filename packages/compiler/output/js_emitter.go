package output

import (
	"fmt"
	"strconv"
	"strings"
)

// JsEmitter turns output AST nodes into JavaScript source. External symbols
// are namespaced per module (`i0`, `i1`, ...) in order of first use, so
// emitting the same nodes twice yields identical text.
type JsEmitter struct {
	modules []string
	aliases map[string]string
}

// NewJsEmitter creates a new JsEmitter
func NewJsEmitter() *JsEmitter {
	return &JsEmitter{aliases: make(map[string]string)}
}

// EmitStatements emits statements, one per line
func (e *JsEmitter) EmitStatements(stmts []OutputStatement) string {
	ctx := NewEmitterVisitorContext(0)
	v := &jsEmitterVisitor{emitter: e}
	v.visitAllStatements(stmts, ctx)
	return ctx.ToSource()
}

// EmitExpression emits a single expression
func (e *JsEmitter) EmitExpression(expr OutputExpression) string {
	ctx := NewEmitterVisitorContext(0)
	expr.VisitExpression(&jsEmitterVisitor{emitter: e}, ctx)
	return ctx.ToSource()
}

// EmitType emits a TypeScript type annotation
func (e *JsEmitter) EmitType(typ Type) string {
	ctx := NewEmitterVisitorContext(0)
	typ.VisitType(&jsEmitterVisitor{emitter: e}, ctx)
	return ctx.ToSource()
}

// ImportHeader returns one namespace import per module referenced so far
func (e *JsEmitter) ImportHeader() string {
	lines := make([]string, len(e.modules))
	for i, module := range e.modules {
		lines[i] = fmt.Sprintf("import * as %s from %s;", e.aliases[module], EscapeIdentifier(module, false, true))
	}
	return strings.Join(lines, "\n")
}

func (e *JsEmitter) aliasFor(module string) string {
	if alias, ok := e.aliases[module]; ok {
		return alias
	}
	alias := fmt.Sprintf("i%d", len(e.modules))
	e.aliases[module] = alias
	e.modules = append(e.modules, module)
	return alias
}

type jsEmitterVisitor struct {
	emitter         *JsEmitter
	lastIfCondition OutputExpression
}

func (v *jsEmitterVisitor) getContext(context interface{}) *EmitterVisitorContext {
	return context.(*EmitterVisitorContext)
}

func (v *jsEmitterVisitor) visitAllStatements(statements []OutputStatement, ctx *EmitterVisitorContext) {
	for _, stmt := range statements {
		stmt.VisitStatement(v, ctx)
	}
}

func (v *jsEmitterVisitor) visitAllExpressions(expressions []OutputExpression, ctx *EmitterVisitorContext, separator string) {
	for i, expr := range expressions {
		if i > 0 {
			ctx.Print(separator, false)
		}
		expr.VisitExpression(v, ctx)
	}
}

func (v *jsEmitterVisitor) visitParams(params []*FnParam, ctx *EmitterVisitorContext) {
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	ctx.Print(strings.Join(names, ","), false)
}

// VisitDeclareVarStmt visits a declare variable statement
func (v *jsEmitterVisitor) VisitDeclareVarStmt(stmt *DeclareVarStmt, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print(fmt.Sprintf("var %s", stmt.Name), false)
	if stmt.Value != nil {
		ctx.Print(" = ", false)
		stmt.Value.VisitExpression(v, ctx)
	}
	ctx.Println(";")
	return nil
}

// VisitExpressionStmt visits an expression statement
func (v *jsEmitterVisitor) VisitExpressionStmt(stmt *ExpressionStatement, context interface{}) interface{} {
	ctx := v.getContext(context)
	stmt.Expr.VisitExpression(v, ctx)
	ctx.Println(";")
	return nil
}

// VisitReturnStmt visits a return statement
func (v *jsEmitterVisitor) VisitReturnStmt(stmt *ReturnStatement, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("return ", false)
	stmt.Value.VisitExpression(v, ctx)
	ctx.Println(";")
	return nil
}

// VisitIfStmt visits an if statement
func (v *jsEmitterVisitor) VisitIfStmt(stmt *IfStmt, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("if (", false)
	v.lastIfCondition = stmt.Condition
	stmt.Condition.VisitExpression(v, ctx)
	v.lastIfCondition = nil
	ctx.Print(") {", false)

	hasElseCase := len(stmt.FalseCase) > 0
	if len(stmt.TrueCase) <= 1 && !hasElseCase {
		ctx.Print(" ", false)
		v.visitAllStatements(stmt.TrueCase, ctx)
		ctx.RemoveEmptyLastLine()
		ctx.Print(" ", false)
	} else {
		ctx.Println("")
		ctx.IncIndent()
		v.visitAllStatements(stmt.TrueCase, ctx)
		ctx.DecIndent()
		if hasElseCase {
			ctx.Println("} else {")
			ctx.IncIndent()
			v.visitAllStatements(stmt.FalseCase, ctx)
			ctx.DecIndent()
		}
	}
	ctx.Println("}")
	return nil
}

// VisitClassStmt emits the static fields of a partial class as assignments
func (v *jsEmitterVisitor) VisitClassStmt(stmt *ClassStmt, context interface{}) interface{} {
	ctx := v.getContext(context)
	for _, field := range stmt.Fields {
		if field.Initializer == nil {
			continue
		}
		if field.Modifiers&StmtModifierStatic != 0 {
			ctx.Print(fmt.Sprintf("%s.%s = ", stmt.Name, field.Name), false)
		} else {
			ctx.Print(fmt.Sprintf("%s.prototype.%s = ", stmt.Name, field.Name), false)
		}
		field.Initializer.VisitExpression(v, ctx)
		ctx.Println(";")
	}
	return nil
}

// VisitReadVarExpr visits a variable read
func (v *jsEmitterVisitor) VisitReadVarExpr(ast *ReadVarExpr, context interface{}) interface{} {
	v.getContext(context).Print(ast.Name, false)
	return nil
}

// VisitReadPropExpr visits a property read
func (v *jsEmitterVisitor) VisitReadPropExpr(ast *ReadPropExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ast.Receiver.VisitExpression(v, ctx)
	ctx.Print(".", false)
	ctx.Print(ast.Name, false)
	return nil
}

// VisitReadKeyExpr visits a keyed read
func (v *jsEmitterVisitor) VisitReadKeyExpr(ast *ReadKeyExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ast.Receiver.VisitExpression(v, ctx)
	ctx.Print("[", false)
	ast.Index.VisitExpression(v, ctx)
	ctx.Print("]", false)
	return nil
}

// VisitLiteralExpr visits a literal expression
func (v *jsEmitterVisitor) VisitLiteralExpr(ast *LiteralExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	switch val := ast.Value.(type) {
	case nil:
		ctx.Print("null", false)
	case string:
		ctx.Print(EscapeIdentifier(val, false, true), false)
	case float64:
		ctx.Print(strconv.FormatFloat(val, 'f', -1, 64), false)
	default:
		ctx.Print(fmt.Sprintf("%v", val), false)
	}
	return nil
}

// VisitLiteralArrayExpr visits a literal array expression
func (v *jsEmitterVisitor) VisitLiteralArrayExpr(ast *LiteralArrayExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("[", false)
	v.visitAllExpressions(ast.Entries, ctx, ",")
	ctx.Print("]", false)
	return nil
}

// VisitLiteralMapExpr visits a literal map expression
func (v *jsEmitterVisitor) VisitLiteralMapExpr(ast *LiteralMapExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("{", false)
	for i, entry := range ast.Entries {
		if i > 0 {
			ctx.Print(",", false)
		}
		ctx.Print(EscapeIdentifier(entry.Key, false, entry.Quoted)+":", false)
		entry.Value.VisitExpression(v, ctx)
	}
	ctx.Print("}", false)
	return nil
}

// VisitExternalExpr prints module-qualified references
func (v *jsEmitterVisitor) VisitExternalExpr(ast *ExternalExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	if ast.Value.ModuleName != "" {
		ctx.Print(v.emitter.aliasFor(ast.Value.ModuleName)+".", false)
	}
	ctx.Print(ast.Value.Name, false)
	if len(ast.TypeParams) > 0 {
		ctx.Print("<", false)
		for i, param := range ast.TypeParams {
			if i > 0 {
				ctx.Print(", ", false)
			}
			param.VisitType(v, ctx)
		}
		ctx.Print(">", false)
	}
	return nil
}

// VisitInvokeFunctionExpr visits a call
func (v *jsEmitterVisitor) VisitInvokeFunctionExpr(ast *InvokeFunctionExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	_, shouldParenthesize := ast.Fn.(*FunctionExpr)
	if shouldParenthesize {
		ctx.Print("(", false)
	}
	ast.Fn.VisitExpression(v, ctx)
	if shouldParenthesize {
		ctx.Print(")", false)
	}
	ctx.Print("(", false)
	v.visitAllExpressions(ast.Args, ctx, ",")
	ctx.Print(")", false)
	return nil
}

// VisitInstantiateExpr visits a `new` expression
func (v *jsEmitterVisitor) VisitInstantiateExpr(ast *InstantiateExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("new ", false)
	ast.ClassExpr.VisitExpression(v, ctx)
	ctx.Print("(", false)
	v.visitAllExpressions(ast.Args, ctx, ",")
	ctx.Print(")", false)
	return nil
}

// VisitFunctionExpr visits a function expression
func (v *jsEmitterVisitor) VisitFunctionExpr(ast *FunctionExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	namePart := ""
	if ast.Name != "" {
		namePart = " " + ast.Name
	}
	ctx.Print(fmt.Sprintf("function%s(", namePart), false)
	v.visitParams(ast.Params, ctx)
	ctx.Println(") {")
	ctx.IncIndent()
	v.visitAllStatements(ast.Statements, ctx)
	ctx.DecIndent()
	ctx.Print("}", false)
	return nil
}

// VisitBinaryOperatorExpr visits a binary operator expression
func (v *jsEmitterVisitor) VisitBinaryOperatorExpr(ast *BinaryOperatorExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	operator, ok := binaryOperators[ast.Operator]
	if !ok {
		panic(fmt.Sprintf("Unknown operator %d", ast.Operator))
	}

	parens := OutputExpression(ast) != v.lastIfCondition
	if parens {
		ctx.Print("(", false)
	}
	ast.Lhs.VisitExpression(v, ctx)
	ctx.Print(" "+operator+" ", false)
	ast.Rhs.VisitExpression(v, ctx)
	if parens {
		ctx.Print(")", false)
	}
	return nil
}

// VisitUnaryOperatorExpr visits a unary operator expression
func (v *jsEmitterVisitor) VisitUnaryOperatorExpr(ast *UnaryOperatorExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	opStr := "-"
	if ast.Operator == UnaryOperatorPlus {
		opStr = "+"
	}
	ctx.Print("(", false)
	ctx.Print(opStr, false)
	ast.Expr.VisitExpression(v, ctx)
	ctx.Print(")", false)
	return nil
}

// VisitConditionalExpr visits a conditional expression
func (v *jsEmitterVisitor) VisitConditionalExpr(ast *ConditionalExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("(", false)
	ast.Condition.VisitExpression(v, ctx)
	ctx.Print("? ", false)
	ast.TrueCase.VisitExpression(v, ctx)
	ctx.Print(": ", false)
	if ast.FalseCase != nil {
		ast.FalseCase.VisitExpression(v, ctx)
	} else {
		ctx.Print("null", false)
	}
	ctx.Print(")", false)
	return nil
}

// VisitNotExpr visits a not expression
func (v *jsEmitterVisitor) VisitNotExpr(ast *NotExpr, context interface{}) interface{} {
	ctx := v.getContext(context)
	ctx.Print("!", false)
	ast.Condition.VisitExpression(v, ctx)
	return nil
}

// VisitBuiltinType prints TypeScript builtin names
func (v *jsEmitterVisitor) VisitBuiltinType(typ *BuiltinType, context interface{}) interface{} {
	ctx := v.getContext(context)
	switch typ.Name {
	case BuiltinTypeNameBool:
		ctx.Print("boolean", false)
	case BuiltinTypeNameString:
		ctx.Print("string", false)
	case BuiltinTypeNameNumber:
		ctx.Print("number", false)
	case BuiltinTypeNameFunction:
		ctx.Print("Function", false)
	case BuiltinTypeNameNone:
		ctx.Print("never", false)
	default:
		ctx.Print("any", false)
	}
	return nil
}

// VisitExpressionType prints the expression followed by its type parameters
func (v *jsEmitterVisitor) VisitExpressionType(typ *ExpressionType, context interface{}) interface{} {
	ctx := v.getContext(context)
	typ.Value.VisitExpression(v, ctx)
	if len(typ.TypeParams) > 0 {
		ctx.Print("<", false)
		for i, param := range typ.TypeParams {
			if i > 0 {
				ctx.Print(", ", false)
			}
			param.VisitType(v, ctx)
		}
		ctx.Print(">", false)
	}
	return nil
}

// VisitArrayType prints `T[]`
func (v *jsEmitterVisitor) VisitArrayType(typ *ArrayType, context interface{}) interface{} {
	ctx := v.getContext(context)
	typ.Of.VisitType(v, ctx)
	ctx.Print("[]", false)
	return nil
}
