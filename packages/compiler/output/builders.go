package output

// Shorthand constructors used by the definition compiler. They mirror the
// o.variable / o.literal / o.importExpr helpers of the upstream compiler.

// Variable returns a read of the named variable
func Variable(name string) *ReadVarExpr {
	return NewReadVarExpr(name, nil, nil)
}

// Literal wraps a primitive value
func Literal(value interface{}) *LiteralExpr {
	return NewLiteralExpr(value, InferredType, nil)
}

// LiteralArr builds an array literal
func LiteralArr(values []OutputExpression) *LiteralArrayExpr {
	return NewLiteralArrayExpr(values, nil, nil)
}

// LiteralMap builds a map literal
func LiteralMap(entries []*LiteralMapEntry) *LiteralMapExpr {
	return NewLiteralMapExpr(entries, nil, nil)
}

// ImportExpr references an external symbol
func ImportExpr(ref *ExternalReference, typeParams ...Type) *ExternalExpr {
	return NewExternalExpr(ref, nil, typeParams, nil)
}

// Fn builds a function expression
func Fn(params []*FnParam, body []OutputStatement, name string) *FunctionExpr {
	return NewFunctionExpr(params, body, InferredType, nil, name)
}

// Call invokes fn with args
func Call(fn OutputExpression, args ...OutputExpression) *InvokeFunctionExpr {
	if args == nil {
		args = []OutputExpression{}
	}
	return NewInvokeFunctionExpr(fn, args, nil, nil, false)
}

// Instantiate builds `new cls(args...)`
func Instantiate(cls OutputExpression, args ...OutputExpression) *InstantiateExpr {
	if args == nil {
		args = []OutputExpression{}
	}
	return NewInstantiateExpr(cls, args, nil, nil)
}

// Prop reads receiver.name
func Prop(receiver OutputExpression, name string) *ReadPropExpr {
	return NewReadPropExpr(receiver, name, nil, nil)
}

// Key reads receiver[index]
func Key(receiver, index OutputExpression) *ReadKeyExpr {
	return NewReadKeyExpr(receiver, index, nil, nil)
}

// Assign builds `target = value`
func Assign(target, value OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAssign, target, value, nil, nil)
}

// And builds `lhs && rhs`
func And(lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorAnd, lhs, rhs, nil, nil)
}

// Or builds `lhs || rhs`
func Or(lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorOr, lhs, rhs, nil, nil)
}

// Plus builds `lhs + rhs`
func Plus(lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorPlus, lhs, rhs, nil, nil)
}

// BitwiseAnd builds `lhs & rhs`
func BitwiseAnd(lhs, rhs OutputExpression) *BinaryOperatorExpr {
	return NewBinaryOperatorExpr(BinaryOperatorBitwiseAnd, lhs, rhs, nil, nil)
}

// Stmt turns an expression into a statement
func Stmt(expr OutputExpression) *ExpressionStatement {
	return NewExpressionStatement(expr, nil)
}

// Return builds `return value;`
func Return(value OutputExpression) *ReturnStatement {
	return NewReturnStatement(value, nil)
}

// TypeOf builds an ExpressionType
func TypeOf(expr OutputExpression, typeParams ...Type) *ExpressionType {
	return NewExpressionType(expr, TypeModifierNone, typeParams)
}
