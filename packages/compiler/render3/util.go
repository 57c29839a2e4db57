package render3

import (
	"ngdefc/packages/compiler/output"
)

// TypeWithParameters creates an ExpressionType with numParams dynamic type
// parameters, e.g. `MyDir<any, any>` for a generic class.
func TypeWithParameters(typ output.OutputExpression, numParams int) output.Type {
	if numParams == 0 {
		return output.NewExpressionType(typ, output.TypeModifierNone, nil)
	}
	params := make([]output.Type, numParams)
	for i := range params {
		params[i] = output.DynamicType
	}
	return output.NewExpressionType(typ, output.TypeModifierNone, params)
}

// R3Reference holds the value and type side of a reference to a class
type R3Reference struct {
	Value output.OutputExpression
	Type  output.OutputExpression
}

// NewR3Reference references a class by name, using the same expression for
// its value and its type.
func NewR3Reference(name string) R3Reference {
	v := output.Variable(name)
	return R3Reference{Value: v, Type: v}
}

// R3CompiledExpression is the result of compiling one definition: the
// definition call, its type signature and any statements that must be
// emitted alongside it.
type R3CompiledExpression struct {
	Expression output.OutputExpression
	Type       output.Type
	Statements []output.OutputStatement
}

const animateSymbolPrefix = "@"

// PrepareSyntheticPropertyName returns the runtime name of an animation
// property binding
func PrepareSyntheticPropertyName(name string) string {
	return animateSymbolPrefix + name
}

// PrepareSyntheticListenerName returns the runtime name of an animation
// listener for the given phase
func PrepareSyntheticListenerName(name, phase string) string {
	return animateSymbolPrefix + name + "." + phase
}

// PrepareSyntheticListenerFunctionName returns the function-name fragment
// used for an animation listener handler
func PrepareSyntheticListenerFunctionName(name, phase string) string {
	return "animation_" + name + "_" + phase
}

// RefsToArray converts expressions to an array literal, optionally wrapped
// in a no-arg function so forward references resolve lazily.
func RefsToArray(refs []output.OutputExpression, shouldForwardDeclare bool) output.OutputExpression {
	arr := output.LiteralArr(refs)
	if shouldForwardDeclare {
		return output.Fn(nil, []output.OutputStatement{output.Return(arr)}, "")
	}
	return arr
}
