package view

import (
	"fmt"

	ep "ngdefc/packages/compiler/expression_parser"
	"ngdefc/packages/compiler/output"
	constant "ngdefc/packages/compiler/pool"
	"ngdefc/packages/compiler/render3/r3_identifiers"
)

// DefinePipeFunc declares the pipe `name` under localName in slot
type DefinePipeFunc func(name, localName string, slot int, value output.OutputExpression)

// ValueConverter rewrites literal arrays, literal maps and pipes of a
// binding expression into builtin calls that ConvertPropertyBinding lowers
// to pooled constants, pure functions and pipe bindings.
//
// A nil allocateSlot or definePipe marks a context where pipes are not
// allowed, such as host bindings.
type ValueConverter struct {
	pool                      *constant.ConstantPool
	allocateSlot              func() int
	allocatePureFunctionSlots func(numSlots int) int
	definePipe                DefinePipeFunc
	pipeBindExprs             []*ep.Call
}

// NewValueConverter creates a new ValueConverter
func NewValueConverter(
	pool *constant.ConstantPool,
	allocateSlot func() int,
	allocatePureFunctionSlots func(numSlots int) int,
	definePipe DefinePipeFunc,
) *ValueConverter {
	return &ValueConverter{
		pool:                      pool,
		allocateSlot:              allocateSlot,
		allocatePureFunctionSlots: allocatePureFunctionSlots,
		definePipe:                definePipe,
	}
}

// UpdatePipeSlotOffsets shifts the pure function slot of every pipe binding
// by the number of binding slots, once those are known.
func (v *ValueConverter) UpdatePipeSlotOffsets(bindingSlots int) {
	for _, call := range v.pipeBindExprs {
		offset := call.Args[1].(*ep.LiteralPrimitive)
		offset.Value = offset.Value.(int) + bindingSlots
	}
}

// Convert returns ast with its literals and pipes replaced
func (v *ValueConverter) Convert(ast ep.AST) (ep.AST, error) {
	switch a := ast.(type) {
	case *ep.BindingPipe:
		return v.convertPipe(a)

	case *ep.LiteralArray:
		values, err := v.convertAll(a.Expressions)
		if err != nil {
			return nil, err
		}
		return NewBuiltinFunctionCall(a.Span(), values, func(args []output.OutputExpression) (output.OutputExpression, error) {
			return v.literal(output.LiteralArr(args), args)
		}), nil

	case *ep.LiteralMap:
		values, err := v.convertAll(a.Values)
		if err != nil {
			return nil, err
		}
		keys := a.Keys
		return NewBuiltinFunctionCall(a.Span(), values, func(args []output.OutputExpression) (output.OutputExpression, error) {
			entries := make([]*output.LiteralMapEntry, len(args))
			for i, value := range args {
				entries[i] = output.NewLiteralMapEntry(keys[i].Key, value, keys[i].Quoted)
			}
			return v.literal(output.LiteralMap(entries), args)
		}), nil

	case *BuiltinFunctionCall:
		args, err := v.convertAll(a.Args)
		if err != nil {
			return nil, err
		}
		return NewBuiltinFunctionCall(a.Span(), args, a.Converter), nil

	case *ep.EmptyExpr, *ep.ImplicitReceiver, *ep.LiteralPrimitive:
		return ast, nil

	case *ep.PropertyRead:
		receiver, err := v.Convert(a.Receiver)
		if err != nil {
			return nil, err
		}
		return ep.NewPropertyRead(a.Span(), receiver, a.Name), nil

	case *ep.SafePropertyRead:
		receiver, err := v.Convert(a.Receiver)
		if err != nil {
			return nil, err
		}
		return ep.NewSafePropertyRead(a.Span(), receiver, a.Name), nil

	case *ep.PropertyWrite:
		parts, err := v.convertAll([]ep.AST{a.Receiver, a.Value})
		if err != nil {
			return nil, err
		}
		return ep.NewPropertyWrite(a.Span(), parts[0], a.Name, parts[1]), nil

	case *ep.KeyedRead:
		parts, err := v.convertAll([]ep.AST{a.Receiver, a.Key})
		if err != nil {
			return nil, err
		}
		return ep.NewKeyedRead(a.Span(), parts[0], parts[1]), nil

	case *ep.KeyedWrite:
		parts, err := v.convertAll([]ep.AST{a.Receiver, a.Key, a.Value})
		if err != nil {
			return nil, err
		}
		return ep.NewKeyedWrite(a.Span(), parts[0], parts[1], parts[2]), nil

	case *ep.Call:
		receiver, err := v.Convert(a.Receiver)
		if err != nil {
			return nil, err
		}
		args, err := v.convertAll(a.Args)
		if err != nil {
			return nil, err
		}
		return ep.NewCall(a.Span(), receiver, args), nil

	case *ep.Binary:
		parts, err := v.convertAll([]ep.AST{a.Left, a.Right})
		if err != nil {
			return nil, err
		}
		return ep.NewBinary(a.Span(), a.Operation, parts[0], parts[1]), nil

	case *ep.Unary:
		expr, err := v.Convert(a.Expr)
		if err != nil {
			return nil, err
		}
		return ep.NewUnary(a.Span(), a.Operator, expr), nil

	case *ep.PrefixNot:
		expr, err := v.Convert(a.Expression)
		if err != nil {
			return nil, err
		}
		return ep.NewPrefixNot(a.Span(), expr), nil

	case *ep.NonNullAssert:
		expr, err := v.Convert(a.Expression)
		if err != nil {
			return nil, err
		}
		return ep.NewNonNullAssert(a.Span(), expr), nil

	case *ep.Conditional:
		parts, err := v.convertAll([]ep.AST{a.Condition, a.TrueExp, a.FalseExp})
		if err != nil {
			return nil, err
		}
		return ep.NewConditional(a.Span(), parts[0], parts[1], parts[2]), nil

	case *ep.Interpolation:
		exprs, err := v.convertAll(a.Expressions)
		if err != nil {
			return nil, err
		}
		return ep.NewInterpolation(a.Span(), a.Strings, exprs), nil

	case *ep.Chain:
		exprs, err := v.convertAll(a.Expressions)
		if err != nil {
			return nil, err
		}
		return ep.NewChain(a.Span(), exprs), nil
	}
	return nil, invalidState("unknown expression %T", ast)
}

func (v *ValueConverter) convertAll(asts []ep.AST) ([]ep.AST, error) {
	result := make([]ep.AST, len(asts))
	for i, a := range asts {
		converted, err := v.Convert(a)
		if err != nil {
			return nil, err
		}
		result[i] = converted
	}
	return result, nil
}

func (v *ValueConverter) convertPipe(pipe *ep.BindingPipe) (ep.AST, error) {
	if v.definePipe == nil {
		return nil, illegalHostBinding(nil, "Unexpected pipe")
	}
	if v.allocateSlot == nil {
		return nil, illegalHostBinding(nil, "Unexpected node")
	}
	span := pipe.Span()
	slot := v.allocateSlot()
	slotPseudoLocal := fmt.Sprintf("PIPE:%d", slot)
	// one slot for the result plus one per argument
	pureFunctionSlot := v.allocatePureFunctionSlots(2 + len(pipe.Args))
	target := ep.NewPropertyRead(span, ep.NewImplicitReceiver(span), slotPseudoLocal)

	identifier, isVarLength := r3_identifiers.PipeBindFor(len(pipe.Args))
	v.definePipe(pipe.Name, slotPseudoLocal, slot, output.ImportExpr(identifier))

	args := append([]ep.AST{pipe.Exp}, pipe.Args...)
	if isVarLength {
		args = []ep.AST{ep.NewLiteralArray(span, args)}
	}
	convertedArgs, err := v.convertAll(args)
	if err != nil {
		return nil, err
	}
	callArgs := append([]ep.AST{
		ep.NewLiteralPrimitive(span, slot),
		ep.NewLiteralPrimitive(span, pureFunctionSlot),
	}, convertedArgs...)
	pipeBindExpr := ep.NewCall(span, target, callArgs)
	v.pipeBindExprs = append(v.pipeBindExprs, pipeBindExpr)
	return pipeBindExpr, nil
}

// literal pools a fully constant literal, otherwise builds it through a
// pure function so intermediate values are cached.
func (v *ValueConverter) literal(lit output.OutputExpression, values []output.OutputExpression) (output.OutputExpression, error) {
	for _, value := range values {
		if !value.IsConstant() {
			return v.literalFactory(lit)
		}
	}
	return v.pool.GetConstLiteral(lit, true), nil
}

func (v *ValueConverter) literalFactory(lit output.OutputExpression) (output.OutputExpression, error) {
	factory, factoryArgs, err := v.pool.GetLiteralFactory(lit)
	if err != nil {
		return nil, err
	}
	if len(factoryArgs) == 0 {
		return nil, invalidState("expected arguments to a literal factory function")
	}
	// one slot for the result plus one per argument
	startSlot := v.allocatePureFunctionSlots(1 + len(factoryArgs))
	identifier, isVarLength := r3_identifiers.PureFunctionFor(len(factoryArgs))
	args := []output.OutputExpression{output.Literal(startSlot), factory}
	if isVarLength {
		args = append(args, output.LiteralArr(factoryArgs))
	} else {
		args = append(args, factoryArgs...)
	}
	return output.Call(output.ImportExpr(identifier), args...), nil
}
