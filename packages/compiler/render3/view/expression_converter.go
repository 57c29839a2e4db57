package view

import (
	"fmt"

	ep "ngdefc/packages/compiler/expression_parser"
	"ngdefc/packages/compiler/output"
)

// EventName is the name of the event variable inside listener handlers
const EventName = "$event"

// BindingForm selects how ConvertPropertyBinding returns its value
type BindingForm int

const (
	// BindingFormGeneral stores the value in a `currVal_<id>` variable
	BindingFormGeneral BindingForm = iota
	// BindingFormTrySimple returns the expression directly when no
	// temporaries are needed
	BindingFormTrySimple
)

// LocalResolver resolves names read from the implicit receiver. A nil
// result falls back to reading the property from the receiver.
type LocalResolver interface {
	GetLocal(name string) output.OutputExpression
}

// InterpolationFunc lowers the arguments of an interpolation, laid out as
// `[count, s0, e0, s1, ..., sN]`.
type InterpolationFunc func(args []output.OutputExpression) (output.OutputExpression, error)

type defaultLocalResolver struct{}

func (defaultLocalResolver) GetLocal(name string) output.OutputExpression {
	if name == EventName {
		return output.Variable(EventName)
	}
	return nil
}

// ConvertPropertyBindingResult is a lowered binding expression
type ConvertPropertyBindingResult struct {
	Stmts       []output.OutputStatement
	CurrValExpr output.OutputExpression
}

// ConvertActionBindingResult is a lowered event handler body
type ConvertActionBindingResult struct {
	Stmts []output.OutputStatement
}

// ConvertPropertyBinding lowers a binding expression read against
// implicitReceiver. Literal arrays, maps and pipes must already have been
// replaced by the ValueConverter.
func ConvertPropertyBinding(
	localResolver LocalResolver,
	implicitReceiver output.OutputExpression,
	expression ep.AST,
	bindingID string,
	form BindingForm,
	interpolationFn InterpolationFunc,
) (*ConvertPropertyBindingResult, error) {
	if localResolver == nil {
		localResolver = defaultLocalResolver{}
	}
	c := &astConverter{
		localResolver:    localResolver,
		implicitReceiver: implicitReceiver,
		interpolationFn:  interpolationFn,
	}
	outputExpr, err := c.convert(expression)
	if err != nil {
		return nil, err
	}
	if form == BindingFormTrySimple {
		return &ConvertPropertyBindingResult{CurrValExpr: outputExpr}, nil
	}
	currValExpr := output.Variable("currVal_" + bindingID)
	stmt := output.NewDeclareVarStmt(currValExpr.Name, outputExpr, output.DynamicType, output.StmtModifierFinal, nil)
	return &ConvertPropertyBindingResult{
		Stmts:       []output.OutputStatement{stmt},
		CurrValExpr: currValExpr,
	}, nil
}

// ConvertActionBinding lowers an event handler. Each expression of a `;`
// chain becomes a statement and the last one is returned, so a handler
// returning false prevents the default action.
func ConvertActionBinding(
	localResolver LocalResolver,
	implicitReceiver output.OutputExpression,
	action ep.AST,
	interpolationFn InterpolationFunc,
) (*ConvertActionBindingResult, error) {
	if localResolver == nil {
		localResolver = defaultLocalResolver{}
	}
	c := &astConverter{
		localResolver:    localResolver,
		implicitReceiver: implicitReceiver,
		interpolationFn:  interpolationFn,
		action:           true,
	}

	expressions := []ep.AST{action}
	if chain, ok := action.(*ep.Chain); ok {
		expressions = chain.Expressions
	}
	var stmts []output.OutputStatement
	for _, e := range expressions {
		if _, empty := e.(*ep.EmptyExpr); empty {
			continue
		}
		expr, err := c.convert(e)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, output.Stmt(expr))
	}
	if n := len(stmts); n > 0 {
		last := stmts[n-1].(*output.ExpressionStatement)
		stmts[n-1] = output.Return(last.Expr)
	}
	return &ConvertActionBindingResult{Stmts: stmts}, nil
}

var binaryOperators = map[string]output.BinaryOperator{
	"&&":  output.BinaryOperatorAnd,
	"||":  output.BinaryOperatorOr,
	"==":  output.BinaryOperatorEquals,
	"!=":  output.BinaryOperatorNotEquals,
	"===": output.BinaryOperatorIdentical,
	"!==": output.BinaryOperatorNotIdentical,
	"<":   output.BinaryOperatorLower,
	"<=":  output.BinaryOperatorLowerEquals,
	">":   output.BinaryOperatorBigger,
	">=":  output.BinaryOperatorBiggerEquals,
	"+":   output.BinaryOperatorPlus,
	"-":   output.BinaryOperatorMinus,
	"*":   output.BinaryOperatorMultiply,
	"/":   output.BinaryOperatorDivide,
	"%":   output.BinaryOperatorModulo,
}

type astConverter struct {
	localResolver    LocalResolver
	implicitReceiver output.OutputExpression
	interpolationFn  InterpolationFunc
	// action allows literal arrays and maps to be built in place
	action bool
}

func (c *astConverter) convertAll(asts []ep.AST) ([]output.OutputExpression, error) {
	result := make([]output.OutputExpression, len(asts))
	for i, a := range asts {
		expr, err := c.convert(a)
		if err != nil {
			return nil, err
		}
		result[i] = expr
	}
	return result, nil
}

func (c *astConverter) convert(ast ep.AST) (output.OutputExpression, error) {
	switch a := ast.(type) {
	case *BuiltinFunctionCall:
		args, err := c.convertAll(a.Args)
		if err != nil {
			return nil, err
		}
		return a.Converter(args)

	case *ep.ImplicitReceiver:
		return c.implicitReceiver, nil

	case *ep.EmptyExpr:
		return nil, invalidState("empty expression in binding")

	case *ep.PropertyRead:
		if _, ok := a.Receiver.(*ep.ImplicitReceiver); ok {
			if local := c.localResolver.GetLocal(a.Name); local != nil {
				return local, nil
			}
		}
		receiver, err := c.convert(a.Receiver)
		if err != nil {
			return nil, err
		}
		return output.Prop(receiver, a.Name), nil

	case *ep.SafePropertyRead:
		receiver, err := c.convert(a.Receiver)
		if err != nil {
			return nil, err
		}
		isNull := output.NewBinaryOperatorExpr(output.BinaryOperatorEquals, receiver, output.NullExpr, nil, nil)
		return output.NewConditionalExpr(isNull, output.NullExpr, output.Prop(receiver, a.Name), nil, nil), nil

	case *ep.PropertyWrite:
		if _, ok := a.Receiver.(*ep.ImplicitReceiver); ok {
			if local := c.localResolver.GetLocal(a.Name); local != nil {
				return nil, fmt.Errorf("Cannot assign to a reference or variable %q", a.Name)
			}
		}
		receiver, err := c.convert(a.Receiver)
		if err != nil {
			return nil, err
		}
		value, err := c.convert(a.Value)
		if err != nil {
			return nil, err
		}
		return output.Assign(output.Prop(receiver, a.Name), value), nil

	case *ep.KeyedRead:
		receiver, err := c.convert(a.Receiver)
		if err != nil {
			return nil, err
		}
		key, err := c.convert(a.Key)
		if err != nil {
			return nil, err
		}
		return output.Key(receiver, key), nil

	case *ep.KeyedWrite:
		receiver, err := c.convert(a.Receiver)
		if err != nil {
			return nil, err
		}
		key, err := c.convert(a.Key)
		if err != nil {
			return nil, err
		}
		value, err := c.convert(a.Value)
		if err != nil {
			return nil, err
		}
		return output.Assign(output.Key(receiver, key), value), nil

	case *ep.Call:
		if isAnyCast(a) {
			return c.convert(a.Args[0])
		}
		receiver, err := c.convert(a.Receiver)
		if err != nil {
			return nil, err
		}
		args, err := c.convertAll(a.Args)
		if err != nil {
			return nil, err
		}
		return output.Call(receiver, args...), nil

	case *ep.LiteralPrimitive:
		if _, ok := a.Value.(ep.Undefined); ok {
			return output.Variable("undefined"), nil
		}
		return output.Literal(a.Value), nil

	case *ep.Binary:
		op, ok := binaryOperators[a.Operation]
		if !ok {
			return nil, fmt.Errorf("Unsupported operation %s", a.Operation)
		}
		left, err := c.convert(a.Left)
		if err != nil {
			return nil, err
		}
		right, err := c.convert(a.Right)
		if err != nil {
			return nil, err
		}
		return output.NewBinaryOperatorExpr(op, left, right, nil, nil), nil

	case *ep.Unary:
		expr, err := c.convert(a.Expr)
		if err != nil {
			return nil, err
		}
		op := output.UnaryOperatorMinus
		if a.Operator == "+" {
			op = output.UnaryOperatorPlus
		}
		return output.NewUnaryOperatorExpr(op, expr, nil, nil), nil

	case *ep.PrefixNot:
		expr, err := c.convert(a.Expression)
		if err != nil {
			return nil, err
		}
		return output.NewNotExpr(expr, nil), nil

	case *ep.NonNullAssert:
		return c.convert(a.Expression)

	case *ep.Conditional:
		condition, err := c.convert(a.Condition)
		if err != nil {
			return nil, err
		}
		trueCase, err := c.convert(a.TrueExp)
		if err != nil {
			return nil, err
		}
		falseCase, err := c.convert(a.FalseExp)
		if err != nil {
			return nil, err
		}
		return output.NewConditionalExpr(condition, trueCase, falseCase, nil, nil), nil

	case *ep.Interpolation:
		if c.interpolationFn == nil {
			return nil, illegalHostBinding(nil, "Unexpected interpolation")
		}
		args := []output.OutputExpression{output.Literal(len(a.Expressions))}
		for i, s := range a.Strings {
			args = append(args, output.Literal(s))
			if i < len(a.Expressions) {
				expr, err := c.convert(a.Expressions[i])
				if err != nil {
					return nil, err
				}
				args = append(args, expr)
			}
		}
		return c.interpolationFn(args)

	case *ep.LiteralArray:
		if !c.action {
			return nil, invalidState("literal arrays must be converted to builtin calls first")
		}
		entries, err := c.convertAll(a.Expressions)
		if err != nil {
			return nil, err
		}
		return output.LiteralArr(entries), nil

	case *ep.LiteralMap:
		if !c.action {
			return nil, invalidState("literal maps must be converted to builtin calls first")
		}
		values, err := c.convertAll(a.Values)
		if err != nil {
			return nil, err
		}
		entries := make([]*output.LiteralMapEntry, len(values))
		for i, v := range values {
			entries[i] = output.NewLiteralMapEntry(a.Keys[i].Key, v, a.Keys[i].Quoted)
		}
		return output.LiteralMap(entries), nil

	case *ep.BindingPipe:
		if c.action {
			return nil, fmt.Errorf("Cannot have a pipe in an action expression")
		}
		return nil, invalidState("pipes must be converted to builtin calls first")

	case *ep.Chain:
		return nil, invalidState("chain in a binding expression")
	}
	return nil, invalidState("unknown expression %T", ast)
}

// isAnyCast matches `$any(x)`, which only silences type checking
func isAnyCast(call *ep.Call) bool {
	read, ok := call.Receiver.(*ep.PropertyRead)
	if !ok || read.Name != "$any" || len(call.Args) != 1 {
		return false
	}
	_, implicit := read.Receiver.(*ep.ImplicitReceiver)
	return implicit
}

// BuiltinFunctionCall is an expression node whose output is computed by
// Converter from its converted arguments. The ValueConverter uses it to
// replace literals and pipes.
type BuiltinFunctionCall struct {
	*ep.Call
	Converter func(args []output.OutputExpression) (output.OutputExpression, error)
}

// NewBuiltinFunctionCall creates a new BuiltinFunctionCall
func NewBuiltinFunctionCall(
	span *ep.ParseSpan,
	args []ep.AST,
	converter func(args []output.OutputExpression) (output.OutputExpression, error),
) *BuiltinFunctionCall {
	return &BuiltinFunctionCall{Call: ep.NewCall(span, nil, args), Converter: converter}
}
