package constant

import (
	"fmt"
	"strings"

	"ngdefc/packages/compiler/output"
)

const (
	constantPrefix = "_c"
	// PoolInclusionLengthThresholdForStrings is the length at which string
	// literals become worth sharing through the pool.
	PoolInclusionLengthThresholdForStrings = 50
)

// FixupExpression is a place-holder that lets the pool turn an inline
// literal into a shared constant after the fact: the first use stays inline
// until a second use (or forceShared) promotes it to a `_cN` variable.
type FixupExpression struct {
	output.ExpressionBase
	original output.OutputExpression
	resolved output.OutputExpression
	shared   bool
}

// NewFixupExpression creates a new FixupExpression
func NewFixupExpression(resolved output.OutputExpression) *FixupExpression {
	return &FixupExpression{
		ExpressionBase: output.ExpressionBase{
			Type:       resolved.GetType(),
			SourceSpan: resolved.GetSourceSpan(),
		},
		original: resolved,
		resolved: resolved,
	}
}

// VisitExpression visits the resolved expression
func (f *FixupExpression) VisitExpression(visitor output.ExpressionVisitor, context interface{}) interface{} {
	return f.resolved.VisitExpression(visitor, context)
}

// IsEquivalent checks if two expressions are equivalent
func (f *FixupExpression) IsEquivalent(e output.OutputExpression) bool {
	if other, ok := e.(*FixupExpression); ok {
		return f.resolved.IsEquivalent(other.resolved)
	}
	return f.resolved.IsEquivalent(e)
}

// IsConstant returns true
func (f *FixupExpression) IsConstant() bool {
	return true
}

// Resolved returns the current replacement expression
func (f *FixupExpression) Resolved() output.OutputExpression {
	return f.resolved
}

// Fixup points every use of this node at expression
func (f *FixupExpression) Fixup(expression output.OutputExpression) {
	f.resolved = expression
	f.shared = true
}

// ConstantPool deduplicates literals for a single compiled document.
// It must not be shared between documents.
type ConstantPool struct {
	statements               []output.OutputStatement
	literals                 map[string]*FixupExpression
	literalFactories         map[string]output.OutputExpression
	claimedNames             map[string]int
	isClosureCompilerEnabled bool
}

// NewConstantPool creates a new ConstantPool
func NewConstantPool(isClosureCompilerEnabled bool) *ConstantPool {
	return &ConstantPool{
		literals:                 make(map[string]*FixupExpression),
		literalFactories:         make(map[string]output.OutputExpression),
		claimedNames:             make(map[string]int),
		isClosureCompilerEnabled: isClosureCompilerEnabled,
	}
}

// GetConstLiteral returns an expression standing for literal. Simple
// literals come back unchanged; arrays and maps are shared on second use, or
// immediately when forceShared is set.
func (cp *ConstantPool) GetConstLiteral(literal output.OutputExpression, forceShared bool) output.OutputExpression {
	if (isLiteralExpr(literal) && !isLongStringLiteral(literal)) || isFixupExpression(literal) {
		return literal
	}
	key := KeyOf(literal)
	fixup, exists := cp.literals[key]
	newValue := !exists
	if !exists {
		fixup = NewFixupExpression(literal)
		cp.literals[key] = fixup
	}

	if (!newValue && !fixup.shared) || (newValue && forceShared) {
		name := cp.freshName()
		var value, usage output.OutputExpression
		if cp.isClosureCompilerEnabled && isLongStringLiteral(literal) {
			// Closure inlines string constants at every use; a function call keeps
			// one copy of the string.
			value = output.Fn(nil, []output.OutputStatement{output.Return(literal)}, "")
			usage = output.Call(output.Variable(name))
		} else {
			value = literal
			usage = output.Variable(name)
		}
		cp.statements = append(cp.statements, output.NewDeclareVarStmt(
			name,
			value,
			output.InferredType,
			output.StmtModifierFinal,
			nil,
		))
		fixup.Fixup(usage)
	}

	return fixup
}

// GetLiteralFactory returns a pure function building literal from its
// non-constant entries, plus those entries as the call arguments.
// Constant entries are baked into the factory.
func (cp *ConstantPool) GetLiteralFactory(literal output.OutputExpression) (output.OutputExpression, []output.OutputExpression, error) {
	switch lit := literal.(type) {
	case *output.LiteralArrayExpr:
		argumentsForKey := make([]output.OutputExpression, len(lit.Entries))
		for i, e := range lit.Entries {
			if e.IsConstant() {
				argumentsForKey[i] = e
			} else {
				argumentsForKey[i] = output.NullExpr
			}
		}
		key := KeyOf(output.LiteralArr(argumentsForKey))
		factory, args := cp.getLiteralFactory(key, lit.Entries, func(entries []output.OutputExpression) output.OutputExpression {
			return output.LiteralArr(entries)
		})
		return factory, args, nil
	case *output.LiteralMapExpr:
		keyEntries := make([]*output.LiteralMapEntry, len(lit.Entries))
		values := make([]output.OutputExpression, len(lit.Entries))
		for i, e := range lit.Entries {
			value := e.Value
			if !value.IsConstant() {
				value = output.NullExpr
			}
			keyEntries[i] = output.NewLiteralMapEntry(e.Key, value, e.Quoted)
			values[i] = e.Value
		}
		key := KeyOf(output.LiteralMap(keyEntries))
		factory, args := cp.getLiteralFactory(key, values, func(entries []output.OutputExpression) output.OutputExpression {
			mapEntries := make([]*output.LiteralMapEntry, len(entries))
			for i, value := range entries {
				mapEntries[i] = output.NewLiteralMapEntry(lit.Entries[i].Key, value, lit.Entries[i].Quoted)
			}
			return output.LiteralMap(mapEntries)
		})
		return factory, args, nil
	}
	return nil, nil, fmt.Errorf("literal factory needs an array or map literal, got %T", literal)
}

func (cp *ConstantPool) getLiteralFactory(
	key string,
	values []output.OutputExpression,
	resultMap func([]output.OutputExpression) output.OutputExpression,
) (output.OutputExpression, []output.OutputExpression) {
	literalFactoryArguments := []output.OutputExpression{}
	for _, e := range values {
		if !e.IsConstant() {
			literalFactoryArguments = append(literalFactoryArguments, e)
		}
	}
	if literalFactory, exists := cp.literalFactories[key]; exists {
		return literalFactory, literalFactoryArguments
	}

	resultExpressions := make([]output.OutputExpression, len(values))
	parameters := []*output.FnParam{}
	for i, e := range values {
		if e.IsConstant() {
			resultExpressions[i] = cp.GetConstLiteral(e, true)
		} else {
			name := fmt.Sprintf("a%d", i)
			resultExpressions[i] = output.Variable(name)
			parameters = append(parameters, output.NewFnParam(name, output.DynamicType))
		}
	}
	pureFunctionDeclaration := output.Fn(parameters, []output.OutputStatement{output.Return(resultMap(resultExpressions))}, "")
	name := cp.freshName()
	cp.statements = append(cp.statements, output.NewDeclareVarStmt(
		name,
		pureFunctionDeclaration,
		output.InferredType,
		output.StmtModifierFinal,
		nil,
	))
	literalFactory := output.Variable(name)
	cp.literalFactories[key] = literalFactory
	return literalFactory, literalFactoryArguments
}

// UniqueName produces a name unique within this pool. The prefix should be
// a constant string that does not end in a digit.
func (cp *ConstantPool) UniqueName(name string, alwaysIncludeSuffix bool) string {
	count := cp.claimedNames[name]
	result := name
	if count != 0 || alwaysIncludeSuffix {
		result = fmt.Sprintf("%s%d", name, count)
	}
	cp.claimedNames[name] = count + 1
	return result
}

func (cp *ConstantPool) freshName() string {
	return cp.UniqueName(constantPrefix, true)
}

// Statements returns the constant declarations in creation order
func (cp *ConstantPool) Statements() []output.OutputStatement {
	return cp.statements
}

// KeyOf returns a structural key for a constant expression. Two expressions
// produce the same key exactly when they would emit the same literal.
func KeyOf(expr output.OutputExpression) string {
	switch e := expr.(type) {
	case *FixupExpression:
		return KeyOf(e.original)
	case *output.LiteralExpr:
		if str, ok := e.Value.(string); ok {
			return fmt.Sprintf("%q", str)
		}
		return fmt.Sprintf("%v", e.Value)
	case *output.LiteralArrayExpr:
		entries := make([]string, len(e.Entries))
		for i, entry := range e.Entries {
			entries[i] = KeyOf(entry)
		}
		return "[" + strings.Join(entries, ",") + "]"
	case *output.LiteralMapExpr:
		entries := make([]string, len(e.Entries))
		for i, entry := range e.Entries {
			key := entry.Key
			if entry.Quoted {
				key = fmt.Sprintf("%q", key)
			}
			entries[i] = key + ":" + KeyOf(entry.Value)
		}
		return "{" + strings.Join(entries, ",") + "}"
	case *output.ExternalExpr:
		return fmt.Sprintf("import(%q, %q)", e.Value.ModuleName, e.Value.Name)
	case *output.ReadVarExpr:
		return fmt.Sprintf("read(%s)", e.Name)
	default:
		return fmt.Sprintf("<%T>", expr)
	}
}

func isLongStringLiteral(expr output.OutputExpression) bool {
	if lit, ok := expr.(*output.LiteralExpr); ok {
		if str, ok := lit.Value.(string); ok {
			return len(str) >= PoolInclusionLengthThresholdForStrings
		}
	}
	return false
}

func isLiteralExpr(expr output.OutputExpression) bool {
	_, ok := expr.(*output.LiteralExpr)
	return ok
}

func isFixupExpression(expr output.OutputExpression) bool {
	_, ok := expr.(*FixupExpression)
	return ok
}
