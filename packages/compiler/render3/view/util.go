package view

import (
	"fmt"
	"strings"

	"ngdefc/packages/compiler/core"
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/util"
)

// TEMPORARY_NAME is the name of the temporary used by query refreshes
const TEMPORARY_NAME = "_t"

// CONTEXT_NAME is the name of the context parameter of generated functions
const CONTEXT_NAME = "ctx"

// RENDER_FLAGS is the name of the render flags parameter
const RENDER_FLAGS = "rf"

// Optional is an expression that may be absent. Generators return an
// empty Optional instead of a nil expression when a field is not needed.
type Optional struct {
	expr output.OutputExpression
}

// Some wraps a present expression
func Some(expr output.OutputExpression) Optional {
	return Optional{expr: expr}
}

// None is the absent Optional
var None = Optional{}

// Get returns the expression and whether it is present
func (o Optional) Get() (output.OutputExpression, bool) {
	return o.expr, o.expr != nil
}

// Present reports whether the optional holds an expression
func (o Optional) Present() bool {
	return o.expr != nil
}

// TemporaryAllocatorFunc returns the shared temporary variable
type TemporaryAllocatorFunc func() *output.ReadVarExpr

// TemporaryAllocator creates an allocator for a temporary variable.
// `var <name>;` is pushed the first time the allocator is called.
func TemporaryAllocator(pushStatement func(output.OutputStatement), name string) TemporaryAllocatorFunc {
	var temp *output.ReadVarExpr
	return func() *output.ReadVarExpr {
		if temp == nil {
			pushStatement(output.NewDeclareVarStmt(name, nil, output.DynamicType, output.StmtModifierNone, nil))
			temp = output.NewReadVarExpr(name, output.DynamicType, nil)
		}
		return temp
	}
}

// AsLiteral converts a value, possibly nested slices, into a literal
// expression.
func AsLiteral(value interface{}) output.OutputExpression {
	switch v := value.(type) {
	case []interface{}:
		literals := make([]output.OutputExpression, len(v))
		for i, item := range v {
			literals[i] = AsLiteral(item)
		}
		return output.LiteralArr(literals)
	case core.R3CssSelector:
		return AsLiteral([]interface{}(v))
	case core.R3CssSelectorList:
		literals := make([]output.OutputExpression, len(v))
		for i, item := range v {
			literals[i] = AsLiteral(item)
		}
		return output.LiteralArr(literals)
	case core.SelectorFlags:
		return output.Literal(int(v))
	}
	return output.Literal(value)
}

// ConditionallyCreateMapObjectLiteral serializes inputs or outputs. A
// property whose public name differs from its class property name emits
// the `[publicName, declaredName]` pair. An empty list yields None.
func ConditionallyCreateMapObjectLiteral(bindings []R3BindingPropertyMetadata) Optional {
	if len(bindings) == 0 {
		return None
	}
	entries := make([]*output.LiteralMapEntry, len(bindings))
	for i, b := range bindings {
		declaredName := b.ClassPropertyName
		publicName := b.BindingPropertyName
		var value output.OutputExpression
		if publicName == declaredName {
			value = output.Literal(publicName)
		} else {
			value = output.LiteralArr([]output.OutputExpression{output.Literal(publicName), output.Literal(declaredName)})
		}
		entries[i] = output.NewLiteralMapEntry(declaredName, value, util.IsUnsafeObjectKey(declaredName))
	}
	return Some(output.LiteralMap(entries))
}

// DefinitionMap accumulates the fields of a definition in insertion order
type DefinitionMap struct {
	keys   []string
	values map[string]output.OutputExpression
}

// NewDefinitionMap creates a new DefinitionMap
func NewDefinitionMap() *DefinitionMap {
	return &DefinitionMap{values: make(map[string]output.OutputExpression)}
}

// Set stores value under key. Setting an existing key overwrites it in
// place; a nil value is ignored.
func (dm *DefinitionMap) Set(key string, value output.OutputExpression) {
	if value == nil {
		return
	}
	if _, ok := dm.values[key]; !ok {
		dm.keys = append(dm.keys, key)
	}
	dm.values[key] = value
}

// SetOptional stores the optional's expression when present
func (dm *DefinitionMap) SetOptional(key string, value Optional) {
	if expr, ok := value.Get(); ok {
		dm.Set(key, expr)
	}
}

// Get returns the field stored under key
func (dm *DefinitionMap) Get(key string) (output.OutputExpression, bool) {
	v, ok := dm.values[key]
	return v, ok
}

// Keys returns the field names in insertion order
func (dm *DefinitionMap) Keys() []string {
	return append([]string(nil), dm.keys...)
}

// ToLiteralMap converts the map into one literal map expression
func (dm *DefinitionMap) ToLiteralMap() *output.LiteralMapExpr {
	entries := make([]*output.LiteralMapEntry, len(dm.keys))
	for i, key := range dm.keys {
		entries[i] = output.NewLiteralMapEntry(key, dm.values[key], false)
	}
	return output.LiteralMap(entries)
}

// RenderFlagCheckIfStmt builds `if (rf & flags) { statements }`
func RenderFlagCheckIfStmt(flags core.RenderFlags, statements []output.OutputStatement) *output.IfStmt {
	return output.NewIfStmt(
		output.BitwiseAnd(output.Variable(RENDER_FLAGS), output.Literal(int(flags))),
		statements, nil, nil,
	)
}

// ParseNamedProperty splits `style.width.px` into its property name and
// unit. The first segment is the binding prefix. A name without a dot is
// returned unchanged with an empty unit.
func ParseNamedProperty(name string) (propertyName string, unit string) {
	index := strings.IndexByte(name, '.')
	if index <= 0 {
		return name, ""
	}
	unitIndex := strings.LastIndexByte(name, '.')
	if unitIndex != index {
		return name[index+1 : unitIndex], name[unitIndex+1:]
	}
	return name[index+1:], ""
}

func illegalHostBinding(span *util.ParseSourceSpan, format string, args ...any) *util.CompileError {
	return util.NewCompileError(util.ErrIllegalHostBinding, span, format, args...)
}

func invalidState(what string, args ...any) error {
	return fmt.Errorf("Illegal state: "+what, args...)
}
