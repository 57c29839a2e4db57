package render3

import (
	"fmt"

	"ngdefc/packages/compiler/core"
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3/r3_identifiers"
)

// R3ResolvedDependencyType says how a constructor parameter is injected
type R3ResolvedDependencyType int

const (
	// R3ResolvedDependencyTypeToken injects the token through the inject function
	R3ResolvedDependencyTypeToken R3ResolvedDependencyType = iota
	// R3ResolvedDependencyTypeAttribute injects a static attribute of the host element
	R3ResolvedDependencyTypeAttribute
	// R3ResolvedDependencyTypeInjector injects the node injector itself
	R3ResolvedDependencyTypeInjector
	R3ResolvedDependencyTypeElementRef
	R3ResolvedDependencyTypeTemplateRef
	R3ResolvedDependencyTypeViewContainerRef
	R3ResolvedDependencyTypeChangeDetectorRef
)

var resolvedDependencyTypeNames = map[string]R3ResolvedDependencyType{
	"token":             R3ResolvedDependencyTypeToken,
	"attribute":         R3ResolvedDependencyTypeAttribute,
	"injector":          R3ResolvedDependencyTypeInjector,
	"elementRef":        R3ResolvedDependencyTypeElementRef,
	"templateRef":       R3ResolvedDependencyTypeTemplateRef,
	"viewContainerRef":  R3ResolvedDependencyTypeViewContainerRef,
	"changeDetectorRef": R3ResolvedDependencyTypeChangeDetectorRef,
}

// ParseResolvedDependencyType maps a metadata document name to its kind
func ParseResolvedDependencyType(name string) (R3ResolvedDependencyType, bool) {
	t, ok := resolvedDependencyTypeNames[name]
	return t, ok
}

// R3DependencyMetadata describes one constructor parameter
type R3DependencyMetadata struct {
	// Token to inject. For attribute dependencies this is the literal
	// attribute name.
	Token    output.OutputExpression
	Resolved R3ResolvedDependencyType
	Host     bool
	Optional bool
	Self     bool
	SkipSelf bool
}

// R3FactoryMetadata describes the factory of a directive or component
type R3FactoryMetadata struct {
	// Name of the class, used to name the factory function.
	Name string
	Type output.OutputExpression
	// Deps lists the constructor parameters. A nil slice means the class
	// has no constructor of its own and inherits its parent's factory.
	Deps []R3DependencyMetadata
	// InjectFn is the instruction used for token dependencies, defaulting
	// to directiveInject.
	InjectFn *output.ExternalReference
}

// R3FactoryFn is a generated factory function plus the top-level
// statements it relies on.
type R3FactoryFn struct {
	Factory    output.OutputExpression
	Statements []output.OutputStatement
}

// CompileFactoryFunction generates `function Name_Factory(t) { return new (t || Name)(...); }`.
// Without deps the factory delegates to the inherited one, declared in
// Statements as `ɵName_BaseFactory`.
func CompileFactoryFunction(meta *R3FactoryMetadata) (*R3FactoryFn, error) {
	injectFn := meta.InjectFn
	if injectFn == nil {
		injectFn = r3_identifiers.DirectiveInject
	}

	t := output.Variable("t")
	typeForCtor := output.Or(t, meta.Type)
	var statements []output.OutputStatement
	var ctorExpr output.OutputExpression

	if meta.Deps != nil {
		args := make([]output.OutputExpression, len(meta.Deps))
		for i, dep := range meta.Deps {
			arg, err := compileInjectDependency(dep, injectFn)
			if err != nil {
				return nil, fmt.Errorf("%s constructor parameter %d: %w", meta.Name, i, err)
			}
			args[i] = arg
		}
		ctorExpr = output.Instantiate(typeForCtor, args...)
	} else {
		baseFactory := output.Variable(fmt.Sprintf("ɵ%s_BaseFactory", meta.Name))
		getInherited := output.Call(output.ImportExpr(r3_identifiers.GetInheritedFactory), meta.Type)
		statements = append(statements, output.NewDeclareVarStmt(baseFactory.Name, getInherited,
			output.InferredType, output.StmtModifierExported|output.StmtModifierFinal, nil))
		ctorExpr = output.Call(baseFactory, typeForCtor)
	}

	factory := output.Fn(
		[]*output.FnParam{output.NewFnParam(t.Name, output.DynamicType)},
		[]output.OutputStatement{output.Return(ctorExpr)},
		meta.Name+"_Factory",
	)
	return &R3FactoryFn{Factory: factory, Statements: statements}, nil
}

func compileInjectDependency(dep R3DependencyMetadata, injectFn *output.ExternalReference) (output.OutputExpression, error) {
	switch dep.Resolved {
	case R3ResolvedDependencyTypeToken, R3ResolvedDependencyTypeInjector:
		flags := core.InjectFlagsDefault
		if dep.Self {
			flags |= core.InjectFlagsSelf
		}
		if dep.SkipSelf {
			flags |= core.InjectFlagsSkipSelf
		}
		if dep.Host {
			flags |= core.InjectFlagsHost
		}
		if dep.Optional {
			flags |= core.InjectFlagsOptional
		}
		token := dep.Token
		if dep.Resolved == R3ResolvedDependencyTypeInjector {
			token = output.ImportExpr(r3_identifiers.INJECTOR)
		}
		if token == nil {
			return nil, fmt.Errorf("dependency has no token")
		}
		args := []output.OutputExpression{token}
		if flags != core.InjectFlagsDefault || dep.Optional {
			args = append(args, output.Literal(int(flags)))
		}
		return output.Call(output.ImportExpr(injectFn), args...), nil
	case R3ResolvedDependencyTypeAttribute:
		if dep.Token == nil {
			return nil, fmt.Errorf("attribute dependency has no name")
		}
		return output.Call(output.ImportExpr(r3_identifiers.InjectAttribute), dep.Token), nil
	case R3ResolvedDependencyTypeElementRef:
		return output.Call(output.ImportExpr(r3_identifiers.InjectElementRef)), nil
	case R3ResolvedDependencyTypeTemplateRef:
		return output.Call(output.ImportExpr(r3_identifiers.InjectTemplateRef)), nil
	case R3ResolvedDependencyTypeViewContainerRef:
		return output.Call(output.ImportExpr(r3_identifiers.InjectViewContainerRef)), nil
	case R3ResolvedDependencyTypeChangeDetectorRef:
		return output.Call(output.ImportExpr(r3_identifiers.InjectChangeDetectorRef)), nil
	default:
		return nil, fmt.Errorf("unknown dependency kind %d", dep.Resolved)
	}
}
