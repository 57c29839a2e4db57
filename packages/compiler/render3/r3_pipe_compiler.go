package render3

import (
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3/r3_identifiers"
	"ngdefc/packages/compiler/util"
)

// R3PipeMetadata contains metadata for a pipe
type R3PipeMetadata struct {
	// Name of the pipe type
	Name string

	// An expression representing a reference to the pipe itself
	Type R3Reference

	// Number of generic type parameters of the type itself
	TypeArgumentCount int

	// PipeName is the name the pipe is used under in templates
	PipeName string

	// Deps of the pipe's constructor. Nil inherits the base factory.
	Deps []R3DependencyMetadata

	// Whether the pipe is marked as pure
	Pure bool
}

// CompilePipeFromMetadata compiles `ɵdefinePipe({name, type, factory, pure})`
func CompilePipeFromMetadata(meta *R3PipeMetadata) (*R3CompiledExpression, error) {
	if meta.Name == "" {
		return nil, util.NewCompileError(util.ErrUnresolvableIdentity, nil,
			"Cannot resolve the name of the pipe named %q", meta.PipeName)
	}
	pipeName := meta.PipeName
	if pipeName == "" {
		pipeName = meta.Name
	}

	factory, err := CompileFactoryFunction(&R3FactoryMetadata{
		Name: meta.Name,
		Type: meta.Type.Value,
		Deps: meta.Deps,
	})
	if err != nil {
		return nil, err
	}

	definition := output.LiteralMap([]*output.LiteralMapEntry{
		// e.g. `name: 'myPipe'`
		output.NewLiteralMapEntry("name", output.Literal(pipeName), false),
		// e.g. `type: MyPipe`
		output.NewLiteralMapEntry("type", meta.Type.Value, false),
		// e.g. `factory: function MyPipe_Factory(t) { return new (t || MyPipe)(); }`
		output.NewLiteralMapEntry("factory", factory.Factory, false),
		// e.g. `pure: true`
		output.NewLiteralMapEntry("pure", output.Literal(meta.Pure), false),
	})

	return &R3CompiledExpression{
		Expression: output.Call(output.ImportExpr(r3_identifiers.DefinePipe), definition),
		Type:       CreatePipeType(meta, pipeName),
		Statements: factory.Statements,
	}, nil
}

// CreatePipeType builds `PipeDefWithMeta<Type, 'name'>`
func CreatePipeType(meta *R3PipeMetadata, pipeName string) output.Type {
	return output.TypeOf(output.ImportExpr(r3_identifiers.PipeDefWithMeta),
		TypeWithParameters(meta.Type.Type, meta.TypeArgumentCount),
		output.TypeOf(output.Literal(pipeName)),
	)
}
