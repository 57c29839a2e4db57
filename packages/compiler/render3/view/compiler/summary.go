package compiler

import (
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3"
	"ngdefc/packages/compiler/render3/view"
	"ngdefc/packages/compiler/util"
)

// DirectiveSummary is a directive as declared, with its `host` map still
// undivided. Host in the embedded metadata is ignored.
type DirectiveSummary struct {
	view.R3DirectiveMetadata
	RawHost *util.OrderedMap[string]
}

// ComponentSummary is the component counterpart of DirectiveSummary
type ComponentSummary struct {
	view.R3ComponentMetadata
	RawHost *util.OrderedMap[string]
}

// CompileDirectiveFromSummary compiles a declared directive and appends
// `Name.ngDirectiveDef = ɵdefineDirective(...)` to the statements.
func CompileDirectiveFromSummary(summary *DirectiveSummary, ctx *view.CompilationContext) (*render3.R3CompiledExpression, error) {
	meta := summary.R3DirectiveMetadata
	meta.Host = ParseHostBindings(summary.RawHost)
	if err := checkName(&meta); err != nil {
		return nil, err
	}
	res, err := CompileDirectiveFromMetadata(&meta, ctx)
	if err != nil {
		return nil, err
	}
	res.Statements = append(res.Statements, definitionClassStmt(meta.Name, "ngDirectiveDef", res.Expression))
	return res, nil
}

// CompileComponentFromSummary compiles a declared component and appends
// `Name.ngComponentDef = ɵdefineComponent(...)` to the statements.
func CompileComponentFromSummary(summary *ComponentSummary, ctx *view.CompilationContext) (*render3.R3CompiledExpression, error) {
	meta := summary.R3ComponentMetadata
	meta.Host = ParseHostBindings(summary.RawHost)
	if err := checkName(&meta.R3DirectiveMetadata); err != nil {
		return nil, err
	}
	res, err := CompileComponentFromMetadata(&meta, ctx)
	if err != nil {
		return nil, err
	}
	res.Statements = append(res.Statements, definitionClassStmt(meta.Name, "ngComponentDef", res.Expression))
	return res, nil
}

// CompilePipeFromSummary compiles a pipe and appends
// `Name.ngPipeDef = ɵdefinePipe(...)` to the statements.
func CompilePipeFromSummary(meta *render3.R3PipeMetadata) (*render3.R3CompiledExpression, error) {
	res, err := render3.CompilePipeFromMetadata(meta)
	if err != nil {
		return nil, err
	}
	res.Statements = append(res.Statements, definitionClassStmt(meta.Name, "ngPipeDef", res.Expression))
	return res, nil
}

func definitionClassStmt(name, field string, definition output.OutputExpression) output.OutputStatement {
	return output.NewClassStmt(name, []*output.ClassField{
		output.NewClassField(field, output.InferredType, output.StmtModifierStatic, definition),
	}, output.StmtModifierNone, nil)
}
