package compiler

import (
	"regexp"

	"ngdefc/packages/compiler/core"
	ep "ngdefc/packages/compiler/expression_parser"
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3"
	"ngdefc/packages/compiler/render3/r3_identifiers"
	"ngdefc/packages/compiler/render3/view"
	"ngdefc/packages/compiler/template_parser"
	"ngdefc/packages/compiler/util"
)

var HOST_REG_EXP = regexp.MustCompile(`^(?:\[([^\]]+)\])|(?:\(([^\)]+)\))$`)

// HostBindingGroup represents the groups in the HOST_REG_EXP regex
type HostBindingGroup int

const (
	// HostBindingGroupBinding - group 1: "prop" from "[prop]", or "attr.role" from "[attr.role]"
	HostBindingGroupBinding HostBindingGroup = 1

	// HostBindingGroupEvent - group 2: "event" from "(event)"
	HostBindingGroupEvent HostBindingGroup = 2
)

var globalTargetResolvers = map[string]*output.ExternalReference{
	"window":   r3_identifiers.ResolveWindow,
	"document": r3_identifiers.ResolveDocument,
	"body":     r3_identifiers.ResolveBody,
}

// ParseHostBindings splits a raw `host` map into attributes, listeners and
// properties, keeping declaration order within each.
func ParseHostBindings(host *util.OrderedMap[string]) view.R3HostMetadata {
	result := view.NewR3HostMetadata()
	if host == nil {
		return result
	}
	host.Range(func(key, value string) bool {
		m := HOST_REG_EXP.FindStringSubmatchIndex(key)
		switch {
		case m == nil:
			result.Attributes.Set(key, value)
		case m[2*HostBindingGroupBinding] >= 0:
			result.Properties.Set(key[m[2*HostBindingGroupBinding]:m[2*HostBindingGroupBinding+1]], value)
		case m[2*HostBindingGroupEvent] >= 0:
			result.Listeners.Set(key[m[2*HostBindingGroupEvent]:m[2*HostBindingGroupEvent+1]], value)
		}
		return true
	})
	return result
}

type hostBindingsResult struct {
	fn view.Optional
	// hostVars is the number of host variable slots, also passed to
	// allocHostVars
	hostVars int
}

func metadataAsSummary(meta *view.R3DirectiveMetadata) *template_parser.DirectiveSummary {
	return &template_parser.DirectiveSummary{
		Name:           meta.Name,
		HostProperties: meta.Host.Properties,
		HostListeners:  meta.Host.Listeners,
	}
}

// createHostBindingsFunction generates
// `function Name_HostBindings(rf, ctx, elIndex) { ... }` for the host element
// of a directive, or None when neither phase has statements.
func createHostBindingsFunction(
	meta *view.R3DirectiveMetadata,
	elVarExp *output.ReadVarExpr,
	bindingContext *output.ReadVarExpr,
	styleBuilder *view.StylingBuilder,
	ctx *view.CompilationContext,
) (*hostBindingsResult, error) {
	var createStatements, updateStatements []output.OutputStatement
	hostBindingSourceSpan := meta.TypeSourceSpan
	directiveSummary := metadataAsSummary(meta)

	// host event bindings
	eventBindings, err := ctx.BindingParser.CreateDirectiveHostEventAsts(directiveSummary, hostBindingSourceSpan)
	if err != nil {
		return nil, err
	}
	listeners, err := createHostListeners(bindingContext, eventBindings, meta)
	if err != nil {
		return nil, err
	}
	createStatements = append(createStatements, listeners...)

	// host property bindings
	bindings, err := ctx.BindingParser.CreateBoundHostProperties(directiveSummary, hostBindingSourceSpan)
	if err != nil {
		return nil, err
	}

	classified := make([]view.HostBinding, len(bindings))
	totalHostVarsCount := 0
	for i, binding := range bindings {
		classified[i] = view.ClassifyHostBinding(binding.Name, binding.IsAnimation())
		if !classified[i].Kind.IsStyling() {
			totalHostVarsCount++
		}
	}

	allocatePureFunctionSlots := func(numSlots int) int {
		originalVarsCount := totalHostVarsCount
		totalHostVarsCount += numSlots
		return originalVarsCount
	}
	valueConverter := view.NewValueConverter(ctx.Pool, nil, allocatePureFunctionSlots, nil)

	bindingFn := func(value ep.AST) (*view.ConvertPropertyBindingResult, error) {
		return view.ConvertPropertyBinding(nil, bindingContext, value, "b", view.BindingFormTrySimple, nil)
	}

	for i, binding := range bindings {
		if styleBuilder.RegisterBinding(classified[i], binding.Expression.AST, binding.SourceSpan) {
			continue
		}
		// resolve literal arrays and literal objects
		value, err := valueConverter.Convert(binding.Expression.AST)
		if err != nil {
			return nil, err
		}
		bindingExpr, err := bindingFn(value)
		if err != nil {
			return nil, err
		}
		instruction, extraParams := bindingInstruction(classified[i].Kind)
		params := []output.OutputExpression{
			elVarExp,
			output.Literal(classified[i].Name),
			output.Call(output.ImportExpr(r3_identifiers.Bind), bindingExpr.CurrValExpr),
		}
		updateStatements = append(updateStatements, bindingExpr.Stmts...)
		updateStatements = append(updateStatements, output.Stmt(output.Call(output.ImportExpr(instruction), append(params, extraParams...)...)))
	}

	if styleBuilder.HasBindingsOrInitialValues() {
		convertFn := func(value ep.AST) (output.OutputExpression, error) {
			res, err := bindingFn(value)
			if err != nil {
				return nil, err
			}
			return res.CurrValExpr, nil
		}
		createInstructions := []*view.Instruction{
			styleBuilder.BuildHostAttrsInstruction(nil, []output.OutputExpression{}, ctx.Pool),
			styleBuilder.BuildElementStylingInstruction(nil, ctx.Pool),
		}
		for _, instruction := range createInstructions {
			if instruction == nil {
				continue
			}
			stmt, err := createStylingStmt(instruction, convertFn)
			if err != nil {
				return nil, err
			}
			createStatements = append(createStatements, stmt)
		}

		updateInstructions, err := styleBuilder.BuildUpdateLevelInstructions(valueConverter)
		if err != nil {
			return nil, err
		}
		for _, instruction := range updateInstructions {
			stmt, err := createStylingStmt(instruction, convertFn)
			if err != nil {
				return nil, err
			}
			updateStatements = append(updateStatements, stmt)
		}
	}

	if totalHostVarsCount > 0 {
		allocHostVars := output.Stmt(output.Call(output.ImportExpr(r3_identifiers.AllocHostVars), output.Literal(totalHostVarsCount)))
		createStatements = append([]output.OutputStatement{allocHostVars}, createStatements...)
	}

	result := &hostBindingsResult{fn: view.None, hostVars: totalHostVarsCount}
	if len(createStatements) == 0 && len(updateStatements) == 0 {
		return result, nil
	}

	var statements []output.OutputStatement
	if len(createStatements) > 0 {
		statements = append(statements, view.RenderFlagCheckIfStmt(core.RenderFlagsCreate, createStatements))
	}
	if len(updateStatements) > 0 {
		statements = append(statements, view.RenderFlagCheckIfStmt(core.RenderFlagsUpdate, updateStatements))
	}
	params := []*output.FnParam{
		output.NewFnParam(view.RENDER_FLAGS, output.NumberType),
		output.NewFnParam(view.CONTEXT_NAME, nil),
		output.NewFnParam(elVarExp.Name, output.NumberType),
	}
	name := ""
	if meta.Name != "" {
		name = meta.Name + "_HostBindings"
	}
	result.fn = view.Some(output.Fn(params, statements, name))
	return result, nil
}

// bindingInstruction picks the update instruction of a non-styling host
// binding. Properties pass a null sanitizer and mark the binding as native
// only.
func bindingInstruction(kind view.HostBindingKind) (*output.ExternalReference, []output.OutputExpression) {
	if kind == view.HostBindingKindAttribute {
		return r3_identifiers.ElementAttribute, nil
	}
	extraParams := []output.OutputExpression{output.NullExpr, output.Literal(true)}
	if kind == view.HostBindingKindSyntheticProperty {
		return r3_identifiers.ComponentHostSyntheticProperty, extraParams
	}
	return r3_identifiers.ElementProperty, extraParams
}

func createStylingStmt(instruction *view.Instruction, convertFn func(ep.AST) (output.OutputExpression, error)) (output.OutputStatement, error) {
	params, err := instruction.BuildParams(convertFn)
	if err != nil {
		return nil, err
	}
	return output.NewExpressionStatement(output.Call(output.ImportExpr(instruction.Reference), params...), instruction.SourceSpan), nil
}

func createHostListeners(
	bindingContext output.OutputExpression,
	eventBindings []*template_parser.ParsedEvent,
	meta *view.R3DirectiveMetadata,
) ([]output.OutputStatement, error) {
	statements := make([]output.OutputStatement, 0, len(eventBindings))
	for _, binding := range eventBindings {
		bindingName := util.SanitizeIdentifier(binding.Name)
		isAnimation := binding.Type == template_parser.ParsedEventTypeAnimation

		bindingFnName := bindingName
		if isAnimation {
			bindingFnName = render3.PrepareSyntheticListenerFunctionName(bindingName, binding.TargetOrPhase)
		}
		handlerName := ""
		if meta.Name != "" && bindingName != "" {
			handlerName = util.SanitizeIdentifier(meta.Name + "_" + bindingFnName + "_HostBindingHandler")
		}

		params, err := prepareEventListenerParameters(binding, bindingContext, handlerName)
		if err != nil {
			return nil, err
		}
		instruction := r3_identifiers.Listener
		if isAnimation {
			instruction = r3_identifiers.ComponentHostSyntheticListener
		}
		statements = append(statements, output.NewExpressionStatement(
			output.Call(output.ImportExpr(instruction), params...), binding.SourceSpan))
	}
	return statements, nil
}

// prepareEventListenerParameters builds `('name', function handler($event) {...}[, false, resolver])`
func prepareEventListenerParameters(
	event *template_parser.ParsedEvent,
	bindingContext output.OutputExpression,
	handlerName string,
) ([]output.OutputExpression, error) {
	isAnimation := event.Type == template_parser.ParsedEventTypeAnimation
	target := ""
	if !isAnimation {
		target = event.TargetOrPhase
	}
	var resolver *output.ExternalReference
	if target != "" {
		var ok bool
		if resolver, ok = globalTargetResolvers[target]; !ok {
			return nil, util.NewCompileError(util.ErrUnsupportedTarget, event.SourceSpan,
				"Unexpected global target '%s' defined for '%s' event. Supported list of global targets: window,document,body.",
				target, event.Name)
		}
	}

	bindingExpr, err := view.ConvertActionBinding(nil, bindingContext, event.Handler.AST, nil)
	if err != nil {
		return nil, err
	}

	eventName := event.Name
	if isAnimation {
		eventName = render3.PrepareSyntheticListenerName(event.Name, event.TargetOrPhase)
	}
	fnArgs := []*output.FnParam{output.NewFnParam(view.EventName, output.DynamicType)}
	handlerFn := output.Fn(fnArgs, bindingExpr.Stmts, handlerName)

	params := []output.OutputExpression{output.Literal(eventName), handlerFn}
	if resolver != nil {
		params = append(params, output.Literal(false), output.ImportExpr(resolver))
	}
	return params, nil
}
