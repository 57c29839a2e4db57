package compiler

import (
	"fmt"
	"strings"

	"ngdefc/packages/compiler/core"
	"ngdefc/packages/compiler/css"
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3"
	"ngdefc/packages/compiler/render3/r3_identifiers"
	"ngdefc/packages/compiler/render3/view"
	"ngdefc/packages/compiler/util"
)

const COMPONENT_VARIABLE = "%COMP%"
const HOST_ATTR = "_nghost-" + COMPONENT_VARIABLE
const CONTENT_ATTR = "_ngcontent-" + COMPONENT_VARIABLE

// baseDirectiveFields creates the fields shared by directive and component
// definitions. Supporting statements, such as an inherited factory, are
// returned alongside.
func baseDirectiveFields(
	meta *view.R3DirectiveMetadata,
	ctx *view.CompilationContext,
) (*view.DefinitionMap, []output.OutputStatement, error) {
	definitionMap := view.NewDefinitionMap()

	// e.g. `type: MyDirective`
	definitionMap.Set("type", meta.Type.Value)

	// e.g. `selectors: [['', 'someDir', '']]`
	selectors, err := core.ParseSelectorToR3Selector(meta.Selector)
	if err != nil {
		return nil, nil, util.NewCompileError(util.ErrParse, meta.TypeSourceSpan, "Invalid selector of %s: %v", meta.Name, err)
	}
	definitionMap.Set("selectors", view.AsLiteral(selectors))

	// e.g. `factory: function MyDirective_Factory(t) { return new (t || MyDirective)(); }`
	factory, err := render3.CompileFactoryFunction(&render3.R3FactoryMetadata{
		Name:     meta.Name,
		Type:     meta.Type.Value,
		Deps:     meta.Deps,
		InjectFn: r3_identifiers.DirectiveInject,
	})
	if err != nil {
		return nil, nil, err
	}
	definitionMap.Set("factory", factory.Factory)

	// e.g. `contentQueries: function MyDirective_ContentQueries(dirIndex) { ... }`
	contentQueries, err := view.CreateContentQueriesFunction(meta.Queries, ctx.Pool, meta.Name)
	if err != nil {
		return nil, nil, err
	}
	definitionMap.SetOptional("contentQueries", contentQueries)
	definitionMap.SetOptional("contentQueriesRefresh", view.CreateContentQueriesRefreshFunction(meta.Queries, meta.Name))

	elVarExp := output.Variable("elIndex")
	contextVarExp := output.Variable(view.CONTEXT_NAME)
	styleBuilder := view.NewStylingBuilder(elVarExp, contextVarExp)

	var otherAttributes []output.OutputExpression
	if meta.Host.Attributes != nil {
		meta.Host.Attributes.Range(func(name, value string) bool {
			switch name {
			case "class":
				styleBuilder.RegisterClassAttr(value)
			case "style":
				styleBuilder.RegisterStyleAttr(value)
			default:
				otherAttributes = append(otherAttributes, output.Literal(name), output.Literal(value))
			}
			return true
		})
	}

	hostBindings, err := createHostBindingsFunction(meta, elVarExp, contextVarExp, styleBuilder, ctx)
	if err != nil {
		return nil, nil, err
	}

	// e.g. `hostVars: 2`
	if hostBindings.hostVars > 0 {
		definitionMap.Set("hostVars", output.Literal(hostBindings.hostVars))
	}

	// e.g. `attributes: ['role', 'listbox']`
	if len(otherAttributes) > 0 {
		definitionMap.Set("attributes", output.LiteralArr(otherAttributes))
	}

	// e.g. `hostBindings: function MyDirective_HostBindings(rf, ctx, elIndex) { ... }`
	definitionMap.SetOptional("hostBindings", hostBindings.fn)

	// e.g. `inputs: {a: 'a'}`
	definitionMap.SetOptional("inputs", view.ConditionallyCreateMapObjectLiteral(meta.Inputs))

	// e.g. `outputs: {a: 'a'}`
	definitionMap.SetOptional("outputs", view.ConditionallyCreateMapObjectLiteral(meta.Outputs))

	if meta.ExportAs != nil {
		definitionMap.Set("exportAs", output.Literal(*meta.ExportAs))
	}

	return definitionMap, factory.Statements, nil
}

// addFeatures adds the features list when the definition needs any
func addFeatures(definitionMap *view.DefinitionMap, meta *view.R3DirectiveMetadata, viewProviders output.OutputExpression) {
	var features []output.OutputExpression

	if meta.Providers != nil || viewProviders != nil {
		var providers output.OutputExpression = meta.Providers
		if providers == nil {
			providers = output.LiteralArr([]output.OutputExpression{})
		}
		args := []output.OutputExpression{providers}
		if viewProviders != nil {
			args = append(args, viewProviders)
		}
		features = append(features, output.Call(output.ImportExpr(r3_identifiers.ProvidersFeature), args...))
	}

	if meta.UsesInheritance {
		features = append(features, output.ImportExpr(r3_identifiers.InheritDefinitionFeature))
	}

	if meta.UsesOnChanges {
		features = append(features, output.ImportExpr(r3_identifiers.NgOnChangesFeature))
	}

	if len(features) > 0 {
		definitionMap.Set("features", output.LiteralArr(features))
	}
}

// CompileDirectiveFromMetadata compiles a directive for the render3 runtime
// as defined by the R3DirectiveMetadata.
func CompileDirectiveFromMetadata(meta *view.R3DirectiveMetadata, ctx *view.CompilationContext) (*render3.R3CompiledExpression, error) {
	if err := checkName(meta); err != nil {
		return nil, err
	}
	definitionMap, statements, err := baseDirectiveFields(meta, ctx)
	if err != nil {
		return nil, err
	}
	addFeatures(definitionMap, meta, nil)

	expression := output.Call(output.ImportExpr(r3_identifiers.DefineDirective), definitionMap.ToLiteralMap())
	return &render3.R3CompiledExpression{
		Expression: expression,
		Type:       createTypeForDef(meta, r3_identifiers.DirectiveDefWithMeta),
		Statements: statements,
	}, nil
}

// CompileComponentFromMetadata compiles a component for the render3 runtime
// as defined by the R3ComponentMetadata. The template itself is lowered by
// ctx.TemplateBuilder.
func CompileComponentFromMetadata(meta *view.R3ComponentMetadata, ctx *view.CompilationContext) (*render3.R3CompiledExpression, error) {
	if err := checkName(&meta.R3DirectiveMetadata); err != nil {
		return nil, err
	}
	if ctx.TemplateBuilder == nil {
		return nil, fmt.Errorf("compile %s: no template builder configured", meta.Name)
	}
	definitionMap, statements, err := baseDirectiveFields(&meta.R3DirectiveMetadata, ctx)
	if err != nil {
		return nil, err
	}
	addFeatures(definitionMap, &meta.R3DirectiveMetadata, meta.ViewProviders)

	// e.g. `attrs: ['class', '.my.app']`
	if meta.Selector != nil && *meta.Selector != "" {
		parsed, err := css.ParseCssSelector(*meta.Selector)
		if err != nil {
			return nil, util.NewCompileError(util.ErrParse, meta.TypeSourceSpan, "Invalid selector of %s: %v", meta.Name, err)
		}
		if len(parsed) > 0 {
			if selectorAttributes := parsed[0].GetAttrs(); len(selectorAttributes) > 0 {
				values := make([]output.OutputExpression, len(selectorAttributes))
				for i, value := range selectorAttributes {
					values[i] = output.Literal(value)
				}
				definitionMap.Set("attrs", ctx.Pool.GetConstLiteral(output.LiteralArr(values), true))
			}
		}
	}

	// the CSS matcher that recognizes the directives used in the template
	var directiveMatcher *css.SelectorMatcher[output.OutputExpression]
	if meta.Directives != nil && meta.Directives.Len() > 0 {
		directiveMatcher = css.NewSelectorMatcher[output.OutputExpression]()
		var matcherErr error
		meta.Directives.Range(func(selector string, expression output.OutputExpression) bool {
			selectors, err := css.ParseCssSelector(selector)
			if err != nil {
				matcherErr = util.NewCompileError(util.ErrParse, meta.TypeSourceSpan, "Invalid directive selector %q: %v", selector, err)
				return false
			}
			directiveMatcher.AddSelectables(selectors, expression)
			return true
		})
		if matcherErr != nil {
			return nil, matcherErr
		}
	}

	// e.g. `viewQuery: function MyComponent_Query(rf, ctx) { ... }`
	viewQuery, err := view.CreateViewQueriesFunction(meta.ViewQueries, ctx.Pool, meta.Name)
	if err != nil {
		return nil, err
	}
	definitionMap.SetOptional("viewQuery", viewQuery)

	template, err := ctx.TemplateBuilder.BuildTemplateFunction(&view.TemplateBuildRequest{
		FunctionName:       meta.Name + "_Template",
		Nodes:              meta.Template.Nodes,
		NgContentSelectors: meta.Template.NgContentSelectors,
		DirectiveMatcher:   directiveMatcher,
		Pipes:              meta.Pipes,
		ViewQueries:        meta.ViewQueries,
		Pool:               ctx.Pool,
		Interpolation:      meta.Interpolation,
	})
	if err != nil {
		return nil, err
	}

	// e.g. `ngContentSelectors: ['*', 'header']`
	if len(template.NgContentSelectors) > 0 {
		selectors := make([]output.OutputExpression, len(template.NgContentSelectors))
		for i, s := range template.NgContentSelectors {
			selectors[i] = output.Literal(s)
		}
		definitionMap.Set("ngContentSelectors", output.LiteralArr(selectors))
	}

	// e.g. `consts: 2`
	definitionMap.Set("consts", output.Literal(template.ConstCount))

	// e.g. `vars: 2`
	definitionMap.Set("vars", output.Literal(template.VarCount))

	// e.g. `template: function MyComponent_Template(rf, ctx) {...}`
	definitionMap.Set("template", template.Function)

	// e.g. `directives: [MyDirective]`
	if len(template.DirectivesUsed) > 0 {
		definitionMap.Set("directives", render3.RefsToArray(template.DirectivesUsed, meta.WrapDirectivesAndPipesInClosure))
	}

	// e.g. `pipes: [MyPipe]`
	if len(template.PipesUsed) > 0 {
		definitionMap.Set("pipes", render3.RefsToArray(template.PipesUsed, meta.WrapDirectivesAndPipesInClosure))
	}

	encapsulation := core.ViewEncapsulationEmulated
	if meta.Encapsulation != nil {
		encapsulation = *meta.Encapsulation
	}

	// e.g. `styles: [str1, str2]`
	if len(meta.Styles) > 0 {
		styleValues := meta.Styles
		if encapsulation == core.ViewEncapsulationEmulated {
			styleValues = compileStyles(ctx.CssShim, meta.Styles, CONTENT_ATTR, HOST_ATTR)
		}
		literals := make([]output.OutputExpression, len(styleValues))
		for i, s := range styleValues {
			literals[i] = output.Literal(s)
		}
		definitionMap.Set("styles", output.LiteralArr(literals))
	} else if encapsulation == core.ViewEncapsulationEmulated {
		// no styles means no attributes to scope them with
		encapsulation = core.ViewEncapsulationNone
	}

	// Only set view encapsulation if it's not the default value
	if encapsulation != core.ViewEncapsulationEmulated {
		definitionMap.Set("encapsulation", output.Literal(int(encapsulation)))
	}

	// e.g. `data: {animation: [trigger('123', [])]}`
	if meta.Animations != nil {
		definitionMap.Set("data", output.LiteralMap([]*output.LiteralMapEntry{
			output.NewLiteralMapEntry("animation", meta.Animations, false),
		}))
	}

	// Only set the change detection flag if it's defined and it's not the default.
	if meta.ChangeDetection != nil && *meta.ChangeDetection != core.ChangeDetectionStrategyDefault {
		definitionMap.Set("changeDetection", output.Literal(int(*meta.ChangeDetection)))
	}

	expression := output.Call(output.ImportExpr(r3_identifiers.DefineComponent), definitionMap.ToLiteralMap())
	return &render3.R3CompiledExpression{
		Expression: expression,
		Type:       createTypeForDef(&meta.R3DirectiveMetadata, r3_identifiers.ComponentDefWithMeta),
		Statements: statements,
	}, nil
}

func checkName(meta *view.R3DirectiveMetadata) error {
	if meta.Name == "" {
		return util.NewCompileError(util.ErrUnresolvableIdentity, meta.TypeSourceSpan,
			"Cannot resolve the name of %s", describeType(meta))
	}
	return nil
}

func describeType(meta *view.R3DirectiveMetadata) string {
	if meta.Selector != nil {
		return "the directive with selector " + *meta.Selector
	}
	return "an anonymous directive"
}

// compileStyles scopes every stylesheet to the component's attributes
func compileStyles(shim view.CssShim, styles []string, selector, hostSelector string) []string {
	if shim == nil {
		shim = css.NewShadowCss()
	}
	result := make([]string, len(styles))
	for i, style := range styles {
		result[i] = shim.ShimCssText(style, selector, hostSelector)
	}
	return result
}

// createTypeForDef builds `DefWithMeta<Type, 'selector', exportAs, {inputs}, {outputs}, ['queries']>`
func createTypeForDef(meta *view.R3DirectiveMetadata, typeBase *output.ExternalReference) output.Type {
	selectorForType := ""
	if meta.Selector != nil {
		// the selector is embedded in a single-line string literal type
		selectorForType = strings.ReplaceAll(*meta.Selector, "\n", "")
	}

	var exportAs output.Type = output.NoneType
	if meta.ExportAs != nil {
		exportAs = stringAsType(*meta.ExportAs)
	}

	queryNames := make([]string, len(meta.Queries))
	for i, query := range meta.Queries {
		queryNames[i] = query.PropertyName
	}

	return output.TypeOf(output.ImportExpr(typeBase),
		render3.TypeWithParameters(meta.Type.Type, meta.TypeArgumentCount),
		stringAsType(selectorForType),
		exportAs,
		stringMapAsType(meta.Inputs),
		stringMapAsType(meta.Outputs),
		stringArrayAsType(queryNames),
	)
}

func stringAsType(str string) output.Type {
	return output.TypeOf(output.Literal(str))
}

func stringMapAsType(bindings []view.R3BindingPropertyMetadata) output.Type {
	entries := make([]*output.LiteralMapEntry, len(bindings))
	for i, b := range bindings {
		entries[i] = output.NewLiteralMapEntry(b.ClassPropertyName, output.Literal(b.BindingPropertyName), true)
	}
	return output.TypeOf(output.LiteralMap(entries))
}

func stringArrayAsType(arr []string) output.Type {
	if len(arr) == 0 {
		return output.NoneType
	}
	values := make([]output.OutputExpression, len(arr))
	for i, value := range arr {
		values[i] = output.Literal(value)
	}
	return output.TypeOf(output.LiteralArr(values))
}
