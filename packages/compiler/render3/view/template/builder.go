// Package template lowers static template nodes into a template function.
//
// The builder handles elements with static attributes, static text and
// content projection. Bound attributes and embedded templates are expected
// to come from a full template compiler plugged in through
// view.TemplateBuilder.
package template

import (
	"strings"

	"ngdefc/packages/compiler/core"
	"ngdefc/packages/compiler/css"
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3/r3_identifiers"
	"ngdefc/packages/compiler/render3/view"
	"ngdefc/packages/compiler/util"
)

const wildcardSelector = "*"

// Builder is the element-level view.TemplateBuilder
type Builder struct{}

// NewBuilder creates a Builder
func NewBuilder() *Builder {
	return &Builder{}
}

var _ view.TemplateBuilder = (*Builder)(nil)

// BuildTemplateFunction generates
// `function Name_Template(rf, ctx) { if (rf & 1) { ... } }` for req.Nodes.
func (b *Builder) BuildTemplateFunction(req *view.TemplateBuildRequest) (*view.TemplateResult, error) {
	tb := &definitionBuilder{
		req:              req,
		directivesSeen:   map[output.OutputExpression]bool{},
		ngContentIndexes: util.NewOrderedMap[int](),
	}
	for _, selector := range req.NgContentSelectors {
		tb.registerNgContentSelector(selector)
	}

	if err := tb.visitAll(req.Nodes); err != nil {
		return nil, err
	}

	creation := tb.creation
	if tb.hasNgContent || tb.ngContentIndexes.Len() > 0 {
		projectionDef, err := tb.projectionDef()
		if err != nil {
			return nil, err
		}
		creation = append([]output.OutputStatement{projectionDef}, creation...)
	}

	var statements []output.OutputStatement
	if len(creation) > 0 {
		statements = append(statements, view.RenderFlagCheckIfStmt(core.RenderFlagsCreate, creation))
	}
	fn := output.Fn([]*output.FnParam{
		output.NewFnParam(view.RENDER_FLAGS, output.NumberType),
		output.NewFnParam(view.CONTEXT_NAME, nil),
	}, statements, req.FunctionName)

	return &view.TemplateResult{
		Function:           fn,
		ConstCount:         tb.slots,
		VarCount:           0,
		NgContentSelectors: tb.ngContentIndexes.Keys(),
		DirectivesUsed:     tb.directivesUsed,
	}, nil
}

type definitionBuilder struct {
	req      *view.TemplateBuildRequest
	slots    int
	creation []output.OutputStatement

	hasNgContent     bool
	ngContentIndexes *util.OrderedMap[int]

	directivesUsed []output.OutputExpression
	directivesSeen map[output.OutputExpression]bool
}

func (tb *definitionBuilder) allocateDataSlot() int {
	slot := tb.slots
	tb.slots++
	return slot
}

func (tb *definitionBuilder) instruction(ref *output.ExternalReference, args ...output.OutputExpression) {
	tb.creation = append(tb.creation, output.Stmt(output.Call(output.ImportExpr(ref), args...)))
}

func (tb *definitionBuilder) visitAll(nodes []view.TemplateNode) error {
	for _, node := range nodes {
		var err error
		switch n := node.(type) {
		case *view.TemplateElement:
			err = tb.visitElement(n)
		case *view.TemplateText:
			tb.instruction(r3_identifiers.Text, output.Literal(tb.allocateDataSlot()), output.Literal(n.Value))
		case *view.TemplateContent:
			tb.visitContent(n)
		default:
			err = util.NewCompileError(util.ErrParse, nil, "Unsupported template node %T", node)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (tb *definitionBuilder) visitElement(element *view.TemplateElement) error {
	if element.Name == "" {
		return util.NewCompileError(util.ErrParse, nil, "Element without a tag name")
	}
	slot := tb.allocateDataSlot()
	tb.matchDirectives(element)

	// static attributes as `[name, value, ..., Classes, ..., Styles, ...]`
	stylingBuilder := view.NewStylingBuilder(output.Literal(slot), nil)
	var attrs []output.OutputExpression
	for _, attr := range element.Attributes {
		switch strings.ToLower(attr[0]) {
		case "class":
			stylingBuilder.RegisterClassAttr(attr[1])
		case "style":
			stylingBuilder.RegisterStyleAttr(attr[1])
		default:
			attrs = append(attrs, output.Literal(attr[0]), output.Literal(attr[1]))
		}
	}
	attrs = stylingBuilder.PopulateInitialStylingAttrs(attrs)

	params := []output.OutputExpression{output.Literal(slot), output.Literal(element.Name)}
	if len(attrs) > 0 {
		params = append(params, tb.req.Pool.GetConstLiteral(output.LiteralArr(attrs), true))
	}

	hasStyling := stylingBuilder.HasBindingsOrInitialValues()
	if len(element.Children) == 0 && !hasStyling {
		tb.instruction(r3_identifiers.Element, params...)
		return nil
	}

	tb.instruction(r3_identifiers.ElementStart, params...)
	if hasStyling {
		styling := stylingBuilder.BuildElementStylingInstruction(nil, tb.req.Pool)
		args, err := styling.BuildParams(nil)
		if err != nil {
			return err
		}
		tb.instruction(styling.Reference, args...)
	}
	if err := tb.visitAll(element.Children); err != nil {
		return err
	}
	tb.instruction(r3_identifiers.ElementEnd)
	return nil
}

func (tb *definitionBuilder) matchDirectives(element *view.TemplateElement) {
	if tb.req.DirectiveMatcher == nil {
		return
	}
	selector := css.CreateCssSelector(element.Name, element.Attributes)
	tb.req.DirectiveMatcher.Match(selector, func(_ *css.CssSelector, directive output.OutputExpression) {
		if !tb.directivesSeen[directive] {
			tb.directivesSeen[directive] = true
			tb.directivesUsed = append(tb.directivesUsed, directive)
		}
	})
}

func (tb *definitionBuilder) registerNgContentSelector(selector string) int {
	if selector == "" || selector == wildcardSelector {
		return 0
	}
	if index, ok := tb.ngContentIndexes.Get(selector); ok {
		return index
	}
	index := tb.ngContentIndexes.Len() + 1
	tb.ngContentIndexes.Set(selector, index)
	return index
}

// visitContent emits `projection(slot[, selectorIndex])`. The wildcard
// projects into index 0.
func (tb *definitionBuilder) visitContent(content *view.TemplateContent) {
	tb.hasNgContent = true
	slot := tb.allocateDataSlot()
	params := []output.OutputExpression{output.Literal(slot)}
	if index := tb.registerNgContentSelector(content.Selector); index != 0 {
		params = append(params, output.Literal(index))
	}
	tb.instruction(r3_identifiers.Projection, params...)
}

// projectionDef needs both the parsed and the raw selectors. Without
// named selectors it takes no arguments.
func (tb *definitionBuilder) projectionDef() (output.OutputStatement, error) {
	var params []output.OutputExpression
	if selectors := tb.ngContentIndexes.Keys(); len(selectors) > 0 {
		parsed := make([]output.OutputExpression, len(selectors))
		raw := make([]output.OutputExpression, len(selectors))
		for i, selector := range selectors {
			r3Selector, err := core.ParseSelectorToR3Selector(&selector)
			if err != nil {
				return nil, util.NewCompileError(util.ErrParse, nil, "Invalid ng-content selector %q: %v", selector, err)
			}
			parsed[i] = view.AsLiteral(r3Selector)
			raw[i] = output.Literal(selector)
		}
		params = append(params,
			tb.req.Pool.GetConstLiteral(output.LiteralArr(parsed), true),
			tb.req.Pool.GetConstLiteral(output.LiteralArr(raw), true),
		)
	}
	return output.Stmt(output.Call(output.ImportExpr(r3_identifiers.ProjectionDef), params...)), nil
}
