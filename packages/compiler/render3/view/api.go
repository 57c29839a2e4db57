package view

import (
	"ngdefc/packages/compiler/core"
	"ngdefc/packages/compiler/css"
	"ngdefc/packages/compiler/output"
	constant "ngdefc/packages/compiler/pool"
	"ngdefc/packages/compiler/render3"
	"ngdefc/packages/compiler/template_parser"
	"ngdefc/packages/compiler/util"
)

// R3DirectiveMetadata is the information needed to compile a directive
// definition.
type R3DirectiveMetadata struct {
	// Name of the directive type. An empty name cannot be compiled.
	Name string

	// Type is the class being defined
	Type render3.R3Reference

	// TypeArgumentCount is the number of generic type parameters of Type
	TypeArgumentCount int

	// TypeSourceSpan is where the directive was declared, used for errors
	TypeSourceSpan *util.ParseSourceSpan

	// Deps are the constructor parameters. Nil means the class has no
	// constructor of its own and inherits the parent factory.
	Deps []render3.R3DependencyMetadata

	// Selector is the unparsed selector, or nil
	Selector *string

	// Queries are the content queries of the directive
	Queries []*R3QueryMetadata

	Host R3HostMetadata

	UsesOnChanges bool

	Inputs  []R3BindingPropertyMetadata
	Outputs []R3BindingPropertyMetadata

	// UsesInheritance marks a directive that extends another decorated class
	UsesInheritance bool

	ExportAs *string

	// Providers is an array expression, or nil when the directive has none
	Providers output.OutputExpression
}

// R3BindingPropertyMetadata maps a class property to the public name it
// is bound under.
type R3BindingPropertyMetadata struct {
	ClassPropertyName   string
	BindingPropertyName string
}

// R3HostMetadata is the classified `host` map of a directive
type R3HostMetadata struct {
	// Attributes are static host attributes (`role: 'button'`)
	Attributes *util.OrderedMap[string]

	// Listeners map event names to handler expressions (`(click)`)
	Listeners *util.OrderedMap[string]

	// Properties map bound property names to expressions (`[title]`)
	Properties *util.OrderedMap[string]
}

// NewR3HostMetadata creates an empty R3HostMetadata
func NewR3HostMetadata() R3HostMetadata {
	return R3HostMetadata{
		Attributes: util.NewOrderedMap[string](),
		Listeners:  util.NewOrderedMap[string](),
		Properties: util.NewOrderedMap[string](),
	}
}

// QuerySelector is one token of a query predicate: either a string
// selector (a local ref name) or a type reference.
type QuerySelector struct {
	Value string
	Type  output.OutputExpression
}

// IsString reports whether the token is a non-empty string selector
func (q QuerySelector) IsString() bool {
	return q.Type == nil && q.Value != ""
}

// R3QueryMetadata describes a content or view query
type R3QueryMetadata struct {
	PropertyName string

	// First assigns only the first match instead of the whole list
	First bool

	Predicate []QuerySelector

	Descendants bool

	// Read is the token to read from matched nodes, or nil
	Read output.OutputExpression
}

// R3ComponentMetadata is the information needed to compile a component
// definition. It carries every directive field.
type R3ComponentMetadata struct {
	R3DirectiveMetadata

	Template R3ComponentTemplate

	// Directives maps selectors to the directives usable in the template
	Directives *util.OrderedMap[output.OutputExpression]

	// Pipes maps pipe names to the pipes usable in the template
	Pipes *util.OrderedMap[output.OutputExpression]

	ViewQueries []*R3QueryMetadata

	Styles []string

	// Encapsulation is nil when unspecified
	Encapsulation *core.ViewEncapsulation

	// ChangeDetection is nil when unspecified
	ChangeDetection *core.ChangeDetectionStrategy

	// Animations is an array expression, or nil
	Animations output.OutputExpression

	ViewProviders output.OutputExpression

	WrapDirectivesAndPipesInClosure bool

	Interpolation [2]string
}

// R3ComponentTemplate holds the already-parsed template of a component
type R3ComponentTemplate struct {
	Nodes              []TemplateNode
	NgContentSelectors []string
}

// TemplateNode is a node of a parsed template. Template parsing happens
// elsewhere; the compiler only hands nodes to its TemplateBuilder.
type TemplateNode interface {
	templateNode()
}

// TemplateElement is an element with static attributes
type TemplateElement struct {
	Name       string
	Attributes [][2]string
	Children   []TemplateNode
}

// TemplateText is static text
type TemplateText struct {
	Value string
}

// TemplateContent is an `<ng-content>` projection slot
type TemplateContent struct {
	Selector string
}

func (*TemplateElement) templateNode() {}
func (*TemplateText) templateNode()    {}
func (*TemplateContent) templateNode() {}

// TemplateBuildRequest is what the compiler passes to a TemplateBuilder
type TemplateBuildRequest struct {
	// FunctionName is the name of the generated template function
	FunctionName string
	Nodes        []TemplateNode

	NgContentSelectors []string

	// DirectiveMatcher is nil when the component uses no directives
	DirectiveMatcher *css.SelectorMatcher[output.OutputExpression]
	Pipes            *util.OrderedMap[output.OutputExpression]
	ViewQueries      []*R3QueryMetadata
	Pool             *constant.ConstantPool
	Interpolation    [2]string
}

// TemplateResult is the lowered template of a component
type TemplateResult struct {
	Function           output.OutputExpression
	ConstCount         int
	VarCount           int
	NgContentSelectors []string
	DirectivesUsed     []output.OutputExpression
	PipesUsed          []output.OutputExpression
}

// TemplateBuilder lowers template nodes into a template function
type TemplateBuilder interface {
	BuildTemplateFunction(req *TemplateBuildRequest) (*TemplateResult, error)
}

// CssShim scopes component styles to the component's host and content
// attributes.
type CssShim interface {
	ShimCssText(cssText, contentSelector, hostSelector string) string
}

// CompilationContext holds the collaborators shared by every definition
// compiled from one document. A context must not be shared between
// documents.
type CompilationContext struct {
	Pool            *constant.ConstantPool
	BindingParser   template_parser.BindingParser
	TemplateBuilder TemplateBuilder
	CssShim         CssShim
}

// NewCompilationContext creates a context with a fresh constant pool, the
// default binding parser and the ShadowCss shim. TemplateBuilder is left
// unset; components cannot be compiled until one is provided.
func NewCompilationContext(closureCompiler bool) *CompilationContext {
	return &CompilationContext{
		Pool:          constant.NewConstantPool(closureCompiler),
		BindingParser: template_parser.NewBindingParser(nil, [2]string{}),
		CssShim:       css.NewShadowCss(),
	}
}
