package metadata

import (
	"fmt"
	"strings"

	"ngdefc/packages/compiler/core"
	"ngdefc/packages/compiler/output"
	"ngdefc/packages/compiler/render3"
	"ngdefc/packages/compiler/render3/view"
	"ngdefc/packages/compiler/render3/view/compiler"
	"ngdefc/packages/compiler/util"
)

// Kind tells directives and components apart.
type Kind string

const (
	KindDirective Kind = "directive"
	KindComponent Kind = "component"
	KindPipe      Kind = "pipe"
)

// Options tune the conversion of a document.
type Options struct {
	// WrapInClosure applies to components that leave
	// wrapDirectivesAndPipesInClosure unset.
	WrapInClosure bool
}

// Unit is one declaration ready to be compiled. The field matching Kind
// is set.
type Unit struct {
	Name      string
	Kind      Kind
	Directive *compiler.DirectiveSummary
	Component *compiler.ComponentSummary
	Pipe      *render3.R3PipeMetadata
}

// Units converts every declaration of the document: directives, then
// components, then pipes, each group in document order.
func (d *Document) Units(opts Options) ([]Unit, error) {
	units := make([]Unit, 0, len(d.Directives)+len(d.Components)+len(d.Pipes))
	for i := range d.Directives {
		doc := &d.Directives[i]
		meta, err := directiveMetadata(doc)
		if err != nil {
			return nil, fmt.Errorf("directive %d (%s): %w", i, doc.Name, err)
		}
		units = append(units, Unit{
			Name:      doc.Name,
			Kind:      KindDirective,
			Directive: &compiler.DirectiveSummary{R3DirectiveMetadata: meta, RawHost: doc.Host.OrderedMap()},
		})
	}
	for i := range d.Components {
		doc := &d.Components[i]
		meta, err := componentMetadata(doc, opts)
		if err != nil {
			return nil, fmt.Errorf("component %d (%s): %w", i, doc.Name, err)
		}
		units = append(units, Unit{
			Name:      doc.Name,
			Kind:      KindComponent,
			Component: &compiler.ComponentSummary{R3ComponentMetadata: meta, RawHost: doc.Host.OrderedMap()},
		})
	}
	for i := range d.Pipes {
		doc := &d.Pipes[i]
		meta, err := pipeMetadata(doc)
		if err != nil {
			return nil, fmt.Errorf("pipe %d (%s): %w", i, doc.Name, err)
		}
		units = append(units, Unit{Name: doc.Name, Kind: KindPipe, Pipe: meta})
	}
	return units, nil
}

func pipeMetadata(doc *PipeDoc) (*render3.R3PipeMetadata, error) {
	meta := &render3.R3PipeMetadata{
		Name:              doc.Name,
		TypeArgumentCount: doc.TypeArguments,
		PipeName:          doc.PipeName,
		Pure:              doc.Pure == nil || *doc.Pure,
	}
	if doc.Name != "" {
		meta.Type = render3.NewR3Reference(doc.Name)
	}
	if !doc.InheritFactory {
		deps, err := dependencies(doc.Deps)
		if err != nil {
			return nil, err
		}
		meta.Deps = deps
	}
	return meta, nil
}

func directiveMetadata(doc *DirectiveDoc) (view.R3DirectiveMetadata, error) {
	meta := view.R3DirectiveMetadata{
		Name:              doc.Name,
		TypeArgumentCount: doc.TypeArguments,
		Selector:          doc.Selector,
		Host:              view.NewR3HostMetadata(),
		Inputs:            bindingProperties(doc.Inputs),
		Outputs:           bindingProperties(doc.Outputs),
		Queries:           queries(doc.Queries),
		UsesInheritance:   doc.UsesInheritance,
		UsesOnChanges:     doc.UsesOnChanges,
		ExportAs:          doc.ExportAs,
	}
	if doc.Name != "" {
		meta.Type = render3.NewR3Reference(doc.Name)
	}
	if !doc.InheritFactory {
		deps, err := dependencies(doc.Deps)
		if err != nil {
			return meta, err
		}
		meta.Deps = deps
	}
	if doc.Providers != nil {
		meta.Providers = referenceArray(doc.Providers)
	}
	return meta, nil
}

func componentMetadata(doc *ComponentDoc, opts Options) (view.R3ComponentMetadata, error) {
	base, err := directiveMetadata(&doc.DirectiveDoc)
	if err != nil {
		return view.R3ComponentMetadata{}, err
	}
	meta := view.R3ComponentMetadata{
		R3DirectiveMetadata: base,
		Template: view.R3ComponentTemplate{
			Nodes:              templateNodes(doc.Template),
			NgContentSelectors: doc.NgContentSelectors,
		},
		Directives:                      referenceMap(doc.Directives),
		Pipes:                           referenceMap(doc.Pipes),
		ViewQueries:                     queries(doc.ViewQueries),
		Styles:                          doc.Styles,
		WrapDirectivesAndPipesInClosure: opts.WrapInClosure,
	}
	if doc.WrapInClosure != nil {
		meta.WrapDirectivesAndPipesInClosure = *doc.WrapInClosure
	}
	if doc.Encapsulation != "" {
		encapsulation, ok := core.ParseViewEncapsulation(doc.Encapsulation)
		if !ok {
			return meta, fmt.Errorf("unknown encapsulation %q", doc.Encapsulation)
		}
		meta.Encapsulation = &encapsulation
	}
	if doc.ChangeDetection != "" {
		strategy, ok := core.ParseChangeDetectionStrategy(doc.ChangeDetection)
		if !ok {
			return meta, fmt.Errorf("unknown change detection strategy %q", doc.ChangeDetection)
		}
		meta.ChangeDetection = &strategy
	}
	if doc.Animations != nil {
		meta.Animations = referenceArray(doc.Animations)
	}
	if doc.ViewProviders != nil {
		meta.ViewProviders = referenceArray(doc.ViewProviders)
	}
	if err := util.AssertInterpolationSymbols("interpolation", doc.Interpolation); err != nil {
		return meta, err
	}
	if len(doc.Interpolation) == 2 {
		meta.Interpolation = [2]string{doc.Interpolation[0], doc.Interpolation[1]}
	}
	return meta, nil
}

// bindingProperties maps `classProp: bindingName` pairs. An empty binding
// name reuses the class property name.
func bindingProperties(m StringMap) []view.R3BindingPropertyMetadata {
	if len(m) == 0 {
		return nil
	}
	out := make([]view.R3BindingPropertyMetadata, len(m))
	for i, p := range m {
		binding := p.Value
		if binding == "" {
			binding = p.Key
		}
		out[i] = view.R3BindingPropertyMetadata{ClassPropertyName: p.Key, BindingPropertyName: binding}
	}
	return out
}

func dependencies(docs []DependencyDoc) ([]render3.R3DependencyMetadata, error) {
	deps := make([]render3.R3DependencyMetadata, 0, len(docs))
	for i, d := range docs {
		kind := d.Kind
		if kind == "" {
			kind = "token"
		}
		resolved, ok := render3.ParseResolvedDependencyType(kind)
		if !ok {
			return nil, fmt.Errorf("dependency %d: unknown kind %q", i, d.Kind)
		}
		dep := render3.R3DependencyMetadata{
			Resolved: resolved,
			Host:     d.Host,
			Optional: d.Optional,
			Self:     d.Self,
			SkipSelf: d.SkipSelf,
		}
		switch resolved {
		case render3.R3ResolvedDependencyTypeToken:
			if d.Token == "" {
				return nil, fmt.Errorf("dependency %d: token is required", i)
			}
			dep.Token = reference(d.Token)
		case render3.R3ResolvedDependencyTypeAttribute:
			if d.Token == "" {
				return nil, fmt.Errorf("dependency %d: attribute name is required", i)
			}
			dep.Token = output.Literal(d.Token)
		}
		deps = append(deps, dep)
	}
	return deps, nil
}

func queries(docs []QueryDoc) []*view.R3QueryMetadata {
	if len(docs) == 0 {
		return nil
	}
	out := make([]*view.R3QueryMetadata, len(docs))
	for i, q := range docs {
		predicate := make([]view.QuerySelector, 0, len(q.Predicate)+1)
		for _, s := range q.Predicate {
			predicate = append(predicate, view.QuerySelector{Value: s})
		}
		if q.Type != "" {
			predicate = append(predicate, view.QuerySelector{Type: reference(q.Type)})
		}
		meta := &view.R3QueryMetadata{
			PropertyName: q.Property,
			First:        q.First,
			Predicate:    predicate,
			Descendants:  q.Descendants,
		}
		if q.Read != "" {
			meta.Read = reference(q.Read)
		}
		out[i] = meta
	}
	return out
}

func templateNodes(docs []NodeDoc) []view.TemplateNode {
	if len(docs) == 0 {
		return nil
	}
	nodes := make([]view.TemplateNode, 0, len(docs))
	for _, n := range docs {
		switch {
		case n.Text != nil:
			nodes = append(nodes, &view.TemplateText{Value: *n.Text})
		case n.Content != nil:
			nodes = append(nodes, &view.TemplateContent{Selector: *n.Content})
		default:
			attrs := make([][2]string, len(n.Attributes))
			for i, p := range n.Attributes {
				attrs[i] = [2]string{p.Key, p.Value}
			}
			nodes = append(nodes, &view.TemplateElement{
				Name:       n.Element,
				Attributes: attrs,
				Children:   templateNodes(n.Children),
			})
		}
	}
	return nodes
}

// reference turns `ns.Name` into a property read on a variable.
func reference(name string) output.OutputExpression {
	parts := strings.Split(name, ".")
	var expr output.OutputExpression = output.Variable(parts[0])
	for _, part := range parts[1:] {
		expr = output.Prop(expr, part)
	}
	return expr
}

func referenceArray(names []string) output.OutputExpression {
	values := make([]output.OutputExpression, len(names))
	for i, name := range names {
		values[i] = reference(name)
	}
	return output.LiteralArr(values)
}

func referenceMap(m StringMap) *util.OrderedMap[output.OutputExpression] {
	if len(m) == 0 {
		return nil
	}
	out := util.NewOrderedMap[output.OutputExpression]()
	for _, p := range m {
		out.Set(p.Key, reference(p.Value))
	}
	return out
}
