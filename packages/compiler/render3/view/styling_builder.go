package view

import (
	"regexp"
	"strings"

	"ngdefc/packages/compiler/core"
	ep "ngdefc/packages/compiler/expression_parser"
	"ngdefc/packages/compiler/output"
	constant "ngdefc/packages/compiler/pool"
	"ngdefc/packages/compiler/render3"
	"ngdefc/packages/compiler/render3/r3_identifiers"
	"ngdefc/packages/compiler/util"
)

// HostBindingKind is how a bound host property is lowered
type HostBindingKind int

const (
	// HostBindingKindProperty is a DOM property set with elementProperty
	HostBindingKindProperty HostBindingKind = iota
	// HostBindingKindAttribute is `attr.<name>`, set with elementAttribute
	HostBindingKindAttribute
	// HostBindingKindSyntheticProperty is an animation trigger `@name`
	HostBindingKindSyntheticProperty
	HostBindingKindStyleProp
	HostBindingKindStyleMap
	HostBindingKindClassProp
	HostBindingKindClassMap
)

func (k HostBindingKind) String() string {
	switch k {
	case HostBindingKindProperty:
		return "property"
	case HostBindingKindAttribute:
		return "attribute"
	case HostBindingKindSyntheticProperty:
		return "synthetic-property"
	case HostBindingKindStyleProp:
		return "style-prop"
	case HostBindingKindStyleMap:
		return "style-map"
	case HostBindingKindClassProp:
		return "class-prop"
	case HostBindingKindClassMap:
		return "class-map"
	}
	return "unknown"
}

// IsStyling reports whether the binding belongs to the StylingBuilder
func (k HostBindingKind) IsStyling() bool {
	return k >= HostBindingKindStyleProp
}

var attrRegExp = regexp.MustCompile(`attr\.([^\]]+)`)

// HostBinding is a classified host property binding
type HostBinding struct {
	Kind HostBindingKind
	// Name is the property, attribute, style or class name the binding
	// targets. It is empty for map bindings.
	Name string
	Unit string
}

// ClassifyHostBinding decides once how the host property `name` is lowered
func ClassifyHostBinding(name string, isAnimation bool) HostBinding {
	prefix := name
	if len(prefix) > 5 {
		prefix = prefix[:5]
	}
	switch strings.ToLower(prefix) {
	case "style":
		if !strings.Contains(name, ".") {
			return HostBinding{Kind: HostBindingKindStyleMap}
		}
		prop, unit := ParseNamedProperty(name)
		return HostBinding{Kind: HostBindingKindStyleProp, Name: prop, Unit: unit}
	case "class":
		if !strings.Contains(name, ".") {
			return HostBinding{Kind: HostBindingKindClassMap}
		}
		prop, _ := ParseNamedProperty(name)
		return HostBinding{Kind: HostBindingKindClassProp, Name: prop}
	}
	if m := attrRegExp.FindStringSubmatch(name); m != nil {
		return HostBinding{Kind: HostBindingKindAttribute, Name: m[1]}
	}
	if isAnimation {
		return HostBinding{Kind: HostBindingKindSyntheticProperty, Name: render3.PrepareSyntheticPropertyName(name)}
	}
	return HostBinding{Kind: HostBindingKindProperty, Name: name}
}

// Instruction is a runtime call whose arguments are built once the value
// conversion function is known.
type Instruction struct {
	Reference   *output.ExternalReference
	SourceSpan  *util.ParseSourceSpan
	BuildParams func(convertFn func(ep.AST) (output.OutputExpression, error)) ([]output.OutputExpression, error)
}

type boundStylingEntry struct {
	name       string
	unit       string
	value      ep.AST
	sourceSpan *util.ParseSourceSpan
}

var sanitizableStyles = map[string]bool{
	"background":       true,
	"background-image": true,
	"border-image":     true,
	"filter":           true,
	"list-style":       true,
	"list-style-image": true,
	"clip-path":        true,
}

// StylingBuilder collects the static and bound styles and classes of one
// element and produces the styling instructions for it.
type StylingBuilder struct {
	elementIndexExpr output.OutputExpression
	directiveExpr    output.OutputExpression

	hasBindingsOrInitialValues bool
	hasInitialValues           bool

	classMapInput     *boundStylingEntry
	styleMapInput     *boundStylingEntry
	singleStyleInputs []*boundStylingEntry
	singleClassInputs []*boundStylingEntry
	lastStylingInput  *boundStylingEntry

	stylesIndex        *util.OrderedMap[int]
	classesIndex       *util.OrderedMap[int]
	initialStyleValues *util.OrderedMap[string]
	initialClassValues *util.OrderedMap[bool]

	useDefaultSanitizer bool
	applyFnRequired     bool
}

// NewStylingBuilder creates a builder for the element at elementIndexExpr.
// directiveExpr is set when styling a host element from a directive.
func NewStylingBuilder(elementIndexExpr, directiveExpr output.OutputExpression) *StylingBuilder {
	return &StylingBuilder{
		elementIndexExpr:   elementIndexExpr,
		directiveExpr:      directiveExpr,
		stylesIndex:        util.NewOrderedMap[int](),
		classesIndex:       util.NewOrderedMap[int](),
		initialStyleValues: util.NewOrderedMap[string](),
		initialClassValues: util.NewOrderedMap[bool](),
	}
}

// HasBindingsOrInitialValues reports whether any styling was registered
func (b *StylingBuilder) HasBindingsOrInitialValues() bool {
	return b.hasBindingsOrInitialValues
}

// RegisterBinding routes a classified styling binding into the builder.
// Non-styling kinds are ignored and reported as false.
func (b *StylingBuilder) RegisterBinding(binding HostBinding, value ep.AST, span *util.ParseSourceSpan) bool {
	switch binding.Kind {
	case HostBindingKindStyleProp:
		b.RegisterStyleInput(binding.Name, value, binding.Unit, span)
	case HostBindingKindStyleMap:
		b.RegisterStyleInput("", value, "", span)
	case HostBindingKindClassProp:
		b.RegisterClassInput(binding.Name, value, span)
	case HostBindingKindClassMap:
		b.RegisterClassInput("", value, span)
	default:
		return false
	}
	return true
}

// RegisterStyleInput registers `[style.prop.unit]`, or `[style]` when
// propertyName is empty.
func (b *StylingBuilder) RegisterStyleInput(propertyName string, value ep.AST, unit string, span *util.ParseSourceSpan) {
	entry := &boundStylingEntry{name: propertyName, unit: unit, value: value, sourceSpan: span}
	if propertyName != "" {
		b.singleStyleInputs = append(b.singleStyleInputs, entry)
		b.useDefaultSanitizer = b.useDefaultSanitizer || sanitizableStyles[propertyName]
		registerIntoMap(b.stylesIndex, propertyName)
	} else {
		b.useDefaultSanitizer = true
		b.styleMapInput = entry
	}
	b.lastStylingInput = entry
	b.hasBindingsOrInitialValues = true
	b.applyFnRequired = true
}

// RegisterClassInput registers `[class.name]`, or `[class]` when className
// is empty.
func (b *StylingBuilder) RegisterClassInput(className string, value ep.AST, span *util.ParseSourceSpan) {
	entry := &boundStylingEntry{name: className, value: value, sourceSpan: span}
	if className != "" {
		b.singleClassInputs = append(b.singleClassInputs, entry)
		registerIntoMap(b.classesIndex, className)
	} else {
		b.classMapInput = entry
	}
	b.lastStylingInput = entry
	b.hasBindingsOrInitialValues = true
	b.applyFnRequired = true
}

// RegisterStyleAttr registers a static `style` attribute
func (b *StylingBuilder) RegisterStyleAttr(value string) {
	b.initialStyleValues = util.NewOrderedMap[string]()
	styles := ParseStyle(value)
	for i := 0; i+1 < len(styles); i += 2 {
		b.initialStyleValues.Set(styles[i], styles[i+1])
		b.hasInitialValues = true
		b.hasBindingsOrInitialValues = true
	}
}

// RegisterClassAttr registers a static `class` attribute
func (b *StylingBuilder) RegisterClassAttr(value string) {
	b.initialClassValues = util.NewOrderedMap[bool]()
	for _, className := range strings.Fields(value) {
		b.initialClassValues.Set(className, true)
		b.hasInitialValues = true
		b.hasBindingsOrInitialValues = true
	}
}

func registerIntoMap(m *util.OrderedMap[int], key string) {
	if _, ok := m.Get(key); !ok {
		m.Set(key, m.Len())
	}
}

// PopulateInitialStylingAttrs appends the static classes and styles as
// `[Classes, names..., Styles, prop, value...]`.
func (b *StylingBuilder) PopulateInitialStylingAttrs(attrs []output.OutputExpression) []output.OutputExpression {
	if b.initialClassValues.Len() > 0 {
		attrs = append(attrs, output.Literal(int(core.AttributeMarkerClasses)))
		for _, className := range b.initialClassValues.Keys() {
			attrs = append(attrs, output.Literal(className))
		}
	}
	if b.initialStyleValues.Len() > 0 {
		attrs = append(attrs, output.Literal(int(core.AttributeMarkerStyles)))
		b.initialStyleValues.Range(func(prop, value string) bool {
			attrs = append(attrs, output.Literal(prop), output.Literal(value))
			return true
		})
	}
	return attrs
}

// BuildHostAttrsInstruction builds `elementHostAttrs(ctx, [...])` carrying
// attrs followed by the static styling. It returns nil outside of a
// directive or when there is nothing to declare.
func (b *StylingBuilder) BuildHostAttrsInstruction(span *util.ParseSourceSpan, attrs []output.OutputExpression, pool *constant.ConstantPool) *Instruction {
	if b.directiveExpr == nil || (len(attrs) == 0 && !b.hasInitialValues) {
		return nil
	}
	return &Instruction{
		Reference:  r3_identifiers.ElementHostAttrs,
		SourceSpan: span,
		BuildParams: func(func(ep.AST) (output.OutputExpression, error)) ([]output.OutputExpression, error) {
			all := b.PopulateInitialStylingAttrs(append([]output.OutputExpression(nil), attrs...))
			return []output.OutputExpression{b.directiveExpr, constantLiteralFromArray(pool, all)}, nil
		},
	}
}

// BuildElementStylingInstruction builds `elementStyling(classes, styles,
// sanitizer, directive)`. Unused trailing arguments are left out unless a
// later argument is present.
func (b *StylingBuilder) BuildElementStylingInstruction(span *util.ParseSourceSpan, pool *constant.ConstantPool) *Instruction {
	if !b.hasBindingsOrInitialValues {
		return nil
	}
	return &Instruction{
		Reference:  r3_identifiers.ElementStyling,
		SourceSpan: span,
		BuildParams: func(func(ep.AST) (output.OutputExpression, error)) ([]output.OutputExpression, error) {
			classNames := literalKeys(b.classesIndex)
			styleProps := literalKeys(b.stylesIndex)

			expectedArgs := 0
			switch {
			case b.directiveExpr != nil:
				expectedArgs = 4
			case b.useDefaultSanitizer:
				expectedArgs = 3
			case len(styleProps) > 0:
				expectedArgs = 2
			case len(classNames) > 0:
				expectedArgs = 1
			}

			var params []output.OutputExpression
			params = addParam(params, len(classNames) > 0, func() output.OutputExpression {
				return constantLiteralFromArray(pool, classNames)
			}, 1, expectedArgs)
			params = addParam(params, len(styleProps) > 0, func() output.OutputExpression {
				return constantLiteralFromArray(pool, styleProps)
			}, 2, expectedArgs)
			params = addParam(params, b.useDefaultSanitizer, func() output.OutputExpression {
				return output.ImportExpr(r3_identifiers.DefaultStyleSanitizer)
			}, 3, expectedArgs)
			if b.directiveExpr != nil {
				params = append(params, b.directiveExpr)
			}
			return params, nil
		},
	}
}

// BuildUpdateLevelInstructions returns the map, style prop, class prop and
// apply instructions in that order. Values are passed through
// valueConverter immediately so pure function slots are allocated before
// the caller counts them.
func (b *StylingBuilder) BuildUpdateLevelInstructions(valueConverter *ValueConverter) ([]*Instruction, error) {
	if !b.hasBindingsOrInitialValues {
		return nil, nil
	}
	var instructions []*Instruction
	mapInstruction, err := b.buildStylingMap(valueConverter)
	if err != nil {
		return nil, err
	}
	if mapInstruction != nil {
		instructions = append(instructions, mapInstruction)
	}
	styles, err := b.buildSingleInputs(r3_identifiers.ElementStyleProp, b.singleStyleInputs, b.stylesIndex, true, valueConverter)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, styles...)
	classes, err := b.buildSingleInputs(r3_identifiers.ElementClassProp, b.singleClassInputs, b.classesIndex, false, valueConverter)
	if err != nil {
		return nil, err
	}
	instructions = append(instructions, classes...)
	if b.applyFnRequired {
		instructions = append(instructions, b.buildApplyFn())
	}
	return instructions, nil
}

func (b *StylingBuilder) buildStylingMap(valueConverter *ValueConverter) (*Instruction, error) {
	if b.classMapInput == nil && b.styleMapInput == nil {
		return nil, nil
	}
	stylingInput := b.classMapInput
	if stylingInput == nil {
		stylingInput = b.styleMapInput
	}
	var classValue, styleValue ep.AST
	var err error
	if b.classMapInput != nil {
		if classValue, err = valueConverter.Convert(b.classMapInput.value); err != nil {
			return nil, err
		}
	}
	if b.styleMapInput != nil {
		if styleValue, err = valueConverter.Convert(b.styleMapInput.value); err != nil {
			return nil, err
		}
	}
	return &Instruction{
		Reference:  r3_identifiers.ElementStylingMap,
		SourceSpan: stylingInput.sourceSpan,
		BuildParams: func(convertFn func(ep.AST) (output.OutputExpression, error)) ([]output.OutputExpression, error) {
			params := []output.OutputExpression{b.elementIndexExpr}
			if classValue != nil {
				v, err := convertFn(classValue)
				if err != nil {
					return nil, err
				}
				params = append(params, v)
			} else if styleValue != nil || b.directiveExpr != nil {
				params = append(params, output.NullExpr)
			}
			if styleValue != nil {
				v, err := convertFn(styleValue)
				if err != nil {
					return nil, err
				}
				params = append(params, v)
			} else if b.directiveExpr != nil {
				params = append(params, output.NullExpr)
			}
			if b.directiveExpr != nil {
				params = append(params, b.directiveExpr)
			}
			return params, nil
		},
	}, nil
}

func (b *StylingBuilder) buildSingleInputs(
	reference *output.ExternalReference,
	inputs []*boundStylingEntry,
	index *util.OrderedMap[int],
	allowUnits bool,
	valueConverter *ValueConverter,
) ([]*Instruction, error) {
	instructions := make([]*Instruction, 0, len(inputs))
	for _, input := range inputs {
		input := input
		bindingIndex, _ := index.Get(input.name)
		value, err := valueConverter.Convert(input.value)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, &Instruction{
			Reference:  reference,
			SourceSpan: input.sourceSpan,
			BuildParams: func(convertFn func(ep.AST) (output.OutputExpression, error)) ([]output.OutputExpression, error) {
				converted, err := convertFn(value)
				if err != nil {
					return nil, err
				}
				params := []output.OutputExpression{b.elementIndexExpr, output.Literal(bindingIndex), converted}
				if allowUnits {
					if input.unit != "" {
						params = append(params, output.Literal(input.unit))
					} else if b.directiveExpr != nil {
						params = append(params, output.NullExpr)
					}
				}
				if b.directiveExpr != nil {
					params = append(params, b.directiveExpr)
				}
				return params, nil
			},
		})
	}
	return instructions, nil
}

func (b *StylingBuilder) buildApplyFn() *Instruction {
	var span *util.ParseSourceSpan
	if b.lastStylingInput != nil {
		span = b.lastStylingInput.sourceSpan
	}
	return &Instruction{
		Reference:  r3_identifiers.ElementStylingApply,
		SourceSpan: span,
		BuildParams: func(func(ep.AST) (output.OutputExpression, error)) ([]output.OutputExpression, error) {
			params := []output.OutputExpression{b.elementIndexExpr}
			if b.directiveExpr != nil {
				params = append(params, b.directiveExpr)
			}
			return params, nil
		},
	}
}

func literalKeys(m *util.OrderedMap[int]) []output.OutputExpression {
	keys := m.Keys()
	result := make([]output.OutputExpression, len(keys))
	for i, k := range keys {
		result[i] = output.Literal(k)
	}
	return result
}

func constantLiteralFromArray(pool *constant.ConstantPool, values []output.OutputExpression) output.OutputExpression {
	if len(values) == 0 {
		return output.NullExpr
	}
	return pool.GetConstLiteral(output.LiteralArr(values), true)
}

// addParam appends value when predicate holds, or null when a later
// argument up to totalExpectedArgs still has to be passed.
func addParam(params []output.OutputExpression, predicate bool, value func() output.OutputExpression, argNumber, totalExpectedArgs int) []output.OutputExpression {
	if predicate {
		return append(params, value())
	}
	if argNumber < totalExpectedArgs {
		return append(params, output.NullExpr)
	}
	return params
}
