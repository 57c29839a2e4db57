package core

import (
	"ngdefc/packages/compiler/css"
)

// ViewEncapsulation is the style-scoping mode of a component
type ViewEncapsulation int

const (
	ViewEncapsulationEmulated ViewEncapsulation = iota
	ViewEncapsulationNative
	ViewEncapsulationNone
	ViewEncapsulationShadowDom
)

var viewEncapsulationNames = map[ViewEncapsulation]string{
	ViewEncapsulationEmulated:  "Emulated",
	ViewEncapsulationNative:    "Native",
	ViewEncapsulationNone:      "None",
	ViewEncapsulationShadowDom: "ShadowDom",
}

func (v ViewEncapsulation) String() string {
	if name, ok := viewEncapsulationNames[v]; ok {
		return name
	}
	return "Unknown"
}

// ParseViewEncapsulation maps a mode name back to its value
func ParseViewEncapsulation(name string) (ViewEncapsulation, bool) {
	for v, n := range viewEncapsulationNames {
		if n == name {
			return v, true
		}
	}
	return 0, false
}

// ChangeDetectionStrategy represents the change detection strategy
type ChangeDetectionStrategy int

const (
	ChangeDetectionStrategyOnPush ChangeDetectionStrategy = iota
	ChangeDetectionStrategyDefault
)

func (c ChangeDetectionStrategy) String() string {
	if c == ChangeDetectionStrategyOnPush {
		return "OnPush"
	}
	return "Default"
}

// ParseChangeDetectionStrategy maps a strategy name back to its value
func ParseChangeDetectionStrategy(name string) (ChangeDetectionStrategy, bool) {
	switch name {
	case "OnPush":
		return ChangeDetectionStrategyOnPush, true
	case "Default":
		return ChangeDetectionStrategyDefault, true
	}
	return 0, false
}

// InjectFlags represents injection flags for dependency injection
type InjectFlags int

const (
	InjectFlagsDefault  InjectFlags = 0
	InjectFlagsHost     InjectFlags = 1 << 0
	InjectFlagsSelf     InjectFlags = 1 << 1
	InjectFlagsSkipSelf InjectFlags = 1 << 2
	InjectFlagsOptional InjectFlags = 1 << 3
)

// SelectorFlags are flags used to generate R3-style CSS Selectors
type SelectorFlags int

const (
	SelectorFlagsNOT       SelectorFlags = 0b0001 // Beginning of a new negative selector
	SelectorFlagsATTRIBUTE SelectorFlags = 0b0010 // Mode for matching attributes
	SelectorFlagsELEMENT   SelectorFlags = 0b0100 // Mode for matching tag names
	SelectorFlagsCLASS     SelectorFlags = 0b1000 // Mode for matching class names
)

// R3CssSelector is a flat selector: strings interleaved with SelectorFlags
type R3CssSelector []interface{}

// R3CssSelectorList is one R3CssSelector per comma separated selector
type R3CssSelectorList []R3CssSelector

// RenderFlags are passed into generated functions to select the block to run
type RenderFlags int

const (
	RenderFlagsCreate RenderFlags = 0b01
	RenderFlagsUpdate RenderFlags = 0b10
)

// AttributeMarker separates sections of a static attributes array
type AttributeMarker int

const (
	AttributeMarkerNamespaceURI AttributeMarker = iota
	AttributeMarkerClasses
	AttributeMarkerStyles
	AttributeMarkerSelectOnly
)

// ParseSelectorToR3Selector lowers a CSS selector string into the flat
// array form matched by the runtime. A nil or empty selector yields an empty
// list.
func ParseSelectorToR3Selector(selector *string) (R3CssSelectorList, error) {
	if selector == nil || *selector == "" {
		return R3CssSelectorList{}, nil
	}
	selectors, err := css.ParseCssSelector(*selector)
	if err != nil {
		return nil, err
	}
	result := make(R3CssSelectorList, len(selectors))
	for i, s := range selectors {
		result[i] = parserSelectorToR3Selector(s)
	}
	return result, nil
}

func parserSelectorToR3Selector(selector *css.CssSelector) R3CssSelector {
	positive := parserSelectorToSimpleSelector(selector)
	for _, notSelector := range selector.NotSelectors {
		positive = append(positive, parserSelectorToNegativeSelector(notSelector)...)
	}
	return positive
}

func parserSelectorToSimpleSelector(selector *css.CssSelector) R3CssSelector {
	elementName := ""
	if selector.Element != nil && *selector.Element != "*" {
		elementName = *selector.Element
	}
	result := R3CssSelector{elementName}
	for _, attr := range selector.Attrs {
		result = append(result, attr)
	}
	return append(result, classesOf(selector)...)
}

func parserSelectorToNegativeSelector(selector *css.CssSelector) R3CssSelector {
	classes := classesOf(selector)
	switch {
	case selector.Element != nil:
		result := R3CssSelector{SelectorFlagsNOT | SelectorFlagsELEMENT, *selector.Element}
		for _, attr := range selector.Attrs {
			result = append(result, attr)
		}
		return append(result, classes...)
	case len(selector.Attrs) > 0:
		result := R3CssSelector{SelectorFlagsNOT | SelectorFlagsATTRIBUTE}
		for _, attr := range selector.Attrs {
			result = append(result, attr)
		}
		return append(result, classes...)
	case len(selector.ClassNames) > 0:
		result := R3CssSelector{SelectorFlagsNOT | SelectorFlagsCLASS}
		for _, name := range selector.ClassNames {
			result = append(result, name)
		}
		return result
	}
	return R3CssSelector{}
}

func classesOf(selector *css.CssSelector) R3CssSelector {
	if len(selector.ClassNames) == 0 {
		return nil
	}
	classes := R3CssSelector{SelectorFlagsCLASS}
	for _, name := range selector.ClassNames {
		classes = append(classes, name)
	}
	return classes
}
