package css

import (
	"fmt"
	"regexp"
	"strings"
)

// Capture groups of selectorRegexp
const (
	groupNot = iota + 1
	groupTag
	groupClass
	groupAttribute
	groupDoubleQuoted
	groupSingleQuoted
	groupUnquoted
	groupNotEnd
	groupSeparator
)

// Go regexp has no backreferences, so each attribute value quoting style
// gets its own group.
var selectorRegexp = regexp.MustCompile(
	`(\:not\()|` +
		`([-\w]+)|` +
		`(?:\.([-\w]+))|` +
		`(?:\[([-.\w*]+)(?:=(?:"([^\]"]*)"|'([^\]']*)'|([^\]"']*)))?\])|` +
		`(\))|` +
		`(\s*,\s*)`,
)

// CssSelector is one simple selector: an optional element, classes,
// attribute pairs and any :not() parts.
type CssSelector struct {
	Element      *string
	ClassNames   []string
	Attrs        []string // name, value, name, value, ...
	NotSelectors []*CssSelector
}

// NewCssSelector creates a new CssSelector
func NewCssSelector() *CssSelector {
	return &CssSelector{
		ClassNames:   []string{},
		Attrs:        []string{},
		NotSelectors: []*CssSelector{},
	}
}

// CreateCssSelector builds the selector describing a concrete element with
// the given static attributes, for matching against registered selectors.
func CreateCssSelector(element string, attrs [][2]string) *CssSelector {
	cssSelector := NewCssSelector()
	cssSelector.SetElement(element)
	for _, attr := range attrs {
		name, value := attr[0], attr[1]
		cssSelector.AddAttribute(name, value)
		if strings.ToLower(name) == "class" {
			for _, className := range strings.Fields(value) {
				cssSelector.AddClassName(className)
			}
		}
	}
	return cssSelector
}

// ParseCssSelector splits a comma separated selector list into selectors
func ParseCssSelector(selector string) ([]*CssSelector, error) {
	results := []*CssSelector{}
	addResult := func(cssSel *CssSelector) {
		if len(cssSel.NotSelectors) > 0 && cssSel.Element == nil &&
			len(cssSel.ClassNames) == 0 && len(cssSel.Attrs) == 0 {
			cssSel.SetElement("*")
		}
		results = append(results, cssSel)
	}

	cssSelector := NewCssSelector()
	current := cssSelector
	inNot := false
	for _, match := range selectorRegexp.FindAllStringSubmatch(selector, -1) {
		if match[groupNot] != "" {
			if inNot {
				return nil, fmt.Errorf("nesting :not is not allowed in a selector")
			}
			inNot = true
			current = NewCssSelector()
			cssSelector.NotSelectors = append(cssSelector.NotSelectors, current)
		}
		if match[groupTag] != "" {
			current.SetElement(match[groupTag])
		}
		if match[groupClass] != "" {
			current.AddClassName(match[groupClass])
		}
		if match[groupAttribute] != "" {
			value := match[groupDoubleQuoted] + match[groupSingleQuoted] + match[groupUnquoted]
			current.AddAttribute(match[groupAttribute], value)
		}
		if match[groupNotEnd] != "" {
			inNot = false
			current = cssSelector
		}
		if match[groupSeparator] != "" {
			if inNot {
				return nil, fmt.Errorf("multiple selectors in :not are not supported")
			}
			addResult(cssSelector)
			cssSelector = NewCssSelector()
			current = cssSelector
		}
	}
	addResult(cssSelector)
	return results, nil
}

// SetElement sets the element name
func (cs *CssSelector) SetElement(element string) {
	cs.Element = &element
}

// GetAttrs returns the static attributes implied by the selector, with the
// class names folded into a single `class` entry first.
func (cs *CssSelector) GetAttrs() []string {
	result := []string{}
	if len(cs.ClassNames) > 0 {
		result = append(result, "class", strings.Join(cs.ClassNames, " "))
	}
	return append(result, cs.Attrs...)
}

// AddAttribute adds an attribute; values are matched case-insensitively
func (cs *CssSelector) AddAttribute(name string, value string) {
	cs.Attrs = append(cs.Attrs, name, strings.ToLower(value))
}

// AddClassName adds a class name
func (cs *CssSelector) AddClassName(name string) {
	cs.ClassNames = append(cs.ClassNames, strings.ToLower(name))
}

func (cs *CssSelector) String() string {
	var b strings.Builder
	if cs.Element != nil {
		b.WriteString(*cs.Element)
	}
	for _, klass := range cs.ClassNames {
		b.WriteString("." + klass)
	}
	for i := 0; i < len(cs.Attrs); i += 2 {
		if value := cs.Attrs[i+1]; value != "" {
			fmt.Fprintf(&b, "[%s=%s]", cs.Attrs[i], value)
		} else {
			fmt.Fprintf(&b, "[%s]", cs.Attrs[i])
		}
	}
	for _, notSelector := range cs.NotSelectors {
		fmt.Fprintf(&b, ":not(%s)", notSelector)
	}
	return b.String()
}

// MatchCallback receives each registered selector that matched, with the
// context it was registered with.
type MatchCallback[T any] func(selector *CssSelector, ctx T)

// SelectorMatcher is a registry of selectors that can be queried with the
// selector of a concrete element.
type SelectorMatcher[T any] struct {
	elementMap          map[string][]*selectorContext[T]
	elementPartialMap   map[string]*SelectorMatcher[T]
	classMap            map[string][]*selectorContext[T]
	classPartialMap     map[string]*SelectorMatcher[T]
	attrValueMap        map[string]map[string][]*selectorContext[T]
	attrValuePartialMap map[string]map[string]*SelectorMatcher[T]
	listContexts        []*selectorListContext
}

// NewSelectorMatcher creates a new SelectorMatcher
func NewSelectorMatcher[T any]() *SelectorMatcher[T] {
	return &SelectorMatcher[T]{
		elementMap:          make(map[string][]*selectorContext[T]),
		elementPartialMap:   make(map[string]*SelectorMatcher[T]),
		classMap:            make(map[string][]*selectorContext[T]),
		classPartialMap:     make(map[string]*SelectorMatcher[T]),
		attrValueMap:        make(map[string]map[string][]*selectorContext[T]),
		attrValuePartialMap: make(map[string]map[string]*SelectorMatcher[T]),
	}
}

// AddSelectables registers every selector of a list under one context. A
// list reports at most one match per Match call.
func (sm *SelectorMatcher[T]) AddSelectables(cssSelectors []*CssSelector, ctx T) {
	var listContext *selectorListContext
	if len(cssSelectors) > 1 {
		listContext = &selectorListContext{}
		sm.listContexts = append(sm.listContexts, listContext)
	}
	for _, cssSelector := range cssSelectors {
		sm.addSelectable(cssSelector, ctx, listContext)
	}
}

func (sm *SelectorMatcher[T]) addSelectable(cssSelector *CssSelector, ctx T, listContext *selectorListContext) {
	matcher := sm
	classNames := cssSelector.ClassNames
	attrs := cssSelector.Attrs
	selectable := &selectorContext[T]{selector: cssSelector, ctx: ctx, listContext: listContext}

	if cssSelector.Element != nil && *cssSelector.Element != "" {
		element := *cssSelector.Element
		if len(attrs) == 0 && len(classNames) == 0 {
			addTerminal(matcher.elementMap, element, selectable)
		} else {
			matcher = addPartial(matcher.elementPartialMap, element)
		}
	}

	for i, className := range classNames {
		if len(attrs) == 0 && i == len(classNames)-1 {
			addTerminal(matcher.classMap, className, selectable)
		} else {
			matcher = addPartial(matcher.classPartialMap, className)
		}
	}

	for i := 0; i < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		if i == len(attrs)-2 {
			terminalValuesMap, ok := matcher.attrValueMap[name]
			if !ok {
				terminalValuesMap = make(map[string][]*selectorContext[T])
				matcher.attrValueMap[name] = terminalValuesMap
			}
			addTerminal(terminalValuesMap, value, selectable)
		} else {
			partialValuesMap, ok := matcher.attrValuePartialMap[name]
			if !ok {
				partialValuesMap = make(map[string]*SelectorMatcher[T])
				matcher.attrValuePartialMap[name] = partialValuesMap
			}
			matcher = addPartial(partialValuesMap, value)
		}
	}
}

func addTerminal[T any](m map[string][]*selectorContext[T], name string, selectable *selectorContext[T]) {
	m[name] = append(m[name], selectable)
}

func addPartial[T any](m map[string]*SelectorMatcher[T], name string) *SelectorMatcher[T] {
	matcher, ok := m[name]
	if !ok {
		matcher = NewSelectorMatcher[T]()
		m[name] = matcher
	}
	return matcher
}

// Match finds every registered selector matching cssSelector and invokes
// callback (which may be nil) for each. It reports whether anything matched.
func (sm *SelectorMatcher[T]) Match(cssSelector *CssSelector, callback MatchCallback[T]) bool {
	result := false
	for _, listContext := range sm.listContexts {
		listContext.alreadyMatched = false
	}

	if cssSelector.Element != nil {
		element := *cssSelector.Element
		result = matchTerminal(sm.elementMap, element, cssSelector, callback) || result
		result = matchPartial(sm.elementPartialMap, element, cssSelector, callback) || result
	}

	for _, className := range cssSelector.ClassNames {
		result = matchTerminal(sm.classMap, className, cssSelector, callback) || result
		result = matchPartial(sm.classPartialMap, className, cssSelector, callback) || result
	}

	attrs := cssSelector.Attrs
	for i := 0; i < len(attrs); i += 2 {
		name, value := attrs[i], attrs[i+1]
		if terminalValuesMap, ok := sm.attrValueMap[name]; ok {
			if value != "" {
				result = matchTerminal(terminalValuesMap, "", cssSelector, callback) || result
			}
			result = matchTerminal(terminalValuesMap, value, cssSelector, callback) || result
		}
		if partialValuesMap, ok := sm.attrValuePartialMap[name]; ok {
			if value != "" {
				result = matchPartial(partialValuesMap, "", cssSelector, callback) || result
			}
			result = matchPartial(partialValuesMap, value, cssSelector, callback) || result
		}
	}
	return result
}

func matchTerminal[T any](m map[string][]*selectorContext[T], name string, cssSelector *CssSelector, callback MatchCallback[T]) bool {
	selectables := append([]*selectorContext[T]{}, m[name]...)
	selectables = append(selectables, m["*"]...)
	result := false
	for _, selectable := range selectables {
		result = selectable.finalize(cssSelector, callback) || result
	}
	return result
}

func matchPartial[T any](m map[string]*SelectorMatcher[T], name string, cssSelector *CssSelector, callback MatchCallback[T]) bool {
	nested, ok := m[name]
	if !ok {
		return false
	}
	return nested.Match(cssSelector, callback)
}

type selectorListContext struct {
	alreadyMatched bool
}

type selectorContext[T any] struct {
	selector    *CssSelector
	ctx         T
	listContext *selectorListContext
}

func (sc *selectorContext[T]) finalize(cssSelector *CssSelector, callback MatchCallback[T]) bool {
	result := true
	pending := sc.listContext == nil || !sc.listContext.alreadyMatched
	if len(sc.selector.NotSelectors) > 0 && pending {
		notMatcher := NewSelectorMatcher[struct{}]()
		notMatcher.AddSelectables(sc.selector.NotSelectors, struct{}{})
		result = !notMatcher.Match(cssSelector, nil)
	}
	if result && callback != nil && pending {
		if sc.listContext != nil {
			sc.listContext.alreadyMatched = true
		}
		callback(sc.selector, sc.ctx)
	}
	return result
}
