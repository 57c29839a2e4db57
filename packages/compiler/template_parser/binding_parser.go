package template_parser

import (
	"strings"

	"ngdefc/packages/compiler/expression_parser"
	"ngdefc/packages/compiler/util"
)

const (
	animatePropPrefix = "animate-"
	animationPrefix   = "@"
)

// ParsedPropertyType is the kind of a host property binding
type ParsedPropertyType int

const (
	ParsedPropertyTypeDefault ParsedPropertyType = iota
	ParsedPropertyTypeLiteralAttr
	ParsedPropertyTypeAnimation
)

// ParsedProperty is a parsed `[name]="expression"` host property
type ParsedProperty struct {
	Name       string
	Expression *expression_parser.ASTWithSource
	Type       ParsedPropertyType
	SourceSpan *util.ParseSourceSpan
}

// IsAnimation reports whether the property binds an animation trigger
func (p *ParsedProperty) IsAnimation() bool {
	return p.Type == ParsedPropertyTypeAnimation
}

// ParsedEventType is the kind of a host listener
type ParsedEventType int

const (
	ParsedEventTypeRegular ParsedEventType = iota
	ParsedEventTypeAnimation
)

// ParsedEvent is a parsed `(name)="handler"` host listener. TargetOrPhase
// holds the global target (`window:resize`) for regular events and the
// phase (`@open.done`) for animation events.
type ParsedEvent struct {
	Name          string
	TargetOrPhase string
	Type          ParsedEventType
	Handler       *expression_parser.ASTWithSource
	SourceSpan    *util.ParseSourceSpan
}

// DirectiveSummary is the host-binding view of a directive the binding
// parser works from.
type DirectiveSummary struct {
	Name           string
	HostProperties *util.OrderedMap[string]
	HostListeners  *util.OrderedMap[string]
}

// BindingParser creates host property and listener bindings for a
// directive. Implementations may report errors for malformed expressions.
type BindingParser interface {
	CreateBoundHostProperties(summary *DirectiveSummary, span *util.ParseSourceSpan) ([]*ParsedProperty, error)
	CreateDirectiveHostEventAsts(summary *DirectiveSummary, span *util.ParseSourceSpan) ([]*ParsedEvent, error)
}

// DefaultBindingParser parses host bindings with the expression parser
type DefaultBindingParser struct {
	exprParser    *expression_parser.Parser
	interpolation [2]string
}

// NewBindingParser creates a DefaultBindingParser. A zero interpolation
// falls back to `{{ }}`.
func NewBindingParser(exprParser *expression_parser.Parser, interpolation [2]string) *DefaultBindingParser {
	if interpolation[0] == "" || interpolation[1] == "" {
		interpolation = expression_parser.DefaultInterpolation
	}
	if exprParser == nil {
		exprParser = expression_parser.NewParser(expression_parser.NewLexer())
	}
	return &DefaultBindingParser{exprParser: exprParser, interpolation: interpolation}
}

// CreateBoundHostProperties parses every host property of summary, in
// declaration order. It returns nil when the directive has none.
func (b *DefaultBindingParser) CreateBoundHostProperties(summary *DirectiveSummary, span *util.ParseSourceSpan) ([]*ParsedProperty, error) {
	if summary.HostProperties == nil || summary.HostProperties.Len() == 0 {
		return nil, nil
	}
	var props []*ParsedProperty
	var errs []string
	summary.HostProperties.Range(func(name, expression string) bool {
		prop := b.parsePropertyBinding(name, expression, span)
		if err := prop.Expression.Err(); err != nil {
			errs = append(errs, err.Error())
		}
		props = append(props, prop)
		return true
	})
	if len(errs) > 0 {
		return nil, util.NewCompileError(util.ErrParse, span, "%s", strings.Join(errs, "; "))
	}
	return props, nil
}

// CreateDirectiveHostEventAsts parses every host listener of summary, in
// declaration order. It returns nil when the directive has none.
func (b *DefaultBindingParser) CreateDirectiveHostEventAsts(summary *DirectiveSummary, span *util.ParseSourceSpan) ([]*ParsedEvent, error) {
	if summary.HostListeners == nil || summary.HostListeners.Len() == 0 {
		return nil, nil
	}
	var events []*ParsedEvent
	var errs []string
	summary.HostListeners.Range(func(name, expression string) bool {
		event, err := b.parseEvent(name, expression, span)
		if err != nil {
			errs = append(errs, err.Error())
			return true
		}
		if err := event.Handler.Err(); err != nil {
			errs = append(errs, err.Error())
		}
		events = append(events, event)
		return true
	})
	if len(errs) > 0 {
		return nil, util.NewCompileError(util.ErrParse, span, "%s", strings.Join(errs, "; "))
	}
	return events, nil
}

func (b *DefaultBindingParser) parsePropertyBinding(name, expression string, span *util.ParseSourceSpan) *ParsedProperty {
	isAnimation := false
	switch {
	case strings.HasPrefix(name, animatePropPrefix):
		isAnimation = true
		name = name[len(animatePropPrefix):]
	case strings.HasPrefix(name, animationPrefix):
		isAnimation = true
		name = name[len(animationPrefix):]
	}

	location := locationOf(span)
	if isAnimation {
		// Animation bindings without a value still bind the trigger.
		if expression == "" {
			expression = "null"
		}
		ast := b.exprParser.ParseBinding(expression, location, span)
		return &ParsedProperty{Name: name, Expression: ast, Type: ParsedPropertyTypeAnimation, SourceSpan: span}
	}

	ast := b.exprParser.ParseInterpolation(expression, location, span, b.interpolation)
	if ast == nil {
		ast = b.exprParser.ParseBinding(expression, location, span)
	}
	return &ParsedProperty{Name: name, Expression: ast, Type: ParsedPropertyTypeDefault, SourceSpan: span}
}

func (b *DefaultBindingParser) parseEvent(name, expression string, span *util.ParseSourceSpan) (*ParsedEvent, error) {
	location := locationOf(span)
	if strings.HasPrefix(name, animationPrefix) {
		return b.parseAnimationEvent(name[len(animationPrefix):], expression, location, span)
	}
	parts := util.SplitAtColon(name, []string{"", name})
	handler := b.exprParser.ParseAction(expression, location, span)
	return &ParsedEvent{
		Name:          parts[1],
		TargetOrPhase: parts[0],
		Type:          ParsedEventTypeRegular,
		Handler:       handler,
		SourceSpan:    span,
	}, nil
}

func (b *DefaultBindingParser) parseAnimationEvent(name, expression, location string, span *util.ParseSourceSpan) (*ParsedEvent, error) {
	parts := util.SplitAtPeriod(name, []string{name, ""})
	eventName := parts[0]
	phase := strings.ToLower(parts[1])
	switch phase {
	case "start", "done":
		handler := b.exprParser.ParseAction(expression, location, span)
		return &ParsedEvent{
			Name:          eventName,
			TargetOrPhase: phase,
			Type:          ParsedEventTypeAnimation,
			Handler:       handler,
			SourceSpan:    span,
		}, nil
	case "":
		return nil, util.NewCompileError(util.ErrParse, span,
			"The animation trigger output event (@%s) is missing its phase value name (start or done are currently supported)", eventName)
	default:
		return nil, util.NewCompileError(util.ErrParse, span,
			"The provided animation output phase value %q for \"@%s\" is not supported (use start or done)", phase, eventName)
	}
}

func locationOf(span *util.ParseSourceSpan) string {
	if span == nil || span.Start == nil {
		return ""
	}
	return span.Start.String()
}
