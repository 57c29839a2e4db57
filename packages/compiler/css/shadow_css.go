package css

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	polyfillHost             = "-shadowcsshost"
	polyfillHostContext      = "-shadowcsscontext"
	polyfillHostNoCombinator = polyfillHost + "-no-combinator"
	blockPlaceholder         = "%BLOCK%"
	selectorPlaceholder      = "__ph-%d__"
)

// At-rules whose blocks hold rules that need scoping themselves
var scopedAtRuleIdentifiers = []string{"@media", "@supports", "@document", "@layer", "@container", "@scope"}

var (
	commentRe             = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	colonHostContextRe    = regexp.MustCompile(`:host-context`)
	colonHostRe           = regexp.MustCompile(`:host`)
	cssColonHostRe        = regexp.MustCompile(`-shadowcsshost(?:\(([^)]+)\))?([^,{]*)`)
	cssColonHostContextRe = regexp.MustCompile(`-shadowcsscontext(?:\(([^)]+)\))?([^,{]*)`)
	shadowDeepSelectors   = regexp.MustCompile(`(?:>>>)|(?:/deep/)|(?:::ng-deep)`)
	shadowDOMSelectorsRe  = regexp.MustCompile(`::shadow|::content|/shadow-deep/|/shadow/`)
	combinatorRe          = regexp.MustCompile(`\s*[>+~]\s*|\s+`)
	placeholderRe         = regexp.MustCompile(`__ph-(\d+)__`)
	ruleRe                = regexp.MustCompile(`(\s*)([^;\{\}]+?)(\s*)((?:\{` + blockPlaceholder + `\}?\s*;?)|(?:\s*;))`)
)

// ShadowCss rewrites component styles for emulated encapsulation: every
// selector is narrowed by the content attribute, and :host selectors are
// turned into selectors on the host attribute.
type ShadowCss struct{}

// NewShadowCss creates a new ShadowCss instance
func NewShadowCss() *ShadowCss {
	return &ShadowCss{}
}

// ShimCssText scopes cssText. selector is the content attribute name and
// hostSelector the host attribute name, both without brackets.
func (sc *ShadowCss) ShimCssText(cssText string, selector string, hostSelector string) string {
	cssText = commentRe.ReplaceAllString(cssText, "")
	cssText = colonHostContextRe.ReplaceAllString(cssText, polyfillHostContext)
	cssText = colonHostRe.ReplaceAllString(cssText, polyfillHost)
	cssText = sc.convertColonHost(cssText)
	cssText = sc.convertColonHostContext(cssText)
	cssText = shadowDOMSelectorsRe.ReplaceAllString(cssText, " ")
	if selector != "" {
		cssText = sc.scopeSelectors(cssText, selector, hostSelector)
	}
	return strings.TrimSpace(cssText)
}

func (sc *ShadowCss) convertColonHost(cssText string) string {
	return cssColonHostRe.ReplaceAllStringFunc(cssText, func(match string) string {
		m := cssColonHostRe.FindStringSubmatch(match)
		hostSelectors, otherSelectors := m[1], m[2]
		if hostSelectors == "" {
			return polyfillHostNoCombinator + otherSelectors
		}
		converted := []string{}
		for _, hostSelector := range splitOnTopLevelCommas(hostSelectors) {
			if hostSelector = strings.TrimSpace(hostSelector); hostSelector == "" {
				continue
			}
			converted = append(converted, polyfillHostNoCombinator+hostSelector+otherSelectors)
		}
		return strings.Join(converted, ",")
	})
}

// :host-context(.x) y matches both when the host itself has .x and when an
// ancestor does.
func (sc *ShadowCss) convertColonHostContext(cssText string) string {
	return cssColonHostContextRe.ReplaceAllStringFunc(cssText, func(match string) string {
		m := cssColonHostContextRe.FindStringSubmatch(match)
		contexts, suffix := m[1], m[2]
		if contexts == "" {
			return polyfillHostNoCombinator + suffix
		}
		converted := []string{}
		for _, context := range splitOnTopLevelCommas(contexts) {
			if context = strings.TrimSpace(context); context == "" {
				continue
			}
			converted = append(converted,
				polyfillHostNoCombinator+context+suffix,
				context+" "+polyfillHostNoCombinator+suffix)
		}
		return strings.Join(converted, ", ")
	})
}

func (sc *ShadowCss) scopeSelectors(cssText string, scopeSelector string, hostSelector string) string {
	return ProcessRules(cssText, func(rule *CssRule) *CssRule {
		selector, content := rule.Selector, rule.Content
		switch {
		case !strings.HasPrefix(selector, "@"):
			selector = sc.scopeSelector(selector, scopeSelector, hostSelector)
		case hasAnyPrefix(selector, scopedAtRuleIdentifiers):
			content = sc.scopeSelectors(content, scopeSelector, hostSelector)
		case strings.HasPrefix(selector, "@font-face"), strings.HasPrefix(selector, "@page"):
			content = stripScopingSelectors(content)
		}
		return NewCssRule(selector, content)
	})
}

func (sc *ShadowCss) scopeSelector(selector string, scopeSelector string, hostSelector string) string {
	parts := splitOnTopLevelCommas(selector)
	scoped := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var deepPart string
		if loc := shadowDeepSelectors.FindStringIndex(part); loc != nil {
			deepPart = strings.TrimSpace(part[loc[1]:])
			part = strings.TrimSpace(part[:loc[0]])
		}
		result := part
		if part != "" {
			result = sc.applySelectorScope(part, scopeSelector, hostSelector)
		}
		if deepPart != "" {
			result = strings.TrimSpace(result + " " + deepPart)
		}
		scoped = append(scoped, result)
	}
	return strings.Join(scoped, ", ")
}

// applySelectorScope scopes each compound selector between combinators
func (sc *ShadowCss) applySelectorScope(selector string, scopeSelector string, hostSelector string) string {
	safe := newSafeSelector(selector)
	content := safe.content
	// Compounds before a host selector are ancestors of the host and stay
	// unscoped.
	shouldScope := !strings.Contains(content, polyfillHostNoCombinator)
	scope := func(compound string) string {
		shouldScope = shouldScope || strings.Contains(compound, polyfillHostNoCombinator)
		if !shouldScope {
			return compound
		}
		return scopeCompound(compound, scopeSelector, hostSelector)
	}
	var b strings.Builder
	last := 0
	for _, loc := range combinatorRe.FindAllStringIndex(content, -1) {
		b.WriteString(scope(content[last:loc[0]]))
		if combinator := strings.TrimSpace(content[loc[0]:loc[1]]); combinator != "" {
			b.WriteString(" " + combinator + " ")
		} else {
			b.WriteString(" ")
		}
		last = loc[1]
	}
	b.WriteString(scope(content[last:]))
	return safe.restore(b.String())
}

func scopeCompound(compound string, scopeSelector string, hostSelector string) string {
	if compound == "" {
		return ""
	}
	if strings.Contains(compound, polyfillHostNoCombinator) {
		rest := strings.Replace(compound, polyfillHostNoCombinator, "", 1)
		return insertBeforePseudo(rest, "["+hostSelector+"]")
	}
	return insertBeforePseudo(compound, "["+scopeSelector+"]")
}

// insertBeforePseudo places attr right before the first pseudo-class or
// pseudo-element of a compound selector.
func insertBeforePseudo(compound string, attr string) string {
	if idx := strings.IndexByte(compound, ':'); idx >= 0 {
		return compound[:idx] + attr + compound[idx:]
	}
	return compound + attr
}

func stripScopingSelectors(cssText string) string {
	return ProcessRules(cssText, func(rule *CssRule) *CssRule {
		selector := shadowDeepSelectors.ReplaceAllString(rule.Selector, " ")
		selector = strings.ReplaceAll(selector, polyfillHostNoCombinator, " ")
		return NewCssRule(selector, rule.Content)
	})
}

// safeSelector hides attribute selectors and parenthesized arguments so that
// combinators and colons inside them are not treated as structure.
type safeSelector struct {
	placeholders []string
	content      string
}

func newSafeSelector(selector string) *safeSelector {
	ss := &safeSelector{}
	var b strings.Builder
	depth := 0
	var closeChar byte
	start := 0
	for i := 0; i < len(selector); i++ {
		c := selector[i]
		switch {
		case c == '\\' && i+1 < len(selector):
			if depth == 0 {
				b.WriteString(selector[i : i+2])
			}
			i++
		case depth == 0 && (c == '[' || c == '('):
			closeChar = ']'
			if c == '(' {
				closeChar = ')'
			}
			b.WriteByte(c)
			depth = 1
			start = i + 1
		case depth > 0 && c == selector[start-1]:
			depth++
		case depth > 0 && c == closeChar:
			depth--
			if depth == 0 {
				fmt.Fprintf(&b, selectorPlaceholder, len(ss.placeholders))
				ss.placeholders = append(ss.placeholders, selector[start:i])
				b.WriteByte(c)
			}
		case depth == 0:
			b.WriteByte(c)
		}
	}
	if depth > 0 {
		b.WriteString(selector[start:])
	}
	ss.content = b.String()
	return ss
}

func (ss *safeSelector) restore(content string) string {
	return placeholderRe.ReplaceAllStringFunc(content, func(m string) string {
		var idx int
		fmt.Sscanf(m, selectorPlaceholder, &idx)
		if idx < len(ss.placeholders) {
			return ss.placeholders[idx]
		}
		return m
	})
}

// CssRule is one selector (or at-rule prelude) with its block content
type CssRule struct {
	Selector string
	Content  string
}

// NewCssRule creates a new CssRule
func NewCssRule(selector string, content string) *CssRule {
	return &CssRule{Selector: selector, Content: content}
}

// RuleCallback rewrites a single rule
type RuleCallback func(rule *CssRule) *CssRule

// ProcessRules calls ruleCallback for every top-level rule of input and
// splices the returned rules back, keeping the surrounding whitespace.
func ProcessRules(input string, ruleCallback RuleCallback) string {
	escaped := escapeBlocks(input, blockPlaceholder)
	nextBlockIndex := 0
	return ruleRe.ReplaceAllStringFunc(escaped.escapedString, func(match string) string {
		m := ruleRe.FindStringSubmatch(match)
		selector, suffix := m[2], m[4]
		content, contentPrefix := "", ""
		if strings.HasPrefix(suffix, "{"+blockPlaceholder) {
			if nextBlockIndex < len(escaped.blocks) {
				content = escaped.blocks[nextBlockIndex]
				nextBlockIndex++
			}
			suffix = suffix[len(blockPlaceholder)+1:]
			contentPrefix = "{"
		}
		rule := ruleCallback(NewCssRule(selector, content))
		return m[1] + rule.Selector + m[3] + contentPrefix + rule.Content + suffix
	})
}

type stringWithEscapedBlocks struct {
	escapedString string
	blocks        []string
}

// escapeBlocks replaces the content of every top-level {...} block with
// placeholder, returning the blocks in order.
func escapeBlocks(input string, placeholder string) *stringWithEscapedBlocks {
	var b strings.Builder
	blocks := []string{}
	depth := 0
	blockStart := -1
	nonBlockStart := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case '{':
			depth++
			if depth == 1 {
				blockStart = i + 1
				b.WriteString(input[nonBlockStart:blockStart])
			}
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				blocks = append(blocks, input[blockStart:i])
				b.WriteString(placeholder)
				nonBlockStart = i
				blockStart = -1
			}
		}
	}
	if blockStart != -1 {
		blocks = append(blocks, input[blockStart:])
		b.WriteString(placeholder)
	} else if nonBlockStart < len(input) {
		b.WriteString(input[nonBlockStart:])
	}
	return &stringWithEscapedBlocks{escapedString: b.String(), blocks: blocks}
}

func splitOnTopLevelCommas(text string) []string {
	parens := 0
	prev := 0
	result := []string{}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '(', '[':
			parens++
		case ')', ']':
			parens--
		case ',':
			if parens == 0 {
				result = append(result, text[prev:i])
				prev = i + 1
			}
		}
	}
	return append(result, text[prev:])
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
