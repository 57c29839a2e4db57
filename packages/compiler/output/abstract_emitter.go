package output

import (
	"regexp"
	"strings"
)

var (
	singleQuoteEscapeStringRe = regexp.MustCompile(`'|\\|\n|\r|\$`)
	legalIdentifierRe         = regexp.MustCompile(`(?i)^[$A-Z_][0-9A-Z_$]*$`)
	indentWith                = "  "
)

var binaryOperators = map[BinaryOperator]string{
	BinaryOperatorAnd:             "&&",
	BinaryOperatorBigger:          ">",
	BinaryOperatorBiggerEquals:    ">=",
	BinaryOperatorBitwiseAnd:      "&",
	BinaryOperatorDivide:          "/",
	BinaryOperatorAssign:          "=",
	BinaryOperatorEquals:          "==",
	BinaryOperatorIdentical:       "===",
	BinaryOperatorLower:           "<",
	BinaryOperatorLowerEquals:     "<=",
	BinaryOperatorMinus:           "-",
	BinaryOperatorModulo:          "%",
	BinaryOperatorMultiply:        "*",
	BinaryOperatorNotEquals:       "!=",
	BinaryOperatorNotIdentical:    "!==",
	BinaryOperatorNullishCoalesce: "??",
	BinaryOperatorOr:              "||",
	BinaryOperatorPlus:            "+",
}

// EmittedLine represents a line being emitted
type EmittedLine struct {
	Parts  []string
	Indent int
}

// EmitterVisitorContext accumulates emitted lines
type EmitterVisitorContext struct {
	lines  []*EmittedLine
	indent int
}

// NewEmitterVisitorContext creates a new EmitterVisitorContext
func NewEmitterVisitorContext(indent int) *EmitterVisitorContext {
	return &EmitterVisitorContext{
		lines:  []*EmittedLine{{Indent: indent}},
		indent: indent,
	}
}

func (ctx *EmitterVisitorContext) currentLine() *EmittedLine {
	return ctx.lines[len(ctx.lines)-1]
}

// Print appends part to the current line, starting a new line afterwards
// when newLine is set.
func (ctx *EmitterVisitorContext) Print(part string, newLine bool) {
	if len(part) > 0 {
		line := ctx.currentLine()
		line.Parts = append(line.Parts, part)
	}
	if newLine {
		ctx.lines = append(ctx.lines, &EmittedLine{Indent: ctx.indent})
	}
}

// Println prints lastPart and ends the line
func (ctx *EmitterVisitorContext) Println(lastPart string) {
	ctx.Print(lastPart, true)
}

// LineIsEmpty checks if the current line is empty
func (ctx *EmitterVisitorContext) LineIsEmpty() bool {
	return len(ctx.currentLine().Parts) == 0
}

// RemoveEmptyLastLine removes the empty last line
func (ctx *EmitterVisitorContext) RemoveEmptyLastLine() {
	if ctx.LineIsEmpty() && len(ctx.lines) > 1 {
		ctx.lines = ctx.lines[:len(ctx.lines)-1]
	}
}

// IncIndent increases the indent
func (ctx *EmitterVisitorContext) IncIndent() {
	ctx.indent++
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

// DecIndent decreases the indent
func (ctx *EmitterVisitorContext) DecIndent() {
	ctx.indent--
	if ctx.LineIsEmpty() {
		ctx.currentLine().Indent = ctx.indent
	}
}

// ToSource joins all lines
func (ctx *EmitterVisitorContext) ToSource() string {
	lines := ctx.lines
	if len(lines) > 0 && len(lines[len(lines)-1].Parts) == 0 {
		lines = lines[:len(lines)-1]
	}
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if len(line.Parts) > 0 {
			b.WriteString(strings.Repeat(indentWith, line.Indent))
			b.WriteString(strings.Join(line.Parts, ""))
		}
	}
	return b.String()
}

// EscapeIdentifier escapes an identifier, quoting it when it is not a legal
// JS identifier or when alwaysQuote is set.
func EscapeIdentifier(input string, escapeDollar bool, alwaysQuote bool) string {
	if input == "" {
		if alwaysQuote {
			return "''"
		}
		return ""
	}

	body := singleQuoteEscapeStringRe.ReplaceAllStringFunc(input, func(match string) string {
		switch match {
		case "$":
			if escapeDollar {
				return "\\$"
			}
			return "$"
		case "\n":
			return "\\n"
		case "\r":
			return "\\r"
		default:
			return "\\" + match
		}
	})

	if alwaysQuote || !legalIdentifierRe.MatchString(body) {
		return "'" + body + "'"
	}
	return body
}
