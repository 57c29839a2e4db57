package expression_parser

import (
	"fmt"
	"strconv"
	"strings"
)

// TokenType represents the type of a token
type TokenType int

const (
	TokenTypeCharacter TokenType = iota
	TokenTypeIdentifier
	TokenTypeKeyword
	TokenTypeString
	TokenTypeOperator
	TokenTypeNumber
	TokenTypeError
)

var keywords = map[string]bool{
	"var": true, "let": true, "as": true, "null": true, "undefined": true,
	"true": true, "false": true, "if": true, "else": true, "this": true,
}

// Token is one lexical token of an expression
type Token struct {
	Index    int
	End      int
	Type     TokenType
	NumValue float64
	StrValue string
}

// IsCharacter reports whether the token is the single character code
func (t *Token) IsCharacter(code byte) bool {
	return t.Type == TokenTypeCharacter && t.StrValue == string(code)
}

// IsOperator reports whether the token is the given operator
func (t *Token) IsOperator(operator string) bool {
	return t.Type == TokenTypeOperator && t.StrValue == operator
}

// IsKeyword reports whether the token is the given keyword
func (t *Token) IsKeyword(keyword string) bool {
	return t.Type == TokenTypeKeyword && t.StrValue == keyword
}

func (t *Token) String() string {
	switch t.Type {
	case TokenTypeNumber:
		return strconv.FormatFloat(t.NumValue, 'f', -1, 64)
	default:
		return t.StrValue
	}
}

// EOF is returned by the parser past the last token
var EOF = &Token{Index: -1, End: -1, Type: TokenTypeCharacter}

// Lexer turns expression text into tokens
type Lexer struct{}

// NewLexer creates a new Lexer
func NewLexer() *Lexer {
	return &Lexer{}
}

// Tokenize scans text. Scanning stops at the first error token, which is
// kept as the last token.
func (l *Lexer) Tokenize(text string) []*Token {
	s := &scanner{input: text}
	tokens := []*Token{}
	for {
		token := s.scanToken()
		if token == nil {
			return tokens
		}
		tokens = append(tokens, token)
		if token.Type == TokenTypeError {
			return tokens
		}
	}
}

type scanner struct {
	input string
	index int
}

func (s *scanner) peekAt(i int) byte {
	if i < len(s.input) {
		return s.input[i]
	}
	return 0
}

func (s *scanner) scanToken() *Token {
	for s.index < len(s.input) && isWhitespace(s.input[s.index]) {
		s.index++
	}
	if s.index >= len(s.input) {
		return nil
	}
	start := s.index
	c := s.input[start]
	switch {
	case isIdentifierStart(c):
		return s.scanIdentifier()
	case isDigit(c):
		return s.scanNumber(start)
	}

	switch c {
	case '.':
		if isDigit(s.peekAt(start + 1)) {
			return s.scanNumber(start)
		}
		return s.character(start)
	case '(', ')', '{', '}', '[', ']', ',', ':', ';':
		return s.character(start)
	case '\'', '"':
		return s.scanString()
	case '+', '-', '*', '/', '%', '^':
		return s.operator(start, 1)
	case '?':
		if s.peekAt(start+1) == '.' {
			return s.operator(start, 2)
		}
		return s.operator(start, 1)
	case '<', '>':
		if s.peekAt(start+1) == '=' {
			return s.operator(start, 2)
		}
		return s.operator(start, 1)
	case '!', '=':
		n := 1
		if s.peekAt(start+1) == '=' {
			n = 2
			if s.peekAt(start+2) == '=' {
				n = 3
			}
		}
		return s.operator(start, n)
	case '&':
		if s.peekAt(start+1) == '&' {
			return s.operator(start, 2)
		}
		return s.operator(start, 1)
	case '|':
		if s.peekAt(start+1) == '|' {
			return s.operator(start, 2)
		}
		return s.operator(start, 1)
	}
	return s.error(fmt.Sprintf("Unexpected character [%c]", c), start)
}

func (s *scanner) character(start int) *Token {
	s.index = start + 1
	return &Token{Index: start, End: s.index, Type: TokenTypeCharacter, StrValue: s.input[start:s.index]}
}

func (s *scanner) operator(start int, n int) *Token {
	s.index = start + n
	return &Token{Index: start, End: s.index, Type: TokenTypeOperator, StrValue: s.input[start:s.index]}
}

func (s *scanner) scanIdentifier() *Token {
	start := s.index
	s.index++
	for s.index < len(s.input) && isIdentifierPart(s.input[s.index]) {
		s.index++
	}
	str := s.input[start:s.index]
	typ := TokenTypeIdentifier
	if keywords[str] {
		typ = TokenTypeKeyword
	}
	return &Token{Index: start, End: s.index, Type: typ, StrValue: str}
}

func (s *scanner) scanNumber(start int) *Token {
	simple := s.input[start] != '.'
	s.index = start
scan:
	for s.index < len(s.input) {
		c := s.input[s.index]
		switch {
		case isDigit(c):
		case c == '.':
			simple = false
		case c == 'e' || c == 'E':
			s.index++
			if next := s.peekAt(s.index); next == '+' || next == '-' {
				s.index++
			}
			if !isDigit(s.peekAt(s.index)) {
				return s.error("Invalid exponent", s.index)
			}
			simple = false
			continue
		default:
			break scan
		}
		s.index++
	}
	str := s.input[start:s.index]
	var value float64
	if simple {
		n, _ := strconv.ParseInt(str, 10, 64)
		value = float64(n)
	} else {
		parsed, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return s.error("Invalid number", start)
		}
		value = parsed
	}
	return &Token{Index: start, End: s.index, Type: TokenTypeNumber, NumValue: value, StrValue: str}
}

func (s *scanner) scanString() *Token {
	start := s.index
	quote := s.input[start]
	s.index++
	var b strings.Builder
	for {
		if s.index >= len(s.input) {
			return s.error("Unterminated quote", start)
		}
		c := s.input[s.index]
		if c == quote {
			s.index++
			return &Token{Index: start, End: s.index, Type: TokenTypeString, StrValue: b.String()}
		}
		if c != '\\' {
			b.WriteByte(c)
			s.index++
			continue
		}
		s.index++
		switch esc := s.peekAt(s.index); esc {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'u':
			hex := s.input[s.index+1 : min(s.index+5, len(s.input))]
			code, err := strconv.ParseUint(hex, 16, 32)
			if err != nil || len(hex) != 4 {
				return s.error(fmt.Sprintf("Invalid unicode escape [\\u%s]", hex), s.index)
			}
			b.WriteRune(rune(code))
			s.index += 4
		default:
			b.WriteByte(esc)
		}
		s.index++
	}
}

func (s *scanner) error(message string, offset int) *Token {
	msg := fmt.Sprintf("Lexer Error: %s at column %d in expression [%s]", message, offset, s.input)
	s.index = len(s.input)
	return &Token{Index: offset, End: len(s.input), Type: TokenTypeError, StrValue: msg}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f' || c == 0xa0
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isIdentifierPart(c byte) bool {
	return isIdentifierStart(c) || isDigit(c)
}
