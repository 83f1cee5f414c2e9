package ocpexpr

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/npillmayer/ocp/ocpcode"
)

// TokenKind classifies tokens of OCP source text.
type TokenKind int

// Token kinds
const (
	EOF       TokenKind = iota
	Number              // decimal, `c' or @hex literal; value in Token.Value
	Ident               // identifier
	Label               // identifier immediately followed by a colon, e.g. “div:”
	String              // double-quoted string; contents in Token.Text
	Punct               // single punctuation character
	Arrow               // “=>”
	BackArrow           // “<=”
)

func (k TokenKind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Number:
		return "number"
	case Ident:
		return "identifier"
	case Label:
		return "label"
	case String:
		return "string"
	case Punct:
		return "punctuation"
	case Arrow:
		return "=>"
	case BackArrow:
		return "<="
	}
	return "?"
}

// Token is a lexical unit of OCP source text.
type Token struct {
	Kind  TokenKind
	Text  string // source text of the token, or the contents of a string
	Value int    // value of numbers
	Pos   ocpcode.Pos
}

// Is returns true if the token is a punctuation token for character c.
func (tok Token) Is(c rune) bool {
	return tok.Kind == Punct && tok.Text == string(c)
}

// IsLabel returns true if the token is the label name followed by a colon.
func (tok Token) IsLabel(name string) bool {
	return tok.Kind == Label && tok.Text == name+":"
}

func (tok Token) String() string {
	if tok.Kind == EOF {
		return "<EOF>"
	}
	return tok.Text
}

const punctuation = `+-*()[]{}\$,;=<>|.^#`

// maxLiteral caps numeric literals while scanning; anything beyond will be
// rejected by the code generator anyway.
const maxLiteral = 1 << 30

// Scanner splits OCP source text into tokens. It supports one token of
// lookahead by means of an explicit unread buffer: a token just read may be
// handed back with Unread and will be returned by the next call to Next.
//
// Comments start with ‘%’ and extend to the end of the line.
type Scanner struct {
	src    []rune
	pos    int
	line   int
	col    int
	unread *Token
}

// NewScanner creates a scanner for source text.
func NewScanner(src string) *Scanner {
	return &Scanner{src: []rune(src), line: 1, col: 1}
}

// Unread pushes tok back to the scanner. Only one token may be pushed back
// at a time; pushing back a second one is a programming error and panics.
func (sc *Scanner) Unread(tok Token) {
	if sc.unread != nil {
		panic(fmt.Sprintf("ocpexpr: unread buffer already holds %q", sc.unread.Text))
	}
	sc.unread = &tok
}

// Peek returns the next token without consuming it.
func (sc *Scanner) Peek() (Token, error) {
	tok, err := sc.Next()
	if err != nil {
		return tok, err
	}
	sc.Unread(tok)
	return tok, nil
}

// Pos returns the current position within the source text.
func (sc *Scanner) Pos() ocpcode.Pos {
	if sc.unread != nil {
		return sc.unread.Pos
	}
	return ocpcode.Pos{Line: sc.line, Col: sc.col}
}

// Next returns the next token of the source text. At the end of the input it
// returns tokens of kind EOF.
func (sc *Scanner) Next() (Token, error) {
	if sc.unread != nil {
		tok := *sc.unread
		sc.unread = nil
		return tok, nil
	}
	sc.skipSpace()
	start := ocpcode.Pos{Line: sc.line, Col: sc.col}
	c, ok := sc.peekRune()
	if !ok {
		return Token{Kind: EOF, Pos: start}, nil
	}
	switch {
	case c >= '0' && c <= '9':
		return sc.decimal(start)
	case c == '`':
		return sc.charLiteral(start)
	case c == '@':
		return sc.hexLiteral(start)
	case c == '"':
		return sc.stringLiteral(start)
	case unicode.IsLetter(c) || c == '_':
		return sc.identifier(start), nil
	case c == '=' && sc.lookingAt("=>"):
		sc.advance()
		sc.advance()
		return Token{Kind: Arrow, Text: "=>", Pos: start}, nil
	case c == '<' && sc.lookingAt("<="):
		sc.advance()
		sc.advance()
		return Token{Kind: BackArrow, Text: "<=", Pos: start}, nil
	case strings.ContainsRune(punctuation, c):
		sc.advance()
		return Token{Kind: Punct, Text: string(c), Pos: start}, nil
	}
	sc.advance()
	return Token{}, ocpcode.SyntaxError(string(c), start, "unexpected character")
}

func (sc *Scanner) peekRune() (rune, bool) {
	if sc.pos >= len(sc.src) {
		return 0, false
	}
	return sc.src[sc.pos], true
}

func (sc *Scanner) advance() rune {
	c := sc.src[sc.pos]
	sc.pos++
	if c == '\n' {
		sc.line++
		sc.col = 1
	} else {
		sc.col++
	}
	return c
}

func (sc *Scanner) lookingAt(s string) bool {
	i := sc.pos
	for _, c := range s {
		if i >= len(sc.src) || sc.src[i] != c {
			return false
		}
		i++
	}
	return true
}

func (sc *Scanner) skipSpace() {
	for sc.pos < len(sc.src) {
		c := sc.src[sc.pos]
		if c == '%' {
			for sc.pos < len(sc.src) && sc.src[sc.pos] != '\n' {
				sc.advance()
			}
			continue
		}
		if !unicode.IsSpace(c) {
			return
		}
		sc.advance()
	}
}

func (sc *Scanner) decimal(start ocpcode.Pos) (Token, error) {
	begin, n := sc.pos, 0
	for c, ok := sc.peekRune(); ok && c >= '0' && c <= '9'; c, ok = sc.peekRune() {
		sc.advance()
		if n <= maxLiteral {
			n = n*10 + int(c-'0')
		}
	}
	text := string(sc.src[begin:sc.pos])
	if n > maxLiteral {
		return Token{}, ocpcode.ArgumentTooBig(n, start)
	}
	return Token{Kind: Number, Text: text, Value: n, Pos: start}, nil
}

// charLiteral scans `c' (backtick, one character, apostrophe).
func (sc *Scanner) charLiteral(start ocpcode.Pos) (Token, error) {
	sc.advance() // backtick
	c, ok := sc.peekRune()
	if !ok {
		return Token{}, ocpcode.SyntaxError("`", start, "unterminated character literal")
	}
	sc.advance()
	if q, ok := sc.peekRune(); !ok || q != '\'' {
		return Token{}, ocpcode.SyntaxError("`"+string(c), start, "character literal must be closed by an apostrophe")
	}
	sc.advance()
	return Token{Kind: Number, Text: "`" + string(c) + "'", Value: int(c), Pos: start}, nil
}

// hexLiteral scans @hex or @"hex.
func (sc *Scanner) hexLiteral(start ocpcode.Pos) (Token, error) {
	begin := sc.pos
	sc.advance() // @
	if c, ok := sc.peekRune(); ok && c == '"' {
		sc.advance()
	}
	n, digits := 0, 0
	for c, ok := sc.peekRune(); ok && isHexDigit(c); c, ok = sc.peekRune() {
		sc.advance()
		digits++
		if n <= maxLiteral {
			n = n*16 + hexValue(c)
		}
	}
	text := string(sc.src[begin:sc.pos])
	if digits == 0 {
		return Token{}, ocpcode.SyntaxError(text, start, "hexadecimal literal without digits")
	}
	if n > maxLiteral {
		return Token{}, ocpcode.ArgumentTooBig(n, start)
	}
	return Token{Kind: Number, Text: text, Value: n, Pos: start}, nil
}

func (sc *Scanner) stringLiteral(start ocpcode.Pos) (Token, error) {
	sc.advance() // opening quote
	var b strings.Builder
	for {
		c, ok := sc.peekRune()
		if !ok || c == '\n' {
			return Token{}, ocpcode.SyntaxError("\""+b.String(), start, "unterminated string")
		}
		sc.advance()
		if c == '"' {
			break
		}
		b.WriteRune(c)
	}
	return Token{Kind: String, Text: b.String(), Pos: start}, nil
}

func (sc *Scanner) identifier(start ocpcode.Pos) Token {
	begin := sc.pos
	for c, ok := sc.peekRune(); ok && (unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'); c, ok = sc.peekRune() {
		sc.advance()
	}
	text := string(sc.src[begin:sc.pos])
	if c, ok := sc.peekRune(); ok && c == ':' {
		sc.advance()
		return Token{Kind: Label, Text: text + ":", Pos: start}
	}
	return Token{Kind: Ident, Text: text, Pos: start}
}

func isHexDigit(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func hexValue(c rune) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return int(c-'A') + 10
	}
}
