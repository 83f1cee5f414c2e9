package ocpexpr

import (
	"github.com/npillmayer/ocp/ocpcode"
)

// Grammar of expressions:
//
//	expr   := term (("+"|"-") term)*
//	term   := atom (("*" | "div:" | "mod:") atom)*
//	atom   := number | "\" ref | "(" expr ")" | id "[" expr "]"
//	ref    := "$" | "(" "$" "-" number ")" | number
//	number := decimal | "`" char "'" | "@" hex

// Parse parses source text consisting of exactly one expression.
func Parse(source string) (Node, error) {
	sc := NewScanner(source)
	node, err := ParseExpr(sc)
	if err != nil {
		return nil, err
	}
	tok, err := sc.Next()
	if err != nil {
		return nil, err
	}
	if tok.Kind != EOF {
		return nil, ocpcode.SyntaxError(tok.Text, tok.Pos, "unexpected token after expression")
	}
	return node, nil
}

// ParseExpr parses an expression from a scanner and leaves the scanner
// positioned after it. It is used by the rule compiler for computed outputs.
func ParseExpr(sc *Scanner) (Node, error) {
	p := parser{sc: sc}
	return p.expr()
}

type parser struct {
	sc *Scanner
}

func (p *parser) next() (Token, error) {
	return p.sc.Next()
}

func (p *parser) expect(c rune, context string) (Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if !tok.Is(c) {
		return tok, ocpcode.SyntaxError(tok.String(), tok.Pos, "expected '%c' %s", c, context)
	}
	return tok, nil
}

// expr folds a chain of “+” and “-” strictly left to right: the accumulator
// is combined with the pending operator and its operand whenever a new
// operator is seen, and a final time when the chain ends.
func (p *parser) expr() (Node, error) {
	acc, err := p.term()
	if err != nil {
		return nil, err
	}
	var pending *Token
	var operand Node
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if !tok.Is('+') && !tok.Is('-') {
			p.sc.Unread(tok)
			break
		}
		if pending != nil {
			acc = fold(acc, *pending, operand)
		}
		pending = &tok
		if operand, err = p.term(); err != nil {
			return nil, err
		}
	}
	if pending != nil {
		acc = fold(acc, *pending, operand)
	}
	return acc, nil
}

func fold(left Node, optok Token, right Node) Node {
	op := OpAdd
	if optok.Is('-') {
		op = OpSub
	}
	return &Binary{Op: op, Left: left, Right: right, At: optok.Pos}
}

func (p *parser) term() (Node, error) {
	acc, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		var op Operator
		switch {
		case tok.Is('*'):
			op = OpMult
		case tok.IsLabel("div"):
			op = OpDiv
		case tok.IsLabel("mod"):
			op = OpMod
		default:
			p.sc.Unread(tok)
			return acc, nil
		}
		right, err := p.atom()
		if err != nil {
			return nil, err
		}
		acc = &Binary{Op: op, Left: acc, Right: right, At: tok.Pos}
	}
}

func (p *parser) atom() (Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch {
	case tok.Kind == Number:
		return &Constant{Value: tok.Value, At: tok.Pos}, nil
	case tok.Is('\\'):
		return p.ref(tok)
	case tok.Is('('):
		node, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(')', "to close parenthesized expression"); err != nil {
			return nil, err
		}
		return node, nil
	case tok.Kind == Ident:
		if _, err := p.expect('[', "after table name"); err != nil {
			return nil, err
		}
		index, err := p.expr()
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(']', "to close table index"); err != nil {
			return nil, err
		}
		return &TableRef{Name: tok.Text, Index: index, At: tok.Pos}, nil
	}
	return nil, ocpcode.SyntaxError(tok.String(), tok.Pos, "unexpected %s in expression", tok.Kind)
}

// ref parses a character reference after the backslash.
func (p *parser) ref(backslash Token) (Node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	switch {
	case tok.Kind == Number:
		return &CharRef{Index: tok.Value, At: backslash.Pos}, nil
	case tok.Is('$'):
		return &LastCharRef{Offset: 0, At: backslash.Pos}, nil
	case tok.Is('('):
		if _, err := p.expect('$', "in character reference"); err != nil {
			return nil, err
		}
		if _, err := p.expect('-', "in character reference"); err != nil {
			return nil, err
		}
		num, err := p.next()
		if err != nil {
			return nil, err
		}
		if num.Kind != Number {
			return nil, ocpcode.SyntaxError(num.String(), num.Pos, "expected number in character reference")
		}
		if _, err := p.expect(')', "to close character reference"); err != nil {
			return nil, err
		}
		return &LastCharRef{Offset: num.Value, At: backslash.Pos}, nil
	}
	return nil, ocpcode.SyntaxError(tok.String(), tok.Pos, "malformed character reference")
}
