package ocpcomp

import (
	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpexpr"
)

// Grammar of OCP source files (“.otp”):
//
//	source     := { section }
//	section    := "input:" n ";" | "output:" n ";"
//	            | "tables:" { id "[" n "]" "=" "{" n { "," n } "}" ";" }
//	            | "states:" id { "," id } ";"
//	            | "aliases:" { id "=" left ";" }
//	            | "expressions:" { rule }
//	rule       := [ "<" state ">" ] left "=>" { out } [ "<=" { out } ] [ change ] ";"
//	left       := { item [ "<" n [ "," [ m ] ] ">" ] }
//	item       := n | n "-" n | "." | string | "(" alts ")" | "^" "(" alts ")"
//	            | "{" alias "}" | "<begin:>" | "<end:>"
//	alts       := left { "|" left }
//	out        := n | string | "\" ref | "#" expr
//	ref        := n | "$" | "*" | "(" "$" "-" n ")" | "(" "*" [ "+" n ] [ "-" n ] ")"
//	change     := "<" state ">" | "<push:" state ">" | "<pop:" ">"

// initialState is the name of state 0, which every program has.
const initialState = "INITIAL"

// maxRepetition limits counted repetitions, which are expanded into code.
const maxRepetition = 255

// output is an item of the right side or pushback side of a rule.
type output struct {
	expr        ocpexpr.Node // value to output; nil for ranges
	some        bool         // output a range of matched characters
	first, last int          // characters excluded from the range at the start and end
	at          ocpcode.Pos
}

// stateChange is the optional state transition of a rule. op is one of
// STATE_CHANGE, STATE_PUSH, STATE_POP, or OpNone.
type stateChange struct {
	op    ocpcode.Opcode
	state int
}

type rule struct {
	state    int
	left     sequence
	right    []output
	pushback []output
	change   stateChange
	at       ocpcode.Pos
}

// source is a parsed OCP source file.
type source struct {
	input, output int
	tables        *ocpcode.TableRegistry
	states        map[string]int
	stateNames    []string
	aliases       map[string]sequence
	rules         []rule
}

type parser struct {
	sc  *ocpexpr.Scanner
	src *source
}

func newParser(text string, tables *ocpcode.TableRegistry) *parser {
	if tables == nil {
		tables = ocpcode.NewTableRegistry()
	}
	return &parser{
		sc: ocpexpr.NewScanner(text),
		src: &source{
			input:      ocpcode.DefaultCharWidth,
			output:     ocpcode.DefaultCharWidth,
			tables:     tables,
			states:     map[string]int{initialState: 0},
			stateNames: []string{initialState},
			aliases:    make(map[string]sequence),
		},
	}
}

func (p *parser) next() (ocpexpr.Token, error) {
	return p.sc.Next()
}

func (p *parser) peek() (ocpexpr.Token, error) {
	return p.sc.Peek()
}

func (p *parser) expect(c rune, context string) (ocpexpr.Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if !tok.Is(c) {
		return tok, ocpcode.SyntaxError(tok.String(), tok.Pos, "expected '%c' %s", c, context)
	}
	return tok, nil
}

func (p *parser) number(context string) (ocpexpr.Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if tok.Kind != ocpexpr.Number {
		return tok, ocpcode.SyntaxError(tok.String(), tok.Pos, "expected number %s", context)
	}
	return tok, nil
}

func (p *parser) ident(context string) (ocpexpr.Token, error) {
	tok, err := p.next()
	if err != nil {
		return tok, err
	}
	if tok.Kind != ocpexpr.Ident {
		return tok, ocpcode.SyntaxError(tok.String(), tok.Pos, "expected identifier %s", context)
	}
	return tok, nil
}

// parse reads the complete source text.
func (p *parser) parse() (*source, error) {
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == ocpexpr.EOF {
			return p.src, nil
		}
		if tok.Kind != ocpexpr.Label {
			return nil, ocpcode.SyntaxError(tok.String(), tok.Pos, "expected section label")
		}
		switch {
		case tok.IsLabel("input"):
			err = p.width(&p.src.input)
		case tok.IsLabel("output"):
			err = p.width(&p.src.output)
		case tok.IsLabel("tables"):
			err = p.tables()
		case tok.IsLabel("states"):
			err = p.states()
		case tok.IsLabel("aliases"):
			err = p.aliases()
		case tok.IsLabel("expressions"):
			err = p.rules()
		default:
			err = ocpcode.SyntaxError(tok.String(), tok.Pos, "unknown section")
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) width(w *int) error {
	tok, err := p.number("as character width")
	if err != nil {
		return err
	}
	if tok.Value < 1 || tok.Value > 4 {
		return ocpcode.SyntaxError(tok.Text, tok.Pos, "character width must be 1 to 4 bytes")
	}
	*w = tok.Value
	_, err = p.expect(';', "after character width")
	return err
}

// sectionEnds is true if the next token starts a new section or ends the input.
func (p *parser) sectionEnds() (bool, error) {
	tok, err := p.peek()
	if err != nil {
		return false, err
	}
	return tok.Kind == ocpexpr.EOF || tok.Kind == ocpexpr.Label, nil
}

func (p *parser) tables() error {
	for {
		if end, err := p.sectionEnds(); end || err != nil {
			return err
		}
		name, err := p.ident("as table name")
		if err != nil {
			return err
		}
		if _, err = p.expect('[', "after table name"); err != nil {
			return err
		}
		size, err := p.number("as table size")
		if err != nil {
			return err
		}
		if _, err = p.expect(']', "after table size"); err != nil {
			return err
		}
		if _, err = p.expect('=', "in table definition"); err != nil {
			return err
		}
		if _, err = p.expect('{', "to open table values"); err != nil {
			return err
		}
		var values []int
		for {
			v, err := p.tableValue()
			if err != nil {
				return err
			}
			values = append(values, v)
			tok, err := p.next()
			if err != nil {
				return err
			}
			if tok.Is('}') {
				break
			}
			if !tok.Is(',') {
				return ocpcode.SyntaxError(tok.String(), tok.Pos, "expected ',' or '}' in table values")
			}
		}
		if len(values) != size.Value {
			return ocpcode.SyntaxError(name.Text, name.Pos, "table declared with %d entries, has %d", size.Value, len(values))
		}
		if _, err = p.src.tables.Define(name.Text, values); err != nil {
			return ocpcode.SyntaxError(name.Text, name.Pos, "%v", err)
		}
		tracer().Debugf("table %s[%d] defined", name.Text, len(values))
		if _, err = p.expect(';', "after table definition"); err != nil {
			return err
		}
	}
}

func (p *parser) tableValue() (int, error) {
	tok, err := p.next()
	if err != nil {
		return 0, err
	}
	sign := 1
	if tok.Is('-') {
		sign = -1
		if tok, err = p.next(); err != nil {
			return 0, err
		}
	}
	if tok.Kind != ocpexpr.Number {
		return 0, ocpcode.SyntaxError(tok.String(), tok.Pos, "expected number as table value")
	}
	return sign * tok.Value, nil
}

func (p *parser) states() error {
	for {
		name, err := p.ident("as state name")
		if err != nil {
			return err
		}
		if _, dup := p.src.states[name.Text]; dup {
			return ocpcode.SyntaxError(name.Text, name.Pos, "state declared twice")
		}
		p.src.states[name.Text] = len(p.src.stateNames)
		p.src.stateNames = append(p.src.stateNames, name.Text)
		tok, err := p.next()
		if err != nil {
			return err
		}
		if tok.Is(';') {
			return nil
		}
		if !tok.Is(',') {
			return ocpcode.SyntaxError(tok.String(), tok.Pos, "expected ',' or ';' in state list")
		}
	}
}

func (p *parser) aliases() error {
	for {
		if end, err := p.sectionEnds(); end || err != nil {
			return err
		}
		name, err := p.ident("as alias name")
		if err != nil {
			return err
		}
		if _, err = p.expect('=', "after alias name"); err != nil {
			return err
		}
		seq, stop, err := p.left()
		if err != nil {
			return err
		}
		if !stop.Is(';') {
			return ocpcode.SyntaxError(stop.String(), stop.Pos, "expected ';' after alias")
		}
		p.src.aliases[name.Text] = seq
		tracer().Debugf("alias %s = %s", name.Text, seq)
	}
}

func (p *parser) rules() error {
	for {
		if end, err := p.sectionEnds(); end || err != nil {
			return err
		}
		r, err := p.rule()
		if err != nil {
			return err
		}
		p.src.rules = append(p.src.rules, r)
	}
}

// stateRef reads a state name and the closing '>'.
func (p *parser) stateRef() (int, error) {
	name, err := p.ident("as state name")
	if err != nil {
		return 0, err
	}
	id, ok := p.src.states[name.Text]
	if !ok {
		return 0, ocpcode.SyntaxError(name.Text, name.Pos, "state not declared")
	}
	if _, err = p.expect('>', "after state name"); err != nil {
		return 0, err
	}
	return id, nil
}

func (p *parser) rule() (rule, error) {
	first, err := p.peek()
	if err != nil {
		return rule{}, err
	}
	r := rule{at: first.Pos}
	var seq sequence
	var stop ocpexpr.Token
	if first.Is('<') {
		if _, err = p.next(); err != nil {
			return r, err
		}
		tok, err := p.peek()
		if err != nil {
			return r, err
		}
		if tok.Kind == ocpexpr.Ident {
			if r.state, err = p.stateRef(); err != nil {
				return r, err
			}
			seq, stop, err = p.left()
		} else {
			// '<' starts an anchor of the left side
			seq, stop, err = p.leftFrom(first)
		}
		if err != nil {
			return r, err
		}
	} else if seq, stop, err = p.left(); err != nil {
		return r, err
	}
	if stop.Kind != ocpexpr.Arrow {
		return r, ocpcode.SyntaxError(stop.String(), stop.Pos, "expected '=>' after left side of rule")
	}
	r.left = seq
	if r.right, stop, err = p.outputs(); err != nil {
		return r, err
	}
	if stop.Kind == ocpexpr.BackArrow {
		if r.pushback, stop, err = p.outputs(); err != nil {
			return r, err
		}
	}
	if stop.Is('<') {
		if r.change, err = p.change(); err != nil {
			return r, err
		}
		if stop, err = p.next(); err != nil {
			return r, err
		}
	}
	if !stop.Is(';') {
		return r, ocpcode.SyntaxError(stop.String(), stop.Pos, "expected ';' at end of rule")
	}
	return r, nil
}

func (p *parser) change() (stateChange, error) {
	tok, err := p.next()
	if err != nil {
		return stateChange{}, err
	}
	switch {
	case tok.Kind == ocpexpr.Ident:
		p.sc.Unread(tok)
		id, err := p.stateRef()
		return stateChange{op: ocpcode.OpStateChange, state: id}, err
	case tok.IsLabel("push"):
		id, err := p.stateRef()
		return stateChange{op: ocpcode.OpStatePush, state: id}, err
	case tok.IsLabel("pop"):
		_, err := p.expect('>', "after <pop:")
		return stateChange{op: ocpcode.OpStatePop}, err
	}
	return stateChange{}, ocpcode.SyntaxError(tok.String(), tok.Pos, "malformed state change")
}

// --- Left side -------------------------------------------------------------

// left parses a sequence of patterns up to a token which cannot continue it.
// The terminating token is consumed and returned.
func (p *parser) left() (sequence, ocpexpr.Token, error) {
	return p.leftFrom(ocpexpr.Token{})
}

// leftFrom parses a sequence of patterns. If lt is a '<' token, it has
// already been consumed by the caller.
func (p *parser) leftFrom(lt ocpexpr.Token) (sequence, ocpexpr.Token, error) {
	var seq sequence
	pendingLT := lt.Is('<')
	for {
		var tok ocpexpr.Token
		var err error
		if pendingLT {
			tok, pendingLT = lt, false
		} else if tok, err = p.next(); err != nil {
			return nil, tok, err
		}
		if tok.Is('<') {
			after, err := p.next()
			if err != nil {
				return nil, tok, err
			}
			switch {
			case after.IsLabel("begin"), after.IsLabel("end"):
				if _, err = p.expect('>', "to close anchor"); err != nil {
					return nil, tok, err
				}
				seq = append(seq, anchor{end: after.IsLabel("end")})
				continue
			case after.Kind == ocpexpr.Number && len(seq) > 0:
				rep, err := p.repetition(seq[len(seq)-1], after)
				if err != nil {
					return nil, tok, err
				}
				seq[len(seq)-1] = rep
				continue
			}
			return nil, after, ocpcode.SyntaxError(after.String(), after.Pos, "unexpected token after '<' in pattern")
		}
		pat, ok, err := p.item(tok)
		if err != nil {
			return nil, tok, err
		}
		if !ok {
			return seq, tok, nil
		}
		seq = append(seq, pat)
	}
}

// item parses a single pattern starting with tok. If tok cannot start a
// pattern, ok is false.
func (p *parser) item(tok ocpexpr.Token) (pattern, bool, error) {
	switch {
	case tok.Kind == ocpexpr.Number:
		lo := rune(tok.Value)
		dash, err := p.peek()
		if err != nil {
			return nil, false, err
		}
		if !dash.Is('-') {
			return charClass{lo: lo, hi: lo}, true, nil
		}
		if _, err = p.next(); err != nil {
			return nil, false, err
		}
		hi, err := p.number("as upper bound of character range")
		if err != nil {
			return nil, false, err
		}
		if rune(hi.Value) < lo {
			return nil, false, ocpcode.SyntaxError(hi.Text, hi.Pos, "empty character range")
		}
		return charClass{lo: lo, hi: rune(hi.Value)}, true, nil
	case tok.Is('.'):
		return charClass{any: true}, true, nil
	case tok.Kind == ocpexpr.String:
		if tok.Text == "" {
			return nil, false, ocpcode.SyntaxError(`""`, tok.Pos, "empty string in pattern")
		}
		var seq sequence
		for _, c := range tok.Text {
			seq = append(seq, charClass{lo: c, hi: c})
		}
		return seq, true, nil
	case tok.Is('('):
		alts, err := p.alternatives(tok)
		if err != nil {
			return nil, false, err
		}
		return choice{alts: alts}, true, nil
	case tok.Is('^'):
		open, err := p.expect('(', "after '^'")
		if err != nil {
			return nil, false, err
		}
		alts, err := p.alternatives(open)
		if err != nil {
			return nil, false, err
		}
		compl := complement{}
		for _, alt := range alts {
			cl, ok := singleClass(alt)
			if !ok {
				return nil, false, ocpcode.SyntaxError(alt.String(), open.Pos,
					"complement may only contain characters and ranges")
			}
			compl.classes = append(compl.classes, cl)
		}
		return compl, true, nil
	case tok.Is('{'):
		name, err := p.ident("as alias name")
		if err != nil {
			return nil, false, err
		}
		seq, ok := p.src.aliases[name.Text]
		if !ok {
			return nil, false, ocpcode.SyntaxError(name.Text, name.Pos, "alias not defined")
		}
		if _, err = p.expect('}', "after alias name"); err != nil {
			return nil, false, err
		}
		return seq, true, nil
	}
	return nil, false, nil
}

// singleClass unwraps a pattern matching exactly one character of a class.
func singleClass(pat pattern) (charClass, bool) {
	switch pat := pat.(type) {
	case charClass:
		return pat, true
	case sequence:
		if len(pat) == 1 {
			return singleClass(pat[0])
		}
	}
	return charClass{}, false
}

// alternatives parses the inside of a choice, after the opening parenthesis.
func (p *parser) alternatives(open ocpexpr.Token) ([]sequence, error) {
	var alts []sequence
	for {
		seq, stop, err := p.left()
		if err != nil {
			return nil, err
		}
		if len(seq) == 0 {
			return nil, ocpcode.SyntaxError(stop.String(), stop.Pos, "empty alternative")
		}
		if _, fixed := seq.width(); !fixed {
			return nil, ocpcode.SyntaxError(seq.String(), open.Pos, "alternatives must match a fixed number of characters")
		}
		alts = append(alts, seq)
		if stop.Is(')') {
			return alts, nil
		}
		if !stop.Is('|') {
			return nil, ocpcode.SyntaxError(stop.String(), stop.Pos, "expected '|' or ')' in choice")
		}
	}
}

// repetition parses a repetition count after '<' and the first number.
func (p *parser) repetition(item pattern, n ocpexpr.Token) (pattern, error) {
	w, fixed := item.width()
	if !fixed || w == 0 {
		return nil, ocpcode.SyntaxError(item.String(), n.Pos,
			"repeated pattern must match a fixed, non-zero number of characters")
	}
	rep := repetition{item: item, min: n.Value, max: n.Value}
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if tok.Is(',') {
		if tok, err = p.next(); err != nil {
			return nil, err
		}
		rep.max = unbounded
		if tok.Kind == ocpexpr.Number {
			rep.max = tok.Value
			if tok, err = p.next(); err != nil {
				return nil, err
			}
		}
	}
	if !tok.Is('>') {
		return nil, ocpcode.SyntaxError(tok.String(), tok.Pos, "expected '>' to close repetition")
	}
	if rep.min > maxRepetition || rep.max > maxRepetition {
		return nil, ocpcode.SyntaxError(n.Text, n.Pos, "repetition count exceeds %d", maxRepetition)
	}
	if rep.max != unbounded && rep.max < rep.min {
		return nil, ocpcode.SyntaxError(n.Text, n.Pos, "repetition maximum below minimum")
	}
	if rep.max == 0 {
		return nil, ocpcode.SyntaxError(n.Text, n.Pos, "repetition of zero times")
	}
	return rep, nil
}

// --- Right side ------------------------------------------------------------

// outputs parses output items up to a token which cannot continue them.
// The terminating token is consumed and returned.
func (p *parser) outputs() ([]output, ocpexpr.Token, error) {
	var outs []output
	for {
		tok, err := p.next()
		if err != nil {
			return nil, tok, err
		}
		switch {
		case tok.Kind == ocpexpr.Number:
			outs = append(outs, output{expr: &ocpexpr.Constant{Value: tok.Value, At: tok.Pos}, at: tok.Pos})
		case tok.Kind == ocpexpr.String:
			for _, c := range tok.Text {
				outs = append(outs, output{expr: &ocpexpr.Constant{Value: int(c), At: tok.Pos}, at: tok.Pos})
			}
		case tok.Is('\\'):
			out, err := p.reference(tok)
			if err != nil {
				return nil, tok, err
			}
			outs = append(outs, out)
		case tok.Is('#'):
			node, err := ocpexpr.ParseExpr(p.sc)
			if err != nil {
				return nil, tok, err
			}
			outs = append(outs, output{expr: node, at: tok.Pos})
		default:
			return outs, tok, nil
		}
	}
}

// reference parses a reference to matched characters after the backslash.
func (p *parser) reference(backslash ocpexpr.Token) (output, error) {
	tok, err := p.next()
	if err != nil {
		return output{}, err
	}
	at := backslash.Pos
	switch {
	case tok.Kind == ocpexpr.Number:
		return output{expr: &ocpexpr.CharRef{Index: tok.Value, At: at}, at: at}, nil
	case tok.Is('$'):
		return output{expr: &ocpexpr.LastCharRef{At: at}, at: at}, nil
	case tok.Is('*'):
		return output{some: true, at: at}, nil
	case tok.Is('('):
		star, err := p.next()
		if err != nil {
			return output{}, err
		}
		if star.Is('$') {
			if _, err = p.expect('-', "in character reference"); err != nil {
				return output{}, err
			}
			n, err := p.number("in character reference")
			if err != nil {
				return output{}, err
			}
			if _, err = p.expect(')', "to close character reference"); err != nil {
				return output{}, err
			}
			return output{expr: &ocpexpr.LastCharRef{Offset: n.Value, At: at}, at: at}, nil
		}
		if !star.Is('*') {
			return output{}, ocpcode.SyntaxError(star.String(), star.Pos, "expected '$' or '*' in character reference")
		}
		out := output{some: true, at: at}
		op, err := p.next()
		if err != nil {
			return output{}, err
		}
		if op.Is('+') {
			n, err := p.number("after '*+'")
			if err != nil {
				return output{}, err
			}
			out.first = n.Value
			if op, err = p.next(); err != nil {
				return output{}, err
			}
		}
		if op.Is('-') {
			n, err := p.number("after '-'")
			if err != nil {
				return output{}, err
			}
			out.last = n.Value
			if op, err = p.next(); err != nil {
				return output{}, err
			}
		}
		if !op.Is(')') {
			return output{}, ocpcode.SyntaxError(op.String(), op.Pos, "expected ')' to close character range")
		}
		return out, nil
	}
	return output{}, ocpcode.SyntaxError(tok.String(), tok.Pos, "malformed character reference")
}
