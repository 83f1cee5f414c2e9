package ocpcomp

import (
	"sort"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpexpr"
)

// failure is a jump out of a pattern's code which has to be backpatched
// once the failure target is known. depth is the number of characters of
// the enclosing frame matched at the point of failure.
type failure struct {
	hole  ocpcode.Hole
	depth int
}

// matcher emits the matching code for the left sides of rules.
//
// Code for a single character reads it with GOTO_NO_ADVANCE and tests it with
// compare jumps. A failing test jumps to code which backs up the characters
// matched in the current frame, then continues with the next alternative or
// leaves the repetition. At the level of a rule no backup is necessary, as
// LEFT_RETURN resets the match as a whole.
type matcher struct {
	cs *ocpcode.CompilerState
}

func (m matcher) fail(fails []failure, op ocpcode.Opcode, arg, depth int) ([]failure, error) {
	h, err := m.cs.EmitJump(op, arg)
	if err != nil {
		return fails, err
	}
	return append(fails, failure{hole: h, depth: depth}), nil
}

// pattern emits code for pat. d is the number of characters matched in the
// current frame before pat.
func (m matcher) pattern(pat pattern, d int) ([]failure, error) {
	switch pat := pat.(type) {
	case charClass:
		return m.charClass(pat, d)
	case complement:
		return m.complement(pat, d)
	case anchor:
		return m.anchor(pat, d)
	case sequence:
		return m.sequence(pat, d)
	case choice:
		return m.choice(pat, d)
	case repetition:
		return m.repetition(pat, d)
	}
	panic("ocpcomp: unknown pattern type")
}

func (m matcher) charClass(c charClass, d int) ([]failure, error) {
	fails, err := m.fail(nil, ocpcode.OpGotoNoAdvance, 0, d)
	if err != nil || c.any {
		return fails, err
	}
	if c.lo == c.hi {
		return m.fail(fails, ocpcode.OpGotoNe, int(c.lo), d+1)
	}
	if fails, err = m.fail(fails, ocpcode.OpGotoLt, int(c.lo), d+1); err != nil {
		return fails, err
	}
	return m.fail(fails, ocpcode.OpGotoGt, int(c.hi), d+1)
}

func (m matcher) complement(c complement, d int) ([]failure, error) {
	fails, err := m.fail(nil, ocpcode.OpGotoNoAdvance, 0, d)
	if err != nil {
		return fails, err
	}
	for _, cl := range c.classes {
		switch {
		case cl.any:
			fails, err = m.fail(fails, ocpcode.OpGoto, 0, d+1)
		case cl.lo == cl.hi:
			fails, err = m.fail(fails, ocpcode.OpGotoEq, int(cl.lo), d+1)
		default:
			var below ocpcode.Hole
			if below, err = m.cs.EmitJump(ocpcode.OpGotoLt, int(cl.lo)); err != nil {
				return fails, err
			}
			fails, err = m.fail(fails, ocpcode.OpGotoLe, int(cl.hi), d+1)
			m.cs.PatchHere(below)
		}
		if err != nil {
			return fails, err
		}
	}
	return fails, nil
}

func (m matcher) anchor(a anchor, d int) ([]failure, error) {
	op := ocpcode.OpGotoBeg
	if a.end {
		op = ocpcode.OpGotoEnd
	}
	ok, err := m.cs.EmitJump(op, 0)
	if err != nil {
		return nil, err
	}
	fails, err := m.fail(nil, ocpcode.OpGoto, 0, d)
	m.cs.PatchHere(ok)
	return fails, err
}

func (m matcher) sequence(seq sequence, d int) ([]failure, error) {
	var fails []failure
	for _, pat := range seq {
		f, err := m.pattern(pat, d)
		fails = append(fails, f...)
		if err != nil {
			return fails, err
		}
		w, _ := pat.width()
		d += w
	}
	return fails, nil
}

// choice tries the alternatives in order. Failures of the last alternative
// are failures of the choice.
func (m matcher) choice(c choice, d int) ([]failure, error) {
	var done []ocpcode.Hole
	last := len(c.alts) - 1
	for i, alt := range c.alts {
		fails, err := m.sequence(alt, 0)
		if err != nil {
			return nil, err
		}
		if i == last {
			for j := range fails {
				fails[j].depth += d
			}
			m.cs.PatchHere(done...)
			return fails, nil
		}
		h, err := m.cs.EmitJump(ocpcode.OpGoto, 0)
		if err != nil {
			return nil, err
		}
		done = append(done, h)
		if err = m.backup(fails); err != nil {
			return nil, err
		}
	}
	return nil, nil // not reached, choices have at least one alternative
}

// repetition expands the mandatory occurrences of the repeated pattern, then
// matches optional occurrences as long as possible.
func (m matcher) repetition(r repetition, d int) ([]failure, error) {
	w, _ := r.item.width()
	var fails []failure
	for i := 0; i < r.min; i++ {
		f, err := m.pattern(r.item, d+i*w)
		fails = append(fails, f...)
		if err != nil {
			return fails, err
		}
	}
	if r.max == unbounded {
		loop := m.cs.Len()
		f, err := m.pattern(r.item, 0)
		if err != nil {
			return fails, err
		}
		if err = m.cs.EmitJumpTo(ocpcode.OpGoto, 0, loop); err != nil {
			return fails, err
		}
		return fails, m.backup(f)
	}
	var exits []ocpcode.Hole
	for i := r.min; i < r.max; i++ {
		f, err := m.pattern(r.item, 0)
		if err != nil {
			return fails, err
		}
		next, err := m.cs.EmitJump(ocpcode.OpGoto, 0)
		if err != nil {
			return fails, err
		}
		if err = m.backup(f); err != nil {
			return fails, err
		}
		exit, err := m.cs.EmitJump(ocpcode.OpGoto, 0)
		if err != nil {
			return fails, err
		}
		exits = append(exits, exit)
		m.cs.PatchHere(next)
	}
	m.cs.PatchHere(exits...)
	return fails, nil
}

// backup emits code un-reading the characters matched at each failure and
// falling through to the code following it. Failures are grouped by depth,
// deepest first, sharing the LEFT_BACKUP instructions of shallower ones.
func (m matcher) backup(fails []failure) error {
	sort.SliceStable(fails, func(i, j int) bool {
		return fails[i].depth > fails[j].depth
	})
	for i, f := range fails {
		m.cs.Patch(f.hole, m.cs.Len())
		next := 0
		if i+1 < len(fails) {
			next = fails[i+1].depth
		}
		for k := f.depth; k > next; k-- {
			if err := m.cs.Emit(ocpcode.OpLeftBackup, 0); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- Rules -----------------------------------------------------------------

// compileRule appends the code of rule r to cs.
func compileRule(cs *ocpcode.CompilerState, r rule) error {
	if err := cs.Emit(ocpcode.OpLeftStart, 0); err != nil {
		return err
	}
	fails, err := matcher{cs}.sequence(r.left, 0)
	if err != nil {
		return err
	}
	gen := ocpexpr.NewGenerator(cs)
	minw := r.left.minWidth()
	for _, side := range []struct {
		outs     []output
		pushback bool
	}{{r.right, false}, {r.pushback, true}} {
		for _, out := range side.outs {
			if err = checkReferences(out, minw); err != nil {
				return err
			}
			if out.some {
				op := ocpcode.OpRightSome
				if side.pushback {
					op = ocpcode.OpPbackSome
				}
				err = cs.EmitSome(op, out.first, out.last)
			} else {
				err = gen.CompileAsOutput(out.expr, side.pushback)
			}
			if err != nil {
				return positioned(err, out.at)
			}
		}
	}
	switch r.change.op {
	case ocpcode.OpStateChange, ocpcode.OpStatePush:
		err = cs.Emit(r.change.op, r.change.state)
	case ocpcode.OpStatePop:
		err = cs.Emit(r.change.op, 0)
	}
	if err != nil {
		return err
	}
	if err = cs.Emit(ocpcode.OpStop, 0); err != nil {
		return err
	}
	for _, f := range fails {
		cs.Patch(f.hole, cs.Len())
	}
	return cs.Emit(ocpcode.OpLeftReturn, 0)
}

// compileDefaultRule appends a rule copying a single character.
func compileDefaultRule(cs *ocpcode.CompilerState) error {
	return compileRule(cs, rule{
		left:  sequence{charClass{any: true}},
		right: []output{{expr: &ocpexpr.CharRef{Index: 1}}},
	})
}

// checkReferences rejects references to characters which the left side of
// a rule does not guarantee to match.
func checkReferences(out output, minw int) error {
	if out.some {
		if out.first+out.last > minw {
			return ocpcode.SyntaxError("\\*", out.at,
				"range excludes %d characters, rule matches at least %d", out.first+out.last, minw)
		}
		return nil
	}
	return out.expr.Accept(refChecker{minw: minw})
}

// refChecker walks an expression, checking character references.
type refChecker struct {
	minw int
}

var _ ocpexpr.Visitor = refChecker{}

func (rc refChecker) VisitConstant(n *ocpexpr.Constant) error {
	return nil
}

func (rc refChecker) VisitCharRef(n *ocpexpr.CharRef) error {
	if n.Index < 1 || n.Index > rc.minw {
		return ocpcode.SyntaxError(n.String(), n.At,
			"reference to character %d, rule matches at least %d", n.Index, rc.minw)
	}
	return nil
}

func (rc refChecker) VisitLastCharRef(n *ocpexpr.LastCharRef) error {
	if n.Offset >= rc.minw {
		return ocpcode.SyntaxError(n.String(), n.At,
			"reference to character $-%d, rule matches at least %d", n.Offset, rc.minw)
	}
	return nil
}

func (rc refChecker) VisitTableRef(n *ocpexpr.TableRef) error {
	return n.Index.Accept(rc)
}

func (rc refChecker) VisitBinary(n *ocpexpr.Binary) error {
	if err := n.Left.Accept(rc); err != nil {
		return err
	}
	return n.Right.Accept(rc)
}

func positioned(err error, pos ocpcode.Pos) error {
	if cerr, ok := err.(*ocpcode.CompileError); ok && cerr.Pos.Line == 0 {
		cerr.Pos = pos
	}
	return err
}
