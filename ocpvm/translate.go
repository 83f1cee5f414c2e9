package ocpvm

import (
	"errors"

	"github.com/npillmayer/ocp/ocpcode"
)

// Translate runs program prog over input and returns the output characters.
// The input slice is not modified.
func Translate(prog *ocpcode.Program, input []rune, opts ...Option) ([]rune, error) {
	return New(prog, opts...).Translate(input)
}

// Translate resets the machine and runs its program over input, rule by rule.
//
// At every scan position the rules of the current state are tried in order.
// A matching rule consumes the characters it matched, appends its right
// output to the result and inserts its pushback output at the scan position,
// where it is rescanned. If no rule matches, one character is copied to the
// output unchanged.
//
// A rule which leaves the input in front of the scan position as it was,
// i.e. pushes back exactly the characters it consumed, and does not change
// state, would match again at the same position forever. It results in an
// error wrapping ErrNoProgress. Longer cycles through several rules are
// ended by the step limit of the machine, which is derived from the input
// length unless set explicitly.
func (m *Machine) Translate(input []rune) ([]rune, error) {
	if m.prog == nil {
		return nil, ErrProgramRequired
	}
	m.Reset()
	m.budget = DefaultStepFactor * (len(input) + 1) * m.prog.Size()
	sc := &scan{buf: RuneSlice(append([]rune(nil), input...))}
	for sc.pos < sc.buf.Len() {
		if err := m.rule(sc); err != nil {
			return sc.out, err
		}
	}
	tracer().Debugf("%s: translated %d characters into %d in %d steps",
		m.prog, len(input), len(sc.out), m.steps)
	return sc.out, nil
}

// rule executes the code of the current state once, at the scan position.
func (m *Machine) rule(sc *scan) error {
	state, saved := m.state, len(m.saved)
	sc.Start()
	pc := 0
	for {
		res, err := m.Execute(pc, sc, sc)
		if err != nil {
			return err
		}
		switch res.Status {
		case Yielded:
			pc = res.Next
			continue
		case Exhausted:
			sc.copyThrough()
			return nil
		}
		if sc.unchanged() && m.state == state && len(m.saved) == saved {
			return &ProgramError{
				Program: m.prog.Name(),
				State:   state,
				PC:      res.Next - 1,
				Op:      ocpcode.OpStop,
				Err:     ErrNoProgress,
			}
		}
		sc.commit()
		return nil
	}
}

// IsFatal is true for errors after which a translation cannot continue.
// Currently every run-time error is fatal.
func IsFatal(err error) bool {
	var perr *ProgramError
	return err != nil && (errors.As(err, &perr) || errors.Is(err, ErrProgramRequired))
}

// scan is the cursor and sink of a translation. The current match is
// buf[matchStart:matchEnd], where matchStart is the scan position.
type scan struct {
	buf      CharBuffer
	pos      int    // scan position
	matchEnd int    // end of current match
	consumed int    // number of characters consumed so far
	out      []rune // right output
	pending  []rune // pushback output of the current rule
}

var _ Cursor = (*scan)(nil)
var _ Sink = (*scan)(nil)

func (sc *scan) Len() int {
	return sc.matchEnd - sc.pos
}

func (sc *scan) CharAt(n int) (rune, bool) {
	if n < 1 || n > sc.Len() {
		return 0, false
	}
	return sc.buf.At(sc.pos + n - 1), true
}

func (sc *scan) CharFromEnd(n int) (rune, bool) {
	if n < 0 || n >= sc.Len() {
		return 0, false
	}
	return sc.buf.At(sc.matchEnd - 1 - n), true
}

func (sc *scan) Current() (rune, bool) {
	return sc.CharFromEnd(0)
}

func (sc *scan) Start() {
	sc.matchEnd = sc.pos
	sc.pending = sc.pending[:0]
}

func (sc *scan) Return() {
	sc.Start()
}

func (sc *scan) Backup() bool {
	if sc.matchEnd <= sc.pos {
		return false
	}
	sc.matchEnd--
	return true
}

func (sc *scan) Advance() bool {
	if sc.matchEnd >= sc.buf.Len() {
		return false
	}
	sc.matchEnd++
	return true
}

func (sc *scan) AtBeginning() bool {
	return sc.consumed == 0 && sc.matchEnd == sc.pos
}

func (sc *scan) AtEnd() bool {
	return sc.matchEnd >= sc.buf.Len()
}

func (sc *scan) AppendRight(c rune) error {
	sc.out = append(sc.out, c)
	return nil
}

func (sc *scan) InsertPushback(c rune) error {
	sc.pending = append(sc.pending, c)
	return nil
}

// unchanged is true if committing the current match would leave the
// remaining input as it is.
func (sc *scan) unchanged() bool {
	if len(sc.pending) != sc.Len() {
		return false
	}
	for i, c := range sc.pending {
		if sc.buf.At(sc.pos+i) != c {
			return false
		}
	}
	return true
}

// commit consumes the current match and puts pushback output in front of the
// remaining input.
func (sc *scan) commit() {
	sc.consumed += sc.matchEnd - sc.pos
	if len(sc.pending) == 0 {
		sc.pos = sc.matchEnd
	} else {
		sc.buf = sc.buf.Replace(sc.pos, sc.matchEnd, sc.pending)
	}
	sc.matchEnd = sc.pos
	sc.pending = sc.pending[:0]
}

// copyThrough is the default action if no rule matches.
func (sc *scan) copyThrough() {
	sc.out = append(sc.out, sc.buf.At(sc.pos))
	sc.pos++
	sc.consumed++
	sc.matchEnd = sc.pos
	sc.pending = sc.pending[:0]
}

// Eval executes the code of the current state once against window win,
// from its start until it stops or runs out of code, and returns everything
// written. It is intended for programs compiled from single expressions.
func (m *Machine) Eval(win Window) (*Collector, error) {
	col := &Collector{}
	pc := 0
	for {
		res, err := m.Execute(pc, win, col)
		if err != nil {
			return col, err
		}
		if res.Status != Yielded {
			return col, nil
		}
		pc = res.Next
	}
}
