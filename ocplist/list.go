package ocplist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/ocp/ocpcode"
)

// List is an ordered chain of programs, applied to text one after another,
// head first. Every program in a list has an interval of positions it is
// active for, initially all positions.
//
// Lists are persistent: operations return new lists sharing structure with
// the lists they were derived from, which remain unchanged. Lists may
// therefore be shared freely between goroutines. The zero value is the empty
// list, i.e. the terminator.
type List struct {
	head *node
}

type node struct {
	prog     *ocpcode.Program
	from, to Scaled // active for positions in [from, to)
	next     *node
}

func (n *node) activeAt(pos Scaled) bool {
	return n.from <= pos && pos < n.to
}

// Null is the empty list. Applying it leaves text unchanged.
var Null = List{}

// Empty returns the empty list.
func Empty() List {
	return Null
}

// IsTerminator returns true for the empty list.
func (l List) IsTerminator() bool {
	return l.head == nil
}

// Prepend returns a list with program p in front of the programs of l,
// active for all positions.
func Prepend(p *ocpcode.Program, l List) List {
	if p == nil {
		panic("ocplist: cannot prepend nil program")
	}
	return List{head: &node{prog: p, from: 0, to: endless, next: l.head}}
}

// Prepend returns a list with program p in front of the programs of l.
func (l List) Prepend(p *ocpcode.Program) List {
	return Prepend(p, l)
}

// Len returns the number of programs in the list.
func (l List) Len() int {
	n := 0
	for e := l.head; e != nil; e = e.next {
		n++
	}
	return n
}

// Entry describes a program of a list and the interval of positions it is
// active for. To is MaxScaled+1 for programs active up to the end.
type Entry struct {
	Program  *ocpcode.Program
	From, To Scaled
}

// Bounded returns true if the program is deactivated from some position on.
func (e Entry) Bounded() bool {
	return e.To <= MaxScaled
}

func (e Entry) String() string {
	switch {
	case e.From == 0 && !e.Bounded():
		return e.Program.String()
	case !e.Bounded():
		return fmt.Sprintf("%s[%s..]", e.Program, e.From)
	}
	return fmt.Sprintf("%s[%s..%s)", e.Program, e.From, e.To)
}

// Entries returns the programs of the list, head first.
func (l List) Entries() []Entry {
	var entries []Entry
	for e := l.head; e != nil; e = e.next {
		entries = append(entries, Entry{Program: e.prog, From: e.from, To: e.to})
	}
	return entries
}

// ActiveAt returns the programs active at position pos, in the order they
// are to be applied.
func (l List) ActiveAt(pos Scaled) []*ocpcode.Program {
	var progs []*ocpcode.Program
	for e := l.head; e != nil; e = e.next {
		if e.activeAt(pos) {
			progs = append(progs, e.prog)
		}
	}
	return progs
}

func (l List) String() string {
	entries := l.Entries()
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// --- Splicing --------------------------------------------------------------

// Failure conditions of splice operations.
var (
	ErrPosition  = errors.New("ocplist: position outside of buffer")
	ErrNotInList = errors.New("ocplist: program not in list")
	ErrNotActive = errors.New("ocplist: program not active at position")
)

// SpliceError is returned by splice operations which cannot be performed.
// The list operated on is left unchanged.
type SpliceError struct {
	Op      string // remove-after or remove-before
	Program string
	Pos     Scaled
	Err     error
}

func (e *SpliceError) Error() string {
	return fmt.Sprintf("%s %s at %s: %v", e.Op, e.Program, e.Pos, e.Err)
}

func (e *SpliceError) Unwrap() error {
	return e.Err
}

// RemoveAfter returns a list in which program p is deactivated for all
// positions at or beyond pos. p must be active at pos.
func RemoveAfter(l List, pos Scaled, p *ocpcode.Program) (List, error) {
	return l.splice("remove-after", pos, p, func(n *node) {
		n.to = pos
	})
}

// RemoveBefore returns a list in which program p is deactivated for all
// positions strictly before pos. p must be active at pos.
func RemoveBefore(l List, pos Scaled, p *ocpcode.Program) (List, error) {
	return l.splice("remove-before", pos, p, func(n *node) {
		n.from = pos
	})
}

// RemoveAfter is a method version of function RemoveAfter.
func (l List) RemoveAfter(pos Scaled, p *ocpcode.Program) (List, error) {
	return RemoveAfter(l, pos, p)
}

// RemoveBefore is a method version of function RemoveBefore.
func (l List) RemoveBefore(pos Scaled, p *ocpcode.Program) (List, error) {
	return RemoveBefore(l, pos, p)
}

// splice copies the nodes of the list up to the first node of p active at
// pos, and applies change to that copy. Nodes after it are shared. A node
// which is not active anywhere after the change is dropped.
func (l List) splice(op string, pos Scaled, p *ocpcode.Program, change func(*node)) (List, error) {
	fail := func(err error) (List, error) {
		serr := &SpliceError{Op: op, Program: p.Name(), Pos: pos, Err: err}
		tracer().Infof("%v", serr)
		return l, serr
	}
	if pos < 0 || pos > MaxScaled {
		return fail(ErrPosition)
	}
	var target *node
	found := false
	for e := l.head; e != nil; e = e.next {
		if e.prog != p {
			continue
		}
		found = true
		if e.activeAt(pos) {
			target = e
			break
		}
	}
	if target == nil {
		if found {
			return fail(ErrNotActive)
		}
		return fail(ErrNotInList)
	}
	var head, last *node
	for e := l.head; ; e = e.next {
		c := *e
		if e == target {
			change(&c)
			if c.from >= c.to { // dead
				c = node{}
			}
		}
		if c.prog != nil {
			if last == nil {
				head = &c
			} else {
				last.next = &c
			}
			last = &c
		}
		if e == target {
			if last == nil {
				head = e.next
			} else {
				last.next = e.next
			}
			break
		}
	}
	tracer().Debugf("%s %s at %s", op, p, pos)
	return List{head: head}, nil
}
