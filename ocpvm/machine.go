package ocpvm

import (
	"fmt"

	"github.com/npillmayer/ocp/ocpcode"
)

// DefaultMaxStack is the default depth limit of the operand stack.
const DefaultMaxStack = 1024

// DefaultStepFactor determines the step limit of a translation run without
// an explicit limit: DefaultStepFactor × (input length + 1) × program size.
const DefaultStepFactor = 256

// Machine executes the code of a program. A machine holds the run-time state
// of a single execution: the current state of the program, the stack of
// saved states and the operand stack. Machines are not safe for concurrent
// use, but any number of machines may share a program.
type Machine struct {
	prog      *ocpcode.Program
	state     int   // current state of the program
	saved     []int // state stack
	stack     []int // operand stack
	maxStack  int
	stepLimit int
	budget    int // step limit of the current translation, if stepLimit is 0
	steps     int
}

// Option configures a Machine.
type Option func(*Machine)

// WithStepLimit limits the number of instructions a machine will execute
// between calls to Reset. A limit of 0 means no limit for Execute and a
// limit derived from the input length for Translate (see DefaultStepFactor).
// A negative limit means no limit at all.
func WithStepLimit(n int) Option {
	return func(m *Machine) {
		m.stepLimit = n
	}
}

// WithMaxStack limits the depth of the operand stack.
func WithMaxStack(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxStack = n
		}
	}
}

// New creates a machine for program prog, starting in state 0.
func New(prog *ocpcode.Program, opts ...Option) *Machine {
	m := &Machine{
		prog:     prog,
		maxStack: DefaultMaxStack,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Program returns the program executed by the machine.
func (m *Machine) Program() *ocpcode.Program {
	return m.prog
}

// State returns the current state of the program.
func (m *Machine) State() int {
	return m.state
}

// Steps returns the number of instructions executed since the last Reset.
func (m *Machine) Steps() int {
	return m.steps
}

// Reset puts the machine back into state 0, with empty stacks.
func (m *Machine) Reset() {
	m.state = 0
	m.saved = m.saved[:0]
	m.stack = m.stack[:0]
	m.steps = 0
	m.budget = 0
}

// limit returns the step limit in effect, or 0 for none.
func (m *Machine) limit() int {
	if m.stepLimit != 0 {
		return max(m.stepLimit, 0)
	}
	return m.budget
}

// Status tells why an execution returned control.
type Status uint8

const (
	// Yielded: an output instruction has been executed.
	Yielded Status = iota
	// Stopped: the rule's code has completed with STOP.
	Stopped
	// Exhausted: execution ran past the end of the state's code.
	Exhausted
)

func (s Status) String() string {
	switch s {
	case Yielded:
		return "yielded"
	case Stopped:
		return "stopped"
	case Exhausted:
		return "exhausted"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Result is the outcome of a call to Execute.
type Result struct {
	Status Status
	Next   int // address to resume execution at
}

// Execute runs the code of the current state, starting at address pc, until
// the first output instruction, a STOP, or the end of the code. Characters
// are read from win, and output is written to sink. Matching instructions
// require win to implement Cursor.
//
// State changes take effect for the next rule: execution continues in the
// code it started with.
//
// An output instruction terminates the call; the caller resumes at
// Result.Next, if it wants the rest of the rule to execute.
func (m *Machine) Execute(pc int, win Window, sink Sink) (Result, error) {
	if m.prog == nil {
		return Result{}, ErrProgramRequired
	}
	state := m.state
	code := m.prog.State(state)
	fail := func(op ocpcode.Opcode, err error) (Result, error) {
		perr := &ProgramError{
			Program: m.prog.Name(),
			State:   state,
			PC:      pc,
			Op:      op,
			Err:     err,
		}
		tracer().Errorf("%v", perr)
		return Result{Next: pc}, perr
	}
	for {
		if pc >= len(code) {
			return Result{Status: Exhausted, Next: pc}, nil
		}
		if limit := m.limit(); limit > 0 && m.steps >= limit {
			return fail(code[pc].Opcode(), ErrStepLimit)
		}
		m.steps++
		op, arg := code[pc].Opcode(), code[pc].Arg()
		second := 0
		if op.Width() == 2 {
			if pc+1 >= len(code) {
				return fail(op, ErrIllegalOpcode)
			}
			second = int(code[pc+1])
		}
		next := pc + op.Width()
		switch op {
		// --- output --------------------------------------------------------
		case ocpcode.OpRightOutput, ocpcode.OpPbackOutput:
			v, err := m.pop()
			if err != nil {
				return fail(op, err)
			}
			return m.yield(next, modeOf(op), sink, rune(v))
		case ocpcode.OpRightNum, ocpcode.OpPbackNum:
			return m.yield(next, modeOf(op), sink, rune(arg))
		case ocpcode.OpRightChar, ocpcode.OpPbackChar:
			c, ok := win.CharAt(arg)
			if !ok {
				return fail(op, ErrWindow)
			}
			return m.yield(next, modeOf(op), sink, c)
		case ocpcode.OpRightLChar, ocpcode.OpPbackLChar:
			c, ok := win.CharFromEnd(arg)
			if !ok {
				return fail(op, ErrWindow)
			}
			return m.yield(next, modeOf(op), sink, c)
		case ocpcode.OpRightSome, ocpcode.OpPbackSome:
			first, last := arg, second
			if first+last > win.Len() {
				return fail(op, ErrWindow)
			}
			mode := modeOf(op)
			for i := first + 1; i <= win.Len()-last; i++ {
				c, _ := win.CharAt(i)
				if err := mode.emit(sink, c); err != nil {
					return Result{Next: pc}, err
				}
			}
			return Result{Status: Yielded, Next: next}, nil
		// --- expressions ---------------------------------------------------
		case ocpcode.OpAdd, ocpcode.OpSub, ocpcode.OpMult, ocpcode.OpDiv, ocpcode.OpMod:
			b, err := m.pop()
			if err != nil {
				return fail(op, err)
			}
			a, err := m.pop()
			if err != nil {
				return fail(op, err)
			}
			v, err := arithmetic(op, a, b)
			if err != nil {
				return fail(op, err)
			}
			if err = m.push(v); err != nil {
				return fail(op, err)
			}
		case ocpcode.OpLookup:
			index, err := m.pop()
			if err != nil {
				return fail(op, err)
			}
			id, err := m.pop()
			if err != nil {
				return fail(op, err)
			}
			if id < 0 || id >= m.prog.TableCount() {
				return fail(op, ErrNoSuchTable)
			}
			if err = m.push(m.lookup(id, index)); err != nil {
				return fail(op, err)
			}
		case ocpcode.OpPushNum:
			if err := m.push(arg); err != nil {
				return fail(op, err)
			}
		case ocpcode.OpPushChar:
			c, ok := win.CharAt(arg)
			if !ok {
				return fail(op, ErrWindow)
			}
			if err := m.push(int(c)); err != nil {
				return fail(op, err)
			}
		case ocpcode.OpPushLChar:
			c, ok := win.CharFromEnd(arg)
			if !ok {
				return fail(op, ErrWindow)
			}
			if err := m.push(int(c)); err != nil {
				return fail(op, err)
			}
		// --- states --------------------------------------------------------
		case ocpcode.OpStateChange:
			m.state = arg
		case ocpcode.OpStatePush:
			m.saved = append(m.saved, m.state)
			m.state = arg
		case ocpcode.OpStatePop:
			if n := len(m.saved); n > 0 {
				m.state = m.saved[n-1]
				m.saved = m.saved[:n-1]
			} else {
				m.state = 0
			}
		// --- matching ------------------------------------------------------
		case ocpcode.OpLeftStart, ocpcode.OpLeftReturn, ocpcode.OpLeftBackup,
			ocpcode.OpGotoNoAdvance, ocpcode.OpGotoBeg, ocpcode.OpGotoEnd:
			cur, ok := win.(Cursor)
			if !ok {
				return fail(op, ErrNoCursor)
			}
			if match(op, cur) {
				next = second
			}
		case ocpcode.OpGoto:
			next = second
		case ocpcode.OpGotoNe, ocpcode.OpGotoEq, ocpcode.OpGotoLt,
			ocpcode.OpGotoLe, ocpcode.OpGotoGt, ocpcode.OpGotoGe:
			c, ok := win.Current()
			if !ok {
				return fail(op, ErrWindow)
			}
			if compare(op, int(c), arg) {
				next = second
			}
		case ocpcode.OpStop:
			return Result{Status: Stopped, Next: next}, nil
		default:
			return fail(op, ErrIllegalOpcode)
		}
		pc = next
	}
}

func (m *Machine) yield(next int, mode Mode, sink Sink, c rune) (Result, error) {
	if err := mode.emit(sink, c); err != nil {
		return Result{Next: next}, err
	}
	return Result{Status: Yielded, Next: next}, nil
}

// lookup returns entry index of table id. An index outside of the table
// results in 0.
func (m *Machine) lookup(id, index int) int {
	table := m.prog.Table(id)
	if index < 0 || index >= len(table) {
		tracer().Errorf("program %s: index %d out of range for table #%d of size %d",
			m.prog.Name(), index, id, len(table))
		return 0
	}
	return table[index]
}

func (m *Machine) push(v int) error {
	if len(m.stack) >= m.maxStack {
		return ErrStackOverflow
	}
	m.stack = append(m.stack, v)
	return nil
}

func (m *Machine) pop() (int, error) {
	n := len(m.stack)
	if n == 0 {
		return 0, ErrStackUnderflow
	}
	v := m.stack[n-1]
	m.stack = m.stack[:n-1]
	return v, nil
}

func modeOf(op ocpcode.Opcode) Mode {
	if op.IsPushback() {
		return Pushback
	}
	return Right
}

// arithmetic applies a binary operator to a and b, in this order.
func arithmetic(op ocpcode.Opcode, a, b int) (int, error) {
	switch op {
	case ocpcode.OpAdd:
		return a + b, nil
	case ocpcode.OpSub:
		return a - b, nil
	case ocpcode.OpMult:
		return a * b, nil
	case ocpcode.OpDiv:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	case ocpcode.OpMod:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a % b, nil
	}
	return 0, ErrIllegalOpcode
}

// compare is the condition of a compare jump: the jump is taken if
// c <op> arg holds.
func compare(op ocpcode.Opcode, c, arg int) bool {
	switch op {
	case ocpcode.OpGotoNe:
		return c != arg
	case ocpcode.OpGotoEq:
		return c == arg
	case ocpcode.OpGotoLt:
		return c < arg
	case ocpcode.OpGotoLe:
		return c <= arg
	case ocpcode.OpGotoGt:
		return c > arg
	case ocpcode.OpGotoGe:
		return c >= arg
	}
	return false
}

// match performs a matching instruction on cur. For jumps it returns true if
// the jump is to be taken.
func match(op ocpcode.Opcode, cur Cursor) bool {
	switch op {
	case ocpcode.OpLeftStart:
		cur.Start()
	case ocpcode.OpLeftReturn:
		cur.Return()
	case ocpcode.OpLeftBackup:
		cur.Backup()
	case ocpcode.OpGotoNoAdvance:
		return !cur.Advance()
	case ocpcode.OpGotoBeg:
		return cur.AtBeginning()
	case ocpcode.OpGotoEnd:
		return cur.AtEnd()
	}
	return false
}
