package ocpcode

// DefaultCharWidth is the character width in bytes assumed for programs not
// declaring their input or output width.
const DefaultCharWidth = 2

// Program is a compiled OCP: code for one or more states plus the constant
// tables referenced by the code. State 0 is the initial state.
//
// Programs are immutable once created and may be shared between any number
// of concurrent executions.
type Program struct {
	name   string
	input  int
	output int
	tables [][]int
	states [][]Instruction
}

// NewProgram creates a program from finished state code. Tables are copied
// from the registry (which may be nil). The code is validated in the same way
// as loaded bytecode; if validation fails, no program is returned.
func NewProgram(name string, input, output int, tables *TableRegistry, states ...[]Instruction) (*Program, error) {
	p := &Program{
		name:   name,
		input:  input,
		output: output,
	}
	for id := 0; id < tables.Len(); id++ {
		p.tables = append(p.tables, append([]int(nil), tables.Table(id)...))
	}
	for _, code := range states {
		p.states = append(p.states, append([]Instruction(nil), code...))
	}
	if err := p.validate(); err != nil {
		tracer().Errorf("program %s rejected: %v", name, err)
		return nil, err
	}
	return p, nil
}

// Name returns the name of the program, usually the name it was loaded by.
func (p *Program) Name() string {
	if p == nil {
		return ""
	}
	return p.name
}

func (p *Program) String() string {
	if p == nil {
		return "<no program>"
	}
	if p.name == "" {
		return "<anonymous program>"
	}
	return p.name
}

// InputBytes returns the declared width of input characters in bytes.
func (p *Program) InputBytes() int {
	return p.input
}

// OutputBytes returns the declared width of output characters in bytes.
func (p *Program) OutputBytes() int {
	return p.output
}

// StateCount returns the number of states of the program.
func (p *Program) StateCount() int {
	return len(p.states)
}

// State returns the code of state s. Clients must not modify the returned slice.
func (p *Program) State(s int) []Instruction {
	if s < 0 || s >= len(p.states) {
		return nil
	}
	return p.states[s]
}

// Code returns the code of the initial state.
func (p *Program) Code() []Instruction {
	return p.State(0)
}

// TableCount returns the number of constant tables.
func (p *Program) TableCount() int {
	return len(p.tables)
}

// Table returns the constant table with the given id. Clients must not modify
// the returned slice.
func (p *Program) Table(id int) []int {
	if id < 0 || id >= len(p.tables) {
		return nil
	}
	return p.tables[id]
}

// Size returns the number of words of the program's binary representation.
func (p *Program) Size() int {
	n := 3 + 2 + 2 // header, table and state section headers
	for _, t := range p.tables {
		n += 1 + len(t)
	}
	for _, s := range p.states {
		n += 1 + len(s)
	}
	return n
}

// Renamed returns a copy of p carrying another name. Code and tables are shared.
func (p *Program) Renamed(name string) *Program {
	q := *p
	q.name = name
	return &q
}

// validate checks the structural integrity of the program's code: known
// opcodes, arguments in range, complete two-word instructions, jump targets
// within the state's code and state ids within the program.
func (p *Program) validate() error {
	if len(p.states) == 0 {
		return IllegalOpcode(0, "program has no states")
	}
	for s, code := range p.states {
		for pc := 0; pc < len(code); {
			instr := code[pc]
			op := instr.Opcode()
			if !op.Valid() {
				return IllegalOpcode(pc, "state %d: unknown opcode %d", s, uint8(op))
			}
			if op.HasArg() && instr.Arg() > MaxArgument {
				return IllegalOpcode(pc, "state %d: argument of %s too big: %d", s, op, instr.Arg())
			}
			if op.Width() == 2 {
				if pc+1 >= len(code) {
					return IllegalOpcode(pc, "state %d: %s lacks its second word", s, op)
				}
				second := code[pc+1]
				if second == placeholder {
					return IllegalOpcode(pc+1, "state %d: unpatched jump target", s)
				}
				if op.IsJump() && int(second) > len(code) {
					return IllegalOpcode(pc+1, "state %d: jump target %d out of range", s, second)
				}
				if !op.IsJump() && int(second) > MaxArgument {
					return IllegalOpcode(pc+1, "state %d: offset of %s too big: %d", s, op, second)
				}
			}
			if (op == OpStateChange || op == OpStatePush) && instr.Arg() >= len(p.states) {
				return IllegalOpcode(pc, "state %d: no state with id %d", s, instr.Arg())
			}
			pc += op.Width()
		}
	}
	return nil
}
