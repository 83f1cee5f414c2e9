package ocpcode

import "fmt"

// Hole is the index of a placeholder word in an instruction buffer, waiting
// to be overwritten with a jump target once the target is known.
type Hole int

const placeholder = Instruction(0xFFFFFFFF)

// CompilerState is the state of a compilation unit in progress: a growable
// instruction buffer, the table registry used to resolve table names, and
// the set of holes not yet backpatched.
//
// Holes are indices into the buffer, never pointers, as the buffer may be
// re-allocated while it grows. A buffer may be turned into program code only
// after all of its holes have been patched.
type CompilerState struct {
	code   []Instruction
	tables *TableRegistry
	holes  map[Hole]struct{}
}

// NewCompilerState creates a compiler state with an empty instruction buffer.
// If tables is nil, an empty registry is created.
func NewCompilerState(tables *TableRegistry) *CompilerState {
	if tables == nil {
		tables = NewTableRegistry()
	}
	return &CompilerState{
		code:   make([]Instruction, 0, 64),
		tables: tables,
		holes:  make(map[Hole]struct{}),
	}
}

// Tables returns the table registry of this compilation unit.
func (cs *CompilerState) Tables() *TableRegistry {
	return cs.tables
}

// Len returns the number of words in the instruction buffer, which is also
// the address of the next instruction to be emitted.
func (cs *CompilerState) Len() int {
	return len(cs.code)
}

// At returns the word at index i of the instruction buffer.
func (cs *CompilerState) At(i int) Instruction {
	return cs.code[i]
}

// CheckArgument returns an error if value does not fit into an instruction argument.
func CheckArgument(value int) error {
	if value < 0 || value > MaxArgument {
		return ArgumentTooBig(value, Pos{})
	}
	return nil
}

// Emit appends a one-word instruction. Jumps have to be emitted with
// EmitJump or EmitJumpTo.
func (cs *CompilerState) Emit(op Opcode, arg int) error {
	if op.Width() != 1 {
		return IllegalOpcode(cs.Len(), "%s is not a single-word instruction", op)
	}
	if err := CheckArgument(arg); err != nil {
		return err
	}
	cs.code = append(cs.code, MakeInstruction(op, arg))
	return nil
}

// EmitSome appends a RIGHT_SOME or PBACK_SOME instruction, outputting the
// matched characters from index first+1 up to the character last positions
// before the end of the match.
func (cs *CompilerState) EmitSome(op Opcode, first, last int) error {
	if op != OpRightSome && op != OpPbackSome {
		return IllegalOpcode(cs.Len(), "%s is not a some-output", op)
	}
	if err := CheckArgument(first); err != nil {
		return err
	}
	if err := CheckArgument(last); err != nil {
		return err
	}
	cs.code = append(cs.code, MakeInstruction(op, first), Instruction(last))
	return nil
}

// EmitJump appends a jump instruction with an unknown target and returns the
// hole for the target. The hole must be patched before the buffer is finished.
func (cs *CompilerState) EmitJump(op Opcode, arg int) (Hole, error) {
	if !op.IsJump() {
		return -1, IllegalOpcode(cs.Len(), "%s is not a jump", op)
	}
	if err := CheckArgument(arg); err != nil {
		return -1, err
	}
	cs.code = append(cs.code, MakeInstruction(op, arg), placeholder)
	h := Hole(len(cs.code) - 1)
	cs.holes[h] = struct{}{}
	return h, nil
}

// EmitJumpTo appends a jump instruction with a known (backward) target.
func (cs *CompilerState) EmitJumpTo(op Opcode, arg int, target int) error {
	if !op.IsJump() {
		return IllegalOpcode(cs.Len(), "%s is not a jump", op)
	}
	if err := CheckArgument(arg); err != nil {
		return err
	}
	if target < 0 || target > cs.Len() {
		return IllegalOpcode(cs.Len(), "jump target %d out of range", target)
	}
	cs.code = append(cs.code, MakeInstruction(op, arg), Instruction(target))
	return nil
}

// Patch backpatches hole h with target. Patching a hole twice, or patching
// an index which is not a hole, is an internal error and panics.
func (cs *CompilerState) Patch(h Hole, target int) {
	_, open := cs.holes[h]
	assertTrue(fmt.Sprintf("hole %d open", h), open)
	assertTrue(fmt.Sprintf("jump target %d in range", target), target >= 0 && target <= cs.Len())
	assertTrue("placeholder present", cs.code[h] == placeholder)
	cs.code[h] = Instruction(target)
	delete(cs.holes, h)
	tracer().Debugf("backpatched hole %d -> %d", h, target)
}

// PatchHere backpatches all holes in hs with the address of the next
// instruction to be emitted.
func (cs *CompilerState) PatchHere(hs ...Hole) {
	for _, h := range hs {
		cs.Patch(h, cs.Len())
	}
}

// OpenHoles returns the number of holes not yet patched.
func (cs *CompilerState) OpenHoles() int {
	return len(cs.holes)
}

// Mark returns a position in the instruction buffer for a later Rollback.
func (cs *CompilerState) Mark() int {
	return cs.Len()
}

// Rollback truncates the instruction buffer to a position previously
// returned by Mark, dropping all holes beyond it. It is used to discard the
// partial code of a failed compilation.
func (cs *CompilerState) Rollback(mark int) {
	if mark < 0 || mark > cs.Len() {
		return
	}
	for h := range cs.holes {
		if int(h) >= mark {
			delete(cs.holes, h)
		}
	}
	cs.code = cs.code[:mark]
}

// Finish returns a copy of the instruction buffer. Every hole must have been
// patched; an open hole is an internal error and panics.
func (cs *CompilerState) Finish() []Instruction {
	assertEqualInt("open holes at finish", len(cs.holes), 0)
	return append([]Instruction(nil), cs.code...)
}

// Program finishes the instruction buffer and wraps it as a single-state
// program, using the compiler state's table registry.
func (cs *CompilerState) Program(name string) (*Program, error) {
	return NewProgram(name, DefaultCharWidth, DefaultCharWidth, cs.tables, cs.Finish())
}
