package ocpcode

import "fmt"

// MaxArgument is the largest value an instruction argument may hold.
// Literal numbers, character indices and table ids exceeding it are
// rejected at compile time.
const MaxArgument = 0xFFFF

const argMask = 0xFFFFFF

// Instruction is a single instruction word: opcode in the upper 8 bits, the
// argument in the lower bits. Second words of two-word instructions are
// plain numbers (jump targets or offsets) and are stored as Instruction, too.
type Instruction uint32

// MakeInstruction packs an opcode and an argument into an instruction word.
// It does not check the argument range; see CompilerState.Emit for that.
func MakeInstruction(op Opcode, arg int) Instruction {
	return Instruction(uint32(op)<<24 | uint32(arg)&argMask)
}

// Opcode extracts the opcode of an instruction word.
func (instr Instruction) Opcode() Opcode {
	return Opcode(instr >> 24)
}

// Arg extracts the argument of an instruction word.
func (instr Instruction) Arg() int {
	return int(instr & argMask)
}

func (instr Instruction) String() string {
	op := instr.Opcode()
	if op.HasArg() {
		return fmt.Sprintf("%s %d", op, instr.Arg())
	}
	return op.String()
}
