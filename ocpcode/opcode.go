package ocpcode

import "fmt"

// Opcode is the operation part of an instruction word.
type Opcode uint8

// Opcodes of the OCP instruction set. The numbering is part of the binary
// format and must not be changed.
const (
	OpNone Opcode = iota
	// output of a computed value, popped from the stack
	OpRightOutput
	OpRightNum
	OpRightChar
	OpRightLChar
	OpRightSome
	OpPbackOutput
	OpPbackNum
	OpPbackChar
	OpPbackLChar
	OpPbackSome
	// arithmetic, pops two values and pushes the result
	OpAdd
	OpSub
	OpMult
	OpDiv
	OpMod
	OpLookup
	OpPushNum
	OpPushChar
	OpPushLChar
	OpStateChange
	OpStatePush
	OpStatePop
	OpLeftStart
	OpLeftReturn
	OpLeftBackup
	OpGoto
	OpGotoNe
	OpGotoEq
	OpGotoLt
	OpGotoLe
	OpGotoGt
	OpGotoGe
	OpGotoNoAdvance
	OpGotoBeg
	OpGotoEnd
	OpStop
	opSentinel // must be last
)

var opcodeNames = [...]string{
	OpNone:          "NONE",
	OpRightOutput:   "RIGHT_OUTPUT",
	OpRightNum:      "RIGHT_NUM",
	OpRightChar:     "RIGHT_CHAR",
	OpRightLChar:    "RIGHT_LCHAR",
	OpRightSome:     "RIGHT_SOME",
	OpPbackOutput:   "PBACK_OUTPUT",
	OpPbackNum:      "PBACK_NUM",
	OpPbackChar:     "PBACK_CHAR",
	OpPbackLChar:    "PBACK_LCHAR",
	OpPbackSome:     "PBACK_SOME",
	OpAdd:           "ADD",
	OpSub:           "SUB",
	OpMult:          "MULT",
	OpDiv:           "DIV",
	OpMod:           "MOD",
	OpLookup:        "LOOKUP",
	OpPushNum:       "PUSH_NUM",
	OpPushChar:      "PUSH_CHAR",
	OpPushLChar:     "PUSH_LCHAR",
	OpStateChange:   "STATE_CHANGE",
	OpStatePush:     "STATE_PUSH",
	OpStatePop:      "STATE_POP",
	OpLeftStart:     "LEFT_START",
	OpLeftReturn:    "LEFT_RETURN",
	OpLeftBackup:    "LEFT_BACKUP",
	OpGoto:          "GOTO",
	OpGotoNe:        "GOTO_NE",
	OpGotoEq:        "GOTO_EQ",
	OpGotoLt:        "GOTO_LT",
	OpGotoLe:        "GOTO_LE",
	OpGotoGt:        "GOTO_GT",
	OpGotoGe:        "GOTO_GE",
	OpGotoNoAdvance: "GOTO_NO_ADVANCE",
	OpGotoBeg:       "GOTO_BEG",
	OpGotoEnd:       "GOTO_END",
	OpStop:          "STOP",
}

func (op Opcode) String() string {
	if op.Valid() {
		return opcodeNames[op]
	}
	return fmt.Sprintf("OP(%d)", uint8(op))
}

// Valid returns true if op is part of the instruction set.
func (op Opcode) Valid() bool {
	return op > OpNone && op < opSentinel
}

// Width returns the number of instruction words an instruction with opcode op
// occupies, i.e. 2 for jumps and “some” outputs, 1 otherwise.
func (op Opcode) Width() int {
	if op.IsJump() || op == OpRightSome || op == OpPbackSome {
		return 2
	}
	return 1
}

// IsJump is true for all instructions carrying a jump target in their second word.
func (op Opcode) IsJump() bool {
	return op >= OpGoto && op <= OpGotoEnd
}

// IsCompare is true for the conditional jumps comparing the current input
// character against the instruction's argument.
func (op Opcode) IsCompare() bool {
	return op >= OpGotoNe && op <= OpGotoGe
}

// IsOutput is true for all instructions writing to an output sink.
func (op Opcode) IsOutput() bool {
	return op >= OpRightOutput && op <= OpPbackSome
}

// IsPushback is true for output instructions inserting before the scan cursor.
func (op Opcode) IsPushback() bool {
	return op >= OpPbackOutput && op <= OpPbackSome
}

// HasArg reports whether the first instruction word carries a meaningful argument.
func (op Opcode) HasArg() bool {
	switch op {
	case OpRightOutput, OpPbackOutput, OpAdd, OpSub, OpMult, OpDiv, OpMod, OpLookup,
		OpStatePop, OpLeftStart, OpLeftReturn, OpLeftBackup, OpStop,
		OpGoto, OpGotoNoAdvance, OpGotoBeg, OpGotoEnd:
		return false
	}
	return true
}
