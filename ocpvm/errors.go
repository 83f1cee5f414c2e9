package ocpvm

import (
	"errors"
	"fmt"

	"github.com/npillmayer/ocp/ocpcode"
)

// Run-time failure conditions. None of these should occur with a program
// accepted by the compiler; they indicate a defect of the program's code.
var (
	ErrWindow          = errors.New("ocpvm: character reference outside of match")
	ErrStackUnderflow  = errors.New("ocpvm: operand stack underflow")
	ErrStackOverflow   = errors.New("ocpvm: operand stack overflow")
	ErrDivisionByZero  = errors.New("ocpvm: division by zero")
	ErrNoSuchTable     = errors.New("ocpvm: no table with this id")
	ErrNoCursor        = errors.New("ocpvm: matching instruction without cursor")
	ErrStepLimit       = errors.New("ocpvm: step limit exceeded")
	ErrNoProgress      = errors.New("ocpvm: rule matched without consuming input")
	ErrIllegalOpcode   = errors.New("ocpvm: illegal instruction")
	ErrProgramRequired = errors.New("ocpvm: no program")
)

// ProgramError is a fatal run-time error of a program. It records where in
// the program's code the error occurred.
type ProgramError struct {
	Program string         // name of the program
	State   int            // state the code belongs to
	PC      int            // address of the failing instruction
	Op      ocpcode.Opcode // the failing instruction
	Err     error          // one of the sentinel errors of this package
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("%s [program %s, state %d, pc %d, %s]", e.Err, e.Program, e.State, e.PC, e.Op)
}

func (e *ProgramError) Unwrap() error {
	return e.Err
}
