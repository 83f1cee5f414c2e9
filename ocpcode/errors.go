package ocpcode

import (
	"errors"
	"fmt"
)

// Sentinel errors for the kinds of failures during compilation and decoding
// of OCPs. CompileError unwraps to one of them, clients may therefore check
// with errors.Is.
var (
	ErrSyntax          = errors.New("ocp: syntax error")
	ErrArgumentTooBig  = errors.New("ocp: argument too big")
	ErrTableNotDefined = errors.New("ocp: table not defined")
	ErrIllegalOpcode   = errors.New("ocp: illegal or corrupt instruction")
	ErrTruncated       = errors.New("ocp: truncated program")
)

// ErrorKind classifies a CompileError.
type ErrorKind int

const (
	// KindSyntax denotes malformed source text (unexpected token, unmatched delimiter).
	KindSyntax ErrorKind = iota
	// KindArgumentTooBig denotes a literal or resolved id not fitting into an instruction.
	KindArgumentTooBig
	// KindTableNotDefined denotes a reference to a table without registered binding.
	KindTableNotDefined
	// KindIllegalOpcode denotes malformed bytecode, either loaded or caused by
	// an inconsistent backpatch. It is fatal for the program concerned.
	KindIllegalOpcode
	// KindTruncated denotes bytecode ending before all announced words have been read.
	KindTruncated
)

// String returns a human-readable representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "SYNTAX"
	case KindArgumentTooBig:
		return "ARGUMENT-TOO-BIG"
	case KindTableNotDefined:
		return "TABLE-NOT-DEFINED"
	case KindIllegalOpcode:
		return "ILLEGAL-OPCODE"
	case KindTruncated:
		return "TRUNCATED"
	default:
		return "UNKNOWN"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindSyntax:
		return ErrSyntax
	case KindArgumentTooBig:
		return ErrArgumentTooBig
	case KindTableNotDefined:
		return ErrTableNotDefined
	case KindTruncated:
		return ErrTruncated
	default:
		return ErrIllegalOpcode
	}
}

// Pos is a position within OCP source text. Lines and columns start at 1.
// The zero value denotes an unknown position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// CompileError represents an error encountered while compiling OCP source or
// while decoding compiled OCP bytecode. Either way no Program is produced.
type CompileError struct {
	Kind   ErrorKind // kind of failure
	Token  string    // the offending token or name, if any
	Pos    Pos       // source position, zero for bytecode errors
	Offset int       // word offset within bytecode, -1 if not applicable
	Issue  string    // human-readable description of the issue
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	var where string
	if e.Offset >= 0 {
		where = fmt.Sprintf(" at word %d", e.Offset)
	} else if e.Pos.Line > 0 {
		where = " at " + e.Pos.String()
	}
	if e.Token != "" {
		return fmt.Sprintf("[%s]%s near %q: %s", e.Kind, where, e.Token, e.Issue)
	}
	return fmt.Sprintf("[%s]%s: %s", e.Kind, where, e.Issue)
}

// Unwrap returns the sentinel error for the error's kind.
func (e *CompileError) Unwrap() error {
	return e.Kind.sentinel()
}

// Fatal is true for errors signalling a bytecode integrity defect, as opposed
// to errors in user-supplied source text.
func (e *CompileError) Fatal() bool {
	return e.Kind == KindIllegalOpcode || e.Kind == KindTruncated
}

// SyntaxError creates a compile error for malformed source text.
func SyntaxError(token string, pos Pos, format string, args ...any) *CompileError {
	return &CompileError{
		Kind:   KindSyntax,
		Token:  token,
		Pos:    pos,
		Offset: -1,
		Issue:  fmt.Sprintf(format, args...),
	}
}

// ArgumentTooBig creates a compile error for a value exceeding MaxArgument.
func ArgumentTooBig(value int, pos Pos) *CompileError {
	return &CompileError{
		Kind:   KindArgumentTooBig,
		Token:  fmt.Sprintf("%d", value),
		Pos:    pos,
		Offset: -1,
		Issue:  fmt.Sprintf("value %d exceeds maximum argument %d", value, MaxArgument),
	}
}

// TableNotDefined creates a compile error for an unresolved table name.
func TableNotDefined(name string, pos Pos) *CompileError {
	return &CompileError{
		Kind:   KindTableNotDefined,
		Token:  name,
		Pos:    pos,
		Offset: -1,
		Issue:  "no table registered under this name",
	}
}

// IllegalOpcode creates a compile error for malformed bytecode at a word offset.
func IllegalOpcode(offset int, format string, args ...any) *CompileError {
	return &CompileError{
		Kind:   KindIllegalOpcode,
		Offset: offset,
		Issue:  fmt.Sprintf(format, args...),
	}
}

func truncated(offset int, format string, args ...any) *CompileError {
	return &CompileError{
		Kind:   KindTruncated,
		Offset: offset,
		Issue:  fmt.Sprintf(format, args...),
	}
}
