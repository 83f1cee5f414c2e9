/*
Package ocpcode provides the bytecode layer of OCPs (Omega compiled processes).

An OCP is a small program transforming a stream of characters. OCPs are used
for transliteration, for constructing ligatures or contextual forms, and for
converting between character encodings of non-Latin scripts. Programs are
written in a rule language, compiled to a dense instruction code and run by
a stack-based virtual machine (see sister packages `ocpexpr`, `ocpcomp` and
`ocpvm`).

This package holds everything compiler and virtual machine have to agree
upon bit by bit:

▪︎ The instruction set. Every instruction is a 32-bit word with the opcode in
the upper byte and a single argument in the lower bits. Arguments are
restricted to 16 bits (MaxArgument). Jumps and the “some” outputs carry a
second argument in the word following the instruction.

▪︎ The compiler state, i.e. a growable instruction buffer, a registry of
constant tables and the bookkeeping of forward jumps (“holes”) which have
to be backpatched before a program may be finalized.

▪︎ Programs, the immutable result of a compilation, consisting of the code
for one or more states and the constant tables.

▪︎ The binary format of compiled OCP files (*.ocp), which are sequences of
big-endian 32-bit words.

# Status

The binary format follows the layout of Omega's compiled OCP files as far as
it is known. Arguments are restricted to 16 bits, which is stricter than
Omega's 24 bits. Programs produced elsewhere with larger arguments will be
rejected by Decode.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ocpcode

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'ocp.code'
func tracer() tracing.Trace {
	return tracing.Select("ocp.code")
}

func assertEqualInt(name string, a, b int) {
	if a != b {
		panic(fmt.Sprintf("assertion [%s] failed: %d != %d", name, a, b))
	}
}

func assertTrue(name string, cond bool) {
	if !cond {
		panic(fmt.Sprintf("assertion [%s] failed", name))
	}
}
