/*
Package ocpexpr compiles the arithmetic expressions of the OCP language.

Expressions appear on the output side of OCP rules, where they compute
characters from matched input, e.g.

	#(\1 + @"20)
	#upper[\$ - `a']

An expression is parsed into a small syntax tree (package-level type Node),
which is then translated to stack-machine code by a Generator. Operators are
“+” and “-” (lowest precedence), and “*”, “div:” and “mod:”. All operators
are left-associative, “5-2-1” is (5-2)-1. Atoms are numbers, references to
matched characters (\n counting from the start of the match, \$ and \($-n)
counting from its end), parenthesized expressions and table lookups
“name[expr]”. Numbers may be given in decimal, as a character in backtick and
apostrophe (`A'), or in hexadecimal prefixed by ‘@’ (@41 or @"41).

Tables are resolved against the table registry of the compiler state at the
point of reference. An unknown table aborts compilation before any
instruction referencing it has been emitted.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ocpexpr

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'ocp.expr'
func tracer() tracing.Trace {
	return tracing.Select("ocp.expr")
}
