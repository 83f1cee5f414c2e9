/*
Package ocpcomp compiles OCP source files into programs.

OCP source (by convention in files with extension “.otp”) consists of
sections declaring the character widths, tables, states and aliases of the
program, followed by its rules:

	input: 2;
	output: 2;
	tables:
	    upper[3] = {`A', `B', `C'};
	states:
	    QUOTED;
	aliases:
	    ABC = (`a'-`c');
	expressions:
	    {ABC}     => #upper[\1 - `a'];
	    `"'       => "``" <push: QUOTED>;
	    <QUOTED> `"' => "''" <pop:>;
	    `-' `-'   => @"2013;

A rule consists of an optional state it belongs to (the initial state if
omitted), a left side of patterns to match, a right side of output, an
optional pushback side of output to be rescanned, and an optional change of
state. Rules of a state are tried in the order they appear. A rule copying a
single character to the output is appended to the rules of each state.

Patterns match characters, ranges of characters (`a'-`z'), any character
(.), strings, alternatives ((p | q)), complements of character sets
(^(p | q)), aliases ({name}), the beginning or end of input (<begin:>,
<end:>). Patterns may be repeated: p<n>, p<n,>, p<n,m>. Repetitions are
greedy and do not backtrack. Within alternatives and repetitions, patterns
must match a fixed number of characters.

Output may be characters, strings, matched characters (\n counting from 1,
\$ for the last one, \($-n) counting back from it), ranges of matched
characters (\* for all, \(*+n-m) omitting n at the start and m at the end),
or computed expressions (#expr, see package `ocpexpr`). References are
checked against the minimum number of characters matched by the left side.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ocpcomp

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'ocp.comp'
func tracer() tracing.Trace {
	return tracing.Select("ocp.comp")
}
