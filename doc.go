/*
Package ocp transforms character streams with OCPs.

An OCP ("Omega Compiled Process") is a small program rewriting a stream of
characters, used for transliteration, construction of ligatures and
conversion between encodings, mostly for non-Latin scripts. OCPs are
chained into OCP lists, which are applied to text one program after the
other. We stick to the following terms:

▪︎ An "OCP source" is a text describing the rewriting rules of a program,
usually stored in a file with extension ".otp". Package ocpcomp compiles it.

▪︎ An "OCP" or "program" is the compiled form of an OCP source, a sequence
of instructions for each of its states plus constant tables. It is stored in
files with extension ".ocp" (see package ocpcode) and executed by the
virtual machine of package ocpvm.

▪︎ An "OCP list" is an ordered chain of programs, each of which may be
restricted to a range of positions in the text (see package ocplist).

Package ocp ties these together. An Env holds named programs and lists,
as a typesetter defines them, and a stack of active lists which is used
to transform text.

# Links

Omega, the typesetting system OCPs originate from:
https://en.wikipedia.org/wiki/Omega_(TeX)

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ocp

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'ocp'
func tracer() tracing.Trace {
	return tracing.Select("ocp")
}
