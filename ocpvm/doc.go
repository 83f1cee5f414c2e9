/*
Package ocpvm executes compiled OCPs.

The virtual machine interprets the instruction code of a program (see package
`ocpcode`) against a window of matched input characters, writing results to
an output sink. It keeps an operand stack of integers for expressions, and the
current state of the program together with a stack of saved states.

Execution of a rule's code proceeds until the next output instruction, at
which point control returns to the caller, reporting where to resume. Rules
end with a STOP instruction; falling off the end of a state's code means that
no rule matched.

Two kinds of output exist: right output is appended after the scan position
and will not be looked at again by the program, whereas pushback output is
inserted in front of the scan position and will be rescanned.

Function Translate (and method Machine.Translate) implement a complete scan
loop over a character buffer, trying the rules of the current state at every
position, and re-inserting pushback output.

Run-time failures are restricted to integrity defects of programs, such as
references past the matched characters or operand stack underflow. They are
reported as *ProgramError and are fatal for the translation concerned.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ocpvm

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'ocp.vm'
func tracer() tracing.Trace {
	return tracing.Select("ocp.vm")
}
