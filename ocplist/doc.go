/*
Package ocplist implements lists of OCPs, i.e. pipelines of programs applied
to text one after the other.

A list is built from the empty list by prepending programs. Programs may later
be deactivated from a position on (RemoveAfter) or up to a position
(RemoveBefore), where positions are scaled offsets into the text. Lists are
persistent values: splicing returns a new list and leaves the original one
unchanged.

Lists are usually written as a chain of commands, as in

	\addbeforeocplist \A \removeafterocplist 10 \B \addbeforeocplist \B \nullocplist

A chain is read into a Builder, which folds the commands onto the empty list
starting with the command written last. In the example, \B is added first,
then deactivated from position 10 on, then \A is put in front of it, giving
the list [A, B[0.0..10.0)].

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ocplist

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'ocp.list'
func tracer() tracing.Trace {
	return tracing.Select("ocp.list")
}
