/*
Package ocpload loads compiled OCPs by name.

Programs are located through a ResourceFinder, which maps a name to the
bytes of a compiled program. FSFinder looks for files "<name>.ocp" in a file
system, package ocpstore provides a finder backed by a program library.
A Loader decodes what the finder returns and keeps every program it has
loaded, so that a name always resolves to the same program. A Loader can be
used to resolve the program names in chains of OCP list commands.

Loading happens once, when a program is defined. If it fails, the LoadError
returned aborts this one definition only; nothing is cached for the name.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ocpload

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'ocp.load'
func tracer() tracing.Trace {
	return tracing.Select("ocp.load")
}
