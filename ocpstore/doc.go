/*
Package ocpstore keeps a library of compiled OCPs in an SQLite database.

Every program is stored with its binary code, as written by package ocpcode,
and an Info record of data not contained in the binary, such as a
description and the source text it was compiled from. Info records are
encoded in canonical CBOR.

A Library is a resource finder and can be searched by loaders of package
ocpload:

	lib, err := ocpstore.Open("ocp.db")
	...
	loader := ocpload.New(ocpload.Finders{lib, ocpload.NewDirFinder(".")})

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ocpstore

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'ocp.store'
func tracer() tracing.Trace {
	return tracing.Select("ocp.store")
}
