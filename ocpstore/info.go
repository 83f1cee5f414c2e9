package ocpstore

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/npillmayer/ocp/ocpcode"
)

// Info describes a program of a library.
type Info struct {
	Name        string `cbor:"1,keyasint"`
	Description string `cbor:"2,keyasint,omitempty"`
	Source      string `cbor:"3,keyasint,omitempty"` // source text, if compiled from source
	Input       int    `cbor:"4,keyasint"`           // input character width in bytes
	Output      int    `cbor:"5,keyasint"`           // output character width in bytes
	States      int    `cbor:"6,keyasint"`
	Tables      int    `cbor:"7,keyasint"`
	Words       int    `cbor:"8,keyasint"` // size of binary in words
}

// Describe fills in the fields of info which are derived from p.
func Describe(p *ocpcode.Program, info Info) Info {
	info.Name = p.Name()
	info.Input = p.InputBytes()
	info.Output = p.OutputBytes()
	info.States = p.StateCount()
	info.Tables = p.TableCount()
	info.Words = p.Size()
	return info
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ocpstore: cannot create CBOR encoding mode: %v", err))
	}
	encMode = em
}

func marshalInfo(info Info) ([]byte, error) {
	return encMode.Marshal(info)
}

func unmarshalInfo(data []byte) (Info, error) {
	var info Info
	if err := cbor.Unmarshal(data, &info); err != nil {
		return Info{}, fmt.Errorf("ocpstore: unmarshal info: %w", err)
	}
	return info, nil
}
