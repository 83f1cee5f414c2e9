/*
Package ocpgen generates Go source embedding compiled OCPs.

A generated file declares one package-level variable per program, holding
the program decoded from its binary representation at package
initialization:

	// Upper is OCP "upper" (2-byte input, 2-byte output, 61 words).
	var Upper = ocpcode.MustDecode("upper", []byte("\x00\x00\x00=..."))

Programs embedded this way need no loader at run time.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ocpgen

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"github.com/npillmayer/ocp/ocpcode"
)

const ocpcodePath = "github.com/npillmayer/ocp/ocpcode"

// Config describes a file to generate.
type Config struct {
	Package   string             // package clause of the generated file
	Generator string             // command named in the header comment
	Programs  []*ocpcode.Program // programs to embed
	VarNames  []string           // optional variable names, parallel to Programs
}

// File creates the Go source file for cfg.
func File(cfg Config) (*jen.File, error) {
	if cfg.Package == "" {
		return nil, errors.New("ocpgen: package name required")
	}
	if len(cfg.Programs) == 0 {
		return nil, errors.New("ocpgen: no programs to embed")
	}
	f := jen.NewFile(cfg.Package)
	gen := cfg.Generator
	if gen == "" {
		gen = "ocpgen"
	}
	f.HeaderComment(fmt.Sprintf("Code generated by %s. DO NOT EDIT.", gen))
	seen := make(map[string]bool)
	for i, p := range cfg.Programs {
		v := ""
		if i < len(cfg.VarNames) {
			v = cfg.VarNames[i]
		}
		if v == "" {
			v = VarName(p.Name())
		}
		if seen[v] {
			return nil, fmt.Errorf("ocpgen: duplicate variable %s", v)
		}
		seen[v] = true
		f.Commentf("%s is OCP %q (%d-byte input, %d-byte output, %d words).",
			v, p.Name(), p.InputBytes(), p.OutputBytes(), p.Size())
		f.Var().Id(v).Op("=").Qual(ocpcodePath, "MustDecode").Call(
			jen.Lit(p.Name()),
			jen.Index().Byte().Call(jen.Lit(string(ocpcode.Encode(p)))),
		)
	}
	return f, nil
}

// Generate writes the Go source file for cfg to w.
func Generate(w io.Writer, cfg Config) error {
	f, err := File(cfg)
	if err != nil {
		return err
	}
	return f.Render(w)
}

// GenerateFile writes the Go source file for cfg to path.
func GenerateFile(path string, cfg Config) error {
	f, err := File(cfg)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("ocpgen: saving %s: %w", path, err)
	}
	return nil
}

// VarName derives an exported Go identifier from a program name, e.g.
// "inuktitut-uni2sy" becomes "InuktitutUni2sy".
func VarName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	v := b.String()
	if v == "" || !unicode.IsLetter([]rune(v)[0]) {
		v = "OCP" + v
	}
	return v
}
