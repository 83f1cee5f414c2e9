package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpexpr"
	"github.com/npillmayer/ocp/ocplist"
	"github.com/npillmayer/ocp/ocpload"
	"github.com/npillmayer/ocp/ocpstore"
	"github.com/npillmayer/ocp/ocpvm"
	"github.com/thatisuday/commando"
)

func runRunCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	spec := strings.TrimSpace(args["ocp"].Value)
	if spec == "" {
		fatalf("OCP is required")
	}
	var list ocplist.List
	if mustFlagBool(flags["chain"], "chain") {
		finders := ocpload.Finders{ocpload.NewDirFinder(flagString(flags["dir"], "dir"))}
		if db := flagString(flags["db"], "db"); db != "" {
			lib, err := ocpstore.Open(db)
			if err != nil {
				fatalf("%v", err)
			}
			defer lib.Close()
			finders = append(ocpload.Finders{lib}, finders...)
		}
		var err error
		if list, err = ocplist.Parse(spec, ocpload.New(finders)); err != nil {
			fatalf("%v", err)
		}
	} else {
		list = ocplist.Null.Prepend(loadProgram(spec))
	}
	input, err := readInput(args["text"], flags, list)
	if err != nil {
		fatalf("%v", err)
	}
	var opts []ocplist.ApplyOption
	if form, ok, err := normalForm(flagString(flags["normalize"], "normalize")); err != nil {
		fatalf("%v", err)
	} else if ok {
		opts = append(opts, ocplist.WithNormalization(form))
	}
	if steps := mustFlagInt(flags["steps"], "steps"); steps > 0 {
		opts = append(opts, ocplist.WithMachineOptions(ocpvm.WithStepLimit(steps)))
	}
	out, err := list.Apply(input, opts...)
	if err != nil {
		fatalf("%v", err)
	}
	fmt.Println(string(out))
}

// readInput reads the text to transform from the arguments, the codepoints
// flag or the input file, in this order.
func readInput(text commando.ArgValue, flags map[string]commando.FlagValue, list ocplist.List) ([]rune, error) {
	if cp := flagString(flags["codepoints"], "codepoints"); cp != "" {
		return parseCodepoints(cp)
	}
	path := flagString(flags["input"], "input")
	if path == "" {
		return []rune(strings.Join(variadic(text), " ")), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	width := ocpcode.DefaultCharWidth
	if entries := list.Entries(); len(entries) > 0 {
		width = entries[0].Program.InputBytes()
	}
	enc, err := encodingFor(flagString(flags["encoding"], "encoding"), width)
	if err != nil {
		return nil, err
	}
	return decodeInput(data, enc)
}

func runExprCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	src := strings.Join(variadic(args["expression"]), " ")
	prog, err := ocpexpr.Compile(src, nil)
	if err != nil {
		fatalf("%v", err)
	}
	if mustFlagBool(flags["code"], "code") {
		if err := ocpcode.Disassemble(os.Stdout, prog); err != nil {
			fatalf("%v", err)
		}
	}
	window := ocpvm.SliceWindow(flagString(flags["window"], "window"))
	col, err := ocpvm.New(prog).Eval(window)
	if err != nil {
		fatalf("%v", err)
	}
	for _, c := range col.Chars(ocpvm.Right) {
		fmt.Printf("%d\t%#U\n", c, c)
	}
}
