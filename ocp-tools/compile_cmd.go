package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/ocp/internal/ocpgen"
	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpcomp"
	"github.com/thatisuday/commando"
)

func runCompileCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	source := strings.TrimSpace(args["source"].Value)
	if source == "" {
		fatalf("source path is required")
	}
	opts, err := compileOptions(flagString(flags["tables"], "tables"), mustFlagBool(flags["no-default"], "no-default"))
	if err != nil {
		fatalf("%v", err)
	}
	p, err := ocpcomp.CompileFile(source, opts...)
	if err != nil {
		fatalf("%v", err)
	}
	out := flagString(flags["output"], "output")
	if out == "" {
		out = strings.TrimSuffix(source, filepath.Ext(source)) + ".ocp"
	}
	f, err := os.Create(out)
	if err != nil {
		fatalf("%v", err)
	}
	defer f.Close()
	if err := ocpcode.WriteProgram(f, p); err != nil {
		fatalf("writing %s: %v", out, err)
	}
	if mustFlagBool(flags["verbose"], "verbose") {
		fmt.Printf("%s: %d states, %d tables, %d words\n", out, p.StateCount(), p.TableCount(), p.Size())
	}
}

func runDisasmCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	path := strings.TrimSpace(args["ocp"].Value)
	if path == "" {
		fatalf("OCP path is required")
	}
	if err := ocpcode.Disassemble(os.Stdout, loadProgram(path)); err != nil {
		fatalf("%v", err)
	}
}

func runGenCommand(args map[string]commando.ArgValue, flags map[string]commando.FlagValue) {
	paths := variadic(args["ocps"])
	if len(paths) == 0 {
		fatalf("at least one OCP is required")
	}
	cfg := ocpgen.Config{
		Package:   flagString(flags["package"], "package"),
		Generator: "ocp-tools gen",
	}
	for _, path := range paths {
		cfg.Programs = append(cfg.Programs, loadProgram(strings.TrimSpace(path)))
	}
	out := flagString(flags["output"], "output")
	if err := ocpgen.GenerateFile(out, cfg); err != nil {
		fatalf("%v", err)
	}
	if mustFlagBool(flags["verbose"], "verbose") {
		fmt.Printf("%s: embedded %d OCPs\n", out, len(cfg.Programs))
	}
}
