package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpcomp"
	"github.com/npillmayer/ocp/ocpload"
	"github.com/thatisuday/commando"
)

func main() {
	commando.
		SetExecutableName("ocp-tools").
		SetVersion("v0.0.1").
		SetDescription("CLI for compiling, inspecting and running OCPs.")

	commando.
		Register(nil).
		AddFlag("verbose,V", "display additional output", commando.Bool, nil)

	commando.
		Register("compile").
		SetDescription("Compile an OCP source (.otp) to a binary OCP (.ocp).").
		SetShortDescription("compile OCP source").
		AddArgument("source", "OCP source file path", "").
		AddFlag("output,o", "output file (default: source with extension .ocp)", commando.String, "-").
		AddFlag("tables,t", "TOML file with table definitions", commando.String, "-").
		AddFlag("no-default", "do not append the rule copying unmatched characters", commando.Bool, nil).
		SetAction(runCompileCommand)

	commando.
		Register("disasm").
		SetDescription("Print a listing of the code of an OCP (.ocp or .otp).").
		SetShortDescription("disassemble OCP").
		AddArgument("ocp", "OCP file path", "").
		SetAction(runDisasmCommand)

	commando.
		Register("run").
		SetDescription("Transform text with an OCP or a chain of OCP list commands.").
		SetShortDescription("run OCPs").
		AddArgument("ocp", "OCP file path, or OCP list chain with --chain", "").
		AddArgument("text...", "text to transform (instead of --input)", "").
		AddFlag("input,i", "input file", commando.String, "-").
		AddFlag("encoding,e", "input encoding: auto|utf8|latin1|utf16|utf32", commando.String, "utf8").
		AddFlag("codepoints,c", "codepoints instead of text (comma/space separated, e.g. U+0627,U+0644)", commando.String, "-").
		AddFlag("normalize,n", "normalize input: none|nfc|nfd", commando.String, "none").
		AddFlag("chain", "first argument is a chain of OCP list commands", commando.Bool, nil).
		AddFlag("dir,d", "directory to load OCPs of chains from", commando.String, ".").
		AddFlag("db", "OCP library to load OCPs of chains from", commando.String, "-").
		AddFlag("steps", "step limit per OCP (0 for no limit)", commando.Int, 0).
		SetAction(runRunCommand)

	commando.
		Register("expr").
		SetDescription("Compile and evaluate an OCP expression.").
		SetShortDescription("evaluate expression").
		AddArgument("expression...", "expression", "").
		AddFlag("window,w", "characters referenced by \\1, \\2, …", commando.String, "-").
		AddFlag("code", "print the code of the expression", commando.Bool, nil).
		SetAction(runExprCommand)

	commando.
		Register("gen").
		SetDescription("Generate Go source embedding OCPs.").
		SetShortDescription("generate Go source").
		AddArgument("ocps...", "OCP file paths (.ocp or .otp)", "").
		AddFlag("package,p", "Go package name", commando.String, "ocps").
		AddFlag("output,o", "output file", commando.String, "ocps.go").
		SetAction(runGenCommand)

	commando.
		Register("store").
		SetDescription("Manage an OCP library: put, get, delete, list, info.").
		SetShortDescription("OCP library").
		AddArgument("action", "put|get|delete|list|info", "list").
		AddArgument("names...", "OCP file paths (put) or OCP names", "").
		AddFlag("db", "OCP library file", commando.String, "ocp.db").
		AddFlag("description", "description of OCPs put into the library", commando.String, "-").
		AddFlag("output,o", "directory for OCPs read from the library (get)", commando.String, ".").
		SetAction(runStoreCommand)

	commando.Parse(nil)
}

// loadProgram loads an OCP from a file, compiling .otp sources.
func loadProgram(path string) *ocpcode.Program {
	p, err := ocpload.LoadProgram(path)
	if err != nil {
		fatalf("%v", err)
	}
	return p
}

func compileOptions(tablesFile string, noDefault bool) ([]ocpcomp.Option, error) {
	var opts []ocpcomp.Option
	if tablesFile != "" {
		reg := ocpcode.NewTableRegistry()
		if err := ocpcode.LoadTablesFile(tablesFile, reg); err != nil {
			return nil, err
		}
		opts = append(opts, ocpcomp.WithTables(reg))
	}
	if noDefault {
		opts = append(opts, ocpcomp.WithoutDefaultRule())
	}
	return opts, nil
}

func parseCodepoints(spec string) ([]rune, error) {
	parts := splitCSVSpace(spec)
	out := make([]rune, 0, len(parts))
	for _, p := range parts {
		r, err := parseCodepointToken(p)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func parseCodepointToken(token string) (rune, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, errors.New("empty codepoint token")
	}
	hex := token
	switch {
	case strings.HasPrefix(hex, "U+"), strings.HasPrefix(hex, "u+"):
		hex = hex[2:]
	case strings.HasPrefix(hex, "0x"), strings.HasPrefix(hex, "0X"):
		hex = hex[2:]
	}
	u, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid codepoint %q: %w", token, err)
	}
	if u > 0x10FFFF {
		return 0, fmt.Errorf("codepoint out of range: %q", token)
	}
	return rune(u), nil
}

func splitCSVSpace(spec string) []string {
	return strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

// flagString returns a string flag, with "-" meaning unset.
func flagString(flag commando.FlagValue, name string) string {
	s, err := flag.GetString()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	if s = strings.TrimSpace(s); s == "-" {
		return ""
	}
	return s
}

func mustFlagInt(flag commando.FlagValue, name string) int {
	n, err := flag.GetInt()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return n
}

func mustFlagBool(flag commando.FlagValue, name string) bool {
	b, err := flag.GetBool()
	if err != nil {
		fatalf("invalid --%s flag: %v", name, err)
	}
	return b
}

// variadic splits a variadic argument, which commando joins with commas.
func variadic(arg commando.ArgValue) []string {
	if strings.TrimSpace(arg.Value) == "" {
		return nil
	}
	return strings.Split(arg.Value, ",")
}

func fatalf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(os.Stderr, "ocp-tools: "+format+"\n", args...)
	os.Exit(1)
}
