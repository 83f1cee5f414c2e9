package ocpgen

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"
	"testing"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpcomp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestVarName(t *testing.T) {
	for name, v := range map[string]string{
		"upper":            "Upper",
		"inuktitut-uni2sy": "InuktitutUni2sy",
		"7bit_to_uni":      "OCP7bitToUni",
		"":                 "OCP",
		"ä.b":              "ÄB",
	} {
		if got := VarName(name); got != v {
			t.Errorf("VarName(%q) = %q, expected %q", name, got, v)
		}
	}
}

func TestGenerate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.gen")
	defer teardown()
	//
	upper, err := ocpcomp.Compile("upper", `expressions: @"61-@"7A => #(\1 - @"20);`)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	cfg := Config{
		Package:   "scripts",
		Generator: "ocp-tools gen",
		Programs:  []*ocpcode.Program{upper, upper.Renamed("shout")},
		VarNames:  []string{"", "Loud"},
	}
	if err := Generate(&buf, cfg); err != nil {
		t.Fatal(err)
	}
	src := buf.String()
	t.Logf("generated:\n%s", src)
	if !strings.HasPrefix(src, "// Code generated by ocp-tools gen. DO NOT EDIT.") {
		t.Errorf("missing generated code header")
	}
	file, err := parser.ParseFile(token.NewFileSet(), "scripts.go", src, 0)
	if err != nil {
		t.Fatalf("generated code does not parse: %v", err)
	}
	if file.Name.Name != "scripts" {
		t.Errorf("expected package scripts, is %s", file.Name.Name)
	}
	vars := embedded(t, file)
	if len(vars) != 2 {
		t.Fatalf("expected 2 embedded programs, have %d", len(vars))
	}
	for v, name := range map[string]string{"Upper": "upper", "Loud": "shout"} {
		data, ok := vars[v]
		if !ok {
			t.Errorf("variable %s not generated", v)
			continue
		}
		p := ocpcode.MustDecode(name, data)
		if len(p.Code()) != len(upper.Code()) {
			t.Errorf("embedded program %s differs from original", v)
		}
	}
}

func TestGenerateErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.gen")
	defer teardown()
	//
	p, err := ocpcomp.Compile("p", `expressions: . => \1;`)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	for _, cfg := range []Config{
		{Programs: []*ocpcode.Program{p}},
		{Package: "x"},
		{Package: "x", Programs: []*ocpcode.Program{p, p}},
	} {
		if err := Generate(&buf, cfg); err == nil {
			t.Errorf("expected config %+v to fail", cfg)
		}
	}
}

// embedded collects the byte strings passed to MustDecode, by variable name.
func embedded(t *testing.T, file *ast.File) map[string][]byte {
	vars := make(map[string][]byte)
	ast.Inspect(file, func(n ast.Node) bool {
		spec, ok := n.(*ast.ValueSpec)
		if !ok || len(spec.Values) != 1 {
			return true
		}
		call, ok := spec.Values[0].(*ast.CallExpr)
		if !ok || len(call.Args) != 2 {
			return true
		}
		conv, ok := call.Args[1].(*ast.CallExpr)
		if !ok || len(conv.Args) != 1 {
			return true
		}
		lit, ok := conv.Args[0].(*ast.BasicLit)
		if !ok {
			return true
		}
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			t.Errorf("cannot unquote embedded program: %v", err)
			return true
		}
		vars[spec.Names[0].Name] = []byte(s)
		return true
	})
	return vars
}
