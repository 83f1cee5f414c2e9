package ocpexpr

import (
	"errors"
	"testing"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestScanner(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.expr")
	defer teardown()
	//
	sc := NewScanner("input: 2; % comment\n `a' @\"41 @ff \"str\" => <= x_1")
	expect := []struct {
		kind  TokenKind
		text  string
		value int
	}{
		{Label, "input:", 0},
		{Number, "2", 2},
		{Punct, ";", 0},
		{Number, "`a'", 'a'},
		{Number, "@\"41", 0x41},
		{Number, "@ff", 0xff},
		{String, "str", 0},
		{Arrow, "=>", 0},
		{BackArrow, "<=", 0},
		{Ident, "x_1", 0},
		{EOF, "", 0},
	}
	for i, e := range expect {
		tok, err := sc.Next()
		if err != nil {
			t.Fatalf("token #%d: unexpected error %v", i, err)
		}
		if tok.Kind != e.kind || tok.Text != e.text || tok.Value != e.value {
			t.Errorf("token #%d: expected %s %q (%d), got %s %q (%d)", i,
				e.kind, e.text, e.value, tok.Kind, tok.Text, tok.Value)
		}
	}
	if pos := sc.Pos(); pos.Line != 2 {
		t.Errorf("expected scanner to be on line 2, is at %s", pos)
	}
}

func TestParseStructure(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.expr")
	defer teardown()
	//
	for src, want := range map[string]string{
		"5-2-1":               "5 - 2 - 1",
		"5-(2-1)":             "5 - (2 - 1)",
		"3+4*2":               "3 + 4 * 2",
		"(3+4)*2":             "(3 + 4) * 2",
		"\\1 div: 2 mod: 3":   "\\1 div: 2 mod: 3",
		"upper[\\$ - `a']":    "upper[\\$ - 97]",
		"\\($-2) + @\"20":     "\\($-2) + 32",
		"((((7))))":           "7",
		"1 - 2 + 3 - 4":       "1 - 2 + 3 - 4",
		"2 * (3 * 4)":         "2 * (3 * 4)",
		"t[t[\\1]] * (\\2+1)": "t[t[\\1]] * (\\2 + 1)",
	} {
		node, err := Parse(src)
		if err != nil {
			t.Errorf("%q: unexpected error %v", src, err)
			continue
		}
		if node.String() != want {
			t.Errorf("%q: expected %q, got %q", src, want, node.String())
		}
	}
}

func TestParseLeftAssociative(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.expr")
	defer teardown()
	//
	node, err := Parse("5-2-1")
	if err != nil {
		t.Fatal(err)
	}
	top, ok := node.(*Binary)
	if !ok || top.Op != OpSub {
		t.Fatalf("expected subtraction at top, got %s", node)
	}
	left, ok := top.Left.(*Binary)
	if !ok || left.Op != OpSub {
		t.Fatalf("expected (5-2) as left operand, got %s", top.Left)
	}
	if c, ok := top.Right.(*Constant); !ok || c.Value != 1 {
		t.Errorf("expected 1 as right operand, got %s", top.Right)
	}
}

func TestParseErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.expr")
	defer teardown()
	//
	for _, src := range []string{
		"(1+2",
		"t[1",
		"1 +",
		"\\",
		"\\($-)",
		"\\(1)",
		"`a",
		"@",
		"1 2",
		"t",
		"?",
	} {
		_, err := Parse(src)
		if err == nil {
			t.Errorf("%q: expected syntax error", src)
			continue
		}
		if !errors.Is(err, ocpcode.ErrSyntax) {
			t.Errorf("%q: expected syntax error, got %v", src, err)
		}
		var cerr *ocpcode.CompileError
		if errors.As(err, &cerr) && cerr.Pos.Line != 1 {
			t.Errorf("%q: expected error position on line 1, got %s", src, cerr.Pos)
		}
	}
}
