package ocpvm

import (
	"errors"
	"testing"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocpexpr"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func runExpr(t *testing.T, src string, tables *ocpcode.TableRegistry, win Window) (*Collector, error) {
	t.Helper()
	prog, err := ocpexpr.Compile(src, tables)
	if err != nil {
		t.Fatalf("cannot compile %q: %v", src, err)
	}
	return New(prog).Eval(win)
}

func TestArithmetic(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.vm")
	defer teardown()
	//
	for src, want := range map[string]rune{
		"3+4*2":         11,
		"(3+4)*2":       14,
		"5-2-1":         2,
		"7 div: 2":      3,
		"7 mod: 4":      3,
		"2*3*4 div: 5":  4,
		"\\1 + @\"20":   'a',
		"\\$ - `A' + 1": 2,
		"\\($-1)":       'A',
	} {
		col, err := runExpr(t, src, nil, SliceWindow("AB"))
		if err != nil {
			t.Errorf("%q: unexpected error %v", src, err)
			continue
		}
		if len(col.Writes) != 1 {
			t.Errorf("%q: expected exactly 1 write, got %d", src, len(col.Writes))
			continue
		}
		if w := col.Writes[0]; w.Mode != Right || w.Char != want {
			t.Errorf("%q: expected right output %d, got %s %d", src, want, w.Mode, w.Char)
		}
	}
}

func TestBranch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.vm")
	defer teardown()
	//
	cs := ocpcode.NewCompilerState(nil)
	h, err := cs.EmitJump(ocpcode.OpGotoNe, 'a')
	if err != nil {
		t.Fatal(err)
	}
	cs.Emit(ocpcode.OpRightNum, 'M')
	cs.Emit(ocpcode.OpStop, 0)
	cs.PatchHere(h)
	cs.Emit(ocpcode.OpRightNum, 'F')
	cs.Emit(ocpcode.OpStop, 0)
	prog, err := cs.Program("branch")
	if err != nil {
		t.Fatal(err)
	}
	for c, want := range map[rune]rune{'a': 'M', 'b': 'F'} {
		col := &Collector{}
		m := New(prog)
		res, err := m.Execute(0, SliceWindow{c}, col)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Status != Yielded || len(col.Writes) != 1 || col.Writes[0].Char != want {
			t.Errorf("input %q: expected output %q, got %v", c, want, col.Writes)
		}
		res, _ = m.Execute(res.Next, SliceWindow{c}, col)
		if res.Status != Stopped {
			t.Errorf("input %q: expected rule to stop, status is %s", c, res.Status)
		}
	}
}

func TestLookup(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.vm")
	defer teardown()
	//
	reg := ocpcode.NewTableRegistry()
	reg.Define("upper", []int{'A', 'B', 'C'})
	col, err := runExpr(t, "upper[\\1 - `a']", reg, SliceWindow("c"))
	if err != nil {
		t.Fatal(err)
	}
	if col.Writes[0].Char != 'C' {
		t.Errorf("expected lookup to result in C, got %q", col.Writes[0].Char)
	}
	col, err = runExpr(t, "upper[\\1 - `a']", reg, SliceWindow("z"))
	if err != nil {
		t.Fatalf("index out of range should not be fatal, got %v", err)
	}
	if col.Writes[0].Char != 0 {
		t.Errorf("expected index out of range to result in 0, got %d", col.Writes[0].Char)
	}
}

func TestLiteralOutputEquivalence(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.vm")
	defer teardown()
	//
	win := SliceWindow("xyz")
	for _, src := range []string{"65", "\\1", "\\2", "\\$", "\\($-2)"} {
		for _, pushback := range []bool{false, true} {
			var writes [2][]Write
			for i, specialize := range []bool{true, false} {
				node, err := ocpexpr.Parse(src)
				if err != nil {
					t.Fatal(err)
				}
				cs := ocpcode.NewCompilerState(nil)
				gen := ocpexpr.NewGenerator(cs)
				gen.SpecializeLiterals = specialize
				if err = gen.CompileAsOutput(node, pushback); err != nil {
					t.Fatal(err)
				}
				if specialize && cs.Len() != 1 {
					t.Errorf("%q: expected a single instruction, got %d", src, cs.Len())
				}
				prog, err := cs.Program(src)
				if err != nil {
					t.Fatal(err)
				}
				col := &Collector{}
				if _, err = New(prog).Execute(0, win, col); err != nil {
					t.Fatal(err)
				}
				writes[i] = col.Writes
			}
			if len(writes[0]) != 1 || len(writes[1]) != 1 || writes[0][0] != writes[1][0] {
				t.Errorf("%q (pushback=%v): specialized %v differs from generic %v",
					src, pushback, writes[0], writes[1])
			}
		}
	}
}

func TestProgramErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.vm")
	defer teardown()
	//
	_, err := runExpr(t, "\\3", nil, SliceWindow("ab"))
	if !errors.Is(err, ErrWindow) {
		t.Errorf("expected window error, got %v", err)
	}
	_, err = runExpr(t, "1 div: (\\1 - \\1)", nil, SliceWindow("a"))
	if !errors.Is(err, ErrDivisionByZero) {
		t.Errorf("expected division by zero, got %v", err)
	}
	var perr *ProgramError
	if !errors.As(err, &perr) || perr.Op != ocpcode.OpDiv {
		t.Errorf("expected program error at DIV, got %v", err)
	}
	if !IsFatal(err) {
		t.Errorf("expected program error to be fatal")
	}
	//
	cs := ocpcode.NewCompilerState(nil)
	cs.Emit(ocpcode.OpRightOutput, 0)
	prog, _ := cs.Program("underflow")
	_, err = New(prog).Execute(0, SliceWindow{}, &Collector{})
	if !errors.Is(err, ErrStackUnderflow) {
		t.Errorf("expected stack underflow, got %v", err)
	}
}

func TestStackLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.vm")
	defer teardown()
	//
	_, err := runExpr(t, "1+(2+(3+4))", nil, SliceWindow{})
	if err != nil {
		t.Fatal(err)
	}
	prog, _ := ocpexpr.Compile("1+(2+(3+4))", nil)
	_, err = New(prog, WithMaxStack(3)).Execute(0, SliceWindow{}, &Collector{})
	if !errors.Is(err, ErrStackOverflow) {
		t.Errorf("expected stack overflow, got %v", err)
	}
}

func TestStepLimit(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.vm")
	defer teardown()
	//
	cs := ocpcode.NewCompilerState(nil)
	if err := cs.EmitJumpTo(ocpcode.OpGoto, 0, 0); err != nil {
		t.Fatal(err)
	}
	prog, err := cs.Program("loop")
	if err != nil {
		t.Fatal(err)
	}
	m := New(prog, WithStepLimit(100))
	_, err = m.Execute(0, SliceWindow{}, &Collector{})
	if !errors.Is(err, ErrStepLimit) {
		t.Errorf("expected step limit to be hit, got %v", err)
	}
	if m.Steps() != 100 {
		t.Errorf("expected 100 steps, got %d", m.Steps())
	}
}

func TestMatchingWithoutCursor(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.vm")
	defer teardown()
	//
	cs := ocpcode.NewCompilerState(nil)
	cs.Emit(ocpcode.OpLeftStart, 0)
	prog, _ := cs.Program("start")
	_, err := New(prog).Execute(0, SliceWindow("a"), &Collector{})
	if !errors.Is(err, ErrNoCursor) {
		t.Errorf("expected no-cursor error, got %v", err)
	}
}
