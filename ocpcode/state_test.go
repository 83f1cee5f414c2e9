package ocpcode

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestInstructionPacking(t *testing.T) {
	instr := MakeInstruction(OpGotoNe, 0x61)
	if instr.Opcode() != OpGotoNe {
		t.Errorf("expected opcode GOTO_NE, got %s", instr.Opcode())
	}
	if instr.Arg() != 0x61 {
		t.Errorf("expected argument 0x61, got %#x", instr.Arg())
	}
	if uint32(instr) != 27<<24|0x61 {
		t.Errorf("unexpected instruction word %#08x", uint32(instr))
	}
	if MakeInstruction(OpStop, 0).String() != "STOP" {
		t.Errorf("expected STOP to print without argument, got %q", MakeInstruction(OpStop, 0).String())
	}
}

func TestOpcodeWidth(t *testing.T) {
	for op := OpRightOutput; op < opSentinel; op++ {
		want := 1
		if op.IsJump() || op == OpRightSome || op == OpPbackSome {
			want = 2
		}
		if op.Width() != want {
			t.Errorf("%s: expected width %d, got %d", op, want, op.Width())
		}
	}
	if OpGotoNe.IsCompare() != true || OpGoto.IsCompare() {
		t.Errorf("compare classification wrong")
	}
}

func TestEmitArgumentBoundary(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.code")
	defer teardown()
	//
	cs := NewCompilerState(nil)
	if err := cs.Emit(OpPushNum, MaxArgument); err != nil {
		t.Fatalf("maximum argument should be accepted, got %v", err)
	}
	err := cs.Emit(OpPushNum, MaxArgument+1)
	if !errors.Is(err, ErrArgumentTooBig) {
		t.Fatalf("expected argument-too-big, got %v", err)
	}
	if cs.Len() != 1 {
		t.Errorf("failed emit must not append, buffer has %d words", cs.Len())
	}
	if err := cs.Emit(OpGoto, 0); err == nil {
		t.Errorf("expected Emit to reject a jump opcode")
	}
}

func TestBackpatching(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "ocp.code")
	defer teardown()
	//
	cs := NewCompilerState(nil)
	h, err := cs.EmitJump(OpGotoNe, 'a')
	if err != nil {
		t.Fatal(err)
	}
	if int(h) != 1 {
		t.Errorf("expected hole at index 1, got %d", h)
	}
	if cs.OpenHoles() != 1 {
		t.Errorf("expected 1 open hole, have %d", cs.OpenHoles())
	}
	_ = cs.Emit(OpRightNum, 'x')
	_ = cs.Emit(OpStop, 0)
	cs.PatchHere(h)
	_ = cs.Emit(OpRightNum, 'y')
	if cs.OpenHoles() != 0 {
		t.Errorf("expected all holes patched, have %d", cs.OpenHoles())
	}
	code := cs.Finish()
	if int(code[1]) != 4 {
		t.Errorf("expected jump target 4, got %d", code[1])
	}
	p, err := NewProgram("branch", 1, 1, nil, code)
	if err != nil {
		t.Fatalf("valid code rejected: %v", err)
	}
	if len(p.Code()) != 5 {
		t.Errorf("expected 5 words of code, got %d", len(p.Code()))
	}
}

func TestDoublePatchPanics(t *testing.T) {
	cs := NewCompilerState(nil)
	h, _ := cs.EmitJump(OpGoto, 0)
	cs.PatchHere(h)
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected second patch of a hole to panic")
		}
	}()
	cs.Patch(h, 0)
}

func TestFinishWithOpenHolePanics(t *testing.T) {
	cs := NewCompilerState(nil)
	_, _ = cs.EmitJump(OpGotoNoAdvance, 0)
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected Finish to panic with an open hole")
		}
	}()
	cs.Finish()
}

func TestRollbackDropsHoles(t *testing.T) {
	cs := NewCompilerState(nil)
	_ = cs.Emit(OpLeftStart, 0)
	mark := cs.Mark()
	_ = cs.Emit(OpPushNum, 3)
	_, _ = cs.EmitJump(OpGotoEq, 4)
	cs.Rollback(mark)
	if cs.Len() != 1 || cs.OpenHoles() != 0 {
		t.Errorf("expected rollback to mark, have len=%d holes=%d", cs.Len(), cs.OpenHoles())
	}
	_ = cs.Finish() // must not panic
}

func TestValidationRejectsBadState(t *testing.T) {
	code := []Instruction{MakeInstruction(OpStateChange, 3), MakeInstruction(OpStop, 0)}
	_, err := NewProgram("bad", 1, 1, nil, code)
	if !errors.Is(err, ErrIllegalOpcode) {
		t.Errorf("expected illegal-opcode error for unknown state, got %v", err)
	}
	code = []Instruction{MakeInstruction(OpGoto, 0), Instruction(17)}
	_, err = NewProgram("bad", 1, 1, nil, code)
	if !errors.Is(err, ErrIllegalOpcode) {
		t.Errorf("expected illegal-opcode error for jump out of range, got %v", err)
	}
}
