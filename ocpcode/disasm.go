package ocpcode

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/runenames"
)

// Line is one line of a disassembly listing.
type Line struct {
	Addr  int    // word address of the instruction
	Instr string // mnemonic and arguments
	Note  string // annotation, e.g. the name of a character argument
}

// DisassembleCode creates a listing for the code of a single state.
// Incomplete or unknown instructions are listed as raw words.
func DisassembleCode(code []Instruction) []Line {
	lines := make([]Line, 0, len(code))
	for pc := 0; pc < len(code); {
		instr := code[pc]
		op := instr.Opcode()
		line := Line{Addr: pc}
		switch {
		case !op.Valid():
			line.Instr = fmt.Sprintf(".word 0x%08x", uint32(instr))
			pc++
		case op.Width() == 2 && pc+1 >= len(code):
			line.Instr = fmt.Sprintf("%s <incomplete>", op)
			pc++
		case op.IsJump():
			target := code[pc+1]
			if op.HasArg() {
				line.Instr = fmt.Sprintf("%s %d -> %s", op, instr.Arg(), jumpTarget(target))
				line.Note = charNote(instr.Arg())
			} else {
				line.Instr = fmt.Sprintf("%s -> %s", op, jumpTarget(target))
			}
			pc += 2
		case op == OpRightSome || op == OpPbackSome:
			line.Instr = fmt.Sprintf("%s %d %d", op, instr.Arg(), code[pc+1])
			pc += 2
		default:
			line.Instr = instr.String()
			if op == OpRightNum || op == OpPbackNum {
				line.Note = charNote(instr.Arg())
			}
			pc++
		}
		lines = append(lines, line)
	}
	return lines
}

func jumpTarget(w Instruction) string {
	if w == placeholder {
		return "<hole>"
	}
	return fmt.Sprintf("%04d", uint32(w))
}

func charNote(c int) string {
	r := rune(c)
	if !unicode.IsPrint(r) {
		return ""
	}
	name := runenames.Name(r)
	if name == "" {
		return fmt.Sprintf("%#U", r)
	}
	return fmt.Sprintf("%#U %s", r, name)
}

// Disassemble writes a readable listing of p to w.
func Disassemble(w io.Writer, p *Program) error {
	if p == nil {
		return fmt.Errorf("ocp: nil program")
	}
	if _, err := fmt.Fprintf(w, "ocp %s (input=%d, output=%d, tables=%d, states=%d)\n",
		p, p.input, p.output, len(p.tables), len(p.states)); err != nil {
		return err
	}
	for id, t := range p.tables {
		vals := make([]string, len(t))
		for i, v := range t {
			vals[i] = fmt.Sprintf("%d", v)
		}
		if _, err := fmt.Fprintf(w, "table %d [%d]: %s\n", id, len(t), strings.Join(vals, " ")); err != nil {
			return err
		}
	}
	for s, code := range p.states {
		if _, err := fmt.Fprintf(w, "state %d:\n", s); err != nil {
			return err
		}
		for _, line := range DisassembleCode(code) {
			var err error
			if line.Note != "" {
				_, err = fmt.Fprintf(w, "  %04d  %-28s ; %s\n", line.Addr, line.Instr, line.Note)
			} else {
				_, err = fmt.Fprintf(w, "  %04d  %s\n", line.Addr, line.Instr)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}
