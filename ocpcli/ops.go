package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/npillmayer/ocp"
	"github.com/npillmayer/ocp/ocpexpr"
	"github.com/npillmayer/ocp/ocpload"
	"github.com/npillmayer/ocp/ocpvm"
	"github.com/pterm/pterm"
)

var errNoProgram = errors.New("no OCP in use")

func (intp *Intp) use(name string) error {
	p, err := intp.env.OCP(name)
	if err != nil {
		return err
	}
	intp.program = p
	tracer().Infof("using OCP %s", p)
	return nil
}

func exprOp(intp *Intp, op *Op) (error, bool) {
	if op.noArg() {
		return errors.New("expr requires an expression"), false
	}
	prog, err := ocpexpr.Compile(op.arg, nil)
	if err != nil {
		return err, false
	}
	col, err := ocpvm.New(prog).Eval(ocpvm.SliceWindow(intp.window))
	if err != nil {
		return err, false
	}
	for _, w := range col.Writes {
		pterm.Printf("%s = %d %s\n", op.arg, w.Char, charName(w.Char))
	}
	return nil, false
}

func windowOp(intp *Intp, op *Op) (error, bool) {
	intp.window = []rune(op.arg)
	printChars(intp.window)
	return nil, false
}

func compileOp(intp *Intp, op *Op) (error, bool) {
	if op.noArg() {
		return errors.New("compile requires a file name"), false
	}
	p, err := ocpload.LoadProgram(op.arg)
	if err != nil {
		return err, false
	}
	intp.env.Define(p)
	intp.program = p
	pterm.Info.Printf("compiled %s: %d states, %d words\n", p, p.StateCount(), p.Size())
	return nil, false
}

func useOp(intp *Intp, op *Op) (error, bool) {
	if op.noArg() {
		return errors.New("use requires the name of an OCP"), false
	}
	return intp.use(op.arg), false
}

func disasmOp(intp *Intp, op *Op) (error, bool) {
	p := intp.program
	if !op.noArg() {
		var err error
		if p, err = intp.env.OCP(op.arg); err != nil {
			return err, false
		}
	}
	if p == nil {
		return errNoProgram, false
	}
	printDisassembly(p)
	return nil, false
}

// runOp transforms text with the active list or, if none is active, with
// the program in use.
func runOp(intp *Intp, op *Op) (error, bool) {
	var out string
	var err error
	if active := intp.env.Active(); !active.IsTerminator() {
		out, err = intp.env.Transform(op.arg)
	} else if intp.program != nil {
		out, err = ocp.TransformWith(op.arg, intp.program)
	} else {
		return errNoProgram, false
	}
	if err != nil {
		return err, false
	}
	pterm.Printf("%q => %q\n", op.arg, out)
	return nil, false
}

// listOp defines a list with "list name chain", or shows it with "list name".
func listOp(intp *Intp, op *Op) (error, bool) {
	name, chain, _ := strings.Cut(op.arg, " ")
	if name == "" {
		printEntries("active", intp.env.Active())
		return nil, false
	}
	if chain = strings.TrimSpace(chain); chain == "" {
		l, err := intp.env.List(name)
		if err != nil {
			return err, false
		}
		printEntries(name, l)
		return nil, false
	}
	l, err := intp.env.DefineList(name, chain)
	if err != nil {
		return err, false
	}
	printEntries(name, l)
	return nil, false
}

func pushOp(intp *Intp, op *Op) (error, bool) {
	return intp.env.Push(op.arg), false
}

func popOp(intp *Intp, op *Op) (error, bool) {
	if !intp.env.Pop() {
		return fmt.Errorf("no active OCP list"), false
	}
	return nil, false
}

func charsOp(intp *Intp, op *Op) (error, bool) {
	printChars([]rune(op.arg))
	return nil, false
}
