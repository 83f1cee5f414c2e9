package ocpexpr

import (
	"github.com/npillmayer/ocp/ocpcode"
)

// Generator emits instructions for expression trees into a compiler state.
//
// A failing compilation leaves the compiler state's buffer as it was before
// the call: partial code is rolled back.
type Generator struct {
	cs *ocpcode.CompilerState
	// SpecializeLiterals selects single-instruction outputs for literal
	// leaves (constants and character references). It is on by default;
	// switching it off produces the generic push-then-output form.
	SpecializeLiterals bool
}

// NewGenerator creates a code generator writing to cs.
func NewGenerator(cs *ocpcode.CompilerState) *Generator {
	return &Generator{cs: cs, SpecializeLiterals: true}
}

// Compile emits code leaving the value of expression n on the operand stack.
func (g *Generator) Compile(n Node) error {
	mark := g.cs.Mark()
	if err := n.Accept(codegen{g.cs}); err != nil {
		g.cs.Rollback(mark)
		tracer().Debugf("compilation of %s failed: %v", n, err)
		return err
	}
	return nil
}

// CompileAsOutput emits code writing the value of expression n to the
// output, either after the scan position (right output) or, if pushback is
// set, in front of it, to be rescanned.
func (g *Generator) CompileAsOutput(n Node, pushback bool) error {
	if g.SpecializeLiterals {
		if op, arg, ok := literalOutput(n, pushback); ok {
			if err := g.cs.Emit(op, arg); err != nil {
				return positioned(err, n.Pos())
			}
			return nil
		}
	}
	if err := g.Compile(n); err != nil {
		return err
	}
	op := ocpcode.OpRightOutput
	if pushback {
		op = ocpcode.OpPbackOutput
	}
	return g.cs.Emit(op, 0)
}

// literalOutput selects the combined output instruction for literal leaves.
func literalOutput(n Node, pushback bool) (ocpcode.Opcode, int, bool) {
	switch leaf := n.(type) {
	case *Constant:
		return pick(pushback, ocpcode.OpRightNum, ocpcode.OpPbackNum), leaf.Value, true
	case *CharRef:
		return pick(pushback, ocpcode.OpRightChar, ocpcode.OpPbackChar), leaf.Index, true
	case *LastCharRef:
		return pick(pushback, ocpcode.OpRightLChar, ocpcode.OpPbackLChar), leaf.Offset, true
	}
	return ocpcode.OpNone, 0, false
}

func pick(pushback bool, right, pback ocpcode.Opcode) ocpcode.Opcode {
	if pushback {
		return pback
	}
	return right
}

// positioned adds a source position to argument errors reported by the
// compiler state, which does not know about source text.
func positioned(err error, pos ocpcode.Pos) error {
	if cerr, ok := err.(*ocpcode.CompileError); ok && cerr.Pos.Line == 0 {
		cerr.Pos = pos
	}
	return err
}

// codegen walks an expression tree in post-order, emitting push, arithmetic
// and lookup instructions.
type codegen struct {
	cs *ocpcode.CompilerState
}

var _ Visitor = codegen{}

func (cg codegen) VisitConstant(n *Constant) error {
	return positioned(cg.cs.Emit(ocpcode.OpPushNum, n.Value), n.At)
}

func (cg codegen) VisitCharRef(n *CharRef) error {
	return positioned(cg.cs.Emit(ocpcode.OpPushChar, n.Index), n.At)
}

func (cg codegen) VisitLastCharRef(n *LastCharRef) error {
	return positioned(cg.cs.Emit(ocpcode.OpPushLChar, n.Offset), n.At)
}

// VisitTableRef resolves the table before anything referencing it is emitted.
func (cg codegen) VisitTableRef(n *TableRef) error {
	id, ok := cg.cs.Tables().Lookup(n.Name)
	if !ok {
		return ocpcode.TableNotDefined(n.Name, n.At)
	}
	if err := cg.cs.Emit(ocpcode.OpPushNum, id); err != nil {
		return positioned(err, n.At)
	}
	if err := n.Index.Accept(cg); err != nil {
		return err
	}
	return cg.cs.Emit(ocpcode.OpLookup, 0)
}

func (cg codegen) VisitBinary(n *Binary) error {
	if err := n.Left.Accept(cg); err != nil {
		return err
	}
	if err := n.Right.Accept(cg); err != nil {
		return err
	}
	return cg.cs.Emit(n.Op.Opcode(), 0)
}

// Compile compiles source text of a single expression into a program
// writing the expression's value as right output. Table references are
// resolved against tables, which may be nil.
func Compile(source string, tables *ocpcode.TableRegistry) (*ocpcode.Program, error) {
	node, err := Parse(source)
	if err != nil {
		return nil, err
	}
	cs := ocpcode.NewCompilerState(tables)
	if err = NewGenerator(cs).CompileAsOutput(node, false); err != nil {
		return nil, err
	}
	if err = cs.Emit(ocpcode.OpStop, 0); err != nil {
		return nil, err
	}
	tracer().Debugf("compiled expression %s into %d words", node, cs.Len())
	return cs.Program(source)
}
