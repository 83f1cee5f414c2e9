package ocpexpr

import (
	"fmt"

	"github.com/npillmayer/ocp/ocpcode"
)

// Node is a node of an expression's abstract syntax tree. The set of node
// types is closed: every node type has to be handled by a Visitor, and adding
// a node type means adding a method to Visitor, which in turn forces every
// visitor (in particular the code generator) to handle it.
type Node interface {
	Pos() ocpcode.Pos
	String() string
	Accept(v Visitor) error
	precedence() int
}

// Visitor is implemented by operations on expression trees.
type Visitor interface {
	VisitConstant(*Constant) error
	VisitCharRef(*CharRef) error
	VisitLastCharRef(*LastCharRef) error
	VisitTableRef(*TableRef) error
	VisitBinary(*Binary) error
}

// Precedence levels, used for printing.
const (
	precSum     = 1
	precProduct = 2
	precAtom    = 3
)

// Constant is a numeric literal.
type Constant struct {
	Value int
	At    ocpcode.Pos
}

// CharRef is a reference \n to the n-th matched character, counted from the
// start of the match beginning with 1.
type CharRef struct {
	Index int
	At    ocpcode.Pos
}

// LastCharRef is a reference to a matched character counted backwards from
// the end of the match: \$ (Offset 0) is the last character, \($-n) is the
// character n positions before it.
type LastCharRef struct {
	Offset int
	At     ocpcode.Pos
}

// TableRef is a table lookup name[index].
type TableRef struct {
	Name  string
	Index Node
	At    ocpcode.Pos
}

// Binary is an arithmetic operation on two sub-expressions.
type Binary struct {
	Op          Operator
	Left, Right Node
	At          ocpcode.Pos
}

func (n *Constant) Pos() ocpcode.Pos    { return n.At }
func (n *CharRef) Pos() ocpcode.Pos     { return n.At }
func (n *LastCharRef) Pos() ocpcode.Pos { return n.At }
func (n *TableRef) Pos() ocpcode.Pos    { return n.At }
func (n *Binary) Pos() ocpcode.Pos      { return n.At }

func (n *Constant) Accept(v Visitor) error    { return v.VisitConstant(n) }
func (n *CharRef) Accept(v Visitor) error     { return v.VisitCharRef(n) }
func (n *LastCharRef) Accept(v Visitor) error { return v.VisitLastCharRef(n) }
func (n *TableRef) Accept(v Visitor) error    { return v.VisitTableRef(n) }
func (n *Binary) Accept(v Visitor) error      { return v.VisitBinary(n) }

func (n *Constant) precedence() int    { return precAtom }
func (n *CharRef) precedence() int     { return precAtom }
func (n *LastCharRef) precedence() int { return precAtom }
func (n *TableRef) precedence() int    { return precAtom }
func (n *Binary) precedence() int      { return n.Op.precedence() }

func (n *Constant) String() string { return fmt.Sprintf("%d", n.Value) }
func (n *CharRef) String() string  { return fmt.Sprintf("\\%d", n.Index) }

func (n *LastCharRef) String() string {
	if n.Offset == 0 {
		return "\\$"
	}
	return fmt.Sprintf("\\($-%d)", n.Offset)
}

func (n *TableRef) String() string {
	return fmt.Sprintf("%s[%s]", n.Name, n.Index)
}

// String prints the expression with the minimal set of parentheses needed to
// retain its structure. All operators are left-associative.
func (n *Binary) String() string {
	l, r := n.Left.String(), n.Right.String()
	if n.Left.precedence() < n.precedence() {
		l = "(" + l + ")"
	}
	if n.Right.precedence() <= n.precedence() {
		r = "(" + r + ")"
	}
	return l + " " + n.Op.String() + " " + r
}

// --- Operators -------------------------------------------------------------

// Operator is an arithmetic operator of the expression language.
type Operator int

// Operators, in ascending order of precedence groups.
const (
	OpAdd Operator = iota
	OpSub
	OpMult
	OpDiv
	OpMod
)

func (op Operator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMult:
		return "*"
	case OpDiv:
		return "div:"
	case OpMod:
		return "mod:"
	}
	return "?"
}

func (op Operator) precedence() int {
	if op == OpAdd || op == OpSub {
		return precSum
	}
	return precProduct
}

// Opcode returns the instruction implementing the operator.
func (op Operator) Opcode() ocpcode.Opcode {
	switch op {
	case OpAdd:
		return ocpcode.OpAdd
	case OpSub:
		return ocpcode.OpSub
	case OpMult:
		return ocpcode.OpMult
	case OpDiv:
		return ocpcode.OpDiv
	case OpMod:
		return ocpcode.OpMod
	}
	panic(fmt.Sprintf("ocpexpr: no instruction for operator %d", int(op)))
}
