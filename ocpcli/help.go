package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "expr", "expression", "expressions":
		pterm.Info.Println("Expressions")
		pterm.Println(`
	expr <expression>      evaluate an expression, e.g. expr \1 + @"20
	window <text>          set the characters \1, \2, ... referenced by expressions

	Operands are numbers (42, @"2A, ` + "`a'" + `), character references \n, \$, \($-n),
	and table lookups name[expr]. Operators are + - * div: mod: and parentheses.
	`)
	case "list", "lists", "ocplist":
		pterm.Info.Println("OCP lists")
		pterm.Println(`
	list                   show the active list
	list <name>            show a list
	list <name> <chain>    define a list, e.g.
	                       list l \addbeforeocplist \a \addbeforeocplist \b \nullocplist
	push <name>            activate a list
	pop                    deactivate the list activated last

	Commands of a chain are performed from last to first. Splices are written
	\removeafterocplist <pos> \name and \removebeforeocplist <pos> \name.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	compile <file>         compile an .otp source or load an .ocp file and use it
	use <name>             use a compiled OCP, found in the OCP search path
	disasm [<name>]        show the code of an OCP
	run <text>             transform text with the active list or the OCP in use
	chars <text>           show code points and names of characters
	help [expr|list]       show help
	quit                   leave
	`)
	}
}
