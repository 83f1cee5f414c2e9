package ocplist

import (
	"fmt"
	"strings"

	"github.com/npillmayer/ocp/ocpcode"
)

// CommandKind is the kind of a list building command.
type CommandKind uint8

// Commands for building lists, with the primitives spelling them.
const (
	CmdAddBefore    CommandKind = iota // \addbeforeocplist \name
	CmdRemoveAfter                     // \removeafterocplist <pos> \name
	CmdRemoveBefore                    // \removebeforeocplist <pos> \name
)

func (k CommandKind) String() string {
	switch k {
	case CmdAddBefore:
		return `\addbeforeocplist`
	case CmdRemoveAfter:
		return `\removeafterocplist`
	case CmdRemoveBefore:
		return `\removebeforeocplist`
	}
	return fmt.Sprintf("CommandKind(%d)", uint8(k))
}

// NullPrimitive terminates a chain of commands, standing for the empty list.
const NullPrimitive = `\nullocplist`

// Command is a single step of building a list.
type Command struct {
	Kind    CommandKind
	Pos     Scaled // position of splices
	Program *ocpcode.Program
}

// apply performs the command on list l.
func (c Command) apply(l List) (List, error) {
	switch c.Kind {
	case CmdAddBefore:
		return Prepend(c.Program, l), nil
	case CmdRemoveAfter:
		return RemoveAfter(l, c.Pos, c.Program)
	case CmdRemoveBefore:
		return RemoveBefore(l, c.Pos, c.Program)
	}
	return l, fmt.Errorf("ocplist: unknown command kind %d", c.Kind)
}

func (c Command) String() string {
	if c.Kind == CmdAddBefore {
		return fmt.Sprintf("%s \\%s", c.Kind, c.Program.Name())
	}
	return fmt.Sprintf("%s %s \\%s", c.Kind, c.Pos, c.Program.Name())
}

// Builder builds lists in two phases: commands are collected in the order
// they are written, then folded onto a base list, starting with the command
// written last. The command written first therefore operates on the result
// of all the others, and a program added by it becomes the head of the list.
// The head is the first-written \addbeforeocplist, not the last-written one:
// in
//
//	\addbeforeocplist \A \addbeforeocplist \B \nullocplist
//
// \B is added to the empty list first and \A is put in front of it, giving
// [A, B]. A splice must be written before (to the left of) the command adding
// the program it names.
type Builder struct {
	cmds []Command
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Add collects a command.
func (b *Builder) Add(cmd Command) *Builder {
	b.cmds = append(b.cmds, cmd)
	return b
}

// AddBefore collects a command prepending program p.
func (b *Builder) AddBefore(p *ocpcode.Program) *Builder {
	return b.Add(Command{Kind: CmdAddBefore, Program: p})
}

// RemoveAfter collects a command deactivating p at and after pos.
func (b *Builder) RemoveAfter(pos Scaled, p *ocpcode.Program) *Builder {
	return b.Add(Command{Kind: CmdRemoveAfter, Pos: pos, Program: p})
}

// RemoveBefore collects a command deactivating p before pos.
func (b *Builder) RemoveBefore(pos Scaled, p *ocpcode.Program) *Builder {
	return b.Add(Command{Kind: CmdRemoveBefore, Pos: pos, Program: p})
}

// Commands returns the commands collected so far, in written order.
func (b *Builder) Commands() []Command {
	return append([]Command(nil), b.cmds...)
}

// Build folds the commands onto base, from the last command to the first.
// If a command fails, the error tells which one, and no list is returned.
func (b *Builder) Build(base List) (List, error) {
	l := base
	for i := len(b.cmds) - 1; i >= 0; i-- {
		var err error
		if l, err = b.cmds[i].apply(l); err != nil {
			return Null, fmt.Errorf("command #%d (%s): %w", i+1, b.cmds[i], err)
		}
	}
	tracer().Debugf("built OCP list %s from %d commands", l, len(b.cmds))
	return l, nil
}

// Resolver finds programs by name. A Loader of package ocpload is a Resolver.
type Resolver interface {
	Load(name string) (*ocpcode.Program, error)
}

// ParseChain reads a chain of list building commands, terminated by
// \nullocplist, for example
//
//	\removeafterocplist 12.5 \upper \addbeforeocplist \upper \nullocplist
//
// Program names are looked up with res. The commands are collected into a
// builder, which is returned for the caller to build the list.
func ParseChain(chain string, res Resolver) (*Builder, error) {
	b := NewBuilder()
	words := strings.Fields(chain)
	name := func(i int) (*ocpcode.Program, error) {
		if i >= len(words) || !strings.HasPrefix(words[i], `\`) || len(words[i]) < 2 {
			return nil, fmt.Errorf("ocplist: expected \\name of OCP at word %d of chain", i+1)
		}
		return res.Load(words[i][1:])
	}
	for i := 0; i < len(words); i++ {
		var kind CommandKind
		switch words[i] {
		case NullPrimitive:
			if i != len(words)-1 {
				return nil, fmt.Errorf("ocplist: %s must end the chain", NullPrimitive)
			}
			return b, nil
		case CmdAddBefore.String():
			p, err := name(i + 1)
			if err != nil {
				return nil, err
			}
			b.AddBefore(p)
			i++
			continue
		case CmdRemoveAfter.String():
			kind = CmdRemoveAfter
		case CmdRemoveBefore.String():
			kind = CmdRemoveBefore
		default:
			return nil, fmt.Errorf("ocplist: unknown list command %q", words[i])
		}
		if i+1 >= len(words) {
			return nil, fmt.Errorf("ocplist: %s requires a position", kind)
		}
		pos, err := ParseScaled(words[i+1])
		if err != nil {
			return nil, err
		}
		p, err := name(i + 2)
		if err != nil {
			return nil, err
		}
		b.Add(Command{Kind: kind, Pos: pos, Program: p})
		i += 2
	}
	return nil, fmt.Errorf("ocplist: chain not terminated by %s", NullPrimitive)
}

// Parse reads a chain of list building commands and builds the list.
func Parse(chain string, res Resolver) (List, error) {
	b, err := ParseChain(chain, res)
	if err != nil {
		return Null, err
	}
	return b.Build(Null)
}
