package main

import (
	"fmt"
	"unicode"

	"github.com/npillmayer/ocp/ocpcode"
	"github.com/npillmayer/ocp/ocplist"
	"github.com/pterm/pterm"
	"golang.org/x/text/unicode/runenames"
)

func charName(r rune) string {
	if !unicode.IsPrint(r) {
		return fmt.Sprintf("%U", r)
	}
	return fmt.Sprintf("%#U %s", r, runenames.Name(r))
}

func printChars(rs []rune) {
	if len(rs) == 0 {
		pterm.Println("no characters")
		return
	}
	data := [][]string{
		{"Index", "Code", "Name"},
	}
	for i, r := range rs {
		data = append(data, []string{
			fmt.Sprintf("\\%d", i+1),
			fmt.Sprintf("%d", r),
			charName(r),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printDisassembly(p *ocpcode.Program) {
	pterm.Printf("OCP %s: input %d bytes, output %d bytes, %d tables, %d states\n",
		p, p.InputBytes(), p.OutputBytes(), p.TableCount(), p.StateCount())
	for id := 0; id < p.TableCount(); id++ {
		pterm.Printf("table %d: %v\n", id, p.Table(id))
	}
	for s := 0; s < p.StateCount(); s++ {
		data := [][]string{
			{"Addr", "Instruction", "Note"},
		}
		for _, line := range ocpcode.DisassembleCode(p.State(s)) {
			data = append(data, []string{
				fmt.Sprintf("%04d", line.Addr),
				line.Instr,
				line.Note,
			})
		}
		pterm.Info.Printf("state %d\n", s)
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
}

func printEntries(name string, l ocplist.List) {
	if l.IsTerminator() {
		pterm.Printf("OCP list %s is empty\n", name)
		return
	}
	data := [][]string{
		{"#", "OCP", "From", "To"},
	}
	for i, e := range l.Entries() {
		to := "end"
		if e.Bounded() {
			to = e.To.String()
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i+1),
			e.Program.Name(),
			e.From.String(),
			to,
		})
	}
	pterm.Printf("OCP list %s\n", name)
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
