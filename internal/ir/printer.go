package ir

import (
	"fmt"
	"strings"
)

// Printer renders a module as text for golden tests and the CLI
type Printer struct {
	out strings.Builder
}

// Print returns the textual form of a module
func Print(m *Module) string {
	p := &Printer{}
	p.printModule(m)
	return p.out.String()
}

// PrintFunc returns the textual form of a single function
func PrintFunc(f *Function) string {
	p := &Printer{}
	p.printFunc(f)
	return p.out.String()
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.out.WriteString(fmt.Sprintf(format, args...))
	p.out.WriteString("\n")
}

func (p *Printer) printModule(m *Module) {
	p.writeLine("module %s", m.Name)
	for _, g := range m.Globals {
		p.printGlobal(g)
	}
	if len(m.Globals) > 0 {
		p.writeLine("")
	}
	for _, f := range m.Funcs {
		if f.Decl {
			p.writeLine("declare @%s : %s", f.Name, f.Type.String())
		}
	}
	for _, f := range m.Funcs {
		if !f.Decl {
			p.printFunc(f)
		}
	}
}

func (p *Printer) printGlobal(g *Global) {
	kind := "global"
	if g.Const {
		kind = "const"
	}
	init := "zeroinit"
	if g.Init != nil {
		init = g.Init.String()
	}
	p.writeLine("@%s = %s %s %s %s", g.Name, g.Linkage, kind, g.Type.String(), init)
}

func (p *Printer) printFunc(f *Function) {
	params := make([]string, len(f.Params))
	for i, a := range f.Params {
		params[i] = fmt.Sprintf("%s %%%s", a.Type.String(), a.Name)
	}
	p.writeLine("")
	p.writeLine("func @%s(%s) %s {", f.Name, strings.Join(params, ", "), f.Type.Ret.String())
	for _, bb := range f.Blocks {
		p.printBlock(bb)
	}
	p.writeLine("}")
}

func (p *Printer) printBlock(bb *BasicBlock) {
	p.writeLine("%s:", bb.Name)
	for _, inst := range bb.Instrs {
		p.writeLine("  %s", inst.String())
	}
	if bb.Term != nil {
		p.writeLine("  %s", bb.Term.String())
	}
}
