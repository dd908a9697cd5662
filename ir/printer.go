package ir

import (
	"bytes"
	"fmt"
	"io"
	"sort"
)

const indentUnit = "  "

// TreeString renders module as an indented tree, in the spirit of
// ast.TreeString, for driver output and test assertions.
func TreeString(m *Module) string {
	buf := &bytes.Buffer{}
	_ = PrintTree(buf, m)
	return buf.String()
}

func PrintTree(w io.Writer, m *Module) error {
	p := &printer{writer: w}
	p.printModule(m)
	return p.err
}

type printer struct {
	writer io.Writer
	indent string
	err    error
}

func (p *printer) write(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	if len(args) == 0 {
		_, p.err = io.WriteString(p.writer, format)
	} else {
		_, p.err = fmt.Fprintf(p.writer, format, args...)
	}
}

func (p *printer) line(format string, args ...interface{}) {
	p.write(p.indent)
	p.write(format, args...)
	p.write("\n")
}

func (p *printer) push() { p.indent += indentUnit }
func (p *printer) pop()  { p.indent = p.indent[:len(p.indent)-len(indentUnit)] }

func (p *printer) printModule(m *Module) {
	p.line("Module target=%s pointer=%d", m.Target.ArchTriple, m.Target.PointerWidthBits)
	p.push()
	for _, g := range m.Globals {
		p.line("global %s %s = %v", g.Name, g.Ty, g.Init)
	}
	if m.Ctors != nil {
		p.line("ctors %s:", m.Ctors.Name)
		p.push()
		for _, e := range m.Ctors.Entries {
			name := "<nil>"
			if e.Func != nil {
				name = e.Func.Name
			}
			p.line("[%d] @%s", e.Priority, name)
		}
		p.pop()
	}
	for _, f := range m.Functions {
		p.printFunction(f)
	}
	p.pop()
}

func (p *printer) printFunction(f *Function) {
	kind := "define"
	if f.IsDeclaration() {
		kind = "declare"
	}
	p.line("%s %s %s(...)", kind, f.ReturnType, f.Name)
	p.push()
	for _, b := range f.Blocks {
		p.printBlock(b)
	}
	p.pop()
}

func (p *printer) printBlock(b *Block) {
	p.line("%s:", b.Label)
	p.push()
	for _, phi := range sortedPhis(b) {
		p.line("%s = phi %s", phi.Dest, phiSrcsString(phi))
	}
	for _, inst := range b.Instructions {
		p.line("%s", instructionString(inst))
	}
	p.pop()
}

// sortedPhis returns b's phis in a deterministic order. Block.Phis is keyed
// by destination register name, a plain Go map, so printing it directly
// would make output order vary run to run for any block with 2+ phis.
func sortedPhis(b *Block) []*Phi {
	names := make([]string, 0, len(b.Phis))
	for name := range b.Phis {
		names = append(names, name)
	}
	sort.Strings(names)
	phis := make([]*Phi, len(names))
	for i, name := range names {
		phis[i] = b.Phis[name]
	}
	return phis
}

// phiSrcsString renders phi's incoming values in predecessor-block-label
// order, for the same reason sortedPhis exists: Phi.Srcs is a map keyed by
// *Block.
func phiSrcsString(phi *Phi) string {
	labels := make([]string, 0, len(phi.Srcs))
	byLabel := map[string]Value{}
	for b, v := range phi.Srcs {
		labels = append(labels, b.Label)
		byLabel[b.Label] = v
	}
	sort.Strings(labels)
	buf := &bytes.Buffer{}
	buf.WriteString("[")
	for i, label := range labels {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(buf, "%s: %s", label, byLabel[label])
	}
	buf.WriteString("]")
	return buf.String()
}

func instructionString(inst Instruction) string {
	switch i := inst.(type) {
	case *BinOp:
		return fmt.Sprintf("%s = %s %s, %s", i.Dest, i.Kind, i.LHS, i.RHS)
	case *UnOp:
		return fmt.Sprintf("%s = %s %s", i.Dest, i.Kind, i.Src)
	case *Load:
		return fmt.Sprintf("%s = load %s, %s", i.Dest, i.Ty, i.Addr)
	case *Store:
		return fmt.Sprintf("store %s, %s", i.Val, i.Addr)
	case *GetElementPtrInst:
		return fmt.Sprintf("%s = getelementptr %s, %v", i.Dest, i.Base, i.Indices)
	case *Call:
		dest := ""
		if i.Dest != nil {
			dest = i.Dest.String() + " = "
		}
		return fmt.Sprintf("%s%s %s(%v)", dest, i.Kind, i.Callee, i.Args)
	case *Convert:
		return fmt.Sprintf("%s = %s %s to %s", i.Dest, i.Kind, i.Src, i.To)
	case *StackSave:
		return fmt.Sprintf("%s = stacksave", i.Dest)
	case *StackRestore:
		return fmt.Sprintf("stackrestore %s", i.Ptr)
	case *Jump:
		return fmt.Sprintf("jmp %s", i.Target.Label)
	case *CondBr:
		return fmt.Sprintf("br %s, %s, %s", i.Cond, i.True.Label, i.False.Label)
	case *Ret:
		if i.Val == nil {
			return "ret void"
		}
		return fmt.Sprintf("ret %s", i.Val)
	case *Phi:
		return fmt.Sprintf("%s = phi %v", i.Dest, i.Srcs)
	default:
		return fmt.Sprintf("<unknown instruction %T>", inst)
	}
}
