package ir

import (
	"strings"
	"testing"
)

func TestTreeStringIncludesModuleAndFunctionHeaders(t *testing.T) {
	m := NewModule(TargetInfo{ArchTriple: "x86_64-unknown-linux-gnu", PointerWidthBits: 64})

	f := NewFunction("f", I32, nil)
	block := NewBlock("entry")
	block.Append(&Ret{Val: NewInt(I32, 42)})
	f.Blocks = []*Block{block}
	m.AddFunction(f)

	out := TreeString(m)

	for _, want := range []string{
		"Module target=x86_64-unknown-linux-gnu pointer=64",
		"define i32 f(...)",
		"entry:",
		"ret i32 42",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected tree output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestTreeStringMarksDeclarations(t *testing.T) {
	m := NewModule(TargetInfo{ArchTriple: "x86_64-unknown-linux-gnu", PointerWidthBits: 64})
	decl := NewFunction("malloc", BytePtr, nil)
	decl.Linkage = ExternalLinkage
	m.AddFunction(decl)

	out := TreeString(m)
	if !strings.Contains(out, "declare") {
		t.Fatalf("expected a declaration to be marked declare, got:\n%s", out)
	}
}

func TestInstructionStringForUnknownReturnsPlaceholder(t *testing.T) {
	out := instructionString(nil)
	if !strings.Contains(out, "unknown instruction") {
		t.Fatalf("expected a placeholder string for an unrecognized instruction, got %q", out)
	}
}
