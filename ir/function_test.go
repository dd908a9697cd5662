package ir

import "testing"

func TestFunctionIsDeclaration(t *testing.T) {
	decl := NewFunction("malloc", BytePtr, []*Register{NewRegister("sz", I64)})
	if !decl.IsDeclaration() {
		t.Fatalf("a function with no blocks should be a declaration")
	}

	decl.Blocks = []*Block{NewBlock("entry")}
	if decl.IsDeclaration() {
		t.Fatalf("a function with a block should not be a declaration")
	}
}

func TestFunctionAttrs(t *testing.T) {
	f := NewFunction("f", Void, nil)
	if f.HasAttr(NonLazyBind) {
		t.Fatalf("a fresh function should have no attributes")
	}
	f.AddAttr(NonLazyBind)
	if !f.HasAttr(NonLazyBind) {
		t.Fatalf("expected NonLazyBind to be set")
	}
	f.RemoveAttr(NonLazyBind)
	if f.HasAttr(NonLazyBind) {
		t.Fatalf("expected NonLazyBind to be cleared")
	}
}

func TestFunctionGlobalExcludedFromScan(t *testing.T) {
	intrinsic := NewFunction("llvm.assume", Void, nil)
	intrinsic.Intrinsic = true
	if !intrinsic.globalExcludedFromScan() {
		t.Fatalf("an intrinsic must be excluded from the scan")
	}

	personality := NewFunction(PersonalityRoutineName, Void, nil)
	if !personality.globalExcludedFromScan() {
		t.Fatalf("the personality routine must be excluded from the scan")
	}

	ordinary := NewFunction("f", Void, nil)
	if ordinary.globalExcludedFromScan() {
		t.Fatalf("an ordinary function must not be excluded")
	}
}

func TestBlockInsertBeforeAndAfter(t *testing.T) {
	b := NewBlock("entry")
	first := &Ret{}
	b.Append(first)

	middle := &StackSave{Dest: NewRegister("sp", BytePtr)}
	b.InsertBefore(0, middle)
	if b.Instructions[0] != Instruction(middle) || b.Instructions[1] != Instruction(first) {
		t.Fatalf("expected middle inserted before first")
	}

	last := &StackRestore{Ptr: middle.Dest}
	b.InsertAfter(0, last)
	if b.Instructions[1] != Instruction(last) {
		t.Fatalf("expected last inserted immediately after middle")
	}
}

func TestBlockIndexOf(t *testing.T) {
	b := NewBlock("entry")
	inst := &Ret{}
	if b.IndexOf(inst) != -1 {
		t.Fatalf("expected -1 for an instruction not in the block")
	}
	b.Append(inst)
	if b.IndexOf(inst) != 0 {
		t.Fatalf("expected index 0")
	}
}

func TestBlockTerminator(t *testing.T) {
	b := NewBlock("entry")
	if b.Terminator() != nil {
		t.Fatalf("an empty block has no terminator")
	}
	ret := &Ret{}
	b.Append(ret)
	if b.Terminator() != Terminator(ret) {
		t.Fatalf("expected the sole instruction to be the terminator")
	}
}

func TestBlockAppendToTerminator(t *testing.T) {
	b := NewBlock("entry")
	b.Append(&Ret{})

	load := &Load{Dest: NewRegister("v", I32), Ty: I32, Addr: NewInt(I64, 0)}
	b.AppendToTerminator(load)

	if len(b.Instructions) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(b.Instructions))
	}
	if b.Instructions[0] != Instruction(load) {
		t.Fatalf("expected the load inserted before the terminator")
	}
	if _, ok := b.Instructions[1].(*Ret); !ok {
		t.Fatalf("expected the terminator to remain last")
	}
}

func TestModuleInsertFunctionAfter(t *testing.T) {
	m := NewModule(TargetInfo{ArchTriple: "x86_64-unknown-linux-gnu", PointerWidthBits: 64})
	a := NewFunction("a", Void, nil)
	b := NewFunction("b", Void, nil)
	m.AddFunction(a)
	m.AddFunction(b)

	sentinel := NewFunction("a.sentinel", Void, nil)
	m.InsertFunctionAfter(a, sentinel)

	if len(m.Functions) != 3 || m.Functions[1] != sentinel || m.Functions[2] != b {
		t.Fatalf("expected [a, sentinel, b], got %v", m.Functions)
	}
}

func TestModuleDeleteFunctions(t *testing.T) {
	m := NewModule(TargetInfo{ArchTriple: "x86_64-unknown-linux-gnu", PointerWidthBits: 64})
	a := NewFunction("a", Void, nil)
	b := NewFunction("b", Void, nil)
	m.AddFunction(a)
	m.AddFunction(b)

	m.DeleteFunctions(map[*Function]struct{}{a: {}})

	if len(m.Functions) != 1 || m.Functions[0] != b {
		t.Fatalf("expected only b to remain, got %v", m.Functions)
	}
}

func TestModuleExistingConstructorsToleratesNilTable(t *testing.T) {
	m := NewModule(TargetInfo{ArchTriple: "x86_64-unknown-linux-gnu", PointerWidthBits: 64})
	if got := m.ExistingConstructors(); got != nil {
		t.Fatalf("expected nil constructors on a module with no table, got %v", got)
	}
}

func TestModuleReplaceConstructorTablePreservesName(t *testing.T) {
	m := NewModule(TargetInfo{ArchTriple: "x86_64-unknown-linux-gnu", PointerWidthBits: 64})
	m.Ctors = &GlobalCtorTable{Name: "llvm.global_ctors"}

	m.ReplaceConstructorTable(&GlobalCtorTable{})

	if m.Ctors.Name != "llvm.global_ctors" {
		t.Fatalf("expected the former table's name preserved, got %q", m.Ctors.Name)
	}
}
