package stabilizer

import "github.com/stabilizerproj/gostabilize/ir"

// ModuleCtorPriority is the fixed priority the synthesized constructor is
// registered at (spec.md 4.6 step 5), matching
// original_source/pass/Stabilizer.cpp's makeConstructor literal 65535 (the
// lowest-priority slot LLVM's ctor-ordering convention allows, so it runs
// last among static constructors, after any pre-existing ones the loader
// already ran... except those are re-routed through the runtime instead,
// which is the whole point of this sub-pass).
const ModuleCtorPriority = 65535

// MakeConstructor creates the internal-linkage void() constructor function
// and its single basic block (spec.md 4.6 "Create a single internal-linkage
// void-returning function"). The returned block is left open for the
// caller to append registration calls into before calling FinishConstructor.
func MakeConstructor(m *ir.Module, name string) (*ir.Function, *ir.Block) {
	ctor := ir.NewFunction(name, ir.Void, nil)
	ctor.Linkage = ir.InternalLinkage

	block := ir.NewBlock("")
	ctor.Blocks = []*ir.Block{block}

	m.AddFunction(ctor)
	return ctor, block
}

// EmitRegisterFunctionCall appends a stabilizer_register_function call for
// one code-randomized function's registration tuple (spec.md 4.5 Step H),
// with the stack-pad pointer already appended as its final argument by the
// caller (spec.md 4.6 step 2).
func EmitRegisterFunctionCall(block *ir.Block, runtime *Runtime, args []ir.Value) {
	block.Append(&ir.Call{Kind: ir.DirectCall, Callee: ir.Addr(runtime.RegisterFunction), Args: args})
}

// EmitRegisterConstructorCall registers one pre-existing module constructor
// with the runtime, so it runs after the loader has handed control to
// Stabilizer's own constructor (spec.md 4.6 step 2, rationale).
func EmitRegisterConstructorCall(block *ir.Block, runtime *Runtime, existing *ir.Function) {
	block.Append(&ir.Call{Kind: ir.DirectCall, Callee: ir.Addr(runtime.RegisterConstructor), Args: []ir.Value{ir.PointerCast(ir.Addr(existing), ir.BytePtr)}})
}

// EmitRegisterStackPadCall registers a stack pad on its own, used only when
// stack randomization is enabled without code randomization (spec.md 4.6
// step 3).
func EmitRegisterStackPadCall(block *ir.Block, runtime *Runtime, pad *ir.GlobalVariable) {
	block.Append(&ir.Call{Kind: ir.DirectCall, Callee: ir.Addr(runtime.RegisterStackPad), Args: []ir.Value{ir.PointerCast(ir.Addr(pad), ir.BytePtr)}})
}

// FinishConstructor terminates the constructor body with a void return
// (spec.md 4.6 step 4).
func FinishConstructor(block *ir.Block) {
	block.Append(&ir.Ret{})
}

// InstallConstructorTable replaces the module's constructor table with a
// single entry at ModuleCtorPriority pointing to ctor, preserving the
// former table's name via ir.Module.ReplaceConstructorTable (spec.md 4.6
// step 5).
func InstallConstructorTable(m *ir.Module, ctor *ir.Function) {
	table := &ir.GlobalCtorTable{
		Entries: []ir.CtorEntry{{Priority: ModuleCtorPriority, Func: ctor, Data: ir.NullPointer(ir.I8)}},
	}
	m.ReplaceConstructorTable(table)
}

// RenameMainIfPresent implements spec.md 4.6 step 6: the runtime supplies
// its own main, which eventually calls this one under its real name.
func RenameMainIfPresent(m *ir.Module) {
	if main := m.GetFunction("main"); main != nil {
		main.Name = "stabilizer_main"
	}
}
