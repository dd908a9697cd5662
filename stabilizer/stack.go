package stabilizer

import "github.com/stabilizerproj/gostabilize/ir"

// stackAlignment is the fixed multiplier Stabilizer.cpp's randomizeStack
// applies to the one-byte pad, matching the ABI stack-alignment requirement
// on every architecture spec.md 4.4 targets.
const stackAlignment = 16

// NewStackPad creates F's mutable, zero-initialized, internal-linkage stack
// pad global (spec.md 4.4 step 1) and adds it to the module.
func NewStackPad(m *ir.Module, f *ir.Function) *ir.GlobalVariable {
	pad := &ir.GlobalVariable{
		Name:    f.Name + ".stack_pad",
		Ty:      ir.I8,
		Linkage: ir.InternalLinkage,
		Mutable: true,
		Init:    ir.NewInt(ir.I8, 0),
	}
	m.AddGlobal(pad)
	return pad
}

// RandomizeStack brackets every call site in f with a random stack-pointer
// adjustment drawn from pad, per spec.md 4.4 steps 2-4. pointerWidthBits
// picks the intptr width the pointer/int casts route through.
func RandomizeStack(f *ir.Function, pad *ir.GlobalVariable, pointerWidthBits int) {
	intptr := ir.IntPtrType(pointerWidthBits)

	for _, b := range f.Blocks {
		// Snapshot: RandomizeStack inserts instructions into b.Instructions as
		// it walks, so index-based iteration over a growing slice must bound
		// itself to the calls collected up front, exactly like
		// randomizeStack's own two-pass "collect calls, then rewrite" shape.
		var calls []*ir.Call
		for _, inst := range b.Instructions {
			if c, ok := inst.(*ir.Call); ok {
				calls = append(calls, c)
			}
		}

		for _, call := range calls {
			idx := b.IndexOf(call)
			if idx < 0 {
				continue
			}

			padByte := &ir.Load{Dest: ir.NewRegister("pad", ir.I8), Ty: ir.I8, Addr: ir.Addr(pad)}
			widePad := &ir.Convert{Dest: ir.NewRegister("wide_pad", intptr), Kind: ir.ZExt, Src: padByte.Dest, To: intptr}
			padSize := &ir.BinOp{Dest: ir.NewRegister("aligned_pad", intptr), Kind: ir.Mul, LHS: widePad.Dest, RHS: ir.NewInt(intptr, stackAlignment)}
			oldStack := &ir.StackSave{Dest: ir.NewRegister("old_stack", ir.BytePtr)}
			oldStackInt := &ir.Convert{Dest: ir.NewRegister("old_stack_int", intptr), Kind: ir.PtrToInt, Src: oldStack.Dest, To: intptr}
			newStackInt := &ir.BinOp{Dest: ir.NewRegister("new_stack_int", intptr), Kind: ir.Sub, LHS: oldStackInt.Dest, RHS: padSize.Dest}
			newStack := &ir.Convert{Dest: ir.NewRegister("new_stack", ir.BytePtr), Kind: ir.IntToPtr, Src: newStackInt.Dest, To: ir.BytePtr}
			restoreNew := &ir.StackRestore{Ptr: newStack.Dest}

			before := []ir.Instruction{padByte, widePad, padSize, oldStack, oldStackInt, newStackInt, newStack, restoreNew}
			for i, inst := range before {
				b.InsertBefore(idx+i, inst)
			}

			restoreOld := &ir.StackRestore{Ptr: oldStack.Dest}
			b.InsertAfter(idx+len(before), restoreOld)
		}
	}
}
