package stabilizer

import (
	"testing"

	"github.com/stabilizerproj/gostabilize/ir"
)

// TestRandomizeStackBracketsEveryCall verifies P6: exactly one stack-save,
// one pre-call stack-restore (with an adjusted pointer), and one post-call
// stack-restore surround each call site.
func TestRandomizeStackBracketsEveryCall(t *testing.T) {
	m := newTestModule()

	callee := ir.NewFunction("helper", ir.Void, nil)
	callee.Linkage = ir.ExternalLinkage
	m.AddFunction(callee)

	f := ir.NewFunction("f", ir.Void, nil)
	block := ir.NewBlock("entry")
	call := &ir.Call{Kind: ir.DirectCall, Callee: ir.Addr(callee)}
	block.Append(call)
	block.Append(&ir.Ret{})
	f.Blocks = []*ir.Block{block}
	m.AddFunction(f)

	pad := NewStackPad(m, f)
	RandomizeStack(f, pad, 64)

	saves, preRestores, postRestores := 0, 0, 0
	var sawCall bool
	var savedPtr, adjustedPtr ir.Value

	for _, inst := range block.Instructions {
		switch i := inst.(type) {
		case *ir.StackSave:
			saves++
			savedPtr = i.Dest
		case *ir.Call:
			sawCall = true
		case *ir.StackRestore:
			if !sawCall {
				preRestores++
				adjustedPtr = i.Ptr
			} else {
				postRestores++
				if i.Ptr != savedPtr {
					t.Fatalf("post-call stack-restore should reinstall the saved pointer")
				}
			}
		}
	}

	if saves != 1 {
		t.Fatalf("expected exactly one stack-save, got %d", saves)
	}
	if preRestores != 1 {
		t.Fatalf("expected exactly one pre-call stack-restore, got %d", preRestores)
	}
	if postRestores != 1 {
		t.Fatalf("expected exactly one post-call stack-restore, got %d", postRestores)
	}
	if adjustedPtr == savedPtr {
		t.Fatalf("pre-call stack-restore should receive an adjusted pointer, not the raw saved one")
	}
	_ = call
}

func TestNewStackPadIsZeroInitializedInternalByte(t *testing.T) {
	m := newTestModule()
	f := ir.NewFunction("f", ir.Void, nil)
	m.AddFunction(f)

	pad := NewStackPad(m, f)

	if pad.Name != "f.stack_pad" {
		t.Fatalf("unexpected pad name %q", pad.Name)
	}
	if pad.Linkage != ir.InternalLinkage {
		t.Fatalf("stack pad must be internal linkage")
	}
	if !pad.Mutable {
		t.Fatalf("stack pad must be mutable")
	}
	init, ok := pad.Init.(*ir.IntConstant)
	if !ok || init.Value != 0 {
		t.Fatalf("stack pad must initialize to zero, got %v", pad.Init)
	}
}
