package pipeline

import (
	"bytes"
	"testing"

	"github.com/stabilizerproj/gostabilize/diag"
	"github.com/stabilizerproj/gostabilize/ir"
)

func newTestModule() *ir.Module {
	return ir.NewModule(ir.TargetInfo{ArchTriple: "x86_64-unknown-linux-gnu", PointerWidthBits: 64})
}

func TestNewRegistryHasRequiredNames(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"lower-intrinsics", "stabilize"} {
		if _, err := r.Get(name); err != nil {
			t.Fatalf("expected %q to be registered: %v", name, err)
		}
	}
}

func TestGetUnregisteredNameErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("no-such-pass"); err == nil {
		t.Fatalf("expected an error for an unregistered pass name")
	}
}

func TestRunStabilizeInstallsConstructorTable(t *testing.T) {
	r := NewRegistry()
	m := newTestModule()
	sink := diag.NewSink(&bytes.Buffer{})

	if err := r.Run("stabilize", m, sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Ctors == nil || len(m.Ctors.Entries) != 1 {
		t.Fatalf("expected the stabilize pipeline to install a one-entry constructor table")
	}
}

func TestRunUnregisteredNameErrors(t *testing.T) {
	r := NewRegistry()
	m := newTestModule()
	sink := diag.NewSink(&bytes.Buffer{})

	if err := r.Run("no-such-pass", m, sink); err == nil {
		t.Fatalf("expected an error running an unregistered pass")
	}
}

func TestLowerIntrinsicsUsesSinkForWarnings(t *testing.T) {
	m := newTestModule()
	unknown := ir.NewFunction("llvm.some.unmapped.intrinsic", ir.Void, nil)
	unknown.Intrinsic = true
	m.AddFunction(unknown)

	var buf bytes.Buffer
	sink := diag.NewSink(&buf)
	LowerIntrinsics(m, sink)

	if len(sink.Warnings()) != 1 {
		t.Fatalf("expected exactly one warning routed through the sink, got %d", len(sink.Warnings()))
	}
}
