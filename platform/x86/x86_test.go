package x86

import (
	"testing"

	"github.com/stabilizerproj/gostabilize/platform"
)

func TestNewPlatform(t *testing.T) {
	p := NewPlatform()
	if p.Architecture() != platform.X86_32 {
		t.Fatalf("expected X86_32, got %v", p.Architecture())
	}
	if p.PointerWidthBits() != 32 {
		t.Fatalf("expected 32-bit pointers, got %d", p.PointerWidthBits())
	}
	if p.IsDataPCRelative() {
		t.Fatalf("x86-32 should not be PC-relative")
	}
}
