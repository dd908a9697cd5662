package platform

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		triple string
		want   Architecture
	}{
		{"x86_64-unknown-linux-gnu", X86_64},
		{"amd64-apple-darwin", X86_64},
		{"i386-pc-linux-gnu", X86_32},
		{"i686-pc-windows-msvc", X86_32},
		{"powerpc-unknown-linux-gnu", PowerPC},
		{"POWERPC64-unknown-linux-gnu", PowerPC},
		{"arm-unknown-linux-gnueabi", Unknown},
		{"", Unknown},
	}

	for _, tt := range tests {
		if got := Classify(tt.triple); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.triple, got, tt.want)
		}
	}
}

// TestUnknownIsTreatedAsPCRelative pins down the open question spec.md 9
// flags as an aggressive default: an unrecognized triple is classified
// Unknown but still answers IsDataPCRelative true, the same as x86-64.
func TestUnknownIsTreatedAsPCRelative(t *testing.T) {
	p := New("arm-unknown-linux-gnueabi", 32)
	if p.Architecture() != Unknown {
		t.Fatalf("expected Unknown architecture, got %v", p.Architecture())
	}
	if !p.IsDataPCRelative() {
		t.Fatalf("Unknown architecture should default to PC-relative addressing")
	}
}

func TestX86_32IsNotDataPCRelative(t *testing.T) {
	p := NewWithArchitecture(X86_32, 32)
	if p.IsDataPCRelative() {
		t.Fatalf("x86-32 should not be PC-relative")
	}
}

func TestPowerPCIsNotDataPCRelativeAndExtractsFPTrunc(t *testing.T) {
	p := NewWithArchitecture(PowerPC, 64)
	if p.IsDataPCRelative() {
		t.Fatalf("PowerPC should not be PC-relative")
	}
	if !p.ExtractsFPTrunc() {
		t.Fatalf("PowerPC should extract fptrunc per spec.md 4.5 Step C")
	}
}

func TestX86_64DoesNotExtractFPTrunc(t *testing.T) {
	p := NewWithArchitecture(X86_64, 64)
	if p.ExtractsFPTrunc() {
		t.Fatalf("only PowerPC extracts fptrunc")
	}
}

func TestPointerWidthBitsRoundTrips(t *testing.T) {
	p := New("x86_64-unknown-linux-gnu", 64)
	if p.PointerWidthBits() != 64 {
		t.Fatalf("expected pointer width 64, got %d", p.PointerWidthBits())
	}
}
