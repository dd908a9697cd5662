package diag

import (
	"bytes"
	"strings"
	"testing"
)

func TestWarnfAccumulatesAndPrints(t *testing.T) {
	var buf bytes.Buffer
	s := NewSink(&buf)

	s.Warnf("unable to handle intrinsic %s", "llvm.foo")
	s.Warnf("second warning")

	if len(s.Warnings()) != 2 {
		t.Fatalf("expected 2 accumulated warnings, got %d", len(s.Warnings()))
	}
	if s.Warnings()[0] != "unable to handle intrinsic llvm.foo" {
		t.Fatalf("unexpected first warning: %q", s.Warnings()[0])
	}
	if !strings.Contains(buf.String(), "warning: unable to handle intrinsic llvm.foo") {
		t.Fatalf("expected the warning to be printed immediately, got %q", buf.String())
	}
}

func TestNewSinkDefaultsWriter(t *testing.T) {
	s := NewSink(nil)
	if s.w == nil {
		t.Fatalf("NewSink(nil) should fall back to a non-nil writer")
	}
}

// Fatalf calls os.Exit and is not exercised here; its message-formatting
// half is identical to Warnf's and is covered above.
