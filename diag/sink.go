// Package diag is a minimal diagnostic sink for the two pass-level
// diagnostics spec.md 7 defines: a warning that lets the pass continue
// (an intrinsic with no libcall mapping), and a fatal error that aborts the
// process (an invariant violation). Grounded on the *pattern* of
// chickadee's parseutil.Emitter (accumulate, ask HasErrors, report) rather
// than on the library itself: Emitter.Emit takes a source Location as its
// first argument, and nothing in this IR carries one (there is no parser
// stage in this pipeline; spec.md 1 puts the front end out of scope). See
// DESIGN.md for the full rationale.
package diag

import (
	"fmt"
	"io"
	"os"
)

// Sink collects warnings and prints them immediately, matching
// original_source/pass/LowerIntrinsics.cpp's "errs() << warning ..." — one
// line, no batching, no source location.
type Sink struct {
	w        io.Writer
	warnings []string
}

func NewSink(w io.Writer) *Sink {
	if w == nil {
		w = os.Stderr
	}
	return &Sink{w: w}
}

// Warnf records and immediately prints a warning. The pass continues.
func (s *Sink) Warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	s.warnings = append(s.warnings, msg)
	fmt.Fprintf(s.w, "warning: %s\n", msg)
}

func (s *Sink) Warnings() []string { return s.warnings }

// Fatalf prints the diagnostic and terminates the process, matching
// spec.md 7's "Fatal errors print a diagnostic then terminate" — an
// invariant violation is a programmer error or a malformed input module,
// neither of which this pass can meaningfully repair.
func (s *Sink) Fatalf(format string, args ...interface{}) {
	fmt.Fprintf(s.w, "fatal: %s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
