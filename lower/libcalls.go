package lower

import "sync"

// libcalls maps an intrinsic's name to the external libcall that implements
// equivalent semantics (spec.md 4.1, GLOSSARY). Grounded on
// original_source/pass/LowerIntrinsics.cpp's IntrinsicLibcalls table and on
// the flat map-literal opcode-table idiom in
// NERVsystems-infernode/tools/godis/dis/opcode.go. Populated once,
// process-wide, on first use (spec.md 5: "the intrinsic->libcall table ...
// is process-wide and initialized on first use, idempotent initialization,
// no teardown").
var (
	libcallsOnce sync.Once
	libcalls     map[string]string
	alwaysInline map[string]struct{}
)

func initLibcalls() {
	libcalls = map[string]string{
		"llvm.memcpy.p0.p0.i64":  "memcpy",
		"llvm.memmove.p0.p0.i64": "memmove",
		"llvm.memset.p0.i64":     "memset",
		"llvm.sqrt.f64":          "sqrt",
		"llvm.sqrt.f32":          "sqrtf",
		"llvm.fabs.f64":          "fabs",
		"llvm.fabs.f32":          "fabsf",
		"llvm.floor.f64":         "floor",
		"llvm.ceil.f64":          "ceil",
		"llvm.trunc.f64":         "trunc",
		"llvm.pow.f64":           "pow",
		"llvm.exp.f64":           "exp",
		"llvm.log.f64":           "log",
		"llvm.round.f64":         "round",
		"llvm.copysign.f64":      "copysign",
	}

	// Always-inline intrinsics expand entirely during code generation and
	// leave no call site to redirect; LowerIntrinsics.cpp checks
	// isAlwaysInlined before ever consulting the libcall table.
	alwaysInline = map[string]struct{}{
		"llvm.expect.i1":         {},
		"llvm.assume":            {},
		"llvm.lifetime.start.p0": {},
		"llvm.lifetime.end.p0":   {},
		"llvm.dbg.value":         {},
		"llvm.dbg.declare":       {},
	}
}

// GetLibcall returns the libcall name for an intrinsic, or "" if none is
// known.
func GetLibcall(intrinsicName string) string {
	libcallsOnce.Do(initLibcalls)
	return libcalls[intrinsicName]
}

// IsAlwaysInlined reports whether the named intrinsic is expected to have
// been fully expanded by codegen and should never be looked up.
func IsAlwaysInlined(intrinsicName string) bool {
	libcallsOnce.Do(initLibcalls)
	_, ok := alwaysInline[intrinsicName]
	return ok
}
