// Package lower implements Intrinsic Lowering (spec.md 4.1): rewriting
// every intrinsic call to a direct call against an externally-declared
// libcall of the same signature. Grounded line for line on
// original_source/pass/LowerIntrinsics.cpp's lowerInstrinsicsPass.
package lower

import "github.com/stabilizerproj/gostabilize/ir"

// Run scans every function in m. A function that is itself an intrinsic and
// is not always-inlined is redirected to an externally-declared libcall
// named by the libcall table, with the intrinsic's own signature (creating
// the declaration if the module does not already have one) and
// marked for deletion. Deletion happens only after the scan finishes, so a
// function is never both a rewrite target and read mid-scan.
//
// warnf receives one line per intrinsic this pass has no libcall mapping
// for; it is never nil in production use (see diag.Sink.Warnf) but a caller
// may pass a no-op for tests that don't care.
func Run(m *ir.Module, warnf func(format string, args ...interface{})) {
	dead := map[*ir.Function]struct{}{}

	for _, f := range m.Functions {
		if !f.Intrinsic || IsAlwaysInlined(f.Name) {
			continue
		}

		libcall := GetLibcall(f.Name)
		if libcall == "" {
			warnf("unable to handle intrinsic %s", f.Name)
			continue
		}

		extern := m.GetFunction(libcall)
		if extern == nil {
			extern = ir.NewFunction(libcall, f.ReturnType, clonedParams(f.Params))
			extern.Linkage = ir.ExternalLinkage
			m.AddFunction(extern)
		}

		ir.ReplaceGlobalUses(m, f, extern)
		dead[f] = struct{}{}
	}

	m.DeleteFunctions(dead)
}

// clonedParams builds a fresh parameter register list for the synthesized
// external declaration so it doesn't alias the vanishing intrinsic's own
// registers.
func clonedParams(params []*ir.Register) []*ir.Register {
	out := make([]*ir.Register, len(params))
	for i, p := range params {
		out[i] = ir.NewRegister(p.Name, p.Ty)
	}
	return out
}
