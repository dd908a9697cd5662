package stabilizer

import "github.com/stabilizerproj/gostabilize/ir"

// heapTargets is the fixed set of allocator entry points spec.md 4.3
// redirects, grounded on original_source/pass/Stabilizer.cpp's
// randomizeHeap.
var heapTargets = []string{"malloc", "calloc", "realloc", "free"}

// RandomizeHeap redirects every call to malloc/calloc/realloc/free to a
// stabilizer_-prefixed external declaration of the same signature, for
// whichever of the four the module actually declares. The original
// declaration is left in the module, unused but present, matching
// randomizeHeap exactly: nothing about heap randomization deletes anything.
func RandomizeHeap(m *ir.Module) {
	for _, name := range heapTargets {
		orig := m.GetFunction(name)
		if orig == nil {
			continue
		}

		redirect := ir.NewFunction("stabilizer_"+name, orig.ReturnType, clonedParams(orig.Params))
		redirect.Linkage = ir.ExternalLinkage
		m.AddFunction(redirect)

		ir.ReplaceGlobalUses(m, orig, redirect)
	}
}

func clonedParams(params []*ir.Register) []*ir.Register {
	out := make([]*ir.Register, len(params))
	for i, p := range params {
		out[i] = ir.NewRegister(p.Name, p.Ty)
	}
	return out
}
