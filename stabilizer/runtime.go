package stabilizer

import "github.com/stabilizerproj/gostabilize/ir"

// Runtime holds the three externally-linked functions the Stabilizer
// runtime library provides, declared once per module and referenced by
// the calls Module Constructor Synthesis emits (spec.md 4.6, 4.7). Grounded on
// original_source/pass/Stabilizer.cpp's declareRuntimeFunctions and its
// three package-level Function* fields (registerFunction,
// registerConstructor, registerStackPad).
type Runtime struct {
	RegisterFunction    *ir.Function
	RegisterConstructor *ir.Function
	RegisterStackPad    *ir.Function
}

// DeclareRuntimeFunctions adds the three runtime declarations to m and
// marks each NonLazyBind, matching declareRuntimeFunctions' addFnAttr calls.
// bytePtr is always ir.BytePtr (i8*); pointer types in this IR carry no
// width.
func DeclareRuntimeFunctions(m *ir.Module) *Runtime {
	bytePtr := ir.BytePtr

	registerFunction := ir.NewFunction("stabilizer_register_function", ir.Void, []*ir.Register{
		ir.NewRegister("codeBase", bytePtr),
		ir.NewRegister("codeLimit", bytePtr),
		ir.NewRegister("tableBase", bytePtr),
		ir.NewRegister("tableSize", ir.I32),
		ir.NewRegister("adjacent", ir.I1),
		ir.NewRegister("stackPad", bytePtr),
	})
	registerFunction.Linkage = ir.ExternalLinkage
	registerFunction.AddAttr(ir.NonLazyBind)
	m.AddFunction(registerFunction)

	registerConstructor := ir.NewFunction("stabilizer_register_constructor", ir.Void, []*ir.Register{
		ir.NewRegister("ctor", bytePtr),
	})
	registerConstructor.Linkage = ir.ExternalLinkage
	registerConstructor.AddAttr(ir.NonLazyBind)
	m.AddFunction(registerConstructor)

	registerStackPad := ir.NewFunction("stabilizer_register_stack_pad", ir.Void, []*ir.Register{
		ir.NewRegister("pad", bytePtr),
	})
	registerStackPad.Linkage = ir.ExternalLinkage
	registerStackPad.AddAttr(ir.NonLazyBind)
	m.AddFunction(registerStackPad)

	return &Runtime{
		RegisterFunction:    registerFunction,
		RegisterConstructor: registerConstructor,
		RegisterStackPad:    registerStackPad,
	}
}
