// Package stabilizer implements the Stabilizer Transform: the four
// cooperating sub-passes (Heap Randomization, Stack Randomization, Code
// Randomization, Module Constructor Synthesis) that continuously
// re-randomize a program's memory layout. Grounded end to end on
// original_source/pass/Stabilizer.cpp's StabilizerImpl::operator(), which
// this package's Run reproduces sequentially rather than through
// chickadee's parallelizable analyzer.Pass[T]/analyzer.Process machinery:
// spec.md 5 requires the transform to be single-threaded and strictly
// sequential, since sentinel placement and the constructor's emission order
// are both observable side effects of iteration order. See DESIGN.md for
// the full rationale.
package stabilizer

import (
	"github.com/stabilizerproj/gostabilize/ir"
	"github.com/stabilizerproj/gostabilize/platform"
)

// Config selects which of the three optional sub-passes run (spec.md 6).
// Module Constructor Synthesis and the final main-rename always run,
// regardless of Config, matching "all-false produces only the constructor
// rename of main."
type Config struct {
	Heap  bool
	Stack bool
	Code  bool
}

// Run performs the Stabilizer Transform on m in place, following the exact
// sequential ordering spec.md 5 mandates.
func Run(m *ir.Module, cfg Config) {
	if cfg.Heap {
		RandomizeHeap(m)
	}

	// Snapshot of locally-defined functions must happen before any new
	// function (sentinel, converter, constructor) is inserted, so those
	// synthesized functions are never themselves treated as randomizable
	// targets (spec.md 5).
	localFunctions := snapshotLocalFunctions(m)

	runtime := DeclareRuntimeFunctions(m)

	stackPads := map[*ir.Function]*ir.GlobalVariable{}
	if cfg.Stack {
		plat := platform.New(m.Target.ArchTriple, m.Target.PointerWidthBits)
		for _, f := range localFunctions {
			pad := NewStackPad(m, f)
			stackPads[f] = pad
			RandomizeStack(f, pad, plat.PointerWidthBits())
		}
	}

	oldCtors := m.ExistingConstructors()

	ctor, ctorBlock := MakeConstructor(m, "stabilizer.module_ctor")

	if cfg.Code {
		plat := platform.New(m.Target.ArchTriple, m.Target.PointerWidthBits)
		converters := NewFloatConverters(m)

		for _, f := range localFunctions {
			sentinel := Sentinel(m, f)
			args := RandomizeCode(m, f, sentinel, plat, converters)

			var pad ir.Value
			if p, ok := stackPads[f]; ok {
				pad = ir.Addr(p)
			} else {
				pad = ir.NullPointer(ir.I8)
			}
			args = append(args, pad)

			EmitRegisterFunctionCall(ctorBlock, runtime, args)
		}
	}

	for _, oldCtor := range oldCtors {
		if oldCtor == nil {
			continue
		}
		EmitRegisterConstructorCall(ctorBlock, runtime, oldCtor)
	}

	if cfg.Stack && !cfg.Code {
		for _, f := range localFunctions {
			EmitRegisterStackPadCall(ctorBlock, runtime, stackPads[f])
		}
	}

	FinishConstructor(ctorBlock)
	InstallConstructorTable(m, ctor)

	RenameMainIfPresent(m)
}

// snapshotLocalFunctions returns every function in m that is locally
// defined: not a declaration, not an intrinsic, and not the exception
// personality routine (spec.md 5, original_source/pass/Stabilizer.cpp's
// local_functions set construction).
func snapshotLocalFunctions(m *ir.Module) []*ir.Function {
	var out []*ir.Function
	for _, f := range m.Functions {
		if f.Intrinsic || f.IsDeclaration() || f.Name == ir.PersonalityRoutineName {
			continue
		}
		out = append(out, f)
	}
	return out
}
