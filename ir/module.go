package ir

// TargetInfo is the module's target-architecture descriptor and pointer-
// width data layout (spec.md 3). ArchTriple is queried, never parsed by
// this package; platform.Classify (platform/platform.go) owns the
// triple-substring matching rules spec.md 4.2 and
// original_source/pass/Stabilizer.cpp's getPlatform describe.
type TargetInfo struct {
	ArchTriple       string
	PointerWidthBits int // 32 or 64
}

// GlobalVariable is a typed, named, linked global with an initial-value
// constant (spec.md 3). Mutable distinguishes read-only globals (the
// synthesized float-literal globals of spec.md 4.5 Step C) from the mutable
// relocation tables and stack pads spec.md 4.4/4.5 create.
type GlobalVariable struct {
	Name     string
	Ty       Type
	Linkage  Linkage
	Mutable  bool
	Init     Constant
}

var _ GlobalValue = (*GlobalVariable)(nil)

func (g *GlobalVariable) isValue() {}

func (g *GlobalVariable) Type() Type { return g.Ty }

func (g *GlobalVariable) String() string { return "@" + g.Name }

func (g *GlobalVariable) GlobalName() string { return g.Name }

func (*GlobalVariable) globalExcludedFromScan() bool { return false }

// CtorEntry pairs a priority with a constructor function pointer and an
// opaque data pointer, mirroring the {i32, ptr, ptr} entry shape
// original_source/pass/Stabilizer.cpp's makeConstructor builds.
type CtorEntry struct {
	Priority uint32
	Func     *Function
	Data     Constant // usually a typed null pointer
}

// GlobalCtorTable is the module's llvm.global_ctors-equivalent global: an
// array of CtorEntry, run by the platform loader before main (spec.md 3, 9).
type GlobalCtorTable struct {
	Name    string
	Entries []CtorEntry
}

// Module owns every global, function, the target descriptor, and (at most
// one) constructor table (spec.md 3). Grounded on ast.FuncDefinition's
// enclosing role in chickadee, generalized from "the compilation unit for
// one source file" to "the compilation unit an IR-to-IR pass rewrites in
// place".
type Module struct {
	Target    TargetInfo
	Functions []*Function
	Globals   []*GlobalVariable
	Ctors     *GlobalCtorTable
}

func NewModule(target TargetInfo) *Module {
	return &Module{Target: target}
}

func (m *Module) AddFunction(f *Function) { m.Functions = append(m.Functions, f) }

func (m *Module) AddGlobal(g *GlobalVariable) { m.Globals = append(m.Globals, g) }

// InsertFunctionAfter splices next into the function list immediately after
// existing, without disturbing any other entry's relative order. This is
// the operation spec.md 4.5 Step A and 5 depend on for sentinel placement:
// callers iterating Functions by index must re-read len(m.Functions) after
// calling this, since it grows the slice out from under an in-progress scan.
func (m *Module) InsertFunctionAfter(existing, next *Function) {
	idx := m.functionIndex(existing)
	if idx < 0 {
		panic("InsertFunctionAfter: existing function not found in module")
	}
	m.Functions = append(m.Functions, nil)
	copy(m.Functions[idx+2:], m.Functions[idx+1:])
	m.Functions[idx+1] = next
}

func (m *Module) functionIndex(f *Function) int {
	for i, fn := range m.Functions {
		if fn == f {
			return i
		}
	}
	return -1
}

// GetFunction returns the module's function with the given name, or nil.
func (m *Module) GetFunction(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// DeleteFunctions removes every function in dead from the module. Spec.md
// 4.1 requires that deletion happen only after the full scan that decided
// what to delete completes, so callers accumulate dead first and call this
// once (see lower/lower.go).
func (m *Module) DeleteFunctions(dead map[*Function]struct{}) {
	if len(dead) == 0 {
		return
	}
	kept := m.Functions[:0]
	for _, f := range m.Functions {
		if _, gone := dead[f]; !gone {
			kept = append(kept, f)
		}
	}
	m.Functions = kept
}

// ExistingConstructors returns the function pointers already registered in
// the module's constructor table, tolerating a missing or empty table
// (original_source/pass/Stabilizer.cpp's getConstructors does the same).
func (m *Module) ExistingConstructors() []*Function {
	if m.Ctors == nil {
		return nil
	}
	out := make([]*Function, 0, len(m.Ctors.Entries))
	for _, e := range m.Ctors.Entries {
		out = append(out, e.Func)
	}
	return out
}

// ReplaceConstructorTable installs table as the module's sole constructor
// table, taking the former table's name if one existed (spec.md 3 invariant:
// "the module has exactly one synthesized constructor entry").
func (m *Module) ReplaceConstructorTable(table *GlobalCtorTable) {
	if m.Ctors != nil && table.Name == "" {
		table.Name = m.Ctors.Name
	}
	m.Ctors = table
}
