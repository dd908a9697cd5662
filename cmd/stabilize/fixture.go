package main

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/stabilizerproj/gostabilize/ir"
)

// Fixture is the on-disk shape testdata/*.yaml files use to describe a
// minimal module: enough to exercise every sub-pass without a front end,
// which spec.md 1 places out of scope. Declares lists external function
// names (typically the four allocator entry points heap randomization
// looks for); Functions lists locally-defined functions, each a single
// block that calls its named callees in sequence and returns.
type Fixture struct {
	Target struct {
		ArchTriple       string `yaml:"arch_triple"`
		PointerWidthBits int    `yaml:"pointer_width_bits"`
	} `yaml:"target"`
	Declares    []string          `yaml:"declares"`
	Functions   []FixtureFunction `yaml:"functions"`
	ModuleCtors []string          `yaml:"module_ctors"`
}

type FixtureFunction struct {
	Name  string   `yaml:"name"`
	Calls []string `yaml:"calls"`
}

func LoadFixture(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &fx, nil
}

// Build turns fx into an ir.Module.
func (fx *Fixture) Build() (*ir.Module, error) {
	target := ir.TargetInfo{
		ArchTriple:       fx.Target.ArchTriple,
		PointerWidthBits: fx.Target.PointerWidthBits,
	}
	if target.ArchTriple == "" {
		target.ArchTriple = "x86_64-unknown-linux-gnu"
	}
	if target.PointerWidthBits == 0 {
		target.PointerWidthBits = 64
	}
	m := ir.NewModule(target)

	byName := map[string]*ir.Function{}

	for _, name := range fx.Declares {
		f := ir.NewFunction(name, ir.BytePtr, []*ir.Register{ir.NewRegister("arg0", ir.BytePtr)})
		f.Linkage = ir.ExternalLinkage
		m.AddFunction(f)
		byName[name] = f
	}

	for _, ff := range fx.Functions {
		f := ir.NewFunction(ff.Name, ir.Void, nil)
		f.Linkage = ir.ExternalLinkage
		m.AddFunction(f)
		byName[ff.Name] = f
	}

	for _, ff := range fx.Functions {
		f := byName[ff.Name]
		block := ir.NewBlock("entry")
		for _, callee := range ff.Calls {
			target, ok := byName[callee]
			if !ok {
				return nil, fmt.Errorf("function %q calls undeclared %q", ff.Name, callee)
			}
			block.Append(&ir.Call{Kind: ir.DirectCall, Callee: ir.Addr(target)})
		}
		block.Append(&ir.Ret{})
		f.Blocks = []*ir.Block{block}
	}

	if len(fx.ModuleCtors) > 0 {
		table := &ir.GlobalCtorTable{Name: "llvm.global_ctors"}
		for _, name := range fx.ModuleCtors {
			ctorFn, ok := byName[name]
			if !ok {
				return nil, fmt.Errorf("module_ctors references undeclared function %q", name)
			}
			table.Entries = append(table.Entries, ir.CtorEntry{
				Priority: 65535,
				Func:     ctorFn,
				Data:     ir.NullPointer(ir.I8),
			})
		}
		m.Ctors = table
	}

	return m, nil
}
