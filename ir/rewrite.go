package ir

// RewriteGlobal returns a constant equal to c but with every reference to
// old replaced by new, recursing through ConstantExpr the same way
// Globals/HasFloatLiteral do. It returns c unchanged (same pointer) when no
// rewrite was needed, so callers can cheaply detect "nothing changed".
func RewriteGlobal(c Constant, old, replacement GlobalValue) Constant {
	switch v := c.(type) {
	case *IntConstant, *FloatConstant:
		return c
	case *GlobalAddress:
		if v.Ref == old {
			return Addr(replacement)
		}
		return c
	case *ConstantExpr:
		changed := false
		rewritten := make([]Constant, len(v.Operands))
		for i, op := range v.Operands {
			r := RewriteGlobal(op, old, replacement)
			rewritten[i] = r
			if r != op {
				changed = true
			}
		}
		if !changed {
			return c
		}
		cp := *v
		cp.Operands = rewritten
		return &cp
	case *StructConstant:
		changed := false
		rewritten := make([]Constant, len(v.Fields))
		for i, op := range v.Fields {
			r := RewriteGlobal(op, old, replacement)
			rewritten[i] = r
			if r != op {
				changed = true
			}
		}
		if !changed {
			return c
		}
		cp := *v
		cp.Fields = rewritten
		return &cp
	default:
		panic("unhandled constant kind in RewriteGlobal")
	}
}

// ReplaceGlobalUses retargets every use of old to new across the whole
// module: instruction operands, phi incoming values, and global
// initializers. This stands in for LLVM's Value::replaceAllUsesWith, which
// this IR cannot offer directly since it keeps no def-use list; the
// alternative is to scan the closed set of places a Constant can appear,
// which spec.md 3 and 9 both already enumerate for the same reason.
func ReplaceGlobalUses(m *Module, old, replacement GlobalValue) {
	for _, f := range m.Functions {
		for _, b := range f.Blocks {
			for _, phi := range b.Phis {
				for pred, val := range phi.Srcs {
					if c, ok := val.(Constant); ok {
						phi.Srcs[pred] = RewriteGlobal(c, old, replacement)
					}
				}
			}
			for _, inst := range b.Instructions {
				if _, ok := inst.(*Phi); ok {
					continue
				}
				for _, slot := range inst.Operands() {
					if c, ok := (*slot).(Constant); ok {
						*slot = RewriteGlobal(c, old, replacement)
					}
				}
			}
		}
	}

	for _, g := range m.Globals {
		if g.Init != nil {
			g.Init = RewriteGlobal(g.Init, old, replacement)
		}
	}
}
