package stabilizer

import (
	"fmt"
	"sort"

	"github.com/stabilizerproj/gostabilize/ir"
	"github.com/stabilizerproj/gostabilize/platform"
)

// SentinelAlignment is the byte alignment every sentinel function is given
// (spec.md 4.5 Step A), chosen to avoid mixing a randomized function's tail
// with the sentinel's own bytes in the same cache line.
const SentinelAlignment = 64

// Sentinel creates F's sentinel function, `stabilizer.dummy.F`, and splices
// it into the module immediately after f (spec.md 4.5 Step A).
func Sentinel(m *ir.Module, f *ir.Function) *ir.Function {
	sentinel := ir.NewFunction("stabilizer.dummy."+f.Name, ir.Void, nil)
	sentinel.Linkage = ir.InternalLinkage
	sentinel.Align = SentinelAlignment

	block := ir.NewBlock("")
	block.Append(&ir.Ret{})
	sentinel.Blocks = []*ir.Block{block}

	m.InsertFunctionAfter(f, sentinel)
	return sentinel
}

// NormalizeFunction strips the stack-protection attributes and demotes
// linkonce_odr linkage to external (spec.md 4.5 Step B).
func NormalizeFunction(f *ir.Function) {
	f.RemoveAttr(ir.StackProtect)
	f.RemoveAttr(ir.StackProtectReq)
	if f.Linkage == ir.LinkOnceODR {
		f.Linkage = ir.ExternalLinkage
	}
}

// FloatConverters memoizes the converter functions Step C synthesizes, one
// per (opcode, input type, output type) triple, shared by every function in
// the module (spec.md 4.5 Step C: "Converter functions are memoized per
// module."). Grounded on original_source/pass/Stabilizer.cpp's
// getFloatConversion, which does its own m.getFunction(name) lookup before
// creating a new one; this struct just keeps that lookup O(1).
type FloatConverters struct {
	m      *ir.Module
	byName map[string]*ir.Function
}

func NewFloatConverters(m *ir.Module) *FloatConverters {
	return &FloatConverters{m: m, byName: map[string]*ir.Function{}}
}

// Get returns the converter function for kind(in) -> out, creating it (with
// its single-instruction body) on first request. kind must be one of the
// four integer<->float conversions or FPTrunc; anything else is an
// invariant violation the original pass treats as fatal (getFloatConversion
// calls abort() on an unrecognized opcode).
func (c *FloatConverters) Get(kind ir.ConvertKind, in, out ir.Type) *ir.Function {
	switch kind {
	case ir.FPToSI, ir.FPToUI, ir.SIToFP, ir.UIToFP, ir.FPTrunc:
	default:
		panic(fmt.Sprintf("getFloatConversion: invalid opcode %s", kind))
	}

	name := fmt.Sprintf("%s.%s.%s", kind, in, out)
	if fn, ok := c.byName[name]; ok {
		return fn
	}

	param := ir.NewRegister("x", in)
	fn := ir.NewFunction(name, out, []*ir.Register{param})
	fn.Linkage = ir.InternalLinkage

	block := ir.NewBlock("")
	dest := ir.NewRegister("r", out)
	block.Append(&ir.Convert{Dest: dest, Kind: kind, Src: param, To: out})
	block.Append(&ir.Ret{Val: dest})
	fn.Blocks = []*ir.Block{block}

	c.m.AddFunction(fn)
	c.byName[name] = fn
	return fn
}

func isExtractedConversion(kind ir.ConvertKind, extractFPTrunc bool) bool {
	switch kind {
	case ir.FPToSI, ir.FPToUI, ir.SIToFP, ir.UIToFP:
		return true
	case ir.FPTrunc:
		return extractFPTrunc
	default:
		return false
	}
}

// ExtractFloatOperations implements spec.md 4.5 Step C. Every extracted
// integer<->float conversion instruction (and, on PowerPC, float-truncate)
// becomes a call to a memoized converter function; every remaining
// instruction operand that recursively contains a float literal is hoisted
// into a freshly created read-only global and replaced by a load.
func ExtractFloatOperations(m *ir.Module, f *ir.Function, plat platform.Platform, converters *FloatConverters) {
	extractFPTrunc := plat.ExtractsFPTrunc()
	literalCounter := 0

	for _, b := range f.Blocks {
		var toDelete []ir.Instruction

		for _, inst := range b.Instructions {
			if conv, ok := inst.(*ir.Convert); ok && isExtractedConversion(conv.Kind, extractFPTrunc) {
				fn := converters.Get(conv.Kind, conv.Src.Type(), conv.To)
				call := &ir.Call{
					Dest:   ir.NewRegister(conv.Dest.Name+".call", conv.To),
					Kind:   ir.DirectCall,
					Callee: ir.Addr(fn),
					Args:   []ir.Value{conv.Src},
				}
				idx := b.IndexOf(conv)
				b.InsertBefore(idx, call)
				replaceRegisterUses(f, conv.Dest, call.Dest)
				toDelete = append(toDelete, conv)
				continue
			}

			hoistFloatLiteralsInInstruction(m, f, &literalCounter, b, inst)
		}

		for _, inst := range toDelete {
			removeInstruction(b, inst)
		}

		for _, phi := range b.Phis {
			hoistFloatLiteralsInPhi(m, f, &literalCounter, phi)
		}
	}
}

func hoistFloatLiteralsInInstruction(m *ir.Module, f *ir.Function, counter *int, b *ir.Block, inst ir.Instruction) {
	if _, isPhi := inst.(*ir.Phi); isPhi {
		return
	}
	for _, slot := range inst.Operands() {
		c, ok := (*slot).(ir.Constant)
		if !ok || !c.HasFloatLiteral() {
			continue
		}
		g := newFloatLiteralGlobal(m, f, counter, c)
		idx := b.IndexOf(inst)
		load := &ir.Load{Dest: ir.NewRegister("fconst.load", c.Type()), Ty: c.Type(), Addr: ir.Addr(g)}
		b.InsertBefore(idx, load)
		*slot = load.Dest
	}
}

func hoistFloatLiteralsInPhi(m *ir.Module, f *ir.Function, counter *int, phi *ir.Phi) {
	for pred, val := range phi.Srcs {
		c, ok := val.(ir.Constant)
		if !ok || !c.HasFloatLiteral() {
			continue
		}
		g := newFloatLiteralGlobal(m, f, counter, c)
		load := &ir.Load{Dest: ir.NewRegister("fconst.load", c.Type()), Ty: c.Type(), Addr: ir.Addr(g)}
		pred.AppendToTerminator(load)
		phi.Srcs[pred] = load.Dest
	}
}

func newFloatLiteralGlobal(m *ir.Module, f *ir.Function, counter *int, c ir.Constant) *ir.GlobalVariable {
	*counter++
	g := &ir.GlobalVariable{
		Name:    fmt.Sprintf("%s.fconst.%d", f.Name, *counter),
		Ty:      c.Type(),
		Linkage: ir.InternalLinkage,
		Mutable: false,
		Init:    c,
	}
	m.AddGlobal(g)
	return g
}

// replaceRegisterUses retargets every use of old within f to replacement.
// Unlike ir.ReplaceGlobalUses (which rewrites references buried inside
// constant expressions), a Register can only ever appear as a direct
// operand or a direct phi source, so this needs no recursive constant walk.
func replaceRegisterUses(f *ir.Function, old *ir.Register, replacement ir.Value) {
	for _, b := range f.Blocks {
		for _, phi := range b.Phis {
			for pred, val := range phi.Srcs {
				if val == ir.Value(old) {
					phi.Srcs[pred] = replacement
				}
			}
		}
		for _, inst := range b.Instructions {
			if _, ok := inst.(*ir.Phi); ok {
				continue
			}
			for _, slot := range inst.Operands() {
				if *slot == ir.Value(old) {
					*slot = replacement
				}
			}
		}
	}
}

func removeInstruction(b *ir.Block, inst ir.Instruction) {
	idx := b.IndexOf(inst)
	if idx < 0 {
		return
	}
	b.Instructions = append(b.Instructions[:idx], b.Instructions[idx+1:]...)
}

// useSite identifies where a collected PC-relative constant is referenced:
// either a direct operand slot on an ordinary instruction, or an incoming
// value on a phi (in which case the rewrite must land on pred's terminator,
// never between phis, per spec.md 4.5 Step D and Step G).
type useSite struct {
	slot *ir.Value
	phi  *ir.Phi
	pred *ir.Block
}

// pcRelativeKey identifies a PC-relative constant structurally rather than
// by Go pointer/interface identity: ir.Addr never interns, so two
// references to the same global (e.g. RandomizeStack minting one
// *GlobalAddress per call site, or ReplaceGlobalUses minting one per
// redirected call) are distinct objects that must still collapse to a
// single relocation table entry (spec.md 4.5 Step E, property P5). Every
// PC-relative use collectPCRelativeUses sees pre-table-construction is a
// bare address-of a global, so keying on the referenced GlobalValue is
// sufficient; anything else falls back to identity.
func pcRelativeKey(c ir.Constant) any {
	if addr, ok := c.(*ir.GlobalAddress); ok {
		return addr.Ref
	}
	return c
}

// collectPCRelativeUses implements spec.md 4.5 Step D. It returns the
// referenced constants in first-seen order (so relocation table field order
// is deterministic) alongside every use site for each one, deduplicated by
// pcRelativeKey rather than by the wrapper constant's identity.
func collectPCRelativeUses(f *ir.Function) ([]ir.Constant, map[ir.Constant][]useSite) {
	var order []ir.Constant
	canonical := map[any]ir.Constant{}
	uses := map[ir.Constant][]useSite{}

	record := func(c ir.Constant, site useSite) {
		key := pcRelativeKey(c)
		rep, ok := canonical[key]
		if !ok {
			rep = c
			canonical[key] = rep
			order = append(order, rep)
		}
		uses[rep] = append(uses[rep], site)
	}

	for _, b := range f.Blocks {
		for _, phi := range sortedPhis(b) {
			for _, pred := range phiPredOrder(f, phi) {
				val := phi.Srcs[pred]
				if c, ok := val.(ir.Constant); ok && len(c.Globals()) > 0 {
					record(c, useSite{phi: phi, pred: pred})
				}
			}
		}
		for _, inst := range b.Instructions {
			for _, slot := range inst.Operands() {
				if c, ok := (*slot).(ir.Constant); ok && len(c.Globals()) > 0 {
					record(c, useSite{slot: slot})
				}
			}
		}
	}

	return order, uses
}

// sortedPhis returns b's phis in a deterministic order. ir.Block.Phis is a
// map keyed by destination register name, so iterating it directly (as Go
// maps randomize order) would make relocation table field order and
// indirect.N register numbering vary run to run for any function with 2+
// phis.
func sortedPhis(b *ir.Block) []*ir.Phi {
	names := make([]string, 0, len(b.Phis))
	for name := range b.Phis {
		names = append(names, name)
	}
	sort.Strings(names)
	phis := make([]*ir.Phi, len(names))
	for i, name := range names {
		phis[i] = b.Phis[name]
	}
	return phis
}

// phiPredOrder returns phi's predecessor blocks in f.Blocks order. ir.Phi.Srcs
// is a map keyed by predecessor block, so scanning it directly would make
// first-seen order of a phi's constant-valued predecessors non-deterministic.
func phiPredOrder(f *ir.Function, phi *ir.Phi) []*ir.Block {
	preds := make([]*ir.Block, 0, len(phi.Srcs))
	for _, b := range f.Blocks {
		if _, ok := phi.Srcs[b]; ok {
			preds = append(preds, b)
		}
	}
	return preds
}

// RandomizeCode performs the whole of spec.md 4.5 on f, given its sentinel
// (already created via Sentinel) and the module's shared float-converter
// cache. It returns the five-value argument prefix spec.md 4.5 Step H and
// 4.6 pass to stabilizer_register_function (everything but the trailing
// stack-pad argument, which the caller appends per spec.md 5).
func RandomizeCode(m *ir.Module, f *ir.Function, sentinel *ir.Function, plat platform.Platform, converters *FloatConverters) []ir.Value {
	NormalizeFunction(f)
	ExtractFloatOperations(m, f, plat, converters)

	order, uses := collectPCRelativeUses(f)

	if len(order) == 0 {
		return []ir.Value{
			ir.PointerCast(ir.Addr(f), ir.BytePtr),
			ir.PointerCast(ir.Addr(sentinel), ir.BytePtr),
			ir.NullPointer(ir.I8),
			ir.NewInt(ir.I32, 0),
			ir.NewInt(ir.I1, 0),
		}
	}

	fieldTypes := make([]ir.Type, len(order))
	for i, c := range order {
		fieldTypes[i] = c.Type()
	}
	tableType := ir.StructType{Fields: fieldTypes}

	table := &ir.GlobalVariable{
		Name:    f.Name + ".relocation_table",
		Ty:      tableType,
		Linkage: ir.InternalLinkage,
		Mutable: true,
		Init:    ir.NewStruct(tableType, order),
	}
	m.AddGlobal(table)

	// On PC-relative-data platforms the table referenced by the relocation
	// rewrites (Step G) is not the global itself but the sentinel, cast to
	// the table's pointer type: the sentinel is emitted immediately after F,
	// so the two share one PC-relative addressing window (spec.md 4.5 Step
	// F, original_source/pass/Stabilizer.cpp's actualRelocationTable).
	var actualTable ir.Constant = ir.Addr(table)
	if plat.IsDataPCRelative() {
		actualTable = ir.PointerCast(ir.Addr(sentinel), ir.PointerType{Elem: tableType})
	}

	for i, c := range order {
		slot := ir.GetElementPtr(actualTable, tableType, i)
		for _, site := range uses[c] {
			load := &ir.Load{Dest: ir.NewRegister(fmt.Sprintf("indirect.%d", i), c.Type()), Ty: c.Type(), Addr: slot}

			switch {
			case site.slot != nil:
				insertBeforeOwningInstruction(f, site.slot, load)
				*site.slot = load.Dest
			case site.phi != nil:
				site.pred.AppendToTerminator(load)
				site.phi.Srcs[site.pred] = load.Dest
			}
		}
	}

	return []ir.Value{
		ir.PointerCast(ir.Addr(f), ir.BytePtr),
		ir.PointerCast(ir.Addr(sentinel), ir.BytePtr),
		ir.PointerCast(ir.Addr(table), ir.BytePtr),
		ir.IntegerCast(ir.SizeOf(tableType), ir.I32),
		boolConst(plat.IsDataPCRelative()),
	}
}

func boolConst(b bool) *ir.IntConstant {
	if b {
		return ir.NewInt(ir.I1, 1)
	}
	return ir.NewInt(ir.I1, 0)
}

// insertBeforeOwningInstruction finds the instruction that owns slot and
// inserts load immediately before it. Spec.md 7's fatal-error clause (a):
// "a recorded use whose owning instruction is not an ordinary instruction"
// can only happen if collectPCRelativeUses or the caller mis-happens to
// synthesize a use site with no owner, since every non-phi use comes from
// walking a real instruction's Operands() in the first place; this is
// therefore an invariant check, not a reachable runtime condition.
func insertBeforeOwningInstruction(f *ir.Function, slot *ir.Value, load *ir.Load) {
	for _, b := range f.Blocks {
		for _, inst := range b.Instructions {
			if _, ok := inst.(*ir.Phi); ok {
				continue
			}
			for _, s := range inst.Operands() {
				if s == slot {
					idx := b.IndexOf(inst)
					b.InsertBefore(idx, load)
					return
				}
			}
		}
	}
	panic("insertBeforeOwningInstruction: recorded use has no owning instruction")
}
