package ir

// Instruction is a typed operation with ordered operand uses (spec.md 3).
// Every use is an addressable slot: Operands returns pointers directly into
// the instruction's operand fields so a pass can retarget a single use in
// place without rebuilding the instruction, the same "operand is an
// addressable slot" idiom golang.org/x/tools/go/ssa's own
// Instruction.Operands method uses, generalizing chickadee's simpler
// Sources()/Destination() (ast/node.go), which only ever reads operands and
// never needs to rewrite one directly.
//
// *Phi's Operands panics: its incoming values are keyed by
// predecessor block, not by position, and are rewritten directly against
// its Srcs map (see stabilizer/code.go and spec.md 4.5 Step G).
type Instruction interface {
	ParentBlock() *Block
	setParentBlock(*Block)

	// Operands returns a pointer to every operand slot, in stable order.
	Operands() []*Value

	// Destination returns the register this instruction defines, or nil if
	// it defines none (stores, terminators, void calls).
	Destination() *Register
}

type instBase struct {
	parent *Block
}

func (b *instBase) ParentBlock() *Block         { return b.parent }
func (b *instBase) setParentBlock(blk *Block)   { b.parent = blk }
func (*instBase) Destination() *Register        { return nil }

// Terminator marks the control-flow instructions that may only appear as the
// last instruction of a block (spec.md 3).
type Terminator interface {
	Instruction
	isTerminator()
}

type termBase struct{ instBase }

func (termBase) isTerminator() {}

type BinOpKind string

const (
	Add = BinOpKind("add")
	Sub = BinOpKind("sub")
	Mul = BinOpKind("mul")
	And = BinOpKind("and")
	Or  = BinOpKind("or")
	Xor = BinOpKind("xor")
)

type BinOp struct {
	instBase
	Dest     *Register
	Kind     BinOpKind
	LHS, RHS Value
}

func (i *BinOp) Operands() []*Value      { return []*Value{&i.LHS, &i.RHS} }
func (i *BinOp) Destination() *Register  { return i.Dest }

type UnOpKind string

const (
	Neg = UnOpKind("neg")
	Not = UnOpKind("not")
)

type UnOp struct {
	instBase
	Dest *Register
	Kind UnOpKind
	Src  Value
}

func (i *UnOp) Operands() []*Value     { return []*Value{&i.Src} }
func (i *UnOp) Destination() *Register { return i.Dest }

// Load reads the value at Addr. Addr is frequently a relocation-table GEP
// slot after code randomization (spec.md 4.5 Step G) or a stack-pad global
// (spec.md 4.4).
type Load struct {
	instBase
	Dest *Register
	Ty   Type
	Addr Value
}

func (i *Load) Operands() []*Value     { return []*Value{&i.Addr} }
func (i *Load) Destination() *Register { return i.Dest }

type Store struct {
	instBase
	Addr Value
	Val  Value
}

func (i *Store) Operands() []*Value { return []*Value{&i.Addr, &i.Val} }

// GetElementPtrInst computes the address of a struct field or array element.
// Indices is a constant path from Base, matching the {0, i} pair spec.md 4.5
// Step G uses to address relocation table slot i.
type GetElementPtrInst struct {
	instBase
	Dest    *Register
	Ty      Type
	Base    Value
	Indices []int64
}

func (i *GetElementPtrInst) Operands() []*Value     { return []*Value{&i.Base} }
func (i *GetElementPtrInst) Destination() *Register { return i.Dest }

type CallKind string

const (
	DirectCall = CallKind("call")
	SysCall    = CallKind("syscall")
)

// Call may have a nil Dest for void calls (e.g. stabilizer_register_function
// invocations synthesized into the module constructor, spec.md 4.6).
type Call struct {
	instBase
	Dest   *Register
	Kind   CallKind
	Callee Value
	Args   []Value
}

func (i *Call) Operands() []*Value {
	ops := make([]*Value, 0, len(i.Args)+1)
	ops = append(ops, &i.Callee)
	for idx := range i.Args {
		ops = append(ops, &i.Args[idx])
	}
	return ops
}

func (i *Call) Destination() *Register { return i.Dest }

// ConvertKind enumerates the four int<->float conversion opcodes spec.md 4.5
// Step C names explicitly, plus FPTrunc (only extracted on PowerPC), plus
// the three integer/pointer casts spec.md 4.4's stack-pad arithmetic needs
// (ZExt, PtrToInt, IntToPtr) — none of these three are conversion
// instructions in Step C's sense and are never extracted by it.
type ConvertKind string

const (
	FPToSI   = ConvertKind("fptosi")
	FPToUI   = ConvertKind("fptoui")
	SIToFP   = ConvertKind("sitofp")
	UIToFP   = ConvertKind("uitofp")
	FPTrunc  = ConvertKind("fptrunc")
	ZExt     = ConvertKind("zext")
	PtrToInt = ConvertKind("ptrtoint")
	IntToPtr = ConvertKind("inttoptr")
)

type Convert struct {
	instBase
	Dest *Register
	Kind ConvertKind
	Src  Value
	To   Type
}

func (i *Convert) Operands() []*Value     { return []*Value{&i.Src} }
func (i *Convert) Destination() *Register { return i.Dest }

// StackSave/StackRestore are the two stack-pointer intrinsics spec.md 4.4
// brackets every call site with.
type StackSave struct {
	instBase
	Dest *Register
}

func (i *StackSave) Operands() []*Value     { return nil }
func (i *StackSave) Destination() *Register { return i.Dest }

type StackRestore struct {
	instBase
	Ptr Value
}

func (i *StackRestore) Operands() []*Value { return []*Value{&i.Ptr} }

// Jump is an unconditional branch; the sole terminator that may fall through
// implicitly is absent from this IR (every block ends in an explicit
// terminator, unlike chickadee's ast.Block which allows fallthrough).
type Jump struct {
	termBase
	Target *Block
}

func (i *Jump) Operands() []*Value { return nil }

type CondBr struct {
	termBase
	Cond        Value
	True, False *Block
}

func (i *CondBr) Operands() []*Value { return []*Value{&i.Cond} }

// Ret returns from the function. Val is nil for a void return.
type Ret struct {
	termBase
	Val Value
}

func (i *Ret) Operands() []*Value {
	if i.Val == nil {
		return nil
	}
	return []*Value{&i.Val}
}

// Phi is present only prior to, and consumed entirely by, the passes in this
// package; the transform never introduces new phis. Grounded on
// ast/phi.go's Srcs map keyed by predecessor block.
type Phi struct {
	instBase
	Dest *Register
	Srcs map[*Block]Value
}

func (i *Phi) Operands() []*Value {
	panic("phi operands must be rewritten through Srcs, not Operands")
}

func (i *Phi) Destination() *Register { return i.Dest }
