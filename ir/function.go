package ir

// Linkage mirrors the small subset of LLVM linkage kinds the transform
// itself inspects or assigns (spec.md 4.5 Step B, 4.6, 4.7).
type Linkage string

const (
	ExternalLinkage  = Linkage("external")
	InternalLinkage  = Linkage("internal")
	LinkOnceODR      = Linkage("linkonce_odr")
	AppendingLinkage = Linkage("appending")
)

// FunctionAttr is a function attribute the transform reads or removes.
// StackProtect/StackProtectReq are stripped from every code-randomized
// function (spec.md 4.5 Step B); NonLazyBind is set on the three runtime
// declarations (spec.md 4.7).
type FunctionAttr string

const (
	StackProtect    = FunctionAttr("stack-protect")
	StackProtectReq = FunctionAttr("stack-protect-req")
	NonLazyBind     = FunctionAttr("non-lazy-bind")
)

// Function is a module-level function: either a declaration (no Blocks) or
// a local definition. Grounded on ast.FuncDefinition (Label, Parameters,
// ReturnType, Blocks) generalized from a source-language function to an
// already-typed IR function with no parser-facing syntax.
type Function struct {
	Name       string
	Params     []*Register
	ReturnType Type
	Blocks     []*Block

	Linkage   Linkage
	Intrinsic bool
	Align     int

	attrs map[FunctionAttr]struct{}
}

var _ GlobalValue = (*Function)(nil)

func NewFunction(name string, returnType Type, params []*Register) *Function {
	return &Function{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		Linkage:    ExternalLinkage,
		attrs:      map[FunctionAttr]struct{}{},
	}
}

func (f *Function) isValue() {}

func (f *Function) Type() Type {
	paramTypes := make([]Type, len(f.Params))
	for i, p := range f.Params {
		paramTypes[i] = p.Ty
	}
	return FunctionType{Return: f.ReturnType, Params: paramTypes}
}

func (f *Function) String() string { return "@" + f.Name }

func (f *Function) GlobalName() string { return f.Name }

func (f *Function) globalExcludedFromScan() bool {
	return f.Intrinsic || f.Name == PersonalityRoutineName
}

// IsDeclaration reports whether this function has no body (spec.md 3).
func (f *Function) IsDeclaration() bool { return len(f.Blocks) == 0 }

func (f *Function) HasAttr(attr FunctionAttr) bool {
	_, ok := f.attrs[attr]
	return ok
}

func (f *Function) AddAttr(attr FunctionAttr) {
	if f.attrs == nil {
		f.attrs = map[FunctionAttr]struct{}{}
	}
	f.attrs[attr] = struct{}{}
}

func (f *Function) RemoveAttr(attr FunctionAttr) {
	delete(f.attrs, attr)
}

// Block is a straight-line basic block: a linear instruction sequence whose
// last entry must be a Terminator (spec.md 3). Parents/Children are
// populated by the caller that builds the IR (the front end and CFG
// construction are out of scope, spec.md 1); the transform only reads them.
type Block struct {
	Label        string
	Instructions []Instruction
	Phis         map[string]*Phi

	Parents  []*Block
	Children []*Block
}

func NewBlock(label string) *Block {
	return &Block{Label: label}
}

// Append adds inst to the block and sets its parent pointer, matching
// ast.Instruction's Parent/SetParentBlock bookkeeping.
func (b *Block) Append(inst Instruction) {
	inst.setParentBlock(b)
	b.Instructions = append(b.Instructions, inst)
}

// InsertBefore inserts inst immediately before the instruction at index idx.
func (b *Block) InsertBefore(idx int, inst Instruction) {
	inst.setParentBlock(b)
	b.Instructions = append(b.Instructions, nil)
	copy(b.Instructions[idx+1:], b.Instructions[idx:])
	b.Instructions[idx] = inst
}

// InsertAfter inserts inst immediately after the instruction at index idx.
func (b *Block) InsertAfter(idx int, inst Instruction) {
	b.InsertBefore(idx+1, inst)
}

// IndexOf returns the position of inst in Instructions, or -1.
func (b *Block) IndexOf(inst Instruction) int {
	for i, in := range b.Instructions {
		if in == inst {
			return i
		}
	}
	return -1
}

// Terminator returns the block's terminating instruction. Every well-formed
// block produced by this package's builders has exactly one.
func (b *Block) Terminator() Terminator {
	if len(b.Instructions) == 0 {
		return nil
	}
	term, _ := b.Instructions[len(b.Instructions)-1].(Terminator)
	return term
}

// AppendToTerminator inserts inst immediately before the block's terminator.
// This is how spec.md 4.5 Step G's "insert at the terminator of the incoming
// block" is implemented for PHI-sourced loads.
func (b *Block) AppendToTerminator(inst Instruction) {
	idx := len(b.Instructions) - 1
	if idx < 0 {
		b.Append(inst)
		return
	}
	b.InsertBefore(idx, inst)
}
