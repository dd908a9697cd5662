package ir

// Value is anything an instruction operand can refer to: a register defined
// by some instruction or function parameter, or a Constant. "global label"
// folds into Constant here, since in this IR a function or global
// variable's address is itself a constant (spec.md 3: "constants ... may
// recursively contain other constants").
type Value interface {
	isValue()
	Type() Type
	String() string
}

// Register is a locally SSA-defined value: either an instruction's
// destination or a function parameter. Def is nil for parameters.
type Register struct {
	Name string
	Ty   Type
	Def  Instruction
}

func (*Register) isValue() {}

func (r *Register) Type() Type { return r.Ty }

func (r *Register) String() string { return "%" + r.Name }

func NewRegister(name string, ty Type) *Register {
	return &Register{Name: name, Ty: ty}
}
