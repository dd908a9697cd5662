package ir

import (
	"fmt"
	"strings"
)

// Type is the small closed set of type expressions the transform needs to
// reason about: enough to describe relocation table structs, converter
// function signatures, and runtime declaration signatures. It does not
// attempt to model a source language's type system.
type Type interface {
	isType()
	String() string
	Equals(Type) bool
}

type typeTag struct{}

func (typeTag) isType() {}

type VoidType struct{ typeTag }

func (VoidType) String() string { return "void" }

func (VoidType) Equals(other Type) bool {
	_, ok := other.(VoidType)
	return ok
}

// IntType is a plain integer type of the given bit width. Signedness only
// matters to callers picking a conversion opcode; the type itself carries no
// sign bit.
type IntType struct {
	typeTag
	Bits int
}

func (t IntType) String() string { return fmt.Sprintf("i%d", t.Bits) }

func (t IntType) Equals(other Type) bool {
	o, ok := other.(IntType)
	return ok && o.Bits == t.Bits
}

type FloatTypeKind int

const (
	Float32 FloatTypeKind = iota
	Float64
)

type FloatType struct {
	typeTag
	Kind FloatTypeKind
}

func (t FloatType) String() string {
	if t.Kind == Float32 {
		return "float"
	}
	return "double"
}

func (t FloatType) Equals(other Type) bool {
	o, ok := other.(FloatType)
	return ok && o.Kind == t.Kind
}

type PointerType struct {
	typeTag
	Elem Type
}

func (t PointerType) String() string { return t.Elem.String() + "*" }

func (t PointerType) Equals(other Type) bool {
	o, ok := other.(PointerType)
	return ok && o.Elem.Equals(t.Elem)
}

type ArrayType struct {
	typeTag
	Elem  Type
	Count int
}

func (t ArrayType) String() string {
	return fmt.Sprintf("[%d x %s]", t.Count, t.Elem.String())
}

func (t ArrayType) Equals(other Type) bool {
	o, ok := other.(ArrayType)
	return ok && o.Count == t.Count && o.Elem.Equals(t.Elem)
}

// StructType is always anonymous in this IR: named structs are not needed,
// only the ordered field-type list a relocation table struct needs.
type StructType struct {
	typeTag
	Fields []Type
}

func (t StructType) String() string {
	names := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		names[i] = f.String()
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func (t StructType) Equals(other Type) bool {
	o, ok := other.(StructType)
	if !ok || len(o.Fields) != len(t.Fields) {
		return false
	}
	for i, f := range t.Fields {
		if !f.Equals(o.Fields[i]) {
			return false
		}
	}
	return true
}

type FunctionType struct {
	typeTag
	Return Type
	Params []Type
}

func (t FunctionType) String() string {
	names := make([]string, len(t.Params))
	for i, p := range t.Params {
		names[i] = p.String()
	}
	return t.Return.String() + "(" + strings.Join(names, ", ") + ")"
}

func (t FunctionType) Equals(other Type) bool {
	o, ok := other.(FunctionType)
	if !ok || len(o.Params) != len(t.Params) || !o.Return.Equals(t.Return) {
		return false
	}
	for i, p := range t.Params {
		if !p.Equals(o.Params[i]) {
			return false
		}
	}
	return true
}

// Convenience singletons used throughout the passes and their tests.
var (
	I1  = IntType{Bits: 1}
	I8  = IntType{Bits: 8}
	I32 = IntType{Bits: 32}
	I64 = IntType{Bits: 64}

	F32 = FloatType{Kind: Float32}
	F64 = FloatType{Kind: Float64}

	Void = VoidType{}
)

// BytePtr is the "i8*" type used pervasively for the untyped
// code-base/limit/table pointers the runtime ABI (spec.md 4.7) traffics in.
var BytePtr = PointerType{Elem: I8}

// IntPtrType returns the platform's pointer-sized integer type, per spec.md
// 4.2.
func IntPtrType(pointerWidthBits int) IntType {
	return IntType{Bits: pointerWidthBits}
}
