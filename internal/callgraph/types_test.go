package callgraph

import (
	"testing"

	"sliceir/internal/ir"
)

func ptrTo(elem *ir.Type) *ir.Type { return &ir.Type{Kind: ir.TypePointer, Elem: elem} }

func intType(bits int) *ir.Type { return &ir.Type{Kind: ir.TypeInt, IntBits: bits} }

func TestCompatiblePointerVoidStarEscapeHatch(t *testing.T) {
	voidPtr := ptrTo(intType(8))
	intPtr := ptrTo(intType(32))
	if !Compatible(voidPtr, intPtr) {
		t.Error("a caller-side char*/void* pointer should match any pointee")
	}
}

func TestCompatiblePointerRequiresCompatibleElem(t *testing.T) {
	intPtr := ptrTo(intType(32))
	otherIntPtr := ptrTo(intType(64))
	if !Compatible(intPtr, otherIntPtr) {
		t.Error("int/int pointees should always be compatible (integer rule)")
	}

	structPtr := ptrTo(&ir.Type{Kind: ir.TypeStruct, Name: "Foo"})
	otherStructPtr := ptrTo(&ir.Type{Kind: ir.TypeStruct, Name: "Bar"})
	if Compatible(structPtr, otherStructPtr) {
		t.Error("pointers to differently-named structs should not be compatible")
	}
}

func TestCompatibleArrayRecursesOnElement(t *testing.T) {
	a := &ir.Type{Kind: ir.TypeArray, Elem: intType(8)}
	b := &ir.Type{Kind: ir.TypeArray, Elem: intType(8)}
	c := &ir.Type{Kind: ir.TypeArray, Elem: &ir.Type{Kind: ir.TypeStruct, Name: "Foo"}}
	if !Compatible(a, b) {
		t.Error("arrays of the same element type should be compatible")
	}
	if Compatible(a, c) {
		t.Error("arrays of different element types should not be compatible")
	}
}

func TestCompatibleIntegerAlwaysMatchesInteger(t *testing.T) {
	if !Compatible(intType(8), intType(64)) {
		t.Error("any two integer types should be compatible")
	}
}

func TestCompatibleIntegerPointerRequiresMatchingAddrSpace(t *testing.T) {
	i := intType(64)
	p := &ir.Type{Kind: ir.TypePointer, Elem: intType(32), AddrSpace: 64}
	if !Compatible(i, p) {
		t.Error("int64 should be compatible with a pointer in a 64-bit address space")
	}
	p32 := &ir.Type{Kind: ir.TypePointer, Elem: intType(32), AddrSpace: 32}
	if Compatible(i, p32) {
		t.Error("int64 should not be compatible with a pointer in a 32-bit address space")
	}
}

func TestCompatibleStructLiteralVsNamed(t *testing.T) {
	lit1 := &ir.Type{Kind: ir.TypeStruct, IsLiteral: true, Fields: []*ir.Type{intType(32)}}
	lit2 := &ir.Type{Kind: ir.TypeStruct, IsLiteral: true, Fields: []*ir.Type{intType(32)}}
	named := &ir.Type{Kind: ir.TypeStruct, Name: "Foo"}

	if !Compatible(lit1, lit2) {
		t.Error("structurally identical literal structs should be compatible")
	}
	if Compatible(lit1, named) {
		t.Error("a literal struct should never be compatible with a named struct")
	}
}

func TestCompatibleFunctionRequiresVariadicAndParamMatch(t *testing.T) {
	ret := intType(32)
	f1 := &ir.Type{Kind: ir.TypeFunc, Elem: ret, Params: []*ir.Type{intType(32)}}
	f2 := &ir.Type{Kind: ir.TypeFunc, Elem: ret, Params: []*ir.Type{intType(64)}}
	f3 := &ir.Type{Kind: ir.TypeFunc, Elem: ret, Params: []*ir.Type{intType(32), intType(32)}}

	if !Compatible(f1, f2) {
		t.Error("functions with compatible (integer) params should be compatible")
	}
	if Compatible(f1, f3) {
		t.Error("functions with a different param count should not be compatible")
	}

	variadic := &ir.Type{Kind: ir.TypeFunc, Elem: ret, Variadic: true, Params: []*ir.Type{intType(32)}}
	nonVariadic := &ir.Type{Kind: ir.TypeFunc, Elem: ret, Params: []*ir.Type{intType(32), intType(32), intType(32)}}
	if Compatible(variadic, nonVariadic) {
		t.Error("a variadic function should only be compatible with another variadic function")
	}
}

func TestCompatibleFallsBackToRawID(t *testing.T) {
	a := &ir.Type{Kind: ir.TypeOther, ID: "x"}
	b := &ir.Type{Kind: ir.TypeOther, ID: "x"}
	c := &ir.Type{Kind: ir.TypeOther, ID: "y"}
	if !Compatible(a, b) {
		t.Error("equal raw type ids should be compatible")
	}
	if Compatible(a, c) {
		t.Error("different raw type ids should not be compatible")
	}
}
