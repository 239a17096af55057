package callgraph

import "sliceir/internal/ir"

// Compatible implements the type-compatibility rule of spec §4.C.1,
// grounded on CallGraph.cc::isCompatibleType.
func Compatible(t1, t2 *ir.Type) bool {
	if t1 == nil || t2 == nil {
		return t1 == t2
	}

	switch t1.Kind {
	case ir.TypePointer:
		if t2.Kind != ir.TypePointer {
			return false
		}
		// void*/char* escape hatch: an 8-bit-integer pointee on the
		// caller side matches any pointee.
		if t1.Elem != nil && t1.Elem.Kind == ir.TypeInt && t1.Elem.IntBits == 8 {
			return true
		}
		return Compatible(t1.Elem, t2.Elem)

	case ir.TypeArray:
		if t2.Kind != ir.TypeArray {
			return false
		}
		return Compatible(t1.Elem, t2.Elem)

	case ir.TypeInt:
		if t2.Kind == ir.TypePointer {
			return t1.IntBits == t2.AddrSpace
		}
		return t2.Kind == ir.TypeInt

	case ir.TypeStruct:
		if t2.Kind != ir.TypeStruct {
			return false
		}
		if t1.IsLiteral != t2.IsLiteral {
			return false
		}
		if t1.IsLiteral {
			if len(t1.Fields) != len(t2.Fields) {
				return false
			}
			for i := range t1.Fields {
				if !Compatible(t1.Fields[i], t2.Fields[i]) {
					return false
				}
			}
			return true
		}
		return t1.Name == t2.Name

	case ir.TypeFunc:
		if t2.Kind != ir.TypeFunc {
			return false
		}
		if !Compatible(t1.Elem, t2.Elem) {
			return false
		}
		if t1.Variadic {
			return t2.Variadic
		}
		if len(t1.Params) != len(t2.Params) {
			return false
		}
		for i := range t1.Params {
			if !Compatible(t1.Params[i], t2.Params[i]) {
				return false
			}
		}
		return true

	default:
		return t1.ID == t2.ID
	}
}
