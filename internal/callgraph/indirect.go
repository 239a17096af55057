package callgraph

import "sliceir/internal/ir"

// candidatesByType returns every address-taken function compatible with
// indirect call site cs, per spec §4.C.1's closing paragraph: not an
// intrinsic; variadic or matching arity; compatible return type; every
// (formal, actual) pair compatible. Grounded on
// CallGraph.cc::findCalleesByType.
func candidatesByType(addressTaken map[*ir.Function]bool, cs *ir.CallSite) []*ir.Function {
	var out []*ir.Function
	for fn := range addressTaken {
		if fn.Intrinsic {
			continue
		}
		if !fn.Variadic && len(fn.Params) != len(cs.ArgTypes) {
			continue
		}
		if !Compatible(fn.ReturnType, cs.ResultType) {
			continue
		}
		matched := true
		n := len(fn.Params)
		if len(cs.ArgTypes) < n {
			n = len(cs.ArgTypes)
		}
		for i := 0; i < n; i++ {
			if !Compatible(cs.ArgTypes[i], fn.Params[i]) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, fn)
		}
	}
	return out
}
