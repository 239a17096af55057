// Package locator maps a (file,line) or (file,function-name) query to the
// corresponding function, basic block, or call site. Grounded on
// Slicing.cc's findTargetByLine/findTargetByFunctionName/
// findCallInstByLine/findFunctionByLine. Module-name substring matching is
// deliberately loose, per spec §4.E.
package locator

import (
	"strings"

	"sliceir/internal/ir"
	"sliceir/internal/pathnorm"
	"sliceir/internal/registry"
)

// FindFunctionByName returns the first function named exactly funcName,
// or — tolerating a mangled/demangled mismatch — the first function whose
// name both contains funcName and looks like a mangled C++ symbol
// (contains "_Z"). file is accepted for symmetry with the original
// interface but, by design, not used to filter: ambiguity is resolved by
// taking the first match in module load order.
func FindFunctionByName(reg *registry.Registry, file, funcName string) *ir.Function {
	for _, entry := range reg.Modules {
		for _, fn := range entry.Module.Funcs {
			if fn.Name == funcName {
				return fn
			}
			if strings.Contains(fn.Name, funcName) && strings.Contains(fn.Name, "_Z") {
				return fn
			}
		}
	}
	return nil
}

// FindBlockByLine returns the first basic block containing an instruction
// whose debug location line matches line, restricted to modules whose
// path contains the file substring.
func FindBlockByLine(reg *registry.Registry, file string, line int) *ir.BasicBlock {
	for _, entry := range reg.Modules {
		if !strings.Contains(entry.Path, file) {
			continue
		}
		for _, fn := range entry.Module.Funcs {
			for _, bb := range fn.Blocks {
				for _, inst := range bb.Insts {
					if inst.Loc.Line == line {
						return bb
					}
				}
			}
		}
	}
	return nil
}

// FindCallSiteByLine returns the first call-like instruction whose debug
// location line matches line and whose normalized filename is a substring
// of the requested file path.
func FindCallSiteByLine(reg *registry.Registry, file string, line int) *ir.CallSite {
	for _, entry := range reg.Modules {
		if !strings.Contains(file, entry.Module.Stem) {
			continue
		}
		for _, fn := range entry.Module.Funcs {
			for _, bb := range fn.Blocks {
				for _, inst := range bb.Insts {
					cs := inst.Call
					if cs == nil {
						continue
					}
					if cs.Loc.Line == line && strings.Contains(file, pathnorm.Normalize(cs.Loc.File)) {
						return cs
					}
				}
			}
		}
	}
	return nil
}

// FindFunctionByLine returns the first function whose subprogram
// declaration line matches line, restricted to modules whose stem is
// contained in the requested file path.
func FindFunctionByLine(reg *registry.Registry, file string, line int) *ir.Function {
	for _, entry := range reg.Modules {
		if !strings.Contains(file, entry.Module.Stem) {
			continue
		}
		for _, fn := range entry.Module.Funcs {
			if fn.Subprogram == nil {
				continue
			}
			if fn.Subprogram.DeclLine == line && strings.Contains(file, pathnorm.Normalize(fn.Subprogram.File)) {
				return fn
			}
		}
	}
	return nil
}
