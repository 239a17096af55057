// Package registry holds the process-wide state every analysis phase
// reads and grows: the set of loaded modules, the symbol tables built from
// them, and the call graph under construction. A Registry is constructed
// once by internal/loader and passed by pointer to every later phase; it
// is never a package-level global (see DESIGN.md's design-notes entry).
package registry

import "sliceir/internal/ir"

// ModuleEntry pairs a parsed Module with its input path, preserving load
// order (the fixpoint sweeps iterate modules in this order for
// reproducible convergence).
type ModuleEntry struct {
	Module *ir.Module
	Path   string
}

// Registry is the shared state described in spec §3.
type Registry struct {
	Modules    []ModuleEntry
	ModuleMaps map[*ir.Module]string

	Gobjs map[string]*ir.Global
	// Funcs holds only externally-linked *definitions*, keyed by their
	// bare (post __sys_ rewrite) name, preferring a definition over a
	// declaration when the same external symbol appears in more than one
	// module. This mirrors doBasicInitialization in the original: a
	// function's own internal linkage already disambiguates it uniquely
	// within its module, so internal-linkage symbols are resolved via
	// ModuleFuncs instead of this map.
	Funcs map[string]*ir.Function
	// ModuleFuncs indexes every function (both linkages) by module stem
	// then by its plain IR name, used to resolve a direct call's callee
	// within its own translation unit when Funcs has no entry for it.
	ModuleFuncs map[string]map[string]*ir.Function

	AddressTakenFuncs map[*ir.Function]bool

	// FuncPtrs maps a structural "cell" id (struct-field path, argument
	// slot, global variable name, ...) to the set of functions that may
	// flow through it. Populated by internal/fnptr and, in the
	// assignment-based call-graph mode, by internal/callgraph.
	FuncPtrs map[string]map[*ir.Function]bool

	Callees map[*ir.CallSite]map[*ir.Function]bool
	Callers map[*ir.Function]map[*ir.CallSite]bool

	IndirectCallInsts []*ir.CallSite
}

// New returns an empty Registry ready for internal/loader to populate.
func New() *Registry {
	return &Registry{
		ModuleMaps:        make(map[*ir.Module]string),
		Gobjs:             make(map[string]*ir.Global),
		Funcs:             make(map[string]*ir.Function),
		ModuleFuncs:       make(map[string]map[string]*ir.Function),
		AddressTakenFuncs: make(map[*ir.Function]bool),
		FuncPtrs:          make(map[string]map[*ir.Function]bool),
		Callees:           make(map[*ir.CallSite]map[*ir.Function]bool),
		Callers:           make(map[*ir.Function]map[*ir.CallSite]bool),
	}
}

// ScopeName computes the canonical symbol identity for a module-scope
// symbol per spec §3: external linkage uses the bare name; internal
// linkage is disambiguated by module stem. The "__sys_<x>" rewrite to
// "sys_<x>" is applied unconditionally, matching CallGraph.cc's
// getScopeName.
func ScopeName(moduleStem, name, linkage string) string {
	if rewritten, ok := sysRewrite(name); ok {
		name = rewritten
	}
	if linkage == "internal" {
		return "_" + moduleStem + "." + name
	}
	return name
}

func sysRewrite(name string) (string, bool) {
	const prefix = "__sys_"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return "sys_" + name[len(prefix):], true
	}
	return "", false
}

// AddFuncPtr records that fn may flow through cell id, returning whether
// the set actually grew (used to drive fixpoint "changed" flags).
func (r *Registry) AddFuncPtr(id string, fn *ir.Function) bool {
	set, ok := r.FuncPtrs[id]
	if !ok {
		set = make(map[*ir.Function]bool)
		r.FuncPtrs[id] = set
	}
	if set[fn] {
		return false
	}
	set[fn] = true
	return true
}

// AddCallee records fn as a resolved callee of site, returning whether the
// set actually grew.
func (r *Registry) AddCallee(site *ir.CallSite, fn *ir.Function) bool {
	set, ok := r.Callees[site]
	if !ok {
		set = make(map[*ir.Function]bool)
		r.Callees[site] = set
	}
	if set[fn] {
		return false
	}
	set[fn] = true
	return true
}

// Finalize builds Callers as the inverse of Callees, skipping debug-info
// intrinsic calls, per spec invariant 1 and CallGraph.cc::doFinalization.
func (r *Registry) Finalize() {
	r.Callers = make(map[*ir.Function]map[*ir.CallSite]bool)
	for site, callees := range r.Callees {
		if site.DbgIntrinsic {
			continue
		}
		for fn := range callees {
			set, ok := r.Callers[fn]
			if !ok {
				set = make(map[*ir.CallSite]bool)
				r.Callers[fn] = set
			}
			set[site] = true
		}
	}
}

// ResolveDirect resolves a direct call's callee name to its definition.
// It mirrors CallGraphPass::getFuncDef: consult the cross-module
// external-definition map first, since a definition there always outranks
// a mere declaration sitting in the caller's own module (the normal
// per-translation-unit shape: a module calling an externally-defined
// function only ever holds its declaration). Only when no external
// definition exists anywhere does it fall back to the caller's own module
// index, which is the sole place an internal-linkage callee can be found.
// If neither holds a match, nil is returned and the caller should fall
// back to treating the reference as unresolved.
func (r *Registry) ResolveDirect(callerModuleStem, name string) *ir.Function {
	if fn, ok := r.Funcs[name]; ok {
		return fn
	}
	if mf, ok := r.ModuleFuncs[callerModuleStem]; ok {
		if fn, ok := mf[name]; ok {
			return fn
		}
	}
	return nil
}

// FindByName looks up a function by its plain symbol name, used by the
// forward-slicing stub seeds (LLVMFuzzerInitialize and friends). Checks every module's
// local index first (covers internal linkage) before the external
// definition map.
func (r *Registry) FindByName(name string) *ir.Function {
	for _, entry := range r.Modules {
		if mf, ok := r.ModuleFuncs[entry.Module.Stem]; ok {
			if fn, ok := mf[name]; ok {
				return fn
			}
		}
	}
	return r.Funcs[name]
}

// AllFuncNames returns the name of every function across every loaded
// module that carries a debug subprogram, internal linkage included, used
// to build fullFunc for the blacklist emission. Mirrors
// Slicing.cc::cacheAllLLVMObjects, which populates fullFunc_ from every
// function in every module with an "if (SP)" guard, not from the
// cross-module external-definition map alone (Funcs deliberately excludes
// static functions, which must still appear in the blacklist universe) and
// not from undebugged declarations such as libc externs.
func (r *Registry) AllFuncNames() []string {
	var names []string
	for _, entry := range r.Modules {
		for _, fn := range entry.Module.Funcs {
			if fn.Subprogram == nil {
				continue
			}
			names = append(names, fn.Name)
		}
	}
	return names
}
