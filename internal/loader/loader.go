// Package loader parses IR files into a populated registry.Registry.
// Each file is decoded independently so that one malformed file never
// corrupts another module's state, matching KAMain.cc's main() parse loop
// (continue-on-error-per-file, never fatal for a single bad file).
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sliceir/internal/ir"
	"sliceir/internal/registry"
)

// Load parses every path in files into its own ir.Module and registers
// its externally-linked functions and globals into a fresh Registry.
// Parse failures are collected and returned alongside the registry;
// loading continues for the remaining files regardless (spec §7, error
// kind 2: "Parse error").
func Load(files []string) (*registry.Registry, []error) {
	reg := registry.New()
	var errs []error

	for _, path := range files {
		mod, err := loadOne(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", path, err))
			continue
		}
		reg.Modules = append(reg.Modules, registry.ModuleEntry{Module: mod, Path: path})
		reg.ModuleMaps[mod] = path
		register(reg, mod)
	}

	return reg, errs
}

func loadOne(path string) (*ir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var mod ir.Module
	if err := json.Unmarshal(data, &mod); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	mod.Path = path
	mod.Stem = stem(path)
	link(&mod)
	return &mod, nil
}

// stem derives the module-stem used by the internal-linkage scope-name
// rule: the base filename without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// link wires back-references (Function.Module, BasicBlock.Func,
// CallSite.Block, Instruction.Call) and computes Preds from the
// serialized Succs, since JSON only carries the forward edges.
func link(mod *ir.Module) {
	blocksByID := make(map[string]*ir.BasicBlock)

	for _, fn := range mod.Funcs {
		fn.Module = mod.Stem
		for _, bb := range fn.Blocks {
			bb.Func = fn
			blocksByID[fn.Name+"#"+bb.ID] = bb
			for _, inst := range bb.Insts {
				if inst.Call != nil {
					inst.Call.Block = bb
				}
			}
		}
	}

	for _, fn := range mod.Funcs {
		for _, bb := range fn.Blocks {
			for _, succID := range bb.Succs {
				if succ, ok := blocksByID[fn.Name+"#"+succID]; ok {
					succ.Preds = append(succ.Preds, bb.ID)
				}
			}
		}
	}

	for _, g := range mod.Globals {
		g.Module = mod.Stem
	}
}

// register inserts mod's functions into reg.ModuleFuncs (all linkages, for
// within-module direct-call resolution), its externally-linked
// *definitions* into reg.Funcs (applying the prefer-definitions-over-
// declarations rule, invariant 2), and its externally-linked globals into
// reg.Gobjs — matching KAMain.cc::doBasicInitialization exactly.
func register(reg *registry.Registry, mod *ir.Module) {
	modFuncs, ok := reg.ModuleFuncs[mod.Stem]
	if !ok {
		modFuncs = make(map[string]*ir.Function)
		reg.ModuleFuncs[mod.Stem] = modFuncs
	}

	for _, fn := range mod.Funcs {
		name := fn.Name
		if rewritten, did := sysRewrite(name); did {
			name = rewritten
		}
		modFuncs[name] = fn

		if fn.Linkage != "external" || !fn.IsDef {
			continue
		}
		if existing, ok := reg.Funcs[name]; ok && existing.IsDef {
			continue
		}
		reg.Funcs[name] = fn
	}

	for _, g := range mod.Globals {
		if g.Linkage != "external" {
			continue
		}
		reg.Gobjs[g.Name] = g
	}
}

func sysRewrite(name string) (string, bool) {
	const prefix = "__sys_"
	if len(name) > len(prefix) && name[:len(prefix)] == prefix {
		return "sys_" + name[len(prefix):], true
	}
	return "", false
}
