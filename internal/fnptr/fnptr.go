// Package fnptr implements the function-pointer resolver: it seeds
// registry.Registry.FuncPtrs by walking every global initializer's
// constant tree for function-pointer assignments, and populates
// AddressTakenFuncs by scanning every function for address-taken uses.
// Grounded on CallGraph.cc's processInitializers/doInitialization.
package fnptr

import (
	"strconv"
	"strings"

	"sliceir/internal/ir"
	"sliceir/internal/registry"
)

// sentinelID is used when a struct constant has no name, no inherited id,
// and no owning global variable to derive one from (CallGraph.cc's
// processInitializers uses the literal string "bullshit" for this case;
// documented in DESIGN.md as an Open-Question resolution). It is an
// internal bookkeeping key only and must never be written to output.
const sentinelID = "bullshit"

// Resolve walks every loaded module's globals and functions, populating
// reg.FuncPtrs and reg.AddressTakenFuncs. It must run before the
// call-graph builder's fixpoint, since the builder's indirect resolution
// reads both sets.
func Resolve(reg *registry.Registry) {
	for _, entry := range reg.Modules {
		mod := entry.Module
		for _, g := range mod.Globals {
			if g.Initializer != nil {
				processInitializer(reg, mod, g.Initializer, g, "")
			}
		}
		for _, fn := range mod.Funcs {
			if fn.Section == ".init.text" {
				continue
			}
			if fn.AddressTaken {
				reg.AddressTakenFuncs[fn] = true
			}
		}
	}
}

// processInitializer recurses over a constant tree. v is the owning
// global variable for the top-level walk of that global and for the
// elements of an array reached from it (nil for struct-field sub-calls),
// matching processInitializers(M, C, V, Id).
func processInitializer(reg *registry.Registry, mod *ir.Module, c *ir.Constant, v *ir.Global, id string) {
	switch c.Kind {
	case "struct":
		processStruct(reg, mod, c, v, id)
	case "array":
		for _, elem := range c.Fields {
			processInitializer(reg, mod, elem, v, id)
		}
	case "func":
		if v != nil && c.FuncRef != "" {
			if fn := resolveFuncRef(reg, mod, c.FuncRef); fn != nil {
				reg.AddFuncPtr(varID(v), fn)
			}
		}
	}
}

func processStruct(reg *registry.Registry, mod *ir.Module, c *ir.Constant, v *ir.Global, id string) {
	sty := c.StructTy
	if sty != nil && sty.Name == "" && id == "" {
		if v != nil {
			id = varID(v)
		} else {
			id = sentinelID
		}
	}

	for i, field := range c.Fields {
		switch field.Kind {
		case "struct":
			newID := id
			if newID == "" {
				name := ""
				if sty != nil {
					name = sty.Name
				}
				newID = name + "," + strconv.Itoa(i)
			} else {
				newID = id + "," + strconv.Itoa(i)
			}
			processInitializer(reg, mod, field, nil, newID)
		case "array":
			processInitializer(reg, mod, field, nil, "")
		case "func":
			if field.FuncRef == "" {
				continue
			}
			fn := resolveFuncRef(reg, mod, field.FuncRef)
			if fn == nil {
				continue
			}
			newID := ""
			if sty != nil && !sty.IsLiteral {
				if strings.HasPrefix(sty.Name, "struct.anon.") || strings.HasPrefix(sty.Name, "union.anon") {
					if id == "" {
						newID = structFieldID(sty, mod, i)
					}
				} else {
					newID = structFieldID(sty, mod, i)
				}
			}
			if newID == "" {
				newID = id + "," + strconv.Itoa(i)
			}
			reg.AddFuncPtr(newID, fn)
		}
	}
}

// structFieldID synthesizes the structural id for field i of a named
// struct type: its canonical name qualified by module stem plus field
// index, so that the same struct type in different modules does not
// collide.
func structFieldID(sty *ir.Type, mod *ir.Module, field int) string {
	return mod.Stem + "." + sty.Name + "," + strconv.Itoa(field)
}

// varID is the structural id for a global variable's own scope-name.
func varID(g *ir.Global) string {
	return registry.ScopeName(g.Module, g.Name, g.Linkage)
}

// resolveFuncRef resolves a function-constant reference to its
// definition, preferring a cross-module external definition but falling
// back to the local module's own function list for internal linkage.
func resolveFuncRef(reg *registry.Registry, mod *ir.Module, name string) *ir.Function {
	return reg.ResolveDirect(mod.Stem, name)
}
