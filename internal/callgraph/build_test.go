package callgraph

import (
	"testing"

	"sliceir/internal/ir"
	"sliceir/internal/registry"
)

// TestBuildDirectCallResolution covers S1: a direct call site in one
// module resolves to the cross-module external definition.
func TestBuildDirectCallResolution(t *testing.T) {
	reg := registry.New()

	callee := &ir.Function{Name: "helper", Linkage: "external", IsDef: true}
	calleeBB := &ir.BasicBlock{ID: "b0"}
	callee.Blocks = []*ir.BasicBlock{calleeBB}
	calleeBB.Func = callee

	cs := &ir.CallSite{Callee: ir.Value{FuncName: "helper"}}
	callerBB := &ir.BasicBlock{ID: "b0", Insts: []*ir.Instruction{{Opcode: "call", Call: cs}}}
	caller := &ir.Function{Name: "main", Linkage: "external", IsDef: true, Blocks: []*ir.BasicBlock{callerBB}}
	callerBB.Func = caller
	cs.Block = callerBB

	modA := &ir.Module{Stem: "a", Funcs: []*ir.Function{caller}}
	modB := &ir.Module{Stem: "b", Funcs: []*ir.Function{callee}}
	reg.Modules = []registry.ModuleEntry{{Module: modA}, {Module: modB}}
	reg.ModuleFuncs["a"] = map[string]*ir.Function{"main": caller}
	reg.ModuleFuncs["b"] = map[string]*ir.Function{"helper": callee}
	reg.Funcs["main"] = caller
	reg.Funcs["helper"] = callee

	Build(reg, TypeBased)

	if !reg.Callees[cs][callee] {
		t.Error("expected direct call to resolve to helper's definition")
	}
	if !reg.Callers[callee][cs] {
		t.Error("expected Finalize to populate the inverse Callers map")
	}
}

// TestBuildIndirectCallResolution covers S2: an indirect call site
// resolves to every address-taken function with a compatible signature.
func TestBuildIndirectCallResolution(t *testing.T) {
	reg := registry.New()

	match := &ir.Function{Name: "on_event", ReturnType: intType(32), AddressTaken: true}
	mismatch := &ir.Function{Name: "on_other", ReturnType: &ir.Type{Kind: ir.TypeStruct, Name: "X"}, AddressTaken: true}

	cs := &ir.CallSite{Indirect: true, ResultType: intType(32)}
	bb := &ir.BasicBlock{ID: "b0", Insts: []*ir.Instruction{{Opcode: "call", Call: cs}}}
	fn := &ir.Function{Name: "dispatch", Linkage: "external", IsDef: true, Blocks: []*ir.BasicBlock{bb}}
	bb.Func = fn
	cs.Block = bb

	mod := &ir.Module{Stem: "m", Funcs: []*ir.Function{fn, match, mismatch}}
	reg.Modules = []registry.ModuleEntry{{Module: mod}}
	reg.ModuleFuncs["m"] = map[string]*ir.Function{"dispatch": fn}
	reg.AddressTakenFuncs[match] = true
	reg.AddressTakenFuncs[mismatch] = true

	Build(reg, TypeBased)

	if !reg.Callees[cs][match] {
		t.Error("expected indirect call to resolve to the compatible candidate")
	}
	if reg.Callees[cs][mismatch] {
		t.Error("expected indirect call not to resolve to the incompatible candidate")
	}

	if len(reg.IndirectCallInsts) != 1 {
		t.Errorf("expected IndirectCallInsts to record the call site exactly once across fixpoint sweeps, got %d", len(reg.IndirectCallInsts))
	}
}

func TestBuildSkipsInitTextSection(t *testing.T) {
	reg := registry.New()

	callee := &ir.Function{Name: "ctor_target", Linkage: "external", IsDef: true}
	cs := &ir.CallSite{Callee: ir.Value{FuncName: "ctor_target"}}
	bb := &ir.BasicBlock{ID: "b0", Insts: []*ir.Instruction{{Opcode: "call", Call: cs}}}
	fn := &ir.Function{Name: "ctor", Linkage: "external", IsDef: true, Section: ".init.text", Blocks: []*ir.BasicBlock{bb}}
	bb.Func = fn
	cs.Block = bb

	mod := &ir.Module{Stem: "m", Funcs: []*ir.Function{fn, callee}}
	reg.Modules = []registry.ModuleEntry{{Module: mod}}
	reg.ModuleFuncs["m"] = map[string]*ir.Function{"ctor": fn, "ctor_target": callee}
	reg.Funcs["ctor_target"] = callee

	Build(reg, TypeBased)

	if len(reg.Callees[cs]) != 0 {
		t.Error("expected call sites inside .init.text functions to be skipped")
	}
}
