// Package slicer implements backward and forward program slicing over a
// finished call graph. Grounded on Slicing.cc/Slicing.h. State (visited
// blocks, verbose sets, slice counters) is scoped to a single Slicer value
// per target query and must be explicitly reset between batch targets
// (see Reset), per spec §9's "scoped state clearing" design note.
package slicer

import (
	"sliceir/internal/ir"
	"sliceir/internal/registry"
)

// Slicer holds the per-query mutable state. Construct it with New: the
// zero value's sets are nil maps and cannot be written to. Reset clears
// every set at once, matching spec §9's "API that makes reset total and
// explicit".
type Slicer struct {
	reg *registry.Registry

	visitedF  map[*ir.Function]bool
	visitedBB map[*ir.BasicBlock]bool
	verboseF  map[*ir.Function]bool
	verboseBB map[*ir.BasicBlock]bool
	fVisitedF map[*ir.Function]bool

	slicedFuncCnt int
}

// New returns a Slicer bound to reg's finished call graph.
func New(reg *registry.Registry) *Slicer {
	s := &Slicer{reg: reg}
	s.Reset()
	return s
}

// Reset clears all per-query state. Partial reset is not supported by
// design (spec §9): every set is reallocated together.
func (s *Slicer) Reset() {
	s.visitedF = make(map[*ir.Function]bool)
	s.visitedBB = make(map[*ir.BasicBlock]bool)
	s.verboseF = make(map[*ir.Function]bool)
	s.verboseBB = make(map[*ir.BasicBlock]bool)
	s.fVisitedF = make(map[*ir.Function]bool)
	s.slicedFuncCnt = 0
}

// VisitedBB returns the backward slice's basic block set.
func (s *Slicer) VisitedBB() map[*ir.BasicBlock]bool { return s.visitedBB }

// VerboseF returns the set of functions discovered by the sibling-call-site
// verbose expansion.
func (s *Slicer) VerboseF() map[*ir.Function]bool { return s.verboseF }

// VerboseBB returns every basic block touched by forward-expanding VerboseF.
func (s *Slicer) VerboseBB() map[*ir.BasicBlock]bool { return s.verboseBB }

// FVisitedF returns every function touched by forward slicing.
func (s *Slicer) FVisitedF() map[*ir.Function]bool { return s.fVisitedF }

// SlicedFuncCnt returns the number of distinct call-site-bearing target
// functions processed by SliceFunction (diagnostic counter only).
func (s *Slicer) SlicedFuncCnt() int { return s.slicedFuncCnt }

// intraCanReach reports whether dst is reachable from src by following
// successor edges within a single function's CFG (DFS, grounded on
// Slicing.cc::intraCanReach).
func intraCanReach(src, dst *ir.BasicBlock) bool {
	visited := make(map[*ir.BasicBlock]bool)
	stack := []*ir.BasicBlock{src}
	byID := blockIndex(src.Func)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		if cur == dst {
			return true
		}
		for _, succID := range cur.Succs {
			if succ, ok := byID[succID]; ok {
				stack = append(stack, succ)
			}
		}
	}
	return false
}

func blockIndex(fn *ir.Function) map[string]*ir.BasicBlock {
	idx := make(map[string]*ir.BasicBlock, len(fn.Blocks))
	for _, bb := range fn.Blocks {
		idx[bb.ID] = bb
	}
	return idx
}

// addToVerbose finds every sibling call site inside the enclosing
// function of each call site that targets F, and adds their callees to
// verboseF when there is an intra-procedural path from the sibling's
// block to F's call-site block. Grounded on Slicing.cc::addToVerbose.
func (s *Slicer) addToVerbose(fn *ir.Function) {
	if s.verboseF[fn] {
		return
	}
	s.verboseF[fn] = true

	for site := range s.reg.Callers[fn] {
		fBB := site.Block
		if fBB == nil || fBB.Func == nil {
			continue
		}
		enclosing := fBB.Func

		for _, otherBB := range enclosing.Blocks {
			for _, inst := range otherBB.Insts {
				other := inst.Call
				if other == nil || other.Intrinsic {
					continue
				}
				if !intraCanReach(otherBB, fBB) {
					continue
				}
				if other.Callee.FuncName == "" {
					continue
				}
				if otherFn := s.reg.ResolveDirect(enclosing.Module, other.Callee.FuncName); otherFn != nil {
					s.verboseF[otherFn] = true
				}
			}
		}
	}
}

// SliceFunction is the backward-slicing entry point: mark F's blocks
// visited, expand verbose siblings, then backtrack from every call site
// targeting any function sharing F's plain name (handling name-duplicates
// across modules). Grounded on Slicing.cc::sliceFunction.
func (s *Slicer) SliceFunction(fn *ir.Function) {
	if s.visitedF[fn] {
		return
	}
	s.visitedF[fn] = true

	for _, bb := range fn.Blocks {
		s.visitedBB[bb] = true
	}

	s.addToVerbose(fn)

	var matching [][]*ir.CallSite
	for candidate, sites := range s.reg.Callers {
		if candidate.Name != fn.Name {
			continue
		}
		list := make([]*ir.CallSite, 0, len(sites))
		for site := range sites {
			list = append(list, site)
		}
		matching = append(matching, list)
	}
	if len(matching) == 0 {
		return
	}

	var toProcess []*ir.BasicBlock
	for _, sites := range matching {
		for _, site := range sites {
			if site.Block == nil {
				continue
			}
			if !s.visitedBB[site.Block] {
				toProcess = append(toProcess, site.Block)
			}
		}
	}

	for len(toProcess) > 0 {
		bb := toProcess[0]
		toProcess = toProcess[1:]
		s.backtrack(bb)
	}

	for _, sites := range matching {
		if len(sites) > 0 {
			s.slicedFuncCnt++
			break
		}
	}
}

// backtrack DFS-walks the reverse CFG from bb, marking every newly
// reached block visited, breaking immediate self-loop repeats in the
// predecessor scan, then recurses into bb's enclosing function via
// SliceFunction. Grounded on Slicing.cc::backtracking.
func (s *Slicer) backtrack(bb *ir.BasicBlock) {
	stack := []*ir.BasicBlock{bb}
	idx := blockIndex(bb.Func)

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil || cur.Func == nil {
			continue
		}

		if s.visitedBB[cur] {
			continue
		}
		s.visitedBB[cur] = true

		var lastPred *ir.BasicBlock
		for _, predID := range cur.Preds {
			pred, ok := idx[predID]
			if !ok {
				continue
			}
			if pred == lastPred {
				break
			}
			lastPred = pred
			if !s.visitedBB[pred] {
				stack = append(stack, pred)
			}
		}
	}

	s.SliceFunction(bb.Func)
}
