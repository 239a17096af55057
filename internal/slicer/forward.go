package slicer

import "sliceir/internal/ir"

// ForwardSlicingFunction BFS-explores every basic block of fn and of every
// transitively callable function, recording all touched blocks in
// VerboseBB and every function reached through a call in FVisitedF (fn
// itself is not added to FVisitedF). Grounded on
// Slicing.cc::forwardSlicingFunction.
func (s *Slicer) ForwardSlicingFunction(fn *ir.Function) {
	var queue []*ir.BasicBlock
	queue = append(queue, fn.Blocks...)

	visited := make(map[*ir.BasicBlock]bool)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		s.verboseBB[cur] = true

		if visited[cur] {
			continue
		}
		visited[cur] = true

		for _, inst := range cur.Insts {
			cs := inst.Call
			if cs == nil {
				continue
			}
			for callee := range s.reg.Callees[cs] {
				if s.fVisitedF[callee] {
					continue
				}
				s.fVisitedF[callee] = true
				queue = append(queue, callee.Blocks...)
			}
		}
	}
}

// ForwardSlicingStub is ForwardSlicingFunction seeded by a plain symbol
// name, used for the three fixed libFuzzer entry points. Grounded on
// Slicing.cc::forwardSlicingFunctionStub.
func (s *Slicer) ForwardSlicingStub(name string) {
	fn := s.reg.FindByName(name)
	if fn == nil {
		return
	}
	s.ForwardSlicingFunction(fn)
}

// ForwardSlicingWithDepth bounded-depth forward walk: adds fn to visited,
// and when depth > 0 recurses into every resolved callee at depth-1.
// Grounded on Slicing.cc::forwardSlicingFunctionWithDepth.
func (s *Slicer) ForwardSlicingWithDepth(fn *ir.Function, depth int, visited map[*ir.Function]bool) {
	visited[fn] = true
	if depth == 0 {
		return
	}
	for _, bb := range fn.Blocks {
		for _, inst := range bb.Insts {
			cs := inst.Call
			if cs == nil {
				continue
			}
			for callee := range s.reg.Callees[cs] {
				s.ForwardSlicingWithDepth(callee, depth-1, visited)
			}
		}
	}
}
