package callgraph

import (
	"github.com/zboralski/lattice"

	"sliceir/internal/registry"
)

// ToLatticeGraph converts the finished call graph into a lattice.Graph:
// one node per registered function scope-name, one edge per resolved
// Callees/Callers pair, deduplicated via Dedup(). Adapted from the
// teacher's internal/callgraph.BuildCallGraph, which performs the same
// Function-set-to-lattice.Graph conversion for disassembled functions.
func ToLatticeGraph(reg *registry.Registry) *lattice.Graph {
	g := &lattice.Graph{}
	for name := range reg.Funcs {
		g.Nodes = append(g.Nodes, name)
	}

	for site, callees := range reg.Callees {
		caller := site.Block.Func.Name
		for callee := range callees {
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: caller,
				Callee: callee.Name,
			})
		}
	}

	g.Dedup()
	return g
}
