// Package viz renders the whole-program call graph as Graphviz DOT, a
// diagnostic supplement alongside --struct/--debug-verbose (see
// SPEC_FULL.md's SUPPLEMENTED FEATURES). Not part of the slice-output
// file set spec.md §6 requires; purely an inspection aid.
package viz

import (
	"github.com/zboralski/lattice/render"

	"sliceir/internal/callgraph"
	"sliceir/internal/registry"
)

// DOT renders reg's call graph as a Graphviz DOT document.
func DOT(reg *registry.Registry, title string) string {
	g := callgraph.ToLatticeGraph(reg)
	return render.DOT(g, title)
}
