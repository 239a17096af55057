// Package emitter writes slice and call-graph results to disk: the five
// per-target slice files, the callgraph_result dump, and the one-off
// total_basicblock bookkeeping file. All output is line-oriented and
// deduplicated through a set before writing. Grounded on
// Slicing.cc::dump/dumpCallers.
package emitter

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"sliceir/internal/ir"
	"sliceir/internal/pathnorm"
	"sliceir/internal/registry"
)

// Result bundles a slicer's output sets with the target name they were
// produced for, the unit emitted under in batch mode ("merged").
type Result struct {
	Target string

	VisitedBB map[*ir.BasicBlock]bool
	VerboseF  map[*ir.Function]bool
	VerboseBB map[*ir.BasicBlock]bool

	// DepthExpanded is the depth-1 forward expansion of VerboseF,
	// computed by the orchestrator with Slicer.ForwardSlicingWithDepth.
	DepthExpanded map[*ir.Function]bool
}

// WriteSlice writes the five slice output files for res into dir.
// fullFunc is every function name known to the registry, used to compute
// the blacklist (spec invariant: blacklist ∩ verbose = ∅, blacklist ∪
// verbose ⊆ fullFunc).
func WriteSlice(dir string, res Result, fullFunc []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	slice := newLineSet()
	sliceVerbose := newLineSet()
	funcSlice := newLineSet()
	funcVerbose := newLineSet()

	for bb := range res.VisitedBB {
		line, ok := blockLine(bb)
		if ok {
			slice.add(line)
			sliceVerbose.add(line)
		}
		funcSlice.add(bb.Func.Name)
		funcVerbose.add(bb.Func.Name)
	}

	for fn := range res.VerboseF {
		funcSlice.add(fn.Name)
		funcVerbose.add(fn.Name)
	}
	for fn := range res.DepthExpanded {
		funcSlice.add(fn.Name)
		funcVerbose.add(fn.Name)
	}

	for bb := range res.VerboseBB {
		if line, ok := blockLine(bb); ok {
			sliceVerbose.add(line)
		}
		funcVerbose.add(bb.Func.Name)
	}

	blacklist := newLineSet()
	for _, name := range fullFunc {
		if !funcVerbose.has(name) {
			blacklist.add(name)
		}
	}

	if err := writeLines(filepath.Join(dir, res.Target+".slice"), slice.sorted()); err != nil {
		return err
	}
	if err := writeLines(filepath.Join(dir, res.Target+".slice.verbose"), sliceVerbose.sorted()); err != nil {
		return err
	}
	if err := writeLines(filepath.Join(dir, res.Target+".func"), funcSlice.sorted()); err != nil {
		return err
	}
	if err := writeLines(filepath.Join(dir, res.Target+".func.verbose"), funcVerbose.sorted()); err != nil {
		return err
	}
	if err := writeLines(filepath.Join(dir, res.Target+".func.blacklist"), blacklist.sorted()); err != nil {
		return err
	}
	return nil
}

// blockLine formats the "block:<abs-path>:<line>:100" line for the first
// debug-located instruction in bb, matching Slicing.cc::dump's block loop
// (break on first hit).
func blockLine(bb *ir.BasicBlock) (string, bool) {
	for _, inst := range bb.Insts {
		if inst.Loc.Line == 0 {
			continue
		}
		path := pathnorm.Join(inst.Loc.Dir, inst.Loc.File)
		return fmt.Sprintf("block:%s:%d:100", path, inst.Loc.Line), true
	}
	return "", false
}

// WriteCallGraphResult writes one line per call site in the form
// "<caller-path>:<caller-line>:<callee-path>:<callee-line>:<1|0>",
// 1=direct, 0=indirect. Grounded on CallGraph.cc::dumpCallers. The
// deprecated dumpCallees-to-fixed-filename path is intentionally not
// ported (see DESIGN.md).
func WriteCallGraphResult(dir string, reg *registry.Registry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	lines := newLineSet()
	for site, callees := range reg.Callees {
		if site.Block == nil || site.Block.Func == nil {
			continue
		}
		// A call site with no debug line is skipped outright, matching
		// dumpCallers: there is no fallback to the enclosing function's
		// own location.
		if site.Loc.Line == 0 {
			continue
		}
		callerLoc := callerLocation(site)
		direct := 1
		if site.Indirect {
			direct = 0
		}
		for callee := range callees {
			calleeLoc := funcLocation(callee)
			lines.add(fmt.Sprintf("%s:%s:%d", callerLoc, calleeLoc, direct))
		}
	}

	return writeLines(filepath.Join(dir, "callgraph_result"), lines.sorted())
}

func callerLocation(site *ir.CallSite) string {
	return fmt.Sprintf("%s:%d", pathnorm.Join(site.Loc.Dir, site.Loc.File), site.Loc.Line)
}

func funcLocation(fn *ir.Function) string {
	if fn.Subprogram == nil {
		return fn.Name + ":0"
	}
	return fmt.Sprintf("%s:%d", pathnorm.Join(fn.Subprogram.Dir, fn.Subprogram.File), fn.Subprogram.DeclLine)
}

// WriteTotalBasicBlockCount creates the one-off total_basicblock
// bookkeeping file (count of basic blocks across all modules), only if it
// does not already exist, matching KAMain.cc::main's "if not good, create"
// check.
func WriteTotalBasicBlockCount(dir string, reg *registry.Registry) error {
	path := filepath.Join(dir, "total_basicblock")
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	count := 0
	for _, entry := range reg.Modules {
		for _, fn := range entry.Module.Funcs {
			count += len(fn.Blocks)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create total_basicblock: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%d", count)
	return err
}

// Merge unions a batch of per-target results into a single result labeled
// "merged", matching spec §4.F's batch-mode union behavior.
func Merge(results []Result) Result {
	merged := Result{
		Target:        "merged",
		VisitedBB:     make(map[*ir.BasicBlock]bool),
		VerboseF:      make(map[*ir.Function]bool),
		VerboseBB:     make(map[*ir.BasicBlock]bool),
		DepthExpanded: make(map[*ir.Function]bool),
	}
	for _, r := range results {
		for bb := range r.VisitedBB {
			merged.VisitedBB[bb] = true
		}
		for fn := range r.VerboseF {
			merged.VerboseF[fn] = true
		}
		for bb := range r.VerboseBB {
			merged.VerboseBB[bb] = true
		}
		for fn := range r.DepthExpanded {
			merged.DepthExpanded[fn] = true
		}
	}
	return merged
}

// lineSet is the set-based dedup buffer spec §4.F requires before writing.
type lineSet struct {
	m map[string]bool
}

func newLineSet() *lineSet { return &lineSet{m: make(map[string]bool)} }

func (s *lineSet) add(line string) { s.m[line] = true }
func (s *lineSet) has(line string) bool { return s.m[line] }

func (s *lineSet) sorted() []string {
	out := make([]string, 0, len(s.m))
	for line := range s.m {
		out = append(out, line)
	}
	sort.Strings(out)
	return out
}

func writeLines(path string, lines []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return w.Flush()
}
