// Package orchestrator validates CLI arguments and runs the analysis
// phases in order: call-graph, then slicer (slicer requires call-graph).
// Grounded on KAMain.cc::main and, stylistically, on the teacher's
// cmd/unflutter/dump.go (sequential phase calls each wrapped in
// fmt.Errorf, status lines to stderr).
package orchestrator

import (
	"fmt"
	"os"
	"strings"
	"time"

	"sliceir/internal/callgraph"
	"sliceir/internal/emitter"
	"sliceir/internal/fnptr"
	"sliceir/internal/ir"
	"sliceir/internal/loader"
	"sliceir/internal/locator"
	"sliceir/internal/registry"
	"sliceir/internal/slicer"
)

// fuzzEntryStubs are the fixed libFuzzer entry-point names forward-sliced
// after the backward slice of a func or batch target; a line target does
// not seed them (spec §6, "Fuzz-entry stubs").
var fuzzEntryStubs = []string{
	"LLVMFuzzerInitialize",
	"LLVMFuzzerTestOneInput",
	"LLVMFuzzerRunDriver",
}

// ArgError is returned for any missing-required-argument condition (spec
// §7, error kind 1). The orchestrator's caller (cmd/sliceir) exits -1 on
// this error.
type ArgError struct{ msg string }

func (e *ArgError) Error() string { return e.msg }

func argErrorf(format string, args ...any) error {
	return &ArgError{msg: fmt.Sprintf(format, args...)}
}

// BatchPair is one "<file> <func>" line of a --multi batch config.
type BatchPair struct {
	File string
	Func string
}

// Options mirrors the CLI surface of spec §6 plus the SPEC_FULL.md
// additions (--config, --viz).
type Options struct {
	IRFiles []string

	SrcRoot string
	Output  string

	File  string
	Line  int
	Func  string
	Multi []BatchPair

	RunCallGraph bool
	RunSlicing   bool

	Struct       string
	DebugVerbose int

	VizPath string
}

// Validate enforces spec §4.H's argument rules: file XOR multi; line XOR
// func XOR multi; srcroot required; at least one IR file.
func (o Options) Validate() error {
	if len(o.IRFiles) == 0 {
		return argErrorf("at least one IR file is required")
	}
	if o.SrcRoot == "" {
		return argErrorf("--srcroot is required")
	}

	hasFile := o.File != ""
	hasMulti := len(o.Multi) > 0
	if hasFile == hasMulti {
		return argErrorf("exactly one of --file or --multi is required")
	}

	if hasFile {
		hasLine := o.Line != 0
		hasFunc := o.Func != ""
		if hasLine == hasFunc {
			return argErrorf("exactly one of --line or --func is required with --file")
		}
	}

	if o.RunSlicing && !o.RunCallGraph {
		return argErrorf("--slicing requires --callgraph")
	}
	return nil
}

// Run executes the requested phases and returns the process exit code
// and the registry built along the way (nil if argument validation
// failed), matching spec §6: 0 on success, -1 on argument or
// unresolved-target errors, non-zero on I/O failure. The registry is
// returned so callers can run purely-diagnostic post-processing (such as
// internal/viz's DOT rendering) against the finished call graph without
// the orchestrator needing to know about it.
func Run(o Options) (int, *registry.Registry) {
	if err := o.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return -1, nil
	}

	start := time.Now()
	reg, loadErrs := loader.Load(o.IRFiles)
	for _, e := range loadErrs {
		fmt.Fprintln(os.Stderr, "warning:", e)
	}
	fmt.Fprintf(os.Stderr, "loaded %d modules in %s\n", len(reg.Modules), time.Since(start))

	if err := emitter.WriteTotalBasicBlockCount(o.Output, reg); err != nil {
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	if o.RunCallGraph {
		t0 := time.Now()
		fnptr.Resolve(reg)
		callgraph.Build(reg, callgraph.TypeBased)
		fmt.Fprintf(os.Stderr, "callgraph phase: %s\n", time.Since(t0))

		if err := emitter.WriteCallGraphResult(o.Output, reg); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}

	if !o.RunSlicing {
		return 0, reg
	}

	t0 := time.Now()
	defer func() { fmt.Fprintf(os.Stderr, "slicing phase: %s\n", time.Since(t0)) }()

	fullFunc := reg.AllFuncNames()

	if len(o.Multi) > 0 {
		var results []emitter.Result
		for _, pair := range o.Multi {
			res, ok := sliceOne(reg, pair.File, pair.Func, 0)
			if !ok {
				fmt.Fprintf(os.Stderr, "warning: target not found: %s %s\n", pair.File, pair.Func)
				continue
			}
			results = append(results, res)
		}
		merged := emitter.Merge(results)
		if err := emitter.WriteSlice(o.Output, merged, fullFunc); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1, reg
		}
		return 0, reg
	}

	res, ok := sliceOne(reg, o.File, o.Func, o.Line)
	if !ok {
		fmt.Fprintln(os.Stderr, "error: target not found")
		return -1, reg
	}
	if err := emitter.WriteSlice(o.Output, res, fullFunc); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1, reg
	}
	return 0, reg
}

// sliceOne locates the target function and runs a fresh Slicer's backward
// slice against it. Only a func/batch target (funcName != "") additionally
// forward-slices the three fixed libFuzzer entry stubs; a pure line target
// gets only the backward slice, matching KAMain.cc::main's TargetLine
// branch (Sl.backtracking(targetBB) alone, with none of the
// forwardSlicingFunctionStub calls the TargetFunc and multi-target-pairs
// branches make). Every target then expands each verbose function both
// unbounded-forward and depth-1, matching Slicing.cc::dump's expansion
// sequence, which runs regardless of how the target was located.
func sliceOne(reg *registry.Registry, file, funcName string, line int) (emitter.Result, bool) {
	var target *ir.Function
	if funcName != "" {
		target = locator.FindFunctionByName(reg, file, funcName)
	} else if line != 0 {
		if bb := locator.FindBlockByLine(reg, file, line); bb != nil {
			target = bb.Func
		}
	}
	if target == nil {
		return emitter.Result{}, false
	}

	s := slicer.New(reg)
	s.SliceFunction(target)

	if funcName != "" {
		for _, stub := range fuzzEntryStubs {
			s.ForwardSlicingStub(stub)
		}
	}

	depthExpanded := make(map[*ir.Function]bool)
	for fn := range s.VerboseF() {
		s.ForwardSlicingFunction(fn)
		s.ForwardSlicingWithDepth(fn, 1, depthExpanded)
	}

	name := funcName
	if name == "" {
		name = target.Name
	}
	name = sanitizeTargetName(name)

	return emitter.Result{
		Target:        name,
		VisitedBB:     s.VisitedBB(),
		VerboseF:      s.VerboseF(),
		VerboseBB:     s.VerboseBB(),
		DepthExpanded: depthExpanded,
	}, true
}

// sanitizeTargetName strips path separators from a target name so it is
// safe to use as an output filename prefix.
func sanitizeTargetName(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_").Replace(name)
}
