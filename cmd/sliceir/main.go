// Command sliceir builds a whole-program call graph over an already-lowered
// IR and, optionally, slices it against a target function or line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"sliceir/internal/config"
	"sliceir/internal/orchestrator"
	"sliceir/internal/viz"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sliceir", flag.ExitOnError)

	srcRoot := fs.String("srcroot", "", "source-tree root (required)")
	output := fs.String("output", "", "destination directory for slice files (default \".\")")
	file := fs.String("file", "", "single-target file")
	line := fs.Int("line", 0, "target line inside --file")
	funcName := fs.String("func", "", "target function name inside --file")
	multi := fs.String("multi", "", "batch config file, one '<file> <func>' pair per line")
	runCallGraph := fs.Bool("callgraph", false, "run the call-graph phase")
	runSlicing := fs.Bool("slicing", false, "run the slicer (requires --callgraph)")
	structName := fs.String("struct", "", "diagnostic struct/type name (accepted but not read by any phase)")
	debugVerbose := fs.Int("debug-verbose", 0, "diagnostic verbosity level")
	configPath := fs.String("config", "", "optional YAML defaults file")
	vizPath := fs.String("viz", "", "optional Graphviz DOT output path for the call graph")

	if err := fs.Parse(args); err != nil {
		return 1
	}

	irFiles := fs.Args()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	config.ApplyDefaults(srcRoot, output, debugVerbose, cfg)
	if *output == "" {
		*output = "."
	}

	opts := orchestrator.Options{
		IRFiles:      irFiles,
		SrcRoot:      *srcRoot,
		Output:       *output,
		File:         *file,
		Line:         *line,
		Func:         *funcName,
		RunCallGraph: *runCallGraph,
		RunSlicing:   *runSlicing,
		Struct:       *structName,
		DebugVerbose: *debugVerbose,
		VizPath:      *vizPath,
	}

	if *multi != "" {
		pairs, err := readBatchFile(*multi)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			return 1
		}
		opts.Multi = pairs
	}

	code, reg := orchestrator.Run(opts)

	if *vizPath != "" && code == 0 && reg != nil {
		if err := os.WriteFile(*vizPath, []byte(viz.DOT(reg, strings.Join(irFiles, " "))), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "warning: viz:", err)
		}
	}

	return code
}

// readBatchFile parses a --multi config file: one "<file> <func>" pair
// per non-empty, non-comment line.
func readBatchFile(path string) ([]orchestrator.BatchPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var pairs []orchestrator.BatchPair
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		pairs = append(pairs, orchestrator.BatchPair{File: fields[0], Func: fields[1]})
	}
	return pairs, scanner.Err()
}
