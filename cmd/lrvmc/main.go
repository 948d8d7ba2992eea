/*
Lrvmc compiles a source script into bytecode and, by default, runs it.

Usage:

	lrvmc [flags] SOURCE

The flags are:

	-o, --out FILE
		Also write the assembled bytecode to FILE; the program still runs
		unless -r is given.

	-S, --asm
		Print the disassembled instruction listing to stdout instead of
		running the program.

	--ast
		Print the lowered AST to stdout before running the program.

	-c, --config FILE
		Load VM sizing and conflict-resolver settings from an lrvmconfig TOML
		file. Defaults are used when omitted.

	--collection {lr1|lalr1|slr1}
		Selects the canonical collection the parse table is built from.
		Defaults to lalr1.

	--parser {table|recasc}
		Selects the parser runtime driving the parse table: the table-driven
		stack automaton of spec.md §4.4 (the default) or the recursive-ascent
		alternative back end of spec.md §4.5. Both produce identical ASTs.

	-r, --norun
		Compile only; do not execute the program, whether or not -o is given.
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/mseida/lr1vm/internal/bytecode"
	"github.com/mseida/lr1vm/internal/codegen"
	"github.com/mseida/lr1vm/internal/compile"
	"github.com/mseida/lr1vm/internal/config"
	"github.com/mseida/lr1vm/internal/vm"
)

const (
	ExitSuccess = iota
	ExitUsageError
	ExitCompileError
	ExitRunError
)

var (
	outFile    = pflag.StringP("out", "o", "", "Also write assembled bytecode to FILE (the program still runs unless --norun)")
	showAsm    = pflag.BoolP("asm", "S", false, "Print the disassembled instruction listing instead of running")
	showAST    = pflag.Bool("ast", false, "Print the lowered AST to stdout before running the program")
	configFile = pflag.StringP("config", "c", "", "Load VM/codegen/resolver settings from an lrvmconfig TOML file")
	collection = pflag.String("collection", "lalr1", "Canonical collection to build the parse table from: lr1, lalr1, or slr1")
	parser     = pflag.String("parser", "table", "Parser runtime to drive the parse table: table (spec.md §4.4) or recasc (spec.md §4.5)")
	noRun      = pflag.BoolP("norun", "r", false, "Compile only; do not execute the program")
)

func main() {
	os.Exit(run())
}

func run() int {
	pflag.Parse()
	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: lrvmc [flags] SOURCE")
		return ExitUsageError
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitUsageError
	}

	kind, err := parseCollectionKind(*collection)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitUsageError
	}

	backend, err := parseParserBackend(*parser)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitUsageError
	}

	src, err := os.ReadFile(pflag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitUsageError
	}

	mode := codegen.ModeBinary
	if *showAsm {
		mode = codegen.ModeText
	}

	opts := compile.Options{
		Collection: kind,
		Resolvers:  cfg.GrammarResolvers(),
		Codegen:    cfg.CodegenOptions(mode),
		Backend:    backend,
	}

	fe, err := compile.BuildFrontend(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitCompileError
	}

	if *showAST {
		root, err := fe.Parse(string(src), opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			return ExitCompileError
		}
		fmt.Print(root.Dump())
	}

	result, err := fe.Compile(string(src), opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitCompileError
	}

	if *showAsm {
		fmt.Print(bytecode.Disassemble(result.Program))
		return ExitSuccess
	}

	if *outFile != "" {
		data, err := bytecode.Save(result.Program)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			return ExitCompileError
		}
		if err := os.WriteFile(*outFile, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
			return ExitCompileError
		}
	}

	if *noRun {
		return ExitSuccess
	}

	m := vm.New(result.Program, cfg.VMConfig())
	if err := m.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		return ExitRunError
	}
	if top, ok := m.Top(); ok {
		fmt.Println(vm.ValueString(top))
	}
	return ExitSuccess
}

func parseCollectionKind(s string) (compile.CollectionKind, error) {
	switch s {
	case "lr1":
		return compile.LR1, nil
	case "lalr1":
		return compile.LALR1, nil
	case "slr1":
		return compile.SLR1, nil
	default:
		return 0, fmt.Errorf("unknown collection kind %q (want lr1, lalr1, or slr1)", s)
	}
}

func parseParserBackend(s string) (compile.ParserBackend, error) {
	switch s {
	case "table":
		return compile.TableDriven, nil
	case "recasc":
		return compile.RecursiveAscent, nil
	default:
		return 0, fmt.Errorf("unknown parser backend %q (want table or recasc)", s)
	}
}
