// Package compile wires the independent stages of the system together:
// grammar construction, automaton/table building, parsing, AST lowering,
// and code generation (spec.md §1 "Pipeline"). A CLI front end depends only
// on this package rather than reaching into each stage package directly,
// mirroring the teacher's internal/ictiobus/frontend driver that glues its
// own grammar/parse/syntax packages into one entry point per language.
package compile

import (
	"github.com/mseida/lr1vm/internal/ast"
	"github.com/mseida/lr1vm/internal/automaton"
	"github.com/mseida/lr1vm/internal/bytecode"
	"github.com/mseida/lr1vm/internal/codegen"
	"github.com/mseida/lr1vm/internal/cst"
	"github.com/mseida/lr1vm/internal/grammar"
	"github.com/mseida/lr1vm/internal/lex"
	"github.com/mseida/lr1vm/internal/parse"
	"github.com/mseida/lr1vm/internal/parsergen"
	"github.com/mseida/lr1vm/internal/parsetab"
	"github.com/mseida/lr1vm/internal/symtab"
)

// ParserBackend selects which of the two equivalent parser runtimes
// (spec.md §4.4 vs §4.5) drives a Table/grammar pair against source text.
// Both consume the same parsetab.Table and produce the same CST shape.
type ParserBackend int

const (
	// TableDriven is the explicit-stack pushdown automaton of spec.md
	// §4.4 (internal/parse).
	TableDriven ParserBackend = iota
	// RecursiveAscent is the call-stack-driven alternative back end of
	// spec.md §4.5 (internal/parsergen).
	RecursiveAscent
)

// CollectionKind selects which canonical collection to build the parse
// table from (spec.md §4.2 "LALR(1) collapse" / "SLR(1) collapse").
type CollectionKind int

const (
	LR1 CollectionKind = iota
	LALR1
	SLR1
)

// Options configures a full build.
type Options struct {
	Collection CollectionKind
	Resolvers  []grammar.ResolverSpec
	Codegen    codegen.Options
	Externs    []string // names pre-declared external (host) functions, in addition to any `extern` statements in source.
	Backend    ParserBackend
}

// DefaultOptions returns the LALR(1)-with-default-resolvers configuration
// spec.md §4.2 recommends as the normal build.
func DefaultOptions() Options {
	return Options{
		Collection: LALR1,
		Resolvers:  grammar.DefaultResolvers(),
		Codegen:    codegen.Options{Mode: codegen.ModeBinary},
	}
}

// Frontend is the fixed half of the pipeline: grammar, automaton, and parse
// table, none of which depend on any particular source text. Building it
// once and reusing it across many Parse/Compile calls mirrors spec.md §5
// "Parse tables ... are built once and reused".
type Frontend struct {
	G     *grammar.CFG
	Table *parsetab.Table
}

// BuildFrontend constructs the grammar, canonical collection, and parse
// table (spec.md §4.1-§4.3).
func BuildFrontend(opts Options) (*Frontend, error) {
	g := grammar.Sample()

	collection := automaton.BuildCanonicalLR1(g)
	switch opts.Collection {
	case LALR1:
		collection = automaton.CollapseLALR1(collection)
	case SLR1:
		collection = automaton.CollapseSLR1(collection)
	case LR1:
		// canonical collection already built above.
	}

	resolvers := make([]parsetab.ResolverRule, 0, len(opts.Resolvers))
	for _, r := range opts.Resolvers {
		action := parsetab.ForceShift
		if !r.ForceShift {
			action = parsetab.ForceReduce
		}
		resolvers = append(resolvers, parsetab.ResolverRule{
			Key: r.Key, Lookahead: r.Lookahead, Action: action,
		})
	}

	table, err := parsetab.Build(collection, resolvers)
	if err != nil {
		return nil, err
	}
	return &Frontend{G: g, Table: table}, nil
}

// Parse lexes src and drives the parse table to produce a CST, via whichever
// ParserBackend opts selects; table-driven (spec.md §4.4) is the default,
// with recursive-ascent (spec.md §4.5) available as an equivalent
// alternative engine over the same tables (lrvmc's --parser flag selects
// between them).
func (f *Frontend) Parse(src string, opts Options) (*ast.Node, error) {
	lexer := lex.New(src)

	var (
		root *cst.Node
		err  error
	)
	switch opts.Backend {
	case RecursiveAscent:
		root, err = parsergen.New(f.Table, f.G).Parse(lexer)
	default:
		root, err = parse.New(f.Table, f.G).Parse(lexer)
	}
	if err != nil {
		return nil, err
	}
	delegated := ast.RemoveDelegates(root)
	lw := ast.NewLowerer()
	return lw.Lower(delegated)
}

// Result is the product of a full source-to-bytecode compile.
type Result struct {
	Program *bytecode.Program
	Symbols *symtab.Table
}

// Compile parses src and generates a complete bytecode.Program, in one call
// (spec.md §1 "Pipeline": grammar → tables → parse → lower → codegen).
func (f *Frontend) Compile(src string, opts Options) (*Result, error) {
	root, err := f.Parse(src, opts)
	if err != nil {
		return nil, err
	}

	sym := symtab.New()
	for _, name := range opts.Externs {
		sym.DeclareExternal(name)
	}

	gen := codegen.New(opts.Codegen, sym)
	prog, err := gen.Generate(root)
	if err != nil {
		return nil, err
	}
	return &Result{Program: prog, Symbols: gen.Symtab()}, nil
}
