package grammar

import "github.com/mseida/lr1vm/internal/ast"

// precedence levels for the sample expression grammar, lowest first. Based
// on the worked example in the original implementation's
// src/examples/expr_prec.cpp ("+/- left, */ left higher, ^ right,
// highest"), extended with the comparison and logical operators this
// language's statement grammar also needs.
const (
	precOrOr = iota + 1
	precAndAnd
	precCompare
	precAdd
	precMul
	precPow
	precUnary
)

// unaryMinusTerminal and unaryPlusTerminal are precedence-only terminals:
// they never appear on a production's rhs and the lexer never emits them.
// They exist solely so unary "-"/"+" productions can carry a
// %prec-equivalent override (grammar.CFG.SetRulePrecedence) distinct from
// the binary "+"/"-" operators that share the same lexeme.
const (
	unaryMinusTerminal = "UMINUS"
	unaryPlusTerminal  = "UPLUS"
)

// Sample returns the default grammar for the imperative scripting language:
// statements (blocks, if/else, loop/while, function definitions, calls,
// assignment, return/break/continue, extern declarations) over an
// expression grammar disambiguated entirely by declared operator
// precedence/associativity (spec.md §4.3 step 2), in the classic
// yacc-expression-grammar style. The returned grammar is not yet augmented;
// pass it to automaton.BuildCanonicalLR1.
func Sample() *CFG {
	g := NewCFG()

	g.AddTerm("if", "'if'")
	g.AddTerm("else", "'else'")
	g.AddTerm("loop", "'loop'")
	g.AddTerm("while", "'while'")
	g.AddTerm("func", "'func'")
	g.AddTerm("extern", "'extern'")
	g.AddTerm("return", "'return'")
	g.AddTerm("break", "'break'")
	g.AddTerm("continue", "'continue'")
	g.AddTerm("int", "integer literal")
	g.AddTerm("real", "real literal")
	g.AddTerm("string", "string literal")
	g.AddTerm("identifier", "identifier")
	g.AddTerm("(", "'('")
	g.AddTerm(")", "')'")
	g.AddTerm("{", "'{'")
	g.AddTerm("}", "'}'")
	g.AddTerm(",", "','")
	g.AddTerm(";", "';'")

	g.AddTermPrec("||", "'||'", precOrOr, AssocLeft)
	g.AddTermPrec("&&", "'&&'", precAndAnd, AssocLeft)
	for _, cmp := range []string{"==", "!=", "<>", ">", "<", ">=", "<="} {
		g.AddTermPrec(cmp, "'"+cmp+"'", precCompare, AssocLeft)
	}
	g.AddTermPrec("+", "'+'", precAdd, AssocLeft)
	g.AddTermPrec("-", "'-'", precAdd, AssocLeft)
	g.AddTermPrec("*", "'*'", precMul, AssocLeft)
	g.AddTermPrec("/", "'/'", precMul, AssocLeft)
	g.AddTermPrec("%", "'%'", precMul, AssocLeft)
	g.AddTermPrec("^", "'^'", precPow, AssocRight)
	g.AddTermPrec("=", "'='", NoPrecedence, AssocNone)
	g.AddTermPrec(unaryMinusTerminal, "unary '-'", precUnary, AssocRight)
	g.AddTermPrec(unaryPlusTerminal, "unary '+'", precUnary, AssocRight)

	g.AddRuleSem("program", []Production{{"stmtlist"}}, []int{-1})

	g.AddRuleSem("stmtlist", []Production{
		{Epsilon},
		{"stmt"},
		{"stmtlist", "stmt"},
	}, []int{ast.SemStmtListEmpty, ast.SemStmtListSingle, ast.SemStmtListAppend})

	g.AddRuleSem("stmt", []Production{
		{"expr", ";"},
		{"assign", ";"},
		{"if_stmt"},
		{"loop_stmt"},
		{"func_def"},
		{"jump_stmt", ";"},
		{"declare_stmt", ";"},
		{"block"},
	}, []int{ast.SemDropSemi, ast.SemDropSemi, -1, -1, -1, ast.SemDropSemi, ast.SemDropSemi, -1})

	g.AddRuleSem("block", []Production{{"{", "stmtlist", "}"}}, []int{ast.SemBlock})

	g.AddRuleSem("if_stmt", []Production{
		{"if", "(", "expr", ")", "block"},
		{"if", "(", "expr", ")", "block", "else", "block"},
	}, []int{ast.SemIfNoElse, ast.SemIfElse})
	// both branches are braced blocks, so "else" never follows a complete
	// if_stmt and this grammar has no dangling-else conflict; the shift-else
	// rule in DefaultResolvers is never consulted when building its table.

	g.AddRuleSem("loop_stmt", []Production{
		{"loop", "(", "expr", ")", "block"},
		{"while", "(", "expr", ")", "block"},
	}, []int{ast.SemLoop, ast.SemLoop})

	g.AddRuleSem("assign", []Production{{"identifier", "=", "expr"}}, []int{ast.SemAssign})

	g.AddRuleSem("func_def", []Production{{"func", "identifier", "(", "paramlist", ")", "block"}}, []int{ast.SemFuncDef})

	g.AddRuleSem("paramlist", []Production{
		{Epsilon},
		{"identifier"},
		{"paramlist", ",", "identifier"},
	}, []int{ast.SemParamListEmpty, ast.SemParamListSingle, ast.SemParamListAppend})

	g.AddRuleSem("func_call", []Production{{"identifier", "(", "arglist", ")"}}, []int{ast.SemFuncCall})

	g.AddRuleSem("arglist", []Production{
		{Epsilon},
		{"expr"},
		{"arglist", ",", "expr"},
	}, []int{ast.SemArgListEmpty, ast.SemArgListSingle, ast.SemArgListAppend})

	g.AddRuleSem("jump_stmt", []Production{
		{"return", "expr"},
		{"return"},
		{"break"},
		{"break", "int"},
		{"continue"},
		{"continue", "int"},
	}, []int{
		ast.SemReturnExpr, ast.SemReturnVoid,
		ast.SemBreak, ast.SemBreakN,
		ast.SemContinue, ast.SemContinueN,
	})

	g.AddRuleSem("declare_stmt", []Production{{"extern", "identlist"}}, []int{ast.SemDeclareExtern})

	g.AddRuleSem("identlist", []Production{
		{"identifier"},
		{"identlist", ",", "identifier"},
	}, []int{ast.SemIdentListSingle, ast.SemIdentListAppend})

	g.AddRuleSem("expr", []Production{
		{"expr", "||", "expr"},
		{"expr", "&&", "expr"},
		{"expr", "==", "expr"},
		{"expr", "!=", "expr"},
		{"expr", "<>", "expr"},
		{"expr", ">", "expr"},
		{"expr", "<", "expr"},
		{"expr", ">=", "expr"},
		{"expr", "<=", "expr"},
		{"expr", "+", "expr"},
		{"expr", "-", "expr"},
		{"expr", "*", "expr"},
		{"expr", "/", "expr"},
		{"expr", "%", "expr"},
		{"expr", "^", "expr"},
		{"-", "expr"},
		{"+", "expr"},
		{"(", "expr", ")"},
		{"int"},
		{"real"},
		{"string"},
		{"identifier"},
		{"func_call"},
	}, []int{
		ast.SemBinaryOp, ast.SemBinaryOp, ast.SemBinaryOp, ast.SemBinaryOp, ast.SemBinaryOp,
		ast.SemBinaryOp, ast.SemBinaryOp, ast.SemBinaryOp, ast.SemBinaryOp,
		ast.SemBinaryOp, ast.SemBinaryOp, ast.SemBinaryOp, ast.SemBinaryOp, ast.SemBinaryOp,
		ast.SemBinaryOp,
		ast.SemUnaryOp, ast.SemUnaryOp,
		ast.SemParenExpr,
		ast.SemLiteralInt, ast.SemLiteralReal, ast.SemLiteralString, ast.SemIdentRef,
		-1,
	})
	// unary "-"/"+" are productions 15/16 (0-based) of "expr": bind tighter
	// than any binary operator, including "^".
	g.SetRulePrecedence("expr", 15, unaryMinusTerminal)
	g.SetRulePrecedence("expr", 16, unaryPlusTerminal)

	g.SetStart("program")
	return g
}

// DefaultResolvers is the explicit conflict-resolver list for Sample's
// grammar (spec.md §4.3 step 1): a dangling-else conflict on "if_stmt" is
// resolved by forcing a shift of "else", so else binds to the nearest
// unmatched if, grounded on the original implementation's
// tests/conflicts.cpp fixture. Sample's if_stmt branches are braced blocks,
// so its own table has no such conflict and the rule never fires there.
func DefaultResolvers() []ResolverSpec {
	return []ResolverSpec{
		{Key: "if_stmt", Lookahead: "else", ForceShift: true},
	}
}

// ResolverSpec mirrors parsetab.ResolverRule's shape without importing the
// parsetab package (which itself imports grammar); internal/compile
// translates a slice of these into parsetab.ResolverRule values.
type ResolverSpec struct {
	Key        string
	Lookahead  string
	ForceShift bool
}
