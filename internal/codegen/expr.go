package codegen

import (
	"github.com/mseida/lr1vm/internal/ast"
	"github.com/mseida/lr1vm/internal/bytecode"
	"github.com/mseida/lr1vm/internal/icterr"
	"github.com/mseida/lr1vm/internal/lex"
)

// genExpr emits code that leaves exactly one value on the stack, and
// returns that value's derived type for the caller's cast/definition
// bookkeeping.
func (g *Generator) genExpr(n *ast.Node) (ast.ValueType, error) {
	switch n.Kind {
	case ast.KindToken:
		return g.genToken(n)
	case ast.KindUnary:
		return g.genUnary(n)
	case ast.KindBinary:
		return g.genBinary(n)
	case ast.KindFuncCall:
		return g.genCall(n)
	default:
		return ast.ValueType{}, icterr.Codegenf(n.Line, "%s is not a valid expression", n.Kind)
	}
}

func (g *Generator) genToken(n *ast.Node) (ast.ValueType, error) {
	tok := n.Token.Tok
	switch tok.Class {
	case lex.TokInt:
		g.emit(bytecode.Instr{Op: bytecode.PUSH, Operand: bytecode.IntOperand(tok.IntVal)})
		return ast.ValueType{Kind: ast.Int}, nil
	case lex.TokReal:
		g.emit(bytecode.Instr{Op: bytecode.PUSH, Operand: bytecode.RealOperand(tok.RealVal)})
		return ast.ValueType{Kind: ast.Real}, nil
	case lex.TokString:
		g.emit(bytecode.Instr{Op: bytecode.PUSH, Operand: bytecode.StrOperand(tok.StrVal)})
		return ast.ValueType{Kind: ast.Str}, nil
	case lex.TokIdent:
		entry, ok := g.sym.Lookup(g.curFunc, tok.StrVal)
		if !ok {
			return ast.ValueType{}, icterr.Codegenf(n.Line, "use of undefined identifier %q", tok.StrVal)
		}
		g.emit(bytecode.Instr{Op: bytecode.PUSH, Operand: bytecode.AddrOperand(entry.Base, int32(entry.Address))})
		g.emit(bytecode.Instr{Op: bytecode.DEREF})
		return ast.ValueType{Kind: entry.Type}, nil
	default:
		return ast.ValueType{}, icterr.Codegenf(n.Line, "unexpected token %s in expression position", tok)
	}
}

// genUnary implements spec.md §4.6 "Unary operators": "-x lowers to
// evaluation then USUB. Unary + is a no-op (NOP in binary mode)."
func (g *Generator) genUnary(n *ast.Node) (ast.ValueType, error) {
	typ, err := g.genExpr(n.Unary.Child)
	if err != nil {
		return ast.ValueType{}, err
	}
	switch n.Unary.Op {
	case "-":
		g.emit(bytecode.Instr{Op: bytecode.USUB})
	case "+":
		if g.opts.Mode == ModeBinary {
			g.emit(bytecode.Instr{Op: bytecode.NOP})
		}
	default:
		return ast.ValueType{}, icterr.Codegenf(n.Line, "unknown unary operator %q", n.Unary.Op)
	}
	return typ, nil
}

var binaryOps = map[string]bytecode.Op{
	"+": bytecode.ADD, "-": bytecode.SUB, "*": bytecode.MUL, "/": bytecode.DIV,
	"%": bytecode.MOD, "^": bytecode.POW,
	">": bytecode.GT, "<": bytecode.LT, ">=": bytecode.GEQU, "<=": bytecode.LEQU,
	"==": bytecode.EQU, "!=": bytecode.NEQU, "<>": bytecode.NEQU,
	"&&": bytecode.AND, "||": bytecode.OR,
}

// genBinary implements spec.md §4.6 "Implicit casts": each operand whose
// type differs from the binary node's derived result type is cast before
// the operator is emitted.
func (g *Generator) genBinary(n *ast.Node) (ast.ValueType, error) {
	b := n.Binary
	op, ok := binaryOps[b.Op]
	if !ok {
		return ast.ValueType{}, icterr.Codegenf(n.Line, "unknown binary operator %q", b.Op)
	}
	result := n.Type

	leftType, err := g.genExpr(b.Left)
	if err != nil {
		return ast.ValueType{}, err
	}
	g.castTo(leftType, result)

	rightType, err := g.genExpr(b.Right)
	if err != nil {
		return ast.ValueType{}, err
	}
	g.castTo(rightType, result)

	g.emit(bytecode.Instr{Op: op})
	return result, nil
}

// castTo emits TOI/TOF/TOS if actual's kind differs from want's kind and
// want names a concrete type (spec.md §4.6 "Implicit casts").
func (g *Generator) castTo(actual, want ast.ValueType) {
	if actual.Kind == want.Kind || want.Kind == ast.Unknown {
		return
	}
	switch want.Kind {
	case ast.Int:
		g.emit(bytecode.Instr{Op: bytecode.TOI})
	case ast.Real:
		g.emit(bytecode.Instr{Op: bytecode.TOF})
	case ast.Str:
		g.emit(bytecode.Instr{Op: bytecode.TOS})
	}
}

// genCall implements spec.md §4.6 "Calls". Arguments are evaluated left to
// right; external callees emit an inline string operand and an argument
// count (EXTCALL pops the count, then that many arguments), while
// internal callees always go through the deferred-patch list so forward
// and backward references are resolved identically.
func (g *Generator) genCall(n *ast.Node) (ast.ValueType, error) {
	call := n.FuncCall
	for _, a := range call.Args {
		if _, err := g.genExpr(a); err != nil {
			return ast.ValueType{}, err
		}
	}

	if g.sym.IsExternal(call.Name) {
		g.emit(bytecode.Instr{Op: bytecode.PUSH, Operand: bytecode.IntOperand(int64(len(call.Args)))})
		g.emit(bytecode.Instr{Op: bytecode.EXTCALL, Operand: bytecode.StrOperand(call.Name)})
		return ast.ValueType{Kind: ast.Unknown}, nil
	}

	pos := g.emit(bytecode.Instr{Op: bytecode.CALL})
	g.pending = append(g.pending, pendingCall{callee: call.Name, instrPos: pos, argCount: len(call.Args), line: n.Line})
	return ast.ValueType{Kind: ast.Unknown}, nil
}
