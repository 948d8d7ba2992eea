package codegen

import (
	"github.com/mseida/lr1vm/internal/ast"
	"github.com/mseida/lr1vm/internal/bytecode"
	"github.com/mseida/lr1vm/internal/icterr"
	"github.com/mseida/lr1vm/internal/lex"
	"github.com/mseida/lr1vm/internal/symtab"
)

// genStmt emits code for a statement-position node. Bare expression
// statements leave their value on the stack (spec.md's instruction set has
// no discard/pop opcode) — the end-to-end scenarios of
// spec.md §8 rely on exactly this for the final statement's value to remain
// on top at HALT.
func (g *Generator) genStmt(n *ast.Node) error {
	switch n.Kind {
	case ast.KindList:
		for _, c := range n.List.Children {
			if err := g.genStmt(c); err != nil {
				return err
			}
		}
		return nil

	case ast.KindBinary:
		if n.Binary.Op == "=" {
			return g.genAssign(n)
		}
		_, err := g.genExpr(n)
		return err

	case ast.KindCondition:
		return g.genIf(n)

	case ast.KindLoop:
		return g.genLoop(n)

	case ast.KindFunc:
		return g.genFuncDef(n)

	case ast.KindDeclare:
		for _, name := range n.Declare.Idents {
			g.sym.DeclareExternal(name)
		}
		return nil

	case ast.KindJump:
		return g.genJump(n)

	default:
		_, err := g.genExpr(n)
		return err
	}
}

// genAssign implements spec.md §4.6 "Assignment lowers to evaluation of
// rhs, address push of lhs, WRMEM" — the contract §9 open question (iii)
// pins explicitly.
func (g *Generator) genAssign(n *ast.Node) error {
	rhsType, err := g.genExpr(n.Binary.Right)
	if err != nil {
		return err
	}
	lhs := n.Binary.Left
	if lhs.Kind != ast.KindToken || lhs.Token.Tok.Class != lex.TokIdent {
		return icterr.Codegenf(n.Line, "left side of assignment must be an identifier")
	}
	name := lhs.Token.Tok.StrVal
	entry, ok := g.sym.Lookup(g.curFunc, name)
	if !ok {
		entry = g.define(name, rhsType.Kind)
	}
	g.emit(bytecode.Instr{Op: bytecode.PUSH, Operand: bytecode.AddrOperand(entry.Base, int32(entry.Address))})
	g.emit(bytecode.Instr{Op: bytecode.WRMEM})
	return nil
}

// define allocates a new variable in the current scope (spec.md §4.6
// "Identifier resolution": "On first occurrence of a name in an assignment
// context the identifier is defined at a new offset in the current scope").
func (g *Generator) define(name string, typ ast.ValueKind) symtab.Entry {
	if g.curFunc == "" {
		return g.sym.DefineGlobal(name, typ)
	}
	return g.sym.DefineLocal(g.curFunc, name, typ)
}

// genIf implements spec.md §4.6 "Conditionals".
func (g *Generator) genIf(n *ast.Node) error {
	c := n.Condition
	if _, err := g.genExpr(c.Cond); err != nil {
		return err
	}
	g.emit(bytecode.Instr{Op: bytecode.NOT})
	condJump := g.emit(bytecode.Instr{Op: bytecode.JMPCND})

	if err := g.genStmt(c.Then); err != nil {
		return err
	}

	if c.Else == nil {
		g.patch(condJump, g.pos())
		return nil
	}

	skipElse := g.emit(bytecode.Instr{Op: bytecode.JMP})
	g.patch(condJump, g.pos())
	if err := g.genStmt(c.Else); err != nil {
		return err
	}
	g.patch(skipElse, g.pos())
	return nil
}

// genLoop implements spec.md §4.6 "Loops".
func (g *Generator) genLoop(n *ast.Node) error {
	l := n.Loop
	label := &loopLabel{begin: g.pos()}
	g.loops = append(g.loops, label)
	defer func() { g.loops = g.loops[:len(g.loops)-1] }()

	if _, err := g.genExpr(l.Cond); err != nil {
		return err
	}
	g.emit(bytecode.Instr{Op: bytecode.NOT})
	endJump := g.emit(bytecode.Instr{Op: bytecode.JMPCND})

	// l.Body may be a bare expression statement, which leaves a value on
	// the stack with nothing to discard it (spec.md's ISA has no POP) — a
	// loop whose body never assigns leaks one cell per iteration.
	if err := g.genStmt(l.Body); err != nil {
		return err
	}

	back := g.emit(bytecode.Instr{Op: bytecode.JMP})
	g.patch(back, label.begin)

	loopEnd := g.pos()
	g.patch(endJump, loopEnd)
	for _, pos := range label.breaks {
		g.patch(pos, loopEnd)
	}
	for _, pos := range label.continues {
		g.patch(pos, label.begin)
	}
	return nil
}

// genFuncDef implements spec.md §4.6 "Functions".
func (g *Generator) genFuncDef(n *ast.Node) error {
	f := n.Func
	if g.curFunc != "" {
		return icterr.Codegenf(n.Line, "nested function definitions are not allowed (%q defined inside %q)", f.Name, g.curFunc)
	}

	skipBody := g.emit(bytecode.Instr{Op: bytecode.JMP})
	entryPos := g.pos()
	g.sym.DefineFunction(f.Name, entryPos, len(f.Args))

	g.curFunc = f.Name
	savedReturns := g.returns
	g.returns = nil

	nArgs := len(f.Args)
	for i, argName := range f.Args {
		idx := nArgs - i // 1-based displacement from the saved-BP slot; see DESIGN.md.
		g.sym.DefineArg(f.Name, argName, idx)
	}

	if err := g.genStmt(f.Body); err != nil {
		return err
	}

	epilogue := g.pos()
	g.emit(bytecode.Instr{Op: bytecode.PUSH, Operand: bytecode.IntOperand(int64(nArgs))})
	g.emit(bytecode.Instr{Op: bytecode.RET})

	for _, pos := range g.returns {
		g.patch(pos, epilogue)
	}
	g.returns = savedReturns
	g.curFunc = ""

	g.patch(skipBody, g.pos())
	return nil
}

// genJump implements spec.md §4.6 "Functions" (return) and "Loops" (break/
// continue).
func (g *Generator) genJump(n *ast.Node) error {
	j := n.Jump
	switch j.JKind {
	case ast.JumpReturn:
		if g.curFunc == "" {
			return icterr.Codegenf(n.Line, "return outside of a function")
		}
		if j.Expr != nil {
			if _, err := g.genExpr(j.Expr); err != nil {
				return err
			}
		}
		pos := g.emit(bytecode.Instr{Op: bytecode.JMP})
		g.returns = append(g.returns, pos)
		return nil

	case ast.JumpBreak, ast.JumpContinue:
		if len(g.loops) == 0 {
			return icterr.Codegenf(n.Line, "%s outside of a loop", j.JKind)
		}
		depth := j.Depth
		if depth < 0 {
			depth = 0
		}
		if depth > len(g.loops)-1 {
			depth = len(g.loops) - 1
		}
		target := g.loops[len(g.loops)-1-depth]
		pos := g.emit(bytecode.Instr{Op: bytecode.JMP})
		if j.JKind == ast.JumpBreak {
			target.breaks = append(target.breaks, pos)
		} else {
			target.continues = append(target.continues, pos)
		}
		return nil

	default:
		return icterr.Codegenf(n.Line, "unknown jump kind %v", j.JKind)
	}
}
