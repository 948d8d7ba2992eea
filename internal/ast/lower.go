package ast

import (
	"github.com/mseida/lr1vm/internal/cst"
	"github.com/mseida/lr1vm/internal/icterr"
)

// RemoveDelegates performs the CST→AST delegate-removal pass of spec.md
// §4.4: post-order, any DELEGATE node (a unit-production passthrough with no
// bound semantic rule) is replaced by its single child.
func RemoveDelegates(n *cst.Node) *cst.Node {
	if n.Terminal {
		return n
	}
	for i, c := range n.Children {
		n.Children[i] = RemoveDelegates(c)
	}
	if n.Delegate() {
		return n.Children[0]
	}
	return n
}

// Lowerer turns a delegate-free CST into the typed AST, assigning each node
// a process-local id from its own counter rather than a package-global one
// (spec.md §9 "Global mutable state": "No hidden singletons").
type Lowerer struct {
	nextID int
}

// NewLowerer returns a ready-to-use Lowerer.
func NewLowerer() *Lowerer {
	return &Lowerer{}
}

func (lw *Lowerer) newNode(ruleNumber, line int, kind Kind) *Node {
	lw.nextID++
	return &Node{ID: lw.nextID, RuleNumber: ruleNumber, Line: line, Kind: kind}
}

// Lower converts n (already passed through RemoveDelegates) into an AST.
func (lw *Lowerer) Lower(n *cst.Node) (*Node, error) {
	if n.Terminal {
		return nil, icterr.Codegenf(n.Token.Line, "lowering reached a bare terminal %s with no semantic rule to interpret it", n.Symbol)
	}

	switch n.SemRule {
	case SemDropSemi:
		return lw.Lower(n.Children[0])

	case SemStmtListEmpty:
		node := lw.newNode(n.RuleNumber, 0, KindList)
		node.List = &ListNode{}
		return node, nil

	case SemStmtListSingle:
		child, err := lw.Lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		node := lw.newNode(n.RuleNumber, child.Line, KindList)
		node.List = &ListNode{Children: []*Node{child}}
		return node, nil

	case SemStmtListAppend:
		list, err := lw.Lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		item, err := lw.Lower(n.Children[1])
		if err != nil {
			return nil, err
		}
		list.List.Children = append(list.List.Children, item)
		return list, nil

	case SemBlock:
		return lw.Lower(n.Children[1])

	case SemIfNoElse:
		cond, err := lw.Lower(n.Children[2])
		if err != nil {
			return nil, err
		}
		then, err := lw.Lower(n.Children[4])
		if err != nil {
			return nil, err
		}
		node := lw.newNode(n.RuleNumber, cond.Line, KindCondition)
		node.Condition = &ConditionNode{Cond: cond, Then: then}
		return node, nil

	case SemIfElse:
		cond, err := lw.Lower(n.Children[2])
		if err != nil {
			return nil, err
		}
		then, err := lw.Lower(n.Children[4])
		if err != nil {
			return nil, err
		}
		els, err := lw.Lower(n.Children[6])
		if err != nil {
			return nil, err
		}
		node := lw.newNode(n.RuleNumber, cond.Line, KindCondition)
		node.Condition = &ConditionNode{Cond: cond, Then: then, Else: els}
		return node, nil

	case SemLoop:
		cond, err := lw.Lower(n.Children[2])
		if err != nil {
			return nil, err
		}
		body, err := lw.Lower(n.Children[4])
		if err != nil {
			return nil, err
		}
		node := lw.newNode(n.RuleNumber, cond.Line, KindLoop)
		node.Loop = &LoopNode{Cond: cond, Body: body}
		return node, nil

	case SemAssign:
		name := n.Children[0].Token
		rhs, err := lw.Lower(n.Children[2])
		if err != nil {
			return nil, err
		}
		ref := lw.newNode(n.Children[0].RuleNumber, name.Line, KindToken)
		ref.Token = &TokenNode{Tok: name}
		ref.Type = ValueType{Kind: Unknown}
		node := lw.newNode(n.RuleNumber, name.Line, KindBinary)
		node.Binary = &BinaryNode{Op: "=", Left: ref, Right: rhs}
		node.Type = ValueType{Kind: Unknown}
		return node, nil

	case SemFuncDef:
		name := n.Children[1].Token
		args := identList(n.Children[3])
		body, err := lw.Lower(n.Children[5])
		if err != nil {
			return nil, err
		}
		node := lw.newNode(n.RuleNumber, name.Line, KindFunc)
		node.Func = &FuncNode{Name: name.StrVal, Args: args, Body: body}
		return node, nil

	case SemFuncCall:
		name := n.Children[0].Token
		args, err := lw.lowerExprList(n.Children[2])
		if err != nil {
			return nil, err
		}
		node := lw.newNode(n.RuleNumber, name.Line, KindFuncCall)
		node.FuncCall = &FuncCallNode{Name: name.StrVal, Args: args}
		return node, nil

	case SemReturnExpr:
		expr, err := lw.Lower(n.Children[1])
		if err != nil {
			return nil, err
		}
		node := lw.newNode(n.RuleNumber, expr.Line, KindJump)
		node.Jump = &JumpNode{JKind: JumpReturn, Expr: expr}
		return node, nil

	case SemReturnVoid:
		node := lw.newNode(n.RuleNumber, n.Children[0].Token.Line, KindJump)
		node.Jump = &JumpNode{JKind: JumpReturn}
		return node, nil

	case SemBreak:
		node := lw.newNode(n.RuleNumber, n.Children[0].Token.Line, KindJump)
		node.Jump = &JumpNode{JKind: JumpBreak}
		return node, nil

	case SemBreakN:
		node := lw.newNode(n.RuleNumber, n.Children[0].Token.Line, KindJump)
		node.Jump = &JumpNode{JKind: JumpBreak, Depth: int(n.Children[1].Token.IntVal)}
		return node, nil

	case SemContinue:
		node := lw.newNode(n.RuleNumber, n.Children[0].Token.Line, KindJump)
		node.Jump = &JumpNode{JKind: JumpContinue}
		return node, nil

	case SemContinueN:
		node := lw.newNode(n.RuleNumber, n.Children[0].Token.Line, KindJump)
		node.Jump = &JumpNode{JKind: JumpContinue, Depth: int(n.Children[1].Token.IntVal)}
		return node, nil

	case SemDeclareExtern:
		idents := identList(n.Children[1])
		node := lw.newNode(n.RuleNumber, n.Children[0].Token.Line, KindDeclare)
		node.Declare = &DeclareNode{IsExternal: true, IsFunc: true, Idents: idents}
		return node, nil

	case SemParenExpr:
		return lw.Lower(n.Children[1])

	case SemBinaryOp:
		left, err := lw.Lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		right, err := lw.Lower(n.Children[2])
		if err != nil {
			return nil, err
		}
		op := n.Children[1].Token.Class
		node := lw.newNode(n.RuleNumber, left.Line, KindBinary)
		node.Binary = &BinaryNode{Op: op, Left: left, Right: right}
		node.Type = BinaryResultType(op, left.Type, right.Type)
		return node, nil

	case SemUnaryOp:
		child, err := lw.Lower(n.Children[1])
		if err != nil {
			return nil, err
		}
		op := n.Children[0].Token.Class
		node := lw.newNode(n.RuleNumber, child.Line, KindUnary)
		node.Unary = &UnaryNode{Op: op, Child: child}
		node.Type = child.Type
		return node, nil

	case SemLiteralInt:
		tok := n.Children[0].Token
		node := lw.newNode(n.RuleNumber, tok.Line, KindToken)
		node.Token = &TokenNode{Tok: tok}
		node.Type = ValueType{Kind: Int}
		return node, nil

	case SemLiteralReal:
		tok := n.Children[0].Token
		node := lw.newNode(n.RuleNumber, tok.Line, KindToken)
		node.Token = &TokenNode{Tok: tok}
		node.Type = ValueType{Kind: Real}
		return node, nil

	case SemLiteralString:
		tok := n.Children[0].Token
		node := lw.newNode(n.RuleNumber, tok.Line, KindToken)
		node.Token = &TokenNode{Tok: tok}
		node.Type = ValueType{Kind: Str}
		return node, nil

	case SemIdentRef:
		tok := n.Children[0].Token
		node := lw.newNode(n.RuleNumber, tok.Line, KindToken)
		node.Token = &TokenNode{Tok: tok}
		node.Type = ValueType{Kind: Unknown}
		return node, nil

	default:
		return nil, icterr.Codegenf(0, "no semantic rule registered for production %s (rule %d, semrule %d)", n.Symbol, n.RuleNumber, n.SemRule)
	}
}

// lowerExprList flattens a right-recursion-free arglist/paramlist CST
// subtree (already delegate-free) into an ordered slice of lowered
// expressions, left to right.
func (lw *Lowerer) lowerExprList(n *cst.Node) ([]*Node, error) {
	switch n.SemRule {
	case SemArgListEmpty:
		return nil, nil
	case SemArgListSingle:
		e, err := lw.Lower(n.Children[0])
		if err != nil {
			return nil, err
		}
		return []*Node{e}, nil
	case SemArgListAppend:
		list, err := lw.lowerExprList(n.Children[0])
		if err != nil {
			return nil, err
		}
		e, err := lw.Lower(n.Children[2])
		if err != nil {
			return nil, err
		}
		return append(list, e), nil
	default:
		return nil, icterr.Codegenf(0, "unexpected semrule %d in argument list", n.SemRule)
	}
}

// identList flattens a paramlist/identlist CST subtree into an ordered slice
// of identifier lexemes.
func identList(n *cst.Node) []string {
	switch n.SemRule {
	case SemParamListEmpty:
		return nil
	case SemParamListSingle, SemIdentListSingle:
		return []string{n.Children[0].Token.StrVal}
	case SemParamListAppend, SemIdentListAppend:
		return append(identList(n.Children[0]), n.Children[2].Token.StrVal)
	default:
		return nil
	}
}
