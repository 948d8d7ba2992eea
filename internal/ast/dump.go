package ast

import (
	"fmt"
	"strings"
)

// Dump renders the tree as indented text, in the spirit of the original
// implementation's ast_printer.h leveled dump, used by the CLI's --ast debug
// flag (outside the core's tested contract).
func (n *Node) Dump() string {
	var sb strings.Builder
	n.dump(&sb, 0)
	return sb.String()
}

func (n *Node) dump(sb *strings.Builder, depth int) {
	if n == nil {
		sb.WriteString(strings.Repeat("  ", depth))
		sb.WriteString("<nil>\n")
		return
	}
	prefix := strings.Repeat("  ", depth)
	switch n.Kind {
	case KindToken:
		fmt.Fprintf(sb, "%sToken(%s) :%s\n", prefix, n.Token.Tok, n.Type.Kind)
	case KindUnary:
		fmt.Fprintf(sb, "%sUnary(%s) :%s\n", prefix, n.Unary.Op, n.Type.Kind)
		n.Unary.Child.dump(sb, depth+1)
	case KindBinary:
		fmt.Fprintf(sb, "%sBinary(%s) :%s\n", prefix, n.Binary.Op, n.Type.Kind)
		n.Binary.Left.dump(sb, depth+1)
		n.Binary.Right.dump(sb, depth+1)
	case KindList:
		fmt.Fprintf(sb, "%sList(%d)\n", prefix, len(n.List.Children))
		for _, c := range n.List.Children {
			c.dump(sb, depth+1)
		}
	case KindCondition:
		fmt.Fprintf(sb, "%sCondition\n", prefix)
		n.Condition.Cond.dump(sb, depth+1)
		n.Condition.Then.dump(sb, depth+1)
		if n.Condition.Else != nil {
			n.Condition.Else.dump(sb, depth+1)
		}
	case KindLoop:
		fmt.Fprintf(sb, "%sLoop\n", prefix)
		n.Loop.Cond.dump(sb, depth+1)
		n.Loop.Body.dump(sb, depth+1)
	case KindFunc:
		fmt.Fprintf(sb, "%sFunc(%s, args=%s)\n", prefix, n.Func.Name, strings.Join(n.Func.Args, ","))
		n.Func.Body.dump(sb, depth+1)
	case KindFuncCall:
		fmt.Fprintf(sb, "%sFuncCall(%s)\n", prefix, n.FuncCall.Name)
		for _, a := range n.FuncCall.Args {
			a.dump(sb, depth+1)
		}
	case KindJump:
		fmt.Fprintf(sb, "%sJump(%s, depth=%d)\n", prefix, n.Jump.JKind, n.Jump.Depth)
		if n.Jump.Expr != nil {
			n.Jump.Expr.dump(sb, depth+1)
		}
	case KindDeclare:
		fmt.Fprintf(sb, "%sDeclare(external=%v, func=%v, %s)\n", prefix, n.Declare.IsExternal, n.Declare.IsFunc, strings.Join(n.Declare.Idents, ","))
	}
}
