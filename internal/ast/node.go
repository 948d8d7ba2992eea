// Package ast is the typed AST described by spec.md §3 "AST node": a tagged
// variant over Token/Unary/Binary/List/Condition/Loop/Func/FuncCall/Jump/
// Declare, each node carrying an id, a source rule number, an optional line
// range, and a derived value type. Grounded on the teacher's
// internal/tunascript astNode{fn, flag, value} pattern: one struct per kind,
// referenced from a common Node by a pointer field that is non-nil only for
// the active kind, dispatched with a Kind tag rather than an interface, so
// coverage is exhaustive and switch-checkable.
package ast

import (
	"github.com/mseida/lr1vm/internal/lex"
	"github.com/mseida/lr1vm/internal/regs"
)

// Kind tags which variant of Node is populated.
type Kind int

const (
	KindToken Kind = iota
	KindUnary
	KindBinary
	KindList
	KindCondition
	KindLoop
	KindFunc
	KindFuncCall
	KindJump
	KindDeclare
)

func (k Kind) String() string {
	switch k {
	case KindToken:
		return "Token"
	case KindUnary:
		return "Unary"
	case KindBinary:
		return "Binary"
	case KindList:
		return "List"
	case KindCondition:
		return "Condition"
	case KindLoop:
		return "Loop"
	case KindFunc:
		return "Func"
	case KindFuncCall:
		return "FuncCall"
	case KindJump:
		return "Jump"
	case KindDeclare:
		return "Declare"
	default:
		return "?"
	}
}

// ValueKind is the derived value-type lattice of spec.md §3.
type ValueKind int

const (
	Unknown ValueKind = iota
	Int
	Real
	Bool
	Str
	Address
)

func (v ValueKind) String() string {
	switch v {
	case Int:
		return "int"
	case Real:
		return "real"
	case Bool:
		return "bool"
	case Str:
		return "str"
	case Address:
		return "address"
	default:
		return "unknown"
	}
}

// ValueType is a full derived type: a ValueKind, plus the base register when
// Kind is Address (the "address variants" of spec.md §3).
type ValueType struct {
	Kind ValueKind
	Base regs.Base
}

// JumpKind is the variant of a Jump node.
type JumpKind int

const (
	JumpReturn JumpKind = iota
	JumpBreak
	JumpContinue
)

func (k JumpKind) String() string {
	switch k {
	case JumpReturn:
		return "return"
	case JumpBreak:
		return "break"
	case JumpContinue:
		return "continue"
	default:
		return "?"
	}
}

// Node is one AST node. Exactly one of the kind-specific pointer fields is
// non-nil, matching Kind.
type Node struct {
	ID         int
	RuleNumber int
	Line       int
	Type       ValueType

	Kind Kind

	Token     *TokenNode
	Unary     *UnaryNode
	Binary    *BinaryNode
	List      *ListNode
	Condition *ConditionNode
	Loop      *LoopNode
	Func      *FuncNode
	FuncCall  *FuncCallNode
	Jump      *JumpNode
	Declare   *DeclareNode
}

// TokenNode is a leaf: a literal or identifier reference, carrying the
// lexer's own literal payload.
type TokenNode struct {
	Tok lex.Token
}

// UnaryNode is a prefix operator applied to a single operand.
type UnaryNode struct {
	Op    string
	Child *Node
}

// BinaryNode is an infix operator applied to two operands, or an assignment
// (Op == "=") of Right into the lvalue Left.
type BinaryNode struct {
	Op    string
	Left  *Node
	Right *Node
}

// ListNode is an ordered sequence of statements (or, for FuncCall/Func
// argument lists lowered elsewhere, expressions).
type ListNode struct {
	Children []*Node
}

// ConditionNode is an if/else; Else is nil when there is no else-branch.
type ConditionNode struct {
	Cond *Node
	Then *Node
	Else *Node
}

// LoopNode is a while-style loop: evaluate Cond before each iteration of
// Body.
type LoopNode struct {
	Cond *Node
	Body *Node
}

// FuncNode is a function definition. Nested function definitions are
// rejected by codegen (spec.md §4.6 "Functions").
type FuncNode struct {
	Name string
	Args []string
	Body *Node
}

// FuncCallNode is a call site; Name is resolved against the symbol table or
// the external-function table at codegen time.
type FuncCallNode struct {
	Name string
	Args []*Node
}

// JumpNode is a return/break/continue. Expr is non-nil only for
// return-with-value. Depth is the 0-based enclosing-loop index for
// break/continue (0 = innermost), clamped to the loop-nesting depth at
// codegen time.
type JumpNode struct {
	JKind JumpKind
	Expr  *Node
	Depth int
}

// DeclareNode declares one or more names as external (host) functions
// available to EXTCALL.
type DeclareNode struct {
	IsExternal bool
	IsFunc     bool
	Idents     []string
}
