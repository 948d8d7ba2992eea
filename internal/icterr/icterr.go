// Package icterr defines the error taxonomy shared by every stage of the
// pipeline: grammar analysis, automaton/table construction, parsing, code
// generation, and the VM. Each kind is a small struct carrying whatever
// context that stage can offer (state id, line range, opcode name) plus an
// optional wrapped cause, in the style of the teacher repo's tqerrors
// package.
package icterr

import "fmt"

// Kind identifies which stage of the pipeline an error came from, so callers
// can do errors.Is/As style checks without parsing message text.
type Kind int

const (
	Grammar Kind = iota
	Conflict
	Parse
	Type
	Codegen
	VM
)

func (k Kind) String() string {
	switch k {
	case Grammar:
		return "GrammarError"
	case Conflict:
		return "ConflictError"
	case Parse:
		return "ParseError"
	case Type:
		return "TypeError"
	case Codegen:
		return "CodegenError"
	case VM:
		return "VMError"
	default:
		return "Error"
	}
}

// Error is the concrete error type returned by every stage. Line is <= 0 when
// no source line is known for the failure.
type Error struct {
	kind  Kind
	msg   string
	Line  int
	wrap  error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.kind, e.Line, e.msg)
	}
	return fmt.Sprintf("%s: %s", e.kind, e.msg)
}

func (e *Error) Unwrap() error {
	return e.wrap
}

// Kind returns the pipeline stage that produced the error.
func (e *Error) Kind() Kind {
	return e.kind
}

func newf(kind Kind, line int, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), Line: line}
}

func wrapf(kind Kind, line int, cause error, format string, args ...interface{}) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...), Line: line, wrap: cause}
}

// Grammarf reports a missing FIRST/FOLLOW entry or an undefined semantic rule
// for a table cell.
func Grammarf(format string, args ...interface{}) error {
	return newf(Grammar, 0, format, args...)
}

// Conflictf reports an unresolved shift/reduce conflict or any reduce/reduce
// conflict found during table emission.
func Conflictf(format string, args ...interface{}) error {
	return newf(Conflict, 0, format, args...)
}

// Parsef reports an undefined action, a double-defined action, or input
// underflow encountered by the table-driven parser, citing the current
// token's line when known.
func Parsef(line int, format string, args ...interface{}) error {
	return newf(Parse, line, format, args...)
}

// Typef reports arithmetic on incompatible variants or a binary-not of a
// non-integer, citing the AST line range when known.
func Typef(line int, format string, args ...interface{}) error {
	return newf(Type, line, format, args...)
}

// Codegenf reports a nested function, a return outside a function, a
// break/continue outside a loop, an undefined callee, or an arity mismatch.
func Codegenf(line int, format string, args ...interface{}) error {
	return newf(Codegen, line, format, args...)
}

// VMf reports an unknown opcode, an out-of-bounds address, an unknown
// external callee, or a pop on an empty stack region, surfacing the failing
// IP.
func VMf(ip int, format string, args ...interface{}) error {
	return newf(VM, 0, format+fmt.Sprintf(" (at ip=%d)", ip), args...)
}

// Wrap attaches cause to a new error of the given kind and line.
func Wrap(kind Kind, line int, cause error, format string, args ...interface{}) error {
	return wrapf(kind, line, cause, format, args...)
}
