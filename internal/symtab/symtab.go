// Package symtab is the per-scope address layout of spec.md §3 "Symbol
// table entry" and §4.6 "Identifier resolution": offsets assigned on first
// occurrence in an assignment context, scoped by name as
// "function_name/local_name" or bare "name" for globals.
//
// The VM's memory image (internal/vm) is a slice of tagged Value cells
// rather than raw bytes (spec.md §9 open question (i)/(iii); see DESIGN.md),
// so "size(type)" in the offset-layout contract is realized here as exactly
// one cell regardless of declared type — a string variable and an int
// variable both occupy one Value slot, since the tag travels with the cell.
package symtab

import (
	"github.com/mseida/lr1vm/internal/ast"
	"github.com/mseida/lr1vm/internal/icterr"
	"github.com/mseida/lr1vm/internal/regs"
)

// savedRegisterCells is the number of cells a call frame reserves for the
// saved BP and saved IP before any local variable (spec.md §4.7 "Call frame
// layout"), and therefore the initial value of local_top for a function
// scope (spec.md §4.6 "Identifier resolution").
const savedRegisterCells = 2

// Entry is one symbol table entry (spec.md §3).
type Entry struct {
	Name     string
	Address  int
	Base     regs.Base
	Type     ast.ValueKind
	IsFunc   bool
	ArgCount int
}

// Table is the two-region (global / per-function) symbol table.
type Table struct {
	globals   map[string]Entry
	globalTop int

	funcs     map[string]map[string]Entry
	localTops map[string]int

	externs map[string]bool
}

// New returns an empty, ready-to-use Table.
func New() *Table {
	return &Table{
		globals:   map[string]Entry{},
		funcs:     map[string]map[string]Entry{},
		localTops: map[string]int{},
		externs:   map[string]bool{},
	}
}

// DefineGlobal allocates a new global variable slot, or returns the
// existing entry if name is already defined.
func (t *Table) DefineGlobal(name string, typ ast.ValueKind) Entry {
	if e, ok := t.globals[name]; ok {
		return e
	}
	e := Entry{Name: name, Address: -t.globalTop, Base: regs.GBP, Type: typ}
	t.globalTop++
	t.globals[name] = e
	return e
}

// DefineLocal allocates a new local variable slot within funcName, or
// returns the existing entry if already defined in that function's scope.
func (t *Table) DefineLocal(funcName, name string, typ ast.ValueKind) Entry {
	scope := t.funcScope(funcName)
	if e, ok := scope[name]; ok {
		return e
	}
	top := t.localTops[funcName]
	e := Entry{Name: name, Address: -top, Base: regs.BP, Type: typ}
	t.localTops[funcName] = top + 1
	scope[name] = e
	return e
}

// DefineArg installs argName as the idx'th (1-based) argument of funcName,
// addressed via BP_ARG (spec.md §4.6 "Functions": "Install each argument
// name with base register BP_ARG and an index (1-based from the saved-BP
// slot)").
func (t *Table) DefineArg(funcName, argName string, idx int) Entry {
	scope := t.funcScope(funcName)
	e := Entry{Name: argName, Address: idx, Base: regs.BPArg, Type: ast.Unknown}
	scope[argName] = e
	return e
}

// DefineFunction registers funcName's entry stream position and arg count.
// Address holds the absolute bytecode stream offset of the function body;
// codegen computes an IP-relative value from it at each call site.
func (t *Table) DefineFunction(funcName string, entryPos, argCount int) Entry {
	t.funcScope(funcName)
	if _, ok := t.localTops[funcName]; !ok {
		t.localTops[funcName] = savedRegisterCells
	}
	e := Entry{Name: funcName, Address: entryPos, Base: regs.IP, IsFunc: true, ArgCount: argCount}
	t.globals[funcName] = e
	return e
}

// DeclareExternal marks name as an external (host) function available to
// EXTCALL (spec.md §4.6 "Calls").
func (t *Table) DeclareExternal(name string) {
	t.externs[name] = true
}

// IsExternal reports whether name was declared external.
func (t *Table) IsExternal(name string) bool {
	return t.externs[name]
}

// Lookup resolves name within funcName's scope, falling back to globals,
// per spec.md §3's "function_name/local_name or bare name" scoping rule.
func (t *Table) Lookup(funcName, name string) (Entry, bool) {
	if funcName != "" {
		if scope, ok := t.funcs[funcName]; ok {
			if e, ok := scope[name]; ok {
				return e, true
			}
		}
	}
	e, ok := t.globals[name]
	return e, ok
}

// Function returns the registered Entry for a defined function name.
func (t *Table) Function(name string) (Entry, bool) {
	e, ok := t.globals[name]
	if !ok || !e.IsFunc {
		return Entry{}, false
	}
	return e, true
}

// PatchFunctionAddress updates a previously registered function's entry
// stream position, used when a call site was resolved before codegen
// reached the callee's definition.
func (t *Table) PatchFunctionAddress(funcName string, entryPos int) error {
	e, ok := t.globals[funcName]
	if !ok {
		return icterr.Codegenf(0, "cannot patch address of undefined function %q", funcName)
	}
	e.Address = entryPos
	t.globals[funcName] = e
	return nil
}

func (t *Table) funcScope(funcName string) map[string]Entry {
	scope, ok := t.funcs[funcName]
	if !ok {
		scope = map[string]Entry{}
		t.funcs[funcName] = scope
		if _, ok := t.localTops[funcName]; !ok {
			t.localTops[funcName] = savedRegisterCells
		}
	}
	return scope
}
