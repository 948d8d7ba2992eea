package vm

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mseida/lr1vm/internal/bytecode"
)

// DefaultExterns is the VM's built-in external-function table, grounded on
// the original implementation's src/vm/vm_extfuncs.cpp (spec.md §9
// "src/vm/vm_extfuncs.cpp external functions"): a print-like output
// function and a couple of small math/string helpers reachable only via
// EXTCALL. Output goes to os.Stdout; callers embedding a VM that need to
// capture it should replace m.Externs["print"] after construction.
func DefaultExterns() map[string]ExternFunc {
	return map[string]ExternFunc{
		"print":  printExtern(os.Stdout),
		"sqrt":   sqrtExtern,
		"strlen": strlenExtern,
	}
}

func printExtern(w io.Writer) ExternFunc {
	return func(args []Value) (Value, bool, error) {
		for _, a := range args {
			fmt.Fprint(w, toStr(a))
		}
		return Value{}, false, nil
	}
}

func sqrtExtern(args []Value) (Value, bool, error) {
	if len(args) != 1 {
		return Value{}, false, fmt.Errorf("sqrt expects 1 argument, got %d", len(args))
	}
	return realVal(math.Sqrt(toReal(args[0]))), true, nil
}

func strlenExtern(args []Value) (Value, bool, error) {
	if len(args) != 1 {
		return Value{}, false, fmt.Errorf("strlen expects 1 argument, got %d", len(args))
	}
	if args[0].Tag != bytecode.TagStr {
		return Value{}, false, fmt.Errorf("strlen expects a string argument, got %v", args[0].Tag)
	}
	return intVal(int64(len(args[0].S))), true, nil
}
