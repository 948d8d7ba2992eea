package parsetab

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// String renders t as a human-readable ACTION/GOTO table, grounded on the
// table dump format of the teacher's canonical-LR1 table printer: one row per
// state, terminal columns followed by nonterminal columns, built with
// rosed's table layout helper rather than hand-rolled column padding.
func (t *Table) String() string {
	header := append([]string{"st"}, append(append([]string{}, t.Terminals...), t.NonTerminals...)...)

	rows := [][]string{header}
	for s := 0; s < t.NumStates; s++ {
		row := make([]string, 0, len(header))
		row = append(row, fmt.Sprintf("%d", s))
		for i := range t.Terminals {
			row = append(row, cellString(t.Shift[s][i], t.Reduce[s][i]))
		}
		for i := range t.NonTerminals {
			row = append(row, gotoCellString(t.Jump[s][i]))
		}
		rows = append(rows, row)
	}

	return rosed.Edit("").
		InsertTableOpts(0, rows, 100, rosed.Options{
			TableHeaders: true,
		}).
		String()
}

func cellString(shift, reduce int) string {
	var parts []string
	if shift != ErrState {
		parts = append(parts, fmt.Sprintf("s%d", shift))
	}
	if reduce == Accept {
		parts = append(parts, "acc")
	} else if reduce != ErrState {
		parts = append(parts, fmt.Sprintf("r%d", reduce))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, "/")
}

func gotoCellString(goTo int) string {
	if goTo == ErrState {
		return ""
	}
	return fmt.Sprintf("%d", goTo)
}
