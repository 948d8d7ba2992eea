package parsetab

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
)

// persistedTable is the on-disk shape of a Table: a structured literal (text)
// format per spec.md §6 "Persisted parse tables", expressed as TOML so the
// driver can load it back verbatim with BurntSushi/toml, the teacher's own
// structured-config library.
type persistedTable struct {
	NumStates    int             `toml:"num_states"`
	Terminals    []string        `toml:"terminals"`
	NonTerminals []string        `toml:"nonterminals"`
	RHSLen       []int           `toml:"rhs_lengths"`
	Start        int             `toml:"start_state"`
	ErrSentinel  int             `toml:"err_sentinel"`
	AcceptValue  int             `toml:"accept_sentinel"`
	Shift        [][]int         `toml:"shift"`
	Reduce       [][]int         `toml:"reduce"`
	Jump         [][]int         `toml:"jump"`
}

// Save renders t as the persisted TOML document described in spec.md §6.
func Save(t *Table) ([]byte, error) {
	p := persistedTable{
		NumStates:    t.NumStates,
		Terminals:    t.Terminals,
		NonTerminals: t.NonTerminals,
		RHSLen:       t.RHSLen,
		Start:        t.Start,
		ErrSentinel:  ErrState,
		AcceptValue:  Accept,
		Shift:        t.Shift,
		Reduce:       t.Reduce,
		Jump:         t.Jump,
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(p); err != nil {
		return nil, fmt.Errorf("encode parse table: %w", err)
	}
	return buf.Bytes(), nil
}

// Load parses data (as produced by Save) back into a Table. The round-trip
// law of spec.md §8 requires Load(Save(t)) to have identical shift/reduce/
// jump/index contents to t.
func Load(data []byte) (*Table, error) {
	var p persistedTable
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode parse table: %w", err)
	}
	if p.ErrSentinel != ErrState || p.AcceptValue != Accept {
		return nil, fmt.Errorf("parse table uses incompatible sentinel values (err=%d accept=%d)", p.ErrSentinel, p.AcceptValue)
	}

	t := &Table{
		NumStates:    p.NumStates,
		Terminals:    p.Terminals,
		NonTerminals: p.NonTerminals,
		RHSLen:       p.RHSLen,
		Start:        p.Start,
		TermIndex:    map[string]int{},
		NonTermIndex: map[string]int{},
		Shift:        p.Shift,
		Reduce:       p.Reduce,
		Jump:         p.Jump,
	}
	for i, id := range t.Terminals {
		t.TermIndex[id] = i
	}
	for i, id := range t.NonTerminals {
		t.NonTermIndex[id] = i
	}
	return t, nil
}
