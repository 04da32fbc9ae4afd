package ir

import (
	"sort"
	"strconv"

	"github.com/jitregex/jitregex/dfa"
)

// Emit translates a DFA into an IR program implementing its match
// procedure: fn(string, length) -> int, nonzero iff the DFA accepts.
//
// States are renamed to short stringified integers for readability; the
// renaming is 1-to-1 with the DFA's state names. The start state's block
// is emitted first, followed by the remaining states in a stable (sorted
// by original name) order.
func Emit(d *dfa.DFA) *Program {
	names := orderedStates(d)
	short := renameStates(names)

	instrs := []Instr{Set(VarIndex, -1)}
	for _, name := range names {
		instrs = append(instrs, emitState(d, name, short)...)
	}

	return &Program{
		Vars: map[string]VarType{
			VarString: Pointer,
			VarLength: Long,
			VarIndex:  Long,
			VarChar:   Byte,
		},
		Instrs: instrs,
	}
}

// orderedStates returns every DFA state name, start first, then the rest
// in a stable sorted order.
func orderedStates(d *dfa.DFA) []string {
	rest := make([]string, 0, len(d.States()))
	for _, s := range d.States() {
		if s != d.Start {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	return append([]string{d.Start}, rest...)
}

// renameStates maps each DFA state name to a short stringified integer,
// assigned in the given order.
func renameStates(names []string) map[string]string {
	short := make(map[string]string, len(names))
	for i, name := range names {
		short[name] = strconv.Itoa(i)
	}
	return short
}

func emitState(d *dfa.DFA, name string, short map[string]string) []Instr {
	state := short[name]
	loadState := state + "_load"

	block := []Instr{
		Label(state),
		Inc(VarIndex),
		CmpName(VarIndex, VarLength),
		JumpNe(loadState),
		Ret(d.IsAccepting(name)),
		Label(loadState),
	}

	edges := d.Edges(name)
	if len(edges) > 0 {
		block = append(block, MoveIndexed(VarChar, VarString, VarIndex))
	}

	var byteLabels []dfa.Label
	hasAny := false
	var anyTarget string
	for lbl, target := range edges {
		if lbl.Any {
			hasAny = true
			anyTarget = target
			continue
		}
		byteLabels = append(byteLabels, lbl)
	}
	sort.Slice(byteLabels, func(i, j int) bool { return byteLabels[i].Byte < byteLabels[j].Byte })

	for _, lbl := range byteLabels {
		target := edges[lbl]
		block = append(block, CmpValue(VarChar, lbl.Byte), JumpEq(short[target]))
	}
	if hasAny {
		block = append(block, Jump(short[anyTarget]))
	} else {
		block = append(block, Ret(false))
	}
	return block
}
