// Package dfa performs subset construction, turning an NFA fragment into a
// deterministic finite automaton whose states are named by the sorted set
// of NFA states they represent.
package dfa

import (
	"sort"
	"strconv"
	"strings"

	"github.com/jitregex/jitregex/nfa"
)

// Label is a DFA transition label: either an exact byte or the wildcard Any.
type Label struct {
	Any  bool
	Byte byte
}

// ByteLabel returns the label matching exactly b.
func ByteLabel(b byte) Label { return Label{Byte: b} }

// AnyLabel matches any single byte. DFA construction folds Any targets into
// every other label's target set, since a byte edge in the NFA can also be
// crossed via a coincident Any edge.
var AnyLabel = Label{Any: true}

// String renders the label for debugging.
func (l Label) String() string {
	if l.Any {
		return "Any"
	}
	return strconv.QuoteRune(rune(l.Byte))
}

// DFA is an immutable deterministic automaton produced by Build. State
// names are the canonical, sorted, comma-joined NFA state identifiers they
// represent; only states reachable from Start are present.
type DFA struct {
	Start  string
	states map[string]map[Label]string
	accept map[string]bool
}

// Transition returns the target state name for crossing b from name,
// preferring an exact-byte edge over an Any edge, and whether any edge matched.
func (d *DFA) Transition(name string, b byte) (string, bool) {
	edges := d.states[name]
	if edges == nil {
		return "", false
	}
	if t, ok := edges[ByteLabel(b)]; ok {
		return t, true
	}
	if t, ok := edges[AnyLabel]; ok {
		return t, true
	}
	return "", false
}

// Edges returns the transition map for a state, keyed by label. Callers
// must not mutate the returned map.
func (d *DFA) Edges(name string) map[Label]string { return d.states[name] }

// States returns every reachable state name.
func (d *DFA) States() []string {
	names := make([]string, 0, len(d.states))
	for name := range d.states {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAccepting reports whether name is an accepting state.
func (d *DFA) IsAccepting(name string) bool { return d.accept[name] }

// Accept reports whether s is in the DFA's language: repeated Transition
// from Start, accepting iff the final state is accepting.
func (d *DFA) Accept(s []byte) bool {
	cur := d.Start
	for _, b := range s {
		next, ok := d.Transition(cur, b)
		if !ok {
			return false
		}
		cur = next
	}
	return d.IsAccepting(cur)
}

// stateSet is a mutable working set of NFA state IDs used during construction.
type stateSet map[nfa.StateID]bool

func (s stateSet) clone() stateSet {
	cp := make(stateSet, len(s))
	for id := range s {
		cp[id] = true
	}
	return cp
}

func canonicalName(s stateSet) string {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// epsilonClosure returns every state reachable from seeds without
// consuming input, including the seeds themselves.
func epsilonClosure(n *nfa.NFA, seeds stateSet) stateSet {
	closure := seeds.clone()
	stack := make([]nfa.StateID, 0, len(seeds))
	for id := range seeds {
		stack = append(stack, id)
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		st := n.State(id)
		if st == nil {
			continue
		}
		for _, e := range st.Edges {
			if e.Kind != nfa.Epsilon {
				continue
			}
			if !closure[e.Target] {
				closure[e.Target] = true
				stack = append(stack, e.Target)
			}
		}
	}
	return closure
}

// nonEpsilonEdges computes, for every state in S, the label-wise union of
// non-epsilon targets (each already epsilon-closed), with Any targets
// folded into every other label's set per spec.
func nonEpsilonEdges(n *nfa.NFA, S stateSet) map[Label]stateSet {
	out := make(map[Label]stateSet)
	addTo := func(lbl Label, target nfa.StateID) {
		set, ok := out[lbl]
		if !ok {
			set = stateSet{}
			out[lbl] = set
		}
		for id := range epsilonClosure(n, stateSet{target: true}) {
			set[id] = true
		}
	}
	for id := range S {
		st := n.State(id)
		if st == nil {
			continue
		}
		for _, e := range st.Edges {
			switch e.Kind {
			case nfa.Byte:
				addTo(ByteLabel(e.Label), e.Target)
			case nfa.Any:
				addTo(AnyLabel, e.Target)
			}
		}
	}
	if anySet, ok := out[AnyLabel]; ok {
		for lbl, set := range out {
			if lbl == AnyLabel {
				continue
			}
			for id := range anySet {
				set[id] = true
			}
		}
	}
	return out
}

// Build performs subset construction over frag, the canonical form of the
// NFA: only states reachable from the start multistate are ever
// materialized, so no separate pruning pass is required.
func Build(frag *nfa.NFA) *DFA {
	start := epsilonClosure(frag, stateSet{frag.Start(): true})
	startName := canonicalName(start)

	states := map[string]map[Label]string{}
	accept := map[string]bool{}
	seen := map[string]stateSet{startName: start}
	worklist := []stateSet{start}

	for len(worklist) > 0 {
		S := worklist[0]
		worklist = worklist[1:]
		name := canonicalName(S)
		if _, done := states[name]; done {
			continue
		}
		if S[frag.End()] {
			accept[name] = true
		}
		edgeSets := nonEpsilonEdges(frag, S)
		trans := make(map[Label]string, len(edgeSets))
		for lbl, targetSet := range edgeSets {
			tname := canonicalName(targetSet)
			trans[lbl] = tname
			if _, ok := seen[tname]; !ok {
				seen[tname] = targetSet
				worklist = append(worklist, targetSet)
			}
		}
		states[name] = trans
	}

	return &DFA{Start: startName, states: states, accept: accept}
}
