package nfa

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/jitregex/jitregex/internal/conv"
	"github.com/jitregex/jitregex/internal/sparse"
)

// StateID uniquely identifies an NFA state across every fragment built
// during a process's lifetime. The identifier is never reused, which makes
// it safe to merge two fragments' state tables without collision.
type StateID uint32

var nextStateID uint64

// newStateID returns a fresh, globally unique state identifier. Safe for
// concurrent use: the counter is the one resource Thompson construction
// shares across goroutines building different patterns at once.
func newStateID() StateID {
	return StateID(conv.Uint64ToUint32(atomic.AddUint64(&nextStateID, 1)))
}

// EdgeKind identifies what an Edge consumes to cross it.
type EdgeKind uint8

const (
	// Epsilon crosses without consuming input.
	Epsilon EdgeKind = iota
	// Any crosses on any single byte.
	Any
	// Byte crosses on exactly one specific byte value.
	Byte
)

func (k EdgeKind) String() string {
	switch k {
	case Epsilon:
		return "Epsilon"
	case Any:
		return "Any"
	case Byte:
		return "Byte"
	default:
		return "Unknown"
	}
}

// Edge is a single outbound transition from a State.
type Edge struct {
	Kind   EdgeKind
	Label  byte // valid only when Kind == Byte
	Target StateID
}

// State is an NFA node with an ordered list of outbound edges.
type State struct {
	ID    StateID
	Edges []Edge
}

func newState() *State {
	return &State{ID: newStateID()}
}

func (s *State) addEdge(e Edge) {
	s.Edges = append(s.Edges, e)
}

// NFA is a single-use fragment: a pair of owned states (start, end) over a
// shared table of reachable states, plus a display string describing the
// sub-pattern it was built from. Exactly one state, End, is accepting.
//
// Once passed to a combinator, an NFA must not be reused; the valid flag
// lets combinators detect and reject that misuse instead of silently
// operating on stale data.
type NFA struct {
	states  map[StateID]*State
	start   StateID
	end     StateID
	display string
	valid   bool

	// ids is every reachable state in ascending order and idx is its
	// inverse, giving each state a dense 0..len(ids)-1 position. Thompson
	// construction hands out StateIDs from a process-wide counter, so
	// they're never contiguous within a single fragment; this local
	// remapping is what lets epsilonClosure use a sparse.SparseSet
	// instead of a map for its visited-state tracking.
	ids []StateID
	idx map[StateID]uint32
}

// Start returns the fragment's single entry state.
func (n *NFA) Start() StateID { return n.start }

// End returns the fragment's single accepting state.
func (n *NFA) End() StateID { return n.end }

// Description returns the canonical textual form of the sub-pattern this
// fragment was built from.
func (n *NFA) Description() string { return n.display }

// Valid reports whether the fragment has not yet been consumed by a combinator.
func (n *NFA) Valid() bool { return n.valid }

// State looks up a state by ID within this fragment's reachable set.
// Returns nil if id isn't part of the fragment.
func (n *NFA) State(id StateID) *State { return n.states[id] }

// NumStates returns the number of states reachable within the fragment.
func (n *NFA) NumStates() int { return len(n.states) }

// StateIDs returns the fragment's state identifiers in ascending order.
func (n *NFA) StateIDs() []StateID { return n.ids }

// String returns a debug summary of the fragment.
func (n *NFA) String() string {
	return fmt.Sprintf("NFA{states: %d, start: %d, end: %d, valid: %v, display: %q}",
		len(n.states), n.start, n.end, n.valid, n.display)
}

func newFragment(states map[StateID]*State, start, end StateID, display string) *NFA {
	ids := make([]StateID, 0, len(states))
	for id := range states {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	idx := make(map[StateID]uint32, len(ids))
	for i, id := range ids {
		idx[id] = conv.IntToUint32(i)
	}
	return &NFA{states: states, start: start, end: end, display: display, valid: true, ids: ids, idx: idx}
}

// epsilonClosure returns the set of states reachable from seed without
// consuming input, including seed itself.
func (n *NFA) epsilonClosure(seed StateID) map[StateID]bool {
	visited := sparse.NewSparseSet(conv.IntToUint32(len(n.ids)))
	visited.Insert(n.idx[seed])
	stack := []StateID{seed}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := n.states[id]
		if s == nil {
			continue
		}
		for _, e := range s.Edges {
			if e.Kind != Epsilon {
				continue
			}
			di := n.idx[e.Target]
			if !visited.Contains(di) {
				visited.Insert(di)
				stack = append(stack, e.Target)
			}
		}
	}
	closure := make(map[StateID]bool, visited.Size())
	for _, di := range visited.Values() {
		closure[n.ids[di]] = true
	}
	return closure
}

// Accept reports whether s is in the language of the fragment, by direct
// NFA simulation rather than compilation. It's the reference semantics
// against which the DFA and compiled matchers are checked; it isn't used
// on the hot path of a loaded matcher.
func (n *NFA) Accept(s []byte) bool {
	current := n.epsilonClosure(n.start)
	for _, b := range s {
		next := map[StateID]bool{}
		for id := range current {
			st := n.states[id]
			if st == nil {
				continue
			}
			for _, e := range st.Edges {
				switch e.Kind {
				case Byte:
					if e.Label == b {
						for t := range n.epsilonClosure(e.Target) {
							next[t] = true
						}
					}
				case Any:
					for t := range n.epsilonClosure(e.Target) {
						next[t] = true
					}
				}
			}
		}
		current = next
		if len(current) == 0 {
			return false
		}
	}
	return current[n.end]
}

// DeepCopy clones every state reachable within the fragment, assigning
// each a fresh StateID; no state is shared between the original and the
// copy. DeepCopy does not consume n.
func (n *NFA) DeepCopy() *NFA {
	remap := make(map[StateID]StateID, len(n.states))
	for id := range n.states {
		remap[id] = newStateID()
	}
	states := make(map[StateID]*State, len(n.states))
	for id, s := range n.states {
		ns := &State{ID: remap[id]}
		ns.Edges = make([]Edge, len(s.Edges))
		for i, e := range s.Edges {
			ne := e
			ne.Target = remap[e.Target]
			ns.Edges[i] = ne
		}
		states[ns.ID] = ns
	}
	return newFragment(states, remap[n.start], remap[n.end], n.display)
}

func consumed(name string, args ...*NFA) error {
	for _, a := range args {
		if !a.valid {
			return &CombineError{Op: name, Err: ErrInvalidNFA}
		}
	}
	for i := 0; i < len(args); i++ {
		for j := i + 1; j < len(args); j++ {
			if args[i] == args[j] {
				return &CombineError{Op: name, Err: ErrDuplicateArgument}
			}
		}
	}
	return nil
}

func invalidateAll(args ...*NFA) {
	for _, a := range args {
		a.valid = false
	}
}

func mergeStates(frags ...*NFA) map[StateID]*State {
	merged := make(map[StateID]*State)
	for _, f := range frags {
		for id, s := range f.states {
			merged[id] = s
		}
	}
	return merged
}

// Empty returns a fragment accepting only the empty string.
func Empty() *NFA {
	start, end := newState(), newState()
	start.addEdge(Edge{Kind: Epsilon, Target: end.ID})
	return newFragment(map[StateID]*State{start.ID: start, end.ID: end}, start.ID, end.ID, `\E`)
}

// AnyByte returns a fragment matching exactly one byte, any value.
func AnyByte() *NFA {
	start, end := newState(), newState()
	start.addEdge(Edge{Kind: Any, Target: end.ID})
	return newFragment(map[StateID]*State{start.ID: start, end.ID: end}, start.ID, end.ID, ".")
}

// Symbol returns a fragment matching exactly the byte c.
func Symbol(c byte) *NFA {
	start, end := newState(), newState()
	start.addEdge(Edge{Kind: Byte, Label: c, Target: end.ID})
	disp := escapeByte(c)
	return newFragment(map[StateID]*State{start.ID: start, end.ID: end}, start.ID, end.ID, disp)
}

func escapeByte(c byte) string {
	if strings.IndexByte(`\^*()-+[]|?.`, c) >= 0 {
		return "\\" + string(c)
	}
	return string(c)
}

// CharSet returns a fragment matching exactly one byte out of chars. An
// empty chars yields a fragment with an unreachable accepting state.
// display is used verbatim as the fragment's Description.
func CharSet(chars []byte, display string) *NFA {
	if len(chars) == 0 {
		start, end := newState(), newState()
		return newFragment(map[StateID]*State{start.ID: start, end.ID: end}, start.ID, end.ID, display)
	}
	frags := make([]*NFA, len(chars))
	for i, c := range chars {
		frags[i] = Symbol(c)
	}
	u, err := unionFragments(frags)
	if err != nil {
		// frags are freshly built and distinct; unionFragments cannot fail here.
		panic(err)
	}
	u.display = display
	return u
}

// Concat folds x, y, ... left to right, threading an epsilon edge from
// each fragment's End to the next fragment's Start. It consumes every
// argument. len(frags) must be ≥ 1.
func Concat(frags ...*NFA) (*NFA, error) {
	if err := consumed("Concat", frags...); err != nil {
		return nil, err
	}
	if len(frags) == 1 {
		invalidateAll(frags...)
		return newFragment(frags[0].states, frags[0].start, frags[0].end, frags[0].display), nil
	}
	states := mergeStates(frags...)
	for i := 0; i < len(frags)-1; i++ {
		states[frags[i].end].addEdge(Edge{Kind: Epsilon, Target: frags[i+1].start})
	}
	var b strings.Builder
	for _, f := range frags {
		b.WriteString(f.display)
	}
	out := newFragment(states, frags[0].start, frags[len(frags)-1].end, b.String())
	invalidateAll(frags...)
	return out, nil
}

func unionFragments(frags []*NFA) (*NFA, error) {
	if err := consumed("Union", frags...); err != nil {
		return nil, err
	}
	if len(frags) == 1 {
		invalidateAll(frags...)
		return newFragment(frags[0].states, frags[0].start, frags[0].end, frags[0].display), nil
	}
	states := mergeStates(frags...)
	start, end := newState(), newState()
	states[start.ID] = start
	states[end.ID] = end
	for _, f := range frags {
		start.addEdge(Edge{Kind: Epsilon, Target: f.start})
		states[f.end].addEdge(Edge{Kind: Epsilon, Target: end.ID})
	}
	var b strings.Builder
	b.WriteByte('(')
	for i, f := range frags {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(f.display)
	}
	b.WriteByte(')')
	out := newFragment(states, start.ID, end.ID, b.String())
	invalidateAll(frags...)
	return out, nil
}

// Union returns the alternation of frags, consuming every argument.
func Union(frags ...*NFA) (*NFA, error) {
	return unionFragments(frags)
}

// Star returns the Kleene closure (zero or more repetitions) of a,
// consuming it.
func Star(a *NFA) (*NFA, error) {
	if err := consumed("Star", a); err != nil {
		return nil, err
	}
	states := mergeStates(a)
	start, end := newState(), newState()
	states[start.ID] = start
	states[end.ID] = end
	start.addEdge(Edge{Kind: Epsilon, Target: a.start})
	start.addEdge(Edge{Kind: Epsilon, Target: end.ID})
	states[a.end].addEdge(Edge{Kind: Epsilon, Target: a.start})
	states[a.end].addEdge(Edge{Kind: Epsilon, Target: end.ID})
	out := newFragment(states, start.ID, end.ID, "("+a.display+")*")
	invalidateAll(a)
	return out, nil
}

// Plus returns one-or-more repetitions of a, consuming it. It's built as
// concat(a, Star(deep_copy(a))) so the first repetition is mandatory.
func Plus(a *NFA) (*NFA, error) {
	if err := consumed("Plus", a); err != nil {
		return nil, err
	}
	cp := a.DeepCopy()
	star, err := Star(cp)
	if err != nil {
		return nil, err
	}
	out, err := Concat(a, star)
	if err != nil {
		return nil, err
	}
	out.display = "(" + a.display + ")+"
	return out, nil
}

// Opt returns zero-or-one repetitions of a, consuming it. It's built as
// union(a, Empty()).
func Opt(a *NFA) (*NFA, error) {
	if err := consumed("Opt", a); err != nil {
		return nil, err
	}
	disp := a.display
	out, err := Union(a, Empty())
	if err != nil {
		return nil, err
	}
	out.display = "(" + disp + ")?"
	return out, nil
}
