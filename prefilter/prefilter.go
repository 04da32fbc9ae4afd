// Package prefilter accelerates whole-string acceptance testing for the
// narrow but common case where a pattern's language is a finite set of
// exact literals (see the literal package). For those patterns, testing
// whether an input is accepted never needs to touch the DFA, VM, or
// JIT-compiled matcher at all: an Aho-Corasick automaton over the
// literal set answers it directly.
//
// This is deliberately not a substring or leftmost-match search
// facility: a Prefilter only ever answers "does the whole input equal
// one of these literals", matching the engine's whole-string Accept
// semantics rather than re-introducing find/search behavior.
package prefilter

import (
	ac "github.com/coregx/ahocorasick"

	"github.com/jitregex/jitregex/ast"
	"github.com/jitregex/jitregex/literal"
)

// Prefilter answers whole-string acceptance against a fixed literal set
// using a prebuilt Aho-Corasick automaton.
type Prefilter struct {
	matcher *ac.Matcher
}

// Build constructs a Prefilter for n's language when n reduces to a
// finite set of literal alternatives. ok is false when it doesn't, in
// which case the caller should fall back to the DFA/VM/JIT path.
func Build(n *ast.Node) (*Prefilter, bool) {
	lits, ok := literal.ExtractAlternatives(n)
	if !ok || len(lits) == 0 {
		return nil, false
	}

	b := ac.NewBuilder()
	for _, lit := range lits {
		if len(lit) == 0 {
			// The empty string can't be told apart from "no match yet" by
			// a start/end span check in Accept; let the DFA handle it.
			return nil, false
		}
		b.AddPattern(lit)
	}
	m, err := b.Build()
	if err != nil {
		return nil, false
	}
	return &Prefilter{matcher: m}, true
}

// Accept reports whether s is exactly one of the pattern's literal
// alternatives: an Aho-Corasick match that starts at 0 and spans all of s.
func (p *Prefilter) Accept(s []byte) bool {
	if len(s) == 0 {
		return false
	}
	match, found := p.matcher.Find(s, 0)
	return found && match.Start == 0 && match.End == len(s)
}
