// Package literal recognizes the special case where a pattern's entire
// language is a small, finite set of exact strings, with no repetition
// or wildcard anywhere in the tree. Patterns like "cat|dog|bird" reduce
// this way; "a*" or "[ab]+" don't, and neither does an alternation nested
// below the top level, such as "a(b|c)".
package literal

import "github.com/jitregex/jitregex/ast"

// ExtractAlternatives returns the finite set of exact byte strings n
// matches, in the order they appear, when n is expressible as a plain
// alternation of literal concatenations. ok is false otherwise: any Star,
// Plus, Opt, Any, or Set with other than one byte anywhere in the tree
// disqualifies it, and so does a Union below the top level even when its
// language is finite (as in "a(b|c)").
func ExtractAlternatives(n *ast.Node) (literals [][]byte, ok bool) {
	if n == nil {
		return nil, false
	}
	if n.Kind == ast.Union {
		lits := make([][]byte, 0, len(n.Children))
		for _, c := range n.Children {
			lit, ok := literalOf(c)
			if !ok {
				return nil, false
			}
			lits = append(lits, lit)
		}
		return lits, true
	}
	lit, ok := literalOf(n)
	if !ok {
		return nil, false
	}
	return [][]byte{lit}, true
}

// literalOf returns the single exact string n matches, if n's language
// contains exactly one string.
func literalOf(n *ast.Node) ([]byte, bool) {
	switch n.Kind {
	case ast.Empty:
		return []byte{}, true
	case ast.Symbol:
		return []byte{n.Char}, true
	case ast.Set:
		if len(n.Chars) == 1 {
			return []byte{n.Chars[0]}, true
		}
		return nil, false
	case ast.Concat:
		var out []byte
		for _, c := range n.Children {
			part, ok := literalOf(c)
			if !ok {
				return nil, false
			}
			out = append(out, part...)
		}
		return out, true
	default:
		return nil, false
	}
}
