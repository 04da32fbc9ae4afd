// Package ast defines the abstract syntax tree produced by the regex
// parser and consumed by the NFA builder.
package ast

import "strings"

// Kind identifies the variant of an AST node.
type Kind uint8

const (
	// Empty accepts only the empty string.
	Empty Kind = iota
	// Any matches exactly one byte, regardless of its value.
	Any
	// Symbol matches exactly one specific byte.
	Symbol
	// Set matches exactly one byte from a finite, possibly empty, multiset.
	Set
	// Concat is an n-ary concatenation of its children, in order.
	Concat
	// Union is an n-ary alternation of its children.
	Union
	// Star is a Kleene star (zero or more repetitions) of its one child.
	Star
	// Plus is a Kleene plus (one or more repetitions) of its one child.
	Plus
	// Opt is zero-or-one repetition of its one child.
	Opt
)

// specialChars is the fixed set of bytes with syntactic meaning in a pattern.
const specialChars = `\^*()-+[]|?.`

// Node is a tagged-variant AST node.
//
// Leaf kinds (Empty, Any, Symbol, Set) carry no Children. Interior kinds
// (Concat, Union, Star, Plus, Opt) carry Children; Star/Plus/Opt always
// have exactly one child, while Concat/Union have two or more once the
// tree has been normalized (see the ast package's Normalize function).
type Node struct {
	Kind Kind

	// Char is the matched byte, valid only for Symbol.
	Char byte

	// Chars is the accepted multiset of bytes, valid only for Set.
	Chars []byte

	// Display preserves the original bracketed source text of a Set node,
	// e.g. "[a-z]", so the node can be redisplayed exactly as parsed.
	Display string

	// Children holds the operands of interior nodes.
	Children []*Node
}

// NewEmpty returns a leaf node accepting only the empty string.
func NewEmpty() *Node { return &Node{Kind: Empty} }

// NewAny returns a leaf node matching any single byte.
func NewAny() *Node { return &Node{Kind: Any} }

// NewSymbol returns a leaf node matching exactly the byte c.
func NewSymbol(c byte) *Node { return &Node{Kind: Symbol, Char: c} }

// NewSet returns a leaf node matching one byte from chars, displayed as disp.
func NewSet(chars []byte, disp string) *Node {
	cp := make([]byte, len(chars))
	copy(cp, chars)
	return &Node{Kind: Set, Chars: cp, Display: disp}
}

// NewConcat returns a Concat node over children, in order.
func NewConcat(children ...*Node) *Node {
	return &Node{Kind: Concat, Children: children}
}

// NewUnion returns a Union node over children.
func NewUnion(children ...*Node) *Node {
	return &Node{Kind: Union, Children: children}
}

// NewStar returns a Kleene star over child.
func NewStar(child *Node) *Node { return &Node{Kind: Star, Children: []*Node{child}} }

// NewPlus returns a Kleene plus over child.
func NewPlus(child *Node) *Node { return &Node{Kind: Plus, Children: []*Node{child}} }

// NewOpt returns a zero-or-one quantifier over child.
func NewOpt(child *Node) *Node { return &Node{Kind: Opt, Children: []*Node{child}} }

// EscapeSymbol returns c's canonical one-or-two-byte textual form: c itself
// if it has no syntactic meaning, or a backslash-escaped form otherwise.
func EscapeSymbol(c byte) string {
	if strings.IndexByte(specialChars, c) >= 0 {
		return "\\" + string(c)
	}
	return string(c)
}

// String returns the canonical textual redisplay of the node, suitable for
// re-parsing into an AST with identical accepted language.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case Empty:
		return ""
	case Any:
		return "."
	case Symbol:
		return EscapeSymbol(n.Char)
	case Set:
		if n.Display != "" {
			return n.Display
		}
		return "[]"
	case Concat:
		var b strings.Builder
		for _, c := range n.Children {
			b.WriteString(c.String())
		}
		return b.String()
	case Union:
		var b strings.Builder
		b.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				b.WriteByte('|')
			}
			b.WriteString(c.String())
		}
		b.WriteByte(')')
		return b.String()
	case Star:
		return "(" + n.Children[0].String() + ")*"
	case Plus:
		return "(" + n.Children[0].String() + ")+"
	case Opt:
		return "(" + n.Children[0].String() + ")?"
	default:
		return ""
	}
}

// DeepCopy returns a structurally identical node sharing no mutable state
// with n.
func (n *Node) DeepCopy() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Kind: n.Kind, Char: n.Char, Display: n.Display}
	if n.Chars != nil {
		cp.Chars = append([]byte(nil), n.Chars...)
	}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			cp.Children[i] = c.DeepCopy()
		}
	}
	return cp
}
