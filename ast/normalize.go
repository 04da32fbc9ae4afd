package ast

// Normalize flattens nested Concat/Union nodes and collapses redundant
// nested quantifiers. The returned tree shares no mutable state with n.
//
// After normalization, no Concat contains a Concat child and no Union
// contains a Union child; Concat/Union nodes have at least two children
// once they have more than one operand (singleton concatenations and
// unions never arise from the parser, which always returns the lone
// child directly).
func Normalize(n *Node) *Node {
	return collapseQuantifiers(flatten(n.DeepCopy()))
}

// flatten splices any child sharing its parent's tag into the parent's
// child list, recursively, for both Concat and Union.
func flatten(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case Concat, Union:
		var out []*Node
		for _, c := range n.Children {
			fc := flatten(c)
			if fc.Kind == n.Kind {
				out = append(out, fc.Children...)
			} else {
				out = append(out, fc)
			}
		}
		n.Children = out
		return n
	case Star, Plus, Opt:
		n.Children[0] = flatten(n.Children[0])
		return n
	default:
		return n
	}
}

// collapseQuantifiers rewrites nested quantifiers over the same operand
// into their simplified form, per:
//
//	Star(Star x)  -> Star x       Star(Plus x)  -> Star x
//	Plus(Plus x)  -> Plus x       Plus(Star x)  -> Star x
//	Opt(Opt x)    -> Opt x        Opt(Star x)   -> Star x
//	Star(Opt x)   -> Star x
func collapseQuantifiers(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case Concat, Union:
		for i, c := range n.Children {
			n.Children[i] = collapseQuantifiers(c)
		}
		return n
	case Star, Plus, Opt:
		child := collapseQuantifiers(n.Children[0])
		n.Children[0] = child
		return collapseQuantifierPair(n.Kind, child)
	default:
		return n
	}
}

// collapseQuantifierPair decides the collapsed node for an outer
// quantifier outerKind wrapping an inner node that may itself be a
// quantifier.
func collapseQuantifierPair(outerKind Kind, inner *Node) *Node {
	if inner.Kind != Star && inner.Kind != Plus && inner.Kind != Opt {
		return wrapQuant(outerKind, inner)
	}
	grandchild := inner.Children[0]
	switch {
	case outerKind == Star:
		// Star absorbs anything: Star(Star x) = Star(Plus x) = Star(Opt x) = Star x
		return NewStar(grandchild)
	case outerKind == Plus && inner.Kind == Plus:
		return NewPlus(grandchild)
	case outerKind == Plus && inner.Kind == Star:
		return NewStar(grandchild)
	case outerKind == Plus && inner.Kind == Opt:
		return NewStar(grandchild)
	case outerKind == Opt && inner.Kind == Opt:
		return NewOpt(grandchild)
	case outerKind == Opt && inner.Kind == Star:
		return NewStar(grandchild)
	case outerKind == Opt && inner.Kind == Plus:
		return NewStar(grandchild)
	default:
		return wrapQuant(outerKind, inner)
	}
}

func wrapQuant(kind Kind, child *Node) *Node {
	switch kind {
	case Star:
		return NewStar(child)
	case Plus:
		return NewPlus(child)
	default:
		return NewOpt(child)
	}
}
