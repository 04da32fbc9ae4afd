package nfa

import "github.com/jitregex/jitregex/ast"

// Build performs Thompson construction over a normalized AST, returning a
// single fragment whose Accept method implements the pattern's language.
func Build(n *ast.Node) (*NFA, error) {
	switch n.Kind {
	case ast.Empty:
		return Empty(), nil
	case ast.Any:
		return AnyByte(), nil
	case ast.Symbol:
		return Symbol(n.Char), nil
	case ast.Set:
		return CharSet(n.Chars, n.Display), nil
	case ast.Concat:
		frags, err := buildChildren(n.Children)
		if err != nil {
			return nil, err
		}
		return Concat(frags...)
	case ast.Union:
		frags, err := buildChildren(n.Children)
		if err != nil {
			return nil, err
		}
		return Union(frags...)
	case ast.Star:
		child, err := Build(n.Children[0])
		if err != nil {
			return nil, err
		}
		return Star(child)
	case ast.Plus:
		child, err := Build(n.Children[0])
		if err != nil {
			return nil, err
		}
		return Plus(child)
	case ast.Opt:
		child, err := Build(n.Children[0])
		if err != nil {
			return nil, err
		}
		return Opt(child)
	default:
		panic("nfa: unknown AST kind")
	}
}

func buildChildren(children []*ast.Node) ([]*NFA, error) {
	frags := make([]*NFA, len(children))
	for i, c := range children {
		f, err := Build(c)
		if err != nil {
			return nil, err
		}
		frags[i] = f
	}
	return frags, nil
}
