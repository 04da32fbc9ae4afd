package prefilter

import (
	"testing"

	"github.com/jitregex/jitregex/ast"
)

func parse(t *testing.T, pattern string) *ast.Node {
	t.Helper()
	n, err := ast.Parse(pattern)
	if err != nil {
		t.Fatalf("ast.Parse(%q): %v", pattern, err)
	}
	return ast.Normalize(n)
}

func TestBuildAndAcceptUnionOfLiterals(t *testing.T) {
	pf, ok := Build(parse(t, "cat|dog|bird"))
	if !ok {
		t.Fatal("expected a prefilter to be built for a union of literals")
	}
	cases := map[string]bool{
		"cat": true, "dog": true, "bird": true,
		"ca": false, "catdog": false, "cats": false, "": false,
	}
	for s, want := range cases {
		if got := pf.Accept([]byte(s)); got != want {
			t.Errorf("Accept(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestBuildRejectsNonLiteralPattern(t *testing.T) {
	if _, ok := Build(parse(t, "a*")); ok {
		t.Error("Build should refuse a pattern with repetition")
	}
}

func TestBuildRejectsEmptyAlternative(t *testing.T) {
	// "cat|" is itself a ParseError (an empty alternation branch), so it
	// can never reach Build through ast.Parse. Construct the AST directly
	// to exercise a union with a genuinely empty-string branch, such as
	// the normalized form of a pattern like "cat|a?" restricted to its
	// zero-repetition branch.
	n := ast.NewUnion(
		ast.NewConcat(ast.NewSymbol('c'), ast.NewSymbol('a'), ast.NewSymbol('t')),
		ast.NewEmpty(),
	)
	if _, ok := Build(n); ok {
		t.Error("Build should refuse a literal set containing the empty string")
	}
}
