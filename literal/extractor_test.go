package literal

import (
	"bytes"
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

func TestExtractAlternativesSingleLiteral(t *testing.T) {
	lits, ok := ExtractAlternatives(parse(t, "abc"))
	if !ok {
		t.Fatal("expected a plain literal to be extractable")
	}
	if len(lits) != 1 || !bytes.Equal(lits[0], []byte("abc")) {
		t.Errorf("got %v, want [[abc]]", lits)
	}
}

func TestExtractAlternativesUnion(t *testing.T) {
	lits, ok := ExtractAlternatives(parse(t, "cat|dog|bird"))
	if !ok {
		t.Fatal("expected a union of literals to be extractable")
	}
	want := []string{"cat", "dog", "bird"}
	if len(lits) != len(want) {
		t.Fatalf("got %d literals, want %d", len(lits), len(want))
	}
	for i, w := range want {
		if !bytes.Equal(lits[i], []byte(w)) {
			t.Errorf("literal %d = %q, want %q", i, lits[i], w)
		}
	}
}

func TestExtractAlternativesSingleByteSet(t *testing.T) {
	lits, ok := ExtractAlternatives(parse(t, "[a]"))
	if !ok {
		t.Fatal("expected a single-byte set to reduce to a literal")
	}
	if len(lits) != 1 || !bytes.Equal(lits[0], []byte("a")) {
		t.Errorf("got %v, want [[a]]", lits)
	}
}

func TestExtractAlternativesRejectsRepetition(t *testing.T) {
	for _, pattern := range []string{"a*", "a+", "a?", ".", "[ab]", "(cat|dog)*"} {
		if _, ok := ExtractAlternatives(parse(t, pattern)); ok {
			t.Errorf("ExtractAlternatives(%q) should not reduce to a finite literal set", pattern)
		}
	}
}

func TestExtractAlternativesRejectsMixedUnion(t *testing.T) {
	if _, ok := ExtractAlternatives(parse(t, "cat|a*")); ok {
		t.Error("a union with one non-literal branch must not be extractable")
	}
}
