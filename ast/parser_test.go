package ast

import "testing"

func TestParseLiteralsAndEscapes(t *testing.T) {
	cases := []struct {
		pattern string
		want    string
	}{
		{"", ""},
		{"a", "a"},
		{"ab", "ab"},
		{".", "."},
		{`\*`, `\*`},
		{`\n`, "n"},
	}
	for _, c := range cases {
		n, err := Parse(c.pattern)
		if err != nil {
			t.Fatalf("Parse(%q): unexpected error: %v", c.pattern, err)
		}
		if got := n.String(); got != c.want {
			t.Errorf("Parse(%q).String() = %q, want %q", c.pattern, got, c.want)
		}
	}
}

func TestParseUnionAndConcat(t *testing.T) {
	n, err := Parse("a|b|c")
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind != Union || len(n.Children) != 3 {
		t.Fatalf("got kind %v with %d children, want Union over 3 children", n.Kind, len(n.Children))
	}
}

func TestParseQuantifiers(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		kind    Kind
	}{
		{"a*", Star},
		{"a+", Plus},
		{"a?", Opt},
	} {
		n, err := Parse(tc.pattern)
		if err != nil {
			t.Fatal(err)
		}
		if n.Kind != tc.kind {
			t.Errorf("Parse(%q).Kind = %v, want %v", tc.pattern, n.Kind, tc.kind)
		}
	}
}

func TestParseCharSet(t *testing.T) {
	n, err := Parse("[a-c]")
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind != Set {
		t.Fatalf("got kind %v, want Set", n.Kind)
	}
	if string(n.Chars) != "abc" {
		t.Errorf("Chars = %q, want %q", n.Chars, "abc")
	}
	if n.Display != "[a-c]" {
		t.Errorf("Display = %q, want %q", n.Display, "[a-c]")
	}
}

func TestParseEmptySet(t *testing.T) {
	n, err := Parse("[]")
	if err != nil {
		t.Fatal(err)
	}
	if n.Kind != Set || len(n.Chars) != 0 {
		t.Fatalf("Parse([]) = %+v, want empty Set", n)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []string{
		"(",
		")",
		"a|",
		"|a",
		"a||b",
		"(|x)",
		"()",
		"[^a]",
		"[a-]",
		"[a",
		"*a",
		")a",
		`\`,
		"a)",
	}
	for _, pattern := range cases {
		if _, err := Parse(pattern); err == nil {
			t.Errorf("Parse(%q): expected error, got nil", pattern)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	patterns := []string{
		"", "a", "ab", "a|b", "a*", "a+", "a?", "(ab)*", "a.b", "[x-z]", `\*`, "a(bb|cc)*",
	}
	for _, p := range patterns {
		n, err := Parse(p)
		if err != nil {
			t.Fatalf("Parse(%q): %v", p, err)
		}
		redisplay := n.String()
		n2, err := Parse(redisplay)
		if err != nil {
			t.Fatalf("re-parsing canonical form %q of %q: %v", redisplay, p, err)
		}
		if n2.String() != redisplay {
			t.Errorf("round-trip mismatch for %q: %q -> %q -> %q", p, p, redisplay, n2.String())
		}
	}
}
