package jitregex

import "testing"

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		wantErr bool
	}{
		{"simple literal", "hello", false},
		{"alternation", "foo|bar", false},
		{"repetition", "a+", false},
		{"unbalanced paren", "(ab", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := Compile(tt.pattern)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compile(%q) error = %v, wantErr %v", tt.pattern, err, tt.wantErr)
			}
			if !tt.wantErr && re == nil {
				t.Fatal("Compile() returned nil Regex with no error")
			}
		})
	}
}

func TestMustCompilePanicsOnInvalidPattern(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustCompile did not panic on an invalid pattern")
		}
	}()
	MustCompile("(ab")
}

func TestAcceptWholeStringSemantics(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		input   string
		want    bool
	}{
		{"exact literal", "hello", "hello", true},
		{"literal prefix only", "hello", "hello world", false},
		{"alternation first branch", "foo|bar", "foo", true},
		{"alternation second branch", "foo|bar", "bar", true},
		{"alternation no match", "foo|bar", "baz", false},
		{"star zero reps", "a*", "", true},
		{"star many reps", "a*", "aaaa", true},
		{"plus requires one", "a+", "", false},
		{"nested group with star", "a(bb|cc)*", "abbcc", true},
		{"nested group mismatch", "a(bb|cc)*", "abc", false},
		{"char set", "[abc]", "b", true},
		{"char set miss", "[abc]", "d", false},
		{"any byte", ".", "x", true},
		{"any byte empty", ".", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re := MustCompile(tt.pattern)
			defer re.Close()
			if got := re.MatchString(tt.input); got != tt.want {
				t.Errorf("MatchString(%q) with pattern %q = %v, want %v", tt.input, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestCompileWithConfigForcesVM(t *testing.T) {
	config := DefaultConfig()
	config.EnableJIT = false
	config.EnablePrefilter = false

	re, err := CompileWithConfig("a(bb|cc)*", config)
	if err != nil {
		t.Fatalf("CompileWithConfig: %v", err)
	}
	defer re.Close()
	if re.native != nil {
		t.Fatal("expected VM execution, got a native matcher")
	}
	if re.program == nil {
		t.Fatal("expected a VM program to be built")
	}

	cases := map[string]bool{"a": true, "abbcc": true, "abc": false}
	for input, want := range cases {
		if got := re.MatchString(input); got != want {
			t.Errorf("MatchString(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestCompileWithConfigUsesPrefilter(t *testing.T) {
	re, err := Compile("cat|dog|bird")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	defer re.Close()
	if re.pf == nil {
		t.Fatal("expected a literal-set pattern to use the prefilter fast path")
	}
	if re.program != nil || re.native != nil {
		t.Error("prefilter path should not also build a DFA/VM/JIT matcher")
	}
}

func TestCompileWithConfigRejectsInvalidMaxDFAStates(t *testing.T) {
	config := DefaultConfig()
	config.MaxDFAStates = 0
	if _, err := CompileWithConfig("a", config); err == nil {
		t.Error("expected an error for an invalid MaxDFAStates")
	}
}

func TestStringReturnsPattern(t *testing.T) {
	re := MustCompile("a+")
	defer re.Close()
	if got := re.String(); got != "a+" {
		t.Errorf("String() = %q, want %q", got, "a+")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	re := MustCompile("a(bb|cc)*")
	if err := re.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := re.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
