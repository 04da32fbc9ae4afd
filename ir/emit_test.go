package ir

import (
	"testing"

	"github.com/jitregex/jitregex/ast"
	"github.com/jitregex/jitregex/dfa"
	"github.com/jitregex/jitregex/nfa"
)

func buildDFA(t *testing.T, pattern string) *dfa.DFA {
	t.Helper()
	n, err := ast.Parse(pattern)
	if err != nil {
		t.Fatalf("ast.Parse(%q): %v", pattern, err)
	}
	frag, err := nfa.Build(ast.Normalize(n))
	if err != nil {
		t.Fatalf("nfa.Build(%q): %v", pattern, err)
	}
	return dfa.Build(frag)
}

func TestEmitStartsWithSetIndex(t *testing.T) {
	p := Emit(buildDFA(t, "ab"))
	if len(p.Instrs) == 0 {
		t.Fatal("empty program")
	}
	first := p.Instrs[0]
	if first.Op != OpSet || first.Dst != VarIndex || first.IntImm != -1 {
		t.Errorf("first instruction = %v, want Set(i, -1)", first)
	}
}

func TestEmitDeclaresExpectedVariables(t *testing.T) {
	p := Emit(buildDFA(t, "ab"))
	want := map[string]VarType{VarString: Pointer, VarLength: Long, VarIndex: Long, VarChar: Byte}
	for name, typ := range want {
		got, ok := p.Vars[name]
		if !ok {
			t.Errorf("missing variable %q", name)
			continue
		}
		if got != typ {
			t.Errorf("variable %q type = %v, want %v", name, got, typ)
		}
	}
}

func TestEmitEveryLabelHasABlock(t *testing.T) {
	p := Emit(buildDFA(t, "a(bb|cc)*"))
	labels := map[string]bool{}
	for _, instr := range p.Instrs {
		if instr.Op == OpLabel {
			if labels[instr.Target] {
				t.Errorf("duplicate label %q", instr.Target)
			}
			labels[instr.Target] = true
		}
	}
	// Every jump target must resolve to a label defined somewhere in the program.
	for _, instr := range p.Instrs {
		switch instr.Op {
		case OpJump, OpJumpEq, OpJumpNe:
			if !labels[instr.Target] {
				t.Errorf("jump to undefined label %q", instr.Target)
			}
		}
	}
}

func TestEmitStateWithNoEdgesReturnsFalse(t *testing.T) {
	// The empty char set yields a reachable start state with no outgoing
	// edges and no way to accept.
	p := Emit(buildDFA(t, "[]"))
	foundRetFalse := false
	for _, instr := range p.Instrs {
		if instr.Op == OpRet && !instr.BoolImm {
			foundRetFalse = true
		}
	}
	if !foundRetFalse {
		t.Error("expected a Ret(false) for the dead state")
	}
}
