// Package jitregex compiles POSIX-flavored regular expressions into
// either a portable bytecode interpreter or native x86/x86-64 machine
// code, and answers whole-string acceptance queries against them.
//
// A Regex never implements substring search or leftmost-match
// semantics: Accept reports whether a pattern matches an entire input,
// mirroring the engine's DFA/VM/JIT match procedure exactly.
package jitregex

import (
	"fmt"
	"runtime"

	"github.com/jitregex/jitregex/ast"
	"github.com/jitregex/jitregex/dfa"
	"github.com/jitregex/jitregex/internal/loader"
	"github.com/jitregex/jitregex/ir"
	"github.com/jitregex/jitregex/jit"
	"github.com/jitregex/jitregex/jit/x86"
	"github.com/jitregex/jitregex/nfa"
	"github.com/jitregex/jitregex/prefilter"
	"github.com/jitregex/jitregex/vm"
)

// Regex is a compiled pattern ready to test input against. The zero
// value is not usable; construct one with Compile, MustCompile, or
// CompileWithConfig.
type Regex struct {
	pattern string
	config  Config

	// Exactly one of these execution strategies is populated, in order
	// of preference: pf (literal fast path), native (JIT-compiled), or
	// program (VM interpreter fallback).
	pf      *prefilter.Prefilter
	native  *loader.Func
	program *ir.Program
}

// Compile parses pattern and builds a matcher using DefaultConfig.
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile is like Compile but panics if pattern is invalid. It's
// intended for patterns known at compile time, such as package-level
// variables.
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic(fmt.Sprintf("jitregex: Compile(%q): %v", pattern, err))
	}
	return re
}

// CompileWithConfig parses pattern and builds a matcher under the
// given configuration, choosing among the literal prefilter, the JIT
// compiler, and the VM interpreter as config allows.
func CompileWithConfig(pattern string, config Config) (*Regex, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	root, err := ast.Parse(pattern)
	if err != nil {
		return nil, fmt.Errorf("jitregex: parse %q: %w", pattern, err)
	}
	root = ast.Normalize(root)

	re := &Regex{pattern: pattern, config: config}

	if config.EnablePrefilter {
		if pf, ok := prefilter.Build(root); ok {
			re.pf = pf
			return re, nil
		}
	}

	frag, err := nfa.Build(root)
	if err != nil {
		return nil, fmt.Errorf("jitregex: build NFA for %q: %w", pattern, err)
	}
	d := dfa.Build(frag)
	if n := len(d.States()); n > config.MaxDFAStates {
		return nil, fmt.Errorf("jitregex: %q determinizes to %d states, exceeding MaxDFAStates (%d)", pattern, n, config.MaxDFAStates)
	}
	program := ir.Emit(d)

	if config.EnableJIT && config.Arch == x86.Arch64 && runtime.GOARCH == "amd64" {
		code, err := jit.Compile(program, config.Arch, config.ABI)
		if err != nil {
			return nil, fmt.Errorf("jitregex: JIT compile %q: %w", pattern, err)
		}
		fn, err := loader.Load(code)
		if err != nil {
			return nil, fmt.Errorf("jitregex: load compiled %q: %w", pattern, err)
		}
		re.native = fn
		return re, nil
	}

	re.program = program
	return re, nil
}

// Accept reports whether s, in its entirety, matches the compiled
// pattern.
func (re *Regex) Accept(s []byte) bool {
	switch {
	case re.pf != nil:
		return re.pf.Accept(s)
	case re.native != nil:
		return re.native.CallBool(s)
	default:
		ok, err := vm.Run(re.program, s)
		if err != nil {
			// Only a bug in IR emission or the VM itself reaches here;
			// a malformed input string can never trigger it.
			panic(fmt.Sprintf("jitregex: %q: %v", re.pattern, err))
		}
		return ok
	}
}

// MatchString is a convenience wrapper around Accept for string input.
func (re *Regex) MatchString(s string) bool {
	return re.Accept([]byte(s))
}

// String returns the pattern re was compiled from.
func (re *Regex) String() string { return re.pattern }

// Close releases any executable memory backing re's JIT-compiled
// matcher. Patterns compiled without native code, or compiled with a
// Regex whose Close has already run, are unaffected. re must not be
// used again after Close.
func (re *Regex) Close() error {
	if re.native == nil {
		return nil
	}
	err := re.native.Close()
	re.native = nil
	return err
}
