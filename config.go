package jitregex

import (
	"fmt"

	"github.com/jitregex/jitregex/jit"
	"github.com/jitregex/jitregex/jit/x86"
)

// Config controls how Compile builds a matcher: which execution
// strategy it prefers, the native target when JIT-compiling, and the
// limits that keep pathological patterns from exhausting memory during
// subset construction.
//
// Example:
//
//	config := jitregex.DefaultConfig()
//	config.EnableJIT = false // force the portable VM interpreter
//	re, err := jitregex.CompileWithConfig(`a(bb|cc)*`, config)
type Config struct {
	// EnableJIT compiles to native machine code via the jit package.
	// When false, the matcher always runs through the VM interpreter.
	// Default: true
	EnableJIT bool

	// Arch selects the native target when EnableJIT is true. Compile
	// takes the JIT path only for x86.Arch64 on an amd64 host; any other
	// combination, including x86.Arch32, runs through the VM interpreter.
	// Default: x86.Arch64
	Arch x86.Arch

	// ABI selects the calling convention jit.Compile targets on Arch64.
	// Ignored on Arch32. Default: jit.SystemV
	ABI jit.ABI

	// EnablePrefilter lets Compile recognize patterns whose language is
	// a finite set of literals and answer Accept via an Aho-Corasick
	// automaton instead of the DFA/VM/JIT path. Default: true
	EnablePrefilter bool

	// MaxDFAStates is the largest DFA, counted in states, that Compile
	// accepts. Subset construction runs to completion first and a pattern
	// whose DFA has more states is then rejected with an error; the
	// construction itself is not cut short. Default: 10000
	MaxDFAStates int
}

// DefaultConfig returns a configuration with sensible defaults: JIT
// compilation for x86-64 under the System V ABI, prefiltering enabled,
// and a conservative DFA state cap.
func DefaultConfig() Config {
	return Config{
		EnableJIT:       true,
		Arch:            x86.Arch64,
		ABI:             jit.SystemV,
		EnablePrefilter: true,
		MaxDFAStates:    10_000,
	}
}

// Validate reports whether c's fields are within supported ranges.
func (c Config) Validate() error {
	if c.MaxDFAStates < 1 || c.MaxDFAStates > 1_000_000 {
		return &ConfigError{Field: "MaxDFAStates", Message: "must be between 1 and 1,000,000"}
	}
	if c.Arch != x86.Arch32 && c.Arch != x86.Arch64 {
		return &ConfigError{Field: "Arch", Message: "must be x86.Arch32 or x86.Arch64"}
	}
	if c.ABI != jit.SystemV && c.ABI != jit.Windows64 {
		return &ConfigError{Field: "ABI", Message: "must be jit.SystemV or jit.Windows64"}
	}
	return nil
}

// ConfigError reports an invalid configuration field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("jitregex: invalid config: %s: %s", e.Field, e.Message)
}
