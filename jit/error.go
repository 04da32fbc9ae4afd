package jit

import "fmt"

// CompilationError reports a failure in one of the JIT's compilation
// passes: too many live variables for the register set, an unsupported
// argument count, an unknown or duplicate label, or an encoder failure.
type CompilationError struct {
	Msg string
}

func (e *CompilationError) Error() string { return fmt.Sprintf("jit: %s", e.Msg) }
