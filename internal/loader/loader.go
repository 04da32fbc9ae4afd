// Package loader copies JIT-compiled machine code into memory the
// process is allowed to execute, and exposes it as a callable function
// value. The actual mapping and protection calls are platform-specific;
// see loader_unix.go and loader_windows.go.
package loader

import "fmt"

// Error reports a failure to map or protect executable memory.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("loader: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Func is a loaded matcher: the compiled procedure fn(string *byte,
// length int) -> int, reachable from Go only through an architecture's
// calling convention, never called directly from Go code. Callers
// invoke it via CallBool, which crosses into the mapped page through a
// small per-arch asm trampoline.
type Func struct {
	mem   []byte
	entry uintptr
}

// Load copies code into a fresh, zero-filled mapping, marks it
// executable, and returns a Func ready to run. code must not be empty.
// The returned Func owns the mapping; call Close to release it.
func Load(code []byte) (*Func, error) {
	if len(code) == 0 {
		return nil, &Error{Op: "load", Err: fmt.Errorf("no code to load")}
	}
	return load(code)
}

// Close releases the mapping backing f. f must not be called again
// afterward.
func (f *Func) Close() error {
	return unmap(f.mem)
}
