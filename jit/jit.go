// Package jit compiles a linear IR program into native x86/x86-64
// machine code: a sequence of pure passes over a shared compilation
// context, mirroring the reference VM's instruction semantics exactly
// but producing a directly callable code blob instead of an interpreter
// loop.
package jit

import (
	"github.com/jitregex/jitregex/ir"
	"github.com/jitregex/jitregex/jit/x86"
)

// Compile lowers p to a position-independent blob implementing the
// match procedure fn(string *byte, length int) -> int (nonzero means
// accept), calling convention cdecl on Arch32 and the given ABI on
// Arch64. The returned bytes contain no relocations; they're ready to
// copy into executable memory and call directly.
func Compile(p *ir.Program, arch x86.Arch, abi ABI) ([]byte, error) {
	ctx := newContext(p, arch, abi)

	ctx.discoverVars()
	if err := ctx.allocateRegisters(); err != nil {
		return nil, err
	}
	ctx.emitPrologue()
	if err := ctx.lowerBody(); err != nil {
		return nil, err
	}
	ctx.emitEpilogue()

	sizePlaceholders(ctx.enc, ctx.body)
	offsets, err := resolveLabels(ctx.body)
	if err != nil {
		return nil, err
	}
	if err := patchJumps(ctx.enc, ctx.body, offsets); err != nil {
		return nil, err
	}

	return merge(purgeLabels(ctx.body)), nil
}
