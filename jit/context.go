package jit

import (
	"fmt"
	"sort"

	"github.com/jitregex/jitregex/ir"
	"github.com/jitregex/jitregex/jit/x86"
)

// ABI selects the calling convention used when targeting x86-64. It has
// no effect on x86-32, which always uses the stack-args cdecl shape.
type ABI uint8

const (
	SystemV ABI = iota
	Windows64
)

// context carries the mutable state threaded through the compiler's
// passes: which registers hold which IR variables, which of those
// registers the prologue/epilogue must save and restore, and the
// in-progress lowered instruction list.
type context struct {
	program *ir.Program
	arch    x86.Arch
	abi     ABI
	enc     *x86.Encoder

	vars          []string
	varRegs       map[string]x86.Reg
	varSizes      map[string]int
	usedRegs      map[x86.Reg]bool
	regsToRestore []x86.Reg

	body []lowInstr
}

func newContext(p *ir.Program, arch x86.Arch, abi ABI) *context {
	return &context{
		program:  p,
		arch:     arch,
		abi:      abi,
		enc:      x86.New(arch),
		varRegs:  map[string]x86.Reg{},
		varSizes: map[string]int{},
		usedRegs: map[x86.Reg]bool{},
	}
}

// discoverVars collects every variable the program reads or writes, then
// orders it with the two fixed arguments (string, length) first, in
// their declared order, followed by the rest sorted by name.
func (c *context) discoverVars() {
	used := map[string]bool{}
	for _, in := range c.program.Instrs {
		switch in.Op {
		case ir.OpInc:
			used[in.Dst] = true
		case ir.OpSet:
			used[in.Dst] = true
		case ir.OpCmpName:
			used[in.A] = true
			used[in.B] = true
		case ir.OpCmpValue:
			used[in.A] = true
		case ir.OpMoveIndexed:
			used[in.Dst] = true
			used[in.A] = true
			used[in.B] = true
		}
	}

	var ordered []string
	for _, a := range []string{ir.VarString, ir.VarLength} {
		if used[a] {
			ordered = append(ordered, a)
			delete(used, a)
		}
	}
	rest := make([]string, 0, len(used))
	for v := range used {
		rest = append(rest, v)
	}
	sort.Strings(rest)
	c.vars = append(ordered, rest...)

	for _, v := range c.vars {
		c.varSizes[v] = sizeOf(c.program.Vars[v], c.arch)
	}
}

func sizeOf(t ir.VarType, arch x86.Arch) int {
	switch t {
	case ir.Pointer, ir.Long:
		if arch == x86.Arch64 {
			return 8
		}
		return 4
	case ir.Short:
		return 2
	case ir.Byte:
		return 1
	default: // ir.Int
		return 4
	}
}

// isArg reports whether v is one of the match procedure's two fixed
// parameters, in which case x86-64 targets bind it directly to an ABI
// argument register instead of a scratch register.
func isArg(v string) bool { return v == ir.VarString || v == ir.VarLength }

// allocateRegisters assigns each discovered variable a register. x86-32
// draws from a 4-register pool shared by arguments and locals alike,
// since cdecl arguments arrive on the stack and the prologue loads them
// into the pool like any other variable; x86-64 binds the two arguments
// directly to their ABI registers and draws locals from the remaining
// caller-saved scratch set, so nothing ever needs to be restored.
func (c *context) allocateRegisters() error {
	if c.arch != x86.Arch64 {
		pool := []x86.Reg{x86.EAX, x86.ECX, x86.EDX, x86.EBX}
		if len(c.vars) > len(pool) {
			return &CompilationError{Msg: fmt.Sprintf("need %d registers but x86-32 only has %d available", len(c.vars), len(pool))}
		}
		calleeSaved := map[x86.Reg]bool{x86.EBX: true, x86.ESI: true, x86.EDI: true, x86.EBP: true}
		for i, v := range c.vars {
			r := pool[i]
			c.varRegs[v] = r
			c.usedRegs[r] = true
			if calleeSaved[r] {
				c.regsToRestore = append(c.regsToRestore, r)
			}
		}
		return nil
	}

	var argRegs, scratch []x86.Reg
	switch c.abi {
	case Windows64:
		argRegs = []x86.Reg{x86.ECX, x86.EDX}
		scratch = []x86.Reg{x86.EAX, x86.R10, x86.R11, x86.R8, x86.R9}
	default:
		argRegs = []x86.Reg{x86.EDI, x86.ESI}
		scratch = []x86.Reg{x86.EAX, x86.R10, x86.R11, x86.EDX, x86.ECX, x86.R8, x86.R9}
	}

	argIdx, scratchIdx := 0, 0
	for _, v := range c.vars {
		var r x86.Reg
		if isArg(v) {
			if argIdx >= len(argRegs) {
				return &CompilationError{Msg: "more than 2 arguments is not supported on this platform"}
			}
			r = argRegs[argIdx]
			argIdx++
		} else {
			if scratchIdx >= len(scratch) {
				return &CompilationError{Msg: fmt.Sprintf("need more registers than x86-64 has scratch space for (%d locals)", len(c.vars)-argIdx)}
			}
			r = scratch[scratchIdx]
			scratchIdx++
		}
		c.varRegs[v] = r
		c.usedRegs[r] = true
	}
	// x86-64's argument and scratch pools are drawn entirely from the
	// caller-saved set, so regsToRestore stays empty on this arch.
	return nil
}
