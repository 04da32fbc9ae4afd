package jit

import (
	"fmt"

	"github.com/jitregex/jitregex/ir"
	"github.com/jitregex/jitregex/jit/x86"
)

// instrKind tags a lowered instruction: either a pseudo (label / jump
// still carrying a symbolic target) or a raw, fully-encoded instruction
// whose bytes never change again.
type instrKind uint8

const (
	kindLabel instrKind = iota
	kindJump
	kindJumpEq
	kindJumpNe
	kindRaw
)

// lowInstr is one instruction past the point where IR variables have
// been replaced by registers. Label and jump forms keep their symbolic
// name until resolveLabels/patchJumps fix up real displacements; every
// other instruction already carries its final bytes.
type lowInstr struct {
	kind  instrKind
	name  string
	bytes []byte
}

func rawBytes(b []byte) lowInstr      { return lowInstr{kind: kindRaw, bytes: b} }
func labelInstr(name string) lowInstr { return lowInstr{kind: kindLabel, name: name} }
func jumpInstr(name string) lowInstr  { return lowInstr{kind: kindJump, name: name} }
func jumpEqInstr(name string) lowInstr { return lowInstr{kind: kindJumpEq, name: name} }
func jumpNeInstr(name string) lowInstr { return lowInstr{kind: kindJumpNe, name: name} }

// returnLabel is the synthetic label every lowered Ret jumps to, where
// the epilogue pops saved registers and returns. It can't collide with
// an emitted DFA state name, which are always stringified integers.
const returnLabel = "return"

// emitPrologue pushes the frame, loads x86-32 stack arguments into their
// assigned registers (x86-64 arguments already arrive in registers), and
// saves any callee-saved register a x86-32 allocation claimed.
func (c *context) emitPrologue() {
	ptrSize := sizeOf(ir.Pointer, c.arch)

	c.body = append(c.body, rawBytes(c.enc.Push(x86.EBP)))
	c.body = append(c.body, rawBytes(mustEncode(c.enc.MovRegReg(x86.EBP, x86.ESP, ptrSize))))

	if c.arch != x86.Arch64 {
		offset := int32(2 * ptrSize) // saved return address + saved ebp
		for _, v := range c.vars {
			if !isArg(v) {
				continue
			}
			size := c.varSizes[v]
			b, err := c.enc.MovRegMem(c.varRegs[v], x86.EBP, offset, size)
			if err == nil {
				c.body = append(c.body, rawBytes(b))
			}
			offset += int32(size)
		}
	}

	for _, r := range c.regsToRestore {
		c.body = append(c.body, rawBytes(c.enc.Push(r)))
	}
}

func mustEncode(b []byte, err error) []byte {
	if err != nil {
		return nil
	}
	return b
}

// lowerBody walks the IR once, substituting each variable reference for
// its allocated register and its declared type for an operand size, and
// emits the matching machine-code form for every opcode. Ret additionally
// expands into a move of the return value into EAX followed by a jump to
// the shared epilogue, rather than encoding its own ret/pop sequence
// inline at every return site.
func (c *context) lowerBody() error {
	for _, in := range c.program.Instrs {
		switch in.Op {
		case ir.OpLabel:
			c.body = append(c.body, labelInstr(in.Target))

		case ir.OpInc:
			r, size := c.varRegs[in.Dst], c.varSizes[in.Dst]
			b, err := c.enc.Inc(r, size)
			if err != nil {
				return &CompilationError{Msg: err.Error()}
			}
			c.body = append(c.body, rawBytes(b))

		case ir.OpSet:
			r, size := c.varRegs[in.Dst], c.varSizes[in.Dst]
			b, err := c.enc.MovRegImm(r, in.IntImm, size)
			if err != nil {
				return &CompilationError{Msg: err.Error()}
			}
			c.body = append(c.body, rawBytes(b))

		case ir.OpCmpName:
			// cmp rm, reg; sets the zero flag the same regardless of
			// which operand plays which role.
			size := c.varSizes[in.A]
			b, err := c.enc.CmpRegReg(c.varRegs[in.B], c.varRegs[in.A], size)
			if err != nil {
				return &CompilationError{Msg: err.Error()}
			}
			c.body = append(c.body, rawBytes(b))

		case ir.OpCmpValue:
			b, err := c.enc.CmpRegImm8(c.varRegs[in.A], in.ByteImm)
			if err != nil {
				return &CompilationError{Msg: err.Error()}
			}
			c.body = append(c.body, rawBytes(b))

		case ir.OpMoveIndexed:
			b, err := c.enc.MovRegMem8(c.varRegs[in.Dst], c.varRegs[in.A], c.varRegs[in.B])
			if err != nil {
				return &CompilationError{Msg: err.Error()}
			}
			c.body = append(c.body, rawBytes(b))

		case ir.OpJump:
			c.body = append(c.body, jumpInstr(in.Target))
		case ir.OpJumpEq:
			c.body = append(c.body, jumpEqInstr(in.Target))
		case ir.OpJumpNe:
			c.body = append(c.body, jumpNeInstr(in.Target))

		case ir.OpRet:
			retVal := int64(0)
			if in.BoolImm {
				retVal = 1
			}
			b, err := c.enc.MovRegImm(x86.EAX, retVal, 4)
			if err != nil {
				return &CompilationError{Msg: err.Error()}
			}
			c.body = append(c.body, rawBytes(b), jumpInstr(returnLabel))

		default:
			return &CompilationError{Msg: fmt.Sprintf("unknown IR opcode %v", in.Op)}
		}
	}
	return nil
}

// emitEpilogue appends the shared return path: the jump target every
// lowered Ret aims at, restoring whatever the prologue saved, in
// reverse order, before the final ret.
func (c *context) emitEpilogue() {
	c.body = append(c.body, labelInstr(returnLabel))
	for i := len(c.regsToRestore) - 1; i >= 0; i-- {
		c.body = append(c.body, rawBytes(c.enc.Pop(c.regsToRestore[i])))
	}
	c.body = append(c.body, rawBytes(c.enc.Pop(x86.EBP)))
	c.body = append(c.body, rawBytes(c.enc.Ret()))
}

// resolveLabels computes each label's byte offset: the sum of every
// preceding non-label instruction's encoded length. Labels themselves
// contribute nothing to the final byte stream.
func resolveLabels(body []lowInstr) (map[string]int, error) {
	offsets := make(map[string]int, len(body))
	offset := 0
	for _, in := range body {
		if in.kind == kindLabel {
			if _, dup := offsets[in.name]; dup {
				return nil, &CompilationError{Msg: fmt.Sprintf("duplicate label %q", in.name)}
			}
			offsets[in.name] = offset
			continue
		}
		offset += len(in.bytes)
	}
	return offsets, nil
}

// patchJumps fills in each jump placeholder's real rel32 displacement,
// computed relative to the address immediately following the jump
// instruction itself, now that every instruction's final length and
// every label's offset are known.
func patchJumps(enc *x86.Encoder, body []lowInstr, offsets map[string]int) error {
	offset := 0
	for i := range body {
		in := &body[i]
		if in.kind == kindLabel {
			continue
		}
		target, isJump := offsets[in.name]
		switch in.kind {
		case kindJump, kindJumpEq, kindJumpNe:
			if !isJump {
				return &CompilationError{Msg: fmt.Sprintf("jump to undefined label %q", in.name)}
			}
			rel := int32(target - (offset + len(in.bytes)))
			switch in.kind {
			case kindJump:
				in.bytes = enc.JmpRel32(rel)
			case kindJumpEq:
				in.bytes = enc.JeRel32(rel)
			case kindJumpNe:
				in.bytes = enc.JneRel32(rel)
			}
		}
		offset += len(in.bytes)
	}
	return nil
}

// jump instructions are emitted with a zero-displacement placeholder of
// the correct final length so that resolveLabels can compute every
// label's offset in a single pass before any displacement is known.
func placeholderFor(enc *x86.Encoder, kind instrKind) []byte {
	switch kind {
	case kindJump:
		return enc.JmpRel32(0)
	case kindJumpEq:
		return enc.JeRel32(0)
	case kindJumpNe:
		return enc.JneRel32(0)
	default:
		return nil
	}
}

// sizePlaceholders fills in jump instructions' placeholder bytes so that
// resolveLabels sees their real (final) length before any displacement
// is computed.
func sizePlaceholders(enc *x86.Encoder, body []lowInstr) {
	for i := range body {
		if body[i].kind != kindRaw && body[i].kind != kindLabel {
			body[i].bytes = placeholderFor(enc, body[i].kind)
		}
	}
}

// purgeLabels drops every label pseudo-instruction, now that both passes
// needing them (resolveLabels, patchJumps) are done.
func purgeLabels(body []lowInstr) []lowInstr {
	out := make([]lowInstr, 0, len(body))
	for _, in := range body {
		if in.kind != kindLabel {
			out = append(out, in)
		}
	}
	return out
}

// merge concatenates every instruction's final bytes into one blob.
func merge(body []lowInstr) []byte {
	size := 0
	for _, in := range body {
		size += len(in.bytes)
	}
	out := make([]byte, 0, size)
	for _, in := range body {
		out = append(out, in.bytes...)
	}
	return out
}
