package x86

import (
	"encoding/binary"
	"fmt"
)

// Arch selects the instruction-encoding mode: operand sizes, available
// registers, and whether REX prefixes are ever emitted.
type Arch uint8

const (
	Arch32 Arch = iota
	Arch64
)

// Encoder assembles x86/x86-64 instructions for one Arch. It carries no
// mutable state; all methods are pure functions of their arguments.
type Encoder struct {
	Arch Arch
}

// New returns an Encoder targeting arch.
func New(arch Arch) *Encoder {
	return &Encoder{Arch: arch}
}

// operands collects encode's optional fields. A nil pointer means the
// corresponding kwarg was omitted in the original encoder this is modeled
// on; a present-but-zero value is meaningfully different from absent.
type operands struct {
	reg         *Reg
	opex        *uint8
	regMem      *Reg
	base        *Reg
	index       *Reg
	scale       Scale
	disp        *int32
	imm         *int64
	immSize     int
	size        int
	addressSize int
	opcodeReg   *Reg
}

func regBits(r Reg) uint8 { return r.bits() }

func isSPBank(r Reg) bool  { return r.bits() == ESP.bits() }
func isBPBank(r Reg) bool  { return r.bits() == EBP.bits() }
func extended(r *Reg) bool { return r != nil && r.extended() }

func rexByte(w, r, x, b uint8) byte {
	return 0b0100_0000 | w<<3 | r<<2 | x<<1 | b
}

func modrmByte(m mod, regOrOpex, rm uint8) byte {
	return uint8(m)<<6 | regOrOpex<<3 | rm
}

func sibByte(scale Scale, index, base uint8) byte {
	return uint8(scale)<<6 | index<<3 | base
}

func int32Bytes(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func immBytes(v int64, size int) ([]byte, error) {
	b := make([]byte, size)
	switch size {
	case 1:
		b[0] = byte(int8(v))
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(int16(v)))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(int32(v)))
	case 8:
		binary.LittleEndian.PutUint64(b, uint64(v))
	default:
		return nil, fmt.Errorf("x86: can't encode immediate of size %d", size)
	}
	return b, nil
}

// encode assembles one instruction: opcode bytes, optional size/REX
// prefixes, an optional ModR/M(+SIB) operand, and an optional immediate.
func (e *Encoder) encode(opcodeBytes []byte, o operands) ([]byte, error) {
	prefixes, err := e.sizePrefixesAndREX(&o)
	if err != nil {
		return nil, err
	}
	out := append([]byte{}, prefixes...)

	ops := append([]byte{}, opcodeBytes...)
	if o.opcodeReg != nil {
		ops[0] += regBits(*o.opcodeReg)
	}
	out = append(out, ops...)

	if o.reg != nil || o.regMem != nil || o.base != nil || o.index != nil || o.disp != nil || o.opex != nil {
		rm, err := e.addRegMemOpex(&o)
		if err != nil {
			return nil, err
		}
		out = append(out, rm...)
	}

	if o.imm != nil {
		sz := o.immSize
		if sz == 0 {
			sz = o.size
		}
		imm, err := immBytes(*o.imm, sz)
		if err != nil {
			return nil, err
		}
		out = append(out, imm...)
	}
	return out, nil
}

// sizePrefixesAndREX computes the 0x66/0x67 overrides and, on 64-bit, the
// REX byte (omitted entirely when none of W/R/X/B are set, unless a
// 1-byte access to ESP/EBP/ESI/EDI needs a null REX to reach SPL/BPL/SIL/DIL).
func (e *Encoder) sizePrefixesAndREX(o *operands) ([]byte, error) {
	var prefixes []byte
	if o.size == 2 {
		prefixes = append(prefixes, overrideOperandSize)
	}
	if e.Arch == Arch64 {
		if o.addressSize == 4 {
			prefixes = append(prefixes, overrideAddressSize)
		}
	} else if o.addressSize == 2 {
		return nil, fmt.Errorf("x86: 16-bit addressing not supported")
	}
	if e.Arch != Arch64 {
		return prefixes, nil
	}

	var w, r, x, b uint8
	var any bool
	if o.size == 8 {
		w, any = 1, true
	}
	if extended(o.reg) {
		r, any = 1, true
	}
	if extended(o.index) {
		x, any = 1, true
	}
	if extended(o.regMem) || extended(o.base) || extended(o.opcodeReg) {
		b, any = 1, true
	}
	switch {
	case any:
		prefixes = append(prefixes, rexByte(w, r, x, b))
	case o.size == 1 && touchesLowByteOnlyReg(o):
		prefixes = append(prefixes, rexByte(0, 0, 0, 0))
	}
	return prefixes, nil
}

func touchesLowByteOnlyReg(o *operands) bool {
	isLowByteOnly := func(r *Reg) bool {
		if r == nil {
			return false
		}
		switch *r {
		case ESP, EBP, ESI, EDI:
			return true
		}
		return false
	}
	return isLowByteOnly(o.reg) || isLowByteOnly(o.regMem) || isLowByteOnly(o.opcodeReg)
}

// addRegMemOpex builds the ModR/M byte and, when addressing memory through
// a SIB form, the SIB byte and displacement. It reproduces each branch of
// the addressing-form table: register-direct, displacement-only, SIB with
// and without a base, ESP/R12-as-base forcing a SIB form, and EBP/R13
// forcing an explicit disp8 when disp is zero.
func (e *Encoder) addRegMemOpex(o *operands) ([]byte, error) {
	if o.index != nil && isSPBank(*o.index) {
		return nil, fmt.Errorf("x86: ESP/R12 can't be used as an index")
	}

	var regField uint8
	if o.reg != nil {
		regField = regBits(*o.reg)
	}
	if o.opex != nil {
		regField = *o.opex
	}

	if o.regMem != nil {
		return []byte{modrmByte(modReg, regField, regBits(*o.regMem))}, nil
	}

	var disp int32
	if o.disp != nil {
		disp = *o.disp
	}

	if o.base == nil && o.index == nil {
		return e.dispOnlyAddressing(regField, disp), nil
	}

	if o.index != nil {
		sib := sibByte(o.scale, regBits(*o.index), func() uint8 {
			if o.base == nil {
				return regBits(sibBaseNone)
			}
			return regBits(*o.base)
		}())
		if o.base == nil {
			mrm := modrmByte(modIndirect, regField, regBits(useSIB))
			return append([]byte{mrm, sib}, int32Bytes(disp)...), nil
		}
		switch {
		case disp == 0 && !isBPBank(*o.base):
			mrm := modrmByte(modIndirect, regField, regBits(useSIB))
			return []byte{mrm, sib}, nil
		case disp >= -128 && disp <= 127:
			mrm := modrmByte(modDisp8, regField, regBits(useSIB))
			return []byte{mrm, sib, byte(int8(disp))}, nil
		default:
			mrm := modrmByte(modDisp32, regField, regBits(useSIB))
			return append([]byte{mrm, sib}, int32Bytes(disp)...), nil
		}
	}

	// base only, no index.
	base := *o.base
	if isSPBank(base) {
		sib := sibByte(Mul1, regBits(sibIndexNone), regBits(ESP))
		switch {
		case disp == 0:
			mrm := modrmByte(modIndirect, regField, regBits(useSIB))
			return []byte{mrm, sib}, nil
		case disp >= -128 && disp <= 127:
			mrm := modrmByte(modDisp8, regField, regBits(useSIB))
			return []byte{mrm, sib, byte(int8(disp))}, nil
		default:
			mrm := modrmByte(modDisp32, regField, regBits(useSIB))
			return append([]byte{mrm, sib}, int32Bytes(disp)...), nil
		}
	}
	switch {
	case disp == 0 && !isBPBank(base):
		mrm := modrmByte(modIndirect, regField, regBits(base))
		return []byte{mrm}, nil
	case disp >= -128 && disp <= 127:
		mrm := modrmByte(modDisp8, regField, regBits(base))
		return []byte{mrm, byte(int8(disp))}, nil
	default:
		mrm := modrmByte(modDisp32, regField, regBits(base))
		return append([]byte{mrm}, int32Bytes(disp)...), nil
	}
}

func (e *Encoder) dispOnlyAddressing(regField uint8, disp int32) []byte {
	if e.Arch == Arch64 {
		mrm := modrmByte(modIndirect, regField, regBits(disp32Only64RM))
		sib := sibByte(Mul1, regBits(disp32OnlyIndex), regBits(disp32Only64Base))
		return append([]byte{mrm, sib}, int32Bytes(disp)...)
	}
	mrm := modrmByte(modIndirect, regField, regBits(disp32Only32RM))
	return append([]byte{mrm}, int32Bytes(disp)...)
}

// Push encodes "push r".
func (e *Encoder) Push(r Reg) []byte {
	b, _ := e.encode([]byte{opPushR}, operands{opcodeReg: &r})
	return b
}

// Pop encodes "pop r".
func (e *Encoder) Pop(r Reg) []byte {
	b, _ := e.encode([]byte{opPopR}, operands{opcodeReg: &r})
	return b
}

// Ret encodes a near "ret".
func (e *Encoder) Ret() []byte {
	b, _ := e.encode([]byte{opRet}, operands{})
	return b
}

// JmpRel32 encodes "jmp rel32" with the given (already-computed) displacement.
func (e *Encoder) JmpRel32(rel int32) []byte {
	imm := int64(rel)
	b, _ := e.encode([]byte{opJmpRel}, operands{imm: &imm, size: 4})
	return b
}

// JeRel32 encodes "je rel32".
func (e *Encoder) JeRel32(rel int32) []byte {
	imm := int64(rel)
	b, _ := e.encode([]byte{opJeRelA, opJeRelB}, operands{imm: &imm, size: 4})
	return b
}

// JneRel32 encodes "jne rel32".
func (e *Encoder) JneRel32(rel int32) []byte {
	imm := int64(rel)
	b, _ := e.encode([]byte{opJneRelA, opJneRelB}, operands{imm: &imm, size: 4})
	return b
}

// Inc encodes "inc r" at the given operand size in bytes (1, 2, 4, or 8).
// On 64-bit, size 2/4/8 always goes through the r/m form (0xFF /0) because
// the short +rd form was repurposed as a REX prefix byte; on 32-bit, size
// 2/4 uses the short form and size 1 falls back to the r/m8 form.
func (e *Encoder) Inc(r Reg, size int) ([]byte, error) {
	if e.Arch == Arch64 {
		switch size {
		case 2, 4, 8:
			opex := uint8(opIncRMEx)
			return e.encode([]byte{opIncRM}, operands{opex: &opex, regMem: &r, size: size})
		case 1:
			opex := uint8(opIncRM8Ex)
			return e.encode([]byte{opIncRM8}, operands{opex: &opex, regMem: &r, size: 1})
		default:
			return nil, fmt.Errorf("x86: unsupported inc operand size %d", size)
		}
	}
	switch size {
	case 2, 4:
		return e.encode([]byte{opIncRX32}, operands{opcodeReg: &r, size: size})
	case 1:
		opex := uint8(opIncRM8Ex)
		return e.encode([]byte{opIncRM8}, operands{opex: &opex, regMem: &r, size: 1})
	default:
		return nil, fmt.Errorf("x86: unsupported inc operand size %d", size)
	}
}

// CmpRegImm8 encodes "cmp r/m8, imm8" (used to lower CmpValue, which always
// compares a byte-typed variable against a literal byte).
func (e *Encoder) CmpRegImm8(r Reg, imm8 byte) ([]byte, error) {
	opex := uint8(opCmpRMImm8Ex)
	v := int64(imm8)
	return e.encode([]byte{opCmpRMImm8}, operands{opex: &opex, regMem: &r, imm: &v, size: 1})
}

// CmpAlImm8 encodes the fixed-AL short form "cmp al, imm8".
func (e *Encoder) CmpAlImm8(imm8 int8) []byte {
	v := int64(imm8)
	b, _ := e.encode([]byte{0x3C}, operands{imm: &v, size: 1})
	return b
}

// CmpEaxImm32 encodes the fixed-EAX short form "cmp eax, imm32".
func (e *Encoder) CmpEaxImm32(imm32 int32) []byte {
	v := int64(imm32)
	b, _ := e.encode([]byte{0x3D}, operands{imm: &v, size: 4})
	return b
}

// CmpRegReg encodes "cmp r/m, r" (used to lower CmpName; sets the zero
// flag iff the two operands are equal, regardless of which is r/m).
func (e *Encoder) CmpRegReg(rm, reg Reg, size int) ([]byte, error) {
	return e.encode([]byte{opCmpRMR}, operands{reg: &reg, regMem: &rm, size: size})
}

// MovRegImm encodes "mov r, imm" (used to lower Set).
func (e *Encoder) MovRegImm(r Reg, imm int64, size int) ([]byte, error) {
	return e.encode([]byte{opMovRImm}, operands{opcodeReg: &r, imm: &imm, size: size})
}

// MovRegReg encodes "mov r, r/m" (used to lower Move).
func (e *Encoder) MovRegReg(dst, src Reg, size int) ([]byte, error) {
	return e.encode([]byte{opMovRFromRM}, operands{reg: &dst, regMem: &src, size: size})
}

// MovRegMem encodes "mov r, [base+disp]" (used by the x86-32 prologue to
// load cdecl stack arguments into their assigned registers).
func (e *Encoder) MovRegMem(dst, base Reg, disp int32, size int) ([]byte, error) {
	return e.encode([]byte{opMovRFromRM}, operands{reg: &dst, base: &base, disp: &disp, size: size})
}

// MovRegMem8 encodes "mov r8, [base + index*1]" (used to lower
// MoveIndexed; the destination is always byte-sized: the per-byte cursor
// character).
func (e *Encoder) MovRegMem8(dst, base, index Reg) ([]byte, error) {
	return e.encode([]byte{opMovRFromRM8}, operands{reg: &dst, base: &base, index: &index, scale: Mul1, size: 1})
}
