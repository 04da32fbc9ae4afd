// Package ir defines the linear intermediate representation emitted from
// a DFA and consumed by either the reference VM or the JIT compiler.
package ir

import "fmt"

// VarType is a variable's declared size/shape, used by later lowering
// passes (register allocation, operand-size selection) but otherwise
// opaque to the IR itself.
type VarType uint8

const (
	// Pointer holds the address of the input string.
	Pointer VarType = iota
	// Long holds an index or length.
	Long
	// Int holds the function's boolean-ish return value.
	Int
	// Short is unused by the emitter but valid as a declared variable size.
	Short
	// Byte holds a single input character.
	Byte
)

func (t VarType) String() string {
	switch t {
	case Pointer:
		return "pointer"
	case Long:
		return "long"
	case Int:
		return "int"
	case Short:
		return "short"
	case Byte:
		return "byte"
	default:
		return "unknown"
	}
}

// Op identifies an IR instruction's operation.
type Op uint8

const (
	OpLabel Op = iota
	OpInc
	OpCmpName
	OpCmpValue
	OpJump
	OpJumpEq
	OpJumpNe
	OpMoveIndexed
	OpRet
	OpSet
)

func (o Op) String() string {
	switch o {
	case OpLabel:
		return "label"
	case OpInc:
		return "inc"
	case OpCmpName:
		return "cmp name"
	case OpCmpValue:
		return "cmp value"
	case OpJump:
		return "jump"
	case OpJumpEq:
		return "jump eq"
	case OpJumpNe:
		return "jump ne"
	case OpMoveIndexed:
		return "move indexed"
	case OpRet:
		return "ret"
	case OpSet:
		return "set"
	default:
		return "unknown"
	}
}

// Instr is a single IR instruction. Which fields are meaningful depends on
// Op; see the constructors below for the contract each one follows.
type Instr struct {
	Op Op

	Target string // OpLabel's own name; jump target for Op{Jump,JumpEq,JumpNe}

	Dst string // variable written: OpInc, OpSet, OpMoveIndexed
	A   string // OpCmpName/OpCmpValue's compared variable; OpMoveIndexed's base
	B   string // OpCmpName's other variable; OpMoveIndexed's index

	ByteImm byte  // OpCmpValue's literal
	IntImm  int64 // OpSet's literal
	BoolImm bool  // OpRet's literal
}

func (i Instr) String() string {
	switch i.Op {
	case OpLabel:
		return fmt.Sprintf("Label(%s)", i.Target)
	case OpInc:
		return fmt.Sprintf("Inc(%s)", i.Dst)
	case OpCmpName:
		return fmt.Sprintf("CmpName(%s, %s)", i.A, i.B)
	case OpCmpValue:
		return fmt.Sprintf("CmpValue(%s, %q)", i.A, i.ByteImm)
	case OpJump:
		return fmt.Sprintf("Jump(%s)", i.Target)
	case OpJumpEq:
		return fmt.Sprintf("JumpEq(%s)", i.Target)
	case OpJumpNe:
		return fmt.Sprintf("JumpNe(%s)", i.Target)
	case OpMoveIndexed:
		return fmt.Sprintf("MoveIndexed(%s, %s, %s)", i.Dst, i.A, i.B)
	case OpRet:
		return fmt.Sprintf("Ret(%v)", i.BoolImm)
	case OpSet:
		return fmt.Sprintf("Set(%s, %d)", i.Dst, i.IntImm)
	default:
		return "?"
	}
}

// Label returns a label pseudo-instruction.
func Label(name string) Instr { return Instr{Op: OpLabel, Target: name} }

// Inc returns "increment v by 1".
func Inc(v string) Instr { return Instr{Op: OpInc, Dst: v} }

// CmpName returns "compare a against b", setting the equality flag used by
// the next JumpEq/JumpNe.
func CmpName(a, b string) Instr { return Instr{Op: OpCmpName, A: a, B: b} }

// CmpValue returns "compare v against the literal byte b".
func CmpValue(v string, b byte) Instr { return Instr{Op: OpCmpValue, A: v, ByteImm: b} }

// Jump returns an unconditional jump to label.
func Jump(label string) Instr { return Instr{Op: OpJump, Target: label} }

// JumpEq returns a jump to label taken when the last comparison was equal.
func JumpEq(label string) Instr { return Instr{Op: OpJumpEq, Target: label} }

// JumpNe returns a jump to label taken when the last comparison was unequal.
func JumpNe(label string) Instr { return Instr{Op: OpJumpNe, Target: label} }

// MoveIndexed returns "dst = base[index]".
func MoveIndexed(dst, base, index string) Instr {
	return Instr{Op: OpMoveIndexed, Dst: dst, A: base, B: index}
}

// Ret returns "return v" (the compiled function's nonzero-for-accept result).
func Ret(v bool) Instr { return Instr{Op: OpRet, BoolImm: v} }

// Set returns "v = n".
func Set(v string, n int64) Instr { return Instr{Op: OpSet, Dst: v, IntImm: n} }

// Variable names used by every emitted program; fixed by the match
// procedure's signature fn(string, length) -> int.
const (
	VarString = "string"
	VarLength = "length"
	VarIndex  = "i"
	VarChar   = "char"
)

// Program is a complete, immutable linear IR program: its variables with
// their declared types, and its instructions in execution order.
type Program struct {
	Vars   map[string]VarType
	Instrs []Instr
}
