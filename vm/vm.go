// Package vm provides a reference interpreter for the linear IR, used
// wherever a pattern isn't (or can't be) JIT-compiled to native code.
package vm

import (
	"fmt"
	"io"

	"github.com/jitregex/jitregex/ir"
)

// maxSteps bounds execution defensively against malformed IR; a correctly
// emitted program always halts with a Ret long before this is reached.
const maxSteps = 10_000

// Error reports a VM fault: executing a label, exceeding the step bound,
// an unknown opcode, a jump to an undefined label, or an out-of-bounds
// indexed read. Every one of these indicates a bug in the IR emitter or
// compiler, never a property of the input string.
type Error struct {
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("vm: %s", e.Msg) }

// Machine is a reference interpreter for a single linear IR program. The
// zero value is ready to use.
type Machine struct {
	// Trace, when non-nil, receives one line per instruction executed.
	// It is nil by default and never written to unless set.
	Trace io.Writer
}

// Run executes p against data and returns whether it accepts.
func Run(p *ir.Program, data []byte) (bool, error) {
	return (&Machine{}).Run(p, data)
}

// Run executes p against data and returns whether it accepts, writing an
// execution trace to m.Trace if set.
func (m *Machine) Run(p *ir.Program, data []byte) (bool, error) {
	labels := indexLabels(p.Instrs)

	vars := make(map[string]int64, len(p.Vars))
	vars[ir.VarLength] = int64(len(data))

	var equal bool
	ip := skipLabels(p.Instrs, 0)
	steps := 0

	for {
		if ip >= len(p.Instrs) {
			return false, &Error{Msg: "instruction pointer ran past the end of the program"}
		}
		steps++
		if steps > maxSteps {
			return false, &Error{Msg: fmt.Sprintf("exceeded %d instruction steps", maxSteps)}
		}

		instr := p.Instrs[ip]
		if m.Trace != nil {
			fmt.Fprintf(m.Trace, "%d: %s\n", ip, instr)
		}
		switch instr.Op {
		case ir.OpLabel:
			return false, &Error{Msg: "executed a label instruction"}

		case ir.OpInc:
			vars[instr.Dst]++
			ip = skipLabels(p.Instrs, ip+1)

		case ir.OpSet:
			vars[instr.Dst] = instr.IntImm
			ip = skipLabels(p.Instrs, ip+1)

		case ir.OpCmpName:
			equal = vars[instr.A] == vars[instr.B]
			ip = skipLabels(p.Instrs, ip+1)

		case ir.OpCmpValue:
			equal = byte(vars[instr.A]) == instr.ByteImm
			ip = skipLabels(p.Instrs, ip+1)

		case ir.OpMoveIndexed:
			idx := vars[instr.B]
			if idx < 0 || idx >= int64(len(data)) {
				return false, &Error{Msg: fmt.Sprintf("move indexed: index %d out of bounds for length %d", idx, len(data))}
			}
			vars[instr.Dst] = int64(data[idx])
			ip = skipLabels(p.Instrs, ip+1)

		case ir.OpJump:
			target, err := resolve(labels, instr.Target)
			if err != nil {
				return false, err
			}
			ip = skipLabels(p.Instrs, target)

		case ir.OpJumpEq:
			if equal {
				target, err := resolve(labels, instr.Target)
				if err != nil {
					return false, err
				}
				ip = skipLabels(p.Instrs, target)
			} else {
				ip = skipLabels(p.Instrs, ip+1)
			}

		case ir.OpJumpNe:
			if !equal {
				target, err := resolve(labels, instr.Target)
				if err != nil {
					return false, err
				}
				ip = skipLabels(p.Instrs, target)
			} else {
				ip = skipLabels(p.Instrs, ip+1)
			}

		case ir.OpRet:
			return instr.BoolImm, nil

		default:
			return false, &Error{Msg: fmt.Sprintf("unknown opcode %v", instr.Op)}
		}
	}
}

func indexLabels(instrs []ir.Instr) map[string]int {
	labels := make(map[string]int)
	for idx, instr := range instrs {
		if instr.Op == ir.OpLabel {
			labels[instr.Target] = idx
		}
	}
	return labels
}

func resolve(labels map[string]int, name string) (int, error) {
	idx, ok := labels[name]
	if !ok {
		return 0, &Error{Msg: fmt.Sprintf("jump to undefined label %q", name)}
	}
	return idx, nil
}

// skipLabels advances ip past any run of consecutive label pseudo-instructions.
func skipLabels(instrs []ir.Instr, ip int) int {
	for ip < len(instrs) && instrs[ip].Op == ir.OpLabel {
		ip++
	}
	return ip
}
