package boolfuck

import (
	"fmt"
	"log"
)

// The OPs for Boolfuck. Every cell holds a single bit, so there is no
// decrement: + flips the bit under the head. , and ; move one bit at a time
// through the input and output streams, least significant bit first.

// Any rune outside of OP_SET is a comment and executes as a no-op.

//  *
// [0][0][0][0]
// +>+>+<<
// Flip, move right, flip, move right, flip, move back

//  *
// [1][1][1][0]
// [;>]
// Output bits until the first zero cell

type OP rune
type OPS string

const (
	OP_FLIP          = OP('+')
	OP_READ          = OP(',')
	OP_WRITE         = OP(';')
	OP_POINTER_LEFT  = OP('<')
	OP_POINTER_RIGHT = OP('>')
	OP_WHILE         = OP('[')
	OP_WHILE_END     = OP(']')
)

var OP_SET [7]OP = [...]OP{
	OP_FLIP,
	OP_READ,
	OP_WRITE,
	OP_POINTER_LEFT,
	OP_POINTER_RIGHT,
	OP_WHILE,
	OP_WHILE_END,
}

func (o OPS) ToOPs() []OP {
	ops := []OP{}
	for _, r := range o {
		ops = append(ops, OP(r))
	}
	return ops
}

func (o OP) IsCommand() bool {
	for _, op := range OP_SET {
		if o == op {
			return true
		}
	}
	return false
}

func (o OP) String() string {
	return string(rune(o))
}

// Execute applies o to the machine and moves the program counter, either past
// o or onto a jump target. A returned error is always a *MachineError.
func (o OP) Execute(m *Machine) error {
	switch o {
	case OP_FLIP:
		m.Tape.Flip()
	case OP_READ:
		bit, err := m.Input.NextBit()
		if err != nil {
			return m.fail(o, fmt.Errorf("OP_READ failed to read input bit. %w", err))
		}
		m.Tape.SetCurrentCell(bit)
	case OP_WRITE:
		m.Output.PushBit(m.Tape.GetCurrentCell())
	case OP_POINTER_LEFT:
		m.Tape.MovePointerLeft()
	case OP_POINTER_RIGHT:
		m.Tape.MovePointerRight()
	case OP_WHILE:
		if !m.Tape.GetCurrentCell() {
			target, err := FindMatch(m.Program, m.ProgramIndex, rune(o))
			if err != nil {
				return m.fail(o, fmt.Errorf("OP_WHILE failed to find matching OP_WHILE_END. %w", err))
			}
			// Don't advance since the target is already the next instruction
			m.ProgramIndex = target
			return nil
		}
	case OP_WHILE_END:
		if m.Tape.GetCurrentCell() {
			target, err := FindMatch(m.Program, m.ProgramIndex, rune(o))
			if err != nil {
				return m.fail(o, fmt.Errorf("OP_WHILE_END failed to fall back to matching OP_WHILE. %w", err))
			}
			m.ProgramIndex = target
			return nil
		}
	default:
		if DEBUG {
			log.Printf("Skipping comment %q at program index [%d]", rune(o), m.ProgramIndex)
		}
	}

	m.ProgramIndex = m.ProgramIndex + 1
	return nil
}
