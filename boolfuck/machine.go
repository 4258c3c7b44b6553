package boolfuck

import (
	"fmt"
	"log"

	cp "github.com/jinzhu/copier"
)

const DEBUG = false

type State int

const (
	Running State = iota
	Halted
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Halted:
		return "halted"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MachineError is the failure of a single instruction. Reason wraps either
// ErrInputExhausted or ErrUnbalancedBrackets.
type MachineError struct {
	Op           OP
	ProgramIndex int
	Head         int
	Reason       error
}

func (e *MachineError) Error() string {
	return fmt.Sprintf("%q at program index [%d] with head at [%d] failed. %v", rune(e.Op), e.ProgramIndex, e.Head, e.Reason)
}

func (e *MachineError) Unwrap() error {
	return e.Reason
}

type Machine struct {
	Program          []rune
	ProgramIndex     int
	Tape             *Tape
	Input            *Input
	Output           *Output
	State            State
	InstructionCount uint
	Failure          *MachineError `copier:"-"`
}

func NewMachine(program string, input []byte) *Machine {
	return &Machine{
		Program: []rune(program),
		Tape:    NewTape(),
		Input:   NewInput(input),
		Output:  NewOutput(),
		State:   Running,
	}
}

func (m *Machine) Reset() {
	m.ProgramIndex = 0
	m.Tape.Reset()
	m.Input.Cursor = 0
	m.Output.Reset()
	m.State = Running
	m.InstructionCount = 0
	m.Failure = nil
}

func (m *Machine) LoadProgram(program string, input []byte) {
	m.Program = []rune(program)
	m.Input.Bytes = input
	m.Reset()
}

// Clone deep copies the machine so the copy can be stepped without touching
// the original.
func (m *Machine) Clone() *Machine {
	clone := &Machine{}
	if err := cp.CopyWithOption(clone, m, cp.Option{DeepCopy: true}); err != nil {
		panic(fmt.Errorf("Failed to clone machine at program index [%d]. %w", m.ProgramIndex, err))
	}
	clone.Failure = m.Failure
	return clone
}

func (m *Machine) fail(o OP, reason error) error {
	m.State = Failed
	m.Failure = &MachineError{
		Op:           o,
		ProgramIndex: m.ProgramIndex,
		Head:         m.Tape.Head,
		Reason:       reason,
	}
	if DEBUG {
		log.Printf("Machine failed after [%d] instructions: %v", m.InstructionCount, m.Failure)
	}
	return m.Failure
}

// Step executes the instruction under the program counter. It returns true
// while there is more program to run and false once the machine has halted.
// After a failure every call returns the same error.
func (m *Machine) Step() (bool, error) {
	switch m.State {
	case Failed:
		return false, m.Failure
	case Halted:
		return false, nil
	}

	if m.ProgramIndex >= len(m.Program) {
		m.State = Halted
		return false, nil
	}

	if err := OP(m.Program[m.ProgramIndex]).Execute(m); err != nil {
		return false, err
	}
	m.InstructionCount = m.InstructionCount + 1

	if m.ProgramIndex >= len(m.Program) {
		m.State = Halted
		return false, nil
	}
	return true, nil
}

func (m *Machine) Run() ([]byte, error) {
	for {
		more, err := m.Step()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}

	if DEBUG {
		log.Printf("Machine halted after [%d] instructions with [%d] output bits", m.InstructionCount, m.Output.Cursor)
	}
	return m.Output.Bytes, nil
}
