package boolrun

import (
	"github.com/alecthomas/repr"
	bf "nickandperla.net/boolfuck"
)

type Snapshot struct {
	ID           uint
	ExecutionID  uint
	Step         uint
	ProgramIndex int
	Head         int
	OutputBits   uint
	Output       []byte      `gorm:"type:blob"`
	Machine      *bf.Machine `gorm:"-"`
}

// NewSnapshot clones m. The clone can be stepped on its own to look ahead
// without disturbing the running machine.
func NewSnapshot(m *bf.Machine) *Snapshot {
	clone := m.Clone()
	output := make([]byte, len(clone.Output.Bytes))
	copy(output, clone.Output.Bytes)
	return &Snapshot{
		Step:         clone.InstructionCount,
		ProgramIndex: clone.ProgramIndex,
		Head:         clone.Tape.Head,
		OutputBits:   clone.Output.Cursor,
		Output:       output,
		Machine:      clone,
	}
}

// Dump renders the cloned machine, or the stored row when the snapshot was
// loaded back from the database.
func (s *Snapshot) Dump() string {
	if s.Machine != nil {
		return repr.String(s.Machine, repr.Indent("  "))
	}
	return repr.String(s, repr.Indent("  "))
}
