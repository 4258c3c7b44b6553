package boolrun

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/xrash/smetrics"
	bf "nickandperla.net/boolfuck"
)

var ErrMaxStepsReached error = fmt.Errorf("Step limit reached")

// A record of one program run. Output is whatever the machine produced before
// it stopped, so a failed or stopped run still shows its partial output. When
// the job carried an expected output, Distance is the edit distance between
// the two and Matched reports byte equality.

type Execution struct {
	ID           uint
	ProgramID    uint
	Input        []byte `gorm:"type:blob"`
	Expected     []byte `gorm:"type:blob"`
	Output       []byte `gorm:"type:blob"`
	State        string
	Steps        uint
	Head         int
	MachineError *string
	Distance     *int
	Matched      bool
	Duration     time.Duration
	Snapshots    []*Snapshot
	CreatedAt    time.Time
	Err          error `gorm:"-"`
}

type Job struct {
	Code     string
	Input    []byte
	Expected []byte
}

type RunnerConfig struct {
	MaxSteps         uint `toml:"max_steps"`
	SnapshotInterval uint `toml:"snapshot_interval"`
}

type Runner struct {
	Config *RunnerConfig
}

func NewRunnerFromConfig(rc *RunnerConfig) *Runner {
	return &Runner{Config: rc}
}

// Run executes job on a fresh machine until it halts, fails, hits the step
// limit or ctx is done. A MaxSteps of zero means no limit.
func (r *Runner) Run(ctx context.Context, job *Job) *Execution {
	m := bf.NewMachine(job.Code, job.Input)
	exec := &Execution{
		Input:    job.Input,
		Expected: job.Expected,
	}

	start := time.Now()
	var err error
FOR:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break FOR
		default:
		}

		if r.Config.MaxSteps > 0 && m.InstructionCount >= r.Config.MaxSteps {
			err = fmt.Errorf("Stopped at program index [%d] after [%d] steps. %w", m.ProgramIndex, m.InstructionCount, ErrMaxStepsReached)
			break
		}

		executed := m.InstructionCount
		more, serr := m.Step()
		if serr != nil {
			err = serr
			break
		}

		if m.InstructionCount != executed && r.Config.SnapshotInterval > 0 && m.InstructionCount%r.Config.SnapshotInterval == 0 {
			snapshot := NewSnapshot(m)
			if DEBUG {
				log.Printf("Snapshot at step [%d]:\n%s", snapshot.Step, snapshot.Dump())
			}
			exec.Snapshots = append(exec.Snapshots, snapshot)
		}

		if !more {
			break
		}
	}
	exec.Duration = time.Since(start)

	exec.Steps = m.InstructionCount
	exec.Head = m.Tape.Head
	exec.Output = make([]byte, len(m.Output.Bytes))
	copy(exec.Output, m.Output.Bytes)

	var merr *bf.MachineError
	switch {
	case err == nil:
		exec.State = ExecutionHalted
	case errors.As(err, &merr):
		exec.State = ExecutionFailed
	default:
		exec.State = ExecutionStopped
	}
	if err != nil {
		msg := err.Error()
		exec.MachineError = &msg
		exec.Err = err
	}

	if job.Expected != nil {
		distance := smetrics.WagnerFischer(string(job.Expected), string(exec.Output), InsertCost, DeleteCost, SubstituteCost)
		exec.Distance = &distance
		exec.Matched = bytes.Equal(job.Expected, exec.Output)
	}

	if DEBUG {
		log.Printf("Execution %s after [%d] steps in %v", exec.State, exec.Steps, exec.Duration)
	}
	return exec
}
