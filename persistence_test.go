package boolrun

import (
	"context"
	"testing"
)

func makePersistence(t *testing.T) *Persistence {
	persist, err := NewPersistence(&PersistenceConfig{
		Name:          "boolrun_test.db",
		Path:          t.TempDir(),
		SQLitePragmas: []string{"journal_mode(WAL)"},
		BatchSize:     10,
	})
	if err != nil {
		t.Fatalf("Unexpected failure calling NewPersistence(). %v", err)
	}
	t.Cleanup(persist.Shutdown)
	return persist
}

func TestNewPersistenceValidation(t *testing.T) {
	if _, err := NewPersistence(nil); err == nil || err.Error() != "config cannot be nil" {
		t.Errorf("Error string doesn't match: %v", err)
	}
	if _, err := NewPersistence(&PersistenceConfig{Name: "x.db"}); err == nil || err.Error() != "Path to database must be defined" {
		t.Errorf("Error string doesn't match: %v", err)
	}
	if _, err := NewPersistence(&PersistenceConfig{Path: t.TempDir()}); err == nil || err.Error() != "Name of database must be defined" {
		t.Errorf("Error string doesn't match: %v", err)
	}
}

func TestSaveProgram(t *testing.T) {
	persist := makePersistence(t)

	id, err := persist.SaveProgram(&Program{Name: "hello", Code: HELLO_WORLD})
	if err != nil {
		t.Fatalf("Unexpected failure calling SaveProgram(). %v", err)
	}
	if id == 0 {
		t.Errorf("SaveProgram returned id [0]")
	}

	again, err := persist.SaveProgram(&Program{Name: "other", Code: HELLO_WORLD})
	if err != nil || again != id {
		t.Errorf("Saving the same code returned id [%d], expected [%d]. %v", again, id, err)
	}

	empty, err := persist.SaveProgram(&Program{Name: "empty", Code: ""})
	if err != nil || empty == id {
		t.Errorf("Empty program got id [%d] (hello is [%d]). %v", empty, id, err)
	}

	prog, err := persist.LoadProgram(id)
	if err != nil {
		t.Fatalf("Unexpected failure calling LoadProgram(). %v", err)
	}
	if prog.Name != "hello" || prog.Code != HELLO_WORLD {
		t.Errorf("Loaded program [%s] doesn't match the saved one", prog.Name)
	}

	if _, err := persist.LoadProgram(9999); err == nil {
		t.Errorf("Unexpected success loading program [9999]")
	}
}

func TestSaveExecution(t *testing.T) {
	persist := makePersistence(t)

	if _, err := persist.SaveExecution(0, &Execution{}); err == nil {
		t.Errorf("Unexpected success saving an execution without a program")
	}

	id, _ := persist.SaveProgram(&Program{Name: "flips", Code: "+>+>+>+>+;"})
	exec := makeRunner(0, 2).Run(context.Background(), &Job{Code: "+>+>+>+>+;", Expected: []byte{1}})

	execID, err := persist.SaveExecution(id, exec)
	if err != nil {
		t.Fatalf("Unexpected failure calling SaveExecution(). %v", err)
	}

	execs, err := persist.ListExecutions(id, 0)
	if err != nil {
		t.Fatalf("Unexpected failure calling ListExecutions(). %v", err)
	}
	if len(execs) != 1 || execs[0].ID != execID {
		t.Fatalf("Listed executions %v don't contain [%d]", execs, execID)
	}

	stored := execs[0]
	if stored.State != ExecutionHalted || stored.Steps != 10 || !stored.Matched {
		t.Errorf("Stored execution state [%s] steps [%d] matched [%v]", stored.State, stored.Steps, stored.Matched)
	}
	if len(stored.Output) != 1 || stored.Output[0] != 1 {
		t.Errorf("Stored output [%v] is not expected value [1]", stored.Output)
	}

	snapshots, err := persist.LoadSnapshots(execID)
	if err != nil {
		t.Fatalf("Unexpected failure calling LoadSnapshots(). %v", err)
	}
	if len(snapshots) != 5 {
		t.Fatalf("Snapshot count [%d] is not expected value [5]", len(snapshots))
	}
	if snapshots[0].Step != 2 || snapshots[4].Step != 10 {
		t.Errorf("Snapshots out of order: first step [%d] last step [%d]", snapshots[0].Step, snapshots[4].Step)
	}
}

func TestListExecutionsAndPrune(t *testing.T) {
	persist := makePersistence(t)
	runner := makeRunner(100, 1)

	ids := map[string]uint{}
	for _, code := range []string{"+;", "+[]"} {
		id, err := persist.SaveProgram(&Program{Name: code, Code: code})
		if err != nil {
			t.Fatalf("Unexpected failure calling SaveProgram(). %v", err)
		}
		ids[code] = id
		for i := 0; i < 3; i++ {
			if _, err := persist.SaveExecution(id, runner.Run(context.Background(), &Job{Code: code})); err != nil {
				t.Fatalf("Unexpected failure calling SaveExecution(). %v", err)
			}
		}
	}

	execs, err := persist.ListExecutions(ids["+[]"], 2)
	if err != nil {
		t.Fatalf("Unexpected failure calling ListExecutions(). %v", err)
	}
	if len(execs) != 2 || execs[0].ID < execs[1].ID {
		t.Errorf("ListExecutions didn't return the newest two first: %v", execs)
	}
	if execs[0].State != ExecutionStopped {
		t.Errorf("Looping execution state [%s] is not [%s]", execs[0].State, ExecutionStopped)
	}

	preview, err := persist.Prune(1, true)
	if err != nil {
		t.Fatalf("Unexpected failure calling Prune(dry run). %v", err)
	}
	// "+;" takes 2 steps, "+[]" is cut at 100, one snapshot per step
	if preview.Programs != 2 || preview.KeptExecutions != 2 || preview.DeletedExecutions != 4 || preview.DeletedSnapshots != 204 {
		t.Errorf("Unexpected dry run result: %+v", preview)
	}
	if execs, _ := persist.ListExecutions(ids["+;"], 0); len(execs) != 3 {
		t.Errorf("Dry run deleted executions, [%d] left", len(execs))
	}

	result, err := persist.Prune(1, false)
	if err != nil {
		t.Fatalf("Unexpected failure calling Prune(). %v", err)
	}
	if *result != *preview {
		t.Errorf("Prune result %+v doesn't match dry run %+v", result, preview)
	}

	for code, id := range ids {
		execs, _ := persist.ListExecutions(id, 0)
		if len(execs) != 1 {
			t.Errorf("Program [%s] has [%d] executions after prune, expected [1]", code, len(execs))
			continue
		}
		if snapshots, _ := persist.LoadSnapshots(execs[0].ID); len(snapshots) != int(execs[0].Steps) {
			t.Errorf("Kept execution of [%s] lost snapshots: [%d] of [%d]", code, len(snapshots), execs[0].Steps)
		}
	}

	var orphans int64
	persist.DB.Model(&Snapshot{}).Where("execution_id NOT IN (?)", persist.DB.Model(&Execution{}).Select("id")).Count(&orphans)
	if orphans != 0 {
		t.Errorf("[%d] snapshots left without an execution", orphans)
	}
}
