package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"nickandperla.net/boolrun"
)

var (
	toolConfigPath = flag.String("config", "", "The config file for boolrun tools to use. Built in defaults are used when empty")
	programPath    = flag.String("program", "", "File holding the Boolfuck program")
	inlineCode     = flag.String("e", "", "Program text, used instead of -program")
	name           = flag.String("name", "", "Name to store the program under. Defaults to the program path")
	inputPath      = flag.String("input", "", "File whose bytes are the program input")
	expectPath     = flag.String("expect", "", "File holding the expected output to compare against")
	maxSteps       = flag.Uint("max-steps", 0, "Stop after this many instructions. Overrides the config when non-zero")
	snapshot       = flag.Uint("snapshot", 0, "Record a machine snapshot every N instructions. Overrides the config when non-zero")
	persist        = flag.Bool("persist", false, "Store the program and its execution in the history database")
	trace          = flag.Bool("trace", false, "Log every snapshot's machine state")
)

func readOptional(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("Unable to read [%s]: %v", path, err)
	}
	return data
}

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *trace {
		log.SetLevel(log.DebugLevel)
	}

	toolConfig := boolrun.DefaultToolConfig()
	if *toolConfigPath != "" {
		var err error
		if toolConfig, err = boolrun.LoadToolConfig(*toolConfigPath); err != nil {
			log.Fatalf("Unable to load boolrun config: %v", err)
		}
	}
	if *maxSteps != 0 {
		toolConfig.Runner.MaxSteps = *maxSteps
	}
	if *snapshot != 0 {
		toolConfig.Runner.SnapshotInterval = *snapshot
	}

	// No program at all runs the empty program on empty input.
	code := *inlineCode
	if code == "" && *programPath != "" {
		code = string(readOptional(*programPath))
	}
	job := &boolrun.Job{
		Code:     code,
		Input:    readOptional(*inputPath),
		Expected: readOptional(*expectPath),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := boolrun.NewRunnerFromConfig(toolConfig.Runner)
	exec := runner.Run(ctx, job)

	fields := log.Fields{
		"program": *programPath,
		"steps":   exec.Steps,
		"state":   exec.State,
		"elapsed": exec.Duration,
	}
	if exec.Distance != nil {
		fields["distance"] = *exec.Distance
		fields["matched"] = exec.Matched
	}
	for _, s := range exec.Snapshots {
		log.WithField("step", s.Step).Debugf("Snapshot\n%s", s.Dump())
	}

	if *persist {
		store, err := boolrun.NewPersistence(toolConfig.Persistence)
		if err != nil {
			log.Fatalf("Failed to create or initialize Persistence: %v", err)
		}
		progName := *name
		if progName == "" {
			progName = *programPath
		}
		progID, err := store.SaveProgram(&boolrun.Program{Name: progName, Code: code})
		if err != nil {
			store.Shutdown()
			log.Fatalf("Persisting program failed: %v", err)
		}
		execID, err := store.SaveExecution(progID, exec)
		store.Shutdown()
		if err != nil {
			log.Fatalf("Persisting execution failed: %v", err)
		}
		fields["program_id"] = progID
		fields["execution_id"] = execID
	}

	if exec.Err != nil {
		log.WithFields(fields).Errorf("Run failed: %v", exec.Err)
		os.Exit(1)
	}

	if _, err := os.Stdout.Write(exec.Output); err != nil {
		log.Fatalf("Writing output failed: %v", err)
	}
	log.WithFields(fields).Info("Run complete")

	if exec.Distance != nil && !exec.Matched {
		os.Exit(3)
	}
}
