package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"nickandperla.net/boolrun"
)

var toolConfigPath = flag.String("config", "", "The config file for boolrun tools to use. Built in defaults are used when empty")
var programId = flag.Uint("program-id", 0, "The id of the program whose executions to list")
var limit = flag.Int("limit", 20, "How many executions to list, newest first. 0 lists all")
var prune = flag.Int("prune", -1, "Keep only the newest N executions of every program")
var dryRun = flag.Bool("dry-run", false, "Preview what a prune would delete without deleting")

// checkFlags rejects a listing without a program to list.
func checkFlags(prune int, programID uint) error {
	if prune < 0 && programID == 0 {
		return fmt.Errorf("-program-id is required unless -prune is given")
	}
	return nil
}

func main() {
	flag.Parse()

	if err := checkFlags(*prune, *programId); err != nil {
		fmt.Fprintln(flag.CommandLine.Output(), err)
		flag.Usage()
		os.Exit(2)
	}

	toolConfig := boolrun.DefaultToolConfig()
	if *toolConfigPath != "" {
		var err error
		if toolConfig, err = boolrun.LoadToolConfig(*toolConfigPath); err != nil {
			log.Fatalf("Unable to load boolrun config: %v", err)
		}
	}

	persist, err := boolrun.NewPersistence(toolConfig.Persistence)
	if err != nil {
		log.Fatalf("Failed to create or initialize Persistence: %v", err)
	}
	defer persist.Shutdown()

	if *prune >= 0 {
		log.WithFields(log.Fields{"keep": *prune, "dry_run": *dryRun}).Info("Pruning execution history")

		result, err := persist.Prune(uint(*prune), *dryRun)
		if err != nil {
			log.Fatalf("Prune failed: %v", err)
		}

		fmt.Printf("Prune %s:\n", map[bool]string{true: "(dry run)", false: "complete"}[*dryRun])
		fmt.Printf("  Programs:             %d\n", result.Programs)
		fmt.Printf("  Executions kept:      %d\n", result.KeptExecutions)
		fmt.Printf("  Executions deleted:   %d\n", result.DeletedExecutions)
		fmt.Printf("  Snapshots deleted:    %d\n", result.DeletedSnapshots)
		return
	}

	prog, err := persist.LoadProgram(*programId)
	if err != nil {
		log.Fatalf("Unable to load program from DB: %v", err)
	}

	execs, err := persist.ListExecutions(prog.ID, *limit)
	if err != nil {
		log.Fatalf("Unable to list executions: %v", err)
	}

	fmt.Printf("Program %d %q (%d runes)\n", prog.ID, prog.Name, len([]rune(prog.Code)))
	for _, e := range execs {
		line := fmt.Sprintf("  #%-6d %s  %-7s steps=%-10d output=%q", e.ID, e.CreatedAt.Format("2006-01-02 15:04:05"), e.State, e.Steps, e.Output)
		if e.Distance != nil {
			line += fmt.Sprintf(" distance=%d matched=%v", *e.Distance, e.Matched)
		}
		if e.MachineError != nil {
			line += fmt.Sprintf(" error=%q", *e.MachineError)
		}
		fmt.Println(line)
	}
}
