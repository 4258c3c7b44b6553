package boolrun

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type ToolConfig struct {
	Persistence *PersistenceConfig `toml:"persistence"`
	Runner      *RunnerConfig      `toml:"runner"`
}

func DefaultToolConfig() *ToolConfig {
	return &ToolConfig{
		Persistence: &PersistenceConfig{
			Name:          "boolrun.db",
			Path:          ".",
			SQLitePragmas: []string{"journal_mode(WAL)", "busy_timeout(5000)"},
			BatchSize:     1000,
		},
		Runner: &RunnerConfig{
			MaxSteps:         10000000,
			SnapshotInterval: 0,
		},
	}
}

// LoadToolConfig decodes the toml file at path. Tables missing from the file
// fall back to DefaultToolConfig.
func LoadToolConfig(path string) (*ToolConfig, error) {
	conffile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Unable to open boolrun config [%s]: %w", path, err)
	}
	defer conffile.Close()

	var config ToolConfig
	if _, err = toml.NewDecoder(conffile).Decode(&config); err != nil {
		return nil, fmt.Errorf("Failed to unmarshal boolrun config [%s]: %w", path, err)
	}

	defaults := DefaultToolConfig()
	if config.Persistence == nil {
		config.Persistence = defaults.Persistence
	}
	if config.Runner == nil {
		config.Runner = defaults.Runner
	}
	return &config, nil
}
