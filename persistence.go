package boolrun

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	sqlite "github.com/glebarez/sqlite"
	gorm "gorm.io/gorm"
)

type PersistenceConfig struct {
	Name          string   `toml:"name"`
	Path          string   `toml:"path"`
	SQLitePragmas []string `toml:"sqlite_pragmas"`
	SQLiteOptions []string `toml:"sqlite_options"`
	BatchSize     int      `toml:"batch_size"`
}

type Persistence struct {
	Config *PersistenceConfig
	DB     *gorm.DB
}

type Program struct {
	ID         uint
	Name       string
	Code       string `gorm:"uniqueIndex"`
	Executions []*Execution
}

type PruneResult struct {
	Programs          uint
	KeptExecutions    uint
	DeletedExecutions uint
	DeletedSnapshots  uint
}

func NewPersistence(config *PersistenceConfig) (*Persistence, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if len(config.Path) == 0 {
		return nil, fmt.Errorf("Path to database must be defined")
	}

	if len(config.Name) == 0 {
		return nil, fmt.Errorf("Name of database must be defined")
	}

	params := make([]string, 0, len(config.SQLitePragmas)+len(config.SQLiteOptions))
	for _, prag := range config.SQLitePragmas {
		params = append(params, fmt.Sprintf("_pragma=%s", prag))
	}
	params = append(params, config.SQLiteOptions...)

	var path strings.Builder
	path.WriteString(filepath.Join(config.Path, config.Name))
	if len(params) > 0 {
		path.WriteRune('?')
		path.WriteString(strings.Join(params, "&"))
	}

	db, err := gorm.Open(sqlite.Open(path.String()), &gorm.Config{})

	if err != nil {
		return nil, err
	}

	batchSize := config.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}
	db = db.Session(&gorm.Session{PrepareStmt: true, CreateBatchSize: batchSize})

	p := &Persistence{Config: config, DB: db}
	if err = p.initialize(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Persistence) initialize() error {
	if err := p.DB.AutoMigrate(
		&Program{},
		&Execution{},
		&Snapshot{},
	); err != nil {
		return err
	}

	return nil
}

func (p *Persistence) Shutdown() {
	if sqldb, err := p.DB.DB(); err != nil {
		log.Printf("Failed to retrieve raw DB: %v", err)
	} else {
		sqldb.Close()
	}
}

// SaveProgram stores prog, or loads the existing row with the same code into
// it.
func (p *Persistence) SaveProgram(prog *Program) (uint, error) {
	if prog == nil {
		return 0, fmt.Errorf("Program cannot be nil")
	}

	if result := p.DB.Where("code = ?", prog.Code).Attrs(Program{Name: prog.Name}).FirstOrCreate(prog); result.Error != nil {
		return 0, fmt.Errorf("Failed to call gorm.FirstOrCreate(): %w", result.Error)
	}

	return prog.ID, nil
}

func (p *Persistence) LoadProgram(id uint) (*Program, error) {
	prog := &Program{}
	if result := p.DB.First(prog, id); result.Error != nil {
		return nil, fmt.Errorf("Failed to load program [%d]: %w", id, result.Error)
	}
	return prog, nil
}

// SaveExecution stores exec along with its snapshots.
func (p *Persistence) SaveExecution(programID uint, exec *Execution) (uint, error) {
	if exec == nil {
		return 0, fmt.Errorf("Execution cannot be nil")
	}
	if programID == 0 {
		return 0, fmt.Errorf("Program must be persisted prior to execution creation")
	}

	exec.ProgramID = programID
	if result := p.DB.Create(exec); result.Error != nil {
		return 0, fmt.Errorf("Failed to call gorm.Create(): %w", result.Error)
	}

	if DEBUG {
		log.Printf("Saved execution [%d] with [%d] snapshots for program [%d]", exec.ID, len(exec.Snapshots), programID)
	}
	return exec.ID, nil
}

// ListExecutions returns the newest executions of a program first. A limit of
// zero returns all of them.
func (p *Persistence) ListExecutions(programID uint, limit int) ([]*Execution, error) {
	var execs []*Execution
	query := p.DB.Where("program_id = ?", programID).Order("id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if result := query.Find(&execs); result.Error != nil {
		return nil, fmt.Errorf("Failed to list executions for program [%d]: %w", programID, result.Error)
	}
	return execs, nil
}

func (p *Persistence) LoadSnapshots(executionID uint) ([]*Snapshot, error) {
	var snapshots []*Snapshot
	if result := p.DB.Where("execution_id = ?", executionID).Order("step asc").Find(&snapshots); result.Error != nil {
		return nil, fmt.Errorf("Failed to load snapshots for execution [%d]: %w", executionID, result.Error)
	}
	return snapshots, nil
}

// Prune keeps the newest keep executions of every program and deletes the
// rest together with their snapshots. With dryRun nothing is deleted, the
// result only reports what would be.
func (p *Persistence) Prune(keep uint, dryRun bool) (*PruneResult, error) {
	result := &PruneResult{}

	var programIDs []uint
	if err := p.DB.Model(&Program{}).Order("id asc").Pluck("id", &programIDs).Error; err != nil {
		return nil, fmt.Errorf("Failed to list programs: %w", err)
	}

	var doomed []uint
	for _, id := range programIDs {
		var execIDs []uint
		if err := p.DB.Model(&Execution{}).Where("program_id = ?", id).Order("id desc").Pluck("id", &execIDs).Error; err != nil {
			return nil, fmt.Errorf("Failed to list executions for program [%d]: %w", id, err)
		}
		result.Programs++
		if uint(len(execIDs)) <= keep {
			result.KeptExecutions += uint(len(execIDs))
			continue
		}
		result.KeptExecutions += keep
		doomed = append(doomed, execIDs[keep:]...)
	}
	result.DeletedExecutions = uint(len(doomed))

	if len(doomed) == 0 {
		return result, nil
	}

	var snapshots int64
	if err := p.DB.Model(&Snapshot{}).Where("execution_id IN ?", doomed).Count(&snapshots).Error; err != nil {
		return nil, fmt.Errorf("Failed to count snapshots: %w", err)
	}
	result.DeletedSnapshots = uint(snapshots)

	if dryRun {
		return result, nil
	}

	err := p.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("execution_id IN ?", doomed).Delete(&Snapshot{}).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", doomed).Delete(&Execution{}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to prune executions: %w", err)
	}

	return result, nil
}
