package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tmorren/selah/internal/config"
	"github.com/tmorren/selah/internal/database"
	"github.com/tmorren/selah/internal/database/pipeline"
	"github.com/tmorren/selah/internal/database/spreads"
	"github.com/tmorren/selah/internal/entities"
)

// StatsCommand prints catalog and pipeline progress counts.
type StatsCommand struct {
	DatabasePath string
}

// NewStatsCommand creates a new StatsCommand
func NewStatsCommand() *StatsCommand {
	return &StatsCommand{}
}

// ParseFlags parses command line flags
func (cmd *StatsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s stats [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show catalog size and stage counts per pipeline state.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the stats command
func (cmd *StatsCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	spreadRepo := spreads.NewRepository(db.DB)
	total, err := spreadRepo.Count()
	if err != nil {
		return fmt.Errorf("failed to count spreads: %w", err)
	}

	_, completed, err := spreadRepo.ListCompleted(1, 0)
	if err != nil {
		return fmt.Errorf("failed to count completed spreads: %w", err)
	}

	pipelineRepo := pipeline.NewRepository(db.DB)
	stats, err := pipelineRepo.Stats()
	if err != nil {
		return fmt.Errorf("failed to load stage stats: %w", err)
	}

	fmt.Printf("Spreads:   %d\n", total)
	fmt.Printf("Completed: %d\n\n", completed)
	fmt.Println("Stage states:")
	for _, state := range []entities.StageState{
		entities.StageStatePending,
		entities.StageStateInProgress,
		entities.StageStateDone,
		entities.StageStateError,
	} {
		fmt.Printf("  %-12s %d\n", state, stats[state])
	}

	return nil
}
