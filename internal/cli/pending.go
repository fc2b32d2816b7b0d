package cli

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tmorren/selah/internal/config"
	"github.com/tmorren/selah/internal/database"
	"github.com/tmorren/selah/internal/database/pipeline"
)

// PendingCommand prints the pending-work view: the next batch of spreads
// whose stage is ready for generation, canonical order.
type PendingCommand struct {
	DatabasePath string
	Batch        int
}

// NewPendingCommand creates a new PendingCommand
func NewPendingCommand() *PendingCommand {
	return &PendingCommand{}
}

// ParseFlags parses command line flags
func (cmd *PendingCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("pending", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.IntVar(&cmd.Batch, "batch", pipeline.DefaultBatchSize, "Maximum number of work items to show")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s pending [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Show spreads whose next generation stage is ready to run.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the pending command
func (cmd *PendingCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := pipeline.NewRepository(db.DB)
	items, err := repo.NextWorkItems(cmd.Batch)
	if err != nil {
		return fmt.Errorf("failed to load pending work: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No pending work.")
		return nil
	}

	fmt.Printf("%-12s %-24s %-10s %s\n", "CODE", "PASSAGE", "STAGE", "RETRIES")
	for _, item := range items {
		passage := fmt.Sprintf("%s %d:%d-%d", item.Spread.Book, item.Spread.Chapter, item.Spread.VerseFrom, item.Spread.VerseTo)
		fmt.Printf("%-12s %-24s %-10s %d\n", item.Spread.Code, passage, item.NextStage, item.Stage.RetryCount)
	}

	return nil
}
