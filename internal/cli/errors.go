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

// ErrorsCommand lists errored stages for triage and optionally resets them
// back to pending for another attempt.
type ErrorsCommand struct {
	DatabasePath string
	Reset        bool
	MaxRetries   int
}

// NewErrorsCommand creates a new ErrorsCommand
func NewErrorsCommand() *ErrorsCommand {
	return &ErrorsCommand{}
}

// ParseFlags parses command line flags
func (cmd *ErrorsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("errors", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.BoolVar(&cmd.Reset, "reset", false, "Reset listed stages back to pending")
	fs.IntVar(&cmd.MaxRetries, "max-retries", 0, "With -reset, skip stages that already failed more than this many times (0 = no limit)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s errors [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "List errored generation stages with their messages and retry counts.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s errors\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s errors -reset -max-retries 3\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the errors command
func (cmd *ErrorsCommand) Run() error {
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
	items, err := repo.ErrorSet()
	if err != nil {
		return fmt.Errorf("failed to load error set: %w", err)
	}

	if len(items) == 0 {
		fmt.Println("No errored stages.")
		return nil
	}

	fmt.Printf("%-12s %-10s %-8s %s\n", "CODE", "STAGE", "RETRIES", "ERROR")
	for _, item := range items {
		fmt.Printf("%-12s %-10s %-8d %s\n", item.Spread.Code, item.Stage.Name, item.Stage.RetryCount, item.Stage.ErrorMessage)
	}

	if !cmd.Reset {
		return nil
	}

	reset, skipped := 0, 0
	for _, item := range items {
		if cmd.MaxRetries > 0 && item.Stage.RetryCount > cmd.MaxRetries {
			skipped++
			continue
		}
		if err := repo.ResetError(item.Stage.ID); err != nil {
			return fmt.Errorf("failed to reset %s/%s: %w", item.Spread.Code, item.Stage.Name, err)
		}
		reset++
	}

	fmt.Printf("\nReset %d stage(s) to pending", reset)
	if skipped > 0 {
		fmt.Printf(", skipped %d over the retry limit", skipped)
	}
	fmt.Println()
	return nil
}
