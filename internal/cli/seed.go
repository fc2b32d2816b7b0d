package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tmorren/selah/internal/config"
	"github.com/tmorren/selah/internal/database"
)

// SeedCommand loads the passage catalog and creates spread skeletons with
// pending stage rows. Already-seeded spreads are skipped.
type SeedCommand struct {
	DatabasePath string
	CatalogPath  string
	Verbose      bool
}

// NewSeedCommand creates a new SeedCommand
func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

// ParseFlags parses command line flags
func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")
	fs.StringVar(&cmd.CatalogPath, "catalog", "./catalog.json", "Path to the passage catalog JSON file")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Print every created spread code")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Seed the spread catalog from a passage-unit JSON file.\n\n")
		fmt.Fprintf(os.Stderr, "Each entry names a book code, sequence number and verse range:\n")
		fmt.Fprintf(os.Stderr, "  [{\"book\": \"GEN\", \"seq\": 1, \"chapter\": 1, \"verse_from\": 1, \"verse_to\": 5}, ...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s seed -catalog ./catalog.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s seed -db /data/selah.db -verbose\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the seed command
func (cmd *SeedCommand) Run() error {
	absDBPath, err := filepath.Abs(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	data, err := os.ReadFile(cmd.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	var entries []database.SeedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse catalog file: %w", err)
	}

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	fmt.Printf("Seeding %d catalog entries into %s\n", len(entries), absDBPath)

	created, skipped := 0, 0
	for _, entry := range entries {
		spread, isNew, err := db.SeedSpread(entry)
		if err != nil {
			return fmt.Errorf("failed to seed %s-%03d: %w", entry.BookCode, entry.Seq, err)
		}
		if isNew {
			created++
			if cmd.Verbose {
				fmt.Printf("  created %s (%s %d:%d-%d)\n",
					spread.Code, spread.Book, spread.Chapter, spread.VerseFrom, spread.VerseTo)
			}
		} else {
			skipped++
		}
	}

	fmt.Printf("Done: %d created, %d already present\n", created, skipped)
	return nil
}
