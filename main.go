package main

import (
	"fmt"
	"os"

	"github.com/tmorren/selah/internal/cli"
	"github.com/tmorren/selah/internal/config"
	"github.com/tmorren/selah/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// If no arguments or "serve" command, run the HTTP server
	if len(os.Args) < 2 || os.Args[1] == "serve" {
		cfg := config.NewConfig()
		entrypoint.Run(cfg, Version)
		return
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		cmd := cli.NewSeedCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "pending":
		cmd := cli.NewPendingCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "errors":
		cmd := cli.NewErrorsCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "stats":
		cmd := cli.NewStatsCommand()
		if err := cmd.ParseFlags(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := cmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("Selah v%s (%s)\n\n", Version, Commit)
	fmt.Println("Usage:")
	fmt.Printf("  %s [command] [options]\n\n", os.Args[0])
	fmt.Println("Commands:")
	fmt.Println("  serve      Run the HTTP server (default)")
	fmt.Println("  seed       Seed the spread catalog from a passage JSON file")
	fmt.Println("  pending    Show spreads ready for generation")
	fmt.Println("  errors     List errored stages, optionally reset them")
	fmt.Println("  stats      Show catalog and pipeline progress counts")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Printf("Run '%s [command] -h' for command-specific options.\n", os.Args[0])
}
