package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErrorLSC/QMS/pkg/interfaces/cli/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	if len(os.Args) > 1 && os.Args[1] == "generate" {
		err = runGenerate(ctx, os.Args[2:])
	} else {
		err = runETA(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runETA(ctx context.Context) error {
	// Command line flags
	var (
		scenarioDir = flag.String(
			"scenario",
			"",
			"Path to scenario directory containing CSV files",
		)
		configFile = flag.String("config", "", "Path to YAML config file (optional)")
		outputDir  = flag.String("output", "", "Output directory for results (optional)")
		format     = flag.String("format", "text", "Output format: text, json, csv")
		persist    = flag.Bool("persist", false, "Save the snapshot to the configured store")
		schedule   = flag.String("schedule", "", "Cron spec for recurring runs")
		serve      = flag.Bool("serve", false, "Serve results over HTTP")
		verbose    = flag.Bool("verbose", false, "Enable verbose output")
		help       = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	config := commands.Config{
		ScenarioDir: *scenarioDir,
		ConfigFile:  *configFile,
		OutputDir:   *outputDir,
		Format:      *format,
		Persist:     *persist,
		Schedule:    *schedule,
		Serve:       *serve,
		Verbose:     *verbose,
		Help:        *help,
	}

	return commands.NewETACommand(config).Execute(ctx)
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	var (
		items      = fs.Int("items", 50, "Number of items to generate")
		vendors    = fs.Int("vendors", 10, "Number of vendors")
		open       = fs.Int("open", 200, "Number of open PO lines")
		history    = fs.Int("history", 12, "Closed shipments per item")
		mislabeled = fs.Float64("mislabeled", 0.1, "Share of history recorded with the wrong mode")
		asOf       = fs.String("as-of", "", "Reference date YYYY-MM-DD (default: today)")
		outputDir  = fs.String("output", "", "Output directory for generated files")
		seed       = fs.Int64("seed", 0, "Random seed for reproducible generation")
		verbose    = fs.Bool("verbose", false, "Enable verbose output")
		help       = fs.Bool("help", false, "Show help message")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	config := commands.GenerateConfig{
		Items:          *items,
		Vendors:        *vendors,
		OpenPOs:        *open,
		HistoryPerItem: *history,
		Mislabeled:     *mislabeled,
		OutputDir:      *outputDir,
		Seed:           *seed,
		Verbose:        *verbose,
		Help:           *help,
	}
	if *asOf != "" {
		t, err := time.Parse("2006-01-02", *asOf)
		if err != nil {
			return fmt.Errorf("invalid -as-of date %q: %w", *asOf, err)
		}
		config.AsOf = t
	}

	return commands.NewGenerateCommand(config).Execute(ctx)
}
