package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ErrorLSC/QMS/pkg/application/services/eta"
	"github.com/ErrorLSC/QMS/pkg/application/services/orchestration"
	"github.com/ErrorLSC/QMS/pkg/domain/repositories"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/config"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/events"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/logging"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/repositories/csv"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/scheduler"
	"github.com/ErrorLSC/QMS/pkg/infrastructure/store"
	"github.com/ErrorLSC/QMS/pkg/interfaces/api"
	"github.com/ErrorLSC/QMS/pkg/interfaces/cli/output"
)

// Config holds configuration for the ETA command
type Config struct {
	ScenarioDir string
	ConfigFile  string
	OutputDir   string
	Format      string
	Persist     bool
	Schedule    string
	Serve       bool
	Verbose     bool
	Help        bool

	// Stdout receives results and help; nil means os.Stdout
	Stdout io.Writer
}

// ETACommand handles the main ETA execution logic
type ETACommand struct {
	config Config
	out    io.Writer
}

// NewETACommand creates a new ETA command with the given configuration
func NewETACommand(config Config) *ETACommand {
	out := config.Stdout
	if out == nil {
		out = os.Stdout
	}
	return &ETACommand{config: config, out: out}
}

// Execute runs the ETA command. With -schedule or -serve it keeps running
// until ctx is cancelled.
func (c *ETACommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := c.validateInputs(cfg); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	opts, err := cfg.ETA.Options()
	if err != nil {
		return err
	}
	engine, err := eta.NewEngine(nil, opts, logger)
	if err != nil {
		return err
	}

	var snapshots repositories.RecommendationStore
	if c.config.Persist || c.longRunning(cfg) {
		snapshots, err = store.Open(cfg.Store)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		if snapshots != nil {
			defer snapshots.Close()
		}
	}

	source := csv.NewDirectorySource(cfg.Input.Dir)
	orchestrator := orchestration.NewETAOrchestrator(engine, source, snapshots, logger)

	if c.longRunning(cfg) {
		return c.runService(ctx, cfg, orchestrator, logger)
	}
	return c.runOnce(ctx, orchestrator, logger)
}

func (c *ETACommand) runOnce(ctx context.Context, o *orchestration.ETAOrchestrator, logger *zap.Logger) error {
	logger.Debug("running eta engine", zap.String("scenario", c.config.ScenarioDir))

	report, err := o.Run(ctx)
	if err != nil {
		return err
	}

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
		RunTime:   report.Duration,
		Changes:   report.Changes,
		Stdout:    c.out,
	}
	if err := output.Generate(report.Result, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}
	return nil
}

// runService runs the scheduler and the HTTP server until ctx is done
func (c *ETACommand) runService(ctx context.Context, cfg config.Config, o *orchestration.ETAOrchestrator, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	o.WithEvents(events.NewInMemoryEventStore(events.DefaultRetention, logger))

	if cfg.Schedule.Spec != "" {
		runner := scheduler.New(logger, ctx)
		if _, err := runner.Add(cfg.Schedule.Spec, o.RunScheduled); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule.Spec, err)
		}
		runner.Start()
		defer runner.Stop()
	}

	// First run up front so the API has data to serve
	o.RunScheduled(ctx)

	errCh := make(chan error, 1)
	var srv *http.Server
	if c.config.Serve {
		srv = api.NewServer(cfg.HTTP.Addr, api.NewHandler(o, logger))
		go func() {
			logger.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
		defer stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown failed", zap.Error(err))
		}
	}
	logger.Info("eta service stopped")
	return nil
}

// loadConfig reads the config file when given and applies flag overrides
func (c *ETACommand) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.config.ConfigFile, c.config.ConfigFile == "")
	if err != nil {
		return config.Config{}, err
	}
	if c.config.ScenarioDir != "" {
		cfg.Input.Dir = c.config.ScenarioDir
	}
	if c.config.Schedule != "" {
		cfg.Schedule.Spec = c.config.Schedule
	}
	if c.config.Verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func (c *ETACommand) longRunning(cfg config.Config) bool {
	return c.config.Serve || cfg.Schedule.Spec != ""
}

// validateInputs validates the command configuration
func (c *ETACommand) validateInputs(cfg config.Config) error {
	if cfg.Input.Dir == "" {
		return fmt.Errorf("must specify a -scenario directory or input.dir")
	}
	info, err := os.Stat(cfg.Input.Dir)
	if err != nil {
		return fmt.Errorf("scenario directory not found: %s", cfg.Input.Dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("scenario path is not a directory: %s", cfg.Input.Dir)
	}
	switch c.config.Format {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("unsupported output format: %s", c.config.Format)
	}
	return nil
}

// showHelp displays the help message
func (c *ETACommand) showHelp() {
	fmt.Fprintf(c.out, `ETA Engine CLI - Purchase order arrival estimates with transport mode correction

USAGE:
    eta -scenario <directory>              # Estimate once and print results
    eta -scenario <dir> -persist           # Also save the snapshot to the store
    eta -scenario <dir> -schedule <spec>   # Re-run on a cron schedule
    eta -scenario <dir> -serve             # Serve results over HTTP

OPTIONS:
    -scenario <dir>     Path to scenario directory containing CSV files
    -config <file>      YAML config file (ETA_* environment variables also apply)
    -output <dir>       Output directory for results (optional)
    -format <fmt>       Output format: text, json, csv (default: text)
    -persist            Save the snapshot and change log to the configured store
    -schedule <spec>    Cron spec, e.g. "0 6 * * 1-5" or "@every 1h"
    -serve              Start the HTTP API on http.addr
    -verbose            Enable verbose output and debug logging
    -help               Show this help message

SCENARIO DIRECTORY STRUCTURE:
    scenario_name/
    ├── in_transit.csv              # Open PO lines (required)
    ├── history.csv                 # Closed PO shipments
    ├── vendor_transport_stats.csv  # Transit statistics per vendor lane
    ├── vendor_master.csv           # Static vendor lead times
    ├── batch_profile.csv           # Predicted batching per item lane
    ├── delivery_behavior.csv       # Historical delivery behaviour
    ├── smart_leadtime.csv          # Lead-time quantiles per item lane
    └── inventory_leadtime.csv      # Item master lead times

CSV FILE FORMATS:

in_transit.csv / history.csv:
    po_number,po_line,item_code,warehouse,vendor_code,transport_mode,ordered_qty,remaining_qty,in_transit_qty,received_qty,shipped_qty,po_entry_date,invoice_date,actual_delivery_date,transport_time,closed,comment,order_type
    PO2,1,ITEM-1,WH1,V1,Air,10,10,5,0,5,2025-04-01,2025-06-08,,,N,,NB

vendor_transport_stats.csv:
    vendor_code,warehouse,transport_mode,mean,std,modal,q60,q90,smoothed,sample_count
    V1,WH1,Air,,,,5,,,12

HTTP ENDPOINTS (-serve):
    GET  /healthz
    GET  /api/recommendations?po=&item=&warehouse=
    GET  /api/events?from=&stream=
    POST /api/runs
    GET  /api/runs/last
    GET  /api/runs/{runID}/changes

EXAMPLES:
    eta -scenario scenarios/sample -verbose
    eta -scenario scenarios/sample -format csv -output results/
    eta -config eta.yaml -persist -schedule "@every 6h" -serve
`)
}
