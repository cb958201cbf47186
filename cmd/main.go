// Command agenteval grades agent answers against reference answers and
// reports per-agent accuracy, either as batch artifacts or as a live
// dashboard.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/agenteval/internal/adapters/source"
	app "github.com/okian/agenteval/internal/app"
	"github.com/okian/agenteval/internal/config"
	"github.com/okian/agenteval/internal/domain/scoring"
	"github.com/okian/agenteval/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
	dataset    string
}

func main() {
	// Our own registry carries the system metrics; keep the default one lean.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "agenteval",
		Short: "Score agent answers against expected answers and compare agents",
		Long: `agenteval grades each agent answer by text similarity against the
expected answer, aggregates pass/fail per agent and reports the result as
CSV files, a terminal table, a bar chart and an HTTP dashboard.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"YAML config file (defaults to $"+config.EnvConfig+")")
	rootCmd.PersistentFlags().StringVar(&opts.dataset, "dataset", "",
		`test cases: "builtin" or a .yaml/.yml/.json/.csv file (overrides config)`)

	rootCmd.AddCommand(newReportCmd(opts), newServeCmd(opts))
	return rootCmd
}

// runtimeDeps is everything a subcommand needs after bootstrapping.
type runtimeDeps struct {
	cfg *config.Config
	svc *app.Service
	log logger.Logger
}

// bootstrap loads configuration, initializes logging and builds the
// pipeline service.
func bootstrap(ctx context.Context, opts *rootOptions) (*runtimeDeps, error) {
	cfg, err := config.Load(ctx, opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.dataset != "" {
		cfg.Dataset = opts.dataset
	}

	// Logs go to stderr so report output on stdout stays clean.
	if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat(cfg.LogFormat)); err != nil {
		return nil, fmt.Errorf("initialize logging: %w", err)
	}
	log := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	src, err := source.New(cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}

	svc := app.New(
		app.WithLogger(log.Named("pipeline")),
		app.WithSource(src),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithEvaluator(scoring.NewTextEvaluator(
			scoring.WithPassThreshold(cfg.PassThreshold),
			scoring.WithPrecision(cfg.ScorePrecision),
		)),
	)
	return &runtimeDeps{cfg: cfg, svc: svc, log: log}, nil
}
