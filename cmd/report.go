package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okian/agenteval/internal/adapters/chart"
	"github.com/okian/agenteval/internal/adapters/console"
	"github.com/okian/agenteval/internal/adapters/export"
	app "github.com/okian/agenteval/internal/app"
	"github.com/okian/agenteval/internal/config"
	"github.com/okian/agenteval/pkg/logger"
	"github.com/okian/agenteval/pkg/metrics"
	"github.com/spf13/cobra"
)

type reportOptions struct {
	outputDir string
	detail    bool
}

func newReportCmd(root *rootOptions) *cobra.Command {
	opts := &reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Evaluate the dataset once and write CSV and chart artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			deps, err := bootstrap(ctx, root)
			if err != nil {
				return err
			}
			if opts.outputDir != "" {
				deps.cfg.OutputDir = opts.outputDir
			}
			return runReport(ctx, deps, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "directory for the report artifacts (overrides config)")
	cmd.Flags().BoolVar(&opts.detail, "detail", false, "also print every evaluated record")
	return cmd
}

func runReport(ctx context.Context, deps *runtimeDeps, opts *reportOptions, out io.Writer) error {
	report, err := deps.svc.Run(ctx)
	if err != nil {
		return err
	}

	if report.Empty {
		fmt.Fprintln(out, "Overall Accuracy: no test cases")
	} else {
		fmt.Fprintln(out, console.RenderOverall(report.OverallPct))
	}
	fmt.Fprintln(out, console.RenderSummary(report.Summaries))
	if opts.detail {
		fmt.Fprintln(out, console.RenderDetail(report.Records))
	}

	return writeArtifacts(ctx, deps.cfg, deps.log, report)
}

// writeArtifacts writes the detail CSV, summary CSV and chart. An empty run
// still produces header-only CSVs; the chart is skipped.
func writeArtifacts(ctx context.Context, cfg *config.Config, log logger.Logger, report *app.Report) error {
	steps := []struct {
		artifact string
		path     string
		write    func(path string) error
	}{
		{"detail_csv", cfg.DetailPath(), func(p string) error { return export.WriteFile(p, export.DetailTable(report.Records)) }},
		{"summary_csv", cfg.SummaryPath(), func(p string) error { return export.WriteFile(p, export.SummaryTable(report.Summaries)) }},
		{"chart_png", cfg.ChartPath(), func(p string) error { return chart.SavePNG(p, report.Summaries) }},
	}

	for _, step := range steps {
		start := time.Now()
		err := step.write(step.path)
		if errors.Is(err, chart.ErrNoData) {
			log.Warn(ctx, "no agents to chart; skipping", logger.String("path", step.path))
			continue
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", step.artifact, err)
		}
		metrics.RecordExportDuration(step.artifact, float64(time.Since(start).Microseconds())/1000)
		log.Info(ctx, "artifact written", logger.String("artifact", step.artifact), logger.String("path", step.path))
	}
	return nil
}
