// Package service runs the evaluation pipeline: load test cases, validate
// them, grade every answer and aggregate the verdicts per agent.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/agenteval/internal/adapters/source"
	"github.com/okian/agenteval/internal/domain/aggregate"
	"github.com/okian/agenteval/internal/domain/model"
	"github.com/okian/agenteval/internal/domain/scoring"
	"github.com/okian/agenteval/pkg/logger"
	"github.com/okian/agenteval/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// Run status labels recorded in metrics.
const (
	statusOK      = "ok"
	statusInvalid = "invalid"
	statusError   = "error"
)

// Report is the outcome of one evaluation run.
type Report struct {
	RunID       string                   `json:"run_id"`
	Source      string                   `json:"source"`
	GeneratedAt time.Time                `json:"generated_at"`
	Records     []model.EvaluationRecord `json:"records"`
	Summaries   []model.AgentSummary     `json:"summaries"`
	Correct     int                      `json:"correct"`
	Total       int                      `json:"total"`
	OverallPct  float64                  `json:"overall_accuracy_pct"`
	// Empty is set when the run had no test cases; OverallPct is then 0
	// rather than undefined.
	Empty bool `json:"empty"`
}

// Service evaluates batches of test cases and keeps the latest report.
type Service struct {
	mu sync.RWMutex

	// Core components
	source    source.Source
	evaluator scoring.Evaluator

	// Configuration
	workerCount int

	// State
	latest   *Report
	runs     int
	failures int
	lastErr  error

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount bounds concurrent evaluations within a run.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithSource sets the dataset the service runs over by default.
func WithSource(src source.Source) Option {
	return func(s *Service) {
		if src != nil {
			s.source = src
		}
	}
}

// WithEvaluator replaces the default text evaluator.
func WithEvaluator(e scoring.Evaluator) Option {
	return func(s *Service) {
		if e != nil {
			s.evaluator = e
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		source:      source.Builtin(),
		evaluator:   scoring.NewTextEvaluator(),
		workerCount: runtime.NumCPU(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) log() logger.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.logger == nil {
		if !logger.Initialized() {
			return logger.Nop()
		}
		s.logger = logger.Get().Named("pipeline")
	}
	return s.logger
}

// Run evaluates the configured source.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	return s.RunSource(ctx, s.source)
}

// Evaluate runs the pipeline over caller-supplied cases.
func (s *Service) Evaluate(ctx context.Context, cases []model.TestCase) (*Report, error) {
	return s.RunSource(ctx, source.Static("request", cases))
}

// RunSource loads src and runs the pipeline over its cases. The batch is
// rejected before any evaluation if a case is malformed or an id repeats.
func (s *Service) RunSource(ctx context.Context, src source.Source) (*Report, error) {
	start := time.Now()
	log := s.log()

	cases, err := src.Load(ctx)
	if err != nil {
		return nil, s.fail(ctx, start, statusFor(err), fmt.Errorf("load %s: %w", src.Name(), err))
	}
	if err := validate(cases); err != nil {
		return nil, s.fail(ctx, start, statusInvalid, err)
	}

	records, err := s.evaluate(ctx, cases)
	if err != nil {
		return nil, s.fail(ctx, start, statusError, err)
	}

	report := &Report{
		RunID:       uuid.NewString(),
		Source:      src.Name(),
		GeneratedAt: time.Now().UTC(),
		Records:     records,
		Summaries:   aggregate.Aggregate(records),
	}
	report.Correct, report.Total = aggregate.Totals(records)
	report.OverallPct, err = aggregate.OverallAccuracy(records)
	if errors.Is(err, aggregate.ErrEmptyInput) {
		report.Empty = true
		log.Warn(ctx, "evaluation run had no test cases", logger.String("source", src.Name()))
	}

	// Gauges and the latest report change together so concurrent runs
	// cannot leave one run's gauges next to the other's report.
	s.mu.Lock()
	publish(report)
	s.latest = report
	s.runs++
	s.lastErr = nil
	s.mu.Unlock()

	metrics.RecordRun(statusOK, float64(time.Since(start).Microseconds())/1000)

	log.Info(ctx, "evaluation run finished",
		logger.String("run_id", report.RunID),
		logger.String("source", report.Source),
		logger.Int("records", report.Total),
		logger.Int("correct", report.Correct),
		logger.Int("agents", len(report.Summaries)),
		logger.Float64("overall_accuracy_pct", report.OverallPct),
		logger.Duration("took", time.Since(start)),
	)
	return report, nil
}

// evaluate grades every case. Evaluations are independent, so they run on
// a bounded pool; each result is written to the slot of its input index.
func (s *Service) evaluate(ctx context.Context, cases []model.TestCase) ([]model.EvaluationRecord, error) {
	records := make([]model.EvaluationRecord, len(cases))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerCount)
	for i, tc := range cases {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v := s.evaluator.Evaluate(tc.Expected, tc.Answer)
			records[i] = model.NewEvaluationRecord(tc, v)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	for _, rec := range records {
		metrics.RecordEvaluation(rec.Agent, string(rec.Feedback), rec.Score)
	}
	return records, nil
}

// validate checks every case and rejects repeated ids.
func validate(cases []model.TestCase) error {
	seen := make(map[int]struct{}, len(cases))
	for _, tc := range cases {
		if err := tc.Validate(); err != nil {
			var mre *model.MalformedRecordError
			if errors.As(err, &mre) {
				metrics.RecordValidationFailure(mre.Field)
			}
			return err
		}
		if _, dup := seen[tc.ID]; dup {
			metrics.RecordValidationFailure("id")
			return fmt.Errorf("test case %d: %w", tc.ID, ErrDuplicateID)
		}
		seen[tc.ID] = struct{}{}
	}
	return nil
}

func statusFor(err error) string {
	if IsValidation(err) {
		return statusInvalid
	}
	return statusError
}

func (s *Service) fail(ctx context.Context, start time.Time, status string, err error) error {
	metrics.RecordRun(status, float64(time.Since(start).Microseconds())/1000)

	s.mu.Lock()
	s.failures++
	s.lastErr = err
	s.mu.Unlock()

	s.log().Error(ctx, "evaluation run failed", logger.String("status", status), logger.Error(err))
	return err
}

func publish(r *Report) {
	metrics.UpdateRunResult(r.Total, r.OverallPct)
	metrics.ResetAgentSummaries()
	for _, sum := range r.Summaries {
		metrics.UpdateAgentSummary(sum.Agent, sum.AccuracyPct, sum.AvgScore)
	}
}

// Verdict grades a single answer without recording a run.
func (s *Service) Verdict(expected, answer string) model.Verdict {
	return s.evaluator.Evaluate(expected, answer)
}

// Latest returns the most recent successful report.
func (s *Service) Latest() (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoReport
	}
	return s.latest, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"source":      s.source.Name(),
		"workerCount": s.workerCount,
		"runs":        s.runs,
		"failures":    s.failures,
	}
	if s.lastErr != nil {
		stats["lastError"] = s.lastErr.Error()
	}
	if s.latest != nil {
		stats["lastRunId"] = s.latest.RunID
		stats["records"] = s.latest.Total
		stats["agents"] = len(s.latest.Summaries)
		stats["overallAccuracyPct"] = s.latest.OverallPct
	}
	return stats
}
