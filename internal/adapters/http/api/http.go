// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/okian/agenteval/internal/app"
	"github.com/okian/agenteval/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the pipeline implementation.
type Dependencies interface {
	// Latest returns the most recent report or service.ErrNoReport.
	Latest() (*Report, error)

	// Run re-evaluates the configured dataset.
	Run(ctx context.Context) (*Report, error)

	// Evaluate runs the pipeline over caller-supplied cases.
	Evaluate(ctx context.Context, cases []model.TestCase) (*Report, error)

	// Verdict grades a single answer.
	Verdict(expected, answer string) model.Verdict
}

// Report mirrors the read shape returned by the pipeline.
type Report = service.Report

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	reportHandler   *ReportHandler
	exportHandler   *ExportHandler
	evaluateHandler *EvaluateHandler
	runsHandler     *RunsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		reportHandler:   NewReportHandler(deps),
		exportHandler:   NewExportHandler(deps),
		evaluateHandler: NewEvaluateHandler(deps),
		runsHandler:     NewRunsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/report", MetricsMiddleware(s.reportHandler.HandleReport, "report"))
	mux.HandleFunc("/api/summary", MetricsMiddleware(s.reportHandler.HandleSummary, "summary"))
	mux.HandleFunc("/api/results", MetricsMiddleware(s.reportHandler.HandleResults, "results"))
	mux.HandleFunc("/api/results.csv", MetricsMiddleware(s.exportHandler.HandleResultsCSV, "results_csv"))
	mux.HandleFunc("/api/summary.csv", MetricsMiddleware(s.exportHandler.HandleSummaryCSV, "summary_csv"))
	mux.HandleFunc("/api/chart.png", MetricsMiddleware(s.exportHandler.HandleChart, "chart"))
	mux.HandleFunc("/api/evaluate", MetricsMiddleware(s.evaluateHandler.HandleEvaluate, "evaluate"))
	mux.HandleFunc("/api/runs", MetricsMiddleware(s.runsHandler.HandleRuns, "runs"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
}

// latestOrError writes the appropriate error response when no report can be
// served and reports whether the caller may continue.
func latestOrError(w http.ResponseWriter, deps Dependencies) (*Report, bool) {
	report, err := deps.Latest()
	switch {
	case err == nil:
		return report, true
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "no_report", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
	return nil, false
}
