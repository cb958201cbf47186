package api

import (
	"net/http"

	"github.com/okian/agenteval/internal/domain/model"
)

// summaryResponse is the aggregate view of the latest report.
type summaryResponse struct {
	RunID      string               `json:"run_id"`
	Summaries  []model.AgentSummary `json:"summaries"`
	Correct    int                  `json:"correct"`
	Total      int                  `json:"total"`
	OverallPct float64              `json:"overall_accuracy_pct"`
}

// resultsResponse lists every evaluated record of the latest report.
type resultsResponse struct {
	RunID   string                   `json:"run_id"`
	Records []model.EvaluationRecord `json:"records"`
}

// ReportHandler serves JSON views of the latest report.
type ReportHandler struct {
	deps Dependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps Dependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleReport handles GET /api/report requests.
func (h *ReportHandler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	report, ok := latestOrError(w, h.deps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleSummary handles GET /api/summary requests.
func (h *ReportHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	report, ok := latestOrError(w, h.deps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		RunID:      report.RunID,
		Summaries:  report.Summaries,
		Correct:    report.Correct,
		Total:      report.Total,
		OverallPct: report.OverallPct,
	})
}

// HandleResults handles GET /api/results requests.
func (h *ReportHandler) HandleResults(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	report, ok := latestOrError(w, h.deps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, resultsResponse{RunID: report.RunID, Records: report.Records})
}
