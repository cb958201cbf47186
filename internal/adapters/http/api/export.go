package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/agenteval/internal/adapters/chart"
	"github.com/okian/agenteval/internal/adapters/export"
)

// Download file names, matching the batch report defaults.
const (
	resultsFilename = "agent_evaluation.csv"
	summaryFilename = "agent_summary.csv"
)

// ExportHandler serves CSV downloads and the rendered chart.
type ExportHandler struct {
	deps Dependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps Dependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// HandleResultsCSV handles GET /api/results.csv requests.
func (h *ExportHandler) HandleResultsCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	report, ok := latestOrError(w, h.deps)
	if !ok {
		return
	}
	h.serveCSV(w, resultsFilename, export.DetailTable(report.Records))
}

// HandleSummaryCSV handles GET /api/summary.csv requests.
func (h *ExportHandler) HandleSummaryCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	report, ok := latestOrError(w, h.deps)
	if !ok {
		return
	}
	h.serveCSV(w, summaryFilename, export.SummaryTable(report.Summaries))
}

// HandleChart handles GET /api/chart.png requests.
func (h *ExportHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart"
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	report, ok := latestOrError(w, h.deps)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := chart.WritePNG(&buf, report.Summaries); err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "no_data", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "render_failed", wrapKind(op, ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// serveCSV buffers the table so an encoding failure can still produce a
// clean error response.
func (h *ExportHandler) serveCSV(w http.ResponseWriter, filename string, t export.Table) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, t); err != nil {
		writeError(w, http.StatusInternalServerError, "render_failed", wrapKind("api.csv", ErrRender, err))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	_, _ = buf.WriteTo(w)
}
