package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/okian/agenteval/internal/adapters/source"
	service "github.com/okian/agenteval/internal/app"
)

// maxRunBody caps the size of posted datasets; larger bodies get 413.
const maxRunBody = 4 << 20

// RunsHandler triggers evaluation runs.
type RunsHandler struct {
	deps Dependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps Dependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandleRuns handles POST /api/runs requests. An empty body re-runs the
// configured dataset; a JSON list of test cases (or {"test_cases": [...]})
// is evaluated instead. The new report is returned with 201.
func (h *RunsHandler) HandleRuns(w http.ResponseWriter, r *http.Request) {
	const op = "api.runs"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRunBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
				wrapKind(op, ErrBadRequest, fmt.Errorf("body exceeds %d bytes", tooLarge.Limit)))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}

	var report *Report
	if len(bytes.TrimSpace(body)) == 0 {
		report, err = h.deps.Run(r.Context())
	} else {
		cases, decodeErr := source.Decode("json", bytes.NewReader(body))
		if decodeErr != nil {
			writeError(w, http.StatusBadRequest, codeFor(decodeErr), wrapKind(op, ErrBadRequest, decodeErr))
			return
		}
		report, err = h.deps.Evaluate(r.Context(), cases)
	}
	if err != nil {
		if service.IsValidation(err) {
			writeError(w, http.StatusBadRequest, codeFor(err), err)
			return
		}
		writeError(w, http.StatusInternalServerError, "run_failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, service.ErrDuplicateID):
		return "duplicate_id"
	case service.IsValidation(err):
		return "invalid_test_case"
	default:
		return "bad_request"
	}
}
