package api

import (
	"encoding/json"
	"errors"
	"net/http"
)

// evaluateRequest carries a single expected/answer pair. Both keys must be
// present; empty strings are valid values.
type evaluateRequest struct {
	Expected *string `json:"expected"`
	Answer   *string `json:"answer"`
}

func (e evaluateRequest) validate() error {
	switch {
	case e.Expected == nil:
		return errors.New("missing expected")
	case e.Answer == nil:
		return errors.New("missing answer")
	}
	return nil
}

// EvaluateHandler grades ad-hoc answers without recording a run.
type EvaluateHandler struct {
	deps Dependencies
}

// NewEvaluateHandler creates a new evaluate handler.
func NewEvaluateHandler(deps Dependencies) *EvaluateHandler {
	return &EvaluateHandler{deps: deps}
}

// HandleEvaluate handles POST /api/evaluate requests.
func (h *EvaluateHandler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.evaluate"
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Verdict(*req.Expected, *req.Answer))
}
