package api

import (
	"errors"
	"fmt"

	"github.com/okian/agenteval/internal/adapters/chart"
	service "github.com/okian/agenteval/internal/app"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrRender     = errors.New("render failed")
)

// wrapKind tags err with the operation and an API error kind.
func wrapKind(op string, kind, err error) error {
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

// isNotFound maps upstream "nothing to show" conditions to 404.
func isNotFound(err error) bool {
	return errors.Is(err, service.ErrNoReport) || errors.Is(err, chart.ErrNoData)
}
