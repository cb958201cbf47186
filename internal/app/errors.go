package service

import (
	"errors"

	"github.com/okian/agenteval/internal/domain/model"
)

// Sentinel error kinds for the pipeline service.
var (
	ErrDuplicateID = errors.New("duplicate test case id")
	ErrNoReport    = errors.New("no evaluation run yet")
)

// IsValidation reports whether err rejected the batch before evaluation.
func IsValidation(err error) bool {
	return errors.Is(err, model.ErrMalformedRecord) || errors.Is(err, ErrDuplicateID)
}
