// Package scoring grades an answer against its reference answer.
package scoring

import (
	"math"
	"strings"

	"github.com/okian/agenteval/internal/domain/model"
	"github.com/okian/agenteval/internal/domain/similarity"
)

// Default scoring configuration constants.
const (
	DefaultPassThreshold = 0.75
	DefaultPrecision     = 2
	maxPrecision         = 10
)

// Evaluator grades an answer against the expected answer.
type Evaluator interface {
	// Evaluate compares answer with expected and returns the verdict.
	Evaluate(expected, answer string) model.Verdict
}

// TextEvaluator passes an answer when the normalized expected text is
// contained in the normalized answer, or when their similarity ratio is
// strictly above the pass threshold.
type TextEvaluator struct {
	passThreshold float64
	precision     int
}

// NewTextEvaluator creates a text evaluator with configuration options.
func NewTextEvaluator(opts ...Option) *TextEvaluator {
	e := &TextEvaluator{
		passThreshold: DefaultPassThreshold,
		precision:     DefaultPrecision,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate implements Evaluator.
func (e *TextEvaluator) Evaluate(expected, answer string) model.Verdict {
	expected = similarity.Normalize(expected)
	answer = similarity.Normalize(answer)

	ratio := similarity.Ratio(expected, answer)
	pass := strings.Contains(answer, expected) || ratio > e.passThreshold

	return model.Verdict{
		Score:    Round(ratio, e.precision),
		Pass:     pass,
		Feedback: model.FeedbackFor(pass),
	}
}

// PassThreshold returns the configured similarity threshold.
func (e *TextEvaluator) PassThreshold() float64 {
	return e.passThreshold
}

// Round rounds x to the given number of decimal digits, breaking ties to
// the even neighbour of the scaled value.
func Round(x float64, digits int) float64 {
	if digits < 0 {
		digits = 0
	}
	if digits > maxPrecision {
		digits = maxPrecision
	}
	scale := math.Pow10(digits)
	return math.RoundToEven(x*scale) / scale
}
