package scoring

// Option applies a configuration option to the TextEvaluator.
type Option func(*TextEvaluator)

// WithPassThreshold sets the similarity ratio an answer must exceed to pass
// without a substring match. Values outside [0, 1] are ignored.
func WithPassThreshold(threshold float64) Option {
	return func(e *TextEvaluator) {
		if threshold >= 0 && threshold <= 1 {
			e.passThreshold = threshold
		}
	}
}

// WithPrecision sets the number of decimals the reported score is rounded to.
func WithPrecision(digits int) Option {
	return func(e *TextEvaluator) {
		if digits >= 0 && digits <= maxPrecision {
			e.precision = digits
		}
	}
}
