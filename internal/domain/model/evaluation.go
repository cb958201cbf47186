// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedRecord marks a test case that is missing a required field.
var ErrMalformedRecord = errors.New("malformed record")

// Feedback is the categorical verdict label attached to an evaluation.
type Feedback string

// Feedback values.
const (
	FeedbackCorrect   Feedback = "Correct"
	FeedbackIncorrect Feedback = "Incorrect"
)

// FeedbackFor derives the feedback label from a pass decision.
func FeedbackFor(pass bool) Feedback {
	if pass {
		return FeedbackCorrect
	}
	return FeedbackIncorrect
}

// TestCase is a single question asked to an agent together with the
// reference answer and the answer the agent produced.
type TestCase struct {
	ID       int    `json:"id" yaml:"id"`
	Question string `json:"question" yaml:"question"`
	Expected string `json:"expected" yaml:"expected"`
	Answer   string `json:"answer" yaml:"answer"`
	Agent    string `json:"agent" yaml:"agent"`
}

// Validate reports the first required field that is missing. Expected and
// Answer may legitimately be empty, so only identity fields are checked here;
// sources detect absent keys themselves.
func (tc TestCase) Validate() error {
	switch {
	case tc.ID <= 0:
		return &MalformedRecordError{ID: tc.ID, Field: "id", Reason: "must be positive"}
	case strings.TrimSpace(tc.Question) == "":
		return &MalformedRecordError{ID: tc.ID, Field: "question"}
	case strings.TrimSpace(tc.Agent) == "":
		return &MalformedRecordError{ID: tc.ID, Field: "agent"}
	}
	return nil
}

// MalformedRecordError identifies the offending test case and field. An
// empty Reason means the field is absent.
type MalformedRecordError struct {
	ID     int
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("test case %d: missing %s", e.ID, e.Field)
	}
	return fmt.Sprintf("test case %d: %s %s", e.ID, e.Field, e.Reason)
}

// Unwrap lets callers match with errors.Is(err, ErrMalformedRecord).
func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// Verdict is the outcome of comparing one answer against its reference.
type Verdict struct {
	Score    float64  `json:"score"`
	Pass     bool     `json:"pass"`
	Feedback Feedback `json:"feedback"`
}

// EvaluationRecord is a test case joined with its verdict. Expected and
// Answer keep the text exactly as supplied; normalization is internal to
// the evaluator.
type EvaluationRecord struct {
	ID       int      `json:"id"`
	Question string   `json:"question"`
	Expected string   `json:"expected"`
	Answer   string   `json:"answer"`
	Agent    string   `json:"agent"`
	Score    float64  `json:"score"`
	Pass     bool     `json:"pass"`
	Feedback Feedback `json:"feedback"`
}

// NewEvaluationRecord builds the record for tc from its verdict.
func NewEvaluationRecord(tc TestCase, v Verdict) EvaluationRecord {
	return EvaluationRecord{
		ID:       tc.ID,
		Question: tc.Question,
		Expected: tc.Expected,
		Answer:   tc.Answer,
		Agent:    tc.Agent,
		Score:    v.Score,
		Pass:     v.Pass,
		Feedback: v.Feedback,
	}
}

// AgentSummary aggregates the records of a single agent.
type AgentSummary struct {
	Agent       string  `json:"agent"`
	Correct     int     `json:"correct"`
	Total       int     `json:"total"`
	AvgScore    float64 `json:"avg_score"`
	AccuracyPct float64 `json:"accuracy_pct"`
}
