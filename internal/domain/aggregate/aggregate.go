// Package aggregate groups evaluation records by agent and derives
// per-agent and overall accuracy.
package aggregate

import (
	"errors"

	"github.com/okian/agenteval/internal/domain/model"
)

// ErrEmptyInput is returned when an accuracy is requested over zero records.
var ErrEmptyInput = errors.New("no evaluation records")

// Aggregate groups records by agent (exact, case-sensitive match) and
// returns one summary per agent in order of first appearance. An empty
// input yields an empty, non-nil slice.
func Aggregate(records []model.EvaluationRecord) []model.AgentSummary {
	summaries := make([]model.AgentSummary, 0)
	index := make(map[string]int)
	sums := make([]float64, 0)

	for _, rec := range records {
		i, ok := index[rec.Agent]
		if !ok {
			i = len(summaries)
			index[rec.Agent] = i
			summaries = append(summaries, model.AgentSummary{Agent: rec.Agent})
			sums = append(sums, 0)
		}
		summaries[i].Total++
		if rec.Pass {
			summaries[i].Correct++
		}
		sums[i] += rec.Score
	}

	for i := range summaries {
		total := float64(summaries[i].Total)
		summaries[i].AvgScore = sums[i] / total
		summaries[i].AccuracyPct = 100 * float64(summaries[i].Correct) / total
	}
	return summaries
}

// ByAgent indexes summaries by agent name.
func ByAgent(summaries []model.AgentSummary) map[string]model.AgentSummary {
	out := make(map[string]model.AgentSummary, len(summaries))
	for _, s := range summaries {
		out[s.Agent] = s
	}
	return out
}

// Totals counts passing records and all records.
func Totals(records []model.EvaluationRecord) (correct, total int) {
	for _, rec := range records {
		if rec.Pass {
			correct++
		}
	}
	return correct, len(records)
}

// OverallAccuracy returns the percentage of passing records across all
// agents, or ErrEmptyInput when there are no records.
func OverallAccuracy(records []model.EvaluationRecord) (float64, error) {
	correct, total := Totals(records)
	if total == 0 {
		return 0, ErrEmptyInput
	}
	return 100 * float64(correct) / float64(total), nil
}
