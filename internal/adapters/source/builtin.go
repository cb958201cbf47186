package source

import (
	"context"

	"github.com/okian/agenteval/internal/domain/model"
)

// BuiltinName is the location string selecting the sample dataset.
const BuiltinName = "builtin"

// Builtin returns the sample dataset of six questions answered by three
// agents.
func Builtin() Source {
	return &builtin{}
}

type builtin struct{}

func (b *builtin) Name() string { return BuiltinName }

func (b *builtin) Load(ctx context.Context) ([]model.TestCase, error) {
	return Static(BuiltinName, sampleCases()).Load(ctx)
}

func sampleCases() []model.TestCase {
	return []model.TestCase{
		{
			ID:       1,
			Question: "What is the capital of India?",
			Expected: "New Delhi",
			Answer:   "New Delhi is the capital of India.",
			Agent:    "GPT-3.5",
		},
		{
			ID:       2,
			Question: "What is the capital of France?",
			Expected: "Paris",
			Answer:   "It is Paris.",
			Agent:    "Claude-3",
		},
		{
			ID:       3,
			Question: "What is 5 multiplied by 6?",
			Expected: "30",
			Answer:   "The answer is 30.",
			Agent:    "Mistral",
		},
		{
			ID:       4,
			Question: "Who discovered gravity?",
			Expected: "Isaac Newton",
			Answer:   "Newton discovered gravity.",
			Agent:    "Claude-3",
		},
		{
			ID:       5,
			Question: "What is the square root of 81?",
			Expected: "9",
			Answer:   "The square root of 81 is 9.",
			Agent:    "GPT-3.5",
		},
		{
			ID:       6,
			Question: "What is the capital of Italy?",
			Expected: "Rome",
			Answer:   "The capital is Milan.",
			Agent:    "Mistral",
		},
	}
}
