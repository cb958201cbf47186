package export_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/agenteval/internal/adapters/export"
	"github.com/okian/agenteval/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var records = []model.EvaluationRecord{
	{ID: 1, Question: "What is the capital of India?", Expected: "New Delhi", Answer: "New Delhi is the capital of India.", Agent: "GPT-3.5", Score: 0.42, Pass: true, Feedback: model.FeedbackCorrect},
	{ID: 6, Question: "What is the capital of Italy?", Expected: "Rome", Answer: "The capital is Milan.", Agent: "Mistral", Score: 0.08, Pass: false, Feedback: model.FeedbackIncorrect},
}

var summaries = []model.AgentSummary{
	{Agent: "GPT-3.5", Correct: 2, Total: 2, AvgScore: 0.245, AccuracyPct: 100},
	{Agent: "Claude-3", Correct: 1, Total: 3, AvgScore: 0.5, AccuracyPct: 100.0 / 3.0},
}

func TestTables(t *testing.T) {
	Convey("Given evaluation output", t, func() {
		Convey("When building the detail table", func() {
			table := export.DetailTable(records)

			Convey("Then it should have the detail columns and one row per record", func() {
				So(table.Columns, ShouldResemble, []string{"id", "question", "expected", "answer", "agent", "score", "pass", "feedback"})
				So(table.Rows, ShouldHaveLength, 2)
				So(table.Rows[0], ShouldResemble, []string{"1", "What is the capital of India?", "New Delhi", "New Delhi is the capital of India.", "GPT-3.5", "0.42", "true", "Correct"})
				So(table.Rows[1][6], ShouldEqual, "false")
				So(table.Rows[1][7], ShouldEqual, "Incorrect")
			})
		})

		Convey("When building the summary table", func() {
			table := export.SummaryTable(summaries)

			Convey("Then it should keep full precision", func() {
				So(table.Columns, ShouldResemble, []string{"agent", "correct", "total", "avg_score", "accuracy_pct"})
				So(table.Rows[0], ShouldResemble, []string{"GPT-3.5", "2", "2", "0.245", "100"})
				So(table.Rows[1][4], ShouldStartWith, "33.33333")
			})
		})

		Convey("When building a formatted summary table", func() {
			table := export.SummaryTableWith(summaries, export.TwoDecimals)

			Convey("Then floats should have two decimals", func() {
				So(table.Rows[0][3], ShouldEqual, "0.24")
				So(table.Rows[0][4], ShouldEqual, "100.00")
				So(table.Rows[1][4], ShouldEqual, "33.33")
			})
		})

		Convey("When there is nothing to export", func() {
			table := export.SummaryTable(nil)

			Convey("Then the table should have columns but no rows", func() {
				So(table.Columns, ShouldHaveLength, 5)
				So(table.Rows, ShouldBeEmpty)
			})
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a detail table", t, func() {
		table := export.DetailTable(records)

		Convey("When writing CSV to a buffer", func() {
			var buf bytes.Buffer
			err := export.WriteCSV(&buf, table)

			Convey("Then it should write header and quoted rows", func() {
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
				So(lines, ShouldHaveLength, 3)
				So(lines[0], ShouldEqual, "id,question,expected,answer,agent,score,pass,feedback")
				So(lines[2], ShouldEqual, "6,What is the capital of Italy?,Rome,The capital is Milan.,Mistral,0.08,false,Incorrect")
			})
		})

		Convey("When a cell contains a comma", func() {
			var buf bytes.Buffer
			withComma := export.DetailTable([]model.EvaluationRecord{{ID: 9, Answer: "Paris, France", Agent: "A"}})
			So(export.WriteCSV(&buf, withComma), ShouldBeNil)

			Convey("Then it should be quoted", func() {
				So(buf.String(), ShouldContainSubstring, `"Paris, France"`)
			})
		})

		Convey("When writing to a nested file path", func() {
			path := filepath.Join(t.TempDir(), "out", "detail.csv")
			err := export.WriteFile(path, table)

			Convey("Then the directories and file should be created", func() {
				So(err, ShouldBeNil)
				data, readErr := os.ReadFile(path)
				So(readErr, ShouldBeNil)
				So(string(data), ShouldStartWith, "id,question")
			})
		})
	})
}
