package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/agenteval/internal/adapters/source"
	service "github.com/okian/agenteval/internal/app"
	"github.com/okian/agenteval/internal/domain/model"
	"github.com/okian/agenteval/internal/domain/scoring"
	"github.com/okian/agenteval/pkg/logger"
	"github.com/okian/agenteval/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)


type failingSource struct{}

func (failingSource) Name() string { return "broken" }
func (failingSource) Load(context.Context) ([]model.TestCase, error) {
	return nil, errors.New("disk on fire")
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should report the builtin source", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["source"], ShouldEqual, source.BuiltinName)
			So(stats["runs"], ShouldEqual, 0)
		})

		Convey("Then no report is available yet", func() {
			_, err := svc.Latest()
			So(err, ShouldEqual, service.ErrNoReport)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(3),
			service.WithLogger(logger.Nop()),
			service.WithEvaluator(scoring.NewTextEvaluator(scoring.WithPassThreshold(0.5))),
		)

		Convey("Then it should be created successfully", func() {
			So(svc.GetStats()["workerCount"], ShouldEqual, 3)
		})
	})
}

func TestService_RunBuiltin(t *testing.T) {
	Convey("Given a service over the sample dataset", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		ctx := context.Background()

		report, err := svc.Run(ctx)
		So(err, ShouldBeNil)

		Convey("Then records keep input order and expected scores", func() {
			So(report.Records, ShouldHaveLength, 6)
			wantScores := []float64{0.42, 0.59, 0.21, 0.32, 0.07, 0.08}
			wantPass := []bool{true, true, true, false, true, false}
			for i, rec := range report.Records {
				So(rec.ID, ShouldEqual, i+1)
				So(rec.Score, ShouldEqual, wantScores[i])
				So(rec.Pass, ShouldEqual, wantPass[i])
			}
		})

		Convey("Then agents are summarized in first-appearance order", func() {
			So(report.Summaries, ShouldHaveLength, 3)
			So(report.Summaries[0].Agent, ShouldEqual, "GPT-3.5")
			So(report.Summaries[0].Correct, ShouldEqual, 2)
			So(report.Summaries[0].AvgScore, ShouldAlmostEqual, 0.245, 1e-9)
			So(report.Summaries[1].Agent, ShouldEqual, "Claude-3")
			So(report.Summaries[1].AccuracyPct, ShouldAlmostEqual, 50.0, 1e-9)
			So(report.Summaries[1].AvgScore, ShouldAlmostEqual, 0.455, 1e-9)
			So(report.Summaries[2].Agent, ShouldEqual, "Mistral")
			So(report.Summaries[2].AvgScore, ShouldAlmostEqual, 0.145, 1e-9)
		})

		Convey("Then the overall accuracy covers every record", func() {
			So(report.Correct, ShouldEqual, 4)
			So(report.Total, ShouldEqual, 6)
			So(report.OverallPct, ShouldAlmostEqual, 200.0/3.0, 1e-9)
			So(report.Empty, ShouldBeFalse)
			So(report.RunID, ShouldNotBeEmpty)
			So(report.Source, ShouldEqual, source.BuiltinName)
		})

		Convey("Then the report becomes the latest one", func() {
			latest, err := svc.Latest()
			So(err, ShouldBeNil)
			So(latest.RunID, ShouldEqual, report.RunID)
			So(svc.GetStats()["runs"], ShouldEqual, 1)
		})
	})
}

func TestService_Evaluate(t *testing.T) {
	Convey("Given caller supplied test cases", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When one case lacks an agent", func() {
			cases := []model.TestCase{
				{ID: 1, Question: "q", Expected: "a", Answer: "a", Agent: "A"},
				{ID: 7, Question: "q", Expected: "a", Answer: "a"},
			}
			_, err := svc.Evaluate(ctx, cases)

			Convey("Then the whole batch is rejected naming the id", func() {
				So(err, ShouldNotBeNil)
				So(service.IsValidation(err), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "7")
				_, latestErr := svc.Latest()
				So(latestErr, ShouldEqual, service.ErrNoReport)
				So(svc.GetStats()["failures"], ShouldEqual, 1)
			})
		})

		Convey("When two cases share an id", func() {
			cases := []model.TestCase{
				{ID: 3, Question: "q", Expected: "a", Answer: "a", Agent: "A"},
				{ID: 3, Question: "q", Expected: "b", Answer: "b", Agent: "B"},
			}
			_, err := svc.Evaluate(ctx, cases)

			Convey("Then it fails with ErrDuplicateID", func() {
				So(errors.Is(err, service.ErrDuplicateID), ShouldBeTrue)
				So(service.IsValidation(err), ShouldBeTrue)
			})
		})

		Convey("When the batch is empty", func() {
			report, err := svc.Evaluate(ctx, nil)

			Convey("Then the report is empty rather than undefined", func() {
				So(err, ShouldBeNil)
				So(report.Empty, ShouldBeTrue)
				So(report.OverallPct, ShouldEqual, 0)
				So(report.Summaries, ShouldBeEmpty)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := svc.Evaluate(cctx, []model.TestCase{
				{ID: 1, Question: "q", Expected: "a", Answer: "a", Agent: "A"},
			})

			Convey("Then the run fails with the context error", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}

func TestService_SourceFailure(t *testing.T) {
	Convey("Given a source that cannot load", t, func() {
		svc := service.New(service.WithSource(failingSource{}))

		_, err := svc.Run(context.Background())

		Convey("Then the error names the source and is not a validation error", func() {
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "broken")
			So(service.IsValidation(err), ShouldBeFalse)
			So(svc.GetStats()["lastError"], ShouldContainSubstring, "disk on fire")
		})
	})
}

func TestService_Verdict(t *testing.T) {
	Convey("Given a default service", t, func() {
		svc := service.New()

		Convey("Then a contained reference passes", func() {
			v := svc.Verdict("Paris", "It is Paris.")
			So(v.Pass, ShouldBeTrue)
			So(v.Feedback, ShouldEqual, model.FeedbackCorrect)
		})

		Convey("Then a wrong answer fails", func() {
			v := svc.Verdict("Rome", "The capital is Milan.")
			So(v.Pass, ShouldBeFalse)
			So(v.Score, ShouldEqual, 0.08)
		})
	})
}

func TestService_WithoutGlobalLogger(t *testing.T) {
	Convey("Given a service built without a logger and no global logger", t, func() {
		So(logger.Initialized(), ShouldBeFalse)
		svc := service.New()

		Convey("Then a run completes instead of panicking", func() {
			var report *service.Report
			var err error
			So(func() { report, err = svc.Run(context.Background()) }, ShouldNotPanic)
			So(err, ShouldBeNil)
			So(report.Total, ShouldEqual, 6)
		})
	})
}

func TestService_ConcurrentRunsPublishConsistently(t *testing.T) {
	Convey("Given many runs over different agents racing each other", t, func() {
		svc := service.New(service.WithLogger(logger.Nop()))
		ctx := context.Background()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.Evaluate(ctx, []model.TestCase{{
					ID: 1, Question: "q", Expected: "a", Answer: "a", Agent: fmt.Sprintf("agent-%d", i),
				}})
			}()
		}
		wg.Wait()

		Convey("Then the agent gauges belong to the latest report", func() {
			latest, err := svc.Latest()
			So(err, ShouldBeNil)

			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			var agents []string
			for _, mf := range families {
				if mf.GetName() != "agenteval_pipeline_agent_accuracy_percent" {
					continue
				}
				for _, m := range mf.GetMetric() {
					for _, lp := range m.GetLabel() {
						if lp.GetName() == "agent" {
							agents = append(agents, lp.GetValue())
						}
					}
				}
			}
			So(agents, ShouldResemble, []string{latest.Summaries[0].Agent})
		})
	})
}
