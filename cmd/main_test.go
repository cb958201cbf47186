package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	app "github.com/okian/agenteval/internal/app"
	"github.com/okian/agenteval/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func executeRoot(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	convey.Convey("Given the report command over the sample dataset", t, func() {
		dir := t.TempDir()
		t.Setenv("AGENTEVAL_WORKER_COUNT", "2")

		out, err := executeRoot("report", "--output-dir", dir)

		convey.Convey("Then it prints the overall accuracy and the summary table", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Overall Accuracy: 66.67%")
			convey.So(out, convey.ShouldContainSubstring, "GPT-3.5")
			convey.So(out, convey.ShouldContainSubstring, "Claude-3")
			convey.So(out, convey.ShouldContainSubstring, "Mistral")
		})

		convey.Convey("Then it writes every artifact", func() {
			detail, err := os.ReadFile(filepath.Join(dir, "agent_evaluation.csv"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(detail), convey.ShouldStartWith, "id,question,expected,answer,agent,score,pass,feedback\n")
			convey.So(strings.Count(string(detail), "\n"), convey.ShouldEqual, 7)

			summary, err := os.ReadFile(filepath.Join(dir, "agent_summary.csv"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(summary), convey.ShouldContainSubstring, "Claude-3,1,2,")

			png, err := os.ReadFile(filepath.Join(dir, "agent_accuracy_chart.png"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(png[:4]), convey.ShouldEqual, "\x89PNG")
		})
	})

	convey.Convey("Given a YAML dataset passed with --dataset", t, func() {
		dir := t.TempDir()
		dataset := filepath.Join(dir, "cases.yaml")
		yamlCases := `- id: 1
  question: q
  expected: Paris
  answer: It is Paris.
  agent: Solo
`
		convey.So(os.WriteFile(dataset, []byte(yamlCases), 0o600), convey.ShouldBeNil)

		out, err := executeRoot("report", "--dataset", dataset, "-o", dir, "--detail")

		convey.Convey("Then only that agent is reported", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Overall Accuracy: 100.00%")
			convey.So(out, convey.ShouldContainSubstring, "Solo")
			convey.So(out, convey.ShouldNotContainSubstring, "Mistral")
		})
	})

	convey.Convey("Given an empty JSON dataset", t, func() {
		dir := t.TempDir()
		dataset := filepath.Join(dir, "empty.json")
		convey.So(os.WriteFile(dataset, []byte("[]"), 0o600), convey.ShouldBeNil)

		out, err := executeRoot("report", "--dataset", dataset, "-o", dir)

		convey.Convey("Then it succeeds and reports no test cases", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Overall Accuracy: no test cases")
		})

		convey.Convey("Then both CSVs hold only their header", func() {
			detail, err := os.ReadFile(filepath.Join(dir, "agent_evaluation.csv"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(detail), convey.ShouldEqual, "id,question,expected,answer,agent,score,pass,feedback\n")

			summary, err := os.ReadFile(filepath.Join(dir, "agent_summary.csv"))
			convey.So(err, convey.ShouldBeNil)
			convey.So(string(summary), convey.ShouldEqual, "agent,correct,total,avg_score,accuracy_pct\n")
		})

		convey.Convey("Then no chart is written", func() {
			_, err := os.Stat(filepath.Join(dir, "agent_accuracy_chart.png"))
			convey.So(os.IsNotExist(err), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a JSON dataset under a misspelled key", t, func() {
		dir := t.TempDir()
		dataset := filepath.Join(dir, "typo.json")
		body := `{"cases":[{"id":1,"question":"q","expected":"a","answer":"a","agent":"A"}]}`
		convey.So(os.WriteFile(dataset, []byte(body), 0o600), convey.ShouldBeNil)

		_, err := executeRoot("report", "--dataset", dataset, "-o", dir)

		convey.Convey("Then the command fails and writes nothing", func() {
			convey.So(err, convey.ShouldNotBeNil)
			_, statErr := os.Stat(filepath.Join(dir, "agent_evaluation.csv"))
			convey.So(os.IsNotExist(statErr), convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given a dataset with an unknown extension", t, func() {
		_, err := executeRoot("report", "--dataset", "cases.txt", "-o", t.TempDir())

		convey.Convey("Then the command fails", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "dataset")
		})
	})

	convey.Convey("Given an invalid pass threshold in the environment", t, func() {
		t.Setenv("AGENTEVAL_PASS_THRESHOLD", "1.5")

		_, err := executeRoot("report", "-o", t.TempDir())

		convey.Convey("Then configuration loading fails", func() {
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "load config")
		})
	})
}

func TestServeMux(t *testing.T) {
	convey.Convey("Given the serve mux over a service", t, func() {
		if err := logger.Init(); err != nil {
			t.Fatal(err)
		}
		ctx := context.Background()
		svc := app.New(app.WithLogger(logger.Nop()))
		mux := newMux(ctx, svc)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then the root redirects to the dashboard", func() {
			w := get("/")
			convey.So(w.Code, convey.ShouldEqual, http.StatusFound)
			convey.So(w.Header().Get("Location"), convey.ShouldEqual, "/dashboard")
		})

		convey.Convey("Then the dashboard, docs and metrics are served", func() {
			convey.So(get("/dashboard").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then report views wait for the first run", func() {
			convey.So(get("/api/report").Code, convey.ShouldEqual, http.StatusNotFound)

			_, err := svc.Run(ctx)
			convey.So(err, convey.ShouldBeNil)
			convey.So(get("/api/report").Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestSystemMetricsUpdater(t *testing.T) {
	convey.Convey("Given a short-lived context", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updater returns once it is done", func() {
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		})
	})
}

func TestDisplayAddr(t *testing.T) {
	convey.Convey("Given listen addresses", t, func() {
		convey.So(displayAddr(":9080"), convey.ShouldEqual, "localhost:9080")
		convey.So(displayAddr("0.0.0.0:80"), convey.ShouldEqual, "0.0.0.0:80")
	})
}
