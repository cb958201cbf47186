// Package source loads test cases for an evaluation run.
//
// The pipeline never embeds its dataset; it receives a Source and loads
// from it at run time, so the same evaluation code runs over the built-in
// sample, files on disk, or cases posted to the dashboard.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/agenteval/internal/domain/model"
)

// Sentinel error kinds for this package.
var (
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrMissingColumn     = errors.New("missing column")
	ErrLoad              = errors.New("load dataset failed")
	ErrNoTestCasesKey    = errors.New("object has no test_cases list")
)

// Source provides the ordered test cases of one evaluation run.
type Source interface {
	// Name identifies the source in logs and reports.
	Name() string
	// Load returns the test cases in input order.
	Load(ctx context.Context) ([]model.TestCase, error)
}

// static serves a fixed list of cases.
type static struct {
	name  string
	cases []model.TestCase
}

// Static returns a Source over a copy of cases.
func Static(name string, cases []model.TestCase) Source {
	cp := make([]model.TestCase, len(cases))
	copy(cp, cases)
	return &static{name: name, cases: cp}
}

func (s *static) Name() string { return s.name }

func (s *static) Load(ctx context.Context) ([]model.TestCase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cp := make([]model.TestCase, len(s.cases))
	copy(cp, s.cases)
	return cp, nil
}

// New picks a Source for location: "builtin" (or empty) selects the
// sample dataset, anything else is treated as a file path.
func New(location string) (Source, error) {
	switch strings.TrimSpace(location) {
	case "", BuiltinName:
		return Builtin(), nil
	}
	return NewFileSource(location)
}

// rawCase mirrors a serialized test case. Pointer fields distinguish an
// absent key from an empty value.
type rawCase struct {
	ID       *int    `json:"id" yaml:"id"`
	Question *string `json:"question" yaml:"question"`
	Expected *string `json:"expected" yaml:"expected"`
	Answer   *string `json:"answer" yaml:"answer"`
	Agent    *string `json:"agent" yaml:"agent"`
}

// toTestCase converts r, reporting the first absent key. pos is the
// 1-based position of the record in its file.
func (r rawCase) toTestCase(pos int) (model.TestCase, error) {
	id := 0
	if r.ID != nil {
		id = *r.ID
	}
	missing := func(field string) error {
		return fmt.Errorf("record %d: %w", pos, &model.MalformedRecordError{ID: id, Field: field})
	}
	switch {
	case r.ID == nil:
		return model.TestCase{}, missing("id")
	case r.Question == nil:
		return model.TestCase{}, missing("question")
	case r.Expected == nil:
		return model.TestCase{}, missing("expected")
	case r.Answer == nil:
		return model.TestCase{}, missing("answer")
	case r.Agent == nil:
		return model.TestCase{}, missing("agent")
	}
	return model.TestCase{
		ID:       id,
		Question: *r.Question,
		Expected: *r.Expected,
		Answer:   *r.Answer,
		Agent:    *r.Agent,
	}, nil
}

func convert(raws []rawCase) ([]model.TestCase, error) {
	cases := make([]model.TestCase, 0, len(raws))
	for i, r := range raws {
		tc, err := r.toTestCase(i + 1)
		if err != nil {
			return nil, err
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

func formatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}
