package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/agenteval/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// csvColumns is the header a CSV dataset must carry, in any order.
var csvColumns = []string{"id", "question", "expected", "answer", "agent"}

// FileSource reads test cases from a YAML, JSON or CSV file. The format is
// chosen from the file extension.
type FileSource struct {
	path   string
	format string
}

// NewFileSource creates a source for path, rejecting unknown extensions.
func NewFileSource(path string) (*FileSource, error) {
	format := formatOf(path)
	switch format {
	case "yaml", "yml", "json", "csv":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	return &FileSource{path: path, format: format}, nil
}

// Name returns the file path.
func (s *FileSource) Name() string { return s.path }

// Load reads and decodes the file.
func (s *FileSource) Load(ctx context.Context) ([]model.TestCase, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Decode(s.format, bytes.NewReader(data))
}

// Decode parses test cases in the given format ("yaml", "yml", "json" or
// "csv") from r.
func Decode(format string, r io.Reader) ([]model.TestCase, error) {
	switch format {
	case "yaml", "yml":
		return decodeYAML(r)
	case "json":
		return decodeJSON(r)
	case "csv":
		return decodeCSV(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// envelope allows datasets wrapped as {test_cases: [...]}.
type envelope struct {
	TestCases []rawCase `json:"test_cases" yaml:"test_cases"`
}

func decodeYAML(r io.Reader) ([]model.TestCase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	var raws []rawCase
	if err := yaml.Unmarshal(data, &raws); err != nil {
		var env envelope
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if envErr := dec.Decode(&env); envErr != nil {
			return nil, fmt.Errorf("%w: yaml: %w", ErrLoad, envErr)
		}
		if env.TestCases == nil {
			return nil, fmt.Errorf("%w: yaml: %w", ErrLoad, ErrNoTestCasesKey)
		}
		raws = env.TestCases
	}
	return convert(raws)
}

func decodeJSON(r io.Reader) ([]model.TestCase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	var raws []rawCase
	if err := json.Unmarshal(data, &raws); err != nil {
		var env envelope
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if envErr := dec.Decode(&env); envErr != nil {
			return nil, fmt.Errorf("%w: json: %w", ErrLoad, envErr)
		}
		if env.TestCases == nil {
			return nil, fmt.Errorf("%w: json: %w", ErrLoad, ErrNoTestCasesKey)
		}
		raws = env.TestCases
	}
	return convert(raws)
}

func decodeCSV(r io.Reader) ([]model.TestCase, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []model.TestCase{}, nil
		}
		return nil, fmt.Errorf("%w: csv header: %w", ErrLoad, err)
	}

	pos := make(map[string]int, len(header))
	for i, name := range header {
		pos[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range csvColumns {
		if _, ok := pos[col]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingColumn, col)
		}
	}

	var raws []rawCase
	for row := 1; ; row++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv row %d: %w", ErrLoad, row, err)
		}
		raw, err := csvRow(fields, pos, row)
		if err != nil {
			return nil, err
		}
		raws = append(raws, raw)
	}
	return convert(raws)
}

// csvRow maps one CSV row to a rawCase. Every column exists in a CSV row,
// so only an unparsable or blank id is reported here.
func csvRow(fields []string, pos map[string]int, row int) (rawCase, error) {
	get := func(col string) *string {
		v := fields[pos[col]]
		return &v
	}
	idText := strings.TrimSpace(fields[pos["id"]])
	id, err := strconv.Atoi(idText)
	if err != nil {
		return rawCase{}, fmt.Errorf("record %d: %w", row, &model.MalformedRecordError{Field: "id"})
	}
	return rawCase{
		ID:       &id,
		Question: get("question"),
		Expected: get("expected"),
		Answer:   get("answer"),
		Agent:    get("agent"),
	}, nil
}
