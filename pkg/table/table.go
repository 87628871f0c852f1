package table

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/projectdiscovery/pingsweep/pkg/types"
	errorutil "github.com/projectdiscovery/utils/errors"
)

// Format is the on-disk encoding of a table
type Format int

const (
	CSV Format = iota
	JSONL
)

func (f Format) String() string {
	switch f {
	case CSV:
		return "csv"
	case JSONL:
		return "jsonl"
	default:
		return "unknown"
	}
}

// Extension returns the file extension for the format, dot included
func (f Format) Extension() string {
	return "." + f.String()
}

// FormatFromPath infers the format from the file extension, defaulting to CSV
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return JSONL
	default:
		return CSV
	}
}

// Headers of the result and comparison tables
var (
	ResultHeader     = []string{"Timestamp", "IP Address", "Status", "Response Time (ms)"}
	ComparisonHeader = []string{"Timestamp", "IP Address", "Status Change", "Pre Response Time (ms)", "Post Response Time (ms)", "Latency Difference (ms)"}
)

// WriteResults writes results to w in the given format
func WriteResults(w io.Writer, format Format, results []types.Result) error {
	if format == JSONL {
		return writeResultsJSONL(w, results)
	}
	return writeResultsCSV(w, results)
}

// ReadResults reads a result table previously written by WriteResults
func ReadResults(r io.Reader, format Format) ([]types.Result, error) {
	if format == JSONL {
		return readResultsJSONL(r)
	}
	return readResultsCSV(r)
}

// WriteComparisons writes comparison records to w in the given format
func WriteComparisons(w io.Writer, format Format, comparisons []types.Comparison) error {
	if format == JSONL {
		return writeComparisonsJSONL(w, comparisons)
	}
	return writeComparisonsCSV(w, comparisons)
}

// WriteResultsFile writes results to path, truncating it, in the format
// matching its extension
func WriteResultsFile(path string, results []types.Result) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteResults(w, FormatFromPath(path), results)
	})
}

// WriteComparisonsFile writes comparison records to path in the format
// matching its extension
func WriteComparisonsFile(path string, comparisons []types.Comparison) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteComparisons(w, FormatFromPath(path), comparisons)
	})
}

// ReadResultsFile reads the result table stored at path
func ReadResultsFile(path string) ([]types.Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not open %s", path)
	}
	defer func() {
		_ = file.Close()
	}()

	results, err := ReadResults(file, FormatFromPath(path))
	if err != nil {
		return nil, errorutil.NewWithErr(err).Msgf("could not read %s", path)
	}
	return results, nil
}

func writeFile(path string, write func(w io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("could not create %s", path)
	}
	if err := write(file); err != nil {
		_ = file.Close()
		return errorutil.NewWithErr(err).Msgf("could not write %s", path)
	}
	if err := file.Close(); err != nil {
		return errorutil.NewWithErr(err).Msgf("could not close %s", path)
	}
	return nil
}
