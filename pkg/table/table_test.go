package table

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/projectdiscovery/pingsweep/pkg/types"
	"github.com/stretchr/testify/require"
)

func sampleResults() []types.Result {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 250_000_000, time.Local)
	return []types.Result{
		types.NewResult(ts, "10.0.0.2", types.Reachable).WithLatency(12500 * time.Microsecond),
		types.NewResult(ts, "10.0.0.1", types.Unreachable),
		types.NewResult(ts.Add(time.Second), "10.0.0.3", types.Error),
	}
}

func requireSameRows(t *testing.T, want, got []types.Result) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		require.Equal(t, want[i].IP, got[i].IP)
		require.Equal(t, want[i].Status, got[i].Status)
		require.Equal(t, want[i].LatencyMs == nil, got[i].LatencyMs == nil)
		if want[i].LatencyMs != nil {
			require.InDelta(t, *want[i].LatencyMs, *got[i].LatencyMs, 1e-9)
		}
		require.True(t, want[i].Timestamp.Truncate(time.Second).Equal(got[i].Timestamp), "row %d timestamp", i)
	}
}

func TestWriteResultsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResults(&buf, CSV, sampleResults()))

	want := "Timestamp,IP Address,Status,Response Time (ms)\n" +
		"2024-03-09 14:05:07,10.0.0.2,Reachable,12.5\n" +
		"2024-03-09 14:05:07,10.0.0.1,Unreachable,\n" +
		"2024-03-09 14:05:08,10.0.0.3,Error,\n"
	require.Equal(t, want, buf.String())
}

func TestResultsRoundTrip(t *testing.T) {
	for _, format := range []Format{CSV, JSONL} {
		t.Run(format.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteResults(&buf, format, sampleResults()))

			got, err := ReadResults(&buf, format)
			require.NoError(t, err)
			requireSameRows(t, sampleResults(), got)
		})
	}
}

func TestReadResultsCSV(t *testing.T) {
	t.Run("none marks absent latency", func(t *testing.T) {
		input := "Timestamp,IP Address,Status,Response Time (ms)\n" +
			"2024-03-09 14:05:07,10.0.0.1,Unreachable,None\n" +
			"2024-03-09 14:05:07,10.0.0.2,Reachable,3.25\n"
		got, err := ReadResults(strings.NewReader(input), CSV)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Nil(t, got[0].LatencyMs)
		require.Equal(t, 3.25, *got[1].LatencyMs)
	})

	t.Run("header only", func(t *testing.T) {
		got, err := ReadResults(strings.NewReader("Timestamp,IP Address,Status,Response Time (ms)\n"), CSV)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	malformed := map[string]string{
		"empty input":    "",
		"missing column": "h1,h2,h3,h4\n2024-03-09 14:05:07,10.0.0.1,Unreachable\n",
		"bad latency":    "h1,h2,h3,h4\n2024-03-09 14:05:07,10.0.0.1,Reachable,fast\n",
		"bad timestamp":  "h1,h2,h3,h4\nyesterday,10.0.0.1,Reachable,1\n",
		"empty ip":       "h1,h2,h3,h4\n2024-03-09 14:05:07,,Reachable,1\n",
	}
	for name, input := range malformed {
		t.Run(name, func(t *testing.T) {
			_, err := ReadResults(strings.NewReader(input), CSV)
			require.Error(t, err)
		})
	}
}

func TestReadResultsJSONL(t *testing.T) {
	input := `{"timestamp":"2024-03-09 14:05:07","ip":"10.0.0.1","status":"Reachable","response_time_ms":4}

{"timestamp":"2024-03-09 14:05:07","ip":"10.0.0.2","status":"Unreachable","response_time_ms":null}
{"timestamp":"2024-03-09 14:05:07","ip":"10.0.0.3","status":"Error"}
`
	got, err := ReadResults(strings.NewReader(input), JSONL)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 4.0, *got[0].LatencyMs)
	require.Nil(t, got[1].LatencyMs)
	require.Nil(t, got[2].LatencyMs)

	_, err = ReadResults(strings.NewReader("{not json}\n"), JSONL)
	require.Error(t, err)
}

func TestWriteComparisonsCSV(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	comparisons := []types.Comparison{
		{Timestamp: ts, IP: "10.0.0.1", Change: types.ChangeNowUnreachable, PreLatencyMs: types.Float(10), DeltaMs: types.Float(10)},
		{Timestamp: ts, IP: "10.0.0.2", Change: "Still reachable", PreLatencyMs: types.Float(20), PostLatencyMs: types.Float(25), DeltaMs: types.Float(5)},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteComparisons(&buf, CSV, comparisons))

	want := "Timestamp,IP Address,Status Change,Pre Response Time (ms),Post Response Time (ms),Latency Difference (ms)\n" +
		"2024-03-09 14:05:07,10.0.0.1,\"Was reachable, now unreachable\",10,,10\n" +
		"2024-03-09 14:05:07,10.0.0.2,Still reachable,20,25,5\n"
	require.Equal(t, want, buf.String())
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"results.csv", "results.jsonl"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteResultsFile(path, sampleResults()))

		got, err := ReadResultsFile(path)
		require.NoError(t, err)
		requireSameRows(t, sampleResults(), got)
	}

	_, err := ReadResultsFile(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)

	err = WriteResultsFile(filepath.Join(dir, "no-such-dir", "results.csv"), sampleResults())
	require.Error(t, err)

	path := filepath.Join(dir, "comparison.jsonl")
	require.NoError(t, WriteComparisonsFile(path, []types.Comparison{{IP: "10.0.0.1", Change: types.ChangeStatusChanged}}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"status_change":"Status changed"`)
	require.Contains(t, string(data), `"latency_difference_ms":null`)
}

func TestFormatFromPath(t *testing.T) {
	require.Equal(t, CSV, FormatFromPath("ping_sweep_pre_results.csv"))
	require.Equal(t, JSONL, FormatFromPath("ping_sweep_pre_results.jsonl"))
	require.Equal(t, JSONL, FormatFromPath("OUT.JSONL"))
	require.Equal(t, CSV, FormatFromPath("noext"))
	require.Equal(t, ".jsonl", JSONL.Extension())
}
