package table

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/projectdiscovery/pingsweep/pkg/types"
	"github.com/projectdiscovery/utils/errkit"
	errorutil "github.com/projectdiscovery/utils/errors"
)

func writeResultsCSV(w io.Writer, results []types.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ResultHeader); err != nil {
		return err
	}
	for _, result := range results {
		row := []string{
			result.FormatTimestamp(),
			result.IP,
			result.Status.String(),
			types.FormatLatency(result.LatencyMs),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeComparisonsCSV(w io.Writer, comparisons []types.Comparison) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ComparisonHeader); err != nil {
		return err
	}
	for _, comparison := range comparisons {
		row := []string{
			comparison.FormatTimestamp(),
			comparison.IP,
			comparison.Change,
			types.FormatLatency(comparison.PreLatencyMs),
			types.FormatLatency(comparison.PostLatencyMs),
			types.FormatLatency(comparison.DeltaMs),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func readResultsCSV(r io.Reader) ([]types.Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(ResultHeader)

	// header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errkit.New("missing header row")
		}
		return nil, err
	}

	var results []types.Result
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := reader.FieldPos(0)
		result, err := parseRow(row[0], row[1], row[2], row[3])
		if err != nil {
			return nil, errorutil.NewWithErr(err).Msgf("line %d", line)
		}
		results = append(results, result)
	}
	return results, nil
}

func parseRow(timestamp, ip, status, latency string) (types.Result, error) {
	ts, err := types.ParseTimestamp(timestamp)
	if err != nil {
		return types.Result{}, errorutil.NewWithErr(err).Msgf("invalid timestamp %q", timestamp)
	}
	if ip == "" {
		return types.Result{}, errkit.New("empty ip address")
	}
	ms, err := types.ParseLatency(latency)
	if err != nil {
		return types.Result{}, errorutil.NewWithErr(err).Msgf("invalid response time %q", latency)
	}
	return types.Result{
		Timestamp: ts,
		IP:        ip,
		Status:    types.ParseStatus(status),
		LatencyMs: ms,
	}, nil
}
