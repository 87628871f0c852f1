package table

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/projectdiscovery/pingsweep/pkg/types"
	"github.com/projectdiscovery/utils/errkit"
	errorutil "github.com/projectdiscovery/utils/errors"
	"github.com/tidwall/gjson"
)

type resultLine struct {
	Timestamp      string   `json:"timestamp"`
	IP             string   `json:"ip"`
	Status         string   `json:"status"`
	ResponseTimeMs *float64 `json:"response_time_ms"`
}

type comparisonLine struct {
	Timestamp          string   `json:"timestamp"`
	IP                 string   `json:"ip"`
	StatusChange       string   `json:"status_change"`
	PreResponseTimeMs  *float64 `json:"pre_response_time_ms"`
	PostResponseTimeMs *float64 `json:"post_response_time_ms"`
	LatencyDifference  *float64 `json:"latency_difference_ms"`
}

func writeResultsJSONL(w io.Writer, results []types.Result) error {
	encoder := json.NewEncoder(w)
	for _, result := range results {
		line := resultLine{
			Timestamp:      result.FormatTimestamp(),
			IP:             result.IP,
			Status:         result.Status.String(),
			ResponseTimeMs: result.LatencyMs,
		}
		if err := encoder.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

func writeComparisonsJSONL(w io.Writer, comparisons []types.Comparison) error {
	encoder := json.NewEncoder(w)
	for _, comparison := range comparisons {
		line := comparisonLine{
			Timestamp:          comparison.FormatTimestamp(),
			IP:                 comparison.IP,
			StatusChange:       comparison.Change,
			PreResponseTimeMs:  comparison.PreLatencyMs,
			PostResponseTimeMs: comparison.PostLatencyMs,
			LatencyDifference:  comparison.DeltaMs,
		}
		if err := encoder.Encode(line); err != nil {
			return err
		}
	}
	return nil
}

func readResultsJSONL(r io.Reader) ([]types.Result, error) {
	var results []types.Result

	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, errkit.New(fmt.Sprintf("line %d: invalid json", lineNumber))
		}

		latency := ""
		if value := gjson.GetBytes(line, "response_time_ms"); value.Exists() && value.Type != gjson.Null {
			latency = value.String()
		}
		result, err := parseRow(
			gjson.GetBytes(line, "timestamp").String(),
			gjson.GetBytes(line, "ip").String(),
			gjson.GetBytes(line, "status").String(),
			latency,
		)
		if err != nil {
			return nil, errorutil.NewWithErr(err).Msgf("line %d", lineNumber)
		}
		results = append(results, result)
	}
	return results, scanner.Err()
}
