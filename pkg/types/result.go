package types

import (
	"strconv"
	"time"
)

// TimestampLayout is the layout used for timestamps in result tables
const TimestampLayout = "2006-01-02 15:04:05"

// Status represents the reachability outcome of a single probe
type Status string

const (
	Reachable   Status = "Reachable"
	Unreachable Status = "Unreachable"
	Error       Status = "Error"
)

// ParseStatus converts a table field into a Status. Unknown values are kept
// verbatim so that comparisons still match identical foreign statuses.
func ParseStatus(value string) Status {
	switch value {
	case string(Reachable):
		return Reachable
	case string(Unreachable):
		return Unreachable
	case string(Error):
		return Error
	default:
		return Status(value)
	}
}

func (s Status) String() string {
	return string(s)
}

// Result is the outcome of probing one address during a sweep
type Result struct {
	// Timestamp is captured when the probe starts
	Timestamp time.Time
	IP        string
	Status    Status
	// LatencyMs is only set when Status is Reachable
	LatencyMs *float64
}

// NewResult returns a result without latency
func NewResult(timestamp time.Time, ip string, status Status) Result {
	return Result{Timestamp: timestamp, IP: ip, Status: status}
}

// WithLatency returns a copy of the result carrying the given latency
func (r Result) WithLatency(latency time.Duration) Result {
	ms := float64(latency) / float64(time.Millisecond)
	r.LatencyMs = &ms
	return r
}

// FormatTimestamp renders the timestamp using TimestampLayout
func (r Result) FormatTimestamp() string {
	return r.Timestamp.Format(TimestampLayout)
}

// ParseTimestamp parses a timestamp written with TimestampLayout in local time
func ParseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, value, time.Local)
}

// FormatLatency renders an optional latency, empty when absent
func FormatLatency(latency *float64) string {
	if latency == nil {
		return ""
	}
	return strconv.FormatFloat(*latency, 'f', -1, 64)
}

// ParseLatency parses an optional latency field. Empty and "None" are absent.
func ParseLatency(value string) (*float64, error) {
	if value == "" || value == "None" {
		return nil, nil
	}
	ms, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &ms, nil
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}
