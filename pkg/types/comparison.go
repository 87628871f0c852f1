package types

import (
	"strings"
	"time"
)

// NotInPostSweep is the status substituted for addresses missing from the post sweep
const NotInPostSweep Status = "Not in post-sweep"

const (
	ChangeNowUnreachable = "Was reachable, now unreachable"
	ChangeNowReachable   = "Was unreachable, now reachable"
	ChangeStatusChanged  = "Status changed"
)

// StillChange returns the change kind for an unchanged status, e.g. "Still reachable"
func StillChange(status Status) string {
	return "Still " + strings.ToLower(string(status))
}

// Comparison describes how one address changed between the pre and post sweeps
type Comparison struct {
	// Timestamp is taken from the pre sweep record
	Timestamp     time.Time
	IP            string
	Change        string
	PreLatencyMs  *float64
	PostLatencyMs *float64
	DeltaMs       *float64
}

// FormatTimestamp renders the timestamp using TimestampLayout
func (c Comparison) FormatTimestamp() string {
	return c.Timestamp.Format(TimestampLayout)
}
