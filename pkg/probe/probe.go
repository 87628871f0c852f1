package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/logrusorgru/aurora/v4"
	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/pingsweep/pkg/types"
	"github.com/projectdiscovery/utils/errkit"
	stringsutil "github.com/projectdiscovery/utils/strings"
)

// DefaultTimeout is the per-probe timeout used when none is configured
const DefaultTimeout = 100 * time.Millisecond

// ReplyMarkers are substrings of ping output reporting exactly one reply
var ReplyMarkers = []string{"1 received", "1 packets received", "Received = 1"}

// Prober checks the reachability of a single address.
//
// Probe returns an error only for failures that prevent producing a result
// at all, such as cancellation. Spawn and socket failures are reported as a
// result with status Error.
type Prober interface {
	Probe(ctx context.Context, ip string) (types.Result, error)
}

// Classify maps the outcome of a ping command to a status.
// The returned error describes why the status is Error and is nil otherwise.
func Classify(output []byte, runErr error) (types.Status, error) {
	if runErr == nil {
		if stringsutil.ContainsAny(string(output), ReplyMarkers...) {
			return types.Reachable, nil
		}
		return types.Error, errkit.New(fmt.Sprintf("unexpected ping output: %q", truncate(string(output), 120)))
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return types.Unreachable, nil
	}
	return types.Error, runErr
}

func truncate(value string, size int) string {
	if len(value) <= size {
		return value
	}
	return value[:size] + "..."
}

var colors atomic.Pointer[aurora.Aurora]

func init() {
	SetColors(true)
}

// SetColors enables or disables coloured statuses in probe reports
func SetColors(enabled bool) {
	colors.Store(aurora.New(aurora.WithColors(enabled)))
}

func colorize(status types.Status) aurora.Value {
	au := colors.Load()
	switch status {
	case types.Reachable:
		return au.Green(status)
	case types.Unreachable:
		return au.Red(status)
	default:
		return au.Yellow(status)
	}
}

// report prints the one-line status of a finished probe
func report(result types.Result) {
	latency := "N/A"
	if result.LatencyMs != nil {
		latency = types.FormatLatency(result.LatencyMs)
	}
	gologger.Info().Msgf("Pinged %s at %s: %s with response time %s ms", result.IP, result.FormatTimestamp(), colorize(result.Status), latency)
}
