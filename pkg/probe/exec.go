package probe

import (
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/pingsweep/pkg/types"
	osutils "github.com/projectdiscovery/utils/os"
)

// DefaultCommand is the ping binary looked up in PATH
const DefaultCommand = "ping"

// ExecProber probes an address by running the platform ping command once.
//
// The timeout is handed to the command; the caller does not enforce it.
// Latency is the wall-clock time of the whole invocation and therefore
// includes process start-up overhead.
type ExecProber struct {
	Command string
	Timeout time.Duration
	// Windows selects the Windows ping argument syntax
	Windows bool
}

// NewExecProber returns an ExecProber for the current platform
func NewExecProber(timeout time.Duration) *ExecProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ExecProber{
		Command: DefaultCommand,
		Timeout: timeout,
		Windows: osutils.IsWindows(),
	}
}

// Args returns the ping arguments used to probe ip
func (p *ExecProber) Args(ip string) []string {
	ms := p.Timeout.Milliseconds()
	if p.Windows {
		return []string{"-n", "1", "-w", strconv.FormatInt(ms, 10), ip}
	}
	// -W takes whole seconds, and 0 means wait forever on some implementations
	seconds := (ms + 999) / 1000
	if seconds < 1 {
		seconds = 1
	}
	return []string{"-c", "1", "-W", strconv.FormatInt(seconds, 10), ip}
}

// Probe runs the ping command against ip and classifies the outcome
func (p *ExecProber) Probe(ctx context.Context, ip string) (types.Result, error) {
	timestamp := time.Now()

	cmd := exec.CommandContext(ctx, p.Command, p.Args(ip)...)
	start := time.Now()
	output, runErr := cmd.CombinedOutput()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return types.Result{}, ctxErr
	}

	status, err := Classify(output, runErr)
	result := types.NewResult(timestamp, ip, status)
	switch {
	case status == types.Reachable:
		result = result.WithLatency(elapsed)
	case err != nil:
		gologger.Error().Msgf("Error pinging %s: %s", ip, err)
	}

	report(result)
	return result, nil
}
