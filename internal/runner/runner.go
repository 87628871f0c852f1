package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/pingsweep/pkg/compare"
	"github.com/projectdiscovery/pingsweep/pkg/pingsweep"
	"github.com/projectdiscovery/pingsweep/pkg/probe"
	"github.com/projectdiscovery/pingsweep/pkg/subnet"
	"github.com/projectdiscovery/pingsweep/pkg/table"
	"github.com/projectdiscovery/pingsweep/pkg/types"
	"github.com/projectdiscovery/utils/errkit"
	errorutil "github.com/projectdiscovery/utils/errors"
	fileutil "github.com/projectdiscovery/utils/file"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

// ErrNoValidSubnets is returned when the subnet file yields nothing to sweep
var ErrNoValidSubnets = errkit.New("no valid subnets to process")

// Runner contains the internal logic of the program
type Runner struct {
	options *Options
	sweeper *pingsweep.Sweeper
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	timeout := time.Duration(options.Timeout) * time.Millisecond

	var (
		prober   probe.Prober
		perProbe int
	)
	switch options.Method {
	case MethodICMP:
		prober = probe.NewICMPProber(timeout, options.Privileged)
		perProbe = pingsweep.ICMPProbeDescriptors
	case MethodExec, "":
		prober = probe.NewExecProber(timeout)
		perProbe = pingsweep.ExecProbeDescriptors
	default:
		return nil, errkit.New(fmt.Sprintf("unsupported probe method %q", options.Method))
	}

	concurrency := pingsweep.ClampConcurrency(options.Concurrency, perProbe)
	if concurrency < options.Concurrency {
		gologger.Warning().Msgf("Lowering concurrency from %d to %d to stay within the open file limit", options.Concurrency, concurrency)
	}

	return &Runner{
		options: options,
		sweeper: pingsweep.New(prober, concurrency),
	}, nil
}

// Run sweeps the configured subnets, stores the results of the current mode
// and, in post mode, compares them with the stored pre-sweep results.
func (r *Runner) Run(ctx context.Context) error {
	subnets := r.subnets()
	if len(subnets) == 0 {
		return ErrNoValidSubnets
	}
	gologger.Verbose().Msgf("Sweeping %d subnets in %s mode with %s (timeout %dms, concurrency %d)",
		len(subnets), r.options.Mode, r.options.Method, r.options.Timeout, r.sweeper.Concurrency())

	results, err := r.sweeper.Run(ctx, subnets)
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("sweep interrupted after %d probes", len(results))
	}

	path := r.options.resultsPath(r.options.Mode)
	if err := table.WriteResultsFile(path, results); err != nil {
		gologger.Error().Msgf("Error writing results to file %s: %s", path, err)
	} else {
		gologger.Info().Msgf("Results written to %s", path)
	}

	if r.options.Mode == ModePost && r.options.Compare != "" {
		r.compare(results)
	}
	return nil
}

func (r *Runner) subnets() []subnet.Spec {
	var subnets []subnet.Spec
	if r.options.List != "" {
		subnets = subnet.ReadFile(r.options.List)
	}
	if r.options.LocalNetworks {
		local, err := subnet.LocalNetworks()
		if err != nil {
			gologger.Warning().Msgf("Could not list local networks: %s", err)
		}
		gologger.Verbose().Msgf("Found %d local networks", len(local))
		subnets = sliceutil.Dedupe(append(subnets, local...))
	}
	return subnets
}

// compare diffs post against the stored pre-sweep results. A missing or
// unreadable pre-sweep file skips the comparison.
func (r *Runner) compare(post []types.Result) {
	prePath := r.preResultsPath()
	pre, err := table.ReadResultsFile(prePath)
	if err != nil {
		gologger.Error().Msgf("Error reading pre-sweep results: %s", err)
		return
	}

	comparisons := compare.Compare(pre, post)
	path := r.options.comparisonPath()
	if err := table.WriteComparisonsFile(path, comparisons); err != nil {
		gologger.Error().Msgf("Error writing comparison results to file %s: %s", path, err)
		return
	}
	gologger.Info().Msgf("Comparison results written to %s", path)
}

// preResultsPath prefers the pre-sweep file in the current format and falls
// back to the other format when only that one exists
func (r *Runner) preResultsPath() string {
	path := r.options.resultsPath(ModePre)
	if fileutil.FileExists(path) {
		return path
	}
	other := table.JSONL
	if r.options.JSONL {
		other = table.CSV
	}
	if fallback := r.options.resultsPathFormat(ModePre, other); fileutil.FileExists(fallback) {
		gologger.Verbose().Msgf("Using pre-sweep results from %s", fallback)
		return fallback
	}
	return path
}
