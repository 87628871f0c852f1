package pingsweep

import (
	"context"
	"fmt"
	"sync"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/pingsweep/pkg/probe"
	"github.com/projectdiscovery/pingsweep/pkg/subnet"
	"github.com/projectdiscovery/pingsweep/pkg/types"
	"github.com/projectdiscovery/utils/errkit"
	errorutil "github.com/projectdiscovery/utils/errors"
	syncutil "github.com/projectdiscovery/utils/sync"
	"github.com/rs/xid"
)

// DefaultConcurrency is the default maximum number of in-flight probes
const DefaultConcurrency = 256

// Sweeper probes every address of a list of subnets
type Sweeper struct {
	prober      probe.Prober
	concurrency int
}

// New returns a Sweeper running at most concurrency probes at once
func New(prober probe.Prober, concurrency int) *Sweeper {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Sweeper{prober: prober, concurrency: concurrency}
}

// Concurrency returns the maximum number of in-flight probes
func (s *Sweeper) Concurrency() int {
	return s.concurrency
}

// Run sweeps the subnets one after the other. Addresses of a subnet are probed
// in parallel and the next subnet starts only once all of them completed.
// Results are returned in completion order.
//
// When ctx is cancelled no further probes are started and the results
// collected so far are returned together with the context error.
func (s *Sweeper) Run(ctx context.Context, subnets []subnet.Spec) ([]types.Result, error) {
	id := xid.New().String()
	results := &collector{}

	gologger.Verbose().Msgf("[%s] sweeping %d subnet(s) with concurrency %d", id, len(subnets), s.concurrency)

	for _, spec := range subnets {
		select {
		case <-ctx.Done():
			return results.items(), ctx.Err()
		default:
		}

		gologger.Info().Msgf("Starting ping sweep for subnet: %s (sweep %s)", spec, id)
		if err := s.sweepSubnet(ctx, spec, results); err != nil {
			gologger.Error().Msgf("Could not sweep subnet %s (sweep %s): %s", spec, id, err)
			continue
		}
		gologger.Info().Msgf("Completed ping sweep for subnet: %s (sweep %s)", spec, id)
	}

	gologger.Verbose().Msgf("[%s] sweep finished with %d result(s)", id, results.len())
	return results.items(), ctx.Err()
}

// sweepSubnet probes all addresses of spec and waits for every probe to finish
func (s *Sweeper) sweepSubnet(ctx context.Context, spec subnet.Spec, results *collector) error {
	gologger.Verbose().Msgf("%s expands to %d address(es) (%s - %s)", spec, spec.Size(), spec.First(), spec.Last())

	awg, err := syncutil.New(syncutil.WithSize(s.concurrency))
	if err != nil {
		return errorutil.NewWithErr(err).Msgf("failed to create adaptive waitgroup")
	}

	for addr := range spec.All() {
		if ctx.Err() != nil {
			break
		}

		awg.Add()
		go func(ip string) {
			defer awg.Done()

			result, err := s.probe(ctx, ip)
			if err != nil {
				if ctx.Err() == nil {
					gologger.Warning().Msgf("%s generated an exception: %s", ip, err)
				}
				return
			}
			results.add(result)
		}(addr.String())
	}

	awg.Wait()
	return nil
}

// probe runs a single probe, turning a panic into an error
func (s *Sweeper) probe(ctx context.Context, ip string) (result types.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errkit.New(fmt.Sprintf("probe panicked: %v", r))
		}
	}()
	return s.prober.Probe(ctx, ip)
}

// collector is the append-only result list shared by the workers of one sweep
type collector struct {
	mu      sync.Mutex
	results []types.Result
}

func (c *collector) add(result types.Result) {
	c.mu.Lock()
	c.results = append(c.results, result)
	c.mu.Unlock()
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

func (c *collector) items() []types.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Result(nil), c.results...)
}
