package pingsweep

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/gologger/levels"
	"github.com/projectdiscovery/gologger/writer"
	"github.com/projectdiscovery/pingsweep/pkg/probe"
	"github.com/projectdiscovery/pingsweep/pkg/subnet"
	"github.com/projectdiscovery/pingsweep/pkg/types"
	"github.com/rs/xid"
	"github.com/stretchr/testify/require"
)

// fakeProber records probe events and answers from a fixed table
type fakeProber struct {
	delay    time.Duration
	failures map[string]error
	panics   map[string]bool

	mu     sync.Mutex
	events []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeProber) record(event string) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

func (f *fakeProber) Probe(ctx context.Context, ip string) (types.Result, error) {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if current <= peak || f.maxInFlight.CompareAndSwap(peak, current) {
			break
		}
	}

	f.record("start " + ip)
	defer f.record("end " + ip)

	time.Sleep(f.delay)
	if f.panics[ip] {
		panic("boom")
	}
	if err := f.failures[ip]; err != nil {
		return types.Result{}, err
	}
	return types.NewResult(time.Now(), ip, types.Reachable).WithLatency(f.delay), nil
}

func ips(results []types.Result) []string {
	var out []string
	for _, result := range results {
		out = append(out, result.IP)
	}
	sort.Strings(out)
	return out
}

func TestRunProbesEveryAddressOnce(t *testing.T) {
	prober := &fakeProber{}
	results, err := New(prober, 8).Run(context.Background(), []subnet.Spec{subnet.MustParse("192.168.1.0/30")})
	require.NoError(t, err)
	require.Equal(t, []string{"192.168.1.0", "192.168.1.1", "192.168.1.2", "192.168.1.3"}, ips(results))
}

func TestRunSubnetBarrier(t *testing.T) {
	prober := &fakeProber{delay: 5 * time.Millisecond}
	specs := []subnet.Spec{subnet.MustParse("10.0.0.0/29"), subnet.MustParse("10.0.1.0/29")}

	results, err := New(prober, 16).Run(context.Background(), specs)
	require.NoError(t, err)
	require.Len(t, results, 16)

	lastFirstSubnet, firstSecondSubnet := -1, -1
	for i, event := range prober.events {
		switch {
		case strings.HasPrefix(event, "end 10.0.0."):
			lastFirstSubnet = i
		case strings.HasPrefix(event, "start 10.0.1.") && firstSecondSubnet == -1:
			firstSecondSubnet = i
		}
	}
	require.NotEqual(t, -1, firstSecondSubnet)
	require.Less(t, lastFirstSubnet, firstSecondSubnet)
}

func TestRunRespectsConcurrency(t *testing.T) {
	prober := &fakeProber{delay: 10 * time.Millisecond}
	results, err := New(prober, 2).Run(context.Background(), []subnet.Spec{subnet.MustParse("10.0.0.0/28")})
	require.NoError(t, err)
	require.Len(t, results, 16)
	require.LessOrEqual(t, prober.maxInFlight.Load(), int32(2))
}

func TestRunExcludesFailedProbes(t *testing.T) {
	prober := &fakeProber{
		failures: map[string]error{"10.0.0.1": errors.New("spawn exploded")},
		panics:   map[string]bool{"10.0.0.2": true},
	}
	results, err := New(prober, 4).Run(context.Background(), []subnet.Spec{subnet.MustParse("10.0.0.0/30")})
	require.NoError(t, err)
	require.Equal(t, []string{"10.0.0.0", "10.0.0.3"}, ips(results))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := New(&fakeProber{}, 4).Run(ctx, []subnet.Spec{subnet.MustParse("10.0.0.0/24")})
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
}

// cancellingProber cancels the sweep once it has been called limit times
type cancellingProber struct {
	limit  int32
	calls  atomic.Int32
	cancel context.CancelFunc
}

func (c *cancellingProber) Probe(ctx context.Context, ip string) (types.Result, error) {
	if c.calls.Add(1) >= c.limit {
		c.cancel()
	}
	return types.NewResult(time.Now(), ip, types.Unreachable), nil
}

func TestRunWholeAddressSpaceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	prober := &cancellingProber{limit: 5, cancel: cancel}

	results, err := New(prober, 2).Run(ctx, []subnet.Spec{subnet.MustParse("0.0.0.0/0")})
	require.ErrorIs(t, err, context.Canceled)
	require.Less(t, len(results), 16)
	require.Less(t, prober.calls.Load(), int32(16))
}

type logCapture struct {
	mu    sync.Mutex
	lines []string
}

func (c *logCapture) Write(data []byte, level levels.Level) {
	c.mu.Lock()
	c.lines = append(c.lines, string(data))
	c.mu.Unlock()
}

func TestRunTagsSubnetLinesWithSweepID(t *testing.T) {
	capture := &logCapture{}
	gologger.DefaultLogger.SetWriter(capture)
	t.Cleanup(func() {
		gologger.DefaultLogger.SetWriter(writer.NewCLI())
	})

	specs := []subnet.Spec{subnet.MustParse("10.0.0.1"), subnet.MustParse("10.0.1.1")}
	_, err := New(&fakeProber{}, 2).Run(context.Background(), specs)
	require.NoError(t, err)

	pattern := regexp.MustCompile(`(Starting|Completed) ping sweep for subnet: \S+ \(sweep (\w+)\)`)
	ids := make(map[string]int)
	for _, line := range capture.lines {
		if match := pattern.FindStringSubmatch(line); match != nil {
			ids[match[2]]++
		}
	}
	require.Len(t, ids, 1)
	for id, count := range ids {
		require.Equal(t, 4, count)
		_, err := xid.FromString(id)
		require.NoError(t, err)
	}
}

func TestNewDefaultsConcurrency(t *testing.T) {
	require.Equal(t, DefaultConcurrency, New(&fakeProber{}, 0).Concurrency())
	require.Equal(t, 3, New(&fakeProber{}, 3).Concurrency())
}

func TestRunWithStubPing(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub ping script requires a POSIX shell")
	}
	script := `#!/bin/sh
for last; do :; done
case "$last" in
  *.1) echo "1 packets transmitted, 1 received, 0% packet loss"; exit 0 ;;
  *.2) echo "1 packets transmitted, 0 received, 100% packet loss"; exit 1 ;;
  *) echo "garbage"; exit 0 ;;
esac
`
	path := filepath.Join(t.TempDir(), "ping")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	prober := probe.NewExecProber(100 * time.Millisecond)
	prober.Command = path
	prober.Windows = false

	results, err := New(prober, 4).Run(context.Background(), []subnet.Spec{subnet.MustParse("192.168.1.0/30")})
	require.NoError(t, err)
	require.Len(t, results, 4)

	byIP := make(map[string]types.Result)
	for _, result := range results {
		byIP[result.IP] = result
	}
	require.Len(t, byIP, 4)
	require.Equal(t, types.Reachable, byIP["192.168.1.1"].Status)
	require.NotNil(t, byIP["192.168.1.1"].LatencyMs)
	require.Equal(t, types.Unreachable, byIP["192.168.1.2"].Status)
	require.Equal(t, types.Error, byIP["192.168.1.0"].Status)
	require.Equal(t, types.Error, byIP["192.168.1.3"].Status)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		perProbe  int
		limit     uint64
		open      uint64
		want      int
	}{
		{name: "plenty of room", requested: 10, perProbe: 4, limit: 1024, open: 100, want: 10},
		{name: "lowered to headroom", requested: 256, perProbe: 4, limit: 1024, open: 100, want: 223},
		{name: "exhausted", requested: 10, perProbe: 4, limit: 50, open: 30, want: 1},
		{name: "less than one probe", requested: 10, perProbe: 4, limit: 135, open: 100, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, clamp(tt.requested, tt.perProbe, tt.limit, tt.open))
		})
	}

	require.GreaterOrEqual(t, ClampConcurrency(0, 0), 1)
}
