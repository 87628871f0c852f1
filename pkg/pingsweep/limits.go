package pingsweep

import (
	"os"

	"github.com/projectdiscovery/gologger"
	"github.com/shirou/gopsutil/v3/process"
)

// Descriptors used by one in-flight probe
const (
	ExecProbeDescriptors = 4 // output pipe, /dev/null and the exec status pipe while spawning
	ICMPProbeDescriptors = 1
)

// reservedDescriptors are kept free for the output files and the runtime
const reservedDescriptors = 32

// ClampConcurrency lowers requested so that concurrent probes, each holding
// perProbe descriptors, fit in the process descriptor limit. It never returns
// less than 1 and returns requested unchanged when the limit is unknown.
func ClampConcurrency(requested, perProbe int) int {
	if requested < 1 {
		requested = 1
	}
	if perProbe < 1 {
		perProbe = 1
	}

	limit, ok := descriptorLimit()
	if !ok {
		return requested
	}
	return clamp(requested, perProbe, limit, openDescriptors())
}

func clamp(requested, perProbe int, limit, open uint64) int {
	if limit <= open+reservedDescriptors {
		return 1
	}
	headroom := (limit - open - reservedDescriptors) / uint64(perProbe)
	if headroom < 1 {
		return 1
	}
	if uint64(requested) > headroom {
		gologger.Verbose().Msgf("lowering concurrency from %d to %d (descriptor limit %d, %d open)", requested, headroom, limit, open)
		return int(headroom)
	}
	return requested
}

// openDescriptors returns the number of descriptors currently open by this
// process, or 0 when the platform does not expose it
func openDescriptors() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	n, err := proc.NumFDs()
	if err != nil || n < 0 {
		return 0
	}
	return uint64(n)
}
