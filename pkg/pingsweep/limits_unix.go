//go:build unix

package pingsweep

import (
	"golang.org/x/sys/unix"
)

// descriptorLimit returns the soft RLIMIT_NOFILE of the process
func descriptorLimit() (uint64, bool) {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, false
	}
	return uint64(rlimit.Cur), true
}
