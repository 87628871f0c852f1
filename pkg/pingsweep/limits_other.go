//go:build !unix

package pingsweep

// descriptorLimit reports no limit, handles are not capped per process here
func descriptorLimit() (uint64, bool) {
	return 0, false
}
