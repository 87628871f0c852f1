// Package compare diffs two sweep result tables.
//
// Each address of the pre sweep yields one record describing its status
// change and latency difference against the post sweep:
//
//	Reachable   -> Unreachable  "Was reachable, now unreachable"  delta = pre latency
//	Unreachable -> Reachable    "Was unreachable, now reachable"  delta = post latency
//	X           -> X            "Still x"                         delta = post - pre
//	anything else               "Status changed"                  no delta
//
// Addresses missing from the post sweep are compared against the
// "Not in post-sweep" status.
package compare
