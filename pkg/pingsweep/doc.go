// Package pingsweep probes every address of a list of IPv4 subnets.
//
// Subnets are swept one after the other. Within a subnet every address is
// dispatched to a bounded pool of workers, and the next subnet only starts once
// all probes of the current one have completed:
//
//	specs := subnet.ReadFile("subnets.txt")
//	sweeper := pingsweep.New(probe.NewExecProber(100*time.Millisecond), 256)
//	results, err := sweeper.Run(ctx, specs)
//
// Results are returned in completion order, which is not deterministic.
//
// Limitations:
// - Hosts with ICMP disabled or firewalled are reported unreachable
// - Large subnets spawn many ping processes; ClampConcurrency keeps the pool
// within the process descriptor limit
package pingsweep
