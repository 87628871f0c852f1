// Package probe checks whether a single IPv4 address answers an echo request.
//
// Two probers are provided:
//   - ExecProber runs the platform ping command once per address and times the
//     whole invocation. This is the default and needs no privileges.
//   - ICMPProber sends one echo request over a native ICMP socket and measures
//     the real round-trip time.
//
// Every probe prints a one-line status report, whatever the outcome.
package probe
