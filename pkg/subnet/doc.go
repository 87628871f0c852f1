// Package subnet parses IPv4 subnet lists used as sweep input.
//
// Each line of a subnet list is either a CIDR ("192.168.1.0/24"), a CIDR with a
// dotted netmask or hostmask ("192.168.1.0/255.255.255.0", "192.168.1.0/0.0.0.255")
// or a bare address, which is treated as a single host ("10.0.0.5" becomes
// "10.0.0.5/32"). Parsing is lenient: host bits are masked, so "10.0.0.5/24"
// yields "10.0.0.0/24".
//
// Example usage:
//
//	specs := subnet.ReadFile("subnets.txt")
//	for _, spec := range specs {
//		for addr := range spec.All() {
//			...
//		}
//	}
package subnet
