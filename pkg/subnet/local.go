package subnet

import (
	"net"
	"net/netip"
)

// LocalPrefixBits is the prefix length applied to local interface addresses
const LocalPrefixBits = 24

// LocalNetworks returns the private IPv4 networks of the interfaces that are
// up, widened to /24. Loopback interfaces are skipped.
func LocalNetworks() ([]Spec, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var addrs []net.Addr
	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		ifaceAddrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		addrs = append(addrs, ifaceAddrs...)
	}
	return privateNetworks(addrs, LocalPrefixBits), nil
}

func privateNetworks(addrs []net.Addr, bits int) []Spec {
	var specs []Spec
	seen := make(map[netip.Prefix]struct{})

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip, ok := netip.AddrFromSlice(ipNet.IP)
		if !ok {
			continue
		}
		ip = ip.Unmap()
		if !ip.Is4() || !ip.IsPrivate() {
			continue
		}

		prefix, err := ip.Prefix(bits)
		if err != nil {
			continue
		}
		if _, exists := seen[prefix]; exists {
			continue
		}
		seen[prefix] = struct{}{}
		specs = append(specs, Spec{prefix: prefix})
	}
	return specs
}
