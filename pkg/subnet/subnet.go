package subnet

import (
	"fmt"
	"iter"
	"net"
	"net/netip"
	"strconv"
	"strings"

	"github.com/projectdiscovery/utils/errkit"
	errorutil "github.com/projectdiscovery/utils/errors"
	"go4.org/netipx"
)

// Spec is a validated IPv4 network
type Spec struct {
	prefix netip.Prefix
}

// Parse parses a CIDR or bare IPv4 address into a Spec.
// A bare address is treated as a /32. Host bits outside the network are masked.
func Parse(value string) (Spec, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Spec{}, errkit.New("empty subnet")
	}
	if !strings.Contains(value, "/") {
		value += "/32"
	}

	addrPart, maskPart, _ := strings.Cut(value, "/")
	addr, err := netip.ParseAddr(addrPart)
	if err != nil {
		return Spec{}, errorutil.NewWithErr(err).Msgf("invalid address %q", addrPart)
	}
	if !addr.Is4() {
		return Spec{}, errkit.New(fmt.Sprintf("%q is not an IPv4 address", addrPart))
	}

	bits, err := parsePrefixLength(maskPart)
	if err != nil {
		return Spec{}, err
	}

	prefix, err := addr.Prefix(bits)
	if err != nil {
		return Spec{}, errorutil.NewWithErr(err).Msgf("invalid prefix length %d", bits)
	}
	return Spec{prefix: prefix}, nil
}

// parsePrefixLength accepts a decimal prefix length, a dotted netmask or a
// dotted hostmask
func parsePrefixLength(value string) (int, error) {
	if strings.Contains(value, ".") {
		mask, err := netip.ParseAddr(value)
		if err != nil || !mask.Is4() {
			return 0, errkit.New(fmt.Sprintf("invalid netmask %q", value))
		}
		raw := mask.AsSlice()
		if ones, bits := net.IPMask(raw).Size(); bits != 0 {
			return ones, nil
		}
		// hostmask form, e.g. 0.0.0.255 for a /24
		inverted := make(net.IPMask, len(raw))
		for i, b := range raw {
			inverted[i] = ^b
		}
		if ones, bits := inverted.Size(); bits != 0 {
			return ones, nil
		}
		return 0, errkit.New(fmt.Sprintf("non-contiguous netmask %q", value))
	}

	bits, err := strconv.Atoi(value)
	if err != nil {
		return 0, errkit.New(fmt.Sprintf("invalid prefix length %q", value))
	}
	if bits < 0 || bits > 32 {
		return 0, errkit.New(fmt.Sprintf("prefix length %d out of range [0,32]", bits))
	}
	return bits, nil
}

// MustParse is like Parse but panics on error
func MustParse(value string) Spec {
	spec, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return spec
}

// Prefix returns the underlying network prefix
func (s Spec) Prefix() netip.Prefix {
	return s.prefix
}

// Bits returns the prefix length
func (s Spec) Bits() int {
	return s.prefix.Bits()
}

// Size returns the number of addresses in the network
func (s Spec) Size() uint64 {
	return uint64(1) << (32 - s.prefix.Bits())
}

// First returns the network address
func (s Spec) First() netip.Addr {
	return netipx.RangeOfPrefix(s.prefix).From()
}

// Last returns the broadcast address
func (s Spec) Last() netip.Addr {
	return netipx.RangeOfPrefix(s.prefix).To()
}

// All yields every address of the network in ascending order, network and
// broadcast addresses included. Addresses are produced one at a time so that
// large networks are never held in memory.
func (s Spec) All() iter.Seq[netip.Addr] {
	return func(yield func(netip.Addr) bool) {
		last := s.Last()
		for addr := s.First(); addr.IsValid(); addr = addr.Next() {
			if !yield(addr) || addr == last {
				return
			}
		}
	}
}

func (s Spec) String() string {
	return s.prefix.String()
}
