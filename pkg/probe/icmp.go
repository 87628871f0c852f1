package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/pingsweep/pkg/types"
	"github.com/projectdiscovery/utils/errkit"
	errorutil "github.com/projectdiscovery/utils/errors"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

var echoPayload = []byte("HELLO-R-U-THERE")

// ICMPProber probes an address with a single native ICMP echo request.
//
// By default an unprivileged datagram socket is used, which on Linux requires
// the group to be allowed by net.ipv4.ping_group_range. Privileged switches to
// a raw socket and usually needs root or CAP_NET_RAW.
type ICMPProber struct {
	Timeout    time.Duration
	Privileged bool

	seq atomic.Uint32
}

// NewICMPProber returns an ICMPProber with the given timeout
func NewICMPProber(timeout time.Duration, privileged bool) *ICMPProber {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ICMPProber{Timeout: timeout, Privileged: privileged}
}

// Probe sends one echo request to ip and waits for the matching reply
func (p *ICMPProber) Probe(ctx context.Context, ip string) (types.Result, error) {
	timestamp := time.Now()

	result, err := p.echo(ctx, ip, timestamp)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return types.Result{}, ctxErr
	}
	if err != nil {
		gologger.Error().Msgf("Error pinging %s: %s", ip, err)
		result = types.NewResult(timestamp, ip, types.Error)
	}

	report(result)
	return result, nil
}

func (p *ICMPProber) echo(ctx context.Context, ip string, timestamp time.Time) (types.Result, error) {
	target := net.ParseIP(ip).To4()
	if target == nil {
		return types.Result{}, errkit.New(fmt.Sprintf("%q is not an IPv4 address", ip))
	}

	network := p.network()
	var dst net.Addr = &net.UDPAddr{IP: target}
	if p.Privileged {
		dst = &net.IPAddr{IP: target}
	}

	conn, err := icmp.ListenPacket(network, "0.0.0.0")
	if err != nil {
		return types.Result{}, errorutil.NewWithErr(err).Msgf("failed to open %s ICMP socket", network)
	}
	defer func() {
		_ = conn.Close()
	}()

	id := os.Getpid() & 0xffff
	seq := int(p.seq.Add(1) & 0xffff)
	msg := &icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{ID: id, Seq: seq, Data: echoPayload},
	}
	msgBytes, err := msg.Marshal(nil)
	if err != nil {
		return types.Result{}, errorutil.NewWithErr(err).Msgf("failed to marshal ICMP message")
	}

	start := time.Now()
	if err := conn.SetReadDeadline(start.Add(p.Timeout)); err != nil {
		return types.Result{}, err
	}
	// unblock ReadFrom as soon as the sweep is cancelled
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.WriteTo(msgBytes, dst); err != nil {
		return types.Result{}, errorutil.NewWithErr(err).Msgf("failed to send echo request")
	}

	reply := make([]byte, 1500)
	for {
		n, peer, err := conn.ReadFrom(reply)
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return types.NewResult(timestamp, ip, types.Unreachable), nil
			}
			return types.Result{}, err
		}

		rm, err := icmp.ParseMessage(ipv4.ICMPTypeEchoReply.Protocol(), reply[:n])
		if err != nil || rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		echo, ok := rm.Body.(*icmp.Echo)
		if !ok || echo.Seq != seq {
			continue
		}
		// the kernel rewrites the identifier of unprivileged sockets
		if p.Privileged && echo.ID != id {
			continue
		}
		if !peerIP(peer).Equal(target) {
			continue
		}

		return types.NewResult(timestamp, ip, types.Reachable).WithLatency(time.Since(start)), nil
	}
}

// network returns the icmp.ListenPacket network of the socket kind in use
func (p *ICMPProber) network() string {
	if p.Privileged {
		return "ip4:icmp"
	}
	return "udp4"
}

func peerIP(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.IPAddr:
		return v.IP
	case *net.UDPAddr:
		return v.IP
	default:
		return nil
	}
}
