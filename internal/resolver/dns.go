package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"
)

// DNSConfig tunes the queries a DNSResolver sends.
type DNSConfig struct {
	Timeout time.Duration
}

// DNSResolver looks names up by querying a single DNS server over UDP,
// falling back to TCP for truncated answers.
type DNSResolver struct {
	server string
	udp    *dns.Client
	tcp    *dns.Client
}

// NewDNSResolver returns a resolver for server. Port 53 is assumed when server
// has no port.
func NewDNSResolver(server string, cfg DNSConfig) *DNSResolver {
	if _, port, _ := net.SplitHostPort(server); port == "" {
		server = net.JoinHostPort(server, "53")
	}
	return &DNSResolver{
		server: server,
		udp:    &dns.Client{Net: "udp", Timeout: cfg.Timeout},
		tcp:    &dns.Client{Net: "tcp", Timeout: cfg.Timeout},
	}
}

// Server returns the host:port queried.
func (r *DNSResolver) Server() string {
	return r.server
}

// LookupNetIP implements Resolver. network is "ip", "ip4" or "ip6"; for "ip"
// IPv4 answers come before IPv6 answers.
func (r *DNSResolver) LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error) {
	var qtypes []uint16
	switch network {
	case "ip":
		qtypes = []uint16{dns.TypeA, dns.TypeAAAA}
	case "ip4":
		qtypes = []uint16{dns.TypeA}
	case "ip6":
		qtypes = []uint16{dns.TypeAAAA}
	default:
		return nil, fmt.Errorf("dns lookup %s: unsupported network %q", host, network)
	}

	var addrs []netip.Addr
	for _, qtype := range qtypes {
		got, err := r.query(ctx, host, qtype)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, got...)
	}

	if len(addrs) == 0 {
		return nil, &net.DNSError{Err: "no such host", Name: host, Server: r.server, IsNotFound: true}
	}
	return addrs, nil
}

func (r *DNSResolver) query(ctx context.Context, host string, qtype uint16) ([]netip.Addr, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)
	m.RecursionDesired = true

	in, _, err := r.udp.ExchangeContext(ctx, m, r.server)
	if err == nil && in.Truncated {
		in, _, err = r.tcp.ExchangeContext(ctx, m, r.server)
	}
	if err != nil {
		return nil, fmt.Errorf("dns %s %s via %s: %w", dns.TypeToString[qtype], host, r.server, err)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return nil, nil
	default:
		return nil, fmt.Errorf("dns %s %s via %s: %s", dns.TypeToString[qtype], host, r.server, dns.RcodeToString[in.Rcode])
	}

	var addrs []netip.Addr
	for _, rr := range in.Answer {
		switch v := rr.(type) {
		case *dns.A:
			if ip, ok := netip.AddrFromSlice(v.A); ok {
				addrs = append(addrs, ip.Unmap())
			}
		case *dns.AAAA:
			if ip, ok := netip.AddrFromSlice(v.AAAA); ok {
				addrs = append(addrs, ip)
			}
		}
	}
	return addrs, nil
}
