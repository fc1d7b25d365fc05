package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/die-net/sockshttp/internal/proxyerr"
)

// Resolver is the subset of *net.Resolver needed for proxy and target lookups.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// New returns the system resolver when server is empty, otherwise a
// DNSResolver querying server.
func New(server string, cfg DNSConfig) Resolver {
	if server == "" {
		return net.DefaultResolver
	}
	return NewDNSResolver(server, cfg)
}

// ResolveEndpoint resolves a proxy "host:port" into its candidate addresses,
// in the order the resolver returned them. Literal addresses skip the lookup.
func ResolveEndpoint(ctx context.Context, r Resolver, hostport string) ([]netip.AddrPort, error) {
	host, portStr, err := net.SplitHostPort(hostport)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", proxyerr.ErrResolution, hostport, err)
	}
	if host == "" {
		return nil, fmt.Errorf("%w: %q: missing host", proxyerr.ErrResolution, hostport)
	}

	port, err := parsePort(ctx, portStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", proxyerr.ErrResolution, hostport, err)
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		return []netip.AddrPort{netip.AddrPortFrom(ip.Unmap(), port)}, nil
	}

	ips, err := r.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", proxyerr.ErrResolution, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("%w: %s: no addresses", proxyerr.ErrResolution, host)
	}

	addrs := make([]netip.AddrPort, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, netip.AddrPortFrom(ip.Unmap(), port))
	}
	return addrs, nil
}

// LookupIPv4 returns an IPv4 address for host, which SOCKS4 needs because it
// has no name or IPv6 addressing. IPv6 literals and names without an A record
// fail with proxyerr.ErrAddressResolution rather than being dropped silently.
func LookupIPv4(ctx context.Context, r Resolver, host string) (netip.Addr, error) {
	if host == "" {
		return netip.Addr{}, fmt.Errorf("%w: empty host", proxyerr.ErrInvalidTarget)
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		ip = ip.Unmap()
		if !ip.Is4() {
			return netip.Addr{}, fmt.Errorf("%w: socks4 cannot address ipv6 target %s", proxyerr.ErrAddressResolution, host)
		}
		return ip, nil
	}

	ips, err := r.LookupNetIP(ctx, "ip4", host)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %w", proxyerr.ErrAddressResolution, err)
	}
	for _, ip := range ips {
		if ip = ip.Unmap(); ip.Is4() {
			return ip, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%w: no ipv4 address for %s", proxyerr.ErrAddressResolution, host)
}

func parsePort(ctx context.Context, s string) (uint16, error) {
	if n, err := strconv.ParseUint(s, 10, 16); err == nil {
		if n == 0 {
			return 0, fmt.Errorf("invalid port %q", s)
		}
		return uint16(n), nil
	}

	// Allow service names such as "socks".
	n, err := net.DefaultResolver.LookupPort(ctx, "tcp", s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if n <= 0 || n > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return uint16(n), nil
}
