package resolver

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/die-net/sockshttp/internal/proxyerr"
	"github.com/die-net/sockshttp/internal/testutil"
)

type staticResolver map[string][]netip.Addr

func (r staticResolver) LookupNetIP(_ context.Context, network, host string) ([]netip.Addr, error) {
	addrs, ok := r[host]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	var out []netip.Addr
	for _, a := range addrs {
		if network == "ip4" && !a.Unmap().Is4() {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func TestResolveEndpoint(t *testing.T) {
	t.Parallel()

	r := staticResolver{
		"proxy.example": {netip.MustParseAddr("192.0.2.1"), netip.MustParseAddr("2001:db8::1")},
		"empty.example": {},
	}

	tests := []struct {
		name    string
		addr    string
		want    []netip.AddrPort
		wantErr bool
	}{
		{
			name: "ipv4 literal",
			addr: "127.0.0.1:1080",
			want: []netip.AddrPort{netip.MustParseAddrPort("127.0.0.1:1080")},
		},
		{
			name: "ipv6 literal",
			addr: "[::1]:9050",
			want: []netip.AddrPort{netip.MustParseAddrPort("[::1]:9050")},
		},
		{
			name: "mapped literal",
			addr: "[::ffff:127.0.0.1]:1080",
			want: []netip.AddrPort{netip.MustParseAddrPort("127.0.0.1:1080")},
		},
		{
			name: "hostname keeps resolver order",
			addr: "proxy.example:1080",
			want: []netip.AddrPort{
				netip.MustParseAddrPort("192.0.2.1:1080"),
				netip.MustParseAddrPort("[2001:db8::1]:1080"),
			},
		},
		{name: "missing port", addr: "127.0.0.1", wantErr: true},
		{name: "missing host", addr: ":1080", wantErr: true},
		{name: "zero port", addr: "127.0.0.1:0", wantErr: true},
		{name: "port out of range", addr: "127.0.0.1:70000", wantErr: true},
		{name: "unknown host", addr: "nope.example:1080", wantErr: true},
		{name: "no addresses", addr: "empty.example:1080", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveEndpoint(context.Background(), r, tt.addr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, proxyerr.ErrResolution) {
					t.Fatalf("expected ErrResolution, got %v", err)
				}
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestLookupIPv4(t *testing.T) {
	t.Parallel()

	r := staticResolver{
		"v4.example":   {netip.MustParseAddr("2001:db8::2"), netip.MustParseAddr("198.51.100.7")},
		"v6.example":   {netip.MustParseAddr("2001:db8::1")},
		"mapped.test":  {netip.MustParseAddr("::ffff:203.0.113.9")},
		"nothing.test": {},
	}

	tests := []struct {
		name    string
		host    string
		want    string
		wantErr error
	}{
		{name: "ipv4 literal", host: "10.0.0.1", want: "10.0.0.1"},
		{name: "mapped literal", host: "::ffff:10.0.0.1", want: "10.0.0.1"},
		{name: "name", host: "v4.example", want: "198.51.100.7"},
		{name: "mapped answer", host: "mapped.test", want: "203.0.113.9"},
		{name: "ipv6 literal", host: "2001:db8::1", wantErr: proxyerr.ErrAddressResolution},
		{name: "ipv6 only name", host: "v6.example", wantErr: proxyerr.ErrAddressResolution},
		{name: "no answers", host: "nothing.test", wantErr: proxyerr.ErrAddressResolution},
		{name: "unknown", host: "nope.example", wantErr: proxyerr.ErrAddressResolution},
		{name: "empty", host: "", wantErr: proxyerr.ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LookupIPv4(context.Background(), r, tt.host)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != tt.want {
				t.Fatalf("got %s want %s", got, tt.want)
			}
		})
	}
}

func TestDNSResolver(t *testing.T) {
	t.Parallel()

	server := testutil.StartDNSServer(t, map[string][]netip.Addr{
		"proxy.test":  {netip.MustParseAddr("127.0.0.1"), netip.MustParseAddr("::1")},
		"v6only.test": {netip.MustParseAddr("2001:db8::1")},
		"broken.test": nil,
		"multi.test":  {netip.MustParseAddr("192.0.2.1"), netip.MustParseAddr("192.0.2.2")},
	})
	r := NewDNSResolver(server, DNSConfig{Timeout: 2 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tests := []struct {
		name    string
		network string
		host    string
		want    []netip.Addr
		wantErr bool
	}{
		{
			name:    "ip lists ipv4 first",
			network: "ip",
			host:    "proxy.test",
			want:    []netip.Addr{netip.MustParseAddr("127.0.0.1"), netip.MustParseAddr("::1")},
		},
		{
			name:    "ip4",
			network: "ip4",
			host:    "multi.test",
			want:    []netip.Addr{netip.MustParseAddr("192.0.2.1"), netip.MustParseAddr("192.0.2.2")},
		},
		{
			name:    "ip6",
			network: "ip6",
			host:    "proxy.test",
			want:    []netip.Addr{netip.MustParseAddr("::1")},
		},
		{name: "ip4 with only aaaa", network: "ip4", host: "v6only.test", wantErr: true},
		{name: "nxdomain", network: "ip", host: "missing.test", wantErr: true},
		{name: "servfail", network: "ip4", host: "broken.test", wantErr: true},
		{name: "bad network", network: "tcp", host: "proxy.test", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.LookupNetIP(ctx, tt.network, tt.host)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err=%v wantErr=%v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}

	addrs, err := ResolveEndpoint(ctx, r, "proxy.test:1080")
	if err != nil {
		t.Fatal(err)
	}
	if len(addrs) != 2 || addrs[0].String() != "127.0.0.1:1080" {
		t.Fatalf("unexpected endpoint addresses %v", addrs)
	}

	ip, err := LookupIPv4(ctx, r, "proxy.test")
	if err != nil {
		t.Fatal(err)
	}
	if ip.String() != "127.0.0.1" {
		t.Fatalf("got %s want 127.0.0.1", ip)
	}
}

func TestNewDNSResolverDefaultPort(t *testing.T) {
	t.Parallel()

	if got := NewDNSResolver("192.0.2.53", DNSConfig{}).Server(); got != "192.0.2.53:53" {
		t.Fatalf("got %q", got)
	}
	if got := NewDNSResolver("[2001:db8::53]:5353", DNSConfig{}).Server(); got != "[2001:db8::53]:5353" {
		t.Fatalf("got %q", got)
	}
	if _, ok := New("", DNSConfig{}).(*net.Resolver); !ok {
		t.Fatal("expected system resolver when no server is set")
	}
}
