package sockshttp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/netip"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/die-net/sockshttp/internal/dialer"
	"github.com/die-net/sockshttp/internal/resolver"
	"github.com/die-net/sockshttp/internal/socks4"
	"github.com/die-net/sockshttp/internal/socks5"
)

// Version is the SOCKS protocol version a Connector speaks.
type Version uint8

const (
	SOCKS4 Version = 4
	SOCKS5 Version = 5
)

func (v Version) String() string {
	return "socks" + strconv.Itoa(int(v))
}

const (
	SchemeHTTP  = "http"
	SchemeHTTPS = "https"
)

// Proxy describes the SOCKS proxy a Connector uses.
type Proxy struct {
	Version Version
	// Addr is the proxy "host:port". A host name is resolved once, by New.
	Addr string
	// UserID is sent in SOCKS4 requests. SOCKS5 proxies take no credentials.
	UserID string
	// TLS, if set, enables the https scheme.
	TLS TLSClient
}

// Connector opens HTTP and HTTPS streams through a single SOCKS proxy. It is
// immutable once built and safe for concurrent use.
type Connector struct {
	cfg      Config
	version  Version
	proxy    string
	addrs    []netip.AddrPort
	userID   string
	tls      TLSClient
	schemes  []string
	dialer   dialer.ContextDialer
	resolver resolver.Resolver
}

// New validates p, resolves its address and returns a Connector for it.
func New(cfg Config, p Proxy) (*Connector, error) {
	switch p.Version {
	case SOCKS4:
		if err := checkUserID(p.UserID); err != nil {
			return nil, err
		}
	case SOCKS5:
		if p.UserID != "" {
			return nil, errors.New("sockshttp: socks5 does not take a user id")
		}
	default:
		return nil, fmt.Errorf("sockshttp: unsupported socks version %d", p.Version)
	}

	d := cfg.Forward
	if d == nil {
		var err error
		d, err = dialer.NewDirectDialer(cfg.dialerConfig())
		if err != nil {
			return nil, fmt.Errorf("sockshttp: %w", err)
		}
	}

	r := resolver.New(cfg.DNSServer, resolver.DNSConfig{Timeout: cfg.DialTimeout})

	ctx := context.Background()
	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	addrs, err := resolver.ResolveEndpoint(ctx, r, p.Addr)
	if err != nil {
		return nil, fmt.Errorf("sockshttp: %w", err)
	}

	schemes := []string{SchemeHTTP}
	if p.TLS != nil {
		schemes = append(schemes, SchemeHTTPS)
	}

	return &Connector{
		cfg:      cfg,
		version:  p.Version,
		proxy:    p.Addr,
		addrs:    addrs,
		userID:   p.UserID,
		tls:      p.TLS,
		schemes:  schemes,
		dialer:   d,
		resolver: r,
	}, nil
}

func checkUserID(id string) error {
	if strings.IndexByte(id, 0) >= 0 {
		return errors.New("sockshttp: socks4 user id contains a NUL byte")
	}
	return nil
}

// NewSOCKS4HTTP returns a plaintext-only SOCKS4 Connector.
func NewSOCKS4HTTP(cfg Config, proxyAddr, userID string) (*Connector, error) {
	return New(cfg, Proxy{Version: SOCKS4, Addr: proxyAddr, UserID: userID})
}

// NewSOCKS4HTTPS returns a SOCKS4 Connector that also serves https, upgrading
// with tc or, if tc is nil, with NewTLSClient(nil).
func NewSOCKS4HTTPS(cfg Config, proxyAddr, userID string, tc TLSClient) (*Connector, error) {
	if tc == nil {
		tc = NewTLSClient(nil)
	}
	return New(cfg, Proxy{Version: SOCKS4, Addr: proxyAddr, UserID: userID, TLS: tc})
}

// NewSOCKS5HTTP returns a plaintext-only SOCKS5 Connector.
func NewSOCKS5HTTP(cfg Config, proxyAddr string) (*Connector, error) {
	return New(cfg, Proxy{Version: SOCKS5, Addr: proxyAddr})
}

// NewSOCKS5HTTPS returns a SOCKS5 Connector that also serves https, upgrading
// with tc or, if tc is nil, with NewTLSClient(nil).
func NewSOCKS5HTTPS(cfg Config, proxyAddr string, tc TLSClient) (*Connector, error) {
	if tc == nil {
		tc = NewTLSClient(nil)
	}
	return New(cfg, Proxy{Version: SOCKS5, Addr: proxyAddr, TLS: tc})
}

func (c *Connector) Version() Version {
	return c.version
}

// Schemes returns the URL schemes c serves.
func (c *Connector) Schemes() []string {
	return slices.Clone(c.schemes)
}

// Supports reports whether c serves scheme.
func (c *Connector) Supports(scheme string) bool {
	return slices.Contains(c.schemes, scheme)
}

// ProxyAddrs returns the proxy addresses resolved by New, in dial order.
func (c *Connector) ProxyAddrs() []netip.AddrPort {
	return slices.Clone(c.addrs)
}

// Connect opens a stream to host:port through the proxy. For https the stream
// is Encrypted, otherwise Plain. Errors are *ConnectError and match one of the
// package's Err values. The proxy socket is closed on every failure.
func (c *Connector) Connect(ctx context.Context, host string, port uint16, scheme string) (*Stream, error) {
	var id string
	if c.cfg.Verbose {
		id = uuid.NewString()
		log.Printf("sockshttp %s: connect %s://%s via %s %s", id, scheme, net.JoinHostPort(host, strconv.Itoa(int(port))), c.version, c.proxy)
	}

	s, err := c.connect(ctx, host, port, scheme)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w (%w)", err, ctxErr)
		}
		if c.cfg.Verbose {
			log.Printf("sockshttp %s: %v", id, err)
		}
		return nil, &ConnectError{Host: host, Port: port, Scheme: scheme, Err: err}
	}

	if c.cfg.Verbose {
		log.Printf("sockshttp %s: established %s stream via %s", id, s.Kind(), s.Conn.RemoteAddr())
	}
	return s, nil
}

func (c *Connector) connect(ctx context.Context, host string, port uint16, scheme string) (*Stream, error) {
	if !c.Supports(scheme) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, scheme)
	}
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrInvalidTarget)
	}

	// SOCKS4 only carries IPv4 targets, so names are resolved before the
	// proxy is dialed.
	var ip4 netip.Addr
	if c.version == SOCKS4 {
		var err error
		ip4, err = resolver.LookupIPv4(ctx, c.resolver, host)
		if err != nil {
			return nil, err
		}
	}

	conn, err := dialer.DialFirst(ctx, c.dialer, c.addrs)
	if err != nil {
		return nil, err
	}

	s, err := c.negotiate(ctx, conn, host, ip4, port, scheme)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// negotiate runs the SOCKS handshake and any TLS upgrade on conn under the
// negotiation deadline. Cancelling ctx aborts pending reads and writes.
func (c *Connector) negotiate(ctx context.Context, conn net.Conn, host string, ip4 netip.Addr, port uint16, scheme string) (*Stream, error) {
	if c.cfg.NegotiationTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.cfg.NegotiationTimeout))
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Unix(1, 0)) })
	defer stop()

	var err error
	switch c.version {
	case SOCKS4:
		err = socks4.ClientConnect(conn, ip4, port, c.userID)
	case SOCKS5:
		err = socks5.ClientDial(conn, host, port)
	}
	if err != nil {
		return nil, err
	}

	s, err := upgrade(ctx, conn, host, scheme, c.tls)
	if err != nil {
		return nil, err
	}

	if !stop() {
		return nil, fmt.Errorf("%w: %w", ErrIO, ctx.Err())
	}
	if c.cfg.NegotiationTimeout > 0 {
		_ = conn.SetDeadline(time.Time{})
	}
	return s, nil
}
