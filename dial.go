package sockshttp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"golang.org/x/net/proxy"
)

var (
	_ proxy.Dialer        = (*Connector)(nil)
	_ proxy.ContextDialer = (*Connector)(nil)
)

// DialContext connects to address through the proxy as a plaintext stream.
// It fits http.Transport.DialContext.
func (c *Connector) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	s, err := c.dial(ctx, network, address, SchemeHTTP)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DialTLSContext connects to address through the proxy and upgrades to TLS.
// It returns the TLSClient's connection unwrapped, so a *tls.Conn from
// StdTLSClient reaches http.Transport as is. Connectors without https fail
// with ErrUnsupportedScheme.
func (c *Connector) DialTLSContext(ctx context.Context, network, address string) (net.Conn, error) {
	s, err := c.dial(ctx, network, address, SchemeHTTPS)
	if err != nil {
		return nil, err
	}
	return s.Unwrap(), nil
}

// Dial is DialContext without a context.
func (c *Connector) Dial(network, address string) (net.Conn, error) {
	return c.DialContext(context.Background(), network, address)
}

func (c *Connector) dial(ctx context.Context, network, address, scheme string) (*Stream, error) {
	host, portStr, err := net.SplitHostPort(address)
	if err != nil {
		return nil, &ConnectError{Host: address, Scheme: scheme, Err: fmt.Errorf("%w: %w", ErrInvalidTarget, err)}
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, &ConnectError{Host: host, Scheme: scheme, Err: fmt.Errorf("%w: port %q", ErrInvalidTarget, portStr)}
	}

	switch network {
	case "tcp", "tcp4", "tcp6":
	default:
		return nil, &ConnectError{Host: host, Port: uint16(port), Scheme: scheme, Err: fmt.Errorf("%w: %q", ErrUnsupportedNetwork, network)}
	}

	return c.Connect(ctx, host, uint16(port), scheme)
}

// Transport returns an http.Transport that sends every request through c.
// https requests fail with ErrUnsupportedScheme unless c serves https.
func (c *Connector) Transport() *http.Transport {
	return &http.Transport{
		DialContext:         c.DialContext,
		DialTLSContext:      c.DialTLSContext,
		TLSHandshakeTimeout: c.cfg.NegotiationTimeout,
	}
}
