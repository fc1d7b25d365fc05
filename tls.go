package sockshttp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
)

// TLSClient upgrades an established proxied connection to TLS.
//
// WrapClient runs the client handshake on conn for host and returns the
// encrypted connection. It must not close conn on failure; the caller does.
type TLSClient interface {
	WrapClient(ctx context.Context, conn net.Conn, host string) (net.Conn, error)
}

// StdTLSClient is a TLSClient backed by crypto/tls.
type StdTLSClient struct {
	config *tls.Config
}

// NewTLSClient returns a TLSClient using a clone of cfg for every handshake.
// ServerName defaults to the target host and MinVersion to TLS 1.2. A nil cfg
// uses those defaults alone.
func NewTLSClient(cfg *tls.Config) *StdTLSClient {
	return &StdTLSClient{config: cfg}
}

func (c *StdTLSClient) WrapClient(ctx context.Context, conn net.Conn, host string) (net.Conn, error) {
	cfg := c.config.Clone()
	if cfg == nil {
		cfg = &tls.Config{}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}

	tlsConn := tls.Client(conn, cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}
	return tlsConn, nil
}

// upgrade returns conn as a Plain stream, or as an Encrypted one wrapped by
// tc when scheme is https.
func upgrade(ctx context.Context, conn net.Conn, host, scheme string, tc TLSClient) (*Stream, error) {
	if scheme != SchemeHTTPS {
		return &Stream{Conn: conn, kind: Plain}, nil
	}

	tlsConn, err := tc.WrapClient(ctx, conn, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTLS, err)
	}
	return &Stream{Conn: tlsConn, kind: Encrypted}, nil
}
