package sockshttp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/proxy"
)

const defaultPort = "1080"

func init() {
	proxy.RegisterDialerType("socks4", fromProxyURL)
}

// Parse is FromURL for a raw URL string.
func Parse(cfg Config, rawURL string, tc TLSClient) (*Connector, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("sockshttp: %w", err)
	}
	return FromURL(cfg, u, tc)
}

// FromURL builds a Connector from a socks4://[userid@]host[:port] or
// socks5://host[:port] URL. The port defaults to 1080. A non-nil tc enables
// https.
func FromURL(cfg Config, u *url.URL, tc TLSClient) (*Connector, error) {
	if u == nil {
		return nil, errors.New("sockshttp: nil proxy url")
	}
	if u.Path != "" && u.Path != "/" {
		return nil, fmt.Errorf("sockshttp: unexpected path in proxy url %q", u.Path)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return nil, errors.New("sockshttp: unexpected query or fragment in proxy url")
	}
	if u.Hostname() == "" {
		return nil, errors.New("sockshttp: missing host in proxy url")
	}

	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), defaultPort)
	}

	switch strings.ToLower(u.Scheme) {
	case "socks4":
		var userID string
		if u.User != nil {
			if _, ok := u.User.Password(); ok {
				return nil, errors.New("sockshttp: socks4 does not take a password")
			}
			userID = u.User.Username()
		}
		return New(cfg, Proxy{Version: SOCKS4, Addr: addr, UserID: userID, TLS: tc})
	case "socks5", "socks5h":
		if u.User != nil {
			return nil, errors.New("sockshttp: socks5 username/password authentication is not supported")
		}
		return New(cfg, Proxy{Version: SOCKS5, Addr: addr, TLS: tc})
	default:
		return nil, fmt.Errorf("sockshttp: unsupported proxy scheme %q", u.Scheme)
	}
}

// fromProxyURL lets proxy.FromURL build SOCKS4 dialers.
func fromProxyURL(u *url.URL, forward proxy.Dialer) (proxy.Dialer, error) {
	var cfg Config
	if forward != nil && forward != proxy.Direct {
		cfg.Forward = forwardDialer{forward}
	}
	c, err := FromURL(cfg, u, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// forwardDialer adapts a proxy.Dialer to ContextDialer.
type forwardDialer struct {
	d proxy.Dialer
}

func (f forwardDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if cd, ok := f.d.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}
	return f.d.Dial(network, address)
}
