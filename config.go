package sockshttp

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/die-net/sockshttp/internal/dialer"
)

// ContextDialer mirrors the net.Dialer DialContext method.
type ContextDialer = dialer.ContextDialer

// Config tunes how a Connector reaches the proxy. The zero value applies no
// timeouts, disables TCP keepalive and uses the system resolver.
type Config struct {
	// DialTimeout bounds each TCP connect to a proxy address and the initial
	// proxy address lookup.
	DialTimeout time.Duration
	// NegotiationTimeout bounds the SOCKS handshake plus any TLS upgrade.
	NegotiationTimeout time.Duration

	KeepAlive net.KeepAliveConfig

	// Mark sets SO_MARK and Interface binds to a device on proxy sockets.
	// Both are Linux only.
	Mark      int
	Interface string

	// DNSServer, if set, is queried directly for the proxy address and for
	// SOCKS4 target names instead of using the system resolver.
	DNSServer string

	// Forward, if set, is used to reach the proxy instead of dialing it
	// directly. DialTimeout, KeepAlive, Mark and Interface are then ignored.
	Forward ContextDialer

	// Verbose logs each connect attempt.
	Verbose bool
}

// BindFlags registers flags on fs that set c's fields, using c's current
// values as defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.DurationVar(&c.DialTimeout, "socks-dial-timeout", c.DialTimeout, "Timeout for SOCKS proxy address lookup and each TCP connect (0 disables)")
	fs.DurationVar(&c.NegotiationTimeout, "socks-negotiation-timeout", c.NegotiationTimeout, "Timeout for the SOCKS handshake and TLS upgrade (0 disables)")
	fs.Var(&keepAliveValue{cfg: &c.KeepAlive}, "socks-tcp-keepalive", "TCP keepalive for proxy connections: on|off|keepidle:keepintvl:keepcnt")
	fs.IntVar(&c.Mark, "socks-mark", c.Mark, "SO_MARK for proxy connections (linux only, 0 disables)")
	fs.StringVar(&c.Interface, "socks-interface", c.Interface, "Network interface to bind proxy connections to (linux only)")
	fs.StringVar(&c.DNSServer, "socks-dns-server", c.DNSServer, "DNS server for proxy and SOCKS4 target lookups (e.g. 1.1.1.1:53). Empty uses the system resolver.")
	fs.BoolVar(&c.Verbose, "socks-verbose", c.Verbose, "Log each SOCKS connect attempt")
}

func (c *Config) dialerConfig() dialer.Config {
	return dialer.Config{
		DialTimeout: c.DialTimeout,
		KeepAlive:   c.KeepAlive,
		Mark:        c.Mark,
		Interface:   c.Interface,
	}
}

// keepAliveValue is a pflag.Value for net.KeepAliveConfig.
type keepAliveValue struct {
	cfg *net.KeepAliveConfig
}

func (v *keepAliveValue) String() string {
	if v.cfg == nil || !v.cfg.Enable {
		return "off"
	}
	if v.cfg.Idle == 0 && v.cfg.Interval == 0 && v.cfg.Count == 0 {
		return "on"
	}
	return fmt.Sprintf("%d:%d:%d", int(v.cfg.Idle/time.Second), int(v.cfg.Interval/time.Second), v.cfg.Count)
}

func (v *keepAliveValue) Set(s string) error {
	ka, err := parseTCPKeepAlive(s)
	if err != nil {
		return err
	}
	*v.cfg = ka
	return nil
}

func (v *keepAliveValue) Type() string {
	return "keepalive"
}

func parseTCPKeepAlive(s string) (net.KeepAliveConfig, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return net.KeepAliveConfig{}, errors.New("empty")
	}
	if s == "on" {
		return net.KeepAliveConfig{Enable: true}, nil
	}
	if s == "off" {
		return net.KeepAliveConfig{Enable: false}, nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return net.KeepAliveConfig{}, errors.New("expected on|off|keepidle:keepintvl:keepcnt")
	}
	keepIdle, err := parsePositiveSeconds(parts[0])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepidle: %w", err)
	}
	keepIntvl, err := parsePositiveSeconds(parts[1])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepintvl: %w", err)
	}
	keepCnt, err := parsePositiveInt(parts[2])
	if err != nil {
		return net.KeepAliveConfig{}, fmt.Errorf("keepcnt: %w", err)
	}

	return net.KeepAliveConfig{
		Enable:   true,
		Idle:     keepIdle,
		Interval: keepIntvl,
		Count:    keepCnt,
	}, nil
}

func parsePositiveSeconds(s string) (time.Duration, error) {
	n, err := parsePositiveInt(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("must be > 0")
	}
	return n, nil
}
