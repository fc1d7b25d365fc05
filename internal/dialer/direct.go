package dialer

import (
	"context"
	"fmt"
	"net"
	"syscall"
)

// ContextDialer mirrors the net.Dialer DialContext method.
type ContextDialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type directDialer struct {
	cfg Config
}

// NewDirectDialer returns a dialer that connects without any intermediary.
//
// It fails if cfg asks for socket options the platform can't apply.
func NewDirectDialer(cfg Config) (ContextDialer, error) {
	if (cfg.Mark != 0 || cfg.Interface != "") && !SocketOptionsSupported {
		return nil, errSocketOptionsUnsupported
	}
	return &directDialer{cfg: cfg}, nil
}

func (f *directDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	dd := net.Dialer{Timeout: f.cfg.DialTimeout}
	if f.cfg.Mark != 0 || f.cfg.Interface != "" {
		dd.Control = f.control
	}

	conn, err := dd.DialContext(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("dial %s %s: %w", network, address, err)
	}

	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetKeepAliveConfig(f.cfg.KeepAlive)
	}

	return conn, nil
}

func (f *directDialer) control(_, _ string, c syscall.RawConn) error {
	var ctrlErr error
	err := c.Control(func(fd uintptr) {
		ctrlErr = setSocketOptions(fd, f.cfg)
	})
	if err != nil {
		return err
	}
	return ctrlErr
}
