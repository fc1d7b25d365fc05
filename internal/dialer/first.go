package dialer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/die-net/sockshttp/internal/proxyerr"
)

// DialFirst tries each address in order and returns the first connection that
// succeeds. If every attempt fails the joined causes are wrapped in
// proxyerr.ErrProxyUnreachable.
func DialFirst(ctx context.Context, d ContextDialer, addrs []netip.AddrPort) (net.Conn, error) {
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: no proxy addresses", proxyerr.ErrProxyUnreachable)
	}

	errs := make([]error, 0, len(addrs))
	for _, addr := range addrs {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		c, err := d.DialContext(ctx, "tcp", addr.String())
		if err == nil {
			return c, nil
		}
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("%w: %w", proxyerr.ErrProxyUnreachable, errors.Join(errs...))
}
