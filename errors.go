package sockshttp

import (
	"fmt"
	"net"
	"strconv"

	"github.com/die-net/sockshttp/internal/proxyerr"
)

// Failure classes. Errors returned by this package match exactly one of these
// with errors.Is.
var (
	// ErrResolution means the proxy address could not be resolved.
	ErrResolution = proxyerr.ErrResolution
	// ErrProxyUnreachable means no proxy address accepted a TCP connection.
	ErrProxyUnreachable = proxyerr.ErrProxyUnreachable
	// ErrIO means reading or writing the proxy connection failed mid-handshake.
	ErrIO = proxyerr.ErrIO
	// ErrProtocol means the proxy sent a malformed, short or unexpected reply.
	ErrProtocol = proxyerr.ErrProtocol
	// ErrAuthMethod means a SOCKS5 proxy demanded authentication.
	ErrAuthMethod = proxyerr.ErrAuthMethod
	// ErrProxyRejected means the proxy refused the CONNECT; see RejectedError.
	ErrProxyRejected = proxyerr.ErrProxyRejected
	// ErrUnsupportedScheme means the Connector does not serve the scheme.
	ErrUnsupportedScheme = proxyerr.ErrUnsupportedScheme
	// ErrUnsupportedNetwork means a non-TCP network was requested.
	ErrUnsupportedNetwork = proxyerr.ErrUnsupportedNetwork
	// ErrTLS means the TLS upgrade failed.
	ErrTLS = proxyerr.ErrTLS
	// ErrAddressResolution means a SOCKS4 target has no usable IPv4 address.
	ErrAddressResolution = proxyerr.ErrAddressResolution
	// ErrInvalidTarget means the target host or port cannot be encoded.
	ErrInvalidTarget = proxyerr.ErrInvalidTarget
)

// RejectedError carries the proxy's reply code when it refuses a CONNECT.
type RejectedError = proxyerr.RejectedError

// ConnectError is returned by Connect and the Dial methods.
type ConnectError struct {
	Host   string
	Port   uint16
	Scheme string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("sockshttp connect %s://%s: %v", e.Scheme, net.JoinHostPort(e.Host, strconv.Itoa(int(e.Port))), e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}
