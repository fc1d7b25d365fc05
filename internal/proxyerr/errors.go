// Package proxyerr defines the failure classes shared by the SOCKS handshake
// engines and the public connector.
//
// Engines wrap a cause with exactly one class sentinel so callers can branch
// with errors.Is while the message still carries the underlying error.
package proxyerr

import (
	"errors"
	"fmt"
	"io"
	"net"
)

var (
	ErrResolution         = errors.New("proxy address resolution failed")
	ErrProxyUnreachable   = errors.New("proxy unreachable")
	ErrIO                 = errors.New("i/o failure")
	ErrProtocol           = errors.New("protocol violation")
	ErrAuthMethod         = errors.New("unsupported auth method")
	ErrProxyRejected      = errors.New("proxy rejected connect")
	ErrUnsupportedScheme  = errors.New("unsupported scheme")
	ErrUnsupportedNetwork = errors.New("unsupported network")
	ErrTLS                = errors.New("tls handshake failed")
	ErrAddressResolution  = errors.New("target address resolution failed")
	ErrInvalidTarget      = errors.New("invalid target address")
)

// RejectedError reports that the proxy answered a CONNECT request with a
// non-success reply code.
type RejectedError struct {
	Version int
	Code    byte
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("socks%d proxy rejected connect: %s (0x%02x)", e.Version, e.Reason(), e.Code)
}

// Is reports ErrProxyRejected as a match so every rejection can be tested for
// without knowing the code.
func (e *RejectedError) Is(target error) bool {
	return target == ErrProxyRejected
}

// Reason names the reply code.
func (e *RejectedError) Reason() string {
	var name string
	switch e.Version {
	case 4:
		name = socks4Reasons[e.Code]
	case 5:
		name = socks5Reasons[e.Code]
	}
	if name == "" {
		return "unknown"
	}
	return name
}

var socks4Reasons = map[byte]string{
	0x5b: "request rejected or failed",
	0x5c: "identd unreachable",
	0x5d: "identd user id mismatch",
}

var socks5Reasons = map[byte]string{
	0x01: "general server failure",
	0x02: "connection not allowed by ruleset",
	0x03: "network unreachable",
	0x04: "host unreachable",
	0x05: "connection refused",
	0x06: "ttl expired",
	0x07: "command not supported",
	0x08: "address type not supported",
}

// IsRejectCode reports whether code is a defined rejection for the given
// protocol version.
func IsRejectCode(version int, code byte) bool {
	switch version {
	case 4:
		_, ok := socks4Reasons[code]
		return ok
	case 5:
		_, ok := socks5Reasons[code]
		return ok
	}
	return false
}

// Write classifies a failure to send a handshake frame.
func Write(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
}

// Read classifies a failure to read a handshake frame. Transport errors are
// ErrIO; a peer that hangs up early or sends a frame the codec refuses is
// ErrProtocol.
func Read(op string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s: short reply: %w", ErrProtocol, op, err)
	}
	var ne net.Error
	if errors.As(err, &ne) || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w: %s: %w", ErrIO, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrProtocol, op, err)
}
