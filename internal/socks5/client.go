package socks5

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/netip"

	txsocks5 "github.com/txthinking/socks5"

	"github.com/die-net/sockshttp/internal/proxyerr"
)

// ClientDial negotiates no-auth on conn, then asks the proxy to CONNECT to
// host:port. On success conn carries the relayed stream.
func ClientDial(conn net.Conn, host string, port uint16) error {
	if err := ClientNegotiate(conn); err != nil {
		return err
	}
	return ClientConnect(conn, host, port)
}

func ClientNegotiate(conn net.Conn) error {
	if _, err := txsocks5.NewNegotiationRequest([]byte{txsocks5.MethodNone}).WriteTo(conn); err != nil {
		return proxyerr.Write("socks5 write negotiation", err)
	}

	neg, err := txsocks5.NewNegotiationReplyFrom(conn)
	if err != nil {
		return proxyerr.Read("socks5 read negotiation", err)
	}
	if neg.Ver != txsocks5.Ver {
		return fmt.Errorf("%w: socks5 negotiation reply version %d", proxyerr.ErrProtocol, neg.Ver)
	}
	if neg.Method != txsocks5.MethodNone {
		return fmt.Errorf("%w: socks5 proxy selected method 0x%02x", proxyerr.ErrAuthMethod, neg.Method)
	}
	return nil
}

// ClientConnect sends a CONNECT request for host:port and reads the reply.
// Literal IPs are sent as IPv4 or IPv6 addresses; anything else is sent as a
// domain name for the proxy to resolve.
func ClientConnect(conn net.Conn, host string, port uint16) error {
	atyp, dstAddr, err := encodeHost(host)
	if err != nil {
		return err
	}
	dstPort := []byte{byte(port >> 8), byte(port)}

	if _, err := txsocks5.NewRequest(txsocks5.CmdConnect, atyp, dstAddr, dstPort).WriteTo(conn); err != nil {
		return proxyerr.Write("socks5 write request", err)
	}

	// The status is decided from the header alone, so a proxy that rejects and
	// hangs up, or sends no usable bound address, still reports its code.
	var hdr [4]byte
	if _, err := io.ReadFull(conn, hdr[:]); err != nil {
		return proxyerr.Read("socks5 read reply", err)
	}
	if hdr[0] != txsocks5.Ver {
		return fmt.Errorf("%w: socks5 reply version %d", proxyerr.ErrProtocol, hdr[0])
	}
	if hdr[1] != txsocks5.RepSuccess {
		return &proxyerr.RejectedError{Version: 5, Code: hdr[1]}
	}

	// The bound address and port are read to keep the stream aligned but are
	// not used.
	if _, err := txsocks5.NewReplyFrom(io.MultiReader(bytes.NewReader(hdr[:]), conn)); err != nil {
		return proxyerr.Read("socks5 read reply", err)
	}
	return nil
}

func encodeHost(host string) (byte, []byte, error) {
	if host == "" {
		return 0, nil, fmt.Errorf("%w: empty host", proxyerr.ErrInvalidTarget)
	}

	if ip, err := netip.ParseAddr(host); err == nil {
		ip = ip.Unmap()
		if ip.Is4() {
			b := ip.As4()
			return txsocks5.ATYPIPv4, b[:], nil
		}
		b := ip.As16()
		return txsocks5.ATYPIPv6, b[:], nil
	}

	if len(host) > 255 {
		return 0, nil, fmt.Errorf("%w: domain name is %d bytes, socks5 allows 255", proxyerr.ErrInvalidTarget, len(host))
	}
	return txsocks5.ATYPDomain, []byte(host), nil
}
