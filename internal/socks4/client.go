package socks4

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/netip"

	"github.com/go-gost/gosocks4"

	"github.com/die-net/sockshttp/internal/proxyerr"
)

// ReplyLen is the fixed size of a SOCKS4 reply.
const ReplyLen = 8

// ClientConnect sends a CONNECT request for ip:port carrying userID and reads
// the reply. On success conn carries the relayed stream.
func ClientConnect(conn net.Conn, ip netip.Addr, port uint16, userID string) error {
	if !ip.Is4() {
		return fmt.Errorf("%w: socks4 target %s is not ipv4", proxyerr.ErrInvalidTarget, ip)
	}

	addr := &gosocks4.Addr{
		Type: gosocks4.AddrIPv4,
		Host: ip.String(),
		Port: port,
	}
	var userid []byte
	if userID != "" {
		userid = []byte(userID)
	}

	if err := gosocks4.NewRequest(gosocks4.CmdConnect, addr, userid).Write(conn); err != nil {
		return proxyerr.Write("socks4 write request", err)
	}

	// Read exactly the reply so no relayed bytes are consumed.
	var b [ReplyLen]byte
	if _, err := io.ReadFull(conn, b[:]); err != nil {
		return proxyerr.Read("socks4 read reply", err)
	}
	if b[0] != 0x00 {
		return fmt.Errorf("%w: socks4 reply version %d", proxyerr.ErrProtocol, b[0])
	}

	reply, err := gosocks4.ReadReply(bytes.NewReader(b[:]))
	if err != nil {
		return proxyerr.Read("socks4 parse reply", err)
	}

	switch {
	case reply.Code == gosocks4.Granted:
		return nil
	case proxyerr.IsRejectCode(4, reply.Code):
		return &proxyerr.RejectedError{Version: 4, Code: reply.Code}
	default:
		return fmt.Errorf("%w: socks4 unknown reply code 0x%02x", proxyerr.ErrProtocol, reply.Code)
	}
}
