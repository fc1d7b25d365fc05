package socks4

import (
	"fmt"
	"net"

	"github.com/go-gost/gosocks4"
)

const (
	CmdConnect     = gosocks4.CmdConnect
	Granted        = gosocks4.Granted
	Failed         = gosocks4.Failed
	Rejected       = gosocks4.Rejected
	RejectedUserid = gosocks4.RejectedUserid
)

func ServerReadRequest(conn net.Conn) (*gosocks4.Request, error) {
	req, err := gosocks4.ReadRequest(conn)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	return req, nil
}

// WriteReply writes a reply carrying code and a zero bound address.
func WriteReply(conn net.Conn, code byte) error {
	if err := gosocks4.NewReply(code, nil).Write(conn); err != nil {
		return fmt.Errorf("reply 0x%02x: %w", code, err)
	}
	return nil
}
