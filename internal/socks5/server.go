package socks5

import (
	"errors"
	"fmt"
	"net"
	"slices"

	txsocks5 "github.com/txthinking/socks5"
)

// ServerNegotiateNoAuth reads the client's method offer and accepts no-auth,
// or answers "no acceptable methods" if the client did not offer it.
func ServerNegotiateNoAuth(conn net.Conn) error {
	offered, err := ServerSelectMethod(conn, func(methods []byte) byte {
		if slices.Contains(methods, MethodNone) {
			return MethodNone
		}
		return MethodNoAcceptable
	})
	if err != nil {
		return err
	}
	if !slices.Contains(offered, MethodNone) {
		return errors.New("client does not support no-auth")
	}
	return nil
}

// ServerSelectMethod reads the client's method offer and answers with the
// method choose picks, whether or not the client offered it. It returns the
// offered methods.
func ServerSelectMethod(conn net.Conn, choose func(offered []byte) byte) ([]byte, error) {
	neg, err := txsocks5.NewNegotiationRequestFrom(conn)
	if err != nil {
		return nil, fmt.Errorf("negotiation request: %w", err)
	}
	if _, err := txsocks5.NewNegotiationReply(choose(neg.Methods)).WriteTo(conn); err != nil {
		return nil, fmt.Errorf("negotiation reply: %w", err)
	}
	return neg.Methods, nil
}

func ServerReadRequest(conn net.Conn) (*txsocks5.Request, error) {
	req, err := txsocks5.NewRequestFrom(conn)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	return req, nil
}
