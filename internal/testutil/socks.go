package testutil

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"

	"github.com/die-net/sockshttp/internal/socks4"
	"github.com/die-net/sockshttp/internal/socks5"
)

// Request is a CONNECT request recorded by a mock proxy.
type Request struct {
	Addr   string
	Atyp   byte
	UserID string
}

type recorder struct {
	mu   sync.Mutex
	reqs []Request
}

func (r *recorder) record(req Request) {
	r.mu.Lock()
	r.reqs = append(r.reqs, req)
	r.mu.Unlock()
}

// Requests returns the CONNECT requests seen so far.
func (r *recorder) Requests() []Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Request(nil), r.reqs...)
}

// SOCKS4Proxy is a mock SOCKS4 proxy. A granted request is relayed to its
// target, or echoed back to the client when Echo is set.
type SOCKS4Proxy struct {
	recorder

	// Code is the reply code; zero means granted.
	Code byte
	Echo bool
}

func (p *SOCKS4Proxy) Handle(ctx context.Context, c net.Conn) {
	req, err := socks4.ServerReadRequest(c)
	if err != nil {
		return
	}
	addr := req.Addr.String()
	p.record(Request{Addr: addr, UserID: string(req.Userid)})

	code := p.Code
	if code == 0 {
		code = socks4.Granted
	}
	if req.Cmd != socks4.CmdConnect {
		code = socks4.Failed
	}
	if code != socks4.Granted {
		_ = socks4.WriteReply(c, code)
		return
	}

	if p.Echo {
		if err := socks4.WriteReply(c, socks4.Granted); err != nil {
			return
		}
		_, _ = io.Copy(c, c)
		return
	}

	d := net.Dialer{}
	dst, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		_ = socks4.WriteReply(c, socks4.Failed)
		return
	}
	defer dst.Close()

	if err := socks4.WriteReply(c, socks4.Granted); err != nil {
		return
	}
	_ = CopyBidirectional(ctx, c, dst)
}

// SOCKS5Proxy is a mock SOCKS5 proxy. A successful request is relayed to its
// target, or echoed back to the client when Echo is set.
type SOCKS5Proxy struct {
	recorder

	// Method is the method selected during negotiation; zero means no-auth.
	// Any other value ends the exchange after the negotiation reply.
	Method byte
	// Rep is the reply code; zero means success.
	Rep  byte
	Echo bool
}

func (p *SOCKS5Proxy) Handle(ctx context.Context, c net.Conn) {
	if p.Method != socks5.MethodNone {
		_, _ = socks5.ServerSelectMethod(c, func([]byte) byte { return p.Method })
		return
	}
	if err := socks5.ServerNegotiateNoAuth(c); err != nil {
		return
	}

	req, err := socks5.ServerReadRequest(c)
	if err != nil {
		return
	}
	addr := req.Address()
	p.record(Request{Addr: addr, Atyp: req.Atyp})

	if req.Cmd != socks5.CmdConnect {
		_ = socks5.WriteReply(c, 0x07, req.Atyp)
		return
	}
	if p.Rep != 0 {
		_ = socks5.WriteReply(c, p.Rep, req.Atyp)
		return
	}

	if p.Echo {
		if err := socks5.WriteSuccessReply(c, c.LocalAddr()); err != nil {
			return
		}
		_, _ = io.Copy(c, c)
		return
	}

	d := net.Dialer{}
	dst, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		_ = socks5.WriteReply(c, 0x04, req.Atyp)
		return
	}
	defer dst.Close()

	if err := socks5.WriteSuccessReply(c, dst.LocalAddr()); err != nil {
		return
	}
	_ = CopyBidirectional(ctx, c, dst)
}

// StartSOCKS4Proxy serves p on loopback for the rest of the test.
func StartSOCKS4Proxy(t *testing.T, ctx context.Context, p *SOCKS4Proxy) *Server {
	t.Helper()
	return StartServer(t, ctx, func(c net.Conn) { p.Handle(ctx, c) })
}

// StartSOCKS5Proxy serves p on loopback for the rest of the test.
func StartSOCKS5Proxy(t *testing.T, ctx context.Context, p *SOCKS5Proxy) *Server {
	t.Helper()
	return StartServer(t, ctx, func(c net.Conn) { p.Handle(ctx, c) })
}
