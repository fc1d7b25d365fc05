package testutil

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"testing"
)

// Server is a loopback listener that runs handler for every accepted
// connection and counts them.
type Server struct {
	ln       net.Listener
	accepted atomic.Int64
	wg       sync.WaitGroup
}

// StartServer starts a Server. It is shut down, and its handlers waited for,
// when the test ends.
func StartServer(t *testing.T, ctx context.Context, handler func(net.Conn)) *Server {
	t.Helper()

	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	s := &Server{ln: ln}
	s.wg.Go(func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			s.accepted.Add(1)
			s.wg.Go(func() {
				stop := context.AfterFunc(ctx, func() { _ = c.Close() })
				defer stop()
				defer c.Close()
				handler(c)
			})
		}
	})

	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	t.Cleanup(func() {
		stop()
		_ = ln.Close()
		s.wg.Wait()
	})

	return s
}

// Addr returns the listen address as host:port.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Accepted returns how many connections have been accepted so far.
func (s *Server) Accepted() int64 {
	return s.accepted.Load()
}

// ClosedAddr returns a loopback address with nothing listening on it.
func ClosedAddr(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()
	return addr
}
