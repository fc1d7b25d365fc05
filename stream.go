package sockshttp

import "net"

// Kind tells whether a Stream carries bytes as-is or through TLS.
type Kind uint8

const (
	Plain Kind = iota
	Encrypted
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Encrypted:
		return "encrypted"
	default:
		return "unknown"
	}
}

// Stream is a proxied connection returned by Connect. Its Kind is fixed when
// it is created.
type Stream struct {
	net.Conn
	kind Kind
}

func (s *Stream) Kind() Kind {
	return s.kind
}

// Unwrap returns the underlying connection: the proxied socket for a Plain
// stream, or the TLS client connection for an Encrypted one.
func (s *Stream) Unwrap() net.Conn {
	return s.Conn
}
