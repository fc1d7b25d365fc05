// Package dialer opens the TCP connection to a SOCKS proxy.
//
// It applies keepalive and socket options to proxy sockets and walks the
// ordered list of resolved proxy addresses until one accepts.
package dialer
