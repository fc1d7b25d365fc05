// Package socks4 implements the client side of the SOCKS4 CONNECT handshake
// and the matching server-side steps used by in-process test proxies.
//
// Framing comes from github.com/go-gost/gosocks4. Targets are always IPv4
// addresses; resolving names is the caller's job.
package socks4
