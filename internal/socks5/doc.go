// Package socks5 implements the client side of the SOCKS5 CONNECT handshake
// and the matching server-side steps used by in-process test proxies.
//
// It wraps the low-level protocol types in github.com/txthinking/socks5 to keep
// framing in one place. Only the no-auth method and the CONNECT command are
// spoken; BIND, UDP ASSOCIATE and username/password auth are not.
package socks5
