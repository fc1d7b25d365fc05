// Package sockshttp connects HTTP clients to their targets through a SOCKS4 or
// SOCKS5 proxy.
//
// A [Connector] performs the proxy handshake for each connection and, when
// the request scheme is https, upgrades the relayed socket with a pluggable
// [TLSClient]. Four shapes are provided: SOCKS4 or SOCKS5, each either
// plaintext-only or plaintext-and-TLS.
//
// The proxy address is resolved once, when the Connector is built. Every
// Connect call is independent: there is no pooling, caching or retrying, and a
// Connector may be shared between goroutines.
//
// Example usage:
//
//	c, err := sockshttp.NewSOCKS5HTTPS(sockshttp.Config{}, "127.0.0.1:1080", nil)
//	if err != nil {
//	    return err
//	}
//	client := &http.Client{Transport: c.Transport()}
//	resp, err := client.Get("https://example.com/")
//
// Connectors also satisfy golang.org/x/net/proxy.Dialer, and importing this
// package registers the socks4 scheme with proxy.FromURL.
package sockshttp
