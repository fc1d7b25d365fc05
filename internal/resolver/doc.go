// Package resolver turns proxy endpoints and SOCKS4 targets into addresses.
//
// Lookups go through the Resolver interface, which *net.Resolver satisfies.
// DNSResolver answers the same calls by querying one DNS server directly.
package resolver
