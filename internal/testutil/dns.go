package testutil

import (
	"net"
	"net/netip"
	"strings"
	"testing"

	"github.com/miekg/dns"
)

// StartDNSServer answers A and AAAA queries over UDP from records, keyed by
// lowercase name without the trailing dot. Unknown names get NXDOMAIN and a
// name mapped to a nil slice gets SERVFAIL. It returns the server address.
func StartDNSServer(t *testing.T, records map[string][]netip.Addr) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		Handler:           dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) { answer(w, req, records) }),
		NotifyStartedFunc: func() { close(started) },
	}
	go func() { _ = srv.ActivateAndServe() }()
	<-started
	t.Cleanup(func() { _ = srv.Shutdown() })

	return pc.LocalAddr().String()
}

func answer(w dns.ResponseWriter, req *dns.Msg, records map[string][]netip.Addr) {
	m := new(dns.Msg)
	m.SetReply(req)
	defer func() { _ = w.WriteMsg(m) }()

	if len(req.Question) == 0 {
		m.Rcode = dns.RcodeFormatError
		return
	}
	q := req.Question[0]

	addrs, ok := records[strings.TrimSuffix(strings.ToLower(q.Name), ".")]
	switch {
	case !ok:
		m.Rcode = dns.RcodeNameError
		return
	case addrs == nil:
		m.Rcode = dns.RcodeServerFailure
		return
	}

	for _, a := range addrs {
		hdr := dns.RR_Header{Name: q.Name, Rrtype: q.Qtype, Class: dns.ClassINET, Ttl: 60}
		switch {
		case q.Qtype == dns.TypeA && a.Is4():
			m.Answer = append(m.Answer, &dns.A{Hdr: hdr, A: net.IP(a.AsSlice())})
		case q.Qtype == dns.TypeAAAA && a.Is6():
			m.Answer = append(m.Answer, &dns.AAAA{Hdr: hdr, AAAA: net.IP(a.AsSlice())})
		}
	}
}
