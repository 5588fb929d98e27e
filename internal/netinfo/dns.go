package netinfo

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strings"
	"time"

	mdns "github.com/miekg/dns"
)

// Addrs holds the forward resolution of a host.
type Addrs struct {
	Primary string   // preferred address, IPv4 when available
	All     []string // every resolved address
}

// Resolve performs forward DNS for a host. A host that is already an
// IP literal resolves to itself.
func Resolve(ctx context.Context, host string) (*Addrs, error) {
	if ip := net.ParseIP(host); ip != nil {
		return &Addrs{Primary: host, All: []string{host}}, nil
	}

	addrs, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("resolving %s: no addresses", host)
	}

	return &Addrs{Primary: pickPrimary(addrs), All: addrs}, nil
}

// pickPrimary prefers the first IPv4 address, falling back to the
// first address of any family.
func pickPrimary(addrs []string) string {
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
			return a
		}
	}
	return addrs[0]
}

// CNAME returns the canonical name of a host when it differs from the
// host itself, with the trailing dot trimmed. Hosts without a CNAME
// record return "".
func CNAME(ctx context.Context, host string) string {
	cname, err := net.DefaultResolver.LookupCNAME(ctx, host)
	if err != nil {
		return ""
	}
	cname = strings.TrimSuffix(cname, ".")
	if cname == host {
		return ""
	}
	return cname
}

// Reverse performs a PTR lookup for an IP and returns the names with
// trailing dots trimmed. A missing PTR record is not an error; the
// returned slice is just empty.
func Reverse(ctx context.Context, ip string) []string {
	names, err := net.DefaultResolver.LookupAddr(ctx, ip)
	if err != nil {
		return nil
	}
	for i, name := range names {
		names[i] = strings.TrimSuffix(name, ".")
	}
	return names
}

// RecordSet is one DNS record type with its values, ordered for
// display.
type RecordSet struct {
	Type   string
	Values []string
}

// recordTypes are the record types the recon scanner reports, in
// display order.
var recordTypes = []struct {
	name  string
	qtype uint16
}{
	{"MX", mdns.TypeMX},
	{"NS", mdns.TypeNS},
	{"TXT", mdns.TypeTXT},
	{"SOA", mdns.TypeSOA},
}

// Records queries MX, NS, TXT, and SOA records for a domain directly
// against the system nameserver. Types that fail or come back empty
// are skipped.
func Records(ctx context.Context, domain string) ([]RecordSet, error) {
	server, err := systemNameserver()
	if err != nil {
		return nil, err
	}

	client := &mdns.Client{Timeout: 5 * time.Second}
	var sets []RecordSet

	for _, rt := range recordTypes {
		msg := new(mdns.Msg)
		msg.SetQuestion(mdns.Fqdn(domain), rt.qtype)

		reply, _, err := client.ExchangeContext(ctx, msg, server)
		if err != nil || reply == nil {
			continue
		}

		var values []string
		for _, ans := range reply.Answer {
			if v := recordValue(ans); v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			sort.Strings(values)
			sets = append(sets, RecordSet{Type: rt.name, Values: values})
		}
	}

	return sets, nil
}

// recordValue renders the payload of a resource record without the
// header noise.
func recordValue(rr mdns.RR) string {
	switch r := rr.(type) {
	case *mdns.MX:
		return fmt.Sprintf("%d %s", r.Preference, strings.TrimSuffix(r.Mx, "."))
	case *mdns.NS:
		return strings.TrimSuffix(r.Ns, ".")
	case *mdns.TXT:
		return strings.Join(r.Txt, "")
	case *mdns.SOA:
		return fmt.Sprintf("%s %s", strings.TrimSuffix(r.Ns, "."), strings.TrimSuffix(r.Mbox, "."))
	default:
		return ""
	}
}

// systemNameserver returns the first resolver from /etc/resolv.conf,
// or a public fallback when none can be read.
func systemNameserver() (string, error) {
	conf, err := mdns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return "8.8.8.8:53", nil
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port), nil
}
