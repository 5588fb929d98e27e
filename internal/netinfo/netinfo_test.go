package netinfo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-ping/ping"
	whoisparser "github.com/likexian/whois-parser"
)

func TestPickPrimary(t *testing.T) {
	tests := []struct {
		name  string
		addrs []string
		want  string
	}{
		{"v4 first", []string{"93.184.216.34", "2606:2800::1"}, "93.184.216.34"},
		{"v4 after v6", []string{"2606:2800::1", "93.184.216.34"}, "93.184.216.34"},
		{"v6 only", []string{"2606:2800::1", "2606:2800::2"}, "2606:2800::1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pickPrimary(tt.addrs); got != tt.want {
				t.Errorf("pickPrimary(%v) = %s, want %s", tt.addrs, got, tt.want)
			}
		})
	}
}

func TestResolveIPLiteral(t *testing.T) {
	addrs, err := Resolve(context.Background(), "127.0.0.1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if addrs.Primary != "127.0.0.1" || len(addrs.All) != 1 {
		t.Errorf("IP literal resolution = %+v", addrs)
	}
}

func TestWhoisTarget(t *testing.T) {
	tests := []struct{ in, want string }{
		{"www.example.com", "example.com"},
		{"Example.COM", "example.com"},
		{"sub.example.com", "sub.example.com"},
		{"93.184.216.34", "93.184.216.34"},
	}
	for _, tt := range tests {
		if got := WhoisTarget(tt.in); got != tt.want {
			t.Errorf("WhoisTarget(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestSummaryFromInfo(t *testing.T) {
	info := whoisparser.WhoisInfo{
		Domain: &whoisparser.Domain{
			Domain:         "example.com",
			CreatedDate:    "1995-08-14T04:00:00Z",
			ExpirationDate: "2026-08-13T04:00:00Z",
			NameServers:    []string{"a.iana-servers.net", "b.iana-servers.net"},
			Status:         []string{"clientDeleteProhibited"},
		},
		Registrar: &whoisparser.Contact{Name: "RESERVED-Internet Assigned Numbers Authority"},
	}

	s := summaryFromInfo("example.com", info)
	if s.Registrar == "" {
		t.Error("registrar not carried over")
	}
	if s.Created == "" || s.Expires == "" {
		t.Error("dates not carried over")
	}
	if len(s.NameServers) != 2 {
		t.Errorf("nameservers = %v", s.NameServers)
	}
}

func TestSummaryFromInfoNilSections(t *testing.T) {
	s := summaryFromInfo("example.com", whoisparser.WhoisInfo{})
	if s.Domain != "example.com" {
		t.Errorf("domain fallback = %s", s.Domain)
	}
	if s.Registrar != "" || len(s.NameServers) != 0 {
		t.Error("empty info should produce an empty summary")
	}
}

type fakePinger struct {
	stats   *ping.Statistics
	runErr  error
	stopped bool
}

func (f *fakePinger) Run() error { return f.runErr }

func (f *fakePinger) Stop() { f.stopped = true }

func (f *fakePinger) Statistics() *ping.Statistics { return f.stats }

func TestPingAlive(t *testing.T) {
	orig := newPinger
	defer func() { newPinger = orig }()

	newPinger = func(host string) (pinger, error) {
		return &fakePinger{stats: &ping.Statistics{
			PacketsSent: 2,
			PacketsRecv: 2,
			PacketLoss:  0,
			AvgRtt:      12 * time.Millisecond,
		}}, nil
	}

	res, err := Ping(context.Background(), "example.com", 2, 3*time.Second)
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if !res.Alive || res.Received != 2 || res.AvgRTT != 12*time.Millisecond {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestPingAllLost(t *testing.T) {
	orig := newPinger
	defer func() { newPinger = orig }()

	newPinger = func(host string) (pinger, error) {
		return &fakePinger{stats: &ping.Statistics{PacketsSent: 2, PacketLoss: 100}}, nil
	}

	res, err := Ping(context.Background(), "example.com", 2, 3*time.Second)
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if res.Alive {
		t.Error("no replies should not count as alive")
	}
}

func TestPingError(t *testing.T) {
	orig := newPinger
	defer func() { newPinger = orig }()

	newPinger = func(host string) (pinger, error) {
		return &fakePinger{runErr: errors.New("socket: permission denied")}, nil
	}

	if _, err := Ping(context.Background(), "example.com", 2, time.Second); err == nil {
		t.Error("expected error when run fails")
	}
}
